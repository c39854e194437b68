package svbcam

import (
	"io"
	"os"
)

// WriteRaw writes the frame bytes to w unchanged.
func WriteRaw(w io.Writer, raw *RawBuffer) error {
	if _, err := w.Write(raw.Data); err != nil {
		werr := &WriteError{Op: "write", Err: err}
		logger.Error("raw write failed", "err", err)
		return werr
	}
	return nil
}

// SaveRaw writes the frame bytes to a new file at path. Failures are logged and
// returned; they are never fatal.
func SaveRaw(path string, raw *RawBuffer) error {
	f, err := os.Create(path)
	if err != nil {
		logger.Error("unable to create raw file", "path", path, "err", err)
		return &WriteError{Op: "open", Path: path, Err: err}
	}
	defer f.Close()

	if _, err := f.Write(raw.Data); err != nil {
		logger.Error("unable to write raw file", "path", path, "err", err)
		return &WriteError{Op: "write", Path: path, Err: err}
	}
	if err := f.Close(); err != nil {
		logger.Error("unable to close raw file", "path", path, "err", err)
		return &WriteError{Op: "write", Path: path, Err: err}
	}
	logger.Debug("saved raw frame", "path", path, "bytes", len(raw.Data))
	return nil
}
