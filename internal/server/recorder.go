package server

import (
	"os"
	"path/filepath"
	"time"

	"svbcam/pkg/svbcam"
)

// Recorder archives served frames in yyyy-mm-dd subfolders of Root.
type Recorder struct {
	// Root is the archive folder; empty disables the recorder
	Root string

	// Enabled toggles recording without losing Root
	Enabled bool
}

func (r *Recorder) active() bool { return r != nil && r.Enabled && r.Root != "" }

// Save writes one encoded frame taken at t and returns the file name. The extension
// picks the file suffix.
func (r *Recorder) Save(ext string, data []byte, t time.Time) (string, error) {
	fldr := filepath.Join(r.Root, t.Format("2006-01-02"))
	if err := os.MkdirAll(fldr, 0o777); err != nil {
		return "", &svbcam.WriteError{Op: "mkdir", Path: fldr, Err: err}
	}
	fn := svbcam.GenerateFilename(fldr, ext, t)
	if err := os.WriteFile(fn, data, 0o666); err != nil {
		return "", &svbcam.WriteError{Op: "write", Path: fn, Err: err}
	}
	return fn, nil
}
