package svbcam

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// ImageFormat is an image container that RGB frames can be exported to.
type ImageFormat int

const (
	JPEG ImageFormat = iota
	PNG
	TIFF
)

// jpegQuality is used by both encoder backends.
const jpegQuality = 90

func (f ImageFormat) String() string {
	switch f {
	case JPEG:
		return "jpg"
	case PNG:
		return "png"
	case TIFF:
		return "tiff"
	default:
		return fmt.Sprintf("ImageFormat(%d)", int(f))
	}
}

// ContentType is the MIME type of the format.
func (f ImageFormat) ContentType() string {
	switch f {
	case JPEG:
		return "image/jpeg"
	case PNG:
		return "image/png"
	case TIFF:
		return "image/tiff"
	default:
		return "application/octet-stream"
	}
}

// ParseImageFormat maps a file extension, with or without the dot, to a format.
func ParseImageFormat(ext string) (ImageFormat, error) {
	switch strings.ToLower(strings.TrimPrefix(ext, ".")) {
	case "jpg", "jpeg":
		return JPEG, nil
	case "png":
		return PNG, nil
	case "tif", "tiff":
		return TIFF, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
}

// EncodeImage writes img to w in format f.
func EncodeImage(w io.Writer, img *RGBImage, f ImageFormat) error {
	if img == nil {
		return fmt.Errorf("%w: nil image", ErrBufferSizeMismatch)
	}
	switch f {
	case JPEG, PNG, TIFF:
	default:
		return fmt.Errorf("%w: %s", ErrUnsupportedFormat, f)
	}
	return encodeImage(w, img, f)
}

// SaveImage writes img to path, choosing the format from the extension.
func SaveImage(path string, img *RGBImage) error {
	f, err := ParseImageFormat(filepath.Ext(path))
	if err != nil {
		return err
	}
	out, err := os.Create(path)
	if err != nil {
		return &WriteError{Op: "open", Path: path, Err: err}
	}
	defer out.Close()
	if err := EncodeImage(out, img, f); err != nil {
		return fmt.Errorf("encoding %s: %w", path, err)
	}
	if err := out.Close(); err != nil {
		return &WriteError{Op: "write", Path: path, Err: err}
	}
	logger.Debug("saved image", "path", path, "format", f)
	return nil
}
