package svbcam

import (
	"errors"
	"fmt"

	"svbcam/internal/logging"
)

var logger = logging.Logger("svbcam")

var (
	// ErrUnsupportedDepth is returned for sample depths other than 8 or 16 bits.
	ErrUnsupportedDepth = errors.New("unsupported bit depth")

	// ErrBufferSizeMismatch is returned when a buffer length does not match its declared geometry.
	ErrBufferSizeMismatch = errors.New("buffer size mismatch")

	// ErrInvalidCFAPattern marks a color filter array code outside 0-3. It indicates a broken
	// camera or driver contract and is fatal for the session that resolved it.
	ErrInvalidCFAPattern = errors.New("invalid CFA pattern")

	// ErrUnsupportedChannelCount is returned when a 3-channel buffer reaches a mono-only consumer.
	ErrUnsupportedChannelCount = errors.New("unsupported channel count")

	// ErrInternalInvariant is a defect in this package, not a bad input.
	ErrInternalInvariant = errors.New("internal invariant violation")

	// ErrUnknownDemosaic is returned for an algorithm outside the Demosaic constants.
	ErrUnknownDemosaic = errors.New("unknown demosaic algorithm")

	// ErrUnsupportedFormat is returned for image container extensions other than jpg, png and tiff.
	ErrUnsupportedFormat = errors.New("unsupported image format")
)

// WriteError reports a failure to open or write an output sink.
type WriteError struct {
	// Op is the failed operation, "open" or "write"
	Op string

	// Path is the destination, empty for plain writers
	Path string

	Err error
}

// Error satisfies the error interface
func (e *WriteError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

// Unwrap returns the underlying I/O error
func (e *WriteError) Unwrap() error { return e.Err }
