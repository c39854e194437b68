// Package svb holds the data model of the SVBONY camera SDK: its error codes, image
// types, ROI and the fixed-size structs it fills in.
package svb

import (
	"errors"
	"fmt"
)

// Error is a status code returned by an SDK entry point.
type Error int

// Codes in the order the SDK numbers them.
const (
	Success Error = iota
	ErrInvalidIndex
	ErrInvalidID
	ErrInvalidControlType
	ErrCameraClosed
	ErrCameraRemoved
	ErrInvalidPath
	ErrInvalidFileFormat
	ErrInvalidSize
	ErrInvalidImageType
	ErrOutOfBoundary
	ErrTimeout
	ErrInvalidSequence
	ErrBufferTooSmall
	ErrVideoModeActive
	ErrExposureInProgress
	ErrGeneral
	ErrInvalidMode
	ErrInvalidDirection
	ErrUnknownSensorType
)

// ErrUnknown is wrapped by FromCode for codes outside the table.
var ErrUnknown = errors.New("unknown SDK error code")

// ErrCodes maps each known code to its description.
var ErrCodes = map[Error]string{
	Success:               "success",
	ErrInvalidIndex:       "invalid index: no camera connected or index value out of boundary",
	ErrInvalidID:          "invalid ID",
	ErrInvalidControlType: "invalid control type",
	ErrCameraClosed:       "camera closed: camera didn't open",
	ErrCameraRemoved:      "camera removed: failed to find the camera, maybe it has been removed",
	ErrInvalidPath:        "invalid path: cannot find the path of the file",
	ErrInvalidFileFormat:  "invalid file format",
	ErrInvalidSize:        "invalid size: wrong video format size",
	ErrInvalidImageType:   "invalid image type: unsupported image format",
	ErrOutOfBoundary:      "out of boundary: the start position is out of boundary",
	ErrTimeout:            "timeout",
	ErrInvalidSequence:    "invalid sequence: stop capture first",
	ErrBufferTooSmall:     "buffer too small",
	ErrVideoModeActive:    "video mode active",
	ErrExposureInProgress: "exposure in progress",
	ErrGeneral:            "general error, e.g. value is out of valid range",
	ErrInvalidMode:        "invalid mode: the current mode is wrong",
	ErrInvalidDirection:   "invalid guide direction",
	ErrUnknownSensorType:  "unknown sensor type",
}

func (e Error) Error() string {
	if s, ok := ErrCodes[e]; ok {
		return fmt.Sprintf("%d - %s", int(e), s)
	}
	return fmt.Sprintf("%d - unknown error code", int(e))
}

// FromCode returns nil for Success, the matching Error for a known code and an error
// wrapping ErrUnknown for anything else.
func FromCode(code int) error {
	if code == int(Success) {
		return nil
	}
	e := Error(code)
	if _, ok := ErrCodes[e]; !ok {
		return fmt.Errorf("%w: %d", ErrUnknown, code)
	}
	return e
}
