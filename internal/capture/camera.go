// Package capture reads frames from a camera together with the geometry they were taken with.
package capture

import (
	"fmt"
	"time"

	"svbcam/internal/logging"
	"svbcam/pkg/svb"
	"svbcam/pkg/svbcam"
)

var logger = logging.Logger("capture")

// Camera is an open camera. GetFrame returns svb.ErrTimeout when no frame arrived
// within wait; other errors are not retried. RGB24 frames are packed R, G, B.
type Camera interface {
	Info() svb.CameraInfo
	Property() svb.CameraProperty
	ROI() (svb.ROIFormat, error)
	ImageType() (svb.ImageType, error)
	GetFrame(wait time.Duration) ([]byte, error)
}

// Snapshot is the camera state a frame must be interpreted with.
type Snapshot struct {
	ROI     svb.ROIFormat     `json:"roi"`
	Type    svb.ImageType     `json:"type"`
	Pattern svbcam.CFAPattern `json:"-"`
}

// TakeSnapshot reads geometry, sample format and CFA pattern from cam. An unknown CFA
// code is returned wrapped in svbcam.ErrInvalidCFAPattern and should end the session.
func TakeSnapshot(cam Camera) (Snapshot, error) {
	roi, err := cam.ROI()
	if err != nil {
		return Snapshot{}, fmt.Errorf("reading ROI: %w", err)
	}
	typ, err := cam.ImageType()
	if err != nil {
		return Snapshot{}, fmt.Errorf("reading image type: %w", err)
	}
	if typ.BitDepth() == 0 {
		return Snapshot{}, fmt.Errorf("%w: %s", svb.ErrInvalidImageType, typ)
	}
	pattern, err := cam.Property().Pattern()
	if err != nil {
		return Snapshot{}, fmt.Errorf("camera %s: %w", cam.Info().Name(), err)
	}
	return Snapshot{ROI: roi, Type: typ, Pattern: pattern}, nil
}

// Geometry converts the snapshot into the geometry of a raw buffer.
func (s Snapshot) Geometry() svbcam.Geometry {
	return svbcam.Geometry{
		Width:    s.ROI.Width,
		Height:   s.ROI.Height,
		BitDepth: s.Type.BitDepth(),
		Channels: s.Type.Channels(),
		Pattern:  s.Pattern,
	}
}

// RawBuffer types a frame read under this snapshot.
func (s Snapshot) RawBuffer(frame []byte) (*svbcam.RawBuffer, error) {
	return svbcam.NewRawBuffer(frame, s.Geometry())
}

// BufferSize is the frame size the camera should deliver.
func (s Snapshot) BufferSize() int { return s.ROI.BufferSize(s.Type) }
