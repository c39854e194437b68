package svb

import "fmt"

// ROIFormat is the region of interest a camera reads out. Width and Height are in binned pixels.
type ROIFormat struct {
	StartX int `json:"startX" yaml:"startX"`
	StartY int `json:"startY" yaml:"startY"`
	Width  int `json:"width" yaml:"width"`
	Height int `json:"height" yaml:"height"`
	Bin    int `json:"bin" yaml:"bin"`
}

func (r ROIFormat) String() string {
	return fmt.Sprintf("%dx%d+%d+%d bin %d", r.Width, r.Height, r.StartX, r.StartY, r.Bin)
}

// BufferSize is the size in bytes of one frame of type t.
func (r ROIFormat) BufferSize(t ImageType) int {
	return r.Width * r.Height * t.BytesPerPixel()
}

// Validate checks the ROI against the sensor size of prop.
func (r ROIFormat) Validate(prop CameraProperty) error {
	if r.Width <= 0 || r.Height <= 0 || r.Bin <= 0 {
		return fmt.Errorf("%w: %s", ErrInvalidSize, r)
	}
	if r.StartX < 0 || r.StartY < 0 {
		return fmt.Errorf("%w: %s", ErrOutOfBoundary, r)
	}
	if prop.MaxWidth > 0 && (r.StartX+r.Width)*r.Bin > prop.MaxWidth ||
		prop.MaxHeight > 0 && (r.StartY+r.Height)*r.Bin > prop.MaxHeight {
		return fmt.Errorf("%w: %s exceeds %dx%d", ErrOutOfBoundary, r, prop.MaxWidth, prop.MaxHeight)
	}
	return nil
}
