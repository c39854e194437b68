package svb

import (
	"fmt"
	"strings"
)

// ImageType is the sample format a camera delivers.
type ImageType int

const (
	RAW8 ImageType = iota
	RAW10
	RAW12
	RAW14
	RAW16
	Y8
	Y10
	Y12
	Y14
	Y16
	RGB24
	RGB32
)

var imageTypeNames = [...]string{"RAW8", "RAW10", "RAW12", "RAW14", "RAW16", "Y8", "Y10", "Y12", "Y14", "Y16", "RGB24", "RGB32"}

func (t ImageType) String() string {
	if t >= 0 && int(t) < len(imageTypeNames) {
		return imageTypeNames[t]
	}
	return fmt.Sprintf("ImageType(%d)", int(t))
}

// Valid reports whether t is a known type.
func (t ImageType) Valid() bool { return t >= RAW8 && t <= RGB32 }

// ParseImageType parses a name such as "raw16".
func ParseImageType(s string) (ImageType, error) {
	for i, name := range imageTypeNames {
		if strings.EqualFold(s, name) {
			return ImageType(i), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidImageType, s)
}

// BytesPerPixel is the size of one pixel in a frame buffer.
func (t ImageType) BytesPerPixel() int {
	switch t {
	case RAW8, Y8:
		return 1
	case RAW10, RAW12, RAW14, RAW16, Y10, Y12, Y14, Y16:
		return 2
	case RGB24:
		return 3
	case RGB32:
		return 4
	}
	return 0
}

// BitDepth is the storage depth of one sample. 10 to 14-bit data sits in 16-bit words.
func (t ImageType) BitDepth() int {
	switch t {
	case RAW8, Y8, RGB24, RGB32:
		return 8
	case RAW10, RAW12, RAW14, RAW16, Y10, Y12, Y14, Y16:
		return 16
	}
	return 0
}

// Channels is the number of samples per pixel.
func (t ImageType) Channels() int {
	switch t {
	case RGB24:
		return 3
	case RGB32:
		return 4
	}
	return 1
}

// Mosaiced reports whether frames of this type carry undemosaiced sensor data.
func (t ImageType) Mosaiced() bool { return t >= RAW8 && t <= RAW16 }

// MarshalText encodes the type by name.
func (t ImageType) MarshalText() ([]byte, error) { return []byte(t.String()), nil }

// UnmarshalText accepts the names produced by MarshalText.
func (t *ImageType) UnmarshalText(b []byte) error {
	v, err := ParseImageType(string(b))
	if err != nil {
		return err
	}
	*t = v
	return nil
}
