package svbcam

import (
	"encoding/binary"
	"fmt"
	"io"
	"strings"
)

// CFAPattern identifies the 2x2 color filter tile of a sensor.
type CFAPattern uint8

const (
	RGGB CFAPattern = iota
	BGGR
	GRBG
	GBRG
)

func (p CFAPattern) String() string {
	switch p {
	case RGGB:
		return "RGGB"
	case BGGR:
		return "BGGR"
	case GRBG:
		return "GRBG"
	case GBRG:
		return "GBRG"
	default:
		return fmt.Sprintf("CFAPattern(%d)", uint8(p))
	}
}

// Valid reports whether p is one of the four tile arrangements.
func (p CFAPattern) Valid() bool { return p <= GBRG }

// Channel of a single pixel.
type Channel uint8

const (
	Red Channel = iota
	Green
	Blue
)

func (c Channel) String() string {
	switch c {
	case Red:
		return "R"
	case Green:
		return "G"
	case Blue:
		return "B"
	default:
		return "?"
	}
}

// tiles holds, per pattern, the channel at (even,even), (odd,even), (even,odd), (odd,odd) in (x,y).
var tiles = [4][4]Channel{
	RGGB: {Red, Green, Green, Blue},
	BGGR: {Blue, Green, Green, Red},
	GRBG: {Green, Red, Blue, Green},
	GBRG: {Green, Blue, Red, Green},
}

// ChannelAt returns the physical channel sampled at (x, y). p must be valid.
func (p CFAPattern) ChannelAt(x, y int) Channel {
	return tiles[p][(y&1)<<1|(x&1)]
}

// CFAFromCode resolves the numeric pattern code reported by the camera.
func CFAFromCode(code uint32) (CFAPattern, error) {
	if code > uint32(GBRG) {
		return 0, fmt.Errorf("%w: code %d", ErrInvalidCFAPattern, code)
	}
	return CFAPattern(code), nil
}

// MustCFA is CFAFromCode for setup paths where a bad code means the driver is broken.
func MustCFA(code uint32) CFAPattern {
	p, err := CFAFromCode(code)
	if err != nil {
		panic(err)
	}
	return p
}

// ParseCFA parses a pattern name such as "rggb".
func ParseCFA(s string) (CFAPattern, error) {
	for p := RGGB; p <= GBRG; p++ {
		if strings.EqualFold(s, p.String()) {
			return p, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidCFAPattern, s)
}

// Demosaic selects the interpolation used to rebuild missing channels.
type Demosaic int

const (
	None Demosaic = iota
	NearestNeighbour
	Linear
	Cubic
)

func (d Demosaic) String() string {
	switch d {
	case None:
		return "none"
	case NearestNeighbour:
		return "nearest"
	case Linear:
		return "linear"
	case Cubic:
		return "cubic"
	default:
		return fmt.Sprintf("Demosaic(%d)", int(d))
	}
}

// ParseDemosaic parses an algorithm name.
func ParseDemosaic(s string) (Demosaic, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "none":
		return None, nil
	case "nearest", "nn", "nearestneighbour", "nearestneighbor":
		return NearestNeighbour, nil
	case "linear", "bilinear":
		return Linear, nil
	case "cubic", "bicubic":
		return Cubic, nil
	}
	return None, fmt.Errorf("%w: %q", ErrUnknownDemosaic, s)
}

// Geometry is the part of a camera's state needed to type a raw frame.
type Geometry struct {
	Width    int
	Height   int
	BitDepth int

	// Channels is 1 for mosaiced data and 3 for RGB24 frames; 0 means 1.
	Channels int

	// ByteOrder of 16-bit samples; nil means little endian.
	ByteOrder binary.ByteOrder

	Pattern CFAPattern
}

// RawBuffer is a sensor readout together with the geometry it was captured with.
type RawBuffer struct {
	Data []byte
	Geometry
}

// NewRawBuffer types data with geom and validates the length invariant.
func NewRawBuffer(data []byte, geom Geometry) (*RawBuffer, error) {
	raw := &RawBuffer{Data: data, Geometry: geom}
	if err := raw.Validate(); err != nil {
		return nil, err
	}
	return raw, nil
}

// BytesPerSample is 1 for 8-bit data and 2 for 16-bit data, 0 otherwise.
func (g Geometry) BytesPerSample() int {
	switch g.BitDepth {
	case 8:
		return 1
	case 16:
		return 2
	default:
		return 0
	}
}

// NumChannels returns Channels with the zero value read as 1.
func (g Geometry) NumChannels() int {
	if g.Channels == 0 {
		return 1
	}
	return g.Channels
}

// Order returns the sample byte order, little endian unless set.
func (g Geometry) Order() binary.ByteOrder {
	if g.ByteOrder == nil {
		return binary.LittleEndian
	}
	return g.ByteOrder
}

// MaxFrameLen bounds the data length of a single frame.
const MaxFrameLen = 1 << 30

// frameLen is the byte length a buffer with this geometry must have. It fails
// rather than overflow, and for frames larger than MaxFrameLen.
func (g Geometry) frameLen() (int, error) {
	if g.Width <= 0 || g.Height <= 0 {
		return 0, fmt.Errorf("%w: non-positive geometry %dx%d", ErrBufferSizeMismatch, g.Width, g.Height)
	}
	n := 1
	for _, f := range []int{g.Width, g.Height, g.BytesPerSample(), g.NumChannels()} {
		if f <= 0 || f > MaxFrameLen/n {
			return 0, fmt.Errorf("%w: %dx%d at %d bits x%d exceeds %d bytes",
				ErrBufferSizeMismatch, g.Width, g.Height, g.BitDepth, g.NumChannels(), MaxFrameLen)
		}
		n *= f
	}
	return n, nil
}

// readFrame reads exactly n bytes of frame data without trusting n for the allocation.
func readFrame(r io.Reader, n int) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, int64(n)))
	if err != nil {
		return nil, err
	}
	if len(data) != n {
		return nil, fmt.Errorf("%w: got %d of %d bytes", ErrBufferSizeMismatch, len(data), n)
	}
	return data, nil
}

// Validate checks depth, dimensions and the length invariant.
func (r *RawBuffer) Validate() error {
	if r.BytesPerSample() == 0 {
		return fmt.Errorf("%w: %d bits", ErrUnsupportedDepth, r.BitDepth)
	}
	want, err := r.frameLen()
	if err != nil {
		return err
	}
	if len(r.Data) != want {
		return fmt.Errorf("%w: got %d bytes, %dx%d at %d bits x%d needs %d",
			ErrBufferSizeMismatch, len(r.Data), r.Width, r.Height, r.BitDepth, r.NumChannels(), want)
	}
	return nil
}

// Sample returns the raw value at pixel index i of a single-channel buffer.
func (r *RawBuffer) Sample(i int) uint16 {
	if r.BitDepth == 8 {
		return uint16(r.Data[i])
	}
	return r.Order().Uint16(r.Data[2*i:])
}
