package svbcam

import (
	"fmt"
	"io"
	"os"
)

// DebayeredBuffer is an interleaved 8-bit R,G,B frame in row-major order.
type DebayeredBuffer struct {
	Pix    []byte
	Width  int
	Height int
}

// Debayer rebuilds the two missing colour channels of every pixel of a mosaiced frame.
//
// The native sample of each pixel is kept as is. 16-bit data is interpolated at full depth and
// reduced to the high byte on output. The result is a fresh buffer; raw is not modified.
func Debayer(raw *RawBuffer, alg Demosaic) (*DebayeredBuffer, error) {
	if raw == nil {
		return nil, fmt.Errorf("%w: nil buffer", ErrBufferSizeMismatch)
	}
	if err := raw.Validate(); err != nil {
		return nil, err
	}
	if n := raw.NumChannels(); n != 1 {
		return nil, fmt.Errorf("%w: debayer needs a mosaiced buffer, got %d channels", ErrUnsupportedChannelCount, n)
	}
	if !raw.Pattern.Valid() {
		return nil, fmt.Errorf("%w: %s", ErrInvalidCFAPattern, raw.Pattern)
	}
	interp, ok := interpolators[alg]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownDemosaic, alg)
	}

	logger.Debug("starting debayer",
		"width", raw.Width, "height", raw.Height, "depth", raw.BitDepth,
		"pattern", raw.Pattern, "algorithm", alg)

	m := newMosaic(raw)
	out := make([]byte, raw.Width*raw.Height*3)
	var rgb [3]int
	for y := 0; y < m.h; y++ {
		for x := 0; x < m.w; x++ {
			native := m.channel(x, y)
			for c := Red; c <= Blue; c++ {
				switch {
				case c == native:
					rgb[c] = m.at(x, y)
				case interp != nil:
					rgb[c] = interp(m, x, y, c)
				default:
					rgb[c] = 0
				}
			}
			o := (y*m.w + x) * 3
			out[o] = m.toByte(rgb[Red])
			out[o+1] = m.toByte(rgb[Green])
			out[o+2] = m.toByte(rgb[Blue])
		}
	}

	return &DebayeredBuffer{Pix: out, Width: raw.Width, Height: raw.Height}, nil
}

// Image assembles the buffer into an RGBImage.
func (d *DebayeredBuffer) Image() (*RGBImage, error) {
	return Assemble(d.Pix, d.Width, d.Height)
}

// ReadRaw reads exactly one frame of the given geometry from r.
func ReadRaw(r io.Reader, geom Geometry) (*RawBuffer, error) {
	raw := &RawBuffer{Geometry: geom}
	if raw.BytesPerSample() == 0 {
		return nil, fmt.Errorf("%w: %d bits", ErrUnsupportedDepth, geom.BitDepth)
	}
	want, err := geom.frameLen()
	if err != nil {
		return nil, err
	}
	if raw.Data, err = readFrame(r, want); err != nil {
		return nil, fmt.Errorf("reading raw frame: %w", err)
	}
	return raw, nil
}

// LoadRaw reads a raw dump from disk. The file must hold exactly one frame.
func LoadRaw(path string, geom Geometry) (*RawBuffer, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("opening raw file: %w", err)
	}
	return NewRawBuffer(data, geom)
}
