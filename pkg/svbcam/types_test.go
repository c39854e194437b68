package svbcam

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCFAFromCode(t *testing.T) {
	for code, want := range []CFAPattern{RGGB, BGGR, GRBG, GBRG} {
		got, err := CFAFromCode(uint32(code))
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
	for _, code := range []uint32{4, 5, 255, 1 << 31} {
		_, err := CFAFromCode(code)
		assert.ErrorIs(t, err, ErrInvalidCFAPattern)
	}
}

func TestMustCFA(t *testing.T) {
	assert.Equal(t, GRBG, MustCFA(2))
	assert.Panics(t, func() { MustCFA(4) })
}

func TestChannelAt(t *testing.T) {
	cases := map[CFAPattern][4]Channel{
		RGGB: {Red, Green, Green, Blue},
		BGGR: {Blue, Green, Green, Red},
		GRBG: {Green, Red, Blue, Green},
		GBRG: {Green, Blue, Red, Green},
	}
	for p, tile := range cases {
		assert.Equal(t, tile[0], p.ChannelAt(0, 0), p)
		assert.Equal(t, tile[1], p.ChannelAt(1, 0), p)
		assert.Equal(t, tile[2], p.ChannelAt(0, 1), p)
		assert.Equal(t, tile[3], p.ChannelAt(1, 1), p)
		// the tile repeats
		assert.Equal(t, tile[3], p.ChannelAt(7, 9), p)
	}
}

func TestParseCFA(t *testing.T) {
	p, err := ParseCFA("gbrg")
	require.NoError(t, err)
	assert.Equal(t, GBRG, p)

	_, err = ParseCFA("RGBG")
	assert.ErrorIs(t, err, ErrInvalidCFAPattern)
}

func TestParseDemosaic(t *testing.T) {
	cases := map[string]Demosaic{
		"none":    None,
		"NN":      NearestNeighbour,
		"nearest": NearestNeighbour,
		"linear":  Linear,
		" Cubic ": Cubic,
	}
	for in, want := range cases {
		got, err := ParseDemosaic(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	_, err := ParseDemosaic("lanczos")
	assert.ErrorIs(t, err, ErrUnknownDemosaic)

	for _, d := range []Demosaic{None, NearestNeighbour, Linear, Cubic} {
		got, err := ParseDemosaic(d.String())
		require.NoError(t, err)
		assert.Equal(t, d, got)
	}
}

func TestRawBufferValidate(t *testing.T) {
	_, err := NewRawBuffer(make([]byte, 8), Geometry{Width: 2, Height: 2, BitDepth: 16})
	assert.NoError(t, err)

	_, err = NewRawBuffer(make([]byte, 12), Geometry{Width: 2, Height: 2, BitDepth: 8, Channels: 3})
	assert.NoError(t, err)

	_, err = NewRawBuffer(make([]byte, 7), Geometry{Width: 2, Height: 2, BitDepth: 16})
	assert.ErrorIs(t, err, ErrBufferSizeMismatch)

	_, err = NewRawBuffer(make([]byte, 4), Geometry{Width: 2, Height: 2, BitDepth: 10})
	assert.ErrorIs(t, err, ErrUnsupportedDepth)
}

func TestWriteErrorMessage(t *testing.T) {
	err := &WriteError{Op: "open", Path: "/x/y.raw", Err: assert.AnError}
	assert.Equal(t, "open /x/y.raw: "+assert.AnError.Error(), err.Error())
	assert.Equal(t, "write: "+assert.AnError.Error(), (&WriteError{Op: "write", Err: assert.AnError}).Error())
}
