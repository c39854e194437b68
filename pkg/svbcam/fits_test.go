package svbcam

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/astrogo/fitsio"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeFitsLayout(t *testing.T) {
	raw := &RawBuffer{Data: make([]byte, 64), Geometry: Geometry{Width: 8, Height: 8, BitDepth: 8}}
	out, err := EncodeFits(raw)
	require.NoError(t, err)

	require.Len(t, out, 2880+64)
	assert.Equal(t, make([]byte, 64), out[2880:])

	cards := fitsCards(out)
	require.Len(t, cards, 6)
	for _, c := range cards {
		assert.Len(t, c, 80)
	}
	keywords := make([]string, len(cards))
	for i, c := range cards {
		keywords[i] = strings.TrimSpace(c[:8])
	}
	assert.Equal(t, []string{"SIMPLE", "BITPIX", "NAXIS", "NAXIS1", "NAXIS2", "END"}, keywords)

	assert.Equal(t, "SIMPLE  = "+strings.Repeat(" ", 19)+"T / file conforms to FITS standard", strings.TrimRight(cards[0], " "))
	assert.Equal(t, "BITPIX  = "+strings.Repeat(" ", 19)+"8", cards[1][:30])

	// header padding is spaces from END to the block boundary
	assert.Equal(t, bytes.Repeat([]byte{' '}, 2880-6*80), out[6*80:2880])
}

func TestEncodeFitsValueColumns(t *testing.T) {
	for _, c := range []struct {
		width int
		value string
	}{
		{999, strings.Repeat(" ", 17) + "999"},
		{1000, strings.Repeat(" ", 16) + "1000"},
	} {
		raw := &RawBuffer{Data: make([]byte, c.width*2*2), Geometry: Geometry{Width: c.width, Height: 2, BitDepth: 16}}
		out, err := EncodeFits(raw)
		require.NoError(t, err)
		card := fitsCards(out)[3]
		assert.Equal(t, "NAXIS1  = ", card[:10])
		assert.Equal(t, c.value, card[10:30])
		assert.Equal(t, " / ", card[30:33])

		bitpix := fitsCards(out)[1]
		assert.Equal(t, strings.Repeat(" ", 18)+"16", bitpix[10:30])
	}
}

func TestEncodeFitsDataVerbatim(t *testing.T) {
	data := []byte{0x01, 0x02, 0x03, 0x04, 0xfe, 0xff, 0x00, 0x80}
	raw := &RawBuffer{Data: data, Geometry: Geometry{Width: 2, Height: 2, BitDepth: 16}}
	out, err := EncodeFits(raw)
	require.NoError(t, err)
	assert.Equal(t, data, out[2880:])

	again, err := EncodeFits(raw)
	require.NoError(t, err)
	assert.Equal(t, out, again)
}

func TestEncodeFitsPadData(t *testing.T) {
	raw := &RawBuffer{Data: bytes.Repeat([]byte{7}, 100), Geometry: Geometry{Width: 10, Height: 10, BitDepth: 8}}
	out, err := EncodeFitsWithOptions(raw, FitsOptions{PadData: true})
	require.NoError(t, err)
	require.Len(t, out, 2*2880)
	assert.Equal(t, raw.Data, out[2880:2980])
	assert.Equal(t, make([]byte, 2880-100), out[2980:])

	f, err := fitsio.Open(bytes.NewReader(out))
	require.NoError(t, err)
	defer f.Close()
	hdr := f.HDU(0).Header()
	assert.Equal(t, 8, hdr.Bitpix())
	assert.Equal(t, []int{10, 10}, hdr.Axes())
}

func TestEncodeFitsRejects(t *testing.T) {
	_, err := EncodeFits(&RawBuffer{Data: make([]byte, 12), Geometry: Geometry{Width: 2, Height: 2, BitDepth: 8, Channels: 3}})
	assert.ErrorIs(t, err, ErrUnsupportedChannelCount)

	_, err = EncodeFits(&RawBuffer{Data: make([]byte, 4), Geometry: Geometry{Width: 2, Height: 2, BitDepth: 32}})
	assert.ErrorIs(t, err, ErrUnsupportedDepth)

	_, err = EncodeFits(&RawBuffer{Data: make([]byte, 5), Geometry: Geometry{Width: 2, Height: 2, BitDepth: 8}})
	assert.ErrorIs(t, err, ErrBufferSizeMismatch)
}

func TestFitsCardFormatLength(t *testing.T) {
	c := fitsCard{"NAXIS1", "12345", "length of data axis 1"}
	assert.Len(t, c.format(), 80)

	long := fitsCard{"COMMENT", "x", strings.Repeat("y", 80)}
	assert.Greater(t, len(long.format()), 80)
}

func TestDecodeFitsRoundTrip(t *testing.T) {
	raw := mosaicOf(t, 5, 3, 16, RGGB, func(x, y int) uint16 { return uint16(x*1000 + y*7) })
	for _, pad := range []bool{false, true} {
		out, err := EncodeFitsWithOptions(raw, FitsOptions{PadData: pad})
		require.NoError(t, err)
		img, err := DecodeFits(bytes.NewReader(out))
		require.NoError(t, err)
		assert.Equal(t, raw.Data, img.Raw.Data)
		assert.Equal(t, 5, img.Raw.Width)
		assert.Equal(t, 3, img.Raw.Height)
		assert.Equal(t, 16, img.Raw.BitDepth)
		assert.Equal(t, "T", img.Header["SIMPLE"])
	}
}

func TestDecodeFitsTruncated(t *testing.T) {
	raw := &RawBuffer{Data: make([]byte, 16), Geometry: Geometry{Width: 4, Height: 4, BitDepth: 8}}
	out, err := EncodeFits(raw)
	require.NoError(t, err)

	_, err = DecodeFits(bytes.NewReader(out[:len(out)-1]))
	assert.ErrorIs(t, err, ErrBufferSizeMismatch)

	_, err = DecodeFits(bytes.NewReader(out[:100]))
	assert.Error(t, err)
}

// fitsHeader encodes a header block with the given geometry cards.
func fitsHeader(bitpix, width, height string) []byte {
	var buf bytes.Buffer
	for _, c := range []fitsCard{
		{"SIMPLE", "T", ""},
		{"BITPIX", bitpix, ""},
		{"NAXIS", "2", ""},
		{"NAXIS1", width, ""},
		{"NAXIS2", height, ""},
	} {
		buf.WriteString(c.format())
	}
	buf.WriteString(padCard("END"))
	padTo(&buf, FitsBlockLen, ' ')
	return buf.Bytes()
}

func TestDecodeFitsOversizedAxes(t *testing.T) {
	for _, c := range []struct {
		name          string
		width, height string
	}{
		{"overflow", "4611686018427387904", "1"},
		{"wraps positive", "3037000500", "3037000500"},
		{"above limit", "65536", "16385"},
	} {
		t.Run(c.name, func(t *testing.T) {
			hdr := fitsHeader("16", c.width, c.height)
			require.Len(t, hdr, FitsBlockLen)
			assert.NotPanics(t, func() {
				_, err := DecodeFits(bytes.NewReader(hdr))
				assert.ErrorIs(t, err, ErrBufferSizeMismatch)
			})
		})
	}
}

func TestDecodeFitsShortDataUnit(t *testing.T) {
	// a plausible header over a missing data unit fails on the read
	hdr := fitsHeader("16", "8192", "8192")
	_, err := DecodeFits(bytes.NewReader(append(hdr, 1, 2, 3)))
	assert.ErrorIs(t, err, ErrBufferSizeMismatch)
	assert.Contains(t, err.Error(), "got 3 of 134217728 bytes")
}

func TestWriteStandardFits(t *testing.T) {
	raw := mosaicOf(t, 4, 2, 16, GBRG, func(x, y int) uint16 { return uint16(x*20000 + y) })
	p := GBRG
	meta := FrameMetadata{
		Instrument: "SV305",
		Pattern:    &p,
		Bin:        2,
		StartX:     16,
		StartY:     8,
		Time:       time.Date(2024, 3, 1, 21, 4, 5, 0, time.UTC),
	}

	var buf bytes.Buffer
	require.NoError(t, WriteStandardFits(&buf, raw, meta.Cards()...))
	assert.Zero(t, buf.Len()%2880)

	img, err := DecodeFits(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	assert.Equal(t, raw.Data, img.Raw.Data)
	assert.Equal(t, GBRG, img.Raw.Pattern)
	assert.Equal(t, "SV305", img.Header["INSTRUME"])
	assert.Equal(t, "2024-03-01T21:04:05.000", img.Header["DATE-OBS"])
	bin, ok := img.Int("XBINNING")
	assert.True(t, ok)
	assert.Equal(t, 2, bin)

	f, err := fitsio.Open(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	defer f.Close()
	assert.Equal(t, 16, f.HDU(0).Header().Bitpix())
	assert.Equal(t, []int{4, 2}, f.HDU(0).Header().Axes())
}

func TestWriteStandardFits8Bit(t *testing.T) {
	raw := mosaicOf(t, 3, 3, 8, RGGB, func(x, y int) uint16 { return uint16(x + 3*y) })
	var buf bytes.Buffer
	require.NoError(t, WriteStandardFits(&buf, raw))
	img, err := DecodeFits(&buf)
	require.NoError(t, err)
	assert.Equal(t, raw.Data, img.Raw.Data)

	err = WriteStandardFits(&buf, &RawBuffer{Data: make([]byte, 27), Geometry: Geometry{Width: 3, Height: 3, BitDepth: 8, Channels: 3}})
	assert.ErrorIs(t, err, ErrUnsupportedChannelCount)
}

// fitsCards splits an encoded header into its 80 byte cards, up to and including END.
func fitsCards(b []byte) []string {
	var cards []string
	for len(b) >= FitsCardLen {
		card := string(b[:FitsCardLen])
		cards = append(cards, card)
		if bytes.HasPrefix(b, []byte("END ")) {
			break
		}
		b = b[FitsCardLen:]
	}
	return cards
}
