package svbcam

import (
	"bytes"
	"fmt"
)

const (
	// FitsCardLen is the length of one header card.
	FitsCardLen = 80

	// FitsBlockLen is the FITS logical record length.
	FitsBlockLen = 2880
)

// FitsOptions tunes EncodeFitsWithOptions.
type FitsOptions struct {
	// PadData zero-pads the data unit to a 2880 byte boundary. EncodeFits leaves the
	// data unpadded so the output is the raw frame behind a FITS header.
	PadData bool
}

type fitsCard struct {
	keyword string
	value   string
	comment string
}

// EncodeFits wraps a mosaiced frame in a single-HDU FITS container.
//
// The header holds SIMPLE, BITPIX, NAXIS, NAXIS1, NAXIS2 and END, padded with spaces to
// a multiple of 2880 bytes. The data follows verbatim without padding, which strict FITS
// readers may reject; use EncodeFitsWithOptions or WriteStandardFits for those.
func EncodeFits(raw *RawBuffer) ([]byte, error) {
	return EncodeFitsWithOptions(raw, FitsOptions{})
}

// EncodeFitsWithOptions is EncodeFits with options.
func EncodeFitsWithOptions(raw *RawBuffer, opts FitsOptions) ([]byte, error) {
	if raw == nil {
		return nil, fmt.Errorf("%w: nil buffer", ErrBufferSizeMismatch)
	}
	if n := raw.NumChannels(); n != 1 {
		return nil, fmt.Errorf("%w: FITS output takes mono frames, got %d channels", ErrUnsupportedChannelCount, n)
	}
	if err := raw.Validate(); err != nil {
		return nil, err
	}

	cards := []fitsCard{
		{"SIMPLE", "T", "file conforms to FITS standard"},
		{"BITPIX", fmt.Sprint(raw.BitDepth), "number of bits per data pixel"},
		{"NAXIS", "2", "number of data axes"},
		{"NAXIS1", fmt.Sprint(raw.Width), "length of data axis 1"},
		{"NAXIS2", fmt.Sprint(raw.Height), "length of data axis 2"},
	}

	var buf bytes.Buffer
	buf.Grow(FitsBlockLen + len(raw.Data) + FitsBlockLen)
	for _, c := range cards {
		card := c.format()
		if len(card) != FitsCardLen {
			logger.Error("malformed FITS card", "keyword", c.keyword, "length", len(card))
			return nil, fmt.Errorf("%w: FITS card %s is %d bytes", ErrInternalInvariant, c.keyword, len(card))
		}
		buf.WriteString(card)
	}
	buf.WriteString(padCard("END"))

	padTo(&buf, FitsBlockLen, ' ')
	headerLen := buf.Len()

	buf.Write(raw.Data)
	if opts.PadData {
		padTo(&buf, FitsBlockLen, 0)
	}
	logger.Debug("encoded FITS", "header", headerLen, "data", buf.Len()-headerLen, "padded", opts.PadData)
	return buf.Bytes(), nil
}

// format renders a fixed-format card: keyword in columns 1-8, "= " in 9-10, value
// right-justified in 11-30, then the comment.
func (c fitsCard) format() string {
	return padCard(fmt.Sprintf("%-8s= %20s / %s", c.keyword, c.value, c.comment))
}

// padCard pads s with spaces to a full card. Longer strings are returned unchanged.
func padCard(s string) string {
	if len(s) >= FitsCardLen {
		return s
	}
	return s + string(bytes.Repeat([]byte{' '}, FitsCardLen-len(s)))
}

func padTo(buf *bytes.Buffer, block int, fill byte) {
	if rem := buf.Len() % block; rem != 0 {
		buf.Write(bytes.Repeat([]byte{fill}, block-rem))
	}
}
