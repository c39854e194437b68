package svbcam

import (
	"fmt"
	"io"
	"time"

	"github.com/astrogo/fitsio"
)

// FrameMetadata describes where a frame came from. Zero fields are left out of the header.
type FrameMetadata struct {
	Instrument string
	Pattern    *CFAPattern
	Bin        int
	StartX     int
	StartY     int
	Time       time.Time
}

// Cards renders the metadata as FITS header cards.
func (m FrameMetadata) Cards() []fitsio.Card {
	var cards []fitsio.Card
	if m.Instrument != "" {
		cards = append(cards, fitsio.Card{Name: "INSTRUME", Value: m.Instrument, Comment: "camera model"})
	}
	if m.Pattern != nil {
		cards = append(cards, fitsio.Card{Name: "BAYERPAT", Value: m.Pattern.String(), Comment: "color filter array tile"})
	}
	if m.Bin > 0 {
		cards = append(cards,
			fitsio.Card{Name: "XBINNING", Value: m.Bin, Comment: "horizontal binning"},
			fitsio.Card{Name: "YBINNING", Value: m.Bin, Comment: "vertical binning"})
	}
	if m.StartX > 0 || m.StartY > 0 {
		cards = append(cards,
			fitsio.Card{Name: "XORGSUBF", Value: m.StartX, Comment: "subframe origin x"},
			fitsio.Card{Name: "YORGSUBF", Value: m.StartY, Comment: "subframe origin y"})
	}
	if !m.Time.IsZero() {
		cards = append(cards, fitsio.Card{Name: "DATE-OBS", Value: m.Time.UTC().Format("2006-01-02T15:04:05.000"), Comment: "frame time, UTC"})
	}
	return cards
}

// WriteStandardFits streams a standard conforming FITS file to w. 16-bit frames are stored
// as signed big-endian values with BZERO 32768, and the data unit is padded.
func WriteStandardFits(w io.Writer, raw *RawBuffer, cards ...fitsio.Card) error {
	if raw == nil {
		return fmt.Errorf("%w: nil buffer", ErrBufferSizeMismatch)
	}
	if n := raw.NumChannels(); n != 1 {
		return fmt.Errorf("%w: FITS output takes mono frames, got %d channels", ErrUnsupportedChannelCount, n)
	}
	if err := raw.Validate(); err != nil {
		return err
	}

	fits, err := fitsio.Create(w)
	if err != nil {
		return err
	}
	defer fits.Close()

	im := fitsio.NewImage(raw.BitDepth, []int{raw.Width, raw.Height})
	defer im.Close()

	if raw.BitDepth == 16 {
		cards = append(cards,
			fitsio.Card{Name: "BZERO", Value: 32768},
			fitsio.Card{Name: "BSCALE", Value: 1.0})
	}
	if err = im.Header().Append(cards...); err != nil {
		return err
	}

	switch raw.BitDepth {
	case 8:
		err = im.Write(raw.Data)
	case 16:
		n := raw.Width * raw.Height
		ints := make([]int16, n)
		for i := 0; i < n; i++ {
			ints[i] = int16(raw.Sample(i) - 32768)
		}
		err = im.Write(ints)
	}
	if err != nil {
		return err
	}
	return fits.Write(im)
}
