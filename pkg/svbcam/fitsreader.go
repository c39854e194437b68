package svbcam

import (
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// FitsImage is a decoded primary HDU.
type FitsImage struct {
	// Header maps upper-case keywords to their value with quotes and comments removed.
	Header map[string]string

	// Raw holds the data unit as a little-endian unsigned frame.
	Raw *RawBuffer
}

// Int returns a header value as an integer.
func (f *FitsImage) Int(key string) (int, bool) {
	v, ok := f.Header[strings.ToUpper(key)]
	if !ok {
		return 0, false
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return 0, false
	}
	return i, true
}

// ReadFits reads a FITS file from disk.
func ReadFits(path string) (*FitsImage, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening FITS file: %w", err)
	}
	defer f.Close()
	return DecodeFits(f)
}

// DecodeFits reads the primary HDU of a FITS stream.
//
// Files written by EncodeFits carry the camera's little-endian samples and no BZERO card;
// their data is returned verbatim. Files with BZERO follow the standard and hold big-endian
// signed samples, which are converted back to unsigned little-endian. A missing data pad at
// the end of the stream is accepted.
func DecodeFits(r io.Reader) (*FitsImage, error) {
	header := make(map[string]string)
	record := make([]byte, FitsCardLen)

	cards := 0
	for {
		if _, err := io.ReadFull(r, record); err != nil {
			return nil, fmt.Errorf("reading FITS header record: %w", err)
		}
		cards++
		keyword := strings.TrimSpace(string(record[:8]))
		if keyword == "END" {
			break
		}
		if record[8] == '=' && record[9] == ' ' && keyword != "" {
			if v := parseCardValue(string(record[10:])); v != "" {
				header[keyword] = v
			}
		}
	}
	if rem := (cards * FitsCardLen) % FitsBlockLen; rem != 0 {
		if _, err := io.CopyN(io.Discard, r, int64(FitsBlockLen-rem)); err != nil {
			return nil, fmt.Errorf("skipping FITS header padding: %w", err)
		}
	}

	img := &FitsImage{Header: header}
	bitpix, _ := img.Int("BITPIX")
	naxis, _ := img.Int("NAXIS")
	width, _ := img.Int("NAXIS1")
	height, _ := img.Int("NAXIS2")
	if naxis != 2 || width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: NAXIS=%d, NAXIS1=%d, NAXIS2=%d", ErrBufferSizeMismatch, naxis, width, height)
	}
	if bitpix != 8 && bitpix != 16 {
		return nil, fmt.Errorf("%w: BITPIX %d", ErrUnsupportedDepth, bitpix)
	}

	geom := Geometry{Width: width, Height: height, BitDepth: bitpix, ByteOrder: binary.LittleEndian}
	if name, ok := header["BAYERPAT"]; ok {
		p, err := ParseCFA(name)
		if err != nil {
			return nil, err
		}
		geom.Pattern = p
	}

	want, err := geom.frameLen()
	if err != nil {
		return nil, err
	}
	data, err := readFrame(r, want)
	if err != nil {
		return nil, fmt.Errorf("reading FITS data unit: %w", err)
	}

	if _, scaled := header["BZERO"]; scaled && bitpix == 16 {
		zero, _ := strconv.ParseFloat(header["BZERO"], 64)
		for i := 0; i+1 < len(data); i += 2 {
			v := float64(int16(binary.BigEndian.Uint16(data[i:]))) + zero
			binary.LittleEndian.PutUint16(data[i:], uint16(clampInt(int(v), 0, 0xffff)))
		}
	}

	img.Raw = &RawBuffer{Data: data, Geometry: geom}
	return img, nil
}

func parseCardValue(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "'") {
		if end := strings.Index(s[1:], "'"); end >= 0 {
			return strings.TrimRight(s[1:end+1], " ")
		}
		return strings.TrimRight(strings.TrimPrefix(s, "'"), " ")
	}
	if i := strings.IndexByte(s, '/'); i >= 0 {
		s = s[:i]
	}
	return strings.TrimSpace(s)
}
