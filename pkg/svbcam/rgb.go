package svbcam

import (
	"fmt"
	"image"
	"image/color"
)

// RGBImage is an 8-bit per channel RGB raster. It satisfies image.Image and is
// treated as read-only once assembled.
type RGBImage struct {
	// Pix holds R,G,B triples, row-major. Stride is 3*width.
	Pix    []uint8
	Stride int
	Rect   image.Rectangle
}

// Assemble copies an interleaved R,G,B buffer into a new RGBImage.
func Assemble(pix []byte, width, height int) (*RGBImage, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: non-positive image size %dx%d", ErrBufferSizeMismatch, width, height)
	}
	if want := width * height * 3; len(pix) != want {
		return nil, fmt.Errorf("%w: got %d bytes, %dx%d RGB needs %d", ErrBufferSizeMismatch, len(pix), width, height, want)
	}
	img := &RGBImage{
		Pix:    make([]uint8, len(pix)),
		Stride: width * 3,
		Rect:   image.Rect(0, 0, width, height),
	}
	for y := 0; y < height; y++ {
		row := pix[y*img.Stride : (y+1)*img.Stride]
		copy(img.Pix[y*img.Stride:], row)
	}
	return img, nil
}

func (p *RGBImage) ColorModel() color.Model { return color.RGBAModel }

func (p *RGBImage) Bounds() image.Rectangle { return p.Rect }

func (p *RGBImage) At(x, y int) color.Color {
	r, g, b := p.RGBAt(x, y)
	return color.RGBA{R: r, G: g, B: b, A: 0xff}
}

// PixOffset returns the index of the first byte of the pixel at (x, y).
func (p *RGBImage) PixOffset(x, y int) int {
	return (y-p.Rect.Min.Y)*p.Stride + (x-p.Rect.Min.X)*3
}

// RGBAt returns the channels at (x, y), or zeros outside the bounds.
func (p *RGBImage) RGBAt(x, y int) (r, g, b uint8) {
	if !(image.Point{X: x, Y: y}.In(p.Rect)) {
		return 0, 0, 0
	}
	i := p.PixOffset(x, y)
	return p.Pix[i], p.Pix[i+1], p.Pix[i+2]
}

// NRGBA converts to the standard library's image type for encoders that want it.
func (p *RGBImage) NRGBA() *image.NRGBA {
	out := image.NewNRGBA(p.Rect)
	w, h := p.Rect.Dx(), p.Rect.Dy()
	for y := 0; y < h; y++ {
		src := p.Pix[y*p.Stride:]
		dst := out.Pix[y*out.Stride:]
		for x := 0; x < w; x++ {
			dst[4*x], dst[4*x+1], dst[4*x+2], dst[4*x+3] = src[3*x], src[3*x+1], src[3*x+2], 0xff
		}
	}
	return out
}
