//go:build !opencv

package svbcam

import (
	"image/jpeg"
	"image/png"
	"io"

	"golang.org/x/image/tiff"
)

func encodeImage(w io.Writer, img *RGBImage, f ImageFormat) error {
	switch f {
	case JPEG:
		return jpeg.Encode(w, img, &jpeg.Options{Quality: jpegQuality})
	case PNG:
		return png.Encode(w, img.NRGBA())
	default:
		return tiff.Encode(w, img.NRGBA(), &tiff.Options{Compression: tiff.Deflate})
	}
}
