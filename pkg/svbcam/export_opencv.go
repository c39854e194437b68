//go:build opencv

package svbcam

import (
	"fmt"
	"io"

	"gocv.io/x/gocv"
)

var fileExts = map[ImageFormat]gocv.FileExt{
	JPEG: gocv.JPEGFileExt,
	PNG:  gocv.PNGFileExt,
	TIFF: gocv.FileExt(".tiff"),
}

func encodeImage(w io.Writer, img *RGBImage, f ImageFormat) error {
	b := img.Bounds()
	mat, err := gocv.NewMatFromBytes(b.Dy(), b.Dx(), gocv.MatTypeCV8UC3, img.Pix)
	if err != nil {
		return fmt.Errorf("wrapping frame: %w", err)
	}
	defer mat.Close()

	// OpenCV expects BGR
	bgr := gocv.NewMat()
	defer bgr.Close()
	gocv.CvtColor(mat, &bgr, gocv.ColorRGBToBGR)

	var params []int
	if f == JPEG {
		params = []int{gocv.IMWriteJpegQuality, jpegQuality}
	}
	buf, err := gocv.IMEncodeWithParams(fileExts[f], bgr, params)
	if err != nil {
		return fmt.Errorf("encoding %s: %w", f, err)
	}
	defer buf.Close()

	_, err = w.Write(buf.GetBytes())
	return err
}
