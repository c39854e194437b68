//go:build js && wasm

package main

import (
	"bytes"
	"syscall/js"

	"svbcam/pkg/svbcam"
)

func main() {
	js.Global().Set("decodeFITS", js.FuncOf(decodeFITS))
	js.Global().Set("decodeRaw", js.FuncOf(decodeRaw))
	select {} // block forever
}

// options reads the optional settings object shared by both entry points.
type options struct {
	alg    svbcam.Demosaic
	format svbcam.ImageFormat
}

func readOptions(v js.Value) (options, error) {
	opts := options{alg: svbcam.NearestNeighbour, format: svbcam.PNG}
	if v.Type() != js.TypeObject {
		return opts, nil
	}
	if a := v.Get("alg"); a.Type() == js.TypeString {
		alg, err := svbcam.ParseDemosaic(a.String())
		if err != nil {
			return opts, err
		}
		opts.alg = alg
	}
	if f := v.Get("format"); f.Type() == js.TypeString {
		format, err := svbcam.ParseImageFormat(f.String())
		if err != nil {
			return opts, err
		}
		opts.format = format
	}
	return opts, nil
}

func bytesFromJS(v js.Value) []byte {
	b := make([]byte, v.Get("length").Int())
	js.CopyBytesToGo(b, v)
	return b
}

// decodeFITS(fileBytes, {alg, format}) demosaics a FITS frame.
func decodeFITS(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return errorResult("usage: decodeFITS(fileBytes, options)")
	}
	var optsArg js.Value
	if len(args) >= 2 {
		optsArg = args[1]
	}
	opts, err := readOptions(optsArg)
	if err != nil {
		return errorResult(err.Error())
	}
	img, err := svbcam.DecodeFits(bytes.NewReader(bytesFromJS(args[0])))
	if err != nil {
		return errorResult("FITS parse error: " + err.Error())
	}
	return render(img.Raw, opts)
}

// decodeRaw(fileBytes, {width, height, depth, pattern, alg, format}) demosaics a raw dump.
func decodeRaw(this js.Value, args []js.Value) interface{} {
	if len(args) < 2 || args[1].Type() != js.TypeObject {
		return errorResult("usage: decodeRaw(fileBytes, {width, height, depth, pattern})")
	}
	o := args[1]
	opts, err := readOptions(o)
	if err != nil {
		return errorResult(err.Error())
	}
	geom := svbcam.Geometry{Width: o.Get("width").Int(), Height: o.Get("height").Int(), BitDepth: 8}
	if d := o.Get("depth"); d.Type() == js.TypeNumber {
		geom.BitDepth = d.Int()
	}
	if p := o.Get("pattern"); p.Type() == js.TypeString {
		if geom.Pattern, err = svbcam.ParseCFA(p.String()); err != nil {
			return errorResult(err.Error())
		}
	}
	raw, err := svbcam.NewRawBuffer(bytesFromJS(args[0]), geom)
	if err != nil {
		return errorResult(err.Error())
	}
	return render(raw, opts)
}

func render(raw *svbcam.RawBuffer, opts options) interface{} {
	buf, err := svbcam.Debayer(raw, opts.alg)
	if err != nil {
		return errorResult("demosaic error: " + err.Error())
	}
	img, err := buf.Image()
	if err != nil {
		return errorResult(err.Error())
	}
	var encoded bytes.Buffer
	if err := svbcam.EncodeImage(&encoded, img, opts.format); err != nil {
		return errorResult("encode error: " + err.Error())
	}

	// Create Uint8Array and copy bytes
	uint8Array := js.Global().Get("Uint8Array").New(encoded.Len())
	js.CopyBytesToJS(uint8Array, encoded.Bytes())

	stats := svbcam.ChannelStatistics(buf)
	jsStats := make([]interface{}, len(stats))
	for i, s := range stats {
		jsStats[i] = map[string]interface{}{
			"channel": svbcam.Channel(i).String(),
			"median":  s.Median,
			"mad":     s.MAD,
			"mean":    s.Mean,
			"stddev":  s.StdDev,
		}
	}

	return js.ValueOf(map[string]interface{}{
		"width":       raw.Width,
		"height":      raw.Height,
		"bitDepth":    raw.BitDepth,
		"pattern":     raw.Pattern.String(),
		"algorithm":   opts.alg.String(),
		"contentType": opts.format.ContentType(),
		"image":       uint8Array,
		"stats":       jsStats,
	})
}

func errorResult(msg string) interface{} {
	return js.ValueOf(map[string]interface{}{
		"error": msg,
	})
}
