/*
Extracted from HocusFocus plugin by George Hilios.
Original Copyright © 2021 George Hilios <ghilios+NINA@googlemail.com>
Licensed under Mozilla Public License 2.0.
Ported to Go.
*/

package svbcam

import (
	"fmt"
	"math"
)

// Statistics of one 8-bit channel.
type Statistics struct {
	Median float64 `json:"median"`
	MAD    float64 `json:"mad"`
	Mean   float64 `json:"mean"`
	StdDev float64 `json:"stdDev"`
}

func (s Statistics) String() string {
	return fmt.Sprintf("{Median=%f, MAD=%f, Mean=%f, StdDev=%f}", s.Median, s.MAD, s.Mean, s.StdDev)
}

// ChannelStatistics computes R, G and B statistics of a debayered frame from per-channel
// histograms.
func ChannelStatistics(buf *DebayeredBuffer) [3]Statistics {
	var hists [3][256]uint64
	for i := 0; i+2 < len(buf.Pix); i += 3 {
		hists[0][buf.Pix[i]]++
		hists[1][buf.Pix[i+1]]++
		hists[2][buf.Pix[i+2]]++
	}
	var out [3]Statistics
	for c := range hists {
		out[c] = histogramStatistics(hists[c][:])
	}
	return out
}

// histogramStatistics treats bucket i as the value i.
func histogramStatistics(histogram []uint64) Statistics {
	var result Statistics
	var numPixels uint64
	for _, n := range histogram {
		numPixels += n
	}
	if numPixels == 0 {
		return result
	}
	numBuckets := len(histogram)

	target := (numPixels + 1) / 2
	var count uint64
	medianPosition := 0
	for i, n := range histogram {
		count += n
		if count >= target {
			medianPosition = i
			break
		}
	}
	result.Median = float64(medianPosition)

	// walk outwards from the median, nearest bucket first, until half the pixels are covered
	up, down := medianPosition, medianPosition-1
	count = 0
	for {
		upDist, downDist := math.MaxFloat64, math.MaxFloat64
		if up < numBuckets {
			upDist = math.Abs(float64(up) - result.Median)
		}
		if down >= 0 {
			downDist = math.Abs(float64(down) - result.Median)
		}
		var chosen int
		if upDist <= downDist {
			chosen = up
			up++
		} else {
			chosen = down
			down--
		}
		count += histogram[chosen]
		if count >= target {
			result.MAD = math.Abs(float64(chosen) - result.Median)
			break
		}
	}

	var total float64
	for i, n := range histogram {
		total += float64(n) * float64(i)
	}
	result.Mean = total / float64(numPixels)

	if numPixels > 1 {
		var sse float64
		for i, n := range histogram {
			d := float64(i) - result.Mean
			sse += float64(n) * d * d
		}
		result.StdDev = math.Sqrt(sse / float64(numPixels-1))
	}
	return result
}
