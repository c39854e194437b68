package svbcam

// mosaic is a decoded single-channel frame. Samples are widened to uint16 so that
// 8 and 16-bit data share one set of kernels.
type mosaic struct {
	w, h    int
	pattern CFAPattern
	max     int
	shift   uint
	px      []uint16
}

func newMosaic(raw *RawBuffer) *mosaic {
	m := &mosaic{
		w:       raw.Width,
		h:       raw.Height,
		pattern: raw.Pattern,
		max:     0xff,
		px:      make([]uint16, raw.Width*raw.Height),
	}
	if raw.BitDepth == 16 {
		m.max = 0xffff
		m.shift = 8
	}
	for i := range m.px {
		m.px[i] = raw.Sample(i)
	}
	return m
}

func (m *mosaic) at(x, y int) int { return int(m.px[y*m.w+x]) }

func (m *mosaic) inside(x, y int) bool { return x >= 0 && x < m.w && y >= 0 && y < m.h }

func (m *mosaic) channel(x, y int) Channel { return m.pattern.ChannelAt(x, y) }

func (m *mosaic) toByte(v int) byte { return byte(v >> m.shift) }

// interpolator estimates channel c at (x, y), where c is not the native channel.
type interpolator func(m *mosaic, x, y int, c Channel) int

var interpolators = map[Demosaic]interpolator{
	None:             nil,
	NearestNeighbour: nearest,
	Linear:           linear,
	Cubic:            cubic,
}

// Search order for nearest: left, right, up, down, then the diagonals.
var neighbours = [8][2]int{
	{-1, 0}, {1, 0}, {0, -1}, {0, 1},
	{-1, -1}, {1, -1}, {-1, 1}, {1, 1},
}

func nearest(m *mosaic, x, y int, c Channel) int {
	for _, d := range neighbours {
		nx, ny := x+d[0], y+d[1]
		if m.inside(nx, ny) && m.channel(nx, ny) == c {
			return m.at(nx, ny)
		}
	}
	return 0
}

func linear(m *mosaic, x, y int, c Channel) int {
	sum, n := 0, 0
	for _, d := range neighbours {
		nx, ny := x+d[0], y+d[1]
		if m.inside(nx, ny) && m.channel(nx, ny) == c {
			sum += m.at(nx, ny)
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return (sum + n/2) / n
}

// cubic uses the Catmull-Rom midpoint (-a + 9b + 9c - d) / 16 over same-colour taps
// two pixels apart. Green and red/blue at green sites run along rows and columns,
// red at blue and blue at red run along both diagonals.
func cubic(m *mosaic, x, y int, c Channel) int {
	if m.w < 2 || m.h < 2 {
		return linear(m, x, y, c)
	}
	var num, den int
	switch native := m.channel(x, y); {
	case c == Green:
		num, den = m.kernel(x, y, 1, 0)+m.kernel(x, y, 0, 1), 32
	case native == Green:
		if m.pattern.ChannelAt(x+1, y) == c {
			num = m.kernel(x, y, 1, 0)
		} else {
			num = m.kernel(x, y, 0, 1)
		}
		den = 16
	default:
		num, den = m.kernel(x, y, 1, 1)+m.kernel(x, y, 1, -1), 32
	}
	return clampInt(roundDiv(num, den), 0, m.max)
}

// kernel returns the unscaled midpoint sum for taps at (x,y) + k*(dx,dy), k in {-3,-1,1,3}.
func (m *mosaic) kernel(x, y, dx, dy int) int {
	tap := func(k int) int {
		return m.at(clampParity(x+k*dx, m.w), clampParity(y+k*dy, m.h))
	}
	return -tap(-3) + 9*tap(-1) + 9*tap(1) - tap(3)
}

// clampParity clamps i into [0, n) keeping its parity, so a tap stays on the same
// colour of the tile. n must be at least 2.
func clampParity(i, n int) int {
	switch {
	case i < 0:
		return i & 1
	case i >= n:
		if (i-(n-1))&1 == 0 {
			return n - 1
		}
		return n - 2
	}
	return i
}

func roundDiv(num, den int) int {
	if num >= 0 {
		return (num + den/2) / den
	}
	return -((-num + den/2) / den)
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
