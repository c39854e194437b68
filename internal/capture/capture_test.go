package capture

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/cenkalti/backoff"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"svbcam/pkg/svb"
	"svbcam/pkg/svbcam"
)

func fastBackOff() backoff.BackOff { return backoff.NewConstantBackOff(time.Millisecond) }

func newSim(t *testing.T, typ svb.ImageType) *Simulator {
	t.Helper()
	sim, err := NewSimulator(SimulatorConfig{
		Width: 16, Height: 12, Pattern: svbcam.BGGR, Type: typ, Fill: [3]uint8{200, 100, 50},
	})
	require.NoError(t, err)
	return sim
}

// scripted is a camera whose reads come from queued results.
type scripted struct {
	mu     sync.Mutex
	prop   svb.CameraProperty
	rois   []svb.ROIFormat
	frames [][]byte
	errs   []error
}

func (c *scripted) Info() svb.CameraInfo         { return svb.NewCameraInfo("scripted", "", "", 0, 0) }
func (c *scripted) Property() svb.CameraProperty { return c.prop }

func (c *scripted) ImageType() (svb.ImageType, error) { return svb.RAW8, nil }

func (c *scripted) ROI() (svb.ROIFormat, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	roi := c.rois[0]
	if len(c.rois) > 1 {
		c.rois = c.rois[1:]
	}
	return roi, nil
}

func (c *scripted) GetFrame(time.Duration) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.errs) > 0 {
		err := c.errs[0]
		c.errs = c.errs[1:]
		if err != nil {
			return nil, err
		}
	}
	f := c.frames[0]
	if len(c.frames) > 1 {
		c.frames = c.frames[1:]
	}
	return f, nil
}

func TestTakeSnapshot(t *testing.T) {
	sim := newSim(t, svb.RAW16)
	snap, err := TakeSnapshot(sim)
	require.NoError(t, err)
	assert.Equal(t, svb.ROIFormat{Width: 16, Height: 12, Bin: 1}, snap.ROI)
	assert.Equal(t, svbcam.BGGR, snap.Pattern)
	assert.Equal(t, 16*12*2, snap.BufferSize())

	geom := snap.Geometry()
	assert.Equal(t, 16, geom.BitDepth)
	assert.Equal(t, 1, geom.Channels)
}

func TestTakeSnapshotInvalidPattern(t *testing.T) {
	cam := &scripted{prop: svb.CameraProperty{BayerPattern: 4}, rois: []svb.ROIFormat{{Width: 2, Height: 2, Bin: 1}}}
	_, err := TakeSnapshot(cam)
	assert.ErrorIs(t, err, svbcam.ErrInvalidCFAPattern)
}

func TestSimulatorFrames(t *testing.T) {
	sim := newSim(t, svb.RAW8)
	frame, err := sim.GetFrame(0)
	require.NoError(t, err)
	require.Len(t, frame, 16*12)
	// BGGR: blue at the origin, red at (1,1)
	assert.Equal(t, byte(50), frame[0])
	assert.Equal(t, byte(100), frame[1])
	assert.Equal(t, byte(200), frame[16+1])

	require.NoError(t, sim.SetImageType(svb.RAW16))
	frame, err = sim.GetFrame(0)
	require.NoError(t, err)
	assert.Equal(t, []byte{50, 50}, frame[0:2])

	require.NoError(t, sim.SetImageType(svb.RGB24))
	frame, err = sim.GetFrame(0)
	require.NoError(t, err)
	assert.Equal(t, []byte{200, 100, 50}, frame[0:3])
	assert.Equal(t, 3, sim.Frames())

	assert.ErrorIs(t, sim.SetImageType(svb.RAW12), svb.ErrInvalidImageType)
	assert.ErrorIs(t, sim.SetROI(svb.ROIFormat{Width: 16, Height: 12, Bin: 2}), svb.ErrOutOfBoundary)
	assert.ErrorIs(t, sim.SetROI(svb.ROIFormat{Width: 4, Height: 4, Bin: 3}), svb.ErrInvalidSize)
}

func TestSimulatorExposureTimeout(t *testing.T) {
	sim, err := NewSimulator(SimulatorConfig{Width: 4, Height: 4, Type: svb.RAW8, Exposure: 50 * time.Millisecond})
	require.NoError(t, err)
	_, err = sim.GetFrame(time.Millisecond)
	assert.ErrorIs(t, err, svb.ErrTimeout)
}

func TestGrabRetriesTimeouts(t *testing.T) {
	sim := newSim(t, svb.RAW8)
	sim.InjectTimeouts(2)
	g := &Grabber{Camera: sim, MaxRetries: 3, NewBackOff: fastBackOff}

	frame, err := g.Grab(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, frame.Attempts)
	assert.Equal(t, 16, frame.Raw.Width)
	assert.Equal(t, svbcam.BGGR, frame.Raw.Pattern)

	out, err := svbcam.Debayer(frame.Raw, svbcam.NearestNeighbour)
	require.NoError(t, err)
	assert.Equal(t, []byte{200, 100, 50}, out.Pix[:3])
}

func TestGrabGivesUpAfterMaxRetries(t *testing.T) {
	sim := newSim(t, svb.RAW8)
	sim.InjectTimeouts(10)
	g := &Grabber{Camera: sim, MaxRetries: 2, NewBackOff: fastBackOff}

	_, err := g.Grab(context.Background())
	assert.ErrorIs(t, err, svb.ErrTimeout)
	assert.Contains(t, err.Error(), "after 3 attempts")
}

func TestGrabDoesNotRetryOtherErrors(t *testing.T) {
	cam := &scripted{
		rois:   []svb.ROIFormat{{Width: 2, Height: 2, Bin: 1}},
		frames: [][]byte{make([]byte, 4)},
		errs:   []error{svb.ErrCameraRemoved},
	}
	g := &Grabber{Camera: cam, MaxRetries: 5, NewBackOff: fastBackOff}
	_, err := g.Grab(context.Background())
	assert.ErrorIs(t, err, svb.ErrCameraRemoved)
	assert.Contains(t, err.Error(), "after 1 attempts")
}

func TestGrabRetriesTornSnapshot(t *testing.T) {
	small := svb.ROIFormat{Width: 2, Height: 2, Bin: 1}
	large := svb.ROIFormat{Width: 4, Height: 2, Bin: 1}
	cam := &scripted{
		// before/after of the first read differ, the second read is stable
		rois:   []svb.ROIFormat{small, large, large, large},
		frames: [][]byte{make([]byte, 4), make([]byte, 8)},
	}
	g := &Grabber{Camera: cam, MaxRetries: 2, NewBackOff: fastBackOff}
	frame, err := g.Grab(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, frame.Attempts)
	assert.Equal(t, large, frame.Snapshot.ROI)
	assert.Len(t, frame.Raw.Data, 8)
}

func TestGrabTornSnapshotExhausted(t *testing.T) {
	a := svb.ROIFormat{Width: 2, Height: 2, Bin: 1}
	b := svb.ROIFormat{Width: 4, Height: 2, Bin: 1}
	cam := &scripted{rois: []svb.ROIFormat{a, b, a, b, a, b}, frames: [][]byte{make([]byte, 4)}}
	g := &Grabber{Camera: cam, MaxRetries: 1, NewBackOff: fastBackOff}
	_, err := g.Grab(context.Background())
	assert.ErrorIs(t, err, ErrTornSnapshot)
}

func TestGrabLimiterHonoursContext(t *testing.T) {
	sim := newSim(t, svb.RAW8)
	g := &Grabber{Camera: sim, Limiter: NewLimiter(0.001), NewBackOff: fastBackOff}

	_, err := g.Grab(context.Background())
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	_, err = g.Grab(ctx)
	assert.Error(t, err)
	assert.Equal(t, 1, sim.Frames())
}

func TestNewLimiter(t *testing.T) {
	assert.Nil(t, NewLimiter(0))
	assert.Nil(t, NewLimiter(-1))
	assert.NotNil(t, NewLimiter(5))
}

func TestGrabContextCancelledStopsRetries(t *testing.T) {
	sim := newSim(t, svb.RAW8)
	sim.InjectTimeouts(1000)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	g := &Grabber{Camera: sim, MaxRetries: 1000, NewBackOff: fastBackOff}
	_, err := g.Grab(ctx)
	assert.True(t, errors.Is(err, svb.ErrTimeout) || errors.Is(err, context.Canceled), "%v", err)
}

func TestGrabZeroRetries(t *testing.T) {
	sim := newSim(t, svb.RAW8)
	sim.InjectTimeouts(1)
	g := &Grabber{Camera: sim, NewBackOff: fastBackOff}
	_, err := g.Grab(context.Background())
	assert.ErrorIs(t, err, svb.ErrTimeout)

	frame, err := g.Grab(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, frame.Attempts)
}
