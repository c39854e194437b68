package capture

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff"
	"golang.org/x/time/rate"

	"svbcam/pkg/svb"
	"svbcam/pkg/svbcam"
)

// ErrTornSnapshot is returned when the camera geometry changed while a frame was read.
var ErrTornSnapshot = errors.New("camera geometry changed during capture")

// Frame is one typed camera frame.
type Frame struct {
	Raw      *svbcam.RawBuffer
	Snapshot Snapshot
	Time     time.Time

	// Attempts is the number of reads it took, 1 when the first one succeeded
	Attempts int
}

// Grabber reads frames from a camera, retrying timeouts and torn reads.
type Grabber struct {
	Camera Camera

	// Wait is passed to GetFrame
	Wait time.Duration

	// MaxRetries bounds the retries after the first attempt
	MaxRetries int

	// Limiter paces Grab calls; nil disables pacing
	Limiter *rate.Limiter

	// NewBackOff returns the delay policy between retries; nil uses DefaultBackOff
	NewBackOff func() backoff.BackOff
}

// NewLimiter allows fps grabs per second. fps <= 0 means unlimited.
func NewLimiter(fps float64) *rate.Limiter {
	if fps <= 0 {
		return nil
	}
	return rate.NewLimiter(rate.Limit(fps), 1)
}

// DefaultBackOff doubles from 25 ms up to 1 s between attempts.
func DefaultBackOff() backoff.BackOff {
	return &backoff.ExponentialBackOff{
		InitialInterval:     25 * time.Millisecond,
		RandomizationFactor: 0.,
		Multiplier:          2.,
		MaxInterval:         1 * time.Second,
		MaxElapsedTime:      10 * time.Second,
		Clock:               backoff.SystemClock}
}

// Grab takes a snapshot, reads one frame and checks that the geometry did not change
// meanwhile. Timeouts and torn reads are retried; everything else is returned at once.
func (g *Grabber) Grab(ctx context.Context) (*Frame, error) {
	if g.Limiter != nil {
		if err := g.Limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}

	var (
		frame    *Frame
		attempts int
	)
	op := func() error {
		attempts++
		before, err := TakeSnapshot(g.Camera)
		if err != nil {
			return backoff.Permanent(err)
		}
		data, err := g.Camera.GetFrame(g.Wait)
		if err != nil {
			if errors.Is(err, svb.ErrTimeout) {
				return err
			}
			return backoff.Permanent(err)
		}
		after, err := TakeSnapshot(g.Camera)
		if err != nil {
			return backoff.Permanent(err)
		}
		if after != before {
			return fmt.Errorf("%w: %s -> %s", ErrTornSnapshot, before.ROI, after.ROI)
		}
		raw, err := before.RawBuffer(data)
		if err != nil {
			// a frame of the wrong size was read under a geometry we did not see
			if errors.Is(err, svbcam.ErrBufferSizeMismatch) {
				return err
			}
			return backoff.Permanent(err)
		}
		frame = &Frame{Raw: raw, Snapshot: before, Time: time.Now(), Attempts: attempts}
		return nil
	}
	notify := func(err error, next time.Duration) {
		logger.Warn("frame grab failed, retrying", "err", err, "attempt", attempts, "next", next)
	}

	newBackOff := g.NewBackOff
	if newBackOff == nil {
		newBackOff = DefaultBackOff
	}
	// WithMaxRetries treats 0 as unlimited
	var policy backoff.BackOff = &backoff.StopBackOff{}
	if g.MaxRetries > 0 {
		policy = backoff.WithMaxRetries(newBackOff(), uint64(g.MaxRetries))
	}
	b := backoff.WithContext(policy, ctx)
	if err := backoff.RetryNotify(op, b, notify); err != nil {
		return nil, fmt.Errorf("grabbing frame after %d attempts: %w", attempts, err)
	}
	logger.Debug("grabbed frame", "roi", frame.Snapshot.ROI, "type", frame.Snapshot.Type, "attempts", attempts)
	return frame, nil
}
