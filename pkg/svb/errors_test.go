package svb_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"svbcam/pkg/svb"
)

func ExampleFromCode() {
	fmt.Println(svb.FromCode(11))
	fmt.Println(svb.FromCode(42))
	fmt.Println(svb.FromCode(0))
	// Output:
	// 11 - timeout
	// unknown SDK error code: 42
	// <nil>
}

func TestFromCodeTable(t *testing.T) {
	want := []svb.Error{
		svb.Success,
		svb.ErrInvalidIndex,
		svb.ErrInvalidID,
		svb.ErrInvalidControlType,
		svb.ErrCameraClosed,
		svb.ErrCameraRemoved,
		svb.ErrInvalidPath,
		svb.ErrInvalidFileFormat,
		svb.ErrInvalidSize,
		svb.ErrInvalidImageType,
		svb.ErrOutOfBoundary,
		svb.ErrTimeout,
		svb.ErrInvalidSequence,
		svb.ErrBufferTooSmall,
		svb.ErrVideoModeActive,
		svb.ErrExposureInProgress,
		svb.ErrGeneral,
		svb.ErrInvalidMode,
		svb.ErrInvalidDirection,
		svb.ErrUnknownSensorType,
	}
	require.Len(t, svb.ErrCodes, len(want))

	assert.NoError(t, svb.FromCode(0))
	for code := 1; code < len(want); code++ {
		err := svb.FromCode(code)
		var e svb.Error
		require.ErrorAs(t, err, &e, "code %d", code)
		assert.Equal(t, want[code], e)
		assert.NotErrorIs(t, err, svb.ErrUnknown)
		assert.Contains(t, err.Error(), svb.ErrCodes[want[code]])
	}
}

func TestFromCodeUnknown(t *testing.T) {
	for _, code := range []int{-1, 20, 21, 100, 1 << 20} {
		err := svb.FromCode(code)
		assert.ErrorIs(t, err, svb.ErrUnknown, "code %d", code)
		assert.NotErrorIs(t, err, svb.ErrUnknownSensorType, "code %d", code)
		var e svb.Error
		assert.False(t, errors.As(err, &e), "code %d", code)
	}
}

func TestErrorIsTimeout(t *testing.T) {
	err := fmt.Errorf("grab: %w", svb.FromCode(11))
	assert.ErrorIs(t, err, svb.ErrTimeout)
	assert.Equal(t, "-3 - unknown error code", svb.Error(-3).Error())
}
