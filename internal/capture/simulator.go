package capture

import (
	"encoding/binary"
	"fmt"
	"sync"
	"time"

	"svbcam/pkg/svb"
	"svbcam/pkg/svbcam"
)

// SimulatorConfig describes a simulated sensor.
type SimulatorConfig struct {
	Name string

	// Width and Height of the full sensor in unbinned pixels
	Width  int
	Height int
	Bin    int

	Pattern svbcam.CFAPattern
	Type    svb.ImageType

	// Fill is the 8-bit R, G, B level every frame is made of
	Fill [3]uint8

	// Exposure is how long GetFrame blocks, capped by its wait argument
	Exposure time.Duration
}

// Simulator is an in-memory Camera producing a flat Bayer mosaic.
type Simulator struct {
	mu       sync.Mutex
	info     svb.CameraInfo
	prop     svb.CameraProperty
	roi      svb.ROIFormat
	typ      svb.ImageType
	fill     [3]uint8
	exposure time.Duration
	timeouts int
	frames   int
}

// NewSimulator returns a simulated camera reading out the whole sensor.
func NewSimulator(cfg SimulatorConfig) (*Simulator, error) {
	if cfg.Bin <= 0 {
		cfg.Bin = 1
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return nil, fmt.Errorf("%w: sensor %dx%d", svb.ErrInvalidSize, cfg.Width, cfg.Height)
	}
	if !cfg.Pattern.Valid() {
		return nil, fmt.Errorf("%w: %s", svbcam.ErrInvalidCFAPattern, cfg.Pattern)
	}
	if !cfg.Type.Valid() {
		return nil, fmt.Errorf("%w: %s", svb.ErrInvalidImageType, cfg.Type)
	}
	if cfg.Name == "" {
		cfg.Name = "SVBONY Simulator"
	}
	s := &Simulator{
		info: svb.NewCameraInfo(cfg.Name, "SIM00000001", "USB3.0", 0x3050, 0),
		prop: svb.CameraProperty{
			MaxWidth:             cfg.Width,
			MaxHeight:            cfg.Height,
			IsColorCam:           true,
			BayerPattern:         uint32(cfg.Pattern),
			SupportedBins:        []int{1, 2},
			SupportedVideoFormat: []svb.ImageType{svb.RAW8, svb.RAW16, svb.Y8, svb.Y16, svb.RGB24},
			MaxBitDepth:          12,
		},
		typ:      cfg.Type,
		fill:     cfg.Fill,
		exposure: cfg.Exposure,
	}
	if err := s.SetROI(svb.ROIFormat{Width: cfg.Width / cfg.Bin, Height: cfg.Height / cfg.Bin, Bin: cfg.Bin}); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Simulator) Info() svb.CameraInfo { return s.info }

func (s *Simulator) Property() svb.CameraProperty { return s.prop }

func (s *Simulator) ROI() (svb.ROIFormat, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.roi, nil
}

// SetROI changes the readout region.
func (s *Simulator) SetROI(roi svb.ROIFormat) error {
	if err := roi.Validate(s.prop); err != nil {
		return err
	}
	supported := false
	for _, b := range s.prop.SupportedBins {
		supported = supported || b == roi.Bin
	}
	if !supported {
		return fmt.Errorf("%w: bin %d", svb.ErrInvalidSize, roi.Bin)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.roi = roi
	return nil
}

func (s *Simulator) ImageType() (svb.ImageType, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.typ, nil
}

// SetImageType changes the sample format.
func (s *Simulator) SetImageType(t svb.ImageType) error {
	if !s.prop.Supports(t) {
		return fmt.Errorf("%w: %s", svb.ErrInvalidImageType, t)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.typ = t
	return nil
}

// InjectTimeouts makes the next n GetFrame calls time out.
func (s *Simulator) InjectTimeouts(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.timeouts = n
}

// Frames is the number of frames delivered so far.
func (s *Simulator) Frames() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.frames
}

// GetFrame renders one frame for the current ROI and image type.
func (s *Simulator) GetFrame(wait time.Duration) ([]byte, error) {
	s.mu.Lock()
	roi, typ, fill := s.roi, s.typ, s.fill
	timeout := s.timeouts > 0
	if timeout {
		s.timeouts--
	}
	s.mu.Unlock()

	exp := s.exposure
	if wait > 0 && exp > wait {
		exp, timeout = wait, true
	}
	if exp > 0 {
		time.Sleep(exp)
	}
	if timeout {
		return nil, svb.ErrTimeout
	}

	pattern := svbcam.CFAPattern(s.prop.BayerPattern)
	bpp := typ.BytesPerPixel()
	buf := make([]byte, roi.BufferSize(typ))
	for y := 0; y < roi.Height; y++ {
		for x := 0; x < roi.Width; x++ {
			px := buf[(y*roi.Width+x)*bpp:]
			switch typ {
			case svb.RGB24:
				px[0], px[1], px[2] = fill[0], fill[1], fill[2]
			case svb.RGB32:
				px[0], px[1], px[2], px[3] = fill[0], fill[1], fill[2], 0xff
			default:
				v := fill[svbcam.Green]
				if typ.Mosaiced() {
					v = fill[pattern.ChannelAt(x, y)]
				}
				if bpp == 1 {
					px[0] = v
				} else {
					binary.LittleEndian.PutUint16(px, uint16(v)<<8|uint16(v))
				}
			}
		}
	}

	s.mu.Lock()
	s.frames++
	s.mu.Unlock()
	return buf, nil
}
