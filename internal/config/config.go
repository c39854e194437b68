// Package config loads svbcam settings from struct defaults and an optional YAML file.
package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"strconv"
	"strings"
	"time"

	"github.com/knadh/koanf"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	yml "gopkg.in/yaml.v2"

	"svbcam/internal/capture"
	"svbcam/pkg/svb"
	"svbcam/pkg/svbcam"
)

// FileName is the config file looked up in the working directory.
const FileName = "svbcam.yml"

// Log configures the component loggers.
type Log struct {
	// Level is one of debug, info, warn, error
	Level string `koanf:"level" yaml:"level"`
}

// Camera describes the simulated camera used when no hardware is attached.
type Camera struct {
	Name    string `koanf:"name" yaml:"name"`
	Width   int    `koanf:"width" yaml:"width"`
	Height  int    `koanf:"height" yaml:"height"`
	Bin     int    `koanf:"bin" yaml:"bin"`
	Pattern string `koanf:"pattern" yaml:"pattern"`
	Type    string `koanf:"type" yaml:"type"`

	// Fill is the R,G,B level of every simulated frame, e.g. "200,120,60"
	Fill string `koanf:"fill" yaml:"fill"`

	Exposure time.Duration `koanf:"exposure" yaml:"exposure"`
}

// Capture configures the frame grabber.
type Capture struct {
	Wait    time.Duration `koanf:"wait" yaml:"wait"`
	Retries int           `koanf:"retries" yaml:"retries"`

	// FPS caps the grab rate, 0 is unlimited
	FPS float64 `koanf:"fps" yaml:"fps"`
}

// Output holds the defaults for exported files.
type Output struct {
	Dir       string `koanf:"dir" yaml:"dir"`
	Algorithm string `koanf:"algorithm" yaml:"algorithm"`
	Format    string `koanf:"format" yaml:"format"`
}

// Recorder configures the archive of served frames.
type Recorder struct {
	Root    string `koanf:"root" yaml:"root"`
	Enabled bool   `koanf:"enabled" yaml:"enabled"`
}

// Config is the whole configuration tree.
type Config struct {
	Addr     string   `koanf:"addr" yaml:"addr"`
	Log      Log      `koanf:"log" yaml:"log"`
	Camera   Camera   `koanf:"camera" yaml:"camera"`
	Capture  Capture  `koanf:"capture" yaml:"capture"`
	Output   Output   `koanf:"output" yaml:"output"`
	Recorder Recorder `koanf:"recorder" yaml:"recorder"`
}

// Default returns the configuration used when no file is present.
func Default() Config {
	return Config{
		Addr: ":8000",
		Log:  Log{Level: "info"},
		Camera: Camera{
			Name:    "SVBONY SV305 (simulated)",
			Width:   1920,
			Height:  1080,
			Bin:     1,
			Pattern: svbcam.GRBG.String(),
			Type:    svb.RAW8.String(),
			Fill:    "200,120,60",
		},
		Capture: Capture{
			Wait:    2 * time.Second,
			Retries: 5,
		},
		Output: Output{
			Dir:       svbcam.DefaultOutputDir,
			Algorithm: svbcam.NearestNeighbour.String(),
			Format:    svbcam.PNG.String(),
		},
		Recorder: Recorder{Root: "./archive"},
	}
}

// Load layers the file at path over the defaults. A missing file is not an error.
func Load(path string) (Config, error) {
	k := koanf.New(".")
	if err := k.Load(structs.Provider(Default(), "koanf"), nil); err != nil {
		return Config{}, fmt.Errorf("loading defaults: %w", err)
	}
	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("loading config %s: %w", path, err)
		}
	}
	var c Config
	if err := k.Unmarshal("", &c); err != nil {
		return Config{}, fmt.Errorf("decoding config: %w", err)
	}
	return c, nil
}

// Write encodes c as YAML, the format Load reads.
func Write(w io.Writer, c Config) error {
	enc := yml.NewEncoder(w)
	defer enc.Close()
	return enc.Encode(c)
}

// Validate parses every enumerated value once so bad files fail at startup.
func (c Config) Validate() error {
	if _, err := c.Camera.Simulator(); err != nil {
		return err
	}
	if _, err := svbcam.ParseDemosaic(c.Output.Algorithm); err != nil {
		return fmt.Errorf("output.algorithm: %w", err)
	}
	if _, err := svbcam.ParseImageFormat(c.Output.Format); err != nil {
		return fmt.Errorf("output.format: %w", err)
	}
	if c.Capture.Retries < 0 {
		return fmt.Errorf("capture.retries: must not be negative, got %d", c.Capture.Retries)
	}
	return nil
}

// Simulator converts the camera section into a simulator configuration.
func (c Camera) Simulator() (capture.SimulatorConfig, error) {
	pattern, err := svbcam.ParseCFA(c.Pattern)
	if err != nil {
		return capture.SimulatorConfig{}, fmt.Errorf("camera.pattern: %w", err)
	}
	typ, err := svb.ParseImageType(c.Type)
	if err != nil {
		return capture.SimulatorConfig{}, fmt.Errorf("camera.type: %w", err)
	}
	fill, err := parseFill(c.Fill)
	if err != nil {
		return capture.SimulatorConfig{}, fmt.Errorf("camera.fill: %w", err)
	}
	return capture.SimulatorConfig{
		Name:     c.Name,
		Width:    c.Width,
		Height:   c.Height,
		Bin:      c.Bin,
		Pattern:  pattern,
		Type:     typ,
		Fill:     fill,
		Exposure: c.Exposure,
	}, nil
}

func parseFill(s string) ([3]uint8, error) {
	var fill [3]uint8
	parts := strings.Split(s, ",")
	if len(parts) != 3 {
		return fill, fmt.Errorf("want three comma separated levels, got %q", s)
	}
	for i, p := range parts {
		v, err := strconv.ParseUint(strings.TrimSpace(p), 10, 8)
		if err != nil {
			return fill, err
		}
		fill[i] = uint8(v)
	}
	return fill, nil
}
