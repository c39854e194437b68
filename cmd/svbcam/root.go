package main

import (
	"encoding/binary"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"svbcam/internal/config"
	"svbcam/internal/logging"
	"svbcam/pkg/svbcam"
)

var logger = logging.Logger("cli")

// app is the state shared by all commands once the config is loaded.
type app struct {
	configPath string
	logLevel   string
	cfg        config.Config
}

func newRootCommand() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:   "svbcam",
		Short: "Decode, convert and serve SVBONY camera frames",
		Long: `svbcam turns raw SVBONY sensor readouts into RGB images, FITS files and raw dumps,
and exposes a camera over HTTP.

Settings come from svbcam.yml in the working directory when it exists; mkconf writes
one with the defaults. Command line flags take precedence over the file.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.load()
		},
	}
	flags := root.PersistentFlags()
	flags.StringVar(&a.configPath, "config", config.FileName, "config file")
	flags.StringVar(&a.logLevel, "log-level", "", "debug, info, warn or error; overrides log.level")

	root.AddCommand(
		newConvertCommand(a),
		newFitsCommand(a),
		newRawCommand(a),
		newStatsCommand(a),
		newServeCommand(a),
		newMkconfCommand(a),
		newConfCommand(a),
		newVersionCommand(),
	)
	return root
}

func (a *app) load() error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	if a.logLevel != "" {
		cfg.Log.Level = a.logLevel
	}
	if err := logging.SetLevel(cfg.Log.Level); err != nil {
		return err
	}
	a.cfg = cfg
	return nil
}

// inputFlags describe how to type a raw dump. FITS inputs carry their own geometry.
type inputFlags struct {
	width     int
	height    int
	depth     int
	pattern   string
	bigEndian bool
}

func (f *inputFlags) register(cmd *cobra.Command) {
	flags := cmd.Flags()
	flags.IntVar(&f.width, "width", 0, "frame width of a raw input in pixels; defaults to camera.width")
	flags.IntVar(&f.height, "height", 0, "frame height of a raw input in pixels; defaults to camera.height")
	flags.IntVar(&f.depth, "depth", 0, "sample depth of a raw input, 8 or 16; defaults to the depth of camera.type")
	flags.StringVar(&f.pattern, "pattern", "", "CFA pattern RGGB, BGGR, GRBG or GBRG; defaults to camera.pattern, or BAYERPAT for FITS")
	flags.BoolVar(&f.bigEndian, "big-endian", false, "16-bit samples of a raw input are big endian")
}

func isFits(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".fits", ".fit", ".fts":
		return true
	}
	return false
}

// loadInput reads a FITS file or a raw dump.
func (a *app) loadInput(path string, f *inputFlags) (*svbcam.RawBuffer, error) {
	var pattern *svbcam.CFAPattern
	if f.pattern != "" {
		p, err := svbcam.ParseCFA(f.pattern)
		if err != nil {
			return nil, err
		}
		pattern = &p
	}

	if isFits(path) {
		img, err := svbcam.ReadFits(path)
		if err != nil {
			return nil, fmt.Errorf("reading FITS: %w", err)
		}
		if pattern != nil {
			img.Raw.Pattern = *pattern
		}
		logger.Debug("loaded FITS", "path", path, "width", img.Raw.Width, "height", img.Raw.Height, "bitpix", img.Raw.BitDepth)
		return img.Raw, nil
	}

	sim, err := a.cfg.Camera.Simulator()
	if err != nil {
		return nil, err
	}
	geom := svbcam.Geometry{
		Width:    firstNonZero(f.width, a.cfg.Camera.Width),
		Height:   firstNonZero(f.height, a.cfg.Camera.Height),
		BitDepth: firstNonZero(f.depth, sim.Type.BitDepth()),
		Pattern:  sim.Pattern,
	}
	if pattern != nil {
		geom.Pattern = *pattern
	}
	if f.bigEndian {
		geom.ByteOrder = binary.BigEndian
	}
	return svbcam.LoadRaw(path, geom)
}

func firstNonZero(v, fallback int) int {
	if v != 0 {
		return v
	}
	return fallback
}

// outputPath returns path, or a time-stamped name in the output dir when it is empty.
func (a *app) outputPath(path, ext string) (string, error) {
	if path == "" {
		path = svbcam.GenerateFilename(a.cfg.Output.Dir, ext, time.Now())
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", &svbcam.WriteError{Op: "mkdir", Path: filepath.Dir(path), Err: err}
	}
	return path, nil
}

func (a *app) algorithm(flag string) (svbcam.Demosaic, error) {
	if flag == "" {
		flag = a.cfg.Output.Algorithm
	}
	return svbcam.ParseDemosaic(flag)
}
