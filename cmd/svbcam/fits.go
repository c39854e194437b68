package main

import (
	"bytes"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"svbcam/pkg/svbcam"
)

func newFitsCommand(a *app) *cobra.Command {
	var (
		in         inputFlags
		pad        bool
		standard   bool
		instrument string
	)
	cmd := &cobra.Command{
		Use:   "fits <input> [output]",
		Short: "Wrap a raw dump in a FITS file",
		Long: `fits writes a mono raw frame as FITS. By default the header holds only the image
geometry and the samples follow unchanged in camera byte order; --pad fills the data
unit up to a whole block. --standard writes a standard conforming file instead, with
big-endian samples, BZERO and the CFA pattern.`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := a.loadInput(args[0], &in)
			if err != nil {
				return err
			}
			out := ""
			if len(args) == 2 {
				out = args[1]
			}
			out, err = a.outputPath(out, "fits")
			if err != nil {
				return err
			}

			var data []byte
			if standard {
				if instrument == "" {
					instrument = a.cfg.Camera.Name
				}
				data, err = standardFits(raw, instrument)
			} else {
				data, err = svbcam.EncodeFitsWithOptions(raw, svbcam.FitsOptions{PadData: pad})
			}
			if err != nil {
				return err
			}
			if err := os.WriteFile(out, data, 0o644); err != nil {
				return &svbcam.WriteError{Op: "write", Path: out, Err: err}
			}
			fmt.Fprintln(cmd.OutOrStdout(), out)
			return nil
		},
	}
	in.register(cmd)
	flags := cmd.Flags()
	flags.BoolVar(&pad, "pad", false, "pad the data unit with zeros to a multiple of 2880 bytes")
	flags.BoolVar(&standard, "standard", false, "write a standard FITS file with BZERO and metadata cards")
	flags.StringVar(&instrument, "instrument", "", "INSTRUME card of --standard files; defaults to camera.name")
	return cmd
}

func standardFits(raw *svbcam.RawBuffer, instrument string) ([]byte, error) {
	meta := svbcam.FrameMetadata{Instrument: instrument, Pattern: &raw.Pattern}
	var buf bytes.Buffer
	if err := svbcam.WriteStandardFits(&buf, raw, meta.Cards()...); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func newRawCommand(a *app) *cobra.Command {
	var in inputFlags
	cmd := &cobra.Command{
		Use:   "raw <input> [output]",
		Short: "Write the samples of a FITS file or raw dump as a raw dump",
		Long: `raw copies the frame samples through unchanged. Given a FITS file it strips the
header and leaves the camera byte order raw dump behind.`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := a.loadInput(args[0], &in)
			if err != nil {
				return err
			}
			out := ""
			if len(args) == 2 {
				out = args[1]
			}
			out, err = a.outputPath(out, "raw")
			if err != nil {
				return err
			}
			if err := svbcam.SaveRaw(out, raw); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), out)
			return nil
		},
	}
	in.register(cmd)
	return cmd
}
