package main

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"svbcam/pkg/svbcam"
)

func newConvertCommand(a *app) *cobra.Command {
	var (
		in     inputFlags
		alg    string
		format string
	)
	cmd := &cobra.Command{
		Use:   "convert <input> [output]",
		Short: "Demosaic a raw dump or FITS file into a jpg, png or tiff image",
		Long: `convert demosaics a raw sensor dump or a FITS file and writes an RGB image.
The output format follows the extension of the output path. Without an output path
the file is written to output.dir with a time-stamped name in --format.`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := ""
			if len(args) == 2 {
				out = args[1]
			} else {
				if format == "" {
					format = a.cfg.Output.Format
				}
				f, err := svbcam.ParseImageFormat(format)
				if err != nil {
					return err
				}
				format = f.String()
			}
			// reject unknown extensions before doing any work
			if out != "" {
				if _, err := svbcam.ParseImageFormat(filepath.Ext(out)); err != nil {
					return err
				}
			}
			d, err := a.algorithm(alg)
			if err != nil {
				return err
			}
			raw, err := a.loadInput(args[0], &in)
			if err != nil {
				return err
			}

			start := time.Now()
			buf, err := svbcam.Debayer(raw, d)
			if err != nil {
				return err
			}
			img, err := buf.Image()
			if err != nil {
				return err
			}
			logger.Debug("demosaiced", "algorithm", d, "elapsed", time.Since(start))

			out, err = a.outputPath(out, format)
			if err != nil {
				return err
			}
			if err := svbcam.SaveImage(out, img); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), out)
			return nil
		},
	}
	in.register(cmd)
	cmd.Flags().StringVar(&alg, "alg", "", "demosaic algorithm: none, nearest, linear or cubic; defaults to output.algorithm")
	cmd.Flags().StringVar(&format, "format", "", "jpg, png or tiff when no output path is given; defaults to output.format")
	return cmd
}

func newStatsCommand(a *app) *cobra.Command {
	var (
		in  inputFlags
		alg string
	)
	cmd := &cobra.Command{
		Use:   "stats <input>",
		Short: "Print per-channel statistics of a demosaiced frame",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := a.algorithm(alg)
			if err != nil {
				return err
			}
			raw, err := a.loadInput(args[0], &in)
			if err != nil {
				return err
			}
			buf, err := svbcam.Debayer(raw, d)
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "%dx%d %d-bit %s, %s\n", raw.Width, raw.Height, raw.BitDepth, raw.Pattern, d)
			for c, st := range svbcam.ChannelStatistics(buf) {
				fmt.Fprintf(w, "  %s: %s\n", svbcam.Channel(c), st)
			}
			return nil
		},
	}
	in.register(cmd)
	cmd.Flags().StringVar(&alg, "alg", "", "demosaic algorithm; defaults to output.algorithm")
	return cmd
}
