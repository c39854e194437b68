package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"svbcam/internal/capture"
	"svbcam/internal/server"
	"svbcam/pkg/svbcam"
)

func newServeCommand(a *app) *cobra.Command {
	var (
		addr   string
		record bool
	)
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the configured camera over HTTP",
		Long: `serve exposes the camera over HTTP:

	GET /image?fmt=png|jpg|tiff|fits|raw&alg=none|nearest|linear|cubic&pad=true&standard=true
	GET /roi
	GET /info
	GET /stats?alg=...
	GET /metrics

With no hardware attached the camera section of the config describes a simulated sensor.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := a.cfg
			if err := cfg.Validate(); err != nil {
				return err
			}
			if addr != "" {
				cfg.Addr = addr
			}
			if cmd.Flags().Changed("record") {
				cfg.Recorder.Enabled = record
			}

			simCfg, err := cfg.Camera.Simulator()
			if err != nil {
				return err
			}
			cam, err := capture.NewSimulator(simCfg)
			if err != nil {
				return err
			}
			alg, err := svbcam.ParseDemosaic(cfg.Output.Algorithm)
			if err != nil {
				return err
			}
			g := &capture.Grabber{
				Camera:     cam,
				Wait:       cfg.Capture.Wait,
				MaxRetries: cfg.Capture.Retries,
				Limiter:    capture.NewLimiter(cfg.Capture.FPS),
			}
			rec := &server.Recorder{Root: cfg.Recorder.Root, Enabled: cfg.Recorder.Enabled}
			srv := server.New(g, rec, server.Options{Format: cfg.Output.Format, Algorithm: alg})

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return listen(ctx, cfg.Addr, srv.Handler())
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address; defaults to addr")
	cmd.Flags().BoolVar(&record, "record", false, "archive every served frame under recorder.root")
	return cmd
}

// listen serves h on addr until ctx is done.
func listen(ctx context.Context, addr string, h http.Handler) error {
	hs := &http.Server{Addr: addr, Handler: h, ReadHeaderTimeout: 10 * time.Second}
	errc := make(chan error, 1)
	go func() {
		logger.Info("now listening for requests", "addr", addr)
		errc <- hs.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}
	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := hs.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errc; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
