// Package server exposes a camera over HTTP: frames are grabbed on request and returned
// as images, FITS files or raw dumps.
package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"svbcam/internal/capture"
	"svbcam/internal/logging"
	"svbcam/pkg/svbcam"
)

var logger = logging.Logger("server")

const (
	formatFits = "fits"
	formatRaw  = "raw"
)

// Options are the defaults used when a request leaves a parameter out.
type Options struct {
	// Format is one of jpg, png, tiff, fits, raw
	Format    string
	Algorithm svbcam.Demosaic
}

// Server serves frames from one grabber.
type Server struct {
	grabber  *capture.Grabber
	recorder *Recorder
	metrics  *Metrics
	registry *prometheus.Registry
	opts     Options
}

// New returns a server around g. rec may be nil.
func New(g *capture.Grabber, rec *Recorder, opts Options) *Server {
	if opts.Format == "" {
		opts.Format = svbcam.PNG.String()
	}
	reg := prometheus.NewRegistry()
	return &Server{
		grabber:  g,
		recorder: rec,
		metrics:  NewMetrics(reg),
		registry: reg,
		opts:     opts,
	}
}

// Handler returns the routed handler with middleware applied.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)

	r.Get("/image", s.image)
	r.Get("/roi", s.roi)
	r.Get("/info", s.info)
	r.Get("/stats", s.stats)
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}))
	return r
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		logger.Debug("request",
			"id", middleware.GetReqID(r.Context()),
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"elapsed", time.Since(start))
	})
}

// httpStatus maps decode errors to a status code.
func httpStatus(err error) int {
	switch {
	case errors.Is(err, svbcam.ErrUnsupportedFormat), errors.Is(err, svbcam.ErrUnknownDemosaic):
		return http.StatusBadRequest
	case errors.Is(err, svbcam.ErrUnsupportedChannelCount):
		// the camera is in a mode the requested output cannot hold
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("encoding response", "err", err)
	}
}

// query holds the parsed parameters of an /image or /stats request.
type query struct {
	format   string
	alg      svbcam.Demosaic
	pad      bool
	standard bool
}

func (s *Server) parseQuery(r *http.Request) (query, error) {
	q := r.URL.Query()
	out := query{format: strings.ToLower(q.Get("fmt")), alg: s.opts.Algorithm}
	if out.format == "" {
		out.format = s.opts.Format
	}
	switch out.format {
	case formatFits, formatRaw:
	default:
		f, err := svbcam.ParseImageFormat(out.format)
		if err != nil {
			return out, err
		}
		out.format = f.String()
	}
	if a := q.Get("alg"); a != "" {
		alg, err := svbcam.ParseDemosaic(a)
		if err != nil {
			return out, err
		}
		out.alg = alg
	}
	for name, dst := range map[string]*bool{"pad": &out.pad, "standard": &out.standard} {
		if v := q.Get(name); v != "" {
			b, err := strconv.ParseBool(v)
			if err != nil {
				return out, fmt.Errorf("invalid %s=%q: %w", name, v, err)
			}
			*dst = b
		}
	}
	return out, nil
}

func (s *Server) grab(w http.ResponseWriter, r *http.Request) (*capture.Frame, bool) {
	frame, err := s.grabber.Grab(r.Context())
	if err != nil {
		s.metrics.captureErrors.Inc()
		logger.Error("capture failed", "err", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return nil, false
	}
	return frame, true
}

// rgb turns a frame into an RGB image: mosaics are demosaiced, mono frames are
// replicated into all channels and RGB frames are used as they are.
func (s *Server) rgb(frame *capture.Frame, alg svbcam.Demosaic) (*svbcam.RGBImage, error) {
	raw := frame.Raw
	switch raw.NumChannels() {
	case 3:
		// RGB24 frames arrive from the camera in R, G, B byte order
		return svbcam.Assemble(raw.Data, raw.Width, raw.Height)
	case 1:
	default:
		return nil, fmt.Errorf("%w: %d", svbcam.ErrUnsupportedChannelCount, raw.NumChannels())
	}
	if !frame.Snapshot.Type.Mosaiced() {
		return monoImage(raw), nil
	}
	start := time.Now()
	buf, err := svbcam.Debayer(raw, alg)
	if err != nil {
		return nil, err
	}
	s.metrics.decodeSeconds.WithLabelValues(alg.String()).Observe(time.Since(start).Seconds())
	return buf.Image()
}

func monoImage(raw *svbcam.RawBuffer) *svbcam.RGBImage {
	shift := uint(raw.BitDepth - 8)
	pix := make([]byte, 0, 3*raw.Width*raw.Height)
	for i := 0; i < raw.Width*raw.Height; i++ {
		v := byte(raw.Sample(i) >> shift)
		pix = append(pix, v, v, v)
	}
	img, _ := svbcam.Assemble(pix, raw.Width, raw.Height)
	return img
}

func (s *Server) encode(frame *capture.Frame, q query) ([]byte, string, error) {
	var buf bytes.Buffer
	switch q.format {
	case formatFits:
		if !q.standard {
			b, err := svbcam.EncodeFitsWithOptions(frame.Raw, svbcam.FitsOptions{PadData: q.pad})
			return b, "image/fits", err
		}
		meta := svbcam.FrameMetadata{
			Instrument: s.grabber.Camera.Info().Name(),
			Pattern:    &frame.Raw.Pattern,
			Bin:        frame.Snapshot.ROI.Bin,
			StartX:     frame.Snapshot.ROI.StartX,
			StartY:     frame.Snapshot.ROI.StartY,
			Time:       frame.Time,
		}
		err := svbcam.WriteStandardFits(&buf, frame.Raw, meta.Cards()...)
		return buf.Bytes(), "image/fits", err
	case formatRaw:
		err := svbcam.WriteRaw(&buf, frame.Raw)
		return buf.Bytes(), "application/octet-stream", err
	}
	f, err := svbcam.ParseImageFormat(q.format)
	if err != nil {
		return nil, "", err
	}
	img, err := s.rgb(frame, q.alg)
	if err != nil {
		return nil, "", err
	}
	if err := svbcam.EncodeImage(&buf, img, f); err != nil {
		return nil, "", err
	}
	return buf.Bytes(), f.ContentType(), nil
}

// image grabs a frame and returns it encoded as fmt=jpg|png|tiff|fits|raw.
// alg picks the demosaic algorithm, pad=true pads the FITS data unit and
// standard=true writes a standard FITS file with frame metadata.
func (s *Server) image(w http.ResponseWriter, r *http.Request) {
	q, err := s.parseQuery(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	frame, ok := s.grab(w, r)
	if !ok {
		return
	}
	body, contentType, err := s.encode(frame, q)
	if err != nil {
		logger.Error("encoding frame", "format", q.format, "err", err)
		http.Error(w, err.Error(), httpStatus(err))
		return
	}

	fn := svbcam.GenerateFilename("", q.format, frame.Time)
	if s.recorder.active() {
		saved, err := s.recorder.Save(q.format, body, frame.Time)
		if err != nil {
			// archiving must not cost the client its frame
			s.metrics.recordErrors.Inc()
			logger.Error("recording frame", "err", err)
		} else {
			logger.Debug("recorded frame", "path", saved)
		}
	}
	s.metrics.frames.WithLabelValues(q.format).Inc()

	hdr := w.Header()
	hdr.Set("Content-Type", contentType)
	hdr.Set("Content-Length", strconv.Itoa(len(body)))
	hdr.Set("Content-Disposition", "inline; filename="+filepath.Base(fn))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(body); err != nil {
		logger.Warn("writing response", "err", err)
	}
}

func (s *Server) roi(w http.ResponseWriter, r *http.Request) {
	snap, err := capture.TakeSnapshot(s.grabber.Camera)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, struct {
		capture.Snapshot
		Pattern    string `json:"pattern"`
		BufferSize int    `json:"bufferSize"`
	}{snap, snap.Pattern.String(), snap.BufferSize()})
}

func (s *Server) info(w http.ResponseWriter, r *http.Request) {
	cam := s.grabber.Camera
	writeJSON(w, struct {
		Info     interface{} `json:"info"`
		Property interface{} `json:"property"`
	}{cam.Info(), cam.Property()})
}

// ChannelStats is the /stats response.
type ChannelStats struct {
	Algorithm string            `json:"algorithm"`
	Red       svbcam.Statistics `json:"red"`
	Green     svbcam.Statistics `json:"green"`
	Blue      svbcam.Statistics `json:"blue"`
}

func (s *Server) stats(w http.ResponseWriter, r *http.Request) {
	q, err := s.parseQuery(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	frame, ok := s.grab(w, r)
	if !ok {
		return
	}
	img, err := s.rgb(frame, q.alg)
	if err != nil {
		http.Error(w, err.Error(), httpStatus(err))
		return
	}
	st := svbcam.ChannelStatistics(&svbcam.DebayeredBuffer{Pix: img.Pix, Width: img.Rect.Dx(), Height: img.Rect.Dy()})
	writeJSON(w, ChannelStats{Algorithm: q.alg.String(), Red: st[0], Green: st[1], Blue: st[2]})
}
