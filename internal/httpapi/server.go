// Package httpapi serves hwptext extraction over HTTP.
package httpapi

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/hanpama/hwptext"
	"github.com/hanpama/hwptext/internal/config"
)

const requestIDHeader = "X-Request-Id"

// Options configures the handler.
type Options struct {
	// MaxBodyBytes limits the request body (default: 100 MB).
	MaxBodyBytes int64
	// Logger for request logs (default: slog.Default).
	Logger *slog.Logger
	// Timeout bounds one request (default: 60s).
	Timeout time.Duration
}

func (o *Options) defaults() {
	if o.MaxBodyBytes <= 0 {
		o.MaxBodyBytes = 100 << 20
	}
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
	if o.Timeout <= 0 {
		o.Timeout = 60 * time.Second
	}
}

type server struct {
	ex     *hwptext.Extractor
	opts   Options
	logger *slog.Logger
}

// NewHandler builds the router:
//
//	POST /v1/extract?keywords=a,b&format=hwp   body: document bytes
//	GET  /healthz
func NewHandler(ex *hwptext.Extractor, opts Options) http.Handler {
	opts.defaults()
	s := &server{ex: ex, opts: opts, logger: opts.Logger}

	r := chi.NewRouter()
	r.Use(s.requestID)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(opts.Timeout))

	r.Get("/healthz", s.healthz)
	r.Route("/v1", func(v1 chi.Router) {
		v1.Post("/extract", s.extract)
	})
	return r
}

type extractResponse struct {
	ID string `json:"id"`
	*hwptext.Result
}

type errorResponse struct {
	ID    string `json:"id"`
	Error string `json:"error"`
}

func (s *server) extract(w http.ResponseWriter, r *http.Request) {
	id := w.Header().Get(requestIDHeader)

	format, err := hwptext.ParseFormat(r.URL.Query().Get("format"))
	if err != nil {
		s.writeError(w, id, http.StatusBadRequest, err)
		return
	}
	keywords := config.SplitKeywords(r.URL.Query().Get("keywords"))

	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, s.opts.MaxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			s.writeError(w, id, http.StatusRequestEntityTooLarge, hwptext.ErrTooLarge)
			return
		}
		s.writeError(w, id, http.StatusBadRequest, err)
		return
	}
	if len(data) == 0 {
		s.writeError(w, id, http.StatusBadRequest, errors.New("empty request body"))
		return
	}

	res, err := s.ex.Extract(r.Context(), data, format, keywords)
	if err != nil {
		s.writeError(w, id, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, extractResponse{ID: id, Result: res})
}

func (s *server) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, hwptext.ErrTooLarge),
		errors.Is(err, hwptext.ErrStreamTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, hwptext.ErrUnknownFormat):
		return http.StatusUnsupportedMediaType
	case errors.Is(err, hwptext.ErrNotACompoundFile),
		errors.Is(err, hwptext.ErrNotAnArchive),
		errors.Is(err, hwptext.ErrMalformedXML),
		errors.Is(err, hwptext.ErrStreamNotFound),
		errors.Is(err, hwptext.ErrEncrypted),
		errors.Is(err, hwptext.ErrNoText):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func (s *server) writeError(w http.ResponseWriter, id string, status int, err error) {
	if status >= http.StatusInternalServerError {
		s.logger.Error("extract failed", "id", id, "err", err)
	}
	writeJSON(w, status, errorResponse{ID: id, Error: err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// requestID assigns every request a UUID, echoed in the X-Request-Id header.
func (s *server) requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set(requestIDHeader, uuid.NewString())
		next.ServeHTTP(w, r)
	})
}

func (s *server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Info("request",
			"id", ww.Header().Get(requestIDHeader),
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"elapsed", time.Since(start),
		)
	})
}
