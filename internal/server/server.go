// Package server exposes the conversion pipeline over HTTP, so layouts can
// be converted without installing the CLI on the caller's machine.
package server

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/vale981/klayout-converter/pkg/convert"
	apperrors "github.com/vale981/klayout-converter/pkg/errors"
)

// MaxUploadBytes caps the accepted layout file size.
const MaxUploadBytes = 256 << 20

type ctxKey int

const ctxKeyRequestID ctxKey = iota

// Server handles conversion requests.
type Server struct {
	runner *convert.Runner
	logger *log.Logger
	opts   convert.Options
}

// New creates a server. The options act as server-side defaults; requests
// can override the top cell and unit per call.
func New(runner *convert.Runner, logger *log.Logger, opts convert.Options) *Server {
	if logger == nil {
		logger = log.Default()
	}
	return &Server{runner: runner, logger: logger, opts: opts}
}

// Handler builds the HTTP routing table.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(requestID)
	r.Use(middleware.Recoverer)
	r.Use(s.logRequests)

	r.Get("/healthz", s.handleHealth)
	r.Post("/convert", s.handleConvert)
	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleConvert accepts a raw GDSII body and responds with the conversion
// result. Query parameters top_cell, name_property and length_unit override
// the server defaults.
func (s *Server) handleConvert(w http.ResponseWriter, r *http.Request) {
	opts := s.opts
	if v := r.URL.Query().Get("top_cell"); v != "" {
		opts.TopCell = v
	}
	if v := r.URL.Query().Get("name_property"); v != "" {
		opts.NameProperty = v
	}
	if v := r.URL.Query().Get("length_unit"); v != "" {
		exp, err := strconv.Atoi(v)
		if err != nil {
			s.writeError(w, r, apperrors.New(apperrors.ErrCodeInvalidInput, "invalid length_unit %q", v))
			return
		}
		opts.SetLengthUnit(exp)
	}
	opts.Logger = s.logger

	// The readers work on files, so spool the body to a temp file.
	tmp, err := os.CreateTemp("", "upload-*.gds")
	if err != nil {
		s.writeError(w, r, apperrors.Wrap(apperrors.ErrCodeInternal, err, "cannot spool upload"))
		return
	}
	defer os.Remove(tmp.Name())

	body := http.MaxBytesReader(w, r.Body, MaxUploadBytes)
	if _, err := tmp.ReadFrom(body); err != nil {
		_ = tmp.Close()
		s.writeError(w, r, apperrors.Wrap(apperrors.ErrCodeInvalidInput, err, "cannot read request body"))
		return
	}
	if err := tmp.Close(); err != nil {
		s.writeError(w, r, apperrors.Wrap(apperrors.ErrCodeInternal, err, "cannot spool upload"))
		return
	}

	res, cached, err := s.runner.Convert(r.Context(), tmp.Name(), opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if cached {
		w.Header().Set("X-Cache", "HIT")
	}
	writeJSON(w, http.StatusOK, res)
}

// errorResponse is the JSON error body.
type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// writeError maps pipeline error codes onto HTTP statuses.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	code := apperrors.GetCode(err)
	if code == "" {
		code = apperrors.ErrCodeInternal
	}

	status := http.StatusInternalServerError
	switch code {
	case apperrors.ErrCodeInvalidInput, apperrors.ErrCodeParse, apperrors.ErrCodeMalformedGeometry:
		status = http.StatusBadRequest
	case apperrors.ErrCodeUnsupportedFormat:
		status = http.StatusUnsupportedMediaType
	case apperrors.ErrCodeCellNotFound, apperrors.ErrCodeFileNotFound:
		status = http.StatusNotFound
	}

	s.logger.Errorf("%s %s failed: %v", r.Method, r.URL.Path, err)
	writeJSON(w, status, errorResponse{Code: string(code), Message: apperrors.UserMessage(err)})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// requestID tags every request with a UUID for log correlation.
func requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := uuid.NewString()
		w.Header().Set("X-Request-ID", id)
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ctxKeyRequestID, id)))
	})
}

func requestIDFrom(r *http.Request) string {
	if id, ok := r.Context().Value(ctxKeyRequestID).(string); ok {
		return id
	}
	return "-"
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		s.logger.Infof("%s %s (%s) in %s", r.Method, r.URL.Path, requestIDFrom(r), time.Since(start))
	})
}
