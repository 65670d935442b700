package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"github.com/dasmlab/sensebridge/pkg/service"
)

// ServiceName is reported by the liveness probe.
const ServiceName = "sense-bridge"

// maxBodyBytes caps the request body; larger bodies are rejected with 413.
const maxBodyBytes = 1 << 20

// HTTPServer exposes the analyze and translate endpoints to the web front end.
type HTTPServer struct {
	service *service.AnalysisService
	logger  *logrus.Logger
	server  *http.Server
}

// NewHTTPServer creates a new HTTP server listening on addr.
func NewHTTPServer(svc *service.AnalysisService, logger *logrus.Logger, addr string) *HTTPServer {
	if logger == nil {
		logger = logrus.New()
	}

	s := &HTTPServer{
		service: svc,
		logger:  logger,
	}
	s.server = &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// Handler builds the router with all routes and middleware.
func (s *HTTPServer) Handler() http.Handler {
	r := mux.NewRouter()
	r.Use(requestIDMiddleware, s.loggingMiddleware, metricsMiddleware)

	// Netlify function paths are kept so older front-end builds keep working.
	for _, prefix := range []string{"", "/.netlify/functions"} {
		r.Handle(prefix+"/analyze", corsMiddleware(http.HandlerFunc(s.handleAnalyze))).Methods(http.MethodPost, http.MethodOptions)
		r.Handle(prefix+"/translate", corsMiddleware(http.HandlerFunc(s.handleTranslate))).Methods(http.MethodPost, http.MethodOptions)
		r.Handle(prefix+"/ping", corsMiddleware(http.HandlerFunc(s.handlePing))).Methods(http.MethodGet, http.MethodOptions)
	}

	r.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)
	r.Handle("/metrics", promhttp.Handler())

	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	})
	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, "not found")
	})

	return r
}

// Start starts the HTTP server. It returns nil once Shutdown has been called.
func (s *HTTPServer) Start() error {
	s.logger.WithFields(logrus.Fields{
		"addr": s.server.Addr,
	}).Info("Starting HTTP server")

	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown gracefully stops the HTTP server.
func (s *HTTPServer) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

// handleAnalyze handles POST /analyze.
func (s *HTTPServer) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	body, ok := s.readBody(w, r)
	if !ok {
		return
	}
	req := service.ParseAnalysisRequest(body)

	result, err := s.service.Analyze(r.Context(), req)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	payload, err := presentAnalysis(result)
	if err != nil {
		s.logger.WithError(err).Error("Failed to encode analysis response")
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeRaw(w, http.StatusOK, payload)
}

// handleTranslate handles POST /translate.
func (s *HTTPServer) handleTranslate(w http.ResponseWriter, r *http.Request) {
	body, ok := s.readBody(w, r)
	if !ok {
		return
	}
	req := service.ParseTranslateRequest(body)

	result, err := s.service.Translate(r.Context(), req)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	payload, err := presentTranslation(result)
	if err != nil {
		s.logger.WithError(err).Error("Failed to encode translation response")
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeRaw(w, http.StatusOK, payload)
}

// handlePing is the liveness probe.
func (s *HTTPServer) handlePing(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"ok":      true,
		"service": ServiceName,
		"time":    time.Now().UTC().Format(time.RFC3339Nano),
	})
}

// handleHealth reports whether the model backend is configured.
func (s *HTTPServer) handleHealth(w http.ResponseWriter, _ *http.Request) {
	response := map[string]string{
		"status":  "healthy",
		"backend": s.service.Generator.Name(),
	}
	if err := s.service.Generator.Configured(); err != nil {
		response["status"] = "degraded"
		response["error"] = err.Error()
	}
	writeJSON(w, http.StatusOK, response)
}

// readBody reads the request body. On failure it writes the error response
// and returns false.
func (s *HTTPServer) readBody(w http.ResponseWriter, r *http.Request) ([]byte, bool) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			s.logger.WithFields(logrus.Fields{
				"limit": tooLarge.Limit,
			}).Warn("Request body too large")
			writeError(w, http.StatusRequestEntityTooLarge, fmt.Sprintf("request body exceeds %d bytes", tooLarge.Limit))
			return nil, false
		}
		s.logger.WithError(err).Warn("Failed to read request body")
		writeError(w, http.StatusBadRequest, "failed to read request body")
		return nil, false
	}
	return body, true
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	body, err := json.Marshal(v)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeRaw(w, status, body)
}

func writeError(w http.ResponseWriter, status int, message string) {
	body, _ := json.Marshal(errorPayload{OK: false, Error: message})
	writeRaw(w, status, body)
}

func writeRaw(w http.ResponseWriter, status int, body []byte) {
	setResponseHeaders(w.Header())
	w.WriteHeader(status)
	_, _ = w.Write(body)
}
