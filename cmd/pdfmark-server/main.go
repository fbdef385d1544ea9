// Command pdfmark-server exposes the markup pipeline over HTTP.
//
// POST /process-pdf accepts {"pdf": <base64>, "analyzeResult": {...}} and
// returns {"processed_pdf": <base64>}. GET /health and GET /metrics are
// provided for operations.
package main

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"github.com/tsawler/pdfmark"
)

var (
	requestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pdfmark_requests_total",
			Help: "Total number of markup requests by status code",
		},
		[]string{"code"},
	)

	requestDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "pdfmark_request_duration_seconds",
		Help:    "Markup request duration",
		Buckets: prometheus.DefBuckets,
	})

	entitiesSkipped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "pdfmark_entities_skipped_total",
		Help: "Total number of entity regions skipped during markup",
	})
)

type processRequest struct {
	PDF           string          `json:"pdf"`
	AnalyzeResult json.RawMessage `json:"analyzeResult"`
}

type processResponse struct {
	ProcessedPDF string `json:"processed_pdf"`
}

type errorResponse struct {
	Error string `json:"error"`
}

type server struct {
	logger *logrus.Logger
}

func main() {
	// .env is optional; real deployments configure via the environment.
	_ = godotenv.Load()

	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	if levelName := os.Getenv("LOG_LEVEL"); levelName != "" {
		level, err := logrus.ParseLevel(levelName)
		if err != nil {
			logger.Fatalf("Invalid LOG_LEVEL: %v", err)
		}
		logger.SetLevel(level)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	s := &server{logger: logger}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /process-pdf", s.handleProcessPDF)
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.Handle("GET /metrics", promhttp.Handler())

	logger.Infof("Listening on :%s", port)
	if err := http.ListenAndServe(":"+port, mux); err != nil {
		logger.Fatalf("Server error: %v", err)
	}
}

func (s *server) handleProcessPDF(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	defer func() {
		requestDuration.Observe(time.Since(start).Seconds())
	}()

	var req processRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.fail(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if req.PDF == "" || len(req.AnalyzeResult) == 0 {
		s.fail(w, http.StatusBadRequest, "both pdf and analyzeResult are required")
		return
	}

	pdfBytes, err := base64.StdEncoding.DecodeString(req.PDF)
	if err != nil {
		s.fail(w, http.StatusBadRequest, "pdf must be base64-encoded: "+err.Error())
		return
	}

	out, warnings, err := pdfmark.FromBytes(pdfBytes).
		AnalysisJSON(req.AnalyzeResult).
		Logger(s.logger).
		Bytes()
	for _, warning := range warnings {
		if warning.Kind == pdfmark.WarnInvalidGeometry {
			entitiesSkipped.Inc()
		}
	}
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, pdfmark.ErrCorruptDocument) || errors.Is(err, pdfmark.ErrInvalidAnalysis) {
			status = http.StatusBadRequest
		}
		s.logger.WithField("status", status).Errorf("Error processing document: %v", err)
		s.fail(w, status, err.Error())
		return
	}

	s.logger.WithFields(logrus.Fields{
		"bytes":    len(out),
		"warnings": len(warnings),
	}).Info("Document processed")

	s.respond(w, http.StatusOK, processResponse{
		ProcessedPDF: base64.StdEncoding.EncodeToString(out),
	})
}

func (s *server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.respond(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *server) respond(w http.ResponseWriter, status int, body any) {
	requestsTotal.WithLabelValues(strconv.Itoa(status)).Inc()
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		s.logger.Errorf("Writing response: %v", err)
	}
}

func (s *server) fail(w http.ResponseWriter, status int, message string) {
	s.respond(w, status, errorResponse{Error: message})
}
