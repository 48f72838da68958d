// Package api exposes the analyzer over HTTP.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"github.com/tushar-tomar11/whatsapp-chat-analyzer/internal/analytics"
	"github.com/tushar-tomar11/whatsapp-chat-analyzer/internal/models"
	"github.com/tushar-tomar11/whatsapp-chat-analyzer/internal/pipeline"
	"github.com/tushar-tomar11/whatsapp-chat-analyzer/internal/report"
	"github.com/tushar-tomar11/whatsapp-chat-analyzer/internal/sources"
	"github.com/tushar-tomar11/whatsapp-chat-analyzer/internal/storage"
	"github.com/tushar-tomar11/whatsapp-chat-analyzer/internal/transcript"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// Pipeline is the subset of *pipeline.Service the handlers use
type Pipeline interface {
	AnalyzeTranscript(ctx context.Context, name string, data []byte, req report.Request) (*models.Report, error)
	AnalyzeRemote(ctx context.Context, url string, req report.Request) (*models.Report, error)
	GetReport(ctx context.Context, name string) ([]byte, error)
	RunBatch(ctx context.Context) (*models.Digest, error)
	GetMetrics() string
}

// Ensure *pipeline.Service satisfies Pipeline
var _ Pipeline = (*pipeline.Service)(nil)

// Handler serves the HTTP API
type Handler struct {
	pipeline       Pipeline
	maxUploadBytes int64
}

// NewHandler creates the API handler
func NewHandler(p Pipeline, maxUploadBytes int64) *Handler {
	return &Handler{pipeline: p, maxUploadBytes: maxUploadBytes}
}

// Router registers every endpoint on a new mux router
func (h *Handler) Router() *mux.Router {
	router := mux.NewRouter()

	router.HandleFunc("/health", h.health).Methods("GET")
	router.HandleFunc("/metrics", h.metrics).Methods("GET")
	router.HandleFunc("/schema", h.schema).Methods("GET")
	router.HandleFunc("/analyze", h.analyze).Methods("POST")
	router.HandleFunc("/analyze/remote", h.analyzeRemote).Methods("POST")
	router.HandleFunc("/reports/{name:.+}", h.getReport).Methods("GET")
	router.HandleFunc("/trigger", h.trigger).Methods("POST")

	return router
}

func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":    "healthy",
		"timestamp": time.Now().Format(time.RFC3339),
	})
}

func (h *Handler) metrics(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(h.pipeline.GetMetrics()))
}

func (h *Handler) schema(w http.ResponseWriter, r *http.Request) {
	data, err := report.Schema()
	if err != nil {
		writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/schema+json")
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

func (h *Handler) analyze(w http.ResponseWriter, r *http.Request) {
	req, format, err := parseRequest(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, h.maxUploadBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeJSON(w, http.StatusRequestEntityTooLarge, map[string]string{"error": "transcript exceeds upload limit"})
			return
		}
		writeError(w, err)
		return
	}

	name := r.URL.Query().Get("name")
	if name == "" {
		name = fmt.Sprintf("upload-%s.txt", time.Now().UTC().Format("20060102-150405"))
	}
	name = path.Base(name)

	result, err := h.pipeline.AnalyzeTranscript(r.Context(), name, data, req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeReport(w, result, format)
}

func (h *Handler) analyzeRemote(w http.ResponseWriter, r *http.Request) {
	req, format, err := parseRequest(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	url := r.URL.Query().Get("url")
	if url == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "url query parameter is required"})
		return
	}

	result, err := h.pipeline.AnalyzeRemote(r.Context(), url, req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeReport(w, result, format)
}

func (h *Handler) getReport(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]
	data, err := h.pipeline.GetReport(r.Context(), name)
	if err != nil {
		writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

func (h *Handler) trigger(w http.ResponseWriter, r *http.Request) {
	go func() {
		if _, err := h.pipeline.RunBatch(context.Background()); err != nil {
			logrus.Errorf("Manual batch trigger failed: %v", err)
		}
	}()

	writeJSON(w, http.StatusOK, map[string]string{"message": "Batch analysis triggered successfully"})
}

// parseRequest reads user, sections, anonymize and format from the query string
func parseRequest(r *http.Request) (report.Request, string, error) {
	q := r.URL.Query()
	req := report.Request{Scope: models.ParseScope(q.Get("user"))}

	sections, err := report.ParseSections(q.Get("sections"))
	if err != nil {
		return req, "", err
	}
	req.Sections = sections

	if v := q.Get("anonymize"); v != "" {
		anonymize, err := strconv.ParseBool(v)
		if err != nil {
			return req, "", fmt.Errorf("anonymize must be a boolean: %q", v)
		}
		req.Anonymize = anonymize
	}

	format := strings.ToLower(q.Get("format"))
	switch format {
	case "":
		format = "json"
	case "json", "csv", "xlsx":
	default:
		return req, "", fmt.Errorf("unsupported format %q", format)
	}
	return req, format, nil
}

func writeReport(w http.ResponseWriter, r *models.Report, format string) {
	var err error
	switch format {
	case "csv":
		w.Header().Set("Content-Type", "text/csv")
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", r.ID+".csv"))
		err = report.WriteCSV(w, r)
	case "xlsx":
		w.Header().Set("Content-Type", xlsxContentType)
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", r.ID+".xlsx"))
		err = report.WriteXLSX(w, r)
	default:
		w.Header().Set("Content-Type", "application/json")
		err = report.WriteJSON(w, r)
	}

	if errors.Is(err, report.ErrNoSummary) {
		w.Header().Del("Content-Disposition")
		writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"error": err.Error()})
		return
	}
	if err != nil {
		logrus.WithError(err).WithField("format", format).Error("Failed to write report")
	}
}

// statusFor maps domain errors onto HTTP status codes
func statusFor(err error) int {
	switch {
	case errors.Is(err, analytics.ErrUnknownSender), errors.Is(err, storage.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, analytics.ErrInvalidLog),
		errors.Is(err, transcript.ErrUnrecognizedFormat),
		errors.Is(err, transcript.ErrInvalidTimestamp):
		return http.StatusUnprocessableEntity
	case errors.Is(err, report.ErrUnknownSection):
		return http.StatusBadRequest
	case errors.Is(err, sources.ErrTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, pipeline.ErrBatchRunning):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func writeError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		logrus.WithError(err).Error("Request failed")
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
