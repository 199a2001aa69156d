package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	tberrors "github.com/FocuswithJustin/TallyBook/core/errors"
	"github.com/FocuswithJustin/TallyBook/core/fingerprint"
	"github.com/FocuswithJustin/TallyBook/core/report"
	"github.com/FocuswithJustin/TallyBook/core/spec"
	"github.com/FocuswithJustin/TallyBook/core/tally"
	"github.com/FocuswithJustin/TallyBook/internal/demos"
	"github.com/FocuswithJustin/TallyBook/internal/logging"
)

// APIResponse is the standard API response wrapper.
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *APIError   `json:"error,omitempty"`
	Meta    *APIMeta    `json:"meta,omitempty"`
}

// APIError represents an API error.
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// APIMeta contains response metadata.
type APIMeta struct {
	Total     int    `json:"total,omitempty"`
	Timestamp string `json:"timestamp"`
}

// TallyRequest is the request body for an ad-hoc grouped report over
// the built-in dataset.
type TallyRequest struct {
	// Group is a grouping clause: "a, b", "ROLLUP(a, b)",
	// "CUBE(a, b)", or "GROUPING SETS ((a), (b), ())".
	Group string `json:"group"`
	// Aggregates is a comma-separated aggregate list, e.g.
	// "SUM(salary) AS total, COUNT(*) AS headcount".
	Aggregates string `json:"aggregates"`
	// Title is an optional report title.
	Title string `json:"title,omitempty"`
	// SubtotalsFirst places subtotal rows before their detail rows.
	SubtotalsFirst bool `json:"subtotals_first,omitempty"`
}

// HealthInfo is the health check response.
type HealthInfo struct {
	Status  string `json:"status"`
	Version string `json:"version"`
	Uptime  string `json:"uptime"`
	Demos   int    `json:"demos"`
	Cached  int    `json:"cached"`
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		respondError(w, http.StatusNotFound, "NOT_FOUND", "Endpoint not found")
		return
	}

	respond(w, http.StatusOK, map[string]interface{}{
		"name":    "TallyBook API",
		"version": "1.0.0",
		"endpoints": []string{
			"GET /healthz",
			"GET /api/v1/demos",
			"GET /api/v1/demos/:id",
			"POST /api/v1/demos/:id/run",
			"POST /api/v1/tally",
			"WS /ws",
		},
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		respondError(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "Only GET is allowed")
		return
	}

	respond(w, http.StatusOK, HealthInfo{
		Status:  "healthy",
		Version: "1.0.0",
		Uptime:  time.Since(s.startTime).Round(time.Second).String(),
		Demos:   len(demos.List()),
		Cached:  s.env.Cache.Len(),
	})
}

func (s *Server) handleDemos(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		respondError(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "Only GET is allowed")
		return
	}

	list := demos.List()
	respondList(w, http.StatusOK, list, len(list))
}

func (s *Server) handleDemoByID(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/api/v1/demos/")
	id, action, _ := strings.Cut(rest, "/")
	if id == "" {
		respondError(w, http.StatusBadRequest, "MISSING_ID", "Demo ID is required")
		return
	}

	switch action {
	case "":
		if r.Method != http.MethodGet {
			respondError(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "Only GET is allowed")
			return
		}
		s.getDemoHandler(w, r, id)
	case "run":
		if r.Method != http.MethodPost {
			respondError(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "Only POST is allowed")
			return
		}
		s.runDemoHandler(w, r, id)
	default:
		respondError(w, http.StatusNotFound, "NOT_FOUND", "Endpoint not found")
	}
}

func (s *Server) getDemoHandler(w http.ResponseWriter, r *http.Request, id string) {
	demo := demos.Get(id)
	if demo == nil {
		respondError(w, http.StatusNotFound, "NOT_FOUND", fmt.Sprintf("Demo not found: %s", id))
		return
	}
	respond(w, http.StatusOK, demo)
}

func (s *Server) runDemoHandler(w http.ResponseWriter, r *http.Request, id string) {
	demo := demos.Get(id)
	if demo == nil {
		respondError(w, http.StatusNotFound, "NOT_FOUND", fmt.Sprintf("Demo not found: %s", id))
		return
	}

	name := r.URL.Query().Get("format")
	if name == "" {
		name = "json"
	}
	format, err := report.ParseFormat(name)
	if err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_FORMAT",
			fmt.Sprintf("Unsupported format: %s (want text, csv, json, or xml)", name))
		return
	}

	s.broadcastProgress("demo_run", "evaluate", fmt.Sprintf("Running demo %s", id), 10)

	start := time.Now()
	rep, err := demo.Run(r.Context(), s.env)
	if err != nil {
		logging.DemoError(id, "run", err)
		s.broadcastError("demo_run", fmt.Sprintf("Demo %s failed: %v", id, err))
		respondError(w, http.StatusInternalServerError, "RUN_FAILED",
			fmt.Sprintf("Demo run failed: %v", err))
		return
	}
	duration := time.Since(start)

	logging.DemoRun(id, demo.Category, len(rep.Rows), duration)
	s.broadcastComplete("demo_run", fmt.Sprintf("Demo %s complete", id), map[string]interface{}{
		"demo_id":  id,
		"rows":     len(rep.Rows),
		"duration": duration.String(),
	})

	s.writeReport(w, rep, format)
}

func (s *Server) handleTally(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		respondError(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "Only POST is allowed")
		return
	}

	var req TallyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_JSON",
			fmt.Sprintf("Invalid request body: %v", err))
		return
	}

	gspec, err := spec.ParseGrouping(req.Group)
	if err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_GROUPING",
			fmt.Sprintf("Invalid grouping clause: %v", err))
		return
	}
	aggs, err := spec.ParseAggregates(req.Aggregates)
	if err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_AGGREGATES",
			fmt.Sprintf("Invalid aggregate list: %v", err))
		return
	}

	request := tally.Request{Spec: gspec, Aggregates: aggs, SubtotalsFirst: req.SubtotalsFirst}
	compute := func() (*tally.Result, error) {
		return tally.Run(r.Context(), s.env.Employees, request)
	}

	// The fingerprint does not capture row ordering, so subtotals-first
	// results are computed directly.
	var res *tally.Result
	var cached bool
	if s.env.Cache != nil && !req.SubtotalsFirst {
		res, cached, err = s.env.Cache.GetOrCompute(
			fingerprint.Query(s.env.Employees, gspec, aggs), compute)
	} else {
		res, err = compute()
	}
	if err != nil {
		if tberrors.Is(err, tberrors.ErrInvalidInput) || tberrors.Is(err, tberrors.ErrNotFound) {
			respondError(w, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
			return
		}
		respondError(w, http.StatusInternalServerError, "TALLY_FAILED", err.Error())
		return
	}

	logging.QueryEvent(req.Group, len(res.Rows), cached)

	rep := report.Build(res, report.Options{Title: req.Title})
	s.writeReport(w, rep, report.FormatJSON)
}

// writeReport renders a report in the requested format. JSON reports
// ride inside the standard envelope; the other formats are written raw
// with a matching content type.
func (s *Server) writeReport(w http.ResponseWriter, rep *report.Report, format report.Format) {
	var buf bytes.Buffer
	if err := report.Render(&buf, rep, format); err != nil {
		respondError(w, http.StatusInternalServerError, "RENDER_FAILED", err.Error())
		return
	}

	if format == report.FormatJSON {
		respond(w, http.StatusOK, json.RawMessage(buf.Bytes()))
		return
	}

	contentType := "text/plain; charset=utf-8"
	switch format {
	case report.FormatCSV:
		contentType = "text/csv"
	case report.FormatXML:
		contentType = "application/xml"
	}
	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}

func respond(w http.ResponseWriter, status int, data interface{}) {
	response := APIResponse{
		Success: true,
		Data:    data,
		Meta: &APIMeta{
			Timestamp: time.Now().UTC().Format(time.RFC3339),
		},
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(response)
}

func respondList(w http.ResponseWriter, status int, data interface{}, total int) {
	response := APIResponse{
		Success: true,
		Data:    data,
		Meta: &APIMeta{
			Total:     total,
			Timestamp: time.Now().UTC().Format(time.RFC3339),
		},
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(response)
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	response := APIResponse{
		Success: false,
		Error: &APIError{
			Code:    code,
			Message: message,
		},
		Meta: &APIMeta{
			Timestamp: time.Now().UTC().Format(time.RFC3339),
		},
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(response)
}
