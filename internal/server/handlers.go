package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/MaitreJV/pseudoshield/internal/journal"
	"github.com/MaitreJV/pseudoshield/internal/privacy"
	"github.com/MaitreJV/pseudoshield/internal/websocket"
	"go.uber.org/zap"
)

// maxProcessBytes caps the request body accepted by the process endpoint
const maxProcessBytes = 1 << 20

// ProcessRequest is the body of POST /v1/process
type ProcessRequest struct {
	Text          string   `json:"text"`
	SourceContext string   `json:"sourceContext,omitempty"`
	MinConfidence string   `json:"minConfidence,omitempty"`
	Detectors     []string `json:"detectors,omitempty"`
}

// RevealRequest is the body of POST /v1/pseudonyms/reveal
type RevealRequest struct {
	Pseudonym string `json:"pseudonym"`
}

// RevealResponse is the answer to a reveal request
type RevealResponse struct {
	Pseudonym  string `json:"pseudonym"`
	Original   string `json:"original,omitempty"`
	Revealable bool   `json:"revealable"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":    "healthy",
		"timestamp": time.Now().Format(time.RFC3339),
	})
}

func (s *Server) handleInfo(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"name":             "pseudoshield",
		"version":          "0.1.0",
		"privacy_enabled":  s.config.Privacy.Enabled,
		"storage_backend":  s.config.Storage.Backend,
		"active_rules":     len(s.detector.Registry().ListEnabled(nil)),
		"uptime":           time.Since(s.startTime).Round(time.Second).String(),
		"total_operations": s.totalOps.Load(),
		"session_id":       s.journal.SessionID(),
	})
}

func (s *Server) handleProcess(w http.ResponseWriter, r *http.Request) {
	requestID := getRequestID(r.Context())
	log := s.logger.WithRequestID(requestID)

	r.Body = http.MaxBytesReader(w, r.Body, maxProcessBytes)
	var req ProcessRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if !s.config.Privacy.Enabled {
		writeError(w, http.StatusServiceUnavailable, "detection is disabled")
		return
	}

	opts := privacy.Options{
		AllowList: req.Detectors,
	}
	if req.MinConfidence != "" {
		opts.MinConfidence = privacy.ParseConfidence(req.MinConfidence)
	}

	result := s.pipeline.Process(r.Context(), req.Text, opts)
	s.totalOps.Add(1)

	if s.config.Journal.Enabled && result.ReplacementCount > 0 {
		s.journal.Log(r.Context(), result, req.SourceContext)
	}

	if result.ReplacementCount > 0 {
		legal := make(map[string]int, len(result.LegalCategoryCounts))
		for k, v := range result.LegalCategoryCounts {
			legal[string(k)] = v
		}
		s.wsHub.BroadcastEvent(websocket.Event{
			Type:      websocket.EventTypeDetection,
			Timestamp: time.Now(),
			RequestID: requestID,
			Data: websocket.DetectionEvent{
				RequestID:        requestID,
				SourceContext:    req.SourceContext,
				TriggeredRuleIDs: result.TriggeredRuleIDs(),
				ReplacementCount: result.ReplacementCount,
				LegalCounts:      legal,
				ProcessingMS:     result.DurationMs,
			},
		})

		if info, err := s.governor.Check(r.Context()); err == nil && info.IsWarning {
			s.wsHub.BroadcastEvent(websocket.Event{
				Type:      websocket.EventTypeQuota,
				Timestamp: time.Now(),
				Data: websocket.QuotaEvent{
					UsedBytes:  info.BytesUsed,
					TotalBytes: info.BytesTotal,
					Percent:    info.PercentUsed,
					Warning:    info.IsWarning,
					Critical:   info.IsCritical,
				},
			})
		}
	}

	log.Debug("Process request handled",
		zap.Int("replacements", result.ReplacementCount),
		zap.Int64("duration_ms", result.DurationMs),
	)

	writeJSON(w, http.StatusOK, result)
}

// journalFilter builds a journal filter from query parameters. Dates are
// RFC 3339 or plain yyyy-mm-dd.
func journalFilter(r *http.Request) (journal.Filter, error) {
	var filter journal.Filter
	q := r.URL.Query()

	parse := func(value string) (time.Time, error) {
		if t, err := time.Parse(time.RFC3339, value); err == nil {
			return t, nil
		}
		return time.Parse("2006-01-02", value)
	}

	if from := q.Get("from"); from != "" {
		t, err := parse(from)
		if err != nil {
			return filter, fmt.Errorf("invalid from date %q", from)
		}
		filter.From = t
	}
	if to := q.Get("to"); to != "" {
		t, err := parse(to)
		if err != nil {
			return filter, fmt.Errorf("invalid to date %q", to)
		}
		filter.To = t
	}
	filter.SourceContext = q.Get("context")
	return filter, nil
}

func (s *Server) handleJournalList(w http.ResponseWriter, r *http.Request) {
	filter, err := journalFilter(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	entries := s.journal.Entries(r.Context(), filter)
	if entries == nil {
		entries = []journal.Entry{}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"entries": entries,
		"count":   len(entries),
	})
}

func (s *Server) handleJournalExport(w http.ResponseWriter, r *http.Request) {
	filter, err := journalFilter(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	format := r.URL.Query().Get("format")
	if format == "" {
		format = "json"
	}
	stamp := time.Now().Format("2006-01-02")

	switch format {
	case "csv":
		w.Header().Set("Content-Type", "text/csv")
		w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="journal-%s.csv"`, stamp))
		err = s.journal.ExportCSV(r.Context(), w, filter)
	case "parquet":
		w.Header().Set("Content-Type", "application/octet-stream")
		w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="journal-%s.parquet"`, stamp))
		err = s.journal.ExportParquet(r.Context(), w, filter)
	case "json":
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="journal-%s.json"`, stamp))
		err = s.journal.ExportJSON(r.Context(), w, filter)
	default:
		writeError(w, http.StatusBadRequest, fmt.Sprintf("unsupported format %q", format))
		return
	}

	if err != nil {
		s.logger.Error("Journal export failed",
			zap.String("format", format),
			zap.Error(err),
		)
	}
}

func (s *Server) handleJournalStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.journal.Stats(r.Context()))
}

func (s *Server) handleJournalPurge(w http.ResponseWriter, r *http.Request) {
	if err := s.journal.Purge(r.Context()); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to purge journal")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "purged"})
}

func (s *Server) handlePseudonymStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.engine.GetStats(r.Context()))
}

func (s *Server) handleReveal(w http.ResponseWriter, r *http.Request) {
	var req RevealRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Pseudonym == "" {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	original, ok := s.engine.RevealOriginal(req.Pseudonym)
	resp := RevealResponse{Pseudonym: req.Pseudonym, Revealable: ok}
	if ok {
		resp.Original = original
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handlePseudonymReset(w http.ResponseWriter, r *http.Request) {
	if err := s.engine.Reset(r.Context()); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to reset pseudonym table")
		return
	}
	s.logger.Info("Pseudonym table reset")
	writeJSON(w, http.StatusOK, map[string]string{"status": "reset"})
}

func (s *Server) handleQuota(w http.ResponseWriter, r *http.Request) {
	stats, err := s.governor.Usage(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to read storage usage")
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (s *Server) handleQuotaCleanup(w http.ResponseWriter, r *http.Request) {
	evicted, err := s.governor.AutoCleanup(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "cleanup failed")
		return
	}

	if info, checkErr := s.governor.Check(r.Context()); checkErr == nil {
		s.wsHub.BroadcastEvent(websocket.Event{
			Type:      websocket.EventTypeQuota,
			Timestamp: time.Now(),
			Data: websocket.QuotaEvent{
				UsedBytes:    info.BytesUsed,
				TotalBytes:   info.BytesTotal,
				Percent:      info.PercentUsed,
				Warning:      info.IsWarning,
				Critical:     info.IsCritical,
				EvictedCount: evicted,
			},
		})
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"evicted": evicted})
}

// ruleInfo is the public shape of a detection rule
type ruleInfo struct {
	ID             string `json:"id"`
	Label          string `json:"label"`
	Category       string `json:"category"`
	LegalCategory  string `json:"legalCategory"`
	BaseConfidence string `json:"baseConfidence"`
	Enabled        bool   `json:"enabled"`
}

func (s *Server) handleRules(w http.ResponseWriter, r *http.Request) {
	rules := s.detector.Registry().Rules()
	out := make([]ruleInfo, 0, len(rules))
	for _, rule := range rules {
		out = append(out, ruleInfo{
			ID:             rule.ID,
			Label:          rule.Label,
			Category:       rule.Category,
			LegalCategory:  string(rule.Legal),
			BaseConfidence: rule.BaseConfidence.String(),
			Enabled:        rule.Enabled,
		})
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"rules": out,
		"count": len(out),
	})
}
