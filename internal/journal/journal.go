// Package journal keeps the append-only audit trail of pseudonymization
// operations. Entries never contain original values or pseudonyms, only
// aggregate counts, so the journal itself holds no personal data.
package journal

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/MaitreJV/pseudoshield/internal/logger"
	"github.com/MaitreJV/pseudoshield/internal/pipeline"
	"github.com/MaitreJV/pseudoshield/internal/privacy"
	"github.com/MaitreJV/pseudoshield/internal/quota"
	"github.com/MaitreJV/pseudoshield/internal/store"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Entry is one audited operation
type Entry struct {
	Timestamp            time.Time      `json:"timestamp"`
	SourceContext        string         `json:"sourceContext"`
	TriggeredRuleIDs     []string       `json:"triggeredRuleIds"`
	ReplacementCount     int            `json:"replacementCount"`
	LegalCategoryCounts  map[string]int `json:"legalCategoryCounts"`
	CategoryCounts       map[string]int `json:"categoryCounts"`
	OriginalLength       int            `json:"originalLength"`
	ResultLength         int            `json:"resultLength"`
	ProcessingDurationMs int64          `json:"processingDurationMs"`
	SessionID            string         `json:"sessionId"`
}

// Filter narrows Entries queries. Zero times and an empty context match all.
type Filter struct {
	From          time.Time
	To            time.Time
	SourceContext string
}

// Stats summarizes the journal contents
type Stats struct {
	TotalOperations   int            `json:"totalOperations"`
	TotalReplacements int            `json:"totalReplacements"`
	LegalTotals       map[string]int `json:"legalTotals"`
	SourceContexts    []string       `json:"sourceContexts"`
	FirstEntry        *time.Time     `json:"firstEntry,omitempty"`
	LastEntry         *time.Time     `json:"lastEntry,omitempty"`
}

// Journal records operations through the quota governor so the audit trail
// can never push storage past its limit.
type Journal struct {
	kv       store.KV
	governor *quota.Governor
	logger   *logger.Logger

	// sessionID groups all entries written by this process
	sessionID string

	mu      sync.Mutex
	entries []Entry
	loaded  bool
}

// New creates a journal with a fresh session ID
func New(kv store.KV, governor *quota.Governor, log *logger.Logger) *Journal {
	return &Journal{
		kv:        kv,
		governor:  governor,
		logger:    log.WithComponent("journal"),
		sessionID: uuid.NewString(),
	}
}

// SessionID returns the identifier stamped on every entry this process writes
func (j *Journal) SessionID() string {
	return j.sessionID
}

// ensureLoaded reads the persisted journal once. Callers hold j.mu.
// An unreadable journal degrades to empty rather than blocking writes.
func (j *Journal) ensureLoaded(ctx context.Context) {
	if j.loaded {
		return
	}
	j.loaded = true

	raw, err := j.kv.Get(ctx, []string{store.KeyAuditJournal})
	if err != nil {
		j.logger.Error("Failed to load audit journal, starting empty", zap.Error(err))
		return
	}
	data, ok := raw[store.KeyAuditJournal]
	if !ok || len(data) == 0 {
		return
	}
	var entries []Entry
	if err := json.Unmarshal(data, &entries); err != nil {
		j.logger.Error("Corrupt audit journal, starting empty", zap.Error(err))
		return
	}
	j.entries = entries
}

// Log appends an audit entry for a pipeline result. Persistence failures are
// logged and swallowed: auditing must never block pseudonymization.
func (j *Journal) Log(ctx context.Context, result pipeline.Result, sourceContext string) {
	entry := Entry{
		Timestamp:            time.Now().UTC(),
		SourceContext:        sourceContext,
		TriggeredRuleIDs:     result.TriggeredRuleIDs(),
		ReplacementCount:     result.ReplacementCount,
		LegalCategoryCounts:  legalCounts(result.LegalCategoryCounts),
		CategoryCounts:       result.CategoryCounts,
		OriginalLength:       result.OriginalLength,
		ResultLength:         result.ResultLength,
		ProcessingDurationMs: result.DurationMs,
		SessionID:            j.sessionID,
	}

	j.mu.Lock()
	defer j.mu.Unlock()
	j.ensureLoaded(ctx)

	j.entries = append(j.entries, entry)
	if err := j.persist(ctx); err != nil {
		// Roll back the in-memory append so memory and storage stay in step.
		j.entries = j.entries[:len(j.entries)-1]
		j.logger.Error("Failed to persist audit entry", zap.Error(err))
	}
}

// persist writes the full journal through the governor. Callers hold j.mu.
func (j *Journal) persist(ctx context.Context) error {
	data, err := json.Marshal(j.entries)
	if err != nil {
		return fmt.Errorf("marshal journal: %w", err)
	}
	_, err = j.governor.SafeSet(ctx, map[string][]byte{store.KeyAuditJournal: data})
	return err
}

// Entries returns journal entries matching the filter, oldest first
func (j *Journal) Entries(ctx context.Context, filter Filter) []Entry {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.ensureLoaded(ctx)

	// Entries may have been evicted by the governor behind our back.
	j.reloadLocked(ctx)

	needle := strings.ToLower(filter.SourceContext)
	var out []Entry
	for _, e := range j.entries {
		if !filter.From.IsZero() && e.Timestamp.Before(filter.From) {
			continue
		}
		if !filter.To.IsZero() && e.Timestamp.After(filter.To) {
			continue
		}
		if needle != "" && !strings.Contains(strings.ToLower(e.SourceContext), needle) {
			continue
		}
		out = append(out, e)
	}
	return out
}

// reloadLocked refreshes the cached entries from storage. Callers hold j.mu.
func (j *Journal) reloadLocked(ctx context.Context) {
	raw, err := j.kv.Get(ctx, []string{store.KeyAuditJournal})
	if err != nil {
		return
	}
	data, ok := raw[store.KeyAuditJournal]
	if !ok || len(data) == 0 {
		j.entries = nil
		return
	}
	var entries []Entry
	if err := json.Unmarshal(data, &entries); err != nil {
		return
	}
	j.entries = entries
}

// Purge removes every journal entry
func (j *Journal) Purge(ctx context.Context) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	j.entries = nil
	j.loaded = true
	if err := j.kv.Remove(ctx, []string{store.KeyAuditJournal}); err != nil {
		return fmt.Errorf("purge journal: %w", err)
	}
	j.logger.Info("Audit journal purged")
	return nil
}

// Stats aggregates the full journal
func (j *Journal) Stats(ctx context.Context) Stats {
	entries := j.Entries(ctx, Filter{})

	stats := Stats{
		TotalOperations: len(entries),
		LegalTotals: map[string]int{
			string(privacy.LegalOrdinary):  0,
			string(privacy.LegalSensitive): 0,
		},
	}
	contexts := make(map[string]bool)
	for i, e := range entries {
		stats.TotalReplacements += e.ReplacementCount
		for legal, n := range e.LegalCategoryCounts {
			stats.LegalTotals[legal] += n
		}
		if e.SourceContext != "" {
			contexts[e.SourceContext] = true
		}
		ts := e.Timestamp
		if i == 0 {
			stats.FirstEntry = &ts
		}
		if i == len(entries)-1 {
			stats.LastEntry = &ts
		}
	}
	for c := range contexts {
		stats.SourceContexts = append(stats.SourceContexts, c)
	}
	sort.Strings(stats.SourceContexts)
	return stats
}

func legalCounts(counts map[privacy.LegalCategory]int) map[string]int {
	out := make(map[string]int, len(counts))
	for legal, n := range counts {
		out[string(legal)] = n
	}
	return out
}

// ExportCSV writes the filtered journal as CSV
func (j *Journal) ExportCSV(ctx context.Context, w io.Writer, filter Filter) error {
	entries := j.Entries(ctx, filter)

	cw := csv.NewWriter(w)
	header := []string{
		"timestamp", "source_context", "triggered_rules", "replacement_count",
		"art4_count", "art9_count", "original_length", "result_length",
		"processing_duration_ms", "session_id",
	}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, e := range entries {
		record := []string{
			e.Timestamp.Format(time.RFC3339),
			e.SourceContext,
			strings.Join(e.TriggeredRuleIDs, "|"),
			strconv.Itoa(e.ReplacementCount),
			strconv.Itoa(e.LegalCategoryCounts[string(privacy.LegalOrdinary)]),
			strconv.Itoa(e.LegalCategoryCounts[string(privacy.LegalSensitive)]),
			strconv.Itoa(e.OriginalLength),
			strconv.Itoa(e.ResultLength),
			strconv.FormatInt(e.ProcessingDurationMs, 10),
			e.SessionID,
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write csv record: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// ExportJSON writes the filtered journal as a JSON array
func (j *Journal) ExportJSON(ctx context.Context, w io.Writer, filter Filter) error {
	entries := j.Entries(ctx, filter)
	if entries == nil {
		entries = []Entry{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(entries)
}
