// Package pseudonym assigns stable, content-derived pseudonyms to detected
// values and maintains the persisted correspondence table behind them.
package pseudonym

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/MaitreJV/pseudoshield/internal/quota"
	"github.com/MaitreJV/pseudoshield/internal/store"
	"go.uber.org/zap"
)

// Entry is one persisted correspondence record, keyed in the table by the
// content hash of the normalized original value. The original value itself is
// never persisted.
type Entry struct {
	Pseudonym     string    `json:"pseudonym"`
	Category      string    `json:"category"`
	LegalCategory string    `json:"legalCategory"`
	FirstSeen     time.Time `json:"firstSeen"`
	LastSeen      time.Time `json:"lastSeen"`
	Count         int       `json:"count"`
}

// Stats summarizes the correspondence table
type Stats struct {
	Total      int            `json:"total"`
	ByCategory map[string]int `json:"byCategory"`
	ByLegal    map[string]int `json:"byLegalCategory"`
}

// Engine owns the correspondence table, the per-prefix counters, and the
// volatile reveal map. All mutation is serialized by a single mutex, which
// guarantees pseudonym uniqueness under concurrent pipeline invocations.
type Engine struct {
	kv       store.KV
	governor *quota.Governor
	logger   *zap.Logger

	mu          sync.Mutex
	initialized bool
	table       map[string]*Entry
	counters    map[string]int64
	// volatile holds pseudonym -> original for the current process only;
	// it is lost on restart by design
	volatile map[string]string
}

// New creates an engine over the given store. State is loaded lazily on
// first use.
func New(kv store.KV, governor *quota.Governor, logger *zap.Logger) *Engine {
	return &Engine{
		kv:       kv,
		governor: governor,
		logger:   logger,
		table:    make(map[string]*Entry),
		counters: make(map[string]int64),
		volatile: make(map[string]string),
	}
}

// ensureInit loads persisted state exactly once. Load failures degrade to an
// empty table rather than blocking pseudonymization. Callers must hold mu.
func (e *Engine) ensureInit(ctx context.Context) {
	if e.initialized {
		return
	}
	e.initialized = true

	values, err := e.kv.Get(ctx, []string{store.KeyCorrespondenceTable, store.KeyPseudonymCounters})
	if err != nil {
		e.logger.Error("Failed to load correspondence table, starting empty", zap.Error(err))
		return
	}

	if raw, ok := values[store.KeyCorrespondenceTable]; ok {
		if err := json.Unmarshal(raw, &e.table); err != nil {
			e.logger.Error("Corrupt correspondence table, starting empty", zap.Error(err))
			e.table = make(map[string]*Entry)
		}
	}
	if raw, ok := values[store.KeyPseudonymCounters]; ok {
		if err := json.Unmarshal(raw, &e.counters); err != nil {
			e.logger.Error("Corrupt pseudonym counters, starting empty", zap.Error(err))
			e.counters = make(map[string]int64)
		}
	}

	e.logger.Info("Pseudonym engine initialized", zap.Int("entries", len(e.table)))
}

// hashValue computes the table key: SHA-256 over the trimmed, lowercased
// value, so case and whitespace variants collapse to one entry.
func hashValue(original string) string {
	normalized := strings.ToLower(strings.TrimSpace(original))
	sum := sha256.Sum256([]byte(normalized))
	return hex.EncodeToString(sum[:])
}

// GetPseudonym returns the stable pseudonym for a detected value, minting a
// new one on first encounter. The read-modify-write over the table is
// serialized so two concurrent calls can never mint two pseudonyms for the
// same normalized value. Persistence failures are non-fatal: the pseudonym
// is still returned.
func (e *Engine) GetPseudonym(ctx context.Context, original, prefix, category, legalCategory string) (string, error) {
	if original == "" {
		return "", fmt.Errorf("empty value")
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	e.ensureInit(ctx)

	hash := hashValue(original)
	now := time.Now()

	if entry, ok := e.table[hash]; ok {
		entry.LastSeen = now
		entry.Count++
		e.volatile[entry.Pseudonym] = original
		e.persist(ctx)
		return entry.Pseudonym, nil
	}

	e.counters[prefix]++
	pseudonym := prefix + "_" + strconv.FormatInt(e.counters[prefix], 10)

	e.table[hash] = &Entry{
		Pseudonym:     pseudonym,
		Category:      category,
		LegalCategory: legalCategory,
		FirstSeen:     now,
		LastSeen:      now,
		Count:         1,
	}
	e.volatile[pseudonym] = original

	e.persist(ctx)
	return pseudonym, nil
}

// persist writes the table and counters through the quota governor.
// Callers must hold mu.
func (e *Engine) persist(ctx context.Context) {
	table, err := json.Marshal(e.table)
	if err != nil {
		e.logger.Error("Failed to encode correspondence table", zap.Error(err))
		return
	}
	counters, err := json.Marshal(e.counters)
	if err != nil {
		e.logger.Error("Failed to encode pseudonym counters", zap.Error(err))
		return
	}

	if _, err := e.governor.SafeSet(ctx, map[string][]byte{
		store.KeyCorrespondenceTable: table,
		store.KeyPseudonymCounters:   counters,
	}); err != nil {
		// Pseudonyms stay valid in memory; only durability is lost
		e.logger.Error("Failed to persist correspondence table", zap.Error(err))
	}
}

// RevealOriginal resolves a pseudonym back to its original value from the
// volatile map. Absent after a restart by design.
func (e *Engine) RevealOriginal(pseudonym string) (string, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	original, ok := e.volatile[pseudonym]
	return original, ok
}

// IsRevealable reports whether the original is still available this session
func (e *Engine) IsRevealable(pseudonym string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	_, ok := e.volatile[pseudonym]
	return ok
}

// GetStats returns correspondence table statistics
func (e *Engine) GetStats(ctx context.Context) Stats {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.ensureInit(ctx)

	stats := Stats{
		Total:      len(e.table),
		ByCategory: make(map[string]int),
		ByLegal:    make(map[string]int),
	}
	for _, entry := range e.table {
		stats.ByCategory[entry.Category]++
		stats.ByLegal[entry.LegalCategory]++
	}
	return stats
}

// Reset clears the correspondence table, the counters, and the volatile
// reveal map. Irreversible.
func (e *Engine) Reset(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.table = make(map[string]*Entry)
	e.counters = make(map[string]int64)
	e.volatile = make(map[string]string)
	e.initialized = true

	if err := e.kv.Remove(ctx, []string{store.KeyCorrespondenceTable, store.KeyPseudonymCounters}); err != nil {
		return fmt.Errorf("failed to clear correspondence table: %w", err)
	}

	e.logger.Info("Correspondence table reset")
	return nil
}
