// Package quota keeps the persisted audit trail inside a bounded space.
// It classifies store usage into Normal / Warning / Critical bands and
// performs retention-aware FIFO eviction over the audit journal when the
// Critical band is reached.
package quota

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/MaitreJV/pseudoshield/internal/store"
	"go.uber.org/zap"
)

const (
	// WarningThreshold is the usage fraction at which a warning is logged
	WarningThreshold = 0.70
	// CriticalThreshold is the usage fraction that triggers eviction
	CriticalThreshold = 0.80
	// evictionFraction bounds each cleanup pass to a share of the evictable
	// entries, so one quota excursion never wipes the whole journal
	evictionFraction = 0.25
)

// Typed write failures surfaced by SafeSet
var (
	ErrQuotaExceeded             = errors.New("quota: write exceeds storage quota")
	ErrQuotaExceededAfterCleanup = errors.New("quota: write still exceeds storage quota after cleanup")
)

// Info is the result of a quota check
type Info struct {
	BytesUsed   int64   `json:"bytesUsed"`
	BytesTotal  int64   `json:"bytesTotal"`
	PercentUsed float64 `json:"percentUsed"`
	IsWarning   bool    `json:"isWarning"`
	IsCritical  bool    `json:"isCritical"`
}

// Config contains governor configuration
type Config struct {
	// TotalBytes is the storage budget the usage fraction is computed against
	TotalBytes int64
	// MinRetention is the window inside which journal entries are never
	// evicted, even under Critical pressure
	MinRetention time.Duration
}

// Governor wraps a key-value store with quota checks and retention-aware
// eviction. It is stateless beyond its configuration; all persisted state
// lives in the wrapped store.
type Governor struct {
	kv     store.KV
	config Config
	logger *zap.Logger
}

// New creates a governor over the given store
func New(kv store.KV, config Config, logger *zap.Logger) *Governor {
	if config.MinRetention <= 0 {
		config.MinRetention = 7 * 24 * time.Hour
	}
	return &Governor{kv: kv, config: config, logger: logger}
}

// Check returns the current quota diagnostic, logging band transitions
func (g *Governor) Check(ctx context.Context) (Info, error) {
	used, err := g.kv.BytesInUse(ctx, "")
	if err != nil {
		return Info{BytesTotal: g.config.TotalBytes}, fmt.Errorf("quota check failed: %w", err)
	}

	fraction := float64(used) / float64(g.config.TotalBytes)
	info := Info{
		BytesUsed:   used,
		BytesTotal:  g.config.TotalBytes,
		PercentUsed: math.Round(fraction*10000) / 100,
		IsWarning:   fraction >= WarningThreshold,
		IsCritical:  fraction >= CriticalThreshold,
	}

	if info.IsCritical {
		g.logger.Warn("Storage quota critical",
			zap.Float64("percent_used", info.PercentUsed),
			zap.Int64("bytes_used", used),
			zap.Int64("bytes_total", g.config.TotalBytes))
	} else if info.IsWarning {
		g.logger.Warn("Storage quota warning",
			zap.Float64("percent_used", info.PercentUsed),
			zap.Int64("bytes_used", used),
			zap.Int64("bytes_total", g.config.TotalBytes))
	}

	return info, nil
}

// SafeSet checks quota, pre-emptively evicts when Critical, writes, and on a
// per-item size failure performs one eviction-then-retry. The returned error
// is nil, ErrQuotaExceeded, ErrQuotaExceededAfterCleanup, or the raw store
// error; callers treat all of them as non-fatal.
func (g *Governor) SafeSet(ctx context.Context, items map[string][]byte) (Info, error) {
	info, err := g.Check(ctx)
	if err != nil {
		g.logger.Error("Quota check before write failed", zap.Error(err))
	}

	if info.IsCritical {
		if _, err := g.cleanup(ctx, false); err != nil {
			g.logger.Error("Pre-write cleanup failed", zap.Error(err))
		}
	}

	writeErr := g.kv.Set(ctx, items)
	if writeErr == nil {
		refreshed, _ := g.Check(ctx)
		return refreshed, nil
	}

	if !errors.Is(writeErr, store.ErrItemTooLarge) {
		return info, fmt.Errorf("store write failed: %w", writeErr)
	}

	// One eviction-then-retry, even outside the Critical band
	evicted, cleanupErr := g.cleanup(ctx, true)
	if cleanupErr != nil {
		g.logger.Error("Cleanup after quota failure failed", zap.Error(cleanupErr))
	}
	if evicted == 0 {
		refreshed, _ := g.Check(ctx)
		return refreshed, ErrQuotaExceeded
	}

	if retryErr := g.kv.Set(ctx, items); retryErr != nil {
		refreshed, _ := g.Check(ctx)
		return refreshed, ErrQuotaExceededAfterCleanup
	}

	g.logger.Info("Write succeeded after FIFO cleanup", zap.Int("evicted_entries", evicted))
	refreshed, _ := g.Check(ctx)
	return refreshed, nil
}

// AutoCleanup runs one retention-aware FIFO eviction pass over the audit
// journal. It is a no-op below the Critical band. Returns the number of
// evicted entries.
func (g *Governor) AutoCleanup(ctx context.Context) (int, error) {
	return g.cleanup(ctx, false)
}

// journalStamp peeks at the only field eviction needs
type journalStamp struct {
	Timestamp time.Time `json:"timestamp"`
}

func (g *Governor) cleanup(ctx context.Context, force bool) (int, error) {
	if !force {
		info, err := g.Check(ctx)
		if err != nil {
			return 0, err
		}
		if !info.IsCritical {
			return 0, nil
		}
	}

	values, err := g.kv.Get(ctx, []string{store.KeyAuditJournal})
	if err != nil {
		return 0, fmt.Errorf("failed to load journal for cleanup: %w", err)
	}
	raw, ok := values[store.KeyAuditJournal]
	if !ok {
		g.logger.Info("Journal empty, nothing to evict")
		return 0, nil
	}

	// Entries are kept as raw messages so eviction never reshapes records
	// written by a different version.
	var entries []json.RawMessage
	if err := json.Unmarshal(raw, &entries); err != nil {
		return 0, fmt.Errorf("failed to decode journal for cleanup: %w", err)
	}
	if len(entries) == 0 {
		g.logger.Info("Journal empty, nothing to evict")
		return 0, nil
	}

	// The journal is appended chronologically: count the leading entries
	// older than the retention cutoff.
	cutoff := time.Now().Add(-g.config.MinRetention)
	evictable := 0
	for _, e := range entries {
		var stamp journalStamp
		if err := json.Unmarshal(e, &stamp); err != nil {
			break
		}
		if !stamp.Timestamp.Before(cutoff) {
			break
		}
		evictable++
	}

	if evictable == 0 {
		g.logger.Warn("Quota critical but all journal entries are within the retention window",
			zap.Int("retained_entries", len(entries)),
			zap.Duration("min_retention", g.config.MinRetention))
		return 0, nil
	}

	batch := int(math.Ceil(float64(evictable) * evictionFraction))
	if batch < 1 {
		batch = 1
	}
	remaining := entries[batch:]

	encoded, err := json.Marshal(remaining)
	if err != nil {
		return 0, fmt.Errorf("failed to encode journal after cleanup: %w", err)
	}
	// Direct write: routing through SafeSet would recurse into cleanup
	if err := g.kv.Set(ctx, map[string][]byte{store.KeyAuditJournal: encoded}); err != nil {
		return 0, fmt.Errorf("failed to persist journal after cleanup: %w", err)
	}

	g.logger.Info("FIFO eviction pass complete",
		zap.Int("evicted_entries", batch),
		zap.Int("remaining_entries", len(remaining)))

	if info, err := g.Check(ctx); err == nil && info.IsCritical {
		g.logger.Warn("Quota still critical after partial eviction, another pass will be needed")
	}

	return batch, nil
}

// UsageStats is a detailed storage usage breakdown
type UsageStats struct {
	Info
	BytesRemaining         int64      `json:"bytesRemaining"`
	JournalBytesUsed       int64      `json:"journalBytesUsed"`
	JournalPercentOfTotal  float64    `json:"journalPercentOfTotal"`
	JournalEntriesCount    int        `json:"journalEntriesCount"`
	JournalOldestEntry     *time.Time `json:"journalOldestEntry,omitempty"`
	JournalNewestEntry     *time.Time `json:"journalNewestEntry,omitempty"`
	OtherBytesUsed         int64      `json:"otherBytesUsed"`
	WarningThresholdBytes  int64      `json:"warningThresholdBytes"`
	CriticalThresholdBytes int64      `json:"criticalThresholdBytes"`
	CheckedAt              time.Time  `json:"checkedAt"`
}

// Usage returns detailed usage statistics, splitting the journal's share
// from the rest of the persisted state.
func (g *Governor) Usage(ctx context.Context) (UsageStats, error) {
	info, err := g.Check(ctx)
	if err != nil {
		return UsageStats{}, err
	}

	stats := UsageStats{
		Info:                   info,
		BytesRemaining:         info.BytesTotal - info.BytesUsed,
		WarningThresholdBytes:  int64(float64(g.config.TotalBytes) * WarningThreshold),
		CriticalThresholdBytes: int64(float64(g.config.TotalBytes) * CriticalThreshold),
		CheckedAt:              time.Now(),
	}

	journalBytes, err := g.kv.BytesInUse(ctx, store.KeyAuditJournal)
	if err != nil {
		g.logger.Error("Failed to read journal usage", zap.Error(err))
		return stats, nil
	}
	stats.JournalBytesUsed = journalBytes
	stats.JournalPercentOfTotal = math.Round(float64(journalBytes)/float64(g.config.TotalBytes)*10000) / 100
	stats.OtherBytesUsed = info.BytesUsed - journalBytes

	values, err := g.kv.Get(ctx, []string{store.KeyAuditJournal})
	if err == nil {
		if raw, ok := values[store.KeyAuditJournal]; ok {
			var entries []json.RawMessage
			if json.Unmarshal(raw, &entries) == nil && len(entries) > 0 {
				stats.JournalEntriesCount = len(entries)
				var first, last journalStamp
				if json.Unmarshal(entries[0], &first) == nil {
					stats.JournalOldestEntry = &first.Timestamp
				}
				if json.Unmarshal(entries[len(entries)-1], &last) == nil {
					stats.JournalNewestEntry = &last.Timestamp
				}
			}
		}
	}

	return stats, nil
}
