package quota

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/MaitreJV/pseudoshield/internal/store"
	"go.uber.org/zap"
)

// seedJournal writes a journal of n entries with the given age directly into
// the store, oldest first.
func seedJournal(t *testing.T, kv store.KV, ages ...time.Duration) {
	t.Helper()
	entries := make([]map[string]interface{}, len(ages))
	for i, age := range ages {
		entries[i] = map[string]interface{}{
			"timestamp":        time.Now().Add(-age).UTC(),
			"sourceContext":    fmt.Sprintf("doc-%d", i),
			"replacementCount": 1,
		}
	}
	data, err := json.Marshal(entries)
	if err != nil {
		t.Fatalf("Failed to encode journal: %v", err)
	}
	if err := kv.Set(context.Background(), map[string][]byte{store.KeyAuditJournal: data}); err != nil {
		t.Fatalf("Failed to seed journal: %v", err)
	}
}

func journalLen(t *testing.T, kv store.KV) int {
	t.Helper()
	values, err := kv.Get(context.Background(), []string{store.KeyAuditJournal})
	if err != nil {
		t.Fatalf("Failed to read journal: %v", err)
	}
	raw, ok := values[store.KeyAuditJournal]
	if !ok {
		return 0
	}
	var entries []json.RawMessage
	if err := json.Unmarshal(raw, &entries); err != nil {
		t.Fatalf("Failed to decode journal: %v", err)
	}
	return len(entries)
}

func TestCheck(t *testing.T) {
	ctx := context.Background()

	t.Run("EmptyStore", func(t *testing.T) {
		governor := New(store.NewMemoryStore(0), Config{TotalBytes: 1000}, zap.NewNop())
		info, err := governor.Check(ctx)
		if err != nil {
			t.Fatalf("Check failed: %v", err)
		}
		if info.BytesUsed != 0 || info.IsWarning || info.IsCritical {
			t.Errorf("Empty store reported pressure: %+v", info)
		}
	})

	t.Run("WarningBand", func(t *testing.T) {
		kv := store.NewMemoryStore(0)
		// key "blob" (4) + 746 value bytes = 750 of 1000 = 75%
		kv.Set(ctx, map[string][]byte{"blob": bytes.Repeat([]byte("x"), 746)})

		governor := New(kv, Config{TotalBytes: 1000}, zap.NewNop())
		info, err := governor.Check(ctx)
		if err != nil {
			t.Fatalf("Check failed: %v", err)
		}
		if !info.IsWarning {
			t.Errorf("75%% usage not in warning band: %+v", info)
		}
		if info.IsCritical {
			t.Errorf("75%% usage wrongly critical: %+v", info)
		}
		if info.PercentUsed != 75.0 {
			t.Errorf("Expected 75.0 percent, got %v", info.PercentUsed)
		}
	})

	t.Run("CriticalBand", func(t *testing.T) {
		kv := store.NewMemoryStore(0)
		// key "blob" (4) + 846 value bytes = 850 of 1000 = 85%
		kv.Set(ctx, map[string][]byte{"blob": bytes.Repeat([]byte("x"), 846)})

		governor := New(kv, Config{TotalBytes: 1000}, zap.NewNop())
		info, _ := governor.Check(ctx)
		if !info.IsCritical || !info.IsWarning {
			t.Errorf("85%% usage not critical: %+v", info)
		}
	})
}

func TestAutoCleanup(t *testing.T) {
	ctx := context.Background()

	t.Run("NoopBelowCritical", func(t *testing.T) {
		kv := store.NewMemoryStore(0)
		seedJournal(t, kv, 30*24*time.Hour, 30*24*time.Hour)

		governor := New(kv, Config{TotalBytes: 1 << 20}, zap.NewNop())
		evicted, err := governor.AutoCleanup(ctx)
		if err != nil {
			t.Fatalf("AutoCleanup failed: %v", err)
		}
		if evicted != 0 {
			t.Errorf("Evicted %d entries below the critical band", evicted)
		}
	})

	t.Run("RetentionFloorBlocksEviction", func(t *testing.T) {
		kv := store.NewMemoryStore(0)
		// All recent entries, then pad the store into the critical band.
		seedJournal(t, kv, time.Hour, time.Hour, time.Hour)
		kv.Set(ctx, map[string][]byte{"pad": bytes.Repeat([]byte("x"), 900)})

		governor := New(kv, Config{TotalBytes: 1000, MinRetention: 7 * 24 * time.Hour}, zap.NewNop())
		before := journalLen(t, kv)

		evicted, err := governor.AutoCleanup(ctx)
		if err != nil {
			t.Fatalf("AutoCleanup failed: %v", err)
		}
		if evicted != 0 {
			t.Errorf("Evicted %d entries inside the retention window", evicted)
		}
		if journalLen(t, kv) != before {
			t.Error("Journal shrank despite the retention floor")
		}

		info, _ := governor.Check(ctx)
		if !info.IsCritical {
			t.Error("Critical flag cleared without any eviction")
		}
	})

	t.Run("EvictsQuarterOfExpired", func(t *testing.T) {
		kv := store.NewMemoryStore(0)
		old := 30 * 24 * time.Hour
		seedJournal(t, kv, old, old, old, old, old, old, old, old, old, old)
		kv.Set(ctx, map[string][]byte{"pad": bytes.Repeat([]byte("x"), 900)})

		governor := New(kv, Config{TotalBytes: 1000, MinRetention: 7 * 24 * time.Hour}, zap.NewNop())
		evicted, err := governor.AutoCleanup(ctx)
		if err != nil {
			t.Fatalf("AutoCleanup failed: %v", err)
		}
		// ceil(10 * 0.25) = 3 oldest entries per pass
		if evicted != 3 {
			t.Errorf("Expected 3 evicted entries, got %d", evicted)
		}
		if got := journalLen(t, kv); got != 7 {
			t.Errorf("Expected 7 remaining entries, got %d", got)
		}
	})

	t.Run("OnlyExpiredPrefixEvicted", func(t *testing.T) {
		kv := store.NewMemoryStore(0)
		old := 30 * 24 * time.Hour
		seedJournal(t, kv, old, old, old, old, time.Hour, time.Hour)
		kv.Set(ctx, map[string][]byte{"pad": bytes.Repeat([]byte("x"), 900)})

		governor := New(kv, Config{TotalBytes: 1000, MinRetention: 7 * 24 * time.Hour}, zap.NewNop())
		evicted, err := governor.AutoCleanup(ctx)
		if err != nil {
			t.Fatalf("AutoCleanup failed: %v", err)
		}
		// ceil(4 * 0.25) = 1
		if evicted != 1 {
			t.Errorf("Expected 1 evicted entry, got %d", evicted)
		}
		if got := journalLen(t, kv); got != 5 {
			t.Errorf("Expected 5 remaining entries, got %d", got)
		}
	})
}

func TestSafeSet(t *testing.T) {
	ctx := context.Background()

	t.Run("WithinQuota", func(t *testing.T) {
		governor := New(store.NewMemoryStore(0), Config{TotalBytes: 1000}, zap.NewNop())
		info, err := governor.SafeSet(ctx, map[string][]byte{"k": []byte("value")})
		if err != nil {
			t.Fatalf("SafeSet failed: %v", err)
		}
		if info.BytesUsed == 0 {
			t.Error("Returned info not refreshed after write")
		}
	})

	t.Run("ItemTooLargeNothingEvictable", func(t *testing.T) {
		kv := store.NewMemoryStore(100)
		governor := New(kv, Config{TotalBytes: 1000}, zap.NewNop())

		_, err := governor.SafeSet(ctx, map[string][]byte{"k": bytes.Repeat([]byte("x"), 200)})
		if !errors.Is(err, ErrQuotaExceeded) {
			t.Errorf("Expected ErrQuotaExceeded, got %v", err)
		}
	})

	t.Run("ItemTooLargeAfterEviction", func(t *testing.T) {
		kv := store.NewMemoryStore(500)
		old := 30 * 24 * time.Hour
		seedJournal(t, kv, old, old, old, old)

		governor := New(kv, Config{TotalBytes: 2000, MinRetention: 7 * 24 * time.Hour}, zap.NewNop())

		// The item exceeds the per-item limit no matter how much is evicted.
		_, err := governor.SafeSet(ctx, map[string][]byte{"k": bytes.Repeat([]byte("x"), 600)})
		if !errors.Is(err, ErrQuotaExceededAfterCleanup) {
			t.Errorf("Expected ErrQuotaExceededAfterCleanup, got %v", err)
		}
		// The eviction pass itself must have gone through.
		if got := journalLen(t, kv); got != 3 {
			t.Errorf("Expected 3 remaining entries after forced eviction, got %d", got)
		}
	})
}
