package pseudonym

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/MaitreJV/pseudoshield/internal/quota"
	"github.com/MaitreJV/pseudoshield/internal/store"
	"go.uber.org/zap"
)

func newTestEngine(kv store.KV) *Engine {
	governor := quota.New(kv, quota.Config{TotalBytes: 10 * 1024 * 1024}, zap.NewNop())
	return New(kv, governor, zap.NewNop())
}

func TestGetPseudonym(t *testing.T) {
	ctx := context.Background()

	t.Run("StableAcrossCalls", func(t *testing.T) {
		engine := newTestEngine(store.NewMemoryStore(0))

		first, err := engine.GetPseudonym(ctx, "jean.dupont@example.be", "Email", "contact", "art4")
		if err != nil {
			t.Fatalf("GetPseudonym failed: %v", err)
		}
		second, err := engine.GetPseudonym(ctx, "jean.dupont@example.be", "Email", "contact", "art4")
		if err != nil {
			t.Fatalf("GetPseudonym failed: %v", err)
		}
		if first != second {
			t.Errorf("Same value produced different pseudonyms: %s vs %s", first, second)
		}
		if first != "Email_1" {
			t.Errorf("Expected Email_1, got %s", first)
		}
	})

	t.Run("NormalizationSharesPseudonym", func(t *testing.T) {
		engine := newTestEngine(store.NewMemoryStore(0))

		a, _ := engine.GetPseudonym(ctx, "  Jean.Dupont@Example.BE ", "Email", "contact", "art4")
		b, _ := engine.GetPseudonym(ctx, "jean.dupont@example.be", "Email", "contact", "art4")
		if a != b {
			t.Errorf("Case/whitespace variants got different pseudonyms: %s vs %s", a, b)
		}
	})

	t.Run("PerPrefixCounters", func(t *testing.T) {
		engine := newTestEngine(store.NewMemoryStore(0))

		first, _ := engine.GetPseudonym(ctx, "a@example.be", "Email", "contact", "art4")
		second, _ := engine.GetPseudonym(ctx, "b@example.be", "Email", "contact", "art4")
		iban, _ := engine.GetPseudonym(ctx, "BE68539007547034", "IBAN", "financial", "art4")

		if first != "Email_1" || second != "Email_2" {
			t.Errorf("Email counter sequence broken: %s, %s", first, second)
		}
		if iban != "IBAN_1" {
			t.Errorf("IBAN counter should start at 1, got %s", iban)
		}
	})

	t.Run("EmptyValueRejected", func(t *testing.T) {
		engine := newTestEngine(store.NewMemoryStore(0))
		if _, err := engine.GetPseudonym(ctx, "", "Email", "contact", "art4"); err == nil {
			t.Error("Empty value accepted")
		}
	})

	t.Run("OccurrenceCountPersisted", func(t *testing.T) {
		kv := store.NewMemoryStore(0)
		engine := newTestEngine(kv)

		engine.GetPseudonym(ctx, "jean.dupont@example.be", "Email", "contact", "art4")
		engine.GetPseudonym(ctx, "jean.dupont@example.be", "Email", "contact", "art4")

		values, err := kv.Get(ctx, []string{store.KeyCorrespondenceTable})
		if err != nil {
			t.Fatalf("Failed to read correspondence table: %v", err)
		}
		var table map[string]Entry
		if err := json.Unmarshal(values[store.KeyCorrespondenceTable], &table); err != nil {
			t.Fatalf("Failed to decode correspondence table: %v", err)
		}
		if len(table) != 1 {
			t.Fatalf("Expected one entry, got %d", len(table))
		}
		for _, entry := range table {
			if entry.Count != 2 {
				t.Errorf("Expected occurrence count 2, got %d", entry.Count)
			}
			if entry.Pseudonym != "Email_1" {
				t.Errorf("Unexpected pseudonym %s", entry.Pseudonym)
			}
		}
	})

	t.Run("SurvivesStoreWriteFailure", func(t *testing.T) {
		engine := newTestEngine(&failingStore{MemoryStore: store.NewMemoryStore(0)})

		pseudo, err := engine.GetPseudonym(ctx, "jean.dupont@example.be", "Email", "contact", "art4")
		if err != nil {
			t.Fatalf("GetPseudonym should not surface persistence failures: %v", err)
		}
		if pseudo != "Email_1" {
			t.Errorf("Expected Email_1, got %s", pseudo)
		}
	})
}

func TestReveal(t *testing.T) {
	ctx := context.Background()

	t.Run("RevealsWithinProcess", func(t *testing.T) {
		engine := newTestEngine(store.NewMemoryStore(0))

		pseudo, _ := engine.GetPseudonym(ctx, "jean.dupont@example.be", "Email", "contact", "art4")
		original, ok := engine.RevealOriginal(pseudo)
		if !ok {
			t.Fatal("Pseudonym not revealable in the creating process")
		}
		if original != "jean.dupont@example.be" {
			t.Errorf("Wrong original revealed: %s", original)
		}
		if !engine.IsRevealable(pseudo) {
			t.Error("IsRevealable disagrees with RevealOriginal")
		}
	})

	t.Run("VolatileAcrossRestart", func(t *testing.T) {
		kv := store.NewMemoryStore(0)

		engine := newTestEngine(kv)
		pseudo, _ := engine.GetPseudonym(ctx, "jean.dupont@example.be", "Email", "contact", "art4")

		// A second engine over the same store simulates a process restart.
		restarted := newTestEngine(kv)

		again, _ := restarted.GetPseudonym(ctx, "jean.dupont@example.be", "Email", "contact", "art4")
		if again != pseudo {
			t.Errorf("Pseudonym changed across restart: %s vs %s", pseudo, again)
		}

		if _, ok := restarted.RevealOriginal(pseudo); ok {
			t.Error("Reveal map survived a restart; it must be volatile")
		}
	})

	t.Run("UnknownPseudonym", func(t *testing.T) {
		engine := newTestEngine(store.NewMemoryStore(0))
		if _, ok := engine.RevealOriginal("Email_999"); ok {
			t.Error("Unknown pseudonym revealed")
		}
	})
}

func TestGetStats(t *testing.T) {
	ctx := context.Background()
	engine := newTestEngine(store.NewMemoryStore(0))

	engine.GetPseudonym(ctx, "a@example.be", "Email", "contact", "art4")
	engine.GetPseudonym(ctx, "b@example.be", "Email", "contact", "art4")
	engine.GetPseudonym(ctx, "85073003328", "NISS", "identity", "art9")

	stats := engine.GetStats(ctx)
	if stats.Total != 3 {
		t.Errorf("Expected 3 entries, got %d", stats.Total)
	}
	if stats.ByCategory["contact"] != 2 {
		t.Errorf("Expected 2 contact entries, got %d", stats.ByCategory["contact"])
	}
	if stats.ByLegal["art9"] != 1 {
		t.Errorf("Expected 1 sensitive entry, got %d", stats.ByLegal["art9"])
	}
}

func TestReset(t *testing.T) {
	ctx := context.Background()
	kv := store.NewMemoryStore(0)
	engine := newTestEngine(kv)

	pseudo, _ := engine.GetPseudonym(ctx, "jean.dupont@example.be", "Email", "contact", "art4")

	if err := engine.Reset(ctx); err != nil {
		t.Fatalf("Reset failed: %v", err)
	}

	if engine.GetStats(ctx).Total != 0 {
		t.Error("Stats not empty after reset")
	}
	if _, ok := engine.RevealOriginal(pseudo); ok {
		t.Error("Reveal map survived reset")
	}

	values, _ := kv.Get(ctx, []string{store.KeyCorrespondenceTable, store.KeyPseudonymCounters})
	if len(values) != 0 {
		t.Error("Persisted state survived reset")
	}

	// Counters restart from scratch after a reset.
	again, _ := engine.GetPseudonym(ctx, "autre@example.be", "Email", "contact", "art4")
	if again != "Email_1" {
		t.Errorf("Counter did not restart, got %s", again)
	}
}

// failingStore wraps a MemoryStore and fails every write
type failingStore struct {
	*store.MemoryStore
}

func (f *failingStore) Set(ctx context.Context, items map[string][]byte) error {
	return errors.New("write refused")
}
