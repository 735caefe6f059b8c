package pipeline

import (
	"context"
	"strings"
	"testing"

	"github.com/MaitreJV/pseudoshield/internal/config"
	"github.com/MaitreJV/pseudoshield/internal/logger"
	"github.com/MaitreJV/pseudoshield/internal/privacy"
	"github.com/MaitreJV/pseudoshield/internal/pseudonym"
	"github.com/MaitreJV/pseudoshield/internal/quota"
	"github.com/MaitreJV/pseudoshield/internal/store"
	"go.uber.org/zap"
)

func newTestPipeline(t *testing.T, bracket bool) *Pipeline {
	t.Helper()
	log := &logger.Logger{Logger: zap.NewNop()}

	detector, err := privacy.New(config.PrivacyConfig{
		Enabled:       true,
		Detectors:     []string{"all"},
		MinConfidence: "low",
	}, log)
	if err != nil {
		t.Fatalf("Failed to create detector: %v", err)
	}

	kv := store.NewMemoryStore(0)
	governor := quota.New(kv, quota.Config{TotalBytes: 1 << 20}, zap.NewNop())
	engine := pseudonym.New(kv, governor, zap.NewNop())

	return New(detector, engine, bracket, log)
}

func TestProcess(t *testing.T) {
	ctx := context.Background()

	t.Run("LegalLetter", func(t *testing.T) {
		p := newTestPipeline(t, true)
		text := "Cher Maître X, mon IBAN est BE68 5390 0754 7034 et mon email x@y.be"

		result := p.Process(ctx, text, privacy.Options{})

		if result.ReplacementCount < 2 {
			t.Fatalf("Expected at least 2 replacements, got %d", result.ReplacementCount)
		}
		if strings.Contains(result.ResultText, "BE68 5390 0754 7034") {
			t.Error("IBAN survived in the rewritten text")
		}
		if strings.Contains(result.ResultText, "x@y.be") {
			t.Error("Email survived in the rewritten text")
		}
		if !strings.Contains(result.ResultText, "[IBAN_1]") {
			t.Errorf("Expected bracketed IBAN pseudonym, got %q", result.ResultText)
		}
		if !strings.Contains(result.ResultText, "[Email_1]") {
			t.Errorf("Expected bracketed email pseudonym, got %q", result.ResultText)
		}

		ids := result.TriggeredRuleIDs()
		found := make(map[string]bool, len(ids))
		for _, id := range ids {
			found[id] = true
		}
		if !found["IBAN_BE"] || !found["EMAIL"] {
			t.Errorf("Expected IBAN_BE and EMAIL among triggered rules, got %v", ids)
		}

		if result.OriginalLength != len(text) {
			t.Errorf("Original length mismatch: %d vs %d", result.OriginalLength, len(text))
		}
		if result.ResultLength != len(result.ResultText) {
			t.Error("Result length does not match the rewritten text")
		}
	})

	t.Run("DetectionsLeftToRight", func(t *testing.T) {
		p := newTestPipeline(t, true)
		result := p.Process(ctx, "a@b.be puis c@d.be puis e@f.be", privacy.Options{})

		if len(result.Detections) != 3 {
			t.Fatalf("Expected 3 detections, got %d", len(result.Detections))
		}
		for i, d := range result.Detections {
			if d.Pseudonym == "" {
				t.Errorf("Detection %d has no pseudonym", i)
			}
			if i > 0 && d.Start < result.Detections[i-1].End {
				t.Error("Detections out of order or overlapping")
			}
		}
	})

	t.Run("StablePseudonymsAcrossCalls", func(t *testing.T) {
		p := newTestPipeline(t, true)

		first := p.Process(ctx, "contactez x@y.be", privacy.Options{})
		second := p.Process(ctx, "réponse de x@y.be reçue", privacy.Options{})

		if first.Detections[0].Pseudonym != second.Detections[0].Pseudonym {
			t.Errorf("Same value pseudonymized differently: %s vs %s",
				first.Detections[0].Pseudonym, second.Detections[0].Pseudonym)
		}
	})

	t.Run("EmptyInput", func(t *testing.T) {
		p := newTestPipeline(t, true)
		result := p.Process(ctx, "", privacy.Options{})

		if result.ResultText != "" || result.ReplacementCount != 0 {
			t.Errorf("Empty input produced a non-neutral result: %+v", result)
		}
		if result.Detections == nil {
			t.Error("Detections should be an empty slice, not nil")
		}
	})

	t.Run("CleanTextPassesThrough", func(t *testing.T) {
		p := newTestPipeline(t, true)
		text := "La prochaine audience aura lieu en septembre."
		result := p.Process(ctx, text, privacy.Options{})

		if result.ResultText != text {
			t.Errorf("Clean text was modified: %q", result.ResultText)
		}
		if result.ReplacementCount != 0 {
			t.Errorf("Clean text produced %d replacements", result.ReplacementCount)
		}
	})

	t.Run("UnbracketedOutput", func(t *testing.T) {
		p := newTestPipeline(t, false)
		result := p.Process(ctx, "envoyez à x@y.be", privacy.Options{})

		if strings.Contains(result.ResultText, "[") {
			t.Errorf("Brackets present despite plain output mode: %q", result.ResultText)
		}
		if !strings.Contains(result.ResultText, "Email_1") {
			t.Errorf("Expected plain pseudonym, got %q", result.ResultText)
		}
	})

	t.Run("LegalCategoryCounts", func(t *testing.T) {
		p := newTestPipeline(t, true)
		result := p.Process(ctx, "NISS 85.07.30-033.28 et email x@y.be", privacy.Options{})

		if result.LegalCategoryCounts[privacy.LegalSensitive] != 1 {
			t.Errorf("Expected one sensitive detection, got %d",
				result.LegalCategoryCounts[privacy.LegalSensitive])
		}
		if result.LegalCategoryCounts[privacy.LegalOrdinary] < 1 {
			t.Error("Expected at least one ordinary detection")
		}
	})
}
