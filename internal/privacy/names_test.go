package privacy

import (
	"strings"
	"testing"
)

func TestAdjustConsecutiveName(t *testing.T) {
	h := DefaultNameHeuristics()

	t.Run("KnownFirstNamePromotes", func(t *testing.T) {
		confidence, ok := AdjustConsecutiveName("Jean Dupont", h)
		if !ok {
			t.Fatal("Plausible name rejected")
		}
		if confidence != ConfidenceMedium {
			t.Errorf("Expected medium confidence, got %s", confidence)
		}
	})

	t.Run("AccentedFirstNamePromotes", func(t *testing.T) {
		confidence, ok := AdjustConsecutiveName("Jérôme Lambert", h)
		if !ok {
			t.Fatal("Accented first name rejected")
		}
		if confidence != ConfidenceMedium {
			t.Errorf("Expected medium confidence, got %s", confidence)
		}
	})

	t.Run("UnknownFirstNameStaysLow", func(t *testing.T) {
		confidence, ok := AdjustConsecutiveName("Zorglub Dupont", h)
		if !ok {
			t.Fatal("Unknown name rejected outright")
		}
		if confidence != ConfidenceLow {
			t.Errorf("Expected low confidence, got %s", confidence)
		}
	})

	t.Run("InstitutionalBigramRejected", func(t *testing.T) {
		if _, ok := AdjustConsecutiveName("Cour Constitutionnelle", h); ok {
			t.Error("Institutional bigram accepted as a name")
		}
	})

	t.Run("AccentFoldedBigramRejected", func(t *testing.T) {
		if _, ok := AdjustConsecutiveName("Union Européenne", h); ok {
			t.Error("Accented institutional bigram accepted as a name")
		}
	})

	t.Run("SingleWordRejected", func(t *testing.T) {
		if _, ok := AdjustConsecutiveName("Dupont", h); ok {
			t.Error("Single word accepted as a name pair")
		}
	})

	t.Run("OverlongWordRejected", func(t *testing.T) {
		long := strings.Repeat("a", h.MaxWordLength+1)
		if _, ok := AdjustConsecutiveName("Jean "+long, h); ok {
			t.Error("Match with an overlong word accepted")
		}
	})
}

func TestFoldName(t *testing.T) {
	cases := map[string]string{
		"Jérôme":   "jerome",
		"François": "francois",
		"MÜLLER":   "muller",
		"Noël":     "noel",
	}
	for in, want := range cases {
		if got := foldName(in); got != want {
			t.Errorf("foldName(%q) = %q, want %q", in, got, want)
		}
	}
}
