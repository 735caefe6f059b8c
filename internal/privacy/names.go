package privacy

import (
	"strings"
	"unicode/utf8"
)

var accentFolder = strings.NewReplacer(
	"à", "a", "â", "a", "ä", "a", "á", "a", "ã", "a",
	"ç", "c",
	"è", "e", "é", "e", "ê", "e", "ë", "e",
	"ì", "i", "î", "i", "ï", "i", "í", "i",
	"ò", "o", "ô", "o", "ö", "o", "ó", "o", "õ", "o",
	"ù", "u", "û", "u", "ü", "u", "ú", "u",
	"ÿ", "y", "ñ", "n",
)

// foldName normalizes a name word for lookup: lowercase, accents stripped
func foldName(word string) string {
	return accentFolder.Replace(strings.ToLower(word))
}

// AdjustConsecutiveName is the confidence adjuster for the heuristic
// consecutive-name rule. It rejects known institutional/legal bigrams and
// matches containing implausibly long words, and promotes the confidence to
// medium when the first word is a known first name. The lookup data is passed
// explicitly so the function stays independently testable.
func AdjustConsecutiveName(match string, h *NameHeuristics) (Confidence, bool) {
	words := strings.Fields(match)
	if len(words) < 2 {
		return 0, false
	}

	for _, w := range words {
		if utf8.RuneCountInString(w) > h.MaxWordLength {
			return 0, false
		}
	}

	first := foldName(words[0])
	last := foldName(words[len(words)-1])
	if _, ok := h.FalsePositiveBigrams[first+" "+last]; ok {
		return 0, false
	}

	if _, ok := h.FirstNames[first]; ok {
		return ConfidenceMedium, true
	}

	return ConfidenceLow, true
}
