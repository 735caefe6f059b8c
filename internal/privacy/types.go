package privacy

import "regexp"

// Confidence ranks how certain a detection is. The ordering is used directly
// by the overlap resolution tie-break.
type Confidence int8

const (
	ConfidenceLow    Confidence = 1
	ConfidenceMedium Confidence = 2
	ConfidenceHigh   Confidence = 3
)

// String returns the display label for a confidence level
func (c Confidence) String() string {
	switch c {
	case ConfidenceHigh:
		return "high"
	case ConfidenceMedium:
		return "medium"
	case ConfidenceLow:
		return "low"
	}
	return "unknown"
}

// ParseConfidence converts a display label back to a Confidence.
// Unknown labels parse as low so a bad config never silences detections.
func ParseConfidence(label string) Confidence {
	switch label {
	case "high":
		return ConfidenceHigh
	case "medium":
		return ConfidenceMedium
	default:
		return ConfidenceLow
	}
}

// LegalCategory is the regulatory class of a detected value: ordinary
// personal data (art. 4) or sensitive special-category data (art. 9).
type LegalCategory string

const (
	LegalOrdinary  LegalCategory = "art4"
	LegalSensitive LegalCategory = "art9"
)

// Functional categories grouping rules by the kind of data they detect.
const (
	CategoryIdentity  = "identity"
	CategoryContact   = "contact"
	CategoryFinancial = "financial"
	CategoryAddress   = "address"
	CategoryTechnical = "technical"
)

// AdjustFunc is a rule-specific confidence adjuster for heuristic rules.
// It returns the final confidence for the match, or ok=false to reject the
// match outright. When present it overrides both the base confidence and the
// validator outcome.
type AdjustFunc func(match string) (Confidence, bool)

// Rule represents a single detection rule. Rules are immutable once
// registered; the registry only flips Enabled.
type Rule struct {
	ID              string
	Label           string
	Category        string
	Legal           LegalCategory
	BaseConfidence  Confidence
	Pattern         *regexp.Regexp
	// Group selects the submatch that carries the sensitive span.
	// 0 means the whole match.
	Group           int
	Validator       func(string) bool
	SoftValidation  bool
	Adjust          AdjustFunc
	PseudonymPrefix string
	Enabled         bool
}

// Detection represents a single located piece of personal data. Offsets are
// byte offsets into the original text, end-exclusive.
type Detection struct {
	RuleID          string        `json:"ruleId"`
	Match           string        `json:"match"`
	Start           int           `json:"start"`
	End             int           `json:"end"`
	Category        string        `json:"category"`
	Legal           LegalCategory `json:"legalCategory"`
	Confidence      Confidence    `json:"-"`
	ConfidenceLabel string        `json:"confidence"`
	PseudonymPrefix string        `json:"-"`
}

// Options control a single detection pass
type Options struct {
	// AllowList restricts detection to the listed rule IDs (nil = all enabled)
	AllowList []string
	// MinConfidence drops detections ranked below it (zero value = low)
	MinConfidence Confidence
}
