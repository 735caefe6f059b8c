// Package pipeline orchestrates detection and pseudonymization: raw text in,
// rewritten text plus aggregate statistics out.
package pipeline

import (
	"context"
	"time"

	"github.com/MaitreJV/pseudoshield/internal/logger"
	"github.com/MaitreJV/pseudoshield/internal/privacy"
	"github.com/MaitreJV/pseudoshield/internal/pseudonym"
	"go.uber.org/zap"
)

// ResolvedDetection is a detection with its assigned pseudonym attached
type ResolvedDetection struct {
	privacy.Detection
	Pseudonym string `json:"pseudonym"`
}

// Result is the outcome of one pipeline invocation
type Result struct {
	ResultText          string                        `json:"resultText"`
	OriginalLength      int                           `json:"originalLength"`
	ResultLength        int                           `json:"resultLength"`
	ReplacementCount    int                           `json:"replacementCount"`
	Detections          []ResolvedDetection           `json:"detections"`
	LegalCategoryCounts map[privacy.LegalCategory]int `json:"legalCategoryCounts"`
	CategoryCounts      map[string]int                `json:"categoryCounts"`
	DurationMs          int64                         `json:"durationMs"`
}

// Pipeline wires the detector to the pseudonym engine
type Pipeline struct {
	detector *privacy.Detector
	engine   *pseudonym.Engine
	logger   *logger.Logger
	// bracket wraps pseudonyms in square brackets in the rewritten text
	bracket bool
}

// New creates a processing pipeline
func New(detector *privacy.Detector, engine *pseudonym.Engine, bracket bool, log *logger.Logger) *Pipeline {
	return &Pipeline{
		detector: detector,
		engine:   engine,
		logger:   log,
		bracket:  bracket,
	}
}

// Process detects personal data in the text and replaces every detection
// with its pseudonym. Failures on the persistence path degrade to in-memory
// pseudonyms; the caller always gets a usable result, and at worst a value
// is left unpseudonymized rather than the text corrupted.
func (p *Pipeline) Process(ctx context.Context, text string, opts privacy.Options) Result {
	start := time.Now()

	result := Result{
		ResultText:          text,
		OriginalLength:      len(text),
		ResultLength:        len(text),
		Detections:          []ResolvedDetection{},
		LegalCategoryCounts: map[privacy.LegalCategory]int{privacy.LegalOrdinary: 0, privacy.LegalSensitive: 0},
		CategoryCounts:      map[string]int{},
	}
	if text == "" {
		return result
	}

	detections := p.detector.Detect(text, opts)
	if len(detections) == 0 {
		result.DurationMs = time.Since(start).Milliseconds()
		return result
	}

	// Rewrite from the last detection to the first so offsets computed
	// against the original text stay valid while the text shrinks and grows.
	rewritten := text
	resolved := make([]ResolvedDetection, len(detections))
	for i := len(detections) - 1; i >= 0; i-- {
		det := detections[i]

		pseudo, err := p.engine.GetPseudonym(ctx, det.Match, det.PseudonymPrefix, det.Category, string(det.Legal))
		if err != nil {
			p.logger.Error("Pseudonym resolution failed, leaving value in place",
				zap.String("rule_id", det.RuleID),
				zap.Error(err))
			resolved[i] = ResolvedDetection{Detection: det}
			continue
		}

		replacement := pseudo
		if p.bracket {
			replacement = "[" + pseudo + "]"
		}
		rewritten = rewritten[:det.Start] + replacement + rewritten[det.End:]

		resolved[i] = ResolvedDetection{Detection: det, Pseudonym: pseudo}
	}

	result.ResultText = rewritten
	result.ResultLength = len(rewritten)
	result.ReplacementCount = len(detections)
	result.Detections = resolved
	result.LegalCategoryCounts = privacy.CountByLegalCategory(detections)
	result.CategoryCounts = privacy.CountByCategory(detections)
	result.DurationMs = time.Since(start).Milliseconds()

	p.logger.Debug("Text processed",
		zap.Int("detections", len(detections)),
		zap.Int("original_length", result.OriginalLength),
		zap.Int("result_length", result.ResultLength),
		zap.Int64("duration_ms", result.DurationMs),
	)

	return result
}

// TriggeredRuleIDs returns the deduplicated rule IDs behind a result, in
// first-occurrence order.
func (r Result) TriggeredRuleIDs() []string {
	seen := make(map[string]bool)
	var ids []string
	for _, d := range r.Detections {
		if !seen[d.RuleID] {
			seen[d.RuleID] = true
			ids = append(ids, d.RuleID)
		}
	}
	return ids
}
