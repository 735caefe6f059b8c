package privacy

import (
	"fmt"
	"sort"

	"github.com/MaitreJV/pseudoshield/internal/config"
	"github.com/MaitreJV/pseudoshield/internal/logger"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Detector executes the pattern registry against text and produces an
// ordered, non-overlapping detection list.
type Detector struct {
	registry *Registry
	logger   *logger.Logger
	config   config.PrivacyConfig
}

// New creates a new detector with the default rule groups
func New(cfg config.PrivacyConfig, log *logger.Logger) (*Detector, error) {
	return NewWithHeuristics(cfg, DefaultNameHeuristics(), log)
}

// NewWithHeuristics creates a detector with caller-supplied name heuristics
func NewWithHeuristics(cfg config.PrivacyConfig, h *NameHeuristics, log *logger.Logger) (*Detector, error) {
	detector := &Detector{
		registry: NewRegistry(h),
		logger:   log,
		config:   cfg,
	}

	if err := detector.configureRules(cfg.Detectors); err != nil {
		return nil, fmt.Errorf("failed to configure detectors: %w", err)
	}

	log.Info("Privacy detector initialized",
		zap.Int("total_rules", len(detector.registry.Rules())),
		zap.Int("enabled_rules", len(detector.registry.ListEnabled(nil))),
	)

	return detector, nil
}

// configureRules enables/disables rules based on configuration
func (d *Detector) configureRules(detectors []string) error {
	for _, id := range detectors {
		if id == "all" {
			return nil
		}
	}

	// An explicit list disables everything else
	for _, rule := range d.registry.Rules() {
		d.registry.SetEnabled(rule.ID, false)
	}
	for _, id := range detectors {
		if !d.registry.SetEnabled(id, true) {
			return fmt.Errorf("unknown detector: %s", id)
		}
	}
	return nil
}

// Registry exposes the rule catalogue for inspection and enable/disable
func (d *Detector) Registry() *Registry {
	return d.registry
}

// Detect runs every enabled rule against the text and returns detections
// sorted by start offset with overlaps resolved. Empty input yields an empty
// result; Detect never fails.
func (d *Detector) Detect(text string, opts Options) []Detection {
	if !d.config.Enabled || text == "" {
		return nil
	}

	rules := d.registry.ListEnabled(opts.AllowList)
	if len(rules) == 0 {
		return nil
	}

	minConfidence := opts.MinConfidence
	if minConfidence == 0 {
		minConfidence = ParseConfidence(d.config.MinConfidence)
	}

	// Rules are independent and side-effect-free: scan them concurrently,
	// then merge into a deterministic order.
	perRule := make([][]Detection, len(rules))
	var g errgroup.Group
	for i := range rules {
		i := i
		g.Go(func() error {
			perRule[i] = scanRule(text, rules[i])
			return nil
		})
	}
	g.Wait() //nolint:errcheck // scans never return errors

	var detections []Detection
	for _, ds := range perRule {
		for _, det := range ds {
			if det.Confidence >= minConfidence {
				detections = append(detections, det)
			}
		}
	}

	sort.SliceStable(detections, func(i, j int) bool {
		return detections[i].Start < detections[j].Start
	})

	resolved := resolveOverlaps(detections)

	if len(resolved) > 0 {
		d.logger.Debug("Personal data detected",
			zap.Int("candidates", len(detections)),
			zap.Int("detections", len(resolved)),
			zap.Int("text_length", len(text)),
		)
	}

	return resolved
}

// scanRule collects every regex match of one rule, applying its validator
// and confidence adjuster.
func scanRule(text string, rule Rule) []Detection {
	matches := rule.Pattern.FindAllStringSubmatchIndex(text, -1)
	if matches == nil {
		return nil
	}

	var out []Detection
	for _, m := range matches {
		start, end := m[2*rule.Group], m[2*rule.Group+1]
		if start < 0 || end < 0 {
			continue
		}
		matched := text[start:end]

		confidence := rule.BaseConfidence
		if rule.Validator != nil && !rule.Validator(matched) {
			if !rule.SoftValidation {
				continue
			}
			confidence = ConfidenceMedium
		}

		// The adjuster overrides both base confidence and validator outcome
		if rule.Adjust != nil {
			adjusted, ok := rule.Adjust(matched)
			if !ok {
				continue
			}
			confidence = adjusted
		}

		out = append(out, Detection{
			RuleID:          rule.ID,
			Match:           matched,
			Start:           start,
			End:             end,
			Category:        rule.Category,
			Legal:           rule.Legal,
			Confidence:      confidence,
			ConfidenceLabel: confidence.String(),
			PseudonymPrefix: rule.PseudonymPrefix,
		})
	}
	return out
}

// resolveOverlaps enforces the greedy best-local-detection policy over a
// start-sorted list: an overlapping candidate replaces the previously
// accepted one only with strictly higher confidence, or equal confidence and
// a longer span. Ties keep the earlier-discovered detection.
func resolveOverlaps(detections []Detection) []Detection {
	if len(detections) <= 1 {
		return detections
	}

	resolved := []Detection{detections[0]}
	for _, current := range detections[1:] {
		last := resolved[len(resolved)-1]

		if current.Start >= last.End {
			resolved = append(resolved, current)
			continue
		}

		if current.Confidence > last.Confidence ||
			(current.Confidence == last.Confidence && current.End-current.Start > last.End-last.Start) {
			resolved[len(resolved)-1] = current
		}
	}

	return resolved
}

// CountByLegalCategory tallies detections per regulatory class
func CountByLegalCategory(detections []Detection) map[LegalCategory]int {
	counts := map[LegalCategory]int{LegalOrdinary: 0, LegalSensitive: 0}
	for _, d := range detections {
		if d.Legal == LegalSensitive {
			counts[LegalSensitive]++
		} else {
			counts[LegalOrdinary]++
		}
	}
	return counts
}

// CountByCategory tallies detections per functional category
func CountByCategory(detections []Detection) map[string]int {
	counts := make(map[string]int)
	for _, d := range detections {
		counts[d.Category]++
	}
	return counts
}
