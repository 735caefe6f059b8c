package privacy

// Registry is the ordered catalogue of detection rules. It is assembled once
// from the independent rule groups and never mutated afterwards apart from
// enable/disable flips.
type Registry struct {
	rules []Rule
	byID  map[string]int
}

// NewRegistry assembles the default rule groups. The name heuristics data is
// injected into the rules that need it.
func NewRegistry(h *NameHeuristics) *Registry {
	if h == nil {
		h = DefaultNameHeuristics()
	}

	var rules []Rule
	rules = append(rules, euRules()...)
	rules = append(rules, genericRules(h)...)
	rules = append(rules, digitalRules()...)

	byID := make(map[string]int, len(rules))
	for i, r := range rules {
		byID[r.ID] = i
	}

	return &Registry{rules: rules, byID: byID}
}

// Rules returns the full ordered rule list
func (r *Registry) Rules() []Rule {
	return r.rules
}

// ListEnabled returns enabled rules in registry order. A non-nil allow list
// restricts the result to the listed rule IDs.
func (r *Registry) ListEnabled(allowList []string) []Rule {
	var allowed map[string]bool
	if allowList != nil {
		allowed = make(map[string]bool, len(allowList))
		for _, id := range allowList {
			allowed[id] = true
		}
	}

	var out []Rule
	for _, rule := range r.rules {
		if !rule.Enabled {
			continue
		}
		if allowed != nil && !allowed[rule.ID] {
			continue
		}
		out = append(out, rule)
	}
	return out
}

// SetEnabled flips a rule's enabled flag. Unknown IDs report false.
func (r *Registry) SetEnabled(id string, enabled bool) bool {
	i, ok := r.byID[id]
	if !ok {
		return false
	}
	r.rules[i].Enabled = enabled
	return true
}

// Has reports whether the registry knows the given rule ID
func (r *Registry) Has(id string) bool {
	_, ok := r.byID[id]
	return ok
}
