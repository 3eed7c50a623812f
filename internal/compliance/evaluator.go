package compliance

import (
	"fmt"

	"signet/internal/domain"
)

// Status is the outcome of evaluating a signature against the standards table.
type Status struct {
	OverallCompliant    bool     `json:"overall_compliant"`
	Score               float64  `json:"compliance_score"`
	StandardsMet        []string `json:"standards_met"`
	MissingRequirements []string `json:"missing_requirements"`
}

// Evaluator walks a standards table and accumulates the compliance posture of a
// signature. It holds no per-call state; a single instance serves concurrent
// evaluations.
type Evaluator struct {
	standards []Standard
	rules     map[string]Rule
}

// NewEvaluator validates the table against the known rule set. Every standard
// must reference a registered rule and carry a positive weight.
func NewEvaluator(standards []Standard) (*Evaluator, error) {
	if len(standards) == 0 {
		return nil, fmt.Errorf("standards table is required")
	}

	rules := BuiltinRules()
	for _, std := range standards {
		if std.Name == "" {
			return nil, fmt.Errorf("standard name is required")
		}
		if _, ok := rules[std.Rule]; !ok {
			return nil, fmt.Errorf("standard %q references unknown rule %q", std.Name, std.Rule)
		}
		if std.Weight <= 0 {
			return nil, fmt.Errorf("standard %q must have a positive weight", std.Name)
		}
	}

	return &Evaluator{standards: standards, rules: rules}, nil
}

// Standards returns a copy of the active table, mainly for diagnostics.
func (e *Evaluator) Standards() []Standard {
	out := make([]Standard, len(e.standards))
	copy(out, e.standards)
	return out
}

// Evaluate checks every standard in table order. Met standards contribute their
// weight to the score; unmet standards record their requirement text. A
// signature is overall compliant when it meets at least one standard.
func (e *Evaluator) Evaluate(sig domain.Signature, doc domain.Document) Status {
	status := Status{
		StandardsMet:        []string{},
		MissingRequirements: []string{},
	}

	for _, std := range e.standards {
		if e.rules[std.Rule](sig, doc) {
			status.StandardsMet = append(status.StandardsMet, std.Name)
			status.Score += std.Weight
			continue
		}
		status.MissingRequirements = append(status.MissingRequirements,
			fmt.Sprintf("%s: %s", std.Name, std.Requirement))
	}

	status.OverallCompliant = len(status.StandardsMet) > 0
	return status
}
