// pkg/eligibility/outcome.go
package eligibility

import "fmt"

// SchemeMeta is descriptive scheme information, attached unchanged to every
// outcome.
type SchemeMeta struct {
	SchemeID          string   `json:"scheme_id"`
	SchemeName        string   `json:"scheme_name"`
	RequiredInputs    []string `json:"required_inputs,omitempty"`
	RequiredDocuments []string `json:"required_documents,omitempty"`
	BenefitOutline    string   `json:"benefit_outline,omitempty"`
	NextSteps         string   `json:"next_steps,omitempty"`
}

// Outcome is the user-facing result for one scheme.
type Outcome struct {
	SchemeID          string   `json:"scheme_id"`
	SchemeName        string   `json:"scheme_name"`
	Eligible          bool     `json:"is_eligible"`
	Reasons           []string `json:"reasons"`
	RequiredDocuments []string `json:"required_documents"`
	NextSteps         string   `json:"next_steps,omitempty"`
	Score             float64  `json:"score"`
}

// Report aggregates one evaluation call over the full catalog.
type Report struct {
	TotalSchemesChecked int       `json:"total_schemes_checked"`
	EligibleSchemes     int       `json:"eligible_schemes"`
	Results             []Outcome `json:"results"`
}

// CatalogEntry pairs one scheme's rule with its metadata.
type CatalogEntry struct {
	Meta SchemeMeta `json:"meta"`
	Rule Rule       `json:"rule"`
}

// ScoreWeights controls how much mandatory (all) criteria count versus
// alternative (any) criteria when computing the confidence score. The
// defaults weight mandatory criteria double.
type ScoreWeights struct {
	All float64
	Any float64
}

// DefaultScoreWeights is the 2:1 mandatory-vs-alternative weighting.
var DefaultScoreWeights = ScoreWeights{All: 2, Any: 1}

// Evaluator turns rules and profiles into outcomes. It is stateless apart
// from its configuration and safe for concurrent use.
type Evaluator struct {
	weights ScoreWeights
}

type Option func(*Evaluator)

// WithScoreWeights overrides the default 2:1 scoring weights.
func WithScoreWeights(w ScoreWeights) Option {
	return func(e *Evaluator) {
		if w.All > 0 && w.Any > 0 {
			e.weights = w
		}
	}
}

func NewEvaluator(opts ...Option) *Evaluator {
	e := &Evaluator{weights: DefaultScoreWeights}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// EvaluateOne evaluates a single scheme. A malformed rule never aborts the
// caller: it yields an ineligible outcome carrying a malformed-rule reason,
// so batch evaluation stays isolated per scheme.
func (e *Evaluator) EvaluateOne(profile Profile, rule Rule, meta SchemeMeta) Outcome {
	if err := rule.Validate(); err != nil {
		return Outcome{
			SchemeID:          meta.SchemeID,
			SchemeName:        meta.SchemeName,
			Eligible:          false,
			Reasons:           []string{fmt.Sprintf("scheme rule is malformed: %v", err)},
			RequiredDocuments: dedupe(meta.RequiredDocuments),
			NextSteps:         meta.NextSteps,
			Score:             0,
		}
	}

	tree := evaluateTree(rule, profile)

	return Outcome{
		SchemeID:          meta.SchemeID,
		SchemeName:        meta.SchemeName,
		Eligible:          tree.verdict == VerdictTrue,
		Reasons:           e.buildReasons(tree),
		RequiredDocuments: dedupe(meta.RequiredDocuments),
		NextSteps:         meta.NextSteps,
		Score:             e.score(tree),
	}
}

// score is the weighted percentage of satisfied all/any criteria. A fired
// disqualifier zeroes the score; a rule with no criteria scores full
// confidence.
func (e *Evaluator) score(tree treeResult) float64 {
	if len(tree.fired) > 0 {
		return 0
	}
	total := e.weights.All*float64(tree.all.size()) + e.weights.Any*float64(tree.any.size())
	if total == 0 {
		return 100
	}
	satisfied := e.weights.All*float64(len(tree.all.satisfied)) + e.weights.Any*float64(len(tree.any.satisfied))
	return 100 * satisfied / total
}

// buildReasons produces the deterministic explanation list: disqualifiers
// first, then all-group results, then any-group results, then
// insufficient-data notices. Order within each block follows the insertion
// order of the source rule.
func (e *Evaluator) buildReasons(tree treeResult) []string {
	var reasons []string

	for _, c := range tree.fired {
		if c.Reason != "" {
			reasons = append(reasons, c.Reason)
		} else {
			reasons = append(reasons, "disqualified: "+describe(c))
		}
	}
	if len(tree.fired) > 0 {
		for _, c := range tree.undecidedDisq {
			reasons = append(reasons, insufficientData(c))
		}
		return reasons
	}

	for _, c := range tree.all.satisfied {
		reasons = append(reasons, satisfiedReason(c))
	}
	for _, c := range tree.all.failed {
		reasons = append(reasons, failedReason(c))
	}
	for _, c := range tree.any.satisfied {
		reasons = append(reasons, satisfiedReason(c))
	}
	for _, c := range tree.any.failed {
		reasons = append(reasons, failedReason(c))
	}

	for _, c := range tree.all.undecided {
		reasons = append(reasons, insufficientData(c))
	}
	for _, c := range tree.any.undecided {
		reasons = append(reasons, insufficientData(c))
	}
	for _, c := range tree.undecidedDisq {
		reasons = append(reasons, insufficientData(c))
	}
	return reasons
}

func describe(c Criterion) string {
	switch c.Op {
	case OpTruthy, OpFalsy:
		return fmt.Sprintf("%s is %s", c.Attribute, c.Op)
	default:
		return fmt.Sprintf("%s %s %s", c.Attribute, c.Op, c.Value.String())
	}
}

func satisfiedReason(c Criterion) string {
	if c.Reason != "" {
		return c.Reason
	}
	return describe(c)
}

func failedReason(c Criterion) string {
	if c.FailReason != "" {
		return c.FailReason
	}
	return describe(c) + " not met"
}

func insufficientData(c Criterion) string {
	return "insufficient data for " + c.Attribute
}

// dedupe removes duplicates while preserving first-seen order.
func dedupe(values []string) []string {
	out := make([]string, 0, len(values))
	seen := make(map[string]struct{}, len(values))
	for _, v := range values {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
