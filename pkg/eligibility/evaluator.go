// pkg/eligibility/evaluator.go
package eligibility

// Verdict is the tri-state result of an evaluation. Undecided means the
// available data cannot settle the question; it is distinct from a definite
// failure everywhere reasons are generated.
type Verdict int

const (
	VerdictFalse Verdict = iota
	VerdictTrue
	VerdictUndecided
)

func (v Verdict) String() string {
	switch v {
	case VerdictTrue:
		return "true"
	case VerdictFalse:
		return "false"
	default:
		return "undecided"
	}
}

func verdictOf(b bool) Verdict {
	if b {
		return VerdictTrue
	}
	return VerdictFalse
}

func (v Verdict) negate() Verdict {
	switch v {
	case VerdictTrue:
		return VerdictFalse
	case VerdictFalse:
		return VerdictTrue
	default:
		return VerdictUndecided
	}
}

// evalCriterion evaluates one criterion against a profile. A missing
// attribute is Undecided, never false: "we don't know" must stay
// distinguishable from "the user fails this condition".
func evalCriterion(c Criterion, profile Profile) Verdict {
	have, ok := profile.Get(c.Attribute)
	if !ok {
		return VerdictUndecided
	}
	return apply(c.Op, have, c.Value)
}

// groupResult splits one criterion group by verdict, preserving the
// insertion order of the source rule.
type groupResult struct {
	satisfied []Criterion
	failed    []Criterion
	undecided []Criterion
}

func (g groupResult) size() int {
	return len(g.satisfied) + len(g.failed) + len(g.undecided)
}

// verdictAll: every criterion must hold. A definite failure beats missing
// data; missing data beats success. Empty group is vacuously true.
func (g groupResult) verdictAll() Verdict {
	if len(g.failed) > 0 {
		return VerdictFalse
	}
	if len(g.undecided) > 0 {
		return VerdictUndecided
	}
	return VerdictTrue
}

// verdictAny: at least one criterion must hold when the group is non-empty.
// A success beats missing data; missing data beats failure.
func (g groupResult) verdictAny() Verdict {
	if g.size() == 0 {
		return VerdictTrue
	}
	if len(g.satisfied) > 0 {
		return VerdictTrue
	}
	if len(g.undecided) > 0 {
		return VerdictUndecided
	}
	return VerdictFalse
}

func evalGroup(criteria []Criterion, profile Profile) groupResult {
	var g groupResult
	for _, c := range criteria {
		switch evalCriterion(c, profile) {
		case VerdictTrue:
			g.satisfied = append(g.satisfied, c)
		case VerdictFalse:
			g.failed = append(g.failed, c)
		default:
			g.undecided = append(g.undecided, c)
		}
	}
	return g
}

// treeResult is the raw outcome of one rule-tree evaluation, before scoring
// and explanation building.
type treeResult struct {
	verdict Verdict

	// fired holds disqualifiers that evaluated true; undecidedDisq holds
	// disqualifiers that could not be decided. An undecided disqualifier
	// does not block eligibility but still yields a data notice.
	fired         []Criterion
	undecidedDisq []Criterion

	all groupResult
	any groupResult
}

// evaluateTree runs the full boolean structure. Disqualifiers dominate:
// when any fires the all/any groups are skipped entirely.
func evaluateTree(rule Rule, profile Profile) treeResult {
	var res treeResult

	for _, c := range rule.Disqualifiers {
		switch evalCriterion(c, profile) {
		case VerdictTrue:
			res.fired = append(res.fired, c)
		case VerdictUndecided:
			res.undecidedDisq = append(res.undecidedDisq, c)
		}
	}
	if len(res.fired) > 0 {
		res.verdict = VerdictFalse
		return res
	}

	res.all = evalGroup(rule.All, profile)
	res.any = evalGroup(rule.Any, profile)

	allV := res.all.verdictAll()
	anyV := res.any.verdictAny()

	switch {
	case allV == VerdictFalse || anyV == VerdictFalse:
		res.verdict = VerdictFalse
	case allV == VerdictUndecided || anyV == VerdictUndecided:
		res.verdict = VerdictUndecided
	default:
		res.verdict = VerdictTrue
	}
	return res
}
