// pkg/eligibility/operator.go
package eligibility

import "strings"

// Operator names the predicate applied between a profile value and a rule
// value. The set is closed; unknown names are rejected at rule-load time.
type Operator string

const (
	OpEq      Operator = "=="
	OpNe      Operator = "!="
	OpGt      Operator = ">"
	OpGte     Operator = ">="
	OpLt      Operator = "<"
	OpLte     Operator = "<="
	OpTruthy  Operator = "truthy"
	OpFalsy   Operator = "falsy"
	OpIn      Operator = "in"
	OpNotIn   Operator = "not_in"
	OpBetween Operator = "between"
)

var knownOperators = map[Operator]struct{}{
	OpEq: {}, OpNe: {}, OpGt: {}, OpGte: {}, OpLt: {}, OpLte: {},
	OpTruthy: {}, OpFalsy: {}, OpIn: {}, OpNotIn: {}, OpBetween: {},
}

// Known reports whether op is part of the closed operator set.
func (op Operator) Known() bool {
	_, ok := knownOperators[op]
	return ok
}

// apply evaluates one operator. Operators never fail hard: a type mismatch
// or an uncomparable pairing yields VerdictUndecided so the caller can keep
// missing-data distinct from an active failure.
func apply(op Operator, have Scalar, want Operand) Verdict {
	switch op {
	case OpEq:
		return equals(have, want)
	case OpNe:
		return equals(have, want).negate()
	case OpGt, OpGte, OpLt, OpLte:
		return ordered(op, have, want)
	case OpTruthy:
		return verdictOf(have.Truthy())
	case OpFalsy:
		return verdictOf(!have.Truthy())
	case OpIn:
		return membership(have, want)
	case OpNotIn:
		return membership(have, want).negate()
	case OpBetween:
		return between(have, want)
	default:
		return VerdictUndecided
	}
}

func equals(have Scalar, want Operand) Verdict {
	if want.isList {
		// Scalar-to-list equality is not meaningful.
		return VerdictUndecided
	}
	return scalarEquals(have, want.scalar)
}

func scalarEquals(a, b Scalar) Verdict {
	if a.kind != b.kind {
		return VerdictUndecided
	}
	switch a.kind {
	case KindNumber:
		return verdictOf(a.num == b.num)
	case KindString:
		return verdictOf(a.str == b.str)
	case KindBool:
		return verdictOf(a.b == b.b)
	case KindSet:
		return verdictOf(setEquals(a.set, b.set))
	default:
		return VerdictUndecided
	}
}

func setEquals(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	seen := make(map[string]int, len(a))
	for _, v := range a {
		seen[v]++
	}
	for _, v := range b {
		seen[v]--
		if seen[v] < 0 {
			return false
		}
	}
	return true
}

// ordered handles >, >=, <, <=. Only number-number and string-string
// pairings are comparable; everything else is Undecided.
func ordered(op Operator, have Scalar, want Operand) Verdict {
	if want.isList {
		return VerdictUndecided
	}
	cmp, ok := compare(have, want.scalar)
	if !ok {
		return VerdictUndecided
	}
	switch op {
	case OpGt:
		return verdictOf(cmp > 0)
	case OpGte:
		return verdictOf(cmp >= 0)
	case OpLt:
		return verdictOf(cmp < 0)
	case OpLte:
		return verdictOf(cmp <= 0)
	}
	return VerdictUndecided
}

func compare(a, b Scalar) (int, bool) {
	if a.kind != b.kind {
		return 0, false
	}
	switch a.kind {
	case KindNumber:
		switch {
		case a.num < b.num:
			return -1, true
		case a.num > b.num:
			return 1, true
		default:
			return 0, true
		}
	case KindString:
		return strings.Compare(a.str, b.str), true
	default:
		return 0, false
	}
}

// membership tests the profile value against the rule value as a set. A
// comma-delimited string rule value is treated as a list (catalogs authored
// that way predate the list form). A string-set profile value is a member
// when it is a subset.
func membership(have Scalar, want Operand) Verdict {
	members := membershipSet(want)
	if len(members) == 0 {
		return VerdictUndecided
	}

	if have.kind == KindSet {
		sameKind := false
		for _, m := range members {
			if m.kind == KindString {
				sameKind = true
				break
			}
		}
		if !sameKind {
			return VerdictUndecided
		}
		for _, v := range have.set {
			if !containsScalar(members, Str(v)) {
				return VerdictFalse
			}
		}
		return VerdictTrue
	}

	sameKind := false
	for _, m := range members {
		if m.kind == have.kind {
			sameKind = true
			if scalarEquals(have, m) == VerdictTrue {
				return VerdictTrue
			}
		}
	}
	if !sameKind {
		return VerdictUndecided
	}
	return VerdictFalse
}

func membershipSet(want Operand) []Scalar {
	if want.isList {
		return want.list
	}
	switch want.scalar.kind {
	case KindString:
		parts := strings.Split(want.scalar.str, ",")
		members := make([]Scalar, 0, len(parts))
		for _, p := range parts {
			members = append(members, Str(strings.TrimSpace(p)))
		}
		return members
	case KindSet:
		members := make([]Scalar, 0, len(want.scalar.set))
		for _, v := range want.scalar.set {
			members = append(members, Str(v))
		}
		return members
	case KindInvalid:
		return nil
	default:
		return []Scalar{want.scalar}
	}
}

func containsScalar(set []Scalar, v Scalar) bool {
	for _, m := range set {
		if scalarEquals(m, v) == VerdictTrue {
			return true
		}
	}
	return false
}

// between expects a two-element [low, high] operand with inclusive bounds.
func between(have Scalar, want Operand) Verdict {
	if !want.isList || len(want.list) != 2 {
		return VerdictUndecided
	}
	low, ok := compare(have, want.list[0])
	if !ok {
		return VerdictUndecided
	}
	high, ok := compare(have, want.list[1])
	if !ok {
		return VerdictUndecided
	}
	return verdictOf(low >= 0 && high <= 0)
}
