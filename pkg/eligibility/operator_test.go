// pkg/eligibility/operator_test.go
package eligibility

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApply_Comparisons(t *testing.T) {
	tests := []struct {
		name     string
		op       Operator
		have     Scalar
		want     Operand
		expected Verdict
	}{
		{"number equal", OpEq, Number(25), Value(Number(25)), VerdictTrue},
		{"number not equal", OpEq, Number(25), Value(Number(30)), VerdictFalse},
		{"string equal", OpEq, Str("KA"), Value(Str("KA")), VerdictTrue},
		{"bool equal", OpEq, Bool(true), Value(Bool(true)), VerdictTrue},
		{"ne inverts equality", OpNe, Number(25), Value(Number(30)), VerdictTrue},
		{"mixed types are undecided", OpEq, Str("25"), Value(Number(25)), VerdictUndecided},
		{"ne on mixed types stays undecided", OpNe, Str("25"), Value(Number(25)), VerdictUndecided},
		{"gt numbers", OpGt, Number(25), Value(Number(18)), VerdictTrue},
		{"gte boundary", OpGte, Number(18), Value(Number(18)), VerdictTrue},
		{"lt numbers", OpLt, Number(10), Value(Number(18)), VerdictTrue},
		{"lte fails", OpLte, Number(25), Value(Number(18)), VerdictFalse},
		{"lexicographic strings", OpLt, Str("alpha"), Value(Str("beta")), VerdictTrue},
		{"ordering on bools is undecided", OpGt, Bool(true), Value(Bool(false)), VerdictUndecided},
		{"ordering across types is undecided", OpGt, Str("25"), Value(Number(18)), VerdictUndecided},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, apply(tt.op, tt.have, tt.want))
		})
	}
}

func TestApply_TruthyFalsy(t *testing.T) {
	tests := []struct {
		name     string
		op       Operator
		have     Scalar
		expected Verdict
	}{
		{"true bool is truthy", OpTruthy, Bool(true), VerdictTrue},
		{"false bool is not truthy", OpTruthy, Bool(false), VerdictFalse},
		{"non-zero number is truthy", OpTruthy, Number(2), VerdictTrue},
		{"zero number is falsy", OpFalsy, Number(0), VerdictTrue},
		{"empty string is falsy", OpFalsy, Str(""), VerdictTrue},
		{"non-empty set is truthy", OpTruthy, Set("bpl"), VerdictTrue},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, apply(tt.op, tt.have, Operand{}))
		})
	}
}

func TestApply_Membership(t *testing.T) {
	states := ValueList(Str("KA"), Str("TN"), Str("KL"))

	tests := []struct {
		name     string
		op       Operator
		have     Scalar
		want     Operand
		expected Verdict
	}{
		{"member of list", OpIn, Str("KA"), states, VerdictTrue},
		{"not a member", OpIn, Str("MH"), states, VerdictFalse},
		{"not_in inverts", OpNotIn, Str("MH"), states, VerdictTrue},
		{"comma-delimited string value", OpIn, Str("TN"), Value(Str("KA, TN, KL")), VerdictTrue},
		{"number membership", OpIn, Number(2), ValueList(Number(1), Number(2)), VerdictTrue},
		{"kind mismatch is undecided", OpIn, Number(2), states, VerdictUndecided},
		{"set subset is a member", OpIn, Set("KA", "TN"), states, VerdictTrue},
		{"set with stray element fails", OpIn, Set("KA", "MH"), states, VerdictFalse},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, apply(tt.op, tt.have, tt.want))
		})
	}
}

func TestApply_Between(t *testing.T) {
	ageBand := ValueList(Number(18), Number(40))

	tests := []struct {
		name     string
		have     Scalar
		want     Operand
		expected Verdict
	}{
		{"inside range", Number(25), ageBand, VerdictTrue},
		{"low bound inclusive", Number(18), ageBand, VerdictTrue},
		{"high bound inclusive", Number(40), ageBand, VerdictTrue},
		{"outside range", Number(41), ageBand, VerdictFalse},
		{"string range", Str("m"), ValueList(Str("a"), Str("z")), VerdictTrue},
		{"type mismatch is undecided", Str("25"), ageBand, VerdictUndecided},
		{"malformed bounds are undecided", Number(25), ValueList(Number(18)), VerdictUndecided},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, apply(OpBetween, tt.have, tt.want))
		})
	}
}

func TestOperand_UnmarshalLegacyBetweenObject(t *testing.T) {
	var c Criterion
	raw := `{"attribute": "age", "op": "between", "value": {"min": 18, "max": 40}}`
	require.NoError(t, json.Unmarshal([]byte(raw), &c))

	require.NoError(t, c.Validate())
	assert.Equal(t, VerdictTrue, apply(OpBetween, Number(25), c.Value))
	assert.Equal(t, VerdictFalse, apply(OpBetween, Number(50), c.Value))
}

func TestOperator_Known(t *testing.T) {
	for _, op := range []Operator{OpEq, OpNe, OpGt, OpGte, OpLt, OpLte, OpTruthy, OpFalsy, OpIn, OpNotIn, OpBetween} {
		assert.True(t, op.Known(), string(op))
	}
	assert.False(t, Operator("matches").Known())
	assert.False(t, Operator("").Known())
}
