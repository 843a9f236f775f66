// pkg/eligibility/rule.go
package eligibility

import (
	"errors"
	"fmt"
)

// Criterion is one leaf predicate: profile[Attribute] Op Value. Reason and
// FailReason are optional author-supplied explanation overrides.
type Criterion struct {
	Attribute  string   `json:"attribute"`
	Op         Operator `json:"op"`
	Value      Operand  `json:"value,omitempty"`
	Reason     string   `json:"reason,omitempty"`
	FailReason string   `json:"reason_if_fail,omitempty"`
}

// Rule is one scheme's eligibility structure. All criteria in All must
// hold, at least one in Any must hold when Any is non-empty, and any
// holding Disqualifier forces ineligibility.
type Rule struct {
	All           []Criterion `json:"all"`
	Any           []Criterion `json:"any"`
	Disqualifiers []Criterion `json:"disqualifiers"`
}

// ConfigError marks a malformed rule: missing fields, unknown operators, or
// invalid operand shapes. It is surfaced at rule-load time and isolated to
// the offending scheme during batch evaluation.
type ConfigError struct {
	msg string
}

func (e *ConfigError) Error() string { return e.msg }

func configErrorf(format string, args ...interface{}) *ConfigError {
	return &ConfigError{msg: fmt.Sprintf(format, args...)}
}

// IsConfigError reports whether err is (or wraps) a rule configuration error.
func IsConfigError(err error) bool {
	var ce *ConfigError
	return errors.As(err, &ce)
}

// Validate checks a single criterion. Value is required for every operator
// except truthy/falsy, which only inspect the profile value.
func (c Criterion) Validate() error {
	if c.Attribute == "" {
		return configErrorf("criterion is missing attribute")
	}
	if c.Op == "" {
		return configErrorf("criterion %q is missing operator", c.Attribute)
	}
	if !c.Op.Known() {
		return configErrorf("criterion %q uses unknown operator %q", c.Attribute, c.Op)
	}
	switch c.Op {
	case OpTruthy, OpFalsy:
		return nil
	case OpBetween:
		if !c.Value.isList || len(c.Value.list) != 2 {
			return configErrorf("criterion %q: between requires a [low, high] pair", c.Attribute)
		}
		return nil
	default:
		if c.Value.IsZero() {
			return configErrorf("criterion %q is missing value", c.Attribute)
		}
		return nil
	}
}

// Validate checks every criterion in the rule. The returned error names
// the group and index of the first offending criterion.
func (r Rule) Validate() error {
	groups := []struct {
		name     string
		criteria []Criterion
	}{
		{"all", r.All},
		{"any", r.Any},
		{"disqualifiers", r.Disqualifiers},
	}
	for _, g := range groups {
		for i, c := range g.criteria {
			if err := c.Validate(); err != nil {
				return configErrorf("%s[%d]: %v", g.name, i, err)
			}
		}
	}
	return nil
}
