// pkg/eligibility/scalar_test.go
package eligibility

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProfile_UnmarshalJSON(t *testing.T) {
	raw := `{
		"age": 25,
		"state": "KA",
		"is_farmer": true,
		"documents_held": ["aadhaar", "ration_card"]
	}`

	var p Profile
	require.NoError(t, json.Unmarshal([]byte(raw), &p))

	age, ok := p.Get("age")
	require.True(t, ok)
	assert.Equal(t, KindNumber, age.Kind())

	state, ok := p.Get("state")
	require.True(t, ok)
	assert.Equal(t, KindString, state.Kind())
	assert.Equal(t, "KA", state.String())

	farmer, ok := p.Get("is_farmer")
	require.True(t, ok)
	assert.Equal(t, KindBool, farmer.Kind())
	assert.True(t, farmer.Truthy())

	docs, ok := p.Get("documents_held")
	require.True(t, ok)
	assert.Equal(t, KindSet, docs.Kind())

	_, ok = p.Get("income")
	assert.False(t, ok)
}

func TestScalar_UnmarshalRejectsObjects(t *testing.T) {
	var s Scalar
	assert.Error(t, json.Unmarshal([]byte(`{"nested": 1}`), &s))
	assert.Error(t, json.Unmarshal([]byte(`null`), &s))
	assert.Error(t, json.Unmarshal([]byte(`[1, 2]`), &s))
}

func TestScalar_String(t *testing.T) {
	assert.Equal(t, "25", Number(25).String())
	assert.Equal(t, "2.5", Number(2.5).String())
	assert.Equal(t, "1000000", Number(1000000).String())
	assert.Equal(t, "farmer", Str("farmer").String())
	assert.Equal(t, "true", Bool(true).String())
	assert.Equal(t, "[a, b]", Set("a", "b").String())
}

func TestScalar_MarshalRoundTrip(t *testing.T) {
	for _, s := range []Scalar{Number(18), Str("KA"), Bool(false), Set("x", "y")} {
		data, err := json.Marshal(s)
		require.NoError(t, err)

		var back Scalar
		require.NoError(t, json.Unmarshal(data, &back))
		assert.Equal(t, s, back)
	}
}

func TestOperand_UnmarshalShapes(t *testing.T) {
	var scalar Operand
	require.NoError(t, json.Unmarshal([]byte(`18`), &scalar))
	assert.False(t, scalar.IsList())
	assert.Equal(t, KindNumber, scalar.Scalar().Kind())

	var list Operand
	require.NoError(t, json.Unmarshal([]byte(`["KA", "TN"]`), &list))
	assert.True(t, list.IsList())
	assert.Len(t, list.List(), 2)

	var bounds Operand
	require.NoError(t, json.Unmarshal([]byte(`{"min": 18, "max": 40}`), &bounds))
	assert.True(t, bounds.IsList())
	assert.Len(t, bounds.List(), 2)

	var bad Operand
	assert.Error(t, json.Unmarshal([]byte(`{"min": 18}`), &bad))
}
