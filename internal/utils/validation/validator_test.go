package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	Decision string   `json:"decision" validate:"required,oneof=a b"`
	Note     string   `json:"note" validate:"notblank"`
	Evidence []string `json:"evidence" validate:"max=2,dive,max=5"`
}

func TestStruct_ReportsJSONFieldNames(t *testing.T) {
	v := New()
	v.Struct(&sample{Decision: "c", Note: "   ", Evidence: []string{"ok", "too-long"}})

	require.False(t, v.Valid())
	fields := map[string]string{}
	for _, e := range v.Errors {
		fields[e.Field] = e.Message
	}
	assert.Equal(t, "must be one of a b", fields["decision"])
	assert.Equal(t, "is required", fields["note"])
	assert.Contains(t, fields, "evidence[1]")
	assert.Contains(t, v.Error(), "decision: must be one of a b")
}

func TestStruct_Valid(t *testing.T) {
	v := New()
	v.Struct(&sample{Decision: "a", Note: "fine", Evidence: []string{"x"}})
	assert.True(t, v.Valid())
	assert.Empty(t, v.Error())
}

func TestCheck(t *testing.T) {
	v := New()
	v.Check(false, "amount", "must be positive")
	v.Check(true, "currency", "unused")
	require.Len(t, v.Errors, 1)
	assert.Equal(t, "amount: must be positive", v.Errors[0].Error())
}
