package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJSON_ScanAcceptsBytesAndString(t *testing.T) {
	var fromBytes, fromString JSON
	require.NoError(t, fromBytes.Scan([]byte(`{"dispute":"d1"}`)))
	require.NoError(t, fromString.Scan(`{"dispute":"d1"}`))
	assert.Equal(t, fromBytes, fromString)
	assert.Equal(t, "d1", fromBytes["dispute"])

	var empty JSON
	require.NoError(t, empty.Scan(nil))
	assert.Nil(t, empty)
	assert.Error(t, empty.Scan(42))
}

func TestJSON_NilValueIsSQLNull(t *testing.T) {
	var j JSON
	v, err := j.Value()
	require.NoError(t, err)
	assert.Nil(t, v)

	b, err := j.MarshalJSON()
	require.NoError(t, err)
	assert.Equal(t, "null", string(b))
}
