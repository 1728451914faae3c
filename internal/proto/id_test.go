package proto

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIDRoundtripsFull128Bits(t *testing.T) {
	id := NewID(^uint64(0), 1234567890123)
	raw, err := json.Marshal(id)
	require.NoError(t, err)

	var got ID
	require.NoError(t, json.Unmarshal(raw, &got))
	assert.Equal(t, id, got)
}

func TestIDUnmarshalsBareNumber(t *testing.T) {
	var got ID
	require.NoError(t, json.Unmarshal([]byte("42"), &got))
	assert.Equal(t, NewID(0, 42), got)
}

func TestIDRejectsOverflow(t *testing.T) {
	var got ID
	huge := "999999999999999999999999999999999999999999"
	err := json.Unmarshal([]byte(`"`+huge+`"`), &got)
	assert.Error(t, err)
}

func TestIDRejectsNegative(t *testing.T) {
	var got ID
	err := json.Unmarshal([]byte(`"-1"`), &got)
	assert.Error(t, err)
}
