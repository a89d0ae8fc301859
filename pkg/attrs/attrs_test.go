package attrs

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Ramsey-B/clover/pkg/models"
)

func TestValue(t *testing.T) {
	record := models.Attributes{
		"name":  "John Smith",
		"units": 100.0,
		"note":  nil,
	}

	t.Run("present", func(t *testing.T) {
		v, ok := Value(record, "name")
		assert.True(t, ok)
		assert.Equal(t, "John Smith", v)
	})

	t.Run("missing key", func(t *testing.T) {
		_, ok := Value(record, "account")
		assert.False(t, ok)
	})

	t.Run("explicit null", func(t *testing.T) {
		_, ok := Value(record, "note")
		assert.False(t, ok)
	})

	t.Run("nil map", func(t *testing.T) {
		_, ok := Value(nil, "name")
		assert.False(t, ok)
	})
}

func TestStringify(t *testing.T) {
	tests := []struct {
		name     string
		input    any
		expected string
	}{
		{name: "string", input: "abc", expected: "abc"},
		{name: "integral float", input: 10.0, expected: "10"},
		{name: "fractional float", input: 10.25, expected: "10.25"},
		{name: "int", input: 42, expected: "42"},
		{name: "bool", input: true, expected: "true"},
		{name: "nil", input: nil, expected: ""},
		{name: "slice falls back to json", input: []any{"a", "b"}, expected: `["a","b"]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Stringify(tt.input))
		})
	}
}

func TestString(t *testing.T) {
	record := models.Attributes{"units": 250.0}

	s, ok := String(record, "units")
	assert.True(t, ok)
	assert.Equal(t, "250", s)

	_, ok = String(record, "missing")
	assert.False(t, ok)
}
