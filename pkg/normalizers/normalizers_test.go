package normalizers

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestApplyChain(t *testing.T) {
	tests := []struct {
		name        string
		input       string
		normalizers []string
		expected    string
	}{
		{
			name:        "trim then lowercase",
			input:       "  John SMITH  ",
			normalizers: []string{"trim", "lowercase"},
			expected:    "john smith",
		},
		{
			name:        "collapse whitespace",
			input:       "john   smith\tjr",
			normalizers: []string{"collapse_whitespace"},
			expected:    "john smith jr",
		},
		{
			name:        "unknown normalizer is a no-op",
			input:       "Value",
			normalizers: []string{"nope"},
			expected:    "Value",
		},
		{
			name:        "digits only",
			input:       "AC-1234/99",
			normalizers: []string{"digits_only"},
			expected:    "123499",
		},
		{
			name:        "remove punctuation",
			input:       "o'brien, ltd.",
			normalizers: []string{"remove_punctuation"},
			expected:    "obrien ltd",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ApplyChain(tt.input, tt.normalizers...))
		})
	}
}

func TestCleanName(t *testing.T) {
	assert.Equal(t, "john smith", CleanName("  John Smith "))
	assert.Equal(t, "", CleanName("   "))
	assert.Equal(t, "maría lópez", CleanName("MARÍA LÓPEZ"))
}

func TestGet(t *testing.T) {
	fn, ok := Get("lowercase")
	assert.True(t, ok)
	assert.Equal(t, "abc", fn("ABC"))

	_, ok = Get("missing")
	assert.False(t, ok)
}
