package similarity

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRatio(t *testing.T) {
	scorer := NewScorer()

	tests := []struct {
		name     string
		a        string
		b        string
		expected float64
	}{
		{name: "identical", a: "john", b: "john", expected: 1.0},
		{name: "both empty", a: "", b: "", expected: 1.0},
		{name: "left empty", a: "", b: "john", expected: 0.0},
		{name: "right empty", a: "john", b: "", expected: 0.0},
		{name: "john vs jon", a: "john", b: "jon", expected: 6.0 / 7.0},
		{name: "smith vs smyth", a: "smith", b: "smyth", expected: 0.8},
		{name: "robert vs robrt", a: "robert", b: "robrt", expected: 10.0 / 11.0},
		{name: "disjoint", a: "abc", b: "xyz", expected: 0.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.expected, scorer.Ratio(tt.a, tt.b), 1e-9)
		})
	}
}

func TestRatioSymmetric(t *testing.T) {
	scorer := NewScorer()

	pairs := [][2]string{
		{"john", "jon"},
		{"smith", "smyth"},
		{"robert", "robrt"},
		{"acme holdings ltd", "acme holding limited"},
	}

	for _, p := range pairs {
		assert.InDelta(t, scorer.Ratio(p[0], p[1]), scorer.Ratio(p[1], p[0]), 1e-12)
	}
}

func TestPositionalWordScore(t *testing.T) {
	scorer := NewScorer()

	t.Run("identical two word names", func(t *testing.T) {
		score := scorer.PositionalWordScore("John Smith", "john smith", 0.85)
		assert.InDelta(t, 100.0, score, 1e-9)
	})

	t.Run("suffix on one side still matches", func(t *testing.T) {
		score := scorer.PositionalWordScore("john smith", "john smith jr", 0.85)
		assert.InDelta(t, 100.0, score, 1e-9)
	})

	t.Run("mean of first two strong matches", func(t *testing.T) {
		// john/jon = 6/7, robert/robrt = 10/11; both clear the floor
		score := scorer.PositionalWordScore("john robert allen", "jon robrt alan", 0.85)
		assert.InDelta(t, (6.0/7.0+10.0/11.0)/2.0*100.0, score, 1e-9)
	})

	t.Run("single strong match scores zero", func(t *testing.T) {
		// smith/smyth = 0.8 misses the floor, leaving only john/jon
		score := scorer.PositionalWordScore("john smith", "jon smyth", 0.85)
		assert.Equal(t, 0.0, score)
	})

	t.Run("single word name scores zero", func(t *testing.T) {
		assert.Equal(t, 0.0, scorer.PositionalWordScore("john", "john smith", 0.85))
		assert.Equal(t, 0.0, scorer.PositionalWordScore("john smith", "john", 0.85))
	})

	t.Run("empty names score zero", func(t *testing.T) {
		assert.Equal(t, 0.0, scorer.PositionalWordScore("", "", 0.85))
	})

	t.Run("words beyond the third are ignored", func(t *testing.T) {
		score := scorer.PositionalWordScore(
			"alpha beta gamma john smith",
			"delta epsilon zeta john smith",
			0.85,
		)
		assert.Equal(t, 0.0, score)
	})

	t.Run("offset alignment within one position", func(t *testing.T) {
		// mr shifts every word of the second name by one
		score := scorer.PositionalWordScore("john smith", "mr john smith", 0.85)
		assert.InDelta(t, 100.0, score, 1e-9)
	})

	t.Run("lower floor admits weaker pairs", func(t *testing.T) {
		score := scorer.PositionalWordScore("john smith", "jon smyth", 0.75)
		assert.InDelta(t, (6.0/7.0+0.8)/2.0*100.0, score, 1e-9)
	})
}

func TestTokens(t *testing.T) {
	assert.Equal(t, []string{"john", "smith"}, Tokens("  John   SMITH "))
	assert.Empty(t, Tokens("   "))
}
