package matching

import (
	"github.com/Ramsey-B/clover/pkg/attrs"
	"github.com/Ramsey-B/clover/pkg/models"
	"github.com/Ramsey-B/clover/pkg/similarity"
)

// Outcome is the result of evaluating a rule list against one record pair.
// Scores holds one similarity in [0,1] per rule evaluated; when AllPass is
// false evaluation stopped at the failing rule and later rules are unscored.
type Outcome struct {
	AllPass bool
	Scores  []float64
}

// Score is the aggregate match score: the mean of the per-rule similarities
// scaled to 0-100
func (o Outcome) Score() float64 {
	if len(o.Scores) == 0 {
		return 0.0
	}

	sum := 0.0
	for _, s := range o.Scores {
		sum += s
	}
	return sum / float64(len(o.Scores)) * 100.0
}

// Comparator evaluates an ordered rule list against primary/secondary record
// pairs. Rules have AND semantics; a missing or null attribute on either side
// fails the pair.
type Comparator struct {
	scorer     *similarity.Scorer
	rules      models.RuleList
	positional bool
	wordFloor  float64
}

// NewCharComparator builds a character-similarity comparator. Each rule's
// threshold gates the pair: a similarity below it fails the evaluation and
// short-circuits the remaining rules.
func NewCharComparator(rules models.RuleList) *Comparator {
	return &Comparator{
		scorer: similarity.NewScorer(),
		rules:  rules,
	}
}

// NewPositionalComparator builds a word-positional comparator for the
// ultra-strict pass. Rule thresholds do not gate here; the word floor is the
// per-token similarity a word pair must reach inside the positional score,
// and acceptance is decided by the engine on the aggregate.
func NewPositionalComparator(rules models.RuleList, wordFloor float64) *Comparator {
	return &Comparator{
		scorer:     similarity.NewScorer(),
		rules:      rules,
		positional: true,
		wordFloor:  wordFloor,
	}
}

// Compare evaluates every rule in order against the pair
func (c *Comparator) Compare(primary, secondary models.Attributes) Outcome {
	scores := make([]float64, 0, len(c.rules))

	for _, rule := range c.rules {
		primaryValue, ok := attrs.String(primary, rule.PrimaryAttribute)
		if !ok {
			return Outcome{Scores: scores}
		}
		secondaryValue, ok := attrs.String(secondary, rule.SecondaryAttribute)
		if !ok {
			return Outcome{Scores: scores}
		}

		if c.positional {
			score := c.scorer.PositionalWordScore(primaryValue, secondaryValue, c.wordFloor)
			scores = append(scores, score/100.0)
			continue
		}

		sim := c.scorer.Ratio(primaryValue, secondaryValue)
		if sim*100.0 < rule.Threshold {
			return Outcome{Scores: scores}
		}
		scores = append(scores, sim)
	}

	return Outcome{AllPass: true, Scores: scores}
}
