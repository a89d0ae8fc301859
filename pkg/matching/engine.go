// Package matching implements the tiered record reconciliation engine
package matching

import (
	"context"
	"sort"

	"github.com/Gobusters/ectologger"
	"github.com/pkg/errors"

	"github.com/Ramsey-B/clover/pkg/models"
	"github.com/Ramsey-B/clover/pkg/tracing"
)

// ErrEmptyRuleSet is returned when a run is attempted with zero rules; no
// pair could ever pass, so the engine fails fast before any pass executes.
var ErrEmptyRuleSet = errors.New("rule set has no rules")

// Params are the tunable thresholds of one engine run
type Params struct {
	// WordFloor is the per-token similarity (0-1) a word pair must reach to
	// count as a strong match in the ultra-strict pass.
	WordFloor float64
	// UltraCutoff is the minimum aggregate score (0-100) for an ultra-strict
	// match; inclusive.
	UltraCutoff float64
	// VerifiedCutoff splits ultra-strict matches into Verified (>=) and
	// Confirmed (<).
	VerifiedCutoff float64
	// StrictFloor and StrictCeiling bound the strict tier's accepted score
	// band: floor inclusive, ceiling exclusive.
	StrictFloor   float64
	StrictCeiling float64
}

// DefaultParams returns the standard thresholds
func DefaultParams() Params {
	return Params{
		WordFloor:      0.85,
		UltraCutoff:    85,
		VerifiedCutoff: 90,
		StrictFloor:    60,
		StrictCeiling:  85,
	}
}

// FromModel lifts persisted run parameters into engine params
func FromModel(p models.MatchParams) Params {
	return Params{
		WordFloor:      p.WordFloor,
		UltraCutoff:    p.UltraCutoff,
		VerifiedCutoff: p.VerifiedCutoff,
		StrictFloor:    p.StrictFloor,
		StrictCeiling:  p.StrictCeiling,
	}
}

// Match is one classified result of a run. Possible matches carry no primary
// record; NoMatch results carry no secondary record; the other tiers carry
// both.
type Match struct {
	Tier      models.MatchTier
	Status    models.MatchStatus
	Score     float64
	Primary   *models.Record
	Secondary *models.Record
}

// Engine runs the four-pass tiered classification over two record
// collections. It is a pure computation: collections are read-only inputs,
// and concurrent runs share no state.
type Engine struct {
	logger ectologger.Logger
}

// NewEngine creates a new engine
func NewEngine(logger ectologger.Logger) *Engine {
	return &Engine{logger: logger}
}

// Run classifies every record of both collections into exactly one Match.
// Secondary records are processed in collection order; a record consumed by
// an earlier pass is excluded from all later passes.
func (e *Engine) Run(ctx context.Context, primary, secondary []models.Record, rules models.RuleList, params Params) ([]Match, error) {
	ctx, span := tracing.StartSpan(ctx, "matching.Engine.Run")
	defer span.End()

	if len(rules) == 0 {
		return nil, ErrEmptyRuleSet
	}

	log := e.logger.WithContext(ctx).WithFields(map[string]any{
		"primary_count":   len(primary),
		"secondary_count": len(secondary),
		"rule_count":      len(rules),
	})
	log.Debug("Starting reconciliation run")

	consumedPrimary := make([]bool, len(primary))
	consumedSecondary := make([]bool, len(secondary))

	results := make([]Match, 0, len(primary)+len(secondary))

	// Pass 1: ultra-strict, positional word similarity
	positional := NewPositionalComparator(rules, params.WordFloor)
	for si := range secondary {
		bestIdx, bestScore := e.bestCandidate(positional, primary, consumedPrimary, secondary[si].Attributes)
		if bestIdx < 0 || bestScore < params.UltraCutoff {
			continue
		}

		status := models.StatusConfirmed
		if bestScore >= params.VerifiedCutoff {
			status = models.StatusVerified
		}

		results = append(results, Match{
			Tier:      models.TierUltraStrict,
			Status:    status,
			Score:     bestScore,
			Primary:   &primary[bestIdx],
			Secondary: &secondary[si],
		})
		consumedPrimary[bestIdx] = true
		consumedSecondary[si] = true
	}

	// Pass 2: strict, character similarity within the score band
	char := NewCharComparator(rules)
	for si := range secondary {
		if consumedSecondary[si] {
			continue
		}

		bestIdx, bestScore := e.bestCandidateInBand(char, primary, consumedPrimary, secondary[si].Attributes, params.StrictFloor, params.StrictCeiling)
		if bestIdx < 0 {
			continue
		}

		results = append(results, Match{
			Tier:      models.TierStrict,
			Status:    models.StatusReviewRecommended,
			Score:     bestScore,
			Primary:   &primary[bestIdx],
			Secondary: &secondary[si],
		})
		consumedPrimary[bestIdx] = true
		consumedSecondary[si] = true
	}

	// Pass 3: leftover secondary records need manual review
	for si := range secondary {
		if consumedSecondary[si] {
			continue
		}
		results = append(results, Match{
			Tier:      models.TierPossible,
			Status:    models.StatusManualReview,
			Secondary: &secondary[si],
		})
	}

	// Pass 4: leftover primary records have no match
	for pi := range primary {
		if consumedPrimary[pi] {
			continue
		}
		results = append(results, Match{
			Tier:    models.TierNoMatch,
			Status:  models.StatusNoMatchFound,
			Primary: &primary[pi],
		})
	}

	sortResults(results)

	log.WithFields(map[string]any{"result_count": len(results)}).Debug("Reconciliation run complete")

	return results, nil
}

// bestCandidate scans the unconsumed primary records in collection order and
// returns the index and score of the best passing candidate, or -1 when none
// pass. Ties keep the first candidate seen.
func (e *Engine) bestCandidate(cmp *Comparator, primary []models.Record, consumed []bool, secondary models.Attributes) (int, float64) {
	bestIdx := -1
	bestScore := 0.0

	for pi := range primary {
		if consumed[pi] {
			continue
		}

		outcome := cmp.Compare(primary[pi].Attributes, secondary)
		if !outcome.AllPass {
			continue
		}

		if score := outcome.Score(); score > bestScore {
			bestIdx = pi
			bestScore = score
		}
	}

	return bestIdx, bestScore
}

// bestCandidateInBand scans like bestCandidate but only considers candidates
// whose score lies in [floor, ceiling). An out-of-band candidate is skipped,
// not disqualifying: a later in-band candidate can still win the pair.
func (e *Engine) bestCandidateInBand(cmp *Comparator, primary []models.Record, consumed []bool, secondary models.Attributes, floor, ceiling float64) (int, float64) {
	bestIdx := -1
	bestScore := 0.0

	for pi := range primary {
		if consumed[pi] {
			continue
		}

		outcome := cmp.Compare(primary[pi].Attributes, secondary)
		if !outcome.AllPass {
			continue
		}

		score := outcome.Score()
		if score < floor || score >= ceiling {
			continue
		}

		if score > bestScore {
			bestIdx = pi
			bestScore = score
		}
	}

	return bestIdx, bestScore
}

// sortResults orders by score descending, then tier display name ascending.
// Stable so same-score same-tier results keep pass emission order.
func sortResults(results []Match) {
	sort.SliceStable(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return results[i].Tier.Display() < results[j].Tier.Display()
	})
}
