package matching

import (
	"context"
	"testing"

	"github.com/Gobusters/ectologger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ramsey-B/clover/pkg/models"
)

func newTestEngine() *Engine {
	logger := ectologger.NewEctoLogger(func(_ ectologger.EctoLogMessage) {})
	return NewEngine(logger)
}

func nameRules(threshold float64) models.RuleList {
	return models.RuleList{
		{PrimaryAttribute: "name", SecondaryAttribute: "name", Threshold: threshold},
	}
}

func record(attributes models.Attributes) models.Record {
	return models.Record{Attributes: attributes}
}

func TestEngineRun_EmptyRuleSet(t *testing.T) {
	engine := newTestEngine()

	_, err := engine.Run(context.Background(), nil, nil, models.RuleList{}, DefaultParams())
	assert.ErrorIs(t, err, ErrEmptyRuleSet)
}

func TestEngineRun_EmptyCollections(t *testing.T) {
	engine := newTestEngine()

	t.Run("both empty", func(t *testing.T) {
		results, err := engine.Run(context.Background(), nil, nil, nameRules(60), DefaultParams())
		require.NoError(t, err)
		assert.Empty(t, results)
	})

	t.Run("only primary", func(t *testing.T) {
		primary := []models.Record{record(models.Attributes{"name": "John Smith"})}

		results, err := engine.Run(context.Background(), primary, nil, nameRules(60), DefaultParams())
		require.NoError(t, err)
		require.Len(t, results, 1)
		assert.Equal(t, models.TierNoMatch, results[0].Tier)
		assert.Equal(t, models.StatusNoMatchFound, results[0].Status)
		assert.Nil(t, results[0].Secondary)
	})

	t.Run("only secondary", func(t *testing.T) {
		secondary := []models.Record{record(models.Attributes{"name": "John Smith"})}

		results, err := engine.Run(context.Background(), nil, secondary, nameRules(60), DefaultParams())
		require.NoError(t, err)
		require.Len(t, results, 1)
		assert.Equal(t, models.TierPossible, results[0].Tier)
		assert.Equal(t, models.StatusManualReview, results[0].Status)
		assert.Nil(t, results[0].Primary)
	})
}

func TestEngineRun_UltraStrictVerified(t *testing.T) {
	engine := newTestEngine()

	primary := []models.Record{record(models.Attributes{"name": "John Smith", "units": 10.0})}
	secondary := []models.Record{record(models.Attributes{"name": "john smith jr", "account": "A1"})}

	results, err := engine.Run(context.Background(), primary, secondary, nameRules(85), DefaultParams())
	require.NoError(t, err)

	require.Len(t, results, 1)
	assert.Equal(t, models.TierUltraStrict, results[0].Tier)
	assert.Equal(t, models.StatusVerified, results[0].Status)
	assert.InDelta(t, 100.0, results[0].Score, 1e-9)
	require.NotNil(t, results[0].Primary)
	require.NotNil(t, results[0].Secondary)
	assert.Equal(t, "A1", results[0].Secondary.Attributes["account"])
}

func TestEngineRun_UltraStrictConfirmed(t *testing.T) {
	engine := newTestEngine()

	// john/jon = 6/7 and robert/robrt = 10/11, so the positional score is
	// ~88.3: above the 85 cutoff, below the 90 verified split
	primary := []models.Record{record(models.Attributes{"name": "john robert"})}
	secondary := []models.Record{record(models.Attributes{"name": "jon robrt"})}

	results, err := engine.Run(context.Background(), primary, secondary, nameRules(85), DefaultParams())
	require.NoError(t, err)

	require.Len(t, results, 1)
	assert.Equal(t, models.TierUltraStrict, results[0].Tier)
	assert.Equal(t, models.StatusConfirmed, results[0].Status)
	assert.InDelta(t, (6.0/7.0+10.0/11.0)/2.0*100.0, results[0].Score, 1e-9)
}

func TestEngineRun_StrictTier(t *testing.T) {
	engine := newTestEngine()

	// positionally 0 at floor 0.85 (smith/smyth is 0.8), but the whole-string
	// character similarity is 16/19 ~ 84.2: inside the [60,85) strict band
	primary := []models.Record{record(models.Attributes{"name": "John Smith"})}
	secondary := []models.Record{record(models.Attributes{"name": "Jon Smyth"})}

	results, err := engine.Run(context.Background(), primary, secondary, nameRules(60), DefaultParams())
	require.NoError(t, err)

	require.Len(t, results, 1)
	assert.Equal(t, models.TierStrict, results[0].Tier)
	assert.Equal(t, models.StatusReviewRecommended, results[0].Status)
	assert.InDelta(t, 16.0/19.0*100.0, results[0].Score, 1e-9)
}

func TestEngineRun_StrictCeilingExcludes(t *testing.T) {
	engine := newTestEngine()

	// With the ultra cutoff raised to 90 the ~88.3 positional score fails
	// pass 1, and the 90.0 character score sits on the strict ceiling, so the
	// pair falls all the way through
	params := DefaultParams()
	params.UltraCutoff = 90

	primary := []models.Record{record(models.Attributes{"name": "john robert"})}
	secondary := []models.Record{record(models.Attributes{"name": "jon robrt"})}

	results, err := engine.Run(context.Background(), primary, secondary, nameRules(60), params)
	require.NoError(t, err)

	require.Len(t, results, 2)
	assert.Equal(t, models.TierNoMatch, results[0].Tier)
	assert.Equal(t, models.TierPossible, results[1].Tier)
}

func TestEngineRun_StrictPrefersInBandCandidate(t *testing.T) {
	engine := newTestEngine()

	// "acme" scores 100 against itself, above the strict ceiling; "acne"
	// scores 75, inside the band. The out-of-band candidate must not block
	// the in-band one.
	primary := []models.Record{
		record(models.Attributes{"name": "acme"}),
		record(models.Attributes{"name": "acne"}),
	}
	secondary := []models.Record{record(models.Attributes{"name": "acme"})}

	results, err := engine.Run(context.Background(), primary, secondary, nameRules(60), DefaultParams())
	require.NoError(t, err)

	require.Len(t, results, 2)
	assert.Equal(t, models.TierStrict, results[0].Tier)
	assert.Equal(t, models.StatusReviewRecommended, results[0].Status)
	assert.InDelta(t, 75, results[0].Score, 0.001)
	require.NotNil(t, results[0].Primary)
	assert.Equal(t, "acne", results[0].Primary.Attributes["name"])

	assert.Equal(t, models.TierNoMatch, results[1].Tier)
	require.NotNil(t, results[1].Primary)
	assert.Equal(t, "acme", results[1].Primary.Attributes["name"])
}

func TestEngineRun_UltraCutoffInclusive(t *testing.T) {
	engine := newTestEngine()

	// Both word pairs score exactly 0.875, so the aggregate lands exactly on
	// the cutoff; the boundary is inclusive and stays below Verified
	params := DefaultParams()
	params.UltraCutoff = 87.5

	primary := []models.Record{record(models.Attributes{"name": "abcdefgh qrstuvwx"})}
	secondary := []models.Record{record(models.Attributes{"name": "abcdefgz qrstuvwz"})}

	results, err := engine.Run(context.Background(), primary, secondary, nameRules(60), params)
	require.NoError(t, err)

	require.Len(t, results, 1)
	assert.Equal(t, models.TierUltraStrict, results[0].Tier)
	assert.Equal(t, models.StatusConfirmed, results[0].Status)
	assert.InDelta(t, 87.5, results[0].Score, 0.001)
}

func TestEngineRun_RaisingWordFloorDemotes(t *testing.T) {
	engine := newTestEngine()

	primary := []models.Record{record(models.Attributes{"name": "john robert"})}
	secondary := []models.Record{record(models.Attributes{"name": "jon robrt"})}

	defaults, err := engine.Run(context.Background(), primary, secondary, nameRules(60), DefaultParams())
	require.NoError(t, err)
	require.Len(t, defaults, 1)
	assert.Equal(t, models.TierUltraStrict, defaults[0].Tier)

	raised := DefaultParams()
	raised.WordFloor = 0.95

	results, err := engine.Run(context.Background(), primary, secondary, nameRules(60), raised)
	require.NoError(t, err)
	for _, r := range results {
		assert.NotEqual(t, models.TierUltraStrict, r.Tier)
	}
}

func TestEngineRun_NoOverlap(t *testing.T) {
	engine := newTestEngine()

	primary := []models.Record{record(models.Attributes{"name": "Alpha Beta"})}
	secondary := []models.Record{record(models.Attributes{"name": "Zzz Yyy"})}

	results, err := engine.Run(context.Background(), primary, secondary, nameRules(85), DefaultParams())
	require.NoError(t, err)

	require.Len(t, results, 2)

	// equal scores sort by tier display name: "No Match" before "Possible Match"
	assert.Equal(t, models.TierNoMatch, results[0].Tier)
	assert.Equal(t, 0.0, results[0].Score)
	require.NotNil(t, results[0].Primary)
	assert.Nil(t, results[0].Secondary)

	assert.Equal(t, models.TierPossible, results[1].Tier)
	assert.Equal(t, 0.0, results[1].Score)
	assert.Nil(t, results[1].Primary)
	require.NotNil(t, results[1].Secondary)
}

func TestEngineRun_TotalityAndExclusivity(t *testing.T) {
	engine := newTestEngine()

	primary := []models.Record{
		record(models.Attributes{"name": "John Smith", "units": 10.0}),
		record(models.Attributes{"name": "Jane Doe"}),
		record(models.Attributes{"name": "Robert Brown"}),
	}
	secondary := []models.Record{
		record(models.Attributes{"name": "John Smith", "account": "A1"}),
		record(models.Attributes{"name": "Jane Doe Jr"}),
		record(models.Attributes{"name": "Zzz Yyy"}),
	}

	results, err := engine.Run(context.Background(), primary, secondary, nameRules(60), DefaultParams())
	require.NoError(t, err)
	require.Len(t, results, 4)

	// every input record appears exactly once across all results
	seenPrimary := make(map[*models.Record]int)
	seenSecondary := make(map[*models.Record]int)
	for i := range results {
		if results[i].Primary != nil {
			seenPrimary[results[i].Primary]++
		}
		if results[i].Secondary != nil {
			seenSecondary[results[i].Secondary]++
		}
	}
	assert.Len(t, seenPrimary, len(primary))
	assert.Len(t, seenSecondary, len(secondary))
	for _, count := range seenPrimary {
		assert.Equal(t, 1, count)
	}
	for _, count := range seenSecondary {
		assert.Equal(t, 1, count)
	}

	// two ultra-strict pairs first, then the leftovers
	assert.Equal(t, models.TierUltraStrict, results[0].Tier)
	assert.Equal(t, models.TierUltraStrict, results[1].Tier)
	assert.Equal(t, models.TierNoMatch, results[2].Tier)
	assert.Equal(t, models.TierPossible, results[3].Tier)
}

func TestEngineRun_GreedyConsumption(t *testing.T) {
	engine := newTestEngine()

	t.Run("first secondary record wins the contested primary", func(t *testing.T) {
		primary := []models.Record{record(models.Attributes{"name": "john smith"})}
		secondary := []models.Record{
			record(models.Attributes{"name": "john smith", "account": "first"}),
			record(models.Attributes{"name": "john smith", "account": "second"}),
		}

		results, err := engine.Run(context.Background(), primary, secondary, nameRules(60), DefaultParams())
		require.NoError(t, err)
		require.Len(t, results, 2)

		assert.Equal(t, models.TierUltraStrict, results[0].Tier)
		assert.Equal(t, "first", results[0].Secondary.Attributes["account"])

		assert.Equal(t, models.TierPossible, results[1].Tier)
		assert.Equal(t, "second", results[1].Secondary.Attributes["account"])
	})

	t.Run("score ties keep the first primary candidate", func(t *testing.T) {
		primary := []models.Record{
			record(models.Attributes{"name": "john smith", "units": 1.0}),
			record(models.Attributes{"name": "john smith", "units": 2.0}),
		}
		secondary := []models.Record{record(models.Attributes{"name": "john smith"})}

		results, err := engine.Run(context.Background(), primary, secondary, nameRules(60), DefaultParams())
		require.NoError(t, err)
		require.Len(t, results, 2)

		assert.Equal(t, models.TierUltraStrict, results[0].Tier)
		assert.Equal(t, 1.0, results[0].Primary.Attributes["units"])
	})
}
