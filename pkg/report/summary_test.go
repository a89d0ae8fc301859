package report

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Ramsey-B/clover/pkg/matching"
	"github.com/Ramsey-B/clover/pkg/models"
)

func TestFromMatches(t *testing.T) {
	matches := []matching.Match{
		{Tier: models.TierUltraStrict, Status: models.StatusVerified},
		{Tier: models.TierUltraStrict, Status: models.StatusConfirmed},
		{Tier: models.TierStrict, Status: models.StatusReviewRecommended},
		{Tier: models.TierPossible, Status: models.StatusManualReview},
		{Tier: models.TierNoMatch, Status: models.StatusNoMatchFound},
		{Tier: models.TierNoMatch, Status: models.StatusNoMatchFound},
	}

	s := FromMatches(matches)

	assert.Equal(t, 6, s.Total)
	assert.Equal(t, 2, s.UltraStrict)
	assert.Equal(t, 1, s.Strict)
	assert.Equal(t, 1, s.Possible)
	assert.Equal(t, 2, s.NoMatch)
	assert.Equal(t, 1, s.Verified)
	assert.Equal(t, 1, s.Confirmed)
	assert.Equal(t, 1, s.ReviewRecommended)
	assert.Equal(t, 1, s.ManualReview)
	assert.Equal(t, 2, s.NoMatchFound)
}

func TestFromMatches_Empty(t *testing.T) {
	s := FromMatches(nil)
	assert.Equal(t, Summary{}, s)
}

func TestFromCounts(t *testing.T) {
	run := &models.ReconciliationRun{
		TotalResults:     4,
		UltraStrictCount: 1,
		StrictCount:      1,
		PossibleCount:    1,
		NoMatchCount:     1,
	}
	statuses := map[models.MatchStatus]int{
		models.StatusVerified:          1,
		models.StatusReviewRecommended: 1,
		models.StatusManualReview:      1,
		models.StatusNoMatchFound:      1,
	}

	s := FromCounts(run, statuses)

	assert.Equal(t, 4, s.Total)
	assert.Equal(t, 1, s.UltraStrict)
	assert.Equal(t, 1, s.Verified)
	assert.Equal(t, 0, s.Confirmed)
	assert.Equal(t, 1, s.NoMatchFound)
}
