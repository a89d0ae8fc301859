package reconcile

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ramsey-B/clover/pkg/matching"
	"github.com/Ramsey-B/clover/pkg/models"
)

func TestBuildResults(t *testing.T) {
	run := &models.ReconciliationRun{ID: "run-1", TenantID: "tenant-1"}

	primary := models.Record{ID: "p-1", Attributes: models.Attributes{"name": "Acme Corp"}}
	secondary := models.Record{ID: "s-1", Attributes: models.Attributes{"name": "ACME Corporation"}}
	orphanPrimary := models.Record{ID: "p-2", Attributes: models.Attributes{"name": "Globex"}}
	orphanSecondary := models.Record{ID: "s-2", Attributes: models.Attributes{"name": "Initech"}}

	matches := []matching.Match{
		{Tier: models.TierUltraStrict, Status: models.StatusVerified, Score: 95, Primary: &primary, Secondary: &secondary},
		{Tier: models.TierPossible, Status: models.StatusManualReview, Score: 0, Secondary: &orphanSecondary},
		{Tier: models.TierNoMatch, Status: models.StatusNoMatchFound, Score: 0, Primary: &orphanPrimary},
	}

	results := buildResults(run, matches)
	require.Len(t, results, 3)

	for i, res := range results {
		assert.Equal(t, i, res.Position)
		assert.Equal(t, "run-1", res.RunID)
		assert.Equal(t, "tenant-1", res.TenantID)
		assert.NotEmpty(t, res.ID)
		assert.False(t, res.CreatedAt.IsZero())
	}

	matched := results[0]
	require.NotNil(t, matched.PrimaryRecordID)
	require.NotNil(t, matched.SecondaryRecordID)
	assert.Equal(t, "p-1", *matched.PrimaryRecordID)
	assert.Equal(t, "s-1", *matched.SecondaryRecordID)
	assert.Equal(t, models.Attributes{"name": "Acme Corp"}, matched.PrimaryAttributes)
	assert.Equal(t, models.Attributes{"name": "ACME Corporation"}, matched.SecondaryAttributes)
	assert.Equal(t, models.TierUltraStrict, matched.Tier)
	assert.InDelta(t, 95, matched.Score, 0.001)

	possible := results[1]
	assert.Nil(t, possible.PrimaryRecordID)
	assert.Nil(t, possible.PrimaryAttributes)
	require.NotNil(t, possible.SecondaryRecordID)
	assert.Equal(t, "s-2", *possible.SecondaryRecordID)

	noMatch := results[2]
	require.NotNil(t, noMatch.PrimaryRecordID)
	assert.Equal(t, "p-2", *noMatch.PrimaryRecordID)
	assert.Nil(t, noMatch.SecondaryRecordID)
	assert.Nil(t, noMatch.SecondaryAttributes)
}

func TestBuildResults_Empty(t *testing.T) {
	run := &models.ReconciliationRun{ID: "run-1", TenantID: "tenant-1"}

	results := buildResults(run, nil)
	assert.Empty(t, results)
}
