package integration

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"strings"
	"testing"

	"github.com/Gobusters/ectologger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ramsey-B/clover/pkg/matching"
	"github.com/Ramsey-B/clover/pkg/models"
	"github.com/Ramsey-B/clover/pkg/report"
	"github.com/Ramsey-B/clover/pkg/tabular"
)

const primarySheet = `Account Name,Units,Account Number
Fidelity Growth Fund,1500,ACC-001
Vanguard Index Trust,2300,ACC-002
BlackRock Equity Fund,900,ACC-003
Lone Primary Holdings,50,ACC-004
`

const secondarySheet = `Holder Name,Shares,Account
Fidelity Growth Fund,1500,ACC-001
Vangard Index Trust,2300,ACC-002
Blck Rock Equity Fnd,900,ACC-003
Unmatched Counterparty,10,ACC-099
`

func loadRecords(t *testing.T, csvData string) []models.Record {
	t.Helper()

	sheet, err := tabular.Read(strings.NewReader(csvData))
	require.NoError(t, err)

	records := make([]models.Record, len(sheet.Rows))
	for i, row := range sheet.Rows {
		records[i] = models.Record{
			ID:         fmt.Sprintf("rec-%d", i),
			RowIndex:   i,
			Attributes: row,
		}
	}
	return records
}

// Walks a pair of sheets through the whole pipeline: CSV parse, engine run,
// summary, CSV export.
func TestReconcileFlow(t *testing.T) {
	logger := ectologger.NewEctoLogger(func(_ ectologger.EctoLogMessage) {})
	engine := matching.NewEngine(logger)

	primary := loadRecords(t, primarySheet)
	secondary := loadRecords(t, secondarySheet)

	rules := models.RuleList{
		{PrimaryAttribute: "Account Name", SecondaryAttribute: "Holder Name", Threshold: 60},
	}

	matches, err := engine.Run(context.Background(), primary, secondary, rules, matching.DefaultParams())
	require.NoError(t, err)

	// 3 matched pairs, 1 leftover on each side
	require.Len(t, matches, 5)

	summary := report.FromMatches(matches)
	assert.Equal(t, 5, summary.Total)
	assert.Equal(t, 1, summary.Possible)
	assert.Equal(t, 1, summary.NoMatch)
	assert.Equal(t, 3, summary.UltraStrict+summary.Strict)

	t.Run("exact pair scores highest", func(t *testing.T) {
		top := matches[0]
		require.NotNil(t, top.Primary)
		require.NotNil(t, top.Secondary)
		assert.Equal(t, "Fidelity Growth Fund", top.Primary.Attributes["Account Name"])
		assert.Equal(t, "Fidelity Growth Fund", top.Secondary.Attributes["Holder Name"])
		assert.Equal(t, models.TierUltraStrict, top.Tier)
		assert.InDelta(t, 100, top.Score, 0.001)
	})

	t.Run("leftovers classified last", func(t *testing.T) {
		var possible, noMatch *matching.Match
		for i := range matches {
			switch matches[i].Tier {
			case models.TierPossible:
				possible = &matches[i]
			case models.TierNoMatch:
				noMatch = &matches[i]
			}
		}

		require.NotNil(t, possible)
		assert.Nil(t, possible.Primary)
		assert.Equal(t, "Unmatched Counterparty", possible.Secondary.Attributes["Holder Name"])

		require.NotNil(t, noMatch)
		assert.Nil(t, noMatch.Secondary)
		assert.Equal(t, "Lone Primary Holdings", noMatch.Primary.Attributes["Account Name"])
	})

	t.Run("export reproduces classification order", func(t *testing.T) {
		results := make([]models.MatchResult, len(matches))
		for i := range matches {
			m := &matches[i]
			results[i] = models.MatchResult{Position: i, Tier: m.Tier, Status: m.Status, Score: m.Score}
			if m.Primary != nil {
				results[i].PrimaryAttributes = m.Primary.Attributes
			}
			if m.Secondary != nil {
				results[i].SecondaryAttributes = m.Secondary.Attributes
			}
		}

		var buf bytes.Buffer
		err := tabular.WriteResults(&buf, results, tabular.ExportColumns{
			PrimaryName:    "Account Name",
			SecondaryName:  "Holder Name",
			PrimaryUnits:   "Units",
			SecondaryUnits: "Shares",
			Account:        "Account",
		})
		require.NoError(t, err)

		rows, err := csv.NewReader(&buf).ReadAll()
		require.NoError(t, err)
		require.Len(t, rows, 6)

		assert.Equal(t, "Name_Sheet1", rows[0][3])
		assert.Equal(t, "Fidelity Growth Fund", rows[1][3])
		assert.Equal(t, "Fidelity Growth Fund", rows[1][4])
		assert.Equal(t, "ACC-001", rows[1][2])
	})
}

func TestReconcileFlow_NumericUnitsParsed(t *testing.T) {
	sheet, err := tabular.Read(strings.NewReader(primarySheet))
	require.NoError(t, err)

	require.Len(t, sheet.Rows, 4)
	assert.Equal(t, float64(1500), sheet.Rows[0]["Units"])
	assert.Equal(t, "ACC-001", sheet.Rows[0]["Account Number"])
}

func TestReconcileFlow_EmptyRules(t *testing.T) {
	logger := ectologger.NewEctoLogger(func(_ ectologger.EctoLogMessage) {})
	engine := matching.NewEngine(logger)

	primary := loadRecords(t, primarySheet)
	secondary := loadRecords(t, secondarySheet)

	_, err := engine.Run(context.Background(), primary, secondary, models.RuleList{}, matching.DefaultParams())
	assert.ErrorIs(t, err, matching.ErrEmptyRuleSet)
}
