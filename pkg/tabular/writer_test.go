package tabular

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ramsey-B/clover/pkg/models"
)

func TestWriteResults(t *testing.T) {
	results := []models.MatchResult{
		{
			Tier:              models.TierUltraStrict,
			Status:            models.StatusVerified,
			Score:             100,
			PrimaryAttributes: models.Attributes{"Name": "John Smith", "Units": 10.0},
			SecondaryAttributes: models.Attributes{
				"Name": "john smith", "Units": 10.0, "Account": "A1",
			},
		},
		{
			Tier:              models.TierNoMatch,
			Status:            models.StatusNoMatchFound,
			Score:             0,
			PrimaryAttributes: models.Attributes{"Name": "Jane Doe", "Units": 2.5},
		},
	}

	columns := ExportColumns{
		PrimaryName:    "Name",
		SecondaryName:  "Name",
		PrimaryUnits:   "Units",
		SecondaryUnits: "Units",
		Account:        "Account",
	}

	var buf bytes.Buffer
	require.NoError(t, WriteResults(&buf, results, columns))

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 3)

	assert.Equal(t, "Type,Match_Score,Account_Number,Name_Sheet1,Name_Sheet2,Units_Sheet1,Units_Sheet2,Match_Status", lines[0])
	assert.Equal(t, "Ultra-Strict Match,100,A1,John Smith,john smith,10,10,Verified", lines[1])
	assert.Equal(t, "No Match,0,,Jane Doe,,2.5,,No Match Found", lines[2])
}

func TestWriteResults_Empty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteResults(&buf, nil, ExportColumns{}))
	assert.Equal(t, "Type,Match_Score,Account_Number,Name_Sheet1,Name_Sheet2,Units_Sheet1,Units_Sheet2,Match_Status\n", buf.String())
}
