package tabular

import (
	"encoding/csv"
	"io"
	"strconv"

	"github.com/pkg/errors"

	"github.com/Ramsey-B/clover/pkg/attrs"
	"github.com/Ramsey-B/clover/pkg/models"
)

// ExportColumns name the attributes the result export pulls from each side.
// Empty names leave the corresponding cells blank.
type ExportColumns struct {
	PrimaryName    string
	SecondaryName  string
	PrimaryUnits   string
	SecondaryUnits string
	Account        string
}

var exportHeader = []string{
	"Type",
	"Match_Score",
	"Account_Number",
	"Name_Sheet1",
	"Name_Sheet2",
	"Units_Sheet1",
	"Units_Sheet2",
	"Match_Status",
}

// WriteResults renders a run's results as CSV in classification order
func WriteResults(w io.Writer, results []models.MatchResult, columns ExportColumns) error {
	writer := csv.NewWriter(w)

	if err := writer.Write(exportHeader); err != nil {
		return errors.Wrap(err, "failed to write export header")
	}

	for i := range results {
		res := &results[i]
		row := []string{
			res.Tier.Display(),
			strconv.FormatFloat(res.Score, 'f', -1, 64),
			attribute(res.SecondaryAttributes, columns.Account),
			attribute(res.PrimaryAttributes, columns.PrimaryName),
			attribute(res.SecondaryAttributes, columns.SecondaryName),
			attribute(res.PrimaryAttributes, columns.PrimaryUnits),
			attribute(res.SecondaryAttributes, columns.SecondaryUnits),
			res.Status.Display(),
		}
		if err := writer.Write(row); err != nil {
			return errors.Wrapf(err, "failed to write export row %d", i+1)
		}
	}

	writer.Flush()
	return errors.Wrap(writer.Error(), "failed to flush export")
}

func attribute(attributes models.Attributes, name string) string {
	if name == "" {
		return ""
	}
	value, ok := attrs.String(attributes, name)
	if !ok {
		return ""
	}
	return value
}
