// Package tabular reads and writes the CSV sheets datasets are built from
package tabular

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/Ramsey-B/clover/pkg/models"
)

// Sheet is one parsed CSV file: a header row plus typed record rows
type Sheet struct {
	Headers []string
	Rows    []models.Attributes
}

// Read parses a CSV stream. The first row is the header; every later row
// becomes an attribute map keyed by header. Cells that parse as numbers
// become float64, empty cells become null, everything else stays a string.
func Read(r io.Reader) (*Sheet, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	headers, err := reader.Read()
	if err == io.EOF {
		return nil, errors.New("csv is empty")
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to read csv header")
	}

	for i := range headers {
		headers[i] = strings.TrimSpace(headers[i])
	}

	var rows []models.Attributes
	for {
		cells, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.Wrapf(err, "failed to read csv row %d", len(rows)+2)
		}
		if len(cells) != len(headers) {
			return nil, fmt.Errorf("csv row %d has %d cells, expected %d", len(rows)+2, len(cells), len(headers))
		}

		row := make(models.Attributes, len(headers))
		for i, header := range headers {
			row[header] = typedCell(cells[i])
		}
		rows = append(rows, row)
	}

	return &Sheet{Headers: headers, Rows: rows}, nil
}

func typedCell(cell string) any {
	cell = strings.TrimSpace(cell)
	if cell == "" {
		return nil
	}
	if v, err := strconv.ParseFloat(cell, 64); err == nil {
		return v
	}
	return cell
}
