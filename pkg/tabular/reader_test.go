package tabular

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRead(t *testing.T) {
	t.Run("typed rows", func(t *testing.T) {
		input := "Name,Units,Account Number\nJohn Smith,10,A1\nJane Doe,2.5,\n"

		sheet, err := Read(strings.NewReader(input))
		require.NoError(t, err)

		assert.Equal(t, []string{"Name", "Units", "Account Number"}, sheet.Headers)
		require.Len(t, sheet.Rows, 2)

		assert.Equal(t, "John Smith", sheet.Rows[0]["Name"])
		assert.Equal(t, 10.0, sheet.Rows[0]["Units"])
		assert.Equal(t, "A1", sheet.Rows[0]["Account Number"])

		assert.Equal(t, 2.5, sheet.Rows[1]["Units"])
		assert.Nil(t, sheet.Rows[1]["Account Number"])
	})

	t.Run("header only", func(t *testing.T) {
		sheet, err := Read(strings.NewReader("Name,Units\n"))
		require.NoError(t, err)
		assert.Equal(t, []string{"Name", "Units"}, sheet.Headers)
		assert.Empty(t, sheet.Rows)
	})

	t.Run("empty input", func(t *testing.T) {
		_, err := Read(strings.NewReader(""))
		assert.Error(t, err)
	})

	t.Run("ragged row", func(t *testing.T) {
		_, err := Read(strings.NewReader("a,b\n1,2,3\n"))
		assert.Error(t, err)
	})

	t.Run("quoted cells with commas", func(t *testing.T) {
		sheet, err := Read(strings.NewReader("Name\n\"Smith, John\"\n"))
		require.NoError(t, err)
		assert.Equal(t, "Smith, John", sheet.Rows[0]["Name"])
	})
}

func TestSuggestColumns(t *testing.T) {
	t.Run("typical sheet", func(t *testing.T) {
		s := SuggestColumns([]string{"Account Number", "Holder Name", "CHN Units"})

		require.NotNil(t, s.Name)
		assert.Equal(t, "Holder Name", *s.Name)
		require.NotNil(t, s.Units)
		assert.Equal(t, "CHN Units", *s.Units)
		require.NotNil(t, s.Account)
		assert.Equal(t, "Account Number", *s.Account)
	})

	t.Run("rin column counts as units", func(t *testing.T) {
		s := SuggestColumns([]string{"Name", "RIN Balance"})
		require.NotNil(t, s.Units)
		assert.Equal(t, "RIN Balance", *s.Units)
	})

	t.Run("no hits", func(t *testing.T) {
		s := SuggestColumns([]string{"foo", "bar"})
		assert.Nil(t, s.Name)
		assert.Nil(t, s.Units)
		assert.Nil(t, s.Account)
	})

	t.Run("first hit wins", func(t *testing.T) {
		s := SuggestColumns([]string{"First Name", "Last Name"})
		require.NotNil(t, s.Name)
		assert.Equal(t, "First Name", *s.Name)
	})
}
