package tabular

import "strings"

// Suggestions are the columns a sheet most likely uses for matching
type Suggestions struct {
	Name    *string `json:"name,omitempty"`
	Units   *string `json:"units,omitempty"`
	Account *string `json:"account,omitempty"`
}

// SuggestColumns guesses the name, units, and account-number columns from the
// headers. First case-insensitive substring hit wins, header order decides.
func SuggestColumns(headers []string) Suggestions {
	var s Suggestions
	s.Name = firstContaining(headers, "name")
	s.Units = firstContaining(headers, "unit", "chn", "rin")
	s.Account = firstContaining(headers, "account", "acct")
	return s
}

func firstContaining(headers []string, needles ...string) *string {
	for i := range headers {
		lower := strings.ToLower(headers[i])
		for _, needle := range needles {
			if strings.Contains(lower, needle) {
				return &headers[i]
			}
		}
	}
	return nil
}
