// Package report assembles summary counts for reconciliation runs
package report

import (
	"github.com/Ramsey-B/clover/pkg/matching"
	"github.com/Ramsey-B/clover/pkg/models"
)

// Summary breaks a run's results down by tier and review status
type Summary struct {
	Total             int `json:"total"`
	UltraStrict       int `json:"ultra_strict"`
	Strict            int `json:"strict"`
	Possible          int `json:"possible"`
	NoMatch           int `json:"no_match"`
	Verified          int `json:"verified"`
	Confirmed         int `json:"confirmed"`
	ReviewRecommended int `json:"review_recommended"`
	ManualReview      int `json:"manual_review"`
	NoMatchFound      int `json:"no_match_found"`
}

// FromMatches tallies a freshly computed result set
func FromMatches(matches []matching.Match) Summary {
	var s Summary
	for i := range matches {
		s.addTier(matches[i].Tier)
		s.addStatus(matches[i].Status)
	}
	return s
}

// FromCounts builds a summary from a completed run's stored counts plus the
// per-status totals.
func FromCounts(run *models.ReconciliationRun, statuses map[models.MatchStatus]int) Summary {
	return Summary{
		Total:             run.TotalResults,
		UltraStrict:       run.UltraStrictCount,
		Strict:            run.StrictCount,
		Possible:          run.PossibleCount,
		NoMatch:           run.NoMatchCount,
		Verified:          statuses[models.StatusVerified],
		Confirmed:         statuses[models.StatusConfirmed],
		ReviewRecommended: statuses[models.StatusReviewRecommended],
		ManualReview:      statuses[models.StatusManualReview],
		NoMatchFound:      statuses[models.StatusNoMatchFound],
	}
}

func (s *Summary) addTier(tier models.MatchTier) {
	s.Total++
	switch tier {
	case models.TierUltraStrict:
		s.UltraStrict++
	case models.TierStrict:
		s.Strict++
	case models.TierPossible:
		s.Possible++
	case models.TierNoMatch:
		s.NoMatch++
	}
}

func (s *Summary) addStatus(status models.MatchStatus) {
	switch status {
	case models.StatusVerified:
		s.Verified++
	case models.StatusConfirmed:
		s.Confirmed++
	case models.StatusReviewRecommended:
		s.ReviewRecommended++
	case models.StatusManualReview:
		s.ManualReview++
	case models.StatusNoMatchFound:
		s.NoMatchFound++
	}
}
