package models

import "time"

// MatchTier classifies a result by the pass that produced it
type MatchTier string

const (
	TierUltraStrict MatchTier = "ultra_strict" // pass 1: positional word match
	TierStrict      MatchTier = "strict"       // pass 2: character similarity
	TierPossible    MatchTier = "possible"     // pass 3: unmatched secondary record
	TierNoMatch     MatchTier = "no_match"     // pass 4: unmatched primary record
)

// Display returns the tier label used in exports and result ordering
func (t MatchTier) Display() string {
	switch t {
	case TierUltraStrict:
		return "Ultra-Strict Match"
	case TierStrict:
		return "Strict Match"
	case TierPossible:
		return "Possible Match"
	case TierNoMatch:
		return "No Match"
	default:
		return string(t)
	}
}

// MatchStatus is the review disposition assigned with each tier
type MatchStatus string

const (
	StatusVerified          MatchStatus = "verified"
	StatusConfirmed         MatchStatus = "confirmed"
	StatusReviewRecommended MatchStatus = "review_recommended"
	StatusManualReview      MatchStatus = "manual_review_needed"
	StatusNoMatchFound      MatchStatus = "no_match_found"
)

// Display returns the status label used in exports
func (s MatchStatus) Display() string {
	switch s {
	case StatusVerified:
		return "Verified"
	case StatusConfirmed:
		return "Confirmed"
	case StatusReviewRecommended:
		return "Review Recommended"
	case StatusManualReview:
		return "Manual Review Needed"
	case StatusNoMatchFound:
		return "No Match Found"
	default:
		return string(s)
	}
}

// MatchResult is one persisted row of a run's classification. Exactly one of
// the primary/secondary sides may be absent: Possible results carry no
// primary record, NoMatch results carry no secondary record.
type MatchResult struct {
	ID                  string      `json:"id" db:"id"`
	RunID               string      `json:"run_id" db:"run_id"`
	TenantID            string      `json:"tenant_id" db:"tenant_id"`
	Position            int         `json:"position" db:"position"`
	Tier                MatchTier   `json:"tier" db:"tier"`
	Status              MatchStatus `json:"status" db:"status"`
	Score               float64     `json:"score" db:"score"`
	PrimaryRecordID     *string     `json:"primary_record_id,omitempty" db:"primary_record_id"`
	SecondaryRecordID   *string     `json:"secondary_record_id,omitempty" db:"secondary_record_id"`
	PrimaryAttributes   Attributes  `json:"primary_attributes,omitempty" db:"primary_attributes"`
	SecondaryAttributes Attributes  `json:"secondary_attributes,omitempty" db:"secondary_attributes"`
	CreatedAt           time.Time   `json:"created_at" db:"created_at"`
}
