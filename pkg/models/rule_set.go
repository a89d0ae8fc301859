package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// ComparisonRule pairs one primary attribute with one secondary attribute and
// the minimum character similarity (0-100) the pair must reach.
type ComparisonRule struct {
	PrimaryAttribute   string  `json:"primary_attribute" validate:"required"`
	SecondaryAttribute string  `json:"secondary_attribute" validate:"required"`
	Threshold          float64 `json:"threshold" validate:"gte=0,lte=100"`
}

// RuleList is an ordered, non-empty set of comparison rules with AND
// semantics: every rule must pass for a record pair to be eligible.
type RuleList []ComparisonRule

func (l *RuleList) Scan(src any) error {
	if src == nil {
		*l = nil
		return nil
	}
	b, ok := src.([]byte)
	if !ok {
		return fmt.Errorf("RuleList.Scan: expected []byte, got %T", src)
	}
	return json.Unmarshal(b, l)
}

func (l RuleList) Value() (driver.Value, error) {
	return json.Marshal(l)
}

// RuleSet is a named, persisted rule list
type RuleSet struct {
	ID          string     `json:"id" db:"id"`
	TenantID    string     `json:"tenant_id" db:"tenant_id"`
	Name        string     `json:"name" db:"name"`
	Description *string    `json:"description,omitempty" db:"description"`
	Rules       RuleList   `json:"rules" db:"rules"`
	IsActive    bool       `json:"is_active" db:"is_active"`
	CreatedAt   time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at" db:"updated_at"`
	DeletedAt   *time.Time `json:"deleted_at,omitempty" db:"deleted_at"`
}

// CreateRuleSetRequest is the request to create a rule set
type CreateRuleSetRequest struct {
	Name        string           `json:"name" validate:"required"`
	Description *string          `json:"description,omitempty"`
	Rules       []ComparisonRule `json:"rules" validate:"required,min=1,dive"`
	IsActive    bool             `json:"is_active"`
}

// UpdateRuleSetRequest is the request to update a rule set
type UpdateRuleSetRequest struct {
	Name        *string          `json:"name,omitempty"`
	Description *string          `json:"description,omitempty"`
	Rules       []ComparisonRule `json:"rules,omitempty" validate:"omitempty,min=1,dive"`
	IsActive    *bool            `json:"is_active,omitempty"`
}
