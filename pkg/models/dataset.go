package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// DatasetRole hints at which side of a reconciliation a dataset plays.
// It is advisory only; a run names its primary and secondary explicitly.
type DatasetRole string

const (
	DatasetRolePrimary   DatasetRole = "primary"
	DatasetRoleSecondary DatasetRole = "secondary"
)

// Dataset is one uploaded sheet of tabular records
type Dataset struct {
	ID             string      `json:"id" db:"id"`
	TenantID       string      `json:"tenant_id" db:"tenant_id"`
	Name           string      `json:"name" db:"name"`
	Role           *string     `json:"role,omitempty" db:"role"`
	Columns        StringList  `json:"columns" db:"columns"`
	SourceFilename *string     `json:"source_filename,omitempty" db:"source_filename"`
	RecordCount    int         `json:"record_count" db:"record_count"`
	CreatedAt      time.Time   `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time   `json:"updated_at" db:"updated_at"`
	DeletedAt      *time.Time  `json:"deleted_at,omitempty" db:"deleted_at"`
}

// Record is a single row of a dataset. Attributes hold the row's values keyed
// by column name; values are strings, numbers, booleans, or null. Records in
// the two datasets of a run need not share a schema.
type Record struct {
	ID         string     `json:"id" db:"id"`
	DatasetID  string     `json:"dataset_id" db:"dataset_id"`
	TenantID   string     `json:"tenant_id" db:"tenant_id"`
	RowIndex   int        `json:"row_index" db:"row_index"`
	Attributes Attributes `json:"attributes" db:"attributes"`
	CreatedAt  time.Time  `json:"created_at" db:"created_at"`
}

// Attributes is a JSONB column holding a record's values by attribute name.
type Attributes map[string]any

func (a *Attributes) Scan(src any) error {
	if src == nil {
		*a = nil
		return nil
	}
	b, ok := src.([]byte)
	if !ok {
		return fmt.Errorf("Attributes.Scan: expected []byte, got %T", src)
	}
	return json.Unmarshal(b, a)
}

func (a Attributes) Value() (driver.Value, error) {
	if a == nil {
		return nil, nil
	}
	return json.Marshal(a)
}

// StringList is a JSONB column holding an ordered list of strings.
type StringList []string

func (l *StringList) Scan(src any) error {
	if src == nil {
		*l = nil
		return nil
	}
	b, ok := src.([]byte)
	if !ok {
		return fmt.Errorf("StringList.Scan: expected []byte, got %T", src)
	}
	return json.Unmarshal(b, l)
}

func (l StringList) Value() (driver.Value, error) {
	return json.Marshal(l)
}

// CreateDatasetRequest is the request to register a dataset
type CreateDatasetRequest struct {
	Name           string   `json:"name" validate:"required"`
	Role           *string  `json:"role,omitempty"`
	Columns        []string `json:"columns" validate:"required,min=1"`
	SourceFilename *string  `json:"source_filename,omitempty"`
}
