package types

import (
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"time"
)

type Category string

const (
	CategoryFraud          Category = "fraud"
	CategoryAbuse          Category = "abuse"
	CategoryDiscrimination Category = "discrimination"
	CategoryHarassment     Category = "harassment"
	CategorySafety         Category = "safety"
	CategoryCorruption     Category = "corruption"
)

// Categories is the persisted category enum in display order.
var Categories = []Category{
	CategoryFraud,
	CategoryAbuse,
	CategoryDiscrimination,
	CategoryHarassment,
	CategorySafety,
	CategoryCorruption,
}

func (c Category) Valid() bool {
	for _, v := range Categories {
		if c == v {
			return true
		}
	}
	return false
}

type Priority string

const (
	PriorityLow      Priority = "low"
	PriorityMedium   Priority = "medium"
	PriorityHigh     Priority = "high"
	PriorityCritical Priority = "critical"
)

type CaseStatus string

const (
	CaseStatusOpen       CaseStatus = "open"
	CaseStatusInProgress CaseStatus = "in_progress"
	CaseStatusEscalated  CaseStatus = "escalated"
	CaseStatusResolved   CaseStatus = "resolved"
	CaseStatusClosed     CaseStatus = "closed"
)

var CaseStatuses = []CaseStatus{
	CaseStatusOpen,
	CaseStatusInProgress,
	CaseStatusEscalated,
	CaseStatusResolved,
	CaseStatusClosed,
}

func (s CaseStatus) Valid() bool {
	for _, v := range CaseStatuses {
		if s == v {
			return true
		}
	}
	return false
}

type ReportSource string

const (
	ReportSourceVoice  ReportSource = "VAPIReport"
	ReportSourceMap    ReportSource = "MapReport"
	ReportSourceManual ReportSource = "ManualReport"
)

// Case is the canonical whistleblowing record. Identifier fields are set once
// by the normalizer and never rewritten.
type Case struct {
	CaseID       string `db:"case_id" json:"case_id"`
	ReportID     string `db:"report_id" json:"report_id"`
	TrackingCode string `db:"tracking_code" json:"tracking_code"`
	SecretCode   string `db:"secret_code" json:"secret_code"`
	CaseNumber   string `db:"case_number" json:"case_number"`

	Title        string       `db:"title" json:"title"`
	Description  string       `db:"description" json:"description"`
	Category     Category     `db:"category" json:"category"`
	Priority     Priority     `db:"priority" json:"priority"`
	Status       CaseStatus   `db:"status" json:"status"`
	ReportSource ReportSource `db:"report_source" json:"report_source"`
	IsAnonymous  bool         `db:"is_anonymous" json:"is_anonymous"`
	ContactInfo  *string      `db:"contact_info" json:"contact_info,omitempty"`
	DateOccurred *string      `db:"date_occurred" json:"date_occurred,omitempty"`

	Location  *string  `db:"location" json:"location,omitempty"`
	Latitude  *float64 `db:"latitude" json:"latitude,omitempty"`
	Longitude *float64 `db:"longitude" json:"longitude,omitempty"`

	VapiSessionID  *string         `db:"vapi_session_id" json:"vapi_session_id,omitempty"`
	VapiTranscript *string         `db:"vapi_transcript" json:"vapi_transcript,omitempty"`
	VapiAudioURL   *string         `db:"vapi_audio_url" json:"vapi_audio_url,omitempty"`
	VapiCallData   json.RawMessage `db:"vapi_call_data" json:"vapi_call_data,omitempty"`

	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// CaseFilter narrows case listings. Zero values are ignored.
type CaseFilter struct {
	Status       CaseStatus
	Category     Category
	Priority     Priority
	ReportSource ReportSource
	Limit        uint64
}

// ImmutableCaseColumns are fixed at creation and never part of a patch.
var ImmutableCaseColumns = []string{
	"case_id", "report_id", "tracking_code", "secret_code",
	"case_number", "report_source", "created_at",
}

// ValidateCasePatch refuses patches that are empty, touch an immutable column
// or name a column outside columns.
func ValidateCasePatch(patch map[string]any, columns []string) error {
	if len(patch) == 0 {
		return errors.New("empty case patch")
	}
	for column := range patch {
		if slices.Contains(ImmutableCaseColumns, column) {
			return fmt.Errorf("column %s cannot be changed after creation", column)
		}
		if !slices.Contains(columns, column) {
			return fmt.Errorf("unknown case column %s", column)
		}
	}
	return nil
}
