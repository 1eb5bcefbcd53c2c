package types

import "encoding/json"

// Coordinates keeps lat/lng as decoded so that non-numeric input can be
// reported as invalid rather than failing the body decode.
type Coordinates struct {
	Lat any `json:"lat"`
	Lng any `json:"lng"`
}

// RawSubmission is the untrusted input every submission shape is mapped into
// before normalization.
type RawSubmission struct {
	Category     string       `json:"category"`
	Title        string       `json:"title"`
	Description  string       `json:"description"`
	Location     string       `json:"location"`
	Coordinates  *Coordinates `json:"coordinates"`
	DateOccurred string       `json:"dateOccurred"`
	Anonymous    *bool        `json:"anonymous"`
	ContactInfo  string       `json:"contactInfo"`

	// Voice only.
	SessionID  string `json:"session_id"`
	Transcript string `json:"transcript"`
	Summary    string `json:"summary"`
	AudioURL   string `json:"audio_url"`

	// CallData is the verbatim vendor call record. It is never decoded from a
	// request body; only the vendor webhook and import paths set it.
	CallData json.RawMessage `json:"-"`
}

// ReportForm is the urlencoded variant of the manual and map submissions.
type ReportForm struct {
	Category     string  `form:"category"`
	Title        string  `form:"title"`
	Description  string  `form:"description"`
	Location     string  `form:"location"`
	Lat          *string `form:"lat"`
	Lng          *string `form:"lng"`
	DateOccurred string  `form:"dateOccurred"`
	Anonymous    *bool   `form:"anonymous"`
	ContactInfo  string  `form:"contactInfo"`
}

func (f *ReportForm) Submission() *RawSubmission {
	raw := &RawSubmission{
		Category:     f.Category,
		Title:        f.Title,
		Description:  f.Description,
		Location:     f.Location,
		DateOccurred: f.DateOccurred,
		Anonymous:    f.Anonymous,
		ContactInfo:  f.ContactInfo,
	}

	if f.Lat != nil || f.Lng != nil {
		raw.Coordinates = &Coordinates{}
		if f.Lat != nil {
			raw.Coordinates.Lat = *f.Lat
		}
		if f.Lng != nil {
			raw.Coordinates.Lng = *f.Lng
		}
	}

	return raw
}

// SubmissionReceipt is what the submitter gets back. The secret code is the
// only credential an anonymous reporter has for later status lookups, so a
// receipt for an already recorded voice session leaves the codes out.
type SubmissionReceipt struct {
	Success      bool     `json:"success"`
	CaseID       string   `json:"case_id,omitempty"`
	CaseNumber   string   `json:"case_number"`
	ReportID     string   `json:"report_id,omitempty"`
	TrackingCode string   `json:"tracking_code,omitempty"`
	SecretCode   string   `json:"secret_code,omitempty"`
	Category     Category `json:"category"`
	Priority     Priority `json:"priority"`
	DemoMode     bool     `json:"demo_mode,omitempty"`
	Duplicate    bool     `json:"duplicate,omitempty"`
}

type TrackRequest struct {
	TrackingCode string `json:"tracking_code" form:"tracking_code"`
	SecretCode   string `json:"secret_code" form:"secret_code"`
}

type TrackResponse struct {
	CaseNumber string     `json:"case_number"`
	Status     CaseStatus `json:"status"`
	Category   Category   `json:"category"`
	Priority   Priority   `json:"priority"`
	CreatedAt  string     `json:"created_at"`
	UpdatedAt  string     `json:"updated_at"`
}
