// Package vapi talks to the voice vendor: it decodes call records and
// server webhook messages and maps finished calls into voice submissions.
package vapi

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/openefficiency/aegisv11-sub000/pkg/types"
)

type Analysis struct {
	Summary        string          `json:"summary,omitempty"`
	StructuredData json.RawMessage `json:"structuredData,omitempty"`
}

type Artifact struct {
	Transcript   string `json:"transcript,omitempty"`
	RecordingURL string `json:"recordingUrl,omitempty"`
}

// Call is the subset of a vendor call record the intake cares about.
type Call struct {
	ID           string     `json:"id"`
	Status       string     `json:"status,omitempty"`
	Transcript   string     `json:"transcript,omitempty"`
	Summary      string     `json:"summary,omitempty"`
	RecordingURL string     `json:"recordingUrl,omitempty"`
	CreatedAt    time.Time  `json:"createdAt"`
	EndedAt      *time.Time `json:"endedAt,omitempty"`
	Analysis     *Analysis  `json:"analysis,omitempty"`
	Artifact     *Artifact  `json:"artifact,omitempty"`
}

func (c *Call) transcript() string {
	if c.Transcript == "" && c.Artifact != nil {
		return c.Artifact.Transcript
	}
	return c.Transcript
}

func (c *Call) summary() string {
	if strings.TrimSpace(c.Summary) == "" && c.Analysis != nil {
		return c.Analysis.Summary
	}
	return c.Summary
}

func (c *Call) recordingURL() string {
	if c.RecordingURL == "" && c.Artifact != nil {
		return c.Artifact.RecordingURL
	}
	return c.RecordingURL
}

// Submission maps the call into a voice submission. raw is stored verbatim as
// the case call data; when it is empty the decoded call is re-encoded.
func (c *Call) Submission(raw json.RawMessage) *types.RawSubmission {
	if len(raw) == 0 {
		if b, err := json.Marshal(c); err == nil {
			raw = b
		}
	}

	return &types.RawSubmission{
		SessionID:  c.ID,
		Transcript: c.transcript(),
		Summary:    c.summary(),
		AudioURL:   c.recordingURL(),
		CallData:   raw,
	}
}

// Ended reports whether the vendor considers the call finished.
func (c *Call) Ended() bool {
	return c.EndedAt != nil || c.Status == "ended"
}
