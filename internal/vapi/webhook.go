package vapi

import (
	"crypto/subtle"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/openefficiency/aegisv11-sub000/pkg/types"
)

const (
	SecretHeader = "x-vapi-secret"

	MessageEndOfCallReport = "end-of-call-report"
	MessageStatusUpdate    = "status-update"
)

var ErrNoCall = errors.New("webhook message carries no call")

// Message is a server message as posted to the webhook, unwrapped from its
// {"message": ...} envelope.
type Message struct {
	Type         string          `json:"type"`
	Call         json.RawMessage `json:"call,omitempty"`
	Transcript   string          `json:"transcript,omitempty"`
	Summary      string          `json:"summary,omitempty"`
	RecordingURL string          `json:"recordingUrl,omitempty"`
	EndedReason  string          `json:"endedReason,omitempty"`
	Analysis     *Analysis       `json:"analysis,omitempty"`
	Artifact     *Artifact       `json:"artifact,omitempty"`
}

type envelope struct {
	Message *Message `json:"message"`
}

func ParseWebhook(body []byte) (*Message, error) {
	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, fmt.Errorf("decode webhook: %w", err)
	}
	if env.Message == nil || env.Message.Type == "" {
		return nil, errors.New("decode webhook: missing message type")
	}
	return env.Message, nil
}

func (m *Message) IsEndOfCall() bool {
	return m.Type == MessageEndOfCallReport
}

// Submission merges the report-level transcript, summary and recording into
// the embedded call and maps the result into a voice submission.
func (m *Message) Submission() (*types.RawSubmission, error) {
	if len(m.Call) == 0 {
		return nil, ErrNoCall
	}

	var call Call
	if err := json.Unmarshal(m.Call, &call); err != nil {
		return nil, fmt.Errorf("decode webhook call: %w", err)
	}
	if call.ID == "" {
		return nil, ErrNoCall
	}

	if call.Transcript == "" {
		call.Transcript = m.Transcript
	}
	if call.Summary == "" {
		call.Summary = m.Summary
	}
	if call.RecordingURL == "" {
		call.RecordingURL = m.RecordingURL
	}
	if call.Analysis == nil {
		call.Analysis = m.Analysis
	}
	if call.Artifact == nil {
		call.Artifact = m.Artifact
	}

	return call.Submission(m.Call), nil
}

// VerifySecret checks the shared webhook secret. An empty secret disables the
// check.
func VerifySecret(r *http.Request, secret string) bool {
	if secret == "" {
		return true
	}
	got := r.Header.Get(SecretHeader)
	return subtle.ConstantTimeCompare([]byte(got), []byte(secret)) == 1
}
