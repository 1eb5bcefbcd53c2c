package report

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/openefficiency/aegisv11-sub000/internal/utils"
	"github.com/openefficiency/aegisv11-sub000/pkg/types"
)

// Normalizer turns any of the three submission shapes into a canonical Case.
// It performs no I/O; persisting the result is the caller's job.
type Normalizer struct {
	ids         *Generator
	classifier  *Classifier
	titleLength int
	now         func() time.Time
}

type NormalizerOption func(*Normalizer)

func WithTitleLength(n int) NormalizerOption {
	return func(nz *Normalizer) {
		if n > 0 {
			nz.titleLength = n
		}
	}
}

func WithClock(now func() time.Time) NormalizerOption {
	return func(nz *Normalizer) { nz.now = now }
}

func NewNormalizer(ids *Generator, classifier *Classifier, opts ...NormalizerOption) *Normalizer {
	if ids == nil {
		ids = NewGenerator()
	}
	if classifier == nil {
		classifier = NewClassifier()
	}

	nz := &Normalizer{
		ids:         ids,
		classifier:  classifier,
		titleLength: DefaultTitleLength,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(nz)
	}
	return nz
}

func (nz *Normalizer) Normalize(raw *types.RawSubmission, source types.ReportSource) (*types.Case, error) {
	valid, err := Validate(raw, source)
	if err != nil {
		return nil, err
	}

	var (
		title       = Sanitize(raw.Title)
		description = Sanitize(raw.Description)
		location    = Sanitize(raw.Location)
		contactInfo = Sanitize(raw.ContactInfo)
		occurred    = Sanitize(raw.DateOccurred)
		sessionID   = Sanitize(raw.SessionID)
		transcript  = Sanitize(raw.Transcript)
		summary     = Sanitize(raw.Summary)
		audioURL    = Sanitize(raw.AudioURL)
	)

	ids, err := nz.ids.Identifiers()
	if err != nil {
		return nil, fmt.Errorf("generate case identifiers: %w", err)
	}

	text := classificationText(summary, transcript, description)

	category := valid.Category
	if category == "" {
		category = nz.classifier.Categorize(text)
	}

	if title == "" {
		fallback := TitleFallback
		if source == types.ReportSourceVoice {
			fallback = VoiceTitleFallback
		}
		title = ExtractTitle(firstNonEmpty(summary, transcript, description), nz.titleLength, fallback)
	}

	if description == "" {
		description = summary
		if description == "" {
			description = ExtractSummary(transcript, DefaultSummaryLength)
		}
	}

	now := nz.now().UTC()
	c := &types.Case{
		CaseID:       ids.CaseID,
		ReportID:     ids.ReportID,
		TrackingCode: ids.TrackingCode,
		SecretCode:   ids.SecretCode,
		CaseNumber:   ids.CaseNumber,
		Title:        truncate(title, MaxTitleLength),
		Description:  truncate(description, MaxDescriptionLength),
		Category:     category,
		Priority:     nz.classifier.PriorityFor(category, text),
		Status:       types.CaseStatusOpen,
		ReportSource: source,
		IsAnonymous:  true,
		DateOccurred: optional(occurred),
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if raw.Anonymous != nil && !*raw.Anonymous && contactInfo != "" {
		c.IsAnonymous = false
		c.ContactInfo = utils.StringPtr(contactInfo)
	}

	switch source {
	case types.ReportSourceMap:
		c.Location = optional(location)
		c.Latitude = valid.Latitude
		c.Longitude = valid.Longitude
	case types.ReportSourceManual:
		c.Location = optional(location)
	case types.ReportSourceVoice:
		c.VapiSessionID = optional(sessionID)
		c.VapiTranscript = optional(transcript)
		c.VapiAudioURL = optional(audioURL)
		if len(raw.CallData) > 0 && json.Valid(raw.CallData) {
			c.VapiCallData = raw.CallData
		}
	}

	return c, nil
}

// classificationText is summary and transcript when either exists, otherwise
// the description.
func classificationText(summary, transcript, description string) string {
	voice := strings.TrimSpace(summary + " " + transcript)
	if voice != "" {
		return voice
	}
	return description
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return utils.StringPtr(s)
}
