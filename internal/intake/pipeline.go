// Package intake runs a submission through the rate-limit gate, the
// normalizer and the case store. A case that normalizes is always returned to
// the submitter, whether or not it could be stored.
package intake

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"

	"github.com/openefficiency/aegisv11-sub000/internal/ratelimit"
	"github.com/openefficiency/aegisv11-sub000/internal/report"
	"github.com/openefficiency/aegisv11-sub000/pkg/types"

	"github.com/sirupsen/logrus"
)

// CaseStore is the persistence collaborator. Submission only ever creates
// cases; the other methods serve tracking and workflow updates.
type CaseStore interface {
	CreateCase(ctx context.Context, c *types.Case) error
	UpdateCase(ctx context.Context, caseID string, patch map[string]any) (*types.Case, error)
	Cases(ctx context.Context, filter types.CaseFilter) ([]*types.Case, error)
	CaseByTrackingCode(ctx context.Context, trackingCode string) (*types.Case, error)
	CaseBySessionID(ctx context.Context, sessionID string) (*types.Case, error)
}

// Result separates normalization success from storage success. Duplicate
// marks a voice session that already had a case; Case is then the stored one.
type Result struct {
	Case             *types.Case
	Persisted        bool
	PersistenceError error
	Duplicate        bool
}

func (r *Result) Receipt() *types.SubmissionReceipt {
	if r.Duplicate {
		return &types.SubmissionReceipt{
			Success:    true,
			CaseNumber: r.Case.CaseNumber,
			Category:   r.Case.Category,
			Priority:   r.Case.Priority,
			Duplicate:  true,
		}
	}

	return &types.SubmissionReceipt{
		Success:      true,
		CaseID:       r.Case.CaseID,
		CaseNumber:   r.Case.CaseNumber,
		ReportID:     r.Case.ReportID,
		TrackingCode: r.Case.TrackingCode,
		SecretCode:   r.Case.SecretCode,
		Category:     r.Case.Category,
		Priority:     r.Case.Priority,
		DemoMode:     !r.Persisted,
	}
}

type Pipeline struct {
	logger     *logrus.Logger
	normalizer *report.Normalizer
	store      CaseStore
	limiters   map[types.ReportSource]*ratelimit.Limiter
}

// New builds a pipeline. A nil store puts every submission in demo mode and a
// source without a limiter is never rate limited.
func New(
	logger *logrus.Logger,
	normalizer *report.Normalizer,
	store CaseStore,
	limiters map[types.ReportSource]*ratelimit.Limiter,
) *Pipeline {
	if normalizer == nil {
		normalizer = report.NewNormalizer(nil, nil)
	}
	return &Pipeline{
		logger:     logger,
		normalizer: normalizer,
		store:      store,
		limiters:   limiters,
	}
}

func (p *Pipeline) HasStore() bool {
	return p.store != nil
}

// Submit gates, normalizes and stores one submission. It returns a
// *types.RateLimitError or *types.ValidationError when the submission is
// refused. A storage failure is reported in the Result, never as an error.
//
// identity only feeds the limiter. It is logged on refusals alone, so no log
// line ties a client address to a case.
func (p *Pipeline) Submit(ctx context.Context, identity string, raw *types.RawSubmission, source types.ReportSource) (*Result, error) {
	entry := p.logger.WithField("source", source)

	if limiter, ok := p.limiters[source]; ok && limiter != nil {
		decision, err := limiter.Allow(ctx, identity)
		if err != nil {
			entry.WithError(err).Warn("rate limiter unavailable, admitting submission")
		}
		if !decision.Allowed {
			entry.WithFields(logrus.Fields{
				"identity":    identity,
				"retry_after": decision.RetryAfter.String(),
			}).Info("submission rate limited")
			return nil, &types.RateLimitError{Identity: identity, RetryAfter: decision.RetryAfter}
		}
	}

	c, err := p.normalizer.Normalize(raw, source)
	if err != nil {
		var verr *types.ValidationError
		if errors.As(err, &verr) {
			entry.WithField("code", verr.Code).Debug("submission failed validation")
			return nil, err
		}
		return nil, fmt.Errorf("normalize %s submission: %w", source, err)
	}

	result := &Result{Case: c}
	entry = entry.WithFields(logrus.Fields{
		"case_number": c.CaseNumber,
		"category":    c.Category,
		"priority":    c.Priority,
	})

	if p.store == nil {
		result.PersistenceError = &types.PersistenceError{Op: "insert", Err: types.ErrNoStore}
		entry.Warn("no case store configured, case returned in demo mode")
		return result, nil
	}

	if err := p.store.CreateCase(ctx, c); err != nil {
		if errors.Is(err, types.ErrDuplicateSession) && c.VapiSessionID != nil {
			existing, lookupErr := p.store.CaseBySessionID(ctx, *c.VapiSessionID)
			if lookupErr == nil {
				entry.WithField("case_number", existing.CaseNumber).Info("voice session already recorded")
				return &Result{Case: existing, Persisted: true, Duplicate: true}, nil
			}
			err = errors.Join(err, lookupErr)
		}

		result.PersistenceError = &types.PersistenceError{Op: "insert", Err: err}
		entry.WithError(err).Error("failed to persist case, returned in demo mode")
		return result, nil
	}

	result.Persisted = true
	entry.Info("case submitted")

	return result, nil
}

// Track returns the case behind a tracking code when secretCode matches it.
// Both a wrong code and a wrong secret yield types.ErrCaseNotFound.
func (p *Pipeline) Track(ctx context.Context, trackingCode, secretCode string) (*types.Case, error) {
	if p.store == nil {
		return nil, types.ErrNoStore
	}

	trackingCode = report.Sanitize(trackingCode)
	secretCode = report.Sanitize(secretCode)
	if trackingCode == "" || secretCode == "" {
		return nil, types.ErrCaseNotFound
	}

	c, err := p.store.CaseByTrackingCode(ctx, trackingCode)
	if err != nil {
		return nil, err
	}

	if subtle.ConstantTimeCompare([]byte(c.SecretCode), []byte(secretCode)) != 1 {
		return nil, types.ErrCaseNotFound
	}

	return c, nil
}

// UpdateStatus moves a case to status. Identifiers are never part of the
// patch.
func (p *Pipeline) UpdateStatus(ctx context.Context, caseID string, status types.CaseStatus) (*types.Case, error) {
	if p.store == nil {
		return nil, types.ErrNoStore
	}
	if !status.Valid() {
		return nil, fmt.Errorf("invalid case status %q", status)
	}

	c, err := p.store.UpdateCase(ctx, caseID, map[string]any{"status": status})
	if err != nil {
		return nil, fmt.Errorf("update case %s: %w", caseID, err)
	}

	p.logger.WithFields(logrus.Fields{
		"case_number": c.CaseNumber,
		"status":      c.Status,
	}).Info("case status updated")

	return c, nil
}

func (p *Pipeline) Cases(ctx context.Context, filter types.CaseFilter) ([]*types.Case, error) {
	if p.store == nil {
		return nil, types.ErrNoStore
	}
	return p.store.Cases(ctx, filter)
}
