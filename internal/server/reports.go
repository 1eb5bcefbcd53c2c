package server

import (
	"context"
	"net/http"
	"time"

	"github.com/openefficiency/aegisv11-sub000/internal/intake"
	"github.com/openefficiency/aegisv11-sub000/internal/ratelimit"
	"github.com/openefficiency/aegisv11-sub000/pkg/types"
)

// handleSubmitReport accepts JSON for every source and urlencoded or
// multipart forms for the manual and map sources.
func (s *Service) handleSubmitReport(source types.ReportSource) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		raw, err := s.decodeSubmission(r, source)
		if err != nil {
			s.logger.WithError(err).WithField("source", source).Debug("failed to decode submission")
			writeError(w, http.StatusBadRequest, codeInvalidBody, "request body could not be decoded", nil)
			return
		}

		s.submit(w, r, raw, source)
	}
}

// submit writes the receipt or the refusal and returns the result when the
// submission was accepted.
func (s *Service) submit(w http.ResponseWriter, r *http.Request, raw *types.RawSubmission, source types.ReportSource) *intake.Result {
	res, err := s.pipeline.Submit(r.Context(), ratelimit.ClientIdentity(r), raw, source)
	if err != nil {
		s.writeSubmitError(w, err)
		return nil
	}

	writeJSON(w, http.StatusOK, res.Receipt())
	return res
}

const archiveTimeout = 3 * time.Minute

// archiveRecording uploads in the background so the caller gets its receipt
// without waiting on the vendor download. Only the vendor webhook and import
// paths call it; a recording URL posted by a client is never fetched.
func (s *Service) archiveRecording(ctx context.Context, res *intake.Result) {
	if res == nil || res.Duplicate || res.Case.VapiAudioURL == nil || s.recordings == nil {
		return
	}
	c := res.Case

	s.background.Add(1)
	go func() {
		defer s.background.Done()

		ctx, cancel := context.WithTimeout(ctx, archiveTimeout)
		defer cancel()

		entry := s.logger.WithField("case_number", c.CaseNumber)
		key, err := s.recordings.Archive(ctx, c)
		if err != nil {
			entry.WithError(err).Error("failed to archive call recording")
			return
		}
		entry.WithField("key", key).Info("archived call recording")
	}()
}

func (s *Service) decodeSubmission(r *http.Request, source types.ReportSource) (*types.RawSubmission, error) {
	if isForm(r) && source != types.ReportSourceVoice {
		if err := parseForm(r); err != nil {
			return nil, err
		}

		var f types.ReportForm
		if err := decoder.Decode(&f, r.Form); err != nil {
			return nil, err
		}
		return f.Submission(), nil
	}

	var raw types.RawSubmission
	if err := decodeJSON(r, &raw); err != nil {
		return nil, err
	}
	return &raw, nil
}
