package server

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/openefficiency/aegisv11-sub000/internal/ratelimit"
	"github.com/openefficiency/aegisv11-sub000/pkg/types"
)

func (s *Service) handleTrack(w http.ResponseWriter, r *http.Request) {
	if s.tracking != nil {
		d, err := s.tracking.Allow(r.Context(), ratelimit.ClientIdentity(r))
		if err != nil {
			s.logger.WithError(err).Warn("tracking rate limiter unavailable")
		}
		if !d.Allowed {
			w.Header().Set("Retry-After", strconv.Itoa(retryAfterSeconds(d.RetryAfter)))
			writeError(w, http.StatusTooManyRequests, codeRateLimited, "too many lookups, try again later", nil)
			return
		}
	}

	var req types.TrackRequest
	if isForm(r) {
		if err := parseForm(r); err != nil {
			writeError(w, http.StatusBadRequest, codeInvalidBody, "request body could not be decoded", nil)
			return
		}
		if err := decoder.Decode(&req, r.Form); err != nil {
			writeError(w, http.StatusBadRequest, codeInvalidBody, "request body could not be decoded", nil)
			return
		}
	} else if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, codeInvalidBody, "request body could not be decoded", nil)
		return
	}

	var missing []string
	if strings.TrimSpace(req.TrackingCode) == "" {
		missing = append(missing, "tracking_code")
	}
	if strings.TrimSpace(req.SecretCode) == "" {
		missing = append(missing, "secret_code")
	}
	if len(missing) > 0 {
		verr := types.MissingFieldsError(missing)
		writeError(w, http.StatusBadRequest, string(verr.Code), verr.Message, validationDetails(verr))
		return
	}

	c, err := s.pipeline.Track(r.Context(), req.TrackingCode, req.SecretCode)
	switch {
	case errors.Is(err, types.ErrNoStore):
		writeError(w, http.StatusServiceUnavailable, codeStoreUnavailable, "case lookups are unavailable", nil)
		return
	case errors.Is(err, types.ErrCaseNotFound):
		writeError(w, http.StatusNotFound, codeCaseNotFound, "no case matches these codes", nil)
		return
	case err != nil:
		s.logger.WithError(err).Error("failed to look up case")
		writeError(w, http.StatusInternalServerError, codeInternal, "internal server error", nil)
		return
	}

	writeJSON(w, http.StatusOK, types.TrackResponse{
		CaseNumber: c.CaseNumber,
		Status:     c.Status,
		Category:   c.Category,
		Priority:   c.Priority,
		CreatedAt:  c.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:  c.UpdatedAt.UTC().Format(time.RFC3339),
	})
}
