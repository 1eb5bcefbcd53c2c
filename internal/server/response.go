package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"mime"
	"net/http"
	"strconv"
	"time"

	"github.com/openefficiency/aegisv11-sub000/pkg/types"
)

const (
	codeInvalidBody       = "INVALID_BODY"
	codeRateLimited       = "RATE_LIMITED"
	codeInternal          = "INTERNAL_ERROR"
	codeUnauthorized      = "UNAUTHORIZED"
	codeCaseNotFound      = "CASE_NOT_FOUND"
	codeCallNotFound      = "CALL_NOT_FOUND"
	codeUpstream          = "UPSTREAM_ERROR"
	codeVapiNotConfigured = "VAPI_NOT_CONFIGURED"
	codeStoreUnavailable  = "STORE_UNAVAILABLE"
)

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, code, message string, details any) {
	response := map[string]any{
		"code":  code,
		"error": message,
	}
	if details != nil {
		response["details"] = details
	}
	writeJSON(w, status, response)
}

// writeSubmitError maps a refused submission onto the response the submitter
// sees. Anything that is neither a rate limit nor a validation failure is an
// internal error and is not described to the caller.
func (s *Service) writeSubmitError(w http.ResponseWriter, err error) {
	var rlErr *types.RateLimitError
	if errors.As(err, &rlErr) {
		seconds := retryAfterSeconds(rlErr.RetryAfter)
		w.Header().Set("Retry-After", strconv.Itoa(seconds))
		writeError(w, http.StatusTooManyRequests, codeRateLimited, "too many submissions, try again later", map[string]any{
			"retry_after_seconds": seconds,
		})
		return
	}

	var verr *types.ValidationError
	if errors.As(err, &verr) {
		writeError(w, http.StatusBadRequest, string(verr.Code), verr.Message, validationDetails(verr))
		return
	}

	s.logger.WithError(err).Error("failed to process submission")
	writeError(w, http.StatusInternalServerError, codeInternal, "internal server error", nil)
}

func retryAfterSeconds(d time.Duration) int {
	return max(int(math.Ceil(d.Seconds())), 1)
}

func validationDetails(verr *types.ValidationError) any {
	details := map[string]any{}
	if len(verr.Fields) > 0 {
		details["fields"] = verr.Fields
	}
	if verr.Field != "" {
		details["field"] = verr.Field
	}
	if verr.Limit > 0 {
		details["limit"] = verr.Limit
	}
	if len(details) == 0 {
		return nil
	}
	return details
}

func isForm(r *http.Request) bool {
	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if err != nil {
		return false
	}
	return mediaType == "application/x-www-form-urlencoded" || mediaType == "multipart/form-data"
}

func parseForm(r *http.Request) error {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "multipart/form-data" {
		return r.ParseMultipartForm(maxBodyBytes)
	}
	return r.ParseForm()
}

// decodeJSON decodes one JSON object, keeping numbers as json.Number so that
// coordinate checks see exactly what was sent.
func decodeJSON(r *http.Request, target any) error {
	dec := json.NewDecoder(r.Body)
	dec.UseNumber()
	if err := dec.Decode(target); err != nil {
		return fmt.Errorf("invalid JSON body: %w", err)
	}
	return nil
}
