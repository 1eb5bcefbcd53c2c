package server

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/openefficiency/aegisv11-sub000/internal/vapi"
	"github.com/openefficiency/aegisv11-sub000/pkg/types"
)

func (s *Service) handleVapiWebhook(w http.ResponseWriter, r *http.Request) {
	if !vapi.VerifySecret(r, s.config.VapiWebhookSecret) {
		writeError(w, http.StatusUnauthorized, codeUnauthorized, "invalid webhook secret", nil)
		return
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		writeError(w, http.StatusBadRequest, codeInvalidBody, "request body could not be read", nil)
		return
	}

	msg, err := vapi.ParseWebhook(body)
	if err != nil {
		writeError(w, http.StatusBadRequest, codeInvalidBody, err.Error(), nil)
		return
	}

	if !msg.IsEndOfCall() {
		s.logger.WithField("type", msg.Type).Debug("ignoring vapi server message")
		writeJSON(w, http.StatusOK, map[string]any{"received": true})
		return
	}

	raw, err := msg.Submission()
	if err != nil {
		writeError(w, http.StatusBadRequest, codeInvalidBody, err.Error(), nil)
		return
	}

	res := s.submit(w, r, raw, types.ReportSourceVoice)
	s.archiveRecording(context.WithoutCancel(r.Context()), res)
}

func (s *Service) handleVapiImport(w http.ResponseWriter, r *http.Request) {
	if s.calls == nil {
		writeError(w, http.StatusServiceUnavailable, codeVapiNotConfigured, "voice vendor api is not configured", nil)
		return
	}

	callID := strings.TrimSpace(r.PathValue("callID"))
	if callID == "" {
		writeError(w, http.StatusBadRequest, string(types.ValidationMissingFields), "call id is required", map[string]any{"fields": []string{"call_id"}})
		return
	}

	call, rawCall, err := s.calls.Call(r.Context(), callID)
	if err != nil {
		if errors.Is(err, vapi.ErrCallNotFound) {
			writeError(w, http.StatusNotFound, codeCallNotFound, "call not found", nil)
			return
		}
		s.logger.WithError(err).WithField("call_id", callID).Error("failed to fetch call")
		writeError(w, http.StatusBadGateway, codeUpstream, "failed to fetch call", nil)
		return
	}

	res := s.submit(w, r, call.Submission(rawCall), types.ReportSourceVoice)
	s.archiveRecording(context.WithoutCancel(r.Context()), res)
}
