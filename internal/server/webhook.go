package server

import (
	"io"
	"net/http"

	apperrors "github.com/bountyhub/bountyhub/pkg/errors"
	"github.com/bountyhub/bountyhub/pkg/integrations/github"
)

// maxWebhookBody caps webhook payload size. GitHub caps deliveries at
// 25 MB but bounty-relevant events are far smaller.
const maxWebhookBody = 5 << 20

// handleWebhook receives GitHub event deliveries. Every delivery must
// carry a valid HMAC signature; unsigned or tampered payloads get 403.
func (s *Server) handleWebhook(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxWebhookBody))
	if err != nil {
		respondError(w, http.StatusRequestEntityTooLarge, apperrors.ErrCodeInvalidInput, "payload too large")
		return
	}

	signature := r.Header.Get(github.SignatureHeader)
	if !github.VerifySignature(s.cfg.GitHub.WebhookSecret, body, signature) {
		s.logger.Warn("webhook signature rejected", "delivery", r.Header.Get(github.DeliveryHeader))
		respondError(w, http.StatusForbidden, apperrors.ErrCodeBadSignature, "invalid signature")
		return
	}

	eventName := r.Header.Get(github.EventHeader)
	event, err := github.ParseEvent(eventName, body)
	if err != nil {
		// Unknown event types are fine: GitHub sends whatever the hook
		// subscribes to, and subscriptions can drift.
		s.logger.Debug("ignoring webhook delivery", "event", eventName, "err", err)
		w.WriteHeader(http.StatusAccepted)
		return
	}

	if err := s.svc.HandleEvent(r.Context(), s.bot, event); err != nil {
		s.logger.Error("webhook processing failed",
			"event", eventName,
			"delivery", r.Header.Get(github.DeliveryHeader),
			"err", err,
		)
		// 5xx makes GitHub mark the delivery failed so it can be redelivered.
		respondError(w, http.StatusInternalServerError, apperrors.ErrCodeInternal, "processing failed")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
