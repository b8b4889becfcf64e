package trustly

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"go.uber.org/zap"

	"github.com/sebamiro/trustly/fault"
	"github.com/sebamiro/trustly/message"
)

// maxNotificationSize bounds the body read by NotificationHandler.
const maxNotificationSize = 1 << 20

// NotificationFunc processes a verified notification. Returning nil
// acknowledges it with status OK, any error with FAILED.
type NotificationFunc func(ctx context.Context, n *message.NotificationRequest) error

// NotificationHandler returns an http.Handler for notifications posted by
// the counterparty. It parses and verifies each notification, hands it to
// fn and answers with the signed acknowledgment.
//
// Bodies that cannot be parsed or carry an unsupported version are answered
// with 400, invalid signatures with 403.
func (c *Client) NotificationHandler(fn NotificationFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			w.Header().Set("Allow", http.MethodPost)
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}

		body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxNotificationSize))
		if err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				http.Error(w, "notification too large", http.StatusRequestEntityTooLarge)
				return
			}
			http.Error(w, "could not read notification", http.StatusBadRequest)
			return
		}

		n, err := message.ParseNotificationRequest(body)
		if err != nil {
			c.logger.Warn("invalid notification", zap.Error(err))
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		logger := c.logger.With(zap.String("method", n.Method()), zap.String("uuid", n.UUID()))

		if err := c.VerifyNotification(n); err != nil {
			logger.Warn("notification rejected", zap.Error(err))
			c.metrics.observeNotification(n.Method(), fault.KindSignature.String())
			http.Error(w, err.Error(), http.StatusForbidden)
			return
		}

		success := true
		if err := fn(r.Context(), n); err != nil {
			logger.Error("notification processing failed", zap.Error(err))
			success = false
		}

		ack, err := c.NotificationResponse(n, success)
		if err != nil {
			logger.Error("could not sign acknowledgment", zap.Error(err))
			http.Error(w, "could not sign acknowledgment", http.StatusInternalServerError)
			return
		}
		c.metrics.observeNotification(n.Method(), ack.Status())
		logger.Debug("notification acknowledged", zap.String("status", ack.Status()))

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(ack); err != nil {
			logger.Warn("could not write acknowledgment", zap.Error(err))
		}
	})
}
