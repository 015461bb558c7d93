package handler

import (
	"encoding/json"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/mmeshcher/cheapplay/internal/metrics"
	"github.com/mmeshcher/cheapplay/internal/notify"
)

type sendEmailRequest struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	Text    string `json:"text"`
	OrderID string `json:"orderId"`
}

// SendEmail передаёт письмо клиенту SMTP-ретранслятору.
func (h *Handler) SendEmail(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req sendEmailRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "missing required fields")
		return
	}

	if strings.TrimSpace(req.To) == "" || strings.TrimSpace(req.Subject) == "" || strings.TrimSpace(req.Text) == "" {
		writeError(w, http.StatusBadRequest, "missing required fields")
		return
	}

	if h.mailer == nil {
		h.logger.Error("send email error: mailer is not configured")
		metrics.IncEmail("failed")
		writeError(w, http.StatusInternalServerError, "failed to send email")
		return
	}

	err := h.mailer.Send(r.Context(), notify.Message{
		To:      req.To,
		Subject: req.Subject,
		Text:    req.Text,
		OrderID: req.OrderID,
	})
	if err != nil {
		h.logger.Error("send email error", zap.Error(err), zap.String("order", req.OrderID))
		metrics.IncEmail("failed")
		writeError(w, http.StatusInternalServerError, "failed to send email")
		return
	}

	metrics.IncEmail("sent")
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}
