package handler

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/mmeshcher/cheapplay/internal/middleware"
	"github.com/mmeshcher/cheapplay/internal/model"
	"github.com/mmeshcher/cheapplay/internal/notify"
)

const credentialsSubject = "Your account is ready"

type adminOrder struct {
	ID         string            `json:"id"`
	Code       string            `json:"code"`
	Email      string            `json:"email"`
	Status     model.Status      `json:"status"`
	IsRedeemed bool              `json:"isRedeemed"`
	LoginInfo  *model.LoginInfo  `json:"loginInfo"`
	AccessCode *model.AccessCode `json:"accessCode"`
	Processing *model.StepData   `json:"processing"`
	Completed  *model.StepData   `json:"completed"`
	CreatedAt  string            `json:"createdAt"`
	UpdatedAt  string            `json:"updatedAt"`
}

func newAdminOrder(o *model.Order) adminOrder {
	return adminOrder{
		ID:         o.ID,
		Code:       o.Code,
		Email:      o.Email,
		Status:     o.Status,
		IsRedeemed: o.IsRedeemed,
		LoginInfo:  o.LoginInfo,
		AccessCode: o.AccessCode,
		Processing: o.Processing,
		Completed:  o.Completed,
		CreatedAt:  o.CreatedAt.Format(time.RFC3339),
		UpdatedAt:  o.UpdatedAt.Format(time.RFC3339),
	}
}

func adminField(r *http.Request) zap.Field {
	admin, ok := middleware.AdminFromContext(r.Context())
	if !ok {
		return zap.Skip()
	}
	return zap.String("admin", admin.ID)
}

// ListOrders возвращает последние заказы с необязательным фильтром ?status=.
func (h *Handler) ListOrders(w http.ResponseWriter, r *http.Request) {
	var status model.Status
	if s := r.URL.Query().Get("status"); s != "" {
		st, err := model.ParseStatus(s)
		if err != nil {
			writeError(w, http.StatusBadRequest, "unknown status")
			return
		}
		status = st
	}

	limit := 0
	if s := r.URL.Query().Get("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = n
	}

	orders, err := h.service.ListOrders(r.Context(), status, limit)
	if err != nil {
		h.writeServiceError(w, err, "failed to list orders", adminField(r))
		return
	}

	resp := make([]adminOrder, 0, len(orders))
	for i := range orders {
		resp = append(resp, newAdminOrder(&orders[i]))
	}

	writeJSON(w, http.StatusOK, resp)
}

// GetOrder возвращает заказ целиком.
func (h *Handler) GetOrder(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	o, err := h.service.GetOrder(r.Context(), id)
	if err != nil {
		h.writeServiceError(w, err, "failed to get order", zap.String("order", id), adminField(r))
		return
	}

	writeJSON(w, http.StatusOK, newAdminOrder(o))
}

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	TwoFA    string `json:"twoFA"`
	Notify   bool   `json:"notify"`
}

type credentialsResponse struct {
	Order    adminOrder `json:"order"`
	Notified bool       `json:"notified"`
}

// DeliverCredentials прикрепляет к заказу данные для входа и по запросу отправляет их клиенту.
func (h *Handler) DeliverCredentials(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	info := model.LoginInfo{Email: req.Email, Password: req.Password, TwoFA: req.TwoFA}

	o, err := h.service.DeliverCredentials(r.Context(), id, info)
	if err != nil {
		h.writeServiceError(w, err, "failed to save credentials", zap.String("order", id), adminField(r))
		return
	}

	h.logger.Info("credentials delivered", zap.String("order", id), adminField(r))

	notified := false
	if req.Notify {
		notified = h.notifyCredentials(r, o)
	}

	writeJSON(w, http.StatusOK, credentialsResponse{
		Order:    newAdminOrder(o),
		Notified: notified,
	})
}

// notifyCredentials отправляет клиенту письмо с данными для входа.
// Ошибка отправки не откатывает сохранённые данные.
func (h *Handler) notifyCredentials(r *http.Request, o *model.Order) bool {
	if h.mailer == nil || o.Email == "" || o.LoginInfo == nil {
		h.logger.Warn("credentials email skipped", zap.String("order", o.ID))
		return false
	}

	err := h.mailer.Send(r.Context(), notify.Message{
		To:      o.Email,
		Subject: credentialsSubject,
		Text:    o.LoginInfo.Text(),
		OrderID: o.ID,
	})
	if err != nil {
		h.logger.Error("send credentials email error", zap.Error(err), zap.String("order", o.ID))
		return false
	}
	return true
}

type answerRequest struct {
	Message string `json:"message"`
}

// AnswerAccessCode сохраняет ответ администратора на код доступа клиента.
func (h *Handler) AnswerAccessCode(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req answerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	o, err := h.service.RespondAccessCode(r.Context(), id, req.Message)
	if err != nil {
		h.writeServiceError(w, err, "failed to answer access code", zap.String("order", id), adminField(r))
		return
	}

	writeJSON(w, http.StatusOK, newAdminOrder(o))
}

// CancelOrder отменяет заказ.
func (h *Handler) CancelOrder(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	o, err := h.service.CancelOrder(r.Context(), id)
	if err != nil {
		h.writeServiceError(w, err, "failed to cancel order", zap.String("order", id), adminField(r))
		return
	}

	h.logger.Info("order cancelled", zap.String("order", id), adminField(r))
	writeJSON(w, http.StatusOK, newAdminOrder(o))
}

// MarkDelivered помечает заказ выданным.
func (h *Handler) MarkDelivered(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	o, err := h.service.MarkDelivered(r.Context(), id)
	if err != nil {
		h.writeServiceError(w, err, "failed to mark order delivered", zap.String("order", id), adminField(r))
		return
	}

	writeJSON(w, http.StatusOK, newAdminOrder(o))
}
