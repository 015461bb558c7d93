// Package handler содержит HTTP-обработчики API витрины cheapplay.
package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/mmeshcher/cheapplay/internal/middleware"
	"github.com/mmeshcher/cheapplay/internal/model"
	"github.com/mmeshcher/cheapplay/internal/notify"
	"github.com/mmeshcher/cheapplay/internal/repository"
	"github.com/mmeshcher/cheapplay/internal/service"
	"github.com/mmeshcher/cheapplay/internal/validation"
)

// Service определяет контракт бизнес-логики, используемой HTTP-обработчиками.
type Service interface {
	Ping(ctx context.Context) error
	ViewRedemption(ctx context.Context, code string) (*model.Order, error)
	ConfirmRedemption(ctx context.Context, code, email string) (*model.Order, error)
	TrackOrder(ctx context.Context, orderID, email, accessCode string) (*service.TrackResult, error)
	RespondAccessCode(ctx context.Context, orderID, message string) (*model.Order, error)
	DeliverCredentials(ctx context.Context, orderID string, info model.LoginInfo) (*model.Order, error)
	GetOrder(ctx context.Context, id string) (*model.Order, error)
	ListOrders(ctx context.Context, status model.Status, limit int) ([]model.Order, error)
	CancelOrder(ctx context.Context, orderID string) (*model.Order, error)
	MarkDelivered(ctx context.Context, orderID string) (*model.Order, error)
}

// Mailer отправляет письма клиентам.
type Mailer interface {
	Send(ctx context.Context, msg notify.Message) error
}

// Handler реализует HTTP-обработчики API витрины cheapplay.
type Handler struct {
	service        Service
	mailer         Mailer
	logger         *zap.Logger
	authMiddleware *middleware.AuthMiddleware
	limiter        middleware.Limiter
}

// NewHandler создаёт новый экземпляр обработчика HTTP-запросов.
// mailer и limiter могут быть nil: тогда письма не отправляются, а частота запросов не ограничивается.
func NewHandler(s Service, mailer Mailer, logger *zap.Logger, auth *middleware.AuthMiddleware, limiter middleware.Limiter) *Handler {
	return &Handler{
		service:        s,
		mailer:         mailer,
		logger:         logger,
		authMiddleware: auth,
		limiter:        limiter,
	}
}

type errorResponse struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields,omitempty"`
}

// customerOrder описывает заказ в том виде, в каком его видит клиент.
type customerOrder struct {
	ID         string           `json:"id"`
	Status     model.Status     `json:"status"`
	IsRedeemed bool             `json:"isRedeemed"`
	Email      string           `json:"email,omitempty"`
	LoginInfo  *model.LoginInfo `json:"loginInfo,omitempty"`
}

func newCustomerOrder(o *model.Order) customerOrder {
	return customerOrder{
		ID:         o.ID,
		Status:     o.Status,
		IsRedeemed: o.IsRedeemed,
		Email:      o.Email,
		LoginInfo:  o.LoginInfo,
	}
}

// ViewRedemption показывает заказ по коду погашения.
func (h *Handler) ViewRedemption(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")

	o, err := h.service.ViewRedemption(r.Context(), code)
	if err != nil {
		h.writeServiceError(w, err, "failed to redeem", zap.String("code", code))
		return
	}

	writeJSON(w, http.StatusOK, newCustomerOrder(o))
}

type confirmRequest struct {
	Email string `json:"email"`
}

type confirmResponse struct {
	Order           customerOrder `json:"order"`
	Redirect        string        `json:"redirect"`
	RedirectAfterMs int           `json:"redirectAfterMs"`
}

const (
	confirmationPath  = "/redeem/confirmation"
	confirmationDelay = 2 * time.Second
)

// ConfirmRedemption погашает код и привязывает к заказу почту клиента.
func (h *Handler) ConfirmRedemption(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")

	var req confirmRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	o, err := h.service.ConfirmRedemption(r.Context(), code, req.Email)
	if err != nil {
		h.writeServiceError(w, err, "failed to redeem", zap.String("code", code))
		return
	}

	writeJSON(w, http.StatusOK, confirmResponse{
		Order:           newCustomerOrder(o),
		Redirect:        confirmationPath,
		RedirectAfterMs: int(confirmationDelay / time.Millisecond),
	})
}

type trackRequest struct {
	Email      string `json:"email"`
	AccessCode string `json:"accessCode"`
}

type trackResponse struct {
	State            service.TrackState `json:"state"`
	RemainingSeconds int                `json:"remainingSeconds"`
	Message          string             `json:"message,omitempty"`
}

// TrackOrder обрабатывает форму отслеживания заказа с кодом доступа.
func (h *Handler) TrackOrder(w http.ResponseWriter, r *http.Request) {
	orderID := chi.URLParam(r, "id")

	var req trackRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	errs := validation.Errors{}
	errs.Required("orderId", orderID, "order id is required")
	errs.Required("email", req.Email, "email is required")
	if !validation.IsValidEmail(req.Email) {
		errs.Add("email", "invalid email")
	}
	errs.Required("accessCode", req.AccessCode, "access code is required")
	if !errs.Empty() {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "validation failed", Fields: errs})
		return
	}

	res, err := h.service.TrackOrder(r.Context(), orderID, req.Email, req.AccessCode)
	if err != nil {
		h.writeServiceError(w, err, "failed to track order", zap.String("order", orderID))
		return
	}

	writeJSON(w, http.StatusOK, trackResponse{
		State:            res.State,
		RemainingSeconds: res.RemainingSeconds,
		Message:          res.Message,
	})
}

// Health сообщает, доступно ли хранилище заказов.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Ping(r.Context()); err != nil {
		h.logger.Warn("health check failed", zap.Error(err))
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// writeServiceError переводит ошибку бизнес-логики в HTTP-ответ.
// Неизвестные ошибки пишутся в журнал, клиент получает fallback.
func (h *Handler) writeServiceError(w http.ResponseWriter, err error, fallback string, fields ...zap.Field) {
	var te *model.TransitionError

	switch {
	case errors.Is(err, service.ErrInvalidCode):
		writeError(w, http.StatusNotFound, "invalid code")
	case errors.Is(err, repository.ErrOrderNotFound):
		writeError(w, http.StatusNotFound, "order not found")
	case errors.Is(err, service.ErrAlreadyRedeemed):
		writeError(w, http.StatusConflict, "code already redeemed")
	case errors.Is(err, service.ErrInvalidEmail),
		errors.Is(err, service.ErrAccessCodeRequired),
		errors.Is(err, service.ErrCredentialsRequired),
		errors.Is(err, service.ErrMessageRequired):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.As(err, &te):
		writeError(w, http.StatusConflict, te.Error())
	case errors.Is(err, model.ErrNoAccessCode):
		writeError(w, http.StatusConflict, err.Error())
	default:
		h.logger.Error(fallback, append(fields, zap.Error(err))...)
		writeError(w, http.StatusInternalServerError, fallback)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}
