package service

import (
	"context"

	"github.com/mmeshcher/cheapplay/internal/metrics"
	"github.com/mmeshcher/cheapplay/internal/model"
	"github.com/mmeshcher/cheapplay/internal/validation"
)

// ViewRedemption возвращает заказ по коду погашения.
// Заказ в статусе pending при первом просмотре переводится в processing.
func (s *Service) ViewRedemption(ctx context.Context, code string) (*model.Order, error) {
	o, err := s.findByCode(ctx, code)
	if err != nil {
		return nil, err
	}

	if o.Status == model.StatusPending {
		if err := o.TransitionTo(model.StatusProcessing, s.now()); err != nil {
			return nil, err
		}
		if err := s.save(ctx, o, model.StatusPending); err != nil {
			metrics.IncRedemption("error")
			return nil, err
		}
	}

	metrics.IncRedemption("viewed")
	return o, nil
}

// ConfirmRedemption погашает код: сохраняет почту клиента и переводит заказ в обработку.
func (s *Service) ConfirmRedemption(ctx context.Context, code, email string) (*model.Order, error) {
	if !validation.IsValidEmail(email) {
		return nil, ErrInvalidEmail
	}

	o, err := s.findByCode(ctx, code)
	if err != nil {
		return nil, err
	}

	if o.IsRedeemed {
		metrics.IncRedemption("already_redeemed")
		return nil, ErrAlreadyRedeemed
	}

	prev := o.Status
	if err := o.Redeem(email, s.now()); err != nil {
		return nil, err
	}

	if err := s.save(ctx, o, prev); err != nil {
		metrics.IncRedemption("error")
		return nil, err
	}

	metrics.IncRedemption("redeemed")
	return o, nil
}

// findByCode ищет заказ по коду и отсекает уже выданные заказы.
func (s *Service) findByCode(ctx context.Context, code string) (*model.Order, error) {
	code = validation.NormalizeCode(code)
	if code == "" {
		metrics.IncRedemption("invalid_code")
		return nil, ErrInvalidCode
	}

	o, err := s.repo.GetOrderByCode(ctx, code)
	if err != nil {
		if isNotFound(err) {
			metrics.IncRedemption("invalid_code")
			return nil, ErrInvalidCode
		}
		metrics.IncRedemption("error")
		return nil, err
	}

	if o.Status == model.StatusDelivered {
		metrics.IncRedemption("already_redeemed")
		return nil, ErrAlreadyRedeemed
	}

	return o, nil
}
