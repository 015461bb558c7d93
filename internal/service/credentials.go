package service

import (
	"context"
	"strings"

	"github.com/mmeshcher/cheapplay/internal/model"
)

// DeliverCredentials прикрепляет к заказу данные для входа и завершает его.
// Почта и пароль обязательны, код 2FA можно не указывать.
func (s *Service) DeliverCredentials(ctx context.Context, orderID string, info model.LoginInfo) (*model.Order, error) {
	if strings.TrimSpace(info.Email) == "" || strings.TrimSpace(info.Password) == "" {
		return nil, ErrCredentialsRequired
	}

	o, err := s.repo.GetOrderByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	prev := o.Status
	if err := o.AttachCredentials(info, s.now()); err != nil {
		return nil, err
	}

	if err := s.save(ctx, o, prev); err != nil {
		return nil, err
	}
	return o, nil
}

// CancelOrder отменяет заказ вручную.
func (s *Service) CancelOrder(ctx context.Context, orderID string) (*model.Order, error) {
	return s.transition(ctx, orderID, model.StatusCancelled)
}

// MarkDelivered помечает завершённый заказ выданным, после чего код погашения перестаёт работать.
func (s *Service) MarkDelivered(ctx context.Context, orderID string) (*model.Order, error) {
	return s.transition(ctx, orderID, model.StatusDelivered)
}

func (s *Service) transition(ctx context.Context, orderID string, to model.Status) (*model.Order, error) {
	o, err := s.repo.GetOrderByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	prev := o.Status
	if err := o.TransitionTo(to, s.now()); err != nil {
		return nil, err
	}

	if err := s.save(ctx, o, prev); err != nil {
		return nil, err
	}
	return o, nil
}
