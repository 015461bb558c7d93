// Package service реализует бизнес-логику витрины cheapplay.
package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/mmeshcher/cheapplay/internal/metrics"
	"github.com/mmeshcher/cheapplay/internal/model"
	"github.com/mmeshcher/cheapplay/internal/repository"
)

var (
	// ErrInvalidCode возвращается, если код погашения не найден.
	ErrInvalidCode = errors.New("invalid redemption code")
	// ErrAlreadyRedeemed возвращается при повторном погашении кода.
	ErrAlreadyRedeemed = errors.New("code already redeemed")
	// ErrInvalidEmail возвращается для пустого или некорректного адреса почты.
	ErrInvalidEmail = errors.New("invalid email")
	// ErrAccessCodeRequired возвращается, если код доступа не указан.
	ErrAccessCodeRequired = errors.New("access code is required")
	// ErrCredentialsRequired возвращается, если не заполнены почта или пароль аккаунта.
	ErrCredentialsRequired = errors.New("email and password are required")
	// ErrMessageRequired возвращается, если ответ администратора пуст.
	ErrMessageRequired = errors.New("message is required")
)

const defaultListLimit = 100

// Repository описывает контракт доступа к заказам, используемый сервисом.
type Repository interface {
	Ping(ctx context.Context) error
	Close() error
	CreateOrder(ctx context.Context, o *model.Order) error
	GetOrderByID(ctx context.Context, id string) (*model.Order, error)
	GetOrderByCode(ctx context.Context, code string) (*model.Order, error)
	UpdateOrder(ctx context.Context, o *model.Order) error
	ListOrders(ctx context.Context, status model.Status, limit int) ([]model.Order, error)
}

// Service содержит бизнес-логику витрины cheapplay.
type Service struct {
	repo Repository
	now  func() time.Time
}

// NewService создаёт новый сервис с указанным репозиторием.
func NewService(repo Repository) *Service {
	return &Service{
		repo: repo,
		now:  time.Now,
	}
}

// Close закрывает ресурсы сервиса.
func (s *Service) Close() error {
	if s.repo != nil {
		return s.repo.Close()
	}
	return nil
}

// CreateOrder заводит новый заказ в статусе pending.
func (s *Service) CreateOrder(ctx context.Context, code, email string) (*model.Order, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, ErrInvalidCode
	}

	now := s.now().UTC()
	o := &model.Order{
		ID:        uuid.NewString(),
		Code:      code,
		Email:     strings.TrimSpace(email),
		Status:    model.StatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.repo.CreateOrder(ctx, o); err != nil {
		return nil, err
	}
	return o, nil
}

// Ping проверяет доступность хранилища заказов.
func (s *Service) Ping(ctx context.Context) error {
	return s.repo.Ping(ctx)
}

// GetOrder возвращает заказ по идентификатору.
func (s *Service) GetOrder(ctx context.Context, id string) (*model.Order, error) {
	return s.repo.GetOrderByID(ctx, id)
}

// ListOrders возвращает последние заказы, при необходимости с фильтром по статусу.
func (s *Service) ListOrders(ctx context.Context, status model.Status, limit int) ([]model.Order, error) {
	if limit <= 0 || limit > defaultListLimit {
		limit = defaultListLimit
	}
	return s.repo.ListOrders(ctx, status, limit)
}

// save записывает заказ и учитывает смену статуса в метриках.
func (s *Service) save(ctx context.Context, o *model.Order, prev model.Status) error {
	if err := s.repo.UpdateOrder(ctx, o); err != nil {
		return err
	}
	if o.Status != prev {
		metrics.IncTransition(string(o.Status))
	}
	return nil
}

func isNotFound(err error) bool {
	return errors.Is(err, repository.ErrOrderNotFound)
}
