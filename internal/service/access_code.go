package service

import (
	"context"
	"strings"
	"time"

	"github.com/mmeshcher/cheapplay/internal/metrics"
	"github.com/mmeshcher/cheapplay/internal/model"
	"github.com/mmeshcher/cheapplay/internal/validation"
)

// AccessCodeWindow задаёт время, в течение которого выданный код доступа ждёт ответа.
const AccessCodeWindow = 20 * time.Minute

// TrackState описывает состояние формы отслеживания заказа.
type TrackState string

const (
	TrackCountdown      TrackState = "countdown"
	TrackAnswered       TrackState = "answered"
	TrackAwaitingAnswer TrackState = "awaiting_answer"
	TrackExpired        TrackState = "expired"
)

// TrackResult описывает результат отправки формы отслеживания заказа.
type TrackResult struct {
	State            TrackState
	RemainingSeconds int
	Message          string
}

// TrackOrder обрабатывает отправку формы отслеживания: выдаёт код доступа,
// показывает ответ администратора или сбрасывает просроченный код.
func (s *Service) TrackOrder(ctx context.Context, orderID, email, accessCode string) (*TrackResult, error) {
	if !validation.IsValidEmail(email) {
		return nil, ErrInvalidEmail
	}
	if strings.TrimSpace(accessCode) == "" {
		return nil, ErrAccessCodeRequired
	}

	o, err := s.repo.GetOrderByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	res, err := s.trackOrder(ctx, o, email, accessCode, now)
	if err != nil {
		return nil, err
	}

	metrics.IncAccessCodeCheck(string(res.State))
	return res, nil
}

func (s *Service) trackOrder(ctx context.Context, o *model.Order, email, accessCode string, now time.Time) (*TrackResult, error) {
	ac := o.AccessCode

	if ac == nil {
		o.IssueAccessCode(accessCode, email, now)
		if err := s.save(ctx, o, o.Status); err != nil {
			return nil, err
		}
		return &TrackResult{
			State:            TrackCountdown,
			RemainingSeconds: int(AccessCodeWindow / time.Second),
		}, nil
	}

	if ac.Submitted {
		if ac.Message != "" {
			return &TrackResult{State: TrackAnswered, Message: ac.Message}, nil
		}
		return &TrackResult{State: TrackAwaitingAnswer}, nil
	}

	elapsed := now.Sub(ac.CreatedAt)
	if elapsed > AccessCodeWindow {
		o.ClearAccessCode(now)
		if err := s.save(ctx, o, o.Status); err != nil {
			return nil, err
		}
		return &TrackResult{State: TrackExpired}, nil
	}

	return &TrackResult{
		State:            TrackCountdown,
		RemainingSeconds: remainingSeconds(elapsed),
	}, nil
}

// remainingSeconds округляет остаток окна вниз до целых секунд.
func remainingSeconds(elapsed time.Duration) int {
	left := AccessCodeWindow - elapsed
	if left < 0 {
		return 0
	}
	// createdAt из будущего (расхождение часов) не продлевает окно.
	if left > AccessCodeWindow {
		left = AccessCodeWindow
	}
	return int(left / time.Second)
}

// RespondAccessCode сохраняет ответ администратора на выданный код доступа.
func (s *Service) RespondAccessCode(ctx context.Context, orderID, message string) (*model.Order, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return nil, ErrMessageRequired
	}

	o, err := s.repo.GetOrderByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if err := o.AnswerAccessCode(message, s.now()); err != nil {
		return nil, err
	}

	if err := s.save(ctx, o, o.Status); err != nil {
		return nil, err
	}
	return o, nil
}
