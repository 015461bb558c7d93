package model

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrUnknownStatus возвращается для строки, не являющейся статусом заказа.
	ErrUnknownStatus = errors.New("unknown order status")
	// ErrIllegalTransition возвращается при недопустимой смене статуса.
	ErrIllegalTransition = errors.New("illegal status transition")
	// ErrNoAccessCode возвращается, если у заказа нет выданного кода доступа.
	ErrNoAccessCode = errors.New("order has no access code")
)

// TransitionError описывает отклонённую смену статуса.
type TransitionError struct {
	From Status
	To   Status
}

// Error описывает отклонённый переход.
func (e *TransitionError) Error() string {
	return fmt.Sprintf("%s: %s -> %s", ErrIllegalTransition, e.From, e.To)
}

// Unwrap позволяет сравнивать ошибку с ErrIllegalTransition.
func (e *TransitionError) Unwrap() error {
	return ErrIllegalTransition
}

var transitions = map[Status][]Status{
	StatusPending:    {StatusProcessing, StatusCancelled},
	StatusProcessing: {StatusProcessing, StatusCompleted, StatusCancelled},
	StatusCompleted:  {StatusCompleted, StatusCancelled, StatusDelivered},
}

// CanTransition сообщает, разрешён ли переход из одного статуса в другой.
func CanTransition(from, to Status) bool {
	for _, s := range transitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// TransitionTo меняет статус заказа, если переход разрешён.
func (o *Order) TransitionTo(next Status, now time.Time) error {
	if !CanTransition(o.Status, next) {
		return &TransitionError{From: o.Status, To: next}
	}

	o.Status = next
	o.UpdatedAt = now.UTC()

	return nil
}
