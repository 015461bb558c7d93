// Package model содержит доменные сущности витрины cheapplay.
package model

import (
	"fmt"
	"strings"
	"time"
)

// Status описывает статус заказа.
type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusCancelled  Status = "cancelled"
	StatusDelivered  Status = "delivered"
)

// ParseStatus приводит строку к известному статусу заказа.
func ParseStatus(s string) (Status, error) {
	st := Status(strings.ToLower(strings.TrimSpace(s)))
	switch st {
	case StatusPending, StatusProcessing, StatusCompleted, StatusCancelled, StatusDelivered:
		return st, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownStatus, s)
}

// Order описывает заказ на выдачу игрового аккаунта.
type Order struct {
	ID         string
	Code       string
	Email      string
	Status     Status
	IsRedeemed bool
	LoginInfo  *LoginInfo
	AccessCode *AccessCode
	Processing *StepData
	Completed  *StepData
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Redeem отмечает код погашенным и переводит заказ в обработку.
// Поля IsRedeemed и Status меняются только вместе.
func (o *Order) Redeem(email string, now time.Time) error {
	if err := o.TransitionTo(StatusProcessing, now); err != nil {
		return err
	}

	o.Email = email
	o.IsRedeemed = true

	ts := now.UTC()
	o.Processing = o.Processing.Merge(StepData{Status: string(StatusCompleted), Timestamp: &ts})
	o.Completed = o.Completed.Merge(StepData{Status: string(StatusProcessing)})

	return nil
}

// AttachCredentials сохраняет данные для входа и завершает заказ.
func (o *Order) AttachCredentials(info LoginInfo, now time.Time) error {
	if err := o.TransitionTo(StatusCompleted, now); err != nil {
		return err
	}

	o.LoginInfo = &info

	ts := now.UTC()
	o.Completed = &StepData{
		Label:     string(StatusCompleted),
		Status:    string(StatusCompleted),
		Timestamp: &ts,
	}

	return nil
}

// IssueAccessCode записывает новый одноразовый код доступа.
func (o *Order) IssueAccessCode(code, email string, now time.Time) {
	o.AccessCode = &AccessCode{
		Code:      code,
		Submitted: false,
		CreatedAt: now.UTC(),
		Message:   "",
	}
	o.Email = email
	o.UpdatedAt = now.UTC()
}

// ClearAccessCode возвращает заказ в состояние, в котором можно выпустить новый код.
func (o *Order) ClearAccessCode(now time.Time) {
	o.AccessCode = nil
	o.UpdatedAt = now.UTC()
}

// AnswerAccessCode помечает код доступа обработанным и сохраняет ответ администратора.
func (o *Order) AnswerAccessCode(message string, now time.Time) error {
	if o.AccessCode == nil {
		return ErrNoAccessCode
	}

	o.AccessCode.Submitted = true
	o.AccessCode.Message = message
	o.UpdatedAt = now.UTC()

	return nil
}
