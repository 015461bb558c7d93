package model

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrMalformedPayload возвращается, если вложенный JSON-объект заказа не удаётся разобрать.
var ErrMalformedPayload = errors.New("malformed order payload")

// PayloadError описывает ошибку разбора конкретного поля заказа.
type PayloadError struct {
	Field string
	Err   error
}

// Error указывает поле и причину ошибки разбора.
func (e *PayloadError) Error() string {
	return fmt.Sprintf("%s: %s: %v", ErrMalformedPayload, e.Field, e.Err)
}

// Unwrap возвращает ErrMalformedPayload и исходную ошибку.
func (e *PayloadError) Unwrap() []error {
	return []error{ErrMalformedPayload, e.Err}
}

// LoginInfo содержит данные для входа в выданный игровой аккаунт.
type LoginInfo struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	TwoFA    string `json:"twoFA"`
}

// Text форматирует данные для входа для письма клиенту.
func (l LoginInfo) Text() string {
	var b strings.Builder
	b.WriteString("Email: " + l.Email + "\n")
	b.WriteString("Password: " + l.Password + "\n")
	if l.TwoFA != "" {
		b.WriteString("2FA: " + l.TwoFA + "\n")
	}
	return b.String()
}

// loginInfoWire допускает старые имена полей pass, twofa и guard.
type loginInfoWire struct {
	Email    *legacyText `json:"email"`
	Password *legacyText `json:"password"`
	Pass     *legacyText `json:"pass"`
	TwoFA    *legacyText `json:"twoFA"`
	Twofa    *legacyText `json:"twofa"`
	Guard    *legacyText `json:"guard"`
}

// legacyText принимает строку или число: старые записи хранили коды 2FA числами.
type legacyText string

func (t *legacyText) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*t = legacyText(s)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("expected string or number, got %s", b)
	}
	*t = legacyText(n.String())
	return nil
}

// ParseLoginInfo разбирает сохранённые данные для входа.
// Пустое значение и null дают nil без ошибки.
func ParseLoginInfo(raw []byte) (*LoginInfo, error) {
	obj, err := unwrapObject(raw)
	if err != nil {
		return nil, &PayloadError{Field: "loginInfo", Err: err}
	}
	if obj == nil {
		return nil, nil
	}

	var w loginInfoWire
	if err := json.Unmarshal(obj, &w); err != nil {
		return nil, &PayloadError{Field: "loginInfo", Err: err}
	}

	return &LoginInfo{
		Email:    firstOf(w.Email),
		Password: firstOf(w.Password, w.Pass),
		TwoFA:    firstOf(w.TwoFA, w.Twofa, w.Guard),
	}, nil
}

// AccessCode описывает одноразовый код доступа к заказу.
type AccessCode struct {
	Code      string    `json:"code"`
	Submitted bool      `json:"submitted"`
	CreatedAt time.Time `json:"createdAt"`
	Message   string    `json:"message"`
}

// ParseAccessCode разбирает сохранённый код доступа.
func ParseAccessCode(raw []byte) (*AccessCode, error) {
	obj, err := unwrapObject(raw)
	if err != nil {
		return nil, &PayloadError{Field: "accessCode", Err: err}
	}
	if obj == nil {
		return nil, nil
	}

	var ac AccessCode
	if err := json.Unmarshal(obj, &ac); err != nil {
		return nil, &PayloadError{Field: "accessCode", Err: err}
	}
	if ac.CreatedAt.IsZero() {
		return nil, &PayloadError{Field: "accessCode", Err: errors.New("createdAt is missing")}
	}

	return &ac, nil
}

// StepData хранит служебную отметку об этапе обработки заказа.
type StepData struct {
	Label     string     `json:"label,omitempty"`
	Status    string     `json:"status,omitempty"`
	Timestamp *time.Time `json:"timestamp,omitempty"`
}

// Merge накладывает непустые поля patch поверх текущей отметки и возвращает новую.
func (s *StepData) Merge(patch StepData) *StepData {
	var res StepData
	if s != nil {
		res = *s
	}
	if patch.Label != "" {
		res.Label = patch.Label
	}
	if patch.Status != "" {
		res.Status = patch.Status
	}
	if patch.Timestamp != nil {
		res.Timestamp = patch.Timestamp
	}
	return &res
}

// ParseStepData разбирает отметку этапа обработки.
func ParseStepData(field string, raw []byte) (*StepData, error) {
	obj, err := unwrapObject(raw)
	if err != nil {
		return nil, &PayloadError{Field: field, Err: err}
	}
	if obj == nil {
		return nil, nil
	}

	var sd StepData
	if err := json.Unmarshal(obj, &sd); err != nil {
		return nil, &PayloadError{Field: field, Err: err}
	}
	return &sd, nil
}

// unwrapObject возвращает JSON-объект, снимая при необходимости один уровень
// строкового кодирования, в котором объекты хранились в текстовых колонках.
func unwrapObject(raw []byte) ([]byte, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil, nil
	}

	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil, err
		}
		raw = bytes.TrimSpace([]byte(s))
		if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
			return nil, nil
		}
	}

	if raw[0] != '{' {
		return nil, errors.New("not a JSON object")
	}
	return raw, nil
}

func firstOf(vals ...*legacyText) string {
	for _, v := range vals {
		if v != nil {
			return string(*v)
		}
	}
	return ""
}
