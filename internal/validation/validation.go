// Package validation содержит функции валидации входных данных.
package validation

import (
	"regexp"
	"strings"
)

var emailRe = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// IsValidEmail проверяет, похожа ли строка на адрес электронной почты.
func IsValidEmail(email string) bool {
	return emailRe.MatchString(email)
}

// NormalizeCode убирает пробелы вокруг кода, введённого клиентом.
func NormalizeCode(code string) string {
	return strings.TrimSpace(code)
}

// Errors содержит ошибки валидации по именам полей формы.
type Errors map[string]string

// Add добавляет ошибку поля, если для него ещё нет ошибки.
func (e Errors) Add(field, msg string) {
	if _, ok := e[field]; !ok {
		e[field] = msg
	}
}

// Required добавляет ошибку, если значение пустое после обрезки пробелов.
func (e Errors) Required(field, value, msg string) {
	if strings.TrimSpace(value) == "" {
		e.Add(field, msg)
	}
}

// Empty сообщает, что ошибок нет.
func (e Errors) Empty() bool {
	return len(e) == 0
}
