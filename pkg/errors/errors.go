package errors

import (
	"fmt"
	"strings"
)

var (
	// Общие
	ErrNotFound   = fmt.Errorf("запись не найдена")
	ErrBadRequest = fmt.Errorf("неверный запрос")
	ErrConflict   = fmt.Errorf("конфликт данных")
	ErrInternal   = fmt.Errorf("внутренняя ошибка сервера")

	// Заявки и проформы
	ErrTicketNotFound   = fmt.Errorf("заявка не найдена: %w", ErrNotFound)
	ErrProformaNotFound = fmt.Errorf("проформа не найдена: %w", ErrNotFound)
	ErrInvalidProforma  = fmt.Errorf("проформа не принята (требуется статус Accepted)")

	// Инструменты
	ErrToolNotFound             = fmt.Errorf("инструмент не найден: %w", ErrNotFound)
	ErrToolAssignmentNotFound   = fmt.Errorf("выдача инструмента не найдена: %w", ErrNotFound)
	ErrInsufficientToolQuantity = fmt.Errorf("недостаточно инструмента на складе")
	ErrInvalidReturnQuantity    = fmt.Errorf("возвращаемое количество превышает выданное")

	// Оплата сторонних механиков
	ErrMechanicNotFound = fmt.Errorf("сторонний механик не найден по заявке: %w", ErrNotFound)
)

// ValidationError перечисляет все поля, не прошедшие проверку.
type ValidationError struct {
	Fields []string
}

func (e *ValidationError) Error() string {
	return "не заполнены обязательные поля: " + strings.Join(e.Fields, ", ")
}

func NewValidationError(fields ...string) *ValidationError {
	return &ValidationError{Fields: fields}
}

type InvalidInputError struct {
	Message string
}

func (e *InvalidInputError) Error() string { return e.Message }

func NewInvalidInputError(format string, args ...interface{}) error {
	return &InvalidInputError{Message: fmt.Sprintf(format, args...)}
}

// HttpError - ошибка с уже определенным HTTP-кодом и сообщением для клиента.
type HttpError struct {
	Code    int
	Message string
	Err     error
	Details interface{}
}

func (e *HttpError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *HttpError) Unwrap() error { return e.Err }

func NewHttpError(code int, message string, err error, details interface{}) *HttpError {
	return &HttpError{Code: code, Message: message, Err: err, Details: details}
}
