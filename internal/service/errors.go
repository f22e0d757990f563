package service

import (
	"errors"
	"fmt"
	"strings"

	"github.com/asquebay/order-query-service/internal/model"
)

var (
	// ErrNotFound: запрошенной сущности нет в хранилище
	ErrNotFound = errors.New("not found")
	// ErrValidation: входные данные нарушают правила; подробности в *ValidationError
	ErrValidation = errors.New("validation failed")
	// ErrFileFormat: файл импорта не JSON, не разбирается или пуст
	ErrFileFormat = errors.New("file format")
	// ErrProcessing: хранилище отвергло операцию (дубликат, связанные заказы)
	ErrProcessing = errors.New("data processing")
	// ErrInvalidPage: номер или размер страницы меньше единицы
	ErrInvalidPage = errors.New("invalid page")
)

// Error: ошибка сервиса с текстом для внешнего потребителя
// errors.Is сопоставляет её с Kind
type Error struct {
	Kind    error
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Kind
}

func newError(kind error, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// ValidationError несёт все нарушения, найденные в одной записи
type ValidationError struct {
	Violations []model.InvalidInputData
}

func (e *ValidationError) Error() string {
	msgs := make([]string, 0, len(e.Violations))
	for _, v := range e.Violations {
		msgs = append(msgs, v.ErrorMessage)
	}
	return "[" + strings.Join(msgs, ", ") + "]"
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

// Message возвращает текст ошибки для внешнего потребителя
// для ошибок сервиса это текст без префиксов op, для остальных err.Error()
func Message(err error) string {
	var verr *ValidationError
	if errors.As(err, &verr) {
		return verr.Error()
	}
	var serr *Error
	if errors.As(err, &serr) {
		return serr.Message
	}
	return err.Error()
}
