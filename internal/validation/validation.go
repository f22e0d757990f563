// Package validation проверяет входные записи заказов и клиентов
// полевые правила описаны тегами validate в internal/model и исполняются go-playground/validator,
// ссылочная проверка клиента выполняется только после успешной полевой
package validation

import (
	"context"
	"errors"
	"reflect"
	"regexp"
	"strings"
	"time"

	"cloud.google.com/go/civil"
	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"
	"github.com/shopspring/decimal"

	"github.com/asquebay/order-query-service/internal/model"
)

// CustomerNotFoundMessage: текст нарушения для несуществующего клиента
const CustomerNotFoundMessage = "Couldn't find customer"

// CustomerIDField: имя поля, к которому относится ссылочное нарушение
const CustomerIDField = "customerId"

var (
	phonePattern = regexp.MustCompile(`^380[0-9]{9}$`)
	// локальная часть ограничена 64 символами отдельной проверкой: в RE2 нет lookahead
	emailPattern = regexp.MustCompile(`^[A-Za-z0-9_-]+(\.[A-Za-z0-9_-]+)*@[^-][A-Za-z0-9-]+(\.[A-Za-z0-9-]+)*(\.[A-Za-z]{2,})$`)
)

// CustomerChecker: контракт проверки существования клиента
type CustomerChecker interface {
	ExistsByID(ctx context.Context, id int64) (bool, error)
}

// Engine применяет полевые и ссылочные правила к одной записи
type Engine struct {
	validate  *validator.Validate
	customers CustomerChecker
	now       func() time.Time
	messages  map[string]string
}

// Option настраивает Engine
type Option func(*Engine)

// WithClock подменяет источник текущего времени (нужно для проверки "не в будущем")
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		if now != nil {
			e.now = now
		}
	}
}

// WithMessages переопределяет тексты нарушений; ключ: "поле.тег", например "orderDate.pastorpresent"
func WithMessages(messages map[string]string) Option {
	return func(e *Engine) {
		for k, v := range messages {
			e.messages[k] = v
		}
	}
}

// New создаёт движок валидации
// валидатор создаётся на каждый движок, а не глобально, и передаётся явно
func New(customers CustomerChecker, opts ...Option) *Engine {
	e := &Engine{
		validate:  validator.New(validator.WithRequiredStructEnabled()),
		customers: customers,
		now:       time.Now,
		messages:  defaultMessages(),
	}
	for _, opt := range opts {
		opt(e)
	}

	// в нарушениях поле называем так же, как оно называется в JSON
	e.validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	// календарная дата валидируется как time.Time, деньги как десятичная строка
	e.validate.RegisterCustomTypeFunc(func(v reflect.Value) any {
		if d, ok := v.Interface().(civil.Date); ok {
			return d.In(time.UTC)
		}
		return nil
	}, civil.Date{})
	e.validate.RegisterCustomTypeFunc(func(v reflect.Value) any {
		if d, ok := v.Interface().(decimal.Decimal); ok {
			return d.String()
		}
		return nil
	}, decimal.Decimal{})

	// ошибки регистрации возможны только при пустом имени тега
	_ = e.validate.RegisterValidation("notblank", validators.NotBlank)
	_ = e.validate.RegisterValidation("pastorpresent", e.pastOrPresent)
	_ = e.validate.RegisterValidation("dgt", decimalGreaterThan)
	_ = e.validate.RegisterValidation("phone", func(fl validator.FieldLevel) bool {
		return phonePattern.MatchString(fl.Field().String())
	})
	_ = e.validate.RegisterValidation("email_strict", func(fl validator.FieldLevel) bool {
		email := fl.Field().String()
		at := strings.IndexByte(email, '@')
		if at < 1 || at > 64 {
			return false
		}
		return emailPattern.MatchString(email)
	})

	return e
}

// ValidateFields проверяет все полевые правила заказа
// все найденные нарушения возвращаются вместе, в порядке полей структуры
func (e *Engine) ValidateFields(req model.OrderRequest) []model.InvalidInputData {
	return e.violations(req)
}

// Validate проверяет заказ целиком: сначала полевые правила, затем существование клиента
// ошибка возвращается только при сбое хранилища клиентов, нарушения ошибкой не считаются
func (e *Engine) Validate(ctx context.Context, req model.OrderRequest) ([]model.InvalidInputData, error) {
	if violations := e.ValidateFields(req); len(violations) > 0 {
		return violations, nil
	}

	exists, err := e.customers.ExistsByID(ctx, *req.CustomerID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return []model.InvalidInputData{{
			ErrorMessage:   CustomerNotFoundMessage,
			IncorrectField: CustomerIDField,
			FieldValue:     *req.CustomerID,
		}}, nil
	}

	return nil, nil
}

// ValidateCustomer проверяет полевые правила клиента
func (e *Engine) ValidateCustomer(req model.CustomerRequest) []model.InvalidInputData {
	return e.violations(req)
}

func (e *Engine) violations(s any) []model.InvalidInputData {
	err := e.validate.Struct(s)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		// InvalidValidationError: на вход пришла не структура
		return []model.InvalidInputData{{ErrorMessage: err.Error()}}
	}

	original := reflect.Indirect(reflect.ValueOf(s))
	out := make([]model.InvalidInputData, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		out = append(out, model.InvalidInputData{
			ErrorMessage:   e.message(fe),
			IncorrectField: fe.Field(),
			FieldValue:     rejectedValue(original, fe.StructField()),
		})
	}
	return out
}

func (e *Engine) message(fe validator.FieldError) string {
	if msg, ok := e.messages[fe.Field()+"."+fe.Tag()]; ok {
		return msg
	}
	return fe.Error()
}

// pastOrPresent: дата не позже сегодняшней по часам движка
func (e *Engine) pastOrPresent(fl validator.FieldLevel) bool {
	t, ok := fl.Field().Interface().(time.Time)
	if !ok {
		return false
	}
	today := civil.DateOf(e.now())
	return !civil.DateOf(t).After(today)
}

// decimalGreaterThan: десятичное значение строго больше параметра тега
func decimalGreaterThan(fl validator.FieldLevel) bool {
	value, err := decimal.NewFromString(fl.Field().String())
	if err != nil {
		return false
	}
	bound, err := decimal.NewFromString(fl.Param())
	if err != nil {
		return false
	}
	return value.GreaterThan(bound)
}

// rejectedValue достаёт исходное значение поля без преобразований валидатора
func rejectedValue(original reflect.Value, structField string) any {
	if original.Kind() != reflect.Struct {
		return nil
	}
	f := original.FieldByName(structField)
	if !f.IsValid() {
		return nil
	}
	if f.Kind() == reflect.Ptr {
		if f.IsNil() {
			return nil
		}
		f = f.Elem()
	}
	return f.Interface()
}
