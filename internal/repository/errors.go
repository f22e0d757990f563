package repository

import "errors"

var (
	// ErrOrderNotFound возвращается, если заказа с таким id нет в хранилище
	ErrOrderNotFound = errors.New("order not found")
	// ErrCustomerNotFound возвращается, если клиента с таким id нет в хранилище
	ErrCustomerNotFound = errors.New("customer not found")
	// ErrConstraint: нарушено ограничение хранилища (дубликат, внешний ключ)
	ErrConstraint = errors.New("constraint violation")
)
