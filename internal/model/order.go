package model

import (
	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"
)

// Order представляет сохранённый заказ вместе с клиентом, которому он принадлежит
type Order struct {
	ID            int64
	Customer      Customer
	OrderDate     civil.Date
	StatusPayment bool
	Description   string
	TotalPrice    decimal.Decimal
}

// OrderRequest: входные данные для создания или обновления заказа
// указатели позволяют отличить отсутствующее поле от нулевого значения,
// теги validate проверяются движком валидации (internal/validation)
type OrderRequest struct {
	CustomerID    *int64           `json:"customerId" validate:"required,gt=0"`
	OrderDate     *civil.Date      `json:"orderDate" validate:"required,pastorpresent"`
	StatusPayment *bool            `json:"statusPayment" validate:"required"`
	Description   string           `json:"description" validate:"notblank,max=255"`
	TotalPrice    *decimal.Decimal `json:"totalPrice" validate:"required,dgt=0"`
}

// OrderResponse: краткая проекция заказа, её же выгружаем в отчёт
type OrderResponse struct {
	CustomerID  int64           `json:"customerId"`
	OrderDate   civil.Date      `json:"orderDate"`
	Description string          `json:"description"`
	TotalPrice  decimal.Decimal `json:"totalPrice"`
}

// RetrieveOrderResponse: полная проекция заказа с данными клиента
type RetrieveOrderResponse struct {
	ID            int64            `json:"id"`
	Customer      CustomerResponse `json:"customer"`
	StatusPayment bool             `json:"statusPayment"`
	OrderDate     civil.Date       `json:"orderDate"`
	Description   string           `json:"description"`
	TotalPrice    decimal.Decimal  `json:"totalPrice"`
}

// ToResponse строит краткую проекцию заказа
func (o Order) ToResponse() OrderResponse {
	return OrderResponse{
		CustomerID:  o.Customer.ID,
		OrderDate:   o.OrderDate,
		Description: o.Description,
		TotalPrice:  o.TotalPrice,
	}
}

// ToRetrieveResponse строит полную проекцию заказа
func (o Order) ToRetrieveResponse() RetrieveOrderResponse {
	return RetrieveOrderResponse{
		ID:            o.ID,
		Customer:      o.Customer.ToResponse(),
		StatusPayment: o.StatusPayment,
		OrderDate:     o.OrderDate,
		Description:   o.Description,
		TotalPrice:    o.TotalPrice,
	}
}

// Apply переносит поля запроса в заказ
// вызывать только после успешной валидации: обязательные указатели должны быть заполнены
func (r OrderRequest) Apply(order *Order, customer Customer) {
	order.Customer = customer
	order.OrderDate = *r.OrderDate
	order.StatusPayment = *r.StatusPayment
	order.Description = r.Description
	order.TotalPrice = *r.TotalPrice
}
