// Package filter строит плоский конъюнктивный фильтр заказов по фиксированному набору критериев
//
// Критерий: замкнутый набор из четырёх вариантов, каждый со своим типизированным значением.
// Фильтр умеет опускаться в SQL (squirrel) для postgres и в предикат для in-memory хранилища.
// SQL-выражения рассчитаны на выборку вида `orders o JOIN customers c ON c.id = o.customer_id`
package filter

import (
	"strings"
	"time"

	"cloud.google.com/go/civil"
	"github.com/Masterminds/squirrel"
	"github.com/shopspring/decimal"

	"github.com/asquebay/order-query-service/internal/model"
)

// ключи критериев во входной карте
const (
	KeyCustomerID  = "customerId"
	KeyOrderDate   = "orderDate"
	KeyDescription = "description"
	KeyTotalPrice  = "totalPrice"
)

// колонки выборки orders o JOIN customers c
const (
	columnCustomerID  = "c.id"
	columnOrderDate   = "o.order_date"
	columnDescription = "o.description"
	columnTotalPrice  = "o.total_price"
)

// Criterion: одно условие фильтра
// неэкспортируемые методы закрывают набор вариантов внутри пакета
type Criterion interface {
	Key() string
	sqlizer() squirrel.Sqlizer
	match(order model.Order) bool
}

// Criteria: список условий, объединяемых через AND
type Criteria []Criterion

// Filter собирает критерии в готовый фильтр
func (c Criteria) Filter() Filter {
	return NewBuilder().Add(c...).Build()
}

// CustomerIDEquals: заказ принадлежит клиенту с указанным id
type CustomerIDEquals struct {
	ID int64
}

func (CustomerIDEquals) Key() string { return KeyCustomerID }

func (c CustomerIDEquals) sqlizer() squirrel.Sqlizer {
	return squirrel.Eq{columnCustomerID: c.ID}
}

func (c CustomerIDEquals) match(order model.Order) bool {
	return order.Customer.ID == c.ID
}

// OrderDateEquals: дата заказа совпадает с указанной
type OrderDateEquals struct {
	Date civil.Date
}

func (OrderDateEquals) Key() string { return KeyOrderDate }

func (c OrderDateEquals) sqlizer() squirrel.Sqlizer {
	// pgx не знает civil.Date, колонка date принимает time.Time
	return squirrel.Eq{columnOrderDate: c.Date.In(time.UTC)}
}

func (c OrderDateEquals) match(order model.Order) bool {
	return order.OrderDate == c.Date
}

// DescriptionContains: описание содержит подстроку (с учётом регистра)
type DescriptionContains struct {
	Text string
}

func (DescriptionContains) Key() string { return KeyDescription }

func (c DescriptionContains) sqlizer() squirrel.Sqlizer {
	return squirrel.Like{columnDescription: "%" + escapeLike(c.Text) + "%"}
}

func (c DescriptionContains) match(order model.Order) bool {
	return strings.Contains(order.Description, c.Text)
}

// TotalPriceEquals: сумма заказа численно равна указанной
type TotalPriceEquals struct {
	Price decimal.Decimal
}

func (TotalPriceEquals) Key() string { return KeyTotalPrice }

func (c TotalPriceEquals) sqlizer() squirrel.Sqlizer {
	return squirrel.Eq{columnTotalPrice: c.Price}
}

func (c TotalPriceEquals) match(order model.Order) bool {
	return order.TotalPrice.Equal(c.Price)
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// escapeLike экранирует спецсимволы LIKE, чтобы подстрока искалась буквально
func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
