// Package memory: in-memory реализация хранилищ заказов и клиентов
// используется в тестах и при storage.driver=memory; повторяет поведение postgres-реализации:
// автоинкремент id, внешний ключ заказа на клиента, уникальный email клиента
package memory

import (
	"sort"
	"sync"

	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"

	"github.com/asquebay/order-query-service/internal/model"
)

// orderRow хранит заказ в том виде, в каком он лежит в "таблице"; клиент хранится ссылкой
type orderRow struct {
	id            int64
	customerID    int64
	orderDate     civil.Date
	statusPayment bool
	description   string
	totalPrice    decimal.Decimal
}

// Store: общее состояние обоих репозиториев, одна блокировка на обе таблицы
type Store struct {
	mu             sync.RWMutex
	customers      map[int64]model.Customer
	orders         map[int64]orderRow
	nextCustomerID int64
	nextOrderID    int64
}

// NewStore создаёт пустое хранилище
func NewStore() *Store {
	return &Store{
		customers:      make(map[int64]model.Customer),
		orders:         make(map[int64]orderRow),
		nextCustomerID: 1,
		nextOrderID:    1,
	}
}

// joinOrder собирает заказ с актуальными данными клиента; вызывать под блокировкой
func (s *Store) joinOrder(row orderRow) model.Order {
	return model.Order{
		ID:            row.id,
		Customer:      s.customers[row.customerID],
		OrderDate:     row.orderDate,
		StatusPayment: row.statusPayment,
		Description:   row.description,
		TotalPrice:    row.totalPrice,
	}
}

// sortedOrderIDs задаёт "естественный" порядок выдачи по возрастанию id; вызывать под блокировкой
func (s *Store) sortedOrderIDs() []int64 {
	ids := make([]int64, 0, len(s.orders))
	for id := range s.orders {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}
