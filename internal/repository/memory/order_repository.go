package memory

import (
	"context"
	"fmt"

	"github.com/asquebay/order-query-service/internal/filter"
	"github.com/asquebay/order-query-service/internal/model"
	"github.com/asquebay/order-query-service/internal/repository"
)

// OrderRepository: in-memory хранилище заказов
type OrderRepository struct {
	s *Store
}

// NewOrderRepository возвращает репозиторий заказов поверх общего хранилища
func NewOrderRepository(s *Store) *OrderRepository {
	return &OrderRepository{s: s}
}

// Save вставляет новый заказ (ID == 0) или перезаписывает существующий
func (r *OrderRepository) Save(_ context.Context, order model.Order) (model.Order, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.customers[order.Customer.ID]; !ok {
		return model.Order{}, fmt.Errorf("%w: customer %d does not exist", repository.ErrConstraint, order.Customer.ID)
	}

	if order.ID == 0 {
		order.ID = r.s.nextOrderID
		r.s.nextOrderID++
	} else if _, ok := r.s.orders[order.ID]; !ok {
		return model.Order{}, repository.ErrOrderNotFound
	}

	row := orderRow{
		id:            order.ID,
		customerID:    order.Customer.ID,
		orderDate:     order.OrderDate,
		statusPayment: order.StatusPayment,
		description:   order.Description,
		totalPrice:    order.TotalPrice,
	}
	r.s.orders[row.id] = row

	return r.s.joinOrder(row), nil
}

// FindByID возвращает заказ или ErrOrderNotFound
func (r *OrderRepository) FindByID(_ context.Context, id int64) (model.Order, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	row, ok := r.s.orders[id]
	if !ok {
		return model.Order{}, repository.ErrOrderNotFound
	}
	return r.s.joinOrder(row), nil
}

// Delete удаляет заказ или возвращает ErrOrderNotFound
func (r *OrderRepository) Delete(_ context.Context, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.orders[id]; !ok {
		return repository.ErrOrderNotFound
	}
	delete(r.s.orders, id)
	return nil
}

// Find возвращает заказы, прошедшие фильтр, и их общее количество
// при page == nil отдаются все совпадения
func (r *OrderRepository) Find(_ context.Context, f filter.Filter, page *model.PageRequest) ([]model.Order, int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	matched := make([]model.Order, 0)
	for _, id := range r.s.sortedOrderIDs() {
		order := r.s.joinOrder(r.s.orders[id])
		if f.Match(order) {
			matched = append(matched, order)
		}
	}
	total := int64(len(matched))

	if page == nil {
		return matched, total, nil
	}

	offset := page.Offset()
	if offset < 0 || offset >= len(matched) {
		return []model.Order{}, total, nil
	}
	end := offset + min(page.Size, len(matched)-offset)
	return matched[offset:end], total, nil
}
