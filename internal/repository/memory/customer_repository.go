package memory

import (
	"context"
	"fmt"

	"github.com/asquebay/order-query-service/internal/model"
	"github.com/asquebay/order-query-service/internal/repository"
)

// CustomerRepository: in-memory хранилище клиентов
type CustomerRepository struct {
	s *Store
}

// NewCustomerRepository возвращает репозиторий клиентов поверх общего хранилища
func NewCustomerRepository(s *Store) *CustomerRepository {
	return &CustomerRepository{s: s}
}

// FindAll возвращает всех клиентов по возрастанию id
func (r *CustomerRepository) FindAll(_ context.Context) ([]model.Customer, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := make([]model.Customer, 0, len(r.s.customers))
	for id := int64(1); id < r.s.nextCustomerID; id++ {
		if c, ok := r.s.customers[id]; ok {
			out = append(out, c)
		}
	}
	return out, nil
}

func (r *CustomerRepository) FindByID(_ context.Context, id int64) (model.Customer, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	c, ok := r.s.customers[id]
	if !ok {
		return model.Customer{}, repository.ErrCustomerNotFound
	}
	return c, nil
}

func (r *CustomerRepository) ExistsByID(_ context.Context, id int64) (bool, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	_, ok := r.s.customers[id]
	return ok, nil
}

// Save вставляет нового клиента (ID == 0) или перезаписывает существующего
// email уникален, как и в postgres-схеме
func (r *CustomerRepository) Save(_ context.Context, customer model.Customer) (model.Customer, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for id, c := range r.s.customers {
		if id != customer.ID && c.Email == customer.Email {
			return model.Customer{}, fmt.Errorf("%w: email %q already exists", repository.ErrConstraint, customer.Email)
		}
	}

	if customer.ID == 0 {
		customer.ID = r.s.nextCustomerID
		r.s.nextCustomerID++
	} else if _, ok := r.s.customers[customer.ID]; !ok {
		return model.Customer{}, repository.ErrCustomerNotFound
	}

	r.s.customers[customer.ID] = customer
	return customer, nil
}

// Delete удаляет клиента; клиента с заказами удалить нельзя (внешний ключ)
func (r *CustomerRepository) Delete(_ context.Context, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.customers[id]; !ok {
		return repository.ErrCustomerNotFound
	}
	for _, row := range r.s.orders {
		if row.customerID == id {
			return fmt.Errorf("%w: customer %d has orders", repository.ErrConstraint, id)
		}
	}
	delete(r.s.customers, id)
	return nil
}
