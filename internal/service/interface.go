package service

import (
	"context"
	"io"
	"time"

	"github.com/asquebay/order-query-service/internal/filter"
	"github.com/asquebay/order-query-service/internal/model"
)

// OrderRepository определяет контракт для хранилища заказов
// Find возвращает заказы в порядке id; при page == nil: все подходящие без подсчёта
type OrderRepository interface {
	Save(ctx context.Context, order model.Order) (model.Order, error)
	FindByID(ctx context.Context, id int64) (model.Order, error)
	Delete(ctx context.Context, id int64) error
	Find(ctx context.Context, f filter.Filter, page *model.PageRequest) ([]model.Order, int64, error)
}

// CustomerRepository определяет контракт для хранилища клиентов
type CustomerRepository interface {
	FindAll(ctx context.Context) ([]model.Customer, error)
	FindByID(ctx context.Context, id int64) (model.Customer, error)
	ExistsByID(ctx context.Context, id int64) (bool, error)
	Save(ctx context.Context, customer model.Customer) (model.Customer, error)
	Delete(ctx context.Context, id int64) error
}

// OrderCache определяет контракт для in-memory кэша заказов
type OrderCache interface {
	Set(order model.RetrieveOrderResponse)
	Get(id int64) (model.RetrieveOrderResponse, bool)
	Delete(id int64)
	EvictCustomer(customerID int64)
	LoadAll(orders []model.RetrieveOrderResponse)
}

// OrderDecoder разбирает файл импорта
type OrderDecoder interface {
	IsJSON(name string) bool
	Decode(r io.Reader) ([]model.OrderRequest, error)
}

// Validator проверяет входные записи
type Validator interface {
	ValidateFields(req model.OrderRequest) []model.InvalidInputData
	Validate(ctx context.Context, req model.OrderRequest) ([]model.InvalidInputData, error)
	ValidateCustomer(req model.CustomerRequest) []model.InvalidInputData
}

// ImportMetrics собирает метрики пакетного импорта
type ImportMetrics interface {
	RecordImported()
	RecordRejected(fields []string)
	RecordBatch(outcome string, duration time.Duration)
}
