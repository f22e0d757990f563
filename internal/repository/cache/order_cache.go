package cache

import (
	"sync"

	"github.com/asquebay/order-query-service/internal/model"
)

// OrderCache: потокобезопасный in-memory кэш полных проекций заказов
type OrderCache struct {
	// ключ int64 (id заказа), значение model.RetrieveOrderResponse
	storage sync.Map
}

// NewOrderCache создаёт новый экземпляр кэша
func NewOrderCache() *OrderCache {
	return &OrderCache{}
}

// Set добавляет или обновляет заказ в кэше
func (c *OrderCache) Set(order model.RetrieveOrderResponse) {
	c.storage.Store(order.ID, order)
}

// Get извлекает заказ из кэша по id
// возвращает заказ и true, если он найден, иначе пустую структуру и false
func (c *OrderCache) Get(id int64) (model.RetrieveOrderResponse, bool) {
	value, ok := c.storage.Load(id)
	if !ok {
		return model.RetrieveOrderResponse{}, false
	}

	order, ok := value.(model.RetrieveOrderResponse)
	return order, ok
}

// Delete убирает заказ из кэша
func (c *OrderCache) Delete(id int64) {
	c.storage.Delete(id)
}

// EvictCustomer убирает из кэша все заказы клиента: их проекции содержат устаревшие данные клиента
func (c *OrderCache) EvictCustomer(customerID int64) {
	c.storage.Range(func(key, value any) bool {
		if order, ok := value.(model.RetrieveOrderResponse); ok && order.Customer.ID == customerID {
			c.storage.Delete(key)
		}
		return true
	})
}

// LoadAll загружает в кэш срез заказов
// используется для первоначального заполнения кэша при старте сервиса
func (c *OrderCache) LoadAll(orders []model.RetrieveOrderResponse) {
	for _, order := range orders {
		c.Set(order)
	}
}
