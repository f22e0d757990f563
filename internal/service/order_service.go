package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/asquebay/order-query-service/internal/filter"
	"github.com/asquebay/order-query-service/internal/model"
	"github.com/asquebay/order-query-service/internal/repository"
)

// OrderService инкапсулирует бизнес-логику работы с заказами:
// одиночные операции, постраничный поиск по критериям и пакетный импорт
type OrderService struct {
	orders    OrderRepository
	customers CustomerRepository
	cache     OrderCache
	validator Validator
	decoder   OrderDecoder
	metrics   ImportMetrics
	log       *slog.Logger
}

// NewOrderService создаёт новый экземпляр сервиса заказов
// он принимает интерфейсы, а не конкретные типы, для гибкости и тестируемости
// metrics может быть nil
func NewOrderService(
	orders OrderRepository,
	customers CustomerRepository,
	cache OrderCache,
	validator Validator,
	decoder OrderDecoder,
	metrics ImportMetrics,
	log *slog.Logger,
) *OrderService {
	if metrics == nil {
		metrics = noopMetrics{}
	}
	return &OrderService{
		orders:    orders,
		customers: customers,
		cache:     cache,
		validator: validator,
		decoder:   decoder,
		metrics:   metrics,
		log:       log,
	}
}

// AddOrder проверяет поля запроса, находит клиента и сохраняет заказ
// в случае успеха заказ попадает и в кэш
func (s *OrderService) AddOrder(ctx context.Context, req model.OrderRequest) (model.OrderResponse, error) {
	const op = "service.OrderService.AddOrder"

	if violations := s.validator.ValidateFields(req); len(violations) > 0 {
		return model.OrderResponse{}, fmt.Errorf("%s: %w", op, &ValidationError{Violations: violations})
	}

	saved, err := s.createOrder(ctx, req)
	if err != nil {
		return model.OrderResponse{}, fmt.Errorf("%s: %w", op, err)
	}

	return saved.ToResponse(), nil
}

// createOrder: общий путь создания для AddOrder и импорта; поля запроса уже проверены
func (s *OrderService) createOrder(ctx context.Context, req model.OrderRequest) (model.Order, error) {
	log := s.log.With(slog.String("op", "service.OrderService.createOrder"))

	customer, err := findCustomer(ctx, s.customers, *req.CustomerID)
	if err != nil {
		return model.Order{}, err
	}

	var order model.Order
	req.Apply(&order, customer)

	// 1. Сохраняем в хранилище. Это основной источник правды
	saved, err := s.orders.Save(ctx, order)
	if err != nil {
		if errors.Is(err, repository.ErrConstraint) {
			return model.Order{}, newError(ErrProcessing, "Failed to save order. %s", constraintDetail(err))
		}
		log.Error("failed to save order to repository", slog.String("error", err.Error()))
		return model.Order{}, err
	}

	// 2. Если сохранилось успешно, обновляем кэш
	s.cache.Set(saved.ToRetrieveResponse())
	log.Debug("order created and cached", slog.Int64("order_id", saved.ID))

	return saved, nil
}

// GetOrder получает заказ по его id
// сначала ищет в кэше, и только если там нет — обращается к хранилищу
func (s *OrderService) GetOrder(ctx context.Context, id int64) (model.RetrieveOrderResponse, error) {
	const op = "service.OrderService.GetOrder"
	log := s.log.With(slog.String("op", op), slog.Int64("order_id", id))

	// 1. Пытаемся получить из кэша
	if order, found := s.cache.Get(id); found {
		log.Debug("order found in cache")
		return order, nil
	}

	log.Debug("order not found in cache, will check repository")

	// 2. Если в кэше нет, идём в хранилище
	order, err := s.findOrder(ctx, id)
	if err != nil {
		// не логируем как ошибку, если просто не найдено
		if !errors.Is(err, ErrNotFound) {
			log.Error("failed to get order from repository", slog.String("error", err.Error()))
		}
		return model.RetrieveOrderResponse{}, fmt.Errorf("%s: %w", op, err)
	}

	// 3. Раз уж мы достали заказ из хранилища, стоит положить его в кэш
	resp := order.ToRetrieveResponse()
	s.cache.Set(resp)
	log.Debug("order found in repository and now cached")

	return resp, nil
}

// UpdateOrder заменяет поля существующего заказа
func (s *OrderService) UpdateOrder(ctx context.Context, id int64, req model.OrderRequest) (model.OrderResponse, error) {
	const op = "service.OrderService.UpdateOrder"
	log := s.log.With(slog.String("op", op), slog.Int64("order_id", id))

	if violations := s.validator.ValidateFields(req); len(violations) > 0 {
		return model.OrderResponse{}, fmt.Errorf("%s: %w", op, &ValidationError{Violations: violations})
	}

	customer, err := findCustomer(ctx, s.customers, *req.CustomerID)
	if err != nil {
		return model.OrderResponse{}, fmt.Errorf("%s: %w", op, err)
	}

	order, err := s.findOrder(ctx, id)
	if err != nil {
		return model.OrderResponse{}, fmt.Errorf("%s: %w", op, err)
	}

	req.Apply(&order, customer)

	saved, err := s.orders.Save(ctx, order)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrOrderNotFound):
			return model.OrderResponse{}, fmt.Errorf("%s: %w", op, orderNotFound(id))
		case errors.Is(err, repository.ErrConstraint):
			return model.OrderResponse{}, fmt.Errorf("%s: %w", op,
				newError(ErrProcessing, "Failed to update order. %s", constraintDetail(err)))
		}
		log.Error("failed to update order", slog.String("error", err.Error()))
		return model.OrderResponse{}, fmt.Errorf("%s: %w", op, err)
	}

	s.cache.Set(saved.ToRetrieveResponse())
	log.Info("order updated")

	return saved.ToResponse(), nil
}

// DeleteOrder удаляет заказ и убирает его из кэша
func (s *OrderService) DeleteOrder(ctx context.Context, id int64) error {
	const op = "service.OrderService.DeleteOrder"
	log := s.log.With(slog.String("op", op), slog.Int64("order_id", id))

	if err := s.orders.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrOrderNotFound) {
			return fmt.Errorf("%s: %w", op, orderNotFound(id))
		}
		log.Error("failed to delete order", slog.String("error", err.Error()))
		return fmt.Errorf("%s: %w", op, err)
	}

	s.cache.Delete(id)
	log.Info("order deleted")

	return nil
}

// GetOrdersByCriteria возвращает страницу заказов, подходящих под критерии
// страница за пределами выборки возвращается пустой, но с корректными итогами
func (s *OrderService) GetOrdersByCriteria(
	ctx context.Context,
	criteria filter.Criteria,
	page model.PageRequest,
) (model.PaginatedOrderResponse, error) {
	const op = "service.OrderService.GetOrdersByCriteria"
	log := s.log.With(slog.String("op", op))

	if page.Page < 1 || page.Size < 1 {
		return model.PaginatedOrderResponse{}, fmt.Errorf("%s: %w", op,
			newError(ErrInvalidPage, "Page and size must be positive, got page=%d size=%d", page.Page, page.Size))
	}

	orders, total, err := s.orders.Find(ctx, criteria.Filter(), &page)
	if err != nil {
		log.Error("failed to find orders", slog.String("error", err.Error()))
		return model.PaginatedOrderResponse{}, fmt.Errorf("%s: %w", op, err)
	}

	log.Debug("orders found", slog.Int64("total", total), slog.Int("page", page.Page), slog.Int("items", len(orders)))

	return model.PaginatedOrderResponse{
		TotalItems: total,
		Page:       page.Page,
		TotalPages: page.TotalPages(total),
		PageSize:   page.Size,
		Items:      toResponses(orders),
	}, nil
}

// ListOrdersByCriteria возвращает все подходящие заказы без разбиения на страницы
func (s *OrderService) ListOrdersByCriteria(ctx context.Context, criteria filter.Criteria) ([]model.OrderResponse, error) {
	const op = "service.OrderService.ListOrdersByCriteria"

	orders, _, err := s.orders.Find(ctx, criteria.Filter(), nil)
	if err != nil {
		s.log.Error("failed to find orders", slog.String("op", op), slog.String("error", err.Error()))
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return toResponses(orders), nil
}

// RestoreCache восстанавливает состояние кэша из хранилища при старте
func (s *OrderService) RestoreCache(ctx context.Context) error {
	const op = "service.OrderService.RestoreCache"
	log := s.log.With(slog.String("op", op))

	log.Info("starting cache restoration from repository")

	orders, _, err := s.orders.Find(ctx, filter.Filter{}, nil)
	if err != nil {
		log.Error("failed to get all orders from repository", slog.String("error", err.Error()))
		return fmt.Errorf("%s: %w", op, err)
	}

	projections := make([]model.RetrieveOrderResponse, 0, len(orders))
	for _, o := range orders {
		projections = append(projections, o.ToRetrieveResponse())
	}
	s.cache.LoadAll(projections)

	log.Info("cache restored successfully", slog.Int("orders_count", len(orders)))
	return nil
}

func (s *OrderService) findOrder(ctx context.Context, id int64) (model.Order, error) {
	order, err := s.orders.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrOrderNotFound) {
			return model.Order{}, orderNotFound(id)
		}
		return model.Order{}, err
	}
	return order, nil
}

func findCustomer(ctx context.Context, customers CustomerRepository, id int64) (model.Customer, error) {
	customer, err := customers.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrCustomerNotFound) {
			return model.Customer{}, newError(ErrNotFound, "Couldn't find customer by id: %d", id)
		}
		return model.Customer{}, err
	}
	return customer, nil
}

func orderNotFound(id int64) error {
	return newError(ErrNotFound, "Couldn't find order by id: %d", id)
}

// constraintDetail отрезает от ошибки хранилища префиксы op
func constraintDetail(err error) string {
	msg := err.Error()
	if i := strings.Index(msg, repository.ErrConstraint.Error()); i >= 0 {
		return msg[i:]
	}
	return msg
}

func toResponses(orders []model.Order) []model.OrderResponse {
	out := make([]model.OrderResponse, 0, len(orders))
	for _, o := range orders {
		out = append(out, o.ToResponse())
	}
	return out
}
