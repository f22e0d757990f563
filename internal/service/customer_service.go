package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/asquebay/order-query-service/internal/model"
	"github.com/asquebay/order-query-service/internal/repository"
)

// CustomerService управляет клиентами, на которых ссылаются заказы
type CustomerService struct {
	customers CustomerRepository
	cache     OrderCache
	validator Validator
	log       *slog.Logger
}

// NewCustomerService создаёт новый экземпляр сервиса клиентов
// кэш заказов нужен, чтобы сбрасывать проекции с устаревшими данными клиента
func NewCustomerService(customers CustomerRepository, cache OrderCache, validator Validator, log *slog.Logger) *CustomerService {
	return &CustomerService{
		customers: customers,
		cache:     cache,
		validator: validator,
		log:       log,
	}
}

func (s *CustomerService) GetAllCustomers(ctx context.Context) ([]model.CustomerResponse, error) {
	const op = "service.CustomerService.GetAllCustomers"

	customers, err := s.customers.FindAll(ctx)
	if err != nil {
		s.log.Error("failed to get customers", slog.String("op", op), slog.String("error", err.Error()))
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	out := make([]model.CustomerResponse, 0, len(customers))
	for _, c := range customers {
		out = append(out, c.ToResponse())
	}
	return out, nil
}

func (s *CustomerService) AddCustomer(ctx context.Context, req model.CustomerRequest) (model.CustomerResponse, error) {
	const op = "service.CustomerService.AddCustomer"
	log := s.log.With(slog.String("op", op))

	if violations := s.validator.ValidateCustomer(req); len(violations) > 0 {
		return model.CustomerResponse{}, fmt.Errorf("%s: %w", op, &ValidationError{Violations: violations})
	}

	var customer model.Customer
	req.Apply(&customer)

	saved, err := s.customers.Save(ctx, customer)
	if err != nil {
		if errors.Is(err, repository.ErrConstraint) {
			return model.CustomerResponse{}, fmt.Errorf("%s: %w", op,
				newError(ErrProcessing, "Failed to save customer. %s", constraintDetail(err)))
		}
		log.Error("failed to save customer", slog.String("error", err.Error()))
		return model.CustomerResponse{}, fmt.Errorf("%s: %w", op, err)
	}

	log.Info("customer created", slog.Int64("customer_id", saved.ID))
	return saved.ToResponse(), nil
}

// UpdateCustomer заменяет данные клиента и сбрасывает из кэша его заказы
func (s *CustomerService) UpdateCustomer(ctx context.Context, id int64, req model.CustomerRequest) (model.CustomerResponse, error) {
	const op = "service.CustomerService.UpdateCustomer"
	log := s.log.With(slog.String("op", op), slog.Int64("customer_id", id))

	if violations := s.validator.ValidateCustomer(req); len(violations) > 0 {
		return model.CustomerResponse{}, fmt.Errorf("%s: %w", op, &ValidationError{Violations: violations})
	}

	customer, err := s.GetCustomerIfExists(ctx, id)
	if err != nil {
		return model.CustomerResponse{}, fmt.Errorf("%s: %w", op, err)
	}
	req.Apply(&customer)

	saved, err := s.customers.Save(ctx, customer)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrCustomerNotFound):
			return model.CustomerResponse{}, fmt.Errorf("%s: %w", op,
				newError(ErrNotFound, "Couldn't find customer by id: %d", id))
		case errors.Is(err, repository.ErrConstraint):
			return model.CustomerResponse{}, fmt.Errorf("%s: %w", op,
				newError(ErrProcessing, "Failed to update customer. %s", constraintDetail(err)))
		}
		log.Error("failed to update customer", slog.String("error", err.Error()))
		return model.CustomerResponse{}, fmt.Errorf("%s: %w", op, err)
	}

	s.cache.EvictCustomer(id)
	log.Info("customer updated")

	return saved.ToResponse(), nil
}

// DeleteCustomer удаляет клиента; клиента с заказами удалить нельзя
func (s *CustomerService) DeleteCustomer(ctx context.Context, id int64) error {
	const op = "service.CustomerService.DeleteCustomer"
	log := s.log.With(slog.String("op", op), slog.Int64("customer_id", id))

	if err := s.customers.Delete(ctx, id); err != nil {
		switch {
		case errors.Is(err, repository.ErrCustomerNotFound):
			return fmt.Errorf("%s: %w", op, newError(ErrNotFound, "Couldn't find customer by id: %d", id))
		case errors.Is(err, repository.ErrConstraint):
			return fmt.Errorf("%s: %w", op,
				newError(ErrProcessing, "Failed to delete customer. %s", constraintDetail(err)))
		}
		log.Error("failed to delete customer", slog.String("error", err.Error()))
		return fmt.Errorf("%s: %w", op, err)
	}

	s.cache.EvictCustomer(id)
	log.Info("customer deleted")

	return nil
}

// GetCustomerIfExists возвращает клиента или ошибку ErrNotFound
func (s *CustomerService) GetCustomerIfExists(ctx context.Context, id int64) (model.Customer, error) {
	const op = "service.CustomerService.GetCustomerIfExists"

	customer, err := findCustomer(ctx, s.customers, id)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			s.log.Error("failed to get customer", slog.String("op", op), slog.String("error", err.Error()))
		}
		return model.Customer{}, fmt.Errorf("%s: %w", op, err)
	}
	return customer, nil
}
