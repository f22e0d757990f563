package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/asquebay/order-query-service/internal/model"
	"github.com/asquebay/order-query-service/internal/repository"
)

var customerColumns = []string{"id", "first_name", "last_name", "phone_number", "email"}

// CustomerRepository инкапсулирует логику работы с клиентами в БД
type CustomerRepository struct {
	db *pgxpool.Pool
	sq squirrel.StatementBuilderType
}

// NewCustomerRepository создает новый экземпляр репозитория
func NewCustomerRepository(db *pgxpool.Pool) *CustomerRepository {
	return &CustomerRepository{
		db: db,
		sq: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// FindAll возвращает всех клиентов по возрастанию id
func (r *CustomerRepository) FindAll(ctx context.Context) ([]model.Customer, error) {
	const op = "repository.postgres.customer.FindAll"

	sql, args, err := r.sq.Select(customerColumns...).From("customers").OrderBy("id").ToSql()
	if err != nil {
		return nil, fmt.Errorf("%s: failed to build query: %w", op, err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to query customers: %w", op, err)
	}
	defer rows.Close()

	customers := make([]model.Customer, 0)
	for rows.Next() {
		c, err := scanCustomer(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: failed to scan customer row: %w", op, err)
		}
		customers = append(customers, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: failed to iterate customers: %w", op, err)
	}
	return customers, nil
}

func (r *CustomerRepository) FindByID(ctx context.Context, id int64) (model.Customer, error) {
	const op = "repository.postgres.customer.FindByID"

	sql, args, err := r.sq.Select(customerColumns...).From("customers").Where(squirrel.Eq{"id": id}).ToSql()
	if err != nil {
		return model.Customer{}, fmt.Errorf("%s: failed to build query: %w", op, err)
	}

	c, err := scanCustomer(r.db.QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Customer{}, fmt.Errorf("%s: %w", op, repository.ErrCustomerNotFound)
		}
		return model.Customer{}, fmt.Errorf("%s: failed to query customer: %w", op, err)
	}
	return c, nil
}

func (r *CustomerRepository) ExistsByID(ctx context.Context, id int64) (bool, error) {
	const op = "repository.postgres.customer.ExistsByID"

	sql, args, err := r.sq.Select("1").From("customers").Where(squirrel.Eq{"id": id}).Prefix("SELECT EXISTS (").Suffix(")").ToSql()
	if err != nil {
		return false, fmt.Errorf("%s: failed to build query: %w", op, err)
	}

	var exists bool
	if err := r.db.QueryRow(ctx, sql, args...).Scan(&exists); err != nil {
		return false, fmt.Errorf("%s: failed to query customer: %w", op, err)
	}
	return exists, nil
}

// Save вставляет нового клиента (ID == 0) или обновляет существующего
func (r *CustomerRepository) Save(ctx context.Context, customer model.Customer) (model.Customer, error) {
	const op = "repository.postgres.customer.Save"

	if customer.ID == 0 {
		sql, args, err := r.sq.Insert("customers").
			Columns("first_name", "last_name", "phone_number", "email").
			Values(customer.FirstName, customer.LastName, customer.PhoneNumber, customer.Email).
			Suffix("RETURNING id").
			ToSql()
		if err != nil {
			return model.Customer{}, fmt.Errorf("%s: failed to build insert query: %w", op, err)
		}
		if err := r.db.QueryRow(ctx, sql, args...).Scan(&customer.ID); err != nil {
			return model.Customer{}, fmt.Errorf("%s: failed to insert customer: %w", op, mapConstraintError(err))
		}
		return customer, nil
	}

	sql, args, err := r.sq.Update("customers").
		Set("first_name", customer.FirstName).
		Set("last_name", customer.LastName).
		Set("phone_number", customer.PhoneNumber).
		Set("email", customer.Email).
		Where(squirrel.Eq{"id": customer.ID}).
		ToSql()
	if err != nil {
		return model.Customer{}, fmt.Errorf("%s: failed to build update query: %w", op, err)
	}
	tag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		return model.Customer{}, fmt.Errorf("%s: failed to update customer: %w", op, mapConstraintError(err))
	}
	if tag.RowsAffected() == 0 {
		return model.Customer{}, fmt.Errorf("%s: %w", op, repository.ErrCustomerNotFound)
	}
	return customer, nil
}

// Delete удаляет клиента; при наличии заказов сработает внешний ключ
func (r *CustomerRepository) Delete(ctx context.Context, id int64) error {
	const op = "repository.postgres.customer.Delete"

	sql, args, err := r.sq.Delete("customers").Where(squirrel.Eq{"id": id}).ToSql()
	if err != nil {
		return fmt.Errorf("%s: failed to build delete query: %w", op, err)
	}
	tag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("%s: failed to delete customer: %w", op, mapConstraintError(err))
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%s: %w", op, repository.ErrCustomerNotFound)
	}
	return nil
}

func scanCustomer(row pgx.Row) (model.Customer, error) {
	var c model.Customer
	err := row.Scan(&c.ID, &c.FirstName, &c.LastName, &c.PhoneNumber, &c.Email)
	return c, err
}
