package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"cloud.google.com/go/civil"
	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/asquebay/order-query-service/internal/filter"
	"github.com/asquebay/order-query-service/internal/model"
	"github.com/asquebay/order-query-service/internal/repository"
)

// колонки выборки заказа вместе с клиентом, порядок совпадает со scanOrder
var orderColumns = []string{
	"o.id", "o.order_date", "o.status_payment", "o.description", "o.total_price",
	"c.id", "c.first_name", "c.last_name", "c.phone_number", "c.email",
}

// OrderRepository инкапсулирует логику работы с заказами в БД
type OrderRepository struct {
	db *pgxpool.Pool
	sq squirrel.StatementBuilderType
}

// NewOrderRepository создает новый экземпляр репозитория
func NewOrderRepository(db *pgxpool.Pool) *OrderRepository {
	return &OrderRepository{
		db: db,
		// использую плейсхолдеры в стиле PostgreSQL ($1, $2, $3,...)
		sq: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// Save вставляет новый заказ (ID == 0) или обновляет существующий
// клиент в возвращаемом заказе тот же, что передан на вход
func (r *OrderRepository) Save(ctx context.Context, order model.Order) (model.Order, error) {
	const op = "repository.postgres.order.Save"

	if order.ID == 0 {
		sql, args, err := r.sq.Insert("orders").
			Columns("customer_id", "order_date", "status_payment", "description", "total_price").
			Values(order.Customer.ID, order.OrderDate.In(time.UTC), order.StatusPayment, order.Description, order.TotalPrice).
			Suffix("RETURNING id").
			ToSql()
		if err != nil {
			return model.Order{}, fmt.Errorf("%s: failed to build insert query: %w", op, err)
		}
		if err := r.db.QueryRow(ctx, sql, args...).Scan(&order.ID); err != nil {
			return model.Order{}, fmt.Errorf("%s: failed to insert order: %w", op, mapConstraintError(err))
		}
		return order, nil
	}

	sql, args, err := r.sq.Update("orders").
		Set("customer_id", order.Customer.ID).
		Set("order_date", order.OrderDate.In(time.UTC)).
		Set("status_payment", order.StatusPayment).
		Set("description", order.Description).
		Set("total_price", order.TotalPrice).
		Where(squirrel.Eq{"id": order.ID}).
		ToSql()
	if err != nil {
		return model.Order{}, fmt.Errorf("%s: failed to build update query: %w", op, err)
	}
	tag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		return model.Order{}, fmt.Errorf("%s: failed to update order: %w", op, mapConstraintError(err))
	}
	if tag.RowsAffected() == 0 {
		return model.Order{}, fmt.Errorf("%s: %w", op, repository.ErrOrderNotFound)
	}

	return order, nil
}

// FindByID извлекает один заказ вместе с клиентом
func (r *OrderRepository) FindByID(ctx context.Context, id int64) (model.Order, error) {
	const op = "repository.postgres.order.FindByID"

	sql, args, err := r.selectOrders().Where(squirrel.Eq{"o.id": id}).ToSql()
	if err != nil {
		return model.Order{}, fmt.Errorf("%s: failed to build query: %w", op, err)
	}

	order, err := scanOrder(r.db.QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Order{}, fmt.Errorf("%s: %w", op, repository.ErrOrderNotFound)
		}
		return model.Order{}, fmt.Errorf("%s: failed to query order: %w", op, err)
	}
	return order, nil
}

// Delete удаляет заказ по id
func (r *OrderRepository) Delete(ctx context.Context, id int64) error {
	const op = "repository.postgres.order.Delete"

	sql, args, err := r.sq.Delete("orders").Where(squirrel.Eq{"id": id}).ToSql()
	if err != nil {
		return fmt.Errorf("%s: failed to build delete query: %w", op, err)
	}
	tag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("%s: failed to delete order: %w", op, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%s: %w", op, repository.ErrOrderNotFound)
	}
	return nil
}

// Find возвращает заказы, подходящие под фильтр, и общее число совпадений
// при page == nil отдаются все совпадения без LIMIT/OFFSET
func (r *OrderRepository) Find(ctx context.Context, f filter.Filter, page *model.PageRequest) ([]model.Order, int64, error) {
	const op = "repository.postgres.order.Find"

	where := f.Sqlizer()

	query := r.selectOrders().Where(where).OrderBy("o.id")
	if page != nil {
		query = query.Limit(uint64(page.Size)).Offset(uint64(page.Offset()))
	}
	sql, args, err := query.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("%s: failed to build select query: %w", op, err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("%s: failed to query orders: %w", op, err)
	}
	defer rows.Close()

	orders := make([]model.Order, 0)
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("%s: failed to scan order row: %w", op, err)
		}
		orders = append(orders, order)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("%s: failed to iterate orders: %w", op, err)
	}

	if page == nil {
		return orders, int64(len(orders)), nil
	}

	// для страницы общее количество считаем отдельным запросом с тем же фильтром
	countSQL, countArgs, err := r.sq.Select("COUNT(*)").
		From("orders o").
		Join("customers c ON c.id = o.customer_id").
		Where(where).
		ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("%s: failed to build count query: %w", op, err)
	}
	var total int64
	if err := r.db.QueryRow(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("%s: failed to count orders: %w", op, err)
	}

	return orders, total, nil
}

func (r *OrderRepository) selectOrders() squirrel.SelectBuilder {
	return r.sq.Select(orderColumns...).
		From("orders o").
		Join("customers c ON c.id = o.customer_id")
}

// scanOrder читает строку в порядке orderColumns
func scanOrder(row pgx.Row) (model.Order, error) {
	var (
		o         model.Order
		orderDate time.Time
	)
	err := row.Scan(
		&o.ID, &orderDate, &o.StatusPayment, &o.Description, &o.TotalPrice,
		&o.Customer.ID, &o.Customer.FirstName, &o.Customer.LastName, &o.Customer.PhoneNumber, &o.Customer.Email,
	)
	if err != nil {
		return model.Order{}, err
	}
	o.OrderDate = civil.DateOf(orderDate)
	return o, nil
}
