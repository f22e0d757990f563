package postgres

import (
	"context"
	"os"
	"strings"
	"testing"
	"time"

	"cloud.google.com/go/civil"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/asquebay/order-query-service/internal/filter"
	"github.com/asquebay/order-query-service/internal/model"
	"github.com/asquebay/order-query-service/internal/repository"
)

// схема только для тестов: сервис сам миграции не выполняет
const testSchemaSQL = `
DROP TABLE IF EXISTS orders;
DROP TABLE IF EXISTS customers;
CREATE TABLE customers (
    id BIGSERIAL PRIMARY KEY,
    first_name TEXT NOT NULL,
    last_name TEXT NOT NULL,
    phone_number TEXT NOT NULL,
    email TEXT NOT NULL UNIQUE
);
CREATE TABLE orders (
    id BIGSERIAL PRIMARY KEY,
    customer_id BIGINT NOT NULL REFERENCES customers(id),
    order_date DATE NOT NULL,
    status_payment BOOLEAN NOT NULL,
    description VARCHAR(255) NOT NULL,
    total_price NUMERIC NOT NULL
);`

func openPoolForIntegrationTest(t *testing.T) *pgxpool.Pool {
	t.Helper()

	dsn := strings.TrimSpace(os.Getenv("OQS_POSTGRES_TEST_DSN"))
	if dsn == "" {
		t.Skip("OQS_POSTGRES_TEST_DSN is not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := pgxpool.New(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	_, err = pool.Exec(ctx, testSchemaSQL)
	require.NoError(t, err)

	return pool
}

func TestRepositories_Integration(t *testing.T) {
	pool := openPoolForIntegrationTest(t)
	ctx := context.Background()

	customers := NewCustomerRepository(pool)
	orders := NewOrderRepository(pool)

	alice, err := customers.Save(ctx, model.Customer{
		FirstName: "Alice", LastName: "Smith", PhoneNumber: "380777777777", Email: "test_alice@test.test",
	})
	require.NoError(t, err)
	bob, err := customers.Save(ctx, model.Customer{
		FirstName: "Bob", LastName: "Brown", PhoneNumber: "380666666666", Email: "bob@test.test",
	})
	require.NoError(t, err)

	_, err = customers.Save(ctx, model.Customer{FirstName: "Eve", LastName: "X", PhoneNumber: "380111111111", Email: bob.Email})
	require.ErrorIs(t, err, repository.ErrConstraint)

	exists, err := customers.ExistsByID(ctx, alice.ID)
	require.NoError(t, err)
	require.True(t, exists)

	gloves, err := orders.Save(ctx, model.Order{
		Customer:      alice,
		OrderDate:     civil.Date{Year: 2024, Month: time.January, Day: 10},
		StatusPayment: true,
		Description:   "Gloves, Lamp, Soap, T-shirt",
		TotalPrice:    decimal.RequireFromString("123.50"),
	})
	require.NoError(t, err)
	for i := 0; i < 3; i++ {
		_, err = orders.Save(ctx, model.Order{
			Customer:    bob,
			OrderDate:   civil.Date{Year: 2024, Month: time.February, Day: 20},
			Description: "50% off",
			TotalPrice:  decimal.RequireFromString("10"),
		})
		require.NoError(t, err)
	}

	found, err := orders.FindByID(ctx, gloves.ID)
	require.NoError(t, err)
	assert.Equal(t, alice, found.Customer)
	assert.True(t, found.TotalPrice.Equal(decimal.RequireFromString("123.5")))
	assert.Equal(t, civil.Date{Year: 2024, Month: time.January, Day: 10}, found.OrderDate)

	byCustomer := filter.Criteria{filter.CustomerIDEquals{ID: alice.ID}}.Filter()
	items, total, err := orders.Find(ctx, byCustomer, &model.PageRequest{Page: 1, Size: 10})
	require.NoError(t, err)
	require.Equal(t, int64(1), total)
	require.Len(t, items, 1)

	byText := filter.Criteria{filter.DescriptionContains{Text: "50%"}}.Filter()
	items, total, err = orders.Find(ctx, byText, &model.PageRequest{Page: 2, Size: 2})
	require.NoError(t, err)
	require.Equal(t, int64(3), total)
	require.Len(t, items, 1)

	byPrice := filter.Criteria{filter.TotalPriceEquals{Price: decimal.RequireFromString("123.5")}}.Filter()
	items, _, err = orders.Find(ctx, byPrice, nil)
	require.NoError(t, err)
	require.Len(t, items, 1)

	require.ErrorIs(t, customers.Delete(ctx, alice.ID), repository.ErrConstraint)
	require.NoError(t, orders.Delete(ctx, gloves.ID))
	require.ErrorIs(t, orders.Delete(ctx, gloves.ID), repository.ErrOrderNotFound)
	require.NoError(t, customers.Delete(ctx, alice.ID))

	_, err = customers.FindByID(ctx, alice.ID)
	require.ErrorIs(t, err, repository.ErrCustomerNotFound)
}
