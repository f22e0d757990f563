package service_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/asquebay/order-query-service/internal/model"
	"github.com/asquebay/order-query-service/internal/service"
)

func customerRequest(email string) model.CustomerRequest {
	return model.CustomerRequest{
		FirstName:   "Bob",
		LastName:    "Brown",
		PhoneNumber: "380666666666",
		Email:       email,
	}
}

func TestCustomerService_AddAndList(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	created, err := e.customer.AddCustomer(ctx, customerRequest("bob@test.test"))
	require.NoError(t, err)
	assert.Equal(t, int64(6), created.ID)

	all, err := e.customer.GetAllCustomers(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 6)

	_, err = e.customer.AddCustomer(ctx, customerRequest("bob@test.test"))
	require.ErrorIs(t, err, service.ErrProcessing)
	assert.Contains(t, service.Message(err), "Failed to save customer. constraint violation")
}

func TestCustomerService_AddValidation(t *testing.T) {
	e := newEnv(t)

	req := customerRequest("not-an-email")
	req.PhoneNumber = "0501234567"
	_, err := e.customer.AddCustomer(context.Background(), req)
	require.ErrorIs(t, err, service.ErrValidation)

	var verr *service.ValidationError
	require.ErrorAs(t, err, &verr)
	require.Len(t, verr.Violations, 2)
	assert.Equal(t, "phoneNumber", verr.Violations[0].IncorrectField)
	assert.Equal(t, "email", verr.Violations[1].IncorrectField)
}

func TestCustomerService_UpdateEvictsOrders(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	_, err := e.svc.AddOrder(ctx, orderRequest(1, "Lamp", "5"))
	require.NoError(t, err)
	_, ok := e.cache.Get(1)
	require.True(t, ok)

	updated, err := e.customer.UpdateCustomer(ctx, 1, customerRequest("renamed@test.test"))
	require.NoError(t, err)
	assert.Equal(t, "renamed@test.test", updated.Email)

	_, ok = e.cache.Get(1)
	assert.False(t, ok)

	order, err := e.svc.GetOrder(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "renamed@test.test", order.Customer.Email)

	_, err = e.customer.UpdateCustomer(ctx, 99, customerRequest("x@test.test"))
	require.ErrorIs(t, err, service.ErrNotFound)
}

func TestCustomerService_Delete(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	_, err := e.svc.AddOrder(ctx, orderRequest(1, "Lamp", "5"))
	require.NoError(t, err)

	err = e.customer.DeleteCustomer(ctx, 1)
	require.ErrorIs(t, err, service.ErrProcessing)
	assert.Contains(t, service.Message(err), "Failed to delete customer.")

	require.NoError(t, e.customer.DeleteCustomer(ctx, 2))
	require.ErrorIs(t, e.customer.DeleteCustomer(ctx, 2), service.ErrNotFound)

	_, err = e.customer.GetCustomerIfExists(ctx, 2)
	require.ErrorIs(t, err, service.ErrNotFound)

	got, err := e.customer.GetCustomerIfExists(ctx, 3)
	require.NoError(t, err)
	assert.Equal(t, "user3@test.test", got.Email)
}
