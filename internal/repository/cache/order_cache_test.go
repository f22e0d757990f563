package cache

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/asquebay/order-query-service/internal/model"
)

func TestOrderCache(t *testing.T) {
	c := NewOrderCache()

	_, ok := c.Get(1)
	require.False(t, ok)

	c.LoadAll([]model.RetrieveOrderResponse{
		{ID: 1, Customer: model.CustomerResponse{ID: 10}, Description: "a"},
		{ID: 2, Customer: model.CustomerResponse{ID: 20}, Description: "b"},
		{ID: 3, Customer: model.CustomerResponse{ID: 10}, Description: "c"},
	})

	got, ok := c.Get(2)
	require.True(t, ok)
	require.Equal(t, "b", got.Description)

	c.Set(model.RetrieveOrderResponse{ID: 2, Customer: model.CustomerResponse{ID: 20}, Description: "b2"})
	got, _ = c.Get(2)
	require.Equal(t, "b2", got.Description)

	c.Delete(2)
	_, ok = c.Get(2)
	require.False(t, ok)

	c.EvictCustomer(10)
	_, ok = c.Get(1)
	require.False(t, ok)
	_, ok = c.Get(3)
	require.False(t, ok)
}
