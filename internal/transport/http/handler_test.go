package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/asquebay/order-query-service/internal/filter"
	"github.com/asquebay/order-query-service/internal/lib/fileio"
	"github.com/asquebay/order-query-service/internal/lib/logger"
	"github.com/asquebay/order-query-service/internal/model"
	"github.com/asquebay/order-query-service/internal/repository/cache"
	"github.com/asquebay/order-query-service/internal/repository/memory"
	"github.com/asquebay/order-query-service/internal/service"
	"github.com/asquebay/order-query-service/internal/validation"
)

func newTestHandler(t *testing.T) *Handler {
	t.Helper()

	store := memory.NewStore()
	orders := memory.NewOrderRepository(store)
	customers := memory.NewCustomerRepository(store)
	orderCache := cache.NewOrderCache()
	engine := validation.New(customers, validation.WithClock(func() time.Time {
		return time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC)
	}))
	log := logger.Discard()

	for i := 1; i <= 2; i++ {
		_, err := customers.Save(context.Background(), model.Customer{
			FirstName: "Name", LastName: "Test",
			PhoneNumber: fmt.Sprintf("38050000000%d", i),
			Email:       fmt.Sprintf("user%d@test.test", i),
		})
		require.NoError(t, err)
	}

	orderSvc := service.NewOrderService(orders, customers, orderCache, engine, fileio.NewJSONDecoder(), nil, log)
	customerSvc := service.NewCustomerService(customers, orderCache, engine, log)

	return NewHandler(orderSvc, customerSvc, Options{
		Filter:          filter.ParseOptions{RejectUnknown: true},
		DefaultPageSize: 10,
		Metrics: http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte("metrics"))
		}),
		MetricsPath: "/metrics",
	}, log)
}

func do(t *testing.T, h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func orderJSON(customerID int, description, price string) string {
	return fmt.Sprintf(`{"customerId": %d, "orderDate": "2024-01-10", "statusPayment": true, "description": %q, "totalPrice": %s}`,
		customerID, description, price)
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) errorDetails {
	t.Helper()
	var body errorDetails
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestOrderLifecycle(t *testing.T) {
	h := newTestHandler(t)

	rec := do(t, h, http.MethodPost, "/api/orders", orderJSON(1, "Gloves", "12.50"))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var created model.OrderResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.Equal(t, int64(1), created.CustomerID)

	rec = do(t, h, http.MethodGet, "/api/orders/1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var got model.RetrieveOrderResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "Gloves", got.Description)
	assert.Equal(t, "user1@test.test", got.Customer.Email)

	rec = do(t, h, http.MethodPut, "/api/orders/1", orderJSON(2, "Gloves XL", "13"))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = do(t, h, http.MethodDelete, "/api/orders/1", "")
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, h, http.MethodGet, "/api/orders/1", "")
	require.Equal(t, http.StatusNotFound, rec.Code)
	body := decodeError(t, rec)
	assert.Equal(t, "Couldn't find order by id: 1", body.Message)
	assert.Equal(t, "uri=/api/orders/1", body.Details)
	assert.False(t, body.Timestamp.IsZero())
}

func TestAddOrder_Errors(t *testing.T) {
	h := newTestHandler(t)

	rec := do(t, h, http.MethodPost, "/api/orders", orderJSON(1, "", "-1"))
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "[Description must not be blank, Total price must be greater than 0.0]", decodeError(t, rec).Message)

	rec = do(t, h, http.MethodPost, "/api/orders", orderJSON(9, "Gloves", "1"))
	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Couldn't find customer by id: 9", decodeError(t, rec).Message)

	rec = do(t, h, http.MethodPost, "/api/orders", `{"customerId": "one"}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, h, http.MethodGet, "/api/orders/abc", "")
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestListOrders(t *testing.T) {
	h := newTestHandler(t)
	for i := 0; i < 5; i++ {
		rec := do(t, h, http.MethodPost, "/api/orders", orderJSON(i%2+1, fmt.Sprintf("item %d", i), "10"))
		require.Equal(t, http.StatusCreated, rec.Code)
	}

	rec := do(t, h, http.MethodPost, "/api/orders/_list?size=2&page=1", `{"customerId": 1}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var page model.PaginatedOrderResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &page))
	assert.Equal(t, int64(3), page.TotalItems)
	assert.Equal(t, 2, page.TotalPages)
	assert.Equal(t, 2, page.PageSize)
	assert.Len(t, page.Items, 2)

	// пустое тело и параметры по умолчанию
	rec = do(t, h, http.MethodPost, "/api/orders/_list", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &page))
	assert.Equal(t, int64(5), page.TotalItems)
	assert.Equal(t, 10, page.PageSize)
	assert.Equal(t, 1, page.Page)

	// null-значения критериев игнорируются
	rec = do(t, h, http.MethodPost, "/api/orders/_list", `{"customerId": null, "description": "item 3"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &page))
	assert.Equal(t, int64(1), page.TotalItems)
}

func TestListOrders_BadInput(t *testing.T) {
	h := newTestHandler(t)

	cases := map[string]struct {
		target string
		body   string
	}{
		"unknown key":     {"/api/orders/_list", `{"status": "paid"}`},
		"bad value":       {"/api/orders/_list", `{"orderDate": "yesterday"}`},
		"zero page":       {"/api/orders/_list?page=0", `{}`},
		"negative size":   {"/api/orders/_list?size=-3", `{}`},
		"non-number size": {"/api/orders/_list?size=ten", `{}`},
		"not an object":   {"/api/orders/_list", `[1, 2]`},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			rec := do(t, h, http.MethodPost, tc.target, tc.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
		})
	}
}

func TestReportOrders(t *testing.T) {
	h := newTestHandler(t)
	rec := do(t, h, http.MethodPost, "/api/orders", orderJSON(1, `Soap "Lux"`, "2.5"))
	require.Equal(t, http.StatusCreated, rec.Code)
	rec = do(t, h, http.MethodPost, "/api/orders", orderJSON(2, "Lamp", "3"))
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = do(t, h, http.MethodPost, "/api/orders/_report", `{"customerId": 1}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, `attachment; filename="orders_report.csv"`, rec.Header().Get("Content-Disposition"))
	assert.Equal(t,
		`"Customer ID","Order Date","Description","Total Price"`+"\n"+
			`"1","2024-01-10","Soap ""Lux""","2.5"`+"\n",
		rec.Body.String())
}

func uploadRequest(t *testing.T, field, name, content string) *http.Request {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile(field, name)
	require.NoError(t, err)
	_, err = part.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/orders/upload", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestUploadOrders(t *testing.T) {
	h := newTestHandler(t)

	content := "[" + orderJSON(1, "a", "1") + "," + orderJSON(2, "b", "0") + "]"
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, uploadRequest(t, "file", "orders.json", content))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var result model.ImportResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.Equal(t, 1, result.SuccessfulImports)
	assert.Equal(t, 1, result.FailedImports)
	require.Len(t, result.InvalidInputData, 1)
	assert.Equal(t, "totalPrice", result.InvalidInputData[0].IncorrectField)
	assert.Equal(t, "0", result.InvalidInputData[0].FieldValue)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, uploadRequest(t, "file", "orders.txt", content))
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Received file orders.txt is not in JSON format", decodeError(t, rec).Message)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, uploadRequest(t, "document", "orders.json", content))
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCustomers(t *testing.T) {
	h := newTestHandler(t)

	rec := do(t, h, http.MethodPost, "/api/customers",
		`{"firstName": "Bob", "lastName": "Brown", "phoneNumber": "380666666666", "email": "bob@test.test"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = do(t, h, http.MethodGet, "/api/customers", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var all []model.CustomerResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &all))
	assert.Len(t, all, 3)

	rec = do(t, h, http.MethodPut, "/api/customers/3",
		`{"firstName": "Bob", "lastName": "Brown", "phoneNumber": "380666666666", "email": "user1@test.test"}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decodeError(t, rec).Message, "Failed to update customer.")

	rec = do(t, h, http.MethodDelete, "/api/customers/3", "")
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, h, http.MethodDelete, "/api/customers/3", "")
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestMetricsRoute(t *testing.T) {
	h := newTestHandler(t)

	rec := do(t, h, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "metrics", rec.Body.String())
}

type failingOrders struct {
	OrderService
}

func (failingOrders) GetOrder(context.Context, int64) (model.RetrieveOrderResponse, error) {
	return model.RetrieveOrderResponse{}, errors.New("connection refused")
}

func TestInternalErrorIsHidden(t *testing.T) {
	h := NewHandler(failingOrders{}, nil, Options{}, logger.Discard())

	rec := do(t, h, http.MethodGet, "/api/orders/1", "")
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "internal server error", decodeError(t, rec).Message)
}
