package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/asquebay/order-query-service/internal/filter"
	"github.com/asquebay/order-query-service/internal/model"
	"github.com/asquebay/order-query-service/internal/service"
)

// OrderService определяет, что хэндлеру нужно от сервиса заказов
// это позволяет хэндлеру не зависеть от конкретной реализации сервиса
type OrderService interface {
	AddOrder(ctx context.Context, req model.OrderRequest) (model.OrderResponse, error)
	GetOrder(ctx context.Context, id int64) (model.RetrieveOrderResponse, error)
	UpdateOrder(ctx context.Context, id int64, req model.OrderRequest) (model.OrderResponse, error)
	DeleteOrder(ctx context.Context, id int64) error
	GetOrdersByCriteria(ctx context.Context, criteria filter.Criteria, page model.PageRequest) (model.PaginatedOrderResponse, error)
	ListOrdersByCriteria(ctx context.Context, criteria filter.Criteria) ([]model.OrderResponse, error)
	ImportOrders(ctx context.Context, file model.UploadedFile) (model.ImportResult, error)
}

// CustomerService определяет, что хэндлеру нужно от сервиса клиентов
type CustomerService interface {
	GetAllCustomers(ctx context.Context) ([]model.CustomerResponse, error)
	AddCustomer(ctx context.Context, req model.CustomerRequest) (model.CustomerResponse, error)
	UpdateCustomer(ctx context.Context, id int64, req model.CustomerRequest) (model.CustomerResponse, error)
	DeleteCustomer(ctx context.Context, id int64) error
}

// Options: настройки хэндлера из конфига
type Options struct {
	Filter          filter.ParseOptions
	DefaultPageSize int
	MaxUploadSize   int64
	// Metrics отдаётся по MetricsPath, если задан
	Metrics     http.Handler
	MetricsPath string
}

// Handler обрабатывает HTTP-запросы
type Handler struct {
	orders    OrderService
	customers CustomerService
	opts      Options
	log       *slog.Logger
	router    chi.Router
}

// NewHandler создаёт новый экземпляр Handler
func NewHandler(orders OrderService, customers CustomerService, opts Options, log *slog.Logger) *Handler {
	if opts.DefaultPageSize <= 0 {
		opts.DefaultPageSize = 10
	}
	if opts.MaxUploadSize <= 0 {
		opts.MaxUploadSize = 10 << 20
	}

	h := &Handler{
		orders:    orders,
		customers: customers,
		opts:      opts,
		log:       log,
		router:    chi.NewRouter(),
	}
	h.registerRoutes()
	return h
}

// ServeHTTP делает Handler совместимым с http.Handler
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.router.ServeHTTP(w, r)
}

// registerRoutes регистрирует все эндпоинты
func (h *Handler) registerRoutes() {
	h.router.Use(middleware.RequestID)
	h.router.Use(middleware.Logger)
	h.router.Use(middleware.Recoverer)
	h.router.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		ExposedHeaders: []string{"Content-Disposition"},
		MaxAge:         300,
	}))

	h.router.Route("/api/orders", func(r chi.Router) {
		r.Post("/", h.addOrder)
		r.Post("/_list", h.listOrders)
		r.Post("/_report", h.reportOrders)
		r.Post("/upload", h.uploadOrders)
		r.Get("/{id}", h.getOrder)
		r.Put("/{id}", h.updateOrder)
		r.Delete("/{id}", h.deleteOrder)
	})

	h.router.Route("/api/customers", func(r chi.Router) {
		r.Get("/", h.getCustomers)
		r.Post("/", h.addCustomer)
		r.Put("/{id}", h.updateCustomer)
		r.Delete("/{id}", h.deleteCustomer)
	})

	if h.opts.Metrics != nil && h.opts.MetricsPath != "" {
		h.router.Method(http.MethodGet, h.opts.MetricsPath, h.opts.Metrics)
	}
}

// errorDetails: тело ответа с ошибкой
type errorDetails struct {
	Timestamp time.Time `json:"timestamp"`
	Message   string    `json:"message"`
	Details   string    `json:"details"`
}

// handleError сопоставляет ошибку сервиса со статусом ответа
// неожиданные ошибки логируются, текст их наружу не отдаётся
func (h *Handler) handleError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, service.ErrNotFound):
		h.respondError(w, r, http.StatusNotFound, service.Message(err))
	case errors.Is(err, service.ErrValidation),
		errors.Is(err, service.ErrFileFormat),
		errors.Is(err, service.ErrInvalidPage),
		errors.Is(err, service.ErrProcessing):
		h.respondError(w, r, http.StatusBadRequest, service.Message(err))
	case errors.Is(err, filter.ErrUnknownKey), errors.Is(err, filter.ErrInvalidValue):
		h.respondError(w, r, http.StatusBadRequest, err.Error())
	default:
		h.log.Error("internal server error",
			slog.String("path", r.URL.Path),
			slog.String("request_id", middleware.GetReqID(r.Context())),
			slog.String("error", err.Error()),
		)
		h.respondError(w, r, http.StatusInternalServerError, "internal server error")
	}
}

func (h *Handler) respondJSON(w http.ResponseWriter, status int, payload any) {
	response, err := json.Marshal(payload)
	if err != nil {
		h.log.Error("failed to marshal JSON response", slog.String("error", err.Error()))
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"message": "internal server error"}`))
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(response)
}

func (h *Handler) respondError(w http.ResponseWriter, r *http.Request, status int, message string) {
	h.respondJSON(w, status, errorDetails{
		Timestamp: time.Now().UTC(),
		Message:   message,
		Details:   "uri=" + r.URL.Path,
	})
}

// pathID извлекает положительный id из URL
func pathID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// decodeJSON разбирает тело запроса в v
func decodeJSON(r *http.Request, v any) error {
	return json.NewDecoder(r.Body).Decode(v)
}
