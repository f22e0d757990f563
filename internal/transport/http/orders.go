package http

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/asquebay/order-query-service/internal/filter"
	"github.com/asquebay/order-query-service/internal/lib/fileio"
	"github.com/asquebay/order-query-service/internal/model"
)

// uploadField: имя multipart-поля с файлом импорта
const uploadField = "file"

func (h *Handler) addOrder(w http.ResponseWriter, r *http.Request) {
	var req model.OrderRequest
	if err := decodeJSON(r, &req); err != nil {
		h.respondError(w, r, http.StatusBadRequest, "malformed request body: "+err.Error())
		return
	}

	resp, err := h.orders.AddOrder(r.Context(), req)
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	h.respondJSON(w, http.StatusCreated, resp)
}

func (h *Handler) getOrder(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		h.respondError(w, r, http.StatusBadRequest, "order id must be a positive integer")
		return
	}

	order, err := h.orders.GetOrder(r.Context(), id)
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	h.respondJSON(w, http.StatusOK, order)
}

func (h *Handler) updateOrder(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		h.respondError(w, r, http.StatusBadRequest, "order id must be a positive integer")
		return
	}

	var req model.OrderRequest
	if err := decodeJSON(r, &req); err != nil {
		h.respondError(w, r, http.StatusBadRequest, "malformed request body: "+err.Error())
		return
	}

	resp, err := h.orders.UpdateOrder(r.Context(), id, req)
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	h.respondJSON(w, http.StatusOK, resp)
}

func (h *Handler) deleteOrder(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		h.respondError(w, r, http.StatusBadRequest, "order id must be a positive integer")
		return
	}

	if err := h.orders.DeleteOrder(r.Context(), id); err != nil {
		h.handleError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusOK)
}

// listOrders отдаёт страницу заказов по критериям из тела запроса
// size и page берутся из query, по умолчанию размер из конфига и первая страница
func (h *Handler) listOrders(w http.ResponseWriter, r *http.Request) {
	page, err := h.pageRequest(r)
	if err != nil {
		h.respondError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	criteria, err := h.criteria(r)
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	resp, err := h.orders.GetOrdersByCriteria(r.Context(), criteria, page)
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	h.respondJSON(w, http.StatusOK, resp)
}

// reportOrders выгружает все заказы по критериям в CSV-вложение
func (h *Handler) reportOrders(w http.ResponseWriter, r *http.Request) {
	criteria, err := h.criteria(r)
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	orders, err := h.orders.ListOrdersByCriteria(r.Context(), criteria)
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	// отчёт собирается целиком до записи заголовков, чтобы ошибка не оборвала ответ на середине
	var buf bytes.Buffer
	if err := fileio.WriteOrdersCSV(&buf, orders); err != nil {
		h.handleError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "application/octet-stream")
	w.Header().Set("Content-Disposition", `attachment; filename="`+fileio.ReportFileName+`"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

func (h *Handler) uploadOrders(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.opts.MaxUploadSize)
	if err := r.ParseMultipartForm(h.opts.MaxUploadSize); err != nil {
		h.respondError(w, r, http.StatusBadRequest, "failed to read multipart form: "+err.Error())
		return
	}

	file, header, err := r.FormFile(uploadField)
	if err != nil {
		h.respondError(w, r, http.StatusBadRequest, "Required part '"+uploadField+"' is not present")
		return
	}
	defer file.Close()

	result, err := h.orders.ImportOrders(r.Context(), model.UploadedFile{Name: header.Filename, Content: file})
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	h.respondJSON(w, http.StatusOK, result)
}

func (h *Handler) pageRequest(r *http.Request) (model.PageRequest, error) {
	page := model.PageRequest{Page: 1, Size: h.opts.DefaultPageSize}

	q := r.URL.Query()
	if v := q.Get("size"); v != "" {
		size, err := strconv.Atoi(v)
		if err != nil {
			return model.PageRequest{}, errors.New("size must be an integer")
		}
		page.Size = size
	}
	if v := q.Get("page"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return model.PageRequest{}, errors.New("page must be an integer")
		}
		page.Page = n
	}
	return page, nil
}

// criteria разбирает тело запроса в критерии фильтра; пустое тело: без условий
func (h *Handler) criteria(r *http.Request) (filter.Criteria, error) {
	raw := map[string]any{}

	dec := json.NewDecoder(r.Body)
	dec.UseNumber()
	if err := dec.Decode(&raw); err != nil && !errors.Is(err, io.EOF) {
		return nil, &malformedBodyError{err: err}
	}

	return filter.Parse(raw, h.opts.Filter)
}

// malformedBodyError: тело запроса не является JSON-объектом
type malformedBodyError struct {
	err error
}

func (e *malformedBodyError) Error() string {
	return "malformed request body: " + e.err.Error()
}

func (e *malformedBodyError) Unwrap() error {
	return filter.ErrInvalidValue
}
