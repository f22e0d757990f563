package http

import (
	"net/http"

	"github.com/asquebay/order-query-service/internal/model"
)

func (h *Handler) getCustomers(w http.ResponseWriter, r *http.Request) {
	customers, err := h.customers.GetAllCustomers(r.Context())
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	h.respondJSON(w, http.StatusOK, customers)
}

func (h *Handler) addCustomer(w http.ResponseWriter, r *http.Request) {
	var req model.CustomerRequest
	if err := decodeJSON(r, &req); err != nil {
		h.respondError(w, r, http.StatusBadRequest, "malformed request body: "+err.Error())
		return
	}

	resp, err := h.customers.AddCustomer(r.Context(), req)
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	h.respondJSON(w, http.StatusCreated, resp)
}

func (h *Handler) updateCustomer(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		h.respondError(w, r, http.StatusBadRequest, "customer id must be a positive integer")
		return
	}

	var req model.CustomerRequest
	if err := decodeJSON(r, &req); err != nil {
		h.respondError(w, r, http.StatusBadRequest, "malformed request body: "+err.Error())
		return
	}

	resp, err := h.customers.UpdateCustomer(r.Context(), id, req)
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	h.respondJSON(w, http.StatusOK, resp)
}

func (h *Handler) deleteCustomer(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		h.respondError(w, r, http.StatusBadRequest, "customer id must be a positive integer")
		return
	}

	if err := h.customers.DeleteCustomer(r.Context(), id); err != nil {
		h.handleError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusOK)
}
