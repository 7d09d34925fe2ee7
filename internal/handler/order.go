package handler

import (
	"net/http"

	"github.com/mbracken/njord/internal/domain"
	"github.com/mbracken/njord/internal/service"
)

// OrderHandler serves order placement, history, and the staff lifecycle
// operations.
type OrderHandler struct {
	orders *service.OrderService
}

// NewOrderHandler creates a new OrderHandler instance.
func NewOrderHandler(orders *service.OrderService) *OrderHandler {
	return &OrderHandler{orders: orders}
}

// Create handles POST /orders.
func (h *OrderHandler) Create(w http.ResponseWriter, r *http.Request) {
	claims, ok := currentUser(w, r)
	if !ok {
		return
	}

	var params service.CreateOrderParams
	if err := decodeJSON(r, &params); err != nil {
		ErrorResponse(w, r, err)
		return
	}
	params.UserID = claims.UserID

	order, err := h.orders.CreateOrder(r.Context(), params)
	if err != nil {
		ValidationErrorResponse(w, r, err)
		return
	}

	respondJSON(w, http.StatusCreated, order)
}

// List handles GET /orders. Customers see their own orders; staff may
// filter by any user or see everything.
func (h *OrderHandler) List(w http.ResponseWriter, r *http.Request) {
	claims, ok := currentUser(w, r)
	if !ok {
		return
	}

	filter := service.OrderFilter{
		Status: domain.OrderStatus(r.URL.Query().Get("status")),
		Limit:  queryInt(r, "limit", 0),
		Offset: queryInt(r, "offset", 0),
	}

	if claims.Role.CanManageCatalog() {
		filter.UserID = queryUUIDPtr(r, "userId")
	} else {
		userID := claims.UserID
		filter.UserID = &userID
	}

	orders, total, err := h.orders.ListOrders(r.Context(), filter)
	if err != nil {
		ErrorResponse(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, listResponse{Items: orders, Total: total})
}

// Get handles GET /orders/{id}. Owner or staff.
func (h *OrderHandler) Get(w http.ResponseWriter, r *http.Request) {
	claims, ok := currentUser(w, r)
	if !ok {
		return
	}

	id, err := pathUUID(r, "id")
	if err != nil {
		ErrorResponse(w, r, err)
		return
	}

	order, err := h.orders.GetOrder(r.Context(), id)
	if err != nil {
		ErrorResponse(w, r, err)
		return
	}

	if order.UserID != claims.UserID && !claims.Role.CanManageCatalog() {
		// Hide the order's existence from other customers.
		NotFoundResponse(w, r)
		return
	}

	respondJSON(w, http.StatusOK, order)
}

// Cancel handles POST /orders/{id}/cancel. Owners may cancel their own
// orders while the state machine still allows it.
func (h *OrderHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	claims, ok := currentUser(w, r)
	if !ok {
		return
	}

	id, err := pathUUID(r, "id")
	if err != nil {
		ErrorResponse(w, r, err)
		return
	}

	order, err := h.orders.GetOrder(r.Context(), id)
	if err != nil {
		ErrorResponse(w, r, err)
		return
	}
	if order.UserID != claims.UserID && !claims.Role.CanManageCatalog() {
		NotFoundResponse(w, r)
		return
	}

	order, err = h.orders.TransitionStatus(r.Context(), id, domain.OrderStatusCancelled, "Cancelled by customer")
	if err != nil {
		ErrorResponse(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, order)
}

// UpdateStatus handles PATCH /orders/{id}/status. Staff only.
func (h *OrderHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		ErrorResponse(w, r, err)
		return
	}

	var req struct {
		Status domain.OrderStatus `json:"status"`
		Note   string             `json:"note,omitempty"`
	}
	if err := decodeJSON(r, &req); err != nil {
		ErrorResponse(w, r, err)
		return
	}

	order, err := h.orders.TransitionStatus(r.Context(), id, req.Status, req.Note)
	if err != nil {
		ErrorResponse(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, order)
}

// UpdateTracking handles PUT /orders/{id}/tracking. Staff only.
func (h *OrderHandler) UpdateTracking(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		ErrorResponse(w, r, err)
		return
	}

	var tracking domain.Tracking
	if err := decodeJSON(r, &tracking); err != nil {
		ErrorResponse(w, r, err)
		return
	}

	order, err := h.orders.UpdateTracking(r.Context(), id, tracking)
	if err != nil {
		ErrorResponse(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, order)
}
