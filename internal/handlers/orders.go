package handlers

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/bdsumon4u/KroyJogot24/internal/services"
	"github.com/bdsumon4u/KroyJogot24/internal/session"
)

func orderIDFromRequest(r *http.Request) (uuid.UUID, error) {
	raw := mux.Vars(r)["id"]
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, fmt.Errorf("order %q: %w", raw, services.ErrNotFound)
	}
	return id, nil
}

// ShowOrder returns one order together with the customer's other orders.
func (h *Handlers) ShowOrder(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	orderID, err := orderIDFromRequest(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	order, err := h.dashboardService.Order(ctx, orderID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	related, err := h.dashboardService.RelatedOrders(ctx, order)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	h.writeJSON(w, r, http.StatusOK, map[string]any{
		"success":        true,
		"order":          order,
		"related_orders": related,
	})
}

// UpdateOrder applies an editor save to one order.
func (h *Handlers) UpdateOrder(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	orderID, err := orderIDFromRequest(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	var input services.EditOrderInput
	if err := decodeJSONBody(r, &input); err != nil {
		h.writeError(w, r, err)
		return
	}

	order, err := h.editorService.Update(ctx, orderID, input)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	h.writeJSON(w, r, http.StatusOK, map[string]any{
		"success":  true,
		"message":  "Order Updated.",
		"order":    order,
		"redirect": "/admin/orders/" + orderID.String(),
	})
}

type addProductRequest struct {
	IDOrSKU     string `json:"id_or_sku"`
	NewQuantity int    `json:"new_quantity"`
}

// AddProduct appends a product line item to the order.
func (h *Handlers) AddProduct(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	orderID, err := orderIDFromRequest(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	var req addProductRequest
	if err := decodeJSONBody(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	if req.IDOrSKU == "" {
		h.writeError(w, r, fmt.Errorf("%w: id_or_sku is required", services.ErrValidation))
		return
	}

	result, err := h.cartService.AddLineItem(ctx, orderID, req.IDOrSKU, req.NewQuantity)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	h.writeJSON(w, r, http.StatusOK, map[string]any{
		"success":  true,
		"message":  cartMessage(result.Changed),
		"order":    result.Order,
		"redirect": "/admin/orders/" + orderID.String(),
	})
}

type updateQuantitiesRequest struct {
	Quantity map[string]int `json:"quantity"`
}

// UpdateQuantities applies a batch of line item quantity changes.
func (h *Handlers) UpdateQuantities(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	orderID, err := orderIDFromRequest(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	var req updateQuantitiesRequest
	if err := decodeJSONBody(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}

	quantities := make(map[int64]int, len(req.Quantity))
	for key, qty := range req.Quantity {
		productID, err := strconv.ParseInt(key, 10, 64)
		if err != nil {
			h.writeError(w, r, fmt.Errorf("%w: invalid product id %q", services.ErrValidation, key))
			return
		}
		quantities[productID] = qty
	}

	result, err := h.cartService.UpdateQuantities(ctx, orderID, quantities)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	h.writeJSON(w, r, http.StatusOK, map[string]any{
		"success":  true,
		"message":  cartMessage(result.Changed),
		"order":    result.Order,
		"redirect": "/admin/orders/" + orderID.String(),
	})
}

// DeleteOrder removes an order, restocking its tracked products first. Only
// the owner role is allowed through.
func (h *Handlers) DeleteOrder(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	orderID, err := orderIDFromRequest(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	sess := session.GetSessionFromContext(ctx)
	if sess == nil {
		h.writeError(w, r, fmt.Errorf("missing session: %w", services.ErrForbidden))
		return
	}

	if err := h.cartService.DeleteOrder(ctx, orderID, sess.Role); err != nil {
		h.writeError(w, r, err)
		return
	}

	h.writeJSON(w, r, http.StatusOK, map[string]any{
		"success":  true,
		"message":  "Order Deleted.",
		"redirect": "/admin/orders",
	})
}

type bulkStatusRequest struct {
	Status   string   `json:"status"`
	OrderIDs []string `json:"order_ids"`
}

// BulkStatus stamps a new status on every listed order.
func (h *Handlers) BulkStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req bulkStatusRequest
	if err := decodeJSONBody(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}

	ids := make([]uuid.UUID, 0, len(req.OrderIDs))
	for _, raw := range req.OrderIDs {
		id, err := uuid.Parse(raw)
		if err != nil {
			h.writeError(w, r, fmt.Errorf("%w: invalid order id %q", services.ErrValidation, raw))
			return
		}
		ids = append(ids, id)
	}

	updated, err := h.editorService.BulkStatusUpdate(ctx, ids, req.Status)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	h.writeJSON(w, r, http.StatusOK, map[string]any{
		"success": true,
		"message": fmt.Sprintf("%d Orders Updated.", updated),
		"updated": updated,
	})
}

// Invoices loads a batch of orders for invoice printing.
func (h *Handlers) Invoices(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	orders, err := h.dashboardService.Invoices(ctx, r.URL.Query().Get("order_id"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	h.writeJSON(w, r, http.StatusOK, map[string]any{
		"success": true,
		"orders":  orders,
	})
}

// Reports returns per-product sales counts for one day.
func (h *Handlers) Reports(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	query := r.URL.Query()

	var date time.Time
	if raw := query.Get("date"); raw != "" {
		parsed, err := time.Parse(time.DateOnly, raw)
		if err != nil {
			h.writeError(w, r, fmt.Errorf("%w: invalid date %q", services.ErrValidation, raw))
			return
		}
		date = parsed
	}

	var staffID int64
	if raw := query.Get("staff_id"); raw != "" {
		parsed, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			h.writeError(w, r, fmt.Errorf("%w: invalid staff_id %q", services.ErrValidation, raw))
			return
		}
		staffID = parsed
	}

	counts, err := h.dashboardService.ProductSales(ctx, query.Get("status"), date, staffID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	h.writeJSON(w, r, http.StatusOK, map[string]any{
		"success": true,
		"sales":   counts,
	})
}

func cartMessage(changed bool) string {
	if changed {
		return "Order Updated."
	}
	return "Not Updated."
}
