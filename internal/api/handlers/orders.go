package handlers

import (
	"delivery-sim-service/internal/api/dto"
	"delivery-sim-service/internal/domain"
	"delivery-sim-service/internal/ports"
	"fmt"
	"net/http"
)

type OrderHandler struct {
	Repo ports.OrderRepository
}

func (h *OrderHandler) Collection(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		orders, err := h.Repo.ListOrders(r.Context())
		if err != nil {
			writeDomainError(w, r, "list orders", err)
			return
		}

		res := dto.ListOrdersResponse{Orders: make([]dto.OrderResponse, 0, len(orders))}
		for _, o := range orders {
			res.Orders = append(res.Orders, orderResponse(o))
		}
		writeJSON(w, r, http.StatusOK, res)

	case http.MethodPost:
		o, ok := h.decode(w, r)
		if !ok {
			return
		}

		created, err := h.Repo.CreateOrder(r.Context(), o)
		if err != nil {
			writeDomainError(w, r, "create order", err)
			return
		}
		writeJSON(w, r, http.StatusCreated, orderResponse(created))

	default:
		methodNotAllowed(w, r, http.MethodGet, http.MethodPost)
	}
}

func (h *OrderHandler) Item(w http.ResponseWriter, r *http.Request) {
	id, ok := pathInt(r, "order_id")
	if !ok {
		writeProblem(w, r, http.StatusBadRequest, "InvalidParameter", "order_id must be a positive integer")
		return
	}
	orderID := int(id)

	switch r.Method {
	case http.MethodGet:
		o, err := h.Repo.GetOrder(r.Context(), orderID)
		if err != nil {
			writeDomainError(w, r, "get order", err)
			return
		}
		writeJSON(w, r, http.StatusOK, orderResponse(o))

	case http.MethodPut:
		o, ok := h.decode(w, r)
		if !ok {
			return
		}
		o.OrderID = orderID

		updated, err := h.Repo.UpdateOrder(r.Context(), o)
		if err != nil {
			writeDomainError(w, r, "update order", err)
			return
		}
		writeJSON(w, r, http.StatusOK, orderResponse(updated))

	case http.MethodDelete:
		if err := h.Repo.DeleteOrder(r.Context(), orderID); err != nil {
			writeDomainError(w, r, "delete order", err)
			return
		}
		w.WriteHeader(http.StatusNoContent)

	default:
		methodNotAllowed(w, r, http.MethodGet, http.MethodPut, http.MethodDelete)
	}
}

func (h *OrderHandler) decode(w http.ResponseWriter, r *http.Request) (domain.Order, bool) {
	var req dto.OrderRequest
	if err := decodeJSON(r, w, &req, true); err != nil {
		writeProblem(w, r, http.StatusBadRequest, "InvalidParameter", fmt.Sprintf("invalid json body: %v", err))
		return domain.Order{}, false
	}

	at, err := domain.ParseTimeOfDay(req.DeliveryTime)
	if err != nil {
		writeDomainError(w, r, "parse delivery_time", err)
		return domain.Order{}, false
	}

	return domain.Order{
		OrderID:          req.OrderID,
		ValueRs:          req.ValueRs,
		RouteID:          req.RouteID,
		DeliveryTime:     at,
		AssignedDriverID: req.AssignedDriverID,
		Status:           domain.OrderStatus(req.Status),
	}, true
}

func orderResponse(o *domain.Order) dto.OrderResponse {
	res := dto.OrderResponse{
		OrderID:          o.OrderID,
		ValueRs:          o.ValueRs,
		RouteID:          o.RouteID,
		DeliveryTime:     o.DeliveryTime.String(),
		AssignedDriverID: o.AssignedDriverID,
		Status:           string(o.Status),
	}
	if o.Route != nil {
		rt := routeResponse(o.Route)
		res.Route = &rt
	}
	return res
}
