package handlers

import (
	"delivery-sim-service/internal/api/dto"
	"delivery-sim-service/internal/domain"
	"delivery-sim-service/internal/ports"
	"fmt"
	"net/http"
)

// RouteHandler exposes CRUD endpoints for routes keyed by route_id.
type RouteHandler struct {
	Repo ports.RouteRepository
}

func (h *RouteHandler) Collection(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		routes, err := h.Repo.ListRoutes(r.Context())
		if err != nil {
			writeDomainError(w, r, "list routes", err)
			return
		}

		res := dto.ListRoutesResponse{Routes: make([]dto.RouteResponse, 0, len(routes))}
		for _, rt := range routes {
			res.Routes = append(res.Routes, routeResponse(rt))
		}
		writeJSON(w, r, http.StatusOK, res)

	case http.MethodPost:
		var req dto.RouteRequest
		if err := decodeJSON(r, w, &req, true); err != nil {
			writeProblem(w, r, http.StatusBadRequest, "InvalidParameter", fmt.Sprintf("invalid json body: %v", err))
			return
		}

		created, err := h.Repo.CreateRoute(r.Context(), routeFromRequest(req))
		if err != nil {
			writeDomainError(w, r, "create route", err)
			return
		}
		writeJSON(w, r, http.StatusCreated, routeResponse(created))

	default:
		methodNotAllowed(w, r, http.MethodGet, http.MethodPost)
	}
}

func (h *RouteHandler) Item(w http.ResponseWriter, r *http.Request) {
	id, ok := pathInt(r, "route_id")
	if !ok {
		writeProblem(w, r, http.StatusBadRequest, "InvalidParameter", "route_id must be a positive integer")
		return
	}
	routeID := int(id)

	switch r.Method {
	case http.MethodGet:
		rt, err := h.Repo.GetRoute(r.Context(), routeID)
		if err != nil {
			writeDomainError(w, r, "get route", err)
			return
		}
		writeJSON(w, r, http.StatusOK, routeResponse(rt))

	case http.MethodPut:
		var req dto.RouteRequest
		if err := decodeJSON(r, w, &req, true); err != nil {
			writeProblem(w, r, http.StatusBadRequest, "InvalidParameter", fmt.Sprintf("invalid json body: %v", err))
			return
		}
		req.RouteID = routeID

		updated, err := h.Repo.UpdateRoute(r.Context(), routeFromRequest(req))
		if err != nil {
			writeDomainError(w, r, "update route", err)
			return
		}
		writeJSON(w, r, http.StatusOK, routeResponse(updated))

	case http.MethodDelete:
		if err := h.Repo.DeleteRoute(r.Context(), routeID); err != nil {
			writeDomainError(w, r, "delete route", err)
			return
		}
		w.WriteHeader(http.StatusNoContent)

	default:
		methodNotAllowed(w, r, http.MethodGet, http.MethodPut, http.MethodDelete)
	}
}

func routeFromRequest(req dto.RouteRequest) domain.Route {
	return domain.Route{
		RouteID:      req.RouteID,
		DistanceKm:   req.DistanceKm,
		TrafficLevel: domain.TrafficLevel(req.TrafficLevel),
		BaseTimeMin:  req.BaseTimeMin,
	}
}

func routeResponse(r *domain.Route) dto.RouteResponse {
	return dto.RouteResponse{
		RouteID:      r.RouteID,
		DistanceKm:   r.DistanceKm,
		TrafficLevel: string(r.TrafficLevel),
		BaseTimeMin:  r.BaseTimeMin,
	}
}
