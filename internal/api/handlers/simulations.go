package handlers

import (
	"context"
	"delivery-sim-service/internal/api/dto"
	"delivery-sim-service/internal/domain"
	"net/http"
	"strings"
)

// SimulationRunner is the slice of services.SimulationService the handlers need.
type SimulationRunner interface {
	Run(ctx context.Context, in domain.SimulationInputs) (*domain.SimulationResult, error)
	List(ctx context.Context) ([]*domain.SimulationResult, error)
	Get(ctx context.Context, id string) (*domain.SimulationResult, error)
}

type SimulationHandler struct {
	Service SimulationRunner
}

// Collection runs a simulation on POST and lists history on GET.
func (h *SimulationHandler) Collection(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		history, err := h.Service.List(r.Context())
		if err != nil {
			writeDomainError(w, r, "list simulations", err)
			return
		}

		res := dto.ListSimulationsResponse{Simulations: make([]dto.SimulationResponse, 0, len(history))}
		for _, s := range history {
			res.Simulations = append(res.Simulations, simulationResponse(s))
		}
		writeJSON(w, r, http.StatusOK, res)

	case http.MethodPost:
		h.run(w, r)

	default:
		methodNotAllowed(w, r, http.MethodGet, http.MethodPost)
	}
}

func (h *SimulationHandler) run(w http.ResponseWriter, r *http.Request) {
	var req dto.SimulationRequest
	if err := decodeJSON(r, w, &req, false); err != nil || req.AvailableDrivers == nil || req.MaxHoursPerDriver == nil {
		writeProblem(w, r, http.StatusBadRequest, "InvalidParameter", "check input types")
		return
	}

	res, err := h.Service.Run(r.Context(), domain.SimulationInputs{
		AvailableDrivers:  *req.AvailableDrivers,
		MaxHoursPerDriver: *req.MaxHoursPerDriver,
		RouteStartTime:    strings.TrimSpace(req.RouteStartTime),
	})
	if err != nil {
		writeDomainError(w, r, "run simulation", err)
		return
	}

	writeJSON(w, r, http.StatusOK, simulationResponse(res))
}

func (h *SimulationHandler) Item(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r, http.MethodGet)
		return
	}

	res, err := h.Service.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		writeDomainError(w, r, "get simulation", err)
		return
	}
	writeJSON(w, r, http.StatusOK, simulationResponse(res))
}

func simulationResponse(s *domain.SimulationResult) dto.SimulationResponse {
	return dto.SimulationResponse{
		ID:        s.ID,
		Timestamp: s.CreatedAt,
		Inputs:    s.Inputs,
		Results:   s.Results,
	}
}
