package handlers

import (
	"delivery-sim-service/internal/api/dto"
	"delivery-sim-service/internal/domain"
	"delivery-sim-service/internal/ports"
	"fmt"
	"net/http"
)

// DriverHandler exposes CRUD endpoints for drivers.
type DriverHandler struct {
	Repo ports.DriverRepository
}

// Collection serves GET and POST on /drivers.
func (h *DriverHandler) Collection(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		drivers, err := h.Repo.ListDrivers(r.Context())
		if err != nil {
			writeDomainError(w, r, "list drivers", err)
			return
		}

		res := dto.ListDriversResponse{Drivers: make([]dto.DriverResponse, 0, len(drivers))}
		for _, d := range drivers {
			res.Drivers = append(res.Drivers, driverResponse(d))
		}
		writeJSON(w, r, http.StatusOK, res)

	case http.MethodPost:
		d, ok := h.decode(w, r)
		if !ok {
			return
		}

		created, err := h.Repo.CreateDriver(r.Context(), d)
		if err != nil {
			writeDomainError(w, r, "create driver", err)
			return
		}
		writeJSON(w, r, http.StatusCreated, driverResponse(created))

	default:
		methodNotAllowed(w, r, http.MethodGet, http.MethodPost)
	}
}

// Item serves GET, PUT and DELETE on /drivers/{id}.
func (h *DriverHandler) Item(w http.ResponseWriter, r *http.Request) {
	id, ok := pathInt(r, "id")
	if !ok {
		writeProblem(w, r, http.StatusBadRequest, "InvalidParameter", "id must be a positive integer")
		return
	}

	switch r.Method {
	case http.MethodGet:
		d, err := h.Repo.GetDriver(r.Context(), id)
		if err != nil {
			writeDomainError(w, r, "get driver", err)
			return
		}
		writeJSON(w, r, http.StatusOK, driverResponse(d))

	case http.MethodPut:
		d, ok := h.decode(w, r)
		if !ok {
			return
		}
		d.ID = id

		updated, err := h.Repo.UpdateDriver(r.Context(), d)
		if err != nil {
			writeDomainError(w, r, "update driver", err)
			return
		}
		writeJSON(w, r, http.StatusOK, driverResponse(updated))

	case http.MethodDelete:
		if err := h.Repo.DeleteDriver(r.Context(), id); err != nil {
			writeDomainError(w, r, "delete driver", err)
			return
		}
		w.WriteHeader(http.StatusNoContent)

	default:
		methodNotAllowed(w, r, http.MethodGet, http.MethodPut, http.MethodDelete)
	}
}

func (h *DriverHandler) decode(w http.ResponseWriter, r *http.Request) (domain.Driver, bool) {
	var req dto.DriverRequest
	if err := decodeJSON(r, w, &req, true); err != nil {
		writeProblem(w, r, http.StatusBadRequest, "InvalidParameter", fmt.Sprintf("invalid json body: %v", err))
		return domain.Driver{}, false
	}

	d := domain.Driver{Name: req.Name, ShiftHours: req.ShiftHours, PastWeekHours: req.PastWeekHours}
	if err := d.Validate(); err != nil {
		writeDomainError(w, r, "validate driver", err)
		return domain.Driver{}, false
	}
	return d, true
}

func driverResponse(d *domain.Driver) dto.DriverResponse {
	hours := d.PastWeekHours
	if hours == nil {
		hours = []float64{}
	}
	return dto.DriverResponse{
		ID:                d.ID,
		Name:              d.Name,
		ShiftHours:        d.ShiftHours,
		PastWeekHours:     hours,
		FatigueMultiplier: d.FatigueMultiplier(),
	}
}
