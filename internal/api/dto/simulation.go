package dto

import (
	"delivery-sim-service/internal/domain"
	"time"
)

// SimulationRequest uses pointers so a missing field is told apart from zero.
type SimulationRequest struct {
	AvailableDrivers  *int     `json:"available_drivers"`
	MaxHoursPerDriver *float64 `json:"max_hours_per_driver"`
	RouteStartTime    string   `json:"route_start_time"`
}

type SimulationResponse struct {
	ID        string                  `json:"id"`
	Timestamp time.Time               `json:"timestamp"`
	Inputs    domain.SimulationInputs `json:"inputs"`
	Results   domain.SimulationReport `json:"results"`
}

type ListSimulationsResponse struct {
	Simulations []SimulationResponse `json:"simulations"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
