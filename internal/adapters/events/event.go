package events

import (
	"delivery-sim-service/internal/domain"
	"encoding/json"
	"fmt"
	"time"
)

const EventSimulationCompleted = "simulation.completed"

// SimulationEvent is the wire payload every publisher emits.
type SimulationEvent struct {
	Type             string                  `json:"type"`
	SimulationID     string                  `json:"simulation_id"`
	Timestamp        time.Time               `json:"timestamp"`
	Inputs           domain.SimulationInputs `json:"inputs"`
	TotalProfit      float64                 `json:"total_profit"`
	EfficiencyScore  float64                 `json:"efficiency_score"`
	OnTimeDeliveries int                     `json:"on_time_deliveries"`
	LateDeliveries   int                     `json:"late_deliveries"`
	UnassignedOrders []int                   `json:"unassigned_orders"`
	FuelCostTotal    float64                 `json:"fuel_cost_total"`
}

func NewSimulationEvent(res *domain.SimulationResult) SimulationEvent {
	unassigned := res.Results.UnassignedOrders
	if unassigned == nil {
		unassigned = []int{}
	}

	return SimulationEvent{
		Type:             EventSimulationCompleted,
		SimulationID:     res.ID,
		Timestamp:        res.CreatedAt.UTC(),
		Inputs:           res.Inputs,
		TotalProfit:      res.Results.TotalProfit,
		EfficiencyScore:  res.Results.EfficiencyScore,
		OnTimeDeliveries: res.Results.OnTimeDeliveries,
		LateDeliveries:   res.Results.LateDeliveries,
		UnassignedOrders: unassigned,
		FuelCostTotal:    res.Results.FuelCostTotal,
	}
}

func encodeEvent(res *domain.SimulationResult) ([]byte, error) {
	if res == nil {
		return nil, fmt.Errorf("encode event: nil simulation result")
	}

	body, err := json.Marshal(NewSimulationEvent(res))
	if err != nil {
		return nil, fmt.Errorf("encode event %s: %w", res.ID, err)
	}
	return body, nil
}
