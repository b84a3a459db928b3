package domain

import "time"

// SimulationInputs are the caller-supplied parameters of a run.
// RouteStartTime is recorded for history but does not influence assignment.
type SimulationInputs struct {
	AvailableDrivers  int     `json:"available_drivers"`
	MaxHoursPerDriver float64 `json:"max_hours_per_driver"`
	RouteStartTime    string  `json:"route_start_time,omitempty"`
}

// Delivery carries the economics of an assigned order.
type Delivery struct {
	AssignedDriver   string  `json:"assigned_driver"`
	DeliveredTimeMin float64 `json:"delivered_time_min"`
	OnTime           bool    `json:"on_time"`
	Penalty          float64 `json:"penalty"`
	Bonus            float64 `json:"bonus"`
	FuelCost         float64 `json:"fuel_cost"`
	OrderProfit      float64 `json:"order_profit"`
}

// OrderOutcome is the per-run verdict for one order.
// Unassigned outcomes carry only the id and status.
type OrderOutcome struct {
	OrderID int         `json:"order_id"`
	Status  OrderStatus `json:"status"`
	*Delivery
}

func (o OrderOutcome) Assigned() bool { return o.Delivery != nil }

// SimulationReport holds fleet KPIs and the ordered per-order breakdown.
type SimulationReport struct {
	TotalProfit      float64        `json:"total_profit"`
	EfficiencyScore  float64        `json:"efficiency_score"`
	OnTimeDeliveries int            `json:"on_time_deliveries"`
	LateDeliveries   int            `json:"late_deliveries"`
	UnassignedOrders []int          `json:"unassigned_orders"`
	FuelCostTotal    float64        `json:"fuel_cost_total"`
	Orders           []OrderOutcome `json:"orders"`
}

// SimulationResult is an immutable, append-only history record of one run.
type SimulationResult struct {
	ID        string
	Inputs    SimulationInputs
	Results   SimulationReport
	CreatedAt time.Time
}
