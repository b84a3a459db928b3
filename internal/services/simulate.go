package services

import (
	"cmp"
	"delivery-sim-service/internal/domain"
	"errors"
	"fmt"
	"math"
	"slices"
)

// driverState is the per-run mutable view of a selected driver.
type driverState struct {
	driver        *domain.Driver
	workedMinutes float64
	multiplier    float64
}

// Simulate assigns orders to drivers under a per-driver hour cap and scores each delivery.
//
// Drivers are taken by ascending shift hours and truncated to availableDrivers.
// Orders are processed by requested delivery time, higher value first on ties.
// A single round-robin cursor walks the driver list across all orders; each order
// tries at most one full rotation before it is recorded as unassigned.
// The estimated delivery time doubles as the actual time for lateness, so results
// are deterministic for a given input.
//
// Inputs are never mutated.
func Simulate(
	drivers []*domain.Driver,
	orders []*domain.Order,
	availableDrivers int,
	maxHoursPerDriver float64,
) (*domain.SimulationReport, error) {
	if availableDrivers < 1 || availableDrivers > len(drivers) {
		return nil, fmt.Errorf(
			"%w: available_drivers must be between 1 and %d",
			domain.ErrInvalidParameter, len(drivers),
		)
	}

	if !(maxHoursPerDriver > 0) || math.IsInf(maxHoursPerDriver, 1) {
		return nil, fmt.Errorf("%w: max_hours_per_driver must be positive", domain.ErrInvalidParameter)
	}

	states, err := selectDrivers(drivers, availableDrivers)
	if err != nil {
		return nil, fmt.Errorf("simulate: %w", err)
	}

	queue, err := orderQueue(orders)
	if err != nil {
		return nil, fmt.Errorf("simulate: %w", err)
	}

	report := &domain.SimulationReport{
		UnassignedOrders: []int{},
		Orders:           make([]domain.OrderOutcome, 0, len(queue)),
	}

	var (
		cursor        int
		assigned      int
		totalProfit   float64
		totalFuelCost float64
	)

	for _, order := range queue {
		var chosen *driverState
		var minutes float64

		cursor, chosen, minutes = place(states, cursor, order.Route.BaseTimeMin, maxHoursPerDriver)
		if chosen == nil {
			report.Orders = append(report.Orders, domain.OrderOutcome{
				OrderID: order.OrderID,
				Status:  domain.OrderUnassigned,
			})
			report.UnassignedOrders = append(report.UnassignedOrders, order.OrderID)
			continue
		}

		chosen.workedMinutes += minutes
		// Next order starts its search one driver further along.
		cursor = (cursor + 1) % len(states)

		delivery := score(order, chosen.driver.Name, minutes)
		status := domain.OrderDelivered
		if delivery.OnTime {
			report.OnTimeDeliveries++
		} else {
			status = domain.OrderLate
			report.LateDeliveries++
		}

		report.Orders = append(report.Orders, domain.OrderOutcome{
			OrderID:  order.OrderID,
			Status:   status,
			Delivery: delivery,
		})

		assigned++
		totalProfit += delivery.OrderProfit
		totalFuelCost += delivery.FuelCost
	}

	efficiency := 0.0
	if assigned > 0 {
		efficiency = float64(report.OnTimeDeliveries) / float64(assigned) * 100
	}

	report.TotalProfit = round2(totalProfit)
	report.FuelCostTotal = round2(totalFuelCost)
	report.EfficiencyScore = round2(efficiency)

	return report, nil
}

// selectDrivers picks the least-loaded drivers; the stable sort keeps input order on ties.
func selectDrivers(drivers []*domain.Driver, n int) ([]driverState, error) {
	sorted := slices.Clone(drivers)
	for i, d := range sorted {
		if d == nil {
			return nil, fmt.Errorf("select drivers: driver at index %d is nil", i)
		}
	}

	slices.SortStableFunc(sorted, func(a, b *domain.Driver) int {
		return cmp.Compare(a.ShiftHours, b.ShiftHours)
	})

	states := make([]driverState, 0, n)
	for _, d := range sorted[:n] {
		states = append(states, driverState{
			driver:     d,
			multiplier: d.FatigueMultiplier(),
		})
	}

	return states, nil
}

// orderQueue returns orders by delivery time, then by descending value, then input order.
func orderQueue(orders []*domain.Order) ([]*domain.Order, error) {
	queue := slices.Clone(orders)
	for i, o := range queue {
		if o == nil {
			return nil, fmt.Errorf("order queue: order at index %d is nil", i)
		}
		if o.Route == nil {
			return nil, fmt.Errorf("order queue: order %d: route %d not resolved: %w", o.OrderID, o.RouteID, errMissingRoute)
		}
	}

	slices.SortStableFunc(queue, func(a, b *domain.Order) int {
		if c := cmp.Compare(a.DeliveryTime, b.DeliveryTime); c != 0 {
			return c
		}
		return cmp.Compare(b.ValueRs, a.ValueRs)
	})

	return queue, nil
}

var errMissingRoute = errors.New("missing route")

// place scans at most one rotation from cursor for a driver with capacity.
// It returns the cursor where the scan stopped, the chosen driver (nil if none)
// and the fatigue-adjusted delivery minutes for that driver.
func place(states []driverState, cursor int, baseTimeMin, maxHours float64) (int, *driverState, float64) {
	for attempt := 0; attempt < len(states); attempt++ {
		st := &states[cursor]
		minutes := baseTimeMin * st.multiplier

		if st.workedMinutes/60+minutes/60 <= maxHours {
			return cursor, st, minutes
		}

		cursor = (cursor + 1) % len(states)
	}

	return cursor, nil, 0
}

func score(order *domain.Order, driverName string, actualMinutes float64) *domain.Delivery {
	route := order.Route

	late := domain.IsLate(actualMinutes, route.BaseTimeMin)
	bonus := domain.Bonus(order.ValueRs, late)
	penalty := domain.Penalty(late)
	fuel := domain.FuelCost(route.DistanceKm, route.TrafficLevel)

	return &domain.Delivery{
		AssignedDriver:   driverName,
		DeliveredTimeMin: actualMinutes,
		OnTime:           !late,
		Penalty:          penalty,
		Bonus:            bonus,
		FuelCost:         fuel,
		OrderProfit:      domain.OrderProfit(order.ValueRs, bonus, penalty, fuel),
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
