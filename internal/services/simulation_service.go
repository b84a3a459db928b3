package services

import (
	"context"
	"delivery-sim-service/internal/domain"
	"delivery-sim-service/internal/platform/metrics"
	"delivery-sim-service/internal/platform/obs"
	"delivery-sim-service/internal/ports"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
)

// SimulationService runs simulations against a consistent snapshot of the store
// and keeps the resulting history.
type SimulationService struct {
	Drivers   ports.DriverRepository
	Orders    ports.OrderRepository
	History   ports.SimulationRepository
	Publisher ports.SimulationPublisher

	Now   func() time.Time
	NewID func() string
}

func NewSimulationService(store ports.FleetStore, publisher ports.SimulationPublisher) *SimulationService {
	return &SimulationService{
		Drivers:   store,
		Orders:    store,
		History:   store,
		Publisher: publisher,
		Now:       func() time.Time { return time.Now().UTC() },
		NewID:     uuid.NewString,
	}
}

// Run executes one simulation and stores its result.
// Parameter errors wrap domain.ErrInvalidParameter and leave no history record.
func (s *SimulationService) Run(
	ctx context.Context,
	in domain.SimulationInputs,
) (_ *domain.SimulationResult, err error) {
	defer obs.Time(ctx, "simulation.Run")(&err)

	start := time.Now()
	defer func() {
		metrics.SimulationDuration.Observe(time.Since(start).Seconds())
		switch {
		case err == nil:
			metrics.SimulationRuns.WithLabelValues("ok").Inc()
		case errors.Is(err, domain.ErrInvalidParameter):
			metrics.SimulationRuns.WithLabelValues("rejected").Inc()
		default:
			metrics.SimulationRuns.WithLabelValues("failed").Inc()
		}
	}()

	in.RouteStartTime = strings.TrimSpace(in.RouteStartTime)
	if in.RouteStartTime != "" {
		if _, err := domain.ParseTimeOfDay(in.RouteStartTime); err != nil {
			return nil, fmt.Errorf("%w: route_start_time must be HH:MM", domain.ErrInvalidParameter)
		}
	}

	drivers, err := s.Drivers.ListDrivers(ctx)
	if err != nil {
		return nil, fmt.Errorf("run simulation: list drivers: %w", err)
	}

	orders, err := s.Orders.ListOrders(ctx)
	if err != nil {
		return nil, fmt.Errorf("run simulation: list orders: %w", err)
	}

	report, err := Simulate(drivers, orders, in.AvailableDrivers, in.MaxHoursPerDriver)
	if err != nil {
		return nil, fmt.Errorf("run simulation: %w", err)
	}

	res := &domain.SimulationResult{
		ID:        s.NewID(),
		Inputs:    in,
		Results:   *report,
		CreatedAt: s.Now(),
	}

	if err := s.History.SaveSimulation(ctx, res); err != nil {
		return nil, fmt.Errorf("run simulation: save result: %w", err)
	}

	for _, o := range report.Orders {
		metrics.SimulationOrders.WithLabelValues(string(o.Status)).Inc()
	}

	// Publish failures are logged only; the result is already stored.
	if s.Publisher != nil {
		if err := s.Publisher.PublishSimulation(ctx, res); err != nil {
			metrics.EventPublishFailures.Inc()
			log.Printf("simulation event publish failed: id=%s err=%v", res.ID, err)
		}
	}

	return res, nil
}

// List returns the simulation history, oldest first.
func (s *SimulationService) List(ctx context.Context) ([]*domain.SimulationResult, error) {
	res, err := s.History.ListSimulations(ctx)
	if err != nil {
		return nil, fmt.Errorf("list simulations: %w", err)
	}
	return res, nil
}

func (s *SimulationService) Get(ctx context.Context, id string) (*domain.SimulationResult, error) {
	res, err := s.History.GetSimulation(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get simulation %q: %w", id, err)
	}
	return res, nil
}
