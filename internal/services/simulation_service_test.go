package services

import (
	"context"
	"delivery-sim-service/internal/adapters/repositories"
	"delivery-sim-service/internal/domain"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"
)

type recordingPublisher struct {
	mu   sync.Mutex
	ids  []string
	fail error
}

func (p *recordingPublisher) PublishSimulation(ctx context.Context, res *domain.SimulationResult) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.ids = append(p.ids, res.ID)
	return p.fail
}

func seededStore(t *testing.T) *repositories.MemoryStore {
	t.Helper()
	ctx := context.Background()
	store := repositories.NewMemoryStore()

	for _, d := range []domain.Driver{
		{Name: "A", PastWeekHours: []float64{6, 6, 6, 6, 6, 6, 7}},
		{Name: "B", PastWeekHours: []float64{6, 6, 6, 6, 6, 6, 7}},
	} {
		if _, err := store.CreateDriver(ctx, d); err != nil {
			t.Fatalf("seed driver: %v", err)
		}
	}

	if _, err := store.CreateRoute(ctx, domain.Route{RouteID: 1, DistanceKm: 10, TrafficLevel: domain.TrafficLow, BaseTimeMin: 60}); err != nil {
		t.Fatalf("seed route: %v", err)
	}

	for i, v := range []float64{500, 1500} {
		at, _ := domain.ParseTimeOfDay(fmt.Sprintf("0%d:00", i+1))
		if _, err := store.CreateOrder(ctx, domain.Order{OrderID: i + 1, ValueRs: v, RouteID: 1, DeliveryTime: at}); err != nil {
			t.Fatalf("seed order: %v", err)
		}
	}
	return store
}

func fixedService(store *repositories.MemoryStore, pub *recordingPublisher) *SimulationService {
	svc := NewSimulationService(store, pub)
	n := 0
	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	svc.NewID = func() string {
		n++
		return fmt.Sprintf("sim-%d", n)
	}
	svc.Now = func() time.Time { return base.Add(time.Duration(n) * time.Second) }
	return svc
}

func TestSimulationServiceRun(t *testing.T) {
	ctx := context.Background()
	store := seededStore(t)
	pub := &recordingPublisher{}
	svc := fixedService(store, pub)

	res, err := svc.Run(ctx, domain.SimulationInputs{AvailableDrivers: 2, MaxHoursPerDriver: 8, RouteStartTime: " 09:00 "})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if res.ID != "sim-1" || res.Results.TotalProfit != 2050 {
		t.Fatalf("got %s profit %v, want sim-1 profit 2050", res.ID, res.Results.TotalProfit)
	}
	if res.Inputs.RouteStartTime != "09:00" {
		t.Fatalf("route_start_time = %q, want 09:00", res.Inputs.RouteStartTime)
	}
	if len(pub.ids) != 1 || pub.ids[0] != "sim-1" {
		t.Fatalf("published %v, want [sim-1]", pub.ids)
	}

	stored, err := svc.Get(ctx, "sim-1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if stored.Results.EfficiencyScore != 100 {
		t.Fatalf("stored efficiency = %v, want 100", stored.Results.EfficiencyScore)
	}

	// simulations never write back onto orders
	orders, err := store.ListOrders(ctx)
	if err != nil {
		t.Fatalf("list orders: %v", err)
	}
	for _, o := range orders {
		if o.Status != domain.OrderPending || o.AssignedDriverID != nil {
			t.Fatalf("order %d changed: status=%s", o.OrderID, o.Status)
		}
	}
}

func TestSimulationServiceRejectsWithoutHistory(t *testing.T) {
	ctx := context.Background()
	store := seededStore(t)
	pub := &recordingPublisher{}
	svc := fixedService(store, pub)

	bad := []domain.SimulationInputs{
		{AvailableDrivers: 3, MaxHoursPerDriver: 8},
		{AvailableDrivers: 0, MaxHoursPerDriver: 8},
		{AvailableDrivers: 1, MaxHoursPerDriver: 0},
		{AvailableDrivers: 1, MaxHoursPerDriver: 8, RouteStartTime: "9am"},
	}
	for _, in := range bad {
		if _, err := svc.Run(ctx, in); !errors.Is(err, domain.ErrInvalidParameter) {
			t.Fatalf("inputs %+v: got %v, want ErrInvalidParameter", in, err)
		}
	}

	history, err := svc.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(history) != 0 {
		t.Fatalf("history has %d runs, want 0", len(history))
	}
	if len(pub.ids) != 0 {
		t.Fatalf("published %v, want nothing", pub.ids)
	}
}

func TestSimulationServicePublishFailureKeepsResult(t *testing.T) {
	ctx := context.Background()
	store := seededStore(t)
	pub := &recordingPublisher{fail: errors.New("broker down")}
	svc := fixedService(store, pub)

	res, err := svc.Run(ctx, domain.SimulationInputs{AvailableDrivers: 1, MaxHoursPerDriver: 8})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, err := svc.Get(ctx, res.ID); err != nil {
		t.Fatalf("result should be stored: %v", err)
	}
}

func TestSimulationServiceHistoryOrder(t *testing.T) {
	ctx := context.Background()
	svc := fixedService(seededStore(t), &recordingPublisher{})

	for range 3 {
		if _, err := svc.Run(ctx, domain.SimulationInputs{AvailableDrivers: 2, MaxHoursPerDriver: 8}); err != nil {
			t.Fatalf("run: %v", err)
		}
	}

	history, err := svc.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(history) != 3 {
		t.Fatalf("got %d runs, want 3", len(history))
	}
	for i := 1; i < len(history); i++ {
		if history[i].CreatedAt.Before(history[i-1].CreatedAt) {
			t.Fatalf("history not ascending at %d", i)
		}
	}

	if _, err := svc.Get(ctx, "missing"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("got %v, want ErrNotFound", err)
	}
}

func TestSimulationServiceConcurrentRuns(t *testing.T) {
	ctx := context.Background()
	store := seededStore(t)
	svc := NewSimulationService(store, &recordingPublisher{})

	const runs = 8
	var wg sync.WaitGroup
	errs := make(chan error, runs)
	for range runs {
		wg.Add(1)
		go func() {
			defer wg.Done()
			res, err := svc.Run(ctx, domain.SimulationInputs{AvailableDrivers: 2, MaxHoursPerDriver: 8})
			if err != nil {
				errs <- err
				return
			}
			if res.Results.TotalProfit != 2050 {
				errs <- fmt.Errorf("profit = %v, want 2050", res.Results.TotalProfit)
			}
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		t.Fatalf("concurrent run: %v", err)
	}

	history, err := svc.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(history) != runs {
		t.Fatalf("got %d runs, want %d", len(history), runs)
	}
}
