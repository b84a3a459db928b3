package api

import (
	"delivery-sim-service/internal/adapters/events"
	"delivery-sim-service/internal/api/handlers"
	"delivery-sim-service/internal/platform/metrics"
	"delivery-sim-service/internal/ports"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/time/rate"
)

// Options carries the router's dependencies.
type Options struct {
	Store       ports.FleetStore
	Simulations handlers.SimulationRunner
	Broker      *events.Broker
	DB          handlers.Pinger

	// APIToken enables bearer auth when non-empty.
	APIToken string
	// Limiter throttles simulation runs; nil disables limiting.
	Limiter *rate.Limiter
}

// NewRouter wires HTTP handlers with their dependencies and returns an http.Handler.
// This is the API composition root (handlers stay unaware of concrete adapters).
func NewRouter(opts Options) http.Handler {
	mux := http.NewServeMux()

	health := &handlers.HealthHandler{DB: opts.DB}
	drivers := &handlers.DriverHandler{Repo: opts.Store}
	routes := &handlers.RouteHandler{Repo: opts.Store}
	orders := &handlers.OrderHandler{Repo: opts.Store}
	sims := &handlers.SimulationHandler{Service: opts.Simulations}

	metrics.Register()

	mux.HandleFunc("/health", health.Health)
	mux.Handle("/metrics", promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{}))

	mux.HandleFunc("/drivers", drivers.Collection)
	mux.HandleFunc("/drivers/{id}", drivers.Item)
	mux.HandleFunc("/routes", routes.Collection)
	mux.HandleFunc("/routes/{route_id}", routes.Item)
	mux.HandleFunc("/orders", orders.Collection)
	mux.HandleFunc("/orders/{order_id}", orders.Item)

	mux.HandleFunc("/simulations", rateLimit(opts.Limiter, sims.Collection))
	if opts.Broker != nil {
		stream := &handlers.StreamHandler{Broker: opts.Broker}
		mux.HandleFunc("/simulations/stream", stream.Stream)
	}
	mux.HandleFunc("/simulations/{id}", sims.Item)

	var h http.Handler = metricsMiddleware(mux)
	h = authMiddleware(opts.APIToken, h)
	h = loggingMiddleware(h)
	return requestIDMiddleware(h)
}
