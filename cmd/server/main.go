package main

import (
	"context"
	"delivery-sim-service/internal/adapters/events"
	"delivery-sim-service/internal/adapters/repositories"
	"delivery-sim-service/internal/api"
	"delivery-sim-service/internal/config"
	"delivery-sim-service/internal/platform/db"
	"delivery-sim-service/internal/ports"
	"delivery-sim-service/internal/services"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/time/rate"
)

// main is the application composition root.
// It wires concrete adapters (SQL store, event publishers) behind ports and starts the HTTP server.
func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found (using environment variables)")
	}

	cfg, err := config.Load(config.Get("CONFIG_PATH", "config.yaml"))
	if err != nil {
		log.Fatal(err)
	}

	if err := run(cfg); err != nil {
		log.Fatal(err)
	}
}

func run(cfg config.Config) error {
	conn, err := db.Open(cfg.DBDriver, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer conn.Close()

	dialect, err := repositories.DialectFor(cfg.DBDriver)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := repositories.InitSchema(ctx, conn, dialect); err != nil {
		return fmt.Errorf("startup: %w", err)
	}

	store := repositories.NewSQLStore(conn, dialect)

	broker := events.NewBroker()
	publisher, closers, err := buildPublisher(ctx, cfg, broker)
	if err != nil {
		return err
	}
	defer func() {
		for _, c := range closers {
			_ = c.Close()
		}
	}()

	var limiter *rate.Limiter
	if cfg.RateRPS > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.RateRPS), cfg.RateBurst)
	}

	router := api.NewRouter(api.Options{
		Store:       store,
		Simulations: services.NewSimulationService(store, publisher),
		Broker:      broker,
		DB:          conn,
		APIToken:    cfg.APIToken,
		Limiter:     limiter,
	})

	log.Printf("Server listening addr=:%s db_driver=%s", cfg.Port, cfg.DBDriver)
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Println("Shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// buildPublisher fans simulation events out to the in-process broker and,
// when configured, Redis and RabbitMQ.
func buildPublisher(ctx context.Context, cfg config.Config, broker *events.Broker) (ports.SimulationPublisher, []io.Closer, error) {
	targets := events.MultiPublisher{broker}
	var closers []io.Closer

	if cfg.RedisURL != "" {
		p, err := events.NewRedisPublisher(cfg.RedisURL)
		if err != nil {
			return nil, nil, err
		}
		pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
		err = p.Ping(pingCtx)
		cancel()
		if err != nil {
			log.Printf("redis unreachable at startup: err=%v", err)
		}
		targets = append(targets, events.WithRetry(p))
		closers = append(closers, p)
	}

	if cfg.AMQPURL != "" {
		p, err := events.DialAMQP(cfg.AMQPURL)
		if err != nil {
			for _, c := range closers {
				_ = c.Close()
			}
			return nil, nil, err
		}
		targets = append(targets, events.WithRetry(p))
		closers = append(closers, p)
	}

	return targets, closers, nil
}
