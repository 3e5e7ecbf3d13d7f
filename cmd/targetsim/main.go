package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/saviobatista/pointing-sim/internal/config"
	"github.com/saviobatista/pointing-sim/internal/nats"
	"github.com/saviobatista/pointing-sim/internal/stats"
	"github.com/saviobatista/pointing-sim/internal/target"
)

func main() {
	if err := run(); err != nil {
		log.Printf("Target simulator failed: %v", err)
		os.Exit(1)
	}
}

// run contains the main application logic and can be tested
func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	st := stats.New()

	// The NATS bus is optional; without it the simulator only serves TCP
	// clients.
	var publisher target.Publisher
	if cfg.NATSURL != "" {
		client, err := nats.New(cfg.NATSURL)
		if err != nil {
			return fmt.Errorf("failed to create NATS client: %w", err)
		}
		defer client.Close()
		publisher = client
		log.Printf("Publishing telemetry to NATS at %s", cfg.NATSURL)
	}

	scenario := target.DefaultScenario()
	scenario.TickPeriod = cfg.TickPeriod

	sim, err := target.New(cfg.TargetAddr, scenario, publisher, st)
	if err != nil {
		// Cannot bind the listening port: environment error, fatal.
		return err
	}
	log.Printf("Target simulator broadcasting on %s every %s", sim.Addr(), cfg.TickPeriod)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	go st.StartLogging(ctx, cfg.StatsInterval)

	sim.Run(ctx)
	log.Println("Shutting down...")
	return nil
}
