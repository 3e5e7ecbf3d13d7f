package main

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/saviobatista/pointing-sim/internal/config"
	"github.com/saviobatista/pointing-sim/internal/mount"
)

func main() {
	if err := run(); err != nil {
		log.Printf("Mount simulator failed: %v", err)
		os.Exit(1)
	}
}

// run contains the main application logic and can be tested
func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	m := mount.New()
	srv, err := mount.NewServer(m, cfg.MountAddr)
	if err != nil {
		return err
	}
	log.Printf("Mount simulator listening on %s", srv.Addr())

	go srv.Serve()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	log.Println("Shutting down...")
	return srv.Close()
}
