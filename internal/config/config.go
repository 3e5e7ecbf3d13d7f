// Package config loads runtime settings from environment variables and an
// optional .env file. Every value has a compiled-in default, so all binaries
// run with no environment at all.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
)

// Defaults mirror the fixed constants of the simulator pair.
const (
	DefaultMountAddr         = "127.0.0.1:45501"
	DefaultTargetAddr        = "127.0.0.1:26262"
	DefaultTickPeriod        = 250 * time.Millisecond
	DefaultFrameInterval     = 50 * time.Millisecond
	DefaultMountPollInterval = time.Second
	DefaultStatsInterval     = 30 * time.Second
)

// Config holds the application configuration.
type Config struct {
	MountAddr         string        // mount control protocol listen/dial address
	TargetAddr        string        // target telemetry listen/dial address
	TickPeriod        time.Duration // target simulator broadcast period
	FrameInterval     time.Duration // consumer frame (interpolation) period
	MountPollInterval time.Duration // consumer mount position poll period
	StatsInterval     time.Duration // periodic stats log period
	NATSURL           string        // optional telemetry bus; empty disables it
	RedisAddr         string        // optional latest-state cache; empty disables it
}

// Load reads the configuration from environment variables and .env file.
func Load() (*Config, error) {
	// Try to load .env file, but don't fail if it doesn't exist
	_ = godotenv.Load()

	cfg := &Config{
		MountAddr:  envOrDefault("MOUNT_ADDR", DefaultMountAddr),
		TargetAddr: envOrDefault("TARGET_ADDR", DefaultTargetAddr),
		NATSURL:    os.Getenv("NATS_URL"),
		RedisAddr:  os.Getenv("REDIS_ADDR"),
	}

	var err error
	if cfg.TickPeriod, err = durationOrDefault("TICK_PERIOD", DefaultTickPeriod); err != nil {
		return nil, err
	}
	if cfg.FrameInterval, err = durationOrDefault("FRAME_INTERVAL", DefaultFrameInterval); err != nil {
		return nil, err
	}
	if cfg.MountPollInterval, err = durationOrDefault("MOUNT_POLL_INTERVAL", DefaultMountPollInterval); err != nil {
		return nil, err
	}
	if cfg.StatsInterval, err = durationOrDefault("STATS_INTERVAL", DefaultStatsInterval); err != nil {
		return nil, err
	}

	return cfg, nil
}

func envOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func durationOrDefault(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, v, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("invalid %s %q: must be positive", key, v)
	}
	return d, nil
}
