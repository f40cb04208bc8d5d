// Package config reads settings from an optional .env file and the process
// environment.
package config

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/srgjo27/railseat/internal/core/domain"
	"github.com/srgjo27/railseat/internal/platform/database"
)

const (
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

type Config struct {
	HTTPAddr       string
	RequestTimeout time.Duration
	StoreDriver    string
	LogLevel       string
	SeedTrips      []domain.Trip

	Database       database.Config
	MemoryReplicas int

	RedisAddr   string
	SnapshotTTL time.Duration

	ReadConsistency  domain.Consistency
	WriteConsistency domain.Consistency
	HoldTTL          time.Duration
	OpTimeout        time.Duration
	AttemptsPerCar   int
	ResolveInterval  time.Duration
}

// LoadEnv copies KEY=VALUE lines from path into the environment. Variables
// already set in the environment win. A missing file is not an error.
func LoadEnv(path string) error {
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		key = strings.TrimSpace(key)
		value = strings.Trim(strings.TrimSpace(value), `"`)
		if _, set := os.LookupEnv(key); set {
			continue
		}
		if err := os.Setenv(key, value); err != nil {
			return err
		}
	}
	return scanner.Err()
}

// Load builds a Config from the environment. Every malformed value is
// reported, not just the first.
func Load() (*Config, error) {
	p := parser{}

	cfg := &Config{
		HTTPAddr:       p.str("HTTP_ADDR", ":8080"),
		RequestTimeout: p.duration("REQUEST_TIMEOUT", 15*time.Second),
		StoreDriver:    p.str("STORE_DRIVER", DriverPostgres),
		LogLevel:       p.str("LOG_LEVEL", "info"),
		SeedTrips:      p.trips("SEED_TRIPS"),
		Database: database.Config{
			Host:            p.str("DB_HOST", "localhost"),
			Port:            p.str("DB_PORT", "5432"),
			User:            p.str("DB_USER", "postgres"),
			Password:        p.str("DB_PASSWORD", ""),
			DBName:          p.str("DB_NAME", "railseat"),
			ReplicaHosts:    p.list("DB_REPLICA_HOSTS"),
			MaxOpenConns:    p.integer("DB_MAX_OPEN_CONNS", 25),
			ConnMaxLifetime: p.duration("DB_CONN_MAX_LIFETIME", 5*time.Minute),
		},
		MemoryReplicas:   p.integer("MEMORY_REPLICAS", 3),
		RedisAddr:        p.str("REDIS_HOST", "localhost") + ":" + p.str("REDIS_PORT", "6379"),
		SnapshotTTL:      p.duration("SNAPSHOT_TTL", 5*time.Second),
		ReadConsistency:  p.consistency("READ_CONSISTENCY", domain.ConsistencyQuorum),
		WriteConsistency: p.consistency("WRITE_CONSISTENCY", domain.ConsistencyQuorum),
		HoldTTL:          p.duration("HOLD_TTL", 10*time.Minute),
		OpTimeout:        p.duration("OP_TIMEOUT", 5*time.Second),
		AttemptsPerCar:   p.integer("ATTEMPTS_PER_CAR", 3),
		ResolveInterval:  p.duration("RESOLVE_INTERVAL", time.Minute),
	}

	switch cfg.StoreDriver {
	case DriverPostgres, DriverMemory:
	default:
		p.fail("STORE_DRIVER", cfg.StoreDriver, fmt.Errorf("want %q or %q", DriverPostgres, DriverMemory))
	}
	if cfg.MemoryReplicas < 1 {
		p.fail("MEMORY_REPLICAS", strconv.Itoa(cfg.MemoryReplicas), errors.New("must be at least 1"))
	}
	if cfg.AttemptsPerCar < 1 {
		p.fail("ATTEMPTS_PER_CAR", strconv.Itoa(cfg.AttemptsPerCar), errors.New("must be at least 1"))
	}

	if err := errors.Join(p.errs...); err != nil {
		return nil, err
	}
	return cfg, nil
}

type parser struct {
	errs []error
}

func (p *parser) fail(key, raw string, err error) {
	p.errs = append(p.errs, fmt.Errorf("config %s=%q: %w", key, raw, err))
}

func (p *parser) str(key, def string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return def
}

func (p *parser) list(key string) []string {
	var out []string
	for _, part := range strings.Split(os.Getenv(key), ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func (p *parser) integer(key string, def int) int {
	raw := os.Getenv(key)
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		p.fail(key, raw, err)
		return def
	}
	return n
}

func (p *parser) duration(key string, def time.Duration) time.Duration {
	raw := os.Getenv(key)
	if raw == "" {
		return def
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		p.fail(key, raw, err)
		return def
	}
	if d <= 0 {
		p.fail(key, raw, errors.New("must be positive"))
		return def
	}
	return d
}

func (p *parser) consistency(key string, def domain.Consistency) domain.Consistency {
	raw := os.Getenv(key)
	if raw == "" {
		return def
	}
	c, err := domain.ParseConsistency(raw)
	if err != nil {
		p.fail(key, raw, err)
		return def
	}
	return c
}

// trips parses "train|departure|cars|seats_per_car" entries separated by ";".
func (p *parser) trips(key string) []domain.Trip {
	raw := os.Getenv(key)
	var out []domain.Trip
	for _, entry := range strings.Split(raw, ";") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		trip, err := parseTrip(entry)
		if err != nil {
			p.fail(key, entry, err)
			continue
		}
		out = append(out, trip)
	}
	return out
}

func parseTrip(entry string) (domain.Trip, error) {
	fields := strings.Split(entry, "|")
	if len(fields) != 4 {
		return domain.Trip{}, errors.New("want train|departure|cars|seats_per_car")
	}
	trainID, err := strconv.Atoi(strings.TrimSpace(fields[0]))
	if err != nil {
		return domain.Trip{}, fmt.Errorf("train: %w", err)
	}
	departure, err := time.Parse(time.RFC3339, strings.TrimSpace(fields[1]))
	if err != nil {
		return domain.Trip{}, fmt.Errorf("departure: %w", err)
	}
	cars, err := strconv.Atoi(strings.TrimSpace(fields[2]))
	if err != nil || cars <= 0 {
		return domain.Trip{}, errors.New("cars must be a positive integer")
	}
	seats, err := strconv.Atoi(strings.TrimSpace(fields[3]))
	if err != nil || seats <= 0 {
		return domain.Trip{}, errors.New("seats_per_car must be a positive integer")
	}
	return domain.Trip{TrainID: trainID, Departure: departure.UTC(), Cars: cars, SeatsPerCar: seats}, nil
}
