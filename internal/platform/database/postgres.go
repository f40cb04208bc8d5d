package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net"
	"net/url"
	"sync/atomic"
	"time"

	"github.com/go-kratos/kratos/v2/log"
	_ "github.com/lib/pq"
)

type Config struct {
	Host         string
	Port         string
	User         string
	Password     string
	DBName       string
	ReplicaHosts []string

	MaxOpenConns    int
	ConnMaxLifetime time.Duration
	ConnectRetries  int
	RetryDelay      time.Duration
}

// DSN builds the lib/pq connection string for host, which may carry its own
// ":port".
func (c Config) DSN(host string) string {
	addr := host
	if _, _, err := net.SplitHostPort(host); err != nil {
		addr = net.JoinHostPort(host, c.Port)
	}
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.User, c.Password),
		Host:     addr,
		Path:     "/" + c.DBName,
		RawQuery: "sslmode=disable",
	}
	return u.String()
}

// Cluster is a primary plus zero or more streaming replicas. Writes always go
// to the primary; relaxed reads may be spread over the replicas.
type Cluster struct {
	primary  *sql.DB
	replicas []*sql.DB
	next     atomic.Uint64
}

func NewCluster(primary *sql.DB, replicas ...*sql.DB) *Cluster {
	return &Cluster{primary: primary, replicas: replicas}
}

// Connect opens the primary and every replica, waiting for each to accept
// connections.
func Connect(ctx context.Context, cfg Config, logger log.Logger) (*Cluster, error) {
	helper := log.NewHelper(log.With(logger, "module", "platform/database"))

	primary, err := open(ctx, cfg, cfg.Host, helper)
	if err != nil {
		return nil, err
	}
	cluster := NewCluster(primary)
	for _, host := range cfg.ReplicaHosts {
		replica, err := open(ctx, cfg, host, helper)
		if err != nil {
			cluster.Close()
			return nil, err
		}
		cluster.replicas = append(cluster.replicas, replica)
	}
	return cluster, nil
}

func open(ctx context.Context, cfg Config, host string, helper *log.Helper) (*sql.DB, error) {
	retries := cfg.ConnectRetries
	if retries <= 0 {
		retries = 10
	}
	delay := cfg.RetryDelay
	if delay <= 0 {
		delay = 2 * time.Second
	}

	var err error
	for i := 1; i <= retries; i++ {
		helper.Infow("msg", "connecting to database", "host", host, "attempt", i, "max_attempts", retries)

		var db *sql.DB
		db, err = sql.Open("postgres", cfg.DSN(host))
		if err == nil {
			err = db.PingContext(ctx)
		}
		if err == nil {
			configurePool(db, cfg)
			helper.Infow("msg", "database connected", "host", host)
			return db, nil
		}
		if db != nil {
			db.Close()
		}

		helper.Warnw("msg", "database not ready", "host", host, "error", err, "retry_in", delay.String())
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(delay):
		}
	}
	return nil, fmt.Errorf("connect to database %s after %d attempts: %w", host, retries, err)
}

func configurePool(db *sql.DB, cfg Config) {
	maxOpen := cfg.MaxOpenConns
	if maxOpen <= 0 {
		maxOpen = 25
	}
	lifetime := cfg.ConnMaxLifetime
	if lifetime <= 0 {
		lifetime = 5 * time.Minute
	}
	db.SetMaxOpenConns(maxOpen)
	db.SetMaxIdleConns(maxOpen)
	db.SetConnMaxLifetime(lifetime)
}

func (c *Cluster) Primary() *sql.DB {
	return c.primary
}

// Replica returns the next replica round-robin, or the primary when the
// cluster has none.
func (c *Cluster) Replica() *sql.DB {
	if len(c.replicas) == 0 {
		return c.primary
	}
	n := c.next.Add(1) - 1
	return c.replicas[n%uint64(len(c.replicas))]
}

func (c *Cluster) Close() error {
	errs := []error{c.primary.Close()}
	for _, r := range c.replicas {
		errs = append(errs, r.Close())
	}
	return errors.Join(errs...)
}
