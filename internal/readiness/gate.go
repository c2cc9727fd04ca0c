// Package readiness blocks application startup until a dependency accepts
// connections.
package readiness

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"time"
)

// ErrUnavailable is returned when a bounded gate gives up on its
// dependency. Unbounded gates never return it.
var ErrUnavailable = errors.New("dependency unavailable")

// Gate polls a host:port pair on a fixed interval until it accepts a TCP
// connection and the optional Probe succeeds. With Timeout zero the gate
// retries forever; the enclosing process supervisor is the only way out.
type Gate struct {
	Host     string
	Port     string
	Interval time.Duration // polling interval, default 2s
	Timeout  time.Duration // 0 means no upper bound on attempts
	Probe    func(ctx context.Context) error
	Logger   *slog.Logger
}

// Wait blocks until the dependency is ready, the context is cancelled, or
// the optional timeout expires. Once the dependency accepts a connection
// it returns within one polling interval.
func (g *Gate) Wait(ctx context.Context) error {
	interval := g.Interval
	if interval <= 0 {
		interval = 2 * time.Second
	}
	logger := g.Logger
	if logger == nil {
		logger = slog.Default()
	}

	var deadline time.Time
	if g.Timeout > 0 {
		deadline = time.Now().Add(g.Timeout)
	}

	addr := net.JoinHostPort(g.Host, g.Port)
	for attempt := 1; ; attempt++ {
		err := g.attempt(ctx, addr)
		if err == nil {
			logger.Info("dependency is ready", "addr", addr, "attempts", attempt)
			return nil
		}
		logger.Info("dependency not ready, retrying", "addr", addr, "attempt", attempt, "error", err)

		if !deadline.IsZero() && time.Now().After(deadline) {
			return fmt.Errorf("%s after %s (%d attempts): %w", addr, g.Timeout, attempt, ErrUnavailable)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(interval):
		}
	}
}

func (g *Gate) attempt(ctx context.Context, addr string) error {
	conn, err := net.DialTimeout("tcp", addr, 5*time.Second)
	if err != nil {
		return err
	}
	conn.Close()

	if g.Probe != nil {
		return g.Probe(ctx)
	}
	return nil
}
