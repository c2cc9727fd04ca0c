package readiness

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"testing"
	"time"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestWaitReturnsWhenPortAccepts(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	defer ln.Close()
	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			conn.Close()
		}
	}()

	host, port, _ := net.SplitHostPort(ln.Addr().String())
	gate := &Gate{Host: host, Port: port, Interval: 10 * time.Millisecond, Logger: discardLogger()}

	done := make(chan error, 1)
	go func() { done <- gate.Wait(context.Background()) }()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("wait: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("gate did not return although the port accepts connections")
	}
}

func TestWaitBlocksWhilePortRefuses(t *testing.T) {
	// Grab a free port and close it so connections are refused.
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	host, port, _ := net.SplitHostPort(ln.Addr().String())
	ln.Close()

	gate := &Gate{Host: host, Port: port, Interval: 10 * time.Millisecond, Logger: discardLogger()}

	done := make(chan error, 1)
	ctx, cancel := context.WithCancel(context.Background())
	go func() { done <- gate.Wait(ctx) }()

	select {
	case <-done:
		t.Fatal("gate returned while the port refuses connections")
	case <-time.After(100 * time.Millisecond):
	}

	cancel()
	if err := <-done; !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestWaitTimeoutReturnsUnavailable(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	host, port, _ := net.SplitHostPort(ln.Addr().String())
	ln.Close()

	gate := &Gate{
		Host:     host,
		Port:     port,
		Interval: 10 * time.Millisecond,
		Timeout:  50 * time.Millisecond,
		Logger:   discardLogger(),
	}

	err = gate.Wait(context.Background())
	if !errors.Is(err, ErrUnavailable) {
		t.Errorf("expected ErrUnavailable, got %v", err)
	}
}

func TestWaitRunsProbeAfterConnect(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	defer ln.Close()
	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			conn.Close()
		}
	}()

	host, port, _ := net.SplitHostPort(ln.Addr().String())
	calls := 0
	gate := &Gate{
		Host:     host,
		Port:     port,
		Interval: 10 * time.Millisecond,
		Logger:   discardLogger(),
		Probe: func(ctx context.Context) error {
			calls++
			if calls < 3 {
				return fmt.Errorf("not yet")
			}
			return nil
		},
	}

	if err := gate.Wait(context.Background()); err != nil {
		t.Fatalf("wait: %v", err)
	}
	if calls != 3 {
		t.Errorf("probe called %d times, want 3", calls)
	}
}
