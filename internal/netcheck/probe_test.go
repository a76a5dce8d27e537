package netcheck

import (
	"context"
	"errors"
	"net"
	"testing"
	"time"

	"github.com/lox/routeweather/internal/logging"
)

func TestProbe_Reachable(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
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

	p := NewProbe(ln.Addr().String(), time.Second, logging.Discard())
	if !p.Reachable(context.Background()) {
		t.Error("expected listener to be reachable")
	}
}

func TestProbe_Unreachable(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	addr := ln.Addr().String()
	ln.Close()

	p := NewProbe(addr, time.Second, logging.Discard())
	if p.Reachable(context.Background()) {
		t.Error("expected closed port to be unreachable")
	}
}

func TestProbe_TimeoutApplied(t *testing.T) {
	p := NewProbe("example.invalid:80", 20*time.Millisecond, logging.Discard())
	var deadline time.Time
	p.dial = func(ctx context.Context, network, addr string) (net.Conn, error) {
		deadline, _ = ctx.Deadline()
		<-ctx.Done()
		return nil, errors.New("timed out")
	}

	start := time.Now()
	if p.Reachable(context.Background()) {
		t.Fatal("expected unreachable")
	}
	if deadline.IsZero() {
		t.Fatal("dial context had no deadline")
	}
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Errorf("probe took %v, timeout not enforced", elapsed)
	}
}

func TestNewProbe_Defaults(t *testing.T) {
	p := NewProbe("", 0, logging.Discard())
	if p.addr != DefaultAddr || p.timeout != DefaultTimeout {
		t.Errorf("defaults not applied: %q %v", p.addr, p.timeout)
	}
}
