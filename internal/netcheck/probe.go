// Package netcheck answers whether the process can reach the internet at all,
// independently of the weather API.
package netcheck

import (
	"context"
	"log/slog"
	"net"
	"time"

	"github.com/lox/routeweather/internal/metrics"
)

const (
	DefaultAddr    = "www.google.com:80"
	DefaultTimeout = 5 * time.Second
)

type dialFunc func(ctx context.Context, network, addr string) (net.Conn, error)

// Probe opens and immediately closes a TCP connection to a well-known host.
type Probe struct {
	addr    string
	timeout time.Duration
	dial    dialFunc
	logger  *slog.Logger
}

func NewProbe(addr string, timeout time.Duration, logger *slog.Logger) *Probe {
	if addr == "" {
		addr = DefaultAddr
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	d := &net.Dialer{}
	return &Probe{
		addr:    addr,
		timeout: timeout,
		dial:    d.DialContext,
		logger:  logger,
	}
}

// Reachable reports whether a connection to the probe address succeeds
// within the probe timeout.
func (p *Probe) Reachable(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	conn, err := p.dial(ctx, "tcp", p.addr)
	if err != nil {
		metrics.ConnectivityProbesTotal.WithLabelValues("unreachable").Inc()
		p.logger.Warn("netcheck: probe failed", "addr", p.addr, "error", err)
		return false
	}
	conn.Close()
	metrics.ConnectivityProbesTotal.WithLabelValues("reachable").Inc()
	return true
}
