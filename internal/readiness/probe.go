// Package readiness checks whether the local environment is configured and
// connected well enough to start working against the Nautex platform.
package readiness

import (
	"context"
	"sync"
	"time"

	"github.com/nautex-dev/nautex/internal/api"
)

const (
	// DefaultNetworkTimeout bounds the reachability check.
	DefaultNetworkTimeout = 1 * time.Second
	// DefaultAuthTimeout bounds the token verification check.
	DefaultAuthTimeout = 5 * time.Second
)

// Result is the outcome of one probe check. Failures are carried as data so
// the evaluator can always produce a message.
type Result struct {
	OK      bool          `json:"ok"`
	Elapsed time.Duration `json:"elapsed"`
	Err     string        `json:"error,omitempty"`
}

// Report combines both probe results.
type Report struct {
	Network Result           `json:"network"`
	Auth    Result           `json:"auth"`
	Account *api.AccountInfo `json:"account,omitempty"`
}

// Probe runs the network and auth checks against the platform.
type Probe struct {
	client         api.Service
	networkTimeout time.Duration
	authTimeout    time.Duration
}

// NewProbe creates a probe with the default per-check timeouts.
func NewProbe(client api.Service) *Probe {
	return &Probe{
		client:         client,
		networkTimeout: DefaultNetworkTimeout,
		authTimeout:    DefaultAuthTimeout,
	}
}

// WithTimeouts overrides the per-check timeouts.
func (p *Probe) WithTimeouts(network, auth time.Duration) *Probe {
	p.networkTimeout = network
	p.authTimeout = auth
	return p
}

// Run issues both checks concurrently and waits for both to finish or time
// out. The checks share nothing and each runs on its own timeout clock; a
// slow network check cannot eat into the auth check's budget.
func (p *Probe) Run(ctx context.Context) Report {
	var report Report

	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		report.Network = timed(ctx, p.networkTimeout, func(ctx context.Context) error {
			return p.client.Ping(ctx)
		})
	}()

	go func() {
		defer wg.Done()
		var account *api.AccountInfo
		report.Auth = timed(ctx, p.authTimeout, func(ctx context.Context) error {
			a, err := p.client.VerifyToken(ctx, "")
			account = a
			return err
		})
		report.Account = account
	}()

	wg.Wait()
	return report
}

func timed(parent context.Context, timeout time.Duration, fn func(context.Context) error) Result {
	ctx, cancel := context.WithTimeout(parent, timeout)
	defer cancel()

	start := time.Now()
	err := fn(ctx)
	elapsed := time.Since(start)

	if err != nil {
		return Result{Elapsed: elapsed, Err: err.Error()}
	}
	return Result{OK: true, Elapsed: elapsed}
}
