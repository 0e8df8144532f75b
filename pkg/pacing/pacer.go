// Package pacing spaces out consecutive calls to the Yupdates API.
//
// Batch submissions pause between chunks to stay clear of server-side
// throttling. The pause only suspends the calling goroutine and is cut
// short when the caller's context is done.
package pacing

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// MinDelay is the shortest pause accepted between chunks.
const MinDelay = 5 * time.Millisecond

var (
	pausesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "yupdates_pacing_pauses_total",
		Help: "Total number of pauses taken between API calls",
	})

	pauseSeconds = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "yupdates_pacing_pause_seconds",
		Help:    "Time actually spent pausing between API calls",
		Buckets: []float64{0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 5},
	})

	pausesInterruptedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "yupdates_pacing_pauses_interrupted_total",
		Help: "Total number of pauses cut short by context cancellation",
	})
)

// Pacer waits a fixed delay between calls.
type Pacer struct {
	delay time.Duration
}

// New returns a pacer for the given delay, which must be at least MinDelay.
func New(delay time.Duration) (*Pacer, error) {
	if delay < MinDelay {
		return nil, fmt.Errorf("delay (%s) must be %s or more", delay, MinDelay)
	}
	return &Pacer{delay: delay}, nil
}

// Delay returns the configured pause.
func (p *Pacer) Delay() time.Duration {
	return p.delay
}

// Wait pauses for the configured delay. It returns ctx.Err() if the context
// is done first.
func (p *Pacer) Wait(ctx context.Context) error {
	start := time.Now()
	timer := time.NewTimer(p.delay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		pausesInterruptedTotal.Inc()
		return ctx.Err()
	case <-timer.C:
	}

	pausesTotal.Inc()
	pauseSeconds.Observe(time.Since(start).Seconds())
	return nil
}
