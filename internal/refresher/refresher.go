// Package refresher runs the per-container keep-alive loop (spec §4.2): an
// immediate write pass followed by a periodic re-write every T, each write
// carrying TTL=2T so a single missed cycle doesn't expire the registration.
// Cancellation replaces the Python original's polled "done" boolean with a
// context.Context, per the redesign guidance.
package refresher

import (
	"context"
	"log/slog"
	"time"

	"github.com/SUNET/simple-registrator/internal/projector"
)

// WriteFunc persists one key/value pair with the given TTL. Implementations
// decide create-vs-update policy (see internal/etcdsink for the
// create-then-fall-back-to-write policy used against etcd).
type WriteFunc func(ctx context.Context, key, value string, ttl time.Duration) error

// Refresher keeps one container's projection alive in the KV store until
// Cancel is called.
type Refresher struct {
	prefix string
	proj   projector.Projection
	write  WriteFunc
	period time.Duration

	cancel  context.CancelFunc
	done    chan struct{}
	started bool
}

// New builds a Refresher for one container's already-computed projection.
// It does not start the refresh loop; call Start for that.
func New(prefix string, proj projector.Projection, write WriteFunc, period time.Duration) *Refresher {
	return &Refresher{
		prefix: prefix,
		proj:   proj,
		write:  write,
		period: period,
		done:   make(chan struct{}),
	}
}

// Start performs the first write pass synchronously, then launches a
// goroutine that re-writes every period until ctx is cancelled or Cancel is
// called. Returning control only after the first pass lets the caller
// (the etcd sink) know the container is registered before moving on to the
// next event.
func (r *Refresher) Start(ctx context.Context) {
	runCtx, cancel := context.WithCancel(ctx)
	r.cancel = cancel
	r.started = true

	r.pass(runCtx)
	go r.loop(runCtx)
}

// Cancel stops the refresh loop and waits for it to exit. It does not
// delete the keys already written — the caller (etcd sink) is responsible
// for that on "die". Cancel on a Refresher that was never started is a
// no-op.
func (r *Refresher) Cancel() {
	if !r.started {
		return
	}
	r.cancel()
	<-r.done
}

func (r *Refresher) loop(ctx context.Context) {
	defer close(r.done)

	ticker := time.NewTicker(r.period)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.pass(ctx)
		}
	}
}

// pass writes every key in the projection once. A single key's failure is
// logged and does not block the rest — the next cycle will retry all of
// them naturally.
func (r *Refresher) pass(ctx context.Context) {
	ttl := 2 * r.period
	for key, value := range r.proj {
		if err := r.write(ctx, key, value, ttl); err != nil {
			slog.Warn("refresher: write failed, will retry next cycle",
				"prefix", r.prefix, "key", key, "error", err)
		}
	}
}
