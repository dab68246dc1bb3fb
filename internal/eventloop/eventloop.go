// Package eventloop consumes the container runtime's event stream,
// classifies and filters events, inspects the surviving ones, and hands
// them to the backend registry for dispatch (spec §4.4). It also runs the
// bootstrap pass (spec §4.6): on startup, every already-running container
// is inspected and dispatched as a synthetic "running" event, so backends
// see the full live set even though they only started watching now.
package eventloop

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/SUNET/simple-registrator/internal/dockerrt"
	"github.com/SUNET/simple-registrator/internal/registry"
)

// Loop wires a runtime client to a backend registry.
type Loop struct {
	docker dockerrt.Client
	reg    *registry.Registry
}

// New builds a Loop.
func New(docker dockerrt.Client, reg *registry.Registry) *Loop {
	return &Loop{docker: docker, reg: reg}
}

// Bootstrap dispatches a synthetic "running" event for every container the
// runtime currently reports as running, before Run starts consuming the
// live event stream. A single container's inspect failure is logged and
// does not abort the rest of the bootstrap set.
func (l *Loop) Bootstrap(ctx context.Context) error {
	ids, err := l.docker.ListRunning(ctx)
	if err != nil {
		return fmt.Errorf("eventloop: bootstrap list: %w", err)
	}
	for _, id := range ids {
		info, err := l.docker.Inspect(ctx, id)
		if err != nil {
			slog.Warn("eventloop: bootstrap inspect failed, skipping container", "container", id, "error", err)
			continue
		}
		l.reg.Dispatch(ctx, "running", *info)
	}
	return nil
}

// Run consumes events until ctx is cancelled or the runtime's event stream
// closes.
func (l *Loop) Run(ctx context.Context) error {
	events, errs := l.docker.Events(ctx)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case err, ok := <-errs:
			if !ok {
				errs = nil
				continue
			}
			slog.Error("eventloop: runtime event stream error", "error", err)
		case evt, ok := <-events:
			if !ok {
				return nil
			}
			l.handle(ctx, evt)
		}
	}
}

// handle applies the classification steps in spec order: events missing
// an id or status are dropped with a debug log, image events are dropped
// silently, exec_* lifecycle noise is dropped, and "destroy" is
// dropped without even attempting an inspect — by the time it arrives the
// container is already gone from the runtime's inspect API.
func (l *Loop) handle(ctx context.Context, evt dockerrt.ContainerEvent) {
	if evt.ID == "" || evt.Status == "" {
		slog.Debug("eventloop: dropping event missing id or status", "event", evt)
		return
	}
	if evt.Type == "image" {
		return
	}
	if strings.HasPrefix(evt.Status, "exec_") {
		return
	}
	if evt.Status == "destroy" {
		return
	}

	ins := newLazyInspect(l.docker, evt.ID)
	info, err := ins.get(ctx)
	if err != nil {
		slog.Warn("eventloop: inspect failed, dropping event", "container", evt.ID, "status", evt.Status, "error", err)
		return
	}
	l.reg.Dispatch(ctx, evt.Status, *info)
}

// lazyInspect memoizes a single container's Inspect call behind sync.Once,
// replacing the Python original's "if not self._info" lazily-populated
// property — here expressed without a mutable nil-checked field.
type lazyInspect struct {
	once   sync.Once
	docker dockerrt.Client
	id     string
	info   *dockerrt.ContainerInfo
	err    error
}

func newLazyInspect(docker dockerrt.Client, id string) *lazyInspect {
	return &lazyInspect{docker: docker, id: id}
}

func (l *lazyInspect) get(ctx context.Context) (*dockerrt.ContainerInfo, error) {
	l.once.Do(func() {
		l.info, l.err = l.docker.Inspect(ctx, l.id)
	})
	return l.info, l.err
}
