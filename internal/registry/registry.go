// Package registry dispatches classified container events to the backends
// registered to handle them (spec §4.5). Backends are registered explicitly
// at startup — there is no reflection or duck-typing — and dispatch isolates
// one backend's failure from the others and from future events.
package registry

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/SUNET/simple-registrator/internal/dockerrt"
)

// Handler reacts to one classified event for one container. status is the
// docker event status ("start", "die", ...) or the synthetic bootstrap
// status "running"; info is the inspected container record.
type Handler func(ctx context.Context, status string, info dockerrt.ContainerInfo) error

// Backend is one registrable sink: a name (used for the
// REGISTRATOR_<NAME> enable override, spec's supplemented backend-toggle
// feature), whether it is enabled by default, the statuses it reacts to by
// name, and an optional catch-all invoked for any status with no named
// handler (spec §3 "Backend descriptor").
type Backend struct {
	Name           string
	DefaultEnabled bool
	Handlers       map[string]Handler
	Default        Handler
}

// Registry holds the set of enabled backends and dispatches events to them.
type Registry struct {
	backends []Backend
}

// New builds an empty registry.
func New() *Registry {
	return &Registry{}
}

// Register adds a backend. It is a no-op — the backend is logged as
// disabled, not recorded, and never dispatched to — if enabled is false, so
// the capability table stays exactly the set of live backends.
func Register(r *Registry, b Backend, enabled bool) {
	if !enabled {
		slog.Info("registry: backend disabled", "backend", b.Name)
		return
	}
	slog.Info("registry: backend enabled", "backend", b.Name)
	r.backends = append(r.backends, b)
}

// Dispatch sends one event to every enabled backend. A backend with a
// named handler for status gets that one; otherwise, if it registered a
// Default catch-all, that runs instead. A backend with neither is skipped.
// A panic or error in one backend is logged and does not prevent the
// others from running, nor does it stop future Dispatch calls.
func (r *Registry) Dispatch(ctx context.Context, status string, info dockerrt.ContainerInfo) {
	for _, b := range r.backends {
		h, ok := b.Handlers[status]
		if !ok {
			if b.Default == nil {
				continue
			}
			h = b.Default
		}
		r.invoke(ctx, b.Name, status, info, h)
	}
}

func (r *Registry) invoke(ctx context.Context, backend, status string, info dockerrt.ContainerInfo, h Handler) {
	defer func() {
		if rec := recover(); rec != nil {
			slog.Error("registry: backend panicked, isolated from other backends",
				"backend", backend, "status", status, "container", info.ID, "panic", fmt.Sprint(rec))
		}
	}()
	if err := h(ctx, status, info); err != nil {
		slog.Error("registry: backend handler failed",
			"backend", backend, "status", status, "container", info.ID, "error", err)
	}
}
