// Package logsink is the built-in catch-all backend (spec's supplemented
// feature, carried over from the Python original's Log class): it performs
// no I/O, it just logs every event it sees at debug level. Useful for
// tracing what the event loop classified and dispatched without standing
// up an etcd cluster.
package logsink

import (
	"context"
	"log/slog"

	"github.com/SUNET/simple-registrator/internal/dockerrt"
	"github.com/SUNET/simple-registrator/internal/registry"
)

// Name is the backend name used for the REGISTRATOR_LOG enable override.
const Name = "log"

// Backend returns the registry.Backend for the log sink. It registers no
// named handlers at all — only the Default catch-all — so it logs every
// status the event loop dispatches, not just start/running/die. It is
// disabled by default, same as every other backend (SPEC_FULL.md
// supplemented feature).
func Backend() registry.Backend {
	return registry.Backend{
		Name:           Name,
		DefaultEnabled: false,
		Default: func(ctx context.Context, status string, info dockerrt.ContainerInfo) error {
			slog.Debug("logsink: event", "status", status, "container", info.ID, "image", info.Config.Image)
			return nil
		},
	}
}
