package dockerrt

import "context"

// Client abstracts the container runtime so the event loop and the
// bootstrap pass never talk to the Docker SDK directly (spec §6).
type Client interface {
	// ListRunning returns the ids of all currently-running containers,
	// used by the bootstrap pass (spec §4.4 "Bootstrap").
	ListRunning(ctx context.Context) ([]string, error)

	// Inspect returns the full metadata record for a container. Callers
	// must treat inspection failure (spec §3: "Inspection may fail; the
	// record is then treated as absent") as a recoverable, per-container
	// error, never a fatal one.
	Inspect(ctx context.Context, id string) (*ContainerInfo, error)

	// Events streams runtime lifecycle events in runtime order. Both
	// channels close when ctx is cancelled.
	Events(ctx context.Context) (<-chan ContainerEvent, <-chan error)

	// Close releases any resources held by the client.
	Close() error
}
