package dockerrt

import (
	"context"
	"fmt"
	"sync"
)

// MockClient is an in-memory Client for tests and local development
// without a Docker daemon. Containers are registered with Add/Remove and
// events are delivered by pushing to Emit; nothing here touches the
// network or the filesystem.
type MockClient struct {
	mu         sync.Mutex
	containers map[string]ContainerInfo
	running    map[string]bool

	events chan ContainerEvent
	errs   chan error
	closed bool
}

// NewMockClient returns a ready-to-use MockClient. The caller owns the
// lifetime of the returned Events channel via the passed context.
func NewMockClient() *MockClient {
	return &MockClient{
		containers: make(map[string]ContainerInfo),
		running:    make(map[string]bool),
		events:     make(chan ContainerEvent, 64),
		errs:       make(chan error, 1),
	}
}

// Add registers a container's inspect record and marks it running, the way
// a real daemon would already have it running before the bridge started.
func (m *MockClient) Add(info ContainerInfo) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.containers[info.ID] = info
	m.running[info.ID] = true
}

// Remove deletes a container's inspect record, simulating it having been
// destroyed — subsequent Inspect calls for this id report "not found".
func (m *MockClient) Remove(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.containers, id)
	delete(m.running, id)
}

// SetRunning flips a container's running bit without touching its record,
// for simulating stop/start without re-registering metadata.
func (m *MockClient) SetRunning(id string, running bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.running[id] = running
}

// Emit pushes a synthetic event onto the stream Events() callers are
// reading from.
func (m *MockClient) Emit(evt ContainerEvent) {
	m.events <- evt
}

// EmitFrame decodes a raw JSON frame via ParseEventFrame and emits it,
// exercising the opaque-byte-frame path from spec §4.4 step 1.
func (m *MockClient) EmitFrame(raw []byte) error {
	evt, err := ParseEventFrame(raw)
	if err != nil {
		return err
	}
	m.Emit(evt)
	return nil
}

func (m *MockClient) ListRunning(_ context.Context) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	ids := make([]string, 0, len(m.running))
	for id, running := range m.running {
		if running {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

func (m *MockClient) Inspect(_ context.Context, id string) (*ContainerInfo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	info, ok := m.containers[id]
	if !ok {
		return nil, fmt.Errorf("mock inspect %s: not found", id)
	}
	cp := info
	return &cp, nil
}

func (m *MockClient) Events(ctx context.Context) (<-chan ContainerEvent, <-chan error) {
	out := make(chan ContainerEvent)
	errs := make(chan error)

	go func() {
		defer close(out)
		defer close(errs)
		for {
			select {
			case <-ctx.Done():
				return
			case evt, ok := <-m.events:
				if !ok {
					return
				}
				select {
				case out <- evt:
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	return out, errs
}

func (m *MockClient) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.closed {
		m.closed = true
		close(m.events)
	}
	return nil
}

var _ Client = (*MockClient)(nil)
