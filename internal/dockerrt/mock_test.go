package dockerrt

import (
	"context"
	"testing"
	"time"
)

func TestMockClientListAndInspect(t *testing.T) {
	m := NewMockClient()
	m.Add(ContainerInfo{ID: "abc", Config: ContainerConfig{Image: "foo:v1"}})

	ids, err := m.ListRunning(context.Background())
	if err != nil || len(ids) != 1 || ids[0] != "abc" {
		t.Fatalf("ListRunning = %v, %v", ids, err)
	}

	info, err := m.Inspect(context.Background(), "abc")
	if err != nil {
		t.Fatalf("Inspect: %v", err)
	}
	if info.Config.Image != "foo:v1" {
		t.Errorf("unexpected image: %q", info.Config.Image)
	}

	m.Remove("abc")
	if _, err := m.Inspect(context.Background(), "abc"); err == nil {
		t.Error("expected error inspecting removed container")
	}
}

func TestMockClientEvents(t *testing.T) {
	m := NewMockClient()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	out, _ := m.Events(ctx)
	m.Emit(ContainerEvent{ID: "abc", Status: "start", Type: "container"})

	select {
	case evt := <-out:
		if evt.ID != "abc" || evt.Status != "start" {
			t.Errorf("unexpected event: %+v", evt)
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for event")
	}
}
