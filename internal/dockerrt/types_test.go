package dockerrt

import "testing"

func TestParseEventFrame(t *testing.T) {
	evt, err := ParseEventFrame([]byte(`{"id":"abc","status":"start","type":"container"}`))
	if err != nil {
		t.Fatalf("ParseEventFrame: %v", err)
	}
	want := ContainerEvent{ID: "abc", Status: "start", Type: "container"}
	if evt != want {
		t.Errorf("got %+v, want %+v", evt, want)
	}
}

func TestParseEventFrameMissingFields(t *testing.T) {
	evt, err := ParseEventFrame([]byte(`{"status":"pull","type":"image"}`))
	if err != nil {
		t.Fatalf("ParseEventFrame: %v", err)
	}
	if evt.ID != "" {
		t.Errorf("expected empty id, got %q", evt.ID)
	}
}

func TestParseEventFrameInvalidJSON(t *testing.T) {
	if _, err := ParseEventFrame([]byte("not json")); err == nil {
		t.Error("expected error for invalid JSON")
	}
}
