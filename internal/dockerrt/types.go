// Package dockerrt abstracts the container runtime: listing running
// containers, inspecting one by id, and streaming lifecycle events
// (spec §6 "Runtime client").
package dockerrt

import "encoding/json"

// ContainerInfo is the inspected record the Projector consumes (spec §3).
// Field names mirror the Docker inspect JSON shape so the Projector's
// mapping stays legible against spec §4.1.
type ContainerInfo struct {
	ID              string
	Config          ContainerConfig
	Image           string // digest, e.g. "sha256:..."
	NetworkSettings NetworkSettings
}

// ContainerConfig holds the subset of the container's create-time config
// the Projector needs.
type ContainerConfig struct {
	Image string // e.g. "docker.sunet.se/foo:v1"
}

// NetworkSettings holds the subset of NetworkSettings the Projector needs.
type NetworkSettings struct {
	IPAddress         string
	GlobalIPv6Address string

	// Ports maps "port/proto" to either nil (the port is not published to
	// the host — spec §4.1 "listed" case) or a list of host bindings (the
	// "exposed" case). A JSON `null` value unmarshals to a nil slice,
	// which is exactly the distinction spec §4.1 needs.
	Ports map[string][]PortBinding

	Networks map[string]NetworkEndpoint
}

// PortBinding is one host-side binding for a published container port.
type PortBinding struct {
	HostIp   string
	HostPort string
}

// NetworkEndpoint is one network a container is attached to.
type NetworkEndpoint struct {
	IPAddress         string
	GlobalIPv6Address string
	MacAddress        string
	NetworkID         string
}

// ContainerEvent is a single runtime lifecycle notification (spec §3).
// Status is e.g. "start", "die", "destroy", "running" (the synthetic
// bootstrap status — see spec §4.4 "Bootstrap"). Type distinguishes
// "container" from "image" and other resource kinds; it may be empty.
type ContainerEvent struct {
	ID     string
	Status string
	Type   string
}

// ParseEventFrame decodes a raw JSON event frame into a ContainerEvent, the
// way the Python original's `main()` did with `json.loads(event)` when the
// runtime handed back a bare string instead of a pre-parsed object (spec
// §4.4 step 1). The Docker Engine SDK used by SDKClient already decodes
// frames for callers, so production traffic never needs this function —
// it exists so the opaque-frame path spec §4.4 describes has a tested,
// addressable implementation, and so alternate transports (a raw socket
// tail, a replayed fixture) can reuse it.
func ParseEventFrame(raw []byte) (ContainerEvent, error) {
	var wire struct {
		ID     string `json:"id"`
		Status string `json:"status"`
		Type   string `json:"type"`
	}
	if err := json.Unmarshal(raw, &wire); err != nil {
		return ContainerEvent{}, err
	}
	return ContainerEvent{ID: wire.ID, Status: wire.Status, Type: wire.Type}, nil
}
