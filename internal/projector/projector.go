// Package projector implements the pure mapping from an inspected
// container record to the flat set of key/value pairs the etcd sink
// publishes (spec §4.1). Nothing here performs I/O.
package projector

import (
	"fmt"
	"strings"

	"github.com/SUNET/simple-registrator/internal/dockerrt"
)

// Projection is the finite key→value mapping produced for one container.
// Every key carries the container's prefix (see Config decision in
// SPEC_FULL.md "Open Question resolutions" #1: the original's unprefixed
// ipv4_address/ipv6_address keys are treated as a bug and fixed here).
type Projection map[string]string

// Config carries the operator-configured inputs the Projector needs
// alongside a ContainerInfo: the host identity (for dockerhost_name/
// dockerhost_ipv4 and for substituting 0.0.0.0 host bindings) and the
// namespace/strip-prefix settings that shape the key prefix.
type Config struct {
	Namespace         string   // leading+trailing slash, e.g. "/simple-registrator/"
	NameStripPrefixes []string // e.g. []string{"docker.sunet.se/"}
	Hostname          string
	HostIPv4          string
}

// ExposedPort is a single host-side binding for a published container
// port. String renders it as a single "host:port" endpoint, bracketing
// the host address when it looks like IPv6 — a judgement carried over
// from the Python original's `_format_exposed_port` (see SPEC_FULL.md
// "SUPPLEMENTED FEATURES" #1). The Projection itself stores host_ip and
// host_port as two separate keys per spec §4.1; this type exists for
// callers that want the combined display form (e.g. log lines).
type ExposedPort struct {
	HostIP   string
	HostPort string
}

func (e ExposedPort) String() string {
	if strings.Contains(e.HostIP, ":") {
		return fmt.Sprintf("[%s]:%s", e.HostIP, e.HostPort)
	}
	return fmt.Sprintf("%s:%s", e.HostIP, e.HostPort)
}

// Prefix computes P per spec §4.1: ns + normalized-image-name + "/" + tag
// + "/" + id.
func Prefix(cfg Config, info dockerrt.ContainerInfo) string {
	name, tag := splitImage(cfg, info.Config.Image)
	return cfg.Namespace + name + "/" + tag + "/" + info.ID
}

// splitImage strips the first matching configured prefix, strips any
// remaining leading slash, then splits on the first ":" into
// (name, tag). tag is "unknown" when the image carries no ":".
func splitImage(cfg Config, image string) (name, tag string) {
	stripped := image
	for _, p := range cfg.NameStripPrefixes {
		if p != "" && strings.HasPrefix(stripped, p) {
			stripped = strings.TrimPrefix(stripped, p)
			break
		}
	}
	stripped = strings.TrimLeft(stripped, "/")

	if idx := strings.Index(stripped, ":"); idx >= 0 {
		return stripped[:idx], stripped[idx+1:]
	}
	return stripped, "unknown"
}

// Project builds the prefix and the full Projection for one inspected
// container, per spec §4.1.
func Project(cfg Config, info dockerrt.ContainerInfo) (prefix string, proj Projection) {
	prefix = Prefix(cfg, info)
	proj = Projection{
		prefix + "/image_name":      info.Config.Image,
		prefix + "/image_id":        info.Image,
		prefix + "/dockerhost_name": cfg.Hostname,
		prefix + "/dockerhost_ipv4": cfg.HostIPv4,
	}

	ipv4 := info.NetworkSettings.IPAddress
	if ipv4 != "" {
		proj[prefix+"/ipv4_address"] = ipv4
	}
	if ipv6 := info.NetworkSettings.GlobalIPv6Address; ipv6 != "" {
		proj[prefix+"/ipv6_address"] = ipv6
	}

	projectPorts(proj, prefix, info.NetworkSettings.Ports, ipv4, cfg.HostIPv4)
	projectNetworks(proj, prefix, info.NetworkSettings.Networks)

	return prefix, proj
}

// projectPorts implements spec §4.1's "Ports" rules.
func projectPorts(proj Projection, prefix string, ports map[string][]dockerrt.PortBinding, containerIPv4, hostIPv4 string) {
	for portProto, bindings := range ports {
		port, proto := splitPortProto(portProto)

		if bindings == nil {
			proj[fmt.Sprintf("%s/ports/listed/%s/%s", prefix, proto, port)] = containerIPv4
			continue
		}

		for _, b := range bindings {
			hostIP := b.HostIp
			if hostIP == "0.0.0.0" {
				hostIP = hostIPv4
			}
			base := fmt.Sprintf("%s/ports/exposed/%s/%s", prefix, proto, port)
			proj[base+"/host_ip"] = hostIP
			proj[base+"/host_port"] = b.HostPort
		}
	}
}

// projectNetworks implements spec §4.1's "Networks" rules.
func projectNetworks(proj Projection, prefix string, networks map[string]dockerrt.NetworkEndpoint) {
	for name, data := range networks {
		base := fmt.Sprintf("%s/networks/%s", prefix, name)
		if data.GlobalIPv6Address != "" {
			proj[base+"/ipv6_address"] = data.GlobalIPv6Address
		}
		if data.IPAddress != "" {
			proj[base+"/ipv4_address"] = data.IPAddress
		}
		if data.MacAddress != "" {
			proj[base+"/mac_address"] = data.MacAddress
		}
		if data.NetworkID != "" {
			proj[base+"/network_id"] = data.NetworkID
		}
	}
}

// splitPortProto splits a Docker "port/proto" key, e.g. "80/tcp", into
// ("80", "tcp").
func splitPortProto(portProto string) (port, proto string) {
	if idx := strings.Index(portProto, "/"); idx >= 0 {
		return portProto[:idx], portProto[idx+1:]
	}
	return portProto, ""
}
