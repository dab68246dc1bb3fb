package projector

import (
	"testing"

	"github.com/SUNET/simple-registrator/internal/dockerrt"
)

func testConfig() Config {
	return Config{
		Namespace:         "/simple-registrator/",
		NameStripPrefixes: []string{"docker.sunet.se/"},
		Hostname:          "h",
		HostIPv4:          "10.0.0.1",
	}
}

// Scenario 1 — basic start.
func TestProjectBasicStart(t *testing.T) {
	info := dockerrt.ContainerInfo{
		ID:     "abc",
		Config: dockerrt.ContainerConfig{Image: "docker.sunet.se/foo:v1"},
		Image:  "sha256:xx",
		NetworkSettings: dockerrt.NetworkSettings{
			IPAddress: "172.17.0.2",
		},
	}

	prefix, proj := Project(testConfig(), info)

	wantPrefix := "/simple-registrator/foo/v1/abc"
	if prefix != wantPrefix {
		t.Fatalf("prefix = %q, want %q", prefix, wantPrefix)
	}

	want := map[string]string{
		wantPrefix + "/image_name":      "docker.sunet.se/foo:v1",
		wantPrefix + "/image_id":        "sha256:xx",
		wantPrefix + "/dockerhost_name": "h",
		wantPrefix + "/dockerhost_ipv4": "10.0.0.1",
		wantPrefix + "/ipv4_address":    "172.17.0.2",
	}
	assertProjection(t, proj, want)
}

// Scenario 2 — exposed port, with 0.0.0.0 substitution.
func TestProjectExposedPort(t *testing.T) {
	info := dockerrt.ContainerInfo{
		ID:     "abc",
		Config: dockerrt.ContainerConfig{Image: "docker.sunet.se/foo:v1"},
		Image:  "sha256:xx",
		NetworkSettings: dockerrt.NetworkSettings{
			IPAddress: "172.17.0.2",
			Ports: map[string][]dockerrt.PortBinding{
				"80/tcp": {{HostIp: "0.0.0.0", HostPort: "8080"}},
			},
		},
	}

	prefix, proj := Project(testConfig(), info)
	want := map[string]string{
		prefix + "/ports/exposed/tcp/80/host_ip":   "10.0.0.1",
		prefix + "/ports/exposed/tcp/80/host_port": "8080",
	}
	assertSubset(t, proj, want)
}

// Scenario 3 — listed (unbound) port.
func TestProjectListedPort(t *testing.T) {
	info := dockerrt.ContainerInfo{
		ID:     "abc",
		Config: dockerrt.ContainerConfig{Image: "docker.sunet.se/foo:v1"},
		NetworkSettings: dockerrt.NetworkSettings{
			IPAddress: "172.17.0.3",
			Ports: map[string][]dockerrt.PortBinding{
				"53/udp": nil,
			},
		},
	}

	prefix, proj := Project(testConfig(), info)
	want := map[string]string{
		prefix + "/ports/listed/udp/53": "172.17.0.3",
	}
	assertSubset(t, proj, want)
}

// Scenario 3b — listed port with no container ipv4 at all.
func TestProjectListedPortNoIPv4(t *testing.T) {
	info := dockerrt.ContainerInfo{
		ID:     "abc",
		Config: dockerrt.ContainerConfig{Image: "foo"},
		NetworkSettings: dockerrt.NetworkSettings{
			Ports: map[string][]dockerrt.PortBinding{
				"53/udp": nil,
			},
		},
	}

	prefix, proj := Project(testConfig(), info)
	if got, ok := proj[prefix+"/ports/listed/udp/53"]; !ok || got != "" {
		t.Errorf("expected empty string for missing ipv4, got %q (present=%v)", got, ok)
	}
}

// Scenario 5 — untagged image.
func TestProjectUntaggedImage(t *testing.T) {
	info := dockerrt.ContainerInfo{ID: "xyz", Config: dockerrt.ContainerConfig{Image: "redis"}}
	prefix, _ := Project(testConfig(), info)
	want := "/simple-registrator/redis/unknown/xyz"
	if prefix != want {
		t.Errorf("prefix = %q, want %q", prefix, want)
	}
}

func TestProjectNetworks(t *testing.T) {
	info := dockerrt.ContainerInfo{
		ID:     "abc",
		Config: dockerrt.ContainerConfig{Image: "foo:v1"},
		NetworkSettings: dockerrt.NetworkSettings{
			Networks: map[string]dockerrt.NetworkEndpoint{
				"mynet": {
					IPAddress:         "172.20.0.5",
					GlobalIPv6Address: "",
					MacAddress:        "02:42:ac:14:00:05",
					NetworkID:         "net123",
				},
			},
		},
	}

	prefix, proj := Project(testConfig(), info)
	want := map[string]string{
		prefix + "/networks/mynet/ipv4_address": "172.20.0.5",
		prefix + "/networks/mynet/mac_address":  "02:42:ac:14:00:05",
		prefix + "/networks/mynet/network_id":   "net123",
	}
	assertSubset(t, proj, want)
	if _, ok := proj[prefix+"/networks/mynet/ipv6_address"]; ok {
		t.Error("expected no ipv6_address key when GlobalIPv6Address is empty")
	}
}

func TestProjectAllKeysPrefixed(t *testing.T) {
	info := dockerrt.ContainerInfo{
		ID:     "abc",
		Config: dockerrt.ContainerConfig{Image: "foo:v1"},
		NetworkSettings: dockerrt.NetworkSettings{
			IPAddress:         "172.17.0.2",
			GlobalIPv6Address: "fe80::1",
			Ports: map[string][]dockerrt.PortBinding{
				"80/tcp": {{HostIp: "0.0.0.0", HostPort: "8080"}},
				"53/udp": nil,
			},
			Networks: map[string]dockerrt.NetworkEndpoint{
				"mynet": {IPAddress: "172.20.0.5"},
			},
		},
	}

	prefix, proj := Project(testConfig(), info)
	for k := range proj {
		if len(k) < len(prefix) || k[:len(prefix)] != prefix {
			t.Errorf("key %q does not carry prefix %q", k, prefix)
		}
	}
}

func TestExposedPortStringIPv6(t *testing.T) {
	e := ExposedPort{HostIP: "fe80::1", HostPort: "8080"}
	want := "[fe80::1]:8080"
	if got := e.String(); got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}

func TestExposedPortStringIPv4(t *testing.T) {
	e := ExposedPort{HostIP: "10.0.0.1", HostPort: "8080"}
	want := "10.0.0.1:8080"
	if got := e.String(); got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}

func assertProjection(t *testing.T, got Projection, want map[string]string) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("got %d keys, want %d: got=%v want=%v", len(got), len(want), got, want)
	}
	assertSubset(t, got, want)
}

func assertSubset(t *testing.T, got Projection, want map[string]string) {
	t.Helper()
	for k, v := range want {
		gv, ok := got[k]
		if !ok {
			t.Errorf("missing key %q", k)
			continue
		}
		if gv != v {
			t.Errorf("key %q = %q, want %q", k, gv, v)
		}
	}
}
