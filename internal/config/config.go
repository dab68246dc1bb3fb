// Package config resolves simple-registrator's runtime configuration from
// environment variables, with --debug as the only flag (spec §6).
package config

import (
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds everything the event loop, the etcd sink, and the backend
// registry need to run.
type Config struct {
	Debug bool

	EtcdHost string
	EtcdPort int

	Hostname string
	HostIPv4 string

	NameStripPrefixes []string
	RefreshPeriod     time.Duration
	Namespace         string
}

// Load builds a Config from the environment. debug comes from the --debug
// flag; REGISTRATOR_DEBUG can also turn it on.
func Load(debug bool) (*Config, error) {
	cfg := &Config{
		Debug:    debug || truthy(os.Getenv("REGISTRATOR_DEBUG")),
		EtcdHost: getenvDefault("ETCD_HOST", "127.0.0.1"),
	}

	port, err := strconv.Atoi(getenvDefault("ETCD_PORT", "2379"))
	if err != nil {
		return nil, fmt.Errorf("parse ETCD_PORT: %w", err)
	}
	cfg.EtcdPort = port

	hostname := os.Getenv("REGISTRATOR_HOSTNAME")
	if hostname == "" {
		h, err := os.Hostname()
		if err != nil {
			return nil, fmt.Errorf("resolve hostname: %w", err)
		}
		hostname = h
	}
	cfg.Hostname = hostname

	ipv4 := os.Getenv("REGISTRATOR_HOSTIPV4")
	if ipv4 == "" {
		addrs, err := net.LookupHost(hostname)
		if err != nil || len(addrs) == 0 {
			return nil, fmt.Errorf("resolve host ipv4 for %q: %w", hostname, err)
		}
		ipv4 = addrs[0]
	}
	cfg.HostIPv4 = ipv4

	strip := getenvDefault("REGISTRATOR_ETCD_NAME_STRIP_PREFIXES", "docker.sunet.se/")
	for _, p := range strings.Split(strip, ",") {
		if p = strings.TrimSpace(p); p != "" {
			cfg.NameStripPrefixes = append(cfg.NameStripPrefixes, p)
		}
	}

	timeoutSecs, err := strconv.Atoi(getenvDefault("REGISTRATOR_ETCD_TIMEOUT", "300"))
	if err != nil {
		return nil, fmt.Errorf("parse REGISTRATOR_ETCD_TIMEOUT: %w", err)
	}
	cfg.RefreshPeriod = time.Duration(timeoutSecs) * time.Second

	cfg.Namespace = normalizeNamespace(getenvDefault("REGISTRATOR_ETCD_NS", "/simple-registrator/"))

	return cfg, nil
}

// BackendEnabled implements the REGISTRATOR_<NAMEUPPER> override described
// in spec §4.5 and §6: {true,enabled,1} forces a backend on, {false,
// disabled,0} forces it off, anything else (including unset) keeps
// defaultEnabled.
func BackendEnabled(name string, defaultEnabled bool) bool {
	v, ok := os.LookupEnv("REGISTRATOR_" + strings.ToUpper(name))
	if !ok {
		return defaultEnabled
	}
	switch strings.ToLower(v) {
	case "true", "enabled", "1":
		return true
	case "false", "disabled", "0":
		return false
	default:
		return defaultEnabled
	}
}

// normalizeNamespace guarantees a leading and trailing slash, the way spec
// §4.1 requires of ns regardless of how the operator wrote the env var.
func normalizeNamespace(ns string) string {
	if !strings.HasPrefix(ns, "/") {
		ns = "/" + ns
	}
	if !strings.HasSuffix(ns, "/") {
		ns += "/"
	}
	return ns
}

func truthy(v string) bool {
	switch strings.ToLower(v) {
	case "true", "enabled", "1", "yes":
		return true
	default:
		return false
	}
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
