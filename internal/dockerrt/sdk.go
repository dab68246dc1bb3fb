package dockerrt

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/api/types/events"
	"github.com/docker/docker/api/types/filters"
	"github.com/docker/docker/client"
)

// SDKClient implements Client using the Docker Engine SDK.
type SDKClient struct {
	cli *client.Client
}

// NewSDKClient creates an SDKClient that connects to the Docker daemon over
// a Unix socket: the path of a unix:// DOCKER_HOST, or /var/run/docker.sock
// otherwise (a non-unix DOCKER_HOST is not dialled). The HTTP
// transport is tuned for a long-lived, low-traffic background process: a
// small idle connection pool and a short idle timeout so connections are
// released quickly between bootstrap, inspects, and the long-poll event
// stream.
func NewSDKClient() (*SDKClient, error) {
	sockPath := "/var/run/docker.sock"
	if host, ok := os.LookupEnv("DOCKER_HOST"); ok && strings.HasPrefix(host, "unix://") {
		sockPath = strings.TrimPrefix(host, "unix://")
	}

	transport := &http.Transport{
		DialContext: func(ctx context.Context, _, _ string) (net.Conn, error) {
			return (&net.Dialer{Timeout: 5 * time.Second}).DialContext(ctx, "unix", sockPath)
		},
		MaxIdleConns:        5,
		MaxIdleConnsPerHost: 3,
		IdleConnTimeout:     15 * time.Second,
	}
	httpClient := &http.Client{Transport: transport}

	cli, err := client.NewClientWithOpts(
		client.FromEnv,
		client.WithAPIVersionNegotiation(),
		client.WithHTTPClient(httpClient),
	)
	if err != nil {
		return nil, fmt.Errorf("docker sdk: %w", err)
	}
	return &SDKClient{cli: cli}, nil
}

func (s *SDKClient) ListRunning(ctx context.Context) ([]string, error) {
	opts := container.ListOptions{
		Filters: filters.NewArgs(filters.Arg("status", "running")),
	}
	raw, err := s.cli.ContainerList(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("container list: %w", err)
	}

	ids := make([]string, 0, len(raw))
	for _, c := range raw {
		ids = append(ids, c.ID)
	}
	return ids, nil
}

func (s *SDKClient) Inspect(ctx context.Context, id string) (*ContainerInfo, error) {
	raw, err := s.cli.ContainerInspect(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("container inspect %s: %w", id, err)
	}

	info := &ContainerInfo{ID: raw.ID, Image: raw.Image}
	if raw.Config != nil {
		info.Config.Image = raw.Config.Image
	}
	if raw.NetworkSettings != nil {
		info.NetworkSettings.IPAddress = raw.NetworkSettings.IPAddress
		info.NetworkSettings.GlobalIPv6Address = raw.NetworkSettings.GlobalIPv6Address

		if len(raw.NetworkSettings.Ports) > 0 {
			info.NetworkSettings.Ports = make(map[string][]PortBinding, len(raw.NetworkSettings.Ports))
			for port, bindings := range raw.NetworkSettings.Ports {
				if bindings == nil {
					info.NetworkSettings.Ports[string(port)] = nil
					continue
				}
				converted := make([]PortBinding, 0, len(bindings))
				for _, b := range bindings {
					converted = append(converted, PortBinding{HostIp: b.HostIP, HostPort: b.HostPort})
				}
				info.NetworkSettings.Ports[string(port)] = converted
			}
		}

		if len(raw.NetworkSettings.Networks) > 0 {
			info.NetworkSettings.Networks = make(map[string]NetworkEndpoint, len(raw.NetworkSettings.Networks))
			for name, ep := range raw.NetworkSettings.Networks {
				if ep == nil {
					continue
				}
				info.NetworkSettings.Networks[name] = NetworkEndpoint{
					IPAddress:         ep.IPAddress,
					GlobalIPv6Address: ep.GlobalIPv6Address,
					MacAddress:        ep.MacAddress,
					NetworkID:         ep.NetworkID,
				}
			}
		}
	}

	return info, nil
}

func (s *SDKClient) Events(ctx context.Context) (<-chan ContainerEvent, <-chan error) {
	out := make(chan ContainerEvent, 64)
	outErr := make(chan error, 1)

	// No type filter here on purpose: spec §4.4 requires the event loop
	// itself to classify and drop image events, not the transport.
	msgCh, errCh := s.cli.Events(ctx, events.ListOptions{})

	go func() {
		defer close(out)
		defer close(outErr)

		for {
			select {
			case msg, ok := <-msgCh:
				if !ok {
					return
				}
				evt := ContainerEvent{
					ID:     msg.Actor.ID,
					Status: string(msg.Action),
					Type:   string(msg.Type),
				}
				select {
				case out <- evt:
				case <-ctx.Done():
					return
				}

			case err, ok := <-errCh:
				if !ok {
					return
				}
				select {
				case outErr <- err:
				case <-ctx.Done():
				}
				return
			}
		}
	}()

	return out, outErr
}

func (s *SDKClient) Close() error {
	return s.cli.Close()
}

var _ Client = (*SDKClient)(nil)
