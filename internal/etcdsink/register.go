package etcdsink

import "github.com/SUNET/simple-registrator/internal/registry"

// Backend returns the registry.Backend for this sink, reacting to "start"
// and "running" (the live-container and bootstrap-synthesized statuses,
// spec §4.4) and "die".
func (s *Sink) Backend() registry.Backend {
	return registry.Backend{
		Name:           Name,
		DefaultEnabled: false,
		Handlers: map[string]registry.Handler{
			"start":   s.HandleRunning,
			"running": s.HandleRunning,
			"die":     s.HandleDie,
		},
	}
}
