// Package etcdsink is the principal backend (spec §4.3): it projects a
// container into its etcd keys and keeps them alive with a
// internal/refresher.Refresher for as long as the container runs, removing
// the whole subtree on "die".
package etcdsink

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/SUNET/simple-registrator/internal/dockerrt"
	"github.com/SUNET/simple-registrator/internal/etcdkv"
	"github.com/SUNET/simple-registrator/internal/projector"
	"github.com/SUNET/simple-registrator/internal/refresher"
)

// Name is the backend name used for the REGISTRATOR_ETCD enable override.
const Name = "etcd"

// Sink owns one Refresher per currently-registered container.
type Sink struct {
	kv     etcdkv.Client
	cfg    projector.Config
	period time.Duration

	mu         sync.Mutex
	refreshers map[string]*refresher.Refresher
}

// New builds a Sink. period is the refresh interval T (spec §4.2); TTL is
// always 2*period.
func New(kv etcdkv.Client, cfg projector.Config, period time.Duration) *Sink {
	return &Sink{
		kv:         kv,
		cfg:        cfg,
		period:     period,
		refreshers: make(map[string]*refresher.Refresher),
	}
}

// HandleRunning registers (or re-registers) a container: it computes the
// projection, starts a Refresher for it, and replaces any previous
// Refresher for the same container id. Registration happens before launch
// — the caller sees the first write complete before HandleRunning returns.
func (s *Sink) HandleRunning(ctx context.Context, _ string, info dockerrt.ContainerInfo) error {
	prefix, proj := projector.Project(s.cfg, info)

	r := refresher.New(prefix, proj, s.writeFunc(), s.period)

	s.mu.Lock()
	old, hadOld := s.refreshers[info.ID]
	s.refreshers[info.ID] = r
	s.mu.Unlock()

	if hadOld {
		slog.Info("etcdsink: replacing refresher for already-registered container", "container", info.ID)
		old.Cancel()
	}

	r.Start(ctx)
	slog.Info("etcdsink: registered container", "container", info.ID, "prefix", prefix)
	return nil
}

// HandleDie cancels the container's Refresher and removes its subtree from
// etcd, without waiting for the cancelled goroutine to exit — the delete
// races the in-flight refresh loop exactly as the spec allows.
func (s *Sink) HandleDie(ctx context.Context, _ string, info dockerrt.ContainerInfo) error {
	s.mu.Lock()
	r, ok := s.refreshers[info.ID]
	if ok {
		delete(s.refreshers, info.ID)
	}
	s.mu.Unlock()

	if !ok {
		slog.Warn("etcdsink: die for container with no known refresher", "container", info.ID)
		return nil
	}
	go r.Cancel()

	prefix, _ := projector.Project(s.cfg, info)
	if err := s.kv.Delete(ctx, prefix, true); err != nil {
		if errors.Is(err, etcdkv.ErrNotFound) {
			return nil
		}
		return fmt.Errorf("etcdsink: delete %s: %w", prefix, err)
	}
	return nil
}

// writeFunc returns a refresher.WriteFunc implementing create-or-update:
// the first write for a given key attempts a create (PrevExist:false) and
// falls back to a plain write if the key already exists; every subsequent
// write for that key goes straight to a plain write (SPEC_FULL.md Open
// Question resolution #2). It is stateful per call site and is not safe
// for concurrent use, which is fine — each Refresher drives its own
// writeFunc from a single goroutine.
func (s *Sink) writeFunc() refresher.WriteFunc {
	created := make(map[string]bool)
	return func(ctx context.Context, key, value string, ttl time.Duration) error {
		if !created[key] {
			err := s.kv.Create(ctx, key, value, ttl)
			if err == nil {
				created[key] = true
				return nil
			}
			if !errors.Is(err, etcdkv.ErrExists) {
				return err
			}
			created[key] = true
		}
		return s.kv.Write(ctx, key, value, ttl)
	}
}
