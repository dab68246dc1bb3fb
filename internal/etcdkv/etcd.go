package etcdkv

import (
	"context"
	"fmt"
	"time"

	etcdv2 "go.etcd.io/etcd/client/v2"
)

// EtcdClient implements Client against a real etcd cluster via the v2 HTTP
// API — the same Create/Write/TTL/PrevExist/recursive-Delete vocabulary the
// Python original's etcd.Client used (see DESIGN.md for why v2 rather than
// v3's lease API).
type EtcdClient struct {
	keys etcdv2.KeysAPI
}

// NewEtcdClient dials the etcd cluster at host:port.
func NewEtcdClient(host string, port int) (*EtcdClient, error) {
	cfg := etcdv2.Config{
		Endpoints: []string{fmt.Sprintf("http://%s:%d", host, port)},
		Transport: etcdv2.DefaultTransport,
	}
	c, err := etcdv2.New(cfg)
	if err != nil {
		return nil, fmt.Errorf("etcd client: %w", err)
	}
	return &EtcdClient{keys: etcdv2.NewKeysAPI(c)}, nil
}

func (e *EtcdClient) Create(ctx context.Context, key, value string, ttl time.Duration) error {
	_, err := e.keys.Set(ctx, key, value, &etcdv2.SetOptions{
		TTL:       ttl,
		PrevExist: etcdv2.PrevNoExist,
	})
	if err != nil {
		if isNodeExists(err) {
			return ErrExists
		}
		return fmt.Errorf("etcd create %s: %w", key, err)
	}
	return nil
}

func (e *EtcdClient) Write(ctx context.Context, key, value string, ttl time.Duration) error {
	_, err := e.keys.Set(ctx, key, value, &etcdv2.SetOptions{TTL: ttl})
	if err != nil {
		return fmt.Errorf("etcd write %s: %w", key, err)
	}
	return nil
}

func (e *EtcdClient) Delete(ctx context.Context, key string, recursive bool) error {
	_, err := e.keys.Delete(ctx, key, &etcdv2.DeleteOptions{Recursive: recursive})
	if err != nil {
		if etcdv2.IsKeyNotFound(err) {
			return ErrNotFound
		}
		return fmt.Errorf("etcd delete %s: %w", key, err)
	}
	return nil
}

func (e *EtcdClient) Close() error {
	return nil
}

func isNodeExists(err error) bool {
	cerr, ok := err.(etcdv2.Error)
	return ok && cerr.Code == etcdv2.ErrorCodeNodeExist
}

var _ Client = (*EtcdClient)(nil)
