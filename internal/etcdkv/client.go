// Package etcdkv abstracts the distributed KV store the projector writes
// into (spec §6 "KV store client"): write with TTL, create-if-absent, and
// recursive delete, with "not found" distinguishable from other errors.
package etcdkv

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned by Delete when the key (or subtree) does not
// exist.
var ErrNotFound = errors.New("etcdkv: key not found")

// ErrExists is returned by Create when the key already exists.
var ErrExists = errors.New("etcdkv: key already exists")

// Client is the KV store surface the Refresher and the etcd sink need.
type Client interface {
	// Create writes key=value only if the key does not already exist,
	// returning ErrExists otherwise. Used for the very first write of a
	// fresh container's projection (see SPEC_FULL.md Open Question
	// resolution #2).
	Create(ctx context.Context, key, value string, ttl time.Duration) error

	// Write unconditionally writes key=value with the given TTL,
	// creating or updating as needed. Used for every refresh pass after
	// the first.
	Write(ctx context.Context, key, value string, ttl time.Duration) error

	// Delete removes key. If recursive, key is treated as a directory
	// and its entire subtree is removed.
	Delete(ctx context.Context, key string, recursive bool) error

	Close() error
}
