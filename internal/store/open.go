package store

import (
	"context"
	"fmt"
)

// Backend names accepted by OpenKV.
const (
	BackendSQLite = "sqlite"
	BackendRedis  = "redis"
	BackendMemory = "memory"
)

// Backend selects and addresses a KV implementation.
type Backend struct {
	Kind        string
	Path        string // sqlite
	RedisAddr   string
	RedisPrefix string
}

// OpenKV opens the configured backend. An empty kind means sqlite.
func OpenKV(ctx context.Context, b Backend) (KV, error) {
	switch b.Kind {
	case BackendSQLite, "":
		return OpenSQLite(b.Path)
	case BackendRedis:
		return OpenRedis(ctx, b.RedisAddr, b.RedisPrefix)
	case BackendMemory:
		return NewMemory(), nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q", b.Kind)
	}
}
