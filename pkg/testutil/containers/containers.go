//go:build integration

// Package containers starts testcontainers-backed dependencies for the
// integration build tag.
package containers

import (
	"sync"
	"testing"
)

var (
	sharedMu sync.Mutex
	shared   *PostgresContainer
)

// SharedPostgres starts Postgres on first use and hands the same instance to
// every suite in the test binary. Ryuk removes it when the binary exits.
func SharedPostgres(t *testing.T) *PostgresContainer {
	t.Helper()

	sharedMu.Lock()
	defer sharedMu.Unlock()
	if shared == nil {
		shared = NewPostgresContainer(t)
	}
	return shared
}
