// Package adapter provides the database access contract for the Milepoint
// feature store and the drivers that implement it. The production network
// lives in an SDE-backed PostgreSQL versioned view; the SQLite and DuckDB
// drivers cover file-geodatabase extracts and offline network snapshots.
package adapter

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"strings"
	"sync"
)

// Config holds connection settings for a feature store adapter.
type Config struct {
	Type string `koanf:"type"` // sqlite, postgres, duckdb

	// Path is the file path for file-based stores (SQLite, DuckDB).
	// Use ":memory:" for an in-memory store.
	Path string `koanf:"path"`

	// Network stores
	Host     string `koanf:"host"`
	Port     int    `koanf:"port"`
	Database string `koanf:"database"`
	Username string `koanf:"username"`
	Password string `koanf:"password"`

	// Schema qualifies table references, e.g. "elrs"
	Schema string `koanf:"schema"`

	// Options contains additional driver-specific options
	Options map[string]string `koanf:"options"`
}

// Adapter is the minimal database surface the validation tools need:
// connect, query, execute, close. Implementations wrap database/sql
// drivers.
type Adapter interface {
	// Connect establishes a connection using the provided config.
	Connect(ctx context.Context, cfg Config) error

	// Close closes the connection and releases resources.
	Close() error

	// Query executes a statement that returns rows.
	Query(ctx context.Context, query string, args ...any) (*sql.Rows, error)

	// Exec executes a statement that doesn't return rows.
	Exec(ctx context.Context, query string, args ...any) error

	// DialectName returns the SQL dialect name, e.g. "postgres".
	DialectName() string
}

// UnknownAdapterError is returned when a config names an adapter type that
// has not been registered.
type UnknownAdapterError struct {
	Type      string
	Available []string
}

func (e *UnknownAdapterError) Error() string {
	return fmt.Sprintf("unknown adapter type %q (available: %s)",
		e.Type, strings.Join(e.Available, ", "))
}

var (
	registryMu sync.RWMutex
	registry   = make(map[string]func() Adapter)
)

// Register adds an adapter factory under name. Called from driver init
// functions.
func Register(name string, factory func() Adapter) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[name] = factory
}

// New creates the adapter named by cfg.Type.
func New(cfg Config) (Adapter, error) {
	registryMu.RLock()
	factory, ok := registry[strings.ToLower(cfg.Type)]
	registryMu.RUnlock()
	if !ok {
		return nil, &UnknownAdapterError{Type: cfg.Type, Available: List()}
	}
	return factory(), nil
}

// List returns the registered adapter type names in sorted order.
func List() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// IsRegistered reports whether name is a known adapter type.
func IsRegistered(name string) bool {
	registryMu.RLock()
	defer registryMu.RUnlock()
	_, ok := registry[strings.ToLower(name)]
	return ok
}
