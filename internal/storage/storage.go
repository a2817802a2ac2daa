// ABOUTME: Opens the configured durable backend and the profile and plan store on top of it
// ABOUTME: Chooses between local SQLite, Charm cloud KV and a throwaway in-memory map
package storage

import (
	"fmt"

	"github.com/harper/olympus/internal/charm"
	"github.com/harper/olympus/internal/config"
	"github.com/harper/olympus/internal/logging"
	"github.com/harper/olympus/internal/storage/sqlite"
)

// OpenBackend opens the backend named by cfg.Backend
func OpenBackend(cfg *config.Config) (Backend, error) {
	switch cfg.Backend {
	case config.BackendSQLite:
		db, err := sqlite.Open(cfg.DBPath())
		if err != nil {
			return nil, fmt.Errorf("failed to open sqlite backend: %w", err)
		}
		logging.Debug("opened sqlite backend", "path", db.Path())
		return db, nil

	case config.BackendCharm:
		client, err := charm.NewClient(&charm.Config{
			Host:     cfg.CharmHost,
			DBName:   cfg.CharmDBName,
			AutoSync: cfg.AutoSync,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to open charm backend: %w", err)
		}
		logging.Debug("opened charm backend", "host", cfg.CharmHost, "db", cfg.CharmDBName)
		return client, nil

	case config.BackendMemory:
		return NewMemoryBackend(), nil

	default:
		return nil, fmt.Errorf("unknown backend %q", cfg.Backend)
	}
}

// Open opens the configured backend and restores the store from it
func Open(cfg *config.Config) (*Store, error) {
	backend, err := OpenBackend(cfg)
	if err != nil {
		return nil, err
	}
	return New(backend), nil
}

// Backend returns the backend the store persists to
func (s *Store) Backend() Backend {
	return s.backend
}
