package storage

import (
	"errors"
	"sync"

	"github.com/eugenenazirov/api-routes/internal/routes"
)

var (
	// ErrNilConfiguration indicates an attempt to serve an absent route table.
	ErrNilConfiguration = errors.New("route configuration must not be nil")
)

// Storage provides access to the route table currently served by the API.
type Storage interface {
	Routes() *routes.Configuration
	SetRoutes(cfg *routes.Configuration) error
}

// MemoryStorage keeps the active route table in-memory and guards the
// snapshot swap with a RWMutex. Snapshots themselves are immutable.
type MemoryStorage struct {
	mu     sync.RWMutex
	routes *routes.Configuration
}

// NewMemoryStorage initialises storage with the given table, or the default
// table when cfg is nil.
func NewMemoryStorage(cfg *routes.Configuration) *MemoryStorage {
	if cfg == nil {
		cfg = routes.Default()
	}
	return &MemoryStorage{routes: cfg}
}

// Routes returns the active route table.
func (s *MemoryStorage) Routes() *routes.Configuration {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.routes
}

// SetRoutes replaces the active route table.
func (s *MemoryStorage) SetRoutes(cfg *routes.Configuration) error {
	if cfg == nil {
		return ErrNilConfiguration
	}

	s.mu.Lock()
	s.routes = cfg
	s.mu.Unlock()

	return nil
}
