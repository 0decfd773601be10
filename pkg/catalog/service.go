package catalog

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
)

// Service serves catalog snapshots, reading through the cache to the
// inventory collector when no fresh snapshot is available.
type Service struct {
	cache     *Cache
	inventory Inventory
	logger    *zap.Logger
}

// NewService creates a catalog service. inventory may be nil when no vCenter
// is configured; snapshots are then served from the cache only.
func NewService(cache *Cache, inventory Inventory, logger *zap.Logger) *Service {
	return &Service{cache: cache, inventory: inventory, logger: logger}
}

// Snapshot returns the current catalog. On a cache miss it collects a fresh
// snapshot, stores it, and returns it. When no inventory is configured and
// the cache is empty it returns (nil, nil): callers treat a nil catalog as
// "validation unavailable" and proceed without it.
func (s *Service) Snapshot(ctx context.Context) (*Catalog, error) {
	cat, err := s.cache.Get(ctx)
	if err == nil {
		return cat, nil
	}
	if !errors.Is(err, ErrCacheMiss) {
		s.logger.Warn("failed to read catalog from cache", zap.Error(err))
	}

	if s.inventory == nil {
		if errors.Is(err, ErrCacheMiss) {
			return nil, nil
		}
		return nil, err
	}

	cat, err = s.inventory.Collect(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to collect inventory: %w", err)
	}
	if err := s.cache.Put(ctx, cat); err != nil {
		s.logger.Warn("failed to cache catalog snapshot", zap.Error(err))
	}
	return cat, nil
}

// Refresh collects a fresh snapshot and stores it, bypassing the cache read.
func (s *Service) Refresh(ctx context.Context) (*Catalog, error) {
	if s.inventory == nil {
		return nil, errors.New("no inventory collector configured")
	}
	cat, err := s.inventory.Collect(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to collect inventory: %w", err)
	}
	if err := s.cache.Put(ctx, cat); err != nil {
		return nil, err
	}
	return cat, nil
}

// Ping reports whether the cache backend is reachable.
func (s *Service) Ping(ctx context.Context) error {
	return s.cache.Ping(ctx)
}
