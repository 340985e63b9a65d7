package repository

import (
	"context"
	"errors"
	"fmt"

	"FinCast/internal/domain/models"
	domrepo "FinCast/internal/domain/repository"
	"FinCast/pkg/cache"
)

// WatchlistKey is the fixed storage key of the watch-list.
const WatchlistKey = "stockWatchlist"

// CacheWatchlistStore keeps the watch-list as a JSON array in a cache.Service.
type CacheWatchlistStore struct {
	store cache.Service
}

var _ domrepo.WatchlistStore = (*CacheWatchlistStore)(nil)

func NewCacheWatchlistStore(store cache.Service) *CacheWatchlistStore {
	return &CacheWatchlistStore{store: store}
}

// Load returns the stored entries; a missing key is an empty list.
func (s *CacheWatchlistStore) Load(ctx context.Context) ([]models.WatchEntry, error) {
	var entries []models.WatchEntry
	if err := s.store.Get(ctx, WatchlistKey, &entries); err != nil {
		if errors.Is(err, cache.ErrCacheMiss) {
			return []models.WatchEntry{}, nil
		}
		return nil, fmt.Errorf("load watchlist: %w", err)
	}
	if entries == nil {
		entries = []models.WatchEntry{}
	}
	return entries, nil
}

// Save replaces the stored list. The entry never expires.
func (s *CacheWatchlistStore) Save(ctx context.Context, entries []models.WatchEntry) error {
	if len(entries) == 0 {
		if err := s.store.Delete(ctx, WatchlistKey); err != nil {
			return fmt.Errorf("clear watchlist: %w", err)
		}
		return nil
	}
	if err := s.store.Set(ctx, WatchlistKey, entries, 0); err != nil {
		return fmt.Errorf("save watchlist: %w", err)
	}
	return nil
}
