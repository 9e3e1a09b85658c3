package app

import (
	"context"

	"go.uber.org/zap"

	"greatlibrary/internal/filesearch"
)

const storeNamePrefix = "fileSearchStores/"

// StoreResolver ensures exactly one remote document store exists for the
// configured display name and keeps its id in the local cache.
type StoreResolver struct {
	client      SearchAPI
	cache       DocumentCache
	displayName string
	logger      *zap.Logger
}

func NewStoreResolver(client SearchAPI, cache DocumentCache, displayName string, logger *zap.Logger) *StoreResolver {
	if displayName == "" {
		displayName = "Great Library"
	}
	return &StoreResolver{
		client:      client,
		cache:       cache,
		displayName: displayName,
		logger:      logger,
	}
}

// EnsureStore resolves the store in three steps: cached id, remote listing,
// then creation. A cached id that no longer fetches is still returned
// optimistically so a transient remote failure does not block the caller.
func (r *StoreResolver) EnsureStore(ctx context.Context) (*filesearch.Store, error) {
	cachedID, err := r.cache.GetStoreID(ctx)
	if err != nil {
		return nil, err
	}
	if cachedID != "" {
		name := storeNamePrefix + cachedID
		store, err := r.client.GetStore(ctx, name)
		if err != nil {
			r.logger.Warn("fetch cached store failed, using cached id",
				zap.String("store_id", cachedID), zap.Error(err))
			return &filesearch.Store{Name: name, DisplayName: r.displayName}, nil
		}
		return store, nil
	}

	stores, err := r.client.ListStores(ctx)
	if err != nil {
		// Treated as "no existing store found"; fall through to create.
		r.logger.Warn("list stores failed", zap.Error(err))
		stores = nil
	}
	for _, s := range stores {
		if s.DisplayName == r.displayName || s.DisplayName == "" {
			store := s
			if err := r.cache.SetStoreID(ctx, store.ID()); err != nil {
				return nil, err
			}
			return &store, nil
		}
	}

	created, err := r.client.CreateStore(ctx, r.displayName)
	if err != nil {
		return nil, err
	}
	if err := r.cache.SetStoreID(ctx, created.ID()); err != nil {
		return nil, err
	}
	return created, nil
}
