package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"

	redisv9 "github.com/redis/go-redis/v9"

	"greatlibrary/internal/model"
)

const defaultDocumentKey = "greatlibrary:documents"

// cacheState is the single persisted blob: the resolved store id plus every
// cached document record.
type cacheState struct {
	StoreID   string           `json:"store_id,omitempty"`
	Documents []model.Document `json:"documents"`
}

// DocumentCache persists document metadata as one JSON blob under one key.
// Reads of a missing or malformed blob yield an empty state rather than an
// error. Writes are whole-blob read-modify-write: concurrent writers race
// with last-writer-wins, which is acceptable because commands run one at a
// time.
type DocumentCache struct {
	client *redisv9.Client
	key    string
}

func NewDocumentCache(client *redisv9.Client, key string) *DocumentCache {
	if key == "" {
		key = defaultDocumentKey
	}
	return &DocumentCache{client: client, key: key}
}

// GetAll returns every cached document record, newest upload first.
func (c *DocumentCache) GetAll(ctx context.Context) ([]model.Document, error) {
	state, err := c.load(ctx)
	if err != nil {
		return nil, err
	}
	return state.Documents, nil
}

// Upsert merges the given records into the cache by id and returns the new
// full list sorted by upload date descending.
func (c *DocumentCache) Upsert(ctx context.Context, docs []model.Document) ([]model.Document, error) {
	state, err := c.load(ctx)
	if err != nil {
		return nil, err
	}
	state.Documents = mergeDocuments(state.Documents, docs)
	if err := c.save(ctx, state); err != nil {
		return nil, err
	}
	return state.Documents, nil
}

// ReplaceAll swaps the whole cached document list, keeping the store id.
func (c *DocumentCache) ReplaceAll(ctx context.Context, docs []model.Document) error {
	state, err := c.load(ctx)
	if err != nil {
		return err
	}
	sortDocuments(docs)
	state.Documents = docs
	return c.save(ctx, state)
}

// Remove drops one record by id; removing an unknown id is a no-op.
func (c *DocumentCache) Remove(ctx context.Context, id string) error {
	state, err := c.load(ctx)
	if err != nil {
		return err
	}
	kept := state.Documents[:0]
	for _, d := range state.Documents {
		if d.ID != id {
			kept = append(kept, d)
		}
	}
	state.Documents = kept
	return c.save(ctx, state)
}

func (c *DocumentCache) GetStoreID(ctx context.Context) (string, error) {
	state, err := c.load(ctx)
	if err != nil {
		return "", err
	}
	return state.StoreID, nil
}

func (c *DocumentCache) SetStoreID(ctx context.Context, id string) error {
	state, err := c.load(ctx)
	if err != nil {
		return err
	}
	state.StoreID = id
	return c.save(ctx, state)
}

func (c *DocumentCache) load(ctx context.Context) (cacheState, error) {
	raw, err := c.client.Get(ctx, c.key).Result()
	if err == redisv9.Nil {
		return cacheState{}, nil
	}
	if err != nil {
		return cacheState{}, fmt.Errorf("redis get document cache failed: %w", err)
	}

	var state cacheState
	if err := json.Unmarshal([]byte(raw), &state); err != nil {
		// Corrupted blob: recover silently with an empty state.
		return cacheState{}, nil
	}
	return state, nil
}

func (c *DocumentCache) save(ctx context.Context, state cacheState) error {
	payload, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("marshal document cache failed: %w", err)
	}
	if err := c.client.Set(ctx, c.key, payload, 0).Err(); err != nil {
		return fmt.Errorf("redis set document cache failed: %w", err)
	}
	return nil
}

// mergeDocuments overlays incoming records onto existing ones by id and
// returns the result sorted by upload date descending. Upserting the same
// record twice yields one record.
func mergeDocuments(existing, incoming []model.Document) []model.Document {
	merged := make([]model.Document, len(existing))
	copy(merged, existing)

	index := make(map[string]int, len(merged))
	for i, d := range merged {
		index[d.ID] = i
	}
	for _, d := range incoming {
		if i, ok := index[d.ID]; ok {
			merged[i] = d
			continue
		}
		index[d.ID] = len(merged)
		merged = append(merged, d)
	}

	sortDocuments(merged)
	return merged
}

func sortDocuments(docs []model.Document) {
	sort.SliceStable(docs, func(i, j int) bool {
		return docs[i].UploadDate > docs[j].UploadDate
	})
}
