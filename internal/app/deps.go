package app

import (
	"context"

	"greatlibrary/internal/filesearch"
	"greatlibrary/internal/model"
)

// SearchAPI is the slice of the remote file-search and generation service the
// orchestrators use. The concrete client is injected so tests can substitute
// a fake remote.
type SearchAPI interface {
	CreateStore(ctx context.Context, displayName string) (*filesearch.Store, error)
	GetStore(ctx context.Context, name string) (*filesearch.Store, error)
	ListStores(ctx context.Context) ([]filesearch.Store, error)
	UploadDocument(ctx context.Context, in filesearch.UploadInput) (*filesearch.Operation, error)
	WaitForOperation(ctx context.Context, op *filesearch.Operation) (*filesearch.Operation, error)
	ListDocuments(ctx context.Context, storeName string) ([]filesearch.StoreDocument, error)
	DeleteDocument(ctx context.Context, name string) error
	Generate(ctx context.Context, req filesearch.GenerateRequest) (*filesearch.GenerateResponse, error)
}

// DocumentCache is the local persisted metadata store.
type DocumentCache interface {
	GetAll(ctx context.Context) ([]model.Document, error)
	Upsert(ctx context.Context, docs []model.Document) ([]model.Document, error)
	ReplaceAll(ctx context.Context, docs []model.Document) error
	Remove(ctx context.Context, id string) error
	GetStoreID(ctx context.Context) (string, error)
	SetStoreID(ctx context.Context, id string) error
}

// ConversationStore keeps ask history per (user, session).
type ConversationStore interface {
	Get(ctx context.Context, userID uint, session string) ([]model.Turn, error)
	Set(ctx context.Context, userID uint, session string, turns []model.Turn) error
	Clear(ctx context.Context, userID uint, session string) error
}

// AsyncQAPublisher hands answered questions off for durable persistence.
type AsyncQAPublisher interface {
	Publish(ctx context.Context, record model.QARecord) error
}
