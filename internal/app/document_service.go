package app

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"greatlibrary/internal/filesearch"
	"greatlibrary/internal/model"
)

var ErrDocumentNotFound = errors.New("document not found")

// DocumentService serves the cached document list and keeps it in step with
// the remote store.
type DocumentService struct {
	client   SearchAPI
	resolver *StoreResolver
	cache    DocumentCache
	logger   *zap.Logger
}

func NewDocumentService(client SearchAPI, resolver *StoreResolver, cache DocumentCache, logger *zap.Logger) *DocumentService {
	return &DocumentService{
		client:   client,
		resolver: resolver,
		cache:    cache,
		logger:   logger,
	}
}

// List returns the cached document records, newest first.
func (s *DocumentService) List(ctx context.Context) ([]model.Document, error) {
	return s.cache.GetAll(ctx)
}

// Sync lists the remote documents and replaces the cache with them, mapping
// remote states onto the local status set. Local recording times are kept for
// documents that already exist in the cache.
func (s *DocumentService) Sync(ctx context.Context) ([]model.Document, error) {
	store, err := s.resolver.EnsureStore(ctx)
	if err != nil {
		return nil, err
	}

	remote, err := s.client.ListDocuments(ctx, store.Name)
	if err != nil {
		return nil, err
	}

	existing, err := s.cache.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	known := make(map[string]model.Document, len(existing))
	for _, d := range existing {
		known[d.ID] = d
	}

	docs := make([]model.Document, 0, len(remote))
	for _, rd := range remote {
		doc := model.Document{
			ID:         filesearch.ResourceID(rd.Name),
			Name:       rd.DisplayName,
			UploadDate: rd.CreateTime,
			Size:       rd.SizeBytes,
			Status:     model.StatusFromRemote(rd.State),
			Metadata:   rd.MetadataMap(),
		}
		if doc.Name == "" {
			doc.Name = doc.ID
		}
		if prev, ok := known[doc.ID]; ok {
			if prev.UploadDate != "" {
				doc.UploadDate = prev.UploadDate
			}
			if len(doc.Metadata) == 0 {
				doc.Metadata = prev.Metadata
			}
		}
		docs = append(docs, doc)
	}

	if err := s.cache.ReplaceAll(ctx, docs); err != nil {
		return nil, err
	}
	return s.cache.GetAll(ctx)
}

// Delete removes the document remotely, then from the cache.
func (s *DocumentService) Delete(ctx context.Context, documentID string) error {
	if documentID == "" {
		return ErrDocumentNotFound
	}
	store, err := s.resolver.EnsureStore(ctx)
	if err != nil {
		return err
	}
	name := store.Name + "/documents/" + documentID
	if err := s.client.DeleteDocument(ctx, name); err != nil {
		return err
	}
	if err := s.cache.Remove(ctx, documentID); err != nil {
		s.logger.Warn("remove document from cache failed",
			zap.String("document_id", documentID), zap.Error(err))
	}
	return nil
}
