package app

import (
	"context"
	"fmt"

	"greatlibrary/internal/filesearch"
	"greatlibrary/internal/model"
)

// fakeSearch implements SearchAPI with per-method hooks. Calling a method
// whose hook is unset fails the test loudly.
type fakeSearch struct {
	createStoreFn   func(ctx context.Context, displayName string) (*filesearch.Store, error)
	getStoreFn      func(ctx context.Context, name string) (*filesearch.Store, error)
	listStoresFn    func(ctx context.Context) ([]filesearch.Store, error)
	uploadFn        func(ctx context.Context, in filesearch.UploadInput) (*filesearch.Operation, error)
	waitFn          func(ctx context.Context, op *filesearch.Operation) (*filesearch.Operation, error)
	listDocumentsFn func(ctx context.Context, storeName string) ([]filesearch.StoreDocument, error)
	deleteFn        func(ctx context.Context, name string) error
	generateFn      func(ctx context.Context, req filesearch.GenerateRequest) (*filesearch.GenerateResponse, error)

	createStoreCalls int
	getStoreCalls    int
	listStoresCalls  int
	uploadCalls      int
	deleteCalls      int
	generateCalls    int
}

func (f *fakeSearch) CreateStore(ctx context.Context, displayName string) (*filesearch.Store, error) {
	f.createStoreCalls++
	if f.createStoreFn == nil {
		panic("unexpected CreateStore call")
	}
	return f.createStoreFn(ctx, displayName)
}

func (f *fakeSearch) GetStore(ctx context.Context, name string) (*filesearch.Store, error) {
	f.getStoreCalls++
	if f.getStoreFn == nil {
		panic("unexpected GetStore call")
	}
	return f.getStoreFn(ctx, name)
}

func (f *fakeSearch) ListStores(ctx context.Context) ([]filesearch.Store, error) {
	f.listStoresCalls++
	if f.listStoresFn == nil {
		panic("unexpected ListStores call")
	}
	return f.listStoresFn(ctx)
}

func (f *fakeSearch) UploadDocument(ctx context.Context, in filesearch.UploadInput) (*filesearch.Operation, error) {
	f.uploadCalls++
	if f.uploadFn == nil {
		panic("unexpected UploadDocument call")
	}
	return f.uploadFn(ctx, in)
}

func (f *fakeSearch) WaitForOperation(ctx context.Context, op *filesearch.Operation) (*filesearch.Operation, error) {
	if f.waitFn == nil {
		panic("unexpected WaitForOperation call")
	}
	return f.waitFn(ctx, op)
}

func (f *fakeSearch) ListDocuments(ctx context.Context, storeName string) ([]filesearch.StoreDocument, error) {
	if f.listDocumentsFn == nil {
		panic("unexpected ListDocuments call")
	}
	return f.listDocumentsFn(ctx, storeName)
}

func (f *fakeSearch) DeleteDocument(ctx context.Context, name string) error {
	f.deleteCalls++
	if f.deleteFn == nil {
		panic("unexpected DeleteDocument call")
	}
	return f.deleteFn(ctx, name)
}

func (f *fakeSearch) Generate(ctx context.Context, req filesearch.GenerateRequest) (*filesearch.GenerateResponse, error) {
	f.generateCalls++
	if f.generateFn == nil {
		panic("unexpected Generate call")
	}
	return f.generateFn(ctx, req)
}

// memDocumentCache is an in-memory DocumentCache with optional error
// injection.
type memDocumentCache struct {
	storeID string
	docs    []model.Document

	getAllErr  error
	upsertErr  error
	storeIDErr error

	getStoreIDCalls int
	upsertCalls     int
}

func (m *memDocumentCache) GetAll(ctx context.Context) ([]model.Document, error) {
	if m.getAllErr != nil {
		return nil, m.getAllErr
	}
	out := make([]model.Document, len(m.docs))
	copy(out, m.docs)
	return out, nil
}

func (m *memDocumentCache) Upsert(ctx context.Context, docs []model.Document) ([]model.Document, error) {
	m.upsertCalls++
	if m.upsertErr != nil {
		return nil, m.upsertErr
	}
	for _, d := range docs {
		replaced := false
		for i := range m.docs {
			if m.docs[i].ID == d.ID {
				m.docs[i] = d
				replaced = true
				break
			}
		}
		if !replaced {
			m.docs = append(m.docs, d)
		}
	}
	return m.GetAll(ctx)
}

func (m *memDocumentCache) ReplaceAll(ctx context.Context, docs []model.Document) error {
	m.docs = docs
	return nil
}

func (m *memDocumentCache) Remove(ctx context.Context, id string) error {
	kept := m.docs[:0]
	for _, d := range m.docs {
		if d.ID != id {
			kept = append(kept, d)
		}
	}
	m.docs = kept
	return nil
}

func (m *memDocumentCache) GetStoreID(ctx context.Context) (string, error) {
	m.getStoreIDCalls++
	if m.storeIDErr != nil {
		return "", m.storeIDErr
	}
	return m.storeID, nil
}

func (m *memDocumentCache) SetStoreID(ctx context.Context, id string) error {
	m.storeID = id
	return nil
}

// memConversations is an in-memory ConversationStore keyed by (user, session).
type memConversations struct {
	sessions map[string][]model.Turn
	getErr   error
	setErr   error
}

func newMemConversations() *memConversations {
	return &memConversations{sessions: make(map[string][]model.Turn)}
}

func conversationKey(userID uint, session string) string {
	return fmt.Sprintf("%d:%s", userID, session)
}

func (m *memConversations) Get(ctx context.Context, userID uint, session string) ([]model.Turn, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	return m.sessions[conversationKey(userID, session)], nil
}

func (m *memConversations) Set(ctx context.Context, userID uint, session string, turns []model.Turn) error {
	if m.setErr != nil {
		return m.setErr
	}
	m.sessions[conversationKey(userID, session)] = turns
	return nil
}

func (m *memConversations) Clear(ctx context.Context, userID uint, session string) error {
	delete(m.sessions, conversationKey(userID, session))
	return nil
}

// capturePublisher records every published QA record.
type capturePublisher struct {
	records []model.QARecord
	err     error
}

func (p *capturePublisher) Publish(ctx context.Context, record model.QARecord) error {
	if p.err != nil {
		return p.err
	}
	p.records = append(p.records, record)
	return nil
}
