package document

import (
	"context"
	"sync"

	"idmonitor/pkg/platform/sentinel"
)

// InMemoryStore holds documents and user emails for tests and development.
type InMemoryStore struct {
	mu        sync.RWMutex
	documents map[string]Document
	emails    map[string]string
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		documents: make(map[string]Document),
		emails:    make(map[string]string),
	}
}

func (s *InMemoryStore) PutDocument(doc Document) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.documents[doc.ID] = doc
}

func (s *InMemoryStore) PutEmail(userID, email string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.emails[userID] = email
}

func (s *InMemoryStore) GetDocument(_ context.Context, id string) (Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	doc, ok := s.documents[id]
	if !ok {
		return Document{}, sentinel.ErrNotFound
	}
	return doc, nil
}

func (s *InMemoryStore) EmailAddress(_ context.Context, userID string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	email, ok := s.emails[userID]
	if !ok {
		return "", sentinel.ErrNotFound
	}
	return email, nil
}
