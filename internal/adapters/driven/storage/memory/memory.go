// Package memory provides in-memory implementations of the storage ports.
// Used by tests and available as a throwaway backend for local development.
// All methods are safe for concurrent use.
package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/custodia-labs/teamhub/internal/core/domain"
	"github.com/custodia-labs/teamhub/internal/core/ports/driven"
)

// Interface checks.
var (
	_ driven.DocumentStore = (*Store)(nil)
	_ driven.VersionStore  = (*Store)(nil)
	_ driven.ActivityStore = (*Store)(nil)
	_ driven.UserStore     = (*Store)(nil)
	_ driven.TextIndex     = (*Store)(nil)
)

// Store holds all entities in maps guarded by a single mutex.
type Store struct {
	mu         sync.RWMutex
	docs       map[string]domain.Document
	versions   map[string][]domain.Version
	activities []domain.Activity
	users      map[string]domain.User
	byEmail    map[string]string
}

// NewStore creates an empty in-memory store.
func NewStore() *Store {
	return &Store{
		docs:     make(map[string]domain.Document),
		versions: make(map[string][]domain.Version),
		users:    make(map[string]domain.User),
		byEmail:  make(map[string]string),
	}
}

// SaveDocument stores or overwrites a document.
func (s *Store) SaveDocument(_ context.Context, doc *domain.Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.docs[doc.ID] = copyDocument(*doc)
	return nil
}

// GetDocument retrieves a document by ID.
func (s *Store) GetDocument(_ context.Context, id string) (*domain.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	doc, ok := s.docs[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	out := copyDocument(doc)
	return &out, nil
}

// ListDocuments returns documents matching the filter, most recently
// updated first.
func (s *Store) ListDocuments(_ context.Context, filter driven.DocumentFilter) ([]domain.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	docs := make([]domain.Document, 0, len(s.docs))
	for _, doc := range s.docs {
		if filter.Tag != "" && !doc.HasTag(filter.Tag) {
			continue
		}
		docs = append(docs, copyDocument(doc))
	}

	sort.Slice(docs, func(i, j int) bool {
		if docs[i].UpdatedAt.Equal(docs[j].UpdatedAt) {
			return docs[i].ID < docs[j].ID
		}
		return docs[i].UpdatedAt.After(docs[j].UpdatedAt)
	})

	if filter.Limit > 0 {
		page := filter.Page
		if page < 1 {
			page = 1
		}
		offset := (page - 1) * filter.Limit
		if offset >= len(docs) {
			return []domain.Document{}, nil
		}
		end := offset + filter.Limit
		if end > len(docs) {
			end = len(docs)
		}
		docs = docs[offset:end]
	}
	return docs, nil
}

// DeleteDocument removes a document. Versions and activities survive.
func (s *Store) DeleteDocument(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.docs[id]; !ok {
		return domain.ErrNotFound
	}
	delete(s.docs, id)
	return nil
}

// SaveVersion appends a snapshot.
func (s *Store) SaveVersion(_ context.Context, v *domain.Version) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.versions[v.DocID] = append(s.versions[v.DocID], *v)
	return nil
}

// ListVersions returns a document's versions, newest first.
func (s *Store) ListVersions(_ context.Context, docID string) ([]domain.Version, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	versions := make([]domain.Version, len(s.versions[docID]))
	copy(versions, s.versions[docID])
	sort.Slice(versions, func(i, j int) bool {
		return versions[i].EditedAt.After(versions[j].EditedAt)
	})
	return versions, nil
}

// Append records an activity entry.
func (s *Store) Append(_ context.Context, a *domain.Activity) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.activities = append(s.activities, *a)
	return nil
}

// Latest returns the most recent n activity entries, newest first.
func (s *Store) Latest(_ context.Context, n int) ([]domain.Activity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	items := make([]domain.Activity, len(s.activities))
	copy(items, s.activities)
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].CreatedAt.After(items[j].CreatedAt)
	})
	if n > 0 && len(items) > n {
		items = items[:n]
	}
	return items, nil
}

// CreateUser stores a new user.
func (s *Store) CreateUser(_ context.Context, u *domain.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byEmail[u.Email]; ok {
		return fmt.Errorf("%w: email already in use", domain.ErrAlreadyExists)
	}
	s.users[u.ID] = *u
	s.byEmail[u.Email] = u.ID
	return nil
}

// GetUser retrieves a user by ID.
func (s *Store) GetUser(_ context.Context, id string) (*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &u, nil
}

// GetUserByEmail retrieves a user by email.
func (s *Store) GetUserByEmail(_ context.Context, email string) (*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.byEmail[email]
	if !ok {
		return nil, domain.ErrNotFound
	}
	u := s.users[id]
	return &u, nil
}

// Search implements naive keyword search: the score is the number of query
// terms present in the document's title or content. Good enough for tests;
// production uses the SQLite FTS5 index.
func (s *Store) Search(_ context.Context, query string, limit int) ([]driven.TextHit, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	terms := strings.Fields(strings.ToLower(query))
	var hits []driven.TextHit
	for id, doc := range s.docs {
		text := strings.ToLower(doc.Title + " " + doc.Content)
		score := 0
		for _, term := range terms {
			if strings.Contains(text, term) {
				score++
			}
		}
		if score > 0 {
			hits = append(hits, driven.TextHit{DocID: id, Score: float64(score)})
		}
	}

	sort.Slice(hits, func(i, j int) bool {
		if hits[i].Score == hits[j].Score {
			return hits[i].DocID < hits[j].DocID
		}
		return hits[i].Score > hits[j].Score
	})
	if limit > 0 && len(hits) > limit {
		hits = hits[:limit]
	}
	return hits, nil
}

func copyDocument(doc domain.Document) domain.Document {
	out := doc
	out.Tags = append([]string(nil), doc.Tags...)
	out.Embedding = append([]float32(nil), doc.Embedding...)
	return out
}
