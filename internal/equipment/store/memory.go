package store

import (
	"context"
	"slices"
	"sync"

	"github.com/shandysiswandi/chemviz/internal/equipment/entity"
	"github.com/shandysiswandi/chemviz/internal/pkg/pkgerror"
)

// InMemoryStore keeps everything in process memory. Data is lost on restart.
type InMemoryStore struct {
	mu      sync.RWMutex
	uploads map[int64]entity.Upload
	users   map[string]entity.User
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		uploads: make(map[int64]entity.Upload),
		users:   make(map[string]entity.User),
	}
}

func (s *InMemoryStore) CreateUpload(ctx context.Context, upload entity.Upload) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.uploads[upload.ID]; exists {
		return pkgerror.NewConflict("upload already exists")
	}

	upload.Stats = cloneStats(upload.Stats)
	s.uploads[upload.ID] = upload

	return nil
}

func (s *InMemoryStore) ListUploads(ctx context.Context, owner string) ([]entity.Upload, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	items := make([]entity.Upload, 0)
	for _, u := range s.uploads {
		if u.Owner != owner {
			continue
		}
		u.Stats = cloneStats(u.Stats)
		items = append(items, u)
	}

	slices.SortFunc(items, func(a, b entity.Upload) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		switch {
		case a.ID > b.ID:
			return -1
		case a.ID < b.ID:
			return 1
		}
		return 0
	})

	return items, nil
}

func (s *InMemoryStore) GetUpload(ctx context.Context, id int64) (entity.Upload, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.uploads[id]
	if !ok {
		return entity.Upload{}, pkgerror.ErrNotFound
	}
	u.Stats = cloneStats(u.Stats)

	return u, nil
}

func (s *InMemoryStore) UpsertUser(ctx context.Context, user entity.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if existing, ok := s.users[user.Username]; ok {
		user.CreatedAt = existing.CreatedAt
	}
	s.users[user.Username] = user

	return nil
}

func (s *InMemoryStore) GetUser(ctx context.Context, username string) (entity.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[username]
	if !ok {
		return entity.User{}, pkgerror.ErrNotFound
	}

	return u, nil
}

func (s *InMemoryStore) Close() error { return nil }

// cloneStats copies the slices so callers cannot mutate stored records.
func cloneStats(st entity.Statistics) entity.Statistics {
	st.ChartLabels = append([]string{}, st.ChartLabels...)
	st.ChartData = append([]int{}, st.ChartData...)
	return st
}
