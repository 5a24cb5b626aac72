package store

import (
	"context"
	"sync"

	"github.com/Aidin1998/usersapi/pkg/models"
	"github.com/tidwall/btree"
)

// MemoryStore keeps users in an ordered in-process map. Intended for development and tests.
type MemoryStore struct {
	mu    sync.RWMutex
	users *btree.Map[string, models.User]
}

var _ Store = (*MemoryStore)(nil)

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{users: btree.NewMap[string, models.User](32)}
}

func (s *MemoryStore) Find(ctx context.Context) ([]models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	users := make([]models.User, 0, s.users.Len())
	s.users.Scan(func(_ string, u models.User) bool {
		users = append(users, u)
		return true
	})
	return users, nil
}

func (s *MemoryStore) FindByID(ctx context.Context, id string) (*models.User, error) {
	uid, ok := parseID(id)
	if !ok {
		return nil, notFound()
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users.Get(uid.String())
	if !ok {
		return nil, notFound()
	}
	return &u, nil
}

func (s *MemoryStore) Insert(ctx context.Context, in models.UserInput) (models.InsertResult, error) {
	user := newUser(in)

	s.mu.Lock()
	s.users.Set(user.ID.String(), user)
	s.mu.Unlock()

	return models.InsertResult{ID: user.ID}, nil
}

func (s *MemoryStore) Update(ctx context.Context, id string, in models.UserInput) (int64, error) {
	uid, ok := parseID(id)
	if !ok {
		return 0, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users.Get(uid.String())
	if !ok {
		return 0, nil
	}
	u.Name = in.Name
	u.Bio = in.Bio
	u.UpdatedAt = timestamp()
	s.users.Set(uid.String(), u)
	return 1, nil
}

func (s *MemoryStore) Remove(ctx context.Context, id string) (int64, error) {
	uid, ok := parseID(id)
	if !ok {
		return 0, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users.Delete(uid.String()); !ok {
		return 0, nil
	}
	return 1, nil
}
