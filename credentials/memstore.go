package credentials

import (
	"sync"

	"apexpos/model"
)

// MemStore is an in-memory Store for tests and ephemeral sessions.
type MemStore struct {
	mu   sync.Mutex
	pair *Pair
	user *model.User
}

func NewMemStore() *MemStore { return &MemStore{} }

func (s *MemStore) Save(p Pair) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pair = &p
	return nil
}

func (s *MemStore) Read() (Pair, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pair == nil {
		return Pair{}, false, nil
	}
	return *s.pair, true, nil
}

func (s *MemStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pair = nil
	s.user = nil
	return nil
}

func (s *MemStore) SaveUser(u model.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.user = &u
	return nil
}

func (s *MemStore) ReadUser() (model.User, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.user == nil {
		return model.User{}, false, nil
	}
	return *s.user, true, nil
}
