package credentials

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sync"

	"apexpos/model"
)

// fileState is the on-disk layout. Pair and User live in one file so a
// rename swaps both at once.
type fileState struct {
	Pair *Pair       `json:"pair,omitempty"`
	User *model.User `json:"user,omitempty"`
}

// FileStore keeps credentials in a single JSON file. Writes go to a temp
// file in the same directory followed by a rename, so a crash mid-write
// leaves the previous state intact. With a passphrase set, the file is
// sealed with AES-GCM under a scrypt-derived key.
type FileStore struct {
	mu         sync.Mutex
	path       string
	passphrase string
}

// NewFileStore returns a store backed by path. passphrase may be empty,
// in which case the file is plain JSON.
func NewFileStore(path, passphrase string) *FileStore {
	return &FileStore{path: path, passphrase: passphrase}
}

func (s *FileStore) Save(p Pair) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, err := s.load()
	if err != nil {
		return err
	}
	st.Pair = &p
	return s.write(st)
}

func (s *FileStore) Read() (Pair, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, err := s.load()
	if err != nil {
		return Pair{}, false, err
	}
	if st.Pair == nil {
		return Pair{}, false, nil
	}
	return *st.Pair, true, nil
}

// Clear removes the whole file: token pair and stored identity together.
func (s *FileStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

func (s *FileStore) SaveUser(u model.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, err := s.load()
	if err != nil {
		return err
	}
	st.User = &u
	return s.write(st)
}

func (s *FileStore) ReadUser() (model.User, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, err := s.load()
	if err != nil {
		return model.User{}, false, err
	}
	if st.User == nil {
		return model.User{}, false, nil
	}
	return *st.User, true, nil
}

func (s *FileStore) load() (fileState, error) {
	var st fileState
	blob, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return st, nil
	}
	if err != nil {
		return st, err
	}
	if s.passphrase != "" {
		blob, err = unseal(s.passphrase, blob)
		if err != nil {
			return st, err
		}
	}
	if err := json.Unmarshal(blob, &st); err != nil {
		return fileState{}, ErrCorrupt
	}
	return st, nil
}

func (s *FileStore) write(st fileState) error {
	blob, err := json.Marshal(st)
	if err != nil {
		return err
	}
	if s.passphrase != "" {
		blob, err = seal(s.passphrase, blob)
		if err != nil {
			return err
		}
	}
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, ".creds-*")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(blob); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	if err := os.Chmod(tmp.Name(), 0o600); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), s.path)
}
