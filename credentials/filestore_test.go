package credentials

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"apexpos/model"
)

func TestFileStore_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "creds.json")
	s := NewFileStore(path, "")

	// empty store reads as absent, not as an error
	_, ok, err := s.Read()
	require.NoError(t, err)
	require.False(t, ok)

	pair := Pair{AccessToken: "acc-1", RefreshToken: "ref-1"}
	require.NoError(t, s.Save(pair))

	got, ok, err := s.Read()
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, pair, got)

	// a second Save fully replaces the pair
	next := Pair{AccessToken: "acc-2", RefreshToken: "ref-2"}
	require.NoError(t, s.Save(next))
	got, _, _ = s.Read()
	require.Equal(t, next, got)
}

func TestFileStore_UserSurvivesPairUpdates(t *testing.T) {
	path := filepath.Join(t.TempDir(), "creds.json")
	s := NewFileStore(path, "")

	u := model.User{ID: "u1", Name: "Alex", Email: "a@b.co", Role: "manager"}
	require.NoError(t, s.SaveUser(u))
	require.NoError(t, s.Save(Pair{AccessToken: "a", RefreshToken: "r"}))

	got, ok, err := s.ReadUser()
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, u, got)

	// a fresh store over the same file sees the same state
	again := NewFileStore(path, "")
	got, ok, err = again.ReadUser()
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, u, got)
}

func TestFileStore_ClearRemovesEverything(t *testing.T) {
	path := filepath.Join(t.TempDir(), "creds.json")
	s := NewFileStore(path, "")
	require.NoError(t, s.Save(Pair{AccessToken: "a", RefreshToken: "r"}))
	require.NoError(t, s.SaveUser(model.User{ID: "u1"}))

	require.NoError(t, s.Clear())

	_, ok, err := s.Read()
	require.NoError(t, err)
	require.False(t, ok)
	_, ok, err = s.ReadUser()
	require.NoError(t, err)
	require.False(t, ok)

	// clearing an already-clear store is fine
	require.NoError(t, s.Clear())
}

func TestFileStore_NoTempFilesLeftBehind(t *testing.T) {
	dir := t.TempDir()
	s := NewFileStore(filepath.Join(dir, "creds.json"), "")
	require.NoError(t, s.Save(Pair{AccessToken: "a", RefreshToken: "r"}))
	require.NoError(t, s.Save(Pair{AccessToken: "b", RefreshToken: "r"}))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1, "writes go through a temp file that must be renamed away")
}

func TestFileStore_Encrypted(t *testing.T) {
	path := filepath.Join(t.TempDir(), "creds.bin")
	s := NewFileStore(path, "correct horse battery staple")

	pair := Pair{AccessToken: "acc-1", RefreshToken: "ref-1"}
	require.NoError(t, s.Save(pair))

	// the file on disk is not plaintext JSON
	blob, err := os.ReadFile(path)
	require.NoError(t, err)
	require.NotContains(t, string(blob), "acc-1")

	got, ok, err := s.Read()
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, pair, got)

	// a wrong passphrase is a corrupt-store error, not silent absence
	wrong := NewFileStore(path, "wrong passphrase")
	_, _, err = wrong.Read()
	require.ErrorIs(t, err, ErrCorrupt)
}

func TestMemStore(t *testing.T) {
	s := NewMemStore()
	_, ok, err := s.Read()
	require.NoError(t, err)
	require.False(t, ok)

	require.NoError(t, s.Save(Pair{AccessToken: "a", RefreshToken: "r"}))
	require.NoError(t, s.SaveUser(model.User{ID: "u1"}))
	require.NoError(t, s.Clear())

	_, ok, _ = s.Read()
	require.False(t, ok)
	_, ok, _ = s.ReadUser()
	require.False(t, ok)
}
