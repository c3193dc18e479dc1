package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"

	"apexpos/credentials"
	"apexpos/model"
)

func authEndpoint(t *testing.T, hits *int32) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(hits, 1)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"data": map[string]any{
				"user":         model.User{ID: "u1", Name: "Alex Sales", Email: "alex@apex.test", Role: "manager"},
				"accessToken":  "acc-1",
				"refreshToken": "ref-1",
			},
		})
	}))
}

func TestLogin_PersistsSession(t *testing.T) {
	var hits int32
	ts := authEndpoint(t, &hits)
	defer ts.Close()

	store := credentials.NewMemStore()
	c := New(ts.URL, store)

	u, err := c.Login(context.Background(), "  Alex@Apex.Test ", "secret-password")
	require.NoError(t, err)
	require.Equal(t, "u1", u.ID)

	pair, ok, err := store.Read()
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, credentials.Pair{AccessToken: "acc-1", RefreshToken: "ref-1"}, pair)

	stored, ok, err := store.ReadUser()
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, u, stored)
}

func TestLogin_ValidatesBeforeNetwork(t *testing.T) {
	var hits int32
	ts := authEndpoint(t, &hits)
	defer ts.Close()
	c := New(ts.URL, credentials.NewMemStore())

	cases := []struct {
		name            string
		email, password string
		field           string
	}{
		{"missing email", "", "longenough", "email"},
		{"bad email", "not-an-email", "longenough", "email"},
		{"missing password", "a@b.co", "", "password"},
		{"short password", "a@b.co", "short", "password"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := c.Login(context.Background(), tc.email, tc.password)
			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			require.Equal(t, tc.field, verr.Field)
		})
	}
	require.EqualValues(t, 0, atomic.LoadInt32(&hits), "validation failures never hit the network")
}

func TestRegister_RequiresName(t *testing.T) {
	var hits int32
	ts := authEndpoint(t, &hits)
	defer ts.Close()
	c := New(ts.URL, credentials.NewMemStore())

	_, err := c.Register(context.Background(), "  ", "a@b.co", "longenough")
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	require.Equal(t, "name", verr.Field)
	require.EqualValues(t, 0, atomic.LoadInt32(&hits))
}

func TestLogin_RemoteRejection(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_ = json.NewEncoder(w).Encode(map[string]string{"message": "invalid credentials"})
	}))
	defer ts.Close()

	store := credentials.NewMemStore()
	c := New(ts.URL, store)
	_, err := c.Login(context.Background(), "a@b.co", "wrong-password")

	var rerr *RemoteError
	require.ErrorAs(t, err, &rerr)
	require.Equal(t, http.StatusUnauthorized, rerr.Status)

	_, ok, _ := store.Read()
	require.False(t, ok, "nothing persisted on rejected login")
}

func TestLogout_ClearsStore(t *testing.T) {
	store := credentials.NewMemStore()
	require.NoError(t, store.Save(credentials.Pair{AccessToken: "a", RefreshToken: "r"}))
	require.NoError(t, store.SaveUser(model.User{ID: "u1"}))

	c := New("http://unused", store)
	require.NoError(t, c.Logout())

	_, ok, _ := store.Read()
	require.False(t, ok)
	_, ok, _ = store.ReadUser()
	require.False(t, ok)
}
