package auth

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"testing"

	"lacsverts/internal/api"
	"lacsverts/internal/api/apitest"
	"lacsverts/internal/session"
	"lacsverts/internal/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newGateway(t *testing.T, backend *apitest.Backend, store session.Store) *Gateway {
	t.Helper()
	client, err := api.New(backend.URL())
	require.NoError(t, err)
	t.Cleanup(client.Close)
	return NewGateway("https://auth.example.org", client, store)
}

func TestLoginURL(t *testing.T) {
	g := NewGateway("https://auth.example.org", nil, session.NewMemoryStore())

	got, err := g.LoginURL("http://127.0.0.1:51123/profile?state=abc")
	require.NoError(t, err)

	u, err := url.Parse(got)
	require.NoError(t, err)
	assert.Equal(t, "auth.example.org", u.Host)
	assert.Equal(t, "/", u.Path)
	assert.Equal(t, "http://127.0.0.1:51123/profile?state=abc", u.Query().Get("redirect"))
	assert.Contains(t, got, "redirect=http%3A%2F%2F127.0.0.1%3A51123%2Fprofile")
}

func TestParseFragment(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr error
	}{
		{"http://localhost:3000/profile#session_id=xyz", "xyz", nil},
		{"#session_id=xyz", "xyz", nil},
		{"session_id=xyz&other=1", "xyz", nil},
		{"http://localhost:3000/profile#session_id=a%2Bb", "a+b", nil},
		{"http://localhost:3000/profile", "", ErrNoSessionID},
		{"#other=1", "", ErrNoSessionID},
		{"#session_id=", "", ErrNoSessionID},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseFragment(tt.in)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCompleteURL_CommitsSession(t *testing.T) {
	backend := apitest.NewBackend(t)
	backend.AddSession("xyz", types.Profile{ID: "u1", Name: "Awa"})
	store := session.NewMemoryStore()
	g := newGateway(t, backend, store)

	profile, err := g.CompleteURL(context.Background(), "http://localhost/profile#session_id=xyz")
	require.NoError(t, err)
	assert.Equal(t, "Awa", profile.Name)

	require.Equal(t, 1, backend.Count(http.MethodPost, "/api/auth/profile"))
	assert.Equal(t, "xyz", backend.Requests()[0].SessionID)

	token, ok, err := store.Load()
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "xyz", token)
}

func TestComplete_FailureCommitsNothing(t *testing.T) {
	backend := apitest.NewBackend(t)
	store := session.NewMemoryStore()
	g := newGateway(t, backend, store)

	_, err := g.Complete(context.Background(), "forged")
	require.Error(t, err)
	assert.True(t, errors.Is(err, api.ErrUnauthorized))
	assert.Equal(t, 1, backend.Count(http.MethodPost, "/api/auth/profile"), "no retry")

	_, ok, err := store.Load()
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestComplete_EmptyIDSendsNothing(t *testing.T) {
	backend := apitest.NewBackend(t)
	g := newGateway(t, backend, session.NewMemoryStore())

	_, err := g.Complete(context.Background(), " ")
	assert.ErrorIs(t, err, ErrNoSessionID)
	assert.Empty(t, backend.Requests())
}

func TestLogout(t *testing.T) {
	store := session.NewMemoryStore()
	require.NoError(t, store.Save("tok"))

	g := NewGateway("https://auth.example.org", nil, store)
	require.NoError(t, g.Logout())

	_, ok, err := store.Load()
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestLogin_EndToEnd(t *testing.T) {
	backend := apitest.NewBackend(t)
	backend.AddSession("xyz", types.Profile{ID: "u1", Name: "Awa"})
	store := session.NewMemoryStore()
	g := newGateway(t, backend, store)

	srv := NewCallbackServer("127.0.0.1:0")
	httpClient := &http.Client{Transport: &http.Transport{DisableKeepAlives: true}}

	// Plays the identity provider and the relay page: follow the redirect
	// parameter and deliver the fragment to the completion route.
	provider := func(loginURL string) error {
		u, err := url.Parse(loginURL)
		if err != nil {
			return err
		}
		callback, err := url.Parse(u.Query().Get("redirect"))
		if err != nil {
			return err
		}
		complete := completionURL(callback, "xyz")
		resp, err := httpClient.Get(complete)
		if err != nil {
			return err
		}
		return resp.Body.Close()
	}

	profile, err := g.Login(context.Background(), srv, provider)
	require.NoError(t, err)
	assert.Equal(t, "u1", profile.ID)

	token, ok, err := store.Load()
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "xyz", token)
}

func completionURL(callback *url.URL, sessionID string) string {
	u := *callback
	u.Path = "/profile/complete"
	q := u.Query()
	q.Set("session_id", sessionID)
	u.RawQuery = q.Encode()
	return u.String()
}
