package identity

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

type memorySlot struct {
	m    sync.Mutex
	data []byte
}

func (s *memorySlot) Load(_ context.Context, dst any) (bool, error) {
	s.m.Lock()
	defer s.m.Unlock()
	if s.data == nil {
		return false, nil
	}
	if err := json.Unmarshal(s.data, dst); err != nil {
		return false, nil
	}
	return true, nil
}

func (s *memorySlot) Save(_ context.Context, v any) error {
	s.m.Lock()
	defer s.m.Unlock()
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	s.data = data
	return nil
}

func (s *memorySlot) Clear(context.Context) error {
	s.m.Lock()
	defer s.m.Unlock()
	s.data = nil
	return nil
}

func (s *memorySlot) empty() bool {
	s.m.Lock()
	defer s.m.Unlock()
	return s.data == nil
}

// fakeRealm serves the token endpoint of a Keycloak realm.
func fakeRealm(t *testing.T, tokenStatus int, accessToken string) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/realms/bookstore/protocol/openid-connect/token", func(w http.ResponseWriter, r *http.Request) {
		if tokenStatus != http.StatusOK {
			http.Error(w, `{"error":"invalid_grant"}`, tokenStatus)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"access_token":  accessToken,
			"token_type":    "Bearer",
			"refresh_token": "refresh-next",
			"expires_in":    300,
		})
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func newTestGate(t *testing.T, realmURL string, slot *memorySlot) *KeycloakGate {
	t.Helper()
	return NewKeycloakGate(KeycloakConfig{
		BaseURL:     realmURL,
		Realm:       "bookstore",
		ClientID:    "bookstore-webapp-id",
		RedirectURL: "http://localhost:8989/auth/callback",
	}, slot)
}

func TestBootstrap_NoPersistedSession(t *testing.T) {
	srv := fakeRealm(t, http.StatusOK, "unused")
	gate := newTestGate(t, srv.URL, &memorySlot{})

	require.NoError(t, gate.Bootstrap(context.Background()))
	assert.False(t, gate.IsLoggedIn())
}

func TestBootstrap_RestoresValidSession(t *testing.T) {
	srv := fakeRealm(t, http.StatusOK, "unused")
	slot := &memorySlot{}
	require.NoError(t, slot.Save(context.Background(), &oauth2.Token{
		AccessToken:  "still-good",
		RefreshToken: "refresh-1",
		Expiry:       time.Now().Add(time.Hour),
	}))
	gate := newTestGate(t, srv.URL, slot)

	require.NoError(t, gate.Bootstrap(context.Background()))
	assert.True(t, gate.IsLoggedIn())

	token, err := gate.Token(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "still-good", token)
}

func TestBootstrap_RefreshesExpiredSession(t *testing.T) {
	srv := fakeRealm(t, http.StatusOK, "refreshed-access")
	slot := &memorySlot{}
	require.NoError(t, slot.Save(context.Background(), &oauth2.Token{
		AccessToken:  "stale",
		RefreshToken: "refresh-1",
		Expiry:       time.Now().Add(-time.Hour),
	}))
	gate := newTestGate(t, srv.URL, slot)

	require.NoError(t, gate.Bootstrap(context.Background()))
	assert.True(t, gate.IsLoggedIn())

	token, err := gate.Token(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "refreshed-access", token)

	// The refreshed token was persisted for the next start.
	var persisted oauth2.Token
	found, err := slot.Load(context.Background(), &persisted)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "refreshed-access", persisted.AccessToken)
}

func TestBootstrap_UnrefreshableSessionStartsLoggedOut(t *testing.T) {
	srv := fakeRealm(t, http.StatusBadRequest, "")
	slot := &memorySlot{}
	require.NoError(t, slot.Save(context.Background(), &oauth2.Token{
		AccessToken:  "stale",
		RefreshToken: "revoked",
		Expiry:       time.Now().Add(-time.Hour),
	}))
	gate := newTestGate(t, srv.URL, slot)

	require.NoError(t, gate.Bootstrap(context.Background()))
	assert.False(t, gate.IsLoggedIn())
	assert.True(t, slot.empty(), "stale session should be cleared")
}

func TestToken_NotAuthenticated(t *testing.T) {
	srv := fakeRealm(t, http.StatusOK, "unused")
	gate := newTestGate(t, srv.URL, &memorySlot{})

	_, err := gate.Token(context.Background())
	assert.ErrorIs(t, err, ErrNotAuthenticated)
}

func TestLoginURL_CarriesRedirectTarget(t *testing.T) {
	srv := fakeRealm(t, http.StatusOK, "unused")
	gate := newTestGate(t, srv.URL, &memorySlot{})

	raw := gate.LoginURL("/cart")
	u, err := url.Parse(raw)
	require.NoError(t, err)

	q := u.Query()
	assert.Equal(t, "bookstore-webapp-id", q.Get("client_id"))
	assert.Equal(t, "http://localhost:8989/auth/callback", q.Get("redirect_uri"))
	assert.Equal(t, "code", q.Get("response_type"))
	assert.Equal(t, url.QueryEscape("/cart"), q.Get("state"))
	assert.Contains(t, q.Get("scope"), "openid")
}

func TestExchange_LogsInAndReturnsTarget(t *testing.T) {
	srv := fakeRealm(t, http.StatusOK, "exchanged-access")
	slot := &memorySlot{}
	gate := newTestGate(t, srv.URL, slot)

	loginURL := gate.LoginURL("/cart")
	u, err := url.Parse(loginURL)
	require.NoError(t, err)
	state := u.Query().Get("state")

	target, err := gate.Exchange(context.Background(), "auth-code", state)
	require.NoError(t, err)
	assert.Equal(t, "/cart", target)
	assert.True(t, gate.IsLoggedIn())
	assert.False(t, slot.empty(), "session should be persisted")
}

func TestExchange_StateMismatch(t *testing.T) {
	srv := fakeRealm(t, http.StatusOK, "unused")
	gate := newTestGate(t, srv.URL, &memorySlot{})
	gate.LoginURL("/cart")

	_, err := gate.Exchange(context.Background(), "auth-code", "forged")
	require.ErrorContains(t, err, "state mismatch")
	assert.False(t, gate.IsLoggedIn())
}

func TestLogout_ClearsSession(t *testing.T) {
	srv := fakeRealm(t, http.StatusOK, "exchanged-access")
	slot := &memorySlot{}
	gate := newTestGate(t, srv.URL, slot)

	loginURL := gate.LoginURL("/")
	u, err := url.Parse(loginURL)
	require.NoError(t, err)
	_, err = gate.Exchange(context.Background(), "auth-code", u.Query().Get("state"))
	require.NoError(t, err)
	require.True(t, gate.IsLoggedIn())

	require.NoError(t, gate.Logout(context.Background()))
	assert.False(t, gate.IsLoggedIn())
	assert.True(t, slot.empty())
}
