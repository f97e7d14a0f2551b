package identity

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/url"
	"sync"

	"github.com/fjod/go_storefront/internal/storage"
	"golang.org/x/oauth2"
)

type KeycloakConfig struct {
	BaseURL     string // e.g. http://localhost:9191
	Realm       string // e.g. bookstore
	ClientID    string // e.g. bookstore-webapp-id
	RedirectURL string // this process's /auth/callback
}

// KeycloakGate implements Gate against a Keycloak realm with the standard
// authorization-code flow. The token is persisted through a storage slot so
// a restart can restore the session before anything else runs.
type KeycloakGate struct {
	oauth oauth2.Config
	slot  storage.Slot

	mu    sync.RWMutex
	token *oauth2.Token
	state string
}

func NewKeycloakGate(cfg KeycloakConfig, slot storage.Slot) *KeycloakGate {
	realm := fmt.Sprintf("%s/realms/%s/protocol/openid-connect", cfg.BaseURL, cfg.Realm)
	return &KeycloakGate{
		oauth: oauth2.Config{
			ClientID:    cfg.ClientID,
			RedirectURL: cfg.RedirectURL,
			Scopes:      []string{"openid", "profile", "email"},
			Endpoint: oauth2.Endpoint{
				AuthURL:  realm + "/auth",
				TokenURL: realm + "/token",
			},
		},
		slot: slot,
	}
}

// Bootstrap restores the persisted token and refreshes it once, so the
// process starts in a deterministic logged-in or logged-out state before any
// checkout interaction is possible.
func (g *KeycloakGate) Bootstrap(ctx context.Context) error {
	var saved oauth2.Token
	found, err := g.slot.Load(ctx, &saved)
	if err != nil {
		return fmt.Errorf("load persisted session: %w", err)
	}
	if !found {
		log.Println("identity: no persisted session, starting logged out")
		return nil
	}

	fresh, err := g.oauth.TokenSource(ctx, &saved).Token()
	if err != nil {
		// Refresh token expired or revoked: start logged out, the stale
		// session is cleared so the next start skips the round trip.
		log.Printf("identity: persisted session not refreshable, starting logged out: %v", err)
		if clearErr := g.slot.Clear(ctx); clearErr != nil {
			log.Printf("identity: clear stale session: %v", clearErr)
		}
		return nil
	}

	g.setToken(ctx, fresh)
	log.Println("identity: restored session, starting logged in")
	return nil
}

func (g *KeycloakGate) IsLoggedIn() bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.token != nil && (g.token.Valid() || g.token.RefreshToken != "")
}

// Token returns a live access token, refreshing through the provider when
// the cached one has expired.
func (g *KeycloakGate) Token(ctx context.Context) (string, error) {
	g.mu.RLock()
	current := g.token
	g.mu.RUnlock()

	if current == nil {
		return "", ErrNotAuthenticated
	}

	fresh, err := g.oauth.TokenSource(ctx, current).Token()
	if err != nil {
		return "", fmt.Errorf("refresh token: %w", errors.Join(ErrNotAuthenticated, err))
	}
	if fresh.AccessToken != current.AccessToken {
		g.setToken(ctx, fresh)
	}
	return fresh.AccessToken, nil
}

// LoginURL builds the provider's authorization URL. The redirect target is
// carried in the OAuth state parameter and handed back to Exchange.
func (g *KeycloakGate) LoginURL(redirectTarget string) string {
	state := url.QueryEscape(redirectTarget)
	g.mu.Lock()
	g.state = state
	g.mu.Unlock()
	return g.oauth.AuthCodeURL(state)
}

// Exchange trades the authorization code for a token and persists it. It
// returns the redirect target encoded in the state parameter.
func (g *KeycloakGate) Exchange(ctx context.Context, code, state string) (string, error) {
	g.mu.RLock()
	expected := g.state
	g.mu.RUnlock()
	if expected == "" || state != expected {
		return "", fmt.Errorf("auth callback state mismatch")
	}

	token, err := g.oauth.Exchange(ctx, code)
	if err != nil {
		return "", fmt.Errorf("exchange authorization code: %w", err)
	}

	g.setToken(ctx, token)
	target, err := url.QueryUnescape(state)
	if err != nil {
		target = "/"
	}
	return target, nil
}

func (g *KeycloakGate) Logout(ctx context.Context) error {
	g.mu.Lock()
	g.token = nil
	g.state = ""
	g.mu.Unlock()
	if err := g.slot.Clear(ctx); err != nil {
		return fmt.Errorf("clear persisted session: %w", err)
	}
	return nil
}

func (g *KeycloakGate) setToken(ctx context.Context, token *oauth2.Token) {
	g.mu.Lock()
	g.token = token
	g.mu.Unlock()
	if err := g.slot.Save(ctx, token); err != nil {
		log.Printf("identity: persist session: %v", err)
	}
}
