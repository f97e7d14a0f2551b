package identity

import (
	"context"
	"errors"
)

// ErrNotAuthenticated is returned when a bearer token is requested while no
// usable session exists.
var ErrNotAuthenticated = errors.New("not authenticated")

// Gate is the consumed surface of the external identity provider. The
// cart/order core only ever asks these four questions; token acquisition and
// refresh stay the provider's business.
type Gate interface {
	IsLoggedIn() bool
	Token(ctx context.Context) (string, error)
	LoginURL(redirectTarget string) string
	Logout(ctx context.Context) error
}
