package order

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/fjod/go_storefront/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockOrdersAPI struct {
	m           sync.Mutex
	createCalls int
	gotToken    string
	gotKeys     []string
	conf        *domain.OrderConfirmation
	summaries   []domain.OrderSummary
	details     *domain.OrderDetails
	err         error
}

func (m *mockOrdersAPI) Create(_ context.Context, token string, _ *domain.OrderRequest, key string) (*domain.OrderConfirmation, error) {
	m.m.Lock()
	defer m.m.Unlock()
	m.createCalls++
	m.gotToken = token
	m.gotKeys = append(m.gotKeys, key)
	if m.err != nil {
		return nil, m.err
	}
	return m.conf, nil
}

func (m *mockOrdersAPI) List(_ context.Context, token string) ([]domain.OrderSummary, error) {
	m.m.Lock()
	defer m.m.Unlock()
	m.gotToken = token
	if m.err != nil {
		return nil, m.err
	}
	return m.summaries, nil
}

func (m *mockOrdersAPI) Get(_ context.Context, token, _ string) (*domain.OrderDetails, error) {
	m.m.Lock()
	defer m.m.Unlock()
	m.gotToken = token
	if m.err != nil {
		return nil, m.err
	}
	return m.details, nil
}

type mockGate struct {
	loggedIn bool
	token    string
	tokenErr error
}

func (g *mockGate) IsLoggedIn() bool { return g.loggedIn }

func (g *mockGate) Token(context.Context) (string, error) {
	if g.tokenErr != nil {
		return "", g.tokenErr
	}
	return g.token, nil
}

func (g *mockGate) LoginURL(string) string { return "http://idp/login" }

func (g *mockGate) Logout(context.Context) error { return nil }

type mockCart struct {
	m       sync.Mutex
	cleared bool
	err     error
}

func (c *mockCart) Clear(context.Context) (*domain.Cart, error) {
	c.m.Lock()
	defer c.m.Unlock()
	if c.err != nil {
		return nil, c.err
	}
	c.cleared = true
	return domain.EmptyCart(), nil
}

func oneItemRequest() *domain.OrderRequest {
	return &domain.OrderRequest{
		Customer: domain.Customer{Name: "sample name", Email: "test@gmail.com", Phone: "0123456789"},
		DeliveryAddress: domain.Address{
			AddressLine1: "Long Bien", City: "HCMC", State: "Thu Duc", ZipCode: "01234", Country: "VN",
		},
		Items: []domain.OrderItem{{Code: "B1", Name: "The Go Programming Language", Price: 10, Quantity: 2}},
	}
}

func TestPlaceOrder_EmptyCart(t *testing.T) {
	api := &mockOrdersAPI{}
	cart := &mockCart{}
	sut := NewService(api, &mockGate{loggedIn: true, token: "tok"}, cart)

	_, err := sut.PlaceOrder(context.Background(), &domain.OrderRequest{})
	require.ErrorIs(t, err, ErrEmptyCart)
	assert.Zero(t, api.createCalls, "validation must fail before any network call")
	assert.False(t, cart.cleared)
}

func TestPlaceOrder_AuthRequiredBeforeNetwork(t *testing.T) {
	api := &mockOrdersAPI{}
	cart := &mockCart{}
	sut := NewService(api, &mockGate{loggedIn: false}, cart)

	_, err := sut.PlaceOrder(context.Background(), oneItemRequest())
	require.ErrorIs(t, err, ErrAuthRequired)
	assert.Zero(t, api.createCalls, "auth gate must come before any network call")
	assert.False(t, cart.cleared, "cart must survive an abandoned login")
}

func TestPlaceOrder_TokenFailureIsAuthRequired(t *testing.T) {
	api := &mockOrdersAPI{}
	sut := NewService(api, &mockGate{loggedIn: true, tokenErr: fmt.Errorf("refresh expired")}, &mockCart{})

	_, err := sut.PlaceOrder(context.Background(), oneItemRequest())
	require.ErrorIs(t, err, ErrAuthRequired)
	assert.Zero(t, api.createCalls)
}

func TestPlaceOrder_SuccessClearsCart(t *testing.T) {
	api := &mockOrdersAPI{conf: &domain.OrderConfirmation{OrderNumber: "ORD-42"}}
	cart := &mockCart{}
	sut := NewService(api, &mockGate{loggedIn: true, token: "tok-1"}, cart)

	orderNumber, err := sut.PlaceOrder(context.Background(), oneItemRequest())
	require.NoError(t, err)
	assert.Equal(t, "ORD-42", orderNumber)
	assert.Equal(t, 1, api.createCalls)
	assert.Equal(t, "tok-1", api.gotToken)
	assert.True(t, cart.cleared, "confirmed order is the one path that clears the cart")
}

func TestPlaceOrder_FreshIdempotencyKeyPerAttempt(t *testing.T) {
	api := &mockOrdersAPI{conf: &domain.OrderConfirmation{OrderNumber: "ORD-1"}}
	sut := NewService(api, &mockGate{loggedIn: true, token: "tok"}, &mockCart{})

	_, err := sut.PlaceOrder(context.Background(), oneItemRequest())
	require.NoError(t, err)
	_, err = sut.PlaceOrder(context.Background(), oneItemRequest())
	require.NoError(t, err)

	require.Len(t, api.gotKeys, 2)
	assert.NotEmpty(t, api.gotKeys[0])
	assert.NotEqual(t, api.gotKeys[0], api.gotKeys[1])
}

func TestPlaceOrder_FailureLeavesCartUntouched(t *testing.T) {
	api := &mockOrdersAPI{err: fmt.Errorf("out of stock")}
	cart := &mockCart{}
	sut := NewService(api, &mockGate{loggedIn: true, token: "tok"}, cart)

	_, err := sut.PlaceOrder(context.Background(), oneItemRequest())
	require.ErrorContains(t, err, "out of stock")
	assert.Equal(t, 1, api.createCalls, "no automatic retry")
	assert.False(t, cart.cleared, "a failed submission must not discard the cart")
}

func TestPlaceOrder_ClearFailureDoesNotMaskSuccess(t *testing.T) {
	api := &mockOrdersAPI{conf: &domain.OrderConfirmation{OrderNumber: "ORD-7"}}
	cart := &mockCart{err: fmt.Errorf("disk full")}
	sut := NewService(api, &mockGate{loggedIn: true, token: "tok"}, cart)

	orderNumber, err := sut.PlaceOrder(context.Background(), oneItemRequest())
	require.NoError(t, err)
	assert.Equal(t, "ORD-7", orderNumber)
}

func TestListOrders_RequiresLogin(t *testing.T) {
	sut := NewService(&mockOrdersAPI{}, &mockGate{loggedIn: false}, &mockCart{})

	_, err := sut.ListOrders(context.Background())
	require.ErrorIs(t, err, ErrAuthRequired)
}

func TestListOrders_Success(t *testing.T) {
	api := &mockOrdersAPI{summaries: []domain.OrderSummary{
		{OrderNumber: "ORD-1", Status: domain.OrderStatusNew},
		{OrderNumber: "ORD-2", Status: domain.OrderStatusDelivered},
	}}
	sut := NewService(api, &mockGate{loggedIn: true, token: "tok"}, &mockCart{})

	orders, err := sut.ListOrders(context.Background())
	require.NoError(t, err)
	require.Len(t, orders, 2)
	assert.Equal(t, domain.OrderStatusNew, orders[0].Status)
	assert.Equal(t, "tok", api.gotToken)
}

func TestGetOrder_AttachesTokenWhenLoggedIn(t *testing.T) {
	api := &mockOrdersAPI{details: &domain.OrderDetails{OrderNumber: "ORD-42"}}
	sut := NewService(api, &mockGate{loggedIn: true, token: "tok"}, &mockCart{})

	details, err := sut.GetOrder(context.Background(), "ORD-42")
	require.NoError(t, err)
	assert.Equal(t, "ORD-42", details.OrderNumber)
	assert.Equal(t, "tok", api.gotToken)
}

func TestGetOrder_AnonymousGoesWithoutToken(t *testing.T) {
	api := &mockOrdersAPI{details: &domain.OrderDetails{OrderNumber: "ORD-42"}}
	sut := NewService(api, &mockGate{loggedIn: false}, &mockCart{})

	_, err := sut.GetOrder(context.Background(), "ORD-42")
	require.NoError(t, err)
	assert.Empty(t, api.gotToken)
}
