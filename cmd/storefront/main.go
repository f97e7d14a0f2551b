package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/fjod/go_storefront/internal/api"
	"github.com/fjod/go_storefront/internal/cart"
	"github.com/fjod/go_storefront/internal/checkout"
	"github.com/fjod/go_storefront/internal/identity"
	"github.com/fjod/go_storefront/internal/order"
	"github.com/fjod/go_storefront/internal/storage"
	"github.com/fjod/go_storefront/internal/web"
)

type Config struct {
	HTTPPort string
	StateDir string

	CatalogURL string
	OrdersURL  string

	KeycloakURL      string
	KeycloakRealm    string
	KeycloakClientID string

	// Optional: when set, state lives in redis instead of local files so
	// several storefront processes can share one profile (kiosk mode).
	RedisAddr string

	RequestTimeout  time.Duration
	ShutdownTimeout time.Duration
}

func loadConfig() *Config {
	return &Config{
		HTTPPort:         getEnv("HTTP_PORT", "8989"),
		StateDir:         getEnv("STATE_DIR", defaultStateDir()),
		CatalogURL:       getEnv("CATALOG_URL", "http://localhost:8081/api/catalog"),
		OrdersURL:        getEnv("ORDERS_URL", "http://localhost:8082/api"),
		KeycloakURL:      getEnv("KEYCLOAK_URL", "http://localhost:9191"),
		KeycloakRealm:    getEnv("KEYCLOAK_REALM", "bookstore"),
		KeycloakClientID: getEnv("KEYCLOAK_CLIENT_ID", "storefront"),
		RedisAddr:        getEnv("REDIS_ADDR", ""),
		RequestTimeout:   30 * time.Second,
		ShutdownTimeout:  10 * time.Second,
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func defaultStateDir() string {
	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, "storefront")
	}
	return ".storefront"
}

func newSlots(cfg *Config) (cartSlot, sessionSlot, returnSlot storage.Slot) {
	if cfg.RedisAddr != "" {
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		log.Printf("state backend: redis at %s", cfg.RedisAddr)
		return storage.NewRedisSlot(client, "cart"),
			storage.NewRedisSlot(client, "session"),
			storage.NewRedisSlot(client, "return_to")
	}
	log.Printf("state backend: files under %s", cfg.StateDir)
	return storage.NewFileSlot(cfg.StateDir, "cart"),
		storage.NewFileSlot(cfg.StateDir, "session"),
		storage.NewFileSlot(cfg.StateDir, "return_to")
}

func main() {
	log.Println("storefront starting...")

	cfg := loadConfig()
	cartSlot, sessionSlot, returnSlot := newSlots(cfg)

	gate := identity.NewKeycloakGate(identity.KeycloakConfig{
		BaseURL:     cfg.KeycloakURL,
		Realm:       cfg.KeycloakRealm,
		ClientID:    cfg.KeycloakClientID,
		RedirectURL: "http://localhost:" + cfg.HTTPPort + "/auth/callback",
	}, sessionSlot)

	// One bootstrap before serving: auth state is settled before any
	// checkout interaction is possible.
	bootCtx, bootCancel := context.WithTimeout(context.Background(), cfg.RequestTimeout)
	if err := gate.Bootstrap(bootCtx); err != nil {
		log.Printf("identity bootstrap degraded, continuing logged out: %v", err)
	}
	bootCancel()

	catalog := api.NewCatalogClient(api.NewClient("catalog", cfg.CatalogURL, cfg.RequestTimeout))
	ordersAPI := api.NewOrdersClient(api.NewClient("orders", cfg.OrdersURL, cfg.RequestTimeout))

	cartService := cart.NewService(cartSlot)
	orderService := order.NewService(ordersAPI, gate, cartService)
	flow := checkout.NewFlow(cartService, orderService, gate, returnSlot)

	router := web.NewRouter(web.RouterDeps{
		Cart:           web.NewCartHandler(flow, catalog, cfg.RequestTimeout),
		Products:       web.NewProductHandler(catalog, cfg.RequestTimeout),
		Orders:         web.NewOrdersHandler(orderService, cfg.RequestTimeout),
		Checkout:       web.NewCheckoutHandler(flow, cfg.RequestTimeout),
		Auth:           web.NewAuthHandler(gate, flow, cfg.RequestTimeout),
		RequestTimeout: cfg.RequestTimeout,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 35 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("storefront listening on :%s", cfg.HTTPPort)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server error: %v", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("server forced to shutdown: %v", err)
	}

	log.Println("server exited")
}
