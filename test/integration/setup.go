package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"pizza-maniac/internal/auth"
	"pizza-maniac/internal/database/dbtest"
	"pizza-maniac/internal/handler"
	"pizza-maniac/internal/idempotency"
	"pizza-maniac/internal/model"
	"pizza-maniac/internal/repository"
	"pizza-maniac/internal/router"
	"pizza-maniac/internal/service"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

// recordingPublisher captures published order events.
type recordingPublisher struct {
	mu     sync.Mutex
	events []string
}

func (p *recordingPublisher) Publish(_ context.Context, eventType string, _ *model.Order) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, eventType)
	return nil
}

func (p *recordingPublisher) Close() error { return nil }

func (p *recordingPublisher) Types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.events...)
}

// TestApp is the full HTTP stack over a disposable database.
type TestApp struct {
	DB      *dbtest.TestDB
	Handler http.Handler
	Events  *recordingPublisher
	Redis   *miniredis.Miniredis
}

// SetupApp wires repositories, services and the router the way the API
// server does, with Redis served by miniredis.
func SetupApp(t *testing.T) *TestApp {
	t.Helper()

	db := dbtest.Setup(t)
	logger := zerolog.Nop()

	prev := decimal.MarshalJSONWithoutQuotes
	decimal.MarshalJSONWithoutQuotes = true
	t.Cleanup(func() { decimal.MarshalJSONWithoutQuotes = prev })

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	txs := repository.NewTxBeginner(db.Pool, logger)
	productRepo := repository.NewProductRepository(db.Pool, logger)
	cartRepo := repository.NewCartRepository(db.Pool, logger)
	orderRepo := repository.NewOrderRepository(db.Pool, logger)
	userRepo := repository.NewUserRepository(db.Pool, logger)

	publisher := &recordingPublisher{}
	tokens := auth.NewTokenIssuer("integration-secret", time.Hour)
	hasher := auth.NewPasswordHasher(bcrypt.MinCost)

	h := router.New(router.Handlers{
		Auth:      handler.NewAuthHandler(service.NewAuthService(userRepo, hasher, tokens, logger), logger),
		Product:   handler.NewProductHandler(service.NewProductService(productRepo, logger), logger),
		Cart:      handler.NewCartHandler(service.NewCartService(txs, cartRepo, productRepo, logger), logger),
		Order:     handler.NewOrderHandler(service.NewOrderService(txs, cartRepo, productRepo, orderRepo, publisher, logger), logger),
		Dashboard: handler.NewDashboardHandler(service.NewDashboardService(orderRepo, logger), logger),
	}, tokens, idempotency.NewStore(rdb, time.Minute), "pizza-maniac-integration", logger)

	return &TestApp{DB: db, Handler: h, Events: publisher, Redis: mr}
}

// Do sends a request with an optional bearer token and JSON body.
func (a *TestApp) Do(t *testing.T, method, path, token string, body any, headers ...string) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}

	w := httptest.NewRecorder()
	a.Handler.ServeHTTP(w, req)
	return w
}

// Register creates an account and returns its token and summary.
func (a *TestApp) Register(t *testing.T, name string, role model.Role) (string, model.UserSummary) {
	t.Helper()

	w := a.Do(t, http.MethodPost, "/api/auth/register", "", map[string]any{
		"name":     name,
		"email":    fmt.Sprintf("%s@example.com", name),
		"password": "secret1",
		"role":     role,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var resp model.AuthResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	return resp.Token, resp.User
}

// CreateProduct adds a product through the admin API.
func (a *TestApp) CreateProduct(t *testing.T, adminToken string, category model.Category, name string, price float64, stock int) model.Product {
	t.Helper()

	w := a.Do(t, http.MethodPost, "/api/products", adminToken, map[string]any{
		"category": category,
		"name":     name,
		"price":    price,
		"stock":    stock,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var p model.Product
	require.NoError(t, json.NewDecoder(w.Body).Decode(&p))
	return p
}

// Decode reads a JSON response body into v.
func Decode(t *testing.T, w *httptest.ResponseRecorder, v any) {
	t.Helper()
	require.NoError(t, json.NewDecoder(w.Body).Decode(v))
}
