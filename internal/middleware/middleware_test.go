package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"pizza-maniac/internal/idempotency"
	"pizza-maniac/internal/model"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCORS(t *testing.T) {
	tests := []struct {
		name           string
		method         string
		expectedStatus int
		expectHandler  bool
	}{
		{
			name:           "Preflight request",
			method:         http.MethodOptions,
			expectedStatus: http.StatusNoContent,
			expectHandler:  false,
		},
		{
			name:           "GET request",
			method:         http.MethodGet,
			expectedStatus: http.StatusOK,
			expectHandler:  true,
		},
		{
			name:           "POST request",
			method:         http.MethodPost,
			expectedStatus: http.StatusOK,
			expectHandler:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handlerCalled := false
			testHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				handlerCalled = true
				w.WriteHeader(http.StatusOK)
			})

			handler := CORS(testHandler)

			req := httptest.NewRequest(tt.method, "/test", nil)
			w := httptest.NewRecorder()

			handler.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.Equal(t, tt.expectHandler, handlerCalled)
			assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
			assert.Equal(t, "GET, POST, PUT, DELETE, OPTIONS", w.Header().Get("Access-Control-Allow-Methods"))
			assert.Equal(t, "Content-Type, Authorization, Idempotency-Key", w.Header().Get("Access-Control-Allow-Headers"))
		})
	}
}

func TestLogging(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf)

	handler := Logging(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
		_, _ = w.Write([]byte("short and stout"))
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/products", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "GET", entry["method"])
	assert.Equal(t, "/api/products", entry["path"])
	assert.Equal(t, float64(http.StatusTeapot), entry["status"])
	assert.Equal(t, float64(len("short and stout")), entry["bytes"])
	assert.Equal(t, "warn", entry["level"])
}

func TestRecovery_AbortHandlerPropagates(t *testing.T) {
	handler := Recovery(zerolog.Nop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic(http.ErrAbortHandler)
	}))

	assert.PanicsWithValue(t, http.ErrAbortHandler, func() {
		handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/test", nil))
	})
}

func TestRecovery(t *testing.T) {
	logger := zerolog.Nop()

	panicHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("test panic")
	})

	handler := Recovery(logger)(panicHandler)

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

	var resp model.ErrorResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.Equal(t, model.ErrCodeInternalError, resp.Error)
}

type stubParser struct {
	principal model.Principal
	err       error
	got       string
}

func (s *stubParser) Parse(token string) (model.Principal, error) {
	s.got = token
	return s.principal, s.err
}

func TestAuthenticate(t *testing.T) {
	logger := zerolog.Nop()
	principal := model.Principal{UserID: uuid.New(), Role: model.RoleUser}

	tests := []struct {
		name           string
		header         string
		parseErr       error
		expectedStatus int
		expectHandler  bool
	}{
		{name: "Valid token", header: "Bearer good", expectedStatus: http.StatusOK, expectHandler: true},
		{name: "Missing header", header: "", expectedStatus: http.StatusUnauthorized},
		{name: "Wrong scheme", header: "Basic abc", expectedStatus: http.StatusUnauthorized},
		{name: "Empty token", header: "Bearer ", expectedStatus: http.StatusUnauthorized},
		{name: "Rejected token", header: "Bearer bad", parseErr: model.ErrUnauthenticated, expectedStatus: http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			parser := &stubParser{principal: principal, err: tt.parseErr}
			var seen model.Principal
			handlerCalled := false
			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				handlerCalled = true
				seen, _ = PrincipalFromContext(r.Context())
				w.WriteHeader(http.StatusOK)
			})

			req := httptest.NewRequest(http.MethodGet, "/api/cart", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()

			Authenticate(parser, logger)(next).ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.Equal(t, tt.expectHandler, handlerCalled)
			if tt.expectHandler {
				assert.Equal(t, "good", parser.got)
				assert.Equal(t, principal, seen)
			} else {
				var resp model.ErrorResponse
				require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
				assert.Equal(t, model.ErrCodeUnauthorised, resp.Error)
			}
		})
	}
}

func TestAuthorize(t *testing.T) {
	logger := zerolog.Nop()

	tests := []struct {
		name           string
		principal      *model.Principal
		roles          []model.Role
		expectedStatus int
	}{
		{name: "Allowed role", principal: &model.Principal{UserID: uuid.New(), Role: model.RoleAdmin}, roles: []model.Role{model.RoleAdmin}, expectedStatus: http.StatusOK},
		{name: "One of several", principal: &model.Principal{UserID: uuid.New(), Role: model.RoleUser}, roles: []model.Role{model.RoleUser, model.RoleAdmin}, expectedStatus: http.StatusOK},
		{name: "Wrong role", principal: &model.Principal{UserID: uuid.New(), Role: model.RoleUser}, roles: []model.Role{model.RoleAdmin}, expectedStatus: http.StatusForbidden},
		{name: "Admin on user route", principal: &model.Principal{UserID: uuid.New(), Role: model.RoleAdmin}, roles: []model.Role{model.RoleUser}, expectedStatus: http.StatusForbidden},
		{name: "No principal", principal: nil, roles: []model.Role{model.RoleUser}, expectedStatus: http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusOK)
			})

			req := httptest.NewRequest(http.MethodGet, "/api/dashboard/stats", nil)
			if tt.principal != nil {
				req = req.WithContext(WithPrincipal(req.Context(), *tt.principal))
			}
			w := httptest.NewRecorder()

			Authorize(logger, tt.roles...)(next).ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
		})
	}
}

type failingStore struct{}

func (failingStore) Key(userID uuid.UUID, key string) string { return key }
func (failingStore) Claim(context.Context, string) (bool, error) {
	return false, errors.New("connection refused")
}
func (failingStore) Release(context.Context, string) error { return nil }

func TestIdempotency(t *testing.T) {
	logger := zerolog.Nop()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	store := idempotency.NewStore(rdb, time.Minute)

	principal := model.Principal{UserID: uuid.New(), Role: model.RoleUser}
	status := http.StatusCreated
	calls := 0
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(status)
	})
	handler := Idempotency(store, logger)(next)

	do := func(key string, p *model.Principal) int {
		req := httptest.NewRequest(http.MethodPost, "/api/orders", nil)
		if key != "" {
			req.Header.Set(IdempotencyHeader, key)
		}
		if p != nil {
			req = req.WithContext(WithPrincipal(req.Context(), *p))
		}
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)
		return w.Code
	}

	t.Run("Duplicate key rejected", func(t *testing.T) {
		calls = 0
		assert.Equal(t, http.StatusCreated, do("k1", &principal))
		assert.Equal(t, http.StatusConflict, do("k1", &principal))
		assert.Equal(t, 1, calls)
		assert.True(t, mr.Exists(store.Key(principal.UserID, "k1")))
	})

	t.Run("Keys are per user", func(t *testing.T) {
		calls = 0
		other := model.Principal{UserID: uuid.New(), Role: model.RoleUser}
		assert.Equal(t, http.StatusCreated, do("k1", &other))
		assert.Equal(t, 1, calls)
	})

	t.Run("Failed attempt releases key", func(t *testing.T) {
		calls = 0
		status = http.StatusBadRequest
		assert.Equal(t, http.StatusBadRequest, do("k2", &principal))
		assert.False(t, mr.Exists(store.Key(principal.UserID, "k2")))

		status = http.StatusCreated
		assert.Equal(t, http.StatusCreated, do("k2", &principal))
		assert.Equal(t, 2, calls)
	})

	t.Run("No header passes through", func(t *testing.T) {
		calls = 0
		assert.Equal(t, http.StatusCreated, do("", &principal))
		assert.Equal(t, http.StatusCreated, do("", &principal))
		assert.Equal(t, 2, calls)
	})

	t.Run("Store failure serves request", func(t *testing.T) {
		calls = 0
		h := Idempotency(failingStore{}, logger)(next)
		req := httptest.NewRequest(http.MethodPost, "/api/orders", nil)
		req.Header.Set(IdempotencyHeader, "k3")
		req = req.WithContext(WithPrincipal(req.Context(), principal))
		w := httptest.NewRecorder()
		h.ServeHTTP(w, req)
		assert.Equal(t, http.StatusCreated, w.Code)
		assert.Equal(t, 1, calls)
	})
}
