package httpapi_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/trip-trio/trip-planner-api/internal/adapters/httpapi"
	memidempotency "github.com/trip-trio/trip-planner-api/internal/adapters/memory/idempotency"
	memlocalstore "github.com/trip-trio/trip-planner-api/internal/adapters/memory/localstore"
	memtripregistry "github.com/trip-trio/trip-planner-api/internal/adapters/memory/tripregistry"
	"github.com/trip-trio/trip-planner-api/internal/app/auth"
	"github.com/trip-trio/trip-planner-api/internal/app/trips"
	"github.com/trip-trio/trip-planner-api/internal/domain"
)

type tickingClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *tickingClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(time.Millisecond)
	return c.now
}

type harness struct {
	handler http.Handler
	trips   *trips.Service
	auth    *auth.Service
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	store := memlocalstore.NewStore()
	clk := &tickingClock{now: time.Unix(1700000000, 0).UTC()}

	authSvc := auth.NewService(store, clk, auth.Options{
		SessionSecret: "test-secret",
		SessionTTL:    time.Hour,
	})
	tripsSvc := trips.NewService(store, nil, clk, nil)
	require.NoError(t, tripsSvc.Load(context.Background()))

	srv := httpapi.NewServer(tripsSvc, authSvc, memtripregistry.NewRegistry(), memidempotency.NewStore(), clk, zap.NewNop())
	return &harness{
		handler: httpapi.NewRouter(srv, zap.NewNop(), nil),
		trips:   tripsSvc,
		auth:    authSvc,
	}
}

// do issues a request against the router, optionally with a bearer token and
// a JSON body, and decodes the response into out when it is non-nil.
func (h *harness) do(t *testing.T, method, path, token string, body, out any) *httptest.ResponseRecorder {
	t.Helper()

	var rd *bytes.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		rd = bytes.NewReader(b)
	} else {
		rd = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, rd)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	h.handler.ServeHTTP(rec, req)

	if out != nil {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), out), "body: %s", rec.Body.String())
	}
	return rec
}

func (h *harness) login(t *testing.T, email string) (domain.User, string) {
	t.Helper()

	var resp struct {
		User  domain.User `json:"user"`
		Token string      `json:"token"`
	}
	rec := h.do(t, http.MethodPost, "/auth/login", "", map[string]string{
		"email":    email,
		"password": "hunter22",
	}, &resp)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	require.NotEmpty(t, resp.Token)
	return resp.User, resp.Token
}
