package httpapi_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trip-trio/trip-planner-api/internal/domain"
)

// doWithKey is do() plus an Idempotency-Key header.
func (h *harness) doWithKey(t *testing.T, method, path, token, key string, body, out any) *httptest.ResponseRecorder {
	t.Helper()

	b, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(method, path, bytes.NewReader(b))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Idempotency-Key", key)
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

func TestCreateTrip_RetryWithSameKeyReplays(t *testing.T) {
	h := newHarness(t)
	_, token := h.login(t, "ann@example.com")

	body := map[string]string{"name": "Ski Trip"}

	var first domain.Trip
	rec := h.doWithKey(t, http.MethodPost, "/trips", token, "retry-1", body, &first)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var second domain.Trip
	rec = h.doWithKey(t, http.MethodPost, "/trips", token, "retry-1", body, &second)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, first.InviteCode, second.InviteCode)

	// Only one trip exists after the retry.
	var list struct {
		Data []domain.Trip `json:"data"`
	}
	rec = h.do(t, http.MethodGet, "/trips", token, nil, &list)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, list.Data, 1)
}

func TestCreateTrip_KeyReuseWithDifferentPayload(t *testing.T) {
	h := newHarness(t)
	_, token := h.login(t, "ann@example.com")

	rec := h.doWithKey(t, http.MethodPost, "/trips", token, "k-1", map[string]string{"name": "Ski Trip"}, nil)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var errResp struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	rec = h.doWithKey(t, http.MethodPost, "/trips", token, "k-1", map[string]string{"name": "Beach Trip"}, &errResp)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "IDEMPOTENCY_KEY_REUSE", errResp.Error.Code)
}

func TestCreateTrip_NoKeyAllowsDuplicates(t *testing.T) {
	h := newHarness(t)
	_, token := h.login(t, "ann@example.com")

	body := map[string]string{"name": "Ski Trip"}
	rec := h.do(t, http.MethodPost, "/trips", token, body, nil)
	require.Equal(t, http.StatusCreated, rec.Code)
	rec = h.do(t, http.MethodPost, "/trips", token, body, nil)
	require.Equal(t, http.StatusCreated, rec.Code)

	var list struct {
		Data []domain.Trip `json:"data"`
	}
	rec = h.do(t, http.MethodGet, "/trips", token, nil, &list)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, list.Data, 2)
}

func TestIdempotencyKey_ScopedPerUser(t *testing.T) {
	h := newHarness(t)
	_, annToken := h.login(t, "ann@example.com")
	_, bobToken := h.login(t, "bob@example.com")

	body := map[string]string{"name": "Ski Trip"}

	var annTrip, bobTrip domain.Trip
	rec := h.doWithKey(t, http.MethodPost, "/trips", annToken, "shared-key", body, &annTrip)
	require.Equal(t, http.StatusCreated, rec.Code)
	rec = h.doWithKey(t, http.MethodPost, "/trips", bobToken, "shared-key", body, &bobTrip)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.NotEqual(t, annTrip.ID, bobTrip.ID)
}

func TestAddPackingItem_RetryWithSameKeyReplays(t *testing.T) {
	h := newHarness(t)
	_, token := h.login(t, "ann@example.com")

	var trip domain.Trip
	rec := h.do(t, http.MethodPost, "/trips", token, map[string]string{"name": "Ski Trip"}, &trip)
	require.Equal(t, http.StatusCreated, rec.Code)

	path := "/trips/" + string(trip.ID) + "/packing-items"
	body := map[string]any{"name": "Sunscreen", "category": "essentials"}

	var after domain.Trip
	rec = h.doWithKey(t, http.MethodPost, path, token, "item-1", body, &after)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	require.Len(t, after.PackingList, 1)

	rec = h.doWithKey(t, http.MethodPost, path, token, "item-1", body, &after)
	require.Equal(t, http.StatusCreated, rec.Code)

	got, err := h.trips.GetTrip(context.Background(), trip.ID)
	require.NoError(t, err)
	assert.Len(t, got.PackingList, 1)
}
