package httpmirror

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trip-trio/trip-planner-api/internal/domain"
)

func TestClientCreateTrip(t *testing.T) {
	var gotPath string
	var sent domain.Trip

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		b, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(b, &sent))
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	c := NewClient(srv.URL + "/")
	trip := domain.Trip{ID: "trip-1", Name: "Summer Beach Vacation", InviteCode: "BEACH23"}

	require.NoError(t, c.CreateTrip(context.Background(), trip))
	assert.Equal(t, "/create-trip", gotPath)
	assert.Equal(t, trip.ID, sent.ID)
	assert.Equal(t, trip.InviteCode, sent.InviteCode)
}

func TestClientUpdateTrip(t *testing.T) {
	var gotPath string
	var sent domain.Trip

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		b, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(b, &sent))
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	trip := domain.Trip{ID: "trip-2", Name: "Mountain Hiking"}

	require.NoError(t, c.UpdateTrip(context.Background(), trip))
	assert.Equal(t, "/update-trip", gotPath)
	assert.Equal(t, trip.ID, sent.ID)
}

func TestClientSurfacesHTTPErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	err := c.UpdateTrip(context.Background(), domain.Trip{ID: "trip-1"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "500")
}

func TestClientSurfacesConnectionErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	c := NewClient(srv.URL)
	require.Error(t, c.CreateTrip(context.Background(), domain.Trip{ID: "trip-1"}))
}
