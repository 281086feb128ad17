package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ekats/mycelica-layout/internal/models"
)

func TestGetLayout(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/api/layout", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"positions": {"a": {"x": 1, "y": 2}},
			"clusters": [{"members": ["a"], "hub_id": "a"}],
			"mode": "generic"
		}`))
	}))
	defer ts.Close()

	c := New(ts.URL)
	result, err := c.GetLayout(context.Background())
	require.NoError(t, err)
	assert.Equal(t, models.ModeGeneric, result.Mode)
	assert.Equal(t, 1.0, result.Positions["a"].X)
	assert.Len(t, result.Clusters, 1)
}

func TestSavePosition(t *testing.T) {
	var gotPath string
	var gotBody models.Position
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		require.NoError(t, jsonDecode(r, &gotBody))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id": "n1", "saved": true}`))
	}))
	defer ts.Close()

	c := New(ts.URL)
	err := c.SavePosition(context.Background(), "n1", models.Position{X: 10, Y: 20})
	require.NoError(t, err)
	assert.Equal(t, "/api/positions/n1", gotPath)
	assert.Equal(t, 10.0, gotBody.X)
	assert.Equal(t, 20.0, gotBody.Y)
}

func TestDeletePositionNotFound(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error": "no saved position"}`))
	}))
	defer ts.Close()

	c := New(ts.URL)
	deleted, err := c.DeletePosition(context.Background(), "ghost")
	require.NoError(t, err)
	assert.False(t, deleted)
}

func TestServerErrorSurfaced(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error": "store offline"}`))
	}))
	defer ts.Close()

	c := New(ts.URL)
	_, err := c.Recompute(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "store offline")
}

func TestGetStats(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"uptime_seconds": 12.5,
			"compute": {"count": 3, "total_time_ms": 9, "avg_time_ms": 3, "min_time_ms": 1, "max_time_ms": 5},
			"last_layout": {"nodes": 7, "edges": 4, "clusters": 2, "merged_ids": 0, "boundaries": 2, "mode": "generic"}
		}`))
	}))
	defer ts.Close()

	c := New(ts.URL)
	snap, err := c.GetStats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 12.5, snap.UptimeSeconds)
	require.NotNil(t, snap.Compute)
	assert.Equal(t, int64(3), snap.Compute.Count)
	require.NotNil(t, snap.LastLayout)
	assert.Equal(t, 7, snap.LastLayout.Nodes)
}

func jsonDecode(r *http.Request, v any) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(v)
}
