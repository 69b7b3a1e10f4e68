package backend

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestClient(t *testing.T, handler http.Handler) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL, 2*time.Second, zap.NewNop()), srv
}

func TestClient_ListServices(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/api/v1/services", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[
			{"id":"svc-1","name":"payment-service","type":"http","port":8080,"status":"healthy"},
			{"id":"svc-2","name":"user-service","type":"http","port":8081,"status":"unhealthy"}
		]`))
	}))

	services, err := c.ListServices(context.Background())
	require.NoError(t, err)
	require.Len(t, services, 2)
	assert.Equal(t, "payment-service", services[0].Name)
	assert.Equal(t, 8081, services[1].Port)
	assert.Equal(t, "unhealthy", services[1].Status)
}

func TestClient_ListActiveIncidents_PassesActiveFlag(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/incidents", r.URL.Path)
		assert.Equal(t, "true", r.URL.Query().Get("active"))
		w.Write([]byte(`[{"id":"inc-1","service_name":"payment-service","severity":0.7,"status":"open"}]`))
	}))

	incidents, err := c.ListActiveIncidents(context.Background())
	require.NoError(t, err)
	require.Len(t, incidents, 1)
	assert.InDelta(t, 0.7, incidents[0].Severity, 1e-9)
}

func TestClient_EmptyBodyYieldsEmptySlices(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`null`))
	}))

	services, err := c.ListServices(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, services)
	assert.Empty(t, services)
}

func TestClient_AgentStatus(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/ai/status", r.URL.Path)
		w.Write([]byte(`{"status":"active","model":"all-MiniLM-L6-v2","patterns_loaded":12}`))
	}))

	st, err := c.AgentStatus(context.Background())
	require.NoError(t, err)
	assert.True(t, st.Active())
	assert.Equal(t, 12, st.PatternsLoaded)
}

func TestClient_Read_Non2xxIsProtocolError(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))

	_, err := c.ListServices(context.Background())
	var perr *ProtocolError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, http.StatusInternalServerError, perr.StatusCode)
}

func TestClient_Read_MalformedBodyIsProtocolError(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"not":"a list"`))
	}))

	_, err := c.ListServices(context.Background())
	var perr *ProtocolError
	require.ErrorAs(t, err, &perr)
	assert.Zero(t, perr.StatusCode)
}

func TestClient_Read_UnreachableIsNetworkError(t *testing.T) {
	c := NewClient("http://127.0.0.1:1", 200*time.Millisecond, zap.NewNop())

	_, err := c.ListServices(context.Background())
	var nerr *NetworkError
	require.ErrorAs(t, err, &nerr)
}

func TestClient_RestartService(t *testing.T) {
	var gotPath string
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		assert.Equal(t, http.MethodPost, r.Method)
		w.WriteHeader(http.StatusNoContent)
	}))

	require.NoError(t, c.RestartService(context.Background(), "svc-1"))
	assert.Equal(t, "/api/v1/services/svc-1/restart", gotPath)
}

func TestClient_RestartService_Non2xxIsActionRejected(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "not found", http.StatusNotFound)
	}))

	err := c.RestartService(context.Background(), "ghost")
	var rej *ActionRejected
	require.ErrorAs(t, err, &rej)
	assert.Equal(t, http.StatusNotFound, rej.StatusCode)
}

func TestClient_SimulateIncident(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/simulate/incident", r.URL.Path)
		w.Write([]byte(`{"success":true,"message":"Simulated incident created"}`))
	}))

	require.NoError(t, c.SimulateIncident(context.Background()))
}
