package lookup

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"admissions-intake/internal/common/logger"
)

// ==========================
// Test Helpers
// ==========================

func newTestClient(t *testing.T, handler http.Handler) *Client {
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	return NewClient(ClientOptions{
		BaseURL: server.URL,
		Timeout: 2 * time.Second,
		Logger:  logger.NewTestLogger(t),
	})
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

// ==========================
// Category Fetches
// ==========================

func TestClient_GetZones(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/zones", r.URL.Path)
		writeJSON(w, []map[string]interface{}{
			{"zoneId": 1, "zoneName": "North"},
			{"zoneId": 2, "zoneName": "South"},
		})
	}))

	items, err := client.GetZones(context.Background())
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "North", items[0]["zoneName"])
}

func TestClient_GetCampusesByZone_PassesUpstreamKey(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/campuses", r.URL.Path)
		assert.Equal(t, "42", r.URL.Query().Get("zoneId"))
		writeJSON(w, []map[string]interface{}{
			{"id": 10, "name": "Hyderabad Central"},
		})
	}))

	items, err := client.GetCampusesByZone(context.Background(), "42")
	require.NoError(t, err)
	require.Len(t, items, 1)
}

func TestClient_EmptyResultsAreNotErrors(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{"empty array", func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, []map[string]interface{}{})
		}},
		{"no content", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNoContent)
		}},
		{"not found", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, tt.handler)
			items, err := client.GetStatuses(context.Background())
			require.NoError(t, err)
			assert.Empty(t, items)
		})
	}
}

func TestClient_ServerErrorIsReported(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))

	_, err := client.GetQuotas(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 500")
}

func TestClient_SingleObjectResponseWrapped(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]interface{}{"gender_id": 1, "gender_name": "Female"})
	}))

	items, err := client.GetGenders(context.Background())
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "Female", items[0]["gender_name"])
}

// ==========================
// Application Details
// ==========================

func TestClient_GetApplicationDetails(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/application-status/details/1023", r.URL.Path)
		writeJSON(w, map[string]interface{}{
			"zoneName":   "North",
			"campusName": "Unknown",
			"proName":    "J. Rao",
			"dgmEmpName": "",
			"status":     "left",
			"reason":     "torn cover",
		})
	}))

	detail, err := client.GetApplicationDetails(context.Background(), "1023")
	require.NoError(t, err)
	assert.Equal(t, "1023", detail.ApplicationNo)
	assert.Equal(t, "North", detail.ZoneName)
	assert.Equal(t, "left", detail.Status)
	assert.Empty(t, detail.DgmEmpName)
}

func TestClient_GetApplicationDetails_NotFound(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))

	_, err := client.GetApplicationDetails(context.Background(), "9999")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}
