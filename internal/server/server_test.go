package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vendormap/internal/config"
	"vendormap/internal/engine"
	"vendormap/internal/engine/store"
	"vendormap/internal/ingest"
)

func testServer(t *testing.T) *Server {
	t.Helper()
	cfg := config.Default()

	orders := []ingest.Row{
		{"vendor_code": "V001", "vendor_name": "Cafe Naderi", "total_order_count": "1250"},
		{"vendor_code": "V002", "vendor_name": "Dizi House", "total_order_count": "890"},
	}
	geo := []ingest.Row{
		{"vendor_code": "V001", "latitude": "35.7000", "longitude": "51.4000"},
		{"vendor_code": "V002", "latitude": "35.7050", "longitude": "51.4050"},
	}
	s, _ := store.Build(orders, geo, nil, cfg.CityBounds)
	return New(engine.New(s, cfg, nil), cfg, nil)
}

func doJSON(t *testing.T, router http.Handler, method, path string, body any) (*httptest.ResponseRecorder, map[string]json.RawMessage) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	var fields map[string]json.RawMessage
	if w.Body.Len() > 0 && strings.HasPrefix(w.Header().Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &fields))
	}
	return w, fields
}

func TestHealth(t *testing.T) {
	router := testServer(t).Router()
	w, fields := doJSON(t, router, http.MethodGet, "/api/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `"ok"`, string(fields["status"]))
	assert.JSONEq(t, `2`, string(fields["vendors"]))
}

func TestVendorsListsEverything(t *testing.T) {
	router := testServer(t).Router()
	w, fields := doJSON(t, router, http.MethodGet, "/api/vendors", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `2`, string(fields["total"]))
}

func TestFilterVendors(t *testing.T) {
	router := testServer(t).Router()

	w, fields := doJSON(t, router, http.MethodPost, "/api/filter_vendors", map[string]any{
		"hidden_vendors": []string{"V002", "V999"},
	})
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `true`, string(fields["success"]))
	assert.JSONEq(t, `["V999"]`, string(fields["unknown_codes"]))

	var stats struct {
		ActiveVendors int `json:"active_vendors"`
		HiddenVendors int `json:"hidden_vendors"`
	}
	require.NoError(t, json.Unmarshal(fields["statistics"], &stats))
	assert.Equal(t, 1, stats.ActiveVendors)
	assert.Equal(t, 1, stats.HiddenVendors)

	// Hiding one endpoint of the only pair leaves nobody overlapping.
	assert.JSONEq(t, `[]`, string(fields["overlapping_vendors"]))
}

func TestFilterVendorsBadBody(t *testing.T) {
	router := testServer(t).Router()
	req := httptest.NewRequest(http.MethodPost, "/api/filter_vendors", strings.NewReader("not json"))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRankings(t *testing.T) {
	router := testServer(t).Router()

	w, fields := doJSON(t, router, http.MethodGet, "/api/rankings/Total%20Orders", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var rankings []struct {
		Rank  int     `json:"rank"`
		Code  string  `json:"vendor_code"`
		Value float64 `json:"value"`
	}
	require.NoError(t, json.Unmarshal(fields["rankings"], &rankings))
	require.Len(t, rankings, 2)
	assert.Equal(t, "V001", rankings[0].Code)
	assert.Equal(t, 1250.0, rankings[0].Value)
}

func TestRankingsInvalidCriterion(t *testing.T) {
	router := testServer(t).Router()
	w, fields := doJSON(t, router, http.MethodGet, "/api/rankings/Bogus", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, string(fields["error"]), "Bogus")
}

func TestStatistics(t *testing.T) {
	router := testServer(t).Router()
	w, fields := doJSON(t, router, http.MethodGet, "/api/statistics", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `2`, string(fields["total_vendors"]))
}

func TestViewInvalidCriterion(t *testing.T) {
	router := testServer(t).Router()
	w, _ := doJSON(t, router, http.MethodGet, "/api/view?criterion=Bogus", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestExportCSV(t *testing.T) {
	router := testServer(t).Router()
	req := httptest.NewRequest(http.MethodGet, "/api/export/csv", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/csv", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "attachment")
	assert.True(t, strings.HasPrefix(w.Body.String(), "vendor_code,"))
}

func TestExportUnsupportedFormat(t *testing.T) {
	router := testServer(t).Router()
	w, _ := doJSON(t, router, http.MethodGet, "/api/export/xlsx", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestWebsocketReceivesSnapshotOnFilter(t *testing.T) {
	srv := testServer(t)
	ts := httptest.NewServer(srv.Router())
	defer ts.Close()

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer conn.Close()

	// The initial snapshot arrives right after connecting.
	var initial struct {
		Criterion string `json:"criterion"`
	}
	require.NoError(t, conn.ReadJSON(&initial))
	assert.Equal(t, "Total Orders", initial.Criterion)

	// A filter change pushes a fresh snapshot.
	body, _ := json.Marshal(map[string]any{"hidden_vendors": []string{"V001"}})
	resp, err := http.Post(ts.URL+"/api/filter_vendors", "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	resp.Body.Close()

	var pushed struct {
		Hidden []string `json:"hidden"`
	}
	require.NoError(t, conn.ReadJSON(&pushed))
	assert.Equal(t, []string{"V001"}, pushed.Hidden)
}
