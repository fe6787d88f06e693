package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	httpadapter "github.com/hydrowatch/watermap/internal/adapter/http"
	"github.com/hydrowatch/watermap/internal/domain"
	"github.com/hydrowatch/watermap/internal/export"
	"github.com/hydrowatch/watermap/internal/graph"
	"github.com/hydrowatch/watermap/internal/observability"
)

type mockReadiness struct {
	err error
}

func (m *mockReadiness) CheckReadiness(_ context.Context) error { return m.err }

type mockDocStore struct {
	mu        sync.Mutex
	markers   [][]domain.NodeRecord
	polylines [][]domain.EdgeRecord
}

func (m *mockDocStore) UploadBatch(_ context.Context, recs []domain.NodeRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.markers = append(m.markers, recs)
	return nil
}

func (m *mockDocStore) UploadPolylines(_ context.Context, recs []domain.EdgeRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.polylines = append(m.polylines, recs)
	return nil
}

type fakeGeocoder struct {
	result domain.GeocodingResult
	err    error
}

func (f *fakeGeocoder) ReverseGeocode(_ context.Context, _, _ float64) (domain.GeocodingResult, error) {
	return f.result, f.err
}

type testServer struct {
	srv    *httpadapter.Server
	nodes  *graph.NodeStore
	edges  *graph.EdgeStore
	export *export.Service
	docs   *mockDocStore
}

type serverOption func(*httpadapter.Deps)

func withReadyErr(err error) serverOption {
	return func(d *httpadapter.Deps) { d.Ready = &mockReadiness{err: err} }
}

func withGeocoder(g domain.Geocoder) serverOption {
	return func(d *httpadapter.Deps) { d.Geocoder = g }
}

func newTestServer(opts ...serverOption) *testServer {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	metrics := observability.NewMetricsForTesting()
	nodes := graph.NewNodeStore()
	edges := graph.NewEdgeStore()
	docs := &mockDocStore{}
	graphSvc := graph.NewService(nodes, edges, graph.NewPendingSelection(), nil, nil, logger, metrics)
	exportSvc := export.NewService(nodes, edges, docs, logger, metrics)

	deps := httpadapter.Deps{
		Ready:              &mockReadiness{},
		Graph:              graphSvc,
		Nodes:              nodes,
		Edges:              edges,
		Export:             exportSvc,
		Metrics:            metrics,
		ElevationThreshold: 100.0,
	}
	for _, opt := range opts {
		opt(&deps)
	}

	return &testServer{
		srv:    httpadapter.NewServer(":0", deps, logger),
		nodes:  nodes,
		edges:  edges,
		export: exportSvc,
		docs:   docs,
	}
}

func (ts *testServer) do(method, target string, body io.Reader) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(method, target, body)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	ts.srv.ServeHTTP(rec, req)
	return rec
}

func TestHealthzReturns200(t *testing.T) {
	ts := newTestServer()

	rec := ts.do(http.MethodGet, "/healthz", nil)

	assert.Equal(t, http.StatusOK, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "healthy", body["status"])
}

func TestReadyzReturns200WhenReady(t *testing.T) {
	ts := newTestServer()

	rec := ts.do(http.MethodGet, "/readyz", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestReadyzReturns503WhenNotReady(t *testing.T) {
	ts := newTestServer(withReadyErr(fmt.Errorf("not ready yet")))

	rec := ts.do(http.MethodGet, "/readyz", nil)

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "not ready", body["status"])
	assert.Equal(t, "not ready yet", body["error"])
}

func TestMetricsEndpoint(t *testing.T) {
	ts := newTestServer()

	rec := ts.do(http.MethodGet, "/metrics", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}

func TestGetMap_ReturnsSnapshot(t *testing.T) {
	ts := newTestServer()
	require.NoError(t, graph.LoadSeed(ts.nodes, ts.edges))

	rec := ts.do(http.MethodGet, "/api/map", nil)

	assert.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Markers   []domain.Node `json:"markers"`
		Polylines []domain.Edge `json:"polylines"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Len(t, body.Markers, 15)
	assert.Len(t, body.Polylines, 7)
}

func TestAddMarker_Returns201(t *testing.T) {
	ts := newTestServer()
	payload := `{"latitude":"21.07188","longitude":"79.066724","popUp":"Node34"}`

	rec := ts.do(http.MethodPost, "/api/markers", strings.NewReader(payload))

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, 1, ts.nodes.Len())

	var node domain.Node
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &node))
	assert.Equal(t, "Node34", node.Label)
	assert.Equal(t, 21.07188, node.Position.Lat)
}

func TestAddMarker_ValidationFailureReturns422(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		errMsg  string
	}{
		{name: "missing latitude", payload: `{"longitude":"79.06","popUp":"N"}`, errMsg: "latitude is required"},
		{name: "unparseable longitude", payload: `{"latitude":"21.07","longitude":"east","popUp":"N"}`, errMsg: "longitude is not a number"},
		{name: "missing label", payload: `{"latitude":"21.07","longitude":"79.06"}`, errMsg: "popUp is required"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := newTestServer()

			rec := ts.do(http.MethodPost, "/api/markers", strings.NewReader(tt.payload))

			assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
			assert.Equal(t, 0, ts.nodes.Len())

			var body map[string]string
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, tt.errMsg, body["error"])
		})
	}
}

func TestAddMarker_MalformedJSONReturns400(t *testing.T) {
	ts := newTestServer()

	rec := ts.do(http.MethodPost, "/api/markers", strings.NewReader("{not json"))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAddPolyline_Returns201(t *testing.T) {
	ts := newTestServer()
	payload := `{
		"start": {"latitude":"21.088816","longitude":"79.057325"},
		"end":   {"latitude":"21.087276","longitude":"79.05786"}
	}`

	rec := ts.do(http.MethodPost, "/api/polylines", strings.NewReader(payload))

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, 1, ts.edges.Len())
}

func TestAddPolyline_MissingEndpointReturns422(t *testing.T) {
	ts := newTestServer()
	payload := `{"start": {"latitude":"21.088816","longitude":"79.057325"}}`

	rec := ts.do(http.MethodPost, "/api/polylines", strings.NewReader(payload))

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, 0, ts.edges.Len())

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "end latitude is required", body["error"])
}

func TestSelection_RoundTrip(t *testing.T) {
	ts := newTestServer()

	rec := ts.do(http.MethodPost, "/api/selection", strings.NewReader(
		`{"latitude":21.07188,"longitude":79.066724,"role":"start"}`))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = ts.do(http.MethodGet, "/api/selection", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	var state graph.SelectionState
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &state))
	assert.Equal(t, "21.071880", state.Start.Latitude)
	assert.Equal(t, "79.066724", state.Start.Longitude)
}

func TestSelection_DefaultRoleIsStart(t *testing.T) {
	ts := newTestServer()

	rec := ts.do(http.MethodPost, "/api/selection", strings.NewReader(
		`{"latitude":21.07,"longitude":79.06}`))

	assert.Equal(t, http.StatusOK, rec.Code)

	var state graph.SelectionState
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &state))
	assert.Equal(t, "21.070000", state.Start.Latitude)
}

func TestSelection_SetLabelThenStartClickClearsIt(t *testing.T) {
	ts := newTestServer()

	rec := ts.do(http.MethodPut, "/api/selection/label", strings.NewReader(`{"label":"Node99"}`))
	assert.Equal(t, http.StatusOK, rec.Code)

	var state graph.SelectionState
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &state))
	assert.Equal(t, "Node99", state.Label)

	// A fresh map click starts a new entry and discards the typed label.
	rec = ts.do(http.MethodPost, "/api/selection", strings.NewReader(
		`{"latitude":21.07,"longitude":79.06,"role":"start"}`))
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &state))
	assert.Empty(t, state.Label)
}

func TestSelection_UnknownRoleReturns400(t *testing.T) {
	ts := newTestServer()

	rec := ts.do(http.MethodPost, "/api/selection", strings.NewReader(
		`{"latitude":21.07,"longitude":79.06,"role":"middle"}`))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestExport_Returns202AndShipsBatches(t *testing.T) {
	ts := newTestServer()
	require.NoError(t, graph.LoadSeed(ts.nodes, ts.edges))

	rec := ts.do(http.MethodPost, "/api/export", nil)
	ts.export.Flush()

	assert.Equal(t, http.StatusAccepted, rec.Code)
	require.Len(t, ts.docs.markers, 1)
	assert.Len(t, ts.docs.markers[0], 15)
	require.Len(t, ts.docs.polylines, 1)
	assert.Len(t, ts.docs.polylines[0], 7)
}

func TestZoomPolicy(t *testing.T) {
	tests := []struct {
		name       string
		target     string
		wantMode   string
		wantBucket string
		wantColor  string
	}{
		{name: "clustered small", target: "/api/zoom-policy?zoom=10&count=5", wantMode: "clustered", wantBucket: "small", wantColor: "#4caf50"},
		{name: "clustered medium", target: "/api/zoom-policy?zoom=17&count=11", wantMode: "clustered", wantBucket: "medium", wantColor: "#ffc107"},
		{name: "unclustered large", target: "/api/zoom-policy?zoom=18&count=21", wantMode: "unclustered", wantBucket: "large", wantColor: "#f44336"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := newTestServer()

			rec := ts.do(http.MethodGet, tt.target, nil)

			assert.Equal(t, http.StatusOK, rec.Code)

			var body struct {
				Mode   string `json:"mode"`
				Visual struct {
					Bucket string `json:"bucket"`
					Color  string `json:"color"`
				} `json:"visual"`
			}
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, tt.wantMode, body.Mode)
			assert.Equal(t, tt.wantBucket, body.Visual.Bucket)
			assert.Equal(t, tt.wantColor, body.Visual.Color)
		})
	}
}

func TestZoomPolicy_MissingZoomReturns400(t *testing.T) {
	ts := newTestServer()

	rec := ts.do(http.MethodGet, "/api/zoom-policy?count=5", nil)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func multipartINP(t *testing.T, filename, content string) (io.Reader, string) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	fw, err := w.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = fw.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, w.Close())
	return &buf, w.FormDataContentType()
}

const allocationNetwork = `[JUNCTIONS]
J1 50 0
J2 60 0
J3 70 0
J4 80 0
J5 90 0

[PIPES]
P1 J1 J2 10 300
P2 J2 J3 10 300
P3 J3 J4 10 300
P4 J4 J5 10 300
`

func TestSensorAllocation_Returns200(t *testing.T) {
	ts := newTestServer()
	body, contentType := multipartINP(t, "network.inp", allocationNetwork)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/sensor-allocation", body)
	req.Header.Set("Content-Type", contentType)
	ts.srv.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var result struct {
		Sensors  []string          `json:"sensor_nodes"`
		Coverage map[string]string `json:"mapping"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.Equal(t, []string{"J2", "J4"}, result.Sensors)
	assert.Equal(t, "J2", result.Coverage["J1"])
}

func TestSensorAllocation_MissingFilePartReturns400(t *testing.T) {
	ts := newTestServer()

	rec := ts.do(http.MethodPost, "/api/sensor-allocation", nil)

	assert.Equal(t, http.StatusBadRequest, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "No file part", body["error"])
}

func TestSensorAllocation_EmptyFilenameReturns400(t *testing.T) {
	ts := newTestServer()
	body, contentType := multipartINP(t, "", allocationNetwork)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/sensor-allocation", body)
	req.Header.Set("Content-Type", contentType)
	ts.srv.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)

	var respBody map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &respBody))
	assert.Equal(t, "No selected file", respBody["error"])
}

func TestGeocode_Returns200(t *testing.T) {
	ts := newTestServer(withGeocoder(&fakeGeocoder{result: domain.GeocodingResult{
		PlaceName:        "Ram Nagar",
		FormattedAddress: "Ram Nagar, Nagpur, Maharashtra, India",
		Confidence:       0.9,
	}}))

	rec := ts.do(http.MethodGet, "/api/geocode?latitude=21.07&longitude=79.06", nil)

	assert.Equal(t, http.StatusOK, rec.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "Ram Nagar", body["suggestion"])
	assert.Equal(t, "Ram Nagar, Nagpur, Maharashtra, India", body["formatted_address"])
}

func TestGeocode_DisabledReturns503(t *testing.T) {
	ts := newTestServer()

	rec := ts.do(http.MethodGet, "/api/geocode?latitude=21.07&longitude=79.06", nil)

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestGeocode_BadCoordinateReturns400(t *testing.T) {
	ts := newTestServer(withGeocoder(&fakeGeocoder{}))

	rec := ts.do(http.MethodGet, "/api/geocode?latitude=north&longitude=79.06", nil)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGeocode_ProviderErrorReturns502(t *testing.T) {
	ts := newTestServer(withGeocoder(&fakeGeocoder{err: fmt.Errorf("upstream down")}))

	rec := ts.do(http.MethodGet, "/api/geocode?latitude=21.07&longitude=79.06", nil)

	assert.Equal(t, http.StatusBadGateway, rec.Code)
}

func TestGeocode_NoPlaceFoundReturns404(t *testing.T) {
	ts := newTestServer(withGeocoder(&fakeGeocoder{}))

	rec := ts.do(http.MethodGet, "/api/geocode?latitude=21.07&longitude=79.06", nil)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}
