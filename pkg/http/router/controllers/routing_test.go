package controllers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	da "github.com/lintang-b-s/routegraph/pkg/datastructure"
	"github.com/lintang-b-s/routegraph/pkg/engine"
	helper "github.com/lintang-b-s/routegraph/pkg/http/router/routerhelper"
	"github.com/lintang-b-s/routegraph/pkg/http/usecases"
	"github.com/julienschmidt/httprouter"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const meterInDegree = 1.0 / 111194.9

// diamond on the equator. direct corridor 0 -> 1 -> 3 is 300m, the detour
// 0 -> 2 -> 3 is about 500m.
func buildAPIGraph(t *testing.T) *da.Graph {
	t.Helper()
	g := da.NewGraph()

	nodes := []struct {
		id       da.Index
		lat, lon float64
	}{
		{0, 0, 0},
		{1, 150 * meterInDegree, 0},
		{2, 150 * meterInDegree, 200 * meterInDegree},
		{3, 300 * meterInDegree, 0},
	}
	for _, n := range nodes {
		_, err := g.AddNode(n.id, n.lat, n.lon)
		require.NoError(t, err)
	}

	edges := []struct {
		id, start, end da.Index
	}{
		{10, 0, 1},
		{11, 1, 3},
		{12, 0, 2},
		{13, 2, 3},
	}
	for _, e := range edges {
		_, err := g.AddEdge(e.id, e.start, e.end, da.NewEdgeCost(0, true))
		require.NoError(t, err)
	}
	return g
}

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	viper.Reset()
	t.Cleanup(viper.Reset)

	eng, err := engine.NewEngineFromGraph(buildAPIGraph(t), zap.NewNop())
	require.NoError(t, err)

	router := httprouter.New()
	group := helper.NewRouteGroup(router, "/api")

	api := New(
		usecases.NewRoutingService(zap.NewNop(), eng),
		usecases.NewControlService(zap.NewNop(), eng),
		zap.NewNop(),
	)
	api.Routes(group)

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return srv
}

type routeBody struct {
	Data struct {
		Cost    float64  `json:"cost"`
		NodeIds []uint32 `json:"node_ids"`
		EdgeIds []uint32 `json:"edge_ids"`
		Path    string   `json:"path"`
	} `json:"data"`
}

func getRoute(t *testing.T, srv *httptest.Server, query string) (int, routeBody) {
	t.Helper()
	resp, err := http.Get(srv.URL + "/api/route?" + query)
	require.NoError(t, err)
	defer resp.Body.Close()

	var body routeBody
	if resp.StatusCode == http.StatusOK {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	}
	return resp.StatusCode, body
}

func TestRouteHandlerByID(t *testing.T) {
	srv := newTestServer(t)

	status, body := getRoute(t, srv, "start_id=0&goal_id=3")
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, []uint32{10, 11}, body.Data.EdgeIds)
	assert.Equal(t, []uint32{0, 1, 3}, body.Data.NodeIds)
	assert.Greater(t, body.Data.Cost, 0.0)
	assert.NotEmpty(t, body.Data.Path)
}

func TestRouteHandlerByPose(t *testing.T) {
	srv := newTestServer(t)

	query := fmt.Sprintf("start_lat=%f&start_lon=%f&goal_lat=%f&goal_lon=%f",
		0.0, 0.0, 300*meterInDegree, 0.0)
	status, body := getRoute(t, srv, query)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, []uint32{10, 11}, body.Data.EdgeIds)
}

func TestRouteHandlerBlockedIds(t *testing.T) {
	srv := newTestServer(t)

	status, body := getRoute(t, srv, "start_id=0&goal_id=3&blocked_ids=10")
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, []uint32{12, 13}, body.Data.EdgeIds)
}

func TestRouteHandlerErrors(t *testing.T) {
	srv := newTestServer(t)

	testCases := []struct {
		name   string
		query  string
		status int
	}{
		{"malformed start_id", "start_id=abc&goal_id=3", http.StatusBadRequest},
		{"unknown goal node", "start_id=0&goal_id=99", http.StatusBadRequest},
		{"no route", "start_id=3&goal_id=0", http.StatusNotFound},
		{"missing pose params", "goal_lat=0.001", http.StatusBadRequest},
		{"latitude out of range", "start_lat=91&start_lon=0&goal_lat=0&goal_lon=0", http.StatusBadRequest},
		{"malformed blocked list", "start_id=0&goal_id=3&blocked_ids=10;11", http.StatusBadRequest},
	}

	for _, tt := range testCases {
		t.Run(tt.name, func(t *testing.T) {
			status, _ := getRoute(t, srv, tt.query)
			assert.Equal(t, tt.status, status)
		})
	}
}

func postJSON(t *testing.T, srv *httptest.Server, path string, payload any) *http.Response {
	t.Helper()
	js, err := json.Marshal(payload)
	require.NoError(t, err)

	resp, err := http.Post(srv.URL+path, "application/json", bytes.NewReader(js))
	require.NoError(t, err)
	return resp
}

func TestAdjustEdgesHandler(t *testing.T) {
	srv := newTestServer(t)

	// closing the first corridor edge diverts traffic onto the detour
	resp := postJSON(t, srv, "/api/edges/adjust", map[string]any{
		"closed_edges": []uint32{10},
	})
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var ack struct {
		Data struct {
			Success bool `json:"success"`
		} `json:"data"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&ack))
	assert.True(t, ack.Data.Success)

	status, body := getRoute(t, srv, "start_id=0&goal_id=3")
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, []uint32{12, 13}, body.Data.EdgeIds)

	// reopening restores the corridor
	resp = postJSON(t, srv, "/api/edges/adjust", map[string]any{
		"opened_edges": []uint32{10},
	})
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	status, body = getRoute(t, srv, "start_id=0&goal_id=3")
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, []uint32{10, 11}, body.Data.EdgeIds)
}

func TestAdjustEdgesHandlerRejectsBadBody(t *testing.T) {
	srv := newTestServer(t)

	resp, err := http.Post(srv.URL+"/api/edges/adjust", "application/json",
		bytes.NewReader([]byte("{not json")))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestStatusHandler(t *testing.T) {
	srv := newTestServer(t)

	resp := postJSON(t, srv, "/api/edges/adjust", map[string]any{
		"penalties": []map[string]any{{"edge_id": 10, "penalty": 2.5}},
	})
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	statusResp, err := http.Get(srv.URL + "/api/status")
	require.NoError(t, err)
	defer statusResp.Body.Close()
	require.Equal(t, http.StatusOK, statusResp.StatusCode)

	var body struct {
		Data struct {
			GraphNodes     int    `json:"graph_nodes"`
			GraphEdges     int    `json:"graph_edges"`
			Generation     uint64 `json:"generation"`
			CostmapUpdates uint64 `json:"costmap_updates"`
			ClosedEdges    int    `json:"closed_edges"`
			PenalizedEdges int    `json:"penalized_edges"`
		} `json:"data"`
	}
	require.NoError(t, json.NewDecoder(statusResp.Body).Decode(&body))
	assert.Equal(t, 4, body.Data.GraphNodes)
	assert.Equal(t, 4, body.Data.GraphEdges)
	assert.Equal(t, uint64(1), body.Data.Generation)
	assert.Equal(t, uint64(0), body.Data.CostmapUpdates)
	assert.Equal(t, 0, body.Data.ClosedEdges)
	assert.Equal(t, 1, body.Data.PenalizedEdges)
}

func TestParseIndexList(t *testing.T) {
	ids, err := parseIndexList("10, 11,12")
	require.NoError(t, err)
	assert.Equal(t, []da.Index{10, 11, 12}, ids)

	ids, err = parseIndexList("")
	require.NoError(t, err)
	assert.Nil(t, ids)

	_, err = parseIndexList("10,x")
	assert.Error(t, err)
}
