package controllers

import (
	"encoding/base64"
	"encoding/json"
	"net"
	"sync"
	"testing"
	"time"

	"github.com/gobwas/ws/wsutil"
	"github.com/lintang-b-s/routegraph/pkg/costmap"
	da "github.com/lintang-b-s/routegraph/pkg/datastructure"
	"github.com/lintang-b-s/routegraph/pkg/engine/routing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubControlService struct {
	mu      sync.Mutex
	applied []*costmap.OccupancyGrid
}

func (s *stubControlService) AdjustEdges(closedEdges, openedEdges []da.Index,
	penalties []routing.EdgePenalty) error {
	return nil
}

func (s *stubControlService) ApplyCostmap(grid *costmap.OccupancyGrid) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.applied = append(s.applied, grid)
}

func (s *stubControlService) Status() routing.EngineStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	return routing.EngineStatus{CostmapUpdates: uint64(len(s.applied))}
}

func (s *stubControlService) appliedGrids() []*costmap.OccupancyGrid {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]*costmap.OccupancyGrid(nil), s.applied...)
}

// sendFrame pushes one feed frame through the client half of the pipe and
// returns the decoded acknowledgement.
func sendFrame(t *testing.T, client net.Conn, user *User, frame map[string]any) []byte {
	t.Helper()

	serveErr := make(chan error, 1)
	go func() { serveErr <- user.ReceiveCostmap() }()

	js, err := json.Marshal(frame)
	require.NoError(t, err)
	require.NoError(t, wsutil.WriteClientText(client, js))

	ack, err := wsutil.ReadServerText(client)
	require.NoError(t, err)
	require.NoError(t, <-serveErr)
	return ack
}

func TestHubReceiveCostmap(t *testing.T) {
	control := &stubControlService{}
	hub := NewHub(nil, control)

	client, server := net.Pipe()
	defer client.Close()

	user := hub.Register(server)

	ack := sendFrame(t, client, user, map[string]any{
		"resolution": 0.5,
		"width":      2,
		"height":     2,
		"origin_lat": 0.0,
		"origin_lon": 0.0,
		"stamp_ms":   time.Now().UnixMilli(),
		"data":       base64.StdEncoding.EncodeToString([]byte{0, 50, 100, 253}),
	})

	var resp struct {
		Data struct {
			Applied bool `json:"applied"`
			Cells   int  `json:"cells"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(ack, &resp))
	assert.True(t, resp.Data.Applied)
	assert.Equal(t, 4, resp.Data.Cells)

	grids := control.appliedGrids()
	require.Len(t, grids, 1)
	assert.Equal(t, 2, grids[0].GetWidth())
	assert.Equal(t, 2, grids[0].GetHeight())
	assert.InDelta(t, 0.5, grids[0].GetResolution(), 1e-9)
	assert.Equal(t, 253.0, grids[0].GetCost(1, 1))
}

func TestHubRejectsInvalidFrame(t *testing.T) {
	control := &stubControlService{}
	hub := NewHub(nil, control)

	client, server := net.Pipe()
	defer client.Close()

	user := hub.Register(server)

	testCases := []struct {
		name  string
		frame map[string]any
	}{
		{
			name: "missing dimensions",
			frame: map[string]any{
				"resolution": 0.5,
				"data":       base64.StdEncoding.EncodeToString([]byte{0}),
			},
		},
		{
			name: "data is not base64",
			frame: map[string]any{
				"resolution": 0.5,
				"width":      1,
				"height":     1,
				"data":       "!!!",
			},
		},
		{
			name: "cell count mismatch",
			frame: map[string]any{
				"resolution": 0.5,
				"width":      3,
				"height":     3,
				"data":       base64.StdEncoding.EncodeToString([]byte{0, 1}),
			},
		},
	}

	for _, tt := range testCases {
		t.Run(tt.name, func(t *testing.T) {
			ack := sendFrame(t, client, user, tt.frame)

			var resp struct {
				Error map[string]string `json:"error"`
			}
			require.NoError(t, json.Unmarshal(ack, &resp))
			assert.Equal(t, "Bad Request", resp.Error["code"])
		})
	}

	assert.Empty(t, control.appliedGrids())
}

func TestHubRegisterAndRemove(t *testing.T) {
	hub := NewHub(nil, &stubControlService{})

	c1, s1 := net.Pipe()
	c2, s2 := net.Pipe()
	defer c1.Close()
	defer c2.Close()

	u1 := hub.Register(s1)
	u2 := hub.Register(s2)
	assert.NotEqual(t, u1.id, u2.id)

	hub.Remove(u1)
	// removing twice is a no-op
	hub.Remove(u1)

	hub.RemoveAllUser()
	assert.Empty(t, hub.us)
}
