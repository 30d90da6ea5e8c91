package routing

import (
	"sync"

	da "github.com/lintang-b-s/routegraph/pkg/datastructure"
	"go.uber.org/zap"
)

// EdgePenalty is one (edge id, cost override) pair of an adjustment request.
type EdgePenalty struct {
	EdgeID  da.Index `json:"edge_id"`
	Penalty float64  `json:"penalty"`
}

// AdjustEdgesScorer prices the closures and dynamic penalties pushed in
// through the control endpoint. A closed edge is vetoed, a penalized edge
// contributes its override value, everything else contributes zero.
//
// The control endpoint mutates the two maps while searches read them, every
// access goes through one mutex held only for the map operation itself.
type AdjustEdgesScorer struct {
	log  *zap.Logger
	name string

	mu        sync.Mutex
	closed    map[da.Index]struct{}
	penalties map[da.Index]float64
}

func NewAdjustEdgesScorer(log *zap.Logger) *AdjustEdgesScorer {
	return &AdjustEdgesScorer{
		log:       log,
		closed:    make(map[da.Index]struct{}),
		penalties: make(map[da.Index]float64),
	}
}

func (s *AdjustEdgesScorer) Configure(name string) error {
	s.name = name
	return nil
}

func (s *AdjustEdgesScorer) Prepare() {}

func (s *AdjustEdgesScorer) Score(edge *da.Edge) (float64, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, isClosed := s.closed[edge.GetID()]; isClosed {
		return 0, false
	}
	if penalty, ok := s.penalties[edge.GetID()]; ok {
		return penalty, true
	}
	return 0, true
}

func (s *AdjustEdgesScorer) GetName() string {
	return s.name
}

// Apply executes one control request atomically: close, reopen, then upsert
// penalties, so later entries win within one request. Ids are not validated
// against the graph, unknown ids are accepted silently and the request
// always succeeds.
func (s *AdjustEdgesScorer) Apply(closedEdges, openedEdges []da.Index, penalties []EdgePenalty) {
	s.mu.Lock()
	for _, id := range closedEdges {
		s.closed[id] = struct{}{}
	}
	for _, id := range openedEdges {
		delete(s.closed, id)
	}
	for _, p := range penalties {
		s.penalties[p.EdgeID] = p.Penalty
	}
	numClosed := len(s.closed)
	numPenalties := len(s.penalties)
	s.mu.Unlock()

	s.log.Info("applied edge adjustments",
		zap.Int("closed", len(closedEdges)),
		zap.Int("opened", len(openedEdges)),
		zap.Int("penalized", len(penalties)),
		zap.Int("total_closed", numClosed),
		zap.Int("total_penalized", numPenalties))
}

// GetClosedEdges snapshots the currently closed edge ids for the status
// endpoint.
func (s *AdjustEdgesScorer) GetClosedEdges() []da.Index {
	s.mu.Lock()
	defer s.mu.Unlock()

	ids := make([]da.Index, 0, len(s.closed))
	for id := range s.closed {
		ids = append(ids, id)
	}
	return ids
}

// GetPenalties snapshots the current penalty overrides for the status
// endpoint.
func (s *AdjustEdgesScorer) GetPenalties() map[da.Index]float64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make(map[da.Index]float64, len(s.penalties))
	for id, penalty := range s.penalties {
		out[id] = penalty
	}
	return out
}
