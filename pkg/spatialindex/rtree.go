package spatialindex

import (
	"math"

	"github.com/lintang-b-s/routegraph/pkg"
	da "github.com/lintang-b-s/routegraph/pkg/datastructure"
	"github.com/lintang-b-s/routegraph/pkg/geo"
	"github.com/lintang-b-s/routegraph/pkg/util"
	"github.com/tidwall/rtree"
	"go.uber.org/zap"
)

// NodeIndex is an r-tree over the graph nodes, used to snap a raw query
// coordinate onto the graph before planning.
type NodeIndex struct {
	tr *rtree.RTreeG[*da.Node]
}

func NewNodeIndex() *NodeIndex {
	var tr rtree.RTreeG[*da.Node]
	return &NodeIndex{
		tr: &tr,
	}
}

// Build inserts every graph node as a point entry.
func (idx *NodeIndex) Build(graph *da.Graph, log *zap.Logger) {
	log.Info("building r-tree spatial index...")

	nodes := graph.GetNodes()
	for i, node := range nodes {
		percentage := float64(i) / float64(len(nodes)) * 100
		if math.Mod(percentage, 10) < 0.0001 {
			log.Debug("building r-tree spatial index...", zap.Float64("progress", percentage))
		}

		point := [2]float64{node.GetLon(), node.GetLat()}
		idx.tr.Insert(point, point, node)
	}

	log.Info("r-tree spatial index built.", zap.Int("nodes", len(nodes)))
}

// SearchWithinRadius returns the nodes inside the bounding box that
// circumscribes the circle of the given radius (in km) around the query
// point.
func (idx *NodeIndex) SearchWithinRadius(qLat, qLon, radius float64) []*da.Node {
	lowerLat, lowerLon := geo.GetDestinationPoint(qLat, qLon, 225, radius)
	upperLat, upperLon := geo.GetDestinationPoint(qLat, qLon, 45, radius)

	results := make([]*da.Node, 0, 10)
	idx.tr.Search([2]float64{lowerLon, lowerLat}, [2]float64{upperLon, upperLat},
		func(min, max [2]float64, node *da.Node) bool {
			results = append(results, node)
			return true
		})
	return results
}

// NearestNode snaps the query point to the closest graph node, growing the
// search radius until something is found or the snap limit is reached.
func (idx *NodeIndex) NearestNode(qLat, qLon float64) (*da.Node, error) {
	radius := pkg.SNAP_SEARCH_START_RADIUS_KM
	for {
		var best *da.Node
		bestDist := math.MaxFloat64
		for _, node := range idx.SearchWithinRadius(qLat, qLon, radius) {
			dist := geo.CalculateHaversineDistance(qLat, qLon, node.GetLat(), node.GetLon())
			if dist < bestDist {
				bestDist = dist
				best = node
			}
		}
		if best != nil && bestDist <= radius {
			return best, nil
		}

		if radius >= pkg.SNAP_SEARCH_MAX_RADIUS_KM {
			break
		}
		radius = math.Min(radius*2, pkg.SNAP_SEARCH_MAX_RADIUS_KM)
	}

	return nil, util.WrapErrorf(nil, util.ErrNotFound,
		"no graph node within %.1f km of (%f, %f)", pkg.SNAP_SEARCH_MAX_RADIUS_KM, qLat, qLon)
}
