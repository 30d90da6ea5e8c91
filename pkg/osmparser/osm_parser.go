package osmparser

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/lintang-b-s/routegraph/pkg"
	"github.com/lintang-b-s/routegraph/pkg/datastructure"
	"github.com/lintang-b-s/routegraph/pkg/geo"
	"github.com/paulmach/osm"
	"github.com/paulmach/osm/osmpbf"
	"go.uber.org/zap"
)

type nodeCoord struct {
	lat float64
	lon float64
}

// OsmParser builds a routing graph from an openstreetmap pbf extract. Ways
// are split into edges at junctions and way endpoints, so every graph edge
// is a road segment with no intersections in its interior.
type OsmParser struct {
	log        *zap.Logger
	wayNodeMap map[int64]NodeType
	nodeCoords map[int64]nodeCoord
	nodeIDMap  map[int64]datastructure.Index
	nextEdgeID datastructure.Index
}

func NewOSMParser(log *zap.Logger) *OsmParser {
	return &OsmParser{
		log:        log,
		wayNodeMap: make(map[int64]NodeType),
		nodeCoords: make(map[int64]nodeCoord),
		nodeIDMap:  make(map[int64]datastructure.Index),
	}
}

// Parse scans the pbf file twice. The first pass classifies every node that
// appears in an accepted way (endpoint, interior, or junction shared by
// multiple ways). The second pass collects coordinates for the classified
// nodes and splits each way into graph edges at the non-interior nodes.
func (p *OsmParser) Parse(mapFile string) (*datastructure.Graph, error) {
	f, err := os.Open(mapFile)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	scanner := osmpbf.New(context.Background(), f, 0)
	// must not be parallel
	countWays := 0
	for scanner.Scan() {
		o := scanner.Object()
		if o.ObjectID().Type() != osm.TypeWay {
			continue
		}
		way := o.(*osm.Way)
		if len(way.Nodes) < 2 || !acceptOsmWay(way) {
			continue
		}

		countWays++
		if countWays%50000 == 0 {
			p.log.Sugar().Infof("scanned %d openstreetmap ways...", countWays)
		}

		for i := 0; i < len(way.Nodes); i++ {
			osmID := way.Nodes[i].ID.FeatureID().Ref()
			if _, ok := p.wayNodeMap[osmID]; !ok {
				if i == 0 || i == len(way.Nodes)-1 {
					p.wayNodeMap[osmID] = END_NODE
				} else {
					p.wayNodeMap[osmID] = BETWEEN_NODE
				}
			} else {
				p.wayNodeMap[osmID] = JUNCTION_NODE
			}
		}
	}
	if err := scanner.Err(); err != nil {
		scanner.Close()
		return nil, err
	}
	scanner.Close()

	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return nil, err
	}

	graph := datastructure.NewGraph()
	countNodes := 0

	// nodes precede ways in pbf files, so way coordinates are complete by
	// the time the first way shows up.
	scanner = osmpbf.New(context.Background(), f, 0)
	for scanner.Scan() {
		o := scanner.Object()

		switch o.ObjectID().Type() {
		case osm.TypeNode:
			{
				node := o.(*osm.Node)
				osmID := node.ID.FeatureID().Ref()
				if _, ok := p.wayNodeMap[osmID]; !ok {
					continue
				}
				p.nodeCoords[osmID] = nodeCoord{lat: node.Lat, lon: node.Lon}

				countNodes++
				if countNodes%100000 == 0 {
					p.log.Sugar().Infof("scanned %d openstreetmap nodes...", countNodes)
				}
			}
		case osm.TypeWay:
			{
				way := o.(*osm.Way)
				if len(way.Nodes) < 2 || !acceptOsmWay(way) {
					continue
				}
				if err := p.buildWayEdges(graph, way); err != nil {
					return nil, err
				}
			}
		}
	}
	if err := scanner.Err(); err != nil {
		scanner.Close()
		return nil, err
	}
	scanner.Close()

	p.log.Sugar().Infof("built graph with %d nodes and %d edges",
		graph.NumberOfNodes(), graph.NumberOfEdges())
	return graph, nil
}

// buildWayEdges walks the way from anchor node to anchor node (endpoints and
// junctions), accumulating segment length, and adds one edge per direction
// for each stretch. The edge cost is the polyline length in km, overridable
// so cost scorers can reprice it, and the speed limit rides along as edge
// metadata.
func (p *OsmParser) buildWayEdges(graph *datastructure.Graph, way *osm.Way) error {
	hwTag := way.Tags.Find("highway")
	defaultSpeed := pkg.DefaultSpeedKmH(pkg.GetHighwayType(hwTag))
	speed := parseMaxSpeed(way.Tags.Find("maxspeed"), defaultSpeed)
	oneWay, reversed := wayDirection(way)

	anchorID := way.Nodes[0].ID.FeatureID().Ref()
	anchor, ok := p.nodeCoords[anchorID]
	if !ok {
		// way reaches outside the extract, skip it
		return nil
	}

	prev := anchor
	lengthKm := 0.0
	for i := 1; i < len(way.Nodes); i++ {
		currID := way.Nodes[i].ID.FeatureID().Ref()
		curr, ok := p.nodeCoords[currID]
		if !ok {
			return nil
		}
		lengthKm += geo.CalculateHaversineDistance(prev.lat, prev.lon, curr.lat, curr.lon)
		prev = curr

		if p.wayNodeMap[currID] != BETWEEN_NODE || i == len(way.Nodes)-1 {
			startID, err := p.ensureNode(graph, anchorID)
			if err != nil {
				return err
			}
			endID, err := p.ensureNode(graph, currID)
			if err != nil {
				return err
			}
			if reversed {
				startID, endID = endID, startID
			}

			if err := p.addEdge(graph, startID, endID, lengthKm, speed, hwTag); err != nil {
				return err
			}
			if !oneWay {
				if err := p.addEdge(graph, endID, startID, lengthKm, speed, hwTag); err != nil {
					return err
				}
			}

			anchorID = currID
			lengthKm = 0.0
		}
	}
	return nil
}

func (p *OsmParser) ensureNode(graph *datastructure.Graph, osmID int64) (datastructure.Index, error) {
	if id, ok := p.nodeIDMap[osmID]; ok {
		return id, nil
	}
	coord, ok := p.nodeCoords[osmID]
	if !ok {
		return 0, fmt.Errorf("osmparser: node %d missing from extract", osmID)
	}
	id := datastructure.Index(len(p.nodeIDMap))
	if _, err := graph.AddNode(id, coord.lat, coord.lon); err != nil {
		return 0, err
	}
	p.nodeIDMap[osmID] = id
	return id, nil
}

func (p *OsmParser) addEdge(graph *datastructure.Graph, startID, endID datastructure.Index,
	lengthKm, speedKmH float64, hwTag string) error {
	if startID == endID {
		// degenerate loop segment, nothing to route over
		return nil
	}
	edge, err := graph.AddEdge(p.nextEdgeID, startID, endID, datastructure.NewEdgeCost(lengthKm, true))
	if err != nil {
		return err
	}
	p.nextEdgeID++
	edge.SetMetadata(datastructure.Metadata{
		"speed_limit": speedKmH,
		"highway":     hwTag,
	})
	return nil
}
