package datastructure

import (
	"bufio"
	"fmt"
	"math"
	"os"
	"strconv"

	"github.com/dsnet/compress/bzip2"
	"github.com/lintang-b-s/routegraph/pkg/util"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// WriteGraph persists the graph as a bzip2 compressed plain text file. The
// format is a header line "numNodes numEdges" followed by one line per node
// and one line per edge. Metadata is not part of this cache format, it only
// lives in the geojson source file.
func (g *Graph) WriteGraph(filename string) error {
	f, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer f.Close()

	bz, err := bzip2.NewWriter(f, &bzip2.WriterConfig{})
	if err != nil {
		return err
	}
	defer bz.Close()

	w := bufio.NewWriter(bz)

	fmt.Fprintf(w, "%d %d\n", g.NumberOfNodes(), g.NumberOfEdges())

	for _, node := range g.nodes {
		latF := strconv.FormatFloat(node.lat, 'f', -1, 64)
		lonF := strconv.FormatFloat(node.lon, 'f', -1, 64)

		fmt.Fprintf(w, "%d %s %s\n", node.id, latF, lonF)
	}

	for _, edge := range g.edges {
		costF := strconv.FormatFloat(edge.edgeCost.cost, 'f', -1, 64)

		fmt.Fprintf(w, "%d %d %d %s %t\n",
			edge.id, edge.start.id, edge.end.id, costF, edge.edgeCost.overridable)
	}

	return w.Flush()
}

func ParseIndex(s string) (Index, error) {
	u, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, err
	}
	if u > math.MaxUint32 {
		return 0, fmt.Errorf("value %s overflows uint32", s)
	}
	return Index(u), nil
}

func ReadGraph(filename string) (*Graph, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, err
	}

	defer f.Close()

	bz, err := bzip2.NewReader(f, nil)

	if err != nil {
		return nil, err
	}

	br := bufio.NewReader(bz)

	line, err := util.ReadLine(br)
	if err != nil {
		return nil, err
	}

	tokens := util.Fields(line)
	if len(tokens) != 2 {
		return nil, fmt.Errorf("expected 2 header fields, got %d", len(tokens))
	}

	numNodes, err := ParseIndex(tokens[0])
	if err != nil {
		return nil, err
	}

	numEdges, err := ParseIndex(tokens[1])
	if err != nil {
		return nil, err
	}

	graph := NewGraph()

	for i := 0; i < int(numNodes); i++ {
		nodeLine, err := util.ReadLine(br)
		if err != nil {
			return nil, err
		}
		if err := parseNodeInto(graph, nodeLine); err != nil {
			return nil, err
		}
	}

	for i := 0; i < int(numEdges); i++ {
		edgeLine, err := util.ReadLine(br)
		if err != nil {
			return nil, err
		}
		if err := parseEdgeInto(graph, edgeLine); err != nil {
			return nil, err
		}
	}

	return graph, nil
}

func parseNodeInto(graph *Graph, line string) error {
	tokens := util.Fields(line)
	if len(tokens) != 3 {
		return fmt.Errorf("expected 3 node fields, got %d", len(tokens))
	}
	id, err := ParseIndex(tokens[0])
	if err != nil {
		return err
	}
	lat, err := strconv.ParseFloat(tokens[1], 64)
	if err != nil {
		return fmt.Errorf("lat: %w", err)
	}
	lon, err := strconv.ParseFloat(tokens[2], 64)
	if err != nil {
		return fmt.Errorf("lon: %w", err)
	}

	_, err = graph.AddNode(id, lat, lon)
	return err
}

func parseEdgeInto(graph *Graph, line string) error {
	tokens := util.Fields(line)
	if len(tokens) != 5 {
		return fmt.Errorf("expected 5 edge fields, got %d", len(tokens))
	}
	id, err := ParseIndex(tokens[0])
	if err != nil {
		return err
	}
	startID, err := ParseIndex(tokens[1])
	if err != nil {
		return err
	}
	endID, err := ParseIndex(tokens[2])
	if err != nil {
		return err
	}
	cost, err := strconv.ParseFloat(tokens[3], 64)
	if err != nil {
		return fmt.Errorf("cost: %w", err)
	}
	overridable, err := strconv.ParseBool(tokens[4])
	if err != nil {
		return err
	}

	_, err = graph.AddEdge(id, startID, endID, NewEdgeCost(cost, overridable))
	return err
}

// LoadGraphFromGeoJSON builds a graph from one geojson feature collection.
// Point features declare nodes, LineString/MultiLineString features declare
// edges. Nodes need an "id" property, edges need "id", "startid" and "endid"
// plus optional "cost" (default 0) and "overridable" (default true). A nested
// "metadata" object property is attached verbatim for scorer plugins.
func LoadGraphFromGeoJSON(filename string) (*Graph, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}

	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return nil, util.WrapErrorf(err, util.ErrBadParamInput, "parse geojson graph file %s", filename)
	}

	graph := NewGraph()

	// nodes first so edges can resolve their endpoints regardless of the
	// feature order inside the file.
	for _, feat := range fc.Features {
		point, ok := feat.Geometry.(orb.Point)
		if !ok {
			continue
		}
		id, err := propertyIndex(feat.Properties, "id")
		if err != nil {
			return nil, util.WrapErrorf(err, util.ErrBadParamInput, "node feature in %s", filename)
		}

		node, err := graph.AddNode(id, point.Lat(), point.Lon())
		if err != nil {
			return nil, err
		}
		if md, ok := feat.Properties["metadata"].(map[string]interface{}); ok {
			node.SetMetadata(Metadata(md))
		}
	}

	for _, feat := range fc.Features {
		switch feat.Geometry.(type) {
		case orb.LineString, orb.MultiLineString:
		default:
			continue
		}
		id, err := propertyIndex(feat.Properties, "id")
		if err != nil {
			return nil, util.WrapErrorf(err, util.ErrBadParamInput, "edge feature in %s", filename)
		}
		startID, err := propertyIndex(feat.Properties, "startid")
		if err != nil {
			return nil, util.WrapErrorf(err, util.ErrBadParamInput, "edge %d in %s", id, filename)
		}
		endID, err := propertyIndex(feat.Properties, "endid")
		if err != nil {
			return nil, util.WrapErrorf(err, util.ErrBadParamInput, "edge %d in %s", id, filename)
		}

		cost := feat.Properties.MustFloat64("cost", 0)
		overridable := feat.Properties.MustBool("overridable", true)

		edge, err := graph.AddEdge(id, startID, endID, NewEdgeCost(cost, overridable))
		if err != nil {
			return nil, err
		}
		if md, ok := feat.Properties["metadata"].(map[string]interface{}); ok {
			edge.SetMetadata(Metadata(md))
		}
	}

	return graph, nil
}

// WriteGeoJSON persists the graph as a geojson feature collection in the
// layout LoadGraphFromGeoJSON reads back, metadata included.
func (g *Graph) WriteGeoJSON(filename string) error {
	fc := geojson.NewFeatureCollection()

	for _, node := range g.nodes {
		feat := geojson.NewFeature(orb.Point{node.lon, node.lat})
		feat.Properties["id"] = node.id
		if len(node.metadata) > 0 {
			feat.Properties["metadata"] = map[string]interface{}(node.metadata)
		}
		fc.Append(feat)
	}

	for _, edge := range g.edges {
		line := orb.LineString{
			{edge.start.lon, edge.start.lat},
			{edge.end.lon, edge.end.lat},
		}
		feat := geojson.NewFeature(line)
		feat.Properties["id"] = edge.id
		feat.Properties["startid"] = edge.start.id
		feat.Properties["endid"] = edge.end.id
		feat.Properties["cost"] = edge.edgeCost.cost
		feat.Properties["overridable"] = edge.edgeCost.overridable
		if len(edge.metadata) > 0 {
			feat.Properties["metadata"] = map[string]interface{}(edge.metadata)
		}
		fc.Append(feat)
	}

	data, err := fc.MarshalJSON()
	if err != nil {
		return err
	}
	return os.WriteFile(filename, data, 0644)
}

// geojson numbers unmarshal as float64, ids must be non-negative integers
// that fit an Index.
func propertyIndex(props geojson.Properties, key string) (Index, error) {
	v, ok := props[key]
	if !ok {
		return 0, fmt.Errorf("missing %q property", key)
	}
	f, ok := v.(float64)
	if !ok || f < 0 || f != math.Trunc(f) || f > math.MaxUint32 {
		return 0, fmt.Errorf("property %q is not a valid id: %v", key, v)
	}
	return Index(f), nil
}
