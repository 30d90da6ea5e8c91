package main

import (
	"flag"
	"fmt"
	"strings"

	"github.com/lintang-b-s/routegraph/pkg/logger"
	"github.com/lintang-b-s/routegraph/pkg/osmparser"
)

var (
	osmFile = flag.String("osm_pbf", "./data/yogyakarta.osm.pbf", "openstreetmap pbf extract to import")
	outFile = flag.String("out", "./data/map.graph", "output graph file (.graph or .geojson)")
)

func main() {
	flag.Parse()
	logger, err := logger.New()
	if err != nil {
		panic(err)
	}

	parser := osmparser.NewOSMParser(logger)
	graph, err := parser.Parse(*osmFile)
	if err != nil {
		panic(err)
	}

	switch {
	case strings.HasSuffix(*outFile, ".graph"):
		err = graph.WriteGraph(*outFile)
	case strings.HasSuffix(*outFile, ".geojson"):
		err = graph.WriteGeoJSON(*outFile)
	default:
		err = fmt.Errorf("unsupported output format %q, want .graph or .geojson", *outFile)
	}
	if err != nil {
		panic(err)
	}

	logger.Sugar().Infof("wrote %d nodes and %d edges to %s",
		graph.NumberOfNodes(), graph.NumberOfEdges(), *outFile)
}
