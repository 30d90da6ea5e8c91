package main

import (
	"bufio"
	"flag"
	"fmt"
	"math/rand"
	"os"
	"strconv"
	"sync"
	"time"

	"net/http"

	"github.com/lintang-b-s/routegraph/pkg/concurrent"
	da "github.com/lintang-b-s/routegraph/pkg/datastructure"
	"github.com/lintang-b-s/routegraph/pkg/engine"
	log "github.com/lintang-b-s/routegraph/pkg/logger"

	_ "net/http/pprof"
)

var (
	graphFile  = flag.String("graph_file", "./data/map.graph", "navigation graph file (.graph or .geojson)")
	numQueries = flag.Int("num_queries", 100000, "number of random route queries")
	numWorkers = flag.Int("workers", 500, "number of concurrent query workers")
	outFile    = flag.String("out", "rand_routes_result.csv", "per query result csv output")
	seed       = flag.Int64("seed", 42, "rng seed for query generation")
)

func main() {
	flag.Parse()
	logger, err := log.New()
	if err != nil {
		panic(err)
	}

	re, err := engine.NewEngine(*graphFile, logger)
	if err != nil {
		panic(err)
	}

	nodes := re.GetRoutingEngine().GetGraph().GetNodes()
	if len(nodes) < 2 {
		panic("graph has fewer than two nodes")
	}

	type routeParam struct {
		row int
		s   da.Index
		t   da.Index
	}
	newRouteParam := func(row int, s, t da.Index) routeParam {
		return routeParam{row, s, t}
	}

	rng := rand.New(rand.NewSource(*seed))
	queries := make([]routeParam, 0, *numQueries)
	for i := 0; i < *numQueries; i++ {
		s := nodes[rng.Intn(len(nodes))].GetID()
		t := nodes[rng.Intn(len(nodes))].GetID()
		for t == s {
			t = nodes[rng.Intn(len(nodes))].GetID()
		}
		queries = append(queries, newRouteParam(i, s, t))
	}

	lock := sync.Mutex{}

	fout, err := os.Create(*outFile)
	if err != nil {
		panic(err)
	}
	defer fout.Close()
	w := bufio.NewWriter(fout)
	defer w.Flush()

	go func() {
		http.ListenAndServe("localhost:6060", nil)
	}()

	calcRoute := func(p routeParam) any {
		before := time.Now()
		route, err := re.FindRoute(p.s, p.t, nil)
		duration := time.Since(before)

		// unreachable pairs are expected on real extracts, record them with
		// a negative cost so they can be filtered out downstream
		cost := -1.0
		hops := 0
		if err == nil {
			cost = route.GetCost()
			hops = len(route.GetEdges())
		}

		lock.Lock()
		fmt.Fprintf(w, "%d %d %s %d %d\n", p.s, p.t,
			strconv.FormatFloat(cost, 'f', -1, 64), hops, duration.Microseconds())
		lock.Unlock()

		if (p.row+1)%1000 == 0 {
			logger.Sugar().Infof("done query %v", p.row+1)
		}

		return nil
	}

	workers := concurrent.NewWorkerPool[routeParam, any](*numWorkers, *numQueries)

	for _, q := range queries {
		workers.AddJob(q)
	}

	workers.Close()
	workers.Start(calcRoute)
	workers.Wait()
}
