package main

import (
	"context"
	"flag"

	"github.com/lintang-b-s/routegraph/pkg/engine"
	"github.com/lintang-b-s/routegraph/pkg/http"
	"github.com/lintang-b-s/routegraph/pkg/http/usecases"
	"github.com/lintang-b-s/routegraph/pkg/logger"
	"github.com/lintang-b-s/routegraph/pkg/util"
	"go.uber.org/zap"
)

var (
	graphFile    = flag.String("graph_file", "./data/map.graph", "navigation graph file (.graph or .geojson)")
	useRateLimit = flag.Bool("rate_limit", false, "rate limit the rest api per client ip")
)

func main() {
	flag.Parse()
	logger, err := logger.New()
	if err != nil {
		panic(err)
	}

	if err := util.ReadConfigIfPresent(); err != nil {
		panic(err)
	}

	routeEngine, err := engine.NewEngine(*graphFile, logger)
	if err != nil {
		panic(err)
	}

	api := http.NewServer(logger)

	routingService := usecases.NewRoutingService(logger, routeEngine)
	controlService := usecases.NewControlService(logger, routeEngine)

	ctx, cleanup, err := NewContext()
	if err != nil {
		panic(err)
	}
	api.Use(ctx,
		logger, *useRateLimit, routingService, controlService)

	signal := http.GracefulShutdown()

	logger.Info("routegraph engine server stopped", zap.String("signal", signal.String()))
	cleanup()
}

func NewContext() (context.Context, func(), error) {
	ctx, cancel := context.WithCancel(context.Background())
	cb := func() {
		cancel()
	}

	return ctx, cb, nil
}
