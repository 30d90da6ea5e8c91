package osmparser

import (
	"strconv"
	"strings"

	"github.com/lintang-b-s/routegraph/pkg"
	"github.com/paulmach/osm"
)

type NodeType int

const (
	END_NODE NodeType = iota
	BETWEEN_NODE
	JUNCTION_NODE
)

func acceptOsmWay(way *osm.Way) bool {
	hwTag := way.Tags.Find("highway")
	if hwTag == "" || pkg.GetHighwayType(hwTag) == pkg.UNKNOWN {
		return false
	}
	if way.Tags.Find("area") == "yes" {
		return false
	}
	if access := way.Tags.Find("access"); access == "no" || access == "private" {
		return false
	}
	return true
}

const mphInKmh = 1.609344

// parseMaxSpeed turns an openstreetmap maxspeed tag into km/h. Unusable
// values ("none", "signals", country presets) fall back to the highway
// class default.
func parseMaxSpeed(val string, fallback float64) float64 {
	val = strings.TrimSpace(val)
	if val == "" {
		return fallback
	}

	factor := 1.0
	if strings.HasSuffix(val, "mph") {
		factor = mphInKmh
		val = strings.TrimSpace(strings.TrimSuffix(val, "mph"))
	}
	// "50; 30" and "50|30" carry lane speeds, take the first
	if i := strings.IndexAny(val, ";|"); i >= 0 {
		val = strings.TrimSpace(val[:i])
	}

	speed, err := strconv.ParseFloat(val, 64)
	if err != nil || speed <= 0 {
		return fallback
	}
	return speed * factor
}

// wayDirection reports whether a way is one way and whether it runs against
// its node order.
func wayDirection(way *osm.Way) (oneWay, reversed bool) {
	switch way.Tags.Find("oneway") {
	case "yes", "true", "1":
		return true, false
	case "-1":
		return true, true
	case "no", "false", "0":
		return false, false
	}
	if way.Tags.Find("junction") == "roundabout" {
		return true, false
	}
	return false, false
}
