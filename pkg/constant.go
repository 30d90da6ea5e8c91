package pkg

const (
	INF_WEIGHT float64 = 1e15

	// occupancy grid cell values. 255 marks an unobserved cell and must
	// never be treated as a real cost.
	OCC_UNKNOWN_COST     float64 = 255.0
	OCC_DEFAULT_MAX_COST float64 = 253.0

	DEFAULT_EDGE_WEIGHT = 1.0
)

const (
	// geometric tolerances used when snapping poses onto graph edges.
	EPSILON                     = 1e-6
	MAX_DIST_FROM_EDGE_METER    = 8.0
	MIN_DIST_FROM_GOAL_METER    = 0.15
	MIN_DIST_FROM_START_METER   = 0.10
	SNAP_SEARCH_MAX_RADIUS_KM   = 2.0
	SNAP_SEARCH_START_RADIUS_KM = 0.1
)

type OsmHighwayType uint8

// enum buat osm highway buat routing: https://wiki.openstreetmap.org/wiki/OSM_tags_for_routing/Telenav
const (
	MOTORWAY       OsmHighwayType = 0
	TRUNK          OsmHighwayType = 1
	PRIMARY        OsmHighwayType = 2
	SECONDARY      OsmHighwayType = 3
	TERTIARY       OsmHighwayType = 4
	RESIDENTIAL    OsmHighwayType = 5
	SERVICE        OsmHighwayType = 6
	UNCLASSIFIED   OsmHighwayType = 7
	MOTORWAY_LINK  OsmHighwayType = 8
	TRUNK_LINK     OsmHighwayType = 9
	PRIMARY_LINK   OsmHighwayType = 10
	SECONDARY_LINK OsmHighwayType = 11
	TERTIARY_LINK  OsmHighwayType = 12
	LIVING_STREET  OsmHighwayType = 13
	ROAD           OsmHighwayType = 14
	TRACK          OsmHighwayType = 15
	MOTORROAD      OsmHighwayType = 16
	UNKNOWN        OsmHighwayType = 17
)

func GetHighwayType(roadType string) OsmHighwayType {
	switch roadType {
	case "motorway":
		return MOTORWAY
	case "trunk":
		return TRUNK
	case "primary":
		return PRIMARY
	case "secondary":
		return SECONDARY
	case "tertiary":
		return TERTIARY
	case "unclassified":
		return UNCLASSIFIED
	case "residential":
		return RESIDENTIAL
	case "service":
		return SERVICE
	case "motorway_link":
		return MOTORWAY_LINK
	case "trunk_link":
		return TRUNK_LINK
	case "primary_link":
		return PRIMARY_LINK
	case "secondary_link":
		return SECONDARY_LINK
	case "tertiary_link":
		return TERTIARY_LINK
	case "living_street":
		return LIVING_STREET
	case "road":
		return ROAD
	case "track":
		return TRACK
	case "motorroad":
		return MOTORROAD
	default:
		return UNKNOWN
	}
}

// default speed (km/h) assumed for an osm way when it carries no maxspeed tag.
func DefaultSpeedKmH(h OsmHighwayType) float64 {
	switch h {
	case MOTORWAY, MOTORROAD:
		return 90
	case TRUNK:
		return 85
	case PRIMARY:
		return 65
	case SECONDARY:
		return 60
	case TERTIARY:
		return 50
	case UNCLASSIFIED, ROAD:
		return 40
	case RESIDENTIAL, LIVING_STREET:
		return 30
	case SERVICE, TRACK:
		return 20
	default:
		return 40
	}
}
