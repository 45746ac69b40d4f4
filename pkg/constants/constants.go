// Package constants defines shared constants for the tzsniff generator.
package constants

// Test points are taken once a month across this window of years.
// EndYear is exclusive. Offsets before 2000 add little: browsers that
// would run the tree all ship tzdata covering this range.
const (
	StartYear = 2000
	EndYear   = 2018
)

// Each monthly test point falls on this day and wall-clock time. 00:27 keeps
// the probe away from the top of the hour, where most transitions happen.
const (
	TestDay    = 1
	TestHour   = 0
	TestMinute = 27
)

// Default output file names.
const (
	TreeFile        = "tz-tree.json"
	CompactTreeFile = "tz-tree.min.json"
	EquivalencyFile = "equivalencies.json"
	CBORTreeFile    = "tz-tree.cbor"
)

// DefaultZoneinfoDir is where the system tz database is normally installed.
const DefaultZoneinfoDir = "/usr/share/zoneinfo"
