package scenario

// Preset anomaly tables for common exercise setups. "basic" mirrors the
// defaults; "distributed" scatters more small targets; "clustered" models a
// single large casualty site with heavy debris.
var Presets = map[string]AnomalyConfig{
	"basic": DefaultAnomalyConfig(),
	"distributed": {
		AnomalyPersonInWater: {Count: 6, DetectionRadiusMeters: 120},
		AnomalyLifeboat:      {Count: 2, DetectionRadiusMeters: 200},
		AnomalyDebrisField:   {Count: 4, DetectionRadiusMeters: 250},
		AnomalyFalsePositive: {Count: 3, DetectionRadiusMeters: 100},
	},
	"clustered": {
		AnomalyPersonInWater: {Count: 8, DetectionRadiusMeters: 120},
		AnomalyLifeboat:      {Count: 1, DetectionRadiusMeters: 200},
		AnomalyDebrisField:   {Count: 6, DetectionRadiusMeters: 300},
		AnomalyFalsePositive: {Count: 1, DetectionRadiusMeters: 100},
	},
}

// PresetNames lists the presets in a stable order for CLI help output.
var PresetNames = []string{"basic", "distributed", "clustered"}
