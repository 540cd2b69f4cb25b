package demand

// Level buckets a demand score.
type Level string

const (
	LevelLow      Level = "low"
	LevelMedium   Level = "medium"
	LevelHigh     Level = "high"
	LevelCritical Level = "critical"
)

// Levels lists levels from lowest to highest.
var Levels = []Level{LevelLow, LevelMedium, LevelHigh, LevelCritical}

// Thresholds configures level boundaries, inclusive lower bounds.
type Thresholds struct {
	Critical           float64 `yaml:"critical"`
	High               float64 `yaml:"high"`
	Medium             float64 `yaml:"medium"`
	NeedsStationsAbove float64 `yaml:"needs_stations"`
}

// DefaultThresholds are the residents-per-station boundaries.
var DefaultThresholds = Thresholds{Critical: 200, High: 100, Medium: 50, NeedsStationsAbove: 50}

// Classify maps score to a level.
func (t Thresholds) Classify(score float64) Level {
	switch {
	case score >= t.Critical:
		return LevelCritical
	case score >= t.High:
		return LevelHigh
	case score >= t.Medium:
		return LevelMedium
	default:
		return LevelLow
	}
}

// NeedsStations reports whether score exceeds the station threshold.
func (t Thresholds) NeedsStations(score float64) bool {
	return score > t.NeedsStationsAbove
}

// IsHigh reports high or critical.
func (l Level) IsHigh() bool {
	return l == LevelHigh || l == LevelCritical
}
