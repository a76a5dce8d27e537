package models

// Point identifies one end of a route.
type Point string

const (
	PointStart Point = "start"
	PointEnd   Point = "end"
)

// Label returns the Russian label used on rendered pages.
func (p Point) Label() string {
	if p == PointEnd {
		return "Конечная точка"
	}
	return "Начальная точка"
}

// Snapshot is a point-in-time set of weather metrics for one coordinate.
// The JSON keys match the metric names shown to users.
type Snapshot struct {
	Temperature              float64 `json:"Temperature (C)"`
	WindSpeed                float64 `json:"Wind Speed (km/h)"`
	PrecipitationProbability float64 `json:"Precipitation Probability (%)"`
	Humidity                 float64 `json:"Humidity (%)"`
}

// Metric names, used as verdict keys and chart labels.
const (
	MetricTemperature   = "Temperature (C)"
	MetricWindSpeed     = "Wind Speed (km/h)"
	MetricPrecipitation = "Precipitation Probability (%)"
	MetricHumidity      = "Humidity (%)"
)

type VerdictLabel string

const (
	VerdictNormal VerdictLabel = "normal"
	VerdictBad    VerdictLabel = "bad"
)

// Verdict is the bad/normal classification derived from a Snapshot.
type Verdict struct {
	Label  VerdictLabel `json:"label"`
	Metric string       `json:"metric,omitempty"` // metric that tripped a rule, empty when normal
	Reason string       `json:"reason"`
}

func (v Verdict) Bad() bool {
	return v.Label == VerdictBad
}

// PointResult pairs a coordinate with its weather and verdict.
type PointResult struct {
	Point      Point      `json:"point"`
	Coordinate Coordinate `json:"coordinates"`
	Weather    Snapshot   `json:"weather"`
	Status     Verdict    `json:"status"`
}

// Result holds both ends of a route for the duration of one request.
type Result struct {
	Start PointResult `json:"start_point"`
	End   PointResult `json:"end_point"`
}
