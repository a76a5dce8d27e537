package chart

import (
	"image/color"

	"github.com/lox/routeweather/internal/models"
)

const (
	DefaultWidth  = 820
	DefaultHeight = 460
)

var (
	colorTemperature = color.RGBA{214, 39, 40, 255}
	colorHumidity    = color.RGBA{31, 119, 180, 255}
	colorWind        = color.RGBA{44, 160, 44, 255}
	colorPrecip      = color.RGBA{148, 103, 189, 255}
)

// Renderer builds the weather charts used by the web pages.
type Renderer struct {
	width  int
	height int
}

func NewRenderer(width, height int) *Renderer {
	if width <= 0 {
		width = DefaultWidth
	}
	if height <= 0 {
		height = DefaultHeight
	}
	return &Renderer{width: width, height: height}
}

// Comparison plots all four metrics for the start and end of a route.
func (r *Renderer) Comparison(start, end models.Snapshot) ([]byte, error) {
	return Render(LineChart{
		Title:      "Weather Parameters Comparison",
		XTitle:     "Points",
		YTitle:     "Value",
		Categories: []string{"Start Point", "End Point"},
		Series: []Series{
			{Name: "Temperature (C)", Color: colorTemperature, Values: []float64{start.Temperature, end.Temperature}},
			{Name: "Humidity (%)", Color: colorHumidity, Values: []float64{start.Humidity, end.Humidity}},
			{Name: "Wind Speed (km/h)", Color: colorWind, Values: []float64{start.WindSpeed, end.WindSpeed}},
			{Name: "Precipitation Probability (%)", Color: colorPrecip, Values: []float64{start.PrecipitationProbability, end.PrecipitationProbability}},
		},
		Width:  r.width,
		Height: r.height,
	})
}

// Snapshot plots temperature, wind and precipitation for a single point.
func (r *Renderer) Snapshot(title string, s models.Snapshot) ([]byte, error) {
	return Render(LineChart{
		Title:      title,
		XTitle:     "Weather Parameters",
		YTitle:     "Values",
		Categories: []string{models.MetricTemperature, models.MetricWindSpeed, models.MetricPrecipitation},
		Series: []Series{
			{Name: "Weather Data", Color: colorHumidity, Values: []float64{s.Temperature, s.WindSpeed, s.PrecipitationProbability}},
		},
		Width:  r.width,
		Height: r.height,
	})
}
