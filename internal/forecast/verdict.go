package forecast

import (
	"fmt"

	"github.com/lox/routeweather/internal/models"
)

// Thresholds are the limits outside of which weather counts as bad.
// A value equal to a limit is still normal.
type Thresholds struct {
	TempMin     float64 // °C
	TempMax     float64 // °C
	WindMax     float64 // km/h
	PrecipMax   float64 // %
	HumidityMin float64 // %
	HumidityMax float64 // %
}

// DefaultThresholds returns the stock bad-weather policy.
func DefaultThresholds() Thresholds {
	return Thresholds{
		TempMin:     0,
		TempMax:     35,
		WindMax:     50,
		PrecipMax:   70,
		HumidityMin: 10,
		HumidityMax: 90,
	}
}

const reasonNormal = "Хорошая погода"

// Classify maps four metrics to a verdict. Rules are checked in a fixed
// order and the first one violated names the reason.
func Classify(th Thresholds, temperature, windSpeed, precipProbability, humidity float64) models.Verdict {
	switch {
	case temperature < th.TempMin:
		return bad(models.MetricTemperature,
			fmt.Sprintf("слишком холодно (%.1f °C < %.1f °C)", temperature, th.TempMin))
	case temperature > th.TempMax:
		return bad(models.MetricTemperature,
			fmt.Sprintf("слишком жарко (%.1f °C > %.1f °C)", temperature, th.TempMax))
	case windSpeed > th.WindMax:
		return bad(models.MetricWindSpeed,
			fmt.Sprintf("сильный ветер (%.1f км/ч > %.1f км/ч)", windSpeed, th.WindMax))
	case precipProbability > th.PrecipMax:
		return bad(models.MetricPrecipitation,
			fmt.Sprintf("высокая вероятность осадков (%.0f%% > %.0f%%)", precipProbability, th.PrecipMax))
	case humidity < th.HumidityMin:
		return bad(models.MetricHumidity,
			fmt.Sprintf("слишком сухой воздух (%.0f%% < %.0f%%)", humidity, th.HumidityMin))
	case humidity > th.HumidityMax:
		return bad(models.MetricHumidity,
			fmt.Sprintf("слишком высокая влажность (%.0f%% > %.0f%%)", humidity, th.HumidityMax))
	}
	return models.Verdict{Label: models.VerdictNormal, Reason: reasonNormal}
}

// ClassifySnapshot is Classify over a fetched snapshot.
func ClassifySnapshot(th Thresholds, s models.Snapshot) models.Verdict {
	return Classify(th, s.Temperature, s.WindSpeed, s.PrecipitationProbability, s.Humidity)
}

func bad(metric, detail string) models.Verdict {
	return models.Verdict{
		Label:  models.VerdictBad,
		Metric: metric,
		Reason: "Плохая погода: " + detail,
	}
}
