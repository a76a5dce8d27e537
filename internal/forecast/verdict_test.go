package forecast

import (
	"math"
	"strings"
	"testing"

	"github.com/lox/routeweather/internal/models"
)

func TestClassify(t *testing.T) {
	th := DefaultThresholds()

	tests := []struct {
		name       string
		temp       float64
		wind       float64
		precip     float64
		humidity   float64
		wantLabel  models.VerdictLabel
		wantMetric string
	}{
		{
			name: "calm day", temp: 20, wind: 10, precip: 20, humidity: 50,
			wantLabel: models.VerdictNormal,
		},
		{
			name: "limits are normal", temp: 35, wind: 50, precip: 70, humidity: 90,
			wantLabel: models.VerdictNormal,
		},
		{
			name: "lower limits are normal", temp: 0, wind: 0, precip: 0, humidity: 10,
			wantLabel: models.VerdictNormal,
		},
		{
			name: "frost", temp: -5, wind: 10, precip: 20, humidity: 50,
			wantLabel: models.VerdictBad, wantMetric: models.MetricTemperature,
		},
		{
			name: "heat", temp: 38, wind: 10, precip: 20, humidity: 50,
			wantLabel: models.VerdictBad, wantMetric: models.MetricTemperature,
		},
		{
			name: "gale", temp: 15, wind: 65, precip: 20, humidity: 50,
			wantLabel: models.VerdictBad, wantMetric: models.MetricWindSpeed,
		},
		{
			name: "likely rain", temp: 15, wind: 10, precip: 85, humidity: 50,
			wantLabel: models.VerdictBad, wantMetric: models.MetricPrecipitation,
		},
		{
			name: "dry air", temp: 15, wind: 10, precip: 0, humidity: 5,
			wantLabel: models.VerdictBad, wantMetric: models.MetricHumidity,
		},
		{
			name: "saturated air", temp: 15, wind: 10, precip: 20, humidity: 97,
			wantLabel: models.VerdictBad, wantMetric: models.MetricHumidity,
		},
		{
			name: "temperature checked before wind", temp: -10, wind: 80, precip: 90, humidity: 99,
			wantLabel: models.VerdictBad, wantMetric: models.MetricTemperature,
		},
		{
			name: "wind checked before precipitation", temp: 10, wind: 80, precip: 90, humidity: 99,
			wantLabel: models.VerdictBad, wantMetric: models.MetricWindSpeed,
		},
		{
			name: "nan never fails", temp: math.NaN(), wind: math.NaN(), precip: math.NaN(), humidity: math.NaN(),
			wantLabel: models.VerdictNormal,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Classify(th, tt.temp, tt.wind, tt.precip, tt.humidity)
			if got.Label != tt.wantLabel {
				t.Errorf("label = %q, want %q (reason %q)", got.Label, tt.wantLabel, got.Reason)
			}
			if got.Metric != tt.wantMetric {
				t.Errorf("metric = %q, want %q", got.Metric, tt.wantMetric)
			}
			if got.Bad() && !strings.HasPrefix(got.Reason, "Плохая погода") {
				t.Errorf("bad verdict reason = %q", got.Reason)
			}
			if !got.Bad() && got.Reason != reasonNormal {
				t.Errorf("normal verdict reason = %q", got.Reason)
			}
		})
	}
}

func TestClassify_CustomThresholds(t *testing.T) {
	th := DefaultThresholds()
	th.WindMax = 20

	got := Classify(th, 15, 25, 10, 50)
	if !got.Bad() || got.Metric != models.MetricWindSpeed {
		t.Errorf("expected wind verdict with lowered limit, got %+v", got)
	}
	if !strings.Contains(got.Reason, "20.0") {
		t.Errorf("reason should cite the configured limit: %q", got.Reason)
	}
}

func TestClassifySnapshot(t *testing.T) {
	s := models.Snapshot{Temperature: 22, WindSpeed: 15, PrecipitationProbability: 50, Humidity: 40}
	a := ClassifySnapshot(DefaultThresholds(), s)
	b := ClassifySnapshot(DefaultThresholds(), s)
	if a != b {
		t.Errorf("classification not deterministic: %+v vs %+v", a, b)
	}
	if a.Bad() {
		t.Errorf("expected normal, got %+v", a)
	}
}
