package api_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/routeweather/internal/api"
	"github.com/lox/routeweather/internal/chart"
	"github.com/lox/routeweather/internal/compare"
	"github.com/lox/routeweather/internal/forecast"
	"github.com/lox/routeweather/internal/logging"
	"github.com/lox/routeweather/internal/models"
)

type fakeComparer struct {
	result *models.Result
	err    error
	panics bool
	got    compare.Request
}

func (f *fakeComparer) Compare(ctx context.Context, req compare.Request) (*models.Result, error) {
	f.got = req
	if f.panics {
		panic("boom")
	}
	return f.result, f.err
}

func sampleResult() *models.Result {
	th := forecast.DefaultThresholds()
	start := models.Snapshot{Temperature: 25, WindSpeed: 10, PrecipitationProbability: 20, Humidity: 40}
	end := models.Snapshot{Temperature: 12, WindSpeed: 65, PrecipitationProbability: 30, Humidity: 60}
	startCoord, _ := models.ParseCoordinate("34.0522", "-118.2437")
	endCoord, _ := models.ParseCoordinate("40.7128", "-74.0060")
	return &models.Result{
		Start: models.PointResult{Point: models.PointStart, Coordinate: startCoord, Weather: start, Status: forecast.ClassifySnapshot(th, start)},
		End:   models.PointResult{Point: models.PointEnd, Coordinate: endCoord, Weather: end, Status: forecast.ClassifySnapshot(th, end)},
	}
}

func newServer(cmp api.Comparer) http.Handler {
	return api.NewServer(cmp, chart.NewRenderer(400, 300), logging.Discard(), "8080").Handler()
}

func postForm(h http.Handler, path string, form url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func routeForm() url.Values {
	return url.Values{
		"start_lat": {"34.0522"},
		"start_lon": {"-118.2437"},
		"end_lat":   {"40.7128"},
		"end_lon":   {"-74.0060"},
	}
}

func TestIndexPage(t *testing.T) {
	t.Parallel()
	h := newServer(&fakeComparer{})

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	for _, field := range []string{"start_lat", "start_lon", "end_lat", "end_lon"} {
		assert.Contains(t, body, `name="`+field+`"`)
	}
	assert.Contains(t, body, `action="/weather"`)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}

func TestWeatherPage_Success(t *testing.T) {
	t.Parallel()
	cmp := &fakeComparer{result: sampleResult()}
	h := newServer(cmp)

	w := postForm(h, "/weather", routeForm())

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, compare.Request{StartLat: "34.0522", StartLon: "-118.2437", EndLat: "40.7128", EndLon: "-74.0060"}, cmp.got)

	body := w.Body.String()
	assert.Contains(t, body, "Начальная точка")
	assert.Contains(t, body, "Конечная точка")
	assert.Contains(t, body, "Хорошая погода")
	assert.Contains(t, body, "Плохая погода")
	assert.Contains(t, body, `class="verdict-bad"`)
	assert.Contains(t, body, `id="comparisonChart"`)
	assert.Contains(t, body, `src="data:image/png;base64,`)
}

func TestWeatherPage_Errors(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"missing fields", &compare.Error{Kind: compare.KindMissingFields}, "Пожалуйста, заполните все поля :)"},
		{"invalid coordinates", &compare.Error{Kind: compare.KindInvalidCoordinates}, "Проверьте корректность координат и повторите попытку"},
		{"no connectivity", &compare.Error{Kind: compare.KindNoConnectivity}, "Ошибка подключения: проверьте ваше интернет-соединение."},
		{"connection", &compare.Error{Kind: compare.KindConnection, Point: models.PointStart}, "Ошибка подключения: проверьте ваше интернет-соединение."},
		{"api", &compare.Error{Kind: compare.KindAPI}, "Ошибка подключения к API :(. Попробуйте позже."},
		{"data start", &compare.Error{Kind: compare.KindData, Point: models.PointStart}, "для начальной точки"},
		{"data end", &compare.Error{Kind: compare.KindData, Point: models.PointEnd}, "для конечной точки"},
		{"unexpected", &compare.Error{Kind: compare.KindUnexpected}, "Произошла неожиданная ошибка"},
		{"untyped", errors.New("boom"), "Произошла неожиданная ошибка"},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			h := newServer(&fakeComparer{err: tt.err})

			w := postForm(h, "/weather", routeForm())

			assert.Equal(t, http.StatusOK, w.Code, "error pages are served with 200")
			assert.Contains(t, w.Body.String(), tt.want)
			assert.Contains(t, w.Body.String(), `class="message"`)
			assert.NotContains(t, w.Body.String(), "comparisonChart")
		})
	}
}

func TestAPIWeather_Success(t *testing.T) {
	t.Parallel()
	h := newServer(&fakeComparer{result: sampleResult()})

	req := httptest.NewRequest(http.MethodPost, "/api/weather",
		strings.NewReader(`{"start_lat":"34.0522","start_lon":"-118.2437","end_lat":"40.7128","end_lon":"-74.0060"}`))
	req.Header.Set("Content-Type", "application/json; charset=utf-8")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

	var got struct {
		Start struct {
			Coordinates struct{ Lat, Lon string } `json:"coordinates"`
			Weather     map[string]float64        `json:"weather"`
			Status      models.Verdict            `json:"status"`
		} `json:"start_point"`
		End struct {
			Status models.Verdict `json:"status"`
		} `json:"end_point"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, "34.0522", got.Start.Coordinates.Lat)
	assert.Equal(t, 25.0, got.Start.Weather["Temperature (C)"])
	assert.Equal(t, models.VerdictNormal, got.Start.Status.Label)
	assert.Equal(t, models.VerdictBad, got.End.Status.Label)
	assert.Equal(t, models.MetricWindSpeed, got.End.Status.Metric)
}

func TestAPIWeather_Errors(t *testing.T) {
	t.Parallel()
	tests := []struct {
		err       error
		status    int
		wantPoint models.Point
	}{
		{&compare.Error{Kind: compare.KindMissingFields}, http.StatusBadRequest, ""},
		{&compare.Error{Kind: compare.KindInvalidCoordinates}, http.StatusBadRequest, ""},
		{&compare.Error{Kind: compare.KindNoConnectivity}, http.StatusServiceUnavailable, ""},
		{&compare.Error{Kind: compare.KindConnection, Point: models.PointEnd}, http.StatusBadGateway, models.PointEnd},
		{&compare.Error{Kind: compare.KindAPI}, http.StatusBadGateway, ""},
		{&compare.Error{Kind: compare.KindData, Point: models.PointEnd}, http.StatusUnprocessableEntity, models.PointEnd},
		{&compare.Error{Kind: compare.KindUnexpected}, http.StatusInternalServerError, ""},
	}
	for _, tt := range tests {
		tt := tt
		kind := compare.KindOf(tt.err)
		t.Run(string(kind), func(t *testing.T) {
			t.Parallel()
			h := newServer(&fakeComparer{err: tt.err})

			w := postForm(h, "/api/weather", routeForm())

			require.Equal(t, tt.status, w.Code)
			var body struct {
				Error api.APIError `json:"error"`
			}
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.Equal(t, kind, body.Error.Code)
			assert.Equal(t, tt.wantPoint, body.Error.Point)
			assert.NotEmpty(t, body.Error.Message)
		})
	}
}

func TestAPIWeather_BadJSON(t *testing.T) {
	t.Parallel()
	cmp := &fakeComparer{result: sampleResult()}
	h := newServer(cmp)

	req := httptest.NewRequest(http.MethodPost, "/api/weather", strings.NewReader(`{"start_lat":`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "invalid_body")
}

func TestHealthEndpoint(t *testing.T) {
	t.Parallel()
	h := newServer(&fakeComparer{})

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}

func TestMetricsEndpoint(t *testing.T) {
	t.Parallel()
	h := newServer(&fakeComparer{})

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "go_goroutines")
}

func TestDashPage(t *testing.T) {
	t.Parallel()
	h := newServer(&fakeComparer{})

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/dash/", nil))

	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, "Weather Data Visualization")
	assert.Contains(t, body, `id="start-point-graph"`)
	assert.Contains(t, body, `id="end-point-graph"`)
}

func TestPanicRecovered(t *testing.T) {
	t.Parallel()
	h := newServer(&fakeComparer{panics: true})

	w := postForm(h, "/weather", routeForm())
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Произошла неожиданная ошибка")

	w = postForm(h, "/api/weather", routeForm())
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "unexpected_error")
}

func TestRequestIDPropagated(t *testing.T) {
	t.Parallel()
	h := newServer(&fakeComparer{err: &compare.Error{Kind: compare.KindAPI}})

	req := httptest.NewRequest(http.MethodPost, "/weather", strings.NewReader(routeForm().Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("X-Request-ID", "req-123")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	assert.Equal(t, "req-123", w.Header().Get("X-Request-ID"))
	assert.Contains(t, w.Body.String(), "req-123")
}

func TestGzipResponse(t *testing.T) {
	t.Parallel()
	h := newServer(&fakeComparer{})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Accept-Encoding", "gzip")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	assert.Equal(t, "gzip", w.Header().Get("Content-Encoding"))
}
