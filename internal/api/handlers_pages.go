package api

import (
	"bytes"
	"net/http"

	"github.com/lox/routeweather/internal/compare"
	"github.com/lox/routeweather/internal/models"
)

// WeatherPage is the view model for a successful route check.
type WeatherPage struct {
	Points []models.PointResult
	Chart  []byte
}

// ErrorPage is the view model for a failed route check.
type ErrorPage struct {
	Message   string
	RequestID string
}

// DashChart is one chart on the sample dashboard.
type DashChart struct {
	ID    string
	Title string
	PNG   []byte
}

// DashPage is the view model for the sample dashboard.
type DashPage struct {
	Charts []DashChart
}

// Fixed sample data for the dashboard.
var (
	dashStart = models.Snapshot{Temperature: 25, WindSpeed: 10, PrecipitationProbability: 20}
	dashEnd   = models.Snapshot{Temperature: 22, WindSpeed: 15, PrecipitationProbability: 50}
)

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, "index.html", nil)
}

// handleWeather renders the result page. Failures are shown as an error page
// with status 200.
func (s *Server) handleWeather(w http.ResponseWriter, r *http.Request) {
	req := compare.Request{
		StartLat: r.PostFormValue("start_lat"),
		StartLon: r.PostFormValue("start_lon"),
		EndLat:   r.PostFormValue("end_lat"),
		EndLon:   r.PostFormValue("end_lon"),
	}

	result, err := s.comparer.Compare(r.Context(), req)
	if err != nil {
		s.logger.Warn("route check failed",
			"kind", compare.KindOf(err),
			"error", err,
			"request_id", requestIDFrom(r.Context()),
		)
		s.renderError(w, r, userMessage(err))
		return
	}

	chart, err := s.charts.Comparison(result.Start.Weather, result.End.Weather)
	if err != nil {
		s.logger.Error("render comparison chart", "error", err)
	}

	s.render(w, r, "weather.html", WeatherPage{
		Points: []models.PointResult{result.Start, result.End},
		Chart:  chart,
	})
}

func (s *Server) handleDash(w http.ResponseWriter, r *http.Request) {
	var page DashPage
	for _, c := range []struct {
		id    string
		title string
		snap  models.Snapshot
	}{
		{"start-point-graph", "Start Point Weather", dashStart},
		{"end-point-graph", "End Point Weather", dashEnd},
	} {
		png, err := s.charts.Snapshot(c.title, c.snap)
		if err != nil {
			s.logger.Error("render dashboard chart", "chart", c.id, "error", err)
			http.Error(w, "chart unavailable", http.StatusInternalServerError)
			return
		}
		page.Charts = append(page.Charts, DashChart{ID: c.id, Title: c.title, PNG: png})
	}
	s.render(w, r, "dash.html", page)
}

func (s *Server) renderError(w http.ResponseWriter, r *http.Request, message string) {
	s.render(w, r, "error.html", ErrorPage{
		Message:   message,
		RequestID: requestIDFrom(r.Context()),
	})
}

// render executes a template into a buffer so a template failure never
// leaves a half-written page.
func (s *Server) render(w http.ResponseWriter, r *http.Request, name string, data any) {
	var buf bytes.Buffer
	if err := s.tmpl.ExecuteTemplate(&buf, name, data); err != nil {
		s.logger.Error("template error", "template", name, "error", err, "request_id", requestIDFrom(r.Context()))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(buf.Bytes())
}
