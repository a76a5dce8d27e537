// Package openmeteo fetches current conditions from the Open-Meteo forecast
// API and reduces them to the four metrics the route check needs.
package openmeteo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/sony/gobreaker/v2"

	"github.com/lox/routeweather/internal/httputil"
	"github.com/lox/routeweather/internal/metrics"
	"github.com/lox/routeweather/internal/models"
)

const DefaultBaseURL = "https://api.open-meteo.com/v1/forecast"

const currentVariables = "temperature_2m,relative_humidity_2m,wind_speed_10m,precipitation_probability"

// maxBodySize caps how much of a response is read.
const maxBodySize = 1 << 20

type Client struct {
	baseURL    string
	httpClient *http.Client
	breaker    *gobreaker.CircuitBreaker[models.Snapshot]
	retries    uint64
	newBackOff func() backoff.BackOff
	logger     *slog.Logger
}

type Option func(*Client)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithRetries sets how many times a 429 or 5xx response is retried.
// The default is zero: every failure is reported immediately.
func WithRetries(n uint) Option {
	return func(c *Client) {
		c.retries = uint64(n)
	}
}

// WithBackOff overrides the retry delay policy. Tests use a constant backoff.
func WithBackOff(fn func() backoff.BackOff) Option {
	return func(c *Client) {
		c.newBackOff = fn
	}
}

// WithBreaker replaces the circuit breaker settings. ReadyToTrip and
// IsSuccessful are filled in when left nil.
func WithBreaker(st gobreaker.Settings) Option {
	return func(c *Client) {
		c.breaker = newBreaker(st)
	}
}

func NewClient(baseURL string, logger *slog.Logger, opts ...Option) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	c := &Client{
		baseURL:    baseURL,
		httpClient: httputil.NewClient(0),
		newBackOff: func() backoff.BackOff { return backoff.NewExponentialBackOff() },
		logger:     logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.breaker == nil {
		c.breaker = newBreaker(gobreaker.Settings{
			Name:     "open-meteo",
			Interval: 60 * time.Second,
			Timeout:  30 * time.Second,
		})
	}
	return c
}

func newBreaker(st gobreaker.Settings) *gobreaker.CircuitBreaker[models.Snapshot] {
	if st.ReadyToTrip == nil {
		st.ReadyToTrip = func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures > 5
		}
	}
	if st.IsSuccessful == nil {
		// Bad coordinates and abandoned requests say nothing about upstream health.
		st.IsSuccessful = func(err error) bool {
			var dataErr *models.DataError
			return err == nil || errors.As(err, &dataErr) || errors.Is(err, context.Canceled)
		}
	}
	return gobreaker.NewCircuitBreaker[models.Snapshot](st)
}

// Fetch returns the current weather at coord. Errors wrap models.ErrConnection
// or models.ErrAPI, or are a *models.DataError when the API rejects the
// coordinate or omits a metric.
func (c *Client) Fetch(ctx context.Context, coord models.Coordinate) (models.Snapshot, error) {
	snap, err := c.breaker.Execute(func() (models.Snapshot, error) {
		return c.fetchWithRetry(ctx, coord)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		metrics.WeatherAPICallsTotal.WithLabelValues("circuit_open").Inc()
		return models.Snapshot{}, fmt.Errorf("%w: %w", models.ErrAPI, err)
	}
	return snap, err
}

// retryableError marks upstream responses worth another attempt.
type retryableError struct {
	err error
}

func (e *retryableError) Error() string { return e.err.Error() }
func (e *retryableError) Unwrap() error { return e.err }

func (c *Client) fetchWithRetry(ctx context.Context, coord models.Coordinate) (models.Snapshot, error) {
	var snap models.Snapshot
	attempt := 0
	operation := func() error {
		attempt++
		s, err := c.fetchOnce(ctx, coord)
		if err != nil {
			var re *retryableError
			if errors.As(err, &re) {
				c.logger.Warn("open-meteo: retryable failure", "coord", coord.String(), "attempt", attempt, "error", err)
				return err
			}
			return backoff.Permanent(err)
		}
		snap = s
		return nil
	}

	bo := backoff.WithContext(backoff.WithMaxRetries(c.newBackOff(), c.retries), ctx)
	if err := backoff.Retry(operation, bo); err != nil {
		return models.Snapshot{}, err
	}
	return snap, nil
}

func (c *Client) requestURL(coord models.Coordinate) string {
	q := url.Values{}
	q.Set("latitude", strconv.FormatFloat(coord.Lat, 'f', -1, 64))
	q.Set("longitude", strconv.FormatFloat(coord.Lon, 'f', -1, 64))
	q.Set("current", currentVariables)
	q.Set("temperature_unit", "celsius")
	q.Set("wind_speed_unit", "kmh")
	q.Set("timezone", "UTC")
	return c.baseURL + "?" + q.Encode()
}

type forecastResponse struct {
	Error   bool            `json:"error"`
	Reason  string          `json:"reason"`
	Current *currentWeather `json:"current"`
}

type currentWeather struct {
	Time              string   `json:"time"`
	Temperature       *float64 `json:"temperature_2m"`
	Humidity          *float64 `json:"relative_humidity_2m"`
	WindSpeed         *float64 `json:"wind_speed_10m"`
	PrecipProbability *float64 `json:"precipitation_probability"`
}

func (c *Client) fetchOnce(ctx context.Context, coord models.Coordinate) (models.Snapshot, error) {
	start := time.Now()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.requestURL(coord), nil)
	if err != nil {
		return models.Snapshot{}, fmt.Errorf("%w: create request: %w", models.ErrAPI, err)
	}
	req.Header.Set("User-Agent", httputil.UserAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.observe("connection_error", start)
		if ctxErr := ctx.Err(); ctxErr != nil {
			return models.Snapshot{}, fmt.Errorf("fetch weather: %w", ctxErr)
		}
		return models.Snapshot{}, fmt.Errorf("%w: %w", models.ErrConnection, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		c.observe("api_error", start)
		return models.Snapshot{}, fmt.Errorf("%w: read body: %w", models.ErrAPI, err)
	}

	var data forecastResponse
	decodeErr := json.Unmarshal(body, &data)

	switch {
	case resp.StatusCode == http.StatusBadRequest && decodeErr == nil && data.Error:
		c.observe("data_error", start)
		return models.Snapshot{}, &models.DataError{Reason: data.Reason}
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
		c.observe("api_error", start)
		return models.Snapshot{}, &retryableError{
			err: fmt.Errorf("%w: status %d", models.ErrAPI, resp.StatusCode),
		}
	case resp.StatusCode != http.StatusOK:
		c.observe("api_error", start)
		return models.Snapshot{}, fmt.Errorf("%w: status %d: %s", models.ErrAPI, resp.StatusCode, truncate(body, 200))
	case decodeErr != nil:
		c.observe("api_error", start)
		return models.Snapshot{}, fmt.Errorf("%w: unmarshal: %w", models.ErrAPI, decodeErr)
	}

	snap, err := data.snapshot()
	if err != nil {
		c.observe("data_error", start)
		return models.Snapshot{}, err
	}
	c.observe("ok", start)
	return snap, nil
}

func (r forecastResponse) snapshot() (models.Snapshot, error) {
	if r.Error {
		return models.Snapshot{}, &models.DataError{Reason: r.Reason}
	}
	cur := r.Current
	if cur == nil {
		return models.Snapshot{}, &models.DataError{Reason: "no current conditions in response"}
	}
	missing := func(name string) error {
		return &models.DataError{Reason: "missing " + name}
	}
	switch {
	case cur.Temperature == nil:
		return models.Snapshot{}, missing("temperature_2m")
	case cur.WindSpeed == nil:
		return models.Snapshot{}, missing("wind_speed_10m")
	case cur.PrecipProbability == nil:
		return models.Snapshot{}, missing("precipitation_probability")
	case cur.Humidity == nil:
		return models.Snapshot{}, missing("relative_humidity_2m")
	}
	return models.Snapshot{
		Temperature:              *cur.Temperature,
		WindSpeed:                *cur.WindSpeed,
		PrecipitationProbability: *cur.PrecipProbability,
		Humidity:                 *cur.Humidity,
	}, nil
}

func (c *Client) observe(status string, start time.Time) {
	metrics.WeatherAPICallsTotal.WithLabelValues(status).Inc()
	metrics.WeatherAPILatency.WithLabelValues(status).Observe(time.Since(start).Seconds())
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
