// Package compare runs one route weather check: validate the submitted
// coordinates, confirm the network is up, fetch both points and classify them.
package compare

import (
	"context"
	"errors"
	"log/slog"

	"github.com/go-playground/validator/v10"
	"golang.org/x/sync/errgroup"

	"github.com/lox/routeweather/internal/forecast"
	"github.com/lox/routeweather/internal/metrics"
	"github.com/lox/routeweather/internal/models"
)

// Fetcher returns current weather for a coordinate.
type Fetcher interface {
	Fetch(ctx context.Context, coord models.Coordinate) (models.Snapshot, error)
}

// Prober reports whether the network is reachable.
type Prober interface {
	Reachable(ctx context.Context) bool
}

// Request carries the four raw form fields.
type Request struct {
	StartLat string `form:"start_lat" json:"start_lat" validate:"required"`
	StartLon string `form:"start_lon" json:"start_lon" validate:"required"`
	EndLat   string `form:"end_lat" json:"end_lat" validate:"required"`
	EndLon   string `form:"end_lon" json:"end_lon" validate:"required"`
}

type Service struct {
	fetcher    Fetcher
	prober     Prober
	thresholds forecast.Thresholds
	validate   *validator.Validate
	logger     *slog.Logger
}

func NewService(fetcher Fetcher, prober Prober, thresholds forecast.Thresholds, logger *slog.Logger) *Service {
	return &Service{
		fetcher:    fetcher,
		prober:     prober,
		thresholds: thresholds,
		validate:   validator.New(validator.WithRequiredStructEnabled()),
		logger:     logger,
	}
}

// Compare runs the full check. Every failure is returned as *Error.
func (s *Service) Compare(ctx context.Context, req Request) (*models.Result, error) {
	result, err := s.compare(ctx, req)
	outcome := "ok"
	if err != nil {
		outcome = string(KindOf(err))
	}
	metrics.ComparisonsTotal.WithLabelValues(outcome).Inc()
	return result, err
}

// KindOf extracts the failure kind from err, defaulting to KindUnexpected.
func KindOf(err error) Kind {
	var cerr *Error
	if errors.As(err, &cerr) {
		return cerr.Kind
	}
	return KindUnexpected
}

func (s *Service) compare(ctx context.Context, req Request) (*models.Result, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, &Error{Kind: KindMissingFields, Err: err}
	}

	if !models.ValidateCoordinates(req.StartLat, req.StartLon, req.EndLat, req.EndLon) {
		return nil, &Error{Kind: KindInvalidCoordinates}
	}
	start, err := models.ParseCoordinate(req.StartLat, req.StartLon)
	if err != nil {
		return nil, &Error{Kind: KindInvalidCoordinates, Point: models.PointStart, Err: err}
	}
	end, err := models.ParseCoordinate(req.EndLat, req.EndLon)
	if err != nil {
		return nil, &Error{Kind: KindInvalidCoordinates, Point: models.PointEnd, Err: err}
	}

	if !s.prober.Reachable(ctx) {
		return nil, &Error{Kind: KindNoConnectivity}
	}

	startWeather, endWeather, err := s.fetchBoth(ctx, start, end)
	if err != nil {
		return nil, err
	}

	result := &models.Result{
		Start: s.assess(models.PointStart, start, startWeather),
		End:   s.assess(models.PointEnd, end, endWeather),
	}
	s.logger.Info("compare: route checked",
		"start", start.String(), "start_verdict", result.Start.Status.Label,
		"end", end.String(), "end_verdict", result.End.Status.Label)
	return result, nil
}

func (s *Service) assess(p models.Point, c models.Coordinate, snap models.Snapshot) models.PointResult {
	verdict := forecast.ClassifySnapshot(s.thresholds, snap)
	metrics.VerdictsTotal.WithLabelValues(string(p), string(verdict.Label)).Inc()
	return models.PointResult{Point: p, Coordinate: c, Weather: snap, Status: verdict}
}

type fetchOutcome struct {
	point models.Point
	snap  models.Snapshot
	err   error
}

// fetchBoth fetches the two points concurrently. A transport failure on one
// cancels the other; data errors do not, so both data errors stay visible.
func (s *Service) fetchBoth(ctx context.Context, start, end models.Coordinate) (models.Snapshot, models.Snapshot, error) {
	outcomes := []*fetchOutcome{
		{point: models.PointStart},
		{point: models.PointEnd},
	}
	coords := []models.Coordinate{start, end}

	g, gctx := errgroup.WithContext(ctx)
	for i, out := range outcomes {
		out := out
		coord := coords[i]
		g.Go(func() error {
			out.snap, out.err = s.fetcher.Fetch(gctx, coord)
			if out.err != nil && !isDataError(out.err) {
				return out.err
			}
			return nil
		})
	}
	_ = g.Wait()

	if err := s.fetchFailure(ctx, outcomes); err != nil {
		return models.Snapshot{}, models.Snapshot{}, err
	}
	return outcomes[0].snap, outcomes[1].snap, nil
}

// fetchFailure picks the reported error with a fixed precedence: transport
// failures (start, then end) before data errors (start, then end).
func (s *Service) fetchFailure(ctx context.Context, outcomes []*fetchOutcome) error {
	for _, out := range outcomes {
		if out.err == nil || isDataError(out.err) {
			continue
		}
		// Canceled by errgroup because the other point failed first.
		if errors.Is(out.err, context.Canceled) && ctx.Err() == nil {
			continue
		}
		s.logger.Warn("compare: fetch failed", "point", out.point, "error", out.err)
		return &Error{Kind: transportKind(out.err), Point: out.point, Err: out.err}
	}
	for _, out := range outcomes {
		if isDataError(out.err) {
			s.logger.Warn("compare: no weather data", "point", out.point, "error", out.err)
			return &Error{Kind: KindData, Point: out.point, Err: out.err}
		}
	}
	return nil
}

func transportKind(err error) Kind {
	switch {
	case errors.Is(err, models.ErrConnection), errors.Is(err, context.DeadlineExceeded):
		return KindConnection
	case errors.Is(err, models.ErrAPI):
		return KindAPI
	default:
		return KindUnexpected
	}
}

func isDataError(err error) bool {
	var dataErr *models.DataError
	return errors.As(err, &dataErr)
}
