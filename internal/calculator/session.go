package calculator

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	quoteDomain "github.com/Dartline-Delivery/service-pricing/internal/domain/quote"
	"github.com/Dartline-Delivery/service-pricing/internal/format"
	"github.com/Dartline-Delivery/service-pricing/internal/platform/domain"
)

// QuoteComputer resolves one origin/destination pair into a quote. A
// cancelled context aborts the computation; the returned quote carries the
// outcome in its status.
type QuoteComputer interface {
	ComputeQuote(ctx context.Context, origin, destination quoteDomain.GeoPoint, class quoteDomain.VehicleClass, pkg quoteDomain.PackageSpec) (*quoteDomain.Quote, error)
}

// Options tunes a session. Zero values fall back to DefaultOptions.
type Options struct {
	Class       quoteDomain.VehicleClass
	Style       RouteStyle
	FailureText string
	StartHint   string
	FinishHint  string
	PriceLabel  string
}

// DefaultOptions returns the stock session settings.
func DefaultOptions() Options {
	return Options{
		Class:       quoteDomain.VehicleClassCar,
		Style:       RouteStyle{StrokeWidth: 5, StrokeColor: "#1E98FF", StrokeOpacity: 0.8},
		FailureText: "Could not build a route. Try a different point.",
		StartHint:   "Pickup",
		FinishHint:  "Dropoff",
		PriceLabel:  "Delivery",
	}
}

// Session drives one calculator widget. It tracks a start and a finish
// point and keeps at most one route computation in flight: placing or
// moving a point while a computation runs supersedes it, and the
// superseded run's outcome never reaches the sink.
type Session struct {
	mu     sync.Mutex
	start  *quoteDomain.GeoPoint
	finish *quoteDomain.GeoPoint
	gen    uint64
	cancel context.CancelFunc

	computer QuoteComputer
	sink     MapSink
	opts     Options
	logger   *zap.Logger
	wg       sync.WaitGroup
}

// NewSession creates a session over the given computer and sink.
func NewSession(computer QuoteComputer, sink MapSink, opts Options, logger *zap.Logger) *Session {
	defaults := DefaultOptions()
	if opts.Class == "" {
		opts.Class = defaults.Class
	}
	if opts.Style == (RouteStyle{}) {
		opts.Style = defaults.Style
	}
	if opts.FailureText == "" {
		opts.FailureText = defaults.FailureText
	}
	if opts.StartHint == "" {
		opts.StartHint = defaults.StartHint
	}
	if opts.FinishHint == "" {
		opts.FinishHint = defaults.FinishHint
	}
	if opts.PriceLabel == "" {
		opts.PriceLabel = defaults.PriceLabel
	}
	return &Session{
		computer: computer,
		sink:     sink,
		opts:     opts,
		logger:   logger,
	}
}

// HandleClick processes a map click. The first click places the start
// marker, the second places the finish marker and triggers a computation,
// and every later click relocates the finish and recomputes.
func (s *Session) HandleClick(point quoteDomain.GeoPoint) error {
	if !point.Valid() {
		return domain.NewValidationError("click outside valid coordinates")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.start == nil {
		s.start = &point
		s.push("place_marker", s.sink.PlaceMarker(MarkerStart, point, s.opts.StartHint))
		return nil
	}

	s.finish = &point
	s.push("place_marker", s.sink.PlaceMarker(MarkerFinish, point, s.opts.FinishHint))
	s.recomputeLocked()
	return nil
}

// MovePoint relocates an already placed marker, as after a drag, and
// recomputes when both points are set.
func (s *Session) MovePoint(role MarkerRole, point quoteDomain.GeoPoint) error {
	if !role.IsValid() {
		return domain.NewValidationError(fmt.Sprintf("unknown marker role: %s", role))
	}
	if !point.Valid() {
		return domain.NewValidationError("drag outside valid coordinates")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	switch role {
	case MarkerStart:
		if s.start == nil {
			return domain.NewValidationError("no start marker placed")
		}
		s.start = &point
	case MarkerFinish:
		if s.finish == nil {
			return domain.NewValidationError("no finish marker placed")
		}
		s.finish = &point
	}

	if s.start != nil && s.finish != nil {
		s.recomputeLocked()
	}
	return nil
}

// Reset forgets both points and orphans any in-flight computation.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.supersedeLocked()
	s.start = nil
	s.finish = nil
}

// Close cancels any in-flight computation and waits for it to drain.
func (s *Session) Close() {
	s.mu.Lock()
	s.supersedeLocked()
	s.mu.Unlock()
	s.wg.Wait()
}

// supersedeLocked cancels the current computation and bumps the generation
// so its late completion is discarded. Callers must hold s.mu.
func (s *Session) supersedeLocked() {
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	s.gen++
}

// recomputeLocked supersedes the in-flight computation, if any, and starts
// a new one for the current points. Callers must hold s.mu.
func (s *Session) recomputeLocked() {
	s.supersedeLocked()

	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	gen := s.gen
	start, finish := *s.start, *s.finish

	s.wg.Add(1)
	go s.compute(ctx, gen, start, finish)
}

func (s *Session) compute(ctx context.Context, gen uint64, start, finish quoteDomain.GeoPoint) {
	defer s.wg.Done()

	q, err := s.computer.ComputeQuote(ctx, start, finish, s.opts.Class, quoteDomain.PackageSpec{})

	s.mu.Lock()
	defer s.mu.Unlock()

	// A newer computation owns the map now; this outcome is dropped without
	// touching the sink.
	if gen != s.gen {
		return
	}
	s.cancel = nil

	if err != nil {
		s.logger.Warn("quote computation failed", zap.Error(err))
		s.presentFailureLocked()
		return
	}

	switch q.Status() {
	case quoteDomain.StatusPriced:
		s.presentQuoteLocked(q)
	default:
		s.presentFailureLocked()
	}
}

// presentQuoteLocked pushes a priced quote to the map: route polyline,
// viewport, price balloon and the info panel.
func (s *Session) presentQuoteLocked(q *quoteDomain.Quote) {
	spec := q.RouteSpec()
	points := spec.Geometry
	if len(points) == 0 {
		points = []quoteDomain.GeoPoint{q.Origin(), q.Destination()}
	}

	s.push("draw_route", s.sink.DrawRoute(points, s.opts.Style))
	s.push("fit_bounds", s.sink.FitBounds(points))

	price := format.Money(q.PriceUnits()) + " " + q.Currency()
	s.push("open_balloon", s.sink.OpenBalloon(MarkerFinish, s.opts.PriceLabel+": "+price, true))

	distance := format.Distance(spec.RoundedKm)
	update := PanelUpdate{Distance: &distance, Cost: &price}
	seconds := spec.DurationSeconds
	if text, ok := format.Duration(&seconds); ok {
		update.Time = &text
	}
	s.push("update_panel", s.sink.UpdatePanel(update))
}

// presentFailureLocked reports a routing failure on the finish balloon.
// The info panel keeps whatever it showed before.
func (s *Session) presentFailureLocked() {
	s.push("open_balloon", s.sink.OpenBalloon(MarkerFinish, s.opts.FailureText, true))
}

// push logs a failed sink delivery and moves on.
func (s *Session) push(op string, err error) {
	if err != nil {
		s.logger.Warn("map sink push failed", zap.String("op", op), zap.Error(err))
	}
}
