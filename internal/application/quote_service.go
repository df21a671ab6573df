package application

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	quoteDomain "github.com/Dartline-Delivery/service-pricing/internal/domain/quote"
	"github.com/Dartline-Delivery/service-pricing/internal/events"
	"github.com/Dartline-Delivery/service-pricing/internal/format"
	"github.com/Dartline-Delivery/service-pricing/internal/platform/domain"
	"github.com/Dartline-Delivery/service-pricing/internal/platform/kafka"
	"github.com/Dartline-Delivery/service-pricing/internal/routing"
)

// EventPublisher publishes CloudEvents to a Kafka topic.
type EventPublisher interface {
	PublishEvent(ctx context.Context, topic string, event kafka.CloudEvent) error
}

// TariffSource yields the active tariff for a vehicle class.
type TariffSource interface {
	TariffFor(class quoteDomain.VehicleClass) (quoteDomain.Tariff, error)
}

// CreateQuoteRequest holds the data needed to compute a new quote.
type CreateQuoteRequest struct {
	Origin       quoteDomain.GeoPoint    `json:"origin" binding:"required"`
	Destination  quoteDomain.GeoPoint    `json:"destination" binding:"required"`
	VehicleClass string                  `json:"vehicle_class"`
	Package      quoteDomain.PackageSpec `json:"package"`
}

// QuoteDTO is the response representation of a quote. The *Text fields are
// pre-rendered for display clients.
type QuoteDTO struct {
	ID           uuid.UUID               `json:"id"`
	QuoteNumber  string                  `json:"quote_number"`
	Status       string                  `json:"status"`
	Origin       quoteDomain.GeoPoint    `json:"origin"`
	Destination  quoteDomain.GeoPoint    `json:"destination"`
	VehicleClass string                  `json:"vehicle_class"`
	Package      quoteDomain.PackageSpec `json:"package"`
	Route        *quoteDomain.RouteSpec  `json:"route,omitempty"`
	Price        *float64                `json:"price,omitempty"`
	Currency     string                  `json:"currency"`
	FailReason   string                  `json:"fail_reason,omitempty"`
	PriceText    string                  `json:"price_text"`
	DistanceText string                  `json:"distance_text,omitempty"`
	TimeText     string                  `json:"time_text,omitempty"`
	Version      int64                   `json:"version"`
	CreatedAt    time.Time               `json:"created_at"`
	UpdatedAt    time.Time               `json:"updated_at"`
}

// QuoteService is the application service orchestrating quote use cases.
type QuoteService struct {
	repo     quoteDomain.QuoteRepository
	tariffs  TariffSource
	provider routing.Provider
	producer EventPublisher
	logger   *zap.Logger
}

// NewQuoteService creates a new QuoteService.
func NewQuoteService(
	repo quoteDomain.QuoteRepository,
	tariffs TariffSource,
	provider routing.Provider,
	producer EventPublisher,
	logger *zap.Logger,
) *QuoteService {
	return &QuoteService{
		repo:     repo,
		tariffs:  tariffs,
		provider: provider,
		producer: producer,
		logger:   logger,
	}
}

// ComputeQuote runs the full pricing pipeline for one origin/destination
// pair: create a pending quote, ask the routing provider for a route, then
// price it. A context cancelled while the provider works marks the quote
// superseded; a provider failure marks it failed. Both non-cancellation
// outcomes return the quote itself, with the result in its status.
func (s *QuoteService) ComputeQuote(
	ctx context.Context,
	origin, destination quoteDomain.GeoPoint,
	class quoteDomain.VehicleClass,
	pkg quoteDomain.PackageSpec,
) (*quoteDomain.Quote, error) {
	tariff, err := s.tariffs.TariffFor(class)
	if err != nil {
		return nil, err
	}

	q, err := quoteDomain.NewQuote(origin, destination, class, pkg, tariff.Currency)
	if err != nil {
		return nil, err
	}

	if err := s.repo.Save(ctx, q); err != nil {
		return nil, fmt.Errorf("failed to save quote: %w", err)
	}

	route, err := s.provider.Route(ctx, origin, destination)
	if err != nil {
		if ctx.Err() != nil {
			s.supersedeQuote(q)
			return nil, ctx.Err()
		}
		if ferr := s.failQuote(ctx, q, err); ferr != nil {
			return nil, ferr
		}
		return q, nil
	}
	if ctx.Err() != nil {
		// The provider resolved after a newer request took over.
		s.supersedeQuote(q)
		return nil, ctx.Err()
	}

	roundedKm := quoteDomain.RoundKilometers(route.DistanceMeters)
	price := tariff.Price(roundedKm)
	spec := quoteDomain.RouteSpec{
		DistanceMeters:  route.DistanceMeters,
		DurationSeconds: route.EffectiveDuration().Seconds(),
		RoundedKm:       roundedKm,
		Provider:        s.provider.Name(),
		Geometry:        route.Geometry,
	}

	if err := q.MarkPriced(spec, price); err != nil {
		return nil, err
	}
	q.IncrementVersion()
	if err := s.repo.Update(ctx, q); err != nil {
		return nil, fmt.Errorf("failed to update quote: %w", err)
	}

	evt := events.QuoteComputedEvent{
		QuoteID:         q.ID(),
		QuoteNumber:     q.QuoteNumber(),
		VehicleClass:    string(q.VehicleClass()),
		OriginLat:       origin.Latitude,
		OriginLng:       origin.Longitude,
		DestinationLat:  destination.Latitude,
		DestinationLng:  destination.Longitude,
		DistanceMeters:  spec.DistanceMeters,
		RoundedKm:       spec.RoundedKm,
		DurationSeconds: spec.DurationSeconds,
		Provider:        spec.Provider,
		Price:           price,
		Currency:        q.Currency(),
		OccurredAt:      time.Now().UTC(),
	}
	s.publishEvent(ctx, events.TopicQuoteEvents, events.QuoteComputed, evt)

	return q, nil
}

// CreateQuote computes a quote for an API client. An empty vehicle class is
// derived from the package.
func (s *QuoteService) CreateQuote(ctx context.Context, req CreateQuoteRequest) (*QuoteDTO, error) {
	class := quoteDomain.VehicleClass(req.VehicleClass)
	if req.VehicleClass == "" {
		class = quoteDomain.DetermineVehicleClass(req.Package)
	}

	q, err := s.ComputeQuote(ctx, req.Origin, req.Destination, class, req.Package)
	if err != nil {
		return nil, err
	}

	result := toQuoteDTO(q)
	return &result, nil
}

// GetQuote retrieves a single quote by ID.
func (s *QuoteService) GetQuote(ctx context.Context, quoteID uuid.UUID) (*QuoteDTO, error) {
	q, err := s.repo.FindByID(ctx, quoteID)
	if err != nil {
		return nil, err
	}
	result := toQuoteDTO(q)
	return &result, nil
}

// GetQuoteByNumber retrieves a single quote by its quote number.
func (s *QuoteService) GetQuoteByNumber(ctx context.Context, number string) (*QuoteDTO, error) {
	q, err := s.repo.FindByNumber(ctx, number)
	if err != nil {
		return nil, err
	}
	result := toQuoteDTO(q)
	return &result, nil
}

// ListQuotes returns a paginated list of all quotes (admin).
func (s *QuoteService) ListQuotes(ctx context.Context, page, limit int) (*domain.PaginatedResult[QuoteDTO], error) {
	quotes, total, err := s.repo.ListAll(ctx, page, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list quotes: %w", err)
	}

	dtos := make([]QuoteDTO, len(quotes))
	for i, q := range quotes {
		dtos[i] = toQuoteDTO(q)
	}

	result := domain.NewPaginatedResult(dtos, total, page, limit)
	return &result, nil
}

// ListQuotesByStatus returns a paginated list of quotes in the given status.
func (s *QuoteService) ListQuotesByStatus(ctx context.Context, status string, page, limit int) (*domain.PaginatedResult[QuoteDTO], error) {
	parsed, err := quoteDomain.ParseQuoteStatus(status)
	if err != nil {
		return nil, domain.NewValidationError(err.Error())
	}

	quotes, total, err := s.repo.ListByStatus(ctx, parsed, page, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list quotes by status: %w", err)
	}

	dtos := make([]QuoteDTO, len(quotes))
	for i, q := range quotes {
		dtos[i] = toQuoteDTO(q)
	}

	result := domain.NewPaginatedResult(dtos, total, page, limit)
	return &result, nil
}

// QuoteStatsDTO holds quote statistics for the admin dashboard.
type QuoteStatsDTO struct {
	TotalQuotes int64            `json:"total_quotes"`
	ByStatus    map[string]int64 `json:"by_status"`
}

// GetQuoteStats returns aggregate quote statistics (admin).
func (s *QuoteService) GetQuoteStats(ctx context.Context) (*QuoteStatsDTO, error) {
	counts, err := s.repo.CountByStatus(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get quote stats: %w", err)
	}

	var total int64
	for _, c := range counts {
		total += c
	}

	return &QuoteStatsDTO{
		TotalQuotes: total,
		ByStatus:    counts,
	}, nil
}

// --- Helpers ---

// supersedeQuote records that a newer request replaced this one before the
// provider answered. The session context is already cancelled, so the write
// runs on its own deadline; nothing is published for superseded quotes.
func (s *QuoteService) supersedeQuote(q *quoteDomain.Quote) {
	if err := q.MarkSuperseded(); err != nil {
		s.logger.Warn("could not mark quote superseded",
			zap.String("quote_id", q.ID().String()),
			zap.Error(err),
		)
		return
	}
	q.IncrementVersion()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.repo.Update(ctx, q); err != nil {
		s.logger.Warn("failed to persist superseded quote",
			zap.String("quote_id", q.ID().String()),
			zap.Error(err),
		)
	}
}

func (s *QuoteService) failQuote(ctx context.Context, q *quoteDomain.Quote, cause error) error {
	if err := q.MarkFailed(cause.Error()); err != nil {
		return err
	}
	q.IncrementVersion()
	if err := s.repo.Update(ctx, q); err != nil {
		return fmt.Errorf("failed to update quote: %w", err)
	}

	evt := events.QuoteFailedEvent{
		QuoteID:     q.ID(),
		QuoteNumber: q.QuoteNumber(),
		Reason:      q.FailReason(),
		OccurredAt:  time.Now().UTC(),
	}
	s.publishEvent(ctx, events.TopicQuoteEvents, events.QuoteFailed, evt)

	s.logger.Info("quote failed",
		zap.String("quote_id", q.ID().String()),
		zap.String("provider", s.provider.Name()),
		zap.String("reason", q.FailReason()),
	)
	return nil
}

func (s *QuoteService) publishEvent(ctx context.Context, topic, eventType string, data interface{}) {
	cloudEvent, err := kafka.NewCloudEvent("service-pricing", eventType, data)
	if err != nil {
		s.logger.Error("failed to create cloud event",
			zap.String("event_type", eventType),
			zap.Error(err),
		)
		return
	}

	if err := s.producer.PublishEvent(ctx, topic, cloudEvent); err != nil {
		s.logger.Error("failed to publish event",
			zap.String("topic", topic),
			zap.String("event_type", eventType),
			zap.Error(err),
		)
	}
}

func toQuoteDTO(q *quoteDomain.Quote) QuoteDTO {
	dto := QuoteDTO{
		ID:           q.ID(),
		QuoteNumber:  q.QuoteNumber(),
		Status:       string(q.Status()),
		Origin:       q.Origin(),
		Destination:  q.Destination(),
		VehicleClass: string(q.VehicleClass()),
		Package:      q.PackageSpec(),
		Route:        q.RouteSpec(),
		Price:        q.PriceUnits(),
		Currency:     q.Currency(),
		FailReason:   q.FailReason(),
		PriceText:    format.Money(q.PriceUnits()),
		Version:      q.Version(),
		CreatedAt:    q.CreatedAt(),
		UpdatedAt:    q.UpdatedAt(),
	}
	if rs := q.RouteSpec(); rs != nil {
		dto.DistanceText = format.Distance(rs.RoundedKm)
		if text, ok := format.Duration(&rs.DurationSeconds); ok {
			dto.TimeText = text
		}
	}
	return dto
}
