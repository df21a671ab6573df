package application

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	quoteDomain "github.com/Dartline-Delivery/service-pricing/internal/domain/quote"
	"github.com/Dartline-Delivery/service-pricing/internal/events"
	"github.com/Dartline-Delivery/service-pricing/internal/platform/domain"
	"github.com/Dartline-Delivery/service-pricing/internal/platform/kafka"
)

// TariffService owns the active tariff plan. The plan is seeded from
// configuration, overlaid with whatever the database holds at boot, and
// hot-swapped when an admin update or a tariff-updated event arrives.
// Reads vastly outnumber writes, so the plan sits behind a RWMutex.
type TariffService struct {
	repo     quoteDomain.TariffRepository
	producer EventPublisher
	logger   *zap.Logger

	mu   sync.RWMutex
	plan quoteDomain.TariffPlan
}

// NewTariffService creates a TariffService serving the given seed plan.
func NewTariffService(
	repo quoteDomain.TariffRepository,
	producer EventPublisher,
	seed quoteDomain.TariffPlan,
	logger *zap.Logger,
) (*TariffService, error) {
	if err := seed.Validate(); err != nil {
		return nil, fmt.Errorf("invalid seed tariff plan: %w", err)
	}
	return &TariffService{
		repo:     repo,
		producer: producer,
		logger:   logger,
		plan:     seed.Clone(),
	}, nil
}

// Load overlays the stored tariff plan on top of the seed. Called once at
// startup; classes absent from the database keep their seed tariff.
func (s *TariffService) Load(ctx context.Context) error {
	stored, err := s.repo.LoadPlan(ctx)
	if err != nil {
		return fmt.Errorf("failed to load tariff plan: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for class, tariff := range stored {
		s.plan[class] = tariff
	}

	s.logger.Info("tariff plan loaded",
		zap.Int("stored_classes", len(stored)),
		zap.Int("active_classes", len(s.plan)),
	)
	return nil
}

// CurrentPlan returns a copy of the active tariff plan.
func (s *TariffService) CurrentPlan() quoteDomain.TariffPlan {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.plan.Clone()
}

// TariffFor returns the active tariff for the given vehicle class.
func (s *TariffService) TariffFor(class quoteDomain.VehicleClass) (quoteDomain.Tariff, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	tariff, ok := s.plan[class]
	if !ok {
		return quoteDomain.Tariff{}, domain.NewNotFoundError("tariff", string(class))
	}
	return tariff, nil
}

// UpdatePlan upserts the given tariff entries, persists them and publishes
// the full resulting plan so other replicas can swap theirs. Returns the
// plan now in effect.
func (s *TariffService) UpdatePlan(ctx context.Context, update quoteDomain.TariffPlan) (quoteDomain.TariffPlan, error) {
	if len(update) == 0 {
		return nil, domain.NewValidationError("tariff plan must contain at least one class")
	}
	if err := update.Validate(); err != nil {
		return nil, domain.NewValidationError(err.Error())
	}
	for class, tariff := range update {
		if tariff.Currency == "" {
			return nil, domain.NewValidationError(fmt.Sprintf("tariff for %s is missing a currency", class))
		}
	}

	if err := s.repo.SavePlan(ctx, update); err != nil {
		return nil, fmt.Errorf("failed to save tariff plan: %w", err)
	}

	s.mu.Lock()
	merged := s.plan.Clone()
	for class, tariff := range update {
		merged[class] = tariff
	}
	s.plan = merged
	s.mu.Unlock()

	evt := events.TariffUpdatedEvent{
		Plan:       toTariffEntries(merged),
		OccurredAt: time.Now().UTC(),
	}
	s.publishEvent(ctx, events.TopicTariffEvents, events.TariffUpdated, evt)

	s.logger.Info("tariff plan updated",
		zap.Int("updated_classes", len(update)),
		zap.Int("active_classes", len(merged)),
	)
	return merged.Clone(), nil
}

// ApplyPlan replaces the active plan wholesale. Used by the Kafka consumer
// when another replica published an update; nothing is persisted or
// re-published here.
func (s *TariffService) ApplyPlan(plan quoteDomain.TariffPlan) error {
	if len(plan) == 0 {
		return domain.NewValidationError("tariff plan must contain at least one class")
	}
	if err := plan.Validate(); err != nil {
		return domain.NewValidationError(err.Error())
	}

	s.mu.Lock()
	s.plan = plan.Clone()
	s.mu.Unlock()

	s.logger.Info("tariff plan applied", zap.Int("active_classes", len(plan)))
	return nil
}

func (s *TariffService) publishEvent(ctx context.Context, topic, eventType string, data interface{}) {
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

// toTariffEntries converts a domain plan to its event representation.
func toTariffEntries(plan quoteDomain.TariffPlan) map[string]events.TariffEntry {
	out := make(map[string]events.TariffEntry, len(plan))
	for class, tariff := range plan {
		out[string(class)] = events.TariffEntry{
			RatePerKm:    tariff.RatePerKm,
			MinimumPrice: tariff.MinimumPrice,
			Currency:     tariff.Currency,
		}
	}
	return out
}
