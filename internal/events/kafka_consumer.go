package events

import (
	"context"
	"encoding/json"

	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	quoteDomain "github.com/Dartline-Delivery/service-pricing/internal/domain/quote"
	"github.com/Dartline-Delivery/service-pricing/internal/platform/kafka"
)

// TariffApplier swaps the in-memory tariff plan of this replica.
type TariffApplier interface {
	ApplyPlan(plan quoteDomain.TariffPlan) error
}

// TariffEventConsumer listens to tariff events and hot-swaps the local plan
// when another replica publishes an update.
type TariffEventConsumer struct {
	consumer *kafka.Consumer
	applier  TariffApplier
	logger   *zap.Logger
}

// NewTariffEventConsumer creates a new TariffEventConsumer. The group ID
// must be unique per replica so every instance sees every update.
func NewTariffEventConsumer(
	brokers []string,
	groupID string,
	applier TariffApplier,
	logger *zap.Logger,
) *TariffEventConsumer {
	consumer := kafka.NewConsumer(brokers, groupID, TopicTariffEvents, logger)
	return &TariffEventConsumer{
		consumer: consumer,
		applier:  applier,
		logger:   logger,
	}
}

// Start begins consuming tariff events. This blocks until the context is cancelled.
func (c *TariffEventConsumer) Start(ctx context.Context) error {
	return c.consumer.Consume(ctx, c.handleMessage)
}

// Close closes the underlying Kafka consumer.
func (c *TariffEventConsumer) Close() error {
	return c.consumer.Close()
}

func (c *TariffEventConsumer) handleMessage(ctx context.Context, msg kafkago.Message) error {
	var cloudEvent kafka.CloudEvent
	if err := json.Unmarshal(msg.Value, &cloudEvent); err != nil {
		c.logger.Error("failed to parse cloud event from tariff topic",
			zap.Error(err),
			zap.String("raw", string(msg.Value)),
		)
		return nil // Don't retry malformed messages
	}

	switch cloudEvent.Type {
	case TariffUpdated:
		return c.handleTariffUpdated(cloudEvent)
	default:
		c.logger.Debug("ignoring unhandled tariff event type",
			zap.String("type", cloudEvent.Type),
		)
		return nil
	}
}

func (c *TariffEventConsumer) handleTariffUpdated(cloudEvent kafka.CloudEvent) error {
	var evt TariffUpdatedEvent
	if err := cloudEvent.ParseData(&evt); err != nil {
		c.logger.Error("failed to parse TariffUpdatedEvent data",
			zap.Error(err),
		)
		return nil // Don't retry malformed data
	}

	if err := c.applier.ApplyPlan(planFromEntries(evt.Plan)); err != nil {
		c.logger.Error("failed to apply tariff plan from event",
			zap.Error(err),
		)
		return nil // A bad plan never becomes valid on retry
	}

	c.logger.Info("tariff plan hot-swapped from event",
		zap.Int("classes", len(evt.Plan)),
		zap.Time("published_at", cloudEvent.Time),
	)
	return nil
}

// planFromEntries converts the event representation to a domain plan.
func planFromEntries(entries map[string]TariffEntry) quoteDomain.TariffPlan {
	plan := make(quoteDomain.TariffPlan, len(entries))
	for class, entry := range entries {
		plan[quoteDomain.VehicleClass(class)] = quoteDomain.Tariff{
			RatePerKm:    entry.RatePerKm,
			MinimumPrice: entry.MinimumPrice,
			Currency:     entry.Currency,
		}
	}
	return plan
}
