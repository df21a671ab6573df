//go:build integration

package main_test

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	kafkamodule "github.com/testcontainers/testcontainers-go/modules/kafka"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/Dartline-Delivery/service-pricing/internal/application"
	quoteDomain "github.com/Dartline-Delivery/service-pricing/internal/domain/quote"
	pricingEvents "github.com/Dartline-Delivery/service-pricing/internal/events"
	"github.com/Dartline-Delivery/service-pricing/internal/platform/kafka"
	"github.com/Dartline-Delivery/service-pricing/internal/repository"
	"github.com/Dartline-Delivery/service-pricing/internal/routing"
)

// testInfra holds shared test infrastructure.
type testInfra struct {
	DB           *gorm.DB
	KafkaBrokers []string
	Cleanup      func()
}

// pricingStack holds wired-up pricing service components.
type pricingStack struct {
	Quotes          *application.QuoteService
	Tariffs         *application.TariffService
	Consumer        *pricingEvents.TariffEventConsumer
	CleanupProducer func()
}

// setupContainers starts PostgreSQL and Kafka testcontainers and returns a connected GORM DB.
func setupContainers(t *testing.T) *testInfra {
	t.Helper()
	ctx := context.Background()

	// Start PostgreSQL container with log-based wait strategy.
	pgReq := testcontainers.ContainerRequest{
		Image:        "postgres:16-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "test",
			"POSTGRES_PASSWORD": "test",
			"POSTGRES_DB":       "test_pricing",
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(60 * time.Second),
	}
	pgContainer, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: pgReq,
		Started:          true,
	})
	require.NoError(t, err, "failed to start PostgreSQL container")

	pgHost, err := pgContainer.Host(ctx)
	require.NoError(t, err)
	pgPort, err := pgContainer.MappedPort(ctx, "5432")
	require.NoError(t, err)

	dsn := fmt.Sprintf("host=%s port=%s user=test password=test dbname=test_pricing sslmode=disable", pgHost, pgPort.Port())

	// Poll until GORM can actually connect and ping.
	var db *gorm.DB
	require.Eventually(t, func() bool {
		var err error
		db, err = gorm.Open(postgres.Open(dsn), &gorm.Config{})
		if err != nil {
			return false
		}
		sqlDB, err := db.DB()
		if err != nil {
			return false
		}
		return sqlDB.Ping() == nil
	}, 30*time.Second, 1*time.Second, "PostgreSQL not ready for connections")

	require.NoError(t, db.AutoMigrate(&repository.QuoteModel{}, &repository.TariffModel{}))

	// Start Kafka container using confluent-local (supports KRaft natively).
	kafkaContainer, err := kafkamodule.Run(ctx, "confluentinc/confluent-local:7.5.0")
	require.NoError(t, err, "failed to start Kafka container")

	kafkaBrokers, err := kafkaContainer.Brokers(ctx)
	require.NoError(t, err, "failed to get Kafka brokers")

	// Pre-create required topics.
	createTopics(t, kafkaBrokers, pricingEvents.TopicQuoteEvents, pricingEvents.TopicTariffEvents)

	cleanup := func() {
		if err := kafkaContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate Kafka container: %v", err)
		}
		if err := pgContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate PostgreSQL container: %v", err)
		}
	}

	return &testInfra{
		DB:           db,
		KafkaBrokers: kafkaBrokers,
		Cleanup:      cleanup,
	}
}

// startOSRMStub serves a fixed OSRM route response so quote computations run
// against a deterministic local routing provider.
func startOSRMStub(t *testing.T, distanceMeters, durationSeconds float64) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w,
			`{"code":"Ok","routes":[{"distance":%f,"duration":%f,"geometry":{"coordinates":[[44.8271,41.7151],[44.8015,41.6938]]}}]}`,
			distanceMeters, durationSeconds,
		)
	}))
	t.Cleanup(server.Close)
	return server
}

// setupPricingStack wires up the full pricing service stack.
func setupPricingStack(t *testing.T, db *gorm.DB, brokers []string, provider routing.Provider) *pricingStack {
	t.Helper()
	logger, _ := zap.NewDevelopment()

	quoteRepo := repository.NewGormQuoteRepository(db)
	tariffRepo := repository.NewGormTariffRepository(db)
	producer := kafka.NewProducer(brokers, logger)

	seed := quoteDomain.TariffPlan{
		quoteDomain.VehicleClassBike: {RatePerKm: 0.6, MinimumPrice: 3, Currency: "GEL"},
		quoteDomain.VehicleClassCar:  {RatePerKm: 0.8, MinimumPrice: 4, Currency: "GEL"},
		quoteDomain.VehicleClassVan:  {RatePerKm: 1.2, MinimumPrice: 6, Currency: "GEL"},
	}
	tariffSvc, err := application.NewTariffService(tariffRepo, producer, seed, logger)
	require.NoError(t, err)
	require.NoError(t, tariffSvc.Load(context.Background()))

	quoteSvc := application.NewQuoteService(quoteRepo, tariffSvc, provider, producer, logger)

	groupID := fmt.Sprintf("test-pricing-%s", uuid.New().String()[:8])
	consumer := pricingEvents.NewTariffEventConsumer(brokers, groupID, tariffSvc, logger)

	return &pricingStack{
		Quotes:          quoteSvc,
		Tariffs:         tariffSvc,
		Consumer:        consumer,
		CleanupProducer: func() { _ = producer.Close() },
	}
}

// publishTestEvent publishes a CloudEvent to Kafka.
func publishTestEvent(t *testing.T, brokers []string, topic, source, eventType string, data interface{}) {
	t.Helper()
	logger, _ := zap.NewDevelopment()
	producer := kafka.NewProducer(brokers, logger)
	defer func() { _ = producer.Close() }()

	ce, err := kafka.NewCloudEvent(source, eventType, data)
	require.NoError(t, err, "failed to create cloud event")

	err = producer.PublishEvent(context.Background(), topic, ce)
	require.NoError(t, err, "failed to publish event")
}

// waitForTariffRate polls the tariff service until the class prices at the
// expected rate, proving the consumer hot-swapped the plan.
func waitForTariffRate(t *testing.T, svc *application.TariffService, class quoteDomain.VehicleClass, wantRate float64, timeout time.Duration) {
	t.Helper()
	require.Eventually(t, func() bool {
		tariff, err := svc.TariffFor(class)
		return err == nil && tariff.RatePerKm == wantRate
	}, timeout, 200*time.Millisecond, "tariff for %s never reached rate %v", class, wantRate)
}

// loadQuoteModel reads a quote row back by ID.
func loadQuoteModel(t *testing.T, db *gorm.DB, id uuid.UUID) repository.QuoteModel {
	t.Helper()
	var model repository.QuoteModel
	require.NoError(t, db.Where("id = ?", id).First(&model).Error, "quote row not found")
	return model
}

// consumeOneEvent reads from a Kafka topic until it finds an event of the expected type.
func consumeOneEvent(t *testing.T, brokers []string, topic, expectedType string, timeout time.Duration) kafka.CloudEvent {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	groupID := fmt.Sprintf("test-assert-%s", uuid.New().String()[:8])
	reader := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:     brokers,
		GroupID:     groupID,
		Topic:       topic,
		MinBytes:    1,
		MaxBytes:    10e6,
		StartOffset: kafkago.FirstOffset,
	})
	defer func() { _ = reader.Close() }()

	for {
		msg, err := reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				t.Fatalf("timed out waiting for event type %q on topic %q", expectedType, topic)
			}
			continue
		}
		ce, err := kafka.ParseCloudEvent(msg.Value)
		if err != nil {
			continue
		}
		if ce.Type == expectedType {
			return ce
		}
	}
}

// createTopics pre-creates Kafka topics so producers don't fail with "Unknown Topic".
func createTopics(t *testing.T, brokers []string, topics ...string) {
	t.Helper()
	conn, err := kafkago.Dial("tcp", brokers[0])
	require.NoError(t, err, "failed to dial Kafka for topic creation")
	defer conn.Close()

	controller, err := conn.Controller()
	require.NoError(t, err, "failed to get Kafka controller")

	controllerConn, err := kafkago.Dial("tcp", net.JoinHostPort(controller.Host, fmt.Sprintf("%d", controller.Port)))
	require.NoError(t, err, "failed to connect to Kafka controller")
	defer controllerConn.Close()

	topicConfigs := make([]kafkago.TopicConfig, len(topics))
	for i, topic := range topics {
		topicConfigs[i] = kafkago.TopicConfig{
			Topic:             topic,
			NumPartitions:     1,
			ReplicationFactor: 1,
		}
	}
	err = controllerConn.CreateTopics(topicConfigs...)
	require.NoError(t, err, "failed to create Kafka topics")

	// Give Kafka a moment to propagate topic metadata.
	time.Sleep(1 * time.Second)
}
