package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/Dartline-Delivery/service-pricing/internal/platform/database"
	"github.com/Dartline-Delivery/service-pricing/internal/platform/domain"
)

// KafkaConfig holds Kafka connection settings.
type KafkaConfig struct {
	Brokers     []string
	GroupPrefix string
}

// RedisConfig holds Redis settings for the route cache. An empty Addr
// disables caching.
type RedisConfig struct {
	Addr     string
	CacheTTL time.Duration
}

// RoutingConfig selects and configures the routing provider.
type RoutingConfig struct {
	Provider     string // "osrm", "2gis" or "google"
	OSRMBaseURL  string
	DGISAPIKey   string
	GoogleAPIKey string
	Timeout      time.Duration
}

// TariffConfig holds the seed tariff for one vehicle class.
type TariffConfig struct {
	RatePerKm    float64
	MinimumPrice float64
}

// PricingConfig holds the seed tariffs used until the database or a
// tariff-updated event overrides them.
type PricingConfig struct {
	Currency     string
	DefaultClass string
	Tariffs      map[string]TariffConfig
}

// ServiceConfig holds all configuration for the pricing service.
type ServiceConfig struct {
	Port        string
	AppEnv      string
	DBConfig    database.PostgresConfig
	KafkaConfig KafkaConfig
	RedisConfig RedisConfig
	Routing     RoutingConfig
	Pricing     PricingConfig
}

// Load reads configuration from PRICING_-prefixed environment variables,
// falling back to development defaults.
func Load() (*ServiceConfig, error) {
	v := viper.New()
	v.SetEnvPrefix("PRICING")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("service_port", ":8080")
	v.SetDefault("app_env", "development")

	v.SetDefault("db.host", "localhost")
	v.SetDefault("db.port", "5432")
	v.SetDefault("db.user", "postgres")
	v.SetDefault("db.password", "postgres")
	v.SetDefault("db.name", "pricing")
	v.SetDefault("db.sslmode", "disable")

	v.SetDefault("kafka.brokers", "localhost:9092")
	v.SetDefault("kafka.group_prefix", "dartline.")

	v.SetDefault("redis.addr", "")
	v.SetDefault("redis.cache_ttl", "5m")

	v.SetDefault("routing.provider", "osrm")
	v.SetDefault("routing.osrm_base_url", "https://router.project-osrm.org")
	v.SetDefault("routing.dgis_api_key", "")
	v.SetDefault("routing.google_api_key", "")
	v.SetDefault("routing.timeout", "10s")

	v.SetDefault("pricing.currency", domain.CurrencyGEL)
	v.SetDefault("pricing.default_class", "car")
	v.SetDefault("pricing.bike.rate_per_km", 0.6)
	v.SetDefault("pricing.bike.minimum", 3.0)
	v.SetDefault("pricing.car.rate_per_km", 0.8)
	v.SetDefault("pricing.car.minimum", 4.0)
	v.SetDefault("pricing.van.rate_per_km", 1.2)
	v.SetDefault("pricing.van.minimum", 6.0)

	cfg := &ServiceConfig{
		Port:   v.GetString("service_port"),
		AppEnv: v.GetString("app_env"),
		DBConfig: database.PostgresConfig{
			Host:     v.GetString("db.host"),
			Port:     v.GetString("db.port"),
			User:     v.GetString("db.user"),
			Password: v.GetString("db.password"),
			DBName:   v.GetString("db.name"),
			SSLMode:  v.GetString("db.sslmode"),
		},
		KafkaConfig: KafkaConfig{
			Brokers:     strings.Split(v.GetString("kafka.brokers"), ","),
			GroupPrefix: v.GetString("kafka.group_prefix"),
		},
		RedisConfig: RedisConfig{
			Addr:     v.GetString("redis.addr"),
			CacheTTL: v.GetDuration("redis.cache_ttl"),
		},
		Routing: RoutingConfig{
			Provider:     v.GetString("routing.provider"),
			OSRMBaseURL:  v.GetString("routing.osrm_base_url"),
			DGISAPIKey:   v.GetString("routing.dgis_api_key"),
			GoogleAPIKey: v.GetString("routing.google_api_key"),
			Timeout:      v.GetDuration("routing.timeout"),
		},
		Pricing: PricingConfig{
			Currency:     v.GetString("pricing.currency"),
			DefaultClass: v.GetString("pricing.default_class"),
			Tariffs: map[string]TariffConfig{
				"bike": {RatePerKm: v.GetFloat64("pricing.bike.rate_per_km"), MinimumPrice: v.GetFloat64("pricing.bike.minimum")},
				"car":  {RatePerKm: v.GetFloat64("pricing.car.rate_per_km"), MinimumPrice: v.GetFloat64("pricing.car.minimum")},
				"van":  {RatePerKm: v.GetFloat64("pricing.van.rate_per_km"), MinimumPrice: v.GetFloat64("pricing.van.minimum")},
			},
		},
	}

	return cfg, nil
}
