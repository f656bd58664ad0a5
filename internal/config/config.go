package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/taxirent/bookingservice/internal/calendar"
	"github.com/taxirent/bookingservice/internal/circuitbreaker"
	"github.com/taxirent/bookingservice/internal/pricing"
	"github.com/taxirent/bookingservice/internal/ratelimit"
	"github.com/taxirent/bookingservice/internal/tracing"
)

// Config holds all configuration for the booking service
type Config struct {
	AppName      string             `mapstructure:"app_name"`
	Booking      BookingConfig      `mapstructure:"booking"`
	Catalog      CatalogConfig      `mapstructure:"catalog"`
	Availability AvailabilityConfig `mapstructure:"availability"`
	Postgres     PostgresConfig     `mapstructure:"postgres"`
	Redis        RedisConfig        `mapstructure:"redis"`
	Kafka        KafkaConfig        `mapstructure:"kafka"`
	Auth         AuthConfig         `mapstructure:"auth"`
	RateLimit    ratelimit.Config   `mapstructure:"rate_limit"`
	Metrics      MetricsConfig      `mapstructure:"metrics"`
	Tracing      tracing.Config     `mapstructure:"tracing"`
	Log          LogConfig          `mapstructure:"log"`
}

// BookingConfig holds calendar and pricing settings
type BookingConfig struct {
	TimeZone             string   `mapstructure:"time_zone"`
	NonWorkingDay        string   `mapstructure:"non_working_day"`
	WeekStart            string   `mapstructure:"week_start"`
	Holidays             []string `mapstructure:"holidays"`
	SpecialDiscountCents int64    `mapstructure:"special_discount_cents"`
	FeeBasisPoints       int64    `mapstructure:"fee_basis_points"`
	FeeRoundingCents     int64    `mapstructure:"fee_rounding_cents"`
}

type CatalogConfig struct {
	Path string `mapstructure:"path"`
}

// AvailabilityConfig selects where occupied dates come from
type AvailabilityConfig struct {
	Source string          `mapstructure:"source"` // static or postgres
	Static []OccupiedDates `mapstructure:"static"`
	// Breaker guards the postgres source.
	Breaker circuitbreaker.Config `mapstructure:"breaker"`
}

// OccupiedDates lists dates a car cannot be booked. CarID "*" applies to
// every car.
type OccupiedDates struct {
	CarID string   `mapstructure:"car_id"`
	Dates []string `mapstructure:"dates"`
}

type PostgresConfig struct {
	DSN      string `mapstructure:"dsn"`
	MaxConns int32  `mapstructure:"max_conns"`
}

type RedisConfig struct {
	Enabled    bool          `mapstructure:"enabled"`
	Addr       string        `mapstructure:"addr"`
	DB         int           `mapstructure:"db"`
	Password   string        `mapstructure:"password"`
	SessionTTL time.Duration `mapstructure:"session_ttl"`
}

type KafkaConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Brokers  []string      `mapstructure:"brokers"`
	Topic    string        `mapstructure:"topic"`
	ClientID string        `mapstructure:"client_id"`
	Timeout  time.Duration `mapstructure:"timeout"`
}

type AuthConfig struct {
	Mode          string `mapstructure:"mode"` // jwt or dev
	PublicKeyPEM  string `mapstructure:"public_key_pem"`
	PublicKeyPath string `mapstructure:"public_key_path"`
	Issuer        string `mapstructure:"issuer"`
}

type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Addr    string `mapstructure:"addr"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
}

// Load loads configuration from file and environment variables. An empty
// configPath reads the environment only.
func Load(configPath string) (*Config, error) {
	v := viper.New()
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &config, nil
}

func setDefaults(v *viper.Viper) {
	def := pricing.DefaultConfig()
	breaker := circuitbreaker.DefaultConfig()
	limits := ratelimit.DefaultConfig()
	traces := tracing.DefaultConfig()

	v.SetDefault("app_name", "booking-calendar")
	v.SetDefault("booking.time_zone", "Asia/Hong_Kong")
	v.SetDefault("booking.non_working_day", "sunday")
	v.SetDefault("booking.week_start", "sunday")
	v.SetDefault("booking.holidays", []string{})
	v.SetDefault("booking.special_discount_cents", def.SpecialDiscountCents)
	v.SetDefault("booking.fee_basis_points", def.FeeBasisPoints)
	v.SetDefault("booking.fee_rounding_cents", def.FeeRoundingCents)
	v.SetDefault("catalog.path", "data/cars.csv")
	v.SetDefault("availability.source", "static")
	v.SetDefault("postgres.max_conns", 10)
	v.SetDefault("redis.enabled", false)
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.session_ttl", 24*time.Hour)
	v.SetDefault("kafka.enabled", false)
	v.SetDefault("kafka.topic", "booking-events")
	v.SetDefault("kafka.client_id", "booking-calendar")
	v.SetDefault("kafka.timeout", 10*time.Second)
	v.SetDefault("auth.mode", "dev")
	v.SetDefault("availability.breaker.max_failures", breaker.MaxFailures)
	v.SetDefault("availability.breaker.timeout", breaker.Timeout)
	v.SetDefault("availability.breaker.success_threshold", breaker.SuccessThreshold)
	v.SetDefault("rate_limit.enabled", limits.Enabled)
	v.SetDefault("rate_limit.limit", limits.Limit)
	v.SetDefault("rate_limit.window", limits.Window)
	v.SetDefault("tracing.enabled", false)
	v.SetDefault("tracing.service_name", traces.ServiceName)
	v.SetDefault("tracing.environment", traces.Environment)
	v.SetDefault("tracing.jaeger_endpoint", traces.JaegerEndpoint)
	v.SetDefault("tracing.sampling_ratio", traces.SamplingRatio)
	v.SetDefault("metrics.enabled", false)
	v.SetDefault("metrics.addr", ":9090")
	v.SetDefault("log.level", "info")
}

// Validate checks the configuration for values the service cannot start with
func (c *Config) Validate() error {
	if c.AppName == "" {
		return fmt.Errorf("app_name is required")
	}
	if _, err := time.LoadLocation(c.Booking.TimeZone); err != nil {
		return fmt.Errorf("booking.time_zone is invalid: %w", err)
	}
	if _, err := calendar.ParseWeekday(c.Booking.NonWorkingDay); err != nil {
		return fmt.Errorf("booking.non_working_day: %w", err)
	}
	if _, err := calendar.ParseWeekday(c.Booking.WeekStart); err != nil {
		return fmt.Errorf("booking.week_start: %w", err)
	}
	if _, err := calendar.ParseDateSet(c.Booking.Holidays); err != nil {
		return fmt.Errorf("booking.holidays: %w", err)
	}
	if c.Booking.SpecialDiscountCents < 0 {
		return fmt.Errorf("booking.special_discount_cents must not be negative")
	}
	if c.Booking.FeeBasisPoints < 0 {
		return fmt.Errorf("booking.fee_basis_points must not be negative")
	}
	if c.Booking.FeeRoundingCents <= 0 {
		return fmt.Errorf("booking.fee_rounding_cents must be greater than 0")
	}

	switch c.Availability.Source {
	case "static":
	case "postgres":
		if c.Postgres.DSN == "" {
			return fmt.Errorf("postgres.dsn is required for the postgres availability source")
		}
		if c.Postgres.MaxConns <= 0 {
			return fmt.Errorf("postgres.max_conns must be greater than 0")
		}
	default:
		return fmt.Errorf("availability.source must be static or postgres, got %q", c.Availability.Source)
	}
	for _, o := range c.Availability.Static {
		if o.CarID == "" {
			return fmt.Errorf("availability.static entries need a car_id")
		}
		if _, err := calendar.ParseDateSet(o.Dates); err != nil {
			return fmt.Errorf("availability.static[%s]: %w", o.CarID, err)
		}
	}

	if c.Redis.Enabled && c.Redis.Addr == "" {
		return fmt.Errorf("redis.addr is required")
	}
	if c.Kafka.Enabled {
		if len(c.Kafka.Brokers) == 0 {
			return fmt.Errorf("kafka.brokers is required")
		}
		if c.Kafka.Topic == "" {
			return fmt.Errorf("kafka.topic is required")
		}
	}

	switch c.Auth.Mode {
	case "dev":
	case "jwt":
		if c.Auth.PublicKeyPEM == "" && c.Auth.PublicKeyPath == "" {
			return fmt.Errorf("auth.public_key_pem or auth.public_key_path is required in jwt mode")
		}
	default:
		return fmt.Errorf("auth.mode must be jwt or dev, got %q", c.Auth.Mode)
	}

	if c.RateLimit.Enabled && (c.RateLimit.Limit <= 0 || c.RateLimit.Window <= 0) {
		return fmt.Errorf("rate_limit.limit and rate_limit.window must be greater than 0")
	}
	if c.Tracing.Enabled {
		if c.Tracing.JaegerEndpoint == "" {
			return fmt.Errorf("tracing.jaeger_endpoint is required")
		}
		if c.Tracing.SamplingRatio < 0 || c.Tracing.SamplingRatio > 1 {
			return fmt.Errorf("tracing.sampling_ratio must be between 0 and 1")
		}
	}

	if c.Metrics.Enabled && c.Metrics.Addr == "" {
		return fmt.Errorf("metrics.addr is required")
	}
	return nil
}

// Location returns the booking time zone. Validate has already checked it.
func (c *BookingConfig) Location() *time.Location {
	loc, err := time.LoadLocation(c.TimeZone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// CalendarConfig builds the calendar settings shared by every car. Occupied
// dates are per car and filled in by the caller.
func (c *BookingConfig) CalendarConfig() calendar.Config {
	holidays, _ := calendar.ParseDateSet(c.Holidays)
	nonWorking, _ := calendar.ParseWeekday(c.NonWorkingDay)
	weekStart, _ := calendar.ParseWeekday(c.WeekStart)
	return calendar.Config{
		Holidays:      holidays,
		NonWorkingDay: nonWorking,
		WeekStart:     weekStart,
		Location:      c.Location(),
	}
}

// Pricing returns the price calculator settings
func (c *BookingConfig) Pricing() pricing.Config {
	return pricing.Config{
		SpecialDiscountCents: c.SpecialDiscountCents,
		FeeBasisPoints:       c.FeeBasisPoints,
		FeeRoundingCents:     c.FeeRoundingCents,
	}
}
