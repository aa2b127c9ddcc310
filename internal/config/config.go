package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"carpool/internal/domain"
)

// Config holds all configuration for the application.
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	NewRelic NewRelicConfig
	Policy   Policy
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// DatabaseConfig holds PostgreSQL configuration.
type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// RedisConfig holds Redis configuration.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// NewRelicConfig holds New Relic configuration.
type NewRelicConfig struct {
	AppName    string
	LicenseKey string
	Enabled    bool
}

// RefundMode selects how much of a paid booking is refunded.
type RefundMode string

const (
	RefundNone    RefundMode = "NONE"
	RefundFull    RefundMode = "FULL"
	RefundPartial RefundMode = "PARTIAL"
)

// Policy holds the business policy knobs consulted by the core. Components
// receive it through an injected provider instead of reading configuration
// ambiently.
type Policy struct {
	SeatHoldDuration      time.Duration
	MaxActiveBookings     int
	CommissionType        domain.CommissionType
	CommissionValue       float64
	CancellationDeadline  time.Duration
	RefundMode            RefundMode
	RefundPercent         float64
	MinPayoutAmount       int64
	AllowedPayoutMethods  []string
	AutoApprovePayouts    bool
	AllowNegativeBalance  bool
	DefaultSearchRadiusKm float64
	RequireServiceArea    bool
}

// PayoutMethodAllowed reports whether the method is in the allowed list.
func (p Policy) PayoutMethodAllowed(method string) bool {
	for _, m := range p.AllowedPayoutMethods {
		if strings.EqualFold(m, method) {
			return true
		}
	}
	return false
}

// StaticPolicyProvider serves the policy loaded at startup.
type StaticPolicyProvider struct {
	policy Policy
}

// NewStaticPolicyProvider creates a provider serving a fixed policy.
func NewStaticPolicyProvider(policy Policy) *StaticPolicyProvider {
	return &StaticPolicyProvider{policy: policy}
}

// Policy returns the configured policy.
func (p *StaticPolicyProvider) Policy() Policy {
	return p.policy
}

// Load loads configuration from environment variables.
func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Port:         getEnv("SERVER_PORT", "8080"),
			ReadTimeout:  getDurationEnv("SERVER_READ_TIMEOUT", 10*time.Second),
			WriteTimeout: getDurationEnv("SERVER_WRITE_TIMEOUT", 10*time.Second),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "postgres"),
			DBName:   getEnv("DB_NAME", "carpool"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getIntEnv("REDIS_DB", 0),
		},
		NewRelic: NewRelicConfig{
			AppName:    getEnv("NEW_RELIC_APP_NAME", "carpool-booking-core"),
			LicenseKey: getEnv("NEW_RELIC_LICENSE_KEY", ""),
			Enabled:    getBoolEnv("NEW_RELIC_ENABLED", false),
		},
		Policy: Policy{
			SeatHoldDuration:      getDurationEnv("POLICY_SEAT_HOLD", 15*time.Minute),
			MaxActiveBookings:     getIntEnv("POLICY_MAX_ACTIVE_BOOKINGS", 3),
			CommissionType:        domain.CommissionType(getEnv("POLICY_COMMISSION_TYPE", string(domain.CommissionPercent))),
			CommissionValue:       getFloatEnv("POLICY_COMMISSION_VALUE", 10),
			CancellationDeadline:  getDurationEnv("POLICY_CANCELLATION_DEADLINE", 2*time.Hour),
			RefundMode:            RefundMode(getEnv("POLICY_REFUND_MODE", string(RefundFull))),
			RefundPercent:         getFloatEnv("POLICY_REFUND_PERCENT", 100),
			MinPayoutAmount:       getInt64Env("POLICY_MIN_PAYOUT_AMOUNT", 1000),
			AllowedPayoutMethods:  getListEnv("POLICY_PAYOUT_METHODS", []string{"BANK_TRANSFER", "UPI"}),
			AutoApprovePayouts:    getBoolEnv("POLICY_AUTO_APPROVE_PAYOUTS", false),
			AllowNegativeBalance:  getBoolEnv("POLICY_ALLOW_NEGATIVE_BALANCE", false),
			DefaultSearchRadiusKm: getFloatEnv("POLICY_DEFAULT_SEARCH_RADIUS_KM", 25),
			RequireServiceArea:    getBoolEnv("POLICY_REQUIRE_SERVICE_AREA", false),
		},
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getInt64Env(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getFloatEnv(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 64); err == nil {
			return floatVal
		}
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func getListEnv(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		parts := strings.Split(value, ",")
		out := make([]string, 0, len(parts))
		for _, p := range parts {
			if trimmed := strings.TrimSpace(p); trimmed != "" {
				out = append(out, trimmed)
			}
		}
		if len(out) > 0 {
			return out
		}
	}
	return defaultValue
}
