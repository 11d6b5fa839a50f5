package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Environment  string             `mapstructure:"environment"`
	LogLevel     string             `mapstructure:"log_level"`
	Server       ServerConfig       `mapstructure:"server"`
	Database     DatabaseConfig     `mapstructure:"database"`
	Redis        RedisConfig        `mapstructure:"redis"`
	JWT          JWTConfig          `mapstructure:"jwt"`
	Gateway      GatewayConfig      `mapstructure:"gateway"`
	Settlement   SettlementConfig   `mapstructure:"settlement"`
	Cashout      CashoutConfig      `mapstructure:"cashout"`
	Notification NotificationConfig `mapstructure:"notification"`
}

type ServerConfig struct {
	Port            int      `mapstructure:"port"`
	Host            string   `mapstructure:"host"`
	ReadTimeout     int      `mapstructure:"read_timeout"`
	WriteTimeout    int      `mapstructure:"write_timeout"`
	AllowedOrigins  []string `mapstructure:"allowed_origins"`
	RateLimitPerMin int      `mapstructure:"rate_limit_per_min"`
	PublicBaseURL   string   `mapstructure:"public_base_url"`
}

type DatabaseConfig struct {
	URL             string `mapstructure:"url"`
	Host            string `mapstructure:"host"`
	Port            int    `mapstructure:"port"`
	Name            string `mapstructure:"name"`
	User            string `mapstructure:"user"`
	Password        string `mapstructure:"password"`
	SSLMode         string `mapstructure:"ssl_mode"`
	MaxOpenConns    int    `mapstructure:"max_open_conns"`
	MaxIdleConns    int    `mapstructure:"max_idle_conns"`
	ConnMaxLifetime int    `mapstructure:"conn_max_lifetime"`
	MigrationsPath  string `mapstructure:"migrations_path"`
}

type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	PoolSize int    `mapstructure:"pool_size"`
}

type JWTConfig struct {
	Secret string `mapstructure:"secret"`
	Issuer string `mapstructure:"issuer"`
}

// GatewayConfig configures the hosted payment gateway
type GatewayConfig struct {
	BaseURL       string `mapstructure:"base_url"`
	APIKey        string `mapstructure:"api_key"`
	SpaceID       string `mapstructure:"space_id"`
	WebhookSecret string `mapstructure:"webhook_secret"`
	Timeout       int    `mapstructure:"timeout"`
	MaxRetries    int    `mapstructure:"max_retries"`
}

// SettlementConfig configures the escrow/investment settlement engine
type SettlementConfig struct {
	PlatformFeePercent    float64 `mapstructure:"platform_fee_percent"`
	PartialPaymentPercent float64 `mapstructure:"partial_payment_percent"`
	MaxRevisions          int     `mapstructure:"max_revisions"`
	DefaultCurrency       string  `mapstructure:"default_currency"`
	AllowDevBypass        bool    `mapstructure:"allow_dev_bypass"`
	SweepEnabled          bool    `mapstructure:"sweep_enabled"`
	SweepSchedule         string  `mapstructure:"sweep_schedule"`
	SweepMaxAgeHours      int     `mapstructure:"sweep_max_age_hours"`
}

// CashoutConfig configures the cashout service
type CashoutConfig struct {
	EligibleRoles []string `mapstructure:"eligible_roles"`
	MinAmount     float64  `mapstructure:"min_amount"`
}

type NotificationConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

// Load reads configuration from config files and the environment
func Load() (*Config, error) {
	// Load .env file if it exists (ignore errors if file doesn't exist)
	godotenv.Load()

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./configs")
	viper.AddConfigPath(".")

	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	overrideFromEnv()

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	if config.Database.URL == "" {
		config.Database.URL = fmt.Sprintf(
			"postgres://%s:%s@%s:%d/%s?sslmode=%s",
			config.Database.User,
			config.Database.Password,
			config.Database.Host,
			config.Database.Port,
			config.Database.Name,
			config.Database.SSLMode,
		)
	}

	if err := validate(&config); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &config, nil
}

func setDefaults() {
	viper.SetDefault("environment", "development")
	viper.SetDefault("log_level", "info")

	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.host", "0.0.0.0")
	viper.SetDefault("server.read_timeout", 30)
	viper.SetDefault("server.write_timeout", 30)
	viper.SetDefault("server.rate_limit_per_min", 100)
	viper.SetDefault("server.allowed_origins", []string{"*"})
	viper.SetDefault("server.public_base_url", "http://localhost:8080")

	viper.SetDefault("database.host", "localhost")
	viper.SetDefault("database.port", 5432)
	viper.SetDefault("database.name", "craftlink")
	viper.SetDefault("database.user", "postgres")
	viper.SetDefault("database.ssl_mode", "disable")
	viper.SetDefault("database.max_open_conns", 25)
	viper.SetDefault("database.max_idle_conns", 5)
	viper.SetDefault("database.conn_max_lifetime", 300)
	viper.SetDefault("database.migrations_path", "migrations")

	viper.SetDefault("redis.host", "localhost")
	viper.SetDefault("redis.port", 6379)
	viper.SetDefault("redis.db", 0)
	viper.SetDefault("redis.pool_size", 10)

	viper.SetDefault("jwt.issuer", "craftlink")

	viper.SetDefault("gateway.timeout", 30)
	viper.SetDefault("gateway.max_retries", 3)

	viper.SetDefault("settlement.platform_fee_percent", 5.0)
	viper.SetDefault("settlement.partial_payment_percent", 50.0)
	viper.SetDefault("settlement.max_revisions", 2)
	viper.SetDefault("settlement.default_currency", "SLE")
	viper.SetDefault("settlement.allow_dev_bypass", false)
	viper.SetDefault("settlement.sweep_enabled", true)
	viper.SetDefault("settlement.sweep_schedule", "@every 15m")
	viper.SetDefault("settlement.sweep_max_age_hours", 24)

	viper.SetDefault("cashout.eligible_roles", []string{"creative", "mentor"})
	viper.SetDefault("cashout.min_amount", 1.0)

	viper.SetDefault("notification.enabled", true)
}

func overrideFromEnv() {
	if v := os.Getenv("DATABASE_URL"); v != "" {
		viper.Set("database.url", v)
	}
	if v := os.Getenv("REDIS_URL"); v != "" {
		viper.Set("redis.host", v)
	}
	if v := os.Getenv("JWT_SECRET"); v != "" {
		viper.Set("jwt.secret", v)
	}
	if v := os.Getenv("GATEWAY_API_KEY"); v != "" {
		viper.Set("gateway.api_key", v)
	}
	if v := os.Getenv("GATEWAY_WEBHOOK_SECRET"); v != "" {
		viper.Set("gateway.webhook_secret", v)
	}
	if v := os.Getenv("GATEWAY_BASE_URL"); v != "" {
		viper.Set("gateway.base_url", v)
	}
}

func validate(cfg *Config) error {
	if cfg.JWT.Secret == "" {
		return fmt.Errorf("jwt secret is required")
	}

	if cfg.Settlement.PlatformFeePercent < 0 || cfg.Settlement.PlatformFeePercent >= 100 {
		return fmt.Errorf("platform fee percent must be in [0, 100)")
	}

	if cfg.Settlement.PartialPaymentPercent <= 0 || cfg.Settlement.PartialPaymentPercent > 100 {
		return fmt.Errorf("partial payment percent must be in (0, 100]")
	}

	if cfg.Environment == "production" {
		if cfg.Settlement.AllowDevBypass {
			return fmt.Errorf("settlement dev bypass must not be enabled in production")
		}
		if cfg.Gateway.APIKey == "" {
			return fmt.Errorf("gateway api key is required in production")
		}
		if cfg.Gateway.WebhookSecret == "" {
			return fmt.Errorf("gateway webhook secret is required in production")
		}
	}

	return nil
}

// IsProduction reports whether the service runs with a production configuration
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}
