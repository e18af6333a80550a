package config

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Config defines the chargenet service configuration.
type Config struct {
	HTTP struct {
		Port string `yaml:"port" env:"CHARGENET_HTTP_PORT"`
	} `yaml:"http"`
	Database struct {
		DSN string `yaml:"dsn" env:"CHARGENET_POSTGRES_DSN"`
	} `yaml:"database"`
	Redis struct {
		Addr     string `yaml:"addr" env:"CHARGENET_REDIS_ADDR"`
		Password string `yaml:"password" env:"CHARGENET_REDIS_PASSWORD"`
		TTL      int    `yaml:"ttlSeconds" env:"CHARGENET_REDIS_TTL"`
	} `yaml:"redis"`
	Auth struct {
		JWTSecret  string `yaml:"jwtSecret" env:"CHARGENET_JWT_SECRET"`
		TokenTTL   int    `yaml:"tokenTTLMinutes" env:"CHARGENET_TOKEN_TTL_MINUTES"`
		BcryptCost int    `yaml:"bcryptCost" env:"CHARGENET_BCRYPT_COST"`
	} `yaml:"auth"`
	Tariff struct {
		CostPerKWh    float64 `yaml:"costPerKwh" env:"CHARGENET_TARIFF_PER_KWH"`
		CostPerMinute float64 `yaml:"costPerMinute" env:"CHARGENET_TARIFF_PER_MINUTE"`
		AdminFee      float64 `yaml:"adminFee" env:"CHARGENET_TARIFF_ADMIN_FEE"`
	} `yaml:"tariff"`
}

// Load reads configuration and applies defaults.
func Load() (*Config, error) {
	cfg := &Config{}
	cfg.HTTP.Port = "8080"
	cfg.Redis.Addr = "localhost:6379"
	cfg.Redis.TTL = 86400
	cfg.Auth.TokenTTL = 60
	cfg.Tariff.CostPerKWh = 2500
	cfg.Tariff.CostPerMinute = 100
	cfg.Tariff.AdminFee = 2000

	if err := load(cfg); err != nil {
		return nil, err
	}

	if strings.TrimSpace(cfg.Database.DSN) == "" {
		return nil, errors.New("config: database dsn required")
	}
	if strings.TrimSpace(cfg.Auth.JWTSecret) == "" {
		return nil, errors.New("config: jwt secret required")
	}
	return cfg, nil
}

// HTTPAddress returns :port style.
func (c *Config) HTTPAddress() string {
	port := strings.TrimSpace(c.HTTP.Port)
	if port == "" {
		port = "8080"
	}
	if strings.HasPrefix(port, ":") {
		return port
	}
	return fmt.Sprintf(":%s", port)
}

// TokenTTL returns the access token lifetime.
func (c *Config) TokenTTL() time.Duration {
	if c.Auth.TokenTTL <= 0 {
		return time.Hour
	}
	return time.Duration(c.Auth.TokenTTL) * time.Minute
}

// ActiveSessionTTL returns the redis cache ttl.
func (c *Config) ActiveSessionTTL() time.Duration {
	if c.Redis.TTL <= 0 {
		return 24 * time.Hour
	}
	return time.Duration(c.Redis.TTL) * time.Second
}
