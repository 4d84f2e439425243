package config

import (
	"log"
	"os"
	"strconv"
	"strings"
)

type Config struct {
	Port     string
	APIKey   string
	RedisURL string

	AlphaVantageAPIKey   string
	AlphaVantageBaseURL  string
	RateLimitPerMin      int
	MaxRetryAttempts     int
	IndicatorCacheTTLMin int
	ATMTolerancePercent  string
	PremiumBasis         string
}

func Load() *Config {
	cfg := &Config{
		APIKey:             os.Getenv("API_KEY"),
		RedisURL:           os.Getenv("REDIS_URL"),
		AlphaVantageAPIKey: os.Getenv("ALPHAVANTAGE_API_KEY"),
	}

	if cfg.AlphaVantageAPIKey == "" {
		log.Println("Warning: ALPHAVANTAGE_API_KEY not set")
	}
	if cfg.RedisURL == "" {
		log.Println("Warning: REDIS_URL not set, defaulting to localhost:6379")
		cfg.RedisURL = "localhost:6379"
	}

	cfg.Port = strings.TrimSpace(os.Getenv("PORT"))
	if cfg.Port == "" {
		cfg.Port = "8080"
	}

	cfg.AlphaVantageBaseURL = strings.TrimSpace(os.Getenv("ALPHAVANTAGE_BASE_URL"))
	if cfg.AlphaVantageBaseURL == "" {
		cfg.AlphaVantageBaseURL = "https://www.alphavantage.co"
	}

	cfg.RateLimitPerMin = 5
	if v := strings.TrimSpace(os.Getenv("ALPHAVANTAGE_RATE_LIMIT_PER_MIN")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.RateLimitPerMin = n
		}
	}

	cfg.MaxRetryAttempts = 3
	if v := strings.TrimSpace(os.Getenv("ALPHAVANTAGE_MAX_RETRIES")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.MaxRetryAttempts = n
		}
	}

	cfg.IndicatorCacheTTLMin = 10
	if v := strings.TrimSpace(os.Getenv("INDICATOR_CACHE_TTL_MINS")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.IndicatorCacheTTLMin = n
		}
	}

	cfg.ATMTolerancePercent = "0.5"
	if v := strings.TrimSpace(os.Getenv("OPTION_ATM_TOLERANCE_PCT")); v != "" {
		if n, err := strconv.ParseFloat(v, 64); err == nil && n >= 0 {
			cfg.ATMTolerancePercent = v
		}
	}

	cfg.PremiumBasis = strings.ToLower(strings.TrimSpace(os.Getenv("OPTION_PREMIUM_BASIS")))
	if cfg.PremiumBasis == "" {
		cfg.PremiumBasis = "mid"
	}
	switch cfg.PremiumBasis {
	case "mid", "bid", "ask", "last":
	default:
		log.Printf("Warning: unsupported OPTION_PREMIUM_BASIS=%q, defaulting to mid", cfg.PremiumBasis)
		cfg.PremiumBasis = "mid"
	}

	return cfg
}
