package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config captures environment driven configuration values for the booking
// portal.
type Config struct {
	HTTPPort        int
	SQLiteDSN       string
	Timezone        string
	HorizonCount    int
	ResultCap       int
	RateLimitPerSec float64
	RateLimitBurst  int
	AllowedOrigins  []string
	ShutdownTimeout time.Duration
}

// Load parses configuration values from the current process environment. A
// .env file in the working directory is applied first when present, without
// overriding variables already set.
//
// The loader applies defaults for optional fields while validating the ones
// provided and reporting localized error messages for invalid entries.
func Load() (Config, error) {
	_ = godotenv.Load()

	cfg := Config{
		HTTPPort:        8080,
		SQLiteDSN:       "file:reservas.db?_pragma=busy_timeout(5000)",
		Timezone:        "America/Sao_Paulo",
		HorizonCount:    12,
		ResultCap:       6,
		RateLimitPerSec: 20,
		RateLimitBurst:  40,
		ShutdownTimeout: 10 * time.Second,
	}

	invalid := make([]string, 0, 2)

	if portValue := strings.TrimSpace(os.Getenv("RESERVAS_HTTP_PORT")); portValue != "" {
		port, err := strconv.Atoi(portValue)
		if err != nil || port <= 0 {
			invalid = append(invalid, "RESERVAS_HTTP_PORT")
		} else {
			cfg.HTTPPort = port
		}
	}

	if dsn := strings.TrimSpace(os.Getenv("RESERVAS_SQLITE_DSN")); dsn != "" {
		cfg.SQLiteDSN = dsn
	}

	if tz := strings.TrimSpace(os.Getenv("RESERVAS_TIMEZONE")); tz != "" {
		if _, err := time.LoadLocation(tz); err != nil {
			invalid = append(invalid, "RESERVAS_TIMEZONE")
		} else {
			cfg.Timezone = tz
		}
	}

	if horizonValue := strings.TrimSpace(os.Getenv("RESERVAS_HORIZON_COUNT")); horizonValue != "" {
		horizon, err := strconv.Atoi(horizonValue)
		if err != nil || horizon <= 0 {
			invalid = append(invalid, "RESERVAS_HORIZON_COUNT")
		} else {
			cfg.HorizonCount = horizon
		}
	}

	if capValue := strings.TrimSpace(os.Getenv("RESERVAS_RESULT_CAP")); capValue != "" {
		resultCap, err := strconv.Atoi(capValue)
		if err != nil || resultCap <= 0 {
			invalid = append(invalid, "RESERVAS_RESULT_CAP")
		} else {
			cfg.ResultCap = resultCap
		}
	}

	if rateValue := strings.TrimSpace(os.Getenv("RESERVAS_RATE_LIMIT")); rateValue != "" {
		limit, err := strconv.ParseFloat(rateValue, 64)
		if err != nil || limit <= 0 {
			invalid = append(invalid, "RESERVAS_RATE_LIMIT")
		} else {
			cfg.RateLimitPerSec = limit
		}
	}

	if burstValue := strings.TrimSpace(os.Getenv("RESERVAS_RATE_BURST")); burstValue != "" {
		burst, err := strconv.Atoi(burstValue)
		if err != nil || burst <= 0 {
			invalid = append(invalid, "RESERVAS_RATE_BURST")
		} else {
			cfg.RateLimitBurst = burst
		}
	}

	if origins := strings.TrimSpace(os.Getenv("RESERVAS_ALLOWED_ORIGINS")); origins != "" {
		for _, origin := range strings.Split(origins, ",") {
			if trimmed := strings.TrimSpace(origin); trimmed != "" {
				cfg.AllowedOrigins = append(cfg.AllowedOrigins, trimmed)
			}
		}
	}

	if len(invalid) > 0 {
		return Config{}, fmt.Errorf("variáveis de ambiente com valores inválidos: %s", strings.Join(invalid, ", "))
	}

	return cfg, nil
}

// Location resolves the configured civil timezone.
func (c Config) Location() (*time.Location, error) {
	return time.LoadLocation(c.Timezone)
}
