// Package config reads the environment into a flat struct and opens the
// database connection. Values come from the process env; main loads .env
// first via godotenv.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/cenkalti/backoff"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

type Config struct {
	Port string

	// DatabaseDSN empty means run without Postgres: reconciler state stays
	// in memory and the user catalog endpoints are not mounted.
	DatabaseDSN string

	ReportsDir string
	UploadsDir string

	TransferServiceURL string
	WebhookURL         string

	// SelfURL is where the reconciler polls the status/result endpoints.
	SelfURL string

	BatchSize    int
	PageSize     int
	PollInterval time.Duration

	LogLevel string
	LogFile  string
}

func Load() Config {
	port := getenv("PORT", "8080")
	return Config{
		Port:               port,
		DatabaseDSN:        os.Getenv("DATABASE_DSN"),
		ReportsDir:         getenv("REPORTS_DIR", "public/reports"),
		UploadsDir:         getenv("UPLOADS_DIR", "tmp/uploads"),
		TransferServiceURL: getenv("TRANSFER_SERVICE_URL", "http://localhost:4001"),
		WebhookURL:         getenv("WEBHOOK_URL", ""),
		SelfURL:            getenv("SELF_URL", "http://localhost:"+port),
		BatchSize:          getenvInt("BATCH_SIZE", 50),
		PageSize:           getenvInt("PAGE_SIZE", 10),
		PollInterval:       time.Duration(getenvInt("POLL_INTERVAL_SECONDS", 3)) * time.Second,
		LogLevel:           getenv("LOG_LEVEL", "info"),
		LogFile:            os.Getenv("LOG_FILE"),
	}
}

// InitDB opens the Postgres connection, retrying with exponential backoff so
// the server survives a database that comes up slightly later.
func InitDB(dsn string) (*gorm.DB, error) {
	var db *gorm.DB

	open := func() error {
		var err error
		db, err = gorm.Open(postgres.Open(dsn), &gorm.Config{})
		return err
	}

	policy := backoff.WithMaxRetries(backoff.NewExponentialBackOff(), 5)
	if err := backoff.Retry(open, policy); err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	return db, nil
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getenvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}
