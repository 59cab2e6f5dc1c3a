package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	pstrings "mintgate/pkg/platform/strings"
)

// Server captures process-level configuration. The minting budgets are fixed
// at construction: the user channel budget is derived once as
// MaxMintingLimit - PlatformMintingLimit and never recomputed afterwards.
type Server struct {
	Addr          string
	AdminToken    string
	OwnerAddress  string
	JWTSigningKey string

	MaxMintingLimit      uint64
	PlatformMintingLimit uint64

	PostgresURL  string
	RedisURL     string
	KafkaBrokers []string
	KafkaTopic   string
}

// FromEnv builds a Server config from environment variables so main stays lean.
func FromEnv() (Server, error) {
	cfg := Server{
		Addr:          envOr("MINTGATE_ADDR", ":8080"),
		AdminToken:    os.Getenv("MINTGATE_ADMIN_TOKEN"),
		OwnerAddress:  envOr("MINTGATE_OWNER_ADDRESS", "owner"),
		JWTSigningKey: envOr("MINTGATE_JWT_SIGNING_KEY", "dev-secret-key-change-in-production"),
		PostgresURL:   os.Getenv("MINTGATE_POSTGRES_URL"),
		RedisURL:      os.Getenv("MINTGATE_REDIS_URL"),
		KafkaTopic:    envOr("MINTGATE_KAFKA_TOPIC", "mintgate.events"),
	}

	if brokers := os.Getenv("MINTGATE_KAFKA_BROKERS"); brokers != "" {
		cfg.KafkaBrokers = pstrings.DedupeAndTrim(strings.Split(brokers, ","))
	}

	var err error
	cfg.MaxMintingLimit, err = envUint("MINTGATE_MAX_MINTING_LIMIT", 10000)
	if err != nil {
		return Server{}, err
	}
	cfg.PlatformMintingLimit, err = envUint("MINTGATE_PLATFORM_MINTING_LIMIT", 1000)
	if err != nil {
		return Server{}, err
	}
	if cfg.PlatformMintingLimit > cfg.MaxMintingLimit {
		return Server{}, fmt.Errorf("platform minting limit %d exceeds max minting limit %d",
			cfg.PlatformMintingLimit, cfg.MaxMintingLimit)
	}

	return cfg, nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envUint(key string, fallback uint64) (uint64, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.ParseUint(v, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", key, err)
	}
	return n, nil
}
