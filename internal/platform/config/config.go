package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Server captures process-level configuration. Built from environment
// variables so main stays lean; every backing service is optional and the
// process degrades to in-memory equivalents when one is absent.
type Server struct {
	Addr          string
	JWTSigningKey string

	// StandardsFile overrides the built-in compliance table when set.
	StandardsFile string

	// CheckTimeout bounds each verification check.
	CheckTimeout time.Duration

	// DeviceFingerprinting derives fingerprints from User-Agent headers when
	// the caller does not supply one.
	DeviceFingerprinting bool

	PostgresURL string
	Redis       RedisConfig
	Kafka       KafkaConfig
}

// RedisConfig configures the result cache. Empty URL disables caching.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	CacheTTL     time.Duration
}

// KafkaConfig configures the audit trail publisher. Empty broker list
// disables publishing.
type KafkaConfig struct {
	Brokers    []string
	AuditTopic string

	// QueueSize bounds the in-process audit queue between the verification
	// path and the broker.
	QueueSize int
}

// FromEnv builds a Server config from environment variables.
func FromEnv() Server {
	jwtSigningKey := os.Getenv("SIGNET_JWT_SIGNING_KEY")
	if jwtSigningKey == "" {
		// Development default - must be overridden in production.
		jwtSigningKey = "dev-secret-key-change-in-production"
	}

	return Server{
		Addr:                 envOr("SIGNET_ADDR", ":8080"),
		JWTSigningKey:        jwtSigningKey,
		StandardsFile:        os.Getenv("SIGNET_STANDARDS_FILE"),
		CheckTimeout:         envDuration("SIGNET_CHECK_TIMEOUT", 2*time.Second),
		DeviceFingerprinting: os.Getenv("SIGNET_DEVICE_FINGERPRINTING") != "false",
		PostgresURL:          os.Getenv("SIGNET_POSTGRES_URL"),
		Redis: RedisConfig{
			URL:          os.Getenv("SIGNET_REDIS_URL"),
			PoolSize:     envInt("SIGNET_REDIS_POOL_SIZE", 10),
			MinIdleConns: envInt("SIGNET_REDIS_MIN_IDLE_CONNS", 2),
			DialTimeout:  envDuration("SIGNET_REDIS_DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout:  envDuration("SIGNET_REDIS_READ_TIMEOUT", 3*time.Second),
			WriteTimeout: envDuration("SIGNET_REDIS_WRITE_TIMEOUT", 3*time.Second),
			CacheTTL:     envDuration("SIGNET_RESULT_CACHE_TTL", 5*time.Minute),
		},
		Kafka: KafkaConfig{
			Brokers:    splitNonEmpty(os.Getenv("SIGNET_KAFKA_BROKERS")),
			AuditTopic: envOr("SIGNET_AUDIT_TOPIC", "signet.verification.audit"),
			QueueSize:  envInt("SIGNET_AUDIT_QUEUE_SIZE", 256),
		},
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

func splitNonEmpty(csv string) []string {
	if csv == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(csv, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
