package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all service configuration loaded from environment variables.
type Config struct {
	HTTPPort       int
	GRPCPort       int
	ServiceName    string
	DB             DBConfig
	Kafka          KafkaConfig
	Redis          RedisConfig
	Quote          QuoteConfig
	Auth           AuthConfig
	Telemetry      TelemetryConfig
	CreditBureau   CreditBureauConfig
	LogLevel       string
	LogFormat      string
	GRPCReflection bool
	TLSCertFile    string
	TLSKeyFile     string
}

// DBConfig holds database connection parameters.
type DBConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	SSLMode  string
	MaxConns int32
	MinConns int32
}

// KafkaConfig holds Kafka broker configuration. An empty AssetTopic disables
// the asset valuation consumer.
type KafkaConfig struct {
	Brokers       []string
	Topic         string
	AssetTopic    string
	ConsumerGroup string
	SASLMechanism string
	SASLUsername  string
	SASLPassword  string
	TLS           bool
}

// RedisConfig holds the quote cache and idempotency store connection. An
// empty Addr disables both.
type RedisConfig struct {
	Addr           string
	Password       string
	DB             int
	TTL            time.Duration
	IdempotencyTTL time.Duration
}

// QuoteConfig holds quote lifecycle settings.
type QuoteConfig struct {
	Validity time.Duration
	// Currency values assets the catalog has no valuation feed for.
	Currency string
}

// AuthConfig holds JWT validation settings.
type AuthConfig struct {
	Issuer        string
	Secret        string
	PublicKeyPEM  string
	PublicKeyFile string
}

// TelemetryConfig holds OpenTelemetry configuration.
type TelemetryConfig struct {
	OTLPEndpoint string
	OTLPInsecure bool
	SampleRatio  float64
}

// CreditBureauConfig points the credit profile adapter at a bureau. An empty
// BaseURL selects the simulated bureau.
type CreditBureauConfig struct {
	BaseURL    string
	APIKey     string
	Timeout    time.Duration
	MaxRetries int
}

// Validate checks required configuration values.
func (c Config) Validate() error {
	var errs []error
	if c.DB.Password == "" {
		errs = append(errs, errors.New("DB_PASSWORD environment variable is required"))
	}
	if c.Quote.Validity <= 0 {
		errs = append(errs, errors.New("QUOTE_VALIDITY must be positive"))
	}
	if c.Auth.Secret == "" && c.Auth.PublicKeyPEM == "" && c.Auth.PublicKeyFile == "" {
		errs = append(errs, errors.New("one of JWT_SECRET, JWT_PUBLIC_KEY or JWT_PUBLIC_KEY_FILE is required"))
	}
	if c.Kafka.SASLUsername != "" && c.Kafka.SASLPassword == "" {
		errs = append(errs, errors.New("KAFKA_SASL_PASSWORD is required with KAFKA_SASL_USERNAME"))
	}
	if (c.TLSCertFile == "") != (c.TLSKeyFile == "") {
		errs = append(errs, errors.New("TLS_CERT_FILE and TLS_KEY_FILE must be set together"))
	}
	return errors.Join(errs...)
}

// Load reads configuration from environment variables with defaults.
func Load() Config {
	return Config{
		HTTPPort:    getEnvInt("HTTP_PORT", 8091),
		GRPCPort:    getEnvInt("GRPC_PORT", 9091),
		ServiceName: getEnv("SERVICE_NAME", "rwa-pricing-service"),
		DB: DBConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnvInt("DB_PORT", 5432),
			User:     getEnv("DB_USER", "bib"),
			Password: getEnv("DB_PASSWORD", ""),
			Name:     getEnv("DB_NAME", "bib_rwa_pricing"),
			SSLMode:  getEnv("DB_SSLMODE", "require"),
			MaxConns: int32(getEnvInt("DB_MAX_CONNS", 20)),
			MinConns: int32(getEnvInt("DB_MIN_CONNS", 5)),
		},
		Kafka: KafkaConfig{
			Brokers:       getEnvList("KAFKA_BROKERS", []string{"localhost:9092"}),
			Topic:         getEnv("KAFKA_TOPIC", "rwa-pricing-events"),
			AssetTopic:    getEnv("KAFKA_ASSET_TOPIC", "rwa-asset-valuations"),
			ConsumerGroup: getEnv("KAFKA_CONSUMER_GROUP", "rwa-pricing-service"),
			SASLMechanism: getEnv("KAFKA_SASL_MECHANISM", "PLAIN"),
			SASLUsername:  getEnv("KAFKA_SASL_USERNAME", ""),
			SASLPassword:  getEnv("KAFKA_SASL_PASSWORD", ""),
			TLS:           getEnvBool("KAFKA_TLS", false),
		},
		Redis: RedisConfig{
			Addr:           getEnv("REDIS_ADDR", "localhost:6379"),
			Password:       getEnv("REDIS_PASSWORD", ""),
			DB:             getEnvInt("REDIS_DB", 0),
			TTL:            getEnvDuration("QUOTE_CACHE_TTL", 5*time.Minute),
			IdempotencyTTL: getEnvDuration("IDEMPOTENCY_TTL", 24*time.Hour),
		},
		Quote: QuoteConfig{
			Validity: getEnvDuration("QUOTE_VALIDITY", 15*time.Minute),
			Currency: getEnv("QUOTE_CURRENCY", "USD"),
		},
		Auth: AuthConfig{
			Issuer:        getEnv("JWT_ISSUER", "bib-gateway"),
			Secret:        getEnv("JWT_SECRET", ""),
			PublicKeyPEM:  getEnv("JWT_PUBLIC_KEY", ""),
			PublicKeyFile: getEnv("JWT_PUBLIC_KEY_FILE", ""),
		},
		Telemetry: TelemetryConfig{
			OTLPEndpoint: getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
			OTLPInsecure: getEnvBool("OTEL_EXPORTER_OTLP_INSECURE", true),
			SampleRatio:  getEnvFloat("OTEL_TRACES_SAMPLE_RATIO", 1.0),
		},
		CreditBureau: CreditBureauConfig{
			BaseURL:    getEnv("CREDIT_BUREAU_URL", ""),
			APIKey:     getEnv("CREDIT_BUREAU_API_KEY", ""),
			Timeout:    getEnvDuration("CREDIT_BUREAU_TIMEOUT", 5*time.Second),
			MaxRetries: getEnvInt("CREDIT_BUREAU_MAX_RETRIES", 3),
		},
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		LogFormat:      getEnv("LOG_FORMAT", "json"),
		GRPCReflection: getEnvBool("GRPC_REFLECTION", false),
		TLSCertFile:    getEnv("TLS_CERT_FILE", ""),
		TLSKeyFile:     getEnv("TLS_KEY_FILE", ""),
	}
}

// GRPCAddr returns the gRPC listen address.
func (c Config) GRPCAddr() string {
	return fmt.Sprintf(":%d", c.GRPCPort)
}

// HTTPAddr returns the HTTP listen address.
func (c Config) HTTPAddr() string {
	return fmt.Sprintf(":%d", c.HTTPPort)
}

// getEnv returns the value of an environment variable or a default. A
// variable set to the empty string is returned as is, which is how optional
// integrations (REDIS_ADDR, KAFKA_ASSET_TOPIC) are switched off.
func getEnv(key, defaultVal string) string {
	if val, ok := os.LookupEnv(key); ok {
		return val
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return defaultVal
}

func getEnvFloat(key string, defaultVal float64) float64 {
	if val := os.Getenv(key); val != "" {
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			return f
		}
	}
	return defaultVal
}

func getEnvBool(key string, defaultVal bool) bool {
	if val := os.Getenv(key); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			return b
		}
	}
	return defaultVal
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			return d
		}
	}
	return defaultVal
}

// getEnvList splits a comma-separated value, dropping empty entries.
func getEnvList(key string, defaultVal []string) []string {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	var out []string
	for _, part := range strings.Split(val, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return defaultVal
	}
	return out
}
