// Package config loads runtime configuration from the environment (and an
// optional .env file) via viper.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	platformstrings "medledger/pkg/platform/strings"
)

// Server captures HTTP server level configuration.
type Server struct {
	Addr            string        `mapstructure:"MEDLEDGER_ADDR"`
	Env             string        `mapstructure:"MEDLEDGER_ENV"`
	LogLevel        string        `mapstructure:"LOG_LEVEL"`
	LogFormat       string        `mapstructure:"LOG_FORMAT"`
	AdminToken      string        `mapstructure:"ADMIN_API_TOKEN"`
	ShutdownTimeout time.Duration `mapstructure:"SHUTDOWN_TIMEOUT"`
	TxTimeout       time.Duration `mapstructure:"TX_TIMEOUT"`

	Auth     AuthConfig     `mapstructure:",squash"`
	Database DatabaseConfig `mapstructure:",squash"`
	Redis    RedisConfig    `mapstructure:",squash"`
	Kafka    KafkaConfig    `mapstructure:",squash"`
	Content  ContentConfig  `mapstructure:",squash"`
}

// AuthConfig configures wallet session tokens.
type AuthConfig struct {
	JWTSigningKey string        `mapstructure:"JWT_SIGNING_KEY"`
	JWTIssuer     string        `mapstructure:"JWT_ISSUER"`
	JWTAudience   string        `mapstructure:"JWT_AUDIENCE"`
	SessionTTL    time.Duration `mapstructure:"SESSION_TTL"`
}

// DatabaseConfig selects the registry backend. An empty URL keeps the
// registry in memory.
type DatabaseConfig struct {
	URL          string        `mapstructure:"DATABASE_URL"`
	MaxOpenConns int           `mapstructure:"DB_MAX_OPEN_CONNS"`
	MaxIdleConns int           `mapstructure:"DB_MAX_IDLE_CONNS"`
	ConnMaxLife  time.Duration `mapstructure:"DB_CONN_MAX_LIFETIME"`
}

// RedisConfig configures the roster source. An empty URL keeps the roster
// in memory.
type RedisConfig struct {
	URL          string        `mapstructure:"REDIS_URL"`
	PoolSize     int           `mapstructure:"REDIS_POOL_SIZE"`
	MinIdleConns int           `mapstructure:"REDIS_MIN_IDLE_CONNS"`
	DialTimeout  time.Duration `mapstructure:"REDIS_DIAL_TIMEOUT"`
	ReadTimeout  time.Duration `mapstructure:"REDIS_READ_TIMEOUT"`
	WriteTimeout time.Duration `mapstructure:"REDIS_WRITE_TIMEOUT"`
}

// KafkaConfig configures the history relay. No brokers disables it.
type KafkaConfig struct {
	Brokers       []string      `mapstructure:"KAFKA_BROKERS"`
	HistoryTopic  string        `mapstructure:"KAFKA_HISTORY_TOPIC"`
	RelayInterval time.Duration `mapstructure:"KAFKA_RELAY_INTERVAL"`
	RelayBatch    int           `mapstructure:"KAFKA_RELAY_BATCH"`
}

// ContentConfig selects the document content store: memory, leveldb or s3.
type ContentConfig struct {
	Backend     string `mapstructure:"CONTENT_BACKEND"`
	LevelDBPath string `mapstructure:"CONTENT_LEVELDB_PATH"`
	S3Bucket    string `mapstructure:"CONTENT_S3_BUCKET"`
	S3Prefix    string `mapstructure:"CONTENT_S3_PREFIX"`
	S3Region    string `mapstructure:"CONTENT_S3_REGION"`
	S3Endpoint  string `mapstructure:"CONTENT_S3_ENDPOINT"`
}

const devSigningKey = "dev-secret-key-change-in-production"

var keys = []string{
	"MEDLEDGER_ADDR", "MEDLEDGER_ENV", "LOG_LEVEL", "LOG_FORMAT", "ADMIN_API_TOKEN",
	"SHUTDOWN_TIMEOUT", "TX_TIMEOUT",
	"JWT_SIGNING_KEY", "JWT_ISSUER", "JWT_AUDIENCE", "SESSION_TTL",
	"DATABASE_URL", "DB_MAX_OPEN_CONNS", "DB_MAX_IDLE_CONNS", "DB_CONN_MAX_LIFETIME",
	"REDIS_URL", "REDIS_POOL_SIZE", "REDIS_MIN_IDLE_CONNS", "REDIS_DIAL_TIMEOUT",
	"REDIS_READ_TIMEOUT", "REDIS_WRITE_TIMEOUT",
	"KAFKA_BROKERS", "KAFKA_HISTORY_TOPIC", "KAFKA_RELAY_INTERVAL", "KAFKA_RELAY_BATCH",
	"CONTENT_BACKEND", "CONTENT_LEVELDB_PATH", "CONTENT_S3_BUCKET", "CONTENT_S3_PREFIX",
	"CONTENT_S3_REGION", "CONTENT_S3_ENDPOINT",
}

// Load reads configuration from the environment. configFile may be empty; a
// missing file is not an error.
func Load(configFile string) (*Server, error) {
	v := viper.New()
	if configFile == "" {
		configFile = ".env"
	}
	v.SetConfigFile(configFile)
	v.SetConfigType("env")
	v.AutomaticEnv()

	v.SetDefault("MEDLEDGER_ADDR", ":8080")
	v.SetDefault("MEDLEDGER_ENV", "development")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")
	v.SetDefault("SHUTDOWN_TIMEOUT", 10*time.Second)
	v.SetDefault("TX_TIMEOUT", 5*time.Second)
	v.SetDefault("JWT_SIGNING_KEY", devSigningKey)
	v.SetDefault("JWT_ISSUER", "medledger")
	v.SetDefault("JWT_AUDIENCE", "medledger-api")
	v.SetDefault("SESSION_TTL", 12*time.Hour)
	v.SetDefault("DB_MAX_OPEN_CONNS", 20)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)
	v.SetDefault("DB_CONN_MAX_LIFETIME", 30*time.Minute)
	v.SetDefault("REDIS_POOL_SIZE", 10)
	v.SetDefault("REDIS_MIN_IDLE_CONNS", 2)
	v.SetDefault("REDIS_DIAL_TIMEOUT", 5*time.Second)
	v.SetDefault("REDIS_READ_TIMEOUT", 3*time.Second)
	v.SetDefault("REDIS_WRITE_TIMEOUT", 3*time.Second)
	v.SetDefault("KAFKA_HISTORY_TOPIC", "medledger.history")
	v.SetDefault("KAFKA_RELAY_INTERVAL", time.Second)
	v.SetDefault("KAFKA_RELAY_BATCH", 100)
	v.SetDefault("CONTENT_BACKEND", "memory")
	v.SetDefault("CONTENT_LEVELDB_PATH", "./data/content")

	for _, k := range keys {
		_ = v.BindEnv(k)
	}

	_ = v.ReadInConfig()

	cfg := &Server{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	cfg.Kafka.Brokers = platformstrings.SplitList(strings.Join(cfg.Kafka.Brokers, ","))
	if len(cfg.Kafka.Brokers) == 0 {
		cfg.Kafka.Brokers = platformstrings.SplitList(v.GetString("KAFKA_BROKERS"))
	}
	return cfg, nil
}

func (c *Server) IsDev() bool {
	return c.Env == "development"
}

// Validate refuses configurations that are unsafe outside development.
func (c *Server) Validate() error {
	if !c.IsDev() && c.Auth.JWTSigningKey == devSigningKey {
		return fmt.Errorf("JWT_SIGNING_KEY must be set when MEDLEDGER_ENV=%q", c.Env)
	}
	if c.TxTimeout <= 0 {
		return fmt.Errorf("TX_TIMEOUT must be positive")
	}
	switch c.Content.Backend {
	case "memory":
	case "leveldb":
		if c.Content.LevelDBPath == "" {
			return fmt.Errorf("CONTENT_LEVELDB_PATH is required for the leveldb backend")
		}
	case "s3":
		if c.Content.S3Bucket == "" {
			return fmt.Errorf("CONTENT_S3_BUCKET is required for the s3 backend")
		}
	default:
		return fmt.Errorf("CONTENT_BACKEND must be memory, leveldb or s3, got %q", c.Content.Backend)
	}
	return nil
}
