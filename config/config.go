package config

import "time"

type Config struct {
	AppName                       string   `env:"APP_NAME" env-default:"sage-api"`
	Environment                   string   `env:"ENVIRONMENT" env-default:"development"`
	Port                          int      `env:"PORT" env-default:"3004"`
	LogLevel                      string   `env:"LOG_LEVEL" env-default:"info"`
	HttpServerWriteTimeoutSeconds int      `env:"HTTP_SERVER_WRITE_TIMEOUT_SECONDS" env-default:"10"`
	HttpServerReadTimeoutSeconds  int      `env:"HTTP_SERVER_READ_TIMEOUT_SECONDS" env-default:"10"`
	HttpServerIdleTimeoutSeconds  int      `env:"HTTP_SERVER_IDLE_TIMEOUT_SECONDS" env-default:"10"`
	AllowOrigins                  []string `env:"HTTP_SERVER_ALLOW_ORIGINS" env-default:"*"`
	AllowMethods                  []string `env:"HTTP_SERVER_ALLOW_METHODS" env-default:"GET,POST,PUT,DELETE"`
	StartupMaxAttempts            int      `env:"STARTUP_MAX_ATTEMPTS" env-default:"5"`

	// Tracing
	TracingEnabled  bool   `env:"TRACING_ENABLED" env-default:"false"`
	TracingEndpoint string `env:"TRACING_ENDPOINT" env-default:"localhost:4318"`
	TracingInsecure bool   `env:"TRACING_INSECURE" env-default:"true"`

	// PostgreSQL (catalog database)
	DatabaseHost                string        `env:"DB_HOST" env-default:""`
	DatabasePort                int           `env:"DB_PORT" env-default:"5432"`
	DatabaseUserName            string        `env:"DB_USER_NAME" env-default:""`
	DatabasePassword            string        `env:"DB_PASSWORD" env-default:""`
	DatabaseName                string        `env:"DB_NAME" env-default:"sage"`
	DatabaseSSLMode             string        `env:"DB_SSL_MODE" env-default:"disable"`
	DatabaseReconnectRetryCount int           `env:"DB_RECONNECT_RETRY_COUNT" env-default:"3"`
	DatabaseMaxOpenConns        int           `env:"DB_MAX_OPEN_CONNS" env-default:"25"`
	DatabaseMaxIdleConns        int           `env:"DB_MAX_IDLE_CONNS" env-default:"10"`
	DatabaseConnMaxLifetime     time.Duration `env:"DB_CONN_MAX_LIFETIME" env-default:"10s"`
	DatabaseMigrationFolderPath string        `env:"DB_MIGRATION_FOLDER_PATH" env-default:"db/pg"`
	DatabaseMigrationVersion    int           `env:"DB_MIGRATION_VERSION" env-default:"0"`
	DatabaseMigrationForce      int           `env:"DB_MIGRATION_FORCE" env-default:"0"`

	// Kafka consumer (inbound vendor manifests)
	KafkaBrokers         []string `env:"KAFKA_BROKERS" env-default:"localhost:9092"`
	KafkaManifestTopic   string   `env:"KAFKA_MANIFEST_TOPIC" env-default:"vendor-manifests"`
	KafkaConsumerGroup   string   `env:"KAFKA_CONSUMER_GROUP" env-default:"sage-consumer"`
	KafkaConsumerEnabled bool     `env:"KAFKA_CONSUMER_ENABLED" env-default:"true"`

	// Kafka producer (match results)
	KafkaResultsTopic string `env:"KAFKA_RESULTS_TOPIC" env-default:"match-results"`
	KafkaBatchSize    int    `env:"KAFKA_BATCH_SIZE" env-default:"100"`
	KafkaBatchTimeout int    `env:"KAFKA_BATCH_TIMEOUT_MS" env-default:"100"`
	KafkaRequiredAcks int    `env:"KAFKA_REQUIRED_ACKS" env-default:"1"`
	KafkaCompression  string `env:"KAFKA_COMPRESSION" env-default:"snappy"`

	// Matching
	MatchVendorFuzzyThreshold   float64       `env:"MATCH_VENDOR_FUZZY_THRESHOLD" env-default:"0.60"`
	MatchCrossVendorThreshold   float64       `env:"MATCH_CROSS_VENDOR_THRESHOLD" env-default:"0.35"`
	MatchAttributeThreshold     float64       `env:"MATCH_ATTRIBUTE_THRESHOLD" env-default:"0.50"`
	MatchComprehensiveThreshold float64       `env:"MATCH_COMPREHENSIVE_THRESHOLD" env-default:"0.15"`
	MatchHighTierThreshold      float64       `env:"MATCH_HIGH_TIER_THRESHOLD" env-default:"0.65"`
	MatchMediumTierThreshold    float64       `env:"MATCH_MEDIUM_TIER_THRESHOLD" env-default:"0.45"`
	MatchMaxResults             int           `env:"MATCH_MAX_RESULTS" env-default:"10"`
	MatchWorkerCount            int           `env:"MATCH_WORKER_COUNT" env-default:"0"` // 0 = GOMAXPROCS
	MatchCacheSize              int           `env:"MATCH_CACHE_SIZE" env-default:"1000"`
	MatchCacheTTL               time.Duration `env:"MATCH_CACHE_TTL" env-default:"5m"`
}
