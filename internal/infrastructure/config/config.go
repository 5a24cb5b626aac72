package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// ServerConfig represents HTTP server configuration
type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	IdleTimeout     time.Duration `mapstructure:"idle_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	Swagger         bool          `mapstructure:"swagger"`
	Mode            string        `mapstructure:"mode"` // gin mode: debug, release, test
}

// DatabaseConfig represents the SQL database used by the gorm backend
type DatabaseConfig struct {
	Driver          string `mapstructure:"driver"` // postgres or sqlite
	DSN             string `mapstructure:"dsn"`
	MaxOpenConns    int    `mapstructure:"max_open_conns"`
	MaxIdleConns    int    `mapstructure:"max_idle_conns"`
	ConnMaxLifetime int    `mapstructure:"conn_max_lifetime"` // seconds
	AutoMigrate     bool   `mapstructure:"auto_migrate"`
	LogLevel        string `mapstructure:"log_level"`
}

// StorageConfig selects the store backend
type StorageConfig struct {
	Backend    string `mapstructure:"backend"` // gorm, badger or memory
	BadgerPath string `mapstructure:"badger_path"`
}

// RedisConfig represents the user cache configuration
type RedisConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Address  string        `mapstructure:"address"`
	Password string        `mapstructure:"password"`
	DB       int           `mapstructure:"db"`
	TTL      time.Duration `mapstructure:"ttl"`
}

// KafkaConfig represents the user event publisher configuration
type KafkaConfig struct {
	Enabled bool     `mapstructure:"enabled"`
	Brokers []string `mapstructure:"brokers"`
	Topic   string   `mapstructure:"topic"`
}

// Config represents the application configuration
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Storage  StorageConfig  `mapstructure:"storage"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Kafka    KafkaConfig    `mapstructure:"kafka"`
	Log      struct {
		Level  string `mapstructure:"level"`
		Format string `mapstructure:"format"`
	} `mapstructure:"log"`
	Tracing struct {
		Enabled     bool   `mapstructure:"enabled"`
		ServiceName string `mapstructure:"service_name"`
	} `mapstructure:"tracing"`
	Seed struct {
		File string `mapstructure:"file"`
	} `mapstructure:"seed"`
	CORS struct {
		AllowOrigins []string `mapstructure:"allow_origins"`
	} `mapstructure:"cors"`
}

// Default returns the configuration used when nothing else is provided.
func Default() *Config {
	config := &Config{}

	config.Server = ServerConfig{
		Host:            "0.0.0.0",
		Port:            5000,
		ReadTimeout:     15 * time.Second,
		WriteTimeout:    15 * time.Second,
		IdleTimeout:     60 * time.Second,
		ShutdownTimeout: 10 * time.Second,
		Swagger:         true,
		Mode:            "release",
	}

	config.Database = DatabaseConfig{
		Driver:          "sqlite",
		DSN:             "users.db3",
		MaxOpenConns:    25,
		MaxIdleConns:    5,
		ConnMaxLifetime: 3600,
		AutoMigrate:     true,
		LogLevel:        "warn",
	}

	config.Storage = StorageConfig{
		Backend:    "gorm",
		BadgerPath: "data/badger",
	}

	config.Redis = RedisConfig{
		Enabled: false,
		Address: "localhost:6379",
		TTL:     10 * time.Minute,
	}

	config.Kafka = KafkaConfig{
		Enabled: false,
		Brokers: []string{"localhost:9092"},
		Topic:   "users.events",
	}

	config.Log.Level = "info"
	config.Log.Format = "json"
	config.Tracing.ServiceName = "usersapi"
	config.CORS.AllowOrigins = []string{"*"}

	return config
}

// LoadConfig loads the application configuration: defaults, then the first config.yaml found
// in the search paths, then environment variables.
func LoadConfig(paths ...string) (*Config, error) {
	config := Default()

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	if len(paths) == 0 {
		paths = []string{".", "./config", "/etc/usersapi"}
	}
	for _, p := range paths {
		v.AddConfigPath(p)
	}

	if err := v.ReadInConfig(); err != nil {
		// Config file not found, use default and environment values
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	} else if err := v.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("failed to decode config file: %w", err)
	}

	applyEnv(config)

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

func applyEnv(config *Config) {
	if port, err := strconv.Atoi(os.Getenv("SERVER_PORT")); err == nil {
		config.Server.Port = port
	}
	if mode := os.Getenv("GIN_MODE"); mode != "" {
		config.Server.Mode = mode
	}

	if driver := os.Getenv("DATABASE_DRIVER"); driver != "" {
		config.Database.Driver = driver
	}
	if dsn := os.Getenv("DATABASE_DSN"); dsn != "" {
		config.Database.DSN = dsn
	}

	if backend := os.Getenv("STORAGE_BACKEND"); backend != "" {
		config.Storage.Backend = backend
	}
	if path := os.Getenv("BADGER_PATH"); path != "" {
		config.Storage.BadgerPath = path
	}

	if enabled, err := strconv.ParseBool(os.Getenv("REDIS_ENABLED")); err == nil {
		config.Redis.Enabled = enabled
	}
	if redisAddr := os.Getenv("REDIS_ADDRESS"); redisAddr != "" {
		config.Redis.Address = redisAddr
	}
	if redisPassword := os.Getenv("REDIS_PASSWORD"); redisPassword != "" {
		config.Redis.Password = redisPassword
	}
	if redisDB, err := strconv.Atoi(os.Getenv("REDIS_DB")); err == nil {
		config.Redis.DB = redisDB
	}

	if enabled, err := strconv.ParseBool(os.Getenv("KAFKA_ENABLED")); err == nil {
		config.Kafka.Enabled = enabled
	}
	if kafkaBrokers := os.Getenv("KAFKA_BROKERS"); kafkaBrokers != "" {
		config.Kafka.Brokers = strings.Split(kafkaBrokers, ",")
	}
	if topic := os.Getenv("KAFKA_TOPIC"); topic != "" {
		config.Kafka.Topic = topic
	}

	if level := os.Getenv("LOG_LEVEL"); level != "" {
		config.Log.Level = level
	}
	if format := os.Getenv("LOG_FORMAT"); format != "" {
		config.Log.Format = format
	}

	if enabled, err := strconv.ParseBool(os.Getenv("TRACING_ENABLED")); err == nil {
		config.Tracing.Enabled = enabled
	}

	if seed := os.Getenv("SEED_FILE"); seed != "" {
		config.Seed.File = seed
	}

	if origins := os.Getenv("CORS_ALLOW_ORIGINS"); origins != "" {
		config.CORS.AllowOrigins = strings.Split(origins, ",")
	}
}

// Validate checks the values that cannot be defaulted at runtime.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port %d", c.Server.Port)
	}

	switch c.Storage.Backend {
	case "gorm":
		switch c.Database.Driver {
		case "postgres", "sqlite":
		default:
			return fmt.Errorf("unsupported database driver %q", c.Database.Driver)
		}
		if c.Database.DSN == "" {
			return fmt.Errorf("database dsn is required for the gorm backend")
		}
	case "badger", "memory":
	default:
		return fmt.Errorf("unsupported storage backend %q", c.Storage.Backend)
	}

	if c.Kafka.Enabled && (len(c.Kafka.Brokers) == 0 || c.Kafka.Topic == "") {
		return fmt.Errorf("kafka brokers and topic are required when kafka is enabled")
	}

	return nil
}

// Addr returns the listen address of the HTTP server.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}
