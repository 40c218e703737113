package config

import (
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds application configuration
type Config struct {
	Server    ServerConfig
	MongoDB   MongoDBConfig
	Redis     RedisConfig
	RateLimit RateLimitConfig
	SystemLog SystemLogConfig
	MinIO     MinIOConfig
}

type ServerConfig struct {
	Port         string
	Host         string
	Debug        bool
	LogLevel     string
	PRNumber     string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// Store backends understood by the connection manager.
const (
	BackendMongo  = "mongo"
	BackendMemory = "memory"
)

type MongoDBConfig struct {
	Backend  string
	Host     string
	Port     int
	Database string
	// URI overrides Host/Port when set (credentials, replica sets, SRV records).
	URI     string
	Timeout time.Duration
}

// ConnectionURI returns the URI used to dial the store.
func (m MongoDBConfig) ConnectionURI() string {
	if m.URI != "" {
		return m.URI
	}
	return "mongodb://" + net.JoinHostPort(m.Host, strconv.Itoa(m.Port))
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

type RateLimitConfig struct {
	Enabled       bool
	UseRedis      bool
	RPS           float64
	Burst         int
	WindowSeconds int
}

type SystemLogConfig struct {
	// Path of the sqlite file; empty disables the system log (SYSTEM_LOG_PATH=off).
	Path string
}

// MinIOConfig holds MinIO connection configuration used for collection snapshots.
type MinIOConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	UseSSL    bool
	Bucket    string
}

// LoadConfig loads configuration from environment variables and an optional .env file
func LoadConfig() (*Config, error) {
	_ = godotenv.Load(".env")

	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("SERVER_PORT", "8000")
	v.SetDefault("SERVER_HOST", "0.0.0.0")
	v.SetDefault("DEBUG", "False")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("PR_NUMBER", "unknown")
	v.SetDefault("STORE_BACKEND", BackendMongo)
	v.SetDefault("MONGODB_HOST", "localhost")
	v.SetDefault("MONGODB_PORT", "27017")
	v.SetDefault("MONGODB_DATABASE", "mercor_dev")
	v.SetDefault("MONGODB_TIMEOUT", 5)
	v.SetDefault("REDIS_PORT", "6379")
	v.SetDefault("RATE_LIMIT_RPS", 20)
	v.SetDefault("RATE_LIMIT_BURST", 40)
	v.SetDefault("RATE_LIMIT_WINDOW_SECONDS", 1)
	v.SetDefault("SYSTEM_LOG_PATH", "data/system.db")
	v.SetDefault("MINIO_BUCKET", "prenv-snapshots")

	port, err := strconv.Atoi(strings.TrimSpace(v.GetString("MONGODB_PORT")))
	if err != nil || port <= 0 || port > 65535 {
		return nil, fmt.Errorf("invalid MONGODB_PORT %q", v.GetString("MONGODB_PORT"))
	}

	backend := strings.ToLower(strings.TrimSpace(v.GetString("STORE_BACKEND")))
	if backend != BackendMongo && backend != BackendMemory {
		return nil, fmt.Errorf("invalid STORE_BACKEND %q (want %s or %s)", backend, BackendMongo, BackendMemory)
	}

	timeout := v.GetInt("MONGODB_TIMEOUT")
	if timeout <= 0 {
		timeout = 5
	}

	logPath := strings.TrimSpace(v.GetString("SYSTEM_LOG_PATH"))
	if strings.EqualFold(logPath, "off") {
		logPath = ""
	}

	cfg := &Config{
		Server: ServerConfig{
			Port:         v.GetString("SERVER_PORT"),
			Host:         v.GetString("SERVER_HOST"),
			Debug:        parseBool(v.GetString("DEBUG")),
			LogLevel:     v.GetString("LOG_LEVEL"),
			PRNumber:     v.GetString("PR_NUMBER"),
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 30 * time.Second,
		},
		MongoDB: MongoDBConfig{
			Backend:  backend,
			Host:     v.GetString("MONGODB_HOST"),
			Port:     port,
			Database: v.GetString("MONGODB_DATABASE"),
			URI:      v.GetString("MONGODB_URI"),
			Timeout:  time.Duration(timeout) * time.Second,
		},
		Redis: RedisConfig{
			Host:     v.GetString("REDIS_HOST"),
			Port:     v.GetString("REDIS_PORT"),
			Password: v.GetString("REDIS_PASSWORD"),
			DB:       0,
		},
		RateLimit: RateLimitConfig{
			Enabled:       parseBool(v.GetString("RATE_LIMIT_ENABLED")),
			UseRedis:      parseBool(v.GetString("RATE_LIMIT_USE_REDIS")),
			RPS:           v.GetFloat64("RATE_LIMIT_RPS"),
			Burst:         v.GetInt("RATE_LIMIT_BURST"),
			WindowSeconds: v.GetInt("RATE_LIMIT_WINDOW_SECONDS"),
		},
		SystemLog: SystemLogConfig{
			Path: logPath,
		},
		MinIO: MinIOConfig{
			Endpoint:  v.GetString("MINIO_ENDPOINT"),
			AccessKey: v.GetString("MINIO_ACCESS_KEY"),
			SecretKey: v.GetString("MINIO_SECRET_KEY"),
			UseSSL:    parseBool(v.GetString("MINIO_USE_SSL")),
			Bucket:    v.GetString("MINIO_BUCKET"),
		},
	}

	return cfg, nil
}

// parseBool accepts the spellings used by the deployment templates (True/False, 1/0, yes/no).
func parseBool(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "true", "yes", "on":
		return true
	}
	return false
}
