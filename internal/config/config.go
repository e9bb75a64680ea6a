package config

import (
	"os"
	"strconv"
	"time"

	"go.uber.org/zap"
)

const defaultMySQLDSN = "root:root@tcp(localhost:3306)/eshop?parseTime=true"

type Config struct {
	Env   string
	MySQL MySQL
	Redis Redis
}

type MySQL struct {
	DSN             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

type Redis struct {
	Enabled  bool
	Addr     string
	Password string
	DB       int
	StockTTL time.Duration
}

func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

// Load reads configuration from the environment. Call godotenv.Load first to pick up a .env file.
func Load(log *zap.Logger) *Config {
	return &Config{
		Env: getEnv("ENV", "production"),
		MySQL: MySQL{
			DSN:             getEnv("MYSQL_DSN", defaultMySQLDSN),
			MaxOpenConns:    getInt("MYSQL_MAX_OPEN_CONNS", 50, log),
			MaxIdleConns:    getInt("MYSQL_MAX_IDLE_CONNS", 25, log),
			ConnMaxLifetime: getDuration("MYSQL_CONN_MAX_LIFETIME", 5*time.Minute, log),
		},
		Redis: Redis{
			Enabled:  getBool("REDIS_ENABLED", false, log),
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getInt("REDIS_DB", 0, log),
			StockTTL: getDuration("STOCK_CACHE_TTL", time.Minute, log),
		},
	}
}

func getEnv(key, def string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return def
}

func getInt(key string, def int, log *zap.Logger) int {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Warn("invalid integer in environment, using default", zap.String("key", key), zap.String("value", v), zap.Int("default", def))
		return def
	}
	return n
}

func getBool(key string, def bool, log *zap.Logger) bool {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		log.Warn("invalid boolean in environment, using default", zap.String("key", key), zap.String("value", v), zap.Bool("default", def))
		return def
	}
	return b
}

func getDuration(key string, def time.Duration, log *zap.Logger) time.Duration {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil || d < 0 {
		log.Warn("invalid duration in environment, using default", zap.String("key", key), zap.String("value", v), zap.Duration("default", def))
		return def
	}
	return d
}
