package config

import (
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	PolicyAtomic          = "atomic"
	PolicyReadModifyWrite = "read-modify-write"

	SessionsMemory = "memory"
	SessionsRedis  = "redis"
)

type Config struct {
	Port           string
	MongoURI       string
	DBName         string
	JWTSecret      string
	LogMode        string
	TotalPolicy    string
	SessionBackend string
	RedisAddr      string
	SessionTTL     time.Duration
	StoreTimeout   time.Duration
	CORSOrigins    []string
	Currency       string
}

// LoadEnv reads a .env file when one is present. A missing file is not an error.
func LoadEnv() {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("config: .env not loaded: %v", err)
	}
}

func GetEnv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) (time.Duration, error) {
	raw := GetEnv(key, "")
	if raw == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return d, nil
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Load builds the process configuration from the environment.
func Load() (Config, error) {
	cfg := Config{
		Port:           GetEnv("PORT", "8080"),
		MongoURI:       GetEnv("MONGO_URI", ""),
		DBName:         GetEnv("DB_NAME", ""),
		JWTSecret:      GetEnv("JWT_SECRET", ""),
		LogMode:        GetEnv("LOG_MODE", "dev"),
		TotalPolicy:    GetEnv("TOTAL_POLICY", PolicyAtomic),
		SessionBackend: GetEnv("SESSION_BACKEND", SessionsMemory),
		RedisAddr:      GetEnv("REDIS_ADDR", "localhost:6379"),
		CORSOrigins:    splitList(GetEnv("CORS_ORIGINS", "http://localhost:3000,http://127.0.0.1:3000")),
		Currency:       GetEnv("CURRENCY_SYMBOL", "₪"),
	}

	var err error
	if cfg.SessionTTL, err = getDuration("SESSION_TTL", 2*time.Hour); err != nil {
		return Config{}, err
	}
	if cfg.StoreTimeout, err = getDuration("STORE_TIMEOUT", 5*time.Second); err != nil {
		return Config{}, err
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if c.MongoURI == "" || c.DBName == "" {
		return fmt.Errorf("MONGO_URI or DB_NAME not set in environment variables")
	}
	if c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET not set in environment variables")
	}
	switch c.TotalPolicy {
	case PolicyAtomic, PolicyReadModifyWrite:
	default:
		return fmt.Errorf("TOTAL_POLICY must be %q or %q, got %q", PolicyAtomic, PolicyReadModifyWrite, c.TotalPolicy)
	}
	switch c.SessionBackend {
	case SessionsMemory, SessionsRedis:
	default:
		return fmt.Errorf("SESSION_BACKEND must be %q or %q, got %q", SessionsMemory, SessionsRedis, c.SessionBackend)
	}
	return nil
}

// LockTTL is how long a session lock survives a holder that never released
// it. A submit holds the lock across the request deadline and one more
// store timeout for the final session save.
func (c Config) LockTTL() time.Duration {
	return 2*c.StoreTimeout + 10*time.Second
}
