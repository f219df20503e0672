package config

import (
	"fmt"
	"log"
	"net/url"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	JWT       JWTConfig
	RateLimit RateLimitConfig
	Store     StoreConfig
	Dev       DevConfig
}

type ServerConfig struct {
	Port           string
	Env            string
	AllowedOrigins []string
}

type DatabaseConfig struct {
	Host          string
	Port          string
	User          string
	Password      string
	Database      string
	Schema        string
	MigrationsDir string
}

type RedisConfig struct {
	Enabled  bool
	Host     string
	Port     string
	Password string
	DB       int
}

type JWTConfig struct {
	Secret        string
	AccessExpiry  int // in minutes
	RefreshExpiry int // in days
}

type RateLimitConfig struct {
	Requests      int
	WindowSeconds int
}

// StoreConfig holds the business settings of the storefront
type StoreConfig struct {
	OrderPrefix           string
	Timezone              string
	FreeShippingThreshold int64
	ShippingFee           int64
	CancelWindowHours     int
}

// DevConfig configures the in-memory development server
type DevConfig struct {
	AdminEmail    string
	AdminPassword string
	SampleStock   int
}

// Location resolves Timezone, falling back to UTC when it is unknown
func (s StoreConfig) Location() *time.Location {
	loc, err := time.LoadLocation(s.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func (s StoreConfig) CancelWindow() time.Duration {
	return time.Duration(s.CancelWindowHours) * time.Hour
}

// Addr is the redis address in host:port form
func (r RedisConfig) Addr() string {
	return r.Host + ":" + r.Port
}

// DSN builds the postgres connection string for the pgx driver
func (c *Config) DSN() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.Database.User, c.Database.Password),
		Host:     c.Database.Host + ":" + c.Database.Port,
		Path:     c.Database.Database,
		RawQuery: fmt.Sprintf("sslmode=disable&search_path=%s", url.QueryEscape(c.Database.Schema)),
	}
	return u.String()
}

func (c *Config) IsDevelopment() bool {
	return c.Server.Env == "development"
}

func Load() *Config {
	// Values already present in the environment win over the file.
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: Could not load .env file: %v", err)
	}

	v := viper.New()
	v.AutomaticEnv()

	// Set defaults
	v.SetDefault("SERVER_PORT", "8080")
	v.SetDefault("SERVER_ENV", "development")
	v.SetDefault("ALLOWED_ORIGINS", "http://localhost:3000")
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_SCHEMA", "public")
	v.SetDefault("DB_MIGRATIONS_DIR", "migrations")
	v.SetDefault("REDIS_ENABLED", false)
	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", "6379")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("JWT_ACCESS_EXPIRY", 15)
	v.SetDefault("JWT_REFRESH_EXPIRY", 7)
	v.SetDefault("RATE_LIMIT_REQUESTS", 100)
	v.SetDefault("RATE_LIMIT_WINDOW_SECONDS", 900)
	v.SetDefault("ORDER_PREFIX", "NANA")
	v.SetDefault("STORE_TIMEZONE", "Asia/Seoul")
	v.SetDefault("FREE_SHIPPING_THRESHOLD", 50000)
	v.SetDefault("SHIPPING_FEE", 3000)
	v.SetDefault("CANCEL_WINDOW_HOURS", 24)
	v.SetDefault("DEV_ADMIN_EMAIL", "admin@nana.store")
	v.SetDefault("DEV_ADMIN_PASSWORD", "admin1234")
	v.SetDefault("DEV_SAMPLE_STOCK", 100)

	return &Config{
		Server: ServerConfig{
			Port:           v.GetString("SERVER_PORT"),
			Env:            v.GetString("SERVER_ENV"),
			AllowedOrigins: splitList(v.GetString("ALLOWED_ORIGINS")),
		},
		Database: DatabaseConfig{
			Host:          v.GetString("DB_HOST"),
			Port:          v.GetString("DB_PORT"),
			User:          v.GetString("DB_USER"),
			Password:      v.GetString("DB_PASSWORD"),
			Database:      v.GetString("DB_DATABASE"),
			Schema:        v.GetString("DB_SCHEMA"),
			MigrationsDir: v.GetString("DB_MIGRATIONS_DIR"),
		},
		Redis: RedisConfig{
			Enabled:  v.GetBool("REDIS_ENABLED"),
			Host:     v.GetString("REDIS_HOST"),
			Port:     v.GetString("REDIS_PORT"),
			Password: v.GetString("REDIS_PASSWORD"),
			DB:       v.GetInt("REDIS_DB"),
		},
		JWT: JWTConfig{
			Secret:        v.GetString("JWT_SECRET"),
			AccessExpiry:  v.GetInt("JWT_ACCESS_EXPIRY"),
			RefreshExpiry: v.GetInt("JWT_REFRESH_EXPIRY"),
		},
		RateLimit: RateLimitConfig{
			Requests:      v.GetInt("RATE_LIMIT_REQUESTS"),
			WindowSeconds: v.GetInt("RATE_LIMIT_WINDOW_SECONDS"),
		},
		Store: StoreConfig{
			OrderPrefix:           v.GetString("ORDER_PREFIX"),
			Timezone:              v.GetString("STORE_TIMEZONE"),
			FreeShippingThreshold: v.GetInt64("FREE_SHIPPING_THRESHOLD"),
			ShippingFee:           v.GetInt64("SHIPPING_FEE"),
			CancelWindowHours:     v.GetInt("CANCEL_WINDOW_HOURS"),
		},
		Dev: DevConfig{
			AdminEmail:    v.GetString("DEV_ADMIN_EMAIL"),
			AdminPassword: v.GetString("DEV_ADMIN_PASSWORD"),
			SampleStock:   v.GetInt("DEV_SAMPLE_STOCK"),
		},
	}
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
