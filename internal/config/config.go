package config

import (
	"log"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig
	API       APIConfig
	Session   SessionConfig
	Redis     RedisConfig
	JWT       JWTConfig
	Stub      StubConfig
	RateLimit RateLimitConfig
}

type ServerConfig struct {
	Env string
}

// APIConfig holds one base URL per resource family.
type APIConfig struct {
	ProductsURL     string
	ReservationsURL string
	StreamsURL      string
	AuthURL         string
	AssetBaseURL    string
	Timeout         time.Duration
}

type SessionConfig struct {
	Store string // file, redis or memory
	File  string
	Key   string
	TTL   time.Duration
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

// Addr returns host:port for the redis client.
func (r RedisConfig) Addr() string {
	return r.Host + ":" + r.Port
}

type JWTConfig struct {
	Secret       string
	AccessExpiry int // in minutes
}

type StubConfig struct {
	Port           string
	UploadDir      string
	RequireAuth    bool
	AllowedOrigins []string
}

type RateLimitConfig struct {
	Enabled           bool
	RequestsPerWindow int
	Window            time.Duration
}

func Load() *Config {
	viper.SetConfigName(".env")
	viper.SetConfigType("env")
	viper.AddConfigPath(".")
	viper.AutomaticEnv()

	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		log.Printf("Warning: Could not read config file: %v", err)
	}

	return fromViper()
}

func setDefaults() {
	viper.SetDefault("SERVER_ENV", "development")
	viper.SetDefault("PRODUCTS_API_URL", "http://localhost:8082/api/products")
	viper.SetDefault("RESERVATIONS_API_URL", "http://localhost:8084/api/reservations")
	viper.SetDefault("STREAMS_API_URL", "http://localhost:8083/api/streams")
	viper.SetDefault("AUTH_API_URL", "http://localhost:8084")
	viper.SetDefault("ASSET_BASE_URL", "http://localhost:8082")
	viper.SetDefault("API_TIMEOUT", "15s")
	viper.SetDefault("SESSION_STORE", "file")
	viper.SetDefault("SESSION_FILE", ".console-session.json")
	viper.SetDefault("SESSION_KEY", "console:session")
	viper.SetDefault("SESSION_TTL", "24h")
	viper.SetDefault("REDIS_HOST", "localhost")
	viper.SetDefault("REDIS_PORT", "6379")
	viper.SetDefault("REDIS_DB", 0)
	viper.SetDefault("JWT_SECRET", "dev-secret-change-me")
	viper.SetDefault("JWT_ACCESS_EXPIRY", 1440)
	viper.SetDefault("STUB_PORT", "8082")
	viper.SetDefault("STUB_UPLOAD_DIR", "./storage/uploads")
	viper.SetDefault("STUB_REQUIRE_AUTH", false)
	viper.SetDefault("CORS_ALLOWED_ORIGINS", "http://localhost:3000")
	viper.SetDefault("RATE_LIMIT_ENABLED", false)
	viper.SetDefault("RATE_LIMIT_REQUESTS", 100)
	viper.SetDefault("RATE_LIMIT_WINDOW", "1m")
}

func fromViper() *Config {
	return &Config{
		Server: ServerConfig{
			Env: viper.GetString("SERVER_ENV"),
		},
		API: APIConfig{
			ProductsURL:     trimSlash(viper.GetString("PRODUCTS_API_URL")),
			ReservationsURL: trimSlash(viper.GetString("RESERVATIONS_API_URL")),
			StreamsURL:      trimSlash(viper.GetString("STREAMS_API_URL")),
			AuthURL:         trimSlash(viper.GetString("AUTH_API_URL")),
			AssetBaseURL:    trimSlash(viper.GetString("ASSET_BASE_URL")),
			Timeout:         viper.GetDuration("API_TIMEOUT"),
		},
		Session: SessionConfig{
			Store: strings.ToLower(viper.GetString("SESSION_STORE")),
			File:  viper.GetString("SESSION_FILE"),
			Key:   viper.GetString("SESSION_KEY"),
			TTL:   viper.GetDuration("SESSION_TTL"),
		},
		Redis: RedisConfig{
			Host:     viper.GetString("REDIS_HOST"),
			Port:     viper.GetString("REDIS_PORT"),
			Password: viper.GetString("REDIS_PASSWORD"),
			DB:       viper.GetInt("REDIS_DB"),
		},
		JWT: JWTConfig{
			Secret:       viper.GetString("JWT_SECRET"),
			AccessExpiry: viper.GetInt("JWT_ACCESS_EXPIRY"),
		},
		Stub: StubConfig{
			Port:           viper.GetString("STUB_PORT"),
			UploadDir:      viper.GetString("STUB_UPLOAD_DIR"),
			RequireAuth:    viper.GetBool("STUB_REQUIRE_AUTH"),
			AllowedOrigins: splitCSV(viper.GetString("CORS_ALLOWED_ORIGINS")),
		},
		RateLimit: RateLimitConfig{
			Enabled:           viper.GetBool("RATE_LIMIT_ENABLED"),
			RequestsPerWindow: viper.GetInt("RATE_LIMIT_REQUESTS"),
			Window:            viper.GetDuration("RATE_LIMIT_WINDOW"),
		},
	}
}

// IsDevelopment reports whether the configured environment is not production.
func (c *Config) IsDevelopment() bool {
	return c.Server.Env != "production"
}

func trimSlash(s string) string {
	return strings.TrimRight(strings.TrimSpace(s), "/")
}

func splitCSV(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			out = append(out, t)
		}
	}
	return out
}
