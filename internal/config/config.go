package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config represents the application configuration
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Auth     AuthConfig
	CORS     CORSConfig
	Admin    AdminConfig
	Requests RequestsConfig
}

// ServerConfig represents server configuration
type ServerConfig struct {
	Host string
	Port int
}

// DatabaseConfig represents database configuration
type DatabaseConfig struct {
	URL      string
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// AuthConfig holds token signing settings
type AuthConfig struct {
	Secret       string
	Algorithm    string
	AccessExpiry time.Duration
}

// CORSConfig holds the allowed cross-origin hosts
type CORSConfig struct {
	AllowedOrigins []string
}

// AdminConfig holds the bootstrap admin credentials
type AdminConfig struct {
	Email           string
	InitialPassword string
}

// RequestsConfig controls the expert-request expiry sweep
type RequestsConfig struct {
	ExpiryAfter time.Duration
	SweepSpec   string
}

// Load builds the configuration from environment variables with defaults
func Load() (*Config, error) {
	config := &Config{
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: 8080,
		},
		Database: DatabaseConfig{
			Host:    "localhost",
			Port:    5432,
			User:    os.Getenv("USER"),
			DBName:  "energienachweise",
			SSLMode: "disable",
		},
		Auth: AuthConfig{
			Secret:       "devsecret",
			Algorithm:    "HS256",
			AccessExpiry: 60 * time.Minute,
		},
		CORS: CORSConfig{
			AllowedOrigins: []string{"http://localhost:5173", "http://127.0.0.1:5173"},
		},
		Admin: AdminConfig{
			Email:           "admin@example.com",
			InitialPassword: "admin",
		},
		Requests: RequestsConfig{
			ExpiryAfter: 14 * 24 * time.Hour,
			SweepSpec:   "@hourly",
		},
	}

	overrideWithEnv(config)

	switch config.Auth.Algorithm {
	case "HS256", "HS384", "HS512":
	default:
		return nil, fmt.Errorf("unsupported token algorithm %q", config.Auth.Algorithm)
	}

	return config, nil
}

func overrideWithEnv(config *Config) {
	if host := os.Getenv("SERVER_HOST"); host != "" {
		config.Server.Host = host
	}
	if port := os.Getenv("SERVER_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			config.Server.Port = p
		}
	}
	if url := os.Getenv("DATABASE_URL"); url != "" {
		config.Database.URL = url
	}
	if dbHost := os.Getenv("DATABASE_HOST"); dbHost != "" {
		config.Database.Host = dbHost
	}
	if dbPort := os.Getenv("DATABASE_PORT"); dbPort != "" {
		if p, err := strconv.Atoi(dbPort); err == nil {
			config.Database.Port = p
		}
	}
	if dbUser := os.Getenv("DATABASE_USER"); dbUser != "" {
		config.Database.User = dbUser
	}
	if dbPass := os.Getenv("DATABASE_PASSWORD"); dbPass != "" {
		config.Database.Password = dbPass
	}
	if dbName := os.Getenv("DATABASE_DBNAME"); dbName != "" {
		config.Database.DBName = dbName
	}
	if sslMode := os.Getenv("DATABASE_SSLMODE"); sslMode != "" {
		config.Database.SSLMode = sslMode
	}
	if secret := os.Getenv("SECRET_KEY"); secret != "" {
		config.Auth.Secret = secret
	}
	if algo := os.Getenv("ALGORITHM"); algo != "" {
		config.Auth.Algorithm = algo
	}
	if minutes := os.Getenv("ACCESS_TOKEN_EXPIRE_MINUTES"); minutes != "" {
		if m, err := strconv.Atoi(minutes); err == nil && m > 0 {
			config.Auth.AccessExpiry = time.Duration(m) * time.Minute
		}
	}
	if raw := os.Getenv("ALLOWED_ORIGINS"); raw != "" {
		config.CORS.AllowedOrigins = parseOrigins(raw)
	}
	if email := os.Getenv("ADMIN_EMAIL"); email != "" {
		config.Admin.Email = email
	}
	if pass := os.Getenv("ADMIN_INITIAL_PASSWORD"); pass != "" {
		config.Admin.InitialPassword = pass
	}
	if days := os.Getenv("REQUEST_EXPIRY_DAYS"); days != "" {
		if d, err := strconv.Atoi(days); err == nil && d > 0 {
			config.Requests.ExpiryAfter = time.Duration(d) * 24 * time.Hour
		}
	}
	if spec := os.Getenv("REQUEST_EXPIRY_SWEEP"); spec != "" {
		config.Requests.SweepSpec = spec
	}
}

// parseOrigins accepts either a JSON array or a comma-separated list.
// Duplicates are removed.
func parseOrigins(raw string) []string {
	var origins []string
	if err := json.Unmarshal([]byte(raw), &origins); err != nil {
		origins = strings.Split(raw, ",")
	}
	seen := make(map[string]bool, len(origins))
	out := make([]string, 0, len(origins))
	for _, o := range origins {
		o = strings.TrimSpace(o)
		if o == "" || seen[o] {
			continue
		}
		seen[o] = true
		out = append(out, o)
	}
	return out
}

// GetDatabaseURL returns the database connection string
func (c *DatabaseConfig) GetDatabaseURL() string {
	if c.URL != "" {
		return c.URL
	}
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.DBName, c.SSLMode)
}

// GetServerAddr returns the server address
func (c *ServerConfig) GetServerAddr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}
