package config

import (
	"os"
	"strconv"
	"time"
)

// Counter backends
const (
	BackendPostgres = "postgres"
	BackendRedis    = "redis"
	BackendMemory   = "memory"
)

// Config holds all application configuration loaded from environment variables.
type Config struct {
	// Environment
	Env string // "development", "preview", "production"

	// Server
	ServerAddr string
	BaseURL    string

	// Catalog
	CatalogPath  string // source XML read at build time
	PublicDir    string // where extensions.json and site.webmanifest are written
	WatchCatalog bool   // reload the catalog when the source changes (development)

	// Click counter service
	CounterBackend  string        // postgres, redis or memory
	CounterURL      string        // base URL of the click counter API, defaults to BaseURL
	RefreshInterval time.Duration // bulk click count refresh period

	// Database
	DatabaseURL string

	// Redis (click counter backend and limiter/session storage)
	RedisURL string

	// TLS
	TLSEnabled  bool
	TLSCertFile string
	TLSKeyFile  string

	// OIDC (optional)
	OIDCIssuer       string
	OIDCClientID     string
	OIDCClientSecret string
	OIDCRedirectURL  string

	// Session
	SessionSecret string // Used for signing cookies (min 32 chars)

	// CORS
	CORSOrigins string // Comma-separated allowed origins

	// Analytics
	SearchDebounce time.Duration

	// Site Branding
	SiteTitle       string // env: SITE_TITLE, default: "Awesome Arcade Extensions"
	SiteDescription string // env: SITE_DESCRIPTION
	SiteConfigFile  string // env: SITE_CONFIG_FILE, default: "site.yaml"
}

// Load reads configuration from environment variables with sensible defaults.
func Load() *Config {
	baseURL := getEnv("BASE_URL", "http://localhost:3000")
	return &Config{
		Env:              getEnv("ENV", "development"),
		ServerAddr:       getEnv("SERVER_ADDR", ":3000"),
		BaseURL:          baseURL,
		CatalogPath:      getEnv("CATALOG_PATH", "data/extensions.xml"),
		PublicDir:        getEnv("PUBLIC_DIR", "public"),
		WatchCatalog:     getEnv("WATCH_CATALOG", "") != "",
		CounterBackend:   getEnv("COUNTER_BACKEND", BackendPostgres),
		CounterURL:       getEnv("COUNTER_URL", baseURL),
		RefreshInterval:  getDuration("REFRESH_INTERVAL", 2*time.Minute),
		DatabaseURL:      getEnv("DATABASE_URL", "postgres://localhost:5432/awesomearcade?sslmode=disable"),
		RedisURL:         getEnv("REDIS_URL", ""),
		TLSEnabled:       getEnv("TLS_ENABLED", "") != "",
		TLSCertFile:      getEnv("TLS_CERT_FILE", ""),
		TLSKeyFile:       getEnv("TLS_KEY_FILE", ""),
		OIDCIssuer:       getEnv("OIDC_ISSUER", ""),
		OIDCClientID:     getEnv("OIDC_CLIENT_ID", ""),
		OIDCClientSecret: getEnv("OIDC_CLIENT_SECRET", ""),
		OIDCRedirectURL:  getEnv("OIDC_REDIRECT_URL", "http://localhost:3000/auth/callback"),
		SessionSecret:    getEnv("SESSION_SECRET", "change-me-in-production-min-32-chars"),
		CORSOrigins:      getEnv("CORS_ORIGINS", ""),
		SearchDebounce:   getDuration("SEARCH_DEBOUNCE", time.Second),

		SiteTitle:       getEnv("SITE_TITLE", "Awesome Arcade Extensions"),
		SiteDescription: getEnv("SITE_DESCRIPTION", "This is a list of MakeCode Arcade extensions that I find super useful (or just plain cool) in my projects."),
		SiteConfigFile:  getEnv("SITE_CONFIG_FILE", "site.yaml"),
	}
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

// getDuration accepts Go duration strings ("90s") or a bare number of seconds.
func getDuration(key string, fallback time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	if d, err := time.ParseDuration(value); err == nil && d > 0 {
		return d
	}
	if secs, err := strconv.Atoi(value); err == nil && secs > 0 {
		return time.Duration(secs) * time.Second
	}
	return fallback
}

// IsDev returns true if the environment is set to development.
func (c *Config) IsDev() bool {
	return c.Env == "development" || c.Env == "dev"
}

// IsPreview returns true for preview deployments.
func (c *Config) IsPreview() bool {
	return c.Env == "preview"
}

// TitleSuffix returns the page title suffix for the current environment.
func (c *Config) TitleSuffix() string {
	switch {
	case c.IsDev():
		return " Development"
	case c.IsPreview():
		return " Beta"
	default:
		return ""
	}
}

// PageTitle formats a page title the way every page of the site shows it.
func (c *Config) PageTitle(page string) string {
	return page + " | " + c.SiteTitle + c.TitleSuffix()
}

// OIDCEnabled reports whether an OIDC issuer has been configured.
func (c *Config) OIDCEnabled() bool {
	return c.OIDCIssuer != ""
}
