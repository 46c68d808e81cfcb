package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

func init() {
	// Load .env file if it exists (silent fail if not)
	_ = godotenv.Load()
}

// Config holds all application configuration loaded from environment variables.
type Config struct {
	Server  ServerConfig
	App     AppConfig
	Auth    AuthConfig
	Admin   AdminConfig
	DB      DatabaseConfig
	Storage StorageConfig
	Cache   CacheConfig
	CRM     CRMConfig
	Hosts   HostConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host            string        `envconfig:"SERVER_HOST" default:"0.0.0.0"`
	Port            int           `envconfig:"SERVER_PORT" default:"8080"`
	ReadTimeout     time.Duration `envconfig:"SERVER_READ_TIMEOUT" default:"15s"`
	WriteTimeout    time.Duration `envconfig:"SERVER_WRITE_TIMEOUT" default:"60s"`
	ShutdownTimeout time.Duration `envconfig:"SERVER_SHUTDOWN_TIMEOUT" default:"30s"`
}

// AppConfig holds application-level settings.
type AppConfig struct {
	Name        string `envconfig:"APP_NAME" default:"safenetwork-api"`
	Environment string `envconfig:"APP_ENV" default:"development"`
	Debug       bool   `envconfig:"APP_DEBUG" default:"false"`
	Version     string `envconfig:"APP_VERSION" default:"1.0.0"`
}

// AuthConfig holds identity-provider settings. Tokens are verified against
// the provider's userinfo endpoint on every request; nothing is cached.
type AuthConfig struct {
	ProviderDomain string        `envconfig:"AUTH_PROVIDER_DOMAIN" default:"dev-108l0dja21yjpvlf.us.auth0.com"`
	UserinfoURL    string        `envconfig:"AUTH_USERINFO_URL" default:""`
	Timeout        time.Duration `envconfig:"AUTH_TIMEOUT" default:"5s"`
}

// AdminConfig holds the role-derivation rules. Only verified emails on
// EmailDomain become admins; SuperAdminEmail can never be demoted.
type AdminConfig struct {
	EmailDomain     string `envconfig:"ADMIN_EMAIL_DOMAIN" default:"safenetwork.shop"`
	SuperAdminEmail string `envconfig:"SUPER_ADMIN_EMAIL" default:"admin@safenetwork.shop"`
}

// DatabaseConfig holds PostgreSQL connection settings.
type DatabaseConfig struct {
	Host     string `envconfig:"DB_HOST" default:"localhost"`
	Port     int    `envconfig:"DB_PORT" default:"5432"`
	Name     string `envconfig:"DB_NAME" default:"safenetwork"`
	User     string `envconfig:"DB_USER" default:"postgres"`
	Password string `envconfig:"DB_PASS" default:""`
	SSLMode  string `envconfig:"DB_SSLMODE" default:"disable"`
}

// StorageConfig holds MinIO blob storage settings.
type StorageConfig struct {
	Endpoint         string `envconfig:"STORAGE_ENDPOINT" default:"localhost:9000"`
	AccessKey        string `envconfig:"STORAGE_ACCESS_KEY" default:"minioadmin"`
	SecretKey        string `envconfig:"STORAGE_SECRET_KEY" default:"minioadmin"`
	UseSSL           bool   `envconfig:"STORAGE_USE_SSL" default:"false"`
	PublicBaseURL    string `envconfig:"STORAGE_PUBLIC_BASE_URL" default:"http://localhost:9000"`
	CollectionBucket string `envconfig:"STORAGE_COLLECTION_BUCKET" default:"collection-photos"`
	InventoryBucket  string `envconfig:"STORAGE_INVENTORY_BUCKET" default:"inventory-photos"`
	MaxUploadBytes   int64  `envconfig:"STORAGE_MAX_UPLOAD_BYTES" default:"5242880"`
}

// CacheConfig holds cache settings for public listings.
type CacheConfig struct {
	Type string        `envconfig:"CACHE_TYPE" default:"memory"`
	TTL  time.Duration `envconfig:"CACHE_TTL" default:"1m"`

	RedisHost     string `envconfig:"REDIS_HOST" default:"localhost"`
	RedisPort     int    `envconfig:"REDIS_PORT" default:"6379"`
	RedisPassword string `envconfig:"REDIS_PASSWORD" default:""`
	RedisDB       int    `envconfig:"REDIS_DB" default:"0"`
}

// CRMConfig holds outbound CRM API settings.
type CRMConfig struct {
	BaseURL string        `envconfig:"CRM_BASE_URL" default:"https://track.customer.io"`
	SiteID  string        `envconfig:"CRM_SITE_ID" default:""`
	APIKey  string        `envconfig:"CRM_API_KEY" default:""`
	Timeout time.Duration `envconfig:"CRM_TIMEOUT" default:"5s"`
}

// HostConfig holds the static host→category access table for the admin
// inventory ledger, in "slug:cat1|cat2;slug2:cat3" form.
type HostConfig struct {
	Categories string `envconfig:"HOST_CATEGORIES" default:"coinvault:coins|bullion;pokepulls:pokemon_cards|pokemon_sealed;slabcity:sports_cards"`
}

// Address returns the server address in host:port format.
func (s *ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// DSN returns the PostgreSQL connection string.
func (d *DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode)
}

// RedisAddress returns the Redis address in host:port format.
func (c *CacheConfig) RedisAddress() string {
	return fmt.Sprintf("%s:%d", c.RedisHost, c.RedisPort)
}

// Userinfo returns the userinfo endpoint URL, deriving it from the
// provider domain unless set explicitly.
func (a *AuthConfig) Userinfo() string {
	if a.UserinfoURL != "" {
		return a.UserinfoURL
	}
	return fmt.Sprintf("https://%s/userinfo", a.ProviderDomain)
}

// CategoryTable parses the host→category mapping. Unknown or malformed
// entries are skipped rather than failing startup.
func (h *HostConfig) CategoryTable() map[string][]string {
	table := make(map[string][]string)
	for _, entry := range strings.Split(h.Categories, ";") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		parts := strings.SplitN(entry, ":", 2)
		if len(parts) != 2 {
			continue
		}
		slug := strings.TrimSpace(parts[0])
		var cats []string
		for _, c := range strings.Split(parts[1], "|") {
			if c = strings.TrimSpace(c); c != "" {
				cats = append(cats, c)
			}
		}
		if slug != "" && len(cats) > 0 {
			table[slug] = cats
		}
	}
	return table
}

// IsDevelopment returns true if running in development mode.
func (a *AppConfig) IsDevelopment() bool {
	return a.Environment == "development"
}

// IsProduction returns true if running in production mode.
func (a *AppConfig) IsProduction() bool {
	return a.Environment == "production"
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	var cfg Config

	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	return &cfg, nil
}

// MustLoad loads configuration or panics on error.
func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		panic(err)
	}
	return cfg
}
