package config

import (
	"log"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

// Config holds all the configuration for the application.
type Config struct {
	Env        string `yaml:"env" env:"ENV" env-default:"production"`
	HTTPServer `yaml:"http_server"`
	Database   `yaml:"database"`
	Tracking   `yaml:"tracking"`
	Identity   `yaml:"identity"`
}

// HTTPServer holds HTTP server specific configuration.
type HTTPServer struct {
	Address string `yaml:"address" env:"HTTP_SERVER_ADDRESS" env-default:":8080"`
}

// Database holds PostgreSQL connection configuration.
type Database struct {
	Host            string `yaml:"host" env:"DB_HOST" env-default:"localhost"`
	Port            int    `yaml:"port" env:"DB_PORT" env-default:"5432"`
	User            string `yaml:"user" env:"DB_USER" env-default:"postgres"`
	Password        string `yaml:"password" env:"DB_PASSWORD" env-default:""`
	DBName          string `yaml:"dbname" env:"DB_NAME" env-default:"mailtrack"`
	SSLMode         string `yaml:"sslmode" env:"DB_SSLMODE" env-default:"disable"`
	Timezone        string `yaml:"timezone" env:"DB_TIMEZONE" env-default:"UTC"`
	MaxIdleConns    int    `yaml:"max_idle_conns" env:"DB_MAX_IDLE_CONNS" env-default:"5"`
	MaxOpenConns    int    `yaml:"max_open_conns" env:"DB_MAX_OPEN_CONNS" env-default:"20"`
	ConnMaxLifetime string `yaml:"conn_max_lifetime" env:"DB_CONN_MAX_LIFETIME" env-default:"1h"`
	AutoMigrate     bool   `yaml:"auto_migrate" env:"DB_AUTO_MIGRATE" env-default:"true"`
	SeedData        bool   `yaml:"seed_data" env:"DB_SEED_DATA" env-default:"false"`
}

// Tracking holds tracking-record specific configuration.
type Tracking struct {
	// Timezone is the display/record timezone name (IANA). Required:
	// every GeneratedOn/AccessedOn timestamp is captured in this zone.
	Timezone string `yaml:"timezone" env:"TIMEZONE"`
	// BaseURL is the public origin used when rendering pixel URLs.
	BaseURL string `yaml:"base_url" env:"BASE_URL" env-default:"http://localhost:8080"`
}

// Identity holds identity-collaborator configuration.
type Identity struct {
	// Mode selects the sign-in provider: "remote" (HTTPS password
	// sign-in endpoint) or "local" (bcrypt hashes in the store).
	Mode           string `yaml:"mode" env:"IDENTITY_MODE" env-default:"remote"`
	APIKey         string `yaml:"api_key" env:"IDENTITY_API_KEY"`
	SignInEndpoint string `yaml:"sign_in_endpoint" env:"IDENTITY_SIGN_IN_ENDPOINT" env-default:"https://identitytoolkit.googleapis.com/v1/accounts:signInWithPassword"`
	SessionSecret  string `yaml:"session_secret" env:"SESSION_SECRET"`
	// Seed credentials for the local provider (used when seed_data is on).
	SeedEmail    string `yaml:"seed_email" env:"IDENTITY_SEED_EMAIL" env-default:""`
	SeedPassword string `yaml:"seed_password" env:"IDENTITY_SEED_PASSWORD" env-default:""`
}

// MustLoad loads the application configuration.
func MustLoad() *Config {
	// Try to load .env file (ignore error in production)
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, reading from environment variables")
	}

	var cfg Config

	// Check if config file path is specified
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config/local.yml" // default path
	}

	// Try to load config file
	if _, err := os.Stat(configPath); err == nil {
		if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
			log.Fatalf("cannot read config: %s", err)
		}
	} else {
		// If config file doesn't exist, use environment variables only
		log.Println("Config file not found, using environment variables only")
		if err := cleanenv.ReadEnv(&cfg); err != nil {
			log.Fatalf("cannot read config from environment: %s", err)
		}
	}

	mustValidate(&cfg)

	return &cfg
}

// mustValidate enforces the startup-fatal requirements: a resolvable
// record timezone and, in remote mode, the identity API key.
func mustValidate(cfg *Config) {
	if cfg.Tracking.Timezone == "" {
		log.Fatal("TIMEZONE is required")
	}
	if _, err := time.LoadLocation(cfg.Tracking.Timezone); err != nil {
		log.Fatalf("invalid TIMEZONE %q: %s", cfg.Tracking.Timezone, err)
	}
	if cfg.Identity.Mode != "remote" && cfg.Identity.Mode != "local" {
		log.Fatalf("invalid IDENTITY_MODE %q: must be \"remote\" or \"local\"", cfg.Identity.Mode)
	}
	if cfg.Identity.Mode == "remote" && cfg.Identity.APIKey == "" {
		log.Fatal("IDENTITY_API_KEY is required in remote identity mode")
	}
	if cfg.Identity.SessionSecret == "" {
		log.Fatal("SESSION_SECRET is required")
	}
}

// Location resolves the configured record timezone. MustLoad has
// already verified it, so failure here is a programming error.
func (t *Tracking) Location() *time.Location {
	loc, err := time.LoadLocation(t.Timezone)
	if err != nil {
		panic(err)
	}
	return loc
}
