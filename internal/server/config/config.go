// Package config loads the runtime settings of the aureum services. Values
// are layered: per-service defaults, an optional JSON file (-c/-config),
// environment variables with a per-service prefix and finally command-line
// flags.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"time"
)

// Service names accepted by LoadConfig.
const (
	ServiceAuth     = "auth"
	ServiceProfiles = "profiles"
	ServiceTeams    = "teams"
)

// Blob backends.
const (
	BlobBackendMongo = "mongo"
	BlobBackendS3    = "s3"
)

const EnvironmentProduction = "production"

// Config holds runtime settings for one service.
//
// DatabaseDSN, when set, replaces the DSN built from the DB* fields.
// MongoTLSInsecure disables certificate checks and is refused in production.
type Config struct {
	Service     string
	Environment string `env:"ENVIRONMENT"`
	LogLevel    string `env:"LOG_LEVEL"`

	HTTPAddr        string        `env:"HTTP_ADDR"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT"`

	DatabaseDSN   string `env:"DATABASE_DSN"`
	DBHost        string `env:"DB_HOST"`
	DBPort        int    `env:"DB_PORT"`
	DBUser        string `env:"DB_USER"`
	DBPassword    string `env:"DB_PASSWORD"`
	DBName        string `env:"DB_NAME"`
	DBSSLMode     string `env:"DB_SSLMODE"`
	RunMigrations bool   `env:"RUN_MIGRATIONS"`

	BlobBackend      string `env:"BLOB_BACKEND"`
	MongoURI         string `env:"MONGO_URI"`
	MongoDatabase    string `env:"MONGO_DATABASE"`
	MongoCollection  string `env:"MONGO_COLLECTION"`
	MongoTLSInsecure bool   `env:"MONGO_TLS_INSECURE"`

	S3RootUser     string `env:"S3_ROOT_USER"`
	S3RootPassword string `env:"S3_ROOT_PASSWORD"`
	S3Bucket       string `env:"S3_BUCKET"`
	S3Region       string `env:"S3_REGION"`
	S3BaseEndpoint string `env:"S3_BASE_ENDPOINT"`

	ProfileServiceURL     string        `env:"PROFILE_SERVICE_URL"`
	ProfileServiceTimeout time.Duration `env:"PROFILE_SERVICE_TIMEOUT"`

	SecretKey                   string        `env:"SECRET_KEY"`
	AccessTokenValidityDuration time.Duration `env:"ACCESS_TOKEN_VALIDITY"`
}

// LoadDefaults populates c with development defaults for c.Service.
// The credentials are insecure and must be overridden in production.
func (c *Config) LoadDefaults() {
	c.Environment = "development"
	c.LogLevel = "info"
	c.ShutdownTimeout = 10 * time.Second

	c.DBHost = "localhost"
	c.DBPort = 5432
	c.DBUser = "postgres"
	c.DBPassword = "postgres"
	c.DBSSLMode = "disable"
	c.RunMigrations = true

	c.BlobBackend = BlobBackendMongo
	c.MongoURI = "mongodb://localhost:27017"
	c.MongoDatabase = "aureum"

	c.S3RootUser = "admin"
	c.S3RootPassword = "secretpassword"
	c.S3Region = "us-east-1"
	c.S3BaseEndpoint = "http://127.0.0.1:9000/"

	c.ProfileServiceTimeout = 5 * time.Second
	c.AccessTokenValidityDuration = 30 * time.Minute

	switch c.Service {
	case ServiceAuth:
		c.HTTPAddr = ":8000"
		c.DBName = "aureum_auth"
		c.ProfileServiceURL = "http://localhost:8001"
		c.SecretKey = "secretKey"
	case ServiceProfiles:
		c.HTTPAddr = ":8001"
		c.DBName = "aureum_profiles"
		c.MongoCollection = "avatars"
		c.S3Bucket = "avatars"
	case ServiceTeams:
		c.HTTPAddr = ":8002"
		c.DBName = "aureum_teams"
		c.MongoCollection = "course_images"
		c.S3Bucket = "course-images"
	}
}

// DSN returns the Postgres connection string.
func (c *Config) DSN() string {
	if c.DatabaseDSN != "" {
		return c.DatabaseDSN
	}
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(c.DBUser, c.DBPassword),
		Host:   fmt.Sprintf("%s:%d", c.DBHost, c.DBPort),
		Path:   "/" + c.DBName,
	}
	q := url.Values{}
	if c.DBSSLMode != "" {
		q.Set("sslmode", c.DBSSLMode)
	}
	u.RawQuery = q.Encode()
	return u.String()
}

// Validate reports settings the service cannot run with.
func (c *Config) Validate() error {
	var errs []error

	switch c.Service {
	case ServiceAuth:
		if c.SecretKey == "" {
			errs = append(errs, errors.New("secret key must be set"))
		}
		if c.ProfileServiceURL == "" {
			errs = append(errs, errors.New("profile service url must be set"))
		}
		if c.ProfileServiceTimeout <= 0 {
			errs = append(errs, errors.New("profile service timeout must be positive"))
		}
	case ServiceProfiles, ServiceTeams:
		if c.BlobBackend != BlobBackendMongo && c.BlobBackend != BlobBackendS3 {
			errs = append(errs, fmt.Errorf("unknown blob backend %q", c.BlobBackend))
		}
		if c.MongoTLSInsecure && c.Environment == EnvironmentProduction {
			errs = append(errs, errors.New("mongo tls-insecure is not allowed in production"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown service %q", c.Service))
	}

	if c.HTTPAddr == "" {
		errs = append(errs, errors.New("http address must be set"))
	}

	return errors.Join(errs...)
}

// LoadConfig builds the Config of service: defaults, then JSON, then
// environment, then flags.
func LoadConfig(service string) *Config {
	cfg := &Config{Service: service}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseEnv(cfg)
	parseFlags(cfg)
	return cfg
}
