package config

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/jaftdelgado/aureum-services/internal/flagx"
)

// Duration accepts either a Go duration string ("5s") or integer
// nanoseconds in JSON.
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalJSON(b []byte) error {
	var v any
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	switch value := v.(type) {
	case float64:
		d.Duration = time.Duration(value)
	case string:
		parsed, err := time.ParseDuration(value)
		if err != nil {
			return err
		}
		d.Duration = parsed
	default:
		return fmt.Errorf("invalid duration %v", v)
	}
	return nil
}

// JsonConfig mirrors Config for decoding. Pointer fields distinguish an
// absent key from a zero value, so a partial file only overrides what it
// names.
type JsonConfig struct {
	Environment *string `json:"environment"`
	LogLevel    *string `json:"log_level"`

	HTTPAddr        *string   `json:"http_addr"`
	ShutdownTimeout *Duration `json:"shutdown_timeout"`

	DatabaseDSN   *string `json:"database_dsn"`
	DBHost        *string `json:"db_host"`
	DBPort        *int    `json:"db_port"`
	DBUser        *string `json:"db_user"`
	DBPassword    *string `json:"db_password"`
	DBName        *string `json:"db_name"`
	DBSSLMode     *string `json:"db_sslmode"`
	RunMigrations *bool   `json:"run_migrations"`

	BlobBackend      *string `json:"blob_backend"`
	MongoURI         *string `json:"mongo_uri"`
	MongoDatabase    *string `json:"mongo_database"`
	MongoCollection  *string `json:"mongo_collection"`
	MongoTLSInsecure *bool   `json:"mongo_tls_insecure"`

	S3RootUser     *string `json:"s3_root_user"`
	S3RootPassword *string `json:"s3_root_password"`
	S3Bucket       *string `json:"s3_bucket"`
	S3Region       *string `json:"s3_region"`
	S3BaseEndpoint *string `json:"s3_base_endpoint"`

	ProfileServiceURL     *string   `json:"profile_service_url"`
	ProfileServiceTimeout *Duration `json:"profile_service_timeout"`

	SecretKey                   *string   `json:"secret_key"`
	AccessTokenValidityDuration *Duration `json:"access_token_validity_duration"`
}

func set[T any](dst *T, src *T) {
	if src != nil {
		*dst = *src
	}
}

func setDuration(dst *time.Duration, src *Duration) {
	if src != nil {
		*dst = src.Duration
	}
}

// parseJson overlays the file named by -c/-config, if any. An unreadable or
// malformed file panics.
func parseJson(config *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()
	if jsonConfigFile == "" {
		return
	}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	c := &JsonConfig{}
	if err := json.Unmarshal(file, c); err != nil {
		panic(err)
	}

	set(&config.Environment, c.Environment)
	set(&config.LogLevel, c.LogLevel)
	set(&config.HTTPAddr, c.HTTPAddr)
	setDuration(&config.ShutdownTimeout, c.ShutdownTimeout)

	set(&config.DatabaseDSN, c.DatabaseDSN)
	set(&config.DBHost, c.DBHost)
	set(&config.DBPort, c.DBPort)
	set(&config.DBUser, c.DBUser)
	set(&config.DBPassword, c.DBPassword)
	set(&config.DBName, c.DBName)
	set(&config.DBSSLMode, c.DBSSLMode)
	set(&config.RunMigrations, c.RunMigrations)

	set(&config.BlobBackend, c.BlobBackend)
	set(&config.MongoURI, c.MongoURI)
	set(&config.MongoDatabase, c.MongoDatabase)
	set(&config.MongoCollection, c.MongoCollection)
	set(&config.MongoTLSInsecure, c.MongoTLSInsecure)

	set(&config.S3RootUser, c.S3RootUser)
	set(&config.S3RootPassword, c.S3RootPassword)
	set(&config.S3Bucket, c.S3Bucket)
	set(&config.S3Region, c.S3Region)
	set(&config.S3BaseEndpoint, c.S3BaseEndpoint)

	set(&config.ProfileServiceURL, c.ProfileServiceURL)
	setDuration(&config.ProfileServiceTimeout, c.ProfileServiceTimeout)

	set(&config.SecretKey, c.SecretKey)
	setDuration(&config.AccessTokenValidityDuration, c.AccessTokenValidityDuration)
}
