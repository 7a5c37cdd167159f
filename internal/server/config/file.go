package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/dmitrijs2005/signify/internal/flagx"
	"github.com/dmitrijs2005/signify/internal/timex"
	"gopkg.in/yaml.v3"
)

// FileConfig is the on-disk shape of a config file. Durations accept both
// strings such as "15m" and integer nanoseconds.
type FileConfig struct {
	HTTPAddr                     string         `json:"http_addr" yaml:"http_addr"`
	DatabaseDSN                  string         `json:"database_dsn" yaml:"database_dsn"`
	ServiceDatabaseDSN           string         `json:"service_database_dsn" yaml:"service_database_dsn"`
	SecretKey                    string         `json:"secret_key" yaml:"secret_key"`
	AccessTokenValidityDuration  timex.Duration `json:"access_token_validity_duration" yaml:"access_token_validity_duration"`
	RefreshTokenValidityDuration timex.Duration `json:"refresh_token_validity_duration" yaml:"refresh_token_validity_duration"`
	ReclaimEnabled               bool           `json:"reclaim_enabled" yaml:"reclaim_enabled"`
	ReclaimInterval              timex.Duration `json:"reclaim_interval" yaml:"reclaim_interval"`
	CORSAllowedOrigins           []string       `json:"cors_allowed_origins" yaml:"cors_allowed_origins"`
	LogLevel                     string         `json:"log_level" yaml:"log_level"`
	LogFormat                    string         `json:"log_format" yaml:"log_format"`
	S3RootUser                   string         `json:"s3_root_user" yaml:"s3_root_user"`
	S3RootPassword               string         `json:"s3_root_password" yaml:"s3_root_password"`
	S3Bucket                     string         `json:"s3_bucket" yaml:"s3_bucket"`
	S3Region                     string         `json:"s3_region" yaml:"s3_region"`
	S3BaseEndpoint               string         `json:"s3_base_endpoint" yaml:"s3_base_endpoint"`
}

func fileConfigFrom(c *Config) *FileConfig {
	return &FileConfig{
		HTTPAddr:                     c.HTTPAddr,
		DatabaseDSN:                  c.DatabaseDSN,
		ServiceDatabaseDSN:           c.ServiceDatabaseDSN,
		SecretKey:                    c.SecretKey,
		AccessTokenValidityDuration:  timex.Duration{Duration: c.AccessTokenValidityDuration},
		RefreshTokenValidityDuration: timex.Duration{Duration: c.RefreshTokenValidityDuration},
		ReclaimEnabled:               c.ReclaimEnabled,
		ReclaimInterval:              timex.Duration{Duration: c.ReclaimInterval},
		CORSAllowedOrigins:           c.CORSAllowedOrigins,
		LogLevel:                     c.LogLevel,
		LogFormat:                    c.LogFormat,
		S3RootUser:                   c.S3RootUser,
		S3RootPassword:               c.S3RootPassword,
		S3Bucket:                     c.S3Bucket,
		S3Region:                     c.S3Region,
		S3BaseEndpoint:               c.S3BaseEndpoint,
	}
}

func (f *FileConfig) apply(c *Config) {
	c.HTTPAddr = f.HTTPAddr
	c.DatabaseDSN = f.DatabaseDSN
	c.ServiceDatabaseDSN = f.ServiceDatabaseDSN
	c.SecretKey = f.SecretKey
	c.AccessTokenValidityDuration = f.AccessTokenValidityDuration.Duration
	c.RefreshTokenValidityDuration = f.RefreshTokenValidityDuration.Duration
	c.ReclaimEnabled = f.ReclaimEnabled
	c.ReclaimInterval = f.ReclaimInterval.Duration
	c.CORSAllowedOrigins = f.CORSAllowedOrigins
	c.LogLevel = f.LogLevel
	c.LogFormat = f.LogFormat
	c.S3RootUser = f.S3RootUser
	c.S3RootPassword = f.S3RootPassword
	c.S3Bucket = f.S3Bucket
	c.S3Region = f.S3Region
	c.S3BaseEndpoint = f.S3BaseEndpoint
}

// parseFile overlays values from the file named by -c/-config. Keys absent
// from the file keep their current values. Files ending in .yaml or .yml are
// decoded as YAML, anything else as JSON.
//
// If the file cannot be read or decoded, parseFile panics.
func parseFile(config *Config) {
	path := flagx.ConfigFileFlag()

	// nothing to load
	if path == "" {
		return
	}

	data, err := os.ReadFile(path)
	if err != nil {
		panic(err)
	}

	fc := fileConfigFrom(config)
	if err := decodeFile(path, data, fc); err != nil {
		panic(err)
	}
	fc.apply(config)
}

func decodeFile(path string, data []byte, fc *FileConfig) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, fc); err != nil {
			return fmt.Errorf("decode yaml config %s: %w", path, err)
		}
	default:
		if err := json.Unmarshal(data, fc); err != nil {
			return fmt.Errorf("decode json config %s: %w", path, err)
		}
	}
	return nil
}
