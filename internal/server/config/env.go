package config

import (
	"errors"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const envPrefix = "SIGNIFY_"

// parseEnv loads the given dotenv files (missing files are skipped, variables
// already set in the process win) and then overlays SIGNIFY_* variables.
// Malformed values panic.
func parseEnv(config *Config, dotenvFiles ...string) {
	for _, f := range dotenvFiles {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			panic(err)
		}
	}

	envString("HTTP_ADDR", &config.HTTPAddr)
	envString("DATABASE_DSN", &config.DatabaseDSN)
	envString("SERVICE_DATABASE_DSN", &config.ServiceDatabaseDSN)
	envString("SECRET_KEY", &config.SecretKey)
	envDuration("ACCESS_TOKEN_VALIDITY", &config.AccessTokenValidityDuration)
	envDuration("REFRESH_TOKEN_VALIDITY", &config.RefreshTokenValidityDuration)
	envBool("RECLAIM_ENABLED", &config.ReclaimEnabled)
	envDuration("RECLAIM_INTERVAL", &config.ReclaimInterval)
	envList("CORS_ALLOWED_ORIGINS", &config.CORSAllowedOrigins)
	envString("LOG_LEVEL", &config.LogLevel)
	envString("LOG_FORMAT", &config.LogFormat)
	envString("S3_ROOT_USER", &config.S3RootUser)
	envString("S3_ROOT_PASSWORD", &config.S3RootPassword)
	envString("S3_BUCKET", &config.S3Bucket)
	envString("S3_REGION", &config.S3Region)
	envString("S3_BASE_ENDPOINT", &config.S3BaseEndpoint)
}

func envString(key string, dst *string) {
	if v, ok := os.LookupEnv(envPrefix + key); ok {
		*dst = v
	}
}

func envDuration(key string, dst *time.Duration) {
	if v, ok := os.LookupEnv(envPrefix + key); ok {
		d, err := time.ParseDuration(v)
		if err != nil {
			panic(err)
		}
		*dst = d
	}
}

func envBool(key string, dst *bool) {
	if v, ok := os.LookupEnv(envPrefix + key); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			panic(err)
		}
		*dst = b
	}
}

func envList(key string, dst *[]string) {
	if v, ok := os.LookupEnv(envPrefix + key); ok {
		*dst = splitList(v)
	}
}

func splitList(v string) []string {
	var out []string
	for _, p := range strings.Split(v, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
