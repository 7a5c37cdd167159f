package config

import (
	"flag"
	"os"
	"strings"
	"time"

	"github.com/dmitrijs2005/signify/internal/flagx"
)

var knownFlags = []string{
	"-a", "-d", "-sd", "-s", "-t", "-r", "-i", "-reclaim", "-o",
	"-l", "-f", "-u", "-p", "-b", "-g", "-e",
}

// parseFlags populates Config fields from command-line flags.
//
// Supported flags:
//
//	-a string    HTTP bind address (e.g., ":8080")
//	-d string    PostgreSQL DSN
//	-sd string   elevated PostgreSQL DSN for the reclaimer
//	-s string    JWT HMAC secret key
//	-t int       access token validity, minutes
//	-r int       refresh token validity, minutes
//	-i duration  reclaimer interval (e.g., "1h")
//	-reclaim     run the reclaimer on a schedule
//	-o string    comma-separated CORS origins
//	-l string    log level
//	-f string    log format ("json" or "console")
//	-u, -p, -b, -g, -e   S3 user, password, bucket, region, endpoint
//
// os.Args is filtered with flagx.FilterArgs first so flags owned by other
// components (cobra subcommands, go test) do not collide.
func parseFlags(config *Config) {
	args := flagx.FilterArgs(os.Args[1:], knownFlags)

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.HTTPAddr, "a", config.HTTPAddr, "address and port to run server")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.ServiceDatabaseDSN, "sd", config.ServiceDatabaseDSN, "service database DSN (reclaimer)")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "secret key")

	accessTokenValidityDuration := fs.Int("t", int(config.AccessTokenValidityDuration.Minutes()), "access_token_validity_duration (in minutes)")
	refreshTokenValidityDuration := fs.Int("r", int(config.RefreshTokenValidityDuration.Minutes()), "refresh_token_validity_duration (in minutes)")

	fs.DurationVar(&config.ReclaimInterval, "i", config.ReclaimInterval, "streak reclaimer interval")
	fs.BoolVar(&config.ReclaimEnabled, "reclaim", config.ReclaimEnabled, "run streak reclaimer on schedule")
	origins := fs.String("o", strings.Join(config.CORSAllowedOrigins, ","), "CORS allowed origins")

	fs.StringVar(&config.LogLevel, "l", config.LogLevel, "log level")
	fs.StringVar(&config.LogFormat, "f", config.LogFormat, "log format")

	fs.StringVar(&config.S3RootUser, "u", config.S3RootUser, "S3 root user")
	fs.StringVar(&config.S3RootPassword, "p", config.S3RootPassword, "S3 root password")
	fs.StringVar(&config.S3Bucket, "b", config.S3Bucket, "S3 bucket")
	fs.StringVar(&config.S3Region, "g", config.S3Region, "S3 region")
	fs.StringVar(&config.S3BaseEndpoint, "e", config.S3BaseEndpoint, "S3 base endpoint")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	config.AccessTokenValidityDuration = time.Duration(*accessTokenValidityDuration) * time.Minute
	config.RefreshTokenValidityDuration = time.Duration(*refreshTokenValidityDuration) * time.Minute
	config.CORSAllowedOrigins = splitList(*origins)
}
