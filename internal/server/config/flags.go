package config

import (
	"flag"
	"os"
	"time"

	"github.com/jaftdelgado/aureum-services/internal/flagx"
)

// parseFlags overlays command-line flags.
//
//	-a string   HTTP bind address (e.g. ":8002")
//	-d string   PostgreSQL DSN, overrides the db_* settings
//	-m string   MongoDB URI
//	-b string   blob backend: mongo or s3
//	-p string   profile service base URL (auth)
//	-s string   JWT HMAC secret key
//	-t int      access token validity, minutes
//	-l string   log level
//
// Only these flags are read from os.Args, so -c/-config and flags of other
// parsers pass through untouched.
func parseFlags(config *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-d", "-m", "-b", "-p", "-s", "-t", "-l"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.HTTPAddr, "a", config.HTTPAddr, "address and port to run server")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.MongoURI, "m", config.MongoURI, "mongodb uri")
	fs.StringVar(&config.BlobBackend, "b", config.BlobBackend, "blob backend (mongo|s3)")
	fs.StringVar(&config.ProfileServiceURL, "p", config.ProfileServiceURL, "profile service base url")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "secret key")
	accessTokenValidity := fs.Int("t", int(config.AccessTokenValidityDuration.Minutes()), "access token validity (in minutes)")
	fs.StringVar(&config.LogLevel, "l", config.LogLevel, "log level")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	config.AccessTokenValidityDuration = time.Duration(*accessTokenValidity) * time.Minute
}
