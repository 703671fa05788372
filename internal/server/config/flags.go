package config

import (
	"flag"
	"io"
	"time"

	"github.com/dmitrijs2005/tasktracker/internal/flagx"
)

// serverFlags lists the flags owned by the server configuration.
var serverFlags = []string{"-a", "-b", "-d", "-s", "-t", "-r", "-k", "-m", "-l", "-x"}

// parseFlags populates Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   HTTP bind address (e.g., ":8080")
//	-b string   database driver: pgx or sqlite
//	-d string   database DSN
//	-s string   JWT HMAC secret key
//	-t int      access token validity, minutes
//	-r int      refresh token validity, minutes
//	-k string   hash algorithm: argon2id or bcrypt
//	-m uint     argon2id memory, KiB
//	-l string   log level
//	-x bool     secure cookies (use -x=true)
//
// Only the flags above are picked out of args, so other components may
// define their own flags on the same command line.
func parseFlags(config *Config, args []string) error {
	fs := flag.NewFlagSet("server", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&config.HTTPAddr, "a", config.HTTPAddr, "address and port to run server")
	fs.StringVar(&config.DatabaseDriver, "b", config.DatabaseDriver, "database driver (pgx|sqlite)")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "secret key")

	accessMinutes := fs.Int("t", int(config.AccessTokenValidityDuration.Minutes()), "access token validity (in minutes)")
	refreshMinutes := fs.Int("r", int(config.RefreshTokenValidityDuration.Minutes()), "refresh token validity (in minutes)")

	fs.StringVar(&config.HashAlgorithm, "k", config.HashAlgorithm, "hash algorithm (argon2id|bcrypt)")
	memory := fs.Uint("m", uint(config.HashMemoryKiB), "argon2id memory in KiB")
	fs.StringVar(&config.LogLevel, "l", config.LogLevel, "log level")
	fs.BoolVar(&config.SecureCookies, "x", config.SecureCookies, "secure cookies")

	if err := fs.Parse(flagx.FilterArgs(args, serverFlags)); err != nil {
		return err
	}

	// Converted values are applied only for flags actually given, so a
	// sub-minute duration from JSON or env survives a flag-less run.
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "t":
			config.AccessTokenValidityDuration = time.Duration(*accessMinutes) * time.Minute
		case "r":
			config.RefreshTokenValidityDuration = time.Duration(*refreshMinutes) * time.Minute
		case "m":
			config.HashMemoryKiB = uint32(*memory)
		}
	})
	return nil
}
