package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// parseEnv loads dotenvPath (when it exists) into the process environment
// without overriding variables that are already set, then overlays the
// recognised variables onto config.
//
//	HTTP_ADDR, DATABASE_DRIVER, DATABASE_DSN, SECRET_KEY,
//	ACCESS_TOKEN_TTL, REFRESH_TOKEN_TTL (Go durations, e.g. "15m"),
//	HASH_ALGORITHM, HASH_MEMORY_KIB, LOG_LEVEL, SECURE_COOKIES
func parseEnv(config *Config, dotenvPath string) error {
	if dotenvPath != "" {
		if err := godotenv.Load(dotenvPath); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("load %s: %w", dotenvPath, err)
		}
	}

	lookupString(&config.HTTPAddr, "HTTP_ADDR")
	lookupString(&config.DatabaseDriver, "DATABASE_DRIVER")
	lookupString(&config.DatabaseDSN, "DATABASE_DSN")
	lookupString(&config.SecretKey, "SECRET_KEY")
	lookupString(&config.HashAlgorithm, "HASH_ALGORITHM")
	lookupString(&config.LogLevel, "LOG_LEVEL")

	if err := lookupDuration(&config.AccessTokenValidityDuration, "ACCESS_TOKEN_TTL"); err != nil {
		return err
	}
	if err := lookupDuration(&config.RefreshTokenValidityDuration, "REFRESH_TOKEN_TTL"); err != nil {
		return err
	}

	if v, ok := os.LookupEnv("HASH_MEMORY_KIB"); ok && v != "" {
		n, err := strconv.ParseUint(v, 10, 32)
		if err != nil {
			return fmt.Errorf("HASH_MEMORY_KIB: %w", err)
		}
		config.HashMemoryKiB = uint32(n)
	}

	if v, ok := os.LookupEnv("SECURE_COOKIES"); ok && v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("SECURE_COOKIES: %w", err)
		}
		config.SecureCookies = b
	}

	return nil
}

func lookupString(dst *string, key string) {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		*dst = v
	}
}

func lookupDuration(dst *time.Duration, key string) error {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	*dst = d
	return nil
}
