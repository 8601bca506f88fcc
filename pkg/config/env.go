package config

import (
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

// EnvFiles are the local env files consulted before reading DATABASE_URL.
// Later files override earlier ones.
var EnvFiles = []string{".env", ".env.local"}

// LoadEnv loads variables from local env files. A later file overrides an
// earlier one, but nothing already set in the process environment is
// replaced. It returns the files it loaded.
func LoadEnv(logger *logrus.Logger, files ...string) []string {
	if len(files) == 0 {
		files = EnvFiles
	}
	merged := make(map[string]string)
	loaded := make([]string, 0, len(files))
	for _, file := range files {
		if _, err := os.Stat(file); err != nil {
			continue
		}
		values, err := godotenv.Read(file)
		if err != nil {
			if logger != nil {
				logger.WithError(err).Warnf("Failed to load %s", file)
			}
			continue
		}
		for key, value := range values {
			merged[key] = value
		}
		loaded = append(loaded, file)
	}
	for key, value := range merged {
		if _, set := os.LookupEnv(key); set {
			continue
		}
		if err := os.Setenv(key, value); err != nil && logger != nil {
			logger.WithError(err).Warnf("Failed to set %s", key)
		}
	}
	if logger != nil {
		if len(loaded) == 0 {
			logger.Debug("No local env files loaded; relying on process environment")
		} else {
			logger.Debugf("Loaded env files: %s", strings.Join(loaded, ", "))
		}
	}
	return loaded
}

// FirstEnv returns the first non-empty value among keys, in order.
func FirstEnv(keys ...string) string {
	for _, key := range keys {
		if value := strings.TrimSpace(os.Getenv(key)); value != "" {
			return value
		}
	}
	return ""
}

// GetLogLevel gets the log level from environment
func GetLogLevel() logrus.Level {
	switch strings.ToLower(os.Getenv("LOG_LEVEL")) {
	case "debug":
		return logrus.DebugLevel
	case "warn", "warning":
		return logrus.WarnLevel
	case "error":
		return logrus.ErrorLevel
	default:
		return logrus.InfoLevel
	}
}
