// Package config reads runtime settings from the environment.
package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/abhisek/ipquiz/internal/store"
)

// Config holds process-wide settings. Command-line flags override the
// environment after Load.
type Config struct {
	Store store.Options

	HTTPAddr    string
	CORSOrigins []string

	LogLevel  string
	LogFormat string // "text" or "json"
	LogFile   string
}

// Load reads IPQUIZ_* variables.
func Load() Config {
	return Config{
		Store: store.Options{
			Backend:       envOr("IPQUIZ_BACKEND", store.BackendSQLite),
			DBPath:        os.Getenv("IPQUIZ_DB"),
			PostgresDSN:   os.Getenv("IPQUIZ_PG_DSN"),
			RedisAddr:     envOr("IPQUIZ_REDIS_ADDR", "localhost:6379"),
			RedisPassword: os.Getenv("IPQUIZ_REDIS_PASSWORD"),
			RedisPrefix:   envOr("IPQUIZ_REDIS_PREFIX", "ipquiz"),
			MongoURI:      os.Getenv("IPQUIZ_MONGO_URI"),
			MongoDB:       envOr("IPQUIZ_MONGO_DB", "ipquiz"),
			RemoteURL:     os.Getenv("IPQUIZ_REMOTE_URL"),
			RemotePIN:     os.Getenv("IPQUIZ_REMOTE_PIN"),
			FilePath:      os.Getenv("IPQUIZ_FILE"),
			Seed:          envBool("IPQUIZ_SEED", true),
		},
		HTTPAddr:    envOr("IPQUIZ_HTTP_ADDR", ":8080"),
		CORSOrigins: csvOr("IPQUIZ_CORS_ORIGINS", "http://localhost:3000"),
		LogLevel:    envOr("IPQUIZ_LOG_LEVEL", "info"),
		LogFormat:   envOr("IPQUIZ_LOG_FORMAT", "text"),
		LogFile:     os.Getenv("IPQUIZ_LOG_FILE"),
	}
}

// DefaultLogFile is where the terminal UI writes logs when IPQUIZ_LOG_FILE
// is unset: $XDG_STATE_HOME/ipquiz/ipquiz.log or ~/.local/state/ipquiz/ipquiz.log.
func DefaultLogFile() (string, error) {
	stateHome := os.Getenv("XDG_STATE_HOME")
	if stateHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		stateHome = filepath.Join(home, ".local", "state")
	}
	p := filepath.Join(stateHome, "ipquiz", "ipquiz.log")
	return p, store.EnsureDir(p)
}

func envOr(k, def string) string {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	return v
}

func envBool(k string, def bool) bool {
	switch os.Getenv(k) {
	case "1", "true", "TRUE", "yes", "YES":
		return true
	case "0", "false", "FALSE", "no", "NO":
		return false
	default:
		return def
	}
}

func csvOr(k, def string) []string {
	v := envOr(k, def)
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			out = append(out, s)
		}
	}
	return out
}
