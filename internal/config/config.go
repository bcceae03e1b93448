// Package config loads deployment-time parameters from the environment and
// fails fast on unsafe production values, per the source's AuthConfig /
// ServiceConfig split (shared/config in the teacher) generalized to a single
// parsed value object rather than scattered globals.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

const devSecretSentinel = "dev-secret-change-me"

// RateLimitPolicy is the (max, window) pair for one rate-limited action.
type RateLimitPolicy struct {
	MaxRequests   int
	WindowSeconds int
}

// Config is the single parsed configuration object threaded through the
// ServiceContext. Tests construct it directly instead of going through
// environment parsing.
type Config struct {
	IntegrationTestMode bool

	Host string
	Port int

	DatabaseURL string
	RedisAddr   string
	RedisDB     int

	SecretKey string

	CORSOrigins []string

	SessionTTLSeconds            int64
	SessionRefreshGraceSeconds   int64
	VerificationTTLSeconds       int64
	EmailEnabled                 bool
	ShutdownGraceSeconds         int64
	StorePoolMaxConns            int

	RateLimits map[string]RateLimitPolicy

	MeiliHost string
	MeiliKey  string
}

// defaultActions is the closed set of rate-limited actions the spec names.
var defaultActions = []string{"chat", "save", "personalize"}

// productionDefaults returns the production-mode per-action limits from §4.2.
func productionDefaults() map[string]RateLimitPolicy {
	return map[string]RateLimitPolicy{
		"chat":        {MaxRequests: 10, WindowSeconds: 60},
		"save":        {MaxRequests: 5, WindowSeconds: 60},
		"personalize": {MaxRequests: 3, WindowSeconds: 60},
	}
}

// testDefaults halves production max_requests and shrinks the window to 10s,
// per §4.2's "test: half the max, window 10s".
func testDefaults() map[string]RateLimitPolicy {
	out := make(map[string]RateLimitPolicy, len(defaultActions))
	for action, p := range productionDefaults() {
		half := p.MaxRequests / 2
		if half < 1 {
			half = 1
		}
		out[action] = RateLimitPolicy{MaxRequests: half, WindowSeconds: 10}
	}
	return out
}

// Load reads environment variables into a Config and validates it. In
// production mode, missing or unsafe values cause Load to return an error
// before any listener opens (§4.2, §8 "fails to begin serving").
func Load() (Config, error) {
	c := Config{
		IntegrationTestMode: envBool("INTEGRATION_TEST_MODE", false),
		Host:                envString("HOST", "0.0.0.0"),
		Port:                envInt("PORT", 8888),
		DatabaseURL:         os.Getenv("DATABASE_URL"),
		RedisAddr:           envString("REDIS_ADDR", "localhost:6379"),
		RedisDB:             envInt("REDIS_DB", 0),
		SecretKey:           os.Getenv("SECRET_KEY"),
		CORSOrigins:         envList("CORS_ORIGINS"),
		SessionTTLSeconds:          envInt64("SESSION_TTL_SECONDS", 86400),
		SessionRefreshGraceSeconds: envInt64("SESSION_REFRESH_GRACE_SECONDS", 60),
		VerificationTTLSeconds:     envInt64("VERIFICATION_TTL_SECONDS", 600),
		ShutdownGraceSeconds:       envInt64("SHUTDOWN_GRACE_SECONDS", 10),
		StorePoolMaxConns:          envInt("STORE_POOL_MAX_CONNS", 20),
		MeiliHost:                  os.Getenv("MEILI_HOST"),
		MeiliKey:                   os.Getenv("MEILI_MASTER_KEY"),
	}

	if c.IntegrationTestMode {
		c.EmailEnabled = envBool("EMAIL_ENABLED", false)
	} else {
		c.EmailEnabled = envBool("EMAIL_ENABLED", true)
	}

	c.RateLimits = loadRateLimits(c.IntegrationTestMode)

	if c.SecretKey == "" && c.IntegrationTestMode {
		c.SecretKey = devSecretSentinel
	}

	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

// loadRateLimits applies mode defaults then lets
// RATE_LIMIT_<ACTION>_MAX_REQUESTS / _WINDOW_SECONDS override per action.
func loadRateLimits(testMode bool) map[string]RateLimitPolicy {
	defaults := productionDefaults()
	if testMode {
		defaults = testDefaults()
	}
	for _, action := range defaultActions {
		upper := strings.ToUpper(action)
		policy := defaults[action]
		policy.MaxRequests = envInt(fmt.Sprintf("RATE_LIMIT_%s_MAX_REQUESTS", upper), policy.MaxRequests)
		policy.WindowSeconds = envInt(fmt.Sprintf("RATE_LIMIT_%s_WINDOW_SECONDS", upper), policy.WindowSeconds)
		defaults[action] = policy
	}
	return defaults
}

// Validate enforces §4.2's production-mode safety rules. SQLite-style URLs
// only warn (the caller logs the warning); everything else here terminates
// startup.
func (c Config) Validate() error {
	if c.DatabaseURL == "" {
		return fmt.Errorf("config: DATABASE_URL is required")
	}
	if !c.IntegrationTestMode {
		if c.SecretKey == "" {
			return fmt.Errorf("config: SECRET_KEY is required in production")
		}
		if c.SecretKey == devSecretSentinel {
			return fmt.Errorf("config: SECRET_KEY must not be the development sentinel value in production")
		}
		if len(c.SecretKey) < 32 {
			return fmt.Errorf("config: SECRET_KEY must carry at least 256 bits of entropy (>=32 bytes)")
		}
		if len(c.CORSOrigins) == 0 {
			return fmt.Errorf("config: CORS_ORIGINS is required in production")
		}
		for _, origin := range c.CORSOrigins {
			if origin == "*" {
				return fmt.Errorf("config: CORS_ORIGINS must not contain the wildcard '*' in production")
			}
		}
	}
	if c.SessionRefreshGraceSeconds < 60 {
		return fmt.Errorf("config: SESSION_REFRESH_GRACE_SECONDS must be >= 60")
	}
	if c.SessionRefreshGraceSeconds > c.SessionTTLSeconds {
		return fmt.Errorf("config: SESSION_REFRESH_GRACE_SECONDS must not exceed SESSION_TTL_SECONDS")
	}
	return nil
}

// IsSQLiteURL reports whether the configured DATABASE_URL looks like a
// SQLite DSN, which §4.2 allows with only a warning.
func (c Config) IsSQLiteURL() bool {
	return strings.HasPrefix(c.DatabaseURL, "sqlite://") || strings.HasSuffix(c.DatabaseURL, ".db")
}

func envString(key, def string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return def
}

func envBool(key string, def bool) bool {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

func envInt(key string, def int) int {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func envInt64(key string, def int64) int64 {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return def
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return def
	}
	return n
}

func envList(key string) []string {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
