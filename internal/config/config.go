package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// minSecretLength is the shortest HS256 secret accepted at startup.
const minSecretLength = 32

type Config struct {
	ListenPort      string        // ex: ":8080"
	ShutdownTimeout time.Duration // ex: 5s
	RequestTimeout  time.Duration // per-request deadline enforced by the router

	LogLevel  string // "debug" | "info" | "warn" | "error"
	PrettyLog bool   // true => zap dev (color), false => zap prod (JSON)

	// Tokens
	TokenSecret string        // HS256 signing secret, process-wide and immutable
	TokenTTL    time.Duration // 0 => tokens never expire
	BcryptCost  int           // cost used when hashing passwords

	// Relational store
	DBDriver          string        // "postgres" | "sqlite"
	DBDSN             string        // ex: "host=db user=app dbname=social sslmode=disable" or "file:social.db"
	DBMaxOpenConns    int           // pool size
	DBMaxIdleConns    int           // idle connections kept
	DBConnMaxLifetime time.Duration // recycle connections after this long
	DBAutoMigrate     bool          // run gorm AutoMigrate on startup

	// Redis (optional, empty addr disables the cache)
	RedisAddr       string        // ex: "localhost:6379"
	RedisUser       string        // optional
	RedisPassword   string        // optional
	RedisDB         int           // Redis DB number
	RedisDT         time.Duration // dial timeout
	RedisRT         time.Duration // read timeout
	RedisWT         time.Duration // write timeout
	RedisPoolSize   int           // connection pool size
	ProfileCacheTTL time.Duration // TTL of cached profiles
	SearchCacheTTL  time.Duration // TTL of cached search results

	// Startup connection retry, shared by the database and Redis
	ConnectTimeout time.Duration // total time to retry connecting (ex: 30s)
	RetryInterval  time.Duration // initial wait between retries, doubles each attempt
	MaxWait        time.Duration // cap on the wait between retries
	PingTimeout    time.Duration // timeout for each ping attempt
	WarnThreshold  int           // warn after this many attempts, error afterwards

	// Directory behaviour
	PageSize    int    // profiles per page on /profile/page/{n}
	SearchLimit int    // max profiles returned by /profile/search/{query}
	SeedFile    string // optional YAML fixture with profiles and posts

	// Notifications
	PruneInterval         time.Duration // how often read notifications are pruned
	NotificationRetention time.Duration // read notifications older than this are deleted

	// Abuse control on login/register
	RateLimitBurst  int // burst per client IP
	RateLimitPerMin int // refill per client IP per minute

	CORSOrigins  []string // allowed browser origins, "*" by default
	AllowedHosts []string // optional, restrict admin endpoints to specific Host headers
	AllowedCIDRS []string // optional, restrict admin endpoints to specific IPs/CIDRs
	TrustProxy   bool     // true => trust X-Forwarded-For headers
}

// Load reads the configuration from the environment. A .env file (or the file
// named by SOCIALHUB_ENV_FILE) is loaded first when it exists; variables that are
// already set in the environment win.
func Load() *Config {
	loadDotEnv(getenv("SOCIALHUB_ENV_FILE", ".env"))

	cfg := &Config{
		ListenPort:      getenv("SOCIALHUB_LISTEN_PORT", ":8080"),
		ShutdownTimeout: mustDuration("SOCIALHUB_SHUTDOWN_TIMEOUT", 5*time.Second),
		RequestTimeout:  mustDuration("SOCIALHUB_REQUEST_TIMEOUT", 10*time.Second),

		LogLevel:  getenv("SOCIALHUB_LOG_LEVEL", "info"),
		PrettyLog: mustBool("SOCIALHUB_PRETTY_LOG", false),

		TokenSecret: requireEnv("SOCIALHUB_TOKEN_SECRET"),
		TokenTTL:    mustDuration("SOCIALHUB_TOKEN_TTL", 24*time.Hour),
		BcryptCost:  getenvInt("SOCIALHUB_BCRYPT_COST", 10),

		DBDriver:          strings.ToLower(getenv("SOCIALHUB_DB_DRIVER", "sqlite")),
		DBDSN:             getenv("SOCIALHUB_DB_DSN", "file:socialhub.db?_foreign_keys=on&_busy_timeout=5000"),
		DBMaxOpenConns:    getenvInt("SOCIALHUB_DB_MAX_OPEN_CONNS", 20),
		DBMaxIdleConns:    getenvInt("SOCIALHUB_DB_MAX_IDLE_CONNS", 5),
		DBConnMaxLifetime: mustDuration("SOCIALHUB_DB_CONN_MAX_LIFETIME", 30*time.Minute),
		DBAutoMigrate:     mustBool("SOCIALHUB_DB_AUTO_MIGRATE", true),

		RedisAddr:       getenv("SOCIALHUB_REDIS_ADDR", ""),
		RedisUser:       getenv("SOCIALHUB_REDIS_USERNAME", ""),
		RedisPassword:   getenv("SOCIALHUB_REDIS_PASSWORD", ""),
		RedisDB:         getenvInt("SOCIALHUB_REDIS_DB", 0),
		RedisDT:         mustDuration("REDIS_DIAL_TIMEOUT", 5*time.Second),
		RedisRT:         mustDuration("REDIS_READ_TIMEOUT", 3*time.Second),
		RedisWT:         mustDuration("REDIS_WRITE_TIMEOUT", 3*time.Second),
		RedisPoolSize:   getenvInt("REDIS_POOL_SIZE", 10),
		ProfileCacheTTL: mustDuration("SOCIALHUB_PROFILE_CACHE_TTL", 10*time.Minute),
		SearchCacheTTL:  mustDuration("SOCIALHUB_SEARCH_CACHE_TTL", time.Minute),

		ConnectTimeout: mustDuration("SOCIALHUB_CONNECT_TIMEOUT", 30*time.Second),
		RetryInterval:  mustDuration("SOCIALHUB_RETRY_INTERVAL", 2*time.Second),
		MaxWait:        mustDuration("SOCIALHUB_RETRY_MAX_WAIT", 10*time.Second),
		PingTimeout:    mustDuration("SOCIALHUB_PING_TIMEOUT", 5*time.Second),
		WarnThreshold:  getenvInt("SOCIALHUB_RETRY_WARN_THRESHOLD", 3),

		PageSize:    getenvInt("SOCIALHUB_PAGE_SIZE", 10),
		SearchLimit: getenvInt("SOCIALHUB_SEARCH_LIMIT", 50),
		SeedFile:    getenv("SOCIALHUB_SEED_FILE", ""),

		PruneInterval:         mustDuration("SOCIALHUB_PRUNE_INTERVAL", 24*time.Hour),
		NotificationRetention: mustDuration("SOCIALHUB_NOTIFICATION_RETENTION", 30*24*time.Hour),

		RateLimitBurst:  getenvInt("SOCIALHUB_RATE_LIMIT_BURST", 10),
		RateLimitPerMin: getenvInt("SOCIALHUB_RATE_LIMIT_PER_MIN", 30),

		CORSOrigins:  splitAndTrim(getenv("SOCIALHUB_CORS_ORIGINS", "*")),
		AllowedHosts: splitAndTrim(getenv("SOCIALHUB_ALLOWED_HOSTS", "")),
		AllowedCIDRS: splitAndTrim(getenv("SOCIALHUB_ALLOWED_CIDRS", "")),
		TrustProxy:   mustBool("SOCIALHUB_TRUST_PROXY", false),
	}

	if err := cfg.validate(); err != nil {
		panic(fmt.Sprintf("❌ FATAL: %v", err))
	}

	// Log config only in debug mode with redacted sensitive fields
	if cfg.LogLevel == "debug" {
		log.Printf("[DEBUG] cfg: %+v\n", cfg.Redacted())
	}

	return cfg
}

// validate checks cross-field constraints the individual helpers cannot express.
func (c *Config) validate() error {
	if len(c.TokenSecret) < minSecretLength {
		return fmt.Errorf("SOCIALHUB_TOKEN_SECRET must be at least %d bytes", minSecretLength)
	}
	switch c.DBDriver {
	case "postgres", "sqlite":
	default:
		return fmt.Errorf("SOCIALHUB_DB_DRIVER must be postgres or sqlite, got %q", c.DBDriver)
	}
	if c.DBDSN == "" {
		return errors.New("SOCIALHUB_DB_DSN is empty")
	}
	if c.PageSize < 1 {
		return fmt.Errorf("SOCIALHUB_PAGE_SIZE must be > 0, got %d", c.PageSize)
	}
	if c.SearchLimit < 1 {
		return fmt.Errorf("SOCIALHUB_SEARCH_LIMIT must be > 0, got %d", c.SearchLimit)
	}
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("SOCIALHUB_REQUEST_TIMEOUT must be > 0, got %s", c.RequestTimeout)
	}
	if c.PruneInterval <= 0 {
		return fmt.Errorf("SOCIALHUB_PRUNE_INTERVAL must be > 0, got %s", c.PruneInterval)
	}
	if c.NotificationRetention < 0 {
		return fmt.Errorf("SOCIALHUB_NOTIFICATION_RETENTION must not be negative, got %s", c.NotificationRetention)
	}
	return nil
}

// Redacted returns a copy safe to print.
func (c *Config) Redacted() Config {
	cp := *c
	cp.TokenSecret = "***REDACTED***"
	if cp.RedisPassword != "" {
		cp.RedisPassword = "***REDACTED***"
	}
	if strings.Contains(cp.DBDSN, "password") {
		cp.DBDSN = "***REDACTED***"
	}
	return cp
}

// CacheEnabled reports whether a Redis address was configured.
func (c *Config) CacheEnabled() bool { return c.RedisAddr != "" }

func loadDotEnv(path string) {
	if path == "" {
		return
	}
	if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		panic(fmt.Sprintf("❌ FATAL: cannot load env file %s: %v", path, err))
	}
}

// helpers
func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func requireEnv(key string) string {
	v := os.Getenv(key)
	if v == "" {
		panic(fmt.Sprintf("❌ FATAL: Required environment variable %s is not set", key))
	}
	return v
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}

func mustBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return def
}

func mustDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

func splitAndTrim(s string) []string {
	if s == "" {
		return nil
	}
	raw := strings.Split(s, ",")
	parts := make([]string, 0, len(raw))
	for _, part := range raw {
		trimmed := strings.TrimSpace(part)
		// Remove surrounding quotes if present
		trimmed = strings.Trim(trimmed, `"'`)
		if trimmed != "" {
			parts = append(parts, trimmed)
		}
	}
	return parts
}
