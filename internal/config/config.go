package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"time"
)

// Config holds all tweetstack configuration. It is built once at process
// start and passed explicitly to every component.
type Config struct {
	// Stack database (the application's PostgreSQL instance).
	DBName     string // Database name
	DBUser     string // Database user
	DBPassword string // Database password
	DBHost     string // Database host as seen from the web container
	DBPort     string // Published database port

	// Web application.
	WebPort   string // Published web port
	Debug     bool   // Debug mode flag passed to the web container
	SecretKey string // Application secret key, also signs agent tokens

	// Images and build.
	PostgresImage string // Database image reference
	WebImage      string // Tag for the locally built web image
	BuildDir      string // Build context for the web image

	// Entrypoint.
	ServerCmd     string        // Long-running server command, started after the sequencer
	StaticSrc     string        // Source directory for static assets (colon-separated list)
	StaticRoot    string        // Target directory for collected static assets
	MediaRoot     string        // Uploaded media directory
	AdminUser     string        // Administrative account name
	AdminPassword string        // Administrative account password; generated when empty
	ReadyInterval time.Duration // Readiness gate polling interval
	ReadyTimeout  time.Duration // Readiness gate timeout; 0 waits forever

	// Tool housekeeping.
	DataDir    string // tweetstack data directory
	StatePath  string // SQLite state registry path
	DockerSock string // Docker daemon socket
	AgentPort  string // Ops agent HTTP port
}

// Load reads configuration from environment variables with sensible defaults.
func Load() *Config {
	dataDir := envOrDefault("TWEETSTACK_DATA_DIR", "./data")

	cfg := &Config{
		DBName:     envOrDefault("DB_NAME", "tweet_db"),
		DBUser:     envOrDefault("DB_USER", "postgres"),
		DBPassword: envOrDefault("DB_PASSWORD", "admin"),
		DBHost:     envOrDefault("DB_HOST", "postgres"),
		DBPort:     envOrDefault("DB_PORT", "5432"),

		WebPort:   envOrDefault("WEB_PORT", "8000"),
		Debug:     os.Getenv("DEBUG") == "1",
		SecretKey: envOrDefault("SECRET_KEY", "tweetstack-change-me-in-production"),

		PostgresImage: envOrDefault("TWEETSTACK_POSTGRES_IMAGE", "postgres:16-alpine"),
		WebImage:      envOrDefault("TWEETSTACK_WEB_IMAGE", "minitweet-web:latest"),
		BuildDir:      envOrDefault("TWEETSTACK_BUILD_DIR", "."),

		ServerCmd:     envOrDefault("TWEETSTACK_SERVER_CMD", "gunicorn minitweet.wsgi:application --bind 0.0.0.0:8000"),
		StaticSrc:     envOrDefault("TWEETSTACK_STATIC_SRC", "./static"),
		StaticRoot:    envOrDefault("TWEETSTACK_STATIC_ROOT", "/app/static"),
		MediaRoot:     envOrDefault("TWEETSTACK_MEDIA_ROOT", "/app/media"),
		AdminUser:     envOrDefault("TWEETSTACK_ADMIN_USER", "admin"),
		AdminPassword: os.Getenv("TWEETSTACK_ADMIN_PASSWORD"),
		ReadyInterval: envDuration("TWEETSTACK_READY_INTERVAL", 2*time.Second),
		ReadyTimeout:  envDuration("TWEETSTACK_READY_TIMEOUT", 0),

		DataDir:    dataDir,
		StatePath:  envOrDefault("TWEETSTACK_STATE_PATH", filepath.Join(dataDir, "tweetstack.db")),
		DockerSock: envOrDefault("TWEETSTACK_DOCKER_SOCK", "/var/run/docker.sock"),
		AgentPort:  envOrDefault("TWEETSTACK_AGENT_PORT", "8001"),
	}

	return cfg
}

// EnsureDataDir creates the tool's data directory tree.
func (c *Config) EnsureDataDir() error {
	if err := os.MkdirAll(c.DataDir, 0755); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}
	return os.MkdirAll(filepath.Join(c.DataDir, "logs"), 0755)
}

// DatabaseURL returns the postgres connection string for the configured
// database, suitable for pgx and golang-migrate.
func (c *Config) DatabaseURL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable",
		url.QueryEscape(c.DBUser),
		url.QueryEscape(c.DBPassword),
		c.DBHost,
		c.DBPort,
		url.PathEscape(c.DBName),
	)
}

// StaticSources splits the colon-separated static source list, dropping
// empty entries.
func (c *Config) StaticSources() []string {
	var dirs []string
	for _, d := range filepath.SplitList(c.StaticSrc) {
		if d != "" {
			dirs = append(dirs, d)
		}
	}
	return dirs
}

func envOrDefault(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func envDuration(key string, defaultVal time.Duration) time.Duration {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(val)
	if err != nil {
		return defaultVal
	}
	return d
}
