package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

const (
	defaultHTTPAddr         = ":8080"
	defaultDBPath           = ":memory:"
	defaultFeedHost         = "localhost"
	defaultFeedPort         = 8765
	defaultFeedPath         = "/"
	defaultIdleTimeout      = 60 * time.Second
	defaultHandshakeTimeout = 10 * time.Second
	defaultSiteLabel        = "Digital Voice Dashboard"
)

// Config stores runtime settings. Values come from defaults, then the
// optional TOML file, then environment variables.
type Config struct {
	HTTPAddr         string
	DBPath           string
	LogLevel         slog.Level
	FeedHost         string
	FeedPort         int
	FeedPath         string
	SecurePage       bool
	IdleTimeout      time.Duration
	HandshakeTimeout time.Duration
	SysopEmail       string
	LogoFile         string
	SiteLabel        string
}

type fileConfig struct {
	HTTPAddr string `toml:"http_addr"`
	DBPath   string `toml:"db_path"`
	LogLevel string `toml:"log_level"`

	Feed struct {
		Host             string `toml:"host"`
		Port             int    `toml:"port"`
		Path             string `toml:"path"`
		Secure           *bool  `toml:"secure"`
		IdleTimeout      string `toml:"idle_timeout"`
		HandshakeTimeout string `toml:"handshake_timeout"`
	} `toml:"feed"`

	Site struct {
		SysopEmail string `toml:"sysop_email"`
		LogoFile   string `toml:"logo_file"`
		Label      string `toml:"label"`
	} `toml:"site"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		HTTPAddr:         defaultHTTPAddr,
		DBPath:           defaultDBPath,
		LogLevel:         slog.LevelInfo,
		FeedHost:         defaultFeedHost,
		FeedPort:         defaultFeedPort,
		FeedPath:         defaultFeedPath,
		IdleTimeout:      defaultIdleTimeout,
		HandshakeTimeout: defaultHandshakeTimeout,
		SiteLabel:        defaultSiteLabel,
	}
}

// Load builds Config from the TOML file at path (skipped when empty) and
// environment overrides.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		if err := cfg.applyFile(path); err != nil {
			return Config{}, err
		}
	}
	cfg.applyEnv()
	cfg.FeedHost = SanitizeHost(cfg.FeedHost)
	if cfg.FeedPath == "" {
		cfg.FeedPath = defaultFeedPath
	}
	return cfg, nil
}

func (c *Config) applyFile(path string) error {
	var fc fileConfig
	if _, err := toml.DecodeFile(path, &fc); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	if fc.HTTPAddr != "" {
		c.HTTPAddr = fc.HTTPAddr
	}
	if fc.DBPath != "" {
		c.DBPath = fc.DBPath
	}
	if fc.LogLevel != "" {
		c.LogLevel = parseLogLevel(fc.LogLevel)
	}
	if fc.Feed.Host != "" {
		c.FeedHost = fc.Feed.Host
	}
	if fc.Feed.Port > 0 {
		c.FeedPort = fc.Feed.Port
	}
	if fc.Feed.Path != "" {
		c.FeedPath = fc.Feed.Path
	}
	if fc.Feed.Secure != nil {
		c.SecurePage = *fc.Feed.Secure
	}
	if d, err := time.ParseDuration(fc.Feed.IdleTimeout); err == nil && d >= 0 {
		c.IdleTimeout = d
	}
	if d, err := time.ParseDuration(fc.Feed.HandshakeTimeout); err == nil && d > 0 {
		c.HandshakeTimeout = d
	}
	if fc.Site.SysopEmail != "" {
		c.SysopEmail = fc.Site.SysopEmail
	}
	if fc.Site.LogoFile != "" {
		c.LogoFile = fc.Site.LogoFile
	}
	if fc.Site.Label != "" {
		c.SiteLabel = fc.Site.Label
	}
	return nil
}

func (c *Config) applyEnv() {
	c.HTTPAddr = getenv("HTTP_ADDR", c.HTTPAddr)
	c.DBPath = getenv("DB_PATH", c.DBPath)
	if raw, ok := os.LookupEnv("LOG_LEVEL"); ok {
		c.LogLevel = parseLogLevel(raw)
	}
	c.FeedHost = getenv("FEED_HOST", c.FeedHost)
	c.FeedPort = parseInt("FEED_PORT", c.FeedPort)
	c.FeedPath = getenv("FEED_PATH", c.FeedPath)
	c.SecurePage = parseBool("FEED_SECURE", c.SecurePage)
	c.IdleTimeout = parseDuration("FEED_IDLE_TIMEOUT", c.IdleTimeout)
	c.HandshakeTimeout = parseDuration("FEED_HANDSHAKE_TIMEOUT", c.HandshakeTimeout)
	c.SysopEmail = getenv("SYSOP_EMAIL", c.SysopEmail)
	c.LogoFile = getenv("LOGO_FILE", c.LogoFile)
	c.SiteLabel = getenv("SITE_LABEL", c.SiteLabel)
}

// SanitizeHost reduces a configured feed host to a bare host name: any
// http(s) scheme and trailing port are dropped, and an empty result falls
// back to localhost.
func SanitizeHost(raw string) string {
	host := strings.TrimSpace(raw)
	lower := strings.ToLower(host)
	switch {
	case strings.HasPrefix(lower, "https://"):
		host = host[len("https://"):]
	case strings.HasPrefix(lower, "http://"):
		host = host[len("http://"):]
	}
	if i := strings.IndexByte(host, '/'); i >= 0 {
		host = host[:i]
	}
	if strings.HasPrefix(host, "[") {
		if end := strings.IndexByte(host, ']'); end > 0 {
			host = host[1:end]
		}
	} else if i := strings.LastIndexByte(host, ':'); i >= 0 && strings.Count(host, ":") == 1 {
		host = host[:i]
	}
	if host == "" {
		return defaultFeedHost
	}
	return host
}

func getenv(key string, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		trimmed := strings.TrimSpace(value)
		if trimmed != "" {
			return trimmed
		}
	}
	return fallback
}

func parseDuration(key string, fallback time.Duration) time.Duration {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	value, err := time.ParseDuration(strings.TrimSpace(raw))
	if err != nil || value <= 0 {
		return fallback
	}
	return value
}

func parseInt(key string, fallback int) int {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	value, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || value <= 0 {
		return fallback
	}
	return value
}

func parseBool(key string, fallback bool) bool {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	value, err := strconv.ParseBool(strings.TrimSpace(raw))
	if err != nil {
		return fallback
	}
	return value
}

func parseLogLevel(raw string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
