package config

import (
	"errors"
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds the application configuration.
type Config struct {
	Port        string `mapstructure:"PORT"`
	GinMode     string `mapstructure:"GIN_MODE"`
	DatabaseURL string `mapstructure:"DATABASE_URL"`
	JWTSecret   string `mapstructure:"JWT_SECRET"`

	AdminEmail    string `mapstructure:"ADMIN_EMAIL"`
	AdminPassword string `mapstructure:"ADMIN_PASSWORD"`

	LogLevel  string `mapstructure:"LOG_LEVEL"`
	LogFormat string `mapstructure:"LOG_FORMAT"`

	BGGAPIURL       string        `mapstructure:"BGG_API_URL"`
	BGGAPIToken     string        `mapstructure:"BGG_API_TOKEN"`
	BGGImportUpsert bool          `mapstructure:"BGG_IMPORT_UPSERT"`
	UpstreamTimeout time.Duration `mapstructure:"UPSTREAM_TIMEOUT"`

	// ProxyAllowedHosts is a comma-separated list of hostnames the image proxy may fetch from.
	ProxyAllowedHosts string `mapstructure:"PROXY_ALLOWED_HOSTS"`
	ProxyUserAgent    string `mapstructure:"PROXY_USER_AGENT"`
	ProxyMaxBytes     int64  `mapstructure:"PROXY_MAX_BYTES"`

	RateLimitPerMinute int    `mapstructure:"RATE_LIMIT_PER_MINUTE"`
	GuestHashSalt      string `mapstructure:"GUEST_HASH_SALT"`

	// TrustedProxies lists the IPs or CIDRs whose X-Forwarded-For header is believed.
	// Empty means the client IP is always the socket peer.
	TrustedProxies string `mapstructure:"TRUSTED_PROXIES"`
}

// AppConfig is populated by LoadConfig.
var AppConfig *Config

var keys = map[string]any{
	"PORT":                  "8080",
	"GIN_MODE":              "release",
	"DATABASE_URL":          "",
	"JWT_SECRET":            "",
	"ADMIN_EMAIL":           "",
	"ADMIN_PASSWORD":        "",
	"LOG_LEVEL":             "info",
	"LOG_FORMAT":            "json",
	"BGG_API_URL":           "https://boardgamegeek.com/xmlapi2/thing",
	"BGG_API_TOKEN":         "",
	"BGG_IMPORT_UPSERT":     false,
	"UPSTREAM_TIMEOUT":      "15s",
	"PROXY_ALLOWED_HOSTS":   "cf.geekdo-images.com",
	"PROXY_USER_AGENT":      "BoardgameCatalog-ImageProxy/1.0",
	"PROXY_MAX_BYTES":       int64(10 << 20),
	"RATE_LIMIT_PER_MINUTE": 60,
	"GUEST_HASH_SALT":       "",
	"TRUSTED_PROXIES":       "",
}

// Load reads the configuration from a .env file and environment variables.
// A missing .env file is not an error.
func Load(paths ...string) (*Config, error) {
	v := viper.New()
	if len(paths) == 0 {
		paths = []string{"."}
	}
	for _, p := range paths {
		v.AddConfigPath(p)
	}
	v.SetConfigName(".env")
	v.SetConfigType("env")

	// Defaults double as the key registry so AutomaticEnv can see every field on Unmarshal.
	for k, def := range keys {
		v.SetDefault(k, def)
	}
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadConfig loads the configuration into AppConfig.
func LoadConfig() error {
	cfg, err := Load()
	if err != nil {
		return err
	}
	AppConfig = cfg
	return nil
}

// Validate checks settings that have no usable default.
func (c *Config) Validate() error {
	if c.GinMode == "release" && c.JWTSecret == "" {
		return errors.New("JWT_SECRET must be set in release mode")
	}
	if len(c.AllowedHosts()) == 0 {
		return errors.New("PROXY_ALLOWED_HOSTS must name at least one host")
	}
	if c.UpstreamTimeout <= 0 {
		return errors.New("UPSTREAM_TIMEOUT must be positive")
	}
	for _, p := range c.TrustedProxyList() {
		if net.ParseIP(p) != nil {
			continue
		}
		if _, _, err := net.ParseCIDR(p); err != nil {
			return fmt.Errorf("TRUSTED_PROXIES: %q is not an IP or CIDR", p)
		}
	}
	return nil
}

// AllowedHosts returns the normalized image proxy allow-list.
func (c *Config) AllowedHosts() []string {
	return splitList(strings.ToLower(c.ProxyAllowedHosts))
}

// TrustedProxyList returns the reverse proxies allowed to set the client IP.
func (c *Config) TrustedProxyList() []string {
	return splitList(c.TrustedProxies)
}

func splitList(raw string) []string {
	var out []string
	for _, item := range strings.Split(raw, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
