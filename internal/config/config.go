// Package config loads the openapi-docs server configuration.
//
// Values come from, in increasing precedence: built-in defaults, a YAML
// file, a .env file and OASDOCS_* environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "OASDOCS_"

var (
	// ErrNoListen is returned when the listen address is empty.
	ErrNoListen = errors.New("config: listen address is required")
	// ErrLogFormat is returned for a log format other than json or console.
	ErrLogFormat = errors.New("config: log format must be json or console")
	// ErrNegativeLimit is returned when a size, count or duration is negative.
	ErrNegativeLimit = errors.New("config: limits must not be negative")
	// ErrFrameOption is returned for an X-Frame-Options value other than
	// DENY or SAMEORIGIN.
	ErrFrameOption = errors.New("config: frame option must be DENY or SAMEORIGIN")
)

// Config is the complete server configuration.
type Config struct {
	Listen          string        `yaml:"listen"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	Manifest        string        `yaml:"manifest"`
	Docs            DocsConfig    `yaml:"docs"`
	Log             LogConfig     `yaml:"log"`
	HTTP            HTTPConfig    `yaml:"http"`
}

// DocsConfig controls where and how the document is served.
type DocsConfig struct {
	Prefix              string `yaml:"prefix"`
	SkipUI              bool   `yaml:"skip_ui"`
	IgnoreTrailingSlash bool   `yaml:"ignore_trailing_slash"`
}

// LogConfig selects the zap encoder and level. A non-empty File writes
// logs to a rotated file instead of stderr.
type LogConfig struct {
	Level      string `yaml:"level"`
	Format     string `yaml:"format"`
	File       string `yaml:"file"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days"`
}

// HTTPConfig tunes the middleware chain in front of every route.
type HTTPConfig struct {
	CORSOrigins     []string `yaml:"cors_origins"`
	CompressMinSize int      `yaml:"compress_min_size"`
	Hostname        string   `yaml:"hostname"`
	AccessLog       bool     `yaml:"access_log"`

	// CacheMaxAge is the client cache lifetime of the document and UI.
	// Zero makes clients revalidate on every request.
	CacheMaxAge time.Duration `yaml:"cache_max_age"`

	FrameOption           string        `yaml:"frame_option"`
	ContentSecurityPolicy string        `yaml:"content_security_policy"`
	HSTSMaxAge            time.Duration `yaml:"hsts_max_age"`
}

// Default returns the configuration used when nothing else is set.
func Default() *Config {
	return &Config{
		Listen:          ":8080",
		ShutdownTimeout: 10 * time.Second,
		Docs: DocsConfig{
			Prefix: "/docs",
		},
		Log: LogConfig{
			Level:      "info",
			Format:     "json",
			MaxSizeMB:  100,
			MaxBackups: 5,
			MaxAgeDays: 30,
		},
		HTTP: HTTPConfig{
			AccessLog:   true,
			CacheMaxAge: 5 * time.Minute,
			FrameOption: "DENY",
		},
	}
}

// Load reads the YAML file at path over the defaults, then applies the
// variables from envFile (skipped when empty or missing) and the process
// environment, and validates the result. An empty path skips the file.
func Load(path, envFile string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config %s: %w", path, err)
		}
	}

	env, err := readEnv(envFile)
	if err != nil {
		return nil, err
	}
	if err := cfg.ApplyEnv(env); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// readEnv merges the dotenv file with the process environment, which wins.
func readEnv(envFile string) (map[string]string, error) {
	env := make(map[string]string)

	if envFile != "" {
		fileEnv, err := godotenv.Read(envFile)
		switch {
		case err == nil:
			for k, v := range fileEnv {
				env[k] = v
			}
		case errors.Is(err, os.ErrNotExist):
		default:
			return nil, fmt.Errorf("reading env file %s: %w", envFile, err)
		}
	}

	for _, kv := range os.Environ() {
		if k, v, ok := strings.Cut(kv, "="); ok && strings.HasPrefix(k, EnvPrefix) {
			env[k] = v
		}
	}

	return env, nil
}

// ApplyEnv overrides fields from OASDOCS_* keys in env.
func (c *Config) ApplyEnv(env map[string]string) error {
	str := func(key string, dst *string) {
		if v, ok := env[EnvPrefix+key]; ok && v != "" {
			*dst = v
		}
	}
	boolean := func(key string, dst *bool) error {
		v, ok := env[EnvPrefix+key]
		if !ok || v == "" {
			return nil
		}
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("config: %s%s: %w", EnvPrefix, key, err)
		}
		*dst = b
		return nil
	}
	duration := func(key string, dst *time.Duration) error {
		v, ok := env[EnvPrefix+key]
		if !ok || v == "" {
			return nil
		}
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("config: %s%s: %w", EnvPrefix, key, err)
		}
		*dst = d
		return nil
	}

	str("LISTEN", &c.Listen)
	str("MANIFEST", &c.Manifest)
	str("DOCS_PREFIX", &c.Docs.Prefix)
	str("LOG_LEVEL", &c.Log.Level)
	str("LOG_FORMAT", &c.Log.Format)
	str("LOG_FILE", &c.Log.File)
	str("HOSTNAME", &c.HTTP.Hostname)
	str("FRAME_OPTION", &c.HTTP.FrameOption)
	str("CONTENT_SECURITY_POLICY", &c.HTTP.ContentSecurityPolicy)

	if v, ok := env[EnvPrefix+"CORS_ORIGINS"]; ok && v != "" {
		c.HTTP.CORSOrigins = nil
		for _, origin := range strings.Split(v, ",") {
			if origin = strings.TrimSpace(origin); origin != "" {
				c.HTTP.CORSOrigins = append(c.HTTP.CORSOrigins, origin)
			}
		}
	}

	return errors.Join(
		duration("SHUTDOWN_TIMEOUT", &c.ShutdownTimeout),
		duration("CACHE_MAX_AGE", &c.HTTP.CacheMaxAge),
		duration("HSTS_MAX_AGE", &c.HTTP.HSTSMaxAge),
		boolean("DOCS_SKIP_UI", &c.Docs.SkipUI),
		boolean("DOCS_IGNORE_TRAILING_SLASH", &c.Docs.IgnoreTrailingSlash),
		boolean("ACCESS_LOG", &c.HTTP.AccessLog),
	)
}

// Validate reports every invalid field at once.
func (c *Config) Validate() error {
	var errs []error

	if strings.TrimSpace(c.Listen) == "" {
		errs = append(errs, ErrNoListen)
	}
	if _, err := zapcore.ParseLevel(c.Log.Level); err != nil {
		errs = append(errs, fmt.Errorf("config: log level: %w", err))
	}
	if c.Log.Format != "json" && c.Log.Format != "console" {
		errs = append(errs, fmt.Errorf("%w, got %q", ErrLogFormat, c.Log.Format))
	}
	if c.ShutdownTimeout < 0 || c.HTTP.CompressMinSize < 0 ||
		c.HTTP.CacheMaxAge < 0 || c.HTTP.HSTSMaxAge < 0 ||
		c.Log.MaxSizeMB < 0 || c.Log.MaxBackups < 0 || c.Log.MaxAgeDays < 0 {
		errs = append(errs, ErrNegativeLimit)
	}
	if c.HTTP.FrameOption != "DENY" && c.HTTP.FrameOption != "SAMEORIGIN" {
		errs = append(errs, fmt.Errorf("%w, got %q", ErrFrameOption, c.HTTP.FrameOption))
	}

	return errors.Join(errs...)
}
