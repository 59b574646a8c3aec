// Package config provides configuration management for the application.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	// DefaultPort is the port the chat API listens on
	DefaultPort = "8000"
	// DefaultBodySizeLimit caps inbound request bodies
	DefaultBodySizeLimit = "1M"
	// DefaultBackendURL points at a local Ollama
	DefaultBackendURL = "http://localhost:11434"
	// DefaultModel is the Ollama model used for generation
	DefaultModel = "tinyllama"
	// DefaultBackendTimeout bounds each backend call
	DefaultBackendTimeout = 30 * time.Second
	// DefaultMetricsEndpoint is where Prometheus metrics are exposed
	DefaultMetricsEndpoint = "/metrics"
)

// configSearchPaths are tried in order when no explicit path is given.
var configSearchPaths = []string{"config/config.yaml", "config.yaml"}

// Config holds the application configuration
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Backend    BackendConfig    `yaml:"backend"`
	Generation GenerationConfig `yaml:"generation"`
	Metrics    MetricsConfig    `yaml:"metrics"`
	Logging    LoggingConfig    `yaml:"logging"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port string `yaml:"port"`
	// BodySizeLimit accepts plain bytes or K/M suffixes, e.g. "1M"
	BodySizeLimit      string   `yaml:"body_size_limit"`
	CORSAllowedOrigins []string `yaml:"cors_allowed_origins"`
}

// BackendConfig holds the generation backend location
type BackendConfig struct {
	BaseURL string `yaml:"base_url"`
	Model   string `yaml:"model"`
	// Timeout for a single generation call: bare seconds ("30", "1.5") or a
	// Go duration ("500ms", "2m")
	Timeout Duration `yaml:"timeout"`
}

// TimeoutDuration returns Timeout as a time.Duration.
func (b BackendConfig) TimeoutDuration() time.Duration {
	return time.Duration(b.Timeout)
}

// Duration is a time.Duration read from YAML or the environment as either a
// number of seconds or a Go duration string.
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	parsed, err := parseDuration(node.Value)
	if err != nil {
		return fmt.Errorf("line %d: invalid duration %q: %w", node.Line, node.Value, err)
	}
	*d = Duration(parsed)
	return nil
}

func (d Duration) String() string {
	return time.Duration(d).String()
}

// GenerationConfig holds the sampling options sent with every call
type GenerationConfig struct {
	Temperature float64 `yaml:"temperature"`
	TopP        float64 `yaml:"top_p"`
	MaxTokens   int     `yaml:"max_tokens"`
}

// MetricsConfig holds Prometheus exposition settings
type MetricsConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Endpoint string `yaml:"endpoint"`
}

// LoggingConfig holds log output settings
type LoggingConfig struct {
	// Level is one of debug, info, warn, error
	Level string `yaml:"level"`
	// Format is auto, text or json; auto picks text on a terminal
	Format string `yaml:"format"`
}

// buildDefaultConfig returns the configuration used when nothing is set.
func buildDefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:               DefaultPort,
			BodySizeLimit:      DefaultBodySizeLimit,
			CORSAllowedOrigins: []string{"*"},
		},
		Backend: BackendConfig{
			BaseURL: DefaultBackendURL,
			Model:   DefaultModel,
			Timeout: Duration(DefaultBackendTimeout),
		},
		Generation: GenerationConfig{
			Temperature: 0.2,
			TopP:        0.9,
			MaxTokens:   100,
		},
		Metrics: MetricsConfig{
			Enabled:  true,
			Endpoint: DefaultMetricsEndpoint,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "auto",
		},
	}
}

// Load reads configuration from the default locations and the environment.
func Load() (*Config, error) {
	return LoadFrom("")
}

// LoadFrom reads configuration with the following precedence, lowest first:
// defaults, the YAML file at path (or the first of configSearchPaths that
// exists), then environment variables. A .env file in the working directory
// is loaded first and never overrides variables already set.
func LoadFrom(path string) (*Config, error) {
	_ = godotenv.Load() // Ignore error if .env file doesn't exist

	cfg := buildDefaultConfig()

	explicit := path != ""
	if !explicit {
		path = findConfigFile()
	}
	if path != "" {
		if err := loadYAML(cfg, path); err != nil {
			if explicit || !errors.Is(err, os.ErrNotExist) {
				return nil, err
			}
		}
	}

	if err := applyEnvOverrides(cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func findConfigFile() string {
	for _, p := range configSearchPaths {
		if info, err := os.Stat(p); err == nil && !info.IsDir() {
			return p
		}
	}
	return ""
}

func loadYAML(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	expanded := expandString(string(data))
	if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return nil
}

var placeholderPattern = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)(:-([^}]*))?\}`)

// expandString replaces ${VAR} and ${VAR:-default} placeholders.
// A placeholder whose variable is unset or empty and has no default is left as is.
func expandString(s string) string {
	return placeholderPattern.ReplaceAllStringFunc(s, func(match string) string {
		parts := placeholderPattern.FindStringSubmatch(match)
		if value := os.Getenv(parts[1]); value != "" {
			return value
		}
		if parts[2] != "" {
			return parts[3]
		}
		return match
	})
}

// applyEnvOverrides applies environment variables on top of cfg.
func applyEnvOverrides(cfg *Config) error {
	if v := os.Getenv("PORT"); v != "" {
		cfg.Server.Port = v
	}
	if v := os.Getenv("BODY_SIZE_LIMIT"); v != "" {
		cfg.Server.BodySizeLimit = v
	}
	if v := os.Getenv("CORS_ALLOWED_ORIGINS"); v != "" {
		cfg.Server.CORSAllowedOrigins = splitList(v)
	}
	if v := os.Getenv("OLLAMA_BASE_URL"); v != "" {
		cfg.Backend.BaseURL = v
	}
	if v := os.Getenv("OLLAMA_MODEL"); v != "" {
		cfg.Backend.Model = v
	}
	if v := os.Getenv("BACKEND_TIMEOUT"); v != "" {
		d, err := parseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid BACKEND_TIMEOUT %q: %w", v, err)
		}
		cfg.Backend.Timeout = Duration(d)
	}
	if v := os.Getenv("GENERATION_TEMPERATURE"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("invalid GENERATION_TEMPERATURE %q: %w", v, err)
		}
		cfg.Generation.Temperature = f
	}
	if v := os.Getenv("GENERATION_TOP_P"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("invalid GENERATION_TOP_P %q: %w", v, err)
		}
		cfg.Generation.TopP = f
	}
	if v := os.Getenv("GENERATION_MAX_TOKENS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid GENERATION_MAX_TOKENS %q: %w", v, err)
		}
		cfg.Generation.MaxTokens = n
	}
	if v := os.Getenv("METRICS_ENABLED"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid METRICS_ENABLED %q: %w", v, err)
		}
		cfg.Metrics.Enabled = b
	}
	if v := os.Getenv("METRICS_ENDPOINT"); v != "" {
		cfg.Metrics.Endpoint = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Logging.Level = strings.ToLower(v)
	}
	if v := os.Getenv("LOG_FORMAT"); v != "" {
		cfg.Logging.Format = strings.ToLower(v)
	}
	return nil
}

// parseDuration accepts a plain number of seconds ("45", "0.5") or a Go
// duration string ("500ms", "2m").
func parseDuration(v string) (time.Duration, error) {
	v = strings.TrimSpace(v)
	if secs, err := strconv.ParseFloat(v, 64); err == nil {
		return time.Duration(secs * float64(time.Second)), nil
	}
	return time.ParseDuration(v)
}

func splitList(v string) []string {
	var out []string
	for _, item := range strings.Split(v, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return errors.New("server.port must not be empty")
	}
	if err := ValidateBodySizeLimit(c.Server.BodySizeLimit); err != nil {
		return err
	}
	u, err := url.Parse(c.Backend.BaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("backend.base_url must be an absolute http(s) URL, got %q", c.Backend.BaseURL)
	}
	if strings.TrimSpace(c.Backend.Model) == "" {
		return errors.New("backend.model must not be empty")
	}
	if c.Backend.Timeout <= 0 {
		return fmt.Errorf("backend.timeout must be positive, got %s", c.Backend.Timeout)
	}
	if c.Generation.Temperature < 0 || c.Generation.Temperature > 2 {
		return fmt.Errorf("generation.temperature must be within [0, 2], got %v", c.Generation.Temperature)
	}
	if c.Generation.TopP <= 0 || c.Generation.TopP > 1 {
		return fmt.Errorf("generation.top_p must be within (0, 1], got %v", c.Generation.TopP)
	}
	if c.Generation.MaxTokens <= 0 {
		return fmt.Errorf("generation.max_tokens must be positive, got %d", c.Generation.MaxTokens)
	}
	if c.Metrics.Enabled && !strings.HasPrefix(c.Metrics.Endpoint, "/") {
		return fmt.Errorf("metrics.endpoint must start with '/', got %q", c.Metrics.Endpoint)
	}
	switch c.Logging.Format {
	case "", "auto", "text", "json":
	default:
		return fmt.Errorf("logging.format must be auto, text or json, got %q", c.Logging.Format)
	}
	return nil
}

const (
	minBodySizeLimit = 1 << 10
	maxBodySizeLimit = 100 << 20
)

var bodySizePattern = regexp.MustCompile(`^(\d+)([kKmMgG]?)([bB]?)$`)

// ValidateBodySizeLimit checks a size string such as "512K" or "10MB".
// The empty string is accepted and means the default.
func ValidateBodySizeLimit(s string) error {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	m := bodySizePattern.FindStringSubmatch(s)
	if m == nil || (m[2] == "" && m[3] != "") {
		return fmt.Errorf("invalid body size limit %q: use a number with optional K or M suffix", s)
	}
	n, err := strconv.ParseInt(m[1], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid body size limit %q: %w", s, err)
	}
	switch strings.ToUpper(m[2]) {
	case "K":
		n <<= 10
	case "M":
		n <<= 20
	case "G":
		n <<= 30
	}
	if n < minBodySizeLimit || n > maxBodySizeLimit {
		return fmt.Errorf("body size limit %q out of range (1K to 100M)", s)
	}
	return nil
}
