package config

import (
	"bufio"
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

const (
	defaultEnvFile          = ".env"
	defaultEnvironment      = "dev"
	defaultPort             = "8080"
	defaultReadTimeout      = 15 * time.Second
	defaultWriteTimeout     = 30 * time.Second
	defaultIdleTimeout      = 120 * time.Second
	defaultRequestTimeout   = 30 * time.Second
	defaultAPIBaseURL       = "https://www.services.fixlabtech.com"
	defaultAPITimeout       = 8 * time.Second
	defaultDraftStore       = DraftStoreCookie
	defaultDraftTTL         = time.Hour
	defaultCatalogPath      = "config/catalog.yaml"
	defaultTemplatesDir     = "templates"
	defaultPublicDir        = "public"
	defaultLogLevel         = "info"
	defaultRatePerMinute    = 30
	defaultRateBurst        = 10
	defaultSearchDebounce   = 0
	productionEnvironment   = "prod"
	minimumSessionKeyLength = 32
)

// Draft store backends.
const (
	DraftStoreCookie = "cookie"
	DraftStoreRedis  = "redis"
)

// Config captures all runtime configuration organised by concern.
type Config struct {
	Server    ServerConfig
	API       APIConfig
	Session   SessionConfig
	Drafts    DraftConfig
	Paths     PathConfig
	Log       LogConfig
	RateLimit RateLimitConfig
	UI        UIConfig
}

// ServerConfig configures HTTP server parameters.
type ServerConfig struct {
	Environment    string
	Port           string
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	IdleTimeout    time.Duration
	RequestTimeout time.Duration
}

// Production reports whether the server runs with production settings.
func (s ServerConfig) Production() bool {
	return strings.EqualFold(s.Environment, productionEnvironment)
}

// APIConfig points at the remote registration and blog API.
type APIConfig struct {
	BaseURL string
	Timeout time.Duration
}

// SessionConfig holds the cookie signing and encryption keys.
type SessionConfig struct {
	HashKey  []byte
	BlockKey []byte
	Secure   bool
	// Ephemeral is set when keys were generated for this process only.
	Ephemeral bool
}

// DraftConfig selects where registration drafts are kept across the payment redirect.
type DraftConfig struct {
	Store         string
	TTL           time.Duration
	RedisAddr     string
	RedisPassword string
	RedisDB       int
}

// PathConfig lists on-disk inputs.
type PathConfig struct {
	CatalogPath  string
	TemplatesDir string
	PublicDir    string
}

// LogConfig configures the zap logger.
type LogConfig struct {
	Level string
}

// RateLimitConfig configures the per-client limiter on form posts.
type RateLimitConfig struct {
	PerMinute int
	Burst     int
}

// UIConfig carries presentation switches.
type UIConfig struct {
	// SearchDebounce delays search-as-you-type requests. Zero fires on every input.
	SearchDebounce time.Duration
	// ReloadTemplates re-parses templates on every request.
	ReloadTemplates bool
	// GAMeasurementID enables the analytics snippet when set.
	GAMeasurementID string
}

// ValidationError is returned when required configuration fields are missing or invalid.
type ValidationError struct {
	fields []string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("config validation failed: missing or invalid fields [%s]", strings.Join(e.fields, ", "))
}

// Fields returns a copy of the missing/invalid field list.
func (e *ValidationError) Fields() []string {
	out := make([]string, len(e.fields))
	copy(out, e.fields)
	return out
}

// Option customises Load behaviour.
type Option func(*loaderOptions)

type loaderOptions struct {
	envFile      string
	envMap       map[string]string
	useSystemEnv bool
}

// WithEnvFile overrides the .env file path used for local overrides.
func WithEnvFile(path string) Option {
	return func(o *loaderOptions) {
		o.envFile = path
	}
}

// WithEnvMap injects an explicit key/value map for environment lookups. Values in the map
// take precedence over system environment variables.
func WithEnvMap(values map[string]string) Option {
	return func(o *loaderOptions) {
		o.envMap = values
	}
}

// WithoutSystemEnv ignores the process environment.
func WithoutSystemEnv() Option {
	return func(o *loaderOptions) {
		o.useSystemEnv = false
	}
}

// Load assembles the configuration from defaults, .env overrides and environment variables.
func Load(_ context.Context, opts ...Option) (Config, error) {
	options := loaderOptions{
		envFile:      defaultEnvFile,
		useSystemEnv: true,
	}
	for _, opt := range opts {
		opt(&options)
	}

	dotEnvValues, err := loadDotEnv(options.envFile)
	if err != nil {
		return Config{}, err
	}

	lookup := func(key string) (string, bool) {
		if options.envMap != nil {
			if value, ok := options.envMap[key]; ok {
				return value, true
			}
		}
		if options.useSystemEnv {
			if value, ok := os.LookupEnv(key); ok {
				return value, true
			}
		}
		if dotEnvValues != nil {
			if value, ok := dotEnvValues[key]; ok {
				return value, true
			}
		}
		return "", false
	}

	env := strings.ToLower(stringWithDefault(lookup, "FIXLAB_WEB_ENV", defaultEnvironment))
	cfg := Config{
		Server: ServerConfig{
			Environment:    env,
			Port:           stringWithDefault(lookup, "FIXLAB_WEB_PORT", stringWithDefault(lookup, "PORT", defaultPort)),
			ReadTimeout:    durationWithDefault(lookup, "FIXLAB_WEB_READ_TIMEOUT", defaultReadTimeout),
			WriteTimeout:   durationWithDefault(lookup, "FIXLAB_WEB_WRITE_TIMEOUT", defaultWriteTimeout),
			IdleTimeout:    durationWithDefault(lookup, "FIXLAB_WEB_IDLE_TIMEOUT", defaultIdleTimeout),
			RequestTimeout: durationWithDefault(lookup, "FIXLAB_WEB_REQUEST_TIMEOUT", defaultRequestTimeout),
		},
		API: APIConfig{
			BaseURL: strings.TrimRight(stringWithDefault(lookup, "FIXLAB_WEB_API_BASE_URL", defaultAPIBaseURL), "/"),
			Timeout: durationWithDefault(lookup, "FIXLAB_WEB_API_TIMEOUT", defaultAPITimeout),
		},
		Session: SessionConfig{
			HashKey:  []byte(stringWithDefault(lookup, "FIXLAB_WEB_SESSION_HASH_KEY", "")),
			BlockKey: []byte(stringWithDefault(lookup, "FIXLAB_WEB_SESSION_BLOCK_KEY", "")),
			Secure:   boolWithDefault(lookup, "FIXLAB_WEB_COOKIE_SECURE", env == productionEnvironment),
		},
		Drafts: DraftConfig{
			Store:         strings.ToLower(stringWithDefault(lookup, "FIXLAB_WEB_DRAFT_STORE", defaultDraftStore)),
			TTL:           durationWithDefault(lookup, "FIXLAB_WEB_DRAFT_TTL", defaultDraftTTL),
			RedisAddr:     stringWithDefault(lookup, "FIXLAB_WEB_REDIS_ADDR", ""),
			RedisPassword: stringWithDefault(lookup, "FIXLAB_WEB_REDIS_PASSWORD", ""),
			RedisDB:       intWithDefault(lookup, "FIXLAB_WEB_REDIS_DB", 0),
		},
		Paths: PathConfig{
			CatalogPath:  stringWithDefault(lookup, "FIXLAB_WEB_CATALOG_PATH", defaultCatalogPath),
			TemplatesDir: stringWithDefault(lookup, "FIXLAB_WEB_TEMPLATES_DIR", defaultTemplatesDir),
			PublicDir:    stringWithDefault(lookup, "FIXLAB_WEB_PUBLIC_DIR", defaultPublicDir),
		},
		Log: LogConfig{
			Level: stringWithDefault(lookup, "FIXLAB_WEB_LOG_LEVEL", defaultLogLevel),
		},
		RateLimit: RateLimitConfig{
			PerMinute: intWithDefault(lookup, "FIXLAB_WEB_RATE_LIMIT_PER_MINUTE", defaultRatePerMinute),
			Burst:     intWithDefault(lookup, "FIXLAB_WEB_RATE_LIMIT_BURST", defaultRateBurst),
		},
		UI: UIConfig{
			SearchDebounce:  durationWithDefault(lookup, "FIXLAB_WEB_SEARCH_DEBOUNCE", defaultSearchDebounce),
			ReloadTemplates: boolWithDefault(lookup, "FIXLAB_WEB_RELOAD_TEMPLATES", env != productionEnvironment),
			GAMeasurementID: stringWithDefault(lookup, "FIXLAB_WEB_GA_MEASUREMENT_ID", ""),
		},
	}

	if len(cfg.Session.HashKey) == 0 && !cfg.Server.Production() {
		hash, block, err := ephemeralKeys()
		if err != nil {
			return Config{}, err
		}
		cfg.Session.HashKey = hash
		cfg.Session.BlockKey = block
		cfg.Session.Ephemeral = true
	}

	if err := validateConfig(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func validateConfig(cfg Config) error {
	var missing []string

	if cfg.Server.Port == "" {
		missing = append(missing, "Server.Port")
	}
	if cfg.Server.RequestTimeout <= 0 {
		missing = append(missing, "Server.RequestTimeout")
	}
	if u, err := url.Parse(cfg.API.BaseURL); err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		missing = append(missing, "API.BaseURL")
	}
	if cfg.API.Timeout <= 0 {
		missing = append(missing, "API.Timeout")
	}
	if len(cfg.Session.HashKey) < minimumSessionKeyLength {
		missing = append(missing, "Session.HashKey")
	}
	switch len(cfg.Session.BlockKey) {
	case 0, 16, 24, 32:
	default:
		missing = append(missing, "Session.BlockKey")
	}
	switch cfg.Drafts.Store {
	case DraftStoreCookie:
	case DraftStoreRedis:
		if strings.TrimSpace(cfg.Drafts.RedisAddr) == "" {
			missing = append(missing, "Drafts.RedisAddr")
		}
	default:
		missing = append(missing, "Drafts.Store")
	}
	if cfg.Drafts.TTL <= 0 {
		missing = append(missing, "Drafts.TTL")
	}
	if cfg.Paths.CatalogPath == "" {
		missing = append(missing, "Paths.CatalogPath")
	}
	if cfg.RateLimit.PerMinute <= 0 {
		missing = append(missing, "RateLimit.PerMinute")
	}
	if cfg.RateLimit.Burst <= 0 {
		missing = append(missing, "RateLimit.Burst")
	}
	if cfg.UI.SearchDebounce < 0 {
		missing = append(missing, "UI.SearchDebounce")
	}

	if len(missing) > 0 {
		return &ValidationError{fields: missing}
	}
	return nil
}

func ephemeralKeys() ([]byte, []byte, error) {
	hash := make([]byte, 64)
	block := make([]byte, 32)
	if _, err := rand.Read(hash); err != nil {
		return nil, nil, fmt.Errorf("config: generate session key: %w", err)
	}
	if _, err := rand.Read(block); err != nil {
		return nil, nil, fmt.Errorf("config: generate session key: %w", err)
	}
	return hash, block, nil
}

func loadDotEnv(path string) (map[string]string, error) {
	if path == "" {
		return nil, nil
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		absPath = path
	}

	file, err := os.Open(absPath)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("config: unable to read %s: %w", absPath, err)
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	values := make(map[string]string)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		line = strings.TrimSpace(strings.TrimPrefix(line, "export "))
		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		key = strings.TrimSpace(key)
		if key == "" {
			continue
		}
		values[key] = strings.Trim(strings.TrimSpace(value), "\"'")
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("config: failed parsing %s: %w", absPath, err)
	}
	return values, nil
}

func stringWithDefault(lookup func(string) (string, bool), key, fallback string) string {
	if value, ok := lookup(key); ok && strings.TrimSpace(value) != "" {
		return strings.TrimSpace(value)
	}
	return fallback
}

func durationWithDefault(lookup func(string) (string, bool), key string, fallback time.Duration) time.Duration {
	if value, ok := lookup(key); ok && value != "" {
		d, err := time.ParseDuration(value)
		if err == nil {
			return d
		}
	}
	return fallback
}

func intWithDefault(lookup func(string) (string, bool), key string, fallback int) int {
	if value, ok := lookup(key); ok && value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return fallback
}

func boolWithDefault(lookup func(string) (string, bool), key string, fallback bool) bool {
	if value, ok := lookup(key); ok && value != "" {
		switch strings.ToLower(value) {
		case "true", "1", "yes", "on":
			return true
		case "false", "0", "no", "off":
			return false
		}
	}
	return fallback
}
