package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/kailas-cloud/elodash/internal/domain/board"
	"github.com/kailas-cloud/elodash/internal/domain/record"
)

// Config holds the elodash API configuration.
type Config struct {
	HTTP         HTTPConfig         `yaml:"http"`
	Database     DatabaseConfig     `yaml:"database"`
	Worker       WorkerConfig       `yaml:"worker"`
	KV           KVConfig           `yaml:"kv"`
	Boards       []BoardConfig      `yaml:"boards"`
	Pagination   PaginationConfig   `yaml:"pagination"`
	Cache        CacheConfig        `yaml:"cache"`
	Registration RegistrationConfig `yaml:"registration"`
	Calculator   CalculatorConfig   `yaml:"calculator"`
	Tracing      TracingConfig      `yaml:"tracing"`
	Logging      LoggingConfig      `yaml:"logging"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error (default: determined by env)
}

// HTTPConfig holds HTTP server settings.
type HTTPConfig struct {
	Port            int `yaml:"port"`
	ReadTimeoutSec  int `yaml:"read_timeout_sec"`
	WriteTimeoutSec int `yaml:"write_timeout_sec"`
	ShutdownSec     int `yaml:"shutdown_timeout_sec"`
}

// Database drivers.
const (
	DriverNone   = "none"
	DriverRedis  = "redis"
	DriverValkey = "valkey"
)

// DatabaseConfig holds database connection settings.
// Redis and Valkey share one client; "none" runs without a database.
type DatabaseConfig struct {
	Driver           string   `yaml:"driver"` // none, redis, valkey (default: none)
	Addrs            []string `yaml:"addrs"`
	Username         string   `yaml:"username"`
	Password         string   `yaml:"password"`
	DB               int      `yaml:"db"`
	ReadinessTimeout int      `yaml:"readiness_timeout_sec"`
}

// Enabled reports whether a database is configured.
func (d DatabaseConfig) Enabled() bool { return d.Driver != DriverNone }

// WorkerConfig holds settings of the KV worker and the static payload fetcher.
type WorkerConfig struct {
	URL        string `yaml:"url"`
	TimeoutSec int    `yaml:"timeout_sec"`
}

// KV backends.
const (
	BackendWorker   = "worker"
	BackendDatabase = "database"
)

// KVConfig selects the backend behind kv board sources and the users list.
type KVConfig struct {
	Backend  string `yaml:"backend"` // worker, database
	UsersKey string `yaml:"users_key"`
}

// BoardConfig declares one board.
type BoardConfig struct {
	Name   string       `yaml:"name"`
	Kind   string       `yaml:"kind"` // leetcode, github, problem
	Source SourceConfig `yaml:"source"`
}

// SourceConfig locates a board payload.
type SourceConfig struct {
	Type string `yaml:"type"` // url, kv
	URL  string `yaml:"url"`
	Key  string `yaml:"key"`
}

// PaginationConfig holds page size limits.
type PaginationConfig struct {
	DefaultPageSize int `yaml:"default_page_size"`
	MaxPageSize     int `yaml:"max_page_size"`
}

// CacheConfig holds snapshot cache settings. A zero TTL disables the cache.
type CacheConfig struct {
	SnapshotTTLSec int `yaml:"snapshot_ttl_sec"`
}

// RegistrationConfig holds the registration throttle.
type RegistrationConfig struct {
	RatePerMinute float64 `yaml:"rate_per_minute"` // 0 = unlimited
	Burst         int     `yaml:"burst"`
}

// CalculatorConfig holds the shirt calculator constants.
type CalculatorConfig struct {
	Target   float64 `yaml:"target"`
	PerMonth float64 `yaml:"per_month"`
}

// TracingConfig holds OpenTelemetry settings.
type TracingConfig struct {
	Enabled      bool    `yaml:"enabled"`
	ServiceName  string  `yaml:"service_name"`
	Endpoint     string  `yaml:"endpoint"`
	SamplingRate float64 `yaml:"sampling_rate"`
	Insecure     bool    `yaml:"insecure"`
}

// Load reads configuration from a YAML file by environment name (local, dev, prod).
func Load(env string) (Config, error) {
	return LoadFile(Path(env))
}

// LoadFile reads, expands, defaults and validates the configuration at path.
func LoadFile(path string) (Config, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	// Substitute env variables of the form ${VAR}
	data = expandEnvVars(data)

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// GetEnv returns the current environment from the ENV variable, defaulting to "local".
func GetEnv() string {
	if env := os.Getenv("ENV"); env != "" {
		return env
	}
	return "local"
}

// ApplyDefaults fills empty fields with default values.
func (c *Config) ApplyDefaults() {
	if c.HTTP.ReadTimeoutSec <= 0 {
		c.HTTP.ReadTimeoutSec = 10
	}
	if c.HTTP.WriteTimeoutSec <= 0 {
		c.HTTP.WriteTimeoutSec = 10
	}
	if c.HTTP.ShutdownSec <= 0 {
		c.HTTP.ShutdownSec = 10
	}
	if c.Database.Driver == "" {
		c.Database.Driver = DriverNone
	}
	if c.Database.ReadinessTimeout <= 0 {
		c.Database.ReadinessTimeout = 10
	}
	if c.Worker.TimeoutSec <= 0 {
		c.Worker.TimeoutSec = 10
	}
	if c.KV.Backend == "" {
		c.KV.Backend = BackendWorker
		if c.Worker.URL == "" && c.Database.Enabled() {
			c.KV.Backend = BackendDatabase
		}
	}
	if c.KV.UsersKey == "" {
		c.KV.UsersKey = "users:list"
	}
	if c.Pagination.DefaultPageSize <= 0 {
		c.Pagination.DefaultPageSize = 20
	}
	if c.Pagination.MaxPageSize <= 0 {
		c.Pagination.MaxPageSize = 100
	}
	if c.Registration.Burst <= 0 {
		c.Registration.Burst = 1
	}
	if c.Calculator.Target <= 0 {
		c.Calculator.Target = 6000
	}
	if c.Calculator.PerMonth <= 0 {
		c.Calculator.PerMonth = 550
	}
	if c.Tracing.ServiceName == "" {
		c.Tracing.ServiceName = "elodash"
	}
	if c.Tracing.SamplingRate <= 0 {
		c.Tracing.SamplingRate = 1
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}
	switch c.Database.Driver {
	case DriverNone:
	case DriverRedis, DriverValkey:
		if len(c.Database.Addrs) == 0 {
			return fmt.Errorf("database.addrs is required for driver %q", c.Database.Driver)
		}
	default:
		return fmt.Errorf("database.driver must be \"none\", \"redis\" or \"valkey\", got %q", c.Database.Driver)
	}
	switch c.KV.Backend {
	case BackendWorker:
		if c.Worker.URL == "" {
			return fmt.Errorf("worker.url is required for kv backend \"worker\"")
		}
	case BackendDatabase:
		if !c.Database.Enabled() {
			return fmt.Errorf("kv backend \"database\" requires database.driver")
		}
	default:
		return fmt.Errorf("kv.backend must be \"worker\" or \"database\", got %q", c.KV.Backend)
	}
	if c.Pagination.DefaultPageSize > c.Pagination.MaxPageSize {
		return fmt.Errorf("pagination.default_page_size %d exceeds max_page_size %d",
			c.Pagination.DefaultPageSize, c.Pagination.MaxPageSize)
	}
	if c.Cache.SnapshotTTLSec < 0 {
		return fmt.Errorf("cache.snapshot_ttl_sec must not be negative")
	}
	if c.Registration.RatePerMinute < 0 {
		return fmt.Errorf("registration.rate_per_minute must not be negative")
	}
	if c.Tracing.SamplingRate > 1 {
		return fmt.Errorf("tracing.sampling_rate must be in (0, 1], got %v", c.Tracing.SamplingRate)
	}
	if _, err := c.BoardCatalog(); err != nil {
		return err
	}
	return nil
}

// BoardCatalog converts the board section into domain boards, in file order.
func (c *Config) BoardCatalog() ([]board.Board, error) {
	if len(c.Boards) == 0 {
		return nil, fmt.Errorf("at least one board is required")
	}
	seen := make(map[string]struct{}, len(c.Boards))
	out := make([]board.Board, 0, len(c.Boards))
	for i, bc := range c.Boards {
		src, err := board.NewSource(board.SourceType(bc.Source.Type), bc.Source.URL, bc.Source.Key)
		if err != nil {
			return nil, fmt.Errorf("boards[%d].source: %w", i, err)
		}
		b, err := board.New(bc.Name, record.Kind(bc.Kind), src)
		if err != nil {
			return nil, fmt.Errorf("boards[%d]: %w", i, err)
		}
		if _, dup := seen[b.Name()]; dup {
			return nil, fmt.Errorf("boards[%d]: duplicate board %q", i, b.Name())
		}
		seen[b.Name()] = struct{}{}
		out = append(out, b)
	}
	return out, nil
}

// Path locates the config file of env.
func Path(env string) string {
	filename := fmt.Sprintf("%s.yaml", env)

	// 1. Check ./config/
	if path := filepath.Join("config", filename); fileExists(path) {
		return path
	}

	// 2. Check relative to the source file
	_, b, _, _ := runtime.Caller(0)
	projectRoot := filepath.Dir(filepath.Dir(filepath.Dir(b))) // internal/config -> project root
	if path := filepath.Join(projectRoot, "config", filename); fileExists(path) {
		return path
	}

	// 3. Fallback to ./config/
	return filepath.Join("config", filename)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// expandEnvVars replaces ${VAR} and ${VAR:-default} with environment variable values.
var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

func expandEnvVars(data []byte) []byte {
	return envVarRegex.ReplaceAllFunc(data, func(match []byte) []byte {
		expr := string(match[2 : len(match)-1]) // strip ${ and }
		varName, defaultVal, hasDefault := strings.Cut(expr, ":-")
		val := os.Getenv(varName)
		if val == "" && hasDefault {
			val = defaultVal
		}
		return []byte(val)
	})
}
