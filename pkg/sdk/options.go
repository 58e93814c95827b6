package elodash

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Option configures the Client.
type Option interface {
	apply(*clientConfig)
}

// optionFunc adapts a function to the Option interface.
type optionFunc func(*clientConfig)

func (f optionFunc) apply(c *clientConfig) { f(c) }

type boardSpec struct {
	name   string
	kind   Kind
	source Source
}

type clientConfig struct {
	driver   string // "valkey" or "redis"
	addrs    []string
	password string

	workerURL     string
	httpTimeout   time.Duration
	httpTransport http.RoundTripper
	databaseKV    bool
	usersKey      string

	boards   []boardSpec
	cacheTTL time.Duration

	defaultPageSize int
	maxPageSize     int

	ratePerMinute float64
	rateBurst     int

	logger     *slog.Logger
	metricsReg prometheus.Registerer
}

// WithValkey connects the client to a Valkey instance.
func WithValkey(addr, password string) Option {
	return optionFunc(func(c *clientConfig) {
		c.driver = "valkey"
		c.addrs = []string{addr}
		c.password = password
	})
}

// WithRedis connects the client to a Redis instance.
func WithRedis(addr, password string) Option {
	return optionFunc(func(c *clientConfig) {
		c.driver = "redis"
		c.addrs = []string{addr}
		c.password = password
	})
}

// WithWorker sets the KV worker URL. KV board sources and the users list are
// read from the worker unless WithDatabaseKV is given.
func WithWorker(url string) Option {
	return optionFunc(func(c *clientConfig) {
		c.workerURL = url
	})
}

// WithDatabaseKV stores KV board sources and the users list in the database
// instead of the worker.
func WithDatabaseKV() Option {
	return optionFunc(func(c *clientConfig) {
		c.databaseKV = true
	})
}

// WithUsersKey overrides the key of the registered users list.
// Default: "users:list".
func WithUsersKey(key string) Option {
	return optionFunc(func(c *clientConfig) {
		c.usersKey = key
	})
}

// WithHTTPTimeout bounds each worker and payload request. Default: 10s.
func WithHTTPTimeout(d time.Duration) Option {
	return optionFunc(func(c *clientConfig) {
		c.httpTimeout = d
	})
}

// WithHTTPTransport replaces the base HTTP round tripper.
func WithHTTPTransport(rt http.RoundTripper) Option {
	return optionFunc(func(c *clientConfig) {
		c.httpTransport = rt
	})
}

// WithBoard declares a board. Boards keep declaration order.
func WithBoard(name string, kind Kind, source Source) Option {
	return optionFunc(func(c *clientConfig) {
		c.boards = append(c.boards, boardSpec{name: name, kind: kind, source: source})
	})
}

// WithSnapshotCache caches board payloads in the database for ttl.
// Requires WithRedis or WithValkey; ignored otherwise.
func WithSnapshotCache(ttl time.Duration) Option {
	return optionFunc(func(c *clientConfig) {
		c.cacheTTL = ttl
	})
}

// WithPageSize sets the default and maximum page size. Defaults: 20, 100.
func WithPageSize(defaultSize, maxSize int) Option {
	return optionFunc(func(c *clientConfig) {
		c.defaultPageSize = defaultSize
		c.maxPageSize = maxSize
	})
}

// WithRegistrationRate throttles Register to perMinute with burst.
// Default: unlimited.
func WithRegistrationRate(perMinute float64, burst int) Option {
	return optionFunc(func(c *clientConfig) {
		c.ratePerMinute = perMinute
		c.rateBurst = burst
	})
}

// WithLogger enables structured logging for SDK operations.
// Pass nil to disable (default). Uses standard library slog.
func WithLogger(l *slog.Logger) Option {
	return optionFunc(func(c *clientConfig) {
		c.logger = l
	})
}

// WithPrometheus registers SDK metrics (operation counts and durations)
// on the given registerer. Pass nil to disable (default).
func WithPrometheus(reg prometheus.Registerer) Option {
	return optionFunc(func(c *clientConfig) {
		c.metricsReg = reg
	})
}
