package elodash

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/elodash/internal/db"
	dbRedis "github.com/kailas-cloud/elodash/internal/db/redis"
	"github.com/kailas-cloud/elodash/internal/domain/board"
	lb "github.com/kailas-cloud/elodash/internal/domain/leaderboard"
	"github.com/kailas-cloud/elodash/internal/domain/metric"
	"github.com/kailas-cloud/elodash/internal/domain/record"
	"github.com/kailas-cloud/elodash/internal/domain/registration"
	"github.com/kailas-cloud/elodash/internal/metrics"
	"github.com/kailas-cloud/elodash/internal/repository/snapshot"
	userrepo "github.com/kailas-cloud/elodash/internal/repository/user"
	"github.com/kailas-cloud/elodash/internal/transport/worker"
	healthuc "github.com/kailas-cloud/elodash/internal/usecase/health"
	lbuc "github.com/kailas-cloud/elodash/internal/usecase/leaderboard"
	reguc "github.com/kailas-cloud/elodash/internal/usecase/registration"
)

const defaultReadinessTimeout = 10 * time.Second

// Internal interfaces for substitution in tests.
type leaderboardUseCase interface {
	Boards() []board.Board
	Query(ctx context.Context, q lbuc.Query) (lbuc.Result, error)
	Categories(ctx context.Context, name string) ([]lb.CategoryCount, error)
	Random(ctx context.Context, q lbuc.Query) (record.Record, error)
}

type registrationUseCase interface {
	Register(ctx context.Context, req reguc.Request) (registration.User, error)
}

type healthUseCase interface {
	Check(ctx context.Context) healthuc.Report
}

type kvBackend interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
}

// Client is the elodash SDK entry point.
type Client struct {
	store     db.Store
	upstream  *worker.Client
	lbSvc     leaderboardUseCase
	regSvc    registrationUseCase
	healthSvc healthUseCase
	obs       *observer
}

// New creates a Client. At least one board is required. A database is
// optional; when one is configured the provided context bounds its readiness
// check.
func New(ctx context.Context, opts ...Option) (*Client, error) {
	cfg := &clientConfig{}
	for _, o := range opts {
		o.apply(cfg)
	}

	boards, err := buildBoards(cfg.boards)
	if err != nil {
		return nil, err
	}

	var store db.Store
	if cfg.driver != "" {
		if store, err = createStore(cfg); err != nil {
			return nil, err
		}
		if err := store.WaitForReady(ctx, defaultReadinessTimeout); err != nil {
			store.Close()
			return nil, fmt.Errorf("elodash: database not ready: %w", err)
		}
	}

	obs, err := newObserver(cfg.logger, cfg.metricsReg)
	if err != nil {
		closeStore(store)
		return nil, err
	}

	c, err := wireClient(store, boards, cfg, obs)
	if err != nil {
		closeStore(store)
		return nil, err
	}
	return c, nil
}

func createStore(cfg *clientConfig) (db.Store, error) {
	switch cfg.driver {
	case "valkey", "redis":
		s, err := dbRedis.NewStore(dbRedis.Config{
			Addrs:    cfg.addrs,
			Password: cfg.password,
		})
		if err != nil {
			return nil, fmt.Errorf("elodash: create %s store: %w", cfg.driver, err)
		}
		return s, nil
	default:
		return nil, fmt.Errorf("elodash: unknown driver %q", cfg.driver)
	}
}

func closeStore(s db.Store) {
	if s != nil {
		s.Close()
	}
}

func buildBoards(specs []boardSpec) ([]board.Board, error) {
	if len(specs) == 0 {
		return nil, errors.New("elodash: at least one board required (use WithBoard)")
	}
	out := make([]board.Board, 0, len(specs))
	for _, s := range specs {
		src, err := board.NewSource(board.SourceType(s.source.typ), s.source.url, s.source.key)
		if err != nil {
			return nil, fmt.Errorf("elodash: board %q: %w", s.name, err)
		}
		b, err := board.New(s.name, record.Kind(s.kind), src)
		if err != nil {
			return nil, fmt.Errorf("elodash: %w", err)
		}
		out = append(out, b)
	}
	return out, nil
}

func wireClient(store db.Store, boards []board.Board, cfg *clientConfig, obs *observer) (*Client, error) {
	logger := zap.NewNop()

	upstream := worker.NewClient(&worker.Config{
		URL:       cfg.workerURL,
		Timeout:   cfg.httpTimeout,
		Transport: cfg.httpTransport,
		Logger:    logger,
	})

	// nil interface, not a typed nil, when no backend is configured
	var kv kvBackend
	switch {
	case cfg.databaseKV && store == nil:
		return nil, errors.New("elodash: WithDatabaseKV requires WithRedis or WithValkey")
	case cfg.databaseKV:
		kv = store
	case cfg.workerURL != "":
		kv = upstream
	case store != nil:
		kv = store
	}
	if kv == nil {
		for _, b := range boards {
			if b.Source().Type() == board.SourceKV {
				return nil, fmt.Errorf("elodash: board %q reads a kv source but no KV backend is configured", b.Name())
			}
		}
	}

	source := snapshot.NewSource(upstream, kv)
	snapshots := snapshot.New(source, logger)
	var cache *snapshot.Cache
	if store != nil && cfg.cacheTTL > 0 {
		cache = snapshot.NewCache(source, store, cfg.cacheTTL, metrics.SnapshotCacheTotal, logger)
		snapshots = snapshot.New(cache, logger)
	}

	lbSvc, err := lbuc.New(boards, snapshots, logger)
	if err != nil {
		return nil, fmt.Errorf("elodash: %w", err)
	}
	lbSvc.WithPagination(cfg.defaultPageSize, cfg.maxPageSize)
	if cache != nil {
		lbSvc.WithCacheInvalidator(cache)
	}

	var regSvc registrationUseCase
	if kv != nil {
		regSvc = reguc.New(userrepo.New(kv, cfg.usersKey), logger).
			WithRateLimit(cfg.ratePerMinute, cfg.rateBurst)
	}

	var pinger healthuc.DBPinger
	if store != nil {
		pinger = store
	}
	var checker healthuc.UpstreamChecker
	if cfg.workerURL != "" {
		checker = upstream
	}

	return &Client{
		store:     store,
		upstream:  upstream,
		lbSvc:     lbSvc,
		regSvc:    regSvc,
		healthSvc: healthuc.New(pinger, checker),
		obs:       obs,
	}, nil
}

// Health is the state of the backends the client was configured with.
// A component that is not configured reports "".
type Health struct {
	Status   string // "ok", "degraded" or "error"
	Database string // "ok" or "error"
	Worker   string // "ok" or "error"
}

// OK reports whether every configured backend answered.
func (h Health) OK() bool { return h.Status == string(healthuc.Healthy) }

// Health checks the database and the KV worker concurrently.
func (c *Client) Health(ctx context.Context) Health {
	report := c.healthSvc.Check(ctx)
	return Health{
		Status:   string(report.Status),
		Database: string(report.Checks["database"]),
		Worker:   string(report.Checks["upstream"]),
	}
}

// Close releases all resources.
func (c *Client) Close() {
	if c.store != nil {
		c.store.Close()
	}
}

// Ping checks database connectivity. Without a database it succeeds.
func (c *Client) Ping(ctx context.Context) (err error) {
	start := time.Now()
	defer func() { c.obs.observe("ping", "", start, err) }()

	if c.store == nil {
		return nil
	}
	if err = c.store.Ping(ctx); err != nil {
		return fmt.Errorf("ping: %w", err)
	}
	return nil
}

// Boards returns the configured boards in declaration order.
func (c *Client) Boards() []BoardInfo {
	boards := c.lbSvc.Boards()
	out := make([]BoardInfo, len(boards))
	for i, b := range boards {
		s := b.Schema()
		out[i] = BoardInfo{
			Name:          b.Name(),
			Kind:          Kind(b.Kind()),
			SortKeys:      fieldNames(s.NumericFields()),
			TextFields:    fieldNames(s.TextFields()),
			RangeField:    string(s.RangeField()),
			DefaultSort:   string(s.DefaultSort()),
			HasCategories: s.HasCategories(),
		}
	}
	return out
}

// Entries returns one ranked, filtered page of a board.
func (c *Client) Entries(ctx context.Context, q Query) (_ EntryList, err error) {
	start := time.Now()
	defer func() { c.obs.observe("entries", q.Board, start, err) }()

	res, err := c.lbSvc.Query(ctx, toQuery(q))
	if err != nil {
		return EntryList{}, fmt.Errorf("entries: %w", err)
	}

	items := make([]Entry, len(res.Entries))
	for i, e := range res.Entries {
		items[i] = toEntry(e.Record)
		items[i].Rank = e.Rank
		items[i].Change = toChange(e.Change)
	}
	return EntryList{
		Board: res.Board.Name(),
		Sort:  string(res.Sort),
		Items: items,
		Page: Page{
			Index:      res.Page.Index,
			Size:       res.Page.Size,
			TotalItems: res.Page.TotalItems,
			TotalPages: res.Page.TotalPages,
		},
	}, nil
}

// Categories returns the category counts of a board, sorted by name.
func (c *Client) Categories(ctx context.Context, boardName string) (_ []Category, err error) {
	start := time.Now()
	defer func() { c.obs.observe("categories", boardName, start, err) }()

	counts, err := c.lbSvc.Categories(ctx, boardName)
	if err != nil {
		return nil, fmt.Errorf("categories: %w", err)
	}
	out := make([]Category, len(counts))
	for i, cc := range counts {
		out[i] = Category{Name: cc.Name, Count: cc.Count}
	}
	return out, nil
}

// Random picks a random entry of a board matching the query criteria.
// The returned entry has no rank.
func (c *Client) Random(ctx context.Context, q Query) (_ Entry, err error) {
	start := time.Now()
	defer func() { c.obs.observe("random", q.Board, start, err) }()

	rec, err := c.lbSvc.Random(ctx, toQuery(q))
	if err != nil {
		return Entry{}, fmt.Errorf("random: %w", err)
	}
	return toEntry(rec), nil
}

// Register appends a user to the registration list.
func (c *Client) Register(ctx context.Context, r Registration) (_ User, err error) {
	start := time.Now()
	defer func() { c.obs.observe("register", "", start, err) }()

	if c.regSvc == nil {
		return User{}, errors.New("register: no KV backend configured (use WithWorker, WithRedis or WithValkey)")
	}
	u, err := c.regSvc.Register(ctx, reguc.Request{
		LeetCodeUsername: r.LeetCodeUsername,
		GitHubUsername:   r.GitHubUsername,
		DisplayName:      r.DisplayName,
	})
	if err != nil {
		return User{}, fmt.Errorf("register: %w", err)
	}
	return User{
		ID:               u.ID(),
		LeetCodeUsername: u.LeetCodeUsername(),
		GitHubUsername:   u.GitHubUsername(),
		DisplayName:      u.DisplayName(),
		CreatedAt:        u.CreatedAt(),
	}, nil
}

// MonthsToShirt estimates the months of daily check-ins needed to afford the
// LeetCode shirt. ok is false when coins is not a usable balance.
func MonthsToShirt(coins float64) (months int, ok bool) {
	return metric.ShirtEstimate(coins).Months()
}

func toQuery(q Query) lbuc.Query {
	return lbuc.Query{
		Board:      q.Board,
		Text:       q.Text,
		Min:        q.Min,
		Max:        q.Max,
		RangeField: record.Field(q.RangeField),
		Category:   q.Category,
		Sort:       record.Field(q.Sort),
		Page:       q.Page,
		PageSize:   q.PageSize,
	}
}

// textFields lists every text attribute exposed per kind.
var textFields = map[record.Kind][]record.Field{
	record.KindLeetCode: {record.FieldName},
	record.KindGitHub:   {record.FieldGitHubUsername, record.FieldDisplayName, record.FieldLastUpdated},
	record.KindProblem:  {record.FieldID, record.FieldTitle, record.FieldTitleSlug, record.FieldContestSlug},
}

func toEntry(r record.Record) Entry {
	e := Entry{
		Key:        r.Key(),
		Kind:       Kind(r.Kind()),
		Numbers:    map[string]float64{},
		Texts:      map[string]string{},
		Categories: r.Categories(),
	}
	for _, f := range board.SchemaFor(r.Kind()).NumericFields() {
		if v, ok := r.Number(f); ok {
			e.Numbers[string(f)] = v
		}
	}
	for _, f := range textFields[r.Kind()] {
		if v, ok := r.Text(f); ok {
			e.Texts[string(f)] = v
		}
	}
	return e
}

func toChange(c *metric.Change) *Change {
	if c == nil {
		return nil
	}
	return &Change{Value: c.Value(), Trend: string(c.Trend())}
}

func fieldNames(fields []record.Field) []string {
	out := make([]string, len(fields))
	for i, f := range fields {
		out[i] = string(f)
	}
	return out
}
