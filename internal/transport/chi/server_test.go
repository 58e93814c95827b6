package chi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/kailas-cloud/elodash/internal/domain"
	"github.com/kailas-cloud/elodash/internal/domain/board"
	"github.com/kailas-cloud/elodash/internal/domain/record"
	"github.com/kailas-cloud/elodash/internal/domain/registration"
	"github.com/kailas-cloud/elodash/internal/metrics"
	healthuc "github.com/kailas-cloud/elodash/internal/usecase/health"
	lbuc "github.com/kailas-cloud/elodash/internal/usecase/leaderboard"
	reguc "github.com/kailas-cloud/elodash/internal/usecase/registration"
)

func TestMain(m *testing.M) {
	metrics.RegisterLeaderboardMetrics()
	os.Exit(m.Run())
}

// --- Mocks ---

type staticSnapshots map[string][]record.Record

func (s staticSnapshots) Load(_ context.Context, b board.Board) []record.Record {
	return s[b.Name()]
}

type memUsers struct {
	mu      sync.Mutex
	users   []registration.User
	saveErr error
}

func (m *memUsers) List(_ context.Context) ([]registration.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]registration.User(nil), m.users...), nil
}

func (m *memUsers) Save(_ context.Context, users []registration.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saveErr != nil {
		return m.saveErr
	}
	m.users = users
	return nil
}

type failingPinger struct{}

func (failingPinger) Ping(context.Context) error { return errors.New("down") }

// --- Fixtures ---

func f(v float64) *float64 { return &v }

func fixtures(t *testing.T) ([]board.Board, staticSnapshots) {
	t.Helper()
	mk := func(name string, kind record.Kind) board.Board {
		src, err := board.NewSource(board.SourceKV, "", name+":data")
		require.NoError(t, err)
		b, err := board.New(name, kind, src)
		require.NoError(t, err)
		return b
	}
	lc := func(name string, elo, prev, delta *float64) record.Record {
		r, err := record.NewLeetCode(name, elo, prev, delta, []record.Point{{Date: "2024-01-01", Count: 2}})
		require.NoError(t, err)
		return r
	}
	prob := func(title, slug string, rating float64, topics ...string) record.Record {
		r, err := record.NewProblem(record.ProblemParams{Title: title, TitleSlug: slug, Rating: &rating, Topics: topics})
		require.NoError(t, err)
		return r
	}

	boards := []board.Board{mk("leetcode", record.KindLeetCode), mk("problems", record.KindProblem)}
	snaps := staticSnapshots{
		"leetcode": {
			lc("A", f(1500), f(1500), f(3)),
			lc("B", f(1700), f(1650), f(9)),
			lc("C", f(1650), nil, f(9)),
			lc("D", nil, nil, nil),
		},
		"problems": {
			prob("Two Sum", "two-sum", 1200, "Array", "Hash Table"),
			prob("Word Ladder", "word-ladder", 2100, "Graph"),
			prob("Sort Colors", "sort-colors", 1500, "Array"),
		},
	}
	return boards, snaps
}

func newTestRouter(t *testing.T, users *memUsers, health *healthuc.Service) http.Handler {
	t.Helper()
	boards, snaps := fixtures(t)
	lbSvc, err := lbuc.New(boards, snaps, zap.NewNop())
	require.NoError(t, err)
	if health == nil {
		health = healthuc.New(nil, nil)
	}
	srv := NewServer(lbSvc, reguc.New(users, zap.NewNop()), health, zap.NewNop())
	return NewRouter(srv, zap.NewNop())
}

func do(t *testing.T, h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, http.NoBody)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func decode[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &v), rr.Body.String())
	return v
}

func entryNames(resp EntryListResponse) []string {
	out := make([]string, len(resp.Items))
	for i, e := range resp.Items {
		if n, ok := e.Record["name"].(string); ok {
			out[i] = n
		} else {
			out[i], _ = e.Record["title"].(string)
		}
	}
	return out
}

// --- Tests ---

func TestListBoards(t *testing.T) {
	h := newTestRouter(t, &memUsers{}, nil)

	rr := do(t, h, http.MethodGet, "/api/v1/boards", "")
	require.Equal(t, http.StatusOK, rr.Code)

	resp := decode[BoardListResponse](t, rr)
	require.Len(t, resp.Items, 2)
	assert.Equal(t, "leetcode", resp.Items[0].Name)
	assert.Equal(t, "current_problem_delta", resp.Items[0].DefaultSort)
	assert.Equal(t, "elo", resp.Items[0].RangeField)
	assert.True(t, resp.Items[1].HasCategories)
}

func TestListEntries_DefaultSort(t *testing.T) {
	h := newTestRouter(t, &memUsers{}, nil)

	rr := do(t, h, http.MethodGet, "/api/v1/boards/leetcode/entries", "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.NotEmpty(t, rr.Header().Get("X-Request-ID"))

	resp := decode[EntryListResponse](t, rr)
	assert.Equal(t, []string{"B", "C", "A", "D"}, entryNames(resp))
	assert.Equal(t, "current_problem_delta", resp.Sort)
	assert.Equal(t, Page{Page: 1, PageSize: 20, TotalItems: 4, TotalPages: 1}, resp.Page)

	require.NotNil(t, resp.Items[0].Change)
	assert.Equal(t, "increase", resp.Items[0].Change.Trend)
	assert.InDelta(t, 50, resp.Items[0].Change.Value, 1e-9)
	assert.Nil(t, resp.Items[1].Change, "no prev_elo, no change")
	assert.Equal(t, "unchanged", resp.Items[2].Change.Trend)
	assert.Nil(t, resp.Items[3].Record["elo"])
	assert.Equal(t, "https://leetcode.com/B", resp.Items[0].Record["profile_url"])
}

func TestListEntries_Filters(t *testing.T) {
	h := newTestRouter(t, &memUsers{}, nil)

	tests := []struct {
		name  string
		query string
		want  []string
	}{
		{"min", "min=1600", []string{"B", "C"}},
		{"min max inclusive", "min=1500&max=1650", []string{"C", "A"}},
		{"malformed min ignored", "min=abc", []string{"B", "C", "A", "D"}},
		{"text", "q=b", []string{"B"}},
		{"sort by elo", "sort=elo", []string{"B", "C", "A", "D"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := do(t, h, http.MethodGet, "/api/v1/boards/leetcode/entries?"+tt.query, "")
			require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
			assert.Equal(t, tt.want, entryNames(decode[EntryListResponse](t, rr)))
		})
	}
}

func TestListEntries_Pagination(t *testing.T) {
	h := newTestRouter(t, &memUsers{}, nil)

	rr := do(t, h, http.MethodGet, "/api/v1/boards/leetcode/entries?page=2&page_size=3", "")
	require.Equal(t, http.StatusOK, rr.Code)
	resp := decode[EntryListResponse](t, rr)
	assert.Equal(t, []string{"D"}, entryNames(resp))
	assert.Equal(t, 4, resp.Items[0].Rank)
	assert.Equal(t, 2, resp.Page.TotalPages)

	rr = do(t, h, http.MethodGet, "/api/v1/boards/leetcode/entries?page=99&page_size=3", "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, 2, decode[EntryListResponse](t, rr).Page.Page, "out of range page clamps")

	rr = do(t, h, http.MethodGet, "/api/v1/boards/leetcode/entries?min=5000", "")
	require.Equal(t, http.StatusOK, rr.Code)
	empty := decode[EntryListResponse](t, rr)
	assert.Empty(t, empty.Items)
	assert.Equal(t, Page{Page: 1, PageSize: 20, TotalItems: 0, TotalPages: 1}, empty.Page)
}

func TestListEntries_Errors(t *testing.T) {
	h := newTestRouter(t, &memUsers{}, nil)

	tests := []struct {
		name   string
		target string
		status int
		code   ErrorCode
	}{
		{"malformed page", "/api/v1/boards/leetcode/entries?page=abc", http.StatusBadRequest, ErrorCodeBadRequest},
		{"zero page size", "/api/v1/boards/leetcode/entries?page_size=0", http.StatusBadRequest, ErrorCodeBadRequest},
		{"unknown sort", "/api/v1/boards/leetcode/entries?sort=rating", http.StatusBadRequest, ErrorCodeInvalidSortKey},
		{"category on user board", "/api/v1/boards/leetcode/entries?category=Graph",
			http.StatusBadRequest, ErrorCodeValidationFailed},
		{"unknown board", "/api/v1/boards/chess/entries", http.StatusNotFound, ErrorCodeBoardNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := do(t, h, http.MethodGet, tt.target, "")
			require.Equal(t, tt.status, rr.Code, rr.Body.String())
			assert.Equal(t, tt.code, decode[ErrorResponse](t, rr).Code)
		})
	}
}

func TestListCategories(t *testing.T) {
	h := newTestRouter(t, &memUsers{}, nil)

	rr := do(t, h, http.MethodGet, "/api/v1/boards/problems/categories", "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, []Category{{"Array", 2}, {"Graph", 1}, {"Hash Table", 1}},
		decode[CategoryListResponse](t, rr).Items)

	rr = do(t, h, http.MethodGet, "/api/v1/boards/leetcode/categories", "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Empty(t, decode[CategoryListResponse](t, rr).Items)
}

func TestRandomEntry(t *testing.T) {
	h := newTestRouter(t, &memUsers{}, nil)

	rr := do(t, h, http.MethodGet, "/api/v1/boards/problems/random?category=Graph", "")
	require.Equal(t, http.StatusOK, rr.Code)
	rec := decode[map[string]any](t, rr)
	assert.Equal(t, "Word Ladder", rec["title"])
	assert.Equal(t, "https://leetcode.com/problems/word-ladder", rec["problem_url"])

	rr = do(t, h, http.MethodGet, "/api/v1/boards/problems/random?category=Array&min=1400", "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "Sort Colors", decode[map[string]any](t, rr)["title"])

	rr = do(t, h, http.MethodGet, "/api/v1/boards/problems/random?category=Trie", "")
	require.Equal(t, http.StatusNotFound, rr.Code)
	assert.Equal(t, ErrorCodeEmptyBoard, decode[ErrorResponse](t, rr).Code)
}

func TestShirtEstimate(t *testing.T) {
	h := newTestRouter(t, &memUsers{}, nil)

	intp := func(v int) *int { return &v }
	tests := []struct {
		coins string
		want  *int
	}{
		{"6000", intp(0)},
		{"0", intp(11)},
		{"500", intp(10)},
		{"5999", intp(1)},
		{"-5", nil},
		{"NaN", nil},
	}
	for _, tt := range tests {
		t.Run(tt.coins, func(t *testing.T) {
			rr := do(t, h, http.MethodGet, "/api/v1/calculator/shirt?coins="+tt.coins, "")
			require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
			resp := decode[ShirtResponse](t, rr)
			assert.Equal(t, tt.want, resp.Months)
			assert.Equal(t, 6000.0, resp.Target)
			assert.Equal(t, 550.0, resp.PerMonth)
		})
	}

	for _, q := range []string{"", "?coins=", "?coins=lots", "?coins=1e400", "?coins=-Inf"} {
		rr := do(t, h, http.MethodGet, "/api/v1/calculator/shirt"+q, "")
		require.Equal(t, http.StatusOK, rr.Code, q)
		resp := decode[ShirtResponse](t, rr)
		assert.Nil(t, resp.Months, q)
		assert.Equal(t, 0.0, resp.Coins, q)
	}
}

func TestShirtEstimate_CustomCalculator(t *testing.T) {
	boards, snaps := fixtures(t)
	lbSvc, err := lbuc.New(boards, snaps, zap.NewNop())
	require.NoError(t, err)
	srv := NewServer(lbSvc, reguc.New(&memUsers{}, zap.NewNop()), healthuc.New(nil, nil), zap.NewNop()).
		WithCalculator(Calculator{Target: 1000, PerMonth: 100})

	rr := do(t, NewRouter(srv, zap.NewNop()), http.MethodGet, "/api/v1/calculator/shirt?coins=250", "")
	require.Equal(t, http.StatusOK, rr.Code)
	resp := decode[ShirtResponse](t, rr)
	require.NotNil(t, resp.Months)
	assert.Equal(t, 8, *resp.Months)
}

func TestRegister(t *testing.T) {
	users := &memUsers{}
	h := newTestRouter(t, users, nil)

	rr := do(t, h, http.MethodPost, "/api/v1/registrations",
		`{"leetcode_username":"alice","github_username":"alice-gh"}`)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	u := decode[User](t, rr)
	assert.Equal(t, "alice", u.DisplayName)
	assert.Len(t, u.ID, 36)
	require.Len(t, users.users, 1)

	rr = do(t, h, http.MethodPost, "/api/v1/registrations",
		`{"leetcode_username":"bob","github_username":"alice-gh"}`)
	require.Equal(t, http.StatusConflict, rr.Code)
	assert.Equal(t, ErrorCodeAlreadyRegistered, decode[ErrorResponse](t, rr).Code)

	rr = do(t, h, http.MethodPost, "/api/v1/registrations", `{"leetcode_username":"carol"}`)
	require.Equal(t, http.StatusBadRequest, rr.Code)
	e := decode[ErrorResponse](t, rr)
	assert.Equal(t, ErrorCodeValidationFailed, e.Code)
	require.NotNil(t, e.Field)
	assert.Equal(t, "github_username", *e.Field)

	rr = do(t, h, http.MethodPost, "/api/v1/registrations", `{not json`)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestRegister_Upstream(t *testing.T) {
	users := &memUsers{saveErr: fmt.Errorf("kv set: %w", domain.ErrUpstreamUnavailable)}
	h := newTestRouter(t, users, nil)

	rr := do(t, h, http.MethodPost, "/api/v1/registrations",
		`{"leetcode_username":"alice","github_username":"alice-gh"}`)
	require.Equal(t, http.StatusBadGateway, rr.Code)
	assert.Equal(t, ErrorCodeUpstreamError, decode[ErrorResponse](t, rr).Code)

	users.saveErr = errors.New("secret internals")
	rr = do(t, h, http.MethodPost, "/api/v1/registrations",
		`{"leetcode_username":"alice","github_username":"alice-gh"}`)
	require.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.NotContains(t, rr.Body.String(), "secret")
}

func TestHealthCheck(t *testing.T) {
	rr := do(t, newTestRouter(t, &memUsers{}, nil), http.MethodGet, "/health", "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "ok", decode[HealthResponse](t, rr).Status)

	rr = do(t, newTestRouter(t, &memUsers{}, healthuc.New(failingPinger{}, nil)), http.MethodGet, "/health", "")
	require.Equal(t, http.StatusServiceUnavailable, rr.Code)
	resp := decode[HealthResponse](t, rr)
	assert.Equal(t, "error", resp.Status)
	assert.Equal(t, "error", resp.Checks["database"])
}

func TestMetricsEndpoint(t *testing.T) {
	h := newTestRouter(t, &memUsers{}, nil)
	_ = do(t, h, http.MethodGet, "/api/v1/boards", "")

	rr := do(t, h, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `elodash_http_requests_total`)
}

func TestNotFoundRoute(t *testing.T) {
	rr := do(t, newTestRouter(t, &memUsers{}, nil), http.MethodGet, "/api/v2/boards", "")
	require.Equal(t, http.StatusNotFound, rr.Code)
	assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))
}

func TestJSONRecoverer(t *testing.T) {
	h := JSONRecoverer(zap.NewNop())(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", http.NoBody))

	require.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.Equal(t, ErrorCodeInternalError, decode[ErrorResponse](t, rr).Code)
}

func TestWideEvent_CarriesHandlerFields(t *testing.T) {
	boards, snaps := fixtures(t)
	lbSvc, err := lbuc.New(boards, snaps, zap.NewNop())
	require.NoError(t, err)
	core, logs := observer.New(zapcore.InfoLevel)
	srv := NewServer(lbSvc, reguc.New(&memUsers{}, zap.NewNop()), healthuc.New(nil, nil), zap.NewNop())
	h := NewRouter(srv, zap.New(core))

	rr := do(t, h, http.MethodGet, "/api/v1/boards/leetcode/entries?sort=elo", "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.NotEmpty(t, rr.Header().Get("X-Request-ID"))

	entries := logs.FilterMessage("http_request").All()
	require.Len(t, entries, 1)
	ctx := entries[0].ContextMap()
	assert.Equal(t, "/api/v1/boards/{board}/entries", ctx["route"])
	assert.Equal(t, "leetcode", ctx["board"])
	assert.Equal(t, "elo", ctx["sort"])
	assert.EqualValues(t, 4, ctx["total_items"])

	rr = do(t, h, http.MethodGet, "/api/v1/boards/chess/entries", "")
	require.Equal(t, http.StatusNotFound, rr.Code)
	entries = logs.FilterMessage("http_request").All()
	require.Len(t, entries, 2)
	assert.Contains(t, entries[1].ContextMap()["domain_error"], "board not found")
}
