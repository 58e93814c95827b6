package leaderboard

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/kailas-cloud/elodash/internal/domain"
	"github.com/kailas-cloud/elodash/internal/domain/board"
	"github.com/kailas-cloud/elodash/internal/domain/metric"
	"github.com/kailas-cloud/elodash/internal/domain/record"
)

// --- Mocks ---

type mockSnapshots struct {
	mu      sync.Mutex
	records map[string][]record.Record
	loads   map[string]int
}

func (m *mockSnapshots) Load(_ context.Context, b board.Board) []record.Record {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.loads == nil {
		m.loads = map[string]int{}
	}
	m.loads[b.Name()]++
	if r, ok := m.records[b.Name()]; ok {
		return r
	}
	return []record.Record{}
}

type mockInvalidator struct {
	names []string
	err   error
}

func (m *mockInvalidator) Invalidate(_ context.Context, name string) error {
	m.names = append(m.names, name)
	return m.err
}

// --- Fixtures ---

func f(v float64) *float64 { return &v }

func mustBoard(t *testing.T, name string, kind record.Kind, key string) board.Board {
	t.Helper()
	src, err := board.NewSource(board.SourceKV, "", key)
	require.NoError(t, err)
	b, err := board.New(name, kind, src)
	require.NoError(t, err)
	return b
}

func lc(t *testing.T, name string, elo, prev, delta *float64) record.Record {
	t.Helper()
	r, err := record.NewLeetCode(name, elo, prev, delta, nil)
	require.NoError(t, err)
	return r
}

func prob(t *testing.T, title string, rating float64, topics ...string) record.Record {
	t.Helper()
	r, err := record.NewProblem(record.ProblemParams{Title: title, Rating: &rating, Topics: topics})
	require.NoError(t, err)
	return r
}

func newService(t *testing.T) (*Service, *mockSnapshots) {
	t.Helper()
	snaps := &mockSnapshots{records: map[string][]record.Record{
		"leetcode": {
			lc(t, "A", f(1500), f(1500), f(3)),
			lc(t, "B", f(1700), f(1650), f(9)),
			lc(t, "C", f(1700), nil, f(9)),
			lc(t, "D", f(1800), f(1810), f(1)),
			lc(t, "E", nil, nil, nil),
		},
		"problems": {
			prob(t, "Two Sum", 1200, "Array", "Hash Table"),
			prob(t, "Word Ladder", 2100, "Graph"),
			prob(t, "Course Schedule", 1900, "Graph"),
		},
	}}
	boards := []board.Board{
		mustBoard(t, "leetcode", record.KindLeetCode, "leetcode:data"),
		mustBoard(t, "github", record.KindGitHub, "github:data"),
		mustBoard(t, "problems", record.KindProblem, "problems:data"),
	}
	svc, err := New(boards, snaps, zap.NewNop())
	require.NoError(t, err)
	return svc, snaps
}

func names(entries []Entry) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.Record.Key()
	}
	return out
}

// --- Tests ---

func TestNew_DuplicateBoard(t *testing.T) {
	b := mustBoard(t, "leetcode", record.KindLeetCode, "k")
	_, err := New([]board.Board{b, b}, &mockSnapshots{}, zap.NewNop())
	require.Error(t, err)
}

func TestQuery_DefaultSort(t *testing.T) {
	svc, _ := newService(t)

	res, err := svc.Query(context.Background(), Query{Board: "leetcode"})
	require.NoError(t, err)
	assert.Equal(t, record.FieldProblemDelta, res.Sort)
	assert.Equal(t, []string{"B", "C", "A", "D", "E"}, names(res.Entries))
	assert.Equal(t, 1, res.Entries[0].Rank)
	assert.Equal(t, 5, res.Page.TotalItems)
	assert.Equal(t, 1, res.Page.TotalPages)
	assert.Equal(t, DefaultPageSize, res.Page.Size)
}

func TestQuery_SortByEloWithMin(t *testing.T) {
	svc, _ := newService(t)

	res, err := svc.Query(context.Background(), Query{Board: "leetcode", Sort: record.FieldElo, Min: f(1600)})
	require.NoError(t, err)
	assert.Equal(t, []string{"D", "B", "C"}, names(res.Entries))
}

func TestQuery_TextSearch(t *testing.T) {
	svc, _ := newService(t)

	res, err := svc.Query(context.Background(), Query{Board: "problems", Text: "SUM"})
	require.NoError(t, err)
	assert.Equal(t, []string{"Two Sum"}, names(res.Entries))
}

func TestQuery_Category(t *testing.T) {
	svc, _ := newService(t)

	res, err := svc.Query(context.Background(), Query{Board: "problems", Category: "Graph"})
	require.NoError(t, err)
	assert.Equal(t, []string{"Word Ladder", "Course Schedule"}, names(res.Entries))
}

func TestQuery_PaginationRanks(t *testing.T) {
	svc, _ := newService(t)

	res, err := svc.Query(context.Background(), Query{Board: "leetcode", Sort: record.FieldElo, Page: 2, PageSize: 2})
	require.NoError(t, err)
	assert.Equal(t, []string{"C", "A"}, names(res.Entries))
	assert.Equal(t, 3, res.Entries[0].Rank)
	assert.Equal(t, 4, res.Entries[1].Rank)
	assert.Equal(t, 3, res.Page.TotalPages)

	res, err = svc.Query(context.Background(), Query{Board: "leetcode", Page: 99, PageSize: 2})
	require.NoError(t, err)
	assert.Equal(t, 3, res.Page.Index, "page clamps to the last page")
	assert.Len(t, res.Entries, 1)
}

func TestQuery_PageSizeLimits(t *testing.T) {
	svc, _ := newService(t)
	svc.WithPagination(2, 3)

	res, err := svc.Query(context.Background(), Query{Board: "leetcode"})
	require.NoError(t, err)
	assert.Equal(t, 2, res.Page.Size)

	res, err = svc.Query(context.Background(), Query{Board: "leetcode", PageSize: 50})
	require.NoError(t, err)
	assert.Equal(t, 3, res.Page.Size)
}

func TestQuery_EmptyBoard(t *testing.T) {
	svc, _ := newService(t)

	res, err := svc.Query(context.Background(), Query{Board: "github", Page: 3})
	require.NoError(t, err)
	assert.Empty(t, res.Entries)
	assert.Equal(t, 1, res.Page.TotalPages)
	assert.Equal(t, 1, res.Page.Index)
}

func TestQuery_Errors(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	_, err := svc.Query(ctx, Query{Board: "chess"})
	assert.ErrorIs(t, err, domain.ErrBoardNotFound)

	_, err = svc.Query(ctx, Query{Board: "leetcode", Sort: record.FieldName})
	assert.ErrorIs(t, err, domain.ErrInvalidSortKey)

	_, err = svc.Query(ctx, Query{Board: "leetcode", RangeField: record.FieldRating, Min: f(1)})
	assert.ErrorIs(t, err, domain.ErrInvalidCriteria)

	_, err = svc.Query(ctx, Query{Board: "leetcode", Category: "Graph"})
	assert.ErrorIs(t, err, domain.ErrInvalidCriteria)
}

func TestQuery_Change(t *testing.T) {
	svc, _ := newService(t)

	res, err := svc.Query(context.Background(), Query{Board: "leetcode", Sort: record.FieldElo})
	require.NoError(t, err)

	byName := map[string]Entry{}
	for _, e := range res.Entries {
		byName[e.Record.Key()] = e
	}
	require.NotNil(t, byName["B"].Change)
	assert.Equal(t, metric.TrendIncrease, byName["B"].Change.Trend())
	assert.Equal(t, 50.0, byName["B"].Change.Value())
	assert.Equal(t, metric.TrendDecrease, byName["D"].Change.Trend())
	assert.Equal(t, metric.TrendUnchanged, byName["A"].Change.Trend())
	assert.Nil(t, byName["C"].Change, "no previous rating")
}

func TestChange_GitHub(t *testing.T) {
	withDelta, err := record.NewGitHub(record.GitHubParams{Username: "a", PrevContributions: f(10), Delta: f(-4)})
	require.NoError(t, err)
	computed, err := record.NewGitHub(record.GitHubParams{Username: "b", PrevContributions: f(10), Contributions: f(15)})
	require.NoError(t, err)
	firstRun, err := record.NewGitHub(record.GitHubParams{Username: "c", Contributions: f(15), Delta: f(15)})
	require.NoError(t, err)

	c := change(withDelta)
	require.NotNil(t, c)
	assert.Equal(t, metric.TrendDecrease, c.Trend())

	c = change(computed)
	require.NotNil(t, c)
	assert.Equal(t, 5.0, c.Value())

	assert.Nil(t, change(firstRun))
}

func TestCategories(t *testing.T) {
	svc, _ := newService(t)

	got, err := svc.Categories(context.Background(), "problems")
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, "Array", got[0].Name)
	assert.Equal(t, "Graph", got[1].Name)
	assert.Equal(t, 2, got[1].Count)

	got, err = svc.Categories(context.Background(), "leetcode")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestRandom(t *testing.T) {
	svc, _ := newService(t)
	svc.intN = func(n int) int { return n - 1 }

	r, err := svc.Random(context.Background(), Query{Board: "problems", Category: "Graph"})
	require.NoError(t, err)
	assert.Equal(t, "Course Schedule", r.Key())

	_, err = svc.Random(context.Background(), Query{Board: "problems", Category: "Trie"})
	assert.ErrorIs(t, err, domain.ErrEmptyBoard)

	_, err = svc.Random(context.Background(), Query{Board: "github"})
	assert.ErrorIs(t, err, domain.ErrEmptyBoard)

	r, err = svc.Random(context.Background(), Query{Board: "problems", Min: f(2000)})
	require.NoError(t, err)
	assert.Equal(t, "Word Ladder", r.Key())

	_, err = svc.Random(context.Background(), Query{Board: "nope"})
	assert.ErrorIs(t, err, domain.ErrBoardNotFound)
}

func TestWarm(t *testing.T) {
	svc, snaps := newService(t)

	require.NoError(t, svc.Warm(context.Background()))
	assert.Equal(t, map[string]int{"leetcode": 1, "github": 1, "problems": 1}, snaps.loads)
}

func TestWarm_Canceled(t *testing.T) {
	svc, _ := newService(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.ErrorIs(t, svc.Warm(ctx), context.Canceled)
}

func TestReplaceBoards(t *testing.T) {
	svc, _ := newService(t)
	inv := &mockInvalidator{err: errors.New("redis down")}
	svc.WithCacheInvalidator(inv)

	next := []board.Board{
		mustBoard(t, "leetcode", record.KindLeetCode, "leetcode:data"),
		mustBoard(t, "github", record.KindGitHub, "github:v2"),
		mustBoard(t, "contests", record.KindProblem, "contests:data"),
	}
	require.NoError(t, svc.ReplaceBoards(context.Background(), next))

	assert.ElementsMatch(t, []string{"github", "problems"}, inv.names)
	got := svc.Boards()
	require.Len(t, got, 3)
	assert.Equal(t, "contests", got[2].Name())

	_, err := svc.Board("problems")
	assert.ErrorIs(t, err, domain.ErrBoardNotFound)
}

func TestReplaceBoards_DuplicateKeepsOld(t *testing.T) {
	svc, _ := newService(t)
	b := mustBoard(t, "x", record.KindGitHub, "k")

	require.Error(t, svc.ReplaceBoards(context.Background(), []board.Board{b, b}))
	assert.Len(t, svc.Boards(), 3)
}
