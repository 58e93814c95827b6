package snapshot

import (
	"context"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/kailas-cloud/elodash/internal/domain/record"
	"github.com/kailas-cloud/elodash/internal/metrics"
)

func TestRepo_Load(t *testing.T) {
	loader := &mockLoader{data: []byte(`[{"name":"A","elo":1500},{"name":"B","elo":1700},{"bogus":true}]`)}
	b := mustBoard(t, "repo-ok", record.KindLeetCode, kvSource(t, "leetcode:data"))

	recs := New(loader, zap.NewNop()).Load(context.Background(), b)
	require.Len(t, recs, 2)
	assert.Equal(t, "A", recs[0].Key())

	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.SnapshotFetchTotal.WithLabelValues("repo-ok", "ok")))
	assert.Equal(t, 2.0, testutil.ToFloat64(metrics.SnapshotRecords.WithLabelValues("repo-ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.SnapshotDroppedTotal.WithLabelValues("repo-ok")))
}

func TestRepo_LoadFailureIsEmpty(t *testing.T) {
	tests := []struct {
		name   string
		loader *mockLoader
	}{
		{"transport", &mockLoader{err: errors.New("dial tcp: refused")}},
		{"parse", &mockLoader{data: []byte(`{"value":"oops"}`)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			boardName := "repo-fail-" + tt.name
			b := mustBoard(t, boardName, record.KindGitHub, kvSource(t, "github:data"))

			recs := New(tt.loader, zap.NewNop()).Load(context.Background(), b)
			assert.NotNil(t, recs)
			assert.Empty(t, recs)
			assert.Equal(t, 1.0, testutil.ToFloat64(metrics.SnapshotFetchTotal.WithLabelValues(boardName, "error")))
		})
	}
}
