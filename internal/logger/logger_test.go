package logger

import (
	"context"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestNewLogger_Environments(t *testing.T) {
	for _, env := range []string{"local", "dev", "docker", "prod"} {
		t.Run(env, func(t *testing.T) {
			l, err := NewLogger(env)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if l == nil {
				t.Fatal("expected logger")
			}
		})
	}
}

func TestNewLogger_UnknownEnv(t *testing.T) {
	if _, err := NewLogger("staging"); err == nil {
		t.Fatal("expected error for unknown env")
	}
}

func TestNewLogger_LevelOverride(t *testing.T) {
	l, err := NewLogger("prod", "warn")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if l.Core().Enabled(zapcore.InfoLevel) {
		t.Error("info must be disabled at warn level")
	}
	if !l.Core().Enabled(zapcore.WarnLevel) {
		t.Error("warn must be enabled")
	}

	if _, err := NewLogger("prod", "loud"); err == nil {
		t.Error("expected error for invalid level")
	}
}

func TestContext(t *testing.T) {
	if _, ok := Lookup(context.Background()); ok {
		t.Error("empty context must not carry a logger")
	}
	if FromContext(context.Background()) == nil {
		t.Error("FromContext must fall back to a no-op logger")
	}

	l := zap.NewExample()
	ctx := ContextWithLogger(context.Background(), l)
	got, ok := Lookup(ctx)
	if !ok || got != l {
		t.Error("Lookup must return the stored logger")
	}
	if FromContext(ctx) != l {
		t.Error("FromContext must return the stored logger")
	}
}

func TestAddFields_CollectsOnEvent(t *testing.T) {
	ctx, ev := ContextWithEvent(context.Background())
	AddFields(ctx, zap.String("board", "leetcode"))
	AddFields(ctx, zap.Int("total_items", 3), zap.String("sort", "elo"))

	got := ev.Fields()
	if len(got) != 3 {
		t.Fatalf("fields = %d, want 3", len(got))
	}
	if got[0].Key != "board" || got[0].String != "leetcode" {
		t.Errorf("first field = %+v", got[0])
	}

	got[0] = zap.String("mutated", "x")
	if ev.Fields()[0].Key != "board" {
		t.Error("Fields must return a copy")
	}
}

func TestAddFields_WithoutEvent(t *testing.T) {
	// must not panic
	AddFields(context.Background(), zap.String("board", "leetcode"))
}
