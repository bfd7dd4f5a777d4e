package scheduler

import (
	"context"
	"testing"
	"time"

	"likesbot/pkg/logx"
)

func TestNewValidatesConfig(t *testing.T) {
	t.Parallel()
	job := func(ctx context.Context) {}

	if _, err := New(Config{Timezone: "Mars/Olympus", DailyAt: "00:00"}, job, logx.Nop()); err == nil {
		t.Fatal("expected error for unknown timezone")
	}
	if _, err := New(Config{Timezone: "UTC", DailyAt: "25:61"}, job, logx.Nop()); err == nil {
		t.Fatal("expected error for invalid time")
	}

	s, err := New(Config{Timezone: "America/Sao_Paulo", DailyAt: "00:00"}, job, logx.Nop())
	if err != nil {
		t.Fatalf("New error: %v", err)
	}
	if s.spec != "0 0 * * *" {
		t.Fatalf("spec = %q", s.spec)
	}
}

func TestNextBeforeStartIsZero(t *testing.T) {
	t.Parallel()
	s, err := New(Config{Timezone: "UTC", DailyAt: "12:30"}, func(ctx context.Context) {}, logx.Nop())
	if err != nil {
		t.Fatal(err)
	}
	if !s.Next().IsZero() {
		t.Fatal("Next before Start should be zero")
	}
}

func TestNextAfterStart(t *testing.T) {
	t.Parallel()
	s, err := New(Config{Timezone: "UTC", DailyAt: "12:30"}, func(ctx context.Context) {}, logx.Nop())
	if err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := s.Start(ctx); err != nil {
		t.Fatalf("Start error: %v", err)
	}
	defer s.Stop(context.Background())

	next := s.Next()
	if next.IsZero() {
		t.Fatal("Next after Start is zero")
	}
	if next.Hour() != 12 || next.Minute() != 30 {
		t.Fatalf("next fire = %v, want 12:30 UTC", next)
	}
	if next.Before(time.Now().Add(-time.Minute)) {
		t.Fatalf("next fire in the past: %v", next)
	}
}
