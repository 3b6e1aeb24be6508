package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/skillpath/interview-engine/internal/models"
)

func newTestCache(t *testing.T) (*SummaryCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewWithClient(client, time.Minute), mr
}

func TestSummaryRoundTrip(t *testing.T) {
	c, _ := newTestCache(t)
	ctx := context.Background()

	mean := 4.5
	summary := &models.SessionSummary{
		SessionID:  "session-1",
		Count:      2,
		MeanRating: &mean,
		Records:    []*models.InterviewFeedback{},
	}
	if err := c.SetSessionSummary(ctx, summary); err != nil {
		t.Fatalf("set failed: %v", err)
	}

	got, err := c.GetSessionSummary(ctx, "session-1")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if got == nil {
		t.Fatal("expected a hit")
	}
	if got.Count != 2 || got.MeanRating == nil || *got.MeanRating != 4.5 {
		t.Errorf("unexpected summary: %+v", got)
	}
}

func TestSummaryMiss(t *testing.T) {
	c, _ := newTestCache(t)

	got, err := c.GetSessionSummary(context.Background(), "nope")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if got != nil {
		t.Errorf("expected miss, got %+v", got)
	}
}

func TestInvalidateSession(t *testing.T) {
	c, _ := newTestCache(t)
	ctx := context.Background()

	summary := &models.SessionSummary{SessionID: "session-1"}
	if err := c.SetSessionSummary(ctx, summary); err != nil {
		t.Fatalf("set failed: %v", err)
	}
	if err := c.InvalidateSession(ctx, "session-1"); err != nil {
		t.Fatalf("invalidate failed: %v", err)
	}

	got, err := c.GetSessionSummary(ctx, "session-1")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if got != nil {
		t.Error("expected miss after invalidation")
	}
}

func TestSummaryExpires(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()

	if err := c.SetSessionSummary(ctx, &models.SessionSummary{SessionID: "session-1"}); err != nil {
		t.Fatalf("set failed: %v", err)
	}
	mr.FastForward(2 * time.Minute)

	got, err := c.GetSessionSummary(ctx, "session-1")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if got != nil {
		t.Error("expected entry to expire")
	}
}

func TestCorruptEntryTreatedAsMiss(t *testing.T) {
	c, mr := newTestCache(t)

	mr.Set("interview:summary:session-1", "{not json")
	got, err := c.GetSessionSummary(context.Background(), "session-1")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if got != nil {
		t.Error("expected corrupt entry to read as a miss")
	}
}
