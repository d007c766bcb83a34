package service

import (
	"context"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/leetcurve/backend/internal/domain"
)

func TestRefresherKeepsLatestSummary(t *testing.T) {
	f := newFixture(t)
	f.ingest(t, domain.SubmissionEvent{Slug: "a"})
	f.ingest(t, domain.SubmissionEvent{Slug: "b"})

	r := NewRefresher(f.svc, time.Hour, zap.NewNop())
	if got := r.Refresh(context.Background()); got.Total != 2 || got.Due != 0 {
		t.Errorf("first refresh = %+v", got)
	}

	f.advance(25 * time.Hour)
	r.Refresh(context.Background())
	if got := r.Latest(); got.Due != 2 {
		t.Errorf("Latest().Due = %d, want 2", got.Due)
	}
}

func TestRefresherFollowsChanges(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	r := NewRefresher(f.svc, time.Hour, zap.NewNop())
	r.Refresh(ctx)

	f.ingest(t, domain.SubmissionEvent{Slug: "two-sum"})
	if got := r.Latest(); got.Total != 1 {
		t.Fatalf("after ingest = %+v, want total 1", got)
	}

	f.ingest(t, domain.SubmissionEvent{Slug: "3sum"})
	f.store.PutProblem(ctx, &domain.Problem{Slug: "old", LastReviewTime: t0.Add(-48 * time.Hour).UnixMilli()})
	if _, err := f.svc.ResetProblem(ctx, "two-sum"); err != nil {
		t.Fatalf("ResetProblem: %v", err)
	}
	if got := r.Latest(); got.Total != 3 || got.Due != 1 {
		t.Errorf("after reset = %+v, want total 3 due 1", got)
	}

	if _, err := f.svc.SaveSettings(ctx, &domain.Settings{TagWeights: map[string]float64{"DP": 2}}); err != nil {
		t.Fatalf("SaveSettings: %v", err)
	}
	if err := f.svc.DeleteProblem(ctx, "old"); err != nil {
		t.Fatalf("DeleteProblem: %v", err)
	}
	if got := r.Latest(); got.Total != 2 || got.Due != 0 {
		t.Errorf("after delete = %+v, want total 2 due 0", got)
	}

	_, err := f.svc.ImportData(ctx, &domain.Snapshot{Problems: map[string]domain.Problem{
		"m": {Slug: "m", Stage: domain.MasteredStage, FirstAcceptedTime: 1, LastReviewTime: 1},
	}})
	if err != nil {
		t.Fatalf("ImportData: %v", err)
	}
	if got := r.Latest(); got.Total != 1 || got.Mastered != 1 {
		t.Errorf("after import = %+v, want total 1 mastered 1", got)
	}

	if err := f.svc.ClearAllData(ctx); err != nil {
		t.Fatalf("ClearAllData: %v", err)
	}
	if got := r.Latest(); got != (domain.QueueSummary{}) {
		t.Errorf("after clear = %+v, want zero counts", got)
	}
}

func TestRefresherRunWithNonPositiveInterval(t *testing.T) {
	f := newFixture(t)
	r := NewRefresher(f.svc, 0, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	r.Run(ctx)
	if r.interval != DefaultRefreshInterval {
		t.Errorf("interval = %v, want %v", r.interval, DefaultRefreshInterval)
	}
}

func TestRefresherRunStopsWithContext(t *testing.T) {
	f := newFixture(t)
	r := NewRefresher(f.svc, time.Millisecond, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		r.Run(ctx)
		close(done)
	}()

	time.Sleep(10 * time.Millisecond)
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancel")
	}
}
