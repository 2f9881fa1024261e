package app

import (
	"context"
	"errors"
	"testing"

	"hireflow/internal/domain/application"
)

func score(v float64) *float64 { return &v }

func reviewApps() []application.Application {
	return []application.Application{
		{ID: 10, Name: "Ada", Score: score(91), Status: "pending"},
		{ID: 11, Name: "Linus", Score: score(72), Status: "in_review"},
		{ID: 12, Name: "Grace"},
	}
}

func TestReviewNormalizesAndFilters(t *testing.T) {
	review := NewApplicationReview(&fakeReviewAPI{apps: reviewApps()}, nil, 4, nil)
	review.Load(context.Background())

	if got := review.Filter(application.StatusReviewed); len(got) != 1 || got[0].ID != 11 {
		t.Fatalf("expected in_review normalized to reviewed, got %+v", got)
	}
	if got := review.Filter(application.StatusPending); len(got) != 2 {
		t.Fatalf("expected missing status treated as pending, got %+v", got)
	}
	stats := review.Stats()
	if stats.Total != 3 || stats.AverageScore != 81.5 {
		t.Fatalf("unexpected stats %+v", stats)
	}
}

func TestReviewUpdateStatusLastResolveWins(t *testing.T) {
	fake := &fakeReviewAPI{apps: reviewApps(), calls: make(chan statusCall)}
	review := NewApplicationReview(fake, nil, 4, nil)
	review.Load(context.Background())

	done := make(chan error, 2)
	go func() { done <- review.UpdateStatus(context.Background(), 10, "shortlisted") }()
	first := <-fake.calls
	go func() { done <- review.UpdateStatus(context.Background(), 10, "rejected") }()
	second := <-fake.calls

	second.reply <- nil
	if err := <-done; err != nil {
		t.Fatalf("second update: %v", err)
	}
	first.reply <- nil
	if err := <-done; err != nil {
		t.Fatalf("first update: %v", err)
	}

	if got := review.Filter("")[0].Status; got != application.StatusShortlisted {
		t.Fatalf("expected the last response to win, got %s", got)
	}
}

func TestReviewUpdateStatusFailureKeepsValue(t *testing.T) {
	fake := &fakeReviewAPI{apps: reviewApps(), calls: make(chan statusCall)}
	review := NewApplicationReview(fake, nil, 4, nil)
	review.Load(context.Background())

	done := make(chan error, 1)
	go func() { done <- review.UpdateStatus(context.Background(), 10, "accepted") }()
	call := <-fake.calls
	call.reply <- errors.New("boom")
	if err := <-done; err == nil {
		t.Fatalf("expected error")
	}
	if got := review.Filter("")[0].Status; got != application.StatusPending {
		t.Fatalf("expected status unchanged, got %s", got)
	}
}

func TestReviewRejectsUnknownStatus(t *testing.T) {
	review := NewApplicationReview(&fakeReviewAPI{apps: reviewApps()}, nil, 4, nil)
	review.Load(context.Background())
	if err := review.UpdateStatus(context.Background(), 10, "hired"); err == nil {
		t.Fatalf("expected validation error")
	}
}

func TestReviewAnalyze(t *testing.T) {
	analyzer := fakeAnalyzer{result: application.Analysis{Score: 88, Summary: "Strong Go background"}}
	review := NewApplicationReview(&fakeReviewAPI{apps: reviewApps()}, analyzer, 4, nil)
	review.Load(context.Background())

	result, err := review.Analyze(context.Background(), 12)
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	if result.Score != 88 {
		t.Fatalf("unexpected result %+v", result)
	}
	got := review.Filter("")[2]
	if got.ScoreValue() != 88 || got.AnalysisSummary != "Strong Go background" {
		t.Fatalf("expected analysis recorded, got %+v", got)
	}

	noEngine := NewApplicationReview(&fakeReviewAPI{}, nil, 4, nil)
	if _, err := noEngine.Analyze(context.Background(), 1); err == nil {
		t.Fatalf("expected error without an analyzer")
	}
}

func TestReviewUpdatesApplyAfterFailedReload(t *testing.T) {
	fake := &fakeReviewAPI{apps: reviewApps()}
	review := NewApplicationReview(fake, fakeAnalyzer{result: application.Analysis{Score: 64, Summary: "Junior profile"}}, 4, nil)
	review.Load(context.Background())
	fake.listErr = errors.New("dial tcp: connection refused")
	review.Load(context.Background())

	if err := review.UpdateStatus(context.Background(), 11, "accepted"); err != nil {
		t.Fatalf("update status: %v", err)
	}
	if _, err := review.Analyze(context.Background(), 12); err != nil {
		t.Fatalf("analyze: %v", err)
	}
	apps := review.Filter("")
	if apps[1].Status != application.StatusAccepted {
		t.Fatalf("expected status applied locally, got %s", apps[1].Status)
	}
	if apps[2].Score == nil || *apps[2].Score != 64 || apps[2].AnalysisSummary != "Junior profile" {
		t.Fatalf("expected analysis recorded locally, got %+v", apps[2])
	}
}
