package remote

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"hireflow/internal/common"
)

func TestLoadSuccessAndFailure(t *testing.T) {
	calls := 0
	res := New(func(ctx context.Context) ([]string, error) {
		calls++
		if calls == 2 {
			return nil, common.NewStatusError(http.StatusForbidden, "Access denied. Recruiters only.")
		}
		return []string{"a", "b"}, nil
	}, "Failed to load jobs.")

	if res.Snapshot().Phase != Idle {
		t.Fatalf("expected idle before first load")
	}
	state := res.Load(context.Background())
	if state.Phase != Ready || len(state.Data) != 2 {
		t.Fatalf("unexpected state %+v", state)
	}
	state = res.Load(context.Background())
	if state.Phase != Failed || state.Message != "Access denied. Recruiters only." {
		t.Fatalf("unexpected failed state %+v", state)
	}
	if len(state.Data) != 2 {
		t.Fatalf("expected previous data kept on failure")
	}
}

func TestFallbackMessage(t *testing.T) {
	res := New(func(ctx context.Context) (int, error) {
		return 0, errors.New("dial tcp: connection refused")
	}, "Failed to load applications.")
	if state := res.Load(context.Background()); state.Message != "Failed to load applications." {
		t.Fatalf("expected fallback, got %q", state.Message)
	}
}

func TestLastResolveWins(t *testing.T) {
	release := map[int]chan struct{}{1: make(chan struct{}), 2: make(chan struct{})}
	started := make(chan struct{}, 2)
	res := New(func(ctx context.Context) (int, error) {
		n := ctx.Value(callKey{}).(int)
		started <- struct{}{}
		<-release[n]
		return n, nil
	}, "")

	done := make(chan struct{}, 2)
	go func() { res.Load(context.WithValue(context.Background(), callKey{}, 1)); done <- struct{}{} }()
	go func() { res.Load(context.WithValue(context.Background(), callKey{}, 2)); done <- struct{}{} }()
	<-started
	<-started

	close(release[2])
	<-done
	close(release[1])
	<-done

	if got := res.Snapshot().Data; got != 1 {
		t.Fatalf("expected the later completion to win, got %d", got)
	}
	if res.Loading() {
		t.Fatalf("expected no loads in flight")
	}
}

type callKey struct{}

func TestCloseDropsLateCompletion(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{})
	res := New(func(ctx context.Context) (string, error) {
		close(started)
		<-release
		return "late", nil
	}, "")

	done := make(chan State[string], 1)
	go func() { done <- res.Load(context.Background()) }()
	<-started
	res.Close()
	close(release)
	state := <-done
	if state.Data != "" {
		t.Fatalf("expected late completion dropped, got %q", state.Data)
	}
	if res.Mutate(func(s string) string { return "x" }) {
		t.Fatalf("mutate after close must be a no-op")
	}
}

func TestMutate(t *testing.T) {
	res := New(func(ctx context.Context) ([]int, error) { return []int{1, 2, 3}, nil }, "")
	if res.Mutate(func(v []int) []int { return nil }) {
		t.Fatalf("mutate before load must be a no-op")
	}
	res.Load(context.Background())
	res.Mutate(func(v []int) []int { return v[1:] })
	if got := res.Snapshot().Data; len(got) != 2 || got[0] != 2 {
		t.Fatalf("unexpected data %v", got)
	}
}

func TestMutateAfterFailedReload(t *testing.T) {
	calls := 0
	res := New(func(ctx context.Context) ([]int, error) {
		calls++
		if calls > 1 {
			return nil, errors.New("connection reset")
		}
		return []int{1, 2, 3}, nil
	}, "Failed to load.")
	res.Load(context.Background())
	if state := res.Load(context.Background()); state.Phase != Failed || len(state.Data) != 3 {
		t.Fatalf("expected failed reload to keep data, got %+v", state)
	}
	if !res.Mutate(func(v []int) []int { return v[:1] }) {
		t.Fatalf("mutate must apply to data kept after a failed reload")
	}
	if got := res.Snapshot().Data; len(got) != 1 {
		t.Fatalf("unexpected data %v", got)
	}
}

func TestMutateDuringFirstLoad(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	res := New(func(ctx context.Context) ([]int, error) {
		close(started)
		<-release
		return []int{1}, nil
	}, "")
	done := make(chan State[[]int], 1)
	go func() { done <- res.Load(context.Background()) }()
	<-started
	if res.Mutate(func(v []int) []int { return append(v, 9) }) {
		t.Fatalf("mutate before any data is loaded must be a no-op")
	}
	close(release)
	if state := <-done; len(state.Data) != 1 {
		t.Fatalf("unexpected data %v", state.Data)
	}
}
