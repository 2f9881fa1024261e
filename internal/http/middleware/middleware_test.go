package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"

	"hireflow/internal/domain/auth"
	"hireflow/internal/guard"
	"hireflow/internal/http/metrics"
	"hireflow/internal/observability"
	"hireflow/internal/security/securitytest"
	"hireflow/internal/session"
	"hireflow/internal/storage"
)

func TestChainOrder(t *testing.T) {
	var order []string
	mark := func(name string) Middleware {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				order = append(order, name)
				next.ServeHTTP(w, r)
			})
		}
	}
	h := Chain(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		order = append(order, "handler")
	}), mark("outer"), nil, mark("inner"))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	want := []string{"outer", "inner", "handler"}
	if len(order) != len(want) {
		t.Fatalf("unexpected order %v", order)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("unexpected order %v", order)
		}
	}
}

func TestRequestIDKeepsIncomingHeader(t *testing.T) {
	var seen string
	h := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = observability.RequestIDFromContext(r.Context())
	}))
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(observability.RequestIDHeader, "req-1")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if seen != "req-1" || rec.Header().Get(observability.RequestIDHeader) != "req-1" {
		t.Fatalf("expected request id propagated, got %q", seen)
	}
}

func TestRecoverAnswers500(t *testing.T) {
	h := Recover(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
}

func TestLoginThrottleWindow(t *testing.T) {
	ctx := context.Background()
	now := time.Unix(1_700_000_000, 0)
	throttle := NewLoginThrottle()
	throttle.now = func() time.Time { return now }

	for i := 0; i < 2; i++ {
		if !throttle.Take(ctx, "k", 2, time.Minute).Allowed {
			t.Fatalf("attempt %d should pass", i+1)
		}
	}
	now = now.Add(20 * time.Second)
	verdict := throttle.Take(ctx, "k", 2, time.Minute)
	if verdict.Allowed || verdict.RetryAfter != 40*time.Second {
		t.Fatalf("expected throttled with 40s left, got %+v", verdict)
	}
	if !throttle.Take(ctx, "other", 2, time.Minute).Allowed {
		t.Fatalf("keys are independent")
	}
	now = now.Add(time.Minute)
	if !throttle.Take(ctx, "k", 2, time.Minute).Allowed {
		t.Fatalf("window should have reset")
	}
	if len(throttle.windows) != 1 {
		t.Fatalf("expired windows should be swept, have %d", len(throttle.windows))
	}
}

func TestRateLimitMiddleware(t *testing.T) {
	collector := metrics.NewCollector()
	h := RateLimit(NewLoginThrottle(), collector, func(r *http.Request) string { return ClientIP(r) }, 1, 30*time.Second)(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusNoContent) }),
	)
	req := httptest.NewRequest(http.MethodPost, "/auth/login", nil)
	req.Header.Set("X-Forwarded-For", "203.0.113.7, 10.0.0.1")

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("first attempt should pass, got %d", rec.Code)
	}
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusTooManyRequests || rec.Header().Get("Retry-After") != "30" {
		t.Fatalf("expected 429 with Retry-After, got %d %q", rec.Code, rec.Header().Get("Retry-After"))
	}
	if collector.Snapshot().RateLimited != 1 {
		t.Fatalf("expected throttled attempt counted")
	}
}

func TestClientIP(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "192.0.2.1:4321"
	if got := ClientIP(req); got != "192.0.2.1" {
		t.Fatalf("unexpected ip %q", got)
	}
	req.Header.Set("X-Forwarded-For", " 198.51.100.2 ,10.0.0.1")
	if got := ClientIP(req); got != "198.51.100.2" {
		t.Fatalf("unexpected forwarded ip %q", got)
	}
}

func TestSharedLoginThrottleFailsOpen(t *testing.T) {
	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1", DialTimeout: 50 * time.Millisecond, MaxRetries: -1})
	defer client.Close()
	throttle := NewSharedLoginThrottle(client, "hireflow:login", nil)
	verdict := throttle.Take(context.Background(), "ip:1", 1, time.Minute)
	if !verdict.Allowed {
		t.Fatalf("expected fail open when redis is unreachable")
	}
	var missing *SharedLoginThrottle
	if !missing.Take(context.Background(), "k", 1, time.Minute).Allowed {
		t.Fatalf("nil throttle must allow")
	}
}

func guarded(t *testing.T, svc *session.Service, collector *metrics.Collector, roles ...auth.Role) *httptest.ResponseRecorder {
	t.Helper()
	h := Guard(guard.NewGate(svc, roles...), collector)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		decision, ok := guard.DecisionFromContext(r.Context())
		if !ok || decision.Phase != guard.Authorized {
			t.Errorf("expected authorized decision in context")
		}
		_, _ = w.Write([]byte("view"))
	}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/dashboard/recruiter", nil))
	return rec
}

func TestGuardPhases(t *testing.T) {
	collector := metrics.NewCollector()
	store := storage.NewMemoryStore()
	svc := session.NewService(store, session.Options{})

	rec := guarded(t, svc, collector, auth.RoleRecruiter)
	if rec.Code != http.StatusServiceUnavailable || rec.Header().Get("Retry-After") != "1" {
		t.Fatalf("expected loading while resolving, got %d", rec.Code)
	}
	if rec.Header().Get("Location") != "" {
		t.Fatalf("no redirect may happen while resolving")
	}

	svc.Bootstrap(context.Background())
	rec = guarded(t, svc, collector, auth.RoleRecruiter)
	if rec.Code != http.StatusSeeOther || rec.Header().Get("Location") != auth.LoginPath || rec.Body.Len() != 0 {
		t.Fatalf("expected empty redirect to login, got %d %q", rec.Code, rec.Body.String())
	}

	if _, err := svc.Establish(context.Background(), securitytest.Mint("9", "student", time.Now().Add(time.Hour)), nil); err != nil {
		t.Fatalf("establish: %v", err)
	}
	rec = guarded(t, svc, collector, auth.RoleRecruiter)
	if rec.Code != http.StatusSeeOther || rec.Header().Get("Location") != auth.StudentHome {
		t.Fatalf("expected redirect to student home, got %d %q", rec.Code, rec.Header().Get("Location"))
	}
	rec = guarded(t, svc, collector, auth.RoleStudent)
	if rec.Code != http.StatusOK || rec.Body.String() != "view" {
		t.Fatalf("expected view rendered, got %d", rec.Code)
	}

	snap := collector.Snapshot()
	if snap.Loading != 1 || snap.Redirects != 2 {
		t.Fatalf("unexpected counters %+v", snap)
	}
}
