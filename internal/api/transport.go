package api

import (
	"log/slog"
	"net/http"

	"golang.org/x/oauth2"

	"hireflow/internal/observability"
)

// authTransport attaches the current bearer token, if any, to every
// outgoing request.
type authTransport struct {
	base           http.RoundTripper
	tokens         TokenSource
	onUnauthorized UnauthorizedFunc
	logger         *slog.Logger
}

func (t *authTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	ctx, requestID := observability.EnsureRequestID(req.Context())
	out := req.Clone(ctx)
	out.Header.Set(observability.RequestIDHeader, requestID)

	token := ""
	if t.tokens != nil {
		token = t.tokens.Token(ctx)
	}
	if token != "" {
		(&oauth2.Token{AccessToken: token, TokenType: "Bearer"}).SetAuthHeader(out)
	} else {
		out.Header.Del("Authorization")
	}

	resp, err := t.base.RoundTrip(out)
	if err != nil {
		t.logger.Debug("api request failed", slog.String("method", out.Method), slog.String("path", out.URL.Path), slog.String("request_id", requestID), slog.String("error", err.Error()))
		return nil, err
	}
	t.logger.Debug("api request", slog.String("method", out.Method), slog.String("path", out.URL.Path), slog.Int("status", resp.StatusCode), slog.String("request_id", requestID), slog.Bool("authenticated", token != ""))
	if resp.StatusCode == http.StatusUnauthorized && token != "" && t.onUnauthorized != nil {
		t.onUnauthorized(ctx, token)
	}
	return resp, nil
}
