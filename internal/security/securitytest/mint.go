// Package securitytest signs tokens shaped like the ones the job board API
// issues.
package securitytest

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"time"
)

const secret = "hireflow-test-secret"

type TokenClaims struct {
	Sub  any    `json:"sub,omitempty"`
	Role string `json:"role,omitempty"`
	Exp  int64  `json:"exp,omitempty"`
	Iat  int64  `json:"iat,omitempty"`
	Type string `json:"type,omitempty"`
}

// Mint returns an access token for subject and role that expires at exp.
func Mint(subject, role string, exp time.Time) string {
	return MintClaims(TokenClaims{
		Sub:  subject,
		Role: role,
		Exp:  exp.Unix(),
		Iat:  exp.Add(-time.Hour).Unix(),
		Type: "access",
	})
}

func MintClaims(claims TokenClaims) string {
	header := map[string]string{"alg": "HS256", "typ": "JWT"}
	headerJSON, err := json.Marshal(header)
	if err != nil {
		panic(err)
	}
	payloadJSON, err := json.Marshal(claims)
	if err != nil {
		panic(err)
	}
	signingInput := base64.RawURLEncoding.EncodeToString(headerJSON) + "." + base64.RawURLEncoding.EncodeToString(payloadJSON)
	h := hmac.New(sha256.New, []byte(secret))
	h.Write([]byte(signingInput))
	return signingInput + "." + base64.RawURLEncoding.EncodeToString(h.Sum(nil))
}
