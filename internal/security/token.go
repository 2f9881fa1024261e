package security

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"hireflow/internal/domain/auth"
)

var (
	ErrMalformedToken = errors.New("malformed token")
	ErrMissingExpiry  = errors.New("token has no expiry")
	ErrMissingSubject = errors.New("token has no subject")
	ErrUnknownRole    = errors.New("token role is not recognised")
)

// Subject accepts both string and numeric "sub" claims.
type Subject string

func (s *Subject) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || string(data) == "null" {
		*s = ""
		return nil
	}
	if data[0] == '"' {
		var value string
		if err := json.Unmarshal(data, &value); err != nil {
			return err
		}
		*s = Subject(value)
		return nil
	}
	var number json.Number
	if err := json.Unmarshal(data, &number); err != nil {
		return err
	}
	*s = Subject(number.String())
	return nil
}

type Claims struct {
	Sub  Subject  `json:"sub"`
	Role string   `json:"role"`
	Exp  *float64 `json:"exp"`
	Iat  float64  `json:"iat,omitempty"`
	Type string   `json:"type,omitempty"`
}

// Decode reads the claims of a JWT without checking its signature. The
// backend owns the key, the client only needs the identity and the expiry.
func Decode(token string) (Claims, error) {
	parts := strings.Split(strings.TrimSpace(token), ".")
	if len(parts) != 3 || parts[1] == "" {
		return Claims{}, ErrMalformedToken
	}
	payload, err := base64.RawURLEncoding.DecodeString(strings.TrimRight(parts[1], "="))
	if err != nil {
		return Claims{}, ErrMalformedToken
	}
	var claims Claims
	if err := json.Unmarshal(payload, &claims); err != nil {
		return Claims{}, ErrMalformedToken
	}
	return claims, nil
}

func (c Claims) ExpiresAt() (time.Time, bool) {
	if c.Exp == nil {
		return time.Time{}, false
	}
	seconds := int64(*c.Exp)
	nanos := int64((*c.Exp - float64(seconds)) * float64(time.Second))
	return time.Unix(seconds, nanos).UTC(), true
}

// Session converts claims to an identity. It does not look at the clock.
func (c Claims) Session() (auth.Session, error) {
	expiresAt, ok := c.ExpiresAt()
	if !ok {
		return auth.Session{}, ErrMissingExpiry
	}
	subject := strings.TrimSpace(string(c.Sub))
	if subject == "" {
		return auth.Session{}, ErrMissingSubject
	}
	role, ok := auth.ParseRole(c.Role)
	if !ok {
		return auth.Session{}, ErrUnknownRole
	}
	return auth.Session{Subject: subject, Role: role, ExpiresAt: expiresAt}, nil
}

// SessionFromToken decodes token and returns its identity.
func SessionFromToken(token string) (auth.Session, error) {
	claims, err := Decode(token)
	if err != nil {
		return auth.Session{}, err
	}
	return claims.Session()
}

