package auth

import (
	"strings"
	"time"
)

type Role string

const (
	RoleStudent   Role = "student"
	RoleRecruiter Role = "recruiter"
)

const (
	LoginPath     = "/auth/login"
	SignupPath    = "/auth/signup"
	RecruiterHome = "/dashboard/recruiter"
	StudentHome   = "/dashboard/student"
)

func ParseRole(value string) (Role, bool) {
	switch Role(strings.ToLower(strings.TrimSpace(value))) {
	case RoleStudent:
		return RoleStudent, true
	case RoleRecruiter:
		return RoleRecruiter, true
	default:
		return "", false
	}
}

// HomeFor returns the landing route of a role. Unknown roles land on login.
func HomeFor(role Role) string {
	switch role {
	case RoleRecruiter:
		return RecruiterHome
	case RoleStudent:
		return StudentHome
	default:
		return LoginPath
	}
}

// Session is the identity decoded from a bearer token.
type Session struct {
	Subject   string    `json:"subject"`
	Role      Role      `json:"role"`
	ExpiresAt time.Time `json:"expires_at"`
}

func (s Session) Valid(now time.Time) bool {
	return s.Subject != "" && s.Role != "" && now.Before(s.ExpiresAt)
}

// User is the denormalized user object kept next to the token.
type User struct {
	ID    string `json:"id,omitempty"`
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
	Role  Role   `json:"role,omitempty"`
}

// Credentials are the values returned by login and OTP verification.
type Credentials struct {
	AccessToken string `json:"access_token"`
	Role        Role   `json:"role,omitempty"`
	User        *User  `json:"user,omitempty"`
	Message     string `json:"message,omitempty"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     Role   `json:"role,omitempty"`
}

type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     Role   `json:"role"`
	Company  string `json:"company,omitempty"`
	Position string `json:"position,omitempty"`
	Phone    string `json:"phone,omitempty"`
}
