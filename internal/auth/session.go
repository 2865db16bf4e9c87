package auth

import "time"

// Mode selects how callers prove who they are.
type Mode string

// Supported modes.
const (
	ModeAccounts     Mode = "accounts"
	ModeSharedSecret Mode = "shared_secret"
	ModeOpen         Mode = "open"
)

// OwnerMode selects what an account's records are keyed by.
type OwnerMode string

// Supported owner modes.
const (
	OwnerUser    OwnerMode = "user"
	OwnerCompany OwnerMode = "company"
)

// DemoIdentity is the identity every open-mode session gets.
const DemoIdentity = "demo"

// Session is what the core receives about the caller. The core never
// inspects credentials, only Authenticated and Identity.
type Session struct {
	ID            string    `json:"id,omitempty"`
	Authenticated bool      `json:"authenticated"`
	Identity      string    `json:"identity,omitempty"`
	Email         string    `json:"email,omitempty"`
	CompanyName   string    `json:"company_name,omitempty"`
	IssuedAt      time.Time `json:"issued_at,omitempty"`
	LastActivity  time.Time `json:"last_activity,omitempty"`
}

// Anonymous is the session of a caller that has not signed in.
func Anonymous() Session { return Session{} }

// Credentials carries either an email/password pair or an owner key/secret pair.
type Credentials struct {
	Email    string `json:"email,omitempty"`
	Password string `json:"password,omitempty"`
	OwnerKey string `json:"owner_key,omitempty"`
	Secret   string `json:"secret,omitempty"`
}

// SignUpRequest registers an account.
type SignUpRequest struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	CompanyName string `json:"company_name"`
}
