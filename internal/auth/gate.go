// Package auth is the access gate: it signs callers in, issues session
// tokens and resolves a token back into a Session once per request.
package auth

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/okian/readiness/pkg/logger"
	"github.com/okian/readiness/pkg/metrics"
)

type account struct {
	id          string
	email       string
	hash        []byte
	companyName string
}

// Gate holds accounts and live sessions in memory.
type Gate struct {
	mu sync.Mutex

	mode       Mode
	ownerMode  OwnerMode
	signingKey []byte
	idle       time.Duration
	ttl        time.Duration
	bcryptCost int
	now        func() time.Time
	log        logger.Logger

	accounts map[string]*account // by lower-cased email
	secrets  map[string]string   // owner key -> secret
	sessions map[string]*Session // by session ID
}

// New builds a gate. A signing key is required in every mode.
func New(opts ...Option) (*Gate, error) {
	g := &Gate{
		mode:       ModeAccounts,
		ownerMode:  OwnerUser,
		idle:       DefaultIdleTimeout,
		ttl:        DefaultTokenTTL,
		bcryptCost: bcrypt.DefaultCost,
		now:        time.Now,
		log:        logger.Nop(),
		accounts:   make(map[string]*account),
		secrets:    map[string]string{},
		sessions:   make(map[string]*Session),
	}
	for _, opt := range opts {
		opt(g)
	}

	if len(g.signingKey) == 0 {
		return nil, ErrMissingSigningKey
	}
	switch g.mode {
	case ModeAccounts, ModeSharedSecret, ModeOpen:
	default:
		return nil, fmt.Errorf("%w: unknown mode %q", ErrModeUnsupported, g.mode)
	}
	switch g.ownerMode {
	case OwnerUser, OwnerCompany:
	default:
		return nil, fmt.Errorf("%w: unknown owner mode %q", ErrModeUnsupported, g.ownerMode)
	}
	return g, nil
}

// Mode returns the configured sign-in mode.
func (g *Gate) Mode() Mode { return g.mode }

// SignUp creates an account and signs it in.
func (g *Gate) SignUp(ctx context.Context, req SignUpRequest) (Session, string, error) {
	if g.mode != ModeAccounts {
		return Session{}, "", fmt.Errorf("%w: sign-up needs %q mode", ErrModeUnsupported, ModeAccounts)
	}
	email := strings.ToLower(strings.TrimSpace(req.Email))
	company := strings.TrimSpace(req.CompanyName)
	switch {
	case !strings.Contains(email, "@"):
		return Session{}, "", fmt.Errorf("%w: email", ErrInvalidAccount)
	case len(req.Password) < MinPasswordLength:
		return Session{}, "", fmt.Errorf("%w: password shorter than %d", ErrInvalidAccount, MinPasswordLength)
	case company == "":
		return Session{}, "", fmt.Errorf("%w: company name is required", ErrInvalidAccount)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), g.bcryptCost)
	if err != nil {
		return Session{}, "", fmt.Errorf("failed to hash password: %w", err)
	}

	g.mu.Lock()
	if _, ok := g.accounts[email]; ok {
		g.mu.Unlock()
		metrics.RecordAuthAttempt("signup", "exists")
		return Session{}, "", ErrAccountExists
	}
	acc := &account{id: uuid.NewString(), email: email, hash: hash, companyName: company}
	g.accounts[email] = acc
	g.mu.Unlock()

	metrics.RecordAuthAttempt("signup", "ok")
	g.log.Info(ctx, "account created", logger.String("account", acc.id))
	return g.issue(acc.identity(g.ownerMode), acc.email, acc.companyName)
}

// SignIn checks credentials according to the gate's mode and opens a session.
func (g *Gate) SignIn(ctx context.Context, cred Credentials) (Session, string, error) {
	method := string(g.mode)
	switch g.mode {
	case ModeOpen:
		metrics.RecordAuthAttempt(method, "ok")
		return g.issue(DemoIdentity, "", "")

	case ModeSharedSecret:
		g.mu.Lock()
		want, ok := g.secrets[cred.OwnerKey]
		g.mu.Unlock()
		if !ok || cred.OwnerKey == "" || want == "" || subtle.ConstantTimeCompare([]byte(want), []byte(cred.Secret)) != 1 {
			metrics.RecordAuthAttempt(method, "denied")
			return Session{}, "", ErrInvalidCredentials
		}
		metrics.RecordAuthAttempt(method, "ok")
		return g.issue(cred.OwnerKey, "", "")

	default:
		email := strings.ToLower(strings.TrimSpace(cred.Email))
		g.mu.Lock()
		acc, ok := g.accounts[email]
		g.mu.Unlock()
		if !ok || bcrypt.CompareHashAndPassword(acc.hash, []byte(cred.Password)) != nil {
			metrics.RecordAuthAttempt(method, "denied")
			g.log.Debug(ctx, "sign-in denied", logger.String("email", email))
			return Session{}, "", ErrInvalidCredentials
		}
		metrics.RecordAuthAttempt(method, "ok")
		return g.issue(acc.identity(g.ownerMode), acc.email, acc.companyName)
	}
}

// Resolve turns a token into a live session. This is the single idle check
// per request: an idle session is revoked and ErrSessionExpired returned,
// otherwise LastActivity is moved to now.
func (g *Gate) Resolve(ctx context.Context, token string) (Session, error) {
	id, err := g.parse(token)
	if err != nil {
		return Session{}, err
	}

	now := g.now()
	g.mu.Lock()
	defer g.mu.Unlock()

	sess, ok := g.sessions[id]
	if !ok {
		return Session{}, ErrSessionExpired
	}
	if now.Sub(sess.LastActivity) > g.idle {
		delete(g.sessions, id)
		metrics.UpdateActiveSessions(len(g.sessions))
		g.log.Debug(ctx, "session idle, revoked", logger.String("session", id))
		return Session{}, ErrSessionExpired
	}
	sess.LastActivity = now
	return *sess, nil
}

// SignOut revokes the session behind token. Unknown sessions are ignored.
func (g *Gate) SignOut(ctx context.Context, token string) error {
	id, err := g.parse(token)
	if err != nil && !errors.Is(err, ErrSessionExpired) {
		return err
	}
	g.mu.Lock()
	delete(g.sessions, id)
	n := len(g.sessions)
	g.mu.Unlock()

	metrics.UpdateActiveSessions(n)
	g.log.Debug(ctx, "signed out", logger.String("session", id))
	return nil
}

// Prune drops every idle session and returns how many were removed.
func (g *Gate) Prune(ctx context.Context) int {
	now := g.now()
	g.mu.Lock()
	removed := 0
	for id, s := range g.sessions {
		if now.Sub(s.LastActivity) > g.idle {
			delete(g.sessions, id)
			removed++
		}
	}
	n := len(g.sessions)
	g.mu.Unlock()

	metrics.UpdateActiveSessions(n)
	if removed > 0 {
		g.log.Debug(ctx, "pruned idle sessions", logger.Int("removed", removed), logger.Int("active", n))
	}
	return removed
}

// ActiveSessions returns the number of live sessions.
func (g *Gate) ActiveSessions() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.sessions)
}

func (a *account) identity(mode OwnerMode) string {
	if mode == OwnerCompany {
		return a.companyName
	}
	return a.id
}

func (g *Gate) issue(identity, email, company string) (Session, string, error) {
	now := g.now()
	sess := &Session{
		ID:            uuid.NewString(),
		Authenticated: true,
		Identity:      identity,
		Email:         email,
		CompanyName:   company,
		IssuedAt:      now,
		LastActivity:  now,
	}

	claims := jwt.RegisteredClaims{
		Subject:   identity,
		ID:        sess.ID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(g.ttl)),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(g.signingKey)
	if err != nil {
		return Session{}, "", fmt.Errorf("failed to sign token: %w", err)
	}

	g.mu.Lock()
	g.sessions[sess.ID] = sess
	n := len(g.sessions)
	g.mu.Unlock()
	metrics.UpdateActiveSessions(n)
	return *sess, token, nil
}

// parse validates the token and returns its session ID.
func (g *Gate) parse(token string) (string, error) {
	var claims jwt.RegisteredClaims
	_, err := jwt.ParseWithClaims(token, &claims, func(*jwt.Token) (interface{}, error) {
		return g.signingKey, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(g.now))
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return claims.ID, ErrSessionExpired
	case err != nil:
		return "", fmt.Errorf("%w: %w", ErrInvalidCredentials, err)
	case claims.ID == "":
		return "", fmt.Errorf("%w: token has no session", ErrInvalidCredentials)
	}
	return claims.ID, nil
}
