package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Role is the dashboard role carried by the upstream token
type Role string

const (
	RoleAdmin  Role = "admin"
	RoleOwner  Role = "owner"
	RoleMember Role = "member"
	RoleViewer Role = "viewer"
)

var (
	ErrEmptyToken   = errors.New("session token is empty")
	ErrTokenExpired = errors.New("session token has expired")
)

// Session is the per-user state that used to live in browser storage.
// It is created when a token is set and torn down on logout.
type Session struct {
	ID             string     `json:"id"`
	Token          string     `json:"-"`
	UserID         string     `json:"user_id,omitempty"`
	OrganizationID string     `json:"organization_id,omitempty"`
	Role           Role       `json:"role"`
	StartedAt      time.Time  `json:"started_at"`
	ExpiresAt      *time.Time `json:"expires_at,omitempty"`
}

// Expired reports whether the token expiry has passed
func (s *Session) Expired(now time.Time) bool {
	return s.ExpiresAt != nil && now.After(*s.ExpiresAt)
}

// DefaultIdleTTL is used when the manager is created without an idle TTL
const DefaultIdleTTL = 8 * time.Hour

// Manager keeps live sessions keyed by session id. Sessions unused for
// longer than the idle TTL are evicted by a background sweep.
type Manager struct {
	sessions map[string]*entry
	idleTTL  time.Duration
	mu       sync.RWMutex
	logger   *zap.Logger
	now      func() time.Time

	cleanup *time.Ticker
	done    chan struct{}
	once    sync.Once
}

type entry struct {
	session  *Session
	lastSeen time.Time
}

// NewManager creates a new session manager and starts its cleanup loop
func NewManager(idleTTL time.Duration, logger *zap.Logger) *Manager {
	if idleTTL <= 0 {
		idleTTL = DefaultIdleTTL
	}
	cleanupInterval := idleTTL / 4
	if cleanupInterval > 5*time.Minute {
		cleanupInterval = 5 * time.Minute
	}
	if cleanupInterval < time.Second {
		cleanupInterval = time.Second
	}

	m := &Manager{
		sessions: make(map[string]*entry),
		idleTTL:  idleTTL,
		logger:   logger,
		now:      time.Now,
		cleanup:  time.NewTicker(cleanupInterval),
		done:     make(chan struct{}),
	}

	go m.cleanupLoop()

	return m
}

// Start initializes a session from an upstream token and registers it
func (m *Manager) Start(token string) (*Session, error) {
	now := m.now()
	sess, err := FromToken(token, now)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	m.sessions[sess.ID] = &entry{session: sess, lastSeen: now}
	m.mu.Unlock()

	m.logger.Info("Session started",
		zap.String("session_id", sess.ID),
		zap.String("user_id", sess.UserID),
		zap.String("role", string(sess.Role)))

	return sess, nil
}

// Get returns a live session and marks it as used. Expired or idle
// sessions are dropped.
func (m *Manager) Get(id string) (*Session, bool) {
	now := m.now()

	m.mu.Lock()
	e, ok := m.sessions[id]
	if !ok {
		m.mu.Unlock()
		return nil, false
	}
	if m.stale(e, now) {
		delete(m.sessions, id)
		m.mu.Unlock()
		m.logger.Info("Session ended", zap.String("session_id", id))
		return nil, false
	}
	e.lastSeen = now
	m.mu.Unlock()

	return e.session, true
}

// End tears a session down. It returns false if the session was unknown.
func (m *Manager) End(id string) bool {
	m.mu.Lock()
	_, ok := m.sessions[id]
	delete(m.sessions, id)
	m.mu.Unlock()

	if ok {
		m.logger.Info("Session ended", zap.String("session_id", id))
	}
	return ok
}

// Count returns the number of live sessions
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// Stop stops the cleanup goroutine and drops every session. It is safe to
// call more than once.
func (m *Manager) Stop() {
	m.once.Do(func() {
		m.cleanup.Stop()
		close(m.done)

		m.mu.Lock()
		m.sessions = make(map[string]*entry)
		m.mu.Unlock()
	})
}

func (m *Manager) stale(e *entry, now time.Time) bool {
	return e.session.Expired(now) || now.Sub(e.lastSeen) > m.idleTTL
}

func (m *Manager) cleanupLoop() {
	for {
		select {
		case <-m.cleanup.C:
			m.removeStale()
		case <-m.done:
			return
		}
	}
}

// removeStale evicts expired and idle sessions and returns how many it removed
func (m *Manager) removeStale() int {
	now := m.now()

	m.mu.Lock()
	removed := 0
	for id, e := range m.sessions {
		if m.stale(e, now) {
			delete(m.sessions, id)
			removed++
		}
	}
	m.mu.Unlock()

	if removed > 0 {
		m.logger.Info("Evicted stale sessions", zap.Int("count", removed))
	}
	return removed
}

// FromToken builds an unregistered session from a token. JWT claims are read
// without verification; the upstream API remains the authority on the token.
// Opaque tokens get the member role.
func FromToken(token string, now time.Time) (*Session, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, ErrEmptyToken
	}

	sess := &Session{
		ID:        uuid.New().String(),
		Token:     token,
		Role:      RoleMember,
		StartedAt: now,
	}

	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return sess, nil
	}

	if sub, err := claims.GetSubject(); err == nil && sub != "" {
		sess.UserID = sub
	}
	if userID, ok := claims["user_id"]; ok {
		sess.UserID = fmt.Sprint(userID)
	}
	if role, ok := claims["role"].(string); ok && role != "" {
		sess.Role = Role(strings.ToLower(role))
	}
	if org, ok := claims["organization_id"]; ok {
		sess.OrganizationID = fmt.Sprint(org)
	}
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		expiresAt := exp.Time
		sess.ExpiresAt = &expiresAt
		if sess.Expired(now) {
			return nil, ErrTokenExpired
		}
	}

	return sess, nil
}

// LandingPath is the dashboard route a role is redirected to after login
func LandingPath(role Role) string {
	switch role {
	case RoleAdmin:
		return "/admin/organizations"
	case RoleOwner:
		return "/organizations"
	case RoleViewer:
		return "/reports"
	default:
		return "/dashboard"
	}
}

type contextKey struct{}

// NewContext returns a context carrying the session
func NewContext(ctx context.Context, sess *Session) context.Context {
	return context.WithValue(ctx, contextKey{}, sess)
}

// FromContext returns the session carried by ctx, if any
func FromContext(ctx context.Context) (*Session, bool) {
	sess, ok := ctx.Value(contextKey{}).(*Session)
	return sess, ok && sess != nil
}

// TokenFromContext returns the upstream token of the session in ctx, or ""
func TokenFromContext(ctx context.Context) string {
	if sess, ok := FromContext(ctx); ok {
		return sess.Token
	}
	return ""
}
