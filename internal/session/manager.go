package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ErrNotFound indicates the session does not exist or has expired. Callers
// treat it as "not authenticated"; store failures are wrapped separately but
// must be handled the same way (fail closed).
var ErrNotFound = errors.New("session: not found")

// FlagSuspiciousActivity marks a session whose IP address or user agent
// drifted between requests. The session stays valid; the flag is a signal
// for review, not an enforcement.
const FlagSuspiciousActivity = "suspicious_activity"

// Session is the server-side record backing an authenticated user's tokens.
type Session struct {
	ID            string    `json:"id"`
	UserID        string    `json:"user_id"`
	Email         string    `json:"email"`
	Role          string    `json:"role"`
	Organizations []string  `json:"organizations,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	LastActivity  time.Time `json:"last_activity"`
	IPAddress     string    `json:"ip_address,omitempty"`
	UserAgent     string    `json:"user_agent,omitempty"`
	MFAVerified   bool      `json:"mfa_verified"`
	Flags         []string  `json:"flags,omitempty"`
}

// HasFlag reports whether the session carries the given flag.
func (s *Session) HasFlag(flag string) bool {
	for _, f := range s.Flags {
		if f == flag {
			return true
		}
	}
	return false
}

// Config tunes session lifetimes and the per-user concurrency cap.
type Config struct {
	Namespace     string        // key prefix, e.g. "advotecate"
	TTL           time.Duration // absolute lifetime from creation
	InactivityMax time.Duration // sliding window, shorter than TTL
	MaxPerUser    int           // concurrent session cap, 0 disables
}

// NewParams carries the identity data captured at login.
type NewParams struct {
	UserID        string
	Email         string
	Role          string
	Organizations []string
	IPAddress     string
	UserAgent     string
	MFAVerified   bool
}

// Manager drives the session lifecycle against the Store.
type Manager struct {
	store  Store
	cfg    Config
	logger *slog.Logger
	clock  func() time.Time
}

// NewManager constructs a Manager. A nil logger falls back to slog.Default.
func NewManager(store Store, cfg Config, logger *slog.Logger) *Manager {
	if cfg.Namespace == "" {
		cfg.Namespace = "advotecate"
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{store: store, cfg: cfg, logger: logger, clock: time.Now}
}

// SetClock overrides the time source; tests use it to simulate inactivity.
func (m *Manager) SetClock(clock func() time.Time) {
	m.clock = clock
}

// Create registers a new session and trims the user's session count to the
// configured cap, evicting the stalest sessions by last activity first.
func (m *Manager) Create(ctx context.Context, params NewParams) (*Session, error) {
	now := m.clock().UTC()
	sess := &Session{
		ID:            uuid.NewString(),
		UserID:        params.UserID,
		Email:         params.Email,
		Role:          params.Role,
		Organizations: params.Organizations,
		CreatedAt:     now,
		LastActivity:  now,
		IPAddress:     params.IPAddress,
		UserAgent:     params.UserAgent,
		MFAVerified:   params.MFAVerified,
	}
	if err := m.persist(ctx, sess); err != nil {
		return nil, err
	}
	if err := m.store.AddToSet(ctx, m.userSessionsKey(params.UserID), sess.ID); err != nil {
		return nil, err
	}
	if err := m.enforceLimit(ctx, params.UserID, sess.ID); err != nil {
		// The cap is eventually corrected by the sweep; a failed trim must
		// not fail the login.
		m.logger.Warn("session limit enforcement", slog.Any("error", err))
	}
	return sess, nil
}

// Get loads a session, validates both expiry cutoffs and refreshes the
// activity timestamp. IP or user-agent drift is flagged and logged but does
// not invalidate the session. Store failures are retried once and then
// surfaced; callers must treat any error as unauthenticated.
func (m *Manager) Get(ctx context.Context, id, ipAddress, userAgent string) (*Session, error) {
	data, ok, err := m.store.Get(ctx, m.sessionKey(id))
	if err != nil {
		data, ok, err = m.store.Get(ctx, m.sessionKey(id))
	}
	if err != nil {
		m.logger.Error("session store read", slog.Any("error", err))
		return nil, fmt.Errorf("session: store unavailable: %w", err)
	}
	if !ok {
		return nil, ErrNotFound
	}

	var sess Session
	if err := json.Unmarshal(data, &sess); err != nil {
		m.logger.Error("session decode", slog.String("session_id", id), slog.Any("error", err))
		return nil, ErrNotFound
	}

	now := m.clock().UTC()
	if m.expired(&sess, now) {
		m.remove(ctx, &sess)
		return nil, ErrNotFound
	}

	m.noteDrift(&sess, ipAddress, userAgent)
	sess.LastActivity = now
	if err := m.persist(ctx, &sess); err != nil {
		m.logger.Error("session touch", slog.String("session_id", id), slog.Any("error", err))
		return nil, fmt.Errorf("session: store unavailable: %w", err)
	}
	return &sess, nil
}

// Destroy removes a single session and its per-user set membership.
func (m *Manager) Destroy(ctx context.Context, id string) error {
	data, ok, err := m.store.Get(ctx, m.sessionKey(id))
	if err != nil {
		return err
	}
	if !ok {
		return nil
	}
	var sess Session
	if err := json.Unmarshal(data, &sess); err != nil {
		return m.store.Delete(ctx, m.sessionKey(id))
	}
	m.remove(ctx, &sess)
	return nil
}

// DestroyAll removes every session belonging to the user.
func (m *Manager) DestroyAll(ctx context.Context, userID string) error {
	setKey := m.userSessionsKey(userID)
	ids, err := m.store.SetMembers(ctx, setKey)
	if err != nil {
		return err
	}
	keys := make([]string, 0, len(ids)+1)
	for _, id := range ids {
		keys = append(keys, m.sessionKey(id))
	}
	keys = append(keys, setKey)
	return m.store.Delete(ctx, keys...)
}

// Sweep repairs per-user session sets by dropping ids whose session record
// is gone, e.g. after redis expired the key. Returns the number of
// memberships removed. Requires a store that can scan keys.
func (m *Manager) Sweep(ctx context.Context) (int, error) {
	scanner, ok := m.store.(KeyScanner)
	if !ok {
		return 0, errors.New("session: store does not support scanning")
	}
	setKeys, err := scanner.ScanKeys(ctx, m.cfg.Namespace+":user_sessions:*")
	if err != nil {
		return 0, err
	}
	removed := 0
	for _, setKey := range setKeys {
		ids, err := m.store.SetMembers(ctx, setKey)
		if err != nil {
			return removed, err
		}
		for _, id := range ids {
			_, exists, err := m.store.Get(ctx, m.sessionKey(id))
			if err != nil {
				return removed, err
			}
			if exists {
				continue
			}
			if err := m.store.RemoveFromSet(ctx, setKey, id); err != nil {
				return removed, err
			}
			removed++
		}
	}
	return removed, nil
}

// ActiveSessions returns the user's live sessions, pruning dangling set
// members along the way.
func (m *Manager) ActiveSessions(ctx context.Context, userID string) ([]Session, error) {
	setKey := m.userSessionsKey(userID)
	ids, err := m.store.SetMembers(ctx, setKey)
	if err != nil {
		return nil, err
	}
	sessions := make([]Session, 0, len(ids))
	for _, id := range ids {
		data, ok, err := m.store.Get(ctx, m.sessionKey(id))
		if err != nil {
			return nil, err
		}
		if !ok {
			_ = m.store.RemoveFromSet(ctx, setKey, id)
			continue
		}
		var sess Session
		if err := json.Unmarshal(data, &sess); err != nil {
			_ = m.store.Delete(ctx, m.sessionKey(id))
			_ = m.store.RemoveFromSet(ctx, setKey, id)
			continue
		}
		sessions = append(sessions, sess)
	}
	return sessions, nil
}

func (m *Manager) enforceLimit(ctx context.Context, userID, keep string) error {
	if m.cfg.MaxPerUser <= 0 {
		return nil
	}
	sessions, err := m.ActiveSessions(ctx, userID)
	if err != nil {
		return err
	}
	if len(sessions) <= m.cfg.MaxPerUser {
		return nil
	}
	sort.Slice(sessions, func(i, j int) bool {
		return sessions[i].LastActivity.Before(sessions[j].LastActivity)
	})
	excess := len(sessions) - m.cfg.MaxPerUser
	for _, sess := range sessions {
		if excess == 0 {
			break
		}
		if sess.ID == keep {
			continue
		}
		m.remove(ctx, &sess)
		m.logger.Info("session evicted",
			slog.String("user_id", userID),
			slog.String("session_id", sess.ID))
		excess--
	}
	return nil
}

func (m *Manager) expired(sess *Session, now time.Time) bool {
	if m.cfg.TTL > 0 && now.After(sess.CreatedAt.Add(m.cfg.TTL)) {
		return true
	}
	if m.cfg.InactivityMax > 0 && now.After(sess.LastActivity.Add(m.cfg.InactivityMax)) {
		return true
	}
	return false
}

func (m *Manager) noteDrift(sess *Session, ipAddress, userAgent string) {
	ipDrift := ipAddress != "" && sess.IPAddress != "" && !strings.EqualFold(ipAddress, sess.IPAddress)
	uaDrift := userAgent != "" && sess.UserAgent != "" && userAgent != sess.UserAgent
	if !ipDrift && !uaDrift {
		return
	}
	m.logger.Warn("session attribute drift",
		slog.String("session_id", sess.ID),
		slog.String("user_id", sess.UserID),
		slog.Bool("ip_drift", ipDrift),
		slog.Bool("user_agent_drift", uaDrift))
	if !sess.HasFlag(FlagSuspiciousActivity) {
		sess.Flags = append(sess.Flags, FlagSuspiciousActivity)
	}
}

func (m *Manager) persist(ctx context.Context, sess *Session) error {
	data, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("session: encode: %w", err)
	}
	// The redis TTL tracks the absolute cutoff; the inactivity window is
	// enforced on read since it depends on LastActivity.
	ttl := m.cfg.TTL
	if ttl > 0 {
		remaining := sess.CreatedAt.Add(ttl).Sub(m.clock().UTC())
		if remaining <= 0 {
			remaining = time.Second
		}
		ttl = remaining
	}
	return m.store.Set(ctx, m.sessionKey(sess.ID), data, ttl)
}

func (m *Manager) remove(ctx context.Context, sess *Session) {
	if err := m.store.Delete(ctx, m.sessionKey(sess.ID)); err != nil {
		m.logger.Error("session delete", slog.String("session_id", sess.ID), slog.Any("error", err))
	}
	if err := m.store.RemoveFromSet(ctx, m.userSessionsKey(sess.UserID), sess.ID); err != nil {
		m.logger.Error("session set cleanup", slog.String("session_id", sess.ID), slog.Any("error", err))
	}
}

func (m *Manager) sessionKey(id string) string {
	return m.cfg.Namespace + ":session:" + id
}

func (m *Manager) userSessionsKey(userID string) string {
	return m.cfg.Namespace + ":user_sessions:" + userID
}
