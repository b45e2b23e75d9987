// Package session owns the storefront's two authentication slots. The
// user and admin identities are mutually independent: logging either
// one in or out never touches the other.
package session

import (
	"fmt"
	"sync"

	models "rental-storefront/model"
	"rental-storefront/store"
)

// Manager keeps the live sessions in memory and writes every change
// through to durable storage before returning, so a restart always
// reflects the latest state.
type Manager struct {
	mu    sync.RWMutex
	store store.Store
	live  map[models.Role]models.Session
	subs  []func(models.Role)
}

// NewManager hydrates the session slots from storage. A missing or
// empty token means no live session for that role.
func NewManager(st store.Store) (*Manager, error) {
	m := &Manager{store: st, live: map[models.Role]models.Session{}}
	for _, role := range []models.Role{models.RoleUser, models.RoleAdmin} {
		tokenKey, emailKey := keysFor(role)
		token, ok, err := st.Get(tokenKey)
		if err != nil {
			return nil, fmt.Errorf("hydrate %s session: %w", role, err)
		}
		if !ok || len(token) == 0 {
			continue
		}
		email, _, err := st.Get(emailKey)
		if err != nil {
			return nil, fmt.Errorf("hydrate %s session: %w", role, err)
		}
		m.live[role] = models.Session{Role: role, Token: string(token), Email: string(email)}
	}
	return m, nil
}

// Subscribe registers fn to run after every session change for any
// role. Callbacks run outside the manager's lock.
func (m *Manager) Subscribe(fn func(models.Role)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.subs = append(m.subs, fn)
}

// Login stores the token for the role. Storage is written first; only
// after the write succeeds does the in-memory state change.
func (m *Manager) Login(role models.Role, token, email string) error {
	if token == "" {
		return fmt.Errorf("login %s: empty token", role)
	}
	tokenKey, emailKey := keysFor(role)

	m.mu.Lock()
	if err := m.store.Set(tokenKey, []byte(token)); err != nil {
		m.mu.Unlock()
		return fmt.Errorf("persist %s token: %w", role, err)
	}
	if err := m.store.Set(emailKey, []byte(email)); err != nil {
		m.mu.Unlock()
		return fmt.Errorf("persist %s email: %w", role, err)
	}
	m.live[role] = models.Session{Role: role, Token: token, Email: email}
	m.mu.Unlock()

	m.notify(role)
	return nil
}

// Logout clears the role's session. Always idempotent: logging out a
// role with no session is a no-op, never an error.
func (m *Manager) Logout(role models.Role) error {
	tokenKey, emailKey := keysFor(role)

	m.mu.Lock()
	if err := m.store.Delete(tokenKey); err != nil {
		m.mu.Unlock()
		return fmt.Errorf("clear %s token: %w", role, err)
	}
	if err := m.store.Delete(emailKey); err != nil {
		m.mu.Unlock()
		return fmt.Errorf("clear %s email: %w", role, err)
	}
	_, had := m.live[role]
	delete(m.live, role)
	m.mu.Unlock()

	if had {
		m.notify(role)
	}
	return nil
}

// Invalidate drops the role's session after the backend rejected its
// token (expired or revoked server-side).
func (m *Manager) Invalidate(role models.Role) error {
	return m.Logout(role)
}

// Current returns the live session for the role, if any.
func (m *Manager) Current(role models.Role) (models.Session, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.live[role]
	return s, ok
}

// Token is a convenience for the common "give me the bearer or empty"
// lookup.
func (m *Manager) Token(role models.Role) string {
	s, _ := m.Current(role)
	return s.Token
}

func (m *Manager) notify(role models.Role) {
	m.mu.RLock()
	subs := make([]func(models.Role), len(m.subs))
	copy(subs, m.subs)
	m.mu.RUnlock()
	for _, fn := range subs {
		fn(role)
	}
}

func keysFor(role models.Role) (tokenKey, emailKey string) {
	if role == models.RoleAdmin {
		return store.KeyAdminToken, store.KeyAdminEmail
	}
	return store.KeyUserToken, store.KeyUserEmail
}
