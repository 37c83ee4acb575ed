// Package session scopes operator access to an explicit token instead of a
// global logged-in flag. One shared admin secret, bcrypt-checked; tokens live
// until logout or process restart.
package session

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

var ErrBadPassword = errors.New("password incorrect")

// Session is one operator's login.
type Session struct {
	Token    string    `json:"token"`
	IssuedAt time.Time `json:"issued_at"`
}

// Manager issues and tracks sessions against the configured secret hash.
type Manager struct {
	hash []byte

	mu     sync.Mutex
	active map[string]Session
}

// NewManager takes the bcrypt hash of the admin password.
func NewManager(passwordHash string) *Manager {
	return &Manager{hash: []byte(passwordHash), active: map[string]Session{}}
}

// HashPassword is a helper for provisioning ADMIN_PASSWORD_HASH.
func HashPassword(password string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	return string(b), err
}

// Login checks the shared secret and issues a fresh token.
func (m *Manager) Login(password string) (Session, error) {
	if err := bcrypt.CompareHashAndPassword(m.hash, []byte(password)); err != nil {
		return Session{}, ErrBadPassword
	}
	s := Session{Token: uuid.NewString(), IssuedAt: time.Now()}
	m.mu.Lock()
	m.active[s.Token] = s
	m.mu.Unlock()
	return s, nil
}

// Valid reports whether the token belongs to a live session.
func (m *Manager) Valid(token string) bool {
	if token == "" {
		return false
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.active[token]
	return ok
}

// Logout clears the session; the token stops working immediately.
func (m *Manager) Logout(token string) {
	m.mu.Lock()
	delete(m.active, token)
	m.mu.Unlock()
}
