package accountinfra

import (
	"context"
	"sync"

	"github.com/fundora/fundora/pkg/iam/account"
	"github.com/fundora/fundora/pkg/kernel"
)

// MemoryAccountStore is an in-memory account.Store with the same conditional
// update semantics as the Postgres implementation. Used by tests and by
// STORE_MODE=memory development runs.
type MemoryAccountStore struct {
	mu       sync.RWMutex
	accounts map[string]*account.Account // keyed by ID
	byEmail  map[string]string           // email -> ID
}

// NewMemoryAccountStore creates an empty in-memory store.
func NewMemoryAccountStore() *MemoryAccountStore {
	return &MemoryAccountStore{
		accounts: make(map[string]*account.Account),
		byEmail:  make(map[string]string),
	}
}

// Create inserts a new account, enforcing email uniqueness.
func (s *MemoryAccountStore) Create(_ context.Context, acc *account.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, taken := s.byEmail[acc.Email]; taken {
		return account.ErrEmailTaken()
	}
	s.accounts[acc.ID.String()] = acc.Clone()
	s.byEmail[acc.Email] = acc.ID.String()
	return nil
}

// FindByEmail returns a clone of the account registered under email.
func (s *MemoryAccountStore) FindByEmail(_ context.Context, email string) (*account.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.byEmail[email]
	if !ok {
		return nil, account.ErrAccountNotFound()
	}
	return s.accounts[id].Clone(), nil
}

// FindByID returns a clone of the account with the given ID.
func (s *MemoryAccountStore) FindByID(_ context.Context, id kernel.AccountID) (*account.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	acc, ok := s.accounts[id.String()]
	if !ok {
		return nil, account.ErrAccountNotFound()
	}
	return acc.Clone(), nil
}

// FindByRefreshToken scans for the account holding the exact token string.
func (s *MemoryAccountStore) FindByRefreshToken(_ context.Context, token string) (*account.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, acc := range s.accounts {
		if acc.HasRefreshToken(token) {
			return acc.Clone(), nil
		}
	}
	return nil, account.ErrAccountNotFound()
}

// Save applies the account if the stored version still matches, then bumps
// the caller's version, mirroring the Postgres conditional UPDATE.
func (s *MemoryAccountStore) Save(_ context.Context, acc *account.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.accounts[acc.ID.String()]
	if !ok {
		return account.ErrAccountNotFound()
	}
	if current.Version != acc.Version {
		return account.ErrStaleAccount().WithDetail("account_id", acc.ID.String())
	}

	acc.Version++
	s.accounts[acc.ID.String()] = acc.Clone()
	return nil
}
