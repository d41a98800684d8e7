package account

import (
	"context"

	"github.com/fundora/fundora/pkg/kernel"
)

// Store is the persistence contract for identity records. It is the only
// synchronization point in the identity core: orchestrators never share
// in-process mutable state.
//
// Save is a conditional update keyed on Account.Version. Read-modify-write
// sequences (refresh-token append/evict, OTP clear-and-verify) stay atomic
// because a concurrent writer makes the condition fail instead of losing the
// update.
type Store interface {
	// Create inserts a new account. Returns ErrEmailTaken when the email is
	// already registered.
	Create(ctx context.Context, acc *Account) error

	// FindByEmail returns the account for an email, or ErrAccountNotFound.
	FindByEmail(ctx context.Context, email string) (*Account, error)

	// FindByID returns the account for an ID, or ErrAccountNotFound.
	FindByID(ctx context.Context, id kernel.AccountID) (*Account, error)

	// FindByRefreshToken returns the account whose refresh-token set contains
	// the exact token string, or ErrAccountNotFound.
	FindByRefreshToken(ctx context.Context, token string) (*Account, error)

	// Save persists the account if and only if the stored version still
	// matches acc.Version, then bumps acc.Version. Returns ErrStaleAccount
	// when a concurrent update won the race.
	Save(ctx context.Context, acc *Account) error
}
