package authinfra

import (
	"golang.org/x/crypto/bcrypt"

	"github.com/fundora/fundora/pkg/errx"
)

// BcryptPasswordService implements auth.PasswordHasher with bcrypt.
type BcryptPasswordService struct {
	cost int
}

// NewBcryptPasswordService clamps the cost into bcrypt's legal range.
func NewBcryptPasswordService(cost int) *BcryptPasswordService {
	if cost < bcrypt.MinCost {
		cost = bcrypt.DefaultCost
	}
	if cost > bcrypt.MaxCost {
		cost = bcrypt.MaxCost
	}
	return &BcryptPasswordService{cost: cost}
}

func (s *BcryptPasswordService) Hash(plaintext string) (string, error) {
	digest, err := bcrypt.GenerateFromPassword([]byte(plaintext), s.cost)
	if err != nil {
		return "", errx.Wrap(err, "failed to hash password", errx.TypeInternal)
	}
	return string(digest), nil
}

func (s *BcryptPasswordService) Verify(plaintext, digest string) bool {
	return bcrypt.CompareHashAndPassword([]byte(digest), []byte(plaintext)) == nil
}
