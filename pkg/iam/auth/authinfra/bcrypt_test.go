package authinfra_test

import (
	"testing"

	"golang.org/x/crypto/bcrypt"

	"github.com/fundora/fundora/pkg/iam/auth/authinfra"
)

func TestBcryptPasswordService(t *testing.T) {
	svc := authinfra.NewBcryptPasswordService(bcrypt.MinCost)

	digest, err := svc.Hash("password123")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if digest == "password123" {
		t.Fatal("digest must not be the plaintext")
	}

	if !svc.Verify("password123", digest) {
		t.Fatal("correct password must verify")
	}
	if svc.Verify("wrong-password", digest) {
		t.Fatal("wrong password must not verify")
	}
	if svc.Verify("password123", "not-a-digest") {
		t.Fatal("garbage digest must not verify")
	}
}
