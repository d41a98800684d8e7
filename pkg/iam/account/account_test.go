package account_test

import (
	"fmt"
	"testing"
	"time"

	"github.com/fundora/fundora/pkg/iam/account"
)

func TestAppendRefreshToken_EvictsOldest(t *testing.T) {
	acc := account.New("Ann", "ann@example.com", "hash", account.RoleBacker)

	for i := 1; i <= account.MaxRefreshTokens+1; i++ {
		acc.AppendRefreshToken(fmt.Sprintf("token-%d", i))
	}

	if got := len(acc.RefreshTokens); got != account.MaxRefreshTokens {
		t.Fatalf("expected %d tokens, got %d", account.MaxRefreshTokens, got)
	}
	if acc.HasRefreshToken("token-1") {
		t.Fatal("oldest token should have been evicted")
	}
	if acc.RefreshTokens[0] != "token-2" {
		t.Fatalf("expected token-2 as oldest survivor, got %s", acc.RefreshTokens[0])
	}
	if acc.RefreshTokens[len(acc.RefreshTokens)-1] != "token-6" {
		t.Fatal("newest token should be last")
	}
}

func TestRemoveRefreshToken(t *testing.T) {
	acc := account.New("Ann", "ann@example.com", "hash", account.RoleBacker)
	acc.AppendRefreshToken("a")
	acc.AppendRefreshToken("b")
	acc.AppendRefreshToken("c")

	if !acc.RemoveRefreshToken("b") {
		t.Fatal("expected removal of present token to report true")
	}
	if acc.RemoveRefreshToken("b") {
		t.Fatal("second removal of same token should report false")
	}
	if len(acc.RefreshTokens) != 2 || acc.RefreshTokens[0] != "a" || acc.RefreshTokens[1] != "c" {
		t.Fatalf("unexpected token set after removal: %v", acc.RefreshTokens)
	}
}

func TestOTPChallenge_ExpiryBoundary(t *testing.T) {
	deadline := time.Now()
	ch := account.OTPChallenge{Code: "123456", ExpiresAt: deadline}

	if ch.Expired(deadline) {
		t.Fatal("challenge must still be valid at the exact expiry instant")
	}
	if !ch.Expired(deadline.Add(time.Nanosecond)) {
		t.Fatal("challenge must be expired one instant past the deadline")
	}
}

func TestMarkVerified_ClearsChallenge(t *testing.T) {
	acc := account.New("Ann", "ann@example.com", "hash", account.RoleBacker)
	acc.SetOTPChallenge("123456", time.Now().Add(10*time.Minute))

	acc.MarkVerified()

	if !acc.Verified {
		t.Fatal("expected account to be verified")
	}
	if acc.OTP != nil {
		t.Fatal("verified account must not hold a pending challenge")
	}
}

func TestRole_IsValid(t *testing.T) {
	for _, r := range []account.Role{account.RoleBacker, account.RoleCreator, account.RoleAdmin} {
		if !r.IsValid() {
			t.Fatalf("expected role %q to be valid", r)
		}
	}
	if account.Role("superuser").IsValid() {
		t.Fatal("unknown role must not be valid")
	}
}

func TestAdvancePasswordReset_ConsumesOTP(t *testing.T) {
	acc := account.New("Ann", "ann@example.com", "hash", account.RoleBacker)
	acc.StartPasswordReset("654321", time.Now().Add(10*time.Minute))

	if !acc.PasswordReset.OTPPending() {
		t.Fatal("expected reset challenge in OTP phase")
	}

	acc.AdvancePasswordReset("reset-token")

	if acc.PasswordReset.OTPPending() {
		t.Fatal("OTP phase must end once the reset token is issued")
	}
	if acc.PasswordReset.ResetToken == nil || *acc.PasswordReset.ResetToken != "reset-token" {
		t.Fatal("expected stored reset token")
	}
}

func TestClone_IsDeep(t *testing.T) {
	acc := account.New("Ann", "ann@example.com", "hash", account.RoleBacker)
	acc.SetOTPChallenge("123456", time.Now().Add(10*time.Minute))
	acc.StartPasswordReset("654321", time.Now().Add(10*time.Minute))
	acc.AppendRefreshToken("t1")

	cp := acc.Clone()
	cp.OTP.Code = "000000"
	*cp.PasswordReset.OTP = "000000"
	cp.RefreshTokens[0] = "mutated"

	if acc.OTP.Code != "123456" {
		t.Fatal("clone shares the OTP challenge")
	}
	if *acc.PasswordReset.OTP != "654321" {
		t.Fatal("clone shares the reset challenge")
	}
	if acc.RefreshTokens[0] != "t1" {
		t.Fatal("clone shares the refresh token slice")
	}
}
