package accountinfra_test

import (
	"context"
	"testing"

	"github.com/fundora/fundora/pkg/errx"
	"github.com/fundora/fundora/pkg/iam/account"
	"github.com/fundora/fundora/pkg/iam/account/accountinfra"
)

func TestCreate_DuplicateEmail(t *testing.T) {
	ctx := context.Background()
	store := accountinfra.NewMemoryAccountStore()

	first := account.New("Ann", "ann@example.com", "hash", account.RoleBacker)
	if err := store.Create(ctx, first); err != nil {
		t.Fatalf("unexpected error on first create: %v", err)
	}

	second := account.New("Other Ann", "ann@example.com", "hash2", account.RoleCreator)
	err := store.Create(ctx, second)
	if !errx.IsCode(err, account.CodeEmailTaken) {
		t.Fatalf("expected email-taken error, got %v", err)
	}
}

func TestSave_StaleVersionFails(t *testing.T) {
	ctx := context.Background()
	store := accountinfra.NewMemoryAccountStore()

	acc := account.New("Ann", "ann@example.com", "hash", account.RoleBacker)
	if err := store.Create(ctx, acc); err != nil {
		t.Fatalf("create: %v", err)
	}

	// Two readers load the same version, then race to save.
	a, _ := store.FindByEmail(ctx, "ann@example.com")
	b, _ := store.FindByEmail(ctx, "ann@example.com")

	a.AppendRefreshToken("session-a")
	if err := store.Save(ctx, a); err != nil {
		t.Fatalf("first save should win: %v", err)
	}

	b.AppendRefreshToken("session-b")
	err := store.Save(ctx, b)
	if !errx.IsCode(err, account.CodeStale) {
		t.Fatalf("expected stale error for the losing writer, got %v", err)
	}

	// The winning write is intact.
	got, _ := store.FindByEmail(ctx, "ann@example.com")
	if !got.HasRefreshToken("session-a") || got.HasRefreshToken("session-b") {
		t.Fatalf("lost update detected, token set: %v", got.RefreshTokens)
	}
}

func TestSave_BumpsVersionForRetry(t *testing.T) {
	ctx := context.Background()
	store := accountinfra.NewMemoryAccountStore()

	acc := account.New("Ann", "ann@example.com", "hash", account.RoleBacker)
	if err := store.Create(ctx, acc); err != nil {
		t.Fatalf("create: %v", err)
	}

	a, _ := store.FindByEmail(ctx, "ann@example.com")
	v := a.Version
	if err := store.Save(ctx, a); err != nil {
		t.Fatalf("save: %v", err)
	}
	if a.Version != v+1 {
		t.Fatalf("expected version bump from %d to %d, got %d", v, v+1, a.Version)
	}

	// The bumped version lets the same object save again without re-reading.
	if err := store.Save(ctx, a); err != nil {
		t.Fatalf("consecutive save with bumped version: %v", err)
	}
}

func TestFindByRefreshToken(t *testing.T) {
	ctx := context.Background()
	store := accountinfra.NewMemoryAccountStore()

	acc := account.New("Ann", "ann@example.com", "hash", account.RoleBacker)
	acc.AppendRefreshToken("session-1")
	if err := store.Create(ctx, acc); err != nil {
		t.Fatalf("create: %v", err)
	}

	got, err := store.FindByRefreshToken(ctx, "session-1")
	if err != nil {
		t.Fatalf("expected to find account by token: %v", err)
	}
	if got.ID != acc.ID {
		t.Fatalf("wrong account: %s", got.ID)
	}

	_, err = store.FindByRefreshToken(ctx, "unknown")
	if !errx.IsCode(err, account.CodeNotFound) {
		t.Fatalf("expected not-found for unknown token, got %v", err)
	}
}

func TestFindByEmail_ReturnsClone(t *testing.T) {
	ctx := context.Background()
	store := accountinfra.NewMemoryAccountStore()

	acc := account.New("Ann", "ann@example.com", "hash", account.RoleBacker)
	if err := store.Create(ctx, acc); err != nil {
		t.Fatalf("create: %v", err)
	}

	a, _ := store.FindByEmail(ctx, "ann@example.com")
	a.Name = "Mutated"

	b, _ := store.FindByEmail(ctx, "ann@example.com")
	if b.Name != "Ann" {
		t.Fatal("store handed out a shared instance instead of a clone")
	}
}
