package service

import (
	"context"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"github.com/spec-kit/queue-service/internal/config"
	"github.com/spec-kit/queue-service/internal/domain"
)

func newAuthFixture(t *testing.T) (*AuthService, *memUserRepo, *domain.User) {
	t.Helper()
	users := newMemUserRepo()
	svc := NewAuthService(config.AuthConfig{
		JWTSecret:             "test-secret",
		AccessTokenTTLMinutes: 60,
		BcryptCost:            bcrypt.MinCost,
	}, users)

	admin := &domain.User{Name: "Root", Phone: "+15550000", Role: domain.RoleAdmin, PasswordHash: "x"}
	if err := users.Create(context.Background(), admin); err != nil {
		t.Fatalf("create admin: %v", err)
	}
	return svc, users, admin
}

func TestRegisterRequiresAdmin(t *testing.T) {
	svc, users, _ := newAuthFixture(t)
	ctx := context.Background()

	attendant := &domain.User{Name: "Ana", Phone: "+15550001", Role: domain.RoleAttendant, PasswordHash: "x"}
	if err := users.Create(ctx, attendant); err != nil {
		t.Fatalf("create attendant: %v", err)
	}

	_, err := svc.Register(ctx, attendant, RegisterInput{
		Name: "Bea", Phone: "+15550002", Password: "secret", Role: domain.RoleAttendant,
	})
	assertErrorCode(t, err, "FORBIDDEN")
}

func TestRegisterDuplicatePhoneConflict(t *testing.T) {
	svc, users, admin := newAuthFixture(t)
	ctx := context.Background()

	first, err := svc.Register(ctx, admin, RegisterInput{
		Name: "Ana", Phone: "+15551111", Password: "secret", Role: domain.RoleAttendant,
	})
	if err != nil {
		t.Fatalf("first register: %v", err)
	}

	_, err = svc.Register(ctx, admin, RegisterInput{
		Name: "Impostor", Phone: "+15551111", Password: "other", Role: domain.RoleManager,
	})
	assertErrorCode(t, err, "CONFLICT")

	stored, err := users.GetByPhone(ctx, "+15551111")
	if err != nil {
		t.Fatalf("get by phone: %v", err)
	}
	if stored.ID != first.ID || stored.Name != "Ana" || stored.Role != domain.RoleAttendant {
		t.Fatalf("first record was modified: %+v", stored)
	}
}

func TestRegisterNeverStoresPlaintext(t *testing.T) {
	svc, users, admin := newAuthFixture(t)
	ctx := context.Background()

	user, err := svc.Register(ctx, admin, RegisterInput{
		Name: "Ana", Phone: "+15551111", Password: "secret", Role: domain.RoleAttendant,
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if user.PasswordHash == "secret" || user.PasswordHash == "" {
		t.Fatalf("plaintext or empty hash stored: %q", user.PasswordHash)
	}

	stored, err := users.GetByID(ctx, user.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("secret")); err != nil {
		t.Fatalf("stored hash does not verify: %v", err)
	}
}

func TestLogin(t *testing.T) {
	svc, _, admin := newAuthFixture(t)
	ctx := context.Background()

	registered, err := svc.Register(ctx, admin, RegisterInput{
		Name: "Ana", Phone: "+15551111", Password: "secret", Role: domain.RoleAttendant,
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	user, token, _, err := svc.Login(ctx, "+15551111", "secret")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if user.ID != registered.ID {
		t.Fatalf("wrong user: %s", user.ID)
	}
	if token == "" {
		t.Fatal("empty token")
	}

	claims, err := svc.TokenManager().Validate(token)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if claims.UserID != user.ID || claims.Role != domain.RoleAttendant {
		t.Fatalf("unexpected claims: %+v", claims)
	}
}

func TestLoginNoMatchIsExpectedOutcome(t *testing.T) {
	svc, _, admin := newAuthFixture(t)
	ctx := context.Background()

	if _, err := svc.Register(ctx, admin, RegisterInput{
		Name: "Ana", Phone: "+15551111", Password: "secret", Role: domain.RoleAttendant,
	}); err != nil {
		t.Fatalf("register: %v", err)
	}

	_, _, _, err := svc.Login(ctx, "+15551111", "wrong")
	assertErrorCode(t, err, "UNAUTHORIZED")

	_, _, _, err = svc.Login(ctx, "+15559999", "secret")
	assertErrorCode(t, err, "UNAUTHORIZED")
}

func TestListUsersAdminOnly(t *testing.T) {
	svc, users, admin := newAuthFixture(t)
	ctx := context.Background()

	attendant := &domain.User{Name: "Ana", Phone: "+15550001", Role: domain.RoleAttendant, PasswordHash: "x"}
	if err := users.Create(ctx, attendant); err != nil {
		t.Fatalf("create attendant: %v", err)
	}

	_, err := svc.ListUsers(ctx, attendant)
	assertErrorCode(t, err, "FORBIDDEN")

	all, err := svc.ListUsers(ctx, admin)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("expected 2 users, got %d", len(all))
	}
}
