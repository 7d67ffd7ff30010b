package auth

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/aviz85/socisphere/internal/users"
	pkgauth "github.com/aviz85/socisphere/pkg/auth"
	"github.com/aviz85/socisphere/pkg/auth/session"
	"github.com/aviz85/socisphere/pkg/config"
	"github.com/aviz85/socisphere/pkg/db/models"
	pkgerrors "github.com/aviz85/socisphere/pkg/errors"
	"github.com/aviz85/socisphere/pkg/security"
)

var (
	testJWTConfig = config.JWTConfig{
		Secret:                 "test-secret",
		Issuer:                 "socisphere-test",
		ExpirationMinutes:      15,
		RefreshTokenTTLMinutes: 60,
	}
	testPasswordConfig = config.PasswordConfig{
		ArgonMemoryKB:    8192,
		ArgonTime:        1,
		ArgonParallelism: 1,
		ArgonSaltLen:     16,
		ArgonKeyLen:      32,
	}
)

type fakeUsers struct {
	byEmail   map[string]*models.User
	createErr error
	touched   bool
}

func (f *fakeUsers) Create(ctx context.Context, user *models.User) error {
	if f.createErr != nil {
		return f.createErr
	}
	user.ID = uuid.New()
	f.byEmail[user.Email] = user
	return nil
}

func (f *fakeUsers) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	if user, ok := f.byEmail[email]; ok {
		return user, nil
	}
	return nil, users.ErrNotFound
}

func (f *fakeUsers) TouchLastActive(ctx context.Context, id uuid.UUID, now time.Time) error {
	f.touched = true
	return nil
}

type fakeSessions struct {
	tokens  map[string]string
	revoked []string
}

func newFakeSessions() *fakeSessions {
	return &fakeSessions{tokens: map[string]string{}}
}

func (f *fakeSessions) Generate(ctx context.Context, accessID string) (string, error) {
	token := "refresh-" + accessID
	f.tokens[accessID] = token
	return token, nil
}

func (f *fakeSessions) Rotate(ctx context.Context, oldAccessID, provided string) (string, string, error) {
	stored, ok := f.tokens[oldAccessID]
	if !ok || stored != provided {
		return "", "", session.ErrInvalidRefreshToken
	}
	delete(f.tokens, oldAccessID)
	newAccessID := session.NewAccessID()
	newToken := "refresh-" + newAccessID
	f.tokens[newAccessID] = newToken
	return newAccessID, newToken, nil
}

func (f *fakeSessions) Revoke(ctx context.Context, accessID string) error {
	f.revoked = append(f.revoked, accessID)
	delete(f.tokens, accessID)
	return nil
}

func newFixture(t *testing.T) (Service, *fakeUsers, *fakeSessions) {
	t.Helper()
	userRepo := &fakeUsers{byEmail: map[string]*models.User{}}
	sessions := newFakeSessions()
	svc, err := NewService(ServiceParams{
		UserRepo:       userRepo,
		SessionManager: sessions,
		JWTConfig:      testJWTConfig,
		PasswordConfig: testPasswordConfig,
	})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc, userRepo, sessions
}

func registerUser(t *testing.T, svc Service, username, email, password string) *users.UserDTO {
	t.Helper()
	resp, err := svc.Register(context.Background(), RegisterRequest{
		Username: username,
		Email:    email,
		Password: password,
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	return resp.User
}

func TestRegisterHashesPassword(t *testing.T) {
	svc, userRepo, _ := newFixture(t)
	registerUser(t, svc, "maya", "maya@example.com", "s3cret-pass")

	stored := userRepo.byEmail["maya@example.com"]
	if stored == nil {
		t.Fatal("expected stored user")
	}
	if stored.PasswordHash == "s3cret-pass" {
		t.Fatal("password must not be stored in clear")
	}
	valid, err := security.VerifyPassword("s3cret-pass", stored.PasswordHash)
	if err != nil || !valid {
		t.Fatalf("stored hash must verify: valid=%v err=%v", valid, err)
	}
}

func TestRegisterDuplicateUsernameConflict(t *testing.T) {
	svc, userRepo, _ := newFixture(t)
	userRepo.createErr = &duplicateError{constraint: "idx_users_username"}

	_, err := svc.Register(context.Background(), RegisterRequest{
		Username: "maya",
		Email:    "maya@example.com",
		Password: "s3cret-pass",
	})
	if !pkgerrors.IsCode(err, pkgerrors.CodeConflict) {
		t.Fatalf("expected conflict error, got %v", err)
	}
}

type duplicateError struct {
	constraint string
}

func (e *duplicateError) Error() string {
	return `duplicate key value violates unique constraint "` + e.constraint + `"`
}

func TestLoginReturnsValidTokenPair(t *testing.T) {
	svc, userRepo, _ := newFixture(t)
	registerUser(t, svc, "maya", "maya@example.com", "s3cret-pass")

	resp, err := svc.Login(context.Background(), LoginRequest{
		Email:    "Maya@Example.com",
		Password: "s3cret-pass",
	})
	if err != nil {
		t.Fatalf("unexpected login error: %v", err)
	}
	if resp.AccessToken == "" || resp.RefreshToken == "" {
		t.Fatal("expected a token pair")
	}
	if !userRepo.touched {
		t.Fatal("login must record activity")
	}

	claims, err := pkgauth.ParseAccessToken(testJWTConfig, resp.AccessToken)
	if err != nil {
		t.Fatalf("minted token must parse: %v", err)
	}
	if claims.Username != "maya" {
		t.Fatalf("unexpected username claim %q", claims.Username)
	}
}

func TestLoginWrongPasswordUnauthorized(t *testing.T) {
	svc, _, _ := newFixture(t)
	registerUser(t, svc, "maya", "maya@example.com", "s3cret-pass")

	_, err := svc.Login(context.Background(), LoginRequest{
		Email:    "maya@example.com",
		Password: "wrong",
	})
	if !pkgerrors.IsCode(err, pkgerrors.CodeUnauthorized) {
		t.Fatalf("expected unauthorized error, got %v", err)
	}
}

func TestLoginUnknownEmailUnauthorized(t *testing.T) {
	svc, _, _ := newFixture(t)

	_, err := svc.Login(context.Background(), LoginRequest{
		Email:    "ghost@example.com",
		Password: "whatever",
	})
	if !pkgerrors.IsCode(err, pkgerrors.CodeUnauthorized) {
		t.Fatalf("expected unauthorized error, got %v", err)
	}
}

func TestRefreshRotatesSession(t *testing.T) {
	svc, _, sessions := newFixture(t)
	registerUser(t, svc, "maya", "maya@example.com", "s3cret-pass")

	login, err := svc.Login(context.Background(), LoginRequest{
		Email:    "maya@example.com",
		Password: "s3cret-pass",
	})
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	pair, err := svc.Refresh(context.Background(), RefreshRequest{
		AccessToken:  login.AccessToken,
		RefreshToken: login.RefreshToken,
	})
	if err != nil {
		t.Fatalf("unexpected refresh error: %v", err)
	}
	if pair.AccessToken == login.AccessToken || pair.RefreshToken == login.RefreshToken {
		t.Fatal("rotation must issue fresh tokens")
	}

	// The old pair is dead after rotation.
	_, err = svc.Refresh(context.Background(), RefreshRequest{
		AccessToken:  login.AccessToken,
		RefreshToken: login.RefreshToken,
	})
	if !pkgerrors.IsCode(err, pkgerrors.CodeUnauthorized) {
		t.Fatalf("expected unauthorized replay, got %v", err)
	}
	if len(sessions.tokens) != 1 {
		t.Fatalf("expected a single live session, got %d", len(sessions.tokens))
	}
}

func TestLogoutRevokesSession(t *testing.T) {
	svc, _, sessions := newFixture(t)
	registerUser(t, svc, "maya", "maya@example.com", "s3cret-pass")

	login, err := svc.Login(context.Background(), LoginRequest{
		Email:    "maya@example.com",
		Password: "s3cret-pass",
	})
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	claims, err := pkgauth.ParseAccessToken(testJWTConfig, login.AccessToken)
	if err != nil {
		t.Fatalf("parse token: %v", err)
	}

	if err := svc.Logout(context.Background(), claims.ID); err != nil {
		t.Fatalf("unexpected logout error: %v", err)
	}
	if len(sessions.revoked) != 1 || sessions.revoked[0] != claims.ID {
		t.Fatal("logout must revoke the session by access id")
	}
}
