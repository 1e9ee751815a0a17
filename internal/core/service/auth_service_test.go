package service

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/voicedesk/callcenter-api/internal/core/domain"
	"github.com/voicedesk/callcenter-api/internal/core/ports"
)

// fakeHasher keeps the auth tests fast; bcrypt has its own tests.
type fakeHasher struct{}

func (fakeHasher) Hash(plaintext string) (string, error) { return "hashed:" + plaintext, nil }
func (fakeHasher) Verify(plaintext, hash string) bool    { return hash == "hashed:"+plaintext }

type stubUserRepo struct {
	byUsername map[string]*domain.User
	byID       map[string]*domain.User
	lastLogins map[string]int
	newHash    string
}

func newStubUserRepo(users ...*domain.User) *stubUserRepo {
	r := &stubUserRepo{
		byUsername: make(map[string]*domain.User),
		byID:       make(map[string]*domain.User),
		lastLogins: make(map[string]int),
	}
	for _, u := range users {
		r.byUsername[u.Username] = u
		r.byID[u.ID] = u
	}
	return r
}

func (r *stubUserRepo) active(u *domain.User, ok bool) (*domain.User, error) {
	if !ok || !u.IsActive {
		return nil, domain.ErrUserNotFound
	}
	clone := *u
	return &clone, nil
}

func (r *stubUserRepo) Create(_ context.Context, u *domain.User) (*domain.User, error) {
	return u, nil
}

func (r *stubUserRepo) FindByUsername(_ context.Context, username string) (*domain.User, error) {
	u, ok := r.byUsername[username]
	return r.active(u, ok)
}

func (r *stubUserRepo) FindByID(_ context.Context, id string) (*domain.User, error) {
	u, ok := r.byID[id]
	return r.active(u, ok)
}

func (r *stubUserRepo) FindAllActive(_ context.Context) ([]*domain.User, error) { return nil, nil }

func (r *stubUserRepo) Update(_ context.Context, username string, _ domain.UserUpdate) (*domain.User, error) {
	u, ok := r.byUsername[username]
	return r.active(u, ok)
}

func (r *stubUserRepo) Deactivate(_ context.Context, username string) error {
	if u, ok := r.byUsername[username]; ok {
		u.IsActive = false
	}
	return nil
}

func (r *stubUserRepo) SetAPIKey(context.Context, string, string, string) error { return nil }
func (r *stubUserRepo) SetTwoFA(context.Context, string, bool) error            { return nil }

func (r *stubUserRepo) UpdateLastLogin(_ context.Context, username string) error {
	r.lastLogins[username]++
	return nil
}

func (r *stubUserRepo) UpdatePasswordHash(_ context.Context, username, hash string) error {
	r.newHash = hash
	r.byUsername[username].PasswordHash = hash
	return nil
}

func newAuthFixture(users ...*domain.User) (*AuthService, *stubUserRepo, *RefreshTokenRegistry) {
	repo := newStubUserRepo(users...)
	registry := NewRefreshTokenRegistry("secret", zerolog.Nop())
	tokens := NewTokenService("secret", time.Hour, 7*24*time.Hour, registry, zerolog.Nop())
	svc := NewAuthService(repo, tokens, registry, fakeHasher{}, zerolog.Nop())
	return svc, repo, registry
}

func activeUser(id, username string) *domain.User {
	return &domain.User{
		ID:           id,
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: "hashed:Correct1pw",
		Role:         domain.RoleUser,
		IsActive:     true,
	}
}

func TestAuthService_Login_Success(t *testing.T) {
	svc, repo, registry := newAuthFixture(activeUser("u1", "alice"))

	result, err := svc.Login(context.Background(), "alice", "Correct1pw")
	if err != nil {
		t.Fatalf("Login returned error: %v", err)
	}
	if result.AccessToken == "" || result.RefreshToken == "" {
		t.Fatalf("expected both tokens, got %+v", result)
	}
	if !registry.IsValid(result.RefreshToken) {
		t.Fatalf("refresh token not registered")
	}
	if result.User.Username != "alice" {
		t.Fatalf("unexpected user: %+v", result.User)
	}
	if repo.lastLogins["alice"] != 1 {
		t.Fatalf("last login not updated")
	}
}

func TestAuthService_Login_FailuresIndistinguishable(t *testing.T) {
	svc, _, _ := newAuthFixture(activeUser("u1", "alice"))

	_, wrongPassword := svc.Login(context.Background(), "alice", "Wrong1pwd")
	_, noSuchUser := svc.Login(context.Background(), "mallory", "Wrong1pwd")

	if wrongPassword != domain.ErrInvalidCredentials {
		t.Fatalf("expected ErrInvalidCredentials for wrong password, got %v", wrongPassword)
	}
	if noSuchUser != domain.ErrInvalidCredentials {
		t.Fatalf("expected ErrInvalidCredentials for unknown user, got %v", noSuchUser)
	}
}

func TestAuthService_Login_InactiveUser(t *testing.T) {
	inactive := activeUser("u1", "alice")
	inactive.IsActive = false
	svc, _, _ := newAuthFixture(inactive)

	if _, err := svc.Login(context.Background(), "alice", "Correct1pw"); err != domain.ErrInvalidCredentials {
		t.Fatalf("expected ErrInvalidCredentials for inactive user, got %v", err)
	}
}

func TestAuthService_Refresh_Success(t *testing.T) {
	svc, _, _ := newAuthFixture(activeUser("u1", "alice"))

	login, err := svc.Login(context.Background(), "alice", "Correct1pw")
	if err != nil {
		t.Fatalf("Login returned error: %v", err)
	}

	result, err := svc.Refresh(context.Background(), login.RefreshToken)
	if err != nil {
		t.Fatalf("Refresh returned error: %v", err)
	}
	if result.AccessToken == "" {
		t.Fatalf("expected new access token")
	}
	if result.User.Username != "alice" {
		t.Fatalf("unexpected user: %+v", result.User)
	}
}

func TestAuthService_Refresh_FailsAfterLogout(t *testing.T) {
	svc, _, _ := newAuthFixture(activeUser("u1", "alice"))

	login, err := svc.Login(context.Background(), "alice", "Correct1pw")
	if err != nil {
		t.Fatalf("Login returned error: %v", err)
	}

	svc.Logout(login.RefreshToken)

	// Signature and expiry are still fine; only the registry entry is gone.
	if _, err := svc.Refresh(context.Background(), login.RefreshToken); err != domain.ErrInvalidRefreshToken {
		t.Fatalf("expected ErrInvalidRefreshToken after logout, got %v", err)
	}

	// Double logout is a no-op.
	svc.Logout(login.RefreshToken)
}

func TestAuthService_Refresh_RejectsAccessToken(t *testing.T) {
	svc, _, _ := newAuthFixture(activeUser("u1", "alice"))

	login, err := svc.Login(context.Background(), "alice", "Correct1pw")
	if err != nil {
		t.Fatalf("Login returned error: %v", err)
	}

	if _, err := svc.Refresh(context.Background(), login.AccessToken); err != domain.ErrInvalidRefreshToken {
		t.Fatalf("expected ErrInvalidRefreshToken for access token, got %v", err)
	}
}

func TestAuthService_Refresh_FailsForDeactivatedUser(t *testing.T) {
	svc, repo, _ := newAuthFixture(activeUser("u1", "alice"))

	login, err := svc.Login(context.Background(), "alice", "Correct1pw")
	if err != nil {
		t.Fatalf("Login returned error: %v", err)
	}

	_ = repo.Deactivate(context.Background(), "alice")

	if _, err := svc.Refresh(context.Background(), login.RefreshToken); err != domain.ErrInvalidRefreshToken {
		t.Fatalf("expected ErrInvalidRefreshToken for deactivated user, got %v", err)
	}
}

func TestAuthService_LogoutAll(t *testing.T) {
	svc, _, registry := newAuthFixture(activeUser("u1", "alice"), activeUser("u2", "bob"))

	alice1, _ := svc.Login(context.Background(), "alice", "Correct1pw")
	alice2, _ := svc.Login(context.Background(), "alice", "Correct1pw")
	bob, _ := svc.Login(context.Background(), "bob", "Correct1pw")

	if n := svc.LogoutAll("u1"); n != 2 {
		t.Fatalf("expected 2 revoked, got %d", n)
	}

	if _, err := svc.Refresh(context.Background(), alice1.RefreshToken); err != domain.ErrInvalidRefreshToken {
		t.Fatalf("alice token 1 survived logout-all: %v", err)
	}
	if _, err := svc.Refresh(context.Background(), alice2.RefreshToken); err != domain.ErrInvalidRefreshToken {
		t.Fatalf("alice token 2 survived logout-all: %v", err)
	}
	if !registry.IsValid(bob.RefreshToken) {
		t.Fatalf("bob token revoked by alice logout-all")
	}
}

func TestAuthService_ChangePassword(t *testing.T) {
	svc, repo, _ := newAuthFixture(activeUser("u1", "alice"))

	if err := svc.ChangePassword(context.Background(), "alice", "Wrong1pwd", "NewSecret1"); err != domain.ErrWrongPassword {
		t.Fatalf("expected ErrWrongPassword, got %v", err)
	}
	if err := svc.ChangePassword(context.Background(), "ghost", "Correct1pw", "NewSecret1"); err != domain.ErrUserNotFound {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}

	login, err := svc.Login(context.Background(), "alice", "Correct1pw")
	if err != nil {
		t.Fatalf("Login returned error: %v", err)
	}

	if err := svc.ChangePassword(context.Background(), "alice", "Correct1pw", "NewSecret1"); err != nil {
		t.Fatalf("ChangePassword returned error: %v", err)
	}
	if repo.newHash != "hashed:NewSecret1" {
		t.Fatalf("new hash not stored: %q", repo.newHash)
	}

	// Existing refresh tokens survive a password change.
	if _, err := svc.Refresh(context.Background(), login.RefreshToken); err != nil {
		t.Fatalf("refresh token invalidated by password change: %v", err)
	}

	if _, err := svc.Login(context.Background(), "alice", "NewSecret1"); err != nil {
		t.Fatalf("login with new password failed: %v", err)
	}
}

func TestAuthService_Profile(t *testing.T) {
	svc, _, _ := newAuthFixture(activeUser("u1", "alice"))

	user, err := svc.Profile(context.Background(), "u1")
	if err != nil {
		t.Fatalf("Profile returned error: %v", err)
	}
	if user.Username != "alice" {
		t.Fatalf("unexpected user: %+v", user)
	}

	if _, err := svc.Profile(context.Background(), "missing"); err != domain.ErrUserNotFound {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

var _ ports.AuthService = (*AuthService)(nil)
var _ ports.UserService = (*UserService)(nil)
var _ ports.TokenService = (*TokenService)(nil)
var _ ports.TokenRegistry = (*RefreshTokenRegistry)(nil)
var _ ports.PasswordHasher = BcryptHasher{}
