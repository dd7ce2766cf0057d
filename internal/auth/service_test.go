package auth

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	pkgauth "github.com/mkcamara/graniteledger-backend/pkg/auth"
	"github.com/mkcamara/graniteledger-backend/pkg/auth/session"
	"github.com/mkcamara/graniteledger-backend/pkg/config"
	"github.com/mkcamara/graniteledger-backend/pkg/db/models"
	"github.com/mkcamara/graniteledger-backend/pkg/enums"
	pkgerrors "github.com/mkcamara/graniteledger-backend/pkg/errors"
	"github.com/mkcamara/graniteledger-backend/pkg/security"
)

type fakeUserRepo struct {
	byEmail map[string]*models.User
	byID    map[uuid.UUID]*models.User
	hashes  map[uuid.UUID]string
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{
		byEmail: map[string]*models.User{},
		byID:    map[uuid.UUID]*models.User{},
		hashes:  map[uuid.UUID]string{},
	}
}

func (f *fakeUserRepo) add(u *models.User) {
	f.byEmail[u.Email] = u
	f.byID[u.ID] = u
}

func (f *fakeUserRepo) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	if u, ok := f.byEmail[email]; ok {
		return u, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeUserRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	return f.byID[id], nil
}

func (f *fakeUserRepo) UpdateLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error {
	return nil
}

func (f *fakeUserRepo) UpdatePassword(ctx context.Context, id uuid.UUID, hash string) error {
	f.hashes[id] = hash
	if u, ok := f.byID[id]; ok {
		u.PasswordHash = hash
		u.MustChangePW = false
	}
	return nil
}

type fakeSessionManager struct {
	sessions map[string]string
	revoked  []string
}

func newFakeSessionManager() *fakeSessionManager {
	return &fakeSessionManager{sessions: map[string]string{}}
}

func (f *fakeSessionManager) Generate(ctx context.Context, accessID string) (string, error) {
	token := "refresh-" + accessID
	f.sessions[accessID] = token
	return token, nil
}

func (f *fakeSessionManager) Rotate(ctx context.Context, oldAccessID, provided string) (string, string, error) {
	stored, ok := f.sessions[oldAccessID]
	if !ok || stored != provided {
		return "", "", session.ErrInvalidRefreshToken
	}
	delete(f.sessions, oldAccessID)
	newID := session.NewAccessID()
	token := "refresh-" + newID
	f.sessions[newID] = token
	return newID, token, nil
}

func (f *fakeSessionManager) Revoke(ctx context.Context, accessID string) error {
	delete(f.sessions, accessID)
	f.revoked = append(f.revoked, accessID)
	return nil
}

func testJWTConfig() config.JWTConfig {
	return config.JWTConfig{
		Secret:            strings.Repeat("s", 32),
		Issuer:            "graniteledger-test",
		ExpirationMinutes: 15,
	}
}

func testPasswordConfig() config.PasswordConfig {
	return config.PasswordConfig{
		ArgonMemoryKB:    8,
		ArgonTime:        1,
		ArgonParallelism: 1,
		ArgonSaltLen:     16,
		ArgonKeyLen:      32,
	}
}

type authFixture struct {
	svc     Service
	repo    *fakeUserRepo
	session *fakeSessionManager
	user    *models.User
}

func newAuthFixture(t *testing.T) *authFixture {
	t.Helper()
	repo := newFakeUserRepo()
	sessions := newFakeSessionManager()
	svc, err := NewService(ServiceParams{
		UserRepo:       repo,
		SessionManager: sessions,
		JWTConfig:      testJWTConfig(),
		PasswordConfig: testPasswordConfig(),
	})
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}

	hash, err := security.HashPassword("s3cret-pass", testPasswordConfig())
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	user := &models.User{
		ID:           uuid.New(),
		Email:        "agent@example.com",
		PasswordHash: hash,
		FullName:     "Agent",
		Role:         enums.UserRoleAgent,
		Active:       true,
	}
	repo.add(user)

	return &authFixture{svc: svc, repo: repo, session: sessions, user: user}
}

func TestLogin(t *testing.T) {
	f := newAuthFixture(t)

	resp, err := f.svc.Login(context.Background(), LoginRequest{
		Email:    "  Agent@Example.COM ",
		Password: "s3cret-pass",
	})
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if resp.AccessToken == "" || resp.RefreshToken == "" {
		t.Fatal("token pair must be returned")
	}
	if resp.User.Email != "agent@example.com" {
		t.Errorf("user email = %q", resp.User.Email)
	}

	claims, err := pkgauth.ParseAccessToken(testJWTConfig(), resp.AccessToken)
	if err != nil {
		t.Fatalf("ParseAccessToken: %v", err)
	}
	if claims.UserID != f.user.ID {
		t.Error("token must carry the user id")
	}
	if claims.Role != enums.UserRoleAgent {
		t.Errorf("token role = %q", claims.Role)
	}
	if _, ok := f.session.sessions[claims.ID]; !ok {
		t.Error("refresh session must be stored under the token jti")
	}
}

func TestLoginRejections(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	cases := []struct {
		name string
		req  LoginRequest
	}{
		{"wrong password", LoginRequest{Email: "agent@example.com", Password: "nope"}},
		{"unknown email", LoginRequest{Email: "ghost@example.com", Password: "s3cret-pass"}},
		{"empty email", LoginRequest{Password: "s3cret-pass"}},
	}
	for _, tc := range cases {
		if _, err := f.svc.Login(ctx, tc.req); pkgerrors.As(err).Code() != pkgerrors.CodeUnauthorized {
			t.Errorf("%s: expected unauthorized, got %v", tc.name, err)
		}
	}

	f.user.Active = false
	if _, err := f.svc.Login(ctx, LoginRequest{Email: "agent@example.com", Password: "s3cret-pass"}); pkgerrors.As(err).Code() != pkgerrors.CodeUnauthorized {
		t.Errorf("inactive account: expected unauthorized, got %v", err)
	}
}

func TestRefreshRotatesSession(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	login, err := f.svc.Login(ctx, LoginRequest{Email: "agent@example.com", Password: "s3cret-pass"})
	if err != nil {
		t.Fatalf("Login: %v", err)
	}

	refreshed, err := f.svc.Refresh(ctx, RefreshRequest{
		AccessToken:  login.AccessToken,
		RefreshToken: login.RefreshToken,
	})
	if err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	if refreshed.AccessToken == login.AccessToken {
		t.Error("refresh must mint a new access token")
	}

	// Old pair is burned.
	if _, err := f.svc.Refresh(ctx, RefreshRequest{
		AccessToken:  login.AccessToken,
		RefreshToken: login.RefreshToken,
	}); pkgerrors.As(err).Code() != pkgerrors.CodeUnauthorized {
		t.Errorf("reused pair: expected unauthorized, got %v", err)
	}
}

func TestRefreshRejectsInactiveUser(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	login, err := f.svc.Login(ctx, LoginRequest{Email: "agent@example.com", Password: "s3cret-pass"})
	if err != nil {
		t.Fatalf("Login: %v", err)
	}

	f.user.Active = false
	if _, err := f.svc.Refresh(ctx, RefreshRequest{
		AccessToken:  login.AccessToken,
		RefreshToken: login.RefreshToken,
	}); pkgerrors.As(err).Code() != pkgerrors.CodeUnauthorized {
		t.Errorf("expected unauthorized, got %v", err)
	}
}

func TestLogoutRevokesSession(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	login, err := f.svc.Login(ctx, LoginRequest{Email: "agent@example.com", Password: "s3cret-pass"})
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if err := f.svc.Logout(ctx, LogoutRequest{AccessToken: login.AccessToken}); err != nil {
		t.Fatalf("Logout: %v", err)
	}
	if len(f.session.sessions) != 0 {
		t.Error("session must be revoked")
	}
}

func TestChangePassword(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	err := f.svc.ChangePassword(ctx, f.user.ID, ChangePasswordRequest{
		CurrentPassword: "s3cret-pass",
		NewPassword:     "brand-new-pass",
	})
	if err != nil {
		t.Fatalf("ChangePassword: %v", err)
	}

	ok, err := security.VerifyPassword("brand-new-pass", f.user.PasswordHash)
	if err != nil || !ok {
		t.Fatalf("new password must verify, ok=%v err=%v", ok, err)
	}

	if err := f.svc.ChangePassword(ctx, f.user.ID, ChangePasswordRequest{
		CurrentPassword: "wrong",
		NewPassword:     "whatever-else",
	}); pkgerrors.As(err).Code() != pkgerrors.CodeUnauthorized {
		t.Errorf("wrong current password: expected unauthorized, got %v", err)
	}

	if err := f.svc.ChangePassword(ctx, f.user.ID, ChangePasswordRequest{
		CurrentPassword: "brand-new-pass",
		NewPassword:     "brand-new-pass",
	}); pkgerrors.As(err).Code() != pkgerrors.CodeValidation {
		t.Errorf("same password: expected validation error, got %v", err)
	}
}
