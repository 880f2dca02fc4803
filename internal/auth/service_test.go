package auth

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	pkgAuth "github.com/crumbandco/cakeshop-backend/pkg/auth"
	"github.com/crumbandco/cakeshop-backend/pkg/auth/session"
	"github.com/crumbandco/cakeshop-backend/pkg/config"
	"github.com/crumbandco/cakeshop-backend/pkg/db/models"
	"github.com/crumbandco/cakeshop-backend/pkg/enums"
	pkgerrors "github.com/crumbandco/cakeshop-backend/pkg/errors"
	"github.com/crumbandco/cakeshop-backend/pkg/security"
)

type stubUserRepo struct {
	user         *models.User
	passwordSet  string
	passwordFor  uuid.UUID
	passwordSets int
}

func (s *stubUserRepo) FindByEmail(_ context.Context, email string) (*models.User, error) {
	if s.user == nil || s.user.Email != email {
		return nil, gorm.ErrRecordNotFound
	}
	return s.user, nil
}

func (s *stubUserRepo) FindByID(_ context.Context, id uuid.UUID) (*models.User, error) {
	if s.user == nil || s.user.ID != id {
		return nil, gorm.ErrRecordNotFound
	}
	return s.user, nil
}

func (s *stubUserRepo) UpdatePassword(_ context.Context, id uuid.UUID, hash string) error {
	s.passwordFor = id
	s.passwordSet = hash
	s.passwordSets++
	return nil
}

type stubSessions struct {
	generated []string
	revoked   []string
	rotateErr error
}

func (s *stubSessions) Generate(_ context.Context, accessID string) (string, error) {
	s.generated = append(s.generated, accessID)
	return "refresh-" + accessID, nil
}

func (s *stubSessions) Rotate(_ context.Context, oldAccessID, provided string) (string, string, error) {
	if s.rotateErr != nil {
		return "", "", s.rotateErr
	}
	if provided != "refresh-"+oldAccessID {
		return "", "", session.ErrInvalidRefreshToken
	}
	next := session.NewAccessID()
	return next, "refresh-" + next, nil
}

func (s *stubSessions) Revoke(_ context.Context, accessID string) error {
	s.revoked = append(s.revoked, accessID)
	return nil
}

type stubResets struct {
	tokens map[string]string
}

func newStubResets() *stubResets {
	return &stubResets{tokens: map[string]string{}}
}

func (s *stubResets) StorePasswordReset(_ context.Context, token, userID string, _ time.Duration) error {
	s.tokens[token] = userID
	return nil
}

func (s *stubResets) GetPasswordReset(_ context.Context, token string) (string, error) {
	userID, ok := s.tokens[token]
	if !ok {
		return "", goredis.Nil
	}
	return userID, nil
}

func (s *stubResets) ConsumePasswordReset(_ context.Context, token string) error {
	delete(s.tokens, token)
	return nil
}

func jwtConfig() config.JWTConfig {
	return config.JWTConfig{
		Secret:            "test-secret",
		Issuer:            "cakeshop-test",
		ExpirationMinutes: 30,
	}
}

func seedUser(t *testing.T, role enums.MemberRole, password string) *models.User {
	t.Helper()
	hash, err := security.HashPassword(password, config.PasswordConfig{})
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	return &models.User{
		ID:           uuid.New(),
		Email:        "mira@example.com",
		PasswordHash: hash,
		FirstName:    "Mira",
		LastName:     "Patel",
		Role:         role,
		IsActive:     true,
	}
}

func newTestService(t *testing.T, repo *stubUserRepo, sessions *stubSessions, resets *stubResets) Service {
	t.Helper()
	svc, err := NewService(ServiceParams{
		UserRepo:       repo,
		SessionManager: sessions,
		ResetStore:     resets,
		JWTConfig:      jwtConfig(),
		PasswordConfig: config.PasswordConfig{},
	})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc
}

func TestLoginIssuesTokenPair(t *testing.T) {
	repo := &stubUserRepo{user: seedUser(t, enums.MemberRoleCustomer, "sprinkles88")}
	sessions := &stubSessions{}
	svc := newTestService(t, repo, sessions, newStubResets())

	resp, err := svc.Login(context.Background(), LoginRequest{Email: "Mira@Example.com ", Password: "sprinkles88"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if resp.AccessToken == "" || resp.RefreshToken == "" {
		t.Fatal("expected token pair")
	}
	if len(sessions.generated) != 1 {
		t.Fatalf("expected one session, got %d", len(sessions.generated))
	}

	claims, err := pkgAuth.ParseAccessToken(jwtConfig(), resp.AccessToken)
	if err != nil {
		t.Fatalf("parse access token: %v", err)
	}
	if claims.UserID != repo.user.ID {
		t.Fatal("claims carry the wrong user")
	}
	if claims.Role != enums.MemberRoleCustomer {
		t.Fatalf("expected customer role, got %s", claims.Role)
	}
}

func TestLoginRejectsWrongPassword(t *testing.T) {
	repo := &stubUserRepo{user: seedUser(t, enums.MemberRoleCustomer, "sprinkles88")}
	svc := newTestService(t, repo, &stubSessions{}, newStubResets())

	_, err := svc.Login(context.Background(), LoginRequest{Email: "mira@example.com", Password: "wrong"})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeUnauthorized {
		t.Fatalf("expected unauthorized, got %v", err)
	}
}

func TestLoginRejectsUnknownEmailWithSameMessage(t *testing.T) {
	svc := newTestService(t, &stubUserRepo{}, &stubSessions{}, newStubResets())

	_, err := svc.Login(context.Background(), LoginRequest{Email: "ghost@example.com", Password: "whatever"})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeUnauthorized {
		t.Fatalf("expected unauthorized, got %v", err)
	}
}

func TestLoginRejectsDeactivatedAccount(t *testing.T) {
	repo := &stubUserRepo{user: seedUser(t, enums.MemberRoleCustomer, "sprinkles88")}
	repo.user.IsActive = false
	svc := newTestService(t, repo, &stubSessions{}, newStubResets())

	_, err := svc.Login(context.Background(), LoginRequest{Email: "mira@example.com", Password: "sprinkles88"})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeUnauthorized {
		t.Fatalf("expected unauthorized, got %v", err)
	}
}

func TestAdminLoginRefusesCustomers(t *testing.T) {
	repo := &stubUserRepo{user: seedUser(t, enums.MemberRoleCustomer, "sprinkles88")}
	svc := newTestService(t, repo, &stubSessions{}, newStubResets())

	_, err := svc.AdminLogin(context.Background(), LoginRequest{Email: "mira@example.com", Password: "sprinkles88"})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeUnauthorized {
		t.Fatalf("expected unauthorized, got %v", err)
	}
}

func TestRefreshRotatesSession(t *testing.T) {
	repo := &stubUserRepo{user: seedUser(t, enums.MemberRoleCustomer, "sprinkles88")}
	sessions := &stubSessions{}
	svc := newTestService(t, repo, sessions, newStubResets())

	login, err := svc.Login(context.Background(), LoginRequest{Email: "mira@example.com", Password: "sprinkles88"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	pair, err := svc.Refresh(context.Background(), RefreshRequest{
		AccessToken:  login.AccessToken,
		RefreshToken: login.RefreshToken,
	})
	if err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if pair.AccessToken == login.AccessToken {
		t.Fatal("expected a fresh access token")
	}
	if pair.RefreshToken == login.RefreshToken {
		t.Fatal("expected a fresh refresh token")
	}

	claims, err := pkgAuth.ParseAccessToken(jwtConfig(), pair.AccessToken)
	if err != nil {
		t.Fatalf("parse refreshed token: %v", err)
	}
	if claims.UserID != repo.user.ID {
		t.Fatal("refreshed claims carry the wrong user")
	}
}

func TestRefreshRejectsMismatchedToken(t *testing.T) {
	repo := &stubUserRepo{user: seedUser(t, enums.MemberRoleCustomer, "sprinkles88")}
	svc := newTestService(t, repo, &stubSessions{}, newStubResets())

	login, err := svc.Login(context.Background(), LoginRequest{Email: "mira@example.com", Password: "sprinkles88"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	_, err = svc.Refresh(context.Background(), RefreshRequest{
		AccessToken:  login.AccessToken,
		RefreshToken: "stolen-token",
	})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeUnauthorized {
		t.Fatalf("expected unauthorized, got %v", err)
	}
}

func TestLogoutRevokesSession(t *testing.T) {
	sessions := &stubSessions{}
	svc := newTestService(t, &stubUserRepo{}, sessions, newStubResets())

	if err := svc.Logout(context.Background(), "access-123"); err != nil {
		t.Fatalf("logout: %v", err)
	}
	if len(sessions.revoked) != 1 || sessions.revoked[0] != "access-123" {
		t.Fatalf("expected session revoked, got %v", sessions.revoked)
	}
}

func TestPasswordResetRoundTrip(t *testing.T) {
	repo := &stubUserRepo{user: seedUser(t, enums.MemberRoleCustomer, "sprinkles88")}
	resets := newStubResets()
	svc := newTestService(t, repo, &stubSessions{}, resets)

	if err := svc.RequestPasswordReset(context.Background(), ForgotPasswordRequest{Email: "mira@example.com"}); err != nil {
		t.Fatalf("request reset: %v", err)
	}
	if len(resets.tokens) != 1 {
		t.Fatalf("expected one reset token, got %d", len(resets.tokens))
	}

	var token string
	for tok := range resets.tokens {
		token = tok
	}

	if err := svc.ResetPassword(context.Background(), ResetPasswordRequest{Token: token, Password: "newpassword9"}); err != nil {
		t.Fatalf("reset password: %v", err)
	}
	if repo.passwordFor != repo.user.ID || repo.passwordSet == "" {
		t.Fatal("expected password updated for the requesting user")
	}
	if len(resets.tokens) != 0 {
		t.Fatal("reset token must be single use")
	}

	err := svc.ResetPassword(context.Background(), ResetPasswordRequest{Token: token, Password: "anotherpass1"})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeUnauthorized {
		t.Fatalf("expected replay rejected, got %v", err)
	}
	if repo.passwordSets != 1 {
		t.Fatalf("password must not be updated twice, got %d", repo.passwordSets)
	}
}

func TestPasswordResetHidesUnknownEmails(t *testing.T) {
	resets := newStubResets()
	svc := newTestService(t, &stubUserRepo{}, &stubSessions{}, resets)

	if err := svc.RequestPasswordReset(context.Background(), ForgotPasswordRequest{Email: "ghost@example.com"}); err != nil {
		t.Fatalf("unknown email must not error: %v", err)
	}
	if len(resets.tokens) != 0 {
		t.Fatal("no token may be issued for unknown emails")
	}
}
