package auth

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/crumbandco/cakeshop-backend/internal/users"
	"github.com/crumbandco/cakeshop-backend/pkg/config"
	pkgmodels "github.com/crumbandco/cakeshop-backend/pkg/db/models"
	"github.com/crumbandco/cakeshop-backend/pkg/enums"
	pkgerrors "github.com/crumbandco/cakeshop-backend/pkg/errors"
	"github.com/crumbandco/cakeshop-backend/pkg/security"
)

type stubTxRunner struct{}

func (s stubTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

type stubRegisterRepo struct {
	data    map[string]*pkgmodels.User
	created *pkgmodels.User
}

func newStubRegisterRepo() *stubRegisterRepo {
	return &stubRegisterRepo{data: map[string]*pkgmodels.User{}}
}

func (s *stubRegisterRepo) FindByEmail(_ context.Context, email string) (*pkgmodels.User, error) {
	if user, ok := s.data[email]; ok {
		return user, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubRegisterRepo) Create(_ context.Context, dto users.CreateUserDTO) (*pkgmodels.User, error) {
	user := dto.ToModel()
	user.ID = uuid.New()
	s.data[dto.Email] = user
	s.created = user
	return user, nil
}

func newRegisterSetup(t *testing.T) (RegisterService, *stubRegisterRepo) {
	t.Helper()
	repo := newStubRegisterRepo()
	svc, err := NewRegisterService(RegisterServiceParams{
		TxRunner: stubTxRunner{},
		UserRepoFactory: func(tx *gorm.DB) registerUserRepository {
			return repo
		},
		PasswordConfig: config.PasswordConfig{},
	})
	if err != nil {
		t.Fatalf("new register service: %v", err)
	}
	return svc, repo
}

func sampleRegisterRequest(email string) RegisterRequest {
	return RegisterRequest{
		FirstName: "Jamie",
		LastName:  "Rivera",
		Email:     email,
		Password:  "Secret123!",
	}
}

func TestRegisterCreatesCustomer(t *testing.T) {
	svc, repo := newRegisterSetup(t)

	dto, err := svc.Register(context.Background(), sampleRegisterRequest("New@Example.com "))
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if repo.created == nil {
		t.Fatal("expected user to be created")
	}
	if repo.created.Email != "new@example.com" {
		t.Fatalf("email must be canonicalized, got %q", repo.created.Email)
	}
	if repo.created.Role != enums.MemberRoleCustomer {
		t.Fatalf("expected customer role, got %s", repo.created.Role)
	}
	if dto.Email != "new@example.com" {
		t.Fatalf("unexpected dto email %q", dto.Email)
	}

	ok, err := security.VerifyPassword("Secret123!", repo.created.PasswordHash)
	if err != nil || !ok {
		t.Fatalf("stored hash must verify, ok=%v err=%v", ok, err)
	}
}

func TestRegisterAdminSetsAdminRole(t *testing.T) {
	svc, repo := newRegisterSetup(t)

	if _, err := svc.RegisterAdmin(context.Background(), sampleRegisterRequest("boss@example.com")); err != nil {
		t.Fatalf("register admin: %v", err)
	}
	if repo.created.Role != enums.MemberRoleAdmin {
		t.Fatalf("expected admin role, got %s", repo.created.Role)
	}
}

func TestRegisterRejectsDuplicateEmail(t *testing.T) {
	svc, _ := newRegisterSetup(t)

	if _, err := svc.Register(context.Background(), sampleRegisterRequest("dup@example.com")); err != nil {
		t.Fatalf("first register: %v", err)
	}
	_, err := svc.Register(context.Background(), sampleRegisterRequest("dup@example.com"))
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeConflict {
		t.Fatalf("expected conflict, got %v", err)
	}
}

func TestRegisterRejectsShortPassword(t *testing.T) {
	svc, repo := newRegisterSetup(t)

	req := sampleRegisterRequest("short@example.com")
	req.Password = "tiny"
	_, err := svc.Register(context.Background(), req)
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
	if repo.created != nil {
		t.Fatal("no user may be created on validation failure")
	}
}
