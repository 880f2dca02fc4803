package auth

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/crumbandco/cakeshop-backend/internal/users"
	"github.com/crumbandco/cakeshop-backend/pkg/config"
	"github.com/crumbandco/cakeshop-backend/pkg/db"
	"github.com/crumbandco/cakeshop-backend/pkg/db/models"
	"github.com/crumbandco/cakeshop-backend/pkg/enums"
	pkgerrors "github.com/crumbandco/cakeshop-backend/pkg/errors"
	"github.com/crumbandco/cakeshop-backend/pkg/security"
)

// RegisterService handles account signup.
type RegisterService interface {
	Register(ctx context.Context, req RegisterRequest) (*users.UserDTO, error)
	RegisterAdmin(ctx context.Context, req RegisterRequest) (*users.UserDTO, error)
}

type registerTxRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type registerUserRepository interface {
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	Create(ctx context.Context, dto users.CreateUserDTO) (*models.User, error)
}

// RegisterServiceParams packages the dependencies for the registration flow.
// The factory rebuilds the user repo over the transaction handle.
type RegisterServiceParams struct {
	TxRunner        registerTxRunner
	UserRepoFactory func(tx *gorm.DB) registerUserRepository
	PasswordConfig  config.PasswordConfig
}

type registerService struct {
	tx          registerTxRunner
	userRepo    func(tx *gorm.DB) registerUserRepository
	passwordCfg config.PasswordConfig
}

// NewRegisterService builds a registration service with the provided dependencies.
func NewRegisterService(params RegisterServiceParams) (RegisterService, error) {
	if params.TxRunner == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "tx runner required")
	}
	if params.UserRepoFactory == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "user repo factory required")
	}
	return &registerService{
		tx:          params.TxRunner,
		userRepo:    params.UserRepoFactory,
		passwordCfg: params.PasswordConfig,
	}, nil
}

// DefaultUserRepoFactory wires the production users repository.
func DefaultUserRepoFactory(tx *gorm.DB) registerUserRepository {
	return users.NewRepository(tx)
}

func (s *registerService) Register(ctx context.Context, req RegisterRequest) (*users.UserDTO, error) {
	return s.register(ctx, req, enums.MemberRoleCustomer)
}

// RegisterAdmin creates an admin account. The router only exposes it in dev
// or behind an existing admin session.
func (s *registerService) RegisterAdmin(ctx context.Context, req RegisterRequest) (*users.UserDTO, error) {
	return s.register(ctx, req, enums.MemberRoleAdmin)
}

func (s *registerService) register(ctx context.Context, req RegisterRequest, role enums.MemberRole) (*users.UserDTO, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "email is required")
	}
	firstName := strings.TrimSpace(req.FirstName)
	if firstName == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "first_name is required")
	}
	lastName := strings.TrimSpace(req.LastName)
	if lastName == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "last_name is required")
	}
	if len(req.Password) < 8 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "password must be at least 8 characters")
	}

	passwordHash, err := security.HashPassword(req.Password, s.passwordCfg)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password")
	}

	var created *users.UserDTO
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		userRepo := s.userRepo(tx)

		if _, err := userRepo.FindByEmail(ctx, email); err == nil {
			return pkgerrors.New(pkgerrors.CodeConflict, "email already registered")
		} else if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "check user email")
		}

		user, err := userRepo.Create(ctx, users.CreateUserDTO{
			Email:        email,
			PasswordHash: passwordHash,
			FirstName:    firstName,
			LastName:     lastName,
			Role:         role,
			Phone:        req.Phone,
		})
		if err != nil {
			if db.IsUniqueViolation(err, "") {
				return pkgerrors.New(pkgerrors.CodeConflict, "email already registered")
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create user")
		}

		created = users.FromModel(user)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}
