package queries

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/crumbandco/cakeshop-backend/pkg/db/models"
	"github.com/crumbandco/cakeshop-backend/pkg/enums"
	pkgerrors "github.com/crumbandco/cakeshop-backend/pkg/errors"
	"github.com/crumbandco/cakeshop-backend/pkg/pagination"
)

// SubmitInput is the public contact-form payload.
type SubmitInput struct {
	Name    string  `json:"name" validate:"required"`
	Email   string  `json:"email" validate:"required,email"`
	Phone   *string `json:"phone,omitempty"`
	Message string  `json:"message" validate:"required"`
}

// Service exposes the public contact form and its back-office triage.
type Service interface {
	Submit(ctx context.Context, input SubmitInput) (*models.CustomerQuery, error)
	List(ctx context.Context, status *enums.QueryStatus, params pagination.Params) (Page, error)
	Resolve(ctx context.Context, id uuid.UUID) (*models.CustomerQuery, error)
	Reopen(ctx context.Context, id uuid.UUID) (*models.CustomerQuery, error)
}

type service struct {
	repo Repository
	now  func() time.Time
}

// NewService wires the queries service.
func NewService(repo Repository) Service {
	return &service{repo: repo, now: time.Now}
}

func (s *service) Submit(ctx context.Context, input SubmitInput) (*models.CustomerQuery, error) {
	details := map[string]string{}
	name := strings.TrimSpace(input.Name)
	if name == "" {
		details["name"] = "name is required"
	}
	email := strings.ToLower(strings.TrimSpace(input.Email))
	if email == "" {
		details["email"] = "email is required"
	}
	message := strings.TrimSpace(input.Message)
	if message == "" {
		details["message"] = "message is required"
	}
	if len(details) > 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid contact form").WithDetails(details)
	}

	query := &models.CustomerQuery{
		Name:    name,
		Email:   email,
		Phone:   input.Phone,
		Message: message,
		Status:  enums.QueryStatusOpen,
	}
	if err := s.repo.Create(ctx, query); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create query")
	}
	return query, nil
}

func (s *service) List(ctx context.Context, status *enums.QueryStatus, params pagination.Params) (Page, error) {
	page, err := s.repo.List(ctx, status, params)
	if err != nil {
		return Page{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list queries")
	}
	return page, nil
}

func (s *service) Resolve(ctx context.Context, id uuid.UUID) (*models.CustomerQuery, error) {
	return s.setStatus(ctx, id, enums.QueryStatusResolved)
}

func (s *service) Reopen(ctx context.Context, id uuid.UUID) (*models.CustomerQuery, error) {
	return s.setStatus(ctx, id, enums.QueryStatusOpen)
}

func (s *service) setStatus(ctx context.Context, id uuid.UUID, status enums.QueryStatus) (*models.CustomerQuery, error) {
	query, err := s.repo.ByID(ctx, id)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load query")
	}
	if query == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "query not found")
	}

	query.Status = status
	if status == enums.QueryStatusResolved {
		now := s.now()
		query.ResolvedAt = &now
	} else {
		query.ResolvedAt = nil
	}
	if err := s.repo.UpdateStatus(ctx, query); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update query status")
	}
	return query, nil
}
