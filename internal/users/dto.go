package users

import (
	"time"

	"github.com/google/uuid"

	"github.com/crumbandco/cakeshop-backend/pkg/db/models"
	"github.com/crumbandco/cakeshop-backend/pkg/enums"
)

// UserDTO is the transport shape that omits credentials.
type UserDTO struct {
	ID        uuid.UUID        `json:"id"`
	Email     string           `json:"email"`
	FirstName string           `json:"first_name"`
	LastName  string           `json:"last_name"`
	Role      enums.MemberRole `json:"role"`
	IsActive  bool             `json:"is_active"`
	Phone     *string          `json:"phone,omitempty"`
	CreatedAt time.Time        `json:"created_at"`
	UpdatedAt time.Time        `json:"updated_at"`
}

// CreateUserDTO holds the data required to persist a new user.
type CreateUserDTO struct {
	Email        string
	PasswordHash string
	FirstName    string
	LastName     string
	Role         enums.MemberRole
	Phone        *string
}

// ProfileDTO is the transport shape for storefront preferences.
type ProfileDTO struct {
	Phone            *string    `json:"phone,omitempty"`
	DefaultAddressID *uuid.UUID `json:"default_address_id,omitempty"`
	FavoriteFlavors  []string   `json:"favorite_flavors"`
}

func FromModel(u *models.User) *UserDTO {
	if u == nil {
		return nil
	}
	dto := &UserDTO{
		ID:        u.ID,
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Role:      u.Role,
		IsActive:  u.IsActive,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
	if u.Profile != nil {
		dto.Phone = u.Profile.Phone
	}
	return dto
}

func ProfileFromModel(p *models.Profile) *ProfileDTO {
	if p == nil {
		return &ProfileDTO{FavoriteFlavors: []string{}}
	}
	flavors := append([]string(nil), []string(p.FavoriteFlavors)...)
	if flavors == nil {
		flavors = []string{}
	}
	return &ProfileDTO{
		Phone:            p.Phone,
		DefaultAddressID: p.DefaultAddressID,
		FavoriteFlavors:  flavors,
	}
}

func (c CreateUserDTO) ToModel() *models.User {
	role := c.Role
	if !role.IsValid() {
		role = enums.MemberRoleCustomer
	}
	return &models.User{
		Email:        c.Email,
		PasswordHash: c.PasswordHash,
		FirstName:    c.FirstName,
		LastName:     c.LastName,
		Role:         role,
		IsActive:     true,
		Profile:      &models.Profile{Phone: c.Phone},
	}
}
