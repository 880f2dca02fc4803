package addresses

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/crumbandco/cakeshop-backend/internal/repo"
	"github.com/crumbandco/cakeshop-backend/pkg/db/models"
)

// Repository persists customer delivery addresses.
type Repository interface {
	ListForUser(ctx context.Context, userID uuid.UUID) ([]models.Address, error)
	ForUser(ctx context.Context, userID, addressID uuid.UUID) (*models.Address, error)
	Create(ctx context.Context, address *models.Address) error
	Update(ctx context.Context, address *models.Address) error
	Delete(ctx context.Context, userID, addressID uuid.UUID) error
}

type gormRepository struct {
	repo.Base
}

// NewRepository builds the gorm-backed address repository.
func NewRepository(db *gorm.DB) Repository {
	return &gormRepository{Base: repo.NewBase(db)}
}

func (r *gormRepository) ListForUser(ctx context.Context, userID uuid.UUID) ([]models.Address, error) {
	var addresses []models.Address
	err := r.DB(ctx).
		Where("user_id = ?", userID).
		Order("created_at ASC").
		Find(&addresses).
		Error
	return addresses, err
}

func (r *gormRepository) ForUser(ctx context.Context, userID, addressID uuid.UUID) (*models.Address, error) {
	var address models.Address
	err := r.DB(ctx).
		Where("id = ? AND user_id = ?", addressID, userID).
		First(&address).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &address, nil
}

func (r *gormRepository) Create(ctx context.Context, address *models.Address) error {
	return r.DB(ctx).Create(address).Error
}

func (r *gormRepository) Update(ctx context.Context, address *models.Address) error {
	return r.DB(ctx).Save(address).Error
}

func (r *gormRepository) Delete(ctx context.Context, userID, addressID uuid.UUID) error {
	return r.DB(ctx).
		Where("id = ? AND user_id = ?", addressID, userID).
		Delete(&models.Address{}).
		Error
}
