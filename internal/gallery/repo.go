package gallery

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/crumbandco/cakeshop-backend/internal/repo"
	"github.com/crumbandco/cakeshop-backend/pkg/db/models"
)

// Repository persists gallery showcase rows.
type Repository interface {
	List(ctx context.Context) ([]models.GalleryImage, error)
	ByID(ctx context.Context, id uuid.UUID) (*models.GalleryImage, error)
	Create(ctx context.Context, image *models.GalleryImage) error
	Update(ctx context.Context, image *models.GalleryImage) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type gormRepository struct {
	repo.Base
}

// NewRepository builds the gorm-backed gallery repository.
func NewRepository(db *gorm.DB) Repository {
	return &gormRepository{Base: repo.NewBase(db)}
}

func (r *gormRepository) List(ctx context.Context) ([]models.GalleryImage, error) {
	var images []models.GalleryImage
	err := r.DB(ctx).
		Order("position ASC").
		Order("created_at DESC").
		Find(&images).
		Error
	return images, err
}

func (r *gormRepository) ByID(ctx context.Context, id uuid.UUID) (*models.GalleryImage, error) {
	var image models.GalleryImage
	err := r.DB(ctx).Where("id = ?", id).First(&image).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &image, nil
}

func (r *gormRepository) Create(ctx context.Context, image *models.GalleryImage) error {
	return r.DB(ctx).Create(image).Error
}

func (r *gormRepository) Update(ctx context.Context, image *models.GalleryImage) error {
	return r.DB(ctx).Save(image).Error
}

func (r *gormRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.DB(ctx).Where("id = ?", id).Delete(&models.GalleryImage{}).Error
}
