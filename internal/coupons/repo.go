package coupons

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/crumbandco/cakeshop-backend/internal/repo"
	"github.com/crumbandco/cakeshop-backend/pkg/db/models"
)

// Repository is the persistence surface the validator and admin CRUD need.
type Repository interface {
	FindByCode(ctx context.Context, code string) (*models.Coupon, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.Coupon, error)
	List(ctx context.Context) ([]models.Coupon, error)
	Create(ctx context.Context, coupon *models.Coupon) error
	Update(ctx context.Context, coupon *models.Coupon) error
	Delete(ctx context.Context, id uuid.UUID) error
	CountUsages(ctx context.Context, couponID uuid.UUID) (int64, error)
	CountUserUsages(ctx context.Context, couponID, userID uuid.UUID) (int64, error)
	CountUserOrders(ctx context.Context, userID uuid.UUID) (int64, error)
	RecordUsage(ctx context.Context, tx *gorm.DB, usage *models.CouponUsage) error
}

type gormRepository struct {
	repo.Base
}

// NewRepository builds the gorm-backed coupon repository.
func NewRepository(db *gorm.DB) Repository {
	return &gormRepository{Base: repo.NewBase(db)}
}

// CanonicalCode normalizes user input to the stored upper-case form.
func CanonicalCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

func (r *gormRepository) FindByCode(ctx context.Context, code string) (*models.Coupon, error) {
	var coupon models.Coupon
	err := r.DB(ctx).Where("code = ?", CanonicalCode(code)).First(&coupon).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &coupon, nil
}

func (r *gormRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Coupon, error) {
	var coupon models.Coupon
	err := r.DB(ctx).Where("id = ?", id).First(&coupon).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &coupon, nil
}

func (r *gormRepository) List(ctx context.Context) ([]models.Coupon, error) {
	var coupons []models.Coupon
	if err := r.DB(ctx).Order("created_at DESC").Find(&coupons).Error; err != nil {
		return nil, err
	}
	return coupons, nil
}

func (r *gormRepository) Create(ctx context.Context, coupon *models.Coupon) error {
	coupon.Code = CanonicalCode(coupon.Code)
	return r.DB(ctx).Create(coupon).Error
}

func (r *gormRepository) Update(ctx context.Context, coupon *models.Coupon) error {
	coupon.Code = CanonicalCode(coupon.Code)
	return r.DB(ctx).Save(coupon).Error
}

func (r *gormRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.DB(ctx).Where("id = ?", id).Delete(&models.Coupon{}).Error
}

func (r *gormRepository) CountUsages(ctx context.Context, couponID uuid.UUID) (int64, error) {
	var count int64
	err := r.DB(ctx).
		Model(&models.CouponUsage{}).
		Where("coupon_id = ?", couponID).
		Count(&count).
		Error
	return count, err
}

func (r *gormRepository) CountUserUsages(ctx context.Context, couponID, userID uuid.UUID) (int64, error) {
	var count int64
	err := r.DB(ctx).
		Model(&models.CouponUsage{}).
		Where("coupon_id = ? AND user_id = ?", couponID, userID).
		Count(&count).
		Error
	return count, err
}

func (r *gormRepository) CountUserOrders(ctx context.Context, userID uuid.UUID) (int64, error) {
	var count int64
	err := r.DB(ctx).
		Model(&models.Order{}).
		Where("user_id = ?", userID).
		Count(&count).
		Error
	return count, err
}

func (r *gormRepository) RecordUsage(ctx context.Context, tx *gorm.DB, usage *models.CouponUsage) error {
	db := tx
	if db == nil {
		db = r.DB(ctx)
	}
	return db.WithContext(ctx).Create(usage).Error
}
