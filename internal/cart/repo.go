package cart

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/crumbandco/cakeshop-backend/internal/repo"
	"github.com/crumbandco/cakeshop-backend/pkg/db/models"
	"github.com/crumbandco/cakeshop-backend/pkg/enums"
)

// Repository is the persistence surface the cart service depends on.
type Repository interface {
	ActiveCart(ctx context.Context, userID uuid.UUID) (*models.Cart, error)
	CreateCart(ctx context.Context, userID uuid.UUID) (*models.Cart, error)
	ItemForUser(ctx context.Context, userID, itemID uuid.UUID) (*models.CartItem, error)
	CreateItem(ctx context.Context, item *models.CartItem) error
	UpdateItemQuantity(ctx context.Context, itemID uuid.UUID, quantity int) error
	DeleteItem(ctx context.Context, itemID uuid.UUID) error
	ItemAddon(ctx context.Context, itemID, addonID uuid.UUID) (*models.CartItemAddon, error)
	CreateItemAddon(ctx context.Context, addon *models.CartItemAddon) error
	UpdateItemAddonQuantity(ctx context.Context, id uuid.UUID, quantity int) error
	DeleteItemAddon(ctx context.Context, id uuid.UUID) error
	ProductWithSizes(ctx context.Context, productID uuid.UUID) (*models.Product, error)
	AddonByID(ctx context.Context, addonID uuid.UUID) (*models.Addon, error)
	MarkConverted(ctx context.Context, tx *gorm.DB, cartID uuid.UUID) error
}

type gormRepository struct {
	repo.Base
}

// NewRepository builds the gorm-backed cart repository.
func NewRepository(db *gorm.DB) Repository {
	return &gormRepository{Base: repo.NewBase(db)}
}

func (r *gormRepository) ActiveCart(ctx context.Context, userID uuid.UUID) (*models.Cart, error) {
	var cart models.Cart
	err := r.DB(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("cart_items.created_at ASC") }).
		Preload("Items.Addons", func(db *gorm.DB) *gorm.DB { return db.Order("cart_item_addons.created_at ASC") }).
		Where("user_id = ? AND status = ?", userID, enums.CartStatusActive).
		First(&cart).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &cart, nil
}

func (r *gormRepository) CreateCart(ctx context.Context, userID uuid.UUID) (*models.Cart, error) {
	cart := &models.Cart{UserID: userID, Status: enums.CartStatusActive}
	if err := r.DB(ctx).Create(cart).Error; err != nil {
		return nil, err
	}
	return cart, nil
}

func (r *gormRepository) ItemForUser(ctx context.Context, userID, itemID uuid.UUID) (*models.CartItem, error) {
	var item models.CartItem
	err := r.DB(ctx).
		Preload("Addons").
		Joins("JOIN carts ON carts.id = cart_items.cart_id").
		Where("cart_items.id = ? AND carts.user_id = ? AND carts.status = ?", itemID, userID, enums.CartStatusActive).
		First(&item).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &item, nil
}

func (r *gormRepository) CreateItem(ctx context.Context, item *models.CartItem) error {
	return r.DB(ctx).Create(item).Error
}

func (r *gormRepository) UpdateItemQuantity(ctx context.Context, itemID uuid.UUID, quantity int) error {
	return r.DB(ctx).
		Model(&models.CartItem{}).
		Where("id = ?", itemID).
		Update("quantity", quantity).
		Error
}

func (r *gormRepository) DeleteItem(ctx context.Context, itemID uuid.UUID) error {
	return r.DB(ctx).Where("id = ?", itemID).Delete(&models.CartItem{}).Error
}

func (r *gormRepository) ItemAddon(ctx context.Context, itemID, addonID uuid.UUID) (*models.CartItemAddon, error) {
	var addon models.CartItemAddon
	err := r.DB(ctx).
		Where("cart_item_id = ? AND addon_id = ?", itemID, addonID).
		First(&addon).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &addon, nil
}

func (r *gormRepository) CreateItemAddon(ctx context.Context, addon *models.CartItemAddon) error {
	return r.DB(ctx).Create(addon).Error
}

func (r *gormRepository) UpdateItemAddonQuantity(ctx context.Context, id uuid.UUID, quantity int) error {
	return r.DB(ctx).
		Model(&models.CartItemAddon{}).
		Where("id = ?", id).
		Update("quantity", quantity).
		Error
}

func (r *gormRepository) DeleteItemAddon(ctx context.Context, id uuid.UUID) error {
	return r.DB(ctx).Where("id = ?", id).Delete(&models.CartItemAddon{}).Error
}

func (r *gormRepository) ProductWithSizes(ctx context.Context, productID uuid.UUID) (*models.Product, error) {
	var product models.Product
	err := r.DB(ctx).
		Preload("Sizes", func(db *gorm.DB) *gorm.DB { return db.Order("product_sizes.multiplier ASC") }).
		Where("id = ? AND is_active = ?", productID, true).
		First(&product).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &product, nil
}

func (r *gormRepository) AddonByID(ctx context.Context, addonID uuid.UUID) (*models.Addon, error) {
	var addon models.Addon
	err := r.DB(ctx).
		Where("id = ? AND is_active = ?", addonID, true).
		First(&addon).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &addon, nil
}

func (r *gormRepository) MarkConverted(ctx context.Context, tx *gorm.DB, cartID uuid.UUID) error {
	db := tx
	if db == nil {
		db = r.DB(ctx)
	}
	return db.WithContext(ctx).
		Model(&models.Cart{}).
		Where("id = ?", cartID).
		Update("status", enums.CartStatusConverted).
		Error
}
