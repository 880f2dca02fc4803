package catalog

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/crumbandco/cakeshop-backend/internal/repo"
	"github.com/crumbandco/cakeshop-backend/pkg/db/models"
)

// Sort orders for the public product listing.
const (
	SortNewest    = "newest"
	SortPriceAsc  = "price_asc"
	SortPriceDesc = "price_desc"
	SortFeatured  = "featured"
)

// ListFilter narrows the product listing.
type ListFilter struct {
	CategorySlug string
	Sort         string
	ActiveOnly   bool
}

// Repository persists the catalog: products, sizes, categories, add-ons.
type Repository interface {
	ListProducts(ctx context.Context, filter ListFilter) ([]models.Product, error)
	ProductByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
	CreateProduct(ctx context.Context, product *models.Product) error
	UpdateProduct(ctx context.Context, product *models.Product) error
	DeleteProduct(ctx context.Context, id uuid.UUID) error

	CreateSize(ctx context.Context, size *models.ProductSize) error
	UpdateSize(ctx context.Context, size *models.ProductSize) error
	DeleteSize(ctx context.Context, productID, sizeID uuid.UUID) error
	SizeForProduct(ctx context.Context, productID, sizeID uuid.UUID) (*models.ProductSize, error)

	ListCategories(ctx context.Context) ([]models.Category, error)
	CategoryBySlug(ctx context.Context, slug string) (*models.Category, error)
	CreateCategory(ctx context.Context, category *models.Category) error
	DeleteCategory(ctx context.Context, id uuid.UUID) error

	ListAddons(ctx context.Context, activeOnly bool) ([]models.Addon, error)
	AddonByID(ctx context.Context, id uuid.UUID) (*models.Addon, error)
	CreateAddon(ctx context.Context, addon *models.Addon) error
	UpdateAddon(ctx context.Context, addon *models.Addon) error
	DeleteAddon(ctx context.Context, id uuid.UUID) error
}

type gormRepository struct {
	repo.Base
}

// NewRepository builds the gorm-backed catalog repository.
func NewRepository(db *gorm.DB) Repository {
	return &gormRepository{Base: repo.NewBase(db)}
}

func (r *gormRepository) ListProducts(ctx context.Context, filter ListFilter) ([]models.Product, error) {
	query := r.DB(ctx).
		Model(&models.Product{}).
		Preload("Sizes", func(db *gorm.DB) *gorm.DB { return db.Order("product_sizes.multiplier ASC") })

	if filter.ActiveOnly {
		query = query.Where("is_active = ?", true)
	}
	if slug := strings.TrimSpace(filter.CategorySlug); slug != "" {
		query = query.
			Joins("JOIN categories ON categories.id = products.category_id").
			Where("categories.slug = ?", slug)
	}

	switch filter.Sort {
	case SortPriceAsc:
		query = query.Order("products.base_price ASC")
	case SortPriceDesc:
		query = query.Order("products.base_price DESC")
	case SortFeatured:
		query = query.Order("products.is_featured DESC").Order("products.created_at DESC")
	default:
		query = query.Order("products.created_at DESC")
	}

	var products []models.Product
	if err := query.Find(&products).Error; err != nil {
		return nil, err
	}
	return products, nil
}

func (r *gormRepository) ProductByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	var product models.Product
	err := r.DB(ctx).
		Preload("Sizes", func(db *gorm.DB) *gorm.DB { return db.Order("product_sizes.multiplier ASC") }).
		Where("id = ?", id).
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

func (r *gormRepository) CreateProduct(ctx context.Context, product *models.Product) error {
	return r.DB(ctx).Create(product).Error
}

func (r *gormRepository) UpdateProduct(ctx context.Context, product *models.Product) error {
	return r.DB(ctx).Save(product).Error
}

func (r *gormRepository) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	return r.DB(ctx).Where("id = ?", id).Delete(&models.Product{}).Error
}

func (r *gormRepository) CreateSize(ctx context.Context, size *models.ProductSize) error {
	return r.DB(ctx).Create(size).Error
}

func (r *gormRepository) UpdateSize(ctx context.Context, size *models.ProductSize) error {
	return r.DB(ctx).Save(size).Error
}

func (r *gormRepository) DeleteSize(ctx context.Context, productID, sizeID uuid.UUID) error {
	return r.DB(ctx).
		Where("id = ? AND product_id = ?", sizeID, productID).
		Delete(&models.ProductSize{}).
		Error
}

func (r *gormRepository) SizeForProduct(ctx context.Context, productID, sizeID uuid.UUID) (*models.ProductSize, error) {
	var size models.ProductSize
	err := r.DB(ctx).
		Where("id = ? AND product_id = ?", sizeID, productID).
		First(&size).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &size, nil
}

func (r *gormRepository) ListCategories(ctx context.Context) ([]models.Category, error) {
	var categories []models.Category
	err := r.DB(ctx).Order("name ASC").Find(&categories).Error
	return categories, err
}

func (r *gormRepository) CategoryBySlug(ctx context.Context, slug string) (*models.Category, error) {
	var category models.Category
	err := r.DB(ctx).Where("slug = ?", slug).First(&category).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &category, nil
}

func (r *gormRepository) CreateCategory(ctx context.Context, category *models.Category) error {
	return r.DB(ctx).Create(category).Error
}

func (r *gormRepository) DeleteCategory(ctx context.Context, id uuid.UUID) error {
	return r.DB(ctx).Where("id = ?", id).Delete(&models.Category{}).Error
}

func (r *gormRepository) ListAddons(ctx context.Context, activeOnly bool) ([]models.Addon, error) {
	query := r.DB(ctx).Model(&models.Addon{}).Order("name ASC")
	if activeOnly {
		query = query.Where("is_active = ?", true)
	}
	var addons []models.Addon
	err := query.Find(&addons).Error
	return addons, err
}

func (r *gormRepository) AddonByID(ctx context.Context, id uuid.UUID) (*models.Addon, error) {
	var addon models.Addon
	err := r.DB(ctx).Where("id = ?", id).First(&addon).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &addon, nil
}

func (r *gormRepository) CreateAddon(ctx context.Context, addon *models.Addon) error {
	return r.DB(ctx).Create(addon).Error
}

func (r *gormRepository) UpdateAddon(ctx context.Context, addon *models.Addon) error {
	return r.DB(ctx).Save(addon).Error
}

func (r *gormRepository) DeleteAddon(ctx context.Context, id uuid.UUID) error {
	return r.DB(ctx).Where("id = ?", id).Delete(&models.Addon{}).Error
}
