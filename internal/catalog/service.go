package catalog

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"

	"github.com/crumbandco/cakeshop-backend/internal/cart"
	"github.com/crumbandco/cakeshop-backend/pkg/db"
	"github.com/crumbandco/cakeshop-backend/pkg/db/models"
	"github.com/crumbandco/cakeshop-backend/pkg/enums"
	pkgerrors "github.com/crumbandco/cakeshop-backend/pkg/errors"
)

// ProductDetail is the storefront product page payload. Sizes are sorted by
// multiplier and DefaultSizeID points at the cheapest one.
type ProductDetail struct {
	Product       models.Product `json:"product"`
	DefaultSizeID *uuid.UUID     `json:"default_size_id,omitempty"`
	Addons        []models.Addon `json:"addons"`
}

// ProductInput is the admin product payload.
type ProductInput struct {
	CategoryID  *uuid.UUID
	Name        string
	Slug        string
	Description *string
	BasePrice   decimal.Decimal
	Tags        []string
	ImagePath   *string
	IsActive    bool
	IsFeatured  bool
}

// SizeInput is the admin size payload.
type SizeInput struct {
	Label       string
	WeightLabel *string
	Multiplier  decimal.Decimal
	Position    int
}

// AddonUpsertInput is the admin add-on payload.
type AddonUpsertInput struct {
	Name        string
	Description *string
	Price       decimal.Decimal
	Kind        enums.AddonKind
	IsActive    bool
}

// CategoryInput is the admin category payload.
type CategoryInput struct {
	Name     string
	Slug     string
	Position int
}

// Service owns catalog reads for the storefront and CRUD for admins.
type Service interface {
	ListProducts(ctx context.Context, filter ListFilter) ([]models.Product, error)
	ProductDetail(ctx context.Context, id uuid.UUID) (*ProductDetail, error)
	CreateProduct(ctx context.Context, input ProductInput) (*models.Product, error)
	UpdateProduct(ctx context.Context, id uuid.UUID, input ProductInput) (*models.Product, error)
	DeleteProduct(ctx context.Context, id uuid.UUID) error

	AddSize(ctx context.Context, productID uuid.UUID, input SizeInput) (*models.ProductSize, error)
	UpdateSize(ctx context.Context, productID, sizeID uuid.UUID, input SizeInput) (*models.ProductSize, error)
	DeleteSize(ctx context.Context, productID, sizeID uuid.UUID) error

	ListCategories(ctx context.Context) ([]models.Category, error)
	CreateCategory(ctx context.Context, input CategoryInput) (*models.Category, error)
	DeleteCategory(ctx context.Context, id uuid.UUID) error

	ListAddons(ctx context.Context, activeOnly bool) ([]models.Addon, error)
	CreateAddon(ctx context.Context, input AddonUpsertInput) (*models.Addon, error)
	UpdateAddon(ctx context.Context, id uuid.UUID, input AddonUpsertInput) (*models.Addon, error)
	DeleteAddon(ctx context.Context, id uuid.UUID) error
}

type service struct {
	repo Repository
}

// NewService wires the catalog service.
func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) ListProducts(ctx context.Context, filter ListFilter) ([]models.Product, error) {
	products, err := s.repo.ListProducts(ctx, filter)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list products")
	}
	return products, nil
}

func (s *service) ProductDetail(ctx context.Context, id uuid.UUID) (*ProductDetail, error) {
	product, err := s.repo.ProductByID(ctx, id)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}
	if product == nil || !product.IsActive {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
	}

	addons, err := s.repo.ListAddons(ctx, true)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list addons")
	}

	detail := &ProductDetail{Product: *product, Addons: addons}
	if def := cart.DefaultSize(product.Sizes); def != nil {
		id := def.ID
		detail.DefaultSizeID = &id
	}
	return detail, nil
}

func (in ProductInput) validate() error {
	if strings.TrimSpace(in.Name) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "product name is required")
	}
	if strings.TrimSpace(in.Slug) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "product slug is required")
	}
	if in.BasePrice.IsNegative() || in.BasePrice.IsZero() {
		return pkgerrors.New(pkgerrors.CodeValidation, "base price must be positive")
	}
	return nil
}

func (s *service) CreateProduct(ctx context.Context, input ProductInput) (*models.Product, error) {
	if err := input.validate(); err != nil {
		return nil, err
	}
	product := &models.Product{
		CategoryID:  input.CategoryID,
		Name:        strings.TrimSpace(input.Name),
		Slug:        strings.TrimSpace(input.Slug),
		Description: input.Description,
		BasePrice:   input.BasePrice,
		Tags:        pq.StringArray(input.Tags),
		ImagePath:   input.ImagePath,
		IsActive:    input.IsActive,
		IsFeatured:  input.IsFeatured,
	}
	if err := s.repo.CreateProduct(ctx, product); err != nil {
		if db.IsUniqueViolation(err, "") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "product slug already exists")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create product")
	}
	return product, nil
}

func (s *service) UpdateProduct(ctx context.Context, id uuid.UUID, input ProductInput) (*models.Product, error) {
	if err := input.validate(); err != nil {
		return nil, err
	}
	product, err := s.repo.ProductByID(ctx, id)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}
	if product == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
	}
	product.CategoryID = input.CategoryID
	product.Name = strings.TrimSpace(input.Name)
	product.Slug = strings.TrimSpace(input.Slug)
	product.Description = input.Description
	product.BasePrice = input.BasePrice
	product.Tags = pq.StringArray(input.Tags)
	product.ImagePath = input.ImagePath
	product.IsActive = input.IsActive
	product.IsFeatured = input.IsFeatured
	product.Sizes = nil
	if err := s.repo.UpdateProduct(ctx, product); err != nil {
		if db.IsUniqueViolation(err, "") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "product slug already exists")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update product")
	}
	return product, nil
}

func (s *service) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.DeleteProduct(ctx, id); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete product")
	}
	return nil
}

func (in SizeInput) validate() error {
	if strings.TrimSpace(in.Label) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "size label is required")
	}
	if !in.Multiplier.IsPositive() {
		return pkgerrors.New(pkgerrors.CodeValidation, "multiplier must be positive")
	}
	return nil
}

func (s *service) AddSize(ctx context.Context, productID uuid.UUID, input SizeInput) (*models.ProductSize, error) {
	if err := input.validate(); err != nil {
		return nil, err
	}
	product, err := s.repo.ProductByID(ctx, productID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}
	if product == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
	}
	size := &models.ProductSize{
		ProductID:   productID,
		Label:       strings.TrimSpace(input.Label),
		WeightLabel: input.WeightLabel,
		Multiplier:  input.Multiplier,
		Position:    input.Position,
	}
	if err := s.repo.CreateSize(ctx, size); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create size")
	}
	return size, nil
}

func (s *service) UpdateSize(ctx context.Context, productID, sizeID uuid.UUID, input SizeInput) (*models.ProductSize, error) {
	if err := input.validate(); err != nil {
		return nil, err
	}
	size, err := s.repo.SizeForProduct(ctx, productID, sizeID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load size")
	}
	if size == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "size not found")
	}
	size.Label = strings.TrimSpace(input.Label)
	size.WeightLabel = input.WeightLabel
	size.Multiplier = input.Multiplier
	size.Position = input.Position
	if err := s.repo.UpdateSize(ctx, size); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update size")
	}
	return size, nil
}

func (s *service) DeleteSize(ctx context.Context, productID, sizeID uuid.UUID) error {
	if err := s.repo.DeleteSize(ctx, productID, sizeID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete size")
	}
	return nil
}

func (s *service) ListCategories(ctx context.Context) ([]models.Category, error) {
	categories, err := s.repo.ListCategories(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list categories")
	}
	return categories, nil
}

func (s *service) CreateCategory(ctx context.Context, input CategoryInput) (*models.Category, error) {
	if strings.TrimSpace(input.Name) == "" || strings.TrimSpace(input.Slug) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "category name and slug are required")
	}
	category := &models.Category{
		Name:     strings.TrimSpace(input.Name),
		Slug:     strings.TrimSpace(input.Slug),
		Position: input.Position,
	}
	if err := s.repo.CreateCategory(ctx, category); err != nil {
		if db.IsUniqueViolation(err, "") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "category slug already exists")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create category")
	}
	return category, nil
}

func (s *service) DeleteCategory(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.DeleteCategory(ctx, id); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete category")
	}
	return nil
}

func (s *service) ListAddons(ctx context.Context, activeOnly bool) ([]models.Addon, error) {
	addons, err := s.repo.ListAddons(ctx, activeOnly)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list addons")
	}
	return addons, nil
}

func (in AddonUpsertInput) validate() error {
	if strings.TrimSpace(in.Name) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "addon name is required")
	}
	if in.Price.IsNegative() {
		return pkgerrors.New(pkgerrors.CodeValidation, "addon price cannot be negative")
	}
	if !in.Kind.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, "invalid addon kind")
	}
	return nil
}

func (s *service) CreateAddon(ctx context.Context, input AddonUpsertInput) (*models.Addon, error) {
	if err := input.validate(); err != nil {
		return nil, err
	}
	addon := &models.Addon{
		Name:        strings.TrimSpace(input.Name),
		Description: input.Description,
		Price:       input.Price,
		Kind:        input.Kind,
		IsActive:    input.IsActive,
	}
	if err := s.repo.CreateAddon(ctx, addon); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create addon")
	}
	return addon, nil
}

func (s *service) UpdateAddon(ctx context.Context, id uuid.UUID, input AddonUpsertInput) (*models.Addon, error) {
	if err := input.validate(); err != nil {
		return nil, err
	}
	addon, err := s.repo.AddonByID(ctx, id)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load addon")
	}
	if addon == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "addon not found")
	}
	addon.Name = strings.TrimSpace(input.Name)
	addon.Description = input.Description
	addon.Price = input.Price
	addon.Kind = input.Kind
	addon.IsActive = input.IsActive
	if err := s.repo.UpdateAddon(ctx, addon); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update addon")
	}
	return addon, nil
}

func (s *service) DeleteAddon(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.DeleteAddon(ctx, id); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete addon")
	}
	return nil
}
