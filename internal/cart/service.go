package cart

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/crumbandco/cakeshop-backend/internal/pricing"
	"github.com/crumbandco/cakeshop-backend/pkg/db/models"
	pkgerrors "github.com/crumbandco/cakeshop-backend/pkg/errors"
)

// AddonInput selects one add-on with a quantity when a line is first added.
type AddonInput struct {
	AddonID  uuid.UUID
	Quantity int
}

// AddItemInput configures a new cart line.
type AddItemInput struct {
	ProductID uuid.UUID
	SizeID    *uuid.UUID
	Quantity  int
	Message   *string
	Addons    []AddonInput
}

// AddonView is an add-on selection with its snapshot price.
type AddonView struct {
	ID        uuid.UUID       `json:"id"`
	AddonID   uuid.UUID       `json:"addon_id"`
	Name      string          `json:"name"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Quantity  int             `json:"quantity"`
}

// ItemView is one cart line with its derived total.
type ItemView struct {
	ID            uuid.UUID       `json:"id"`
	ProductID     uuid.UUID       `json:"product_id"`
	ProductName   string          `json:"product_name"`
	SizeID        *uuid.UUID      `json:"size_id,omitempty"`
	SizeLabel     *string         `json:"size_label,omitempty"`
	UnitBasePrice decimal.Decimal `json:"unit_base_price"`
	Quantity      int             `json:"quantity"`
	Message       *string         `json:"message,omitempty"`
	Addons        []AddonView     `json:"addons"`
	ItemTotal     decimal.Decimal `json:"item_total"`
}

// View is the whole cart with the derived subtotal.
type View struct {
	ID       uuid.UUID       `json:"id"`
	Items    []ItemView      `json:"items"`
	Subtotal decimal.Decimal `json:"subtotal"`
}

// Service owns cart reads and mutations for the authenticated customer.
type Service interface {
	Get(ctx context.Context, userID uuid.UUID) (*View, error)
	AddItem(ctx context.Context, userID uuid.UUID, input AddItemInput) (*View, error)
	SetItemQuantity(ctx context.Context, userID, itemID uuid.UUID, quantity int) (*View, error)
	AdjustAddon(ctx context.Context, userID, itemID, addonID uuid.UUID, delta int) (*View, error)
	RemoveItem(ctx context.Context, userID, itemID uuid.UUID) (*View, error)
}

type service struct {
	repo Repository
}

// NewService wires the cart service.
func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) Get(ctx context.Context, userID uuid.UUID) (*View, error) {
	cart, err := s.repo.ActiveCart(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart")
	}
	if cart == nil {
		return &View{Items: []ItemView{}, Subtotal: decimal.Zero}, nil
	}
	return buildView(cart), nil
}

func (s *service) AddItem(ctx context.Context, userID uuid.UUID, input AddItemInput) (*View, error) {
	if input.Quantity < 1 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be at least 1")
	}

	product, err := s.repo.ProductWithSizes(ctx, input.ProductID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}
	if product == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
	}

	unitPrice := product.BasePrice
	var sizeID *uuid.UUID
	var sizeLabel *string
	if len(product.Sizes) > 0 {
		// a sized product cannot go in the cart without an explicit choice
		if input.SizeID == nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "size selection is required")
		}
		size := findSize(product.Sizes, *input.SizeID)
		if size == nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "selected size does not belong to this product")
		}
		unitPrice = pricing.UnitPrice(product.BasePrice, size.Multiplier)
		id := size.ID
		label := size.Label
		sizeID = &id
		sizeLabel = &label
	} else if input.SizeID != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product has no sizes")
	}

	cart, err := s.repo.ActiveCart(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart")
	}
	if cart == nil {
		cart, err = s.repo.CreateCart(ctx, userID)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create cart")
		}
	}

	item := &models.CartItem{
		CartID:        cart.ID,
		ProductID:     product.ID,
		ProductName:   product.Name,
		SizeID:        sizeID,
		SizeLabel:     sizeLabel,
		UnitBasePrice: unitPrice,
		Quantity:      input.Quantity,
		Message:       input.Message,
	}

	// zero-quantity selections are pruned, never stored
	for _, sel := range input.Addons {
		if sel.Quantity <= 0 {
			continue
		}
		addon, err := s.repo.AddonByID(ctx, sel.AddonID)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load addon")
		}
		if addon == nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "addon not found")
		}
		item.Addons = append(item.Addons, models.CartItemAddon{
			AddonID:   addon.ID,
			Name:      addon.Name,
			UnitPrice: addon.Price,
			Quantity:  sel.Quantity,
		})
	}

	if err := s.repo.CreateItem(ctx, item); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create cart item")
	}
	return s.Get(ctx, userID)
}

func (s *service) SetItemQuantity(ctx context.Context, userID, itemID uuid.UUID, quantity int) (*View, error) {
	item, err := s.ownedItem(ctx, userID, itemID)
	if err != nil {
		return nil, err
	}

	// dropping below one unit removes the line entirely
	if quantity < 1 {
		if err := s.repo.DeleteItem(ctx, item.ID); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "remove cart item")
		}
		return s.Get(ctx, userID)
	}

	if err := s.repo.UpdateItemQuantity(ctx, item.ID, quantity); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update quantity")
	}
	return s.Get(ctx, userID)
}

// AdjustAddon applies a signed delta to one add-on selection. Incrementing an
// absent selection inserts it, decrementing to zero deletes the row, and
// decrementing an absent selection is a no-op.
func (s *service) AdjustAddon(ctx context.Context, userID, itemID, addonID uuid.UUID, delta int) (*View, error) {
	item, err := s.ownedItem(ctx, userID, itemID)
	if err != nil {
		return nil, err
	}

	existing, err := s.repo.ItemAddon(ctx, item.ID, addonID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load addon selection")
	}

	if existing == nil {
		if delta <= 0 {
			return s.Get(ctx, userID)
		}
		addon, err := s.repo.AddonByID(ctx, addonID)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load addon")
		}
		if addon == nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "addon not found")
		}
		if err := s.repo.CreateItemAddon(ctx, &models.CartItemAddon{
			CartItemID: item.ID,
			AddonID:    addon.ID,
			Name:       addon.Name,
			UnitPrice:  addon.Price,
			Quantity:   delta,
		}); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "add addon selection")
		}
		return s.Get(ctx, userID)
	}

	next := existing.Quantity + delta
	if next <= 0 {
		if err := s.repo.DeleteItemAddon(ctx, existing.ID); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "remove addon selection")
		}
		return s.Get(ctx, userID)
	}

	if err := s.repo.UpdateItemAddonQuantity(ctx, existing.ID, next); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update addon selection")
	}
	return s.Get(ctx, userID)
}

func (s *service) RemoveItem(ctx context.Context, userID, itemID uuid.UUID) (*View, error) {
	item, err := s.ownedItem(ctx, userID, itemID)
	if err != nil {
		return nil, err
	}
	if err := s.repo.DeleteItem(ctx, item.ID); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "remove cart item")
	}
	return s.Get(ctx, userID)
}

func (s *service) ownedItem(ctx context.Context, userID, itemID uuid.UUID) (*models.CartItem, error) {
	item, err := s.repo.ItemForUser(ctx, userID, itemID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart item")
	}
	if item == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "cart item not found")
	}
	return item, nil
}

func findSize(sizes []models.ProductSize, id uuid.UUID) *models.ProductSize {
	for i := range sizes {
		if sizes[i].ID == id {
			return &sizes[i]
		}
	}
	return nil
}

// DefaultSize is the lowest-multiplier size, the storefront preselection.
func DefaultSize(sizes []models.ProductSize) *models.ProductSize {
	if len(sizes) == 0 {
		return nil
	}
	lowest := &sizes[0]
	for i := range sizes[1:] {
		if sizes[i+1].Multiplier.LessThan(lowest.Multiplier) {
			lowest = &sizes[i+1]
		}
	}
	return lowest
}

func buildView(cart *models.Cart) *View {
	view := &View{ID: cart.ID, Items: make([]ItemView, 0, len(cart.Items))}
	lines := make([]pricing.Line, 0, len(cart.Items))

	for _, item := range cart.Items {
		line := pricing.Line{UnitBasePrice: item.UnitBasePrice, Quantity: item.Quantity}
		addons := make([]AddonView, 0, len(item.Addons))
		for _, addon := range item.Addons {
			line.Addons = append(line.Addons, pricing.AddonSelection{
				AddonID:   addon.AddonID,
				Name:      addon.Name,
				UnitPrice: addon.UnitPrice,
				Quantity:  addon.Quantity,
			})
			addons = append(addons, AddonView{
				ID:        addon.ID,
				AddonID:   addon.AddonID,
				Name:      addon.Name,
				UnitPrice: addon.UnitPrice,
				Quantity:  addon.Quantity,
			})
		}
		lines = append(lines, line)
		view.Items = append(view.Items, ItemView{
			ID:            item.ID,
			ProductID:     item.ProductID,
			ProductName:   item.ProductName,
			SizeID:        item.SizeID,
			SizeLabel:     item.SizeLabel,
			UnitBasePrice: item.UnitBasePrice,
			Quantity:      item.Quantity,
			Message:       item.Message,
			Addons:        addons,
			ItemTotal:     pricing.ItemTotal(line),
		})
	}

	view.Subtotal = pricing.Subtotal(lines)
	return view
}
