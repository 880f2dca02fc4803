package gallery

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/crumbandco/cakeshop-backend/internal/media"
	"github.com/crumbandco/cakeshop-backend/pkg/db/models"
	"github.com/crumbandco/cakeshop-backend/pkg/enums"
	pkgerrors "github.com/crumbandco/cakeshop-backend/pkg/errors"
	"github.com/crumbandco/cakeshop-backend/pkg/logger"
)

const readURLTTL = time.Hour

// ImageView is a gallery row with a browser-loadable URL attached.
type ImageView struct {
	ID        uuid.UUID `json:"id"`
	Title     string    `json:"title"`
	Caption   *string   `json:"caption,omitempty"`
	URL       string    `json:"url"`
	Position  int       `json:"position"`
	CreatedAt time.Time `json:"created_at"`
}

// UpsertInput is the admin payload for gallery rows.
type UpsertInput struct {
	Title      string  `json:"title" validate:"required"`
	Caption    *string `json:"caption,omitempty"`
	ObjectPath string  `json:"object_path" validate:"required"`
	Position   int     `json:"position"`
}

// Service exposes the public gallery and its admin management surface.
type Service interface {
	List(ctx context.Context) ([]ImageView, error)
	Create(ctx context.Context, input UpsertInput) (*models.GalleryImage, error)
	Update(ctx context.Context, id uuid.UUID, input UpsertInput) (*models.GalleryImage, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type service struct {
	repo  Repository
	media media.Service
	logg  *logger.Logger
}

// NewService wires the gallery service.
func NewService(repo Repository, mediaSvc media.Service, logg *logger.Logger) Service {
	return &service{repo: repo, media: mediaSvc, logg: logg}
}

func (s *service) List(ctx context.Context) ([]ImageView, error) {
	images, err := s.repo.List(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list gallery")
	}

	views := make([]ImageView, 0, len(images))
	for _, image := range images {
		url, err := s.media.ReadURL(enums.MediaBucketGallery, image.ObjectPath, readURLTTL)
		if err != nil {
			// A single unsignable object must not hide the rest of the wall.
			if s.logg != nil {
				s.logg.Warn(ctx, "gallery image could not be signed: "+image.ObjectPath)
			}
			continue
		}
		views = append(views, ImageView{
			ID:        image.ID,
			Title:     image.Title,
			Caption:   image.Caption,
			URL:       url,
			Position:  image.Position,
			CreatedAt: image.CreatedAt,
		})
	}
	return views, nil
}

func (in UpsertInput) validate() error {
	if strings.TrimSpace(in.Title) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "title is required")
	}
	if strings.TrimSpace(in.ObjectPath) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "object_path is required")
	}
	return nil
}

func (s *service) Create(ctx context.Context, input UpsertInput) (*models.GalleryImage, error) {
	if err := input.validate(); err != nil {
		return nil, err
	}
	image := &models.GalleryImage{
		Title:      strings.TrimSpace(input.Title),
		Caption:    input.Caption,
		ObjectPath: strings.TrimSpace(input.ObjectPath),
		Position:   input.Position,
	}
	if err := s.repo.Create(ctx, image); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create gallery image")
	}
	return image, nil
}

func (s *service) Update(ctx context.Context, id uuid.UUID, input UpsertInput) (*models.GalleryImage, error) {
	if err := input.validate(); err != nil {
		return nil, err
	}
	image, err := s.repo.ByID(ctx, id)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load gallery image")
	}
	if image == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "gallery image not found")
	}
	image.Title = strings.TrimSpace(input.Title)
	image.Caption = input.Caption
	image.ObjectPath = strings.TrimSpace(input.ObjectPath)
	image.Position = input.Position
	if err := s.repo.Update(ctx, image); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update gallery image")
	}
	return image, nil
}

// Delete removes the row first and then the object. A stranded object is
// recoverable; a dangling row pointing at nothing is not.
func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	image, err := s.repo.ByID(ctx, id)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load gallery image")
	}
	if image == nil {
		return pkgerrors.New(pkgerrors.CodeNotFound, "gallery image not found")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete gallery image")
	}
	if err := s.media.DeleteObject(ctx, enums.MediaBucketGallery, image.ObjectPath); err != nil {
		if s.logg != nil {
			s.logg.Warn(ctx, "gallery object delete failed: "+image.ObjectPath)
		}
	}
	return nil
}
