package gallery

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/crumbandco/cakeshop-backend/internal/media"
	"github.com/crumbandco/cakeshop-backend/pkg/db/models"
	"github.com/crumbandco/cakeshop-backend/pkg/enums"
	pkgerrors "github.com/crumbandco/cakeshop-backend/pkg/errors"
)

type stubRepo struct {
	images  map[uuid.UUID]*models.GalleryImage
	deleted []uuid.UUID
}

func newStubRepo() *stubRepo {
	return &stubRepo{images: map[uuid.UUID]*models.GalleryImage{}}
}

func (s *stubRepo) List(context.Context) ([]models.GalleryImage, error) {
	var out []models.GalleryImage
	for _, image := range s.images {
		out = append(out, *image)
	}
	return out, nil
}

func (s *stubRepo) ByID(_ context.Context, id uuid.UUID) (*models.GalleryImage, error) {
	image, ok := s.images[id]
	if !ok {
		return nil, nil
	}
	clone := *image
	return &clone, nil
}

func (s *stubRepo) Create(_ context.Context, image *models.GalleryImage) error {
	image.ID = uuid.New()
	s.images[image.ID] = image
	return nil
}

func (s *stubRepo) Update(_ context.Context, image *models.GalleryImage) error {
	s.images[image.ID] = image
	return nil
}

func (s *stubRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(s.images, id)
	s.deleted = append(s.deleted, id)
	return nil
}

type stubMedia struct {
	failFor []string
	deleted []string
}

func (s *stubMedia) PresignUpload(context.Context, media.PresignInput) (*media.PresignOutput, error) {
	return nil, errors.New("not used")
}

func (s *stubMedia) ReadURL(_ enums.MediaBucket, objectPath string, _ time.Duration) (string, error) {
	for _, bad := range s.failFor {
		if bad == objectPath {
			return "", errors.New("sign failed")
		}
	}
	return "https://storage.googleapis.com/cakeshop-gallery/" + objectPath + "?read=1", nil
}

func (s *stubMedia) DeleteObject(_ context.Context, _ enums.MediaBucket, objectPath string) error {
	s.deleted = append(s.deleted, objectPath)
	return nil
}

func seedImage(repo *stubRepo, objectPath string) *models.GalleryImage {
	image := &models.GalleryImage{
		ID:         uuid.New(),
		Title:      "Wedding tier",
		ObjectPath: objectPath,
	}
	repo.images[image.ID] = image
	return image
}

func TestListAttachesSignedURLs(t *testing.T) {
	repo := newStubRepo()
	seedImage(repo, "gallery/a/hero.jpg")
	svc := NewService(repo, &stubMedia{}, nil)

	views, err := svc.List(context.Background())
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(views) != 1 {
		t.Fatalf("expected 1 view, got %d", len(views))
	}
	if views[0].URL == "" {
		t.Fatal("expected a signed url")
	}
}

func TestListSkipsUnsignableImages(t *testing.T) {
	repo := newStubRepo()
	seedImage(repo, "gallery/a/hero.jpg")
	seedImage(repo, "gallery/b/broken.jpg")
	svc := NewService(repo, &stubMedia{failFor: []string{"gallery/b/broken.jpg"}}, nil)

	views, err := svc.List(context.Background())
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(views) != 1 {
		t.Fatalf("unsignable image must be skipped, got %d views", len(views))
	}
}

func TestDeleteRemovesRowAndObject(t *testing.T) {
	repo := newStubRepo()
	image := seedImage(repo, "gallery/a/hero.jpg")
	mediaSvc := &stubMedia{}
	svc := NewService(repo, mediaSvc, nil)

	if err := svc.Delete(context.Background(), image.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if len(repo.deleted) != 1 {
		t.Fatal("expected row deleted")
	}
	if len(mediaSvc.deleted) != 1 || mediaSvc.deleted[0] != "gallery/a/hero.jpg" {
		t.Fatalf("expected object deleted, got %v", mediaSvc.deleted)
	}
}

func TestCreateRequiresTitleAndObjectPath(t *testing.T) {
	svc := NewService(newStubRepo(), &stubMedia{}, nil)

	_, err := svc.Create(context.Background(), UpsertInput{Title: " ", ObjectPath: "gallery/a.jpg"})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}

	_, err = svc.Create(context.Background(), UpsertInput{Title: "Cake", ObjectPath: ""})
	typed = pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}
