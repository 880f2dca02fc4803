package media

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/crumbandco/cakeshop-backend/pkg/config"
	"github.com/crumbandco/cakeshop-backend/pkg/enums"
	pkgerrors "github.com/crumbandco/cakeshop-backend/pkg/errors"
)

type stubGCS struct {
	signedBucket string
	signedObject string
	signedMime   string
	deleted      []string
}

func (s *stubGCS) SignedURL(bucket, object, contentType string, _ time.Duration) (string, error) {
	s.signedBucket = bucket
	s.signedObject = object
	s.signedMime = contentType
	return "https://storage.googleapis.com/" + bucket + "/" + object + "?signed=1", nil
}

func (s *stubGCS) SignedReadURL(bucket, object string, _ time.Duration) (string, error) {
	return "https://storage.googleapis.com/" + bucket + "/" + object + "?read=1", nil
}

func (s *stubGCS) DeleteObject(_ context.Context, bucket, object string) error {
	s.deleted = append(s.deleted, bucket+"/"+object)
	return nil
}

func (s *stubGCS) ProductBucket() string { return "cakeshop-products" }
func (s *stubGCS) GalleryBucket() string { return "cakeshop-gallery" }

func newTestService(t *testing.T, gcs *stubGCS) Service {
	t.Helper()
	svc, err := NewService(gcs, config.MediaConfig{MaxUploadMB: 1})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc
}

func TestPresignUploadSignsProductBucket(t *testing.T) {
	gcs := &stubGCS{}
	svc := newTestService(t, gcs)

	out, err := svc.PresignUpload(context.Background(), PresignInput{
		Bucket:    enums.MediaBucketProduct,
		FileName:  "Velvet Royale.PNG",
		MimeType:  "image/png",
		SizeBytes: 1024,
	})
	if err != nil {
		t.Fatalf("presign: %v", err)
	}
	if gcs.signedBucket != "cakeshop-products" {
		t.Fatalf("expected product bucket, got %s", gcs.signedBucket)
	}
	if !strings.HasPrefix(out.ObjectPath, "products/") {
		t.Fatalf("unexpected object path %s", out.ObjectPath)
	}
	if !strings.HasSuffix(out.ObjectPath, "velvet-royale.png") {
		t.Fatalf("file name must be sanitized, got %s", out.ObjectPath)
	}
	if out.ContentType != "image/png" {
		t.Fatalf("unexpected content type %s", out.ContentType)
	}
}

func TestPresignUploadSignsGalleryBucket(t *testing.T) {
	gcs := &stubGCS{}
	svc := newTestService(t, gcs)

	out, err := svc.PresignUpload(context.Background(), PresignInput{
		Bucket:    enums.MediaBucketGallery,
		FileName:  "wedding-hero.jpg",
		MimeType:  "image/jpeg",
		SizeBytes: 2048,
	})
	if err != nil {
		t.Fatalf("presign: %v", err)
	}
	if gcs.signedBucket != "cakeshop-gallery" {
		t.Fatalf("expected gallery bucket, got %s", gcs.signedBucket)
	}
	if !strings.HasPrefix(out.ObjectPath, "gallery/") {
		t.Fatalf("unexpected object path %s", out.ObjectPath)
	}
}

func TestPresignUploadRejectsNonImages(t *testing.T) {
	svc := newTestService(t, &stubGCS{})

	_, err := svc.PresignUpload(context.Background(), PresignInput{
		Bucket:    enums.MediaBucketProduct,
		FileName:  "menu.pdf",
		MimeType:  "application/pdf",
		SizeBytes: 1024,
	})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestPresignUploadEnforcesSizeLimit(t *testing.T) {
	svc := newTestService(t, &stubGCS{})

	_, err := svc.PresignUpload(context.Background(), PresignInput{
		Bucket:    enums.MediaBucketProduct,
		FileName:  "big.png",
		MimeType:  "image/png",
		SizeBytes: 2 * 1024 * 1024,
	})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestDeleteObjectRoutesToBucket(t *testing.T) {
	gcs := &stubGCS{}
	svc := newTestService(t, gcs)

	if err := svc.DeleteObject(context.Background(), enums.MediaBucketGallery, "gallery/abc/hero.jpg"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if len(gcs.deleted) != 1 || gcs.deleted[0] != "cakeshop-gallery/gallery/abc/hero.jpg" {
		t.Fatalf("unexpected deletions %v", gcs.deleted)
	}
}
