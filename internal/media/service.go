package media

import (
	"context"
	"fmt"
	"mime"
	"path"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"

	"github.com/crumbandco/cakeshop-backend/pkg/config"
	"github.com/crumbandco/cakeshop-backend/pkg/enums"
	pkgerrors "github.com/crumbandco/cakeshop-backend/pkg/errors"
)

const defaultUploadTTL = 15 * time.Minute

var allowedImageMimes = []string{"image/png", "image/jpeg", "image/webp", "image/gif"}

type gcsClient interface {
	SignedURL(bucket, object, contentType string, expires time.Duration) (string, error)
	SignedReadURL(bucket, object string, expires time.Duration) (string, error)
	DeleteObject(ctx context.Context, bucket, object string) error
	ProductBucket() string
	GalleryBucket() string
}

// PresignInput models the payload required to request an upload URL.
type PresignInput struct {
	Bucket    enums.MediaBucket `json:"bucket"`
	FileName  string            `json:"file_name"`
	MimeType  string            `json:"mime_type"`
	SizeBytes int64             `json:"size_bytes"`
}

// PresignOutput contains the data the client needs to PUT the object.
type PresignOutput struct {
	ObjectPath   string    `json:"object_path"`
	SignedPUTURL string    `json:"signed_put_url"`
	ContentType  string    `json:"content_type"`
	ExpiresAt    time.Time `json:"expires_at"`
}

// Service exposes presign and delete semantics over the two image buckets.
type Service interface {
	PresignUpload(ctx context.Context, input PresignInput) (*PresignOutput, error)
	ReadURL(bucket enums.MediaBucket, objectPath string, ttl time.Duration) (string, error)
	DeleteObject(ctx context.Context, bucket enums.MediaBucket, objectPath string) error
}

type service struct {
	gcs       gcsClient
	uploadTTL time.Duration
	maxBytes  int64
}

// NewService constructs a media service backed by the provided GCS signer.
func NewService(gcs gcsClient, cfg config.MediaConfig) (Service, error) {
	if gcs == nil {
		return nil, fmt.Errorf("gcs client required")
	}
	maxMB := cfg.MaxUploadMB
	if maxMB <= 0 {
		maxMB = 20
	}
	return &service{
		gcs:       gcs,
		uploadTTL: defaultUploadTTL,
		maxBytes:  int64(maxMB) * 1024 * 1024,
	}, nil
}

func (s *service) PresignUpload(ctx context.Context, input PresignInput) (*PresignOutput, error) {
	if !input.Bucket.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid media bucket")
	}

	fileName := strings.TrimSpace(input.FileName)
	if fileName == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "file_name is required")
	}
	if input.SizeBytes <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "size_bytes must be positive")
	}
	if input.SizeBytes > s.maxBytes {
		return nil, pkgerrors.New(pkgerrors.CodeValidation,
			fmt.Sprintf("size_bytes must not exceed %d bytes", s.maxBytes))
	}

	mimeType, err := sniffMimeType(input.MimeType)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, err.Error())
	}
	if !isAllowedImage(mimeType) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "mime_type must be an image")
	}

	objectPath := buildObjectPath(input.Bucket, uuid.New(), fileName)
	signedURL, err := s.gcs.SignedURL(s.bucketName(input.Bucket), objectPath, mimeType, s.uploadTTL)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "sign upload url")
	}

	return &PresignOutput{
		ObjectPath:   objectPath,
		SignedPUTURL: signedURL,
		ContentType:  mimeType,
		ExpiresAt:    time.Now().Add(s.uploadTTL),
	}, nil
}

func (s *service) ReadURL(bucket enums.MediaBucket, objectPath string, ttl time.Duration) (string, error) {
	if !bucket.IsValid() {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "invalid media bucket")
	}
	if ttl <= 0 {
		ttl = defaultUploadTTL
	}
	url, err := s.gcs.SignedReadURL(s.bucketName(bucket), objectPath, ttl)
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "sign read url")
	}
	return url, nil
}

func (s *service) DeleteObject(ctx context.Context, bucket enums.MediaBucket, objectPath string) error {
	if !bucket.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, "invalid media bucket")
	}
	if strings.TrimSpace(objectPath) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "object_path is required")
	}
	if err := s.gcs.DeleteObject(ctx, s.bucketName(bucket), objectPath); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete object")
	}
	return nil
}

func (s *service) bucketName(bucket enums.MediaBucket) string {
	if bucket == enums.MediaBucketGallery {
		return s.gcs.GalleryBucket()
	}
	return s.gcs.ProductBucket()
}

func buildObjectPath(bucket enums.MediaBucket, id uuid.UUID, fileName string) string {
	prefix := "products"
	if bucket == enums.MediaBucketGallery {
		prefix = "gallery"
	}
	return path.Join(prefix, id.String(), sanitizeFileName(fileName))
}

func sanitizeFileName(name string) string {
	base := path.Base(strings.ReplaceAll(name, "\\", "/"))
	var b strings.Builder
	for _, r := range base {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(unicode.ToLower(r))
		case r == '.' || r == '-' || r == '_':
			b.WriteRune(r)
		default:
			b.WriteRune('-')
		}
	}
	cleaned := strings.Trim(b.String(), "-.")
	if cleaned == "" {
		return "upload"
	}
	return cleaned
}

func sniffMimeType(value string) (string, error) {
	clean := strings.TrimSpace(value)
	if clean == "" {
		return "", fmt.Errorf("mime_type is required")
	}
	mediaType, _, err := mime.ParseMediaType(clean)
	if err != nil {
		return "", fmt.Errorf("mime_type invalid: %v", err)
	}
	return strings.ToLower(mediaType), nil
}

func isAllowedImage(mimeType string) bool {
	for _, allowed := range allowedImageMimes {
		if allowed == mimeType {
			return true
		}
	}
	return false
}
