package media

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/davidquint/raffle-backend/pkg/config"
	"github.com/davidquint/raffle-backend/pkg/enums"
	pkgerrors "github.com/davidquint/raffle-backend/pkg/errors"
	"github.com/davidquint/raffle-backend/pkg/logger"
	"github.com/google/uuid"
)

// extensionByContentType doubles as the upload allow-list.
var extensionByContentType = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
	"image/gif":  ".gif",
}

type objectStore interface {
	Upload(ctx context.Context, bucket, object, contentType string, body io.Reader) error
	PublicURL(bucket, object string) string
}

// Service stores uploaded images and hands back their public URLs.
type Service interface {
	UploadImage(ctx context.Context, input UploadInput) (string, error)
}

// UploadInput describes a single image upload.
type UploadInput struct {
	Kind        enums.MediaKind
	OwnerID     uuid.UUID
	ContentType string
	Size        int64
	Body        io.Reader
}

type service struct {
	store    objectStore
	bucket   string
	maxBytes int64
	logg     *logger.Logger
}

// NewService builds a media service with the required dependencies.
func NewService(store objectStore, gcsCfg config.GCSConfig, mediaCfg config.MediaConfig, logg *logger.Logger) (Service, error) {
	if store == nil {
		return nil, fmt.Errorf("object store required")
	}
	if gcsCfg.BucketName == "" {
		return nil, fmt.Errorf("gcs bucket required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{
		store:    store,
		bucket:   gcsCfg.BucketName,
		maxBytes: mediaCfg.MaxUploadBytes,
		logg:     logg,
	}, nil
}

func (s *service) UploadImage(ctx context.Context, input UploadInput) (string, error) {
	if !input.Kind.IsValid() {
		return "", pkgerrors.Newf(pkgerrors.CodeValidation, "invalid media kind %q", input.Kind)
	}
	if input.OwnerID == uuid.Nil {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "owner id is required")
	}
	if input.Body == nil {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "file body is required")
	}

	contentType := normalizeContentType(input.ContentType)
	ext, ok := extensionByContentType[contentType]
	if !ok {
		return "", pkgerrors.Newf(pkgerrors.CodeValidation, "unsupported content type %q", input.ContentType)
	}
	if s.maxBytes > 0 && input.Size > s.maxBytes {
		return "", pkgerrors.Newf(pkgerrors.CodeValidation, "file exceeds the %d byte limit", s.maxBytes)
	}

	object := path.Join(input.Kind.String(), input.OwnerID.String(), uuid.NewString()+ext)

	body := input.Body
	if s.maxBytes > 0 {
		// Cap the stream as well so a lying Content-Length cannot oversize the object.
		body = io.LimitReader(body, s.maxBytes)
	}

	if err := s.store.Upload(ctx, s.bucket, object, contentType, body); err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "uploading image")
	}

	publicURL := s.store.PublicURL(s.bucket, object)

	logCtx := s.logg.WithField(ctx, "object", object)
	s.logg.Info(logCtx, "image uploaded")

	return publicURL, nil
}

func normalizeContentType(value string) string {
	value = strings.TrimSpace(strings.ToLower(value))
	if idx := strings.IndexByte(value, ';'); idx >= 0 {
		value = strings.TrimSpace(value[:idx])
	}
	return value
}
