package usecase

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/ErlanBelekov/travel-ease/internal/domain"
	"github.com/ErlanBelekov/travel-ease/internal/metrics"
	"github.com/ErlanBelekov/travel-ease/internal/repository"
	"github.com/google/uuid"
)

const (
	msgNoImage          = "No Image Uploaded"
	msgOnlyImages       = "Only images are allowed"
	msgImageTooLarge    = "Image is too large"
	msgImageURLRequired = "ImageUrl parameter is required"
)

type ImageUsecase struct {
	store    repository.ImageStore
	maxBytes int64
	now      func() time.Time
	logger   *slog.Logger
}

func NewImageUsecase(store repository.ImageStore, maxBytes int64, logger *slog.Logger) *ImageUsecase {
	return &ImageUsecase{
		store:    store,
		maxBytes: maxBytes,
		now:      time.Now,
		logger:   logger.With("component", "image_usecase"),
	}
}

type UploadImageInput struct {
	Filename    string
	ContentType string
	Size        int64
	Body        io.Reader // nil when no file was sent
}

// Upload stores the image under a generated name and returns its public URL.
func (u *ImageUsecase) Upload(ctx context.Context, input UploadImageInput) (string, error) {
	if input.Body == nil {
		return "", domain.NewValidationError(msgNoImage)
	}
	if !strings.HasPrefix(strings.ToLower(input.ContentType), "image/") {
		return "", domain.NewValidationError(msgOnlyImages)
	}
	if input.Size > u.maxBytes {
		return "", domain.NewValidationError(msgImageTooLarge)
	}

	name := u.storedName(input.Filename)
	imageURL, err := u.store.Save(ctx, name, input.ContentType, input.Body, input.Size)
	if err != nil {
		return "", fmt.Errorf("save image: %w", err)
	}
	metrics.ImagesUploadedTotal.Inc()
	u.logger.InfoContext(ctx, "image stored", "image", name, "size", input.Size)

	return imageURL, nil
}

// Delete removes the image a URL points at. Only the last path segment of
// the URL is used, so a crafted URL cannot reach outside the image store.
func (u *ImageUsecase) Delete(ctx context.Context, imageURL string) error {
	if strings.TrimSpace(imageURL) == "" {
		return domain.NewValidationError(msgImageURLRequired)
	}

	name := imageNameFromURL(imageURL)
	if name == "" {
		return domain.ErrImageNotFound
	}

	if err := u.store.Delete(ctx, name); err != nil {
		return fmt.Errorf("delete image: %w", err)
	}
	return nil
}

// storedName builds "<unix millis>-<8 hex chars><ext>" from the client filename.
func (u *ImageUsecase) storedName(original string) string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	return fmt.Sprintf("%d-%s%s", u.now().UnixMilli(), suffix, safeExt(original))
}

func safeExt(filename string) string {
	ext := strings.ToLower(filepath.Ext(filepath.Base(filename)))
	if len(ext) < 2 || len(ext) > 10 {
		return ""
	}
	for _, r := range ext[1:] {
		if (r < 'a' || r > 'z') && (r < '0' || r > '9') {
			return ""
		}
	}
	return ext
}

// imageNameFromURL returns the final path segment of an image URL, or "" if
// there is none.
func imageNameFromURL(raw string) string {
	p := raw
	if parsed, err := url.Parse(strings.TrimSpace(raw)); err == nil {
		p = parsed.Path
	}
	p = strings.ReplaceAll(p, "\\", "/")

	name := path.Base(p)
	switch name {
	case ".", "/", "..", "":
		return ""
	}
	return name
}
