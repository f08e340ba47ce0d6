package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/ErlanBelekov/travel-ease/internal/usecase"
	"github.com/gin-gonic/gin"
)

const imageFormField = "image"

type imageUsecaser interface {
	Upload(ctx context.Context, input usecase.UploadImageInput) (string, error)
	Delete(ctx context.Context, imageURL string) error
}

type ImageHandler struct {
	imageUsecase imageUsecaser
	logger       *slog.Logger
}

func NewImageHandler(imageUsecase imageUsecaser, logger *slog.Logger) *ImageHandler {
	return &ImageHandler{imageUsecase: imageUsecase, logger: logger.With("component", "image_handler")}
}

// POST /image-upload (multipart, field "image")
func (h *ImageHandler) Upload(c *gin.Context) {
	var input usecase.UploadImageInput

	fh, err := c.FormFile(imageFormField)
	switch {
	case err == nil:
		f, err := fh.Open()
		if err != nil {
			respondError(c, h.logger, "open uploaded image", err)
			return
		}
		defer f.Close()

		input = usecase.UploadImageInput{
			Filename:    fh.Filename,
			ContentType: fh.Header.Get("Content-Type"),
			Size:        fh.Size,
			Body:        f,
		}
	case errors.Is(err, http.ErrMissingFile), errors.Is(err, http.ErrNotMultipart):
		// Body stays nil; the usecase reports the missing image.
	case errors.As(err, new(*http.MaxBytesError)):
		abortWithMessage(c, http.StatusBadRequest, errImageTooLarge)
		return
	default:
		abortWithMessage(c, http.StatusBadRequest, errInvalidBody)
		return
	}

	imageURL, err := h.imageUsecase.Upload(c.Request.Context(), input)
	if err != nil {
		respondError(c, h.logger, "upload image", err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"imageUrl": imageURL})
}

// DELETE /delete-image?imageUrl=
func (h *ImageHandler) Delete(c *gin.Context) {
	if err := h.imageUsecase.Delete(c.Request.Context(), c.Query("imageUrl")); err != nil {
		respondError(c, h.logger, "delete image", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Image deleted successfully"})
}
