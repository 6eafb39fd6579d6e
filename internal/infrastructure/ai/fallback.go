package ai

import (
	"github.com/greetingsmith/backend/internal/domain/generation"
	"go.uber.org/zap"
)

func withDefaultSize(req generation.ImageRequest) generation.ImageRequest {
	if req.OutputSize.Width <= 0 || req.OutputSize.Height <= 0 {
		req.OutputSize = generation.DefaultOutputSize
	}
	return req
}

// placeholderImage renders the local artwork, compositing the user's photo
// onto it when it decodes.
func placeholderImage(req generation.ImageRequest, mode generation.Mode, logger *zap.Logger) (*generation.ImageResult, error) {
	photo, err := decodePhoto(req.Photo)
	if err != nil {
		logger.Warn("Photo could not be decoded, rendering placeholder without it", zap.Error(err))
	}
	encoded, err := encodePNGBase64(renderPlaceholder(req, photo))
	if err != nil {
		return nil, err
	}
	return &generation.ImageResult{ImagePngBase64: encoded, Mode: mode}, nil
}
