package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/lumi/backend/internal/domain"
)

const (
	maxReferenceLength = 1800

	msgUserImageRequired   = "A valid user image data URL is required."
	msgOutfitImageRequired = "A valid outfit image is required."
)

// TryOnService composes a virtual try-on prompt for the image model
type TryOnService struct {
	generator domain.ImageGenerator
}

// NewTryOnService creates a new try-on service
func NewTryOnService(generator domain.ImageGenerator) *TryOnService {
	return &TryOnService{generator: generator}
}

// Generate validates both reference images and asks the image model for a render
func (s *TryOnService) Generate(ctx context.Context, request domain.TryOnRequest) (*domain.TryOnResponse, error) {
	if !isImageDataURL(request.UserImage) {
		return nil, domain.NewValidationError(msgUserImageRequired)
	}
	if !isImageDataURL(request.OutfitImage) && !isHTTPURL(request.OutfitImage) {
		return nil, domain.NewValidationError(msgOutfitImageRequired)
	}

	imageURL, err := s.generator.GenerateImage(ctx, BuildTryOnPrompt(request.UserImage, request.OutfitImage))
	if err != nil {
		return nil, fmt.Errorf("virtual try-on: %w", err)
	}

	return &domain.TryOnResponse{ImageURL: imageURL, Source: SourcePollinations}, nil
}

// BuildTryOnPrompt describes the try-on render with both references inlined
func BuildTryOnPrompt(userImage, outfitImage string) string {
	return strings.Join([]string{
		"Photorealistic fashion virtual try-on.",
		"Use the first reference as the person to dress and the second reference as the outfit.",
		"User reference photo (base64): " + truncateReference(userImage),
		"Outfit reference photo (base64): " + truncateReference(outfitImage),
		"Blend them naturally with accurate lighting, fabric drape, and proportions.",
		"Full body, neutral studio backdrop, cinematic lighting, 4K.",
	}, " ")
}

// truncateReference keeps the image URL prompt within upstream URL limits
func truncateReference(value string) string {
	if len(value) <= maxReferenceLength {
		return value
	}
	return value[:maxReferenceLength] + "..."
}

func isImageDataURL(value string) bool {
	return strings.HasPrefix(value, "data:image")
}

func isHTTPURL(value string) bool {
	return strings.HasPrefix(value, "https://") || strings.HasPrefix(value, "http://")
}
