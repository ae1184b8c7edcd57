package usecase

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/lumi/backend/internal/domain"
)

// Upstream labels reported in proxy responses
const (
	SourcePollinations = "pollinations"
	SourceFirecrawl    = "firecrawl"
)

const msgPromptRequired = "A prompt string is required."

var (
	leadingBulletRegex = regexp.MustCompile(`^[-•\d.)\s]+`)
	styleBriefRegex    = regexp.MustCompile(`(?i)^style brief:?\s*`)
	lookLabelRegex     = regexp.MustCompile(`(?i)^look\s*\d[:-]?\s*`)
)

// StyleService turns a shopper's prompt into a short style brief using a text model
type StyleService struct {
	generator domain.TextGenerator
}

// NewStyleService creates a new style service
func NewStyleService(generator domain.TextGenerator) *StyleService {
	return &StyleService{generator: generator}
}

// Generate forwards the prompt once and returns the trimmed model output
func (s *StyleService) Generate(ctx context.Context, prompt string) (*domain.StyleResponse, error) {
	if prompt == "" {
		return nil, domain.NewValidationError(msgPromptRequired)
	}

	text, err := s.generator.GenerateText(ctx, BuildStylePrompt(prompt))
	if err != nil {
		return nil, fmt.Errorf("style generation: %w", err)
	}

	message := strings.TrimSpace(text)
	if message == "" {
		return nil, domain.ErrEmptyUpstreamResponse
	}

	return &domain.StyleResponse{
		Response: message,
		Source:   SourcePollinations,
		Lines:    NormalizeStyleResponse(message),
	}, nil
}

// BuildStylePrompt wraps the shopper's prompt in the copywriter instructions
func BuildStylePrompt(userPrompt string) string {
	return strings.Join([]string{
		"You are a concise, upbeat fashion AI copywriter.",
		"Return crisp Markdown with this exact structure:",
		"Style Brief: <one sentence summary>",
		"- Look 1: <12-18 words with pieces and vibe>",
		"- Look 2: <12-18 words with pieces and vibe>",
		"- Look 3: <12-18 words with pieces and vibe>",
		"Keep language modern (think 2024 runways, TikTok street style, emerging designers) and avoid extra paragraphs.",
		`User prompt: "` + userPrompt + `"`,
	}, "\n")
}

// NormalizeStyleResponse splits model output into display lines, dropping
// bullets and numbering and relabelling "Style Brief" and "Look N" lines.
func NormalizeStyleResponse(text string) []string {
	var lines []string
	for _, raw := range strings.Split(text, "\n") {
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}

		line = leadingBulletRegex.ReplaceAllString(line, "")
		switch {
		case styleBriefRegex.MatchString(line):
			line = "Style Brief: " + styleBriefRegex.ReplaceAllString(line, "")
		case lookLabelRegex.MatchString(line):
			line = "Look: " + lookLabelRegex.ReplaceAllString(line, "")
		}
		lines = append(lines, line)
	}
	return lines
}
