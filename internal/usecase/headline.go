package usecase

import (
	"strings"

	"github.com/lumi/backend/internal/domain"
)

// excerptRule maps headline keywords to a canned styling sentence
type excerptRule struct {
	keywords []string
	excerpt  string
}

// excerptRules are evaluated in order; the first rule with a matching keyword wins
var excerptRules = []excerptRule{
	{[]string{"denim"}, "Ground it with barrel jeans, polished loafers, and ribbed tanks."},
	{[]string{"sheer"}, "Layer gauzy panels over sleek bodysuits for contrast."},
	{[]string{"maxi", "dress"}, "Balance the drama with flat sandals, sculptural cuffs, and a structured bag."},
	{[]string{"suit", "tailor"}, "Sharpen it with boxy shoulders, puddle trousers, and a sleek belt."},
	{[]string{"metal", "silver", "gold"}, "Add high-shine accessories and keep the base monochrome for impact."},
	{[]string{"coastal", "vacation", "resort"}, "Stick to airy knits, raffia accessories, and powdery blues."},
	{[]string{"sport", "athleisure", "tennis"}, "Mix performance fabrics with tailored layers to elevate the vibe."},
	{[]string{"leather"}, "Offset the toughness with silk camisoles and barely-there heels."},
}

const defaultExcerpt = "Translate it into tonal layers, directional accessories, and confident styling."

// DescribeHeadline picks a one-line styling excerpt for a headline by substring keyword match
func DescribeHeadline(headline string) string {
	lower := strings.ToLower(headline)
	for _, rule := range excerptRules {
		for _, keyword := range rule.keywords {
			if strings.Contains(lower, keyword) {
				return rule.excerpt
			}
		}
	}
	return defaultExcerpt
}

// HeadlinesToExamples pairs each headline with its source and excerpt
func HeadlinesToExamples(headlines []string, source, link string) []domain.TrendExample {
	examples := make([]domain.TrendExample, 0, len(headlines))
	for _, headline := range headlines {
		examples = append(examples, domain.TrendExample{
			Title:   headline,
			Source:  source,
			Excerpt: DescribeHeadline(headline),
			Link:    link,
		})
	}
	return examples
}
