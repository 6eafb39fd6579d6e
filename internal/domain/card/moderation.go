package card

import (
	"strings"

	"github.com/greetingsmith/backend/internal/domain/shared"
)

// Denylist is a case-insensitive substring filter. It is a word list, not a classifier.
type Denylist []string

var (
	// TextDenylist screens text generation input and exported card copy.
	TextDenylist = Denylist{"hate", "violence", "death", "kill", "harm"}
	// ImageDenylist screens the occasion sent to image generation.
	ImageDenylist = Denylist{"nude", "violence", "hate", "weapon"}
)

var (
	ErrContentRejected     = shared.NewDomainError(shared.CodeContentRejected, "Content contains inappropriate language")
	ErrCardContentRejected = shared.NewDomainError(shared.CodeContentRejected, "Card content contains inappropriate language")
)

// Match returns the first listed word found in the space-joined fields.
func (d Denylist) Match(fields ...string) (string, bool) {
	text := strings.ToLower(strings.Join(fields, " "))
	for _, word := range d {
		if strings.Contains(text, word) {
			return word, true
		}
	}
	return "", false
}
