package card

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

var unsafeFilenameChars = regexp.MustCompile(`[^a-zA-Z0-9]`)

// ExportFilename names the exported PDF, e.g. greeting-birthday-sam-2024-05-01.pdf
func ExportFilename(c Card, at time.Time) string {
	return fmt.Sprintf("greeting-%s-%s-%s.pdf",
		safeSegment(c.Occasion),
		safeSegment(c.RecipientName),
		at.UTC().Format("2006-01-02"),
	)
}

func safeSegment(s string) string {
	return strings.ToLower(unsafeFilenameChars.ReplaceAllString(s, "-"))
}
