package ai

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/greetingsmith/backend/internal/domain/card"
)

// Tier names the step of the extraction chain that produced a candidate
type Tier int

const (
	// TierJSON is the whole reply parsed as a JSON object
	TierJSON Tier = iota + 1
	// TierEmbeddedJSON is a JSON object found inside surrounding prose
	TierEmbeddedJSON
	// TierLines takes the first non-brace line as headline and the rest as line
	TierLines
	// TierTemplate is the fixed greeting used when nothing else works
	TierTemplate
)

func (t Tier) String() string {
	switch t {
	case TierJSON:
		return "json"
	case TierEmbeddedJSON:
		return "embedded_json"
	case TierLines:
		return "lines"
	case TierTemplate:
		return "template"
	}
	return "unknown"
}

var (
	codeFence      = regexp.MustCompile("```(?:json)?")
	embeddedObject = regexp.MustCompile(`\{[^}]*"headline"[^}]*\}`)
)

const (
	templateLine     = "Wishing you joy, happiness, and wonderful memories on your special day."
	linesDefaultLine = "Wishing you joy and celebration on your special day."
)

// templateCandidate is the last-resort greeting
func templateCandidate(occasion, name string) card.Candidate {
	return card.Candidate{
		Headline: fmt.Sprintf("Happy %s, %s!", occasion, name),
		Line:     templateLine,
	}
}

// extractCandidate runs the model reply through the fallback chain. It
// never fails: the final tier is a fixed template.
func extractCandidate(reply, occasion, name string) (card.Candidate, Tier) {
	clean := strings.TrimSpace(codeFence.ReplaceAllString(reply, ""))

	if c, ok := decodeCandidate(clean); ok {
		return c, TierJSON
	}
	if m := embeddedObject.FindString(clean); m != "" {
		if c, ok := decodeCandidate(m); ok {
			return c, TierEmbeddedJSON
		}
	}
	if c, ok := candidateFromLines(clean, occasion, name); ok {
		return c, TierLines
	}
	return templateCandidate(occasion, name), TierTemplate
}

func decodeCandidate(s string) (card.Candidate, bool) {
	var c card.Candidate
	if err := json.Unmarshal([]byte(s), &c); err != nil {
		return card.Candidate{}, false
	}
	c.Headline = strings.TrimSpace(c.Headline)
	c.Line = strings.TrimSpace(c.Line)
	return c, c.Headline != "" && c.Line != ""
}

func candidateFromLines(s, occasion, name string) (card.Candidate, bool) {
	var lines []string
	for _, l := range strings.Split(s, "\n") {
		l = strings.TrimSpace(l)
		if l == "" || strings.ContainsAny(l, "{}") {
			continue
		}
		lines = append(lines, l)
	}
	if len(lines) == 0 {
		return card.Candidate{}, false
	}
	c := card.Candidate{
		Headline: lines[0],
		Line:     linesDefaultLine,
	}
	if len(lines) > 1 {
		c.Line = strings.Join(lines[1:], " ")
	}
	return c, true
}
