package card

// DefaultMaxChars bounds headline plus line when a request names no limit.
const DefaultMaxChars = 220

// headlineShare is the fraction of the budget given to the headline when trimming.
const headlineShare = 0.4

const ellipsis = "..."

// Candidate is one generated headline/line pair
type Candidate struct {
	Headline string `json:"headline"`
	Line     string `json:"line"`
}

// Length is the combined character count
func (c Candidate) Length() int {
	return len([]rune(c.Headline)) + len([]rune(c.Line))
}

// Fit trims an oversized candidate to maxChars. The headline gets 40% of the
// budget and the line the rest; each over-limit part is cut and suffixed
// with "...". Candidates already within budget are returned unchanged.
func (c Candidate) Fit(maxChars int) Candidate {
	if maxChars <= 0 || c.Length() <= maxChars {
		return c
	}
	headlineLimit := int(float64(maxChars) * headlineShare)
	lineLimit := maxChars - headlineLimit
	return Candidate{
		Headline: truncate(c.Headline, headlineLimit),
		Line:     truncate(c.Line, lineLimit),
	}
}

func truncate(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	keep := limit - len(ellipsis)
	if keep < 0 {
		keep = 0
	}
	return string(runes[:keep]) + ellipsis
}
