package transcript

import "strings"

const (
	DefaultHighlightMaxChars = 3000
	minHighlightWords        = 6
)

var highlightKeywords = []string{
	"step", "important", "remember", "key", "mistake",
	"note", "first", "second", "finally", "example",
}

// Highlights keeps segments of at least six words that mention one of the
// highlight keywords. Selection stops once the collected text reaches maxChars.
func Highlights(segments []Segment, maxChars int) []Segment {
	if maxChars <= 0 {
		maxChars = DefaultHighlightMaxChars
	}

	var (
		out   []Segment
		total int
	)
	for _, s := range segments {
		text := strings.TrimSpace(s.Text)
		if len(strings.Fields(text)) < minHighlightWords {
			continue
		}
		if !hasKeyword(strings.ToLower(text)) {
			continue
		}
		s.Text = text
		out = append(out, s)
		total += len(text) + 1
		if total >= maxChars {
			break
		}
	}
	return out
}

func hasKeyword(lower string) bool {
	for _, k := range highlightKeywords {
		if strings.Contains(lower, k) {
			return true
		}
	}
	return false
}
