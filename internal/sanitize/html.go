package sanitize

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var (
	// StrictPolicy removes all HTML tags and attributes.
	StrictPolicy = bluemonday.StrictPolicy()

	// UGCPolicy allows basic formatting for event and session descriptions.
	UGCPolicy = bluemonday.UGCPolicy()
)

// Text strips all markup and surrounding whitespace. Entities the policy
// escapes are decoded again since the result is stored and served as plain
// text, so names such as "D'Souza" survive unchanged.
func Text(input string) string {
	return strings.TrimSpace(html.UnescapeString(StrictPolicy.Sanitize(input)))
}

// HTML sanitizes rich descriptions, keeping safe formatting tags.
func HTML(input string) string {
	return strings.TrimSpace(UGCPolicy.Sanitize(input))
}

// Phone keeps digits and a leading plus; everything else typed into a phone
// field is dropped.
func Phone(input string) string {
	input = strings.TrimSpace(input)
	var b strings.Builder
	for i, r := range input {
		switch {
		case r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '+' && i == 0:
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Handle normalises an Instagram handle to its bare lower-case form.
func Handle(input string) string {
	input = Text(input)
	input = strings.TrimPrefix(input, "https://www.instagram.com/")
	input = strings.TrimPrefix(input, "https://instagram.com/")
	input = strings.Trim(input, "@/ ")
	return strings.ToLower(input)
}
