package wpforms

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var textPolicy = bluemonday.StrictPolicy()

// sanitizeText strips markup and collapses whitespace, like
// sanitize_text_field. Entities are decoded so "&" stays "&".
func sanitizeText(s string) string {
	s = textPolicy.Sanitize(s)
	s = html.UnescapeString(s)
	return strings.Join(strings.Fields(s), " ")
}
