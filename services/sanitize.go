package services

import (
	"github.com/microcosm-cc/bluemonday"
)

// Sanitizer reduces user supplied HTML to the tags the blog editor produces.
type Sanitizer struct {
	policy *bluemonday.Policy
}

func NewSanitizer() *Sanitizer {
	p := bluemonday.NewPolicy()
	p.AllowElements("h1", "h2", "h3", "p", "b", "i", "u", "a", "ul", "ol", "li", "br", "strong", "em", "span")
	p.AllowAttrs("href", "target").OnElements("a")
	p.AllowStandardURLs()
	p.AllowAttrs("class", "contenteditable").OnElements("span")
	return &Sanitizer{policy: p}
}

// Clean strips every element and attribute outside the allow-list. Script and
// style elements are dropped together with their contents.
func (s *Sanitizer) Clean(content string) string {
	return s.policy.Sanitize(content)
}
