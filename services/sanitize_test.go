package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitizerClean(t *testing.T) {
	s := NewSanitizer()

	tests := []struct {
		name string
		in   string
		want string
	}{
		{"script removed with body", `<p>hi</p><script>alert("x")</script>`, `<p>hi</p>`},
		{"allowed formatting kept", `<h2>Title</h2><p><strong>bold</strong> <em>it</em></p>`, `<h2>Title</h2><p><strong>bold</strong> <em>it</em></p>`},
		{"event handlers stripped", `<p onclick="steal()">x</p>`, `<p>x</p>`},
		{"unknown elements unwrapped", `<div><p>x</p></div>`, `<p>x</p>`},
		{"style removed with body", `<style>p{}</style><p>x</p>`, `<p>x</p>`},
		{"iframe dropped", `<iframe src="https://evil.test"></iframe><p>x</p>`, `<p>x</p>`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, s.Clean(tt.in))
		})
	}
}

func TestSanitizerLinks(t *testing.T) {
	s := NewSanitizer()

	assert.NotContains(t, s.Clean(`<a href="javascript:alert(1)">x</a>`), "javascript:")
	assert.Contains(t, s.Clean(`<a href="https://example.com">x</a>`), `href="https://example.com"`)
}
