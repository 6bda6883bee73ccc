// Package markdown renders assistant responses to HTML for the dashboard.
package markdown

import (
	"bytes"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
)

// Service renders GitHub-flavored markdown.
type Service struct {
	md goldmark.Markdown
}

func NewService() *Service {
	return &Service{
		md: goldmark.New(
			goldmark.WithExtensions(extension.GFM),
			goldmark.WithRendererOptions(html.WithHardWraps()),
		),
	}
}

// Render converts markdown source to HTML. On renderer failure the raw source
// is returned so the caller always has something to display.
func (s *Service) Render(source string) string {
	var buf bytes.Buffer
	if err := s.md.Convert([]byte(source), &buf); err != nil {
		return source
	}
	return buf.String()
}
