package markdown

import (
	"bytes"
	"fmt"
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	goldhtml "github.com/yuin/goldmark/renderer/html"
)

// MarkdownService turns user text into something safe for Telegram's HTML parse mode.
type MarkdownService interface {
	// ToTelegramHTML renders markdown and keeps only the tags Telegram accepts.
	ToTelegramHTML(markdown string) (string, error)
	// StripTags removes all markup and returns plain, unescaped text.
	StripTags(s string) string
}

type markdownServiceImpl struct {
	md       goldmark.Markdown
	telegram *bluemonday.Policy
	strict   *bluemonday.Policy
}

func NewMarkdownService() MarkdownService {
	md := goldmark.New(
		goldmark.WithExtensions(
			extension.Strikethrough,
			extension.Linkify,
		),
		goldmark.WithRendererOptions(
			goldhtml.WithHardWraps(),
			goldhtml.WithXHTML(),
		),
	)

	// Telegram rejects any tag outside this set.
	policy := bluemonday.NewPolicy()
	policy.AllowElements("b", "strong", "i", "em", "u", "ins", "s", "strike", "del", "code", "pre", "blockquote")
	policy.AllowAttrs("href").OnElements("a")
	policy.RequireParseableURLs(true)
	policy.AllowURLSchemes("http", "https", "mailto", "tg")

	return &markdownServiceImpl{
		md:       md,
		telegram: policy,
		strict:   bluemonday.StrictPolicy(),
	}
}

func (s *markdownServiceImpl) ToTelegramHTML(markdown string) (string, error) {
	var buf bytes.Buffer
	if err := s.md.Convert([]byte(markdown), &buf); err != nil {
		return "", fmt.Errorf("failed to convert markdown to HTML: %w", err)
	}
	return strings.TrimSpace(s.telegram.Sanitize(buf.String())), nil
}

func (s *markdownServiceImpl) StripTags(text string) string {
	return html.UnescapeString(s.strict.Sanitize(text))
}
