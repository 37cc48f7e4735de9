package markdown

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToTelegramHTML(t *testing.T) {
	svc := NewMarkdownService()

	t.Run("keeps inline formatting", func(t *testing.T) {
		out, err := svc.ToTelegramHTML("**bold** and *italic*")
		require.NoError(t, err)
		assert.Equal(t, "<strong>bold</strong> and <em>italic</em>", out)
	})

	t.Run("drops block tags", func(t *testing.T) {
		out, err := svc.ToTelegramHTML("# Title\n\nbody")
		require.NoError(t, err)
		assert.NotContains(t, out, "<h1")
		assert.NotContains(t, out, "<p>")
		assert.Contains(t, out, "Title")
		assert.Contains(t, out, "body")
	})

	t.Run("keeps links", func(t *testing.T) {
		out, err := svc.ToTelegramHTML("[site](https://example.com)")
		require.NoError(t, err)
		assert.Contains(t, out, `href="https://example.com"`)
		assert.Contains(t, out, ">site</a>")
	})

	t.Run("removes raw html", func(t *testing.T) {
		out, err := svc.ToTelegramHTML("hi <script>alert(1)</script>")
		require.NoError(t, err)
		assert.NotContains(t, out, "<script")
	})

	t.Run("drops javascript urls", func(t *testing.T) {
		out, err := svc.ToTelegramHTML("[x](javascript:alert(1))")
		require.NoError(t, err)
		assert.NotContains(t, out, "javascript:")
	})
}

func TestStripTags(t *testing.T) {
	svc := NewMarkdownService()

	assert.Equal(t, "Hello world", svc.StripTags("Hello <b>world</b>"))
	assert.Equal(t, "a & b", svc.StripTags("a & b"))
	assert.Equal(t, "plain text", svc.StripTags("plain text"))
	assert.NotContains(t, svc.StripTags(`<img src=x onerror="alert(1)">`), "onerror")
}
