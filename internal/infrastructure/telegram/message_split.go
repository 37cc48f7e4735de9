package telegram

import (
	"strings"
	"unicode/utf8"
)

const (
	// maxMessageLength is Telegram's sendMessage limit, counted in runes.
	maxMessageLength = 4096
	// maxEntityLength covers the longest entity the escaper or renderer emits, e.g. "&#x1F600;".
	maxEntityLength = 10
)

// splitMessage cuts HTML text into chunks of at most limit runes. It prefers a
// paragraph break, then a line break, and hard-cuts on a rune boundary only when
// neither exists. A hard cut never lands inside a tag or an entity, and tags
// still open at a cut are closed at the end of the chunk and reopened at the
// start of the next one, so every chunk parses on its own.
func splitMessage(text string, limit int) []string {
	if limit <= 0 {
		limit = maxMessageLength
	}

	var chunks []string
	for utf8.RuneCountInString(text) > limit {
		var chunk string
		chunk, text = nextChunk(text, limit)
		chunks = append(chunks, chunk)
	}
	if text != "" || len(chunks) == 0 {
		chunks = append(chunks, text)
	}
	return chunks
}

// nextChunk splits off the head of text. The budget shrinks until the head
// plus the closing tags it needs fits in limit.
func nextChunk(text string, limit int) (string, string) {
	budget := limit
	for {
		cut := cutPoint(text, budget)
		head, rest := text[:cut], text[cut:]

		open := openTags(head)
		if len(open) == 0 {
			return head, rest
		}

		closing := closingTags(open)
		over := utf8.RuneCountInString(head) + utf8.RuneCountInString(closing) - limit
		if over <= 0 || budget-over < 1 {
			return head + closing, openingTags(open) + rest
		}
		budget -= over
	}
}

// cutPoint returns the byte offset at which to end the next chunk.
func cutPoint(text string, limit int) int {
	hard := runeByteOffset(text, limit)
	window := text[:hard]

	if idx := strings.LastIndex(window, "\n\n"); idx > 0 {
		return idx + 2
	}
	if idx := strings.LastIndexByte(window, '\n'); idx > 0 {
		return idx + 1
	}
	return safeCut(window)
}

// safeCut backs the end of window off to before a tag or entity it would split.
// Escaped text carries '<' and '&' only as markup, so the last unterminated one
// marks the split.
func safeCut(window string) int {
	cut := len(window)
	if lt := strings.LastIndexByte(window, '<'); lt > 0 && lt > strings.LastIndexByte(window, '>') {
		cut = lt
	}
	if amp := strings.LastIndexByte(window[:cut], '&'); amp > 0 &&
		cut-amp <= maxEntityLength && !strings.Contains(window[amp:cut], ";") {
		cut = amp
	}
	return cut
}

// runeByteOffset returns the byte offset of the n-th rune in s, or len(s).
func runeByteOffset(s string, n int) int {
	offset := 0
	for i := 0; i < n && offset < len(s); i++ {
		_, size := utf8.DecodeRuneInString(s[offset:])
		offset += size
	}
	return offset
}

type openTag struct {
	name string
	raw  string
}

// openTags returns the elements opened in s and not closed by its end, outermost first.
func openTags(s string) []openTag {
	var stack []openTag
	for {
		start := strings.IndexByte(s, '<')
		if start < 0 {
			return stack
		}
		end := strings.IndexByte(s[start:], '>')
		if end < 0 {
			return stack
		}
		raw := s[start : start+end+1]
		s = s[start+end+1:]

		switch {
		case strings.HasPrefix(raw, "</"):
			name := tagName(raw[2:])
			for i := len(stack) - 1; i >= 0; i-- {
				if stack[i].name == name {
					stack = stack[:i]
					break
				}
			}
		case strings.HasSuffix(raw, "/>"):
		default:
			stack = append(stack, openTag{name: tagName(raw[1:]), raw: raw})
		}
	}
}

func tagName(s string) string {
	if i := strings.IndexAny(s, " \t\n/>"); i >= 0 {
		s = s[:i]
	}
	return strings.ToLower(s)
}

func closingTags(open []openTag) string {
	var b strings.Builder
	for i := len(open) - 1; i >= 0; i-- {
		b.WriteString("</" + open[i].name + ">")
	}
	return b.String()
}

func openingTags(open []openTag) string {
	var b strings.Builder
	for _, t := range open {
		b.WriteString(t.raw)
	}
	return b.String()
}
