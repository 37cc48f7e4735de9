package telegram

import "strings"

var htmlReplacer = strings.NewReplacer(
	`&`, `&amp;`,
	`<`, `&lt;`,
	`>`, `&gt;`,
)

// EscapeHTML escapes the three characters Telegram's HTML parse mode reserves.
// Quotes are left alone; they are only special inside attribute values.
func EscapeHTML(s string) string {
	return htmlReplacer.Replace(s)
}
