package usecases

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	vo "tgnotify/internal/domain/delivery/valueobjects"
	"tgnotify/internal/infrastructure/telegram"
)

// submission holds sanitized plain-text fields. Body is already Telegram HTML.
type submission struct {
	kind      vo.Kind
	name      string
	email     string
	subject   string
	body      string
	pageURL   string
	userAgent string
	clientIP  string
	metadata  map[string]string
}

var labelCaser = cases.Title(language.English)

// formatMessage renders a submission as a Telegram HTML message.
func formatMessage(s submission, at time.Time) string {
	var b strings.Builder

	fmt.Fprintf(&b, "<b>%s</b>\n\n", s.kind.Title())

	writeField(&b, "Subject", s.subject)
	switch {
	case s.name != "" && s.email != "":
		writeField(&b, "From", fmt.Sprintf("%s <%s>", s.name, s.email))
	case s.name != "":
		writeField(&b, "From", s.name)
	case s.email != "":
		writeField(&b, "From", s.email)
	}
	writeField(&b, "Page", s.pageURL)
	writeField(&b, "User agent", s.userAgent)
	writeField(&b, "IP", s.clientIP)

	b.WriteString("\n")
	b.WriteString(s.body)
	b.WriteString("\n")

	if len(s.metadata) > 0 {
		keys := make([]string, 0, len(s.metadata))
		for k := range s.metadata {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		b.WriteString("\n<b>Details</b>\n")
		for _, k := range keys {
			writeField(&b, metadataLabel(k), s.metadata[k])
		}
	}

	fmt.Fprintf(&b, "\n<i>%s</i>", at.UTC().Format("2006-01-02 15:04:05 MST"))
	return b.String()
}

func writeField(b *strings.Builder, label, value string) {
	if value == "" {
		return
	}
	fmt.Fprintf(b, "<b>%s:</b> %s\n", telegram.EscapeHTML(label), telegram.EscapeHTML(value))
}

// metadataLabel turns "browser_version" into "Browser Version".
func metadataLabel(key string) string {
	return labelCaser.String(strings.NewReplacer("_", " ", "-", " ").Replace(key))
}
