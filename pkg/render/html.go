// Package render converts the small markdown subset the assistant is asked to
// use into Telegram HTML.
package render

import (
	"regexp"
	"strings"
)

var boldSpan = regexp.MustCompile(`\*\*(.+?)\*\*`)

var escaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")

// ToHTML turns every **X** span into <b>X</b>. Text without such spans is
// returned unchanged and ok is false. Otherwise everything outside the
// inserted tags is escaped, so the reply cannot smuggle its own markup.
func ToHTML(raw string) (out string, ok bool) {
	matches := boldSpan.FindAllStringSubmatchIndex(raw, -1)
	if len(matches) == 0 {
		return raw, false
	}

	var b strings.Builder
	b.Grow(len(raw) + len(matches)*8)

	last := 0
	for _, m := range matches {
		b.WriteString(escaper.Replace(raw[last:m[0]]))
		b.WriteString("<b>")
		b.WriteString(escaper.Replace(raw[m[2]:m[3]]))
		b.WriteString("</b>")
		last = m[1]
	}
	b.WriteString(escaper.Replace(raw[last:]))

	return b.String(), true
}
