package mustache

import "strings"

// EscapeFunc converts rendered variable text before it is written. It is
// applied to {{name}} tags only; {{{name}}} and {{&name}} are never escaped.
type EscapeFunc func(string) string

var htmlReplacer = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&#39;",
	"/", "&#x2F;",
)

// EscapeHTML is the default EscapeFunc.
func EscapeHTML(s string) string {
	return htmlReplacer.Replace(s)
}

// NoEscape writes variables verbatim, for templates that do not produce HTML.
func NoEscape(s string) string {
	return s
}
