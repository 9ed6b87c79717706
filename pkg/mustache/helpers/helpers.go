// Package helpers holds ready-made view values for common template needs:
// number grouping, pluralized counts and view merging.
package helpers

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/benjaminschreck/go-mustache/pkg/mustache"
)

var digitsRe = regexp.MustCompile(`\d+`)

// NumberFormat returns a lambda that renders its section and then groups
// every run of digits in the output with thousands separators. Leading zeros
// are dropped, so "007" becomes "7".
//
//	{{#number_format}}{{visitors}} visitors{{/number_format}}
func NumberFormat() mustache.Lambda {
	return func(text string, render mustache.RenderFunc) (string, error) {
		rendered, err := render(text)
		if err != nil {
			return "", err
		}
		return digitsRe.ReplaceAllStringFunc(rendered, groupThousands), nil
	}
}

func groupThousands(digits string) string {
	digits = strings.TrimLeft(digits, "0")
	if digits == "" {
		return "0"
	}

	lead := len(digits) % 3
	if lead == 0 {
		lead = 3
	}

	var b strings.Builder
	b.Grow(len(digits) + len(digits)/3)
	b.WriteString(digits[:lead])
	for i := lead; i < len(digits); i += 3 {
		b.WriteByte(',')
		b.WriteString(digits[i : i+3])
	}
	return b.String()
}

// Pluralize returns n followed by word, with an "s" appended unless n is 1.
func Pluralize(n int, word string) string {
	if n == 1 {
		return strconv.Itoa(n) + " " + word
	}
	return strconv.Itoa(n) + " " + word + "s"
}

// Merge copies the keys of every view into a new map. Later views win.
func Merge(views ...map[string]any) map[string]any {
	size := 0
	for _, view := range views {
		size += len(view)
	}

	merged := make(map[string]any, size)
	for _, view := range views {
		for k, v := range view {
			merged[k] = v
		}
	}
	return merged
}

// Defaults returns the standard helper set, suitable for
// mustache.WithHelpers.
func Defaults() map[string]any {
	return map[string]any{
		"number_format": NumberFormat(),
	}
}

// WithDefaults merges views and then the standard helpers into one view.
// Helpers take precedence over keys of the same name.
func WithDefaults(views ...map[string]any) map[string]any {
	all := make([]map[string]any, 0, len(views)+1)
	all = append(all, views...)
	return Merge(append(all, Defaults())...)
}
