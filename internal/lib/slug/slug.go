// Package slug строит человекочитаемые идентификаторы видео из заголовка.
package slug

import (
	"regexp"
	"strings"
)

var whitespace = regexp.MustCompile(`\s+`)

// Make приводит заголовок к нижнему регистру и заменяет каждую
// последовательность пробельных символов одним дефисом.
// Остальные символы сохраняются как есть.
func Make(title string) string {
	return whitespace.ReplaceAllString(strings.ToLower(title), "-")
}
