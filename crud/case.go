package crud

import (
	"strings"
	"unicode"
)

// toSnake converts a Go type name to the snake_case namespace used in cache
// keys. Anything that is not a letter or digit becomes a single underscore,
// so pointer markers and generic suffixes never reach the key.
func toSnake(s string) string {
	runes := []rune(s)
	var b strings.Builder
	b.Grow(len(runes) + len(runes)/2)

	pendingSep := false
	for i, r := range runes {
		switch {
		case unicode.IsUpper(r):
			if i > 0 {
				prev := runes[i-1]
				nextLower := i+1 < len(runes) && unicode.IsLower(runes[i+1])
				if unicode.IsLower(prev) || unicode.IsDigit(prev) || (unicode.IsUpper(prev) && nextLower) {
					pendingSep = true
				}
			}
			writeSep(&b, &pendingSep)
			b.WriteRune(unicode.ToLower(r))
		case unicode.IsLower(r):
			writeSep(&b, &pendingSep)
			b.WriteRune(r)
		case unicode.IsDigit(r):
			if i > 0 && !unicode.IsDigit(runes[i-1]) {
				pendingSep = true
			}
			writeSep(&b, &pendingSep)
			b.WriteRune(r)
		default:
			pendingSep = true
		}
	}
	return b.String()
}

func writeSep(b *strings.Builder, pending *bool) {
	if *pending && b.Len() > 0 {
		b.WriteByte('_')
	}
	*pending = false
}

// humanize turns a snake_case namespace into words: "book_author" -> "book author".
func humanize(snake string) string {
	return strings.ReplaceAll(snake, "_", " ")
}

// title upper-cases the first letter of s.
func title(s string) string {
	if s == "" {
		return s
	}
	r := []rune(s)
	r[0] = unicode.ToUpper(r[0])
	return string(r)
}
