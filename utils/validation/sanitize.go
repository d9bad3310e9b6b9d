package validation

import (
	"strings"

	"golang.org/x/net/html"
)

// SanitizeString removes NUL bytes and surrounding whitespace
func SanitizeString(s string) string {
	s = strings.ReplaceAll(s, "\x00", "")
	return strings.TrimSpace(s)
}

// StripTags keeps only the text content of s, dropping HTML markup and script/style bodies
func StripTags(s string) string {
	if !strings.ContainsAny(s, "<>&") {
		return SanitizeString(s)
	}

	var b strings.Builder
	z := html.NewTokenizer(strings.NewReader(s))
	skip := 0
	for {
		switch z.Next() {
		case html.ErrorToken:
			return SanitizeString(b.String())
		case html.StartTagToken:
			if name, _ := z.TagName(); isRawText(name) {
				skip++
			}
		case html.EndTagToken:
			if name, _ := z.TagName(); isRawText(name) && skip > 0 {
				skip--
			}
		case html.TextToken:
			if skip == 0 {
				b.Write(z.Text())
			}
		}
	}
}

func isRawText(tag []byte) bool {
	name := string(tag)
	return name == "script" || name == "style"
}

// CleanText is SanitizeString followed by StripTags, used for every free-text form field
func CleanText(s string) string {
	return StripTags(SanitizeString(s))
}
