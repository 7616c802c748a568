package models

import (
	"strconv"
	"strings"
	"unicode"
)

func itoa(n int) string { return strconv.Itoa(n) }

// ExtractHashtags returns the distinct #tags in content in order of first
// appearance, without the leading '#'.
func ExtractHashtags(content string) []string {
	var (
		tags []string
		seen = map[string]struct{}{}
	)
	runes := []rune(content)
	for i := 0; i < len(runes); i++ {
		if runes[i] != '#' {
			continue
		}
		j := i + 1
		for j < len(runes) && isTagRune(runes[j]) {
			j++
		}
		if j > i+1 {
			tag := string(runes[i+1 : j])
			if _, ok := seen[tag]; !ok {
				seen[tag] = struct{}{}
				tags = append(tags, tag)
			}
		}
		i = j - 1
	}
	return tags
}

func isTagRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

// Truncate shortens content to at most max runes, appending "..." when cut.
func Truncate(content string, max int) string {
	runes := []rune(content)
	if max <= 0 || len(runes) <= max {
		return content
	}
	return strings.TrimRightFunc(string(runes[:max]), unicode.IsSpace) + "..."
}
