// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package namecheck

import (
	"log/slog"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	goaway "github.com/TwiN/go-away"
)

// MaxLength is the longest dedication name accepted, in characters.
const MaxLength = 30

// 4+ consecutive word characters that are not vowels
var consonantRun = regexp.MustCompile(`(?i)[^aeiouy\W]{4,}`)

// profanities holds go-away's word lists, matched against whole words only
// so names like "Hancock" or "Dickens" pass.
var profanities = func() map[string]struct{} {
	words := make(map[string]struct{}, len(goaway.DefaultProfanities)+len(goaway.DefaultFalseNegatives))
	for _, list := range [][]string{goaway.DefaultProfanities, goaway.DefaultFalseNegatives} {
		for _, w := range list {
			words[strings.ToLower(w)] = struct{}{}
		}
	}
	return words
}()

// Sanitize returns the trimmed dedication name, or "" (anonymous) when the
// name is profane, looks like gibberish or is too long.
func Sanitize(raw string) string {
	name := strings.TrimSpace(raw)
	if name == "" {
		return ""
	}

	if reason := flag(name); reason != "" {
		slog.Warn("dedication name flagged and sanitized", "reason", reason)
		return ""
	}
	return name
}

func flag(name string) string {
	switch {
	case utf8.RuneCountInString(name) > MaxLength:
		return "too long"
	case consonantRun.MatchString(name):
		return "consonant run"
	case hasRepeat(name, 5):
		return "repeated character"
	case hasProfaneWord(name):
		return "profanity"
	}
	return ""
}

func hasProfaneWord(name string) bool {
	words := strings.FieldsFunc(strings.ToLower(name), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	for _, w := range words {
		if _, ok := profanities[w]; ok {
			return true
		}
	}
	return false
}

// hasRepeat reports whether any character occurs n or more times in a row.
func hasRepeat(s string, n int) bool {
	var prev rune
	count := 0
	for i, r := range s {
		if i > 0 && r == prev {
			count++
		} else {
			count = 1
		}
		if count >= n {
			return true
		}
		prev = r
	}
	return false
}
