// Package sanitize maps arbitrary titles and URL segments to safe file names.
package sanitize

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

// DefaultMaxLength is the byte limit applied when Filename is given maxLength <= 0.
const DefaultMaxLength = 255

const fallbackName = "untitled"

// illegalReplacer maps characters that are unsafe on common filesystems to underscores.
var illegalReplacer = strings.NewReplacer(
	"\\", "_",
	"/", "_",
	"*", "_",
	"?", "_",
	":", "_",
	"\"", "_",
	"<", "_",
	">", "_",
	"|", "_",
)

// Filename returns a filesystem-safe name derived from raw that is at most
// maxLength bytes long. Illegal characters become underscores, whitespace and
// underscore runs collapse to a single underscore, and surrounding spaces and
// dots are trimmed. When the name is too long the stem is shortened and the
// extension kept. Filename is idempotent and never returns an empty string.
func Filename(raw string, maxLength int) string {
	if maxLength <= 0 {
		maxLength = DefaultMaxLength
	}

	name := norm.NFC.String(strings.ToValidUTF8(raw, "_"))
	name = strings.TrimFunc(name, isTrimmable)
	name = illegalReplacer.Replace(name)
	name = strings.Map(func(r rune) rune {
		if unicode.IsControl(r) && !unicode.IsSpace(r) {
			return '_'
		}
		return r
	}, name)
	name = collapse(name)

	if name == "" {
		name = fallbackName
	}
	if len(name) <= maxLength {
		return name
	}
	return truncate(name, maxLength)
}

// Stem returns name without its extension.
func Stem(name string) string {
	if ext := Extension(name); ext != "" {
		return name[:len(name)-len(ext)]
	}
	return name
}

// Extension returns the trailing ".ext" of name when it looks like a file
// extension (one to ten ASCII letters or digits), or "".
func Extension(name string) string {
	idx := strings.LastIndexByte(name, '.')
	if idx <= 0 || idx == len(name)-1 {
		return ""
	}
	ext := name[idx+1:]
	if len(ext) > 10 {
		return ""
	}
	for i := 0; i < len(ext); i++ {
		c := ext[i]
		if !(c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9') {
			return ""
		}
	}
	return name[idx:]
}

func isTrimmable(r rune) bool {
	return r == '.' || unicode.IsSpace(r)
}

func collapse(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	inRun := false
	for _, r := range s {
		if r == '_' || unicode.IsSpace(r) {
			if !inRun {
				b.WriteByte('_')
				inRun = true
			}
			continue
		}
		inRun = false
		b.WriteRune(r)
	}
	return b.String()
}

func truncate(name string, maxLength int) string {
	ext := Extension(name)
	if ext != "" && len(ext) < maxLength {
		stem := CutRunes(name[:len(name)-len(ext)], maxLength-len(ext))
		stem = strings.TrimRightFunc(stem, isTrimmable)
		if stem != "" {
			return stem + ext
		}
	}

	out := strings.TrimRightFunc(CutRunes(name, maxLength), isTrimmable)
	if out == "" {
		return CutRunes(fallbackName, maxLength)
	}
	return out
}

// CutRunes shortens s to at most n bytes without splitting a UTF-8 sequence.
func CutRunes(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}
