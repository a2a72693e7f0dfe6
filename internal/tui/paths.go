package tui

import (
	"errors"
	"strings"
	"unicode"
)

var errUnclosedQuote = errors.New("unclosed quote in file list")

// splitPaths breaks the upload input into paths. Paths are separated by
// whitespace; a path containing spaces is written in single or double
// quotes, or with the spaces escaped by a backslash. A backslash only
// escapes whitespace, quotes and itself, so Windows paths pass through.
// Empty entries are skipped.
func splitPaths(s string) ([]string, error) {
	var (
		paths []string
		cur   strings.Builder
		quote rune
	)
	rs := []rune(s)
	for i := 0; i < len(rs); i++ {
		r := rs[i]
		switch {
		case quote != 0:
			if r == quote {
				quote = 0
				continue
			}
			if quote == '"' && r == '\\' && i+1 < len(rs) && (rs[i+1] == '"' || rs[i+1] == '\\') {
				i++
				r = rs[i]
			}
			cur.WriteRune(r)
		case r == '\'' || r == '"':
			quote = r
		case r == '\\' && i+1 < len(rs) && escapable(rs[i+1]):
			i++
			cur.WriteRune(rs[i])
		case unicode.IsSpace(r):
			if cur.Len() > 0 {
				paths = append(paths, cur.String())
				cur.Reset()
			}
		default:
			cur.WriteRune(r)
		}
	}
	if quote != 0 {
		return nil, errUnclosedQuote
	}
	if cur.Len() > 0 {
		paths = append(paths, cur.String())
	}
	return paths, nil
}

func escapable(r rune) bool {
	return unicode.IsSpace(r) || r == '\'' || r == '"' || r == '\\'
}
