package util

import (
	"fmt"
	"strings"
)

// ParseSearchQuery splits a search string into terms, keeping quoted phrases together.
// Input:  `budget "q1 report" 'north region'`
// Output: ["budget", "q1 report", "north region"]
func ParseSearchQuery(query string) ([]string, error) {
	var terms []string
	var inQuotes bool
	var current strings.Builder
	var quoteChar rune
	var isEscaped bool

	flush := func() {
		if term := strings.TrimSpace(current.String()); term != "" {
			terms = append(terms, term)
		}
		current.Reset()
	}

	for _, r := range query {
		if isEscaped {
			current.WriteRune(r)
			isEscaped = false
			continue
		}

		if r == '\\' {
			isEscaped = true
			continue
		}

		if inQuotes {
			if r == quoteChar {
				inQuotes = false
				flush()
			} else {
				current.WriteRune(r)
			}
			continue
		}

		switch r {
		case '"', '\'':
			flush()
			inQuotes = true
			quoteChar = r
		case ' ', '\t', '\n':
			flush()
		default:
			current.WriteRune(r)
		}
	}

	if inQuotes {
		return nil, fmt.Errorf("syntax error: unclosed quote")
	}
	flush()

	return terms, nil
}
