package core

import (
	"strings"

	"golang.org/x/text/cases"
)

// FoldKey normalizes a keyword or place name for case-insensitive matching.
func FoldKey(s string) string {
	// A Caser keeps state, so each call gets its own.
	return cases.Fold().String(strings.TrimSpace(s))
}
