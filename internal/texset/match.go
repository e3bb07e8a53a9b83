package texset

import (
	"path/filepath"
	"strings"
)

// IdentifierPolicy selects which side of the matched keyword becomes the
// asset identifier.
type IdentifierPolicy int

const (
	// PolicyBefore takes the substring before the keyword ("rock" from
	// "rock_basecolor_02"). Default.
	PolicyBefore IdentifierPolicy = iota
	// PolicyAfter takes the substring after the keyword when non-empty,
	// falling back to the substring before it.
	PolicyAfter
)

func (p IdentifierPolicy) String() string {
	if p == PolicyAfter {
		return "after"
	}
	return "before"
}

// ParsePolicy resolves an identifier policy by name.
func ParsePolicy(name string) (IdentifierPolicy, bool) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "before":
		return PolicyBefore, true
	case "after":
		return PolicyAfter, true
	}
	return PolicyBefore, false
}

// normalize lowercases s and strips underscores, so "Rock_BaseColor" and
// "rockbasecolor" compare equal.
func normalize(s string) string {
	return strings.ReplaceAll(strings.ToLower(s), "_", "")
}

// Matches reports whether keyword occurs in filename after normalization.
// No anchoring: a keyword may match anywhere in the name.
func Matches(filename, keyword string) bool {
	if keyword == "" {
		return false
	}
	return strings.Contains(normalize(filename), normalize(keyword))
}

// MatchKeyword returns the first keyword (in configured order) contained in
// filename, short-circuiting on the first hit.
func MatchKeyword(filename string, keywords []string) (string, bool) {
	for _, kw := range keywords {
		if Matches(filename, kw) {
			return kw, true
		}
	}
	return "", false
}

// Extract derives the asset identifier from a matched filename: the part of
// the normalized, extension-stripped name that does not belong to the keyword.
// Returns ok=false when the keyword is absent after normalization; callers
// treat that as the empty identifier.
func Extract(filename, keyword string, policy IdentifierPolicy) (string, bool) {
	stem := strings.TrimSuffix(filename, filepath.Ext(filename))
	name := normalize(stem)
	kw := normalize(keyword)
	if kw == "" {
		return "", false
	}

	idx := strings.Index(name, kw)
	if idx < 0 {
		return "", false
	}

	before := name[:idx]
	after := name[idx+len(kw):]

	if policy == PolicyAfter {
		if after != "" {
			return after, true
		}
		return before, true
	}
	return before, true
}
