package parser

import (
	"regexp"
	"strings"
)

var (
	pathSuffix     = regexp.MustCompile(`Path:.*`)
	filledBy       = regexp.MustCompile(`(?i)Role filled by`)
	bracketed      = regexp.MustCompile(`\[.*?\]`)
	pathParenthese = regexp.MustCompile(`(?i)\(.*Path.*?\)`)
)

// CleanName strips the annotations the agenda site appends to assignee names,
// such as "Role filled by", "[DTM]" and "(Path: Presentation Mastery)".
func CleanName(name string) string {
	// Parenthesised pathways go first so "Path:" does not leave a dangling "(".
	name = pathParenthese.ReplaceAllString(name, "")
	name = pathSuffix.ReplaceAllString(name, "")
	name = filledBy.ReplaceAllString(name, "")
	name = bracketed.ReplaceAllString(name, "")
	return strings.TrimSpace(name)
}

// MatchMember resolves a possibly abbreviated name to a known member: an exact
// case-insensitive match wins, then the first member the name is a prefix of.
// Unknown names come back cleaned.
func MatchMember(name string, members []string) string {
	needle := strings.ToLower(strings.TrimSpace(name))
	if needle == "" {
		return ""
	}
	for _, m := range members {
		if strings.ToLower(strings.TrimSpace(m)) == needle {
			return strings.TrimSpace(m)
		}
	}
	for _, m := range members {
		if strings.HasPrefix(strings.ToLower(strings.TrimSpace(m)), needle) {
			return strings.TrimSpace(m)
		}
	}
	return CleanName(name)
}
