// Package parser extracts agenda role rows from the club site's agenda HTML.
//
// The agenda page renders one table row per role. The role label is the bold text in
// the second cell and the assignee is the element tagged fth-member-name. Table Topics
// evaluation rows list two evaluators and are split into an odd and an even entry.
// Only the first timer row is kept. Names are cleaned of pathway annotations and
// matched against the known member roster.
package parser
