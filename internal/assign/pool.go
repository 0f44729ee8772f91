package assign

import "strings"

// pool is the working set of members still available during one Assign call.
// Members are consumed from the tail.
type pool struct {
	members []string
}

// newPool returns roster members not in used, deduplicated in roster order
func newPool(roster []string, used map[string]struct{}) *pool {
	seen := make(map[string]struct{}, len(roster))
	members := make([]string, 0, len(roster))
	for _, m := range roster {
		name := normalizeName(m)
		if name == "" {
			continue
		}
		if _, ok := used[name]; ok {
			continue
		}
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		members = append(members, name)
	}
	return &pool{members: members}
}

// take removes and returns the last member satisfying eligible, or the last
// member overall when nobody does. It returns "" on an empty pool.
func (p *pool) take(eligible func(string) bool) string {
	if len(p.members) == 0 {
		return ""
	}
	for i := len(p.members) - 1; i >= 0; i-- {
		if eligible(p.members[i]) {
			return p.removeAt(i)
		}
	}
	return p.removeAt(len(p.members) - 1)
}

// pop removes and returns the last member, or "" on an empty pool
func (p *pool) pop() string {
	if len(p.members) == 0 {
		return ""
	}
	return p.removeAt(len(p.members) - 1)
}

func (p *pool) removeAt(i int) string {
	m := p.members[i]
	p.members = append(p.members[:i], p.members[i+1:]...)
	return m
}

// nullNames are placeholders upstream tables use for a missing name
var nullNames = map[string]struct{}{
	"nan":  {},
	"nat":  {},
	"none": {},
	"null": {},
	"<na>": {},
}

// normalizeName trims a name and collapses null-like placeholders to ""
func normalizeName(name string) string {
	name = strings.TrimSpace(name)
	if _, ok := nullNames[strings.ToLower(name)]; ok {
		return ""
	}
	return name
}
