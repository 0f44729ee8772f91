// Package assign suggests who should fill each open role of an upcoming meeting.
//
// The Engine is a greedy, single-meeting heuristic. It walks the agenda in order and
// picks, for every unfilled role, a member whose last three roles do not share the
// role's canonical category, falling back to anyone still available when no member
// qualifies. Once every role has a primary, the members left over are handed out as
// backups in agenda order.
//
// The engine is a pure function of its inputs apart from the shuffle that breaks ties
// between equally eligible members. Each call owns its random source, so a single
// Engine may be shared across goroutines. Use WithSeed for reproducible output.
//
// Example usage:
//
//	eng := assign.New(assign.DefaultConfig(), assign.WithSeed(42))
//	results, err := eng.Assign(entries, history, roster)
//	if errors.Is(err, assign.ErrEmptyAgenda) {
//	    // nothing to assign for this meeting
//	}
package assign
