package assign

import (
	"fmt"
	"math/rand/v2"
	"strings"

	"github.com/pfrederiksen/tm-roles/internal/agenda"
)

// Result is the suggestion for one agenda role
type Result struct {
	Role     string `json:"Role"`
	Original string `json:"Original"`
	Primary  string `json:"Primary"`
	Backup   string `json:"Backup"`
}

// Engine computes role suggestions. It holds only configuration and is safe for
// concurrent use.
type Engine struct {
	skip        map[string]struct{}
	themePrefix string
	seed        *uint64

	// shuffle reorders the available pool; tests replace it to force an order
	shuffle func(r *rand.Rand, pool []string)
}

// Option configures an Engine
type Option func(*Engine)

// WithSeed makes every Assign call draw from a fresh source seeded with seed,
// so identical inputs give identical results.
func WithSeed(seed uint64) Option {
	return func(e *Engine) {
		e.seed = &seed
	}
}

// New creates an Engine for the given configuration
func New(cfg Config, opts ...Option) *Engine {
	e := &Engine{
		skip:        make(map[string]struct{}, len(cfg.SkipRoles)),
		themePrefix: cfg.ThemePrefix,
		shuffle: func(r *rand.Rand, pool []string) {
			r.Shuffle(len(pool), func(i, j int) { pool[i], pool[j] = pool[j], pool[i] })
		},
	}
	for _, role := range cfg.SkipRoles {
		e.skip[role] = struct{}{}
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// newRand returns the call-scoped random source
func (e *Engine) newRand() *rand.Rand {
	if e.seed != nil {
		return rand.New(rand.NewPCG(*e.seed, *e.seed))
	}
	return rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
}

// Assign suggests a primary and a backup for every assignable role.
//
// Every entry must carry a role label; a blank one rejects the whole call with
// ErrMalformedEntry since callers rely on positional integrity. Skipped roles and
// theme rows are dropped first and ErrEmptyAgenda is returned if nothing is left.
// Pre-filled names are kept as the primary and are never offered as backups.
//
// A member drawn from the roster fills at most one slot per result, primary or
// backup. When the roster is smaller than the number of open slots, the roles
// processed last get an empty primary and backups run out first.
func (e *Engine) Assign(entries []agenda.Entry, history []agenda.HistoryRecord, roster []string) ([]Result, error) {
	rows, err := e.assignable(entries)
	if err != nil {
		return nil, err
	}

	recent := BuildRecencyIndex(history)

	used := make(map[string]struct{})
	for _, row := range rows {
		if name := normalizeName(row.Name); name != "" {
			used[name] = struct{}{}
		}
	}

	p := newPool(roster, used)
	e.shuffle(e.newRand(), p.members)

	results := make([]Result, 0, len(rows))
	for _, row := range rows {
		name := normalizeName(row.Name)

		var primary string
		switch {
		case e.skipped(row.Role):
			primary = ""
		case name != "":
			primary = name
		default:
			category := Canonicalize(row.Role)
			primary = p.take(func(member string) bool {
				return !recent.heldRecently(member, category)
			})
		}

		results = append(results, Result{
			Role:     row.Role,
			Original: name,
			Primary:  primary,
		})
	}

	// Backups are drawn without a fairness filter, so a backup may repeat a category
	// the member held recently.
	for i := range results {
		results[i].Backup = p.pop()
	}

	for i := range results {
		results[i].Original = normalizeName(results[i].Original)
		results[i].Primary = normalizeName(results[i].Primary)
		results[i].Backup = normalizeName(results[i].Backup)
	}
	return results, nil
}

// assignable validates entries and drops skipped and theme rows
func (e *Engine) assignable(entries []agenda.Entry) ([]agenda.Entry, error) {
	rows := make([]agenda.Entry, 0, len(entries))
	for i, entry := range entries {
		if strings.TrimSpace(entry.Role) == "" {
			return nil, fmt.Errorf("entry %d: %w", i, ErrMalformedEntry)
		}
		if e.skipped(entry.Role) {
			continue
		}
		if e.themePrefix != "" && strings.HasPrefix(entry.Role, e.themePrefix) {
			continue
		}
		rows = append(rows, entry)
	}
	if len(rows) == 0 {
		return nil, ErrEmptyAgenda
	}
	return rows, nil
}

func (e *Engine) skipped(role string) bool {
	_, ok := e.skip[role]
	return ok
}
