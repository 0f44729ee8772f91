package parser

import (
	"fmt"
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/pfrederiksen/tm-roles/internal/agenda"
)

const (
	rowSelector  = "table.agendaTable tbody tr"
	nameSelector = ".fth-member-name"

	tableTopicsEvaluation = "Table Topics Evaluation"
	tableTopicsOdd        = "Table Topics Evaluation odd #"
	tableTopicsEven       = "Table Topics Evaluation even #"
)

// Result is the outcome of parsing one agenda page
type Result struct {
	Entries []agenda.Entry
	// Skipped describes rows that were dropped, for the sync log
	Skipped []string
}

// Parser turns agenda HTML into entries, resolving names against known members
type Parser struct {
	members []string
}

// New creates a parser that resolves assignee names against members
func New(members []string) *Parser {
	return &Parser{members: members}
}

// Parse extracts the role rows of one agenda page
func (p *Parser) Parse(r io.Reader) (*Result, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("parsing HTML: %w", err)
	}

	result := &Result{Entries: make([]agenda.Entry, 0)}
	timerSeen := false

	doc.Find(rowSelector).Each(func(index int, row *goquery.Selection) {
		cols := row.Find("td")
		if cols.Length() < 2 {
			return
		}

		role := strings.TrimSpace(cols.Eq(1).Find("b").First().Text())
		if role == "" {
			return
		}
		name := strings.TrimSpace(row.Find(nameSelector).First().Text())

		if strings.HasPrefix(role, tableTopicsEvaluation) {
			result.Entries = append(result.Entries, p.splitTableTopics(role, name, index)...)
			return
		}

		if strings.Contains(strings.ToLower(role), "timer") {
			if timerSeen {
				result.Skipped = append(result.Skipped, fmt.Sprintf("extra timer role at row %d: %s", index, role))
				return
			}
			timerSeen = true
		}

		result.Entries = append(result.Entries, agenda.Entry{
			Role:      role,
			Name:      CleanName(name),
			SortOrder: float64(index),
		})
	})

	return result, nil
}

// splitTableTopics turns one evaluation row into odd and even entries. Names come
// from a "- first, second" suffix on the label when present, else the row assignee.
func (p *Parser) splitTableTopics(role, name string, index int) []agenda.Entry {
	var names []string
	if _, suffix, ok := strings.Cut(role, "-"); ok {
		for _, n := range strings.Split(suffix, ",") {
			if n = strings.TrimSpace(n); n != "" {
				names = append(names, n)
			}
		}
	} else if name != "" {
		names = []string{name}
	}

	resolved := make([]string, 2)
	for i := 0; i < len(names) && i < 2; i++ {
		resolved[i] = MatchMember(names[i], p.members)
	}

	return []agenda.Entry{
		{Role: tableTopicsOdd, Name: resolved[0], SortOrder: float64(index)},
		{Role: tableTopicsEven, Name: resolved[1], SortOrder: float64(index) + 0.1},
	}
}
