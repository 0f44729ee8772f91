package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/pfrederiksen/tm-roles/internal/agenda"
	"github.com/pfrederiksen/tm-roles/internal/assign"
	"github.com/pfrederiksen/tm-roles/internal/service"
	"github.com/pfrederiksen/tm-roles/internal/storage"
)

// OutputFormat specifies the output format
type OutputFormat string

const (
	FormatText OutputFormat = "text"
	FormatJSON OutputFormat = "json"
)

// textWriter renders a command result for humans
type textWriter interface {
	writeText(w io.Writer, verbose bool) error
}

// WriteOutput writes the result in the specified format
func WriteOutput(w io.Writer, result textWriter, format OutputFormat, verbose bool) error {
	switch format {
	case FormatJSON:
		return writeJSON(w, result)
	case FormatText:
		return result.writeText(w, verbose)
	default:
		return fmt.Errorf("unknown format: %s", format)
	}
}

// writeJSON outputs results as JSON
func writeJSON(w io.Writer, result interface{}) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(result)
}

type syncOutput struct {
	*service.SyncResult
}

func (o syncOutput) writeText(w io.Writer, verbose bool) error {
	for _, line := range o.Logs {
		fmt.Fprintln(w, line)
	}
	if len(o.Changes) > 0 {
		fmt.Fprintf(w, "\n%d changes since the last sync:\n", len(o.Changes))
		for _, c := range o.Changes {
			fmt.Fprintf(w, "  %s\n", c)
		}
	}
	if verbose {
		fmt.Fprintf(w, "\nRun ID: %s\n", o.RunID)
	}
	return nil
}

type suggestionOutput struct {
	Date    time.Time       `json:"meeting_date"`
	Results []assign.Result `json:"suggestions"`
}

func (o suggestionOutput) writeText(w io.Writer, verbose bool) error {
	fmt.Fprintf(w, "Suggestions for %s\n\n", o.Date.Format("Monday, January 2, 2006"))

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ROLE\tPRIMARY\tBACKUP")
	open := 0
	for _, r := range o.Results {
		primary := r.Primary
		switch {
		case primary == "":
			primary = "-"
			open++
		case r.Original != "" && verbose:
			primary += " (on agenda)"
		}
		backup := r.Backup
		if backup == "" {
			backup = "-"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\n", r.Role, primary, backup)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	fmt.Fprintf(w, "\nTotal: %d roles", len(o.Results))
	if open > 0 {
		fmt.Fprintf(w, ", %d without a primary", open)
	}
	fmt.Fprintln(w)
	return nil
}

type assignmentsOutput struct {
	Assignments []agenda.Assignment `json:"assignments"`
	Saved       bool                `json:"saved,omitempty"`
}

func (o assignmentsOutput) writeText(w io.Writer, verbose bool) error {
	if len(o.Assignments) == 0 {
		fmt.Fprintln(w, "No assignments found.")
		return nil
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	if verbose {
		fmt.Fprintln(tw, "DATE\tROLE\tASSIGNED")
	} else {
		fmt.Fprintln(tw, "ROLE\tASSIGNED")
	}
	for _, a := range o.Assignments {
		if verbose {
			fmt.Fprintf(tw, "%s\t%s\t%s\n", a.MeetingDate, a.Role, a.Assigned)
		} else {
			fmt.Fprintf(tw, "%s\t%s\n", a.Role, a.Assigned)
		}
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	if o.Saved {
		fmt.Fprintf(w, "\nSaved %d assignments.\n", len(o.Assignments))
	} else {
		fmt.Fprintf(w, "\nTotal: %d assignments\n", len(o.Assignments))
	}
	return nil
}

type membersOutput struct {
	Members []storage.Member `json:"members"`
}

func (o membersOutput) writeText(w io.Writer, verbose bool) error {
	if len(o.Members) == 0 {
		fmt.Fprintln(w, "No members found.")
		return nil
	}
	for _, m := range o.Members {
		if m.Active {
			fmt.Fprintln(w, m.Name)
		} else {
			fmt.Fprintf(w, "%s (inactive)\n", m.Name)
		}
	}
	fmt.Fprintf(w, "\nTotal: %d members\n", len(o.Members))
	return nil
}

type messageOutput struct {
	Message string `json:"message"`
	Count   int    `json:"count"`
}

func (o messageOutput) writeText(w io.Writer, _ bool) error {
	_, err := fmt.Fprintln(w, o.Message)
	return err
}
