package cli

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/pfrederiksen/tm-roles/internal/agenda"
	"github.com/pfrederiksen/tm-roles/internal/notify"
	"github.com/pfrederiksen/tm-roles/internal/secret"
)

func parseDateFlag(name, value string, required bool) (time.Time, error) {
	if value == "" {
		if required {
			return time.Time{}, fmt.Errorf("--%s is required (YYYY-MM-DD)", name)
		}
		return time.Time{}, nil
	}
	t, err := agenda.ParseDateKey(value)
	if err != nil {
		return time.Time{}, fmt.Errorf("--%s must be YYYY-MM-DD: %w", name, err)
	}
	return t, nil
}

func newSyncCmd(a *app) *cobra.Command {
	var targetDate string

	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Scrape agendas from the club site and store them",
		RunE: func(cmd *cobra.Command, args []string) error {
			target, err := parseDateFlag("target-date", targetDate, false)
			if err != nil {
				return err
			}

			res, err := a.svc.SyncAgendas(cmd.Context(), target)
			if res != nil {
				if werr := WriteOutput(cmd.OutOrStdout(), syncOutput{res}, a.outputFormat(), a.verbose); werr != nil {
					return fmt.Errorf("writing output: %w", werr)
				}
			}
			return err
		},
	}

	cmd.Flags().StringVar(&targetDate, "target-date", "", "Fetch meetings up to this date (default: four weeks ahead)")
	return cmd
}

func newSuggestCmd(a *app) *cobra.Command {
	var (
		date         string
		notifyRoster bool
		dryRun       bool
	)

	cmd := &cobra.Command{
		Use:   "suggest",
		Short: "Suggest primary and backup members for a meeting's open roles",
		RunE: func(cmd *cobra.Command, args []string) error {
			meeting, err := parseDateFlag("date", date, true)
			if err != nil {
				return err
			}

			results, err := a.svc.Suggest(cmd.Context(), meeting)
			if err != nil {
				return err
			}

			if err := WriteOutput(cmd.OutOrStdout(), suggestionOutput{Date: meeting, Results: results}, a.outputFormat(), a.verbose); err != nil {
				return fmt.Errorf("writing output: %w", err)
			}

			if !notifyRoster && !dryRun {
				return nil
			}
			n, err := a.newNotifier(a.cfg, dryRun, cmd.OutOrStdout())
			if err != nil {
				return fmt.Errorf("creating notifier: %w", err)
			}
			return n.Notify(cmd.Context(), notify.Roster{MeetingDate: meeting, Results: results})
		},
	}

	cmd.Flags().StringVar(&date, "date", "", "Meeting date (YYYY-MM-DD)")
	cmd.Flags().BoolVar(&notifyRoster, "notify", false, "Announce the suggestions on Telegram")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Print the announcement instead of sending it")
	return cmd
}

func newAssignmentsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "assignments",
		Short: "Save or list confirmed role assignments",
	}

	var (
		saveDate string
		file     string
	)
	save := &cobra.Command{
		Use:   "save [role=member ...]",
		Short: "Replace a meeting's assignments",
		Long: `Replace the saved assignments of a meeting. Assignments are given either as
role=member arguments with --date, or as a JSON array in --file ("-" for stdin)
using the meeting_date, role and assigned fields.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			batch, err := readAssignments(cmd.InOrStdin(), file, saveDate, args)
			if err != nil {
				return err
			}
			if err := a.svc.SaveAssignments(cmd.Context(), batch); err != nil {
				return err
			}
			return WriteOutput(cmd.OutOrStdout(), assignmentsOutput{Assignments: batch, Saved: true}, a.outputFormat(), a.verbose)
		},
	}
	save.Flags().StringVar(&saveDate, "date", "", "Meeting date (YYYY-MM-DD) for role=member arguments")
	save.Flags().StringVar(&file, "file", "", "JSON file of assignments, or - for stdin")

	var (
		listDate string
		sortBy   string
	)
	list := &cobra.Command{
		Use:   "list",
		Short: "List a meeting's saved assignments",
		RunE: func(cmd *cobra.Command, args []string) error {
			meeting, err := parseDateFlag("date", listDate, true)
			if err != nil {
				return err
			}
			order := AssignmentOrder(strings.ToLower(sortBy))
			if !order.valid() {
				return fmt.Errorf("invalid sort: %s (must be 'position', 'role' or 'assignee')", sortBy)
			}

			items, err := a.svc.Assignments(cmd.Context(), meeting)
			if err != nil {
				return err
			}
			sortAssignments(items, order)
			return WriteOutput(cmd.OutOrStdout(), assignmentsOutput{Assignments: items}, a.outputFormat(), a.verbose)
		},
	}
	list.Flags().StringVar(&listDate, "date", "", "Meeting date (YYYY-MM-DD)")
	list.Flags().StringVar(&sortBy, "sort", string(SortByPosition), "Sort order: position, role or assignee")

	cmd.AddCommand(save, list)
	return cmd
}

// readAssignments builds a batch from a JSON file or from role=member pairs
func readAssignments(stdin io.Reader, file, date string, pairs []string) ([]agenda.Assignment, error) {
	if file != "" {
		if len(pairs) > 0 {
			return nil, errors.New("use either --file or role=member arguments, not both")
		}
		r := stdin
		if file != "-" {
			f, err := os.Open(file)
			if err != nil {
				return nil, fmt.Errorf("opening assignments file: %w", err)
			}
			defer f.Close()
			r = f
		}
		var batch []agenda.Assignment
		if err := json.NewDecoder(r).Decode(&batch); err != nil {
			return nil, fmt.Errorf("decoding assignments: %w", err)
		}
		return batch, nil
	}

	if _, err := parseDateFlag("date", date, true); err != nil {
		return nil, err
	}
	if len(pairs) == 0 {
		return nil, errors.New("no assignments given")
	}

	batch := make([]agenda.Assignment, 0, len(pairs))
	for _, p := range pairs {
		role, name, ok := strings.Cut(p, "=")
		if !ok || strings.TrimSpace(role) == "" {
			return nil, fmt.Errorf("invalid assignment %q (want role=member)", p)
		}
		batch = append(batch, agenda.Assignment{
			MeetingDate: date,
			Role:        strings.TrimSpace(role),
			Assigned:    strings.TrimSpace(name),
		})
	}
	return batch, nil
}

func newMembersCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "members",
		Short: "Manage the club roster",
	}

	var file string
	add := &cobra.Command{
		Use:   "add [name ...]",
		Short: "Add members (or reactivate them)",
		RunE: func(cmd *cobra.Command, args []string) error {
			names := args
			if file != "" {
				fromFile, err := readNames(cmd.InOrStdin(), file)
				if err != nil {
					return err
				}
				names = append(names, fromFile...)
			}
			n, err := a.svc.AddMembers(cmd.Context(), names)
			if err != nil {
				return err
			}
			return WriteOutput(cmd.OutOrStdout(), messageOutput{Message: fmt.Sprintf("Added %d members.", n), Count: n}, a.outputFormat(), a.verbose)
		},
	}
	add.Flags().StringVar(&file, "file", "", "File with one name per line, or - for stdin")

	var all bool
	list := &cobra.Command{
		Use:   "list",
		Short: "List members",
		RunE: func(cmd *cobra.Command, args []string) error {
			members, err := a.svc.Members(cmd.Context(), all)
			if err != nil {
				return err
			}
			return WriteOutput(cmd.OutOrStdout(), membersOutput{Members: members}, a.outputFormat(), a.verbose)
		},
	}
	list.Flags().BoolVar(&all, "all", false, "Include deactivated members")

	deactivate := &cobra.Command{
		Use:   "deactivate NAME",
		Short: "Stop suggesting a member",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.svc.DeactivateMember(cmd.Context(), args[0]); err != nil {
				return err
			}
			return WriteOutput(cmd.OutOrStdout(), messageOutput{Message: fmt.Sprintf("Deactivated %s.", args[0]), Count: 1}, a.outputFormat(), a.verbose)
		},
	}

	cmd.AddCommand(add, list, deactivate)
	return cmd
}

func readNames(stdin io.Reader, file string) ([]string, error) {
	r := stdin
	if file != "-" {
		f, err := os.Open(file)
		if err != nil {
			return nil, fmt.Errorf("opening members file: %w", err)
		}
		defer f.Close()
		r = f
	}

	var names []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		if name := strings.TrimSpace(scanner.Text()); name != "" && !strings.HasPrefix(name, "#") {
			names = append(names, name)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading members file: %w", err)
	}
	return names, nil
}

func newEncryptSecretCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "encrypt-secret [VALUE]",
		Short: "Encrypt a value for the config file using TM_ROLES_SECRET_KEY",
		Long: `Encrypt a password or token so it can be stored in the config file. The value is
read from the argument or, when omitted, from the first line of stdin. The output
can be pasted into club.password or telegram.bot_token.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var value string
			if len(args) == 1 {
				value = args[0]
			} else {
				line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
				if err != nil && !errors.Is(err, io.EOF) {
					return fmt.Errorf("reading value: %w", err)
				}
				value = strings.TrimRight(line, "\r\n")
			}
			if value == "" {
				return errors.New("no value to encrypt")
			}

			sealed, err := secret.Encrypt(a.cfg.SecretKey, value)
			if err != nil {
				return fmt.Errorf("encrypting value (is TM_ROLES_SECRET_KEY set?): %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), sealed)
			return nil
		},
	}
}
