package notify

import (
	"context"
	"fmt"
	"io"
	"os"
)

// DryRunNotifier prints what would be sent without contacting anyone
type DryRunNotifier struct {
	w io.Writer
}

// NewDryRun creates a dry-run notifier writing to w, or stdout when w is nil
func NewDryRun(w io.Writer) *DryRunNotifier {
	if w == nil {
		w = os.Stdout
	}
	return &DryRunNotifier{w: w}
}

func (n *DryRunNotifier) Notify(_ context.Context, r Roster) error {
	msg := FormatRoster(r)
	if _, err := fmt.Fprintf(n.w, "--- Message for %s ---\n%s\n\n(Length: %d characters)\n", r.MeetingDate.Format("2006-01-02"), msg, len(msg)); err != nil {
		return fmt.Errorf("writing dry run: %w", err)
	}
	return nil
}
