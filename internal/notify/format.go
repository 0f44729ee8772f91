package notify

import (
	"fmt"
	"html"
	"strings"
)

// FormatRoster renders a roster as a Telegram HTML message. Pre-filled roles are
// marked as confirmed; roles the roster could not cover are flagged.
func FormatRoster(r Roster) string {
	var msg strings.Builder

	fmt.Fprintf(&msg, "📋 <b>Suggested roles for %s</b>\n\n", r.MeetingDate.Format("Monday, January 2, 2006"))

	for _, res := range r.Results {
		role := html.EscapeString(res.Role)
		if res.Primary == "" {
			fmt.Fprintf(&msg, "• <b>%s</b>: <i>needs a volunteer</i>\n", role)
			continue
		}
		fmt.Fprintf(&msg, "• <b>%s</b>: %s", role, html.EscapeString(res.Primary))
		if res.Backup != "" {
			fmt.Fprintf(&msg, " (backup: %s)", html.EscapeString(res.Backup))
		}
		if res.Original != "" {
			msg.WriteString(" ✅")
		}
		msg.WriteString("\n")
	}

	msg.WriteString("\nReply here if you can't make your role.")
	return msg.String()
}
