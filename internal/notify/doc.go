// Package notify announces suggested meeting rosters.
//
// A Notifier receives a Roster and delivers it. TelegramNotifier posts an HTML
// message through the Telegram Bot API; DryRunNotifier writes the same text to an
// io.Writer so a run can be previewed without sending anything.
package notify
