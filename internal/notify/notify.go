package notify

import (
	"context"
	"time"

	"github.com/pfrederiksen/tm-roles/internal/assign"
)

// Roster is the set of suggestions for one meeting
type Roster struct {
	MeetingDate time.Time
	Results     []assign.Result
}

// Notifier delivers a roster announcement
type Notifier interface {
	Notify(ctx context.Context, roster Roster) error
}
