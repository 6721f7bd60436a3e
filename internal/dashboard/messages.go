package dashboard

import (
	"time"

	"github.com/dm/portalmon/internal/client"
	"github.com/dm/portalmon/internal/model"
)

// HistoricalMsg carries the result of one historical fetch. Period is the
// period that was requested, which may no longer be the selected one.
type HistoricalMsg struct {
	Period  model.Period
	Samples []model.Sample
	Err     error
}

// LiveMsg carries one event from the live subscription.
type LiveMsg struct {
	Event client.LiveEvent
}

// LiveClosedMsg is delivered once the subscription's event channel is closed.
type LiveClosedMsg struct{}

// RolloverMsg is sent by the rollover scheduler at the start of a new day.
type RolloverMsg time.Time
