package dashboard

import (
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/robfig/cron/v3"

	"github.com/dm/portalmon/internal/logger"
)

// RolloverSchedule fires at local midnight.
const RolloverSchedule = "@midnight"

// Rollover sends a RolloverMsg into the program at every new day so the
// "today" range is re-fetched.
type Rollover struct {
	cron    *cron.Cron
	entryID cron.EntryID
}

// NewRollover registers the schedule. send is usually (*tea.Program).Send.
// The scheduler does not run until Start is called.
func NewRollover(schedule string, send func(tea.Msg), log logger.Logger) (*Rollover, error) {
	if log == nil {
		log = logger.Noop()
	}
	c := cron.New()
	id, err := c.AddFunc(schedule, func() {
		now := time.Now()
		log.Debug("rollover tick at %s", now.Format(time.DateTime))
		send(RolloverMsg(now))
	})
	if err != nil {
		return nil, fmt.Errorf("invalid rollover schedule %q: %w", schedule, err)
	}
	return &Rollover{cron: c, entryID: id}, nil
}

// Start runs the scheduler in its own goroutine.
func (r *Rollover) Start() {
	r.cron.Start()
}

// Stop halts the scheduler and waits for a running tick to finish.
func (r *Rollover) Stop() {
	<-r.cron.Stop().Done()
}

// Next returns the next time the rollover fires after from.
func (r *Rollover) Next(from time.Time) time.Time {
	return r.cron.Entry(r.entryID).Schedule.Next(from)
}
