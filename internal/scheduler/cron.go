package scheduler

import (
	"context"
	"fmt"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// Calendar runs fn at the wall-clock times matched by a cron spec, for work
// that must line up with the calendar rather than an interval, such as the
// day rollover.
type Calendar struct {
	cron *cron.Cron
}

// NewCalendar parses spec (standard five fields or a descriptor such as
// "@midnight") and registers fn.
func NewCalendar(spec string, fn func(), log *logrus.Entry) (*Calendar, error) {
	c := cron.New()
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	_, err := c.AddFunc(spec, func() {
		log.WithField("spec", spec).Debug("calendar job fired")
		fn()
	})
	if err != nil {
		return nil, fmt.Errorf("cron spec %q: %w", spec, err)
	}
	return &Calendar{cron: c}, nil
}

// Run starts the calendar and blocks until ctx is done. A job still running
// at that point is waited for.
func (c *Calendar) Run(ctx context.Context) {
	c.cron.Start()
	<-ctx.Done()
	<-c.cron.Stop().Done()
}
