package bootstrap

import (
	"fmt"

	"github.com/robfig/cron/v3"

	"github.com/wolfman30/salon-booking/pkg/logging"
)

// DefaultJanitorSchedule runs cleanup every five minutes.
const DefaultJanitorSchedule = "@every 5m"

// JanitorTask removes stale in-process state and returns how many entries it
// dropped.
type JanitorTask func() int

// StartJanitor schedules tasks on a cron and starts it. Callers stop the
// returned cron on shutdown.
func StartJanitor(schedule string, tasks map[string]JanitorTask, logger *logging.Logger) (*cron.Cron, error) {
	if logger == nil {
		logger = logging.Default()
	}
	if schedule == "" {
		schedule = DefaultJanitorSchedule
	}
	c := cron.New()
	if _, err := c.AddFunc(schedule, func() { runJanitor(tasks, logger) }); err != nil {
		return nil, fmt.Errorf("bootstrap: janitor schedule %q: %w", schedule, err)
	}
	c.Start()
	logger.Info("janitor scheduled", "schedule", schedule, "tasks", len(tasks))
	return c, nil
}

func runJanitor(tasks map[string]JanitorTask, logger *logging.Logger) {
	for name, task := range tasks {
		if removed := task(); removed > 0 {
			logger.Debug("janitor evicted entries", "task", name, "removed", removed)
		}
	}
}
