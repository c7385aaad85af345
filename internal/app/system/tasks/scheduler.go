// internal/app/system/tasks/scheduler.go
package tasks

import (
	"fmt"

	"github.com/dalemusser/waffle/pantry/jobs"
	"go.uber.org/zap"
)

// NewScheduler registers the given jobs on a WAFFLE scheduler. A job with no
// interval or handler is skipped with a warning, since the scheduler would
// otherwise panic creating its ticker. Registering two jobs under the same
// name is an error.
func NewScheduler(logger *zap.Logger, list ...*jobs.ScheduledJob) (*jobs.Scheduler, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := jobs.NewScheduler(logger)
	for _, j := range list {
		if j == nil || j.Interval <= 0 || j.Handler == nil {
			name := ""
			if j != nil {
				name = j.Name
			}
			logger.Warn("skipping job with no interval or handler", zap.String("job", name))
			continue
		}
		if err := s.Add(j); err != nil {
			return nil, fmt.Errorf("schedule %s: %w", j.Name, err)
		}
	}
	return s, nil
}
