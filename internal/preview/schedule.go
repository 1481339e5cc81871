package preview

import (
	"time"

	"github.com/go-co-op/gocron/v2"

	foundationerrors "git.home.luguber.info/inful/justhtml/internal/foundation/errors"
)

// newRebuildScheduler returns a stopped scheduler that calls trigger every
// interval. Overlapping runs are skipped; the rebuild worker coalesces
// requests anyway.
func newRebuildScheduler(interval time.Duration, trigger func()) (gocron.Scheduler, error) {
	s, err := gocron.NewScheduler()
	if err != nil {
		return nil, foundationerrors.RuntimeError("cannot create rebuild scheduler").WithCause(err).Build()
	}
	_, err = s.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(trigger),
		gocron.WithName("periodic-rebuild"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		_ = s.Shutdown()
		return nil, foundationerrors.RuntimeError("cannot schedule periodic rebuild").
			WithCause(err).
			WithContext("interval", interval.String()).
			Build()
	}
	return s, nil
}
