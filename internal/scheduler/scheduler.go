package scheduler

import (
	"context"
	"log/slog"
	"time"

	"github.com/amishk599/studypack/internal/model"
	"github.com/amishk599/studypack/internal/watcher"
)

// Scheduler owns the main loop: ticks on an interval and runs each inbox
// poller sequentially, pruning old packs once per cycle.
type Scheduler struct {
	pollers   []*watcher.InboxPoller
	interval  time.Duration
	pause     time.Duration // gap between two pollers in one cycle
	store     model.PackStore
	retention time.Duration
	logger    *slog.Logger
}

// NewScheduler creates a scheduler that polls all inboxes at the given
// interval. store may be nil and retention zero to keep every pack.
func NewScheduler(
	pollers []*watcher.InboxPoller,
	interval time.Duration,
	pause time.Duration,
	store model.PackStore,
	retention time.Duration,
	logger *slog.Logger,
) *Scheduler {
	return &Scheduler{
		pollers:   pollers,
		interval:  interval,
		pause:     pause,
		store:     store,
		retention: retention,
		logger:    logger,
	}
}

// Run starts the polling loop. It runs one immediate cycle, then ticks on the
// configured interval. It returns nil when ctx is cancelled (graceful shutdown).
func (s *Scheduler) Run(ctx context.Context) error {
	s.logger.Info("starting scheduler",
		"interval", s.interval.String(),
		"inboxes", len(s.pollers),
	)

	s.cycle(ctx)

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("shutting down scheduler")
			return nil
		case <-time.After(s.interval):
			s.cycle(ctx)
		}
	}
}

func (s *Scheduler) cycle(ctx context.Context) {
	s.cleanup()
	s.pollAll(ctx)
}

func (s *Scheduler) cleanup() {
	if s.store == nil || s.retention <= 0 {
		return
	}
	if err := s.store.Cleanup(s.retention); err != nil {
		s.logger.Error("pack cleanup failed", "error", err)
	}
}

// pollAll runs Poll on each poller sequentially with a pause between inboxes.
func (s *Scheduler) pollAll(ctx context.Context) {
	for i, p := range s.pollers {
		if ctx.Err() != nil {
			return
		}

		if err := p.Poll(ctx); err != nil {
			s.logger.Error("poll failed",
				"inbox", p.Name,
				"error", err,
			)
		}

		if i < len(s.pollers)-1 && s.pause > 0 {
			select {
			case <-ctx.Done():
				return
			case <-time.After(s.pause):
			}
		}
	}
}
