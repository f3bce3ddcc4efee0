// Package janitor runs scheduled maintenance: purging trashed tasks that
// have aged past the retention window.
package janitor

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/quatroapp/quatro/internal/notify"
	"github.com/quatroapp/quatro/internal/store"
)

// cronParser uses standard 5-field cron expressions (minute, hour, dom, month, dow).
var cronParser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)

// Opts holds parameters for running the janitor.
type Opts struct {
	Store     *store.Store
	Schedule  string        // 5-field cron expression
	Retention time.Duration // how long trashed tasks are kept
	Notifier  notify.Notifier
	Out       io.Writer
}

// Start runs the purge loop until ctx is cancelled. It blocks; callers run
// it in a goroutine.
func Start(ctx context.Context, opts Opts) error {
	if opts.Store == nil {
		return fmt.Errorf("janitor: store is required")
	}
	sched, err := cronParser.Parse(opts.Schedule)
	if err != nil {
		return fmt.Errorf("janitor: parse schedule %q: %w", opts.Schedule, err)
	}

	if opts.Out != nil {
		fmt.Fprintf(opts.Out, "Janitor running on schedule %q (retention %s)\n", opts.Schedule, opts.Retention)
	}

	for {
		next := sched.Next(time.Now())
		select {
		case <-ctx.Done():
			return nil
		case <-time.After(time.Until(next)):
		}

		purged := opts.Store.PurgeTrashed(opts.Retention)
		if purged == 0 {
			continue
		}
		if opts.Out != nil {
			fmt.Fprintf(opts.Out, "Purged %d trashed task(s)\n", purged)
		}
		if opts.Notifier != nil {
			opts.Notifier.Notify(ctx, notify.Event{
				Title:    "Trash purged",
				Body:     fmt.Sprintf("%d task(s) past the %s retention window were removed", purged, opts.Retention),
				Severity: notify.SeverityInfo,
			})
		}
	}
}
