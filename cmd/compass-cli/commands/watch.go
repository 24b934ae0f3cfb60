package commands

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"bellweaver-backend/internal/components/chrono"
	"bellweaver-backend/internal/components/serviceutil"
	"bellweaver-backend/internal/components/telemetry"
	"bellweaver-backend/internal/eventstore"

	"github.com/spf13/cobra"
)

const (
	report_watch_sync = "watch.sync"
	syncTimeout       = time.Minute * 2
)

var watchPruneDays *int

func init() {
	watchPruneDays = watchCmd.Flags().Int("prune", 30, "Delete stored events that finished more than this many days ago, 0 keeps everything.")
	rootCmd.AddCommand(watchCmd)
}

type watcher struct {
	env       environment
	store     eventstore.Store
	pruneDays int
	tel       telemetry.API
}

// run performs one sync of the upcoming `watch.days` days.
func (w watcher) run(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, syncTimeout)
	defer cancel()

	from := w.env.time.Now()
	r := dateRange{
		From: from,
		To:   from.AddDate(0, 0, w.env.config.Watch.Days),
	}
	result, err := syncOnce(ctx, w.env, w.store, r, w.pruneDays)
	if err != nil {
		w.tel.ReportBroken(report_watch_sync, err)
		return
	}
	w.tel.ReportCount(report_watch_sync, int64(result.Stored))
	slog.Info(
		"synced events",
		"from", r.startDate(),
		"to", r.endDate(),
		"stored", result.Stored,
		"pruned", result.Pruned,
	)
}

// runWatch syncs once and then on every tick of the schedule until ctx is
// done. The store is closed before returning.
func runWatch(ctx context.Context, env environment, pruneDays int) error {
	store, closeStore, err := storeOpener(env)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer closeStore()

	tel := telemetry.NewScopedAPI("compass_cli", env.tel)
	cron := chrono.NewStandardCron(env.time.Location(), tel)
	defer func() { <-cron.Stop().Done() }()

	w := watcher{
		env:       env,
		store:     store,
		pruneDays: pruneDays,
		tel:       tel,
	}
	err = cron.Cron(env.config.Watch.Schedule, func() { w.run(ctx) })
	if err != nil {
		return fmt.Errorf("invalid watch schedule: %w", err)
	}

	telemetry.InstrumentPerfStats(ctx, tel)
	w.run(ctx)
	slog.Info("watching for events", "schedule", env.config.Watch.Schedule, "days", env.config.Watch.Days)

	<-ctx.Done()
	return nil
}

var watchCmd = &cobra.Command{
	Use:   "watch [--prune <days>]",
	Short: "Syncs upcoming events into the store on the configured cron schedule until interrupted.",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		ctx := serviceutil.SignalContext(cmd.Context())
		err := runWatch(ctx, env, *watchPruneDays)
		if err != nil {
			serviceutil.Fatal("failed to watch", err)
		}
		slog.Info("stopped watching")
	},
}
