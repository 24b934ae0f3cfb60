package commands

import (
	"context"
	"fmt"
	"log/slog"

	"bellweaver-backend/internal/components/serviceutil"
	"bellweaver-backend/internal/eventstore"
	"bellweaver-backend/internal/scrapers/compass"

	"github.com/spf13/cobra"
)

var (
	syncFrom      *string
	syncTo        *string
	syncPruneDays *int
)

func init() {
	syncFrom = syncCmd.Flags().String("from", "today", "The first day to fetch, YYYY-MM-DD or natural language.")
	syncTo = syncCmd.Flags().String("to", "", "The last day to fetch (inclusive), defaults to watch.days after --from.")
	syncPruneDays = syncCmd.Flags().Int("prune", 0, "Delete stored events that finished more than this many days ago, 0 keeps everything.")
	rootCmd.AddCommand(syncCmd)
}

type syncResult struct {
	Fetched int
	Stored  int
	Pruned  int64
}

// syncOnce fetches the range and pushes it into the store.
func syncOnce(ctx context.Context, env environment, store eventstore.Store, r dateRange, pruneDays int) (syncResult, error) {
	events, err := fetch(ctx, env, r, compass.DefaultEventLimit)
	if err != nil {
		return syncResult{}, fmt.Errorf("fetch events: %w", err)
	}

	now := env.time.Now()
	stored, err := store.Push(ctx, now, events)
	if err != nil {
		return syncResult{}, fmt.Errorf("store events: %w", err)
	}
	result := syncResult{Fetched: len(events), Stored: stored}

	if pruneDays > 0 {
		result.Pruned, err = store.Prune(ctx, now.AddDate(0, 0, -pruneDays))
		if err != nil {
			return result, fmt.Errorf("prune events: %w", err)
		}
	}
	return result, nil
}

func openStore(env environment) (eventstore.Store, func() error, error) {
	db, err := eventstore.OpenDB(env.config.Store)
	if err != nil {
		return eventstore.Store{}, nil, err
	}
	return eventstore.NewStore(db, env.time.Location(), env.tel), db.Close, nil
}

// storeOpener is swapped out by tests.
var storeOpener = openStore

// runSync opens the store for a single sync, it is closed before returning.
func runSync(ctx context.Context, env environment, r dateRange, pruneDays int) (syncResult, error) {
	store, closeStore, err := storeOpener(env)
	if err != nil {
		return syncResult{}, fmt.Errorf("open store: %w", err)
	}
	defer closeStore()

	return syncOnce(ctx, env, store, r, pruneDays)
}

var syncCmd = &cobra.Command{
	Use:   "sync [--from <date>] [--to <date>] [--prune <days>]",
	Short: "Fetches the calendar events within a date range and writes them to the store.",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		r, err := resolveRange(*syncFrom, *syncTo, env.config.Watch.Days, env.time.Now())
		if err != nil {
			serviceutil.Fatal("invalid date range", err)
		}

		result, err := runSync(cmd.Context(), env, r, *syncPruneDays)
		if err != nil {
			serviceutil.Fatal("failed to sync", err)
		}
		slog.Info(
			"sync complete",
			"from", r.startDate(),
			"to", r.endDate(),
			"fetched", result.Fetched,
			"stored", result.Stored,
			"pruned", result.Pruned,
		)
	},
}
