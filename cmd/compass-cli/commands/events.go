package commands

import (
	"os"

	"bellweaver-backend/internal/components/serviceutil"
	"bellweaver-backend/internal/scrapers/compass"

	"github.com/spf13/cobra"
)

const defaultRangeDays = 14

var (
	eventsFrom   *string
	eventsTo     *string
	eventsLimit  *int
	eventsOutput *string
)

func init() {
	eventsFrom = eventsCmd.Flags().String("from", "today", "The first day to fetch, YYYY-MM-DD or natural language.")
	eventsTo = eventsCmd.Flags().String("to", "", "The last day to fetch (inclusive), defaults to 14 days after --from.")
	eventsLimit = eventsCmd.Flags().Int("limit", compass.DefaultEventLimit, "The maximum number of events to fetch.")
	eventsOutput = eventsCmd.Flags().StringP("output", "o", formatTable, "The output format: table, json, yaml or ics.")
	rootCmd.AddCommand(eventsCmd)
}

var eventsCmd = &cobra.Command{
	Use:   "events [--from <date>] [--to <date>] [--limit <n>] [-o table|json|yaml|ics]",
	Short: "Logs in and prints the calendar events within a date range.",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		r, err := resolveRange(*eventsFrom, *eventsTo, defaultRangeDays, env.time.Now())
		if err != nil {
			serviceutil.Fatal("invalid date range", err)
		}

		events, err := fetch(cmd.Context(), env, r, *eventsLimit)
		if err != nil {
			serviceutil.Fatal("failed to fetch events", err)
		}

		err = writeEvents(os.Stdout, *eventsOutput, events, env.time.Location())
		if err != nil {
			serviceutil.Fatal("failed to write events", err)
		}
	},
}
