// cmd/sessionkeeper/history.go
package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/tamzrod/session-keeper/internal/history"
	"github.com/tamzrod/session-keeper/internal/keeper"
)

const (
	defaultHistoryLimit = 20
	msgNoHistory        = "No history recorded yet."
)

func newHistoryCmd(g *globalFlags) *cobra.Command {
	var (
		limit int
		db    string
	)

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recent keeper events from the history database",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := g.load(cmd)
			if err != nil {
				return err
			}
			path := cfg.Keeper.HistoryDB
			if db != "" {
				path = db
			}
			if path == "" {
				return fmt.Errorf("no history database configured (use --history-db or keeper.history_db)")
			}

			store, err := history.Open(path)
			if err != nil {
				return err
			}
			defer store.Close()

			events, err := store.Recent(limit)
			if err != nil {
				return err
			}
			printEvents(cmd.OutOrStdout(), events)
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", defaultHistoryLimit, "Max events to show (0 = all)")
	cmd.Flags().StringVar(&db, "history-db", "", "History SQLite file")
	return cmd
}

func printEvents(out io.Writer, events []keeper.Event) {
	if len(events) == 0 {
		fmt.Fprintln(out, msgNoHistory)
		return
	}
	for _, e := range events {
		fmt.Fprintf(out, "%s  %-18s ok=%d failed=%d relogins=%d",
			e.At.Local().Format("2006-01-02 15:04:05"), e.Kind, e.Successful, e.Failed, e.Relogins)
		if e.Detail != "" {
			fmt.Fprintf(out, "  %s", e.Detail)
		}
		fmt.Fprintln(out)
	}
}
