// cmd/sessionkeeper/status.go
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/tamzrod/session-keeper/internal/status"
)

func newStatusCmd(g *globalFlags) *cobra.Command {
	var (
		watch      bool
		statusFile string
	)

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show the keeper's last status snapshot",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := g.load(cmd)
			if err != nil {
				return err
			}
			path := cfg.Keeper.StatusFile
			if statusFile != "" {
				path = statusFile
			}
			out := cmd.OutOrStdout()

			if !watch {
				snap, found, err := status.Read(path)
				if err != nil {
					return err
				}
				show(out, snap, found)
				return nil
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return watchStatus(ctx, out, path)
		},
	}

	cmd.Flags().BoolVar(&watch, "watch", false, "Re-render whenever the status file changes")
	cmd.Flags().StringVar(&statusFile, "status-file", "", "Status snapshot path")
	return cmd
}

func watchStatus(ctx context.Context, out io.Writer, path string) error {
	first := true
	return status.Watch(ctx, path, func(snap status.Snapshot, found bool) {
		if !first {
			fmt.Fprintln(out, "----")
		}
		first = false
		show(out, snap, found)
	})
}

func show(out io.Writer, snap status.Snapshot, found bool) {
	if !found {
		fmt.Fprintln(out, status.NotRunningText)
		return
	}
	status.Render(out, snap, time.Now())
}
