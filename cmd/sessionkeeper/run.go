// cmd/sessionkeeper/run.go
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/tamzrod/session-keeper/internal/config"
	"github.com/tamzrod/session-keeper/internal/history"
	"github.com/tamzrod/session-keeper/internal/keeper"
	"github.com/tamzrod/session-keeper/internal/logger"
	"github.com/tamzrod/session-keeper/internal/session/httpclient"
	"github.com/tamzrod/session-keeper/internal/status"
)

type runFlags struct {
	username    string
	password    string
	cookiesFile string
	interval    int
	monitor     bool
	email       string
	noNotify    bool
	desktop     string
	statusFile  string
	historyDB   string
}

func newRunCmd(g *globalFlags) *cobra.Command {
	f := &runFlags{}

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the session keeper until interrupted",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := g.load(cmd)
			if err != nil {
				return err
			}
			f.apply(cmd, cfg)
			if cfg, err = validated(cfg); err != nil {
				return err
			}

			log, closer, err := openLogger(cfg.Log)
			if err != nil {
				return err
			}
			defer closer.Close()

			return runKeeper(cmd.Context(), cfg, log)
		},
	}

	fl := cmd.Flags()
	fl.StringVar(&f.username, "username", "", "Login username (default SESSION_USERNAME)")
	fl.StringVar(&f.password, "password", "", "Login password (default SESSION_PASSWORD)")
	fl.StringVar(&f.cookiesFile, "cookies-file", "", "Start from cookies saved in this JSON file")
	fl.IntVar(&f.interval, "interval", config.DefaultIntervalSeconds, "Check interval in seconds")
	fl.BoolVar(&f.monitor, "monitor", false, "Monitor cookie changes")
	fl.StringVar(&f.email, "email", "", "Send email notifications to this address (enables --monitor)")
	fl.BoolVar(&f.noNotify, "no-notifications", false, "Disable notifications")
	fl.StringVar(&f.desktop, "desktop", "", "Desktop notifications via notify-send or osascript")
	fl.StringVar(&f.statusFile, "status-file", "", "Status snapshot path")
	fl.StringVar(&f.historyDB, "history-db", "", "Record check history in this SQLite file")
	return cmd
}

// apply copies explicitly set flags over cfg.
func (f *runFlags) apply(cmd *cobra.Command, cfg *config.Config) {
	fl := cmd.Flags()
	if fl.Changed("username") {
		cfg.Session.Username = f.username
	}
	if fl.Changed("password") {
		cfg.Session.Password = f.password
	}
	if fl.Changed("cookies-file") {
		cfg.Session.CookiesFile = f.cookiesFile
	}
	if fl.Changed("interval") {
		cfg.Keeper.IntervalSeconds = f.interval
	}
	if fl.Changed("monitor") {
		cfg.Keeper.MonitorCookies = f.monitor
	}
	if f.email != "" {
		cfg.Notify.Email.Enabled = true
		cfg.Notify.Email.To = f.email
	}
	if f.noNotify {
		cfg.Notify.Disabled = true
	}
	if fl.Changed("desktop") {
		cfg.Notify.Desktop = f.desktop
	}
	if fl.Changed("status-file") {
		cfg.Keeper.StatusFile = f.statusFile
	}
	if fl.Changed("history-db") {
		cfg.Keeper.HistoryDB = f.historyDB
	}
}

func runKeeper(parent context.Context, cfg *config.Config, log *logger.Logger) error {
	cred, err := loadCookies(cfg.Session.CookiesFile, log)
	if err != nil {
		return err
	}

	notifier, err := buildNotifier(cfg, log)
	if err != nil {
		return err
	}

	var journal keeper.Journal
	if cfg.Keeper.HistoryDB != "" {
		store, err := history.Open(cfg.Keeper.HistoryDB)
		if err != nil {
			return err
		}
		defer store.Close()
		journal = store
		log.Infof("Recording check history to %s", cfg.Keeper.HistoryDB)
	}

	sink := status.NewFileSink(cfg.Keeper.StatusFile)

	k, err := keeper.New(keeper.Options{
		Factory:           httpclient.NewFactory(httpConfig(cfg.Session)),
		Username:          cfg.Session.Username,
		Password:          cfg.Session.Password,
		Credential:        cred,
		Interval:          time.Duration(cfg.Keeper.IntervalSeconds) * time.Second,
		MonitorCredential: cfg.Keeper.MonitorCookies,
		Notifier:          notifier,
		Sink:              sink,
		Journal:           journal,
		Log:               log,
		StopWait:          time.Duration(cfg.Keeper.StopWaitMs) * time.Millisecond,
	})
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := k.Start(ctx); err != nil {
		return err
	}
	log.Infof("Session keeper running, status in %s. Press Ctrl+C to stop.", sink.Path())

	<-ctx.Done()
	log.Infof("Received shutdown signal, stopping session keeper...")
	k.Stop()
	return nil
}
