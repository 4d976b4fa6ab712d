// cmd/sessionkeeper/timeout.go
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/tamzrod/session-keeper/internal/config"
	"github.com/tamzrod/session-keeper/internal/interval"
	"github.com/tamzrod/session-keeper/internal/logger"
	"github.com/tamzrod/session-keeper/internal/session"
	"github.com/tamzrod/session-keeper/internal/session/httpclient"
	"github.com/tamzrod/session-keeper/internal/timeout"
)

type timeoutFlags struct {
	adaptive    bool
	start       int
	max         int
	multiplier  float64
	cookiesFile string
	saveCookies string
	noNotify    bool
}

func newTimeoutTestCmd(g *globalFlags) *cobra.Command {
	f := &timeoutFlags{}

	cmd := &cobra.Command{
		Use:   "timeout-test",
		Short: "Measure how long the session survives without activity",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := g.load(cmd)
			if err != nil {
				return err
			}
			f.apply(cmd, cfg)
			if !cmd.Flags().Changed("log-file") && cfg.Log.File == "" {
				cfg.Log.File = cfg.TimeoutTest.LogFile
			}
			if cfg, err = validated(cfg); err != nil {
				return err
			}

			log, closer, err := openLogger(cfg.Log)
			if err != nil {
				return err
			}
			defer closer.Close()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			res, err := runTimeoutTest(ctx, cfg, log)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), res.Summary())
			return nil
		},
	}

	fl := cmd.Flags()
	fl.BoolVar(&f.adaptive, "adaptive", false, "Use adaptive intervals based on elapsed time")
	fl.IntVar(&f.start, "start-interval", config.DefaultStartSeconds, "First wait in seconds")
	fl.IntVar(&f.max, "max-interval", config.DefaultMaxSeconds, "Longest wait in seconds")
	fl.Float64Var(&f.multiplier, "multiplier", config.DefaultMultiplier, "Growth factor for non-adaptive intervals")
	fl.StringVar(&f.cookiesFile, "cookies-file", "", "Test cookies saved in this JSON file instead of logging in")
	fl.StringVar(&f.saveCookies, "save-cookies", config.DefaultSaveCookies, "Where to save cookies after logging in")
	fl.BoolVar(&f.noNotify, "no-notifications", false, "Disable the completion notification")
	return cmd
}

func (f *timeoutFlags) apply(cmd *cobra.Command, cfg *config.Config) {
	fl := cmd.Flags()
	tt := &cfg.TimeoutTest
	if fl.Changed("adaptive") {
		tt.Adaptive = f.adaptive
	}
	if fl.Changed("start-interval") {
		tt.StartSeconds = f.start
	}
	if fl.Changed("max-interval") {
		tt.MaxSeconds = f.max
	}
	if fl.Changed("multiplier") {
		tt.Multiplier = f.multiplier
	}
	if fl.Changed("cookies-file") {
		cfg.Session.CookiesFile = f.cookiesFile
	}
	if fl.Changed("save-cookies") {
		tt.SaveCookies = f.saveCookies
	}
	if f.noNotify {
		cfg.Notify.Disabled = true
	}
}

func runTimeoutTest(ctx context.Context, cfg *config.Config, log *logger.Logger) (timeout.Result, error) {
	client, err := timeoutClient(ctx, cfg, log)
	if err != nil {
		return timeout.Result{}, err
	}

	notifier, err := buildNotifier(cfg, log)
	if err != nil {
		return timeout.Result{}, err
	}

	tt := cfg.TimeoutTest
	tester, err := timeout.New(timeout.Options{
		Prober: client,
		Policy: interval.Policy{
			Adaptive:   tt.Adaptive,
			Multiplier: tt.Multiplier,
		},
		Start:    time.Duration(tt.StartSeconds) * time.Second,
		Max:      time.Duration(tt.MaxSeconds) * time.Second,
		Notifier: notifier,
		Log:      log,
	})
	if err != nil {
		return timeout.Result{}, err
	}
	return tester.Run(ctx)
}

// timeoutClient builds a client from the cookies file, or logs in fresh and
// saves the resulting cookies.
func timeoutClient(ctx context.Context, cfg *config.Config, log *logger.Logger) (*httpclient.Client, error) {
	hc := httpConfig(cfg.Session)

	if path := cfg.Session.CookiesFile; path != "" {
		cred, err := loadCookies(path, log)
		if err != nil {
			return nil, err
		}
		return httpclient.New(hc, session.Settings{Credential: cred})
	}

	s := session.Settings{Username: cfg.Session.Username, Password: cfg.Session.Password}
	if !s.HasPassword() {
		return nil, errors.New("SESSION_USERNAME and SESSION_PASSWORD must be set when no cookies file is given")
	}
	client, err := httpclient.New(hc, s)
	if err != nil {
		return nil, err
	}

	log.Infof("Logging in as %s...", s.Username)
	cred, err := client.Login(ctx)
	if err != nil {
		return nil, fmt.Errorf("login failed: %w", err)
	}
	log.Infof("Login successful")

	if out := cfg.TimeoutTest.SaveCookies; out != "" {
		if err := session.SaveCredential(out, cred); err != nil {
			return nil, err
		}
		log.Infof("Cookies saved to %s", out)
	}
	return client, nil
}
