// cmd/sessionkeeper/compare.go
package main

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/tamzrod/session-keeper/internal/logger"
	"github.com/tamzrod/session-keeper/internal/session"
	"github.com/tamzrod/session-keeper/internal/session/httpclient"
)

// comparison is the outcome of two independent logins.
type comparison struct {
	First  session.Credential
	Second session.Credential
	Diff   session.Difference
}

func newCompareLoginsCmd(g *globalFlags) *cobra.Command {
	var (
		username   string
		password   string
		delay      time.Duration
		savePrefix string
	)

	cmd := &cobra.Command{
		Use:   "compare-logins",
		Short: "Log in twice and report whether each login gets its own cookies",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := g.load(cmd)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("username") {
				cfg.Session.Username = username
			}
			if cmd.Flags().Changed("password") {
				cfg.Session.Password = password
			}
			if cfg.Session.Username == "" || cfg.Session.Password == "" {
				return fmt.Errorf("compare-logins needs a username and a password")
			}
			if cfg, err = validated(cfg); err != nil {
				return err
			}

			log, closer, err := openLogger(cfg.Log)
			if err != nil {
				return err
			}
			defer closer.Close()

			res, err := compareLogins(cmd.Context(), log, httpConfig(cfg.Session), session.Settings{
				Username: cfg.Session.Username,
				Password: cfg.Session.Password,
			}, delay)
			if err != nil {
				return err
			}

			if savePrefix != "" {
				for i, cred := range []session.Credential{res.First, res.Second} {
					path := fmt.Sprintf("%s_%d.json", savePrefix, i+1)
					if err := session.SaveCredential(path, cred); err != nil {
						return err
					}
					log.Infof("Saved login %d cookies to %s", i+1, path)
				}
			}

			printComparison(cmd.OutOrStdout(), res)
			return nil
		},
	}

	cmd.Flags().StringVar(&username, "username", "", "Login username (default SESSION_USERNAME)")
	cmd.Flags().StringVar(&password, "password", "", "Login password (default SESSION_PASSWORD)")
	cmd.Flags().DurationVar(&delay, "delay", 5*time.Second, "Wait between the two logins")
	cmd.Flags().StringVar(&savePrefix, "save-prefix", "", "Save each login's cookies to <prefix>_1.json and <prefix>_2.json")
	return cmd
}

// compareLogins logs in with two fresh clients, delay apart, and diffs the cookies.
func compareLogins(ctx context.Context, log *logger.Logger, hc httpclient.Config, s session.Settings, delay time.Duration) (comparison, error) {
	var res comparison

	login := func(n int) (session.Credential, error) {
		c, err := httpclient.New(hc, s)
		if err != nil {
			return nil, err
		}
		log.Infof("Performing login %d...", n)
		cred, err := c.Login(ctx)
		if err != nil {
			return nil, fmt.Errorf("login %d failed: %w", n, err)
		}
		return cred, nil
	}

	var err error
	if res.First, err = login(1); err != nil {
		return res, err
	}

	if delay > 0 {
		log.Infof("Waiting %s before second login...", delay)
		t := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			t.Stop()
			return res, ctx.Err()
		case <-t.C:
		}
	}

	if res.Second, err = login(2); err != nil {
		return res, err
	}

	res.Diff = session.Diff(res.First, res.Second)
	return res, nil
}

func printComparison(out io.Writer, res comparison) {
	d := res.Diff

	if len(d.OnlyInA) > 0 {
		fmt.Fprintln(out, "Cookies only in first login:")
		for _, name := range d.OnlyInA {
			fmt.Fprintf(out, "  %s\n", name)
		}
	}
	if len(d.OnlyInB) > 0 {
		fmt.Fprintln(out, "Cookies only in second login:")
		for _, name := range d.OnlyInB {
			fmt.Fprintf(out, "  %s\n", name)
		}
	}
	if len(d.Changed) > 0 {
		fmt.Fprintln(out, "Cookies with different values:")
		for _, name := range d.Changed {
			fmt.Fprintf(out, "  %s:\n    first:  %s\n    second: %s\n", name, res.First[name], res.Second[name])
		}
	}
	if len(d.Unchanged) > 0 {
		fmt.Fprintln(out, "Cookies with identical values:")
		for _, name := range d.Unchanged {
			fmt.Fprintf(out, "  %s\n", name)
		}
	}

	if len(d.Changed) > 0 {
		fmt.Fprintln(out, "RESULT: Logins generate different cookies. Multiple sessions should not interfere.")
		return
	}
	if d.Identical() {
		fmt.Fprintln(out, "RESULT: Logins generate identical cookies. Multiple sessions may interfere with each other.")
		return
	}
	fmt.Fprintln(out, "RESULT: Logins share cookie values but differ in cookie names. Multiple sessions may interfere with each other.")
}
