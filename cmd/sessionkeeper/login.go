// cmd/sessionkeeper/login.go
package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/tamzrod/session-keeper/internal/config"
	"github.com/tamzrod/session-keeper/internal/session"
	"github.com/tamzrod/session-keeper/internal/session/httpclient"
)

func newLoginCmd(g *globalFlags) *cobra.Command {
	var (
		username string
		password string
		output   string
	)

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in once and save the session cookies",
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

			out := cmd.OutOrStdout()
			if cfg.Session.Username == "" {
				if cfg.Session.Username, err = prompt(out, cmd.InOrStdin(), "Username: "); err != nil {
					return err
				}
			}
			if cfg.Session.Password == "" {
				if cfg.Session.Password, err = readPassword(out, "Password: "); err != nil {
					return err
				}
			}
			if cfg, err = validated(cfg); err != nil {
				return err
			}

			log, closer, err := openLogger(cfg.Log)
			if err != nil {
				return err
			}
			defer closer.Close()

			client, err := httpclient.New(httpConfig(cfg.Session), session.Settings{
				Username: cfg.Session.Username,
				Password: cfg.Session.Password,
			})
			if err != nil {
				return err
			}

			log.Infof("Logging in as %s...", cfg.Session.Username)
			cred, err := client.Login(cmd.Context())
			if err != nil {
				return fmt.Errorf("login failed: %w", err)
			}
			if err := session.SaveCredential(output, cred); err != nil {
				return err
			}
			fmt.Fprintf(out, "Saved %d cookies to %s\n", len(cred), output)
			return nil
		},
	}

	cmd.Flags().StringVar(&username, "username", "", "Login username (default SESSION_USERNAME)")
	cmd.Flags().StringVar(&password, "password", "", "Login password (default SESSION_PASSWORD, prompted on a terminal)")
	cmd.Flags().StringVar(&output, "output", config.DefaultSaveCookies, "Where to save the cookies")
	return cmd
}

func prompt(out io.Writer, in io.Reader, label string) (string, error) {
	fmt.Fprint(out, label)
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && err != io.EOF {
		return "", fmt.Errorf("reading input: %w", err)
	}
	return strings.TrimSpace(line), nil
}

// readPassword reads without echo. It refuses to prompt when stdin is not a terminal.
func readPassword(out io.Writer, label string) (string, error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return "", fmt.Errorf("no password given and stdin is not a terminal")
	}
	fmt.Fprint(out, label)
	b, err := term.ReadPassword(fd)
	fmt.Fprintln(out)
	if err != nil {
		return "", fmt.Errorf("reading password: %w", err)
	}
	return string(b), nil
}
