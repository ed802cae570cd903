package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/trexis-racing/roster/internal/client/view"
	"golang.org/x/term"
)

func newLoginCmd(a *app) *cobra.Command {
	var (
		username string
		password string
		remember bool
	)
	cmd := &cobra.Command{
		Use:   "login",
		Short: "log in and keep the token for later commands",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			v := view.NewLoginView(a.session, a.router)
			if v.Open() && username == "" {
				fmt.Fprintf(cmd.OutOrStdout(), "already logged in as %s\n", a.session.CurrentUser().Username)
				return nil
			}
			if username != "" {
				v.Username = username
			}
			if cmd.Flags().Changed("remember") {
				v.RememberMe = remember
			}

			in := bufio.NewReader(cmd.InOrStdin())
			if v.Username == "" {
				name, err := prompt(in, cmd.ErrOrStderr(), "Username: ")
				if err != nil {
					return err
				}
				v.Username = name
			}
			if password == "" {
				secret, err := readPassword(in, cmd.InOrStdin(), cmd.ErrOrStderr())
				if err != nil {
					return err
				}
				password = secret
			}

			if err := v.Submit(cmd.Context(), password); err != nil {
				return errors.New(v.Message())
			}
			fmt.Fprintf(cmd.OutOrStdout(), "logged in as %s\n", a.session.CurrentUser().Username)
			return nil
		},
	}
	cmd.Flags().StringVarP(&username, "username", "u", "", "username, prompted when omitted")
	cmd.Flags().StringVar(&password, "password", "", "password, prompted without echo when omitted")
	cmd.Flags().BoolVar(&remember, "remember", false, "remember the login across terminal sessions")
	return cmd
}

func prompt(in *bufio.Reader, out io.Writer, label string) (string, error) {
	fmt.Fprint(out, label)
	line, err := in.ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		return "", fmt.Errorf("read %s: %w", strings.TrimSuffix(strings.ToLower(label), ": "), err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// readPassword disables echo on a terminal and falls back to a plain line
// when stdin is piped.
func readPassword(in *bufio.Reader, src io.Reader, out io.Writer) (string, error) {
	f, ok := src.(*os.File)
	if !ok || !term.IsTerminal(int(f.Fd())) {
		return prompt(in, out, "Password: ")
	}
	fd := int(f.Fd())

	fmt.Fprint(out, "Password: ")
	secret, err := term.ReadPassword(fd)
	fmt.Fprintln(out)
	if err != nil {
		return "", fmt.Errorf("read password: %w", err)
	}
	return string(secret), nil
}

func newLogoutCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "forget the current login",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			a.session.Logout()
			fmt.Fprintln(cmd.OutOrStdout(), "logged out")
		},
	}
}

func newWhoamiCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "print the logged in user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			user := a.session.CurrentUser()
			if !a.session.IsLoggedIn() || user == nil {
				return errLoginRequired
			}
			scope := "session"
			if a.session.IsRemembered() {
				scope = "remembered"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s <%s> (%s)\n", user.Username, user.Email, scope)
			return nil
		},
	}
}
