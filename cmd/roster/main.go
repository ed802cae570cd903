package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/trexis-racing/roster/internal/client/conf"
	"github.com/trexis-racing/roster/pkg/version"
)

/**
 * @file: main.go
 * @description: roster cli, login and member management against the proxy
 */

func newRootCmd(a *app) *cobra.Command {
	v := viper.New()
	conf.SetDefaults(v)

	rootCmd := &cobra.Command{
		Use:           "roster",
		Short:         "roster manages the racing team member list",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// version 不需要凭据
			if cmd.Name() == "version" {
				return nil
			}
			c, err := conf.Load(v)
			if err != nil {
				return err
			}
			return a.open(c)
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.String("api", "", "proxy api base url (env ROSTER_API)")
	flags.Duration("timeout", 0, "request timeout (env ROSTER_TIMEOUT)")
	flags.String("state-dir", "", "directory holding remembered credentials")
	flags.String("durable", "", "remembered credential backend: file or redis")
	flags.String("session", "", "session credential backend: file or memory")
	flags.String("redis-addr", "", "redis address for the redis backend")
	flags.Bool("debug", false, "verbose logs on stderr")
	bindFlags(v, rootCmd, map[string]string{
		conf.KeyAPI:       "api",
		conf.KeyTimeout:   "timeout",
		conf.KeyStateDir:  "state-dir",
		conf.KeyDurable:   "durable",
		conf.KeySession:   "session",
		conf.KeyRedisAddr: "redis-addr",
		conf.KeyDebug:     "debug",
	})

	rootCmd.AddCommand(
		newLoginCmd(a),
		newLogoutCmd(a),
		newWhoamiCmd(a),
		newMembersCmd(a),
		newTeamsCmd(a),
		version.NewVersionCmd("roster"),
	)
	return rootCmd
}

// bindFlags lets a flag override env and defaults only when it is set.
func bindFlags(v *viper.Viper, cmd *cobra.Command, keys map[string]string) {
	for key, name := range keys {
		if err := v.BindPFlag(key, cmd.PersistentFlags().Lookup(name)); err != nil {
			panic(err)
		}
	}
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a := &app{}
	err := newRootCmd(a).ExecuteContext(ctx)
	a.close()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		stop()
		os.Exit(1)
	}
}
