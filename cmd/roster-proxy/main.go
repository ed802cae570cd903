package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/trexis-racing/roster/internal/proxy/bootstrap"
	"github.com/trexis-racing/roster/pkg/version"
)

/**
 * @file: main.go
 * @description: roster proxy, forwards /api to the upstream store and issues tokens
 */

var configFile string

var rootCmd = &cobra.Command{
	Use:          "roster-proxy",
	Short:        "roster proxy forwards member requests to the upstream store",
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		// Bootstrap 初始化应用
		app, cleanup, err := bootstrap.Bootstrap(configFile, initApp)
		if err != nil {
			return err
		}

		// 启动应用并等待退出信号
		bootstrap.Run(app, cleanup)
		return nil
	},
}

func init() {
	rootCmd.Flags().StringVarP(&configFile, "conf", "c", "conf.d/config.toml", "conf file path, e.g. -c ./conf.d/config.toml")
	rootCmd.AddCommand(version.NewVersionCmd("roster-proxy"))
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
