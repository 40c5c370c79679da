// Command chemvizctl talks to a chemviz server: log in, upload equipment CSV
// files and list earlier uploads.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

type globalOptions struct {
	server string
	token  string
}

func newRootCommand() *cobra.Command {
	opts := &globalOptions{
		server: envOr("CHEMVIZ_SERVER", "http://localhost:8000"),
		token:  os.Getenv("CHEMVIZ_TOKEN"),
	}
	addFlags := func(cmd *cobra.Command) {
		cmd.PersistentFlags().StringVar(&opts.server, "server", opts.server, "chemviz server base url ($CHEMVIZ_SERVER)")
		cmd.PersistentFlags().StringVar(&opts.token, "token", opts.token, "api token from login ($CHEMVIZ_TOKEN)")
	}

	var cmd = &cobra.Command{
		Use:   "chemvizctl",
		Short: "chemviz command line client",
		Long:  `Upload chemical equipment CSV files to a chemviz server and read back their statistics.`,
	}
	addFlags(cmd)

	cmd.AddCommand(cmdLogin(opts))
	cmd.AddCommand(cmdLogout(opts))
	cmd.AddCommand(cmdUpload(opts))
	cmd.AddCommand(cmdHistory(opts))
	cmd.AddCommand(cmdShow(opts))
	cmd.AddCommand(cmdDownload(opts))
	cmd.AddCommand(cmdHashPassword())

	return cmd
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func requireToken(opts *globalOptions) error {
	if opts.token == "" {
		return fmt.Errorf("not logged in: pass --token or set CHEMVIZ_TOKEN")
	}
	return nil
}
