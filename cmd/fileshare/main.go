package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}

// rootCmd without a subcommand behaves like "serve".
func rootCmd() *cobra.Command {
	var flags serveFlags

	cmd := &cobra.Command{
		Use:   "fileshare",
		Short: "Share a directory over HTTP",
		Long: `fileshare serves one directory over HTTP: browse and download under
/files/, upload through the form at /upload or with "fileshare push".

Examples:
  fileshare -d ./shared -p 9000
  fileshare push report.pdf --server http://host:9000
  fileshare pull report.pdf --server http://host:9000`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, flags)
		},
	}
	bindServeFlags(cmd, &flags)

	cmd.AddCommand(
		serveCmd(),
		pushCmd(),
		pullCmd(),
		versionCmd(),
	)

	return cmd
}
