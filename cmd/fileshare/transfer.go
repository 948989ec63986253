package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/yourname/fileshare/pkg/shareclient"
)

const defaultServer = "http://localhost:9000"

func clientFor(cmd *cobra.Command, server string, quiet bool) *shareclient.Client {
	var opts []shareclient.Option
	if !quiet {
		opts = append(opts, shareclient.WithProgress(cmd.ErrOrStderr()))
	}
	return shareclient.New(server, opts...)
}

func pushCmd() *cobra.Command {
	var (
		server string
		quiet  bool
	)

	cmd := &cobra.Command{
		Use:   "push FILE...",
		Short: "Upload files to a server",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return clientFor(cmd, server, quiet).Push(cmd.Context(), args...)
		},
	}

	cmd.Flags().StringVarP(&server, "server", "s", defaultServer, "Server base URL")
	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "Do not draw a progress bar")

	return cmd
}

func pullCmd() *cobra.Command {
	var (
		server string
		out    string
		quiet  bool
	)

	cmd := &cobra.Command{
		Use:   "pull NAME",
		Short: "Download a file from a server",
		Long: `Download NAME from the server's /files/ directory.

The file is written to ./NAME unless -o is given; "-o -" writes to stdout.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPull(cmd, clientFor(cmd, server, quiet), args[0], out)
		},
	}

	cmd.Flags().StringVarP(&server, "server", "s", defaultServer, "Server base URL")
	cmd.Flags().StringVarP(&out, "output", "o", "", "Output path, - for stdout")
	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "Do not draw a progress bar")

	return cmd
}

func runPull(cmd *cobra.Command, c *shareclient.Client, name, out string) error {
	if out == "-" {
		_, err := c.Pull(cmd.Context(), name, cmd.OutOrStdout())
		return err
	}
	if out == "" {
		out = filepath.Base(name)
	}

	f, err := os.Create(out)
	if err != nil {
		return err
	}
	_, pullErr := c.Pull(cmd.Context(), name, f)
	closeErr := f.Close()
	if err = errors.Join(pullErr, closeErr); err != nil {
		_ = os.Remove(out)
		return fmt.Errorf("pull %s: %w", name, err)
	}

	return nil
}
