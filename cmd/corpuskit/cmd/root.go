// Package cmd provides the CLI commands for corpuskit.
package cmd

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/corpuskit/corpuskit/internal/logging"
	"github.com/corpuskit/corpuskit/pkg/version"
)

var (
	debugMode      bool
	loggingCleanup func()
)

// NewRootCmd creates the root command for the corpuskit CLI.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "corpuskit",
		Short:   "Local-first sparse retrieval artifact engine",
		Version: version.Version,
		Long: `corpuskit builds and queries a local, checksummed retrieval
artifact: chunked documents, a BM25 index, and a manifest, all under
one artifact directory. No network access, no vector index.`,
	}
	cmd.SetVersionTemplate("corpuskit version {{.Version}}\n")

	cmd.PersistentFlags().BoolVar(&debugMode, "debug", false, "enable debug logging to ~/.corpuskit/logs/")
	cmd.PersistentPreRunE = startLogging
	cmd.PersistentPostRunE = stopLogging

	cmd.AddCommand(newBuildCmd())
	cmd.AddCommand(newQueryCmd())
	cmd.AddCommand(newVerifyCmd())
	cmd.AddCommand(newTombstoneCmd())
	cmd.AddCommand(newVersionCmd())
	cmd.AddCommand(newLogsCmd())

	return cmd
}

func startLogging(cmd *cobra.Command, _ []string) error {
	if !debugMode {
		return nil
	}
	cleanup, err := logging.SetupForOperation(logging.DebugConfig(), cmd.Name())
	if err != nil {
		return err
	}
	loggingCleanup = cleanup
	slog.Debug("debug logging enabled", slog.String("log_file", logging.DefaultLogPath()), slog.String("op", cmd.Name()))
	return nil
}

func stopLogging(_ *cobra.Command, _ []string) error {
	if loggingCleanup != nil {
		loggingCleanup()
		loggingCleanup = nil
	}
	return nil
}

// Execute runs the root command.
func Execute() error {
	return NewRootCmd().Execute()
}
