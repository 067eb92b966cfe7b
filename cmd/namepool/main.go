package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/RowanDark/namepool/config"
	"github.com/RowanDark/namepool/logging"
)

var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "namepool",
		Short: "namepool stores repeated names as handles into a shared string pool.",
		Long: `namepool splits each input line into whitespace-separated tokens and stores
every distinct token once. Records keep only small integer handles into the
pool, which can be dumped, reloaded and resolved back into the input text.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			showVersion, err := cmd.Flags().GetBool("version")
			if err != nil {
				return err
			}
			if showVersion {
				fmt.Fprintf(cmd.OutOrStdout(), "namepool version: %s\n", version)
				fmt.Fprintf(cmd.OutOrStdout(), "commit: %s\n", commit)
				fmt.Fprintf(cmd.OutOrStdout(), "built: %s\n", date)
				return nil
			}
			return cmd.Help()
		},
	}

	cfg := config.BindFlags(root)
	root.Flags().BoolP("version", "V", false, "Show namepool version information and exit")

	root.AddCommand(newBuildCmd(cfg), newResolveCmd(cfg), newCompareCmd(cfg))
	return root
}

// setup applies the configuration profile, validates cfg and opens the logger.
// Callers own the returned logger and must close it.
func setup(cmd *cobra.Command, cfg *config.Config) (*logging.Logger, error) {
	if err := config.ApplyProfile(cfg, cmd); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	levelName := cfg.LogLevel
	if cfg.Verbose && !cmd.Flags().Changed("log-level") {
		levelName = "debug"
	}

	level, err := logging.ParseLevel(levelName)
	if err != nil {
		return nil, err
	}

	console := cmd.ErrOrStderr()
	if cfg.Silent {
		console = io.Discard
	}

	logger, err := logging.New(logging.Options{Level: level, Console: console, FilePath: cfg.LogFile})
	if err != nil {
		return nil, err
	}

	if cfg.LogFile != "" {
		logger.Infof("File logging enabled: %s", cfg.LogFile)
	}
	return logger, nil
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		if !strings.HasSuffix(err.Error(), "help requested") {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(1)
	}
}
