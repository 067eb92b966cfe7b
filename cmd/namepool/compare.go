package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/RowanDark/namepool/config"
	"github.com/RowanDark/namepool/memcheck"
)

func newCompareCmd(cfg *config.Config) *cobra.Command {
	var opts memcheck.Options

	cmd := &cobra.Command{
		Use:   "compare",
		Short: "Compare heap use of plain strings against pooled composite values",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := setup(cmd, cfg)
			if err != nil {
				return err
			}
			defer logger.Close()

			if opts.First < 0 || opts.Last < 0 {
				return fmt.Errorf("--first and --last must not be negative")
			}
			if !cmd.Flags().Changed("rand-seed") {
				opts.Seed = uint64(time.Now().UnixNano())
			}
			opts.Strategy = cfg.InternStrategy()
			opts.Logger = logger.With("memcheck")

			logger.Infof("Comparing %d x %d generated names (strategy=%s)", opts.First, opts.Last, opts.Strategy)
			report := memcheck.Compare(opts)
			fmt.Fprint(cmd.OutOrStdout(), report.String())
			return nil
		},
	}

	cmd.Flags().IntVar(&opts.First, "first", memcheck.DefaultFirst, "Number of generated first names")
	cmd.Flags().IntVar(&opts.Last, "last", memcheck.DefaultLast, "Number of generated last names")
	cmd.Flags().Uint64Var(&opts.Seed, "rand-seed", 0, "Seed for name generation (random when unset)")
	return cmd
}
