package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/RowanDark/namepool/composite"
	"github.com/RowanDark/namepool/config"
	"github.com/RowanDark/namepool/intern"
	"github.com/RowanDark/namepool/logging"
	"github.com/RowanDark/namepool/output"
)

func newResolveCmd(cfg *config.Config) *cobra.Command {
	var recordsPath string

	cmd := &cobra.Command{
		Use:   "resolve",
		Short: "Rebuild record text from stored handles and a table dump",
		Long: `resolve loads a table written by "build --table" and a JSON record file, then
rebuilds every record's text from its handles. A handle outside the table
fails the command.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := setup(cmd, cfg)
			if err != nil {
				return err
			}
			defer logger.Close()

			return runResolve(cmd, cfg, logger, recordsPath)
		},
	}

	cmd.Flags().StringVar(&recordsPath, "records", "", "JSON record file written by build")
	return cmd
}

func runResolve(cmd *cobra.Command, cfg *config.Config, logger *logging.Logger, recordsPath string) error {
	if cfg.TablePath == "" {
		return errors.New("--table is required")
	}
	if recordsPath == "" {
		return errors.New("--records is required")
	}

	values, err := output.LoadTable(cfg.TablePath)
	if err != nil {
		return err
	}
	pool := intern.NewFrom(cfg.InternStrategy(), values)
	if pool.Len() != len(values) {
		logger.Warnf("Table %s contains %d duplicate entries; handles after the first duplicate may not resolve as stored", cfg.TablePath, len(values)-pool.Len())
	}

	records, err := output.LoadRecords(recordsPath)
	if err != nil {
		return err
	}

	writer, err := output.NewWriter(cfg, cmd.OutOrStdout())
	if err != nil {
		return err
	}

	changed := 0
	for _, record := range records {
		text, err := composite.FromHandles(record.Handles).String(pool)
		if err != nil {
			_ = writer.Close()
			return fmt.Errorf("%s line %d: %w", record.Source, record.Line, err)
		}
		if record.Text != "" && record.Text != text {
			changed++
			logger.Debugf("%s line %d: stored text %q resolves to %q", record.Source, record.Line, record.Text, text)
		}
		record.Text = text
		if err := writer.WriteRecord(record); err != nil {
			_ = writer.Close()
			return err
		}
	}
	if err := writer.Close(); err != nil {
		return err
	}

	logger.Infof("Resolved %d records against %d table entries", len(records), pool.Len())
	if changed > 0 {
		logger.Warnf("%d records resolved to text different from what was stored", changed)
	}
	return nil
}
