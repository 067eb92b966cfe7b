package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/RowanDark/namepool/intern"
)

// Format represents an output format option.
type Format string

// Supported output format options.
const (
	FormatJSON Format = "json"
	FormatCSV  Format = "csv"
	FormatTXT  Format = "txt"
)

// Unicode normalisation forms applied to input lines before tokenising.
const (
	NormalizeNone = "none"
	NormalizeNFC  = "nfc"
	NormalizeNFKC = "nfkc"
)

const (
	defaultWorkers       = 4
	defaultStatsInterval = 2 * time.Second
)

// Config captures all runtime configuration for the CLI.
type Config struct {
	Inputs     []string
	OutputPath string
	Format     Format
	JSONPretty bool

	Strategy  string
	Workers   int
	Normalize string
	SeedPath  string
	TablePath string

	Verbose       bool
	Silent        bool
	LogLevel      string
	LogFile       string
	StatsInterval time.Duration
	MetricsAddr   string

	Profile    string
	ConfigPath string
}

// BindFlags registers the shared command-line flags and returns a Config
// instance whose fields are populated when Cobra parses flag values.
func BindFlags(cmd *cobra.Command) *Config {
	cfg := &Config{}

	flags := cmd.PersistentFlags()
	flags.StringSliceVarP(&cfg.Inputs, "input", "i", nil, "Input files with one record per line (stdin when omitted)")
	flags.StringVarP(&cfg.OutputPath, "output", "o", "", "Optional file path to write records")
	flags.StringVar((*string)(&cfg.Format), "format", string(FormatJSON), "Output format (json, csv, txt)")
	flags.BoolVar(&cfg.JSONPretty, "json-pretty", false, "Indent JSON output")
	flags.StringVar(&cfg.Strategy, "strategy", string(intern.StrategyHash), "Pool lookup strategy (hash or linear)")
	flags.IntVar(&cfg.Workers, "workers", defaultWorkers, "Number of input files read concurrently")
	flags.StringVar(&cfg.Normalize, "normalize", NormalizeNone, "Unicode normalisation applied to input (none, nfc, nfkc)")
	flags.StringVar(&cfg.SeedPath, "seed", "", "Table dump used to pre-populate the pool")
	flags.StringVar(&cfg.TablePath, "table", "", "File path to write the final pool table")
	flags.BoolVarP(&cfg.Verbose, "verbose", "v", false, "Enable verbose logging output")
	flags.BoolVar(&cfg.Silent, "silent", false, "Suppress console logging")
	flags.StringVar(&cfg.LogLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	flags.StringVar(&cfg.LogFile, "log-file", "", "Also append log output to this file")
	flags.DurationVar(&cfg.StatsInterval, "stats-interval", defaultStatsInterval, "Interval between progress log lines")
	flags.StringVar(&cfg.MetricsAddr, "metrics-addr", "", "Serve Prometheus metrics on this address while running")
	flags.StringVar(&cfg.Profile, "profile", "", "Configuration profile to load")
	flags.StringVar(&cfg.ConfigPath, "config", "", "Path to a configuration file (default .namepool.yaml)")

	return cfg
}

// Validate ensures the provided configuration values meet the expected
// constraints and normalises their representation where required.
func (c *Config) Validate() error {
	if c.Silent && c.Verbose {
		return fmt.Errorf("--silent and --verbose cannot be used together")
	}

	format := strings.ToLower(strings.TrimSpace(string(c.Format)))
	switch Format(format) {
	case FormatJSON, FormatCSV, FormatTXT:
		c.Format = Format(format)
	case "":
		c.Format = FormatJSON
	default:
		return fmt.Errorf("invalid output format %q: expected json, csv, or txt", c.Format)
	}

	strategy, err := intern.ParseStrategy(c.Strategy)
	if err != nil {
		return err
	}
	c.Strategy = string(strategy)

	c.Normalize = strings.ToLower(strings.TrimSpace(c.Normalize))
	switch c.Normalize {
	case "":
		c.Normalize = NormalizeNone
	case NormalizeNone, NormalizeNFC, NormalizeNFKC:
	default:
		return fmt.Errorf("invalid normalisation %q: expected %q, %q, or %q", c.Normalize, NormalizeNone, NormalizeNFC, NormalizeNFKC)
	}

	if len(c.Inputs) > 0 {
		filtered := make([]string, 0, len(c.Inputs))
		for _, input := range c.Inputs {
			input = strings.TrimSpace(input)
			if input == "" {
				continue
			}
			filtered = append(filtered, input)
		}
		c.Inputs = filtered
	}

	if c.Workers <= 0 {
		c.Workers = defaultWorkers
	}
	if c.StatsInterval <= 0 {
		c.StatsInterval = defaultStatsInterval
	}

	c.OutputPath = strings.TrimSpace(c.OutputPath)
	c.SeedPath = strings.TrimSpace(c.SeedPath)
	c.TablePath = strings.TrimSpace(c.TablePath)
	c.MetricsAddr = strings.TrimSpace(c.MetricsAddr)

	return nil
}

// InternStrategy returns the validated pool strategy.
func (c *Config) InternStrategy() intern.Strategy {
	return intern.Strategy(c.Strategy)
}

// LiveOutput returns true when records should be sent to stdout instead of a file.
func (c *Config) LiveOutput() bool {
	return strings.TrimSpace(c.OutputPath) == ""
}
