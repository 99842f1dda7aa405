package main

import (
	stderrors "errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"toolchange-organizer/pkg/config"
	"toolchange-organizer/pkg/errors"
	"toolchange-organizer/pkg/log"
	"toolchange-organizer/pkg/organizer"
)

type rootFlags struct {
	configFile  string
	output      string
	suffix      string
	extruders   int
	logLevel    string
	logFormat   string
	metricsFile string
	dryRun      bool
}

func newRootCmd(version string) *cobra.Command {
	var flags rootFlags

	cmd := &cobra.Command{
		Use:   "toolchange-organizer [flags] <input.gcode>",
		Short: "Group each layer's G-code by tool to reduce tool changes",
		Long: `toolchange-organizer reads a sliced multi-extruder G-code file, regroups
every layer so that each tool's moves are printed in one block, alternates the
tool order between layers and drops repeated tool selects.

Settings come from (lowest to highest precedence): built-in defaults, the
--config YAML file, .env/.env.local and TOOLCHANGE_* variables, then flags.`,
		Version:       version,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runOrganize(cmd, args[0], &flags)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&flags.configFile, "config", "c", "", "YAML settings file")
	f.StringVarP(&flags.output, "output", "o", "", "output path (default: input path + suffix)")
	f.StringVar(&flags.suffix, "suffix", config.DefaultSuffix, "suffix appended to the input path to name the output")
	f.IntVar(&flags.extruders, "extruders", 0, "number of extruders (default 4)")
	f.StringVar(&flags.logLevel, "log-level", "", "DEBUG, INFO, WARN or ERROR")
	f.StringVar(&flags.logFormat, "log-format", "", "text or json")
	f.StringVar(&flags.metricsFile, "metrics-file", "", "write Prometheus text metrics to this file")
	f.BoolVar(&flags.dryRun, "dry-run", false, "run every stage except writing the output")

	return cmd
}

// loadConfig merges defaults, the YAML file, the environment and set flags.
func loadConfig(cmd *cobra.Command, flags *rootFlags) (*config.Config, error) {
	if err := config.LoadEnvFiles(".env", ".env.local"); err != nil {
		return nil, err
	}
	cfg, err := config.Load(flags.configFile)
	if err != nil {
		return nil, err
	}
	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}
	if lvl := os.Getenv(log.EnvLevel); lvl != "" {
		cfg.Log.Level = lvl
	}
	if fmtName := os.Getenv(log.EnvFormat); fmtName != "" {
		cfg.Log.Format = fmtName
	}

	changed := cmd.Flags().Changed
	if changed("suffix") {
		cfg.Suffix = flags.suffix
	}
	if changed("extruders") {
		cfg.Extruders = flags.extruders
	}
	if changed("log-level") {
		cfg.Log.Level = flags.logLevel
	}
	if changed("log-format") {
		cfg.Log.Format = flags.logFormat
	}
	if changed("metrics-file") {
		cfg.MetricsFile = flags.metricsFile
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func newLogger(cmd *cobra.Command, cfg *config.Config) *log.Logger {
	logger := log.New("toolchange")
	logger.SetWriter(cmd.ErrOrStderr())
	log.ConfigureFromEnv(logger)
	logger.SetLevel(log.ParseLevel(cfg.Log.Level))
	logger.SetFormat(log.ParseFormat(cfg.Log.Format))
	return logger
}

func runOrganize(cmd *cobra.Command, input string, flags *rootFlags) error {
	cfg, err := loadConfig(cmd, flags)
	if err != nil {
		return err
	}
	logger := newLogger(cmd, cfg)

	org := organizer.New(organizer.Options{
		Config:     cfg,
		Logger:     logger,
		OutputPath: flags.output,
		DryRun:     flags.dryRun,
	})
	res, runErr := org.Run(cmd.Context(), input)

	if cfg.MetricsFile != "" && res != nil {
		if err := res.Metrics.Registry.WriteFile(cfg.MetricsFile); err != nil {
			logger.WithError(err).Warn("could not write metrics file")
		}
	}
	if runErr != nil {
		return runErr
	}

	out := cmd.OutOrStdout()
	if flags.dryRun {
		fmt.Fprintf(out, "%s: dry run, %d lines would be written to %s\n", input, res.OutputLines, res.OutputPath)
	}
	fmt.Fprintf(out, "%d layers, %d tool changes reduced to %d\n",
		len(res.Report.Layers), res.Report.SourceChanges, res.Report.EmittedChanges-res.DuplicatesRemoved)
	if !flags.dryRun {
		fmt.Fprintf(out, "Successfully reordered %s\n", res.OutputPath)
	}
	return nil
}

var stageMessages = map[errors.Stage]string{
	errors.StageRead:        "Failed to parse the file",
	errors.StageReorder:     "Failed to reorder GCode",
	errors.StageDeduplicate: "Failed to remove duplicate tool changes",
	errors.StageWrite:       "Failed to write out fixed file",
}

// describe prefixes err with the failed stage when there is one.
func describe(err error) string {
	if msg, ok := stageMessages[errors.StageOf(err)]; ok {
		return fmt.Sprintf("%s: %v", msg, err)
	}
	return err.Error()
}

// exitCode maps an error to the process status: 1 for usage and
// configuration, 2 for file access, 3 for malformed input.
func exitCode(err error) int {
	var cerr *config.ConfigError
	switch {
	case err == nil:
		return 0
	case stderrors.As(err, &cerr), errors.Is(err, errors.ErrConfig):
		return 1
	case errors.IsStructural(err):
		return 3
	case errors.Is(err, errors.ErrIO):
		return 2
	default:
		return 1
	}
}
