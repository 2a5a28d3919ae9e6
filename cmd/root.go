package cmd

import (
	stdErrors "errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/lepinkainen/humanlog"
	"github.com/lepinkainen/pokexcel/internal/assignment"
	"github.com/lepinkainen/pokexcel/internal/config"
	"github.com/lepinkainen/pokexcel/internal/dispatch"
	"github.com/lepinkainen/pokexcel/internal/errors"
	"github.com/lepinkainen/pokexcel/internal/workbook"
	"github.com/spf13/viper"
)

const description = `Write a single cell value into a spreadsheet workbook or a SQLite row store.

Usage:
  pokexcel [Excel|SQL] <target> [/H|/S] /<sheet>:<cell>=<value>
  pokexcel [Excel|SQL] --csv <batch_file>

Examples:
  pokexcel Excel book.xlsx /1:A1=100
  pokexcel SQL   db.sqlite /1:A1=100
  pokexcel Excel --csv data.csv

/H and /S select a hidden or shown workbook (Excel mode only).
Batch files hold one ["path", "sheet", "cell", "value"] list per line and are
emptied once read unless --keep-batch is given.`

// CLI represents the complete command structure for the pokexcel application
type CLI struct {
	CSV       string   `name:"csv" help:"Read assignments from a batch file instead of the command line" type:"path" placeholder:"BATCH_FILE"`
	KeepBatch bool     `help:"Leave the batch file in place after reading it (overrides batch.truncate)"`
	Mode      string   `help:"Mode used when the arguments do not start with Excel or SQL (overrides config mode)"`
	Config    string   `help:"Path to a config file (default: ./pokexcel.yaml or ~/.config/pokexcel/pokexcel.yaml)" type:"path"`
	LogLevel  string   `help:"Log level: debug, info, warn or error (default from config, info)"`
	Args      []string `arg:"" optional:"" help:"[Excel|SQL] <target> [/H|/S] /<sheet>:<cell>=<value>"`
}

// kongExit carries kong's exit code out of Parse. Any non-zero code is
// reported as 1.
type kongExit int

// Execute runs the Kong-based CLI and exits with its status code.
func Execute() {
	if code := Main(os.Args[1:], os.Stdout, os.Stderr); code != 0 {
		os.Exit(code)
	}
}

// Main parses args, applies the request and returns the process exit code.
func Main(args []string, stdout, stderr io.Writer) (code int) {
	defer func() {
		if r := recover(); r != nil {
			exit, ok := r.(kongExit)
			if !ok {
				panic(r)
			}
			code = 0
			if exit != 0 {
				code = 1
			}
		}
	}()

	var cli CLI
	parser, err := kong.New(&cli,
		kong.Name("pokexcel"),
		kong.Description(description),
		kong.UsageOnError(),
		kong.Writers(stdout, stderr),
		kong.Exit(func(code int) { panic(kongExit(code)) }),
	)
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "failed to build command line parser: %v\n", err)
		return 1
	}

	ctx, err := parser.Parse(args)
	if err != nil {
		parser.Errorf("%s", err)
		var parseErr *kong.ParseError
		if stdErrors.As(err, &parseErr) && parseErr.Context != nil {
			_ = parseErr.Context.PrintUsage(true)
		}
		return 1
	}

	if err := initConfig(cli.Config); err != nil {
		_, _ = fmt.Fprintln(stderr, err)
		return 1
	}
	if err := updateGlobalConfig(&cli); err != nil {
		reportParseError(ctx, stderr, err)
		return 1
	}
	logger, err := initLogging(stdout, cli.LogLevel)
	if err != nil {
		_, _ = fmt.Fprintln(stderr, err)
		return 1
	}

	if err := cli.Run(ctx, stdout, stderr, logger); err != nil {
		if errors.IsHelpRequested(err) {
			return 0
		}
		logger.Debug("Command failed", "error", err)
		return 1
	}
	return 0
}

// Run parses the assignment arguments and hands them to the dispatcher.
// Errors returned have already been reported on stderr.
func (c *CLI) Run(ctx *kong.Context, stdout, stderr io.Writer, logger *slog.Logger) error {
	logger.Debug("Starting", "args", c.Args, "csv", c.CSV)

	d := dispatch.New(stdout, stderr, logger, dispatch.Capabilities{
		Spreadsheet: workbook.Available() && config.SpreadsheetEnabled,
	})

	defaultMode := assignment.Mode(config.DefaultMode)
	if c.CSV != "" {
		// Reading a batch consumes it, so refuse before touching the file.
		mode, _ := assignment.ResolveMode(c.Args, defaultMode)
		if err := d.CheckAvailable(mode); err != nil {
			return err
		}
	}

	req, err := assignment.Parse(c.Args, assignment.Options{
		BatchFile:   c.CSV,
		DefaultMode: defaultMode,
		Batch: assignment.BatchOptions{
			Truncate:    config.TruncateBatch,
			SkipInvalid: config.SkipInvalidLines,
		},
	})
	if err != nil {
		reportParseError(ctx, stderr, err)
		return err
	}

	return d.Run(req)
}

func reportParseError(ctx *kong.Context, stderr io.Writer, err error) {
	if errors.IsHelpRequested(err) {
		_ = ctx.PrintUsage(false)
		return
	}

	var usageErr *errors.UsageError
	if stdErrors.As(err, &usageErr) {
		_, _ = fmt.Fprintln(stderr, usageErr.Message)
		if usageErr.Hint != "" {
			_, _ = fmt.Fprintln(stderr, usageErr.Hint)
		}
		return
	}
	_, _ = fmt.Fprintln(stderr, err)
}

func initConfig(configFile string) error {
	config.SetDefaults()

	viper.SetEnvPrefix("POKEXCEL")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if configFile != "" {
		if _, err := os.Stat(configFile); err != nil {
			return fmt.Errorf("failed to read config file: %w", err)
		}
		viper.SetConfigFile(configFile)
	} else {
		viper.SetConfigName("pokexcel")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "pokexcel"))
		}
	}

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !stdErrors.As(err, &notFound) {
			return fmt.Errorf("failed to read config file: %w", err)
		}
	} else {
		slog.Debug("Using config file", "path", viper.ConfigFileUsed())
	}

	config.InitConfig()
	return nil
}

// updateGlobalConfig applies command-line overrides on top of the loaded
// configuration and rejects an unknown default mode.
func updateGlobalConfig(c *CLI) error {
	if c.Mode != "" {
		config.SetDefaultMode(c.Mode)
	}
	if c.KeepBatch {
		config.SetTruncateBatch(false)
	}

	if !assignment.Mode(config.DefaultMode).Valid() {
		return errors.NewUsageError("", "invalid mode %q: must be %s or %s",
			config.DefaultMode, assignment.ModeExcel, assignment.ModeSQL)
	}
	return nil
}

func initLogging(w io.Writer, level string) (*slog.Logger, error) {
	if level == "" {
		level = viper.GetString("log.level")
	}

	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}

	// Create a human-readable handler for logging
	handler := humanlog.NewHandler(w, &humanlog.Options{
		Level: lvl,
	})

	logger := slog.New(handler)
	slog.SetDefault(logger)
	return logger, nil
}
