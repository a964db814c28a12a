package cli

import (
	"fmt"
	"io"
	"log/slog"
	"slices"

	"github.com/spf13/cobra"

	"github.com/roach88/qschema/internal/config"
)

// RootOptions holds global flags for all commands. Config file values fill
// in whatever was not set on the command line.
type RootOptions struct {
	Verbose    bool
	Format     string // "json" | "text"
	ConfigPath string
	LogLevel   string
	Strict     bool

	MaxPayloadBytes int64
	Logger          *slog.Logger
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the qschema CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "qschema",
		Short: "qschema - quantum payload schema catalog",
		Long: `Validate, resolve and fingerprint versioned quantum task payloads:
circuit programs, device capabilities, pulse calibrations, task results
and task state change events.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// Subcommands silence errors, so setup failures are printed here.
			if err := opts.apply(cmd); err != nil {
				fmt.Fprintln(cmd.ErrOrStderr(), "Error:", err)
				return err
			}
			return nil
		},
	}

	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringVar(&opts.ConfigPath, "config", "", "config file (default "+config.DefaultFile+" if present)")
	cmd.PersistentFlags().StringVar(&opts.LogLevel, "log-level", "warn", "log level (debug|info|warn|error)")
	cmd.PersistentFlags().BoolVar(&opts.Strict, "strict", false, "fail when invalid lenient elements are dropped")

	cmd.AddCommand(NewValidateCommand(opts))
	cmd.AddCommand(NewResolveCommand(opts))
	cmd.AddCommand(NewCountCommand(opts))
	cmd.AddCommand(NewFingerprintCommand(opts))
	cmd.AddCommand(NewCatalogCommand(opts))
	cmd.AddCommand(NewTestCommand(opts))

	return cmd
}

// apply merges the config file under the flags and builds the logger.
func (o *RootOptions) apply(cmd *cobra.Command) error {
	var (
		cfg config.Config
		err error
	)
	if o.ConfigPath != "" {
		cfg, err = config.Load(o.ConfigPath)
	} else {
		cfg, _, err = config.LoadOptional(config.DefaultFile)
	}
	if err != nil {
		return WrapExitError(ExitCommandError, ErrCodeLoadFailed, err)
	}

	flags := cmd.Flags()
	if !flags.Changed("format") {
		o.Format = cfg.Format
	}
	if !flags.Changed("log-level") {
		o.LogLevel = cfg.LogLevel
	}
	if !flags.Changed("strict") {
		o.Strict = cfg.Strict
	}
	o.MaxPayloadBytes = cfg.MaxPayloadBytes

	if !isValidFormat(o.Format) {
		return NewExitError(ExitCommandError, fmt.Sprintf("invalid format %q: must be one of %v", o.Format, ValidFormats))
	}
	cfg.Format, cfg.LogLevel = o.Format, o.LogLevel
	if err := config.Validate(cfg); err != nil {
		return WrapExitError(ExitCommandError, "invalid flags", err)
	}

	o.Logger = NewLogger(cmd.ErrOrStderr(), o.Format, cfg.Level())
	return nil
}

// NewLogger builds the CLI's stderr logger. JSON output gets JSON log
// records so both streams stay machine-readable.
func NewLogger(w io.Writer, format string, level slog.Level) *slog.Logger {
	hopts := &slog.HandlerOptions{Level: level}
	if format == "json" {
		return slog.New(slog.NewJSONHandler(w, hopts))
	}
	return slog.New(slog.NewTextHandler(w, hopts))
}

func (o *RootOptions) logger() *slog.Logger {
	if o.Logger != nil {
		return o.Logger
	}
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func (o *RootOptions) formatter(cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:    o.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(), // verbose logs go to stderr to avoid corrupting JSON
		Verbose:   o.Verbose,
		TraceID:   newTraceID(),
	}
}

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(format string) bool {
	return slices.Contains(ValidFormats, format)
}
