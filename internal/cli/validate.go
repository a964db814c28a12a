package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// ValidationResult holds validation results.
type ValidationResult struct {
	Valid    bool            `json:"valid"`
	Payloads []PayloadReport `json:"payloads"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <payload|dir>...",
		Short: "Validate payload files against the schema catalog",
		Long: `Resolve each payload by its schemaHeader and validate it in full.

Accepts .json, .yaml/.yml and .cue files; directories are searched
recursively. Invalid elements of forward-compatible collections are
dropped and reported, or fail the payload with --strict.`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true, // Don't print usage on errors
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args, cmd)
		},
	}

	return cmd
}

func runValidate(opts *RootOptions, args []string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	paths, err := ExpandPaths(args)
	if err != nil {
		return outputLoadError(formatter, err)
	}
	formatter.VerboseLog("Found %d payload file(s)", len(paths))

	reports := make([]PayloadReport, 0, len(paths))
	failed := 0
	for _, path := range paths {
		formatter.VerboseLog("Validating %s", path)
		_, res, err := opts.resolveFile(cmd.Context(), path)
		if err != nil && isLoadError(err) {
			return outputLoadError(formatter, err)
		}
		report := newReport(path, res, err)
		if report.Failed() {
			failed++
		}
		reports = append(reports, report)
	}

	if failed > 0 {
		return outputValidationFailures(formatter, reports, failed)
	}
	return outputValidateSuccess(formatter, reports)
}

// outputValidateSuccess outputs successful validation results.
func outputValidateSuccess(formatter *OutputFormatter, reports []PayloadReport) error {
	if formatter.Format == "json" {
		return formatter.Success(ValidationResult{Valid: true, Payloads: reports})
	}

	writeReports(formatter, reports)
	fmt.Fprintln(formatter.Writer, "✓ All payloads valid")
	return nil
}

// outputValidationFailures reports every payload; the first failure's code
// becomes the response code.
func outputValidationFailures(formatter *OutputFormatter, reports []PayloadReport, failed int) error {
	message := fmt.Sprintf("%d of %d payload(s) invalid", failed, len(reports))

	if formatter.Format == "json" {
		var first *PayloadError
		for _, r := range reports {
			if r.Failed() {
				first = r.Error
				break
			}
		}
		result := ValidationResult{Valid: false, Payloads: reports}
		if err := formatter.Failure(first.Code, message, result, nil); err != nil {
			return err
		}
		// Validation failures = exit code 1
		return NewExitError(ExitFailure, "validation failed: "+message)
	}

	writeReports(formatter, reports)
	fmt.Fprintf(formatter.Writer, "✗ Validation failed: %s\n", message)
	return NewExitError(ExitFailure, "validation failed: "+message)
}

func writeReports(formatter *OutputFormatter, reports []PayloadReport) {
	w := formatter.Writer
	for _, r := range reports {
		if r.Failed() {
			fmt.Fprintf(w, "✗ %s\n  %s: %s\n", r.Path, r.Error.Code, r.Error.Message)
			continue
		}
		fmt.Fprintf(w, "✓ %s: %s (%s)\n", r.Path, r.Type, r.Schema)
		for _, d := range r.Dropped {
			fmt.Fprintf(w, "  dropped %s: %s\n", d.Path, d.Error)
		}
	}
}
