package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/qschema/internal/catalog"
	"github.com/roach88/qschema/internal/device"
	"github.com/roach88/qschema/internal/openqasm"
	"github.com/roach88/qschema/internal/schema"
)

// CountOptions holds flags for the count command.
type CountOptions struct {
	DevicePath string
	Shots      int
}

// CountResult is the execution count of a program payload.
type CountResult struct {
	Path        string `json:"path"`
	Type        string `json:"type"`
	Executables []int  `json:"executables"`
	Total       int    `json:"total"`
	// Set only when checked against --device.
	Device   string `json:"device,omitempty"`
	Shots    int    `json:"shots,omitempty"`
	Admitted bool   `json:"admitted,omitempty"`
}

// NewCountCommand creates the count command.
func NewCountCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CountOptions{}

	cmd := &cobra.Command{
		Use:   "count <program>",
		Short: "Count the executions a program or program set expands to",
		Long: `Count executions per program. A program's list-valued inputs expand to one
execution per element; all input lists of a program must have the same
length. With --device, the program set is also checked against the
device's program-set limits at --shots shots per execution.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCount(rootOpts, opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.DevicePath, "device", "", "device capabilities payload to admit the program set against")
	cmd.Flags().IntVar(&opts.Shots, "shots", 0, "shots per execution (with --device)")

	return cmd
}

func runCount(rootOpts *RootOptions, opts *CountOptions, path string, cmd *cobra.Command) error {
	formatter := rootOpts.formatter(cmd)

	_, res, err := rootOpts.resolveFile(cmd.Context(), path)
	if err != nil {
		if isLoadError(err) {
			return outputLoadError(formatter, err)
		}
		return outputPayloadError(formatter, newReport(path, res, err))
	}

	result := CountResult{Path: path, Type: res.Descriptor.TypeName}
	result.Executables, result.Total, err = catalog.ExecutionCounts(res.Value)
	if err != nil {
		code := ErrCodeInvalidPayload
		if errors.Is(err, catalog.ErrNotCountable) {
			code = ErrCodeNotCountable
		}
		_ = formatter.Error(code, err.Error(), nil)
		return WrapExitError(ExitFailure, code, err)
	}

	if opts.DevicePath != "" {
		set, ok := res.Value.(openqasm.ProgramSet)
		if !ok {
			err := fmt.Errorf("%s is a %s; only program sets can be admitted", path, result.Type)
			_ = formatter.Error(ErrCodeNotAdmitted, err.Error(), nil)
			return WrapExitError(ExitFailure, ErrCodeNotAdmitted, err)
		}
		if err := admit(rootOpts, opts, set, cmd); err != nil {
			if isLoadError(err) {
				return outputLoadError(formatter, err)
			}
			details := map[string]any{"device": opts.DevicePath, "shots": opts.Shots}
			var se *schema.Error
			if errors.As(err, &se) {
				details["field"] = se.Field
			}
			_ = formatter.Failure(ErrCodeNotAdmitted, err.Error(), result, details)
			return WrapExitError(ExitFailure, ErrCodeNotAdmitted, err)
		}
		result.Device, result.Shots, result.Admitted = opts.DevicePath, opts.Shots, true
	}

	if formatter.Format == "json" {
		return formatter.Success(result)
	}

	w := formatter.Writer
	for i, n := range result.Executables {
		fmt.Fprintf(w, "program %d: %d\n", i, n)
	}
	fmt.Fprintf(w, "total: %d\n", result.Total)
	if result.Admitted {
		fmt.Fprintf(w, "✓ admitted by %s at %d shot(s) per execution\n", result.Device, result.Shots)
	}
	return nil
}

func admit(rootOpts *RootOptions, opts *CountOptions, set openqasm.ProgramSet, cmd *cobra.Command) error {
	_, res, err := rootOpts.resolveFile(cmd.Context(), opts.DevicePath)
	if err != nil {
		return err
	}
	caps, ok := res.Value.(device.Capabilities)
	if !ok {
		return fmt.Errorf("%s is a %s, not device capabilities", opts.DevicePath, res.Descriptor.TypeName)
	}
	limits, ok := caps.ProgramSetLimits()
	if !ok {
		return fmt.Errorf("device %s does not accept %s", opts.DevicePath, device.ActionProgramSet)
	}
	return limits.Admit(set, opts.Shots)
}
