package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/qschema/internal/schema"
)

// FingerprintResult is a payload's content fingerprint.
type FingerprintResult struct {
	Path        string `json:"path"`
	Type        string `json:"type"`
	Fingerprint string `json:"fingerprint"`
}

// NewFingerprintCommand creates the fingerprint command.
func NewFingerprintCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fingerprint <payload>...",
		Short: "Print content fingerprints of payloads",
		Long: `Print the SHA-256 fingerprint of each payload's canonical form.

Payloads that differ only in key order, whitespace, number spelling or
Unicode normalization share a fingerprint. The same payload in JSON, YAML
or CUE form also fingerprints identically.`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFingerprint(rootOpts, args, cmd)
		},
	}

	return cmd
}

func runFingerprint(opts *RootOptions, paths []string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	results := make([]FingerprintResult, 0, len(paths))
	for _, path := range paths {
		_, res, err := opts.resolveFile(cmd.Context(), path)
		if err != nil {
			if isLoadError(err) {
				return outputLoadError(formatter, err)
			}
			return outputPayloadError(formatter, newReport(path, res, err))
		}
		fp, err := schema.Fingerprint(res.Value)
		if err != nil {
			return outputPayloadError(formatter, newReport(path, res, err))
		}
		results = append(results, FingerprintResult{Path: path, Type: res.Descriptor.TypeName, Fingerprint: fp})
	}

	if formatter.Format == "json" {
		return formatter.Success(results)
	}
	for _, r := range results {
		fmt.Fprintf(formatter.Writer, "%s  %s\n", r.Fingerprint, r.Path)
	}
	return nil
}
