package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/qschema/internal/schema"
)

// ResolveResult is a resolved payload and its canonical serialization.
type ResolveResult struct {
	PayloadReport
	Key     string          `json:"key"`
	Format  string          `json:"format"`
	Payload json.RawMessage `json:"payload"`
}

// NewResolveCommand creates the resolve command.
func NewResolveCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "resolve <payload>",
		Short: "Show which catalog type a payload resolves to",
		Long: `Resolve a payload by its schemaHeader name and major version, parse it
through the registered type and print the canonical serialization.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runResolve(rootOpts, args[0], cmd)
		},
	}

	return cmd
}

func runResolve(opts *RootOptions, path string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	doc, res, err := opts.resolveFile(cmd.Context(), path)
	if err != nil {
		if isLoadError(err) {
			return outputLoadError(formatter, err)
		}
		return outputPayloadError(formatter, newReport(path, res, err))
	}

	canonical, err := schema.Serialize(res.Value)
	if err != nil {
		return outputPayloadError(formatter, newReport(path, res, err))
	}

	result := ResolveResult{
		PayloadReport: newReport(path, res, nil),
		Key:           res.Descriptor.Key(),
		Format:        string(doc.Format),
		Payload:       canonical,
	}

	if formatter.Format == "json" {
		return formatter.Success(result)
	}

	w := formatter.Writer
	fmt.Fprintf(w, "type:   %s\n", result.Type)
	fmt.Fprintf(w, "key:    %s\n", result.Key)
	fmt.Fprintf(w, "schema: %s\n", result.Schema)
	for _, d := range result.Dropped {
		fmt.Fprintf(w, "dropped %s: %s\n", d.Path, d.Error)
	}
	fmt.Fprintln(w, string(canonical))
	return nil
}
