package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/roach88/qschema/internal/catalog"
)

// CatalogEntry is one registered payload type.
type CatalogEntry struct {
	Key     string `json:"key"`
	Name    string `json:"name"`
	Version string `json:"version"`
	Type    string `json:"type"`
}

// NewCatalogCommand creates the catalog command.
func NewCatalogCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "catalog",
		Short:         "List the registered payload types",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCatalog(rootOpts, cmd)
		},
	}

	return cmd
}

func runCatalog(opts *RootOptions, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	descs := catalog.Descriptors()
	entries := make([]CatalogEntry, len(descs))
	for i, d := range descs {
		entries[i] = CatalogEntry{Key: d.Key(), Name: d.Header.Name, Version: d.Header.Version, Type: d.TypeName}
	}

	if formatter.Format == "json" {
		return formatter.Success(entries)
	}

	tw := tabwriter.NewWriter(formatter.Writer, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tVERSION\tTYPE")
	for _, e := range entries {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", e.Name, e.Version, e.Type)
	}
	return tw.Flush()
}
