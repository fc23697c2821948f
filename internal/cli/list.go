package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/roach88/primops/internal/ops"
)

// CatalogEntry describes one operation for the list command.
type CatalogEntry struct {
	Name    string `json:"name"`
	Alias   string `json:"alias"`
	Kind    string `json:"kind"`
	Partial bool   `json:"partial"`
}

// NewListCommand creates the list command.
func NewListCommand(rootOpts *RootOptions) *cobra.Command {
	var kind string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the operation catalog",
		Long: `List every operation with its alias, family, and whether it can fail.

Examples:
  primops list
  primops list --kind shift
  primops list --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runList(rootOpts, kind, cmd)
		},
	}

	cmd.Flags().StringVar(&kind, "kind", "", "only list one family (comparison|arithmetic|bitwise|shift)")

	return cmd
}

func runList(opts *RootOptions, kind string, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd)

	entries := catalogEntries(ops.Kind(kind))
	if kind != "" && len(entries) == 0 {
		return formatter.Fail(ExitCommandError, ErrCodeBadFlag, fmt.Sprintf("unknown kind %q", kind), nil)
	}

	if formatter.IsJSON() {
		return formatter.Success(entries)
	}

	tw := tabwriter.NewWriter(formatter.Writer, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tALIAS\tKIND\tPARTIAL")
	for _, e := range entries {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%v\n", e.Name, e.Alias, e.Kind, e.Partial)
	}
	return tw.Flush()
}

// catalogEntries returns the catalog in declaration order, optionally
// restricted to one kind.
func catalogEntries(kind ops.Kind) []CatalogEntry {
	entries := make([]CatalogEntry, 0, len(ops.Catalog()))
	for _, op := range ops.Catalog() {
		if kind != "" && op.Kind() != kind {
			continue
		}
		entries = append(entries, CatalogEntry{
			Name:    op.String(),
			Alias:   op.Alias(),
			Kind:    string(op.Kind()),
			Partial: op.Partial(),
		})
	}
	return entries
}
