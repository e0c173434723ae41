package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func newListCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List loaded forms",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			reg, err := flags.registry()
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tTITLE\tFIELDS\tRULES\tACTIONS")
			for _, fd := range reg.All() {
				fmt.Fprintf(tw, "%s\t%s\t%d\t%d\t%d\n", fd.ID, fd.Title, len(fd.Fields), len(fd.CompiledRules()), len(fd.Actions))
			}
			return tw.Flush()
		},
	}
}
