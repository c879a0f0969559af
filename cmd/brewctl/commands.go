package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func newCommandsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "commands",
		Short: "List appliance commands accepted by send and console",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			printCommands(cmd.OutOrStdout())
		},
	}
}

func printCommands(out io.Writer) {
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "COMMAND\tARGS\tFRAME\tDESCRIPTION")
	for pair := registry.Oldest(); pair != nil; pair = pair.Next() {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", pair.Key, pair.Value.Args, pair.Value.Frame, pair.Value.Summary)
	}
	_ = tw.Flush()
}
