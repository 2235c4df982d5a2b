package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/baldhumanity/autosoup-go/soup"
	"github.com/spf13/cobra"
)

func newHistoryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "history FILE",
		Short: "Print a per-generation summary of a saved run history",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			h, err := soup.LoadHistory(args[0])
			if err != nil {
				return err
			}
			printHistory(cmd, h)
			return nil
		},
	}
}

func printHistory(cmd *cobra.Command, h *soup.History) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Run %s, environment %s, %d generations scored\n", h.RunID, h.Environment, len(h.Generations))

	w := tabwriter.NewWriter(out, 0, 8, 2, ' ', 0)
	fmt.Fprintln(w, "GEN\tBEST\tMEAN\tSTDEV\tMIN\tMAX\tBEST CHROMOSOME")
	for _, g := range h.Generations {
		fmt.Fprintf(w, "%d\t%.4f\t%.4f\t%.4f\t%d\t%d\t%s\n",
			g.Generation, g.Scores[g.MaxIndex], g.Mean, g.Stdev, g.MinIndex, g.MaxIndex, g.Best)
	}
	w.Flush()

	if h.Solution != "" {
		fmt.Fprintf(out, "Solution: %s\n", h.Solution)
	} else {
		fmt.Fprintln(out, "No predictor found.")
	}
}
