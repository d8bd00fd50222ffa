package main

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/sells-group/rnc-cli/internal/index"
	"github.com/sells-group/rnc-cli/internal/rnc"
)

var indexOutput string

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Inspect the local RNC dataset",
}

var indexStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Load the dataset and report what was indexed",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runIndexStats(cmd.Context(), cmd.OutOrStdout())
	},
}

var indexGetCmd = &cobra.Command{
	Use:   "get <rnc>",
	Short: "Look an RNC up in the local dataset only",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runIndexGet(cmd.Context(), cmd.OutOrStdout(), args[0], indexOutput)
	},
}

func runIndexStats(ctx context.Context, w io.Writer) error {
	idx, err := index.Load(ctx, cfg.Dataset.Path, datasetOptions())
	if err != nil {
		return err
	}

	st := idx.Stats()
	fmt.Fprintf(w, "path:        %s\n", cfg.Dataset.Path)
	if idx.Len() == 0 && st.Rows == 0 {
		fmt.Fprintf(w, "status:      missing or empty\n")
		return nil
	}
	fmt.Fprintf(w, "encoding:    %s\n", st.Encoding)
	fmt.Fprintf(w, "rows:        %d\n", st.Rows)
	fmt.Fprintf(w, "records:     %d\n", st.Records)
	fmt.Fprintf(w, "skipped:     %d\n", st.Skipped)
	fmt.Fprintf(w, "duplicates:  %d\n", st.Duplicates)
	fmt.Fprintf(w, "load time:   %s\n", st.Duration)
	fmt.Fprintf(w, "loaded at:   %s\n", idx.LoadedAt().Format(time.RFC3339))
	return nil
}

func runIndexGet(ctx context.Context, w io.Writer, id, format string) error {
	idx, err := index.Load(ctx, cfg.Dataset.Path, datasetOptions())
	if err != nil {
		return err
	}
	rec, ok := idx.Lookup(id)
	if !ok {
		return rnc.NewError(rnc.KindNotFound, "not in local dataset: "+id)
	}
	return writeOutput(w, format, rec)
}

func init() {
	indexGetCmd.Flags().StringVarP(&indexOutput, "output", "o", "json", "output format (json|yaml)")
	indexCmd.AddCommand(indexStatsCmd, indexGetCmd)
	rootCmd.AddCommand(indexCmd)
}
