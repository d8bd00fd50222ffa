package main

import (
	"context"
	"io"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/rnc-cli/internal/rnc"
)

var (
	lookupEntity bool
	lookupOutput string
)

var lookupCmd = &cobra.Command{
	Use:   "lookup <rnc>",
	Short: "Resolve one RNC",
	Long:  "Looks the RNC up in the local dataset and, on a miss, queries the DGII web form.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.Validate("lookup"); err != nil {
			return err
		}
		return runLookup(cmd.Context(), cmd.OutOrStdout(), args[0], lookupEntity, lookupOutput)
	},
}

func runLookup(ctx context.Context, w io.Writer, id string, withEntity bool, format string) error {
	a := newApp(ctx, withEntity)
	defer a.Close()

	if withEntity {
		res, err := a.Resolver.ResolveWithEntity(ctx, id)
		if err != nil {
			return lookupError(id, err)
		}
		return writeOutput(w, format, res)
	}

	rec, err := a.Resolver.Resolve(ctx, id)
	if err != nil {
		return lookupError(id, err)
	}
	return writeOutput(w, format, rec)
}

func lookupError(id string, err error) error {
	return eris.Wrapf(err, "%s: lookup %s", rnc.KindOf(err).Code(), id)
}

func init() {
	lookupCmd.Flags().BoolVar(&lookupEntity, "entity", false, "cross-reference the company database")
	lookupCmd.Flags().StringVarP(&lookupOutput, "output", "o", "json", "output format (json|yaml)")
	rootCmd.AddCommand(lookupCmd)
}
