package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newEstimateCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "estimate CITY ZIP",
		Short: "Look up the market price per m² of land in a locality",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			est, err := a.newEstimator(nil).Lookup(ctx, args[0], args[1])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "locality: %s\n", est.Slug)
			if est.ZoneID == "" {
				fmt.Fprintln(out, "zone:     not found")
				return nil
			}
			fmt.Fprintf(out, "zone:     %s\n", est.ZoneID)
			fmt.Fprintf(out, "listings: %d received, %d kept\n", est.Received, est.Kept)
			if !est.Known {
				fmt.Fprintln(out, "price:    not enough data")
				return nil
			}
			fmt.Fprintf(out, "price:    %.2f €/m²\n", est.PricePerM2)
			return nil
		},
	}
}
