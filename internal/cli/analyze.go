package cli

import (
	"encoding/json"

	"github.com/spf13/cobra"

	"github.com/Rinde17/investerra-app/internal/domain"
	"github.com/Rinde17/investerra-app/internal/market"
)

type analyzeOptions struct {
	surface    float64
	price      float64
	city       string
	zip        string
	viabilised bool
	offline    bool
}

func newAnalyzeCmd(a *app) *cobra.Command {
	opts := &analyzeOptions{}

	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Analyse a terrain without storing it and print the result as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			terrain := &domain.Terrain{
				Title:      "Terrain " + opts.city + " " + opts.zip,
				SurfaceM2:  opts.surface,
				Price:      opts.price,
				City:       opts.city,
				ZipCode:    opts.zip,
				Viabilised: opts.viabilised,
			}
			terrain.Sanitize()

			var prices market.PriceEstimator
			if !opts.offline {
				prices = a.newEstimator(nil)
			}

			analysis, err := a.newAnalyzer(prices, nil).CreateOrUpdate(cmd.Context(), terrain, nil)
			if err != nil {
				return err
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(analysis)
		},
	}

	f := cmd.Flags()
	f.Float64Var(&opts.surface, "surface", 0, "surface in m²")
	f.Float64Var(&opts.price, "price", 0, "asking price in €")
	f.StringVar(&opts.city, "city", "", "city name")
	f.StringVar(&opts.zip, "zip", "", "postal code")
	f.BoolVar(&opts.viabilised, "viabilised", false, "the plot is already serviced")
	f.BoolVar(&opts.offline, "offline", false, "skip the listings provider and use the regional price table")
	_ = cmd.MarkFlagRequired("surface")
	_ = cmd.MarkFlagRequired("city")
	_ = cmd.MarkFlagRequired("zip")

	return cmd
}
