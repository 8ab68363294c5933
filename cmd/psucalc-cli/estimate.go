package main

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"

	zlog "github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/phenrril/psucalc/internal/client"
	"github.com/phenrril/psucalc/internal/config"
	"github.com/phenrril/psucalc/internal/domain"
	"github.com/phenrril/psucalc/internal/power"
	"github.com/phenrril/psucalc/internal/validator"
)

func newEstimateCmd(cfg *config.CLI, api func() *client.Client) *cobra.Command {
	var (
		req     domain.EstimateRequest
		modules int
		margin  int
	)
	cmd := &cobra.Command{
		Use:   "estimate",
		Short: "Compute the required wattage and recommend PSUs",
		Example: `  psucalc-cli estimate --cpu "Ryzen 5 5600X" --gpu "RTX 3070" --ram "DDR4 16GB" --modules 2 \
      --storage "970 EVO" --storage "Barracuda" --margin 20 --save --name Gaming`,
		RunE: func(cmd *cobra.Command, args []string) error {
			req.RAMModules = &modules
			req.MarginPct = &margin
			return runEstimate(cmd.Context(), cmd.OutOrStdout(), api(), req)
		},
	}
	f := cmd.Flags()
	f.StringVar(&req.CPU, "cpu", "", "CPU name or part of it")
	f.StringVar(&req.GPU, "gpu", "", "GPU name or part of it")
	f.StringVar(&req.RAM, "ram", "", "RAM module name")
	f.IntVar(&modules, "modules", domain.DefaultRAMModules, "number of RAM modules (1-4)")
	f.StringArrayVar(&req.Storages, "storage", nil, "storage device, repeatable")
	f.StringVar(&req.Cooling, "cooling", "", "cooling solution")
	f.StringVar(&req.Drive, "drive", "", "optical drive")
	f.StringVar(&req.Motherboard, "motherboard", "", "motherboard")
	f.IntVar(&margin, "margin", cfg.Estimate.MarginPct, "safety margin in percent (10-50)")
	f.BoolVar(&req.Save, "save", false, "store the result in the history")
	f.StringVar(&req.Name, "name", "", "name of the saved configuration")
	return cmd
}

func runEstimate(ctx context.Context, out io.Writer, api *client.Client, req domain.EstimateRequest) error {
	if err := validator.New().Struct(req); err != nil {
		return err
	}
	cat, _, err := api.Catalog(ctx)
	if err != nil {
		return fmt.Errorf("catalog unavailable: %w", err)
	}
	sel := req.Selection()
	res := power.Estimate(cat, sel)
	printResult(out, res)

	if req.Save {
		saved, err := api.SaveConfig(ctx, domain.NewSavedConfig(req.Name, sel, res))
		if err != nil {
			return fmt.Errorf("save configuration: %w", err)
		}
		zlog.Debug().Str("id", saved.ID.String()).Msg("configuration saved")
		fmt.Fprintf(out, "\nSaved as %q (%s)\n", saved.Name, saved.ID)
	}
	return nil
}

func printResult(out io.Writer, res power.Result) {
	b := res.Breakdown
	fmt.Fprintf(out, "Required PSU wattage: %d W (%d W + %d%% margin)\n\n", res.Required, b.RawTotal, b.MarginPct)

	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintf(tw, "CPU\t%d W\t\n", b.CPU)
	fmt.Fprintf(tw, "GPU\t%d W\t\n", b.GPU)
	fmt.Fprintf(tw, "RAM (%d x %d W)\t%d W\t\n", b.RAMModules, b.RAMSingle, b.RAM)
	fmt.Fprintf(tw, "Storage\t%d W\t\n", b.Storage)
	for _, d := range b.StorageDetails {
		fmt.Fprintf(tw, "  %s\t%d W\t\n", d.Name, d.Consumption)
	}
	fmt.Fprintf(tw, "Cooling\t%d W\t\n", b.Cooling)
	fmt.Fprintf(tw, "Drive\t%d W\t\n", b.Drive)
	fmt.Fprintf(tw, "Motherboard\t%d W\t\n", b.Motherboard)
	fmt.Fprintf(tw, "Overhead\t%d W\t\n", b.Overhead)
	tw.Flush()

	if !res.HasPSU() {
		fmt.Fprintf(out, "\nNo PSU in the catalog delivers %d W.\n", res.Required)
		return
	}
	fmt.Fprintln(out, "\nRecommended PSUs:")
	for i, p := range res.PSUs {
		fmt.Fprintf(out, "  %d. %s (%d W)\n", i+1, p.Name, p.Wattage)
	}
}
