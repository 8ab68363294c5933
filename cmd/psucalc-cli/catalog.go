package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/phenrril/psucalc/internal/client"
	"github.com/phenrril/psucalc/internal/domain"
	"github.com/phenrril/psucalc/internal/power"
)

func newCatalogCmd(api func() *client.Client) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Browse the component catalog",
	}
	slugs := make([]string, len(domain.Categories))
	for i, c := range domain.Categories {
		slugs[i] = string(c)
	}
	list := &cobra.Command{
		Use:       "list <category> [search]",
		Short:     "List the records of a category",
		Args:      cobra.RangeArgs(1, 2),
		ValidArgs: slugs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cat, ok := domain.ParseCategory(args[0])
			if !ok {
				return fmt.Errorf("unknown category %q (one of %s)", args[0], strings.Join(slugs, ", "))
			}
			var (
				rows []map[string]any
				err  error
			)
			if len(args) == 2 {
				rows, err = api().Search(cmd.Context(), cat, args[1])
				if client.NotFound(err) {
					fmt.Fprintf(cmd.OutOrStdout(), "Nothing found in %s matching %q\n", cat, args[1])
					return nil
				}
			} else {
				rows, err = api().Category(cmd.Context(), cat)
			}
			if err != nil {
				return err
			}
			field := cat.PowerField()
			for _, r := range rows {
				line := fmt.Sprintf("%-40s %s", power.Stringify(r["name"]), power.Stringify(r[field]))
				if t := power.Stringify(r["type"]); t != "" {
					line += "  [" + t + "]"
				}
				fmt.Fprintln(cmd.OutOrStdout(), strings.TrimRight(line, " "))
			}
			return nil
		},
	}
	cmd.AddCommand(list)
	return cmd
}
