package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/phenrril/psucalc/internal/client"
	"github.com/phenrril/psucalc/internal/domain"
)

func newConfigsCmd(api func() *client.Client) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "configs",
		Aliases: []string{"history"},
		Short:   "Manage saved configurations",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "list [query]",
			Short: "List saved configurations, newest first",
			RunE: func(cmd *cobra.Command, args []string) error {
				list, err := api().Configs(cmd.Context(), strings.Join(args, " "))
				if err != nil {
					return err
				}
				if len(list) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "No saved configurations.")
					return nil
				}
				for _, c := range list {
					printConfigLine(cmd.OutOrStdout(), c)
				}
				return nil
			},
		},
		&cobra.Command{
			Use:   "show <id>",
			Short: "Show one saved configuration",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				c, err := api().Config(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				printConfig(cmd.OutOrStdout(), *c)
				return nil
			},
		},
		&cobra.Command{
			Use:   "rename <id> <name>",
			Short: "Rename a saved configuration",
			Args:  cobra.MinimumNArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				c, err := api().RenameConfig(cmd.Context(), args[0], strings.Join(args[1:], " "))
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Renamed to %q\n", c.Name)
				return nil
			},
		},
		&cobra.Command{
			Use:   "delete <id>",
			Short: "Delete a saved configuration",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				if err := api().DeleteConfig(cmd.Context(), args[0]); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "Deleted.")
				return nil
			},
		},
	)
	return cmd
}

func printConfigLine(out io.Writer, c domain.SavedConfig) {
	fmt.Fprintf(out, "%s  %-20s %5d W  %s\n", c.ID, c.Name, c.Watts, c.CreatedAt.Local().Format("2006-01-02 15:04"))
}

func printConfig(out io.Writer, c domain.SavedConfig) {
	fmt.Fprintf(out, "%s (%s)\n", c.Name, c.ID)
	fmt.Fprintf(out, "  CPU:      %s\n", c.CPU)
	fmt.Fprintf(out, "  GPU:      %s\n", c.GPU)
	fmt.Fprintf(out, "  RAM:      %s\n", c.RAM)
	fmt.Fprintf(out, "  Storage:  %s\n", c.Storage)
	fmt.Fprintf(out, "  Required: %d W (margin %d%%)\n", c.Watts, c.MarginPct)
	if len(c.PSUs) == 0 {
		fmt.Fprintln(out, "  No PSU met the requirement.")
		return
	}
	for i, p := range c.PSUs {
		fmt.Fprintf(out, "  %d. %s (%d W)\n", i+1, p.Name, p.Wattage)
	}
}
