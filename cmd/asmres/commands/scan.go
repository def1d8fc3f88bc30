package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

func (c *CLI) newScanCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "scan",
		Short: "List every assembly found below the searched directories",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			entries, err := c.app.Scan(cmd.Context(), options(cmd))
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for _, e := range entries {
				_, _ = fmt.Fprintf(out, "%s\t%s\n", e.Identity, e.Path)
			}
			return nil
		},
	}
}
