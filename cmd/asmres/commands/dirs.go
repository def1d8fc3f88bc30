package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

func (c *CLI) newDirsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "dirs",
		Short: "Print the directories searched, in order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			set, err := c.app.Dirs(cmd.Context(), options(cmd))
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for _, dir := range set.Dirs {
				_, _ = fmt.Fprintln(out, dir)
			}
			return nil
		},
	}
}
