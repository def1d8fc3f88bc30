package commands

import (
	"github.com/spf13/cobra"
)

func (c *CLI) newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Resolve identities read from stdin, one per line, while watching the workspace",
		Long: `serve keeps one resolver open until stdin is closed or the process is interrupted.
Each input line is an assembly identity; each output line is the identity, a tab,
and the resolved path, "not found" or an error. Changes to the workspace, its projects
and built binaries drop cached misses.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.app.Serve(cmd.Context(), cmd.InOrStdin(), cmd.OutOrStdout(), options(cmd))
		},
	}
}
