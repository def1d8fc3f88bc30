package commands

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.trai.ch/asmres/internal/core/domain"
)

func (c *CLI) newResolveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "resolve [identities...]",
		Short: "Resolve assembly identities to binaries on disk",
		Example: `  asmres resolve LibA
  asmres resolve "LibA, Version=1.0.0.0, PublicKeyToken=null"`,
		Args: cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				_ = cmd.Help()
				return nil
			}

			opts := options(cmd)
			opts.Inspect, _ = cmd.Flags().GetBool("inspect")

			results, err := c.app.Resolve(cmd.Context(), args, opts)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			unresolved := false
			for _, r := range results {
				_, _ = fmt.Fprintln(out, r.String())
				if !r.Found {
					unresolved = true
				}
			}
			if unresolved {
				return domain.ErrUnresolved
			}
			return nil
		},
	}

	cmd.Flags().Bool("inspect", false, "Resolve for metadata inspection only, without the native loader")
	return cmd
}
