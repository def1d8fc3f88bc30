// Package commands implements the CLI commands for asmres.
package commands

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.trai.ch/asmres/internal/app"
	"go.trai.ch/asmres/internal/build"
	"go.trai.ch/asmres/internal/core/domain"
	"go.trai.ch/asmres/internal/engine/resolver"
)

// CLI represents the command line interface for asmres.
type CLI struct {
	app     Application
	rootCmd *cobra.Command
}

// Application represents the application logic interface.
type Application interface {
	Resolve(ctx context.Context, identities []string, opts app.Options) ([]app.Result, error)
	Dirs(ctx context.Context, opts app.Options) (*domain.DirectorySet, error)
	Scan(ctx context.Context, opts app.Options) ([]resolver.InventoryEntry, error)
	Serve(ctx context.Context, in io.Reader, out io.Writer, opts app.Options) error
}

// New creates a new CLI instance with the given app.
func New(a Application) *CLI {
	rootCmd := &cobra.Command{
		Use:           "asmres",
		Short:         "Resolve assembly references against a workspace",
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       build.Version,
	}

	// Persistent flags go first so the version flag does not claim -v.
	flags := rootCmd.PersistentFlags()
	flags.StringP("workspace", "w", "", "Workspace file to open (default: discover "+domain.WorkFileName+")")
	flags.BoolP("verbose", "v", false, "Trace every resolution step to stderr")
	flags.Bool("json-log", false, "Write log output as JSON")
	flags.Duration("timeout", 0, "Bound on directory set recomputation (default: workspace setting or 5s)")

	rootCmd.SetVersionTemplate(fmt.Sprintf(
		"{{.Name}} version {{.Version}} (commit: %s, date: %s)\n",
		build.Commit,
		build.Date,
	))
	rootCmd.InitDefaultVersionFlag()
	rootCmd.Flags().Lookup("version").Usage = "Print the application version"

	rootCmd.InitDefaultHelpFlag()
	rootCmd.Flags().Lookup("help").Usage = "Show help for command"

	c := &CLI{
		app:     a,
		rootCmd: rootCmd,
	}

	rootCmd.AddCommand(c.newResolveCmd())
	rootCmd.AddCommand(c.newDirsCmd())
	rootCmd.AddCommand(c.newScanCmd())
	rootCmd.AddCommand(c.newServeCmd())
	rootCmd.AddCommand(c.newVersionCmd())

	return c
}

// Execute runs the root command with the given context.
func (c *CLI) Execute(ctx context.Context) error {
	c.rootCmd.SetContext(ctx)
	return c.rootCmd.Execute()
}

// SetArgs sets the arguments for the root command. Used for testing.
func (c *CLI) SetArgs(args []string) {
	c.rootCmd.SetArgs(args)
}

// SetInput sets the input stream read by serve.
func (c *CLI) SetInput(in io.Reader) {
	c.rootCmd.SetIn(in)
}

// SetOutput sets the output and error streams for the root command. Used for testing.
func (c *CLI) SetOutput(out, err io.Writer) {
	c.rootCmd.SetOut(out)
	c.rootCmd.SetErr(err)
}

// options reads the persistent flags shared by every command.
func options(cmd *cobra.Command) app.Options {
	flags := cmd.Flags()
	workspace, _ := flags.GetString("workspace")
	verbose, _ := flags.GetBool("verbose")
	jsonLog, _ := flags.GetBool("json-log")
	timeout, _ := flags.GetDuration("timeout")

	return app.Options{
		Workspace: workspace,
		Verbose:   verbose,
		JSONLog:   jsonLog,
		Timeout:   timeout,
	}
}
