// Package cli assembles cac-core commands into a runnable command-line
// application. It builds the cobra command tree, wires the common flags,
// runs the optional startup update check, and maps command errors to
// process exit codes.
package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/rpunt/cac-core/pkg/command"
	"github.com/rpunt/cac-core/pkg/config"
	"github.com/rpunt/cac-core/pkg/logger"
	"github.com/rpunt/cac-core/pkg/updatechecker"
	"github.com/rpunt/cac-core/pkg/verbose"
)

var exitFunc = os.Exit

// App is a command-line application built from cac-core commands.
type App struct {
	name    string
	version string
	root    *cobra.Command
	config  *config.Config
	checker *updatechecker.Checker
}

// Option configures an App.
type Option func(*App)

// WithVersion sets the application version reported by --version.
func WithVersion(version string) Option {
	return func(a *App) {
		a.version = version
	}
}

// WithConfig attaches the application configuration, made available to
// every command through its execution context.
func WithConfig(cfg *config.Config) Option {
	return func(a *App) {
		a.config = cfg
	}
}

// WithUpdateChecker enables a quiet update notification before commands
// run. Registry calls respect the checker's cache interval, so most
// invocations never touch the network.
func WithUpdateChecker(checker *updatechecker.Checker) Option {
	return func(a *App) {
		a.checker = checker
	}
}

// New creates an application with the given name and description.
//
// Parameters:
//   - name: The binary name shown in usage text
//   - short: One-line application description
//   - opts: Application options
//
// Returns:
//   - *App: The application, ready for Register and Run
func New(name, short string, opts ...Option) *App {
	app := &App{name: name}

	app.root = &cobra.Command{
		Use:           name,
		Short:         short,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if v, err := cmd.Flags().GetBool(command.VerboseFlag); err == nil && v {
				verbose.Enable()
			}
			app.notifyUpdates(cmd)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}
	app.root.PersistentFlags().Bool(command.VerboseFlag, false, "Enable verbose debug output")

	for _, opt := range opts {
		opt(app)
	}
	if app.version != "" {
		app.root.Version = app.version
	}

	return app
}

// Register adds a command to the application.
//
// The command's flags are combined with the common --output flag, and
// execution is routed through command.SafeExecute so every failure maps
// to an exit code.
//
// Parameters:
//   - cmd: The command to register
//
// Returns:
//   - *App: The app instance for method chaining
func (a *App) Register(cmd command.Command) *App {
	cobraCmd := &cobra.Command{
		Use:           cmd.Name(),
		Short:         cmd.Description(),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(c *cobra.Command, args []string) error {
			ctx := command.NewContext()
			ctx.Config = a.config
			ctx.Log = logger.New(cmd.Name())
			ctx.Args = args
			ctx.Stdout = c.OutOrStdout()
			ctx.Stderr = c.ErrOrStderr()
			command.ParseCommonFlags(ctx, c.Flags())

			// The persistent --verbose also applies to nested commands.
			if v, err := c.Flags().GetBool(command.VerboseFlag); err == nil && v {
				ctx.Verbose = true
			}

			return command.SafeExecute(cmd, ctx)
		},
	}

	cmd.DefineFlags(cobraCmd.Flags())
	command.DefineCommonFlags(cobraCmd.Flags())

	a.root.AddCommand(cobraCmd)
	return a
}

// Root exposes the underlying cobra command for advanced wiring such as
// custom subcommand trees.
//
// Returns:
//   - *cobra.Command: The root command
func (a *App) Root() *cobra.Command {
	return a.root
}

// Execute runs the application and returns the process exit code.
//
// Command failures carry their own exit codes. Anything else coming out
// of cobra (unknown command, bad flag) is a usage problem and maps to
// the configuration error code.
//
// Returns:
//   - int: 0 on success, otherwise the code from the command error taxonomy
func (a *App) Execute() int {
	if err := a.root.Execute(); err != nil {
		code := command.GetExitCode(err)
		var cmdErr *command.Error
		if !errors.As(err, &cmdErr) {
			code = command.ExitConfigError
		}
		fmt.Fprintf(os.Stderr, "%s: %v\n", a.name, err)
		verbose.Infof("Exit code %d: %v", code, err)
		return code
	}
	return command.ExitSuccess
}

// Run executes the application and exits the process on failure.
//
// Returns:
//   - None
func (a *App) Run() {
	if code := a.Execute(); code != command.ExitSuccess {
		exitFunc(code)
	}
}

// ExecuteArgs runs the application with explicit arguments and returns
// the raw error. Intended for tests.
//
// Parameters:
//   - args: Command-line arguments, excluding the program name
//
// Returns:
//   - error: Command execution error, or nil on success
func (a *App) ExecuteArgs(args ...string) error {
	a.root.SetArgs(args)
	return a.root.Execute()
}

// notifyUpdates runs the quiet startup update check when configured.
func (a *App) notifyUpdates(cmd *cobra.Command) {
	if a.checker == nil {
		return
	}
	status, err := a.checker.Check(cmd.Context(), false)
	if err != nil {
		verbose.Infof("Update notification skipped: %v", err)
		return
	}
	a.checker.Notify(status, true)
}
