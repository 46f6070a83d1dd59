// Package command defines the contract implemented by cac-core commands.
// It provides the Command interface, the execution Context handed to every
// command, common flag registration, and the exit-code error taxonomy used
// by the cli dispatcher.
package command

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/rpunt/cac-core/pkg/config"
	"github.com/rpunt/cac-core/pkg/output"
	"github.com/rpunt/cac-core/pkg/verbose"
)

// Flag names registered on every command.
const (
	// OutputFlag selects the output format (table, json, csv, xml).
	OutputFlag = "output"

	// VerboseFlag enables debug tracing for the command run.
	VerboseFlag = "verbose"
)

// Command is the interface implemented by all cac-core commands.
//
// Implementations declare their flags in DefineFlags and perform their
// work in Execute. Argument validation can be added by implementing the
// optional Validator interface.
type Command interface {
	// Name returns the command name as typed on the command line.
	Name() string

	// Description returns the one-line help text for the command.
	Description() string

	// DefineFlags registers command-specific flags on the given flag set.
	// Common flags (--output, --verbose) are registered by the dispatcher.
	DefineFlags(flags *pflag.FlagSet)

	// Execute runs the command with the populated context.
	Execute(ctx *Context) error
}

// Validator is an optional interface for commands that validate their
// arguments before execution. Validation errors are reported with
// ExitConfigError.
type Validator interface {
	Validate(ctx *Context) error
}

// Context carries the runtime state handed to a command's Execute method.
//
// Fields:
//   - Config: The application configuration, may be nil if the app has none
//   - Log: Logger scoped to the command name
//   - Output: The parsed output format from --output
//   - Verbose: Whether --verbose was set
//   - Args: Positional arguments remaining after flag parsing
//   - Stdout: Destination for command output (os.Stdout by default)
//   - Stderr: Destination for diagnostics (os.Stderr by default)
type Context struct {
	Config  *config.Config
	Log     *zap.SugaredLogger
	Output  output.Format
	Verbose bool
	Args    []string
	Stdout  io.Writer
	Stderr  io.Writer
}

// NewContext creates a Context with stdout/stderr defaults and a nop logger.
//
// Returns:
//   - *Context: A context ready to be populated by the dispatcher
func NewContext() *Context {
	return &Context{
		Log:    zap.NewNop().Sugar(),
		Output: output.FormatTable,
		Stdout: os.Stdout,
		Stderr: os.Stderr,
	}
}

// Printer returns a printer writing to the context's stdout in the
// context's output format.
//
// Returns:
//   - *output.Printer: Printer for the command's data models
func (c *Context) Printer() *output.Printer {
	return output.NewPrinter(c.Output, c.Stdout)
}

// DefineCommonFlags registers the flags shared by all commands on the
// given flag set. Flags that are already present are left untouched so
// commands may override defaults or help text.
//
// Parameters:
//   - flags: The flag set to add --output and --verbose to
//
// Returns:
//   - None
func DefineCommonFlags(flags *pflag.FlagSet) {
	if flags.Lookup(OutputFlag) == nil {
		flags.String(OutputFlag, string(output.FormatTable), "Output format (table, json, csv, xml)")
	}
	if flags.Lookup(VerboseFlag) == nil {
		flags.Bool(VerboseFlag, false, "Enable verbose debug output")
	}
}

// ParseCommonFlags reads the common flags back out of a parsed flag set
// and applies them to the context.
//
// Parameters:
//   - ctx: The context to populate
//   - flags: The parsed flag set containing the common flags
//
// Returns:
//   - None
func ParseCommonFlags(ctx *Context, flags *pflag.FlagSet) {
	if raw, err := flags.GetString(OutputFlag); err == nil {
		ctx.Output = output.ParseFormat(raw)
	}
	if v, err := flags.GetBool(VerboseFlag); err == nil {
		ctx.Verbose = v
	}
}

// SafeExecute validates and runs a command, translating every failure
// into the exit-code error taxonomy.
//
// It performs the following operations:
//   - Step 1: Enables verbose tracing when the context requests it
//   - Step 2: Runs Validate when the command implements Validator
//   - Step 3: Executes the command, converting panics into failures
//
// Validation failures map to ExitConfigError; execution errors that are
// not already a command Error map to ExitFailure.
//
// Parameters:
//   - cmd: The command to run
//   - ctx: The populated execution context
//
// Returns:
//   - error: A *Error describing the failure, or nil on success
func SafeExecute(cmd Command, ctx *Context) (err error) {
	if ctx == nil {
		ctx = NewContext()
	}
	if ctx.Verbose {
		verbose.Enable()
	}

	defer func() {
		if r := recover(); r != nil {
			ctx.Log.Errorf("unexpected panic in %s: %v", cmd.Name(), r)
			err = NewErrorf(ExitFailure, "unexpected error executing %s: %v", cmd.Name(), r)
		}
	}()

	if v, ok := cmd.(Validator); ok {
		if verr := v.Validate(ctx); verr != nil {
			var cmdErr *Error
			if errors.As(verr, &cmdErr) {
				return verr
			}
			return NewError(ExitConfigError, fmt.Errorf("invalid arguments for %s: %w", cmd.Name(), verr))
		}
	}

	verbose.Infof("Executing command: %s", cmd.Name())
	if execErr := cmd.Execute(ctx); execErr != nil {
		var cmdErr *Error
		if errors.As(execErr, &cmdErr) {
			return execErr
		}
		return NewError(ExitFailure, execErr)
	}

	return nil
}
