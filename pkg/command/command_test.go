package command

import (
	"errors"
	"fmt"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rpunt/cac-core/pkg/output"
	"github.com/rpunt/cac-core/pkg/verbose"
)

// fakeCommand is a configurable command implementation for tests.
type fakeCommand struct {
	name        string
	executeErr  error
	validateErr error
	panicWith   any
	executed    bool
	gotCtx      *Context
}

func (f *fakeCommand) Name() string                     { return f.name }
func (f *fakeCommand) Description() string              { return "fake command" }
func (f *fakeCommand) DefineFlags(flags *pflag.FlagSet) {}

func (f *fakeCommand) Execute(ctx *Context) error {
	f.executed = true
	f.gotCtx = ctx
	if f.panicWith != nil {
		panic(f.panicWith)
	}
	return f.executeErr
}

// validatingCommand adds Validate to fakeCommand.
type validatingCommand struct {
	fakeCommand
}

func (v *validatingCommand) Validate(ctx *Context) error {
	return v.validateErr
}

// TestSafeExecute tests the behavior of SafeExecute.
//
// It verifies:
//   - Successful commands return nil
//   - Plain errors are wrapped with ExitFailure
//   - Command errors pass through unchanged
//   - Panics are converted into failures
func TestSafeExecute(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		cmd := &fakeCommand{name: "ok"}
		require.NoError(t, SafeExecute(cmd, NewContext()))
		assert.True(t, cmd.executed)
	})

	t.Run("plain error wraps to failure", func(t *testing.T) {
		cause := errors.New("boom")
		cmd := &fakeCommand{name: "fail", executeErr: cause}

		err := SafeExecute(cmd, NewContext())
		require.Error(t, err)
		assert.Equal(t, ExitFailure, GetExitCode(err))
		assert.ErrorIs(t, err, cause)
	})

	t.Run("command error passes through", func(t *testing.T) {
		cmdErr := NewErrorf(ExitConfigError, "bad flag")
		cmd := &fakeCommand{name: "fail", executeErr: cmdErr}

		err := SafeExecute(cmd, NewContext())
		assert.Equal(t, ExitConfigError, GetExitCode(err))
	})

	t.Run("panic converts to failure", func(t *testing.T) {
		cmd := &fakeCommand{name: "explode", panicWith: "kaboom"}

		err := SafeExecute(cmd, NewContext())
		require.Error(t, err)
		assert.Equal(t, ExitFailure, GetExitCode(err))
		assert.Contains(t, err.Error(), "kaboom")
	})

	t.Run("nil context is defaulted", func(t *testing.T) {
		cmd := &fakeCommand{name: "ok"}
		require.NoError(t, SafeExecute(cmd, nil))
		require.NotNil(t, cmd.gotCtx)
		assert.NotNil(t, cmd.gotCtx.Stdout)
	})
}

// TestSafeExecuteValidation tests the validation path of SafeExecute.
//
// It verifies:
//   - Validation failures map to ExitConfigError
//   - Validation command errors keep their code
//   - Execution is skipped when validation fails
func TestSafeExecuteValidation(t *testing.T) {
	t.Run("plain validation error", func(t *testing.T) {
		cmd := &validatingCommand{}
		cmd.name = "strict"
		cmd.validateErr = fmt.Errorf("missing argument")

		err := SafeExecute(cmd, NewContext())
		require.Error(t, err)
		assert.Equal(t, ExitConfigError, GetExitCode(err))
		assert.False(t, cmd.executed)
	})

	t.Run("command error keeps code", func(t *testing.T) {
		cmd := &validatingCommand{}
		cmd.name = "strict"
		cmd.validateErr = NewErrorf(ExitFailure, "already fatal")

		err := SafeExecute(cmd, NewContext())
		assert.Equal(t, ExitFailure, GetExitCode(err))
	})
}

// TestSafeExecuteVerbose tests verbose activation in SafeExecute.
//
// It verifies:
//   - A verbose context enables the trace package
func TestSafeExecuteVerbose(t *testing.T) {
	t.Cleanup(verbose.Disable)

	ctx := NewContext()
	ctx.Verbose = true

	require.NoError(t, SafeExecute(&fakeCommand{name: "ok"}, ctx))
	assert.True(t, verbose.IsEnabled())
}

// TestCommonFlags tests DefineCommonFlags and ParseCommonFlags.
//
// It verifies:
//   - Both common flags are registered with defaults
//   - Existing flags are not overwritten
//   - Parsed values land in the context
func TestCommonFlags(t *testing.T) {
	t.Run("registers defaults", func(t *testing.T) {
		flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
		DefineCommonFlags(flags)

		require.NotNil(t, flags.Lookup(OutputFlag))
		require.NotNil(t, flags.Lookup(VerboseFlag))

		ctx := NewContext()
		require.NoError(t, flags.Parse(nil))
		ParseCommonFlags(ctx, flags)
		assert.Equal(t, output.FormatTable, ctx.Output)
		assert.False(t, ctx.Verbose)
	})

	t.Run("keeps existing flag", func(t *testing.T) {
		flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
		flags.String(OutputFlag, "json", "custom default")
		DefineCommonFlags(flags)

		ctx := NewContext()
		require.NoError(t, flags.Parse(nil))
		ParseCommonFlags(ctx, flags)
		assert.Equal(t, output.FormatJSON, ctx.Output)
	})

	t.Run("parses provided values", func(t *testing.T) {
		flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
		DefineCommonFlags(flags)
		require.NoError(t, flags.Parse([]string{"--output", "csv", "--verbose"}))

		ctx := NewContext()
		ParseCommonFlags(ctx, flags)
		assert.Equal(t, output.FormatCSV, ctx.Output)
		assert.True(t, ctx.Verbose)
	})
}

// TestGetExitCode tests the behavior of GetExitCode.
//
// It verifies:
//   - nil maps to success
//   - Wrapped command errors surface their code
//   - Unknown errors map to failure
func TestGetExitCode(t *testing.T) {
	assert.Equal(t, ExitSuccess, GetExitCode(nil))
	assert.Equal(t, ExitConfigError, GetExitCode(NewErrorf(ExitConfigError, "bad")))
	assert.Equal(t, ExitConfigError, GetExitCode(fmt.Errorf("wrapped: %w", NewErrorf(ExitConfigError, "bad"))))
	assert.Equal(t, ExitFailure, GetExitCode(errors.New("anonymous")))
}

// TestErrorMessages tests the Error type's message selection.
//
// It verifies:
//   - Message takes precedence over the wrapped error
//   - The wrapped error is used when no message is set
//   - A bare code renders a fallback message
func TestErrorMessages(t *testing.T) {
	assert.Equal(t, "explicit", (&Error{Code: 1, Message: "explicit", Err: errors.New("cause")}).Error())
	assert.Equal(t, "cause", NewError(ExitFailure, errors.New("cause")).Error())
	assert.Equal(t, "exit code 3", (&Error{Code: 3}).Error())
}

// TestContextPrinter tests the behavior of Context.Printer.
//
// It verifies:
//   - The printer uses the context's format and writer
func TestContextPrinter(t *testing.T) {
	ctx := NewContext()
	ctx.Output = output.FormatJSON
	require.NotNil(t, ctx.Printer())
}
