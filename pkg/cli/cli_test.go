package cli

import (
	"bytes"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rpunt/cac-core/pkg/command"
	"github.com/rpunt/cac-core/pkg/config"
	"github.com/rpunt/cac-core/pkg/output"
)

// echoCommand records its execution context for assertions.
type echoCommand struct {
	name   string
	err    error
	gotCtx *command.Context
	label  string
}

func (e *echoCommand) Name() string        { return e.name }
func (e *echoCommand) Description() string { return "echo command" }

func (e *echoCommand) DefineFlags(flags *pflag.FlagSet) {
	flags.StringVar(&e.label, "label", "", "Label to attach")
}

func (e *echoCommand) Execute(ctx *command.Context) error {
	e.gotCtx = ctx
	return e.err
}

// TestAppExecute tests the behavior of App.ExecuteArgs.
//
// It verifies:
//   - Registered commands run with a populated context
//   - Command flags and common flags both parse
//   - Positional arguments reach the command
func TestAppExecute(t *testing.T) {
	cmd := &echoCommand{name: "greet"}
	app := New("demo", "Demo application").Register(cmd)

	err := app.ExecuteArgs("greet", "--label", "hi", "--output", "json", "world")
	require.NoError(t, err)

	require.NotNil(t, cmd.gotCtx)
	assert.Equal(t, "hi", cmd.label)
	assert.Equal(t, output.FormatJSON, cmd.gotCtx.Output)
	assert.Equal(t, []string{"world"}, cmd.gotCtx.Args)
	assert.NotNil(t, cmd.gotCtx.Log)
}

// TestAppExitCodes tests the exit code mapping of App.Execute.
//
// It verifies:
//   - Success returns 0
//   - Command errors map to their code
//   - Unknown commands report an error
func TestAppExitCodes(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		app := New("demo", "Demo").Register(&echoCommand{name: "ok"})
		app.Root().SetArgs([]string{"ok"})
		assert.Equal(t, command.ExitSuccess, app.Execute())
	})

	t.Run("config error code", func(t *testing.T) {
		app := New("demo", "Demo").Register(&echoCommand{
			name: "bad",
			err:  command.NewErrorf(command.ExitConfigError, "invalid"),
		})
		app.Root().SetArgs([]string{"bad"})
		assert.Equal(t, command.ExitConfigError, app.Execute())
	})

	t.Run("unknown command", func(t *testing.T) {
		app := New("demo", "Demo").Register(&echoCommand{name: "ok"})
		require.Error(t, app.ExecuteArgs("nope"))

		app.Root().SetArgs([]string{"nope"})
		assert.Equal(t, command.ExitConfigError, app.Execute())
	})
}

// TestAppConfig tests the behavior of WithConfig.
//
// It verifies:
//   - The configuration reaches the command context
func TestAppConfig(t *testing.T) {
	cfg, err := config.Load("demo",
		config.WithConfigHome(t.TempDir()),
		config.WithDefaults(map[string]any{"project": "demo"}),
	)
	require.NoError(t, err)

	cmd := &echoCommand{name: "show"}
	app := New("demo", "Demo", WithConfig(cfg)).Register(cmd)

	require.NoError(t, app.ExecuteArgs("show"))
	require.NotNil(t, cmd.gotCtx.Config)
	assert.Equal(t, "demo", cmd.gotCtx.Config.GetString("project"))
}

// TestAppVersion tests the behavior of WithVersion.
//
// It verifies:
//   - --version prints the configured version
func TestAppVersion(t *testing.T) {
	app := New("demo", "Demo", WithVersion("1.2.3"))

	var out bytes.Buffer
	app.Root().SetOut(&out)

	require.NoError(t, app.ExecuteArgs("--version"))
	assert.Contains(t, out.String(), "1.2.3")
}

// TestAppHelp tests the root command with no arguments.
//
// It verifies:
//   - Running without a command shows help instead of failing
func TestAppHelp(t *testing.T) {
	app := New("demo", "Demo").Register(&echoCommand{name: "greet"})

	var out bytes.Buffer
	app.Root().SetOut(&out)

	require.NoError(t, app.ExecuteArgs())
	assert.Contains(t, out.String(), "greet")
}
