// Package credential manages secrets for cac-core applications in the
// operating system keyring. Missing credentials can be prompted for on a
// terminal (without echo) and are stored for subsequent runs.
package credential

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/zalando/go-keyring"
	"golang.org/x/term"

	"github.com/rpunt/cac-core/pkg/verbose"
)

// ErrNotFound is returned when no credential is stored for a username
// and prompting is disabled.
var ErrNotFound = errors.New("credential not found")

// Manager stores and retrieves credentials for one application.
//
// The application name is the keyring service; usernames distinguish
// multiple credentials within it.
type Manager struct {
	appName string
	input   io.Reader
	output  io.Writer
	// readPassword is swapped out in tests; the default reads from the
	// terminal without echo.
	readPassword func(fd int) ([]byte, error)
}

// NewManager creates a credential manager for an application.
//
// Parameters:
//   - appName: The keyring service name, typically the application name
//
// Returns:
//   - *Manager: A manager prompting on stdin/stdout when needed
func NewManager(appName string) *Manager {
	return &Manager{
		appName:      appName,
		input:        os.Stdin,
		output:       os.Stdout,
		readPassword: term.ReadPassword,
	}
}

// WithPromptIO redirects the prompt input and output, mainly for tests
// and embedding.
//
// Parameters:
//   - in: Reader supplying the credential when prompting
//   - out: Writer receiving the prompt text
//
// Returns:
//   - *Manager: The manager instance for method chaining
func (m *Manager) WithPromptIO(in io.Reader, out io.Writer) *Manager {
	if in != nil {
		m.input = in
	}
	if out != nil {
		m.output = out
	}
	return m
}

// Get retrieves a credential from the keyring, prompting when absent.
//
// It performs the following operations:
//   - Step 1: Looks the credential up in the system keyring
//   - Step 2: When absent and prompt is true, asks the user for it
//   - Step 3: Stores a prompted credential for future runs
//
// Parameters:
//   - username: The username the credential belongs to
//   - description: Human-readable credential name used in prompts (e.g., "API token")
//   - prompt: Whether to ask the user when the credential is missing
//
// Returns:
//   - string: The credential
//   - error: ErrNotFound when absent and prompting is disabled; otherwise the underlying failure
func (m *Manager) Get(username, description string, prompt bool) (string, error) {
	secret, err := keyring.Get(m.appName, username)
	if err == nil {
		return secret, nil
	}
	if !errors.Is(err, keyring.ErrNotFound) {
		return "", fmt.Errorf("read credential for %s: %w", username, err)
	}

	if !prompt {
		return "", fmt.Errorf("%w: no stored %s for %s", ErrNotFound, description, username)
	}

	verbose.Infof("Credential %q for %s not in keyring, prompting", description, username)
	secret, err = m.promptFor(username, description)
	if err != nil {
		return "", err
	}
	if secret == "" {
		return "", fmt.Errorf("%w: empty %s entered for %s", ErrNotFound, description, username)
	}

	if err := m.Set(username, secret); err != nil {
		return "", err
	}
	return secret, nil
}

// Set stores a credential in the keyring.
//
// Parameters:
//   - username: The username the credential belongs to
//   - secret: The credential to store
//
// Returns:
//   - error: When the keyring rejects the write; otherwise nil
func (m *Manager) Set(username, secret string) error {
	if strings.TrimSpace(secret) == "" {
		return errors.New("credential cannot be empty")
	}
	if err := keyring.Set(m.appName, username, secret); err != nil {
		return fmt.Errorf("store credential for %s: %w", username, err)
	}
	return nil
}

// Delete removes a credential from the keyring.
//
// Deleting an absent credential is not an error.
//
// Parameters:
//   - username: The username whose credential should be removed
//
// Returns:
//   - error: When the keyring delete fails; otherwise nil
func (m *Manager) Delete(username string) error {
	if err := keyring.Delete(m.appName, username); err != nil && !errors.Is(err, keyring.ErrNotFound) {
		return fmt.Errorf("delete credential for %s: %w", username, err)
	}
	return nil
}

// promptFor asks the user for a credential. A terminal stdin is read
// without echo; anything else falls back to a plain line read so the
// manager works in pipes and tests.
func (m *Manager) promptFor(username, description string) (string, error) {
	if _, err := fmt.Fprintf(m.output, "%s for %s not found; enter it now: ", description, username); err != nil {
		return "", fmt.Errorf("prompt credential: %w", err)
	}

	if f, ok := m.input.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		data, err := m.readPassword(int(f.Fd()))
		_, _ = fmt.Fprintln(m.output)
		if err != nil {
			return "", fmt.Errorf("read credential: %w", err)
		}
		return strings.TrimSpace(string(data)), nil
	}

	reader := bufio.NewReader(m.input)
	line, err := reader.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("read credential: %w", err)
	}
	return strings.TrimSpace(line), nil
}
