package adapter

import (
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"runtime"
)

// Opener opens provider pages of identifiers in a browser
type Opener struct {
	command string   // configured browser command, empty for detection
	args    []string // additional arguments placed before the URL
	logger  *slog.Logger

	// run starts a command; replaced in tests
	run func(name string, args ...string) error
}

// candidateOpeners defines the preferred URL handlers for each platform
var candidateOpeners = map[string][][]string{
	"darwin":  {{"open"}},
	"linux":   {{"xdg-open"}, {"gio", "open"}, {"wslview"}, {"sensible-browser"}},
	"windows": {{"rundll32", "url.dll,FileProtocolHandler"}},
}

// ErrNoOpener indicates that no command for opening URLs was found
var ErrNoOpener = errors.New("no command for opening URLs found")

// NewOpener creates a new Opener. An empty command detects the system handler.
func NewOpener(command string, args []string, logger *slog.Logger) *Opener {
	if logger == nil {
		logger = slog.Default()
	}
	return &Opener{
		command: command,
		args:    args,
		logger:  logger.With("component", "opener"),
		run:     startCommand,
	}
}

// startCommand starts name in PATH without waiting for it
func startCommand(name string, args ...string) error {
	if _, err := exec.LookPath(name); err != nil {
		return err
	}
	return exec.Command(name, args...).Start()
}

// Open opens url with the configured command or the first handler found
func (o *Opener) Open(url string) error {
	// Tier 1: User configured a specific browser
	if o.command != "" {
		args := append(append([]string{}, o.args...), url)
		o.logger.Info("opening with configured browser", "command", o.command, "url", url)
		if err := o.run(o.command, args...); err != nil {
			return fmt.Errorf("failed to run %s: %w", o.command, err)
		}
		return nil
	}

	// Tier 2: Try the platform's handlers in order
	candidates, ok := candidateOpeners[runtime.GOOS]
	if !ok {
		candidates = candidateOpeners["linux"] // default
	}
	for _, c := range candidates {
		args := append(append([]string{}, c[1:]...), url)
		err := o.run(c[0], args...)
		if err == nil {
			o.logger.Info("opened with system handler", "command", c[0], "url", url)
			return nil
		}
		o.logger.Debug("handler not available", "command", c[0], "error", err)
	}

	return ErrNoOpener
}
