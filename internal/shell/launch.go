package shell

import (
	"context"
	"os/exec"
	"strings"

	"github.com/devorch/devorch/internal/logging"
)

// Launcher opens editors and terminals at journey worktrees. Command
// templates come from configuration and carry {path}, {dir} and {cmd}
// placeholders.
type Launcher struct {
	editorCommand   string
	terminalCommand string
	log             *logging.Logger

	// startCommand is injected in tests to avoid spawning processes.
	startCommand func(ctx context.Context, name string, args ...string) error
}

// NewLauncher creates a Launcher with the given command templates.
func NewLauncher(editorCommand, terminalCommand string, log *logging.Logger) *Launcher {
	return &Launcher{
		editorCommand:   editorCommand,
		terminalCommand: terminalCommand,
		log:             log,
		startCommand:    startDetached,
	}
}

// SetStartCommand replaces process spawning. Tests use it to observe
// launches without forking.
func (l *Launcher) SetStartCommand(fn func(ctx context.Context, name string, args ...string) error) {
	l.startCommand = fn
}

func startDetached(ctx context.Context, name string, args ...string) error {
	cmd := exec.CommandContext(ctx, name, args...)
	return cmd.Start()
}

// OpenEditor opens the configured editor at the given path.
func (l *Launcher) OpenEditor(ctx context.Context, path string) Result {
	if l.editorCommand == "" {
		return Errf("no editor command configured")
	}
	return l.launch(ctx, l.editorCommand, map[string]string{"{path}": path})
}

// OpenTerminal opens the configured terminal emulator in the given
// directory, optionally running a command inside it.
func (l *Launcher) OpenTerminal(ctx context.Context, dir, command string) Result {
	if l.terminalCommand == "" {
		return Errf("no terminal command configured")
	}
	return l.launch(ctx, l.terminalCommand, map[string]string{
		"{dir}": dir,
		"{cmd}": command,
	})
}

func (l *Launcher) launch(ctx context.Context, template string, subs map[string]string) Result {
	parts := strings.Fields(template)
	if len(parts) == 0 {
		return Errf("empty launch command")
	}
	for i, part := range parts {
		for placeholder, value := range subs {
			part = strings.ReplaceAll(part, placeholder, value)
		}
		parts[i] = part
	}

	l.log.Printf("shell: launching %s", strings.Join(parts, " "))
	if err := l.startCommand(ctx, parts[0], parts[1:]...); err != nil {
		return Errf("launching %s: %v", parts[0], err)
	}
	return Ok()
}
