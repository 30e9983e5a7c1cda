package cli

import (
	"context"
	"errors"
	"io"
	"strings"
)

func (a *App) prompt() string {
	if a.userName != "" {
		return "keygate (" + a.userName + ")> "
	}
	return "keygate> "
}

// Run executes args as a single command, or starts the REPL when args is
// empty. It returns the process exit code.
func (a *App) Run(ctx context.Context, args []string) int {
	if len(args) > 0 {
		if _, err := a.Exec(ctx, args[0], args[1:]); err != nil {
			a.printf("error: %v\n", err)
			return 1
		}
		return 0
	}

	a.printf("Welcome to keygate CLI (type 'help' for commands)\n")

	for {
		a.printf("%s", a.prompt())
		line, err := a.reader.ReadString('\n')
		if err != nil && !(errors.Is(err, io.EOF) && line != "") {
			return 0
		}

		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}

		stop, err := a.Exec(ctx, parts[0], parts[1:])
		if err != nil {
			a.printf("error: %v\n", err)
		}
		if stop {
			return 0
		}
	}
}
