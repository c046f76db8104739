package tools

import (
	"context"
	"encoding/json"
	"errors"
	"os/exec"
	"strings"
	"time"
)

// CommandOutput is the command_exec result.
type CommandOutput struct {
	Output   string `json:"output"`
	ExitCode int    `json:"exit_code"`
}

func commandExec(ctx context.Context, env *Env, input json.RawMessage) Result {
	command, ok := stringArg(input, "command", "cmd")
	if !ok || strings.TrimSpace(command) == "" {
		return errorf("Error: command_exec requires a shell command")
	}

	if env.CommandTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, env.CommandTimeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, env.Shell, "-c", command)
	if env.WorkDir != "" {
		cmd.Dir = env.WorkDir
	}
	// Background children can hold the output pipe open past the kill.
	cmd.WaitDelay = 500 * time.Millisecond
	output, err := cmd.CombinedOutput()

	out := CommandOutput{Output: strings.TrimSpace(string(output))}
	if ctxErr := ctx.Err(); ctxErr != nil {
		if errors.Is(ctxErr, context.DeadlineExceeded) {
			return errorf("Error: command timed out after %s: %s", env.CommandTimeout, out.Output)
		}
		return errorf("Error: command cancelled")
	}

	var exitErr *exec.ExitError
	switch {
	case errors.As(err, &exitErr):
		out.ExitCode = exitErr.ExitCode()
	case err != nil:
		return errorf("Error running command: %v", err)
	}
	return Result{Output: out}
}
