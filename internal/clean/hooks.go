package clean

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"

	"github.com/kballard/go-shellquote"
	log "github.com/sirupsen/logrus"
)

// HookResult is the outcome of one post-clean command.
type HookResult struct {
	Command string
	Output  string
	Err     error
}

// RunHooks executes configured post-clean commands sequentially. A
// failing hook is recorded and does not stop the remaining hooks.
func RunHooks(ctx context.Context, commands []string) []HookResult {
	results := make([]HookResult, 0, len(commands))

	for _, command := range commands {
		results = append(results, runHook(ctx, command))
	}
	return results
}

func runHook(ctx context.Context, command string) HookResult {
	res := HookResult{Command: command}

	parts, err := shellquote.Split(command)
	if err != nil {
		res.Err = fmt.Errorf("invalid command: %w", err)
		return res
	}
	if len(parts) == 0 {
		return res
	}

	cmd := exec.CommandContext(ctx, parts[0], parts[1:]...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err = cmd.Run()
	res.Output = strings.TrimSpace(stdout.String() + stderr.String())
	res.Err = err

	if err != nil {
		log.WithError(err).WithField("command", command).Debug("post-clean hook failed")
	}
	return res
}
