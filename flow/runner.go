package flow

import (
	"context"
	"io"
	"os/exec"
)

// CommandRunner runs a shell command and returns its exit code.
type CommandRunner interface {
	Run(ctx context.Context, command string, stdout io.Writer, stderr io.Writer) (int, error)
}

// ShellRunner runs commands with bash -c.
// Cancelling ctx kills the command.
type ShellRunner struct {
	Shell string
	Env   []string // appended to the environment of the current process
}

func (r ShellRunner) Run(ctx context.Context, command string, stdout io.Writer, stderr io.Writer) (int, error) {
	shell := r.Shell
	if shell == "" {
		shell = "bash"
	}
	cmd := exec.CommandContext(ctx, shell, "-c", command)
	cmd.Stdout = stdout
	cmd.Stderr = stderr
	if len(r.Env) > 0 {
		cmd.Env = append(cmd.Environ(), r.Env...)
	}
	err := cmd.Run()
	if err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			return exitErr.ExitCode(), err
		}
		return -1, err
	}
	return 0, nil
}
