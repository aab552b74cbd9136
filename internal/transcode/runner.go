package transcode

import (
	"bytes"
	"context"
	"os/exec"
)

type commandRunner struct{}

// NewCommandRunner returns the default runner backed by os/exec.
func NewCommandRunner() Runner {
	return commandRunner{}
}

func (commandRunner) Run(ctx context.Context, binary string, args []string) (string, error) {
	cmd := exec.CommandContext(ctx, binary, args...)
	var output bytes.Buffer
	cmd.Stdout = &output
	cmd.Stderr = &output
	err := cmd.Run()
	return output.String(), err
}
