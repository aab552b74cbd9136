package capture

import (
	"bytes"
	"fmt"
	"os/exec"

	"golang.org/x/sys/unix"
)

// Launcher starts the external grab process. Abstracted so tests can run
// sessions against stand-in processes instead of a real encoder.
type Launcher interface {
	Launch(binary string, args []string) (Process, error)
}

// Process is a handle to a launched grab. Done is closed exactly once when
// the process exits; Err is valid only after Done is closed.
type Process interface {
	Terminate() error
	Kill() error
	Done() <-chan struct{}
	Err() error
	Output() string
}

type commandLauncher struct{}

// NewCommandLauncher returns the default launcher backed by os/exec.
func NewCommandLauncher() Launcher {
	return commandLauncher{}
}

func (commandLauncher) Launch(binary string, args []string) (Process, error) {
	cmd := exec.Command(binary, args...)
	var output bytes.Buffer
	cmd.Stdout = &output
	cmd.Stderr = &output

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("start %s: %w", binary, err)
	}

	proc := &execProcess{
		cmd:    cmd,
		output: &output,
		done:   make(chan struct{}),
	}
	go func() {
		proc.err = cmd.Wait()
		close(proc.done)
	}()
	return proc, nil
}

type execProcess struct {
	cmd    *exec.Cmd
	output *bytes.Buffer
	done   chan struct{}
	err    error
}

func (p *execProcess) Terminate() error {
	return p.cmd.Process.Signal(unix.SIGTERM)
}

func (p *execProcess) Kill() error {
	return p.cmd.Process.Kill()
}

func (p *execProcess) Done() <-chan struct{} {
	return p.done
}

func (p *execProcess) Err() error {
	select {
	case <-p.done:
		return p.err
	default:
		return nil
	}
}

func (p *execProcess) Output() string {
	select {
	case <-p.done:
		return p.output.String()
	default:
		return ""
	}
}
