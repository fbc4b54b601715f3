package invoke

import (
	"context"
	"errors"
	"io"
	"os"
	"os/exec"

	"go.trai.ch/zerr"

	"github.com/existentialmutt/wsl-build/internal/interop"
)

// Result holds the outcome of a finished build.
type Result struct {
	ExitCode int
}

// Handle is a started build the caller can wait on or kill early.
type Handle interface {
	Wait() (*Result, error)
	Kill() error
}

// Launcher starts an assembled invocation and hands back a cancellable
// handle.
type Launcher interface {
	Launch(ctx context.Context, inv *Invocation) (Handle, error)
}

// ExecLauncher runs invocations with stdio passthrough: directly inside the
// subsystem, or relayed through wsl.exe from a Windows host.
type ExecLauncher struct {
	Info   *interop.Info
	Distro string

	// Stdout and Stderr default to the process streams.
	Stdout io.Writer
	Stderr io.Writer

	// start and wait permit faking process execution in tests.
	start func(*exec.Cmd) error
	wait  func(*exec.Cmd) error
}

// Launch starts the invocation. Cancelling ctx kills the process; a
// non-zero build exit code surfaces as a Result from Wait, not an error.
func (l *ExecLauncher) Launch(ctx context.Context, inv *Invocation) (Handle, error) {
	argv := inv.Argv(l.Info, l.Distro)
	if len(argv) == 0 {
		return nil, zerr.New("empty command")
	}

	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	cmd.Stdout = l.stdout()
	cmd.Stderr = l.stderr()
	if l.Info.Mode == interop.ModeWindowsHost {
		cmd.Env = overlay(os.Environ(), inv.HostEnv)
	} else {
		cmd.Env = overlay(os.Environ(), inv.Env)
		cmd.Dir = inv.Dir
	}

	start := l.start
	if start == nil {
		start = (*exec.Cmd).Start
	}
	if err := start(cmd); err != nil {
		return nil, zerr.Wrap(err, "launching build")
	}

	wait := l.wait
	if wait == nil {
		wait = (*exec.Cmd).Wait
	}
	return &procHandle{cmd: cmd, wait: wait}, nil
}

type procHandle struct {
	cmd  *exec.Cmd
	wait func(*exec.Cmd) error
}

func (h *procHandle) Wait() (*Result, error) {
	if err := h.wait(h.cmd); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return &Result{ExitCode: exitErr.ExitCode()}, nil
		}
		return nil, zerr.Wrap(err, "waiting for build")
	}
	return &Result{}, nil
}

func (h *procHandle) Kill() error {
	if h.cmd.Process == nil {
		return nil
	}
	return h.cmd.Process.Kill()
}

// overlay appends vars on top of base; duplicate names resolve to the
// appended value.
func overlay(base []string, vars map[string]string) []string {
	if len(vars) == 0 {
		return base
	}
	env := make([]string, len(base), len(base)+len(vars))
	copy(env, base)
	for k, v := range vars {
		env = append(env, k+"="+v)
	}
	return env
}

func (l *ExecLauncher) stdout() io.Writer {
	if l.Stdout != nil {
		return l.Stdout
	}
	return os.Stdout
}

func (l *ExecLauncher) stderr() io.Writer {
	if l.Stderr != nil {
		return l.Stderr
	}
	return os.Stderr
}
