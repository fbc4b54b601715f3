// Package invoke assembles build invocations and hands them to a launcher.
package invoke

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/existentialmutt/wsl-build/internal/buildspec"
	"github.com/existentialmutt/wsl-build/internal/interop"
	"github.com/existentialmutt/wsl-build/internal/pathconv"
	"github.com/existentialmutt/wsl-build/internal/vars"
	"github.com/existentialmutt/wsl-build/internal/wslenv"
)

// Invocation is a fully-assembled build: every variable substituted, every
// path translated, both environment views resolved. It serializes to JSON
// for --dry-run and for external launchers.
type Invocation struct {
	ID string `json:"id"`

	// Command is the build argument vector as it should run inside the
	// subsystem, without any wsl.exe relay wrapping.
	Command []string `json:"command"`

	// Dir is the subsystem-side working directory, empty when unset.
	Dir string `json:"dir,omitempty"`

	// Env is the environment for the subsystem-side process.
	Env map[string]string `json:"env,omitempty"`

	// HostEnv is the environment applied to the relay process on a
	// Windows host. It carries WSLENV so Win32 tunnels the variables
	// into the subsystem natively.
	HostEnv map[string]string `json:"hostEnv,omitempty"`

	// Cancel is the opaque cancel behavior from the build definition,
	// forwarded unmodified.
	Cancel any `json:"cancel,omitempty"`

	// Warnings collects non-fatal assembly problems, e.g. references to
	// undefined variables.
	Warnings []string `json:"warnings,omitempty"`
}

// Assemble resolves a build target against the variable set. Translation is
// best effort: unknown variables substitute to empty and surface as
// warnings, untranslatable paths pass through unchanged.
//
// Forwarded pairs come from the tool configuration and apply before the
// target's own environment, so the build file wins on conflicts.
func Assemble(target *buildspec.Target, variables vars.Set, conv *pathconv.Converter, forwarded [][2]string) *Invocation {
	inv := &Invocation{
		ID:     uuid.NewString(),
		Cancel: target.Cancel,
	}

	spec := append(wslenv.ParsePairs(forwarded), target.Env...)
	resolved, misses := spec.Encode(variables, conv)
	inv.Env = resolved.Subsystem
	inv.HostEnv = resolved.Host

	command, cmdMisses := variables.ExpandAll(target.Cmd)
	inv.Command = command
	misses = append(misses, cmdMisses...)

	if target.WorkingDir != "" {
		dir, dirMisses := variables.Expand(target.WorkingDir)
		misses = append(misses, dirMisses...)
		if pathconv.Sniff(dir) == pathconv.SyntaxWindows {
			dir = conv.ToUnix(dir)
		}
		inv.Dir = dir
	}

	for _, name := range dedupe(misses) {
		inv.Warnings = append(inv.Warnings, fmt.Sprintf("undefined variable: $%s", name))
	}
	return inv
}

// Argv produces the final argument vector for the detected environment.
// On a Windows host the command is relayed through wsl.exe, with the
// working directory set in-band: wsl.exe hands its arguments to the default
// shell, so a leading "cd <dir> ;" takes effect inside the subsystem.
// Inside the subsystem the command runs as-is and Dir applies directly.
func (inv *Invocation) Argv(info *interop.Info, distro string) []string {
	if info.Mode != interop.ModeWindowsHost {
		return inv.Command
	}

	argv := []string{info.WSLExe}
	if distro != "" {
		argv = append(argv, "-d", distro)
	}
	if inv.Dir != "" {
		argv = append(argv, "cd", inv.Dir, ";")
	}
	return append(argv, inv.Command...)
}

func dedupe(names []string) []string {
	seen := make(map[string]bool, len(names))
	var out []string
	for _, n := range names {
		if seen[n] {
			continue
		}
		seen[n] = true
		out = append(out, n)
	}
	return out
}
