// Package interop detects which side of the WSL boundary the tool runs on.
//
// On a Windows host builds are relayed through wsl.exe; inside a WSL
// distribution they execute directly. Anything else is unsupported.
package interop

import (
	"os"
	"os/exec"
	"runtime"
	"strings"

	"go.trai.ch/zerr"
)

// Mode is the detected execution environment.
type Mode int

const (
	ModeUnsupported Mode = iota

	// ModeWindowsHost: running on Win32 with wsl.exe available.
	ModeWindowsHost

	// ModeSubsystem: running inside a WSL distribution.
	ModeSubsystem
)

func (m Mode) String() string {
	switch m {
	case ModeWindowsHost:
		return "windows-host"
	case ModeSubsystem:
		return "subsystem"
	default:
		return "unsupported"
	}
}

// Info holds the detected environment.
type Info struct {
	Mode Mode

	// WSLExe is the resolved wsl.exe path, host mode only.
	WSLExe string

	// WSLVersion is 1 or 2, subsystem mode only.
	WSLVersion int

	// Distro is $WSL_DISTRO_NAME, subsystem mode only. Best effort.
	Distro string
}

// Probe abstracts the environment reads so detection is testable off-host.
type Probe struct {
	GOOS     string
	ReadFile func(string) ([]byte, error)
	Stat     func(string) (os.FileInfo, error)
	Getenv   func(string) string
	LookPath func(string) (string, error)
}

func defaultProbe() Probe {
	return Probe{
		GOOS:     runtime.GOOS,
		ReadFile: os.ReadFile,
		Stat:     os.Stat,
		Getenv:   os.Getenv,
		LookPath: exec.LookPath,
	}
}

// Detect inspects the current process environment.
func Detect() (*Info, error) {
	return DetectWith(defaultProbe())
}

// DetectWith runs detection against the given probe.
func DetectWith(p Probe) (*Info, error) {
	switch p.GOOS {
	case "windows":
		path, err := p.LookPath("wsl.exe")
		if err != nil {
			return nil, zerr.New(
				"wsl.exe not found on PATH.\n" +
					"Install WSL first: wsl --install",
			)
		}
		return &Info{Mode: ModeWindowsHost, WSLExe: path}, nil

	case "linux":
		version, err := p.ReadFile("/proc/version")
		if err != nil {
			return nil, zerr.Wrap(err, "reading /proc/version")
		}
		lower := strings.ToLower(string(version))
		if !strings.Contains(lower, "microsoft") {
			return nil, zerr.New("running on plain Linux, not inside WSL")
		}

		info := &Info{
			Mode:   ModeSubsystem,
			Distro: p.Getenv("WSL_DISTRO_NAME"),
		}
		if strings.Contains(lower, "wsl2") {
			info.WSLVersion = 2
		} else if _, err := p.Stat("/run/WSL"); err == nil {
			// WSL1 kernels say "Microsoft" without "WSL2"; the /run/WSL
			// socket directory only exists under WSL2.
			info.WSLVersion = 2
		} else {
			info.WSLVersion = 1
		}
		return info, nil

	default:
		return nil, zerr.With(zerr.New("unsupported platform"), "goos", p.GOOS)
	}
}
