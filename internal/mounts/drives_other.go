//go:build !windows

package mounts

import (
	"os"
	"strings"
)

// enumerate reads /proc/mounts for drvfs (WSL1) and 9p (WSL2) entries,
// which carry the Windows drive root as the mount source.
func enumerate() ([]Drive, error) {
	data, err := os.ReadFile("/proc/mounts")
	if err != nil {
		return nil, err
	}
	return parseProcMounts(string(data)), nil
}

func parseProcMounts(data string) []Drive {
	var drives []Drive
	for _, line := range strings.Split(data, "\n") {
		fields := strings.Fields(line)
		if len(fields) < 3 {
			continue
		}
		source, fstype := fields[0], fields[2]
		if fstype != "drvfs" && fstype != "9p" {
			continue
		}
		// The kernel octal-escapes backslashes in mount sources.
		source = strings.ReplaceAll(source, `\134`, `\`)
		letter, ok := driveLetterOf(source)
		if !ok {
			continue
		}
		drives = append(drives, Drive{Letter: letter, Type: DriveFixed})
	}
	return drives
}

// driveLetterOf matches mount sources of the form "C:" or "C:\".
func driveLetterOf(source string) (string, bool) {
	if len(source) < 2 || source[1] != ':' {
		return "", false
	}
	if len(source) > 2 && source[2:] != `\` {
		return "", false
	}
	c := source[0]
	if c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' {
		return strings.ToUpper(source[:1]), true
	}
	return "", false
}
