// Package pathconv translates paths between Windows and WSL formats.
// All conversion is syntactic: no filesystem access, no wslpath shellout.
// Unrecognized inputs pass through unchanged so a failed translation can
// never block a build.
package pathconv

import (
	"sort"
	"strings"
)

// Syntax identifies which path convention a value is written in.
type Syntax int

const (
	SyntaxWindows Syntax = iota
	SyntaxPosix
)

func (s Syntax) String() string {
	if s == SyntaxPosix {
		return "posix"
	}
	return "windows"
}

// List delimiters per syntax: semicolon on Win32, colon inside WSL.
const (
	WindowsListSep = ";"
	PosixListSep   = ":"
)

// Sniff guesses the syntax of a path or path-list value.
// A leading "/" means POSIX; everything else is treated as Windows.
func Sniff(value string) Syntax {
	if strings.HasPrefix(value, "/") {
		return SyntaxPosix
	}
	return SyntaxWindows
}

// DefaultMountRoot is the standard WSL automount location for Windows drives.
const DefaultMountRoot = "/mnt"

// Converter translates individual paths between Windows and POSIX syntax.
// Drive letters map to mount points under the automount root, with optional
// per-drive overrides (custom automount roots, resolved subst drives).
type Converter struct {
	root   string
	mounts map[string]string // drive letter (uppercase) → unix mount point
}

// NewConverter creates a converter. root defaults to /mnt when empty.
// mounts maps drive letters to explicit mount points and takes precedence
// over the root/<letter> pattern in both directions.
func NewConverter(root string, mounts map[string]string) *Converter {
	if root == "" {
		root = DefaultMountRoot
	}
	c := &Converter{
		root:   strings.TrimRight(root, "/"),
		mounts: make(map[string]string, len(mounts)),
	}
	for letter, mp := range mounts {
		if letter == "" || mp == "" {
			continue
		}
		c.mounts[strings.ToUpper(letter)] = strings.TrimRight(mp, "/")
	}
	return c
}

// Mounts returns a copy of the explicit drive mount table.
func (c *Converter) Mounts() map[string]string {
	out := make(map[string]string, len(c.mounts))
	for letter, mp := range c.mounts {
		out[letter] = mp
	}
	return out
}

// ToUnix converts a Windows path to its WSL counterpart.
//
//	C:\proj\a.rb                     → /mnt/c/proj/a.rb
//	\\wsl.localhost\Ubuntu\home\me   → /home/me
//
// Paths that match neither form are returned unchanged.
func (c *Converter) ToUnix(path string) string {
	if path == "" {
		return path
	}

	// UNC paths pointing back into the WSL filesystem lose their prefix.
	if strings.HasPrefix(path, `\\`) {
		if stripped, ok := stripWSLPrefix(path); ok {
			return strings.ReplaceAll(stripped, `\`, "/")
		}
		return path
	}

	if len(path) >= 2 && path[1] == ':' && isDriveLetter(path[0]) {
		letter := strings.ToUpper(string(path[0]))
		rest := strings.TrimLeft(path[2:], `\/`)
		rest = strings.ReplaceAll(rest, `\`, "/")

		mp, ok := c.mounts[letter]
		if !ok {
			mp = c.root + "/" + strings.ToLower(letter)
		}
		if rest == "" {
			return mp
		}
		return mp + "/" + rest
	}

	return path
}

// ToWindows converts a WSL path back to Windows syntax.
//
//	/mnt/c/proj/a.rb → C:\proj\a.rb
//
// Explicit mount points are matched first, longest prefix wins, so a subst
// drive mapped deeper than the automount root takes precedence. POSIX paths
// under no known mount point are returned unchanged.
func (c *Converter) ToWindows(path string) string {
	if !strings.HasPrefix(path, "/") {
		return path
	}

	if letter, rest, ok := c.matchMount(path); ok {
		return joinWindows(letter, rest)
	}

	// Default automount pattern: <root>/<letter>[/rest]
	if tail, ok := strings.CutPrefix(path, c.root+"/"); ok && tail != "" {
		letter := tail
		rest := ""
		if i := strings.IndexByte(tail, '/'); i >= 0 {
			letter, rest = tail[:i], tail[i+1:]
		}
		if len(letter) == 1 && isDriveLetter(letter[0]) {
			return joinWindows(strings.ToUpper(letter), rest)
		}
	}

	return path
}

// matchMount finds the explicit mount point with the longest prefix match.
func (c *Converter) matchMount(path string) (letter, rest string, ok bool) {
	letters := make([]string, 0, len(c.mounts))
	for l := range c.mounts {
		letters = append(letters, l)
	}
	sort.Strings(letters)

	bestLen := -1
	for _, l := range letters {
		mp := c.mounts[l]
		tail, matched := strings.CutPrefix(path, mp)
		if !matched || (tail != "" && !strings.HasPrefix(tail, "/")) {
			continue
		}
		if len(mp) > bestLen {
			bestLen = len(mp)
			letter = l
			rest = strings.TrimPrefix(tail, "/")
			ok = true
		}
	}
	return letter, rest, ok
}

// Convert translates a single path value for both sides of the boundary.
// The syntax is sniffed; the native side keeps the value untouched.
func (c *Converter) Convert(value string) (subsystem, host string) {
	if Sniff(value) == SyntaxPosix {
		return value, c.ToWindows(value)
	}
	return c.ToUnix(value), value
}

// ConvertList translates a delimited path list for both sides.
// Windows lists split on ";", POSIX lists on ":"; each segment converts
// independently and empty segments stay empty rather than failing.
func (c *Converter) ConvertList(value string) (subsystem, host string) {
	if Sniff(value) == SyntaxPosix {
		segments := strings.Split(value, PosixListSep)
		converted := make([]string, len(segments))
		for i, seg := range segments {
			converted[i] = c.ToWindows(seg)
		}
		return value, strings.Join(converted, WindowsListSep)
	}

	segments := strings.Split(value, WindowsListSep)
	converted := make([]string, len(segments))
	for i, seg := range segments {
		converted[i] = c.ToUnix(seg)
	}
	return strings.Join(converted, PosixListSep), value
}

// stripWSLPrefix removes a \\wsl.localhost\<distro> or \\wsl$\<distro>
// prefix, returning the remaining path (which may be empty for the root).
func stripWSLPrefix(path string) (string, bool) {
	for _, host := range []string{`\\wsl.localhost\`, `\\wsl$\`} {
		tail, ok := strings.CutPrefix(path, host)
		if !ok {
			continue
		}
		// Skip the distro segment.
		if i := strings.IndexByte(tail, '\\'); i >= 0 {
			return tail[i:], true
		}
		return `\`, true
	}
	return "", false
}

func joinWindows(letter, rest string) string {
	if rest == "" {
		return letter + `:\`
	}
	return letter + `:\` + strings.ReplaceAll(rest, "/", `\`)
}

func isDriveLetter(b byte) bool {
	return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}
