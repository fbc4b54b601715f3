// Package wslenv implements the WSLENV-style conversion flag grammar for
// environment variables shared across the WSL boundary.
//
// Raw variable names may carry a two-character suffix selecting how the
// value translates between Windows and POSIX path syntax:
//
//	MY_PATH/p  single path, translated per side
//	MY_LIST/l  path list (";" on Win32, ":" in WSL), translated per segment
//	MY_VAR/u   included only in the Windows-side environment
//	MY_VAR/w   no automatic conversion, identical on both sides
//
// Names are parsed once at configuration-load time into typed entries;
// the flag is never re-derived downstream.
package wslenv

import (
	"strings"

	"github.com/existentialmutt/wsl-build/internal/pathconv"
	"github.com/existentialmutt/wsl-build/internal/vars"
)

// Flag selects the conversion applied to an environment value.
type Flag int

const (
	// FlagNone marks a name with no recognized suffix; the value passes
	// through identically to both sides.
	FlagNone Flag = iota

	// FlagPathSingle (/p) treats the value as one path and translates it
	// to the opposite syntax for the opposite side.
	FlagPathSingle

	// FlagPathList (/l) treats the value as a delimited path list.
	FlagPathList

	// FlagWindowsOnly (/u) includes the variable only in the Windows-side
	// environment.
	FlagWindowsOnly

	// FlagNoAutoConvert (/w) documents that conversion was deliberately
	// skipped; the value is identical on both sides.
	FlagNoAutoConvert
)

// Suffix returns the flag's raw-name suffix, empty for FlagNone.
func (f Flag) Suffix() string {
	switch f {
	case FlagPathSingle:
		return "/p"
	case FlagPathList:
		return "/l"
	case FlagWindowsOnly:
		return "/u"
	case FlagNoAutoConvert:
		return "/w"
	default:
		return ""
	}
}

func (f Flag) String() string {
	switch f {
	case FlagPathSingle:
		return "path"
	case FlagPathList:
		return "path-list"
	case FlagWindowsOnly:
		return "windows-only"
	case FlagNoAutoConvert:
		return "no-convert"
	default:
		return "none"
	}
}

// ParseName splits a raw variable name into its bare name and flag.
// Unknown suffixes are literal name characters, not flags.
func ParseName(raw string) (string, Flag) {
	if len(raw) < 3 || raw[len(raw)-2] != '/' {
		return raw, FlagNone
	}
	switch raw[len(raw)-1] {
	case 'p':
		return raw[:len(raw)-2], FlagPathSingle
	case 'l':
		return raw[:len(raw)-2], FlagPathList
	case 'u':
		return raw[:len(raw)-2], FlagWindowsOnly
	case 'w':
		return raw[:len(raw)-2], FlagNoAutoConvert
	default:
		return raw, FlagNone
	}
}

// Entry is one parsed environment specification: bare name, flag, raw value.
type Entry struct {
	Name  string
	Flag  Flag
	Value string
}

// Spec is an ordered list of entries. Order matters: duplicate bare names
// apply last-one-wins.
type Spec []Entry

// ParsePairs builds a Spec from ordered (rawName, rawValue) pairs.
func ParsePairs(pairs [][2]string) Spec {
	spec := make(Spec, 0, len(pairs))
	for _, p := range pairs {
		name, flag := ParseName(p[0])
		spec = append(spec, Entry{Name: name, Flag: flag, Value: p[1]})
	}
	return spec
}

// Resolved holds the two environment mappings produced from one Spec.
// They differ only in values carrying path flags, or in variables entirely
// absent from the subsystem side.
type Resolved struct {
	// Subsystem is the environment for the WSL-side process.
	Subsystem map[string]string

	// Host is the environment for a Windows-side process reading the same
	// logical variables back. It additionally carries WSLENV so Win32
	// tunnels the variables into WSL natively.
	Host map[string]string
}

// Encode substitutes variables into every value, applies each entry's flag,
// and produces the two environment mappings. Misses reports referenced
// variables that were not in the set (substituted to the empty string);
// encoding itself never fails.
func (s Spec) Encode(variables vars.Set, conv *pathconv.Converter) (Resolved, []string) {
	r := Resolved{
		Subsystem: make(map[string]string, len(s)),
		Host:      make(map[string]string, len(s)),
	}
	if len(s) == 0 {
		return r, nil
	}

	var misses []string
	for _, e := range s {
		value, m := variables.Expand(e.Value)
		misses = append(misses, m...)

		switch e.Flag {
		case FlagPathSingle:
			r.Subsystem[e.Name], r.Host[e.Name] = conv.Convert(value)
		case FlagPathList:
			r.Subsystem[e.Name], r.Host[e.Name] = conv.ConvertList(value)
		case FlagWindowsOnly:
			r.Host[e.Name] = value
		default:
			r.Subsystem[e.Name] = value
			r.Host[e.Name] = value
		}
	}

	r.Host["WSLENV"] = s.WSLENV()
	return r, misses
}

// WSLENV composes the tunneling variable value: the flag-suffixed names in
// specification order, joined with ":".
func (s Spec) WSLENV() string {
	parts := make([]string, 0, len(s))
	for _, e := range s {
		parts = append(parts, e.Name+e.Flag.Suffix())
	}
	return strings.Join(parts, ":")
}
