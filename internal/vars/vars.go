// Package vars builds the set of build variables exposed to build-target
// definitions: the editor-style path variables (file, folder, project, ...),
// their unix_* counterparts, and $name / ${name} textual substitution.
package vars

import (
	"regexp"
	"strings"

	"github.com/existentialmutt/wsl-build/internal/pathconv"
)

// Set maps variable names to values. Values are plain strings; path-valued
// variables keep whatever syntax the host supplied.
type Set map[string]string

// UnixVariables are the path variables that get a unix_* counterpart.
var UnixVariables = []string{
	"file",
	"file_path",
	"folder",
	"packages",
	"project",
	"project_path",
}

// Source holds the host-provided context a build was triggered from.
type Source struct {
	// File is the path of the file the build was triggered for.
	File string

	// Folder is the project folder. Defaults to the file's directory.
	Folder string

	// ProjectFile is the path of the project file, if any.
	ProjectFile string

	// Packages is the host editor's packages directory, if any.
	Packages string

	// Platform overrides the $platform value. Defaults to "windows".
	Platform string
}

// Extract derives the full editor variable set from the source context,
// mirroring the variables a Sublime-style host exposes to build systems.
func (s Source) Extract() Set {
	v := Set{}

	if s.File != "" {
		dir, name := splitPath(s.File)
		base, ext := splitExt(name)
		v["file"] = s.File
		v["file_path"] = dir
		v["file_name"] = name
		v["file_base_name"] = base
		v["file_extension"] = ext
	}

	folder := s.Folder
	if folder == "" && s.File != "" {
		folder, _ = splitPath(s.File)
	}
	if folder != "" {
		v["folder"] = folder
	}

	if s.ProjectFile != "" {
		dir, name := splitPath(s.ProjectFile)
		base, ext := splitExt(name)
		v["project"] = s.ProjectFile
		v["project_path"] = dir
		v["project_name"] = name
		v["project_base_name"] = base
		v["project_extension"] = ext
	}

	if s.Packages != "" {
		v["packages"] = s.Packages
	}

	platform := s.Platform
	if platform == "" {
		platform = "windows"
	}
	v["platform"] = platform

	return v
}

// AddUnixVariants derives unix_<name> for every path variable present in
// the set, leaving the originals untouched so both syntaxes stay available
// for mixed Windows/Linux command composition.
func (v Set) AddUnixVariants(conv *pathconv.Converter) {
	for _, name := range UnixVariables {
		if val, ok := v[name]; ok && val != "" {
			v["unix_"+name] = conv.ToUnix(val)
		}
	}
}

var varPattern = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)\}|\$([A-Za-z_][A-Za-z0-9_]*)`)

// Expand substitutes $name and ${name} references against the set.
// Unknown names expand to the empty string and are returned in misses so
// the caller can surface a warning; expansion itself never fails.
func (v Set) Expand(value string) (string, []string) {
	var misses []string
	out := varPattern.ReplaceAllStringFunc(value, func(ref string) string {
		name := strings.TrimPrefix(ref, "$")
		name = strings.TrimPrefix(name, "{")
		name = strings.TrimSuffix(name, "}")
		if val, ok := v[name]; ok {
			return val
		}
		misses = append(misses, name)
		return ""
	})
	return out, misses
}

// ExpandAll substitutes every element of args, collecting misses across all.
func (v Set) ExpandAll(args []string) ([]string, []string) {
	out := make([]string, len(args))
	var misses []string
	for i, arg := range args {
		expanded, m := v.Expand(arg)
		out[i] = expanded
		misses = append(misses, m...)
	}
	return out, misses
}

// splitPath separates the last path segment from its directory, accepting
// both Windows and POSIX separators regardless of the host OS.
func splitPath(p string) (dir, name string) {
	i := strings.LastIndexAny(p, `\/`)
	if i < 0 {
		return "", p
	}
	dir = p[:i]
	// Keep "C:\" and "/" intact as directories.
	if dir == "" || (len(dir) == 2 && dir[1] == ':') {
		dir = p[:i+1]
	}
	return dir, p[i+1:]
}

// splitExt separates a file name into base name and extension (no dot).
func splitExt(name string) (base, ext string) {
	i := strings.LastIndexByte(name, '.')
	if i <= 0 {
		return name, ""
	}
	return name[:i], name[i+1:]
}
