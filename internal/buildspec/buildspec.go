// Package buildspec loads build-target definitions. A build file holds
// either a single target or a Sublime-style "build_systems" list; YAML and
// JSON both parse (YAML is a superset), so .sublime-build files work as-is.
package buildspec

import (
	"errors"
	"os"

	"github.com/google/shlex"
	"go.trai.ch/zerr"
	"gopkg.in/yaml.v3"

	"github.com/existentialmutt/wsl-build/internal/wslenv"
)

// TargetName is the sentinel value of the "target" key selecting this tool.
const TargetName = "wsl_exec"

// Configuration errors, surfaced before any process preparation runs.
var (
	ErrNoTarget           = zerr.New("no wsl_exec build target found")
	ErrWrongTarget        = zerr.New("build target is not wsl_exec")
	ErrMissingCommand     = zerr.New("wsl_cmd is required")
	ErrConflictingCommand = zerr.New("wsl_cmd and wsl_shell_cmd are mutually exclusive")
	ErrInvalidEnv         = zerr.New("wsl_env must be a mapping of strings")
)

// definition is the raw on-disk shape of one build target.
type definition struct {
	Name          string    `yaml:"name"`
	Target        string    `yaml:"target"`
	WslCmd        []string  `yaml:"wsl_cmd"`
	WslShellCmd   string    `yaml:"wsl_shell_cmd"`
	WslWorkingDir string    `yaml:"wsl_working_dir"`
	WslEnv        yaml.Node `yaml:"wsl_env"`
	Cancel        yaml.Node `yaml:"cancel"`
}

type buildFile struct {
	BuildSystems []definition `yaml:"build_systems"`
}

// Target is a validated build target with its environment spec parsed once
// into typed entries.
type Target struct {
	// Name is the display name from the definition, if any.
	Name string

	// Cmd is the raw argument vector, variables not yet expanded.
	Cmd []string

	// WorkingDir is the raw working directory, empty when absent.
	WorkingDir string

	// Env is the ordered environment specification.
	Env wslenv.Spec

	// Cancel is an opaque value forwarded unmodified to the launcher.
	Cancel any
}

// Load reads a build file from disk and returns its wsl_exec targets.
func Load(path string) ([]Target, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, zerr.Wrap(err, "reading build file")
	}
	targets, err := Parse(data)
	if err != nil {
		return nil, zerr.With(err, "build_file", path)
	}
	return targets, nil
}

// Parse decodes build definitions from YAML or JSON. A top-level
// "build_systems" list is filtered to wsl_exec targets; a bare definition
// must carry the sentinel itself.
func Parse(data []byte) ([]Target, error) {
	var file buildFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, zerr.Wrap(err, "parsing build file")
	}

	if len(file.BuildSystems) > 0 {
		var targets []Target
		for _, def := range file.BuildSystems {
			if def.Target != TargetName {
				continue
			}
			t, err := def.validate()
			if err != nil {
				return nil, err
			}
			targets = append(targets, t)
		}
		if len(targets) == 0 {
			return nil, ErrNoTarget
		}
		return targets, nil
	}

	var def definition
	if err := yaml.Unmarshal(data, &def); err != nil {
		return nil, zerr.Wrap(err, "parsing build file")
	}
	if def.Target != TargetName {
		return nil, zerr.With(ErrWrongTarget, "target", def.Target)
	}
	t, err := def.validate()
	if err != nil {
		return nil, err
	}
	return []Target{t}, nil
}

// Select picks a target by name, or the only target when name is empty.
func Select(targets []Target, name string) (*Target, error) {
	if name == "" {
		if len(targets) == 1 {
			return &targets[0], nil
		}
		names := make([]string, len(targets))
		for i, t := range targets {
			names[i] = t.Name
		}
		return nil, zerr.With(zerr.New("multiple build targets, pick one with --name"), "available", names)
	}
	for i := range targets {
		if targets[i].Name == name {
			return &targets[i], nil
		}
	}
	return nil, zerr.With(ErrNoTarget, "name", name)
}

func (d definition) validate() (Target, error) {
	t := Target{
		Name:       d.Name,
		WorkingDir: d.WslWorkingDir,
	}

	switch {
	case len(d.WslCmd) > 0 && d.WslShellCmd != "":
		return t, zerr.With(ErrConflictingCommand, "name", d.Name)
	case len(d.WslCmd) > 0:
		t.Cmd = d.WslCmd
	case d.WslShellCmd != "":
		argv, err := shlex.Split(d.WslShellCmd)
		if err != nil {
			return t, zerr.Wrap(err, "splitting wsl_shell_cmd")
		}
		t.Cmd = argv
	default:
		return t, zerr.With(ErrMissingCommand, "name", d.Name)
	}

	env, err := parseEnv(&d.WslEnv)
	if err != nil {
		return t, zerr.With(err, "name", d.Name)
	}
	t.Env = env

	if d.Cancel.Kind != 0 {
		var cancel any
		if err := d.Cancel.Decode(&cancel); err != nil {
			return t, zerr.Wrap(err, "decoding cancel")
		}
		t.Cancel = cancel
	}

	return t, nil
}

// parseEnv walks the wsl_env mapping node in document order, so duplicate
// bare names resolve last-one-wins deterministically.
func parseEnv(node *yaml.Node) (wslenv.Spec, error) {
	if node.Kind == 0 {
		return nil, nil
	}
	if node.Kind != yaml.MappingNode {
		return nil, ErrInvalidEnv
	}

	pairs := make([][2]string, 0, len(node.Content)/2)
	for i := 0; i+1 < len(node.Content); i += 2 {
		key, val := node.Content[i], node.Content[i+1]
		if key.Kind != yaml.ScalarNode || val.Kind != yaml.ScalarNode {
			return nil, zerr.With(ErrInvalidEnv, "key", key.Value)
		}
		pairs = append(pairs, [2]string{key.Value, val.Value})
	}
	return wslenv.ParsePairs(pairs), nil
}

// IsConfigurationError reports whether err is one of the fatal pre-launch
// configuration errors, as opposed to a best-effort translation fallback.
func IsConfigurationError(err error) bool {
	for _, sentinel := range []error{
		ErrNoTarget, ErrWrongTarget, ErrMissingCommand, ErrConflictingCommand, ErrInvalidEnv,
	} {
		if errors.Is(err, sentinel) {
			return true
		}
	}
	return false
}
