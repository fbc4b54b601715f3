package invoke

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/existentialmutt/wsl-build/internal/buildspec"
	"github.com/existentialmutt/wsl-build/internal/interop"
	"github.com/existentialmutt/wsl-build/internal/pathconv"
	"github.com/existentialmutt/wsl-build/internal/vars"
	"github.com/existentialmutt/wsl-build/internal/wslenv"
)

func converter() *pathconv.Converter {
	return pathconv.NewConverter("", nil)
}

func TestAssemble(t *testing.T) {
	target := &buildspec.Target{
		Name:       "specs",
		Cmd:        []string{"bundle", "exec", "rake", "spec", "$unix_file"},
		WorkingDir: "$unix_folder",
		Env: wslenv.Spec{
			{Name: "SPEC", Flag: wslenv.FlagPathSingle, Value: "$file"},
		},
		Cancel: map[string]any{"kill": true},
	}
	variables := vars.Source{
		File:   `C:\proj\spec\a_spec.rb`,
		Folder: `C:\proj`,
	}.Extract()
	conv := converter()
	variables.AddUnixVariants(conv)

	inv := Assemble(target, variables, conv, nil)

	assert.NotEmpty(t, inv.ID)
	assert.Equal(t, []string{"bundle", "exec", "rake", "spec", "/mnt/c/proj/spec/a_spec.rb"}, inv.Command)
	assert.Equal(t, "/mnt/c/proj", inv.Dir)
	assert.Equal(t, "/mnt/c/proj/spec/a_spec.rb", inv.Env["SPEC"])
	assert.Equal(t, `C:\proj\spec\a_spec.rb`, inv.HostEnv["SPEC"])
	assert.Equal(t, "SPEC/p", inv.HostEnv["WSLENV"])
	assert.Equal(t, map[string]any{"kill": true}, inv.Cancel)
	assert.Empty(t, inv.Warnings)
}

func TestAssembleWindowsWorkingDir(t *testing.T) {
	// A Windows-syntax working directory translates for the subsystem.
	target := &buildspec.Target{
		Cmd:        []string{"make"},
		WorkingDir: "$folder",
	}
	variables := vars.Set{"folder": `C:\proj`}

	inv := Assemble(target, variables, converter(), nil)
	assert.Equal(t, "/mnt/c/proj", inv.Dir)
}

func TestAssembleNoWorkingDir(t *testing.T) {
	inv := Assemble(&buildspec.Target{Cmd: []string{"make"}}, nil, converter(), nil)
	assert.Empty(t, inv.Dir)
}

func TestAssembleUndefinedVariableWarns(t *testing.T) {
	target := &buildspec.Target{
		Cmd: []string{"echo", "$mystery", "$mystery"},
	}

	inv := Assemble(target, nil, converter(), nil)

	assert.Equal(t, []string{"echo", "", ""}, inv.Command)
	assert.Equal(t, []string{"undefined variable: $mystery"}, inv.Warnings, "misses deduplicate")
}

func TestArgv(t *testing.T) {
	inv := &Invocation{Command: []string{"make", "all"}, Dir: "/mnt/c/proj"}

	host := &interop.Info{Mode: interop.ModeWindowsHost, WSLExe: "wsl.exe"}
	assert.Equal(t,
		[]string{"wsl.exe", "-d", "Debian", "cd", "/mnt/c/proj", ";", "make", "all"},
		inv.Argv(host, "Debian"))
	assert.Equal(t,
		[]string{"wsl.exe", "cd", "/mnt/c/proj", ";", "make", "all"},
		inv.Argv(host, ""))

	sub := &interop.Info{Mode: interop.ModeSubsystem}
	assert.Equal(t, []string{"make", "all"}, inv.Argv(sub, "Debian"))
}

func TestAssembleForwardedEnv(t *testing.T) {
	target := &buildspec.Target{
		Cmd: []string{"make"},
		Env: wslenv.Spec{
			{Name: "CI", Flag: wslenv.FlagNone, Value: "from-build-file"},
		},
	}
	forwarded := [][2]string{
		{"CI", "from-host"},
		{"HTTP_PROXY", "http://proxy:8080"},
	}

	inv := Assemble(target, nil, converter(), forwarded)

	// The build file's own entry wins over the forwarded one.
	assert.Equal(t, "from-build-file", inv.Env["CI"])
	assert.Equal(t, "http://proxy:8080", inv.Env["HTTP_PROXY"])
	assert.Equal(t, "http://proxy:8080", inv.HostEnv["HTTP_PROXY"])
}
