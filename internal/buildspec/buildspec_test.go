package buildspec

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/existentialmutt/wsl-build/internal/wslenv"
)

func TestParseSingleTarget(t *testing.T) {
	data := []byte(`
name: Run Current Spec
target: wsl_exec
wsl_cmd: [bundle, exec, rake, spec]
wsl_env:
  SPEC: $file
  LIST/l: "%PATH%"
wsl_working_dir: $unix_folder
cancel: {kill: true}
`)
	targets, err := Parse(data)
	require.NoError(t, err)
	require.Len(t, targets, 1)

	tgt := targets[0]
	assert.Equal(t, "Run Current Spec", tgt.Name)
	assert.Equal(t, []string{"bundle", "exec", "rake", "spec"}, tgt.Cmd)
	assert.Equal(t, "$unix_folder", tgt.WorkingDir)
	assert.Equal(t, wslenv.Spec{
		{Name: "SPEC", Flag: wslenv.FlagNone, Value: "$file"},
		{Name: "LIST", Flag: wslenv.FlagPathList, Value: "%PATH%"},
	}, tgt.Env)
	assert.Equal(t, map[string]any{"kill": true}, tgt.Cancel)
}

func TestParseSublimeBuildJSON(t *testing.T) {
	// .sublime-build files are JSON; YAML parses them unchanged.
	data := []byte(`{
	"build_systems": [
		{
			"name": "native",
			"target": "exec",
			"cmd": ["make"]
		},
		{
			"name": "specs",
			"target": "wsl_exec",
			"wsl_cmd": ["bundle", "exec", "rake", "spec"],
			"wsl_working_dir": "$unix_folder"
		}
	]
}`)
	targets, err := Parse(data)
	require.NoError(t, err)
	require.Len(t, targets, 1, "non-wsl_exec targets are skipped")
	assert.Equal(t, "specs", targets[0].Name)
	assert.Equal(t, []string{"bundle", "exec", "rake", "spec"}, targets[0].Cmd)
}

func TestParseShellCmd(t *testing.T) {
	data := []byte(`
target: wsl_exec
wsl_shell_cmd: bundle exec rake "spec files"
`)
	targets, err := Parse(data)
	require.NoError(t, err)
	assert.Equal(t, []string{"bundle", "exec", "rake", "spec files"}, targets[0].Cmd)
}

func TestParseMissingCommand(t *testing.T) {
	_, err := Parse([]byte(`target: wsl_exec`))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMissingCommand)
	assert.True(t, IsConfigurationError(err))
}

func TestParseConflictingCommands(t *testing.T) {
	data := []byte(`
target: wsl_exec
wsl_cmd: [make]
wsl_shell_cmd: make all
`)
	_, err := Parse(data)
	assert.ErrorIs(t, err, ErrConflictingCommand)
}

func TestParseWrongTarget(t *testing.T) {
	_, err := Parse([]byte(`{"target": "exec", "cmd": ["make"]}`))
	assert.ErrorIs(t, err, ErrWrongTarget)
	assert.True(t, IsConfigurationError(err))
}

func TestParseNoTargetInList(t *testing.T) {
	data := []byte(`
build_systems:
  - {name: a, target: exec, cmd: [make]}
`)
	_, err := Parse(data)
	assert.ErrorIs(t, err, ErrNoTarget)
}

func TestParseEnvOrderPreserved(t *testing.T) {
	// Duplicate bare names with different flags must keep document order
	// so last-one-wins is deterministic.
	data := []byte(`
target: wsl_exec
wsl_cmd: [env]
wsl_env:
  PATH/p: first
  PATH/w: second
  OTHER: third
`)
	targets, err := Parse(data)
	require.NoError(t, err)

	env := targets[0].Env
	require.Len(t, env, 3)
	assert.Equal(t, "PATH", env[0].Name)
	assert.Equal(t, wslenv.FlagPathSingle, env[0].Flag)
	assert.Equal(t, "PATH", env[1].Name)
	assert.Equal(t, wslenv.FlagNoAutoConvert, env[1].Flag)
	assert.Equal(t, "OTHER", env[2].Name)
}

func TestParseInvalidEnv(t *testing.T) {
	data := []byte(`
target: wsl_exec
wsl_cmd: [env]
wsl_env: [not, a, mapping]
`)
	_, err := Parse(data)
	assert.ErrorIs(t, err, ErrInvalidEnv)
}

func TestSelect(t *testing.T) {
	targets := []Target{{Name: "a"}, {Name: "b"}}

	got, err := Select(targets, "b")
	require.NoError(t, err)
	assert.Equal(t, "b", got.Name)

	_, err = Select(targets, "")
	assert.Error(t, err, "ambiguous selection needs a name")

	_, err = Select(targets, "missing")
	assert.ErrorIs(t, err, ErrNoTarget)

	got, err = Select(targets[:1], "")
	require.NoError(t, err)
	assert.Equal(t, "a", got.Name)
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "project.sublime-build")
	content := `{"target": "wsl_exec", "wsl_cmd": ["ls"], "wsl_env": {"SPEC": "$file"}}`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	targets, err := Load(path)
	require.NoError(t, err)
	require.Len(t, targets, 1)
	assert.Equal(t, []string{"ls"}, targets[0].Cmd)

	_, err = Load(filepath.Join(dir, "missing.yml"))
	assert.Error(t, err)
}
