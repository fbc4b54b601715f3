package wslenv

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/existentialmutt/wsl-build/internal/pathconv"
	"github.com/existentialmutt/wsl-build/internal/vars"
)

func TestParseName(t *testing.T) {
	tests := []struct {
		raw      string
		wantName string
		wantFlag Flag
	}{
		{"MY_PATH/p", "MY_PATH", FlagPathSingle},
		{"LIST/l", "LIST", FlagPathList},
		{"UNIX/u", "UNIX", FlagWindowsOnly},
		{"WIN/w", "WIN", FlagNoAutoConvert},
		{"PLAIN", "PLAIN", FlagNone},
		{"ODD/x", "ODD/x", FlagNone},
		{"TRAILING/", "TRAILING/", FlagNone},
		{"/p", "/p", FlagNone},
		{"A/p", "A", FlagPathSingle},
		{"", "", FlagNone},
	}

	for _, tt := range tests {
		name, flag := ParseName(tt.raw)
		assert.Equal(t, tt.wantName, name, "name for %q", tt.raw)
		assert.Equal(t, tt.wantFlag, flag, "flag for %q", tt.raw)
	}
}

func encode(t *testing.T, pairs [][2]string, variables vars.Set) Resolved {
	t.Helper()
	conv := pathconv.NewConverter("", nil)
	r, _ := ParsePairs(pairs).Encode(variables, conv)
	return r
}

func TestEncodePathSingle(t *testing.T) {
	r := encode(t, [][2]string{{"MY_PATH/p", `C:\Path\to\File`}}, nil)

	assert.Equal(t, "/mnt/c/Path/to/File", r.Subsystem["MY_PATH"])
	assert.Equal(t, `C:\Path\to\File`, r.Host["MY_PATH"])
}

func TestEncodePathSingleReverse(t *testing.T) {
	// Already-POSIX values convert for the host side instead.
	r := encode(t, [][2]string{{"MY_PATH/p", "/mnt/d/data"}}, nil)

	assert.Equal(t, "/mnt/d/data", r.Subsystem["MY_PATH"])
	assert.Equal(t, `D:\data`, r.Host["MY_PATH"])
}

func TestEncodePathList(t *testing.T) {
	r := encode(t, [][2]string{{"LIST/l", `C:\a;D:\b`}}, nil)

	assert.Equal(t, "/mnt/c/a:/mnt/d/b", r.Subsystem["LIST"])
	assert.Equal(t, `C:\a;D:\b`, r.Host["LIST"])
}

func TestEncodePathListReverse(t *testing.T) {
	r := encode(t, [][2]string{{"LIST/l", "/mnt/c/a:/mnt/d/b"}}, nil)

	assert.Equal(t, "/mnt/c/a:/mnt/d/b", r.Subsystem["LIST"])
	assert.Equal(t, `C:\a;D:\b`, r.Host["LIST"])
}

func TestEncodeWindowsOnly(t *testing.T) {
	r := encode(t, [][2]string{{"USERDIR/u", `C:\Users\me`}}, nil)

	_, inSubsystem := r.Subsystem["USERDIR"]
	assert.False(t, inSubsystem, "windows-only variable must never reach the subsystem env")
	assert.Equal(t, `C:\Users\me`, r.Host["USERDIR"])
}

func TestEncodeNoAutoConvert(t *testing.T) {
	r := encode(t, [][2]string{{"WIN/w", `C:\kept\as-is`}}, nil)

	assert.Equal(t, `C:\kept\as-is`, r.Subsystem["WIN"])
	assert.Equal(t, `C:\kept\as-is`, r.Host["WIN"])
}

func TestEncodeNoFlag(t *testing.T) {
	r := encode(t, [][2]string{{"PLAIN", "untranslated"}}, nil)

	assert.Equal(t, "untranslated", r.Subsystem["PLAIN"])
	assert.Equal(t, "untranslated", r.Host["PLAIN"])
}

func TestEncodeSubstitutesVariables(t *testing.T) {
	variables := vars.Set{"file": `C:\proj\a_spec.rb`}
	r := encode(t, [][2]string{{"SPEC/p", "$file"}}, variables)

	assert.Equal(t, "/mnt/c/proj/a_spec.rb", r.Subsystem["SPEC"])
	assert.Equal(t, `C:\proj\a_spec.rb`, r.Host["SPEC"])
}

func TestEncodeSubstitutionMiss(t *testing.T) {
	conv := pathconv.NewConverter("", nil)
	spec := ParsePairs([][2]string{{"X", "$unknown_thing"}})
	r, misses := spec.Encode(nil, conv)

	assert.Equal(t, "", r.Subsystem["X"])
	assert.Equal(t, []string{"unknown_thing"}, misses)
}

func TestEncodeLastWins(t *testing.T) {
	r := encode(t, [][2]string{
		{"PATH/p", `C:\first`},
		{"PATH/w", `C:\second`},
	}, nil)

	// The later /w entry overwrites both sides.
	assert.Equal(t, `C:\second`, r.Subsystem["PATH"])
	assert.Equal(t, `C:\second`, r.Host["PATH"])
}

func TestEncodeLastWinsWindowsOnly(t *testing.T) {
	r := encode(t, [][2]string{
		{"V", "both"},
		{"V/u", "host-only"},
	}, nil)

	// The /u entry overwrites the host side; the earlier subsystem value
	// remains, since /u only affects the host mapping.
	assert.Equal(t, "host-only", r.Host["V"])
	assert.Equal(t, "both", r.Subsystem["V"])
}

func TestWSLENVComposition(t *testing.T) {
	spec := ParsePairs([][2]string{
		{"PLAIN", "x"},
		{"SPEC/p", "$file"},
		{"LIST/l", "a;b"},
		{"U/u", "y"},
		{"W/w", "z"},
	})

	assert.Equal(t, "PLAIN:SPEC/p:LIST/l:U/u:W/w", spec.WSLENV())

	r, _ := spec.Encode(vars.Set{"file": `C:\f`}, pathconv.NewConverter("", nil))
	assert.Equal(t, "PLAIN:SPEC/p:LIST/l:U/u:W/w", r.Host["WSLENV"])
	_, ok := r.Subsystem["WSLENV"]
	assert.False(t, ok, "WSLENV is host-side tunneling metadata")
}

func TestEncodeEmptySpec(t *testing.T) {
	conv := pathconv.NewConverter("", nil)
	r, misses := Spec(nil).Encode(nil, conv)

	assert.Empty(t, r.Subsystem)
	assert.Empty(t, r.Host)
	assert.Nil(t, misses)
}
