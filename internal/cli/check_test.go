package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runCheckCmd(t *testing.T, format, path string) (*bytes.Buffer, error) {
	t.Helper()
	out := &bytes.Buffer{}
	cmd := NewCheckCommand(&RootOptions{Format: format})
	cmd.SetOut(out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{path})
	err := cmd.Execute()
	return out, err
}

func TestCheckValidProgram(t *testing.T) {
	out, err := runCheckCmd(t, "text", filepath.Join("testdata", "double.cue"))
	require.NoError(t, err)
	assert.Contains(t, out.String(), "double is valid")
}

func TestCheckValidProgramJSON(t *testing.T) {
	out, err := runCheckCmd(t, "json", filepath.Join("testdata", "double.cue"))
	require.NoError(t, err)

	var resp CLIResponse
	require.NoError(t, json.Unmarshal(out.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)
	data := resp.Data.(map[string]any)
	assert.Equal(t, true, data["valid"])
}

func TestCheckMissingPath(t *testing.T) {
	_, err := runCheckCmd(t, "text", filepath.Join(t.TempDir(), "nope.cue"))
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestCheckReportsValidationErrors(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.cue")
	require.NoError(t, os.WriteFile(path, []byte(`program: {
	name: "bad"
	bindings: [{name: "main", value: {prim: {op: "addint", args: [{int: 1}]}}}]
}
`), 0o644))

	out, err := runCheckCmd(t, "json", path)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	var resp CLIResponse
	require.NoError(t, json.Unmarshal(out.Bytes(), &resp))
	data := resp.Data.(map[string]any)
	assert.Equal(t, false, data["valid"])

	errs := data["errors"].([]any)
	require.NotEmpty(t, errs)
	assert.Contains(t, errs[0], "E101", "arity errors carry their code")
}
