package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := newRootCommand()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestInspect(t *testing.T) {
	out, err := run(t, "inspect", "a*b")
	require.NoError(t, err)
	assert.Contains(t, out, "lowered (")
	assert.Contains(t, out, "optimized (")
	assert.Contains(t, out, "ForkReplaceJump")
	assert.Contains(t, out, "Atomic loops")

	out, err = run(t, "inspect", "--blocks", "--disassemble=false", `a+x|a+y`)
	require.NoError(t, err)
	assert.NotContains(t, out, "lowered (")
	assert.Contains(t, out, "basic blocks (initial)")
	assert.Contains(t, out, "alternation of 2:")
}

func TestInspectRejectsBadPattern(t *testing.T) {
	_, err := run(t, "inspect", "(a")
	require.Error(t, err)

	_, err = run(t, "inspect")
	require.Error(t, err)
}

func TestMatch(t *testing.T) {
	out, err := run(t, "match", "-s", "--", `(?P<key>\w+)=(\d+)?`, "x=1", "y=", "---")
	require.NoError(t, err)
	assert.Contains(t, out, `"x=1": [0,3] "x=1"`)
	assert.Contains(t, out, `  $1 key: [0,1] "x"`)
	assert.Contains(t, out, `  $2: -`)
	assert.Contains(t, out, `"---": no match`)
}

func TestMatchStepLimit(t *testing.T) {
	_, err := run(t, "match", "--max-steps", "10", "(a|aa)*b", "aaaaaaaaaaaaaaaaaaaa")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "step limit")
}

func TestConfigFileAndEnvironment(t *testing.T) {
	out, err := run(t, "match", "hello", "HELLO")
	require.NoError(t, err)
	assert.Contains(t, out, "no match")

	config := filepath.Join(t.TempDir(), "regopt.yaml")
	require.NoError(t, os.WriteFile(config, []byte("insensitive: true\n"), 0o644))
	out, err = run(t, "--config", config, "match", "hello", "HELLO")
	require.NoError(t, err)
	assert.Contains(t, out, `"HELLO": [0,5]`)

	t.Setenv("REGOPT_INSENSITIVE", "true")
	out, err = run(t, "match", "hello", "HeLLo")
	require.NoError(t, err)
	assert.Contains(t, out, `"HeLLo": [0,5]`)

	_, err = run(t, "--config", filepath.Join(t.TempDir(), "missing.yaml"), "match", "a", "a")
	require.Error(t, err)
}

func TestGenerate(t *testing.T) {
	output := filepath.Join(t.TempDir(), "user-id.go")
	out, err := run(t, "generate", "--package", "ids", "-o", output, `u-\d+`)
	require.NoError(t, err)
	assert.Contains(t, out, "(UserId)")

	src, err := os.ReadFile(output)
	require.NoError(t, err)
	assert.Contains(t, string(src), "package ids")
	assert.Contains(t, string(src), "var UserId = regopt.MustLoad(userIdProgram)")

	_, err = run(t, "generate", "a")
	require.Error(t, err)
}
