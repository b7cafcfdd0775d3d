package main

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/absfs/leafpack"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// runCLI executes one leafpack invocation and returns its standard output
func runCLI(t *testing.T, prompt promptFunc, args ...string) (string, error) {
	t.Helper()
	a := newApp()
	if prompt == nil {
		prompt = func(string, bool) (string, error) {
			return "", errors.New("unexpected password prompt")
		}
	}
	a.prompt = prompt

	cmd := a.newRootCmd()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), err
}

func staticPrompt(password string) promptFunc {
	return func(string, bool) (string, error) {
		return password, nil
	}
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func isolateEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{"LEAFPACK_PASSWORD", "LEAFPACK_NEW_PASSWORD", "LEAFPACK_SCHEME",
		"LEAFPACK_OUT_DIR", "LEAFPACK_FORCE", "LEAFPACK_LOG_LEVEL", "LEAFPACK_SEED"} {
		t.Setenv(key, "")
	}
}

func TestPackUnpack(t *testing.T) {
	isolateEnv(t)
	dir := t.TempDir()
	src := writeFile(t, dir, "report.txt", "quarterly numbers")

	out, err := runCLI(t, nil, "pack", src)
	require.NoError(t, err)
	container := filepath.Join(dir, "report_packed.lpk")
	assert.Contains(t, out, container)
	assert.FileExists(t, container)

	data, err := os.ReadFile(container)
	require.NoError(t, err)
	assert.Equal(t, []byte("LPK1"), data[:4])
	assert.NotContains(t, string(data), "quarterly")

	restoreDir := filepath.Join(dir, "restore")
	out, err = runCLI(t, nil, "unpack", "-o", restoreDir, container)
	require.NoError(t, err)
	assert.Contains(t, out, "unpacked")

	restored, err := os.ReadFile(filepath.Join(restoreDir, "report.txt"))
	require.NoError(t, err)
	assert.Equal(t, "quarterly numbers", string(restored))
}

func TestPackWithPassword(t *testing.T) {
	isolateEnv(t)
	dir := t.TempDir()
	src := writeFile(t, dir, "secret.txt", "launch codes")

	_, err := runCLI(t, staticPrompt("hunter2"), "pack", "-P", src)
	require.NoError(t, err)
	container := filepath.Join(dir, "secret_packed.lpk")

	restoreDir := filepath.Join(dir, "restore")
	_, err = runCLI(t, staticPrompt("wrong"), "unpack", "-o", restoreDir, container)
	require.Error(t, err)
	assert.True(t, leafpack.IsPasswordRejected(err), "unexpected error: %v", err)
	assert.NoFileExists(t, filepath.Join(restoreDir, "secret.txt"))

	_, err = runCLI(t, nil, "unpack", "-o", restoreDir, container)
	require.Error(t, err, "a protected container must not unpack without a password")

	_, err = runCLI(t, staticPrompt("hunter2"), "unpack", "-o", restoreDir, container)
	require.NoError(t, err)
	restored, err := os.ReadFile(filepath.Join(restoreDir, "secret.txt"))
	require.NoError(t, err)
	assert.Equal(t, "launch codes", string(restored))
}

func TestPasswordFromEnvironment(t *testing.T) {
	isolateEnv(t)
	t.Setenv("LEAFPACK_PASSWORD", "from-env")
	dir := t.TempDir()
	src := writeFile(t, dir, "env.txt", "environment")

	_, err := runCLI(t, nil, "pack", "-P", src)
	require.NoError(t, err)

	container := filepath.Join(dir, "env_packed.lpk")
	info, err := leafpack.Inspect(mustRead(t, container))
	require.NoError(t, err)
	assert.True(t, info.Protected)

	_, payload, err := leafpack.Decode(mustRead(t, container), leafpack.StaticPassword("from-env"))
	require.NoError(t, err)
	assert.Equal(t, "environment", string(payload))
}

func TestAutoMode(t *testing.T) {
	isolateEnv(t)
	dir := t.TempDir()
	src := writeFile(t, dir, "notes.md", "# notes")

	out, err := runCLI(t, nil, src)
	require.NoError(t, err)
	assert.Contains(t, out, "packed")

	container := filepath.Join(dir, "notes_packed.lpk")
	restoreDir := filepath.Join(dir, "out")
	out, err = runCLI(t, nil, "--out-dir", restoreDir, container)
	require.NoError(t, err)
	assert.Contains(t, out, "unpacked")
	assert.Equal(t, "# notes", string(mustRead(t, filepath.Join(restoreDir, "notes.md"))))
}

func TestRefusesOverwrite(t *testing.T) {
	isolateEnv(t)
	dir := t.TempDir()
	src := writeFile(t, dir, "data.bin", "v1")

	_, err := runCLI(t, nil, "pack", src)
	require.NoError(t, err)
	container := filepath.Join(dir, "data_packed.lpk")
	before := mustRead(t, container)

	_, err = runCLI(t, nil, "pack", src)
	require.Error(t, err)
	assert.ErrorIs(t, err, leafpack.ErrOutputExists)
	assert.Equal(t, before, mustRead(t, container))

	writeFile(t, dir, "data.bin", "v2")
	_, err = runCLI(t, nil, "pack", "--force", src)
	require.NoError(t, err)
	_, payload, err := leafpack.Decode(mustRead(t, container), nil)
	require.NoError(t, err)
	assert.Equal(t, "v2", string(payload))
}

func TestInfo(t *testing.T) {
	isolateEnv(t)
	dir := t.TempDir()
	src := writeFile(t, dir, "photo.jpg", "jpeg bytes")

	_, err := runCLI(t, nil, "pack", "--scheme", "dual-key", src)
	require.NoError(t, err)

	out, err := runCLI(t, nil, "info", filepath.Join(dir, "photo_packed.lpk"))
	require.NoError(t, err)
	assert.Contains(t, out, "dual-key")
	assert.Contains(t, out, "photo.jpg")
	assert.Contains(t, out, "10 B")

	junk := writeFile(t, dir, "junk.lpk", "not a container")
	_, err = runCLI(t, nil, "info", junk)
	require.Error(t, err)
	assert.True(t, leafpack.IsMalformed(err))
}

func TestRekey(t *testing.T) {
	isolateEnv(t)
	dir := t.TempDir()
	src := writeFile(t, dir, "ledger.csv", "a,b\n1,2\n")

	_, err := runCLI(t, staticPrompt("old"), "pack", "-P", src)
	require.NoError(t, err)
	container := filepath.Join(dir, "ledger_packed.lpk")

	t.Setenv("LEAFPACK_PASSWORD", "old")
	t.Setenv("LEAFPACK_NEW_PASSWORD", "new")
	out, err := runCLI(t, nil, "rekey", "-P", "--to-scheme", "dual-key", container)
	require.NoError(t, err)
	assert.Contains(t, out, "rekeyed")

	data := mustRead(t, container)
	assert.Equal(t, []byte("LPK2"), data[:4])

	_, _, err = leafpack.Decode(data, leafpack.StaticPassword("old"))
	assert.True(t, leafpack.IsPasswordRejected(err))
	_, payload, err := leafpack.Decode(data, leafpack.StaticPassword("new"))
	require.NoError(t, err)
	assert.Equal(t, "a,b\n1,2\n", string(payload))
}

func TestSeedIsReproducible(t *testing.T) {
	isolateEnv(t)
	dir := t.TempDir()
	src := writeFile(t, dir, "same.txt", "same content")

	_, err := runCLI(t, nil, "pack", "--seed", "fixed", "-o", filepath.Join(dir, "a"), src)
	require.NoError(t, err)
	_, err = runCLI(t, nil, "pack", "--seed", "fixed", "-o", filepath.Join(dir, "b"), src)
	require.NoError(t, err)

	assert.Equal(t,
		mustRead(t, filepath.Join(dir, "a", "same_packed.lpk")),
		mustRead(t, filepath.Join(dir, "b", "same_packed.lpk")))
}

func TestConfigFile(t *testing.T) {
	isolateEnv(t)
	dir := t.TempDir()
	src := writeFile(t, dir, "cfg.txt", "configured")
	outDir := filepath.Join(dir, "packed")
	cfg := writeFile(t, dir, "leafpack.yaml", "scheme: dual-key\nout-dir: "+outDir+"\n")

	_, err := runCLI(t, nil, "--config", cfg, "pack", src)
	require.NoError(t, err)

	data := mustRead(t, filepath.Join(outDir, "cfg_packed.lpk"))
	assert.Equal(t, []byte("LPK2"), data[:4])
}

func TestInvalidScheme(t *testing.T) {
	isolateEnv(t)
	dir := t.TempDir()
	src := writeFile(t, dir, "x.txt", "x")

	_, err := runCLI(t, nil, "pack", "--scheme", "triple-key", src)
	require.Error(t, err)
	assert.NoFileExists(t, filepath.Join(dir, "x_packed.lpk"))
}

func TestBatchContinuesAfterFailure(t *testing.T) {
	isolateEnv(t)
	dir := t.TempDir()
	good := writeFile(t, dir, "good.txt", "good")
	missing := filepath.Join(dir, "missing.txt")

	_, err := runCLI(t, nil, "pack", missing, good)
	require.Error(t, err)
	assert.True(t, leafpack.IsIOError(err))
	assert.FileExists(t, filepath.Join(dir, "good_packed.lpk"))
}

func mustRead(t *testing.T, path string) []byte {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return data
}
