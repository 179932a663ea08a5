package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/sjc5/lux/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd := NewRootCmd()
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func TestRootCommandsRegistered(t *testing.T) {
	rootCmd := NewRootCmd()
	var names []string
	for _, c := range rootCmd.Commands() {
		names = append(names, c.Name())
	}
	for _, want := range []string{"dev", "prod", "watch", "hot", "init"} {
		assert.Contains(t, names, want)
	}
	assert.NotNil(t, rootCmd.PersistentFlags().Lookup("root"))
	assert.NotNil(t, rootCmd.PersistentFlags().Lookup("config"))
}

func TestInitCommand(t *testing.T) {
	root := t.TempDir()

	out, err := execute(t, "init", "--root", root)
	require.NoError(t, err)
	assert.Contains(t, out, "lux.yaml")

	content, err := os.ReadFile(filepath.Join(root, "lux.yaml"))
	require.NoError(t, err)
	assert.Contains(t, string(content), "sass_variables_path: ./resources/sass/vuetify/variables")

	_, err = execute(t, "init", "--root", root)
	assert.ErrorIs(t, err, os.ErrExist)
}

func TestBuildCommandFailsWithoutSources(t *testing.T) {
	root := t.TempDir()

	_, err := execute(t, "dev", "--root", root)
	require.Error(t, err)
	assert.True(t, common.IsKind(err, common.KindCompile), "want a compile error, got %v", err)
	assert.NoDirExists(t, filepath.Join(root, "public", "dist"))
}

func TestBuildCommandRejectsBadConfig(t *testing.T) {
	root := t.TempDir()
	bad := filepath.Join(root, "lux.json")
	require.NoError(t, os.WriteFile(bad, []byte("{}"), 0644))

	_, err := execute(t, "prod", "--root", root, "--config", bad)
	require.Error(t, err)
	assert.True(t, common.IsKind(err, common.KindConfig), "want a config error, got %v", err)
}

func TestBuildCommandRejectsArgs(t *testing.T) {
	_, err := execute(t, "dev", "extra")
	assert.Error(t, err)
}
