package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoad_MissingFileFallsBackToEnv(t *testing.T) {
	req := require.New(t)
	t.Setenv("SERVER_PORT", "9911")

	v, err := Load(t.TempDir(), "absent")

	req.NoError(err)
	req.Equal(9911, v.GetInt("server.port"))
}

func TestLoad_ReadsYAMLFile(t *testing.T) {
	req := require.New(t)
	dir := t.TempDir()
	body := []byte("server:\n  host: 127.0.0.1\n  port: 8085\n")
	req.NoError(os.WriteFile(filepath.Join(dir, "config.yaml"), body, 0o644))

	v, err := Load(dir, "config")

	req.NoError(err)
	req.Equal("127.0.0.1", v.GetString("server.host"))
	req.Equal(8085, v.GetInt("server.port"))
}

func TestGetEnv_Default(t *testing.T) {
	require.Equal(t, "fallback", GetEnv("STREAMVIBE_UNSET_VARIABLE", "fallback"))
}
