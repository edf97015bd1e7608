package logging

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
)

func TestLoggerWritesStdoutAndFile(t *testing.T) {
	var stdout bytes.Buffer
	path := filepath.Join(t.TempDir(), "nested", "memguard.log")

	logger, err := New(Options{File: path, Stdout: &stdout})
	require.NoError(t, err)
	require.NoError(t, logger.Start())

	logger.Warn("Killing process: PID=42")
	require.NoError(t, logger.Close())

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Contains(t, string(content), "Killing process: PID=42")
	require.Contains(t, string(content), "level=warning")
	require.Contains(t, stdout.String(), "Killing process: PID=42")

	// after Close only stdout receives lines
	logger.Info("after close")
	content, err = os.ReadFile(path)
	require.NoError(t, err)
	require.NotContains(t, string(content), "after close")
}

func TestLoggerLevel(t *testing.T) {
	var stdout bytes.Buffer
	logger, err := New(Options{Level: "warn", Stdout: &stdout})
	require.NoError(t, err)
	require.Equal(t, logrus.WarnLevel, logger.GetLevel())

	logger.Info("hidden")
	logger.Error("shown")
	require.NotContains(t, stdout.String(), "hidden")
	require.Contains(t, stdout.String(), "shown")

	_, err = New(Options{Level: "loud"})
	require.Error(t, err)
}

func TestLoggerUnwritableFileFallsBack(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("root can write anywhere")
	}
	dir := t.TempDir()
	require.NoError(t, os.Chmod(dir, 0o500))
	t.Cleanup(func() { _ = os.Chmod(dir, 0o700) })

	var stdout bytes.Buffer
	logger, err := New(Options{File: filepath.Join(dir, "memguard.log"), Stdout: &stdout})
	require.NoError(t, err)
	require.NoError(t, logger.Start())
	require.Contains(t, stdout.String(), "logging to stdout only")
	require.NoError(t, logger.Close())
}
