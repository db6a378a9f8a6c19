package config

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/pelletier/go-toml/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

type testConfig struct {
	Name  string `toml:"name"`
	Value int    `toml:"value"`
}

func loadTestConfig(path string) (testConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return testConfig{}, err
	}
	var cfg testConfig
	err = toml.Unmarshal(data, &cfg)
	return cfg, err
}

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestWatcher_Reload(t *testing.T) {
	defer goleak.VerifyNone(t)

	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("name = \"initial\"\nvalue = 1\n"), 0o644))

	received := make(chan testConfig, 4)
	w := NewWatcher(path, loadTestConfig, newTestLogger(), WithDebounce[testConfig](50*time.Millisecond))
	w.OnReload(func(cfg testConfig) { received <- cfg })

	require.NoError(t, w.Start(context.Background()))
	defer func() { require.NoError(t, w.Stop()) }()

	require.NoError(t, os.WriteFile(path, []byte("name = \"updated\"\nvalue = 42\n"), 0o644))

	select {
	case cfg := <-received:
		assert.Equal(t, testConfig{Name: "updated", Value: 42}, cfg)
	case <-time.After(2 * time.Second):
		t.Fatal("timeout waiting for config reload")
	}
}

func TestWatcher_RenameOver(t *testing.T) {
	defer goleak.VerifyNone(t)

	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("value = 1\n"), 0o644))

	received := make(chan testConfig, 4)
	w := NewWatcher(path, loadTestConfig, newTestLogger(), WithDebounce[testConfig](50*time.Millisecond))
	w.OnReload(func(cfg testConfig) { received <- cfg })
	require.NoError(t, w.Start(context.Background()))
	defer func() { require.NoError(t, w.Stop()) }()

	tmp := filepath.Join(dir, "config.toml.tmp")
	require.NoError(t, os.WriteFile(tmp, []byte("value = 7\n"), 0o644))
	require.NoError(t, os.Rename(tmp, path))

	select {
	case cfg := <-received:
		assert.Equal(t, 7, cfg.Value)
	case <-time.After(2 * time.Second):
		t.Fatal("timeout waiting for config reload")
	}
}

func TestWatcher_LoadError(t *testing.T) {
	defer goleak.VerifyNone(t)

	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("value = 1\n"), 0o644))

	errs := make(chan error, 4)
	reloads := make(chan testConfig, 4)
	w := NewWatcher(path, loadTestConfig, newTestLogger(),
		WithDebounce[testConfig](50*time.Millisecond),
		WithErrorHandler[testConfig](func(err error) { errs <- err }),
	)
	w.OnReload(func(cfg testConfig) { reloads <- cfg })
	require.NoError(t, w.Start(context.Background()))
	defer func() { require.NoError(t, w.Stop()) }()

	require.NoError(t, os.WriteFile(path, []byte("value = [broken\n"), 0o644))

	select {
	case err := <-errs:
		assert.Error(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("timeout waiting for load error")
	}
	assert.Empty(t, reloads)
}

func TestWatcher_StopsWithContext(t *testing.T) {
	defer goleak.VerifyNone(t)

	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("value = 1\n"), 0o644))

	ctx, cancel := context.WithCancel(context.Background())
	w := NewWatcher(path, loadTestConfig, newTestLogger())
	require.NoError(t, w.Start(ctx))
	cancel()
	require.NoError(t, w.Stop())
}

func TestWatcher_StopWithoutStart(t *testing.T) {
	w := NewWatcher("config.toml", loadTestConfig, newTestLogger())
	assert.NoError(t, w.Stop())
}
