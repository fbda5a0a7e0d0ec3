package commands

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/sqltree/internal/cli/config"
	"github.com/leapstack-labs/sqltree/internal/testutil"
)

func TestWatchFile_Debounced(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "query.sql")
	other := filepath.Join(dir, "other.sql")
	require.NoError(t, os.WriteFile(path, []byte("SELECT 1"), 0o600))

	ctx, cancel := context.WithCancel(context.Background())
	var calls atomic.Int32
	done := make(chan error, 1)
	go func() {
		done <- watchFile(ctx, path, 10*time.Millisecond, testutil.NewTestLogger(t), func() { calls.Add(1) })
	}()

	require.Eventually(t, func() bool {
		_ = os.WriteFile(other, []byte("SELECT 0"), 0o600)
		_ = os.WriteFile(path, []byte("SELECT 2"), 0o600)
		return calls.Load() > 0
	}, 5*time.Second, 50*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("watchFile did not return after cancel")
	}
}

func TestWatchFile_RendersOneAtATime(t *testing.T) {
	path := filepath.Join(t.TempDir(), "query.sql")
	require.NoError(t, os.WriteFile(path, []byte("SELECT 1"), 0o600))

	ctx, cancel := context.WithCancel(context.Background())
	var calls, running, overlapped atomic.Int32
	render := func() {
		if running.Add(1) > 1 {
			overlapped.Add(1)
		}
		time.Sleep(150 * time.Millisecond)
		running.Add(-1)
		calls.Add(1)
	}
	done := make(chan error, 1)
	go func() {
		done <- watchFile(ctx, path, 10*time.Millisecond, testutil.NewTestLogger(t), render)
	}()

	require.Eventually(t, func() bool {
		_ = os.WriteFile(path, []byte("SELECT 2"), 0o600)
		return calls.Load() >= 2
	}, 10*time.Second, 40*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("watchFile did not return after cancel")
	}
	assert.Zero(t, overlapped.Load(), "renders overlapped")
	assert.Zero(t, running.Load(), "render still running after watchFile returned")
}

func TestWatchFile_MissingDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gone", "query.sql")
	err := watchFile(context.Background(), path, time.Millisecond, testutil.NewTestLogger(t), func() {})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "watch ")
}

func TestRenderFile(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	path := filepath.Join(dir, "query.sql")
	require.NoError(t, os.WriteFile(path, []byte("SELECT a FROM t"), 0o600))

	cfg := withFormat(config.Default(), "yaml")
	cfg.ToFile = true
	cc := newTestCommandContext(t, cfg)

	var stdout, stderr bytes.Buffer
	cmd := NewWatchCommand()
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetContext(context.Background())

	require.NoError(t, cc.renderFile(cmd, path))
	data, err := os.ReadFile(filepath.Join(dir, "out.yaml"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "TypeName: Script")
	assert.Contains(t, stdout.String(), "out.yaml")

	require.NoError(t, os.WriteFile(path, []byte("SELECT ("), 0o600))
	err = cc.renderFile(cmd, path)
	assert.Equal(t, ExitParse, ExitCode(err))
	assert.NotEmpty(t, stderr.String())

	kept, err := os.ReadFile(filepath.Join(dir, "out.yaml"))
	require.NoError(t, err)
	assert.Equal(t, data, kept)
}
