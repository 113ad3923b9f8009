package tui

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vovakirdan/snek/internal/core"
)

func TestNewSSHServerNeedsFactory(t *testing.T) {
	_, err := NewSSHServer(SSHServerConfig{Address: "127.0.0.1:0"}, nil, nil)
	require.Error(t, err)
}

func TestHostKeyPathCreatesDirectory(t *testing.T) {
	want := filepath.Join(t.TempDir(), "keys", "host_key")

	got, err := hostKeyPath(want)
	require.NoError(t, err)
	require.Equal(t, want, got)

	info, err := os.Stat(filepath.Dir(want))
	require.NoError(t, err)
	require.True(t, info.IsDir())
}

func TestNewSSHServer(t *testing.T) {
	factory := func(*Display, *core.InputLatch, string) (Runner, error) {
		return blockingRunner{}, nil
	}
	srv, err := NewSSHServer(SSHServerConfig{
		Address:     "127.0.0.1:0",
		HostKeyPath: filepath.Join(t.TempDir(), "host_key"),
		MaxSessions: 2,
		GridW:       16,
		GridH:       16,
	}, factory, nil)
	require.NoError(t, err)
	require.Zero(t, srv.Active())
}
