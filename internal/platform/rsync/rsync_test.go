package rsync

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordedRun struct {
	name string
	args []string
}

func TestSyncer_Sync(t *testing.T) {
	src := filepath.Join(t.TempDir(), "epaxos")
	require.NoError(t, os.MkdirAll(src, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(src, ".gitignore"), []byte("bin/\n"), 0o644))

	var got recordedRun
	s, err := New("epaxos", []byte("PRIVATE KEY"), WithPort(2222), withRunner(func(_ context.Context, name string, args ...string) ([]byte, error) {
		got = recordedRun{name: name, args: args}
		return []byte("sent 1024 bytes\n"), nil
	}))
	require.NoError(t, err)
	defer func() { _ = s.Close() }()

	out, err := s.Sync(context.Background(), "203.0.113.5", src+"/")
	require.NoError(t, err)
	assert.Equal(t, "sent 1024 bytes\n", out)

	assert.Equal(t, "rsync", got.name)
	assert.Equal(t, []string{
		"--delete",
		"--exclude-from", filepath.Join(src, ".gitignore"),
		"-re", "ssh -i \"" + s.keyFile + "\" -p 2222 -o StrictHostKeyChecking=no -o UserKnownHostsFile=/dev/null -o BatchMode=yes",
		src,
		"epaxos@203.0.113.5:~",
	}, got.args)
}

func TestSyncer_TransportQuotesKeyPath(t *testing.T) {
	t.Setenv("TMPDIR", filepath.Join(t.TempDir(), "with space"))
	require.NoError(t, os.MkdirAll(os.Getenv("TMPDIR"), 0o755))

	s, err := New("epaxos", []byte("k"))
	require.NoError(t, err)
	defer func() { _ = s.Close() }()

	assert.Contains(t, s.keyFile, "with space")
	assert.Contains(t, s.transport(), `ssh -i "`+s.keyFile+`" -p 22 `)
}

func TestSyncer_WithoutGitignore(t *testing.T) {
	src := t.TempDir()
	s, err := New("epaxos", []byte("k"))
	require.NoError(t, err)
	defer func() { _ = s.Close() }()

	assert.NotContains(t, s.args("h", src), "--exclude-from")
}

func TestSyncer_Failure(t *testing.T) {
	s, err := New("epaxos", []byte("k"), withRunner(func(context.Context, string, ...string) ([]byte, error) {
		return []byte("Permission denied (publickey).\n"), errors.New("exit status 255")
	}))
	require.NoError(t, err)
	defer func() { _ = s.Close() }()

	out, err := s.Sync(context.Background(), "203.0.113.5", t.TempDir())
	require.Error(t, err)
	assert.Contains(t, out, "Permission denied")
	assert.Contains(t, err.Error(), "rsync to 203.0.113.5 failed")
}

func TestNew_KeyFileLifecycle(t *testing.T) {
	s, err := New("epaxos", []byte("secret"))
	require.NoError(t, err)

	info, err := os.Stat(s.keyFile)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	data, err := os.ReadFile(s.keyFile)
	require.NoError(t, err)
	assert.Equal(t, "secret", string(data))

	require.NoError(t, s.Close())
	_, err = os.Stat(s.keyFile)
	assert.True(t, os.IsNotExist(err))
	assert.NoError(t, s.Close())
}

func TestNew_Validation(t *testing.T) {
	_, err := New("", []byte("k"))
	assert.EqualError(t, err, "user cannot be empty")
	_, err = New("epaxos", nil)
	assert.EqualError(t, err, "private key cannot be empty")
}
