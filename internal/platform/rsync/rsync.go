package rsync

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// runner executes a local command and returns its combined output.
type runner func(ctx context.Context, name string, args ...string) ([]byte, error)

func execRunner(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).CombinedOutput()
}

// Syncer copies a local directory into the remote user's home directory.
type Syncer struct {
	user    string
	keyFile string
	port    int
	run     runner
}

// Option configures a Syncer.
type Option func(*Syncer)

// WithPort sets the remote SSH port.
func WithPort(port int) Option {
	return func(s *Syncer) {
		s.port = port
	}
}

func withRunner(r runner) Option {
	return func(s *Syncer) {
		s.run = r
	}
}

// New writes privateKey to a private temporary file for the ssh transport.
// Close removes it.
func New(user string, privateKey []byte, opts ...Option) (*Syncer, error) {
	if user == "" {
		return nil, fmt.Errorf("user cannot be empty")
	}
	if len(privateKey) == 0 {
		return nil, fmt.Errorf("private key cannot be empty")
	}

	f, err := os.CreateTemp("", "paxosfleet-key-*")
	if err != nil {
		return nil, fmt.Errorf("failed to create key file: %w", err)
	}
	defer func() { _ = f.Close() }()

	if err := f.Chmod(0o600); err != nil {
		_ = os.Remove(f.Name())
		return nil, fmt.Errorf("failed to restrict key file: %w", err)
	}
	if _, err := f.Write(privateKey); err != nil {
		_ = os.Remove(f.Name())
		return nil, fmt.Errorf("failed to write key file: %w", err)
	}

	s := &Syncer{user: user, keyFile: f.Name(), port: 22, run: execRunner}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Close removes the temporary key file.
func (s *Syncer) Close() error {
	if err := os.Remove(s.keyFile); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

// Sync copies localDir to ~/<base of localDir> on host, deleting remote
// files that no longer exist locally.
func (s *Syncer) Sync(ctx context.Context, host, localDir string) (string, error) {
	out, err := s.run(ctx, "rsync", s.args(host, localDir)...)
	if err != nil {
		return string(out), fmt.Errorf("rsync to %s failed: %w\nOutput: %s", host, err, strings.TrimSpace(string(out)))
	}
	return string(out), nil
}

func (s *Syncer) args(host, localDir string) []string {
	dir := strings.TrimRight(localDir, "/")
	args := []string{"--delete"}
	if _, err := os.Stat(filepath.Join(dir, ".gitignore")); err == nil {
		args = append(args, "--exclude-from", filepath.Join(dir, ".gitignore"))
	}
	return append(args,
		"-re", s.transport(),
		dir,
		fmt.Sprintf("%s@%s:~", s.user, host),
	)
}

// transport is split by rsync itself, which honors double quotes, so the
// key path may contain spaces.
func (s *Syncer) transport() string {
	return fmt.Sprintf("ssh -i %q -p %d -o StrictHostKeyChecking=no -o UserKnownHostsFile=/dev/null -o BatchMode=yes",
		s.keyFile, s.port)
}
