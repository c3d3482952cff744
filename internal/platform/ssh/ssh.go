package ssh

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"

	"golang.org/x/crypto/ssh"

	"github.com/imamik/paxosfleet/internal/util/retry"
)

const (
	defaultPort        = 22
	defaultDialTimeout = 10 * time.Second
	defaultMaxRetries  = 3
	defaultRetryDelay  = 2 * time.Second
	defaultMaxDelay    = 10 * time.Second
)

// Config holds SSH client configuration shared by every host.
type Config struct {
	Port       int
	User       string
	PrivateKey []byte

	// DialTimeout bounds one TCP connect and handshake.
	DialTimeout time.Duration

	// MaxRetries is the number of dial retries per command.
	MaxRetries int

	// RetryDelay is the initial delay between dial retries.
	RetryDelay time.Duration

	// HostKeyCallback handles host key verification.
	// If nil, ssh.InsecureIgnoreHostKey() is used; benchmark machines are
	// created fresh for every run and have no known host key.
	HostKeyCallback ssh.HostKeyCallback
}

// Client executes commands on remote hosts via SSH.
// It parses the private key once and dials a new connection per Execute call.
type Client struct {
	config *Config
	signer ssh.Signer
}

// NewClient creates a new SSH client and validates the private key.
func NewClient(cfg *Config) (*Client, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}
	if cfg.User == "" {
		return nil, fmt.Errorf("config user cannot be empty")
	}
	if len(cfg.PrivateKey) == 0 {
		return nil, fmt.Errorf("config private key cannot be empty")
	}

	configCopy := *cfg
	if configCopy.Port == 0 {
		configCopy.Port = defaultPort
	}
	if configCopy.DialTimeout == 0 {
		configCopy.DialTimeout = defaultDialTimeout
	}
	if configCopy.MaxRetries == 0 {
		configCopy.MaxRetries = defaultMaxRetries
	}
	if configCopy.RetryDelay == 0 {
		configCopy.RetryDelay = defaultRetryDelay
	}
	if configCopy.HostKeyCallback == nil {
		configCopy.HostKeyCallback = ssh.InsecureIgnoreHostKey() //nolint:gosec // machines are ephemeral
	}

	signer, err := ssh.ParsePrivateKey(configCopy.PrivateKey)
	if err != nil {
		return nil, fmt.Errorf("failed to parse private key: %w", err)
	}

	return &Client{
		config: &configCopy,
		signer: signer,
	}, nil
}

// Execute runs command on host and returns its combined output.
// A non-zero exit status is returned as an error along with the output.
// Cancelling ctx closes the connection, which ends the remote command.
func (c *Client) Execute(ctx context.Context, host, command string) (string, error) {
	if host == "" {
		return "", fmt.Errorf("host cannot be empty")
	}

	client, err := c.connect(ctx, host)
	if err != nil {
		return "", err
	}
	defer func() { _ = client.Close() }()

	type result struct {
		output string
		err    error
	}
	done := make(chan result, 1)
	go func() {
		out, err := c.runCommand(client, host, command)
		done <- result{output: out, err: err}
	}()

	select {
	case r := <-done:
		return r.output, r.err
	case <-ctx.Done():
		_ = client.Close()
		return "", fmt.Errorf("command on %s interrupted: %w", host, ctx.Err())
	}
}

// connect dials host, retrying refused or timed out dials while the
// machine boots. Authentication failures are not retried.
func (c *Client) connect(ctx context.Context, host string) (*ssh.Client, error) {
	addr := net.JoinHostPort(host, strconv.Itoa(c.config.Port))
	clientConfig := &ssh.ClientConfig{
		User:            c.config.User,
		Auth:            []ssh.AuthMethod{ssh.PublicKeys(c.signer)},
		HostKeyCallback: c.config.HostKeyCallback,
		Timeout:         c.config.DialTimeout,
	}

	var client *ssh.Client
	err := retry.WithExponentialBackoff(ctx, func() error {
		var err error
		client, err = c.dial(ctx, addr, clientConfig)
		if err != nil && strings.Contains(err.Error(), "unable to authenticate") {
			return retry.Fatal(err)
		}
		return err
	},
		retry.WithMaxRetries(c.config.MaxRetries),
		retry.WithInitialDelay(c.config.RetryDelay),
		retry.WithMaxDelay(defaultMaxDelay),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to establish SSH connection to %s: %w", addr, err)
	}
	return client, nil
}

// dial opens the TCP connection under ctx and runs the SSH handshake on it.
func (c *Client) dial(ctx context.Context, addr string, cfg *ssh.ClientConfig) (*ssh.Client, error) {
	dialer := net.Dialer{Timeout: c.config.DialTimeout}
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, err
	}
	if err := conn.SetDeadline(time.Now().Add(c.config.DialTimeout)); err != nil {
		_ = conn.Close()
		return nil, err
	}
	sshConn, chans, reqs, err := ssh.NewClientConn(conn, addr, cfg)
	if err != nil {
		_ = conn.Close()
		return nil, err
	}
	_ = conn.SetDeadline(time.Time{})
	return ssh.NewClient(sshConn, chans, reqs), nil
}

// runCommand executes a command on an established SSH session.
func (c *Client) runCommand(client *ssh.Client, host, command string) (string, error) {
	session, err := client.NewSession()
	if err != nil {
		return "", fmt.Errorf("failed to create SSH session on %s: %w", host, err)
	}
	defer func() { _ = session.Close() }()

	output, err := session.CombinedOutput(command)
	if err != nil {
		return string(output), fmt.Errorf("command failed on %s: %w\nCommand: %s\nOutput: %s",
			host, err, command, string(output))
	}
	return string(output), nil
}
