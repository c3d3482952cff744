package prerequisites

import (
	"errors"
	"os/exec"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fakePath(t *testing.T, installed map[string]string) {
	t.Helper()
	origLook, origRun := lookPath, runVersion
	t.Cleanup(func() { lookPath, runVersion = origLook, origRun })

	lookPath = func(name string) (string, error) {
		if _, ok := installed[name]; ok {
			return "/usr/bin/" + name, nil
		}
		return "", exec.ErrNotFound
	}
	runVersion = func(path string, args ...string) (string, error) {
		for name, out := range installed {
			if path == "/usr/bin/"+name && out != "" {
				return out, nil
			}
		}
		return "", errors.New("exit status 1")
	}
}

func TestCheckDefault_AllInstalled(t *testing.T) {
	fakePath(t, map[string]string{
		"rsync": "\nrsync  version 3.2.7  protocol version 31\nCopyright (C) 1996-2022\n",
		"ssh":   "OpenSSH_9.6p1, OpenSSL 3.0.13\n",
	})

	results := CheckDefault()

	require.Len(t, results.Results, 2)
	assert.Empty(t, results.Missing)
	assert.False(t, results.HasErrors())
	assert.NoError(t, results.Error())

	assert.Equal(t, "/usr/bin/rsync", results.Results[0].Path)
	assert.Equal(t, "rsync  version 3.2.7  protocol version 31", results.Results[0].Version)
	assert.Equal(t, "OpenSSH_9.6p1, OpenSSL 3.0.13", results.Results[1].Version)
}

func TestCheck_MissingRequired(t *testing.T) {
	fakePath(t, map[string]string{"ssh": ""})

	results := CheckDefault()

	require.Len(t, results.Missing, 1)
	assert.Equal(t, "rsync", results.Missing[0].Name)
	assert.True(t, results.HasErrors())
	assert.EqualError(t, results.Error(), "missing required tools: rsync (https://rsync.samba.org/download.html)")

	assert.True(t, results.Results[1].Found)
	assert.Empty(t, results.Results[1].Version, "failing version flag leaves version empty")
}

func TestCheck_MissingOptionalIsNotAnError(t *testing.T) {
	fakePath(t, map[string]string{})

	results := Check([]Tool{{Name: "mosh", InstallURL: "https://mosh.org"}})

	assert.Len(t, results.Missing, 1)
	assert.False(t, results.HasErrors())
	assert.NoError(t, results.Error())
}

func TestCheck_RealPath(t *testing.T) {
	results := Check([]Tool{{Name: "paxosfleet-nonexistent-tool", Required: true}})
	assert.True(t, results.HasErrors())
	assert.ErrorContains(t, results.Error(), "paxosfleet-nonexistent-tool")
}
