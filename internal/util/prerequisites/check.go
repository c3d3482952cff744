// Package prerequisites checks that the local tools used to push sources
// to remote machines are installed.
package prerequisites

import (
	"fmt"
	"os/exec"
	"strings"
)

// Tool is a local binary a command depends on.
type Tool struct {
	Name        string
	Required    bool
	Description string
	InstallURL  string
	// VersionArgs are tried in order until one exits cleanly.
	VersionArgs []string
}

// DefaultTools returns the tools "up" needs. rsync shells out to ssh as
// its transport, so both are required.
func DefaultTools() []Tool {
	return []Tool{
		{
			Name:        "rsync",
			Required:    true,
			Description: "syncs the benchmark source tree to every machine",
			InstallURL:  "https://rsync.samba.org/download.html",
			VersionArgs: []string{"--version"},
		},
		{
			Name:        "ssh",
			Required:    true,
			Description: "remote shell for rsync",
			InstallURL:  "https://www.openssh.com/portable.html",
			VersionArgs: []string{"-V"},
		},
	}
}

// CheckResult is the outcome for one tool.
type CheckResult struct {
	Tool    Tool
	Found   bool
	Path    string
	Version string
}

// CheckResults collects the outcome of a Check.
type CheckResults struct {
	Results []CheckResult
	Missing []Tool
}

// HasErrors reports whether a required tool is missing.
func (r *CheckResults) HasErrors() bool {
	return len(r.required()) > 0
}

// Error lists the missing required tools, or returns nil.
func (r *CheckResults) Error() error {
	missing := r.required()
	if len(missing) == 0 {
		return nil
	}
	parts := make([]string, len(missing))
	for i, t := range missing {
		parts[i] = fmt.Sprintf("%s (%s)", t.Name, t.InstallURL)
	}
	return fmt.Errorf("missing required tools: %s", strings.Join(parts, ", "))
}

func (r *CheckResults) required() []Tool {
	var out []Tool
	for _, t := range r.Missing {
		if t.Required {
			out = append(out, t)
		}
	}
	return out
}

// lookPath and runVersion are swapped in tests.
var (
	lookPath   = exec.LookPath
	runVersion = func(path string, args ...string) (string, error) {
		// #nosec G204 -- path was resolved from a fixed tool list
		out, err := exec.Command(path, args...).CombinedOutput()
		return string(out), err
	}
)

// Check looks every tool up in PATH.
func Check(tools []Tool) *CheckResults {
	results := &CheckResults{Results: make([]CheckResult, 0, len(tools))}
	for _, tool := range tools {
		path, err := lookPath(tool.Name)
		if err != nil {
			results.Missing = append(results.Missing, tool)
			results.Results = append(results.Results, CheckResult{Tool: tool})
			continue
		}
		results.Results = append(results.Results, CheckResult{
			Tool:    tool,
			Found:   true,
			Path:    path,
			Version: version(path, tool.VersionArgs),
		})
	}
	return results
}

// CheckDefault checks DefaultTools.
func CheckDefault() *CheckResults {
	return Check(DefaultTools())
}

// version returns the first non-empty output line of the tool's version flag.
func version(path string, flags []string) string {
	for _, flag := range flags {
		out, err := runVersion(path, flag)
		if err != nil {
			continue
		}
		for _, line := range strings.Split(out, "\n") {
			if line = strings.TrimSpace(line); line != "" {
				return line
			}
		}
	}
	return ""
}
