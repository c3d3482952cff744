package handlers

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/imamik/paxosfleet/internal/deployment"
	"github.com/imamik/paxosfleet/internal/provisioning"
)

var (
	colorGreen  = lipgloss.Color("#22c55e")
	colorRed    = lipgloss.Color("#ef4444")
	colorYellow = lipgloss.Color("#eab308")
	colorBlue   = lipgloss.Color("#3b82f6")
	colorDim    = lipgloss.Color("#6b7280")
	colorWhite  = lipgloss.Color("#f9fafb")
)

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(colorWhite)
	sectionStyle = lipgloss.NewStyle().Bold(true).Foreground(colorBlue)
	dimStyle     = lipgloss.NewStyle().Foreground(colorDim)
	greenStyle   = lipgloss.NewStyle().Foreground(colorGreen)
	redStyle     = lipgloss.NewStyle().Foreground(colorRed)
	yellowStyle  = lipgloss.NewStyle().Foreground(colorYellow)
)

// renderReport produces the styled summary printed after `up`.
func renderReport(r *deployment.Report) string {
	var b strings.Builder

	b.WriteString("\n")
	b.WriteString(titleStyle.Render(fmt.Sprintf("  paxosfleet: %s", r.Deployment)))
	b.WriteString("\n")
	b.WriteString(dimStyle.Render(fmt.Sprintf("  run %s, stage %s", r.RunID, r.Stage)))
	b.WriteString("\n")
	b.WriteString(dimStyle.Render("  " + strings.Repeat("═", 30)))
	b.WriteString("\n\n")

	b.WriteString(sectionStyle.Render("  Operations"))
	b.WriteString("\n")
	for _, n := range r.Nodes {
		line := fmt.Sprintf("    %s %-28s %8s", stateIndicator(n.State), n.Key, formatDuration(n))
		b.WriteString(line)
		if n.Err != "" {
			b.WriteString("  ")
			b.WriteString(redStyle.Render(firstLine(n.Err)))
		}
		b.WriteString("\n")
	}

	metrics := filterOutputs(r.Outputs, "metrics")
	if len(metrics) > 0 {
		b.WriteString("\n")
		b.WriteString(sectionStyle.Render("  Client metrics"))
		b.WriteString("\n")
		for _, o := range metrics {
			b.WriteString(fmt.Sprintf("    %-6s %s\n", o.Location, firstLine(o.Value)))
		}
	}

	b.WriteString("\n")
	b.WriteString(renderCounts(r.Counts()))
	b.WriteString("\n")
	return b.String()
}

// renderOutputs produces the table printed by `outputs`.
func renderOutputs(name string, outputs []provisioning.Output) string {
	var b strings.Builder

	b.WriteString("\n")
	b.WriteString(titleStyle.Render(fmt.Sprintf("  paxosfleet outputs: %s", name)))
	b.WriteString("\n")
	if len(outputs) == 0 {
		b.WriteString(dimStyle.Render("  no outputs recorded"))
		b.WriteString("\n")
		return b.String()
	}
	b.WriteString(dimStyle.Render("  " + strings.Repeat("─", 35)))
	b.WriteString("\n")

	for _, o := range outputs {
		value := firstLine(o.Value)
		if o.Error != "" {
			value = redStyle.Render("error: " + firstLine(o.Error))
		}
		b.WriteString(fmt.Sprintf("  %-36s %s\n", o.Key, value))
	}
	return b.String()
}

func renderCounts(counts map[string]int) string {
	states := make([]string, 0, len(counts))
	for s := range counts {
		states = append(states, s)
	}
	sort.Strings(states)

	parts := make([]string, 0, len(states))
	for _, s := range states {
		parts = append(parts, styleForState(s).Render(fmt.Sprintf("%d %s", counts[s], s)))
	}
	return "  " + strings.Join(parts, dimStyle.Render(", "))
}

func stateIndicator(state string) string {
	switch state {
	case "succeeded":
		return greenStyle.Render("✔")
	case "failed":
		return redStyle.Render("✘")
	case "skipped":
		return yellowStyle.Render("↷")
	default:
		return dimStyle.Render("…")
	}
}

func styleForState(state string) lipgloss.Style {
	switch state {
	case "succeeded":
		return greenStyle
	case "failed":
		return redStyle
	case "skipped":
		return yellowStyle
	default:
		return dimStyle
	}
}

func formatDuration(n deployment.NodeReport) string {
	if n.State == "skipped" || n.Duration == 0 {
		return "-"
	}
	return n.Duration.Round(100 * time.Millisecond).String()
}

func filterOutputs(outputs []provisioning.Output, stage string) []provisioning.Output {
	var out []provisioning.Output
	for _, o := range outputs {
		if o.Stage == stage {
			out = append(out, o)
		}
	}
	return out
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i] + " …"
	}
	return s
}
