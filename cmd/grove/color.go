package main

import (
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"

	"github.com/grove-vcs/grove/pkg/repo"
)

// palette bundles the lipgloss styles used by diff, ls-tree and status
// output. A disabled palette passes text through untouched.
type palette struct {
	enabled bool

	add    lipgloss.Style
	del    lipgloss.Style
	hunk   lipgloss.Style
	meta   lipgloss.Style
	tree   lipgloss.Style
	branch lipgloss.Style
}

// newPalette resolves the effective color mode. An explicit --color
// value wins, then the user config [diff] color setting, then TTY
// detection for "auto".
func newPalette(mode string) *palette {
	if mode == "" || mode == "auto" {
		if cfg, err := repo.LoadUserConfig(); err == nil && cfg.Diff.Color != "" {
			mode = cfg.Diff.Color
		}
	}

	var on bool
	switch strings.ToLower(strings.TrimSpace(mode)) {
	case "always":
		on = true
	case "never":
		on = false
	default:
		fd := os.Stdout.Fd()
		on = isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
	}
	if !on {
		return &palette{}
	}

	return &palette{
		enabled: true,
		add:     lipgloss.NewStyle().Foreground(lipgloss.Color("#42be65")),
		del:     lipgloss.NewStyle().Foreground(lipgloss.Color("#fa4d56")),
		hunk:    lipgloss.NewStyle().Foreground(lipgloss.Color("#3ddbd9")),
		meta:    lipgloss.NewStyle().Bold(true),
		tree:    lipgloss.NewStyle().Foreground(lipgloss.Color("#4589ff")),
		branch:  lipgloss.NewStyle().Foreground(lipgloss.Color("#42be65")).Bold(true),
	}
}

func (p *palette) paint(st lipgloss.Style, s string) string {
	if !p.enabled {
		return s
	}
	return st.Render(s)
}
