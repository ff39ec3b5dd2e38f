package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"pysweep/internal/model"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#5F87AF")).
			Padding(0, 1)

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("229"))

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("229")).
			Background(lipgloss.Color("57"))

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))

	systemStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196"))

	markedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205"))

	statusStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("208"))

	confirmStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("196"))

	infoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("81"))
)

func (m AppModel) View() string {
	if m.Loading {
		return "\n  Scanning for Python interpreters and virtual environments...\n"
	}
	if m.Err != nil {
		return fmt.Sprintf("\n  Error: %v\n", m.Err)
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("pysweep"))
	b.WriteString("  ")
	b.WriteString(dimStyle.Render(m.Nav.View.String()))
	b.WriteString("\n\n")

	switch m.Nav.View {
	case ViewMain:
		b.WriteString(m.viewMain())
	case ViewInterpreters:
		b.WriteString(m.viewInterpreters())
	case ViewVenvs:
		b.WriteString(m.viewVenvs())
	case ViewPackages:
		b.WriteString(m.viewPackages())
	}

	b.WriteString("\n")
	b.WriteString(m.viewFooter())
	return b.String()
}

func (m AppModel) viewMain() string {
	var b strings.Builder

	b.WriteString(infoStyle.Render(fmt.Sprintf("  %d interpreters (%s)   %d virtual environments (%s)",
		len(m.Result.Interpreters), model.FormatBytes(m.Result.TotalInterpreterSize()),
		len(m.Result.Venvs), model.FormatBytes(m.Result.TotalVenvSize()))))
	b.WriteString("\n\n")

	rows := []struct{ name, desc string }{
		{"Interpreters", "Browse and remove Python installations"},
		{"Virtual Environments", "Browse and remove venvs"},
		{"Package Analysis", "Duplicates and version conflicts across venvs"},
	}
	for i, row := range rows {
		line := fmt.Sprintf("  %d. %-24s %s", i+1, row.name, dimStyle.Render(row.desc))
		if i == m.Nav.Cursor {
			line = selectedStyle.Render(fmt.Sprintf("  %d. %-24s", i+1, row.name)) + " " + dimStyle.Render(row.desc)
		}
		b.WriteString(line)
		b.WriteString("\n")
	}
	return b.String()
}

func (m AppModel) viewInterpreters() string {
	var b strings.Builder
	b.WriteString(headerStyle.Render(fmt.Sprintf("      %-10s %10s  %-28s %s", "MANAGER", "SIZE", "VERSION", "PATH")))
	b.WriteString("\n")

	count := m.visibleCount()
	end := m.Nav.Scroll + m.Nav.PageSize
	if end > count {
		end = count
	}
	for row := m.Nav.Scroll; row < end; row++ {
		orig := m.originalIndex(row)
		if orig < 0 || orig >= len(m.Result.Interpreters) {
			continue
		}
		it := m.Result.Interpreters[orig]

		mark := "[ ]"
		if m.Nav.IsMarked(row) {
			mark = "[" + model.IconMarked + "]"
		}
		if it.IsSystem {
			mark = " " + model.IconSystem + " "
		}

		version := it.Version
		if version == "" {
			version = model.IconMissing + " unknown"
		}
		line := fmt.Sprintf("  %s %-10s %10s  %-28.28s %s",
			mark, "["+it.Manager+"]", model.FormatBytes(it.SizeBytes), version,
			model.ShortenPath(it.Path, 48))

		switch {
		case row == m.Nav.Cursor:
			line = selectedStyle.Render(line)
		case it.IsSystem:
			line = systemStyle.Render(line)
		case m.Nav.IsMarked(row):
			line = markedStyle.Render(line)
		}
		b.WriteString(line)
		b.WriteString("\n")
	}
	if count == 0 {
		b.WriteString(dimStyle.Render("  (no interpreters)"))
		b.WriteString("\n")
	}
	return b.String()
}

func (m AppModel) viewVenvs() string {
	var b strings.Builder
	b.WriteString(headerStyle.Render(fmt.Sprintf("      %-9s %10s %14s  %-24s %s", "MANAGER", "SIZE", "AGE", "PROJECT", "PATH")))
	b.WriteString("\n")

	count := m.visibleCount()
	end := m.Nav.Scroll + m.Nav.PageSize
	if end > count {
		end = count
	}
	for row := m.Nav.Scroll; row < end; row++ {
		orig := m.originalIndex(row)
		if orig < 0 || orig >= len(m.Result.Venvs) {
			continue
		}
		v := m.Result.Venvs[orig]

		mark := "[ ]"
		if m.Nav.IsMarked(row) {
			mark = "[" + model.IconMarked + "]"
		}

		line := fmt.Sprintf("  %s %-9s %10s %14s  %-24.24s %s",
			mark, "["+v.Manager+"]", model.FormatBytes(v.SizeBytes),
			model.FormatAge(v.LastModified), v.ProjectName,
			model.ShortenPath(v.Path, 40))

		switch {
		case row == m.Nav.Cursor:
			line = selectedStyle.Render(line)
		case m.Nav.IsMarked(row):
			line = markedStyle.Render(line)
		}
		b.WriteString(line)
		b.WriteString("\n")
	}
	if count == 0 {
		b.WriteString(dimStyle.Render("  (no virtual environments)"))
		b.WriteString("\n")
	}
	return b.String()
}

func (m AppModel) viewPackages() string {
	if m.Analyzer == nil {
		return infoStyle.Render("  Analyzing packages across environments...") + "\n"
	}

	var b strings.Builder
	dups := m.Analyzer.Duplicates()
	conflicts := m.Analyzer.VersionConflicts()

	b.WriteString(infoStyle.Render(fmt.Sprintf("  Unique packages: %d   Duplicated: %d   Version conflicts: %d",
		m.Analyzer.UniquePackages(), len(dups), len(conflicts))))
	b.WriteString("\n\n")

	b.WriteString(headerStyle.Render("  Top duplicates"))
	b.WriteString("\n")
	limit := m.Nav.PageSize
	for _, name := range m.Analyzer.TopDuplicates(limit) {
		installs := dups[name]
		versions := map[string]struct{}{}
		for _, inst := range installs {
			versions[inst.Version] = struct{}{}
		}
		marker := model.IconDuplicate
		if len(versions) > 1 {
			marker = model.IconConflict
		}
		b.WriteString(fmt.Sprintf("  %s %-30s %d copies, %d version(s)\n",
			marker, name, len(installs), len(versions)))
	}
	return b.String()
}

func (m AppModel) viewFooter() string {
	if m.Confirming {
		var total int64
		for _, p := range m.Pending {
			total += p.Size
		}
		return confirmStyle.Render(fmt.Sprintf("  Delete %d item(s) (%s)? [y/N] ",
			len(m.Pending), model.FormatBytes(total)))
	}
	if m.InputMode {
		return "  /" + m.InputBuffer.View()
	}

	var help string
	switch m.Nav.View {
	case ViewMain:
		help = "↑/↓ navigate · enter select · r rescan · q quit"
	case ViewInterpreters, ViewVenvs:
		help = "space mark · d delete marked · / search · esc back · q quit"
	case ViewPackages:
		help = "esc back · q quit"
	}

	footer := dimStyle.Render("  " + help)
	if m.Status != "" {
		footer = statusStyle.Render("  "+m.Status) + "\n" + footer
	}
	if m.SearchActive {
		footer = dimStyle.Render(fmt.Sprintf("  filter: %q (%d rows)", m.InputBuffer.Value(), m.visibleCount())) + "\n" + footer
	}
	return footer
}
