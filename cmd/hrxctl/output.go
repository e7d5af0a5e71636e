package main

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/hrx-hr/hrx-backend-go/internal/client/board"
	"github.com/hrx-hr/hrx-backend-go/internal/client/cachemon"
	"github.com/hrx-hr/hrx-backend-go/internal/client/session"
)

type styles struct {
	Title   lipgloss.Style
	Header  lipgloss.Style
	Cell    lipgloss.Style
	Border  lipgloss.Style
	Success lipgloss.Style
	Warning lipgloss.Style
	Error   lipgloss.Style
	Muted   lipgloss.Style
}

type palette struct {
	accent, text, border, success, warning, danger, muted lipgloss.Color
}

var (
	lightPalette = palette{
		accent:  lipgloss.Color("25"),
		text:    lipgloss.Color("235"),
		border:  lipgloss.Color("245"),
		success: lipgloss.Color("28"),
		warning: lipgloss.Color("130"),
		danger:  lipgloss.Color("124"),
		muted:   lipgloss.Color("243"),
	}
	darkPalette = palette{
		accent:  lipgloss.Color("86"),
		text:    lipgloss.Color("252"),
		border:  lipgloss.Color("240"),
		success: lipgloss.Color("42"),
		warning: lipgloss.Color("214"),
		danger:  lipgloss.Color("203"),
		muted:   lipgloss.Color("245"),
	}
)

func stylesFor(theme session.Theme) styles {
	p := lightPalette
	if theme == session.ThemeDark {
		p = darkPalette
	}
	return styles{
		Title:   lipgloss.NewStyle().Bold(true).Foreground(p.accent),
		Header:  lipgloss.NewStyle().Bold(true).Foreground(p.accent).Padding(0, 1),
		Cell:    lipgloss.NewStyle().Foreground(p.text).Padding(0, 1),
		Border:  lipgloss.NewStyle().Foreground(p.border),
		Success: lipgloss.NewStyle().Foreground(p.success),
		Warning: lipgloss.NewStyle().Foreground(p.warning),
		Error:   lipgloss.NewStyle().Bold(true).Foreground(p.danger),
		Muted:   lipgloss.NewStyle().Foreground(p.muted),
	}
}

func (s styles) render(w io.Writer, title string, t board.Table) {
	if title != "" {
		fmt.Fprintln(w, s.Title.Render(title))
	}
	if len(t.Rows) == 0 {
		fmt.Fprintln(w, s.Muted.Render("Nothing to show."))
		return
	}
	tbl := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(s.Border).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return s.Header
			}
			return s.Cell
		}).
		Headers(t.Headers...).
		Rows(t.Rows...)
	fmt.Fprintln(w, tbl)
}

func (s styles) health(h cachemon.Health) string {
	switch h {
	case cachemon.Good:
		return s.Success.Render(string(h))
	case cachemon.Fair:
		return s.Warning.Render(string(h))
	default:
		return s.Error.Render(string(h))
	}
}

func (s styles) ok(w io.Writer, format string, args ...any) {
	fmt.Fprintln(w, s.Success.Render(fmt.Sprintf(format, args...)))
}
