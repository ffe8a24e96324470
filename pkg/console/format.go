package console

import (
	"fmt"
	"strings"
	"time"

	"github.com/rivo/tview"

	"github.com/ekaya-inc/ekaya-enrich/pkg/models"
	"github.com/ekaya-inc/ekaya-enrich/pkg/workspace"
)

const (
	tablePlaceholder = "-- Select a table --"
	keyHelp          = "F1 table • F2 columns • F5 generate • F6 approve • Esc dismiss • F10 sign out • Ctrl-C quit"
)

// levelOptions returns the dropdown entries for a selector level and the
// index of the selected entry, or -1. With a placeholder, it is entry 0.
func levelOptions(level workspace.Level, placeholder string) ([]string, int) {
	var options []string
	offset := 0
	if placeholder != "" {
		options = append(options, placeholder)
		offset = 1
	}
	options = append(options, level.Options...)

	if level.Selected == "" {
		if placeholder != "" {
			return options, 0
		}
		return options, -1
	}
	for i, opt := range level.Options {
		if opt == level.Selected {
			return options, i + offset
		}
	}
	return options, -1
}

// formatValue renders a preview cell.
func formatValue(value any) string {
	if value == nil {
		return "NULL"
	}
	switch v := value.(type) {
	case string:
		return v
	case time.Time:
		return v.Format(time.RFC3339)
	case fmt.Stringer:
		return v.String()
	default:
		return fmt.Sprintf("%v", v)
	}
}

// previewGrid flattens a preview into header and row cells in column order.
func previewGrid(p *models.TablePreview) ([]string, [][]string) {
	if p == nil {
		return nil, nil
	}
	rows := make([][]string, len(p.Rows))
	for i, row := range p.Rows {
		cells := make([]string, len(p.Columns))
		for j, col := range p.Columns {
			cells[j] = formatValue(row[col])
		}
		rows[i] = cells
	}
	return p.Columns, rows
}

// statusText is the status bar line. Errors win over success, success over loading.
func statusText(s workspace.State) string {
	switch {
	case s.Banner.Error != "":
		return "[red::b]Error:[-::-] " + tview.Escape(s.Banner.Error) + " [gray](Esc to dismiss)[-]"
	case s.Banner.Success != "":
		return "[green]" + tview.Escape(s.Banner.Success) + "[-]"
	case s.Table.Generating || s.Columns.Generating:
		return "[yellow]Generating descriptions…[-]"
	case s.Table.Saving || s.Columns.Saving:
		return "[yellow]Saving…[-]"
	case s.Loading:
		return "[yellow]Loading…[-]"
	default:
		return "[gray]" + keyHelp + "[-]"
	}
}

// coverageText draws documented vs total columns as a bar of the given width.
func coverageText(doc workspace.ColumnDoc, width int) string {
	total := len(doc.Columns)
	if total == 0 {
		return "[gray]No columns loaded[-]"
	}
	documented := total - doc.MissingCount()
	filled := documented * width / total
	bar := strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
	pct := documented * 100 / total
	return fmt.Sprintf("[green]%s[-] %d/%d documented (%d%%), %d missing", bar, documented, total, pct, total-documented)
}

// currentText renders a stored description for display.
func currentText(desc *string, missing bool) string {
	if desc == nil || missing {
		return "[yellow]No description[-]"
	}
	return tview.Escape(*desc)
}

func headerText(s workspace.State) string {
	name := ""
	if s.Session.User != nil {
		name = s.Session.User.Name
		if name == "" {
			name = s.Session.User.Username
		}
	}
	scope := s.Scope()
	location := ""
	if scope.Table != "" {
		location = " │ " + tview.Escape(scope.Ref().FullName())
	}
	return fmt.Sprintf("[::b]ekaya enrich[-::-] │ %s%s", tview.Escape(name), location)
}
