package live

import (
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"
)

// tableStyles returns table styles for the UI.
func tableStyles(noColor bool) table.Styles {
	if noColor {
		return table.DefaultStyles()
	}
	styles := table.DefaultStyles()
	styles.Header = styles.Header.Foreground(lipgloss.Color("252"))
	return styles
}

// defaultColumns sizes the table for an 80 column terminal.
func defaultColumns() []table.Column {
	return columnsForWidth(80)
}

// columnsForWidth gives the SQL column whatever the fixed columns leave.
func columnsForWidth(width int) []table.Column {
	const fixed = 8 + 8 + 10 + 22 + 4 + 12
	sqlWidth := width - fixed
	if sqlWidth < 12 {
		sqlWidth = 12
	}
	return []table.Column{
		{Title: "Tab", Width: 8},
		{Title: "Thread", Width: 8},
		{Title: "Status", Width: 10},
		{Title: "Activity", Width: 22},
		{Title: "Ver", Width: 4},
		{Title: "SQL", Width: sqlWidth},
	}
}

// rowsForState converts UI state into table rows.
func rowsForState(state State, frame string, sqlWidth int, noColor bool) []table.Row {
	rows := make([]table.Row, 0, len(state.Rows))
	for _, row := range state.Rows {
		rows = append(rows, table.Row{
			row.TabID,
			formatThreadID(row.ThreadID),
			formatLifecycle(row.Lifecycle, noColor),
			formatActivity(row, frame, noColor),
			formatVersion(row.Version),
			formatSQL(row.SQL, sqlWidth),
		})
	}
	return rows
}
