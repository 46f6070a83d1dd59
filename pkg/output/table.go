package output

import (
	"fmt"
	"io"
	"strings"
)

// Column represents a single table column with its header and current width.
//
// Fields:
//   - Header: The display text for this column's header
//   - Width: The current display width for this column in characters
//   - hidden: Whether this column should be excluded from output
type Column struct {
	Header string
	Width  int
	hidden bool
}

// Table provides a flexible table formatter with dynamic column widths.
// It handles Unicode-aware width calculations and consistent formatting.
type Table struct {
	columns   []Column
	separator string
}

// NewTable creates a new table formatter and returns a pointer to it.
//
// The table is initialized with an empty column list and a default
// separator of two spaces ("  ").
//
// Returns:
//   - *Table: A new table instance ready for column configuration
func NewTable() *Table {
	return &Table{
		columns:   make([]Column, 0),
		separator: "  ",
	}
}

// WithSeparator sets a custom column separator and returns the table.
//
// Parameters:
//   - sep: The string to use between columns (e.g., " | ")
//
// Returns:
//   - *Table: The table instance for method chaining
func (t *Table) WithSeparator(sep string) *Table {
	t.separator = sep
	return t
}

// AddColumn adds a column with the given header and returns the table.
//
// The initial width is the display width of the header.
//
// Parameters:
//   - header: The text to display in the column header
//
// Returns:
//   - *Table: The table instance for method chaining
func (t *Table) AddColumn(header string) *Table {
	t.columns = append(t.columns, Column{
		Header: header,
		Width:  DisplayWidth(header),
	})
	return t
}

// AddColumnWithMinWidth adds a column with a minimum width guarantee and
// returns the table.
//
// The column width is the larger of minWidth and the header's display
// width.
//
// Parameters:
//   - header: The text to display in the column header
//   - minWidth: Minimum width in characters for this column
//
// Returns:
//   - *Table: The table instance for method chaining
func (t *Table) AddColumnWithMinWidth(header string, minWidth int) *Table {
	width := DisplayWidth(header)
	if minWidth > width {
		width = minWidth
	}
	t.columns = append(t.columns, Column{
		Header: header,
		Width:  width,
	})
	return t
}

// AddConditionalColumn adds a column with configurable visibility and
// returns the table.
//
// This is useful for columns that should only appear when certain data
// exists.
//
// Parameters:
//   - header: The text to display in the column header
//   - visible: Whether the column should be initially visible
//
// Returns:
//   - *Table: The table instance for method chaining
func (t *Table) AddConditionalColumn(header string, visible bool) *Table {
	t.columns = append(t.columns, Column{
		Header: header,
		Width:  DisplayWidth(header),
		hidden: !visible,
	})
	return t
}

// SetColumnVisible sets the visibility of a column by index and returns
// the table.
//
// Parameters:
//   - index: Zero-based index of the column to modify
//   - visible: Whether the column should be visible
//
// Returns:
//   - *Table: The table instance for method chaining
func (t *Table) SetColumnVisible(index int, visible bool) *Table {
	if index >= 0 && index < len(t.columns) {
		t.columns[index].hidden = !visible
	}
	return t
}

// UpdateWidths updates column widths based on a row of values and
// returns the table.
//
// Each column keeps the larger of its current width and the value's
// display width, so all content fits after every row has been offered.
//
// Parameters:
//   - values: Strings representing a data row, one per column
//
// Returns:
//   - *Table: The table instance for method chaining
func (t *Table) UpdateWidths(values ...string) *Table {
	for i, val := range values {
		if i < len(t.columns) {
			width := DisplayWidth(val)
			if width > t.columns[i].Width {
				t.columns[i].Width = width
			}
		}
	}
	return t
}

// HeaderRow returns the formatted header row string.
//
// Hidden columns are excluded. Each header is padded to its column width.
//
// Returns:
//   - string: Formatted header row with columns separated by the separator
func (t *Table) HeaderRow() string {
	parts := make([]string, 0, len(t.columns))
	for _, col := range t.columns {
		if !col.hidden {
			parts = append(parts, ToWidth(col.Header, col.Width))
		}
	}
	return strings.Join(parts, t.separator)
}

// SeparatorRow returns a separator row with dashes matching column widths.
//
// Returns:
//   - string: Formatted separator row dividing the header from data rows
func (t *Table) SeparatorRow() string {
	parts := make([]string, 0, len(t.columns))
	for _, col := range t.columns {
		if !col.hidden {
			parts = append(parts, strings.Repeat("-", col.Width))
		}
	}
	return strings.Join(parts, t.separator)
}

// FormatRow formats a data row with proper padding for each column.
//
// Values map positionally onto columns; values for hidden columns are
// skipped, and missing values are treated as empty strings.
//
// Parameters:
//   - values: Strings representing the row data, one per column
//
// Returns:
//   - string: Formatted row with values separated by the separator
func (t *Table) FormatRow(values ...string) string {
	parts := make([]string, 0, len(t.columns))
	for i, col := range t.columns {
		if col.hidden {
			continue
		}
		val := ""
		if i < len(values) {
			val = values[i]
		}
		parts = append(parts, ToWidth(val, col.Width))
	}
	return strings.Join(parts, t.separator)
}

// Render writes the complete table (header, separator, rows) followed by
// a row-count footer.
//
// It performs the following operations:
//   - Step 1: Widens columns to fit every row's values
//   - Step 2: Writes the header and separator rows
//   - Step 3: Writes each data row
//   - Step 4: Writes the row-count footer
//
// Parameters:
//   - w: Destination writer for the rendered table
//   - rows: Data rows, each with one value per column
//
// Returns:
//   - error: When a write fails, returns the underlying error; otherwise returns nil
func (t *Table) Render(w io.Writer, rows [][]string) error {
	for _, row := range rows {
		t.UpdateWidths(row...)
	}

	if _, err := fmt.Fprintln(w, t.HeaderRow()); err != nil {
		return err
	}
	if _, err := fmt.Fprintln(w, t.SeparatorRow()); err != nil {
		return err
	}
	for _, row := range rows {
		if _, err := fmt.Fprintln(w, t.FormatRow(row...)); err != nil {
			return err
		}
	}

	noun := "rows"
	if len(rows) == 1 {
		noun = "row"
	}
	_, err := fmt.Fprintf(w, "%d %s\n", len(rows), noun)
	return err
}

// ColumnCount returns the total number of columns including hidden ones.
//
// Returns:
//   - int: Total count of all columns
func (t *Table) ColumnCount() int {
	return len(t.columns)
}

// VisibleColumnCount returns the number of visible columns.
//
// Returns:
//   - int: Count of columns that are not hidden
func (t *Table) VisibleColumnCount() int {
	count := 0
	for _, col := range t.columns {
		if !col.hidden {
			count++
		}
	}
	return count
}

// GetColumnWidth returns the width of a column by index.
//
// Parameters:
//   - index: Zero-based index of the column
//
// Returns:
//   - int: The column's width in characters; 0 if index is out of bounds
func (t *Table) GetColumnWidth(index int) int {
	if index >= 0 && index < len(t.columns) {
		return t.columns[index].Width
	}
	return 0
}

// IsColumnHidden reports whether a column is hidden.
//
// Parameters:
//   - index: Zero-based index of the column
//
// Returns:
//   - bool: true if the column exists and is hidden
func (t *Table) IsColumnHidden(index int) bool {
	if index >= 0 && index < len(t.columns) {
		return t.columns[index].hidden
	}
	return false
}
