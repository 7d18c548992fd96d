package cli

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"
)

// Table renders column-aligned command output over text/tabwriter.
// The header and its dash divider are deferred until the first Row, so
// an audit or listing verb that matched nothing prints nothing.
type Table struct {
	w       *tabwriter.Writer
	headers []string
	prefix  string
	started bool
}

// NewTable creates a table with the given column headers.
func NewTable(headers ...string) *Table {
	return &Table{
		w:       tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0),
		headers: headers,
	}
}

// WithPrefix indents every emitted line, for sub-tables nested inside
// larger output.
func (t *Table) WithPrefix(prefix string) *Table {
	t.prefix = prefix
	return t
}

// Row appends one row, emitting the header block first if this is the
// first row.
func (t *Table) Row(values ...string) {
	t.writeHeader()
	fmt.Fprintln(t.w, t.prefix+strings.Join(values, "\t"))
}

// Flush writes the buffered table. A table with no rows stays silent.
func (t *Table) Flush() {
	if !t.started {
		return
	}
	t.w.Flush()
}

func (t *Table) writeHeader() {
	if t.started {
		return
	}
	t.started = true

	fmt.Fprintln(t.w, t.prefix+strings.Join(t.headers, "\t"))
	dashes := make([]string, len(t.headers))
	for i, h := range t.headers {
		dashes[i] = strings.Repeat("-", len(h))
	}
	fmt.Fprintln(t.w, t.prefix+strings.Join(dashes, "\t"))
}
