// Package display renders flat records as aligned console tables.
package display

import (
	"bytes"
	"io"
	"strconv"

	"github.com/olekukonko/tablewriter"
)

// Table is a list of flat records sharing the same columns.
type Table struct {
	Headers []string
	Rows    [][]string
	// Indexed prepends a 1-based "idx" column so users can pick rows by number.
	Indexed bool
}

func (t Table) Render(w io.Writer) {
	tw := tablewriter.NewWriter(w)
	tw.SetAutoWrapText(false)
	tw.SetAutoFormatHeaders(false)
	tw.SetAlignment(tablewriter.ALIGN_LEFT)
	tw.SetHeaderAlignment(tablewriter.ALIGN_LEFT)

	headers := t.Headers
	if t.Indexed {
		headers = append([]string{"idx"}, t.Headers...)
	}
	tw.SetHeader(headers)

	for i, row := range t.Rows {
		if t.Indexed {
			row = append([]string{strconv.Itoa(i + 1)}, row...)
		}
		tw.Append(row)
	}
	tw.Render()
}

func (t Table) String() string {
	var buf bytes.Buffer
	t.Render(&buf)
	return buf.String()
}
