// Package export defines the spreadsheet-mirror port the report worker
// writes through.
package export

import "context"

// RowWriter appends one row to the named sheet.
type RowWriter interface {
	AppendRow(ctx context.Context, sheet string, row []any) error
}
