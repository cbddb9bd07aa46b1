package sink

import (
	"fmt"
	"io"
)

// Format names a selectable output serialization.
type Format string

const (
	FormatNDJSON  Format = "ndjson"
	FormatCSV     Format = "csv"
	FormatParquet Format = "parquet"
)

// ParseFormat validates a -f flag value.
func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case FormatNDJSON, FormatCSV, FormatParquet:
		return Format(s), nil
	default:
		return "", fmt.Errorf("unknown output format %q (want ndjson, csv, or parquet)", s)
	}
}

// New constructs the Writer selected by format, wrapping w. rowGroupSize
// only applies to FormatParquet.
func New(format Format, w io.Writer, rowGroupSize int) (Writer, error) {
	switch format {
	case FormatNDJSON:
		return NewNDJSON(w), nil
	case FormatCSV:
		return NewCSV(w)
	case FormatParquet:
		return NewParquet(w, rowGroupSize)
	default:
		return nil, fmt.Errorf("unknown output format %q", format)
	}
}
