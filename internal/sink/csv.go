package sink

import (
	"encoding/csv"
	"io"
	"strconv"
	"strings"
)

// csvWriter emits a header row followed by one row per Record,
// delegating RFC 4180 quoting to encoding/csv - which already handles
// embedded newlines and quotes correctly, so no third-party CSV
// library improves on it for this shape of data (see DESIGN.md).
type csvWriter struct {
	w *csv.Writer
}

var csvHeader = []string{"timestamp", "host", "source", "sourcetype", "message", "extra_fields"}

// NewCSV wraps w, writing the header row immediately. Closing the
// underlying stream is the caller's responsibility.
func NewCSV(w io.Writer) (Writer, error) {
	cw := csv.NewWriter(w)
	cw.UseCRLF = false // LF preferred, per spec.md §4.7
	if err := cw.Write(csvHeader); err != nil {
		return nil, err
	}
	return &csvWriter{w: cw}, nil
}

func (c *csvWriter) WriteRecord(r Record) error {
	row := [6]string{
		strconv.FormatUint(uint64(r.Timestamp), 10),
		r.Host,
		r.Source,
		r.Sourcetype,
		r.Message,
		flattenExtra(r.Extra),
	}
	return c.w.Write(row[:])
}

// flattenExtra renders extra KV_PAIR fields as a single semicolon-
// separated "key=value" column - CSV has no native nested-record
// shape, so this is the lossy-but-readable flattening spec.md leaves
// the driver free to choose for tabular output.
func flattenExtra(extra []KV) string {
	if len(extra) == 0 {
		return ""
	}
	parts := make([]string, len(extra))
	for i, kv := range extra {
		parts[i] = kv.Key + "=" + kv.Value
	}
	return strings.Join(parts, ";")
}

func (c *csvWriter) Close() error {
	c.w.Flush()
	return c.w.Error()
}
