package sink

import (
	"fmt"
	"io"

	"github.com/parquet-go/parquet-go"
)

// DefaultRowGroupSize is the number of records buffered before a row
// group is flushed to the Parquet file, per spec.md §4.7.
const DefaultRowGroupSize = 10000

// parquetRow mirrors Record with parquet struct tags; columns are
// typed uint32 + four utf8 strings, matching spec.md's "uint32, utf8,
// utf8, utf8, utf8" column typing.
type parquetRow struct {
	Timestamp  uint32 `parquet:"timestamp"`
	Host       string `parquet:"host,zstd"`
	Source     string `parquet:"source,zstd"`
	Sourcetype string `parquet:"sourcetype,zstd"`
	Message    string `parquet:"message,zstd"`
}

// parquetWriter buffers records into row groups of rowGroupSize before
// handing them to the underlying generic writer.
type parquetWriter struct {
	w            *parquet.GenericWriter[parquetRow]
	rowGroupSize int
	buf          []parquetRow
}

// NewParquet wraps w. rowGroupSize <= 0 uses DefaultRowGroupSize.
// Closing the underlying stream is the caller's responsibility.
func NewParquet(w io.Writer, rowGroupSize int) (Writer, error) {
	if rowGroupSize <= 0 {
		rowGroupSize = DefaultRowGroupSize
	}
	pw := parquet.NewGenericWriter[parquetRow](w)
	return &parquetWriter{w: pw, rowGroupSize: rowGroupSize}, nil
}

func (p *parquetWriter) WriteRecord(r Record) error {
	p.buf = append(p.buf, parquetRow{
		Timestamp:  r.Timestamp,
		Host:       r.Host,
		Source:     r.Source,
		Sourcetype: r.Sourcetype,
		Message:    r.Message,
	})
	if len(p.buf) >= p.rowGroupSize {
		return p.flush()
	}
	return nil
}

func (p *parquetWriter) flush() error {
	if len(p.buf) == 0 {
		return nil
	}
	if _, err := p.w.Write(p.buf); err != nil {
		return fmt.Errorf("parquet: write row group: %w", err)
	}
	if err := p.w.Flush(); err != nil {
		return fmt.Errorf("parquet: flush row group: %w", err)
	}
	p.buf = p.buf[:0]
	return nil
}

func (p *parquetWriter) Close() error {
	if err := p.flush(); err != nil {
		return err
	}
	if err := p.w.Close(); err != nil {
		return fmt.Errorf("parquet: close: %w", err)
	}
	return nil
}
