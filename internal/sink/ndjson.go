package sink

import (
	"bufio"
	"encoding/json"
	"io"
)

// ndjsonWriter emits one JSON object per line, newline-terminated. The
// Record struct's field order (timestamp, host, source, sourcetype,
// message) is what encoding/json serializes, satisfying spec.md's
// "deterministic key order" requirement without any manual map
// ordering.
type ndjsonWriter struct {
	w   *bufio.Writer
	enc *json.Encoder
}

// NewNDJSON wraps w. Closing the underlying stream is the caller's
// responsibility (the Extractor Driver owns endpoint/gzip lifecycle).
func NewNDJSON(w io.Writer) Writer {
	bw := bufio.NewWriter(w)
	return &ndjsonWriter{w: bw, enc: json.NewEncoder(bw)}
}

func (n *ndjsonWriter) WriteRecord(r Record) error {
	return n.enc.Encode(r)
}

func (n *ndjsonWriter) Close() error {
	return n.w.Flush()
}
