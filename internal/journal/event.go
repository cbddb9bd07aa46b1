package journal

import "strings"

// KV is one captured key-value metadata pair attached to an event by a
// KV_PAIR frame. Order and duplicate keys are preserved as they
// appeared on the wire.
type KV struct {
	Key   []byte
	Value []byte
}

// Event is a decoded record. It owns RawMessage (a copy, not a slice
// borrowed from the reader's internal buffer) so a Writer may hold it
// across further Scan calls.
type Event struct {
	IndexTime     uint32
	HostIdx       int64 // Unset (-1) if the stream never set a host
	SourceIdx     int64
	SourcetypeIdx int64
	RawMessage    []byte
	ExtraFields   []KV
}

// MessageString interprets RawMessage as UTF-8, replacing invalid
// sequences rather than failing - a convenience for callers that don't
// need the raw bytes.
func (e *Event) MessageString() string {
	return strings.ToValidUTF8(string(e.RawMessage), "�")
}
