package journal

import "io"

// state enumerates the decoder's frame loop states.
type state int

const (
	stateIdle state = iota
	stateInEvent
	stateEnded
	stateFailed
)

// Decoder streams Splunk journal frames into Event values, one per
// Scan call. It owns the reader and all three dictionary tables;
// concurrent access to one Decoder is undefined (spec.md §5).
type Decoder struct {
	r     *ByteReader
	dict  *Table
	st    state
	err   *DecodeError

	curHost       int64
	curSource     int64
	curSourcetype int64

	pending *Event
}

// NewDecoder builds a decoder over r, starting in the Idle state with
// empty dictionaries and unset current indices.
func NewDecoder(r io.Reader) *Decoder {
	return &Decoder{
		r:             NewByteReader(r),
		dict:          NewTable(),
		st:            stateIdle,
		curHost:       Unset,
		curSource:     Unset,
		curSourcetype: Unset,
	}
}

// SetFrameCeiling overrides the maximum accepted length-prefixed blob
// size (default 64 MiB).
func (d *Decoder) SetFrameCeiling(n uint64) {
	d.r.SetFrameCeiling(n)
}

// Dictionary exposes the decoder's backing dictionary table, e.g. for
// a driver that wants to resolve Host/Source/Sourcetype itself.
func (d *Decoder) Dictionary() *Table {
	return d.dict
}

// Position returns the reader's best-effort consumed-byte count.
func (d *Decoder) Position() uint64 {
	return d.r.Position()
}

// Err returns the fatal error that halted decoding, or nil if Scan
// simply reached a clean end-of-stream (or hasn't failed yet).
func (d *Decoder) Err() error {
	if d.err == nil {
		return nil
	}
	return d.err
}

// Scan advances to the next event. It returns true if an event is now
// available via GetEvent; false on clean end-of-stream or on the first
// encountered fatal error (in which case Err returns its kind). Once
// Scan has returned false, it returns false on every subsequent call -
// there is no resync or skip-corrupt-record mode (spec.md §4.4.3).
func (d *Decoder) Scan() bool {
	if d.st == stateEnded || d.st == stateFailed {
		return false
	}

	for {
		tagByte, err := d.r.ReadU8()
		if err != nil {
			if err == io.EOF {
				d.st = stateEnded
				return false
			}
			return d.fail(err)
		}
		tag := Tag(tagByte)

		switch tag {
		case TagMetaAddHost, TagMetaAddSource, TagMetaAddSourcetype:
			scope := scopeForAdd(tag)
			str, err := d.r.ReadLenPrefixed()
			if err != nil {
				return d.fail(err)
			}
			d.dict.Append(scope, str)

		case TagMetaRefHost, TagMetaRefSource, TagMetaRefSourcetype:
			scope := scopeForRef(tag)
			idx, err := d.r.ReadVarintU64()
			if err != nil {
				return d.fail(err)
			}
			if idx >= uint64(d.dict.Len(scope)) {
				return d.fail(newErr(ErrDanglingRef, d.r.Position(), "%s ref %d but dict has %d entries", scope, idx, d.dict.Len(scope)))
			}
			d.setCurrent(scope, int64(idx))

		case TagEvent:
			indexTime, err := d.r.ReadU32BE()
			if err != nil {
				return d.fail(err)
			}
			msg, err := d.r.ReadLenPrefixed()
			if err != nil {
				return d.fail(err)
			}
			d.pending = &Event{
				IndexTime:     indexTime,
				HostIdx:       d.curHost,
				SourceIdx:     d.curSource,
				SourcetypeIdx: d.curSourcetype,
				RawMessage:    msg,
			}
			d.st = stateInEvent
			if done, ok := d.finishIfNoMoreKV(); !ok {
				return false
			} else if done {
				return true
			}
			// else: next tag was KV_PAIR; loop to collect it.

		case TagKVPair:
			if d.st != stateInEvent {
				return d.fail(newErr(ErrUnexpectedKV, d.r.Position(), "KV_PAIR outside an event"))
			}
			key, err := d.r.ReadLenPrefixed()
			if err != nil {
				return d.fail(err)
			}
			val, err := d.r.ReadLenPrefixed()
			if err != nil {
				return d.fail(err)
			}
			d.pending.ExtraFields = append(d.pending.ExtraFields, KV{Key: key, Value: val})
			if done, ok := d.finishIfNoMoreKV(); !ok {
				return false
			} else if done {
				return true
			}

		case TagExtBlock:
			n, err := d.r.ReadVarintU64()
			if err != nil {
				return d.fail(err)
			}
			if n > d.r.ceiling {
				return d.fail(newErr(ErrFrameTooLarge, d.r.Position(), "EXT_BLOCK length %d exceeds ceiling %d", n, d.r.ceiling))
			}
			if err := d.r.Skip(n); err != nil {
				return d.fail(err)
			}

		case TagEnd:
			d.st = stateEnded
			return d.pending != nil

		default:
			if tag.forwardCompat() {
				n, err := d.r.ReadVarintU64()
				if err != nil {
					return d.fail(err)
				}
				if err := d.r.Skip(n); err != nil {
					return d.fail(err)
				}
				continue
			}
			return d.fail(newErr(ErrUnknownTag, d.r.Position(), "tag 0x%02x", tagByte))
		}
	}
}

// finishIfNoMoreKV peeks the next tag byte after an EVENT or KV_PAIR
// frame. If it is not KV_PAIR, the event is complete: the tag is
// pushed back for the next Scan/loop iteration to see, and done=true,
// ok=true is returned. If reading the lookahead byte itself fails
// fatally, ok=false is returned (the caller should return false
// immediately, Err() already set). A clean EOF here is handled by
// pushing nothing back and returning done=true so the caller returns
// the just-completed event; the *next* Scan call will then observe the
// real end-of-stream.
func (d *Decoder) finishIfNoMoreKV() (done bool, ok bool) {
	next, err := d.r.ReadU8()
	if err != nil {
		if err == io.EOF {
			d.st = stateIdle
			return true, true
		}
		d.fail(err)
		return false, false
	}
	if Tag(next) == TagKVPair {
		d.r.PushbackByte(next)
		return false, true
	}
	d.r.PushbackByte(next)
	d.st = stateIdle
	return true, true
}

// GetEvent returns the event produced by the most recent Scan call
// that returned true. It is only valid until the next Scan call.
func (d *Decoder) GetEvent() *Event {
	ev := d.pending
	d.pending = nil
	return ev
}

// Host resolves the current event's host index against the dictionary,
// returning an empty slice if unset.
func (d *Decoder) Host(ev *Event) []byte {
	return resolve(d.dict, ScopeHost, ev.HostIdx)
}

// Source resolves the current event's source index.
func (d *Decoder) Source(ev *Event) []byte {
	return resolve(d.dict, ScopeSource, ev.SourceIdx)
}

// SourceType resolves the current event's sourcetype index.
func (d *Decoder) SourceType(ev *Event) []byte {
	return resolve(d.dict, ScopeSourcetype, ev.SourcetypeIdx)
}

func resolve(t *Table, scope Scope, idx int64) []byte {
	v, ok := t.Get(scope, idx)
	if !ok {
		return nil
	}
	return v
}

func (d *Decoder) setCurrent(scope Scope, idx int64) {
	switch scope {
	case ScopeHost:
		d.curHost = idx
	case ScopeSource:
		d.curSource = idx
	case ScopeSourcetype:
		d.curSourcetype = idx
	}
}

func scopeForAdd(t Tag) Scope {
	switch t {
	case TagMetaAddHost:
		return ScopeHost
	case TagMetaAddSource:
		return ScopeSource
	default:
		return ScopeSourcetype
	}
}

func scopeForRef(t Tag) Scope {
	switch t {
	case TagMetaRefHost:
		return ScopeHost
	case TagMetaRefSource:
		return ScopeSource
	default:
		return ScopeSourcetype
	}
}

func (d *Decoder) fail(err error) bool {
	if de, ok := err.(*DecodeError); ok {
		d.err = de
	} else if isCorruption(err) {
		d.err = newErr(ErrCompression, d.r.Position(), "%v", err)
	} else {
		d.err = newErr(ErrUnexpectedEOF, d.r.Position(), "%v", err)
	}
	d.st = stateFailed
	d.pending = nil
	return false
}
