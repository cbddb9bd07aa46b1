package journal

import (
	"bufio"
	"encoding/binary"
	"io"
)

// DefaultFrameCeiling is the maximum length accepted for a single
// length-prefixed blob (raw_message, string, or EXT_BLOCK), guarding the
// decoder against a corrupt or hostile length field forcing an
// unbounded allocation.
const DefaultFrameCeiling = 64 * 1024 * 1024 // 64 MiB

// maxVarintBytes bounds a LEB128 varint to 10 bytes, a 64-bit value's
// worst-case encoding (ceil(64/7)).
const maxVarintBytes = 10

// ByteReader provides unbuffered, sequentially-advancing access to a
// byte stream, plus the fixed-width and variable-length primitives the
// journal frame format is built from. It owns exactly one byte of
// lookahead, which the decoder uses to push back a just-read tag when
// an event's trailing KV_PAIR run ends.
type ByteReader struct {
	r          *bufio.Reader
	pos        uint64
	ceiling    uint64
	pushedBack bool
	pushedByte byte
}

// NewByteReader wraps r. If r is already a *bufio.Reader it is reused.
func NewByteReader(r io.Reader) *ByteReader {
	br, ok := r.(*bufio.Reader)
	if !ok {
		br = bufio.NewReaderSize(r, 64*1024)
	}
	return &ByteReader{r: br, ceiling: DefaultFrameCeiling}
}

// SetFrameCeiling overrides the default length-prefixed blob ceiling.
func (b *ByteReader) SetFrameCeiling(n uint64) {
	if n > 0 {
		b.ceiling = n
	}
}

// Position returns a best-effort count of bytes consumed so far, for
// diagnostics and error reporting.
func (b *ByteReader) Position() uint64 {
	return b.pos
}

// PushbackByte returns tag to the front of the stream so the next read
// (ReadU8, or the first byte of any wider read or Skip) observes it
// again. Only one byte of pushback is supported, matching the decoder's
// single-tag lookahead requirement.
func (b *ByteReader) PushbackByte(tag byte) {
	b.pushedBack = true
	b.pushedByte = tag
	b.pos-- // the byte is counted again when it is re-read
}

// ReadU8 reads one byte. At a clean stream end (no bytes available at
// all) it returns io.EOF verbatim, which the decoder's frame loop
// interprets as end-of-stream. Any other error - including one raised
// by a decompression layer beneath this reader - is returned as-is so
// the caller can tell corruption apart from a clean end. Callers
// reading a byte known to be part of a larger value should treat any
// non-nil error here as truncation (or corruption, if isCorruption
// says so).
func (b *ByteReader) ReadU8() (byte, error) {
	if b.pushedBack {
		b.pushedBack = false
		b.pos++
		return b.pushedByte, nil
	}
	c, err := b.r.ReadByte()
	if err != nil {
		if err == io.EOF {
			return 0, io.EOF
		}
		return 0, err
	}
	b.pos++
	return c, nil
}

// ReadU32BE reads a big-endian uint32.
func (b *ByteReader) ReadU32BE() (uint32, error) {
	var buf [4]byte
	if err := b.readFull(buf[:]); err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint32(buf[:]), nil
}

// ReadU64BE reads a big-endian uint64 (unused by the current frame
// format but kept for forward compatibility with wider timestamps).
func (b *ByteReader) ReadU64BE() (uint64, error) {
	var buf [8]byte
	if err := b.readFull(buf[:]); err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint64(buf[:]), nil
}

// ReadU16BE reads a big-endian uint16.
func (b *ByteReader) ReadU16BE() (uint16, error) {
	var buf [2]byte
	if err := b.readFull(buf[:]); err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint16(buf[:]), nil
}

func (b *ByteReader) readFull(buf []byte) error {
	if b.pushedBack && len(buf) > 0 {
		buf[0] = b.pushedByte
		b.pushedBack = false
		if _, err := io.ReadFull(b.r, buf[1:]); err != nil {
			return wrapReadErr(err, b.pos, len(buf))
		}
		b.pos += uint64(len(buf))
		return nil
	}
	if _, err := io.ReadFull(b.r, buf); err != nil {
		return wrapReadErr(err, b.pos, len(buf))
	}
	b.pos += uint64(len(buf))
	return nil
}

// wrapReadErr classifies a read failure below the frame layer: one
// originating in decompression (see isCorruption) becomes
// ErrCompression; anything else, including a plain mid-value EOF,
// becomes ErrUnexpectedEOF.
func wrapReadErr(err error, pos uint64, wanted int) error {
	if isCorruption(err) {
		return newErr(ErrCompression, pos, "decompression failed: %v", err)
	}
	return newErr(ErrUnexpectedEOF, pos, "truncated read (%d bytes wanted)", wanted)
}

// ReadVarintU64 reads a base-128 LEB128-style variable-length unsigned
// integer: each byte contributes 7 bits, continuation signaled by the
// MSB. Overflowing the 10-byte/64-bit envelope, or truncating mid-value,
// is reported as ErrMalformedVarint.
func (b *ByteReader) ReadVarintU64() (uint64, error) {
	var result uint64
	var shift uint
	for i := 0; i < maxVarintBytes; i++ {
		c, err := b.ReadU8()
		if err != nil {
			if isCorruption(err) {
				return 0, newErr(ErrCompression, b.pos, "decompression failed: %v", err)
			}
			return 0, newErr(ErrMalformedVarint, b.pos, "truncated varint")
		}
		if i == maxVarintBytes-1 && c > 0x01 {
			// The 10th byte carries only bit 63; anything more overflows.
			return 0, newErr(ErrMalformedVarint, b.pos, "varint overflows 64 bits")
		}
		result |= uint64(c&0x7F) << shift
		if c&0x80 == 0 {
			return result, nil
		}
		shift += 7
	}
	return 0, newErr(ErrMalformedVarint, b.pos, "varint exceeds %d bytes", maxVarintBytes)
}

// ReadLenPrefixed reads a varint length n, then exactly n bytes. n is
// rejected with ErrFrameTooLarge if it exceeds the configured ceiling.
func (b *ByteReader) ReadLenPrefixed() ([]byte, error) {
	n, err := b.ReadVarintU64()
	if err != nil {
		return nil, err
	}
	if n > b.ceiling {
		return nil, newErr(ErrFrameTooLarge, b.pos, "blob length %d exceeds ceiling %d", n, b.ceiling)
	}
	buf := make([]byte, n)
	if n == 0 {
		return buf, nil
	}
	if err := b.readFull(buf); err != nil {
		return nil, err
	}
	return buf, nil
}

// Skip discards n bytes.
func (b *ByteReader) Skip(n uint64) error {
	if b.pushedBack && n > 0 {
		b.pushedBack = false
		n--
		b.pos++
	}
	if n == 0 {
		return nil
	}
	written, err := io.CopyN(io.Discard, b.r, int64(n))
	b.pos += uint64(written)
	if err != nil {
		if isCorruption(err) {
			return newErr(ErrCompression, b.pos, "decompression failed: %v", err)
		}
		return newErr(ErrUnexpectedEOF, b.pos, "truncated skip (%d of %d bytes)", written, n)
	}
	return nil
}
