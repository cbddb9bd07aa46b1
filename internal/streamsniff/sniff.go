// Package streamsniff wraps a raw byte stream in the right decompressor
// by sniffing its leading magic bytes, presenting a single uniform
// io.Reader to callers regardless of whether the underlying archive is
// zstd-, gzip-, or not compressed at all.
//
// Grounded on internal/replica/rdb_parser.go's handleZstdBlob/
// handleLZ4Blob: decompress into a fresh reader, then keep reading from
// that reader transparently. Here the selection happens once, up
// front, rather than blob-by-blob mid-stream.
package streamsniff

import (
	"bufio"
	"compress/gzip"
	"fmt"
	"io"

	"github.com/klauspost/compress/zstd"
)

var (
	zstdMagic = []byte{0x28, 0xB5, 0x2F, 0xFD}
	gzipMagic = []byte{0x1F, 0x8B}
)

// Kind identifies which codec was sniffed.
type Kind int

const (
	Identity Kind = iota
	Zstd
	Gzip
)

func (k Kind) String() string {
	switch k {
	case Zstd:
		return "zstd"
	case Gzip:
		return "gzip"
	default:
		return "identity"
	}
}

// Open peeks at the first few bytes of r (without consuming them from
// the logical stream, via bufio's push-back buffer) and returns a
// reader that transparently decompresses zstd or gzip input, or passes
// identity input through unchanged. The Byte Reader layered on top
// never has to know which case it is.
func Open(r io.Reader) (io.Reader, Kind, error) {
	br := bufio.NewReaderSize(r, 64*1024)

	peek, err := br.Peek(4)
	if err != nil && err != io.EOF && err != bufio.ErrBufferFull {
		// Short reads are fine - a tiny journal may be shorter than the
		// peek window. Only a genuine I/O error is fatal here.
		if len(peek) == 0 {
			return nil, Identity, fmt.Errorf("streamsniff: reading magic bytes: %w", err)
		}
	}

	switch {
	case hasPrefix(peek, zstdMagic):
		dec, err := zstd.NewReader(br)
		if err != nil {
			return nil, Zstd, fmt.Errorf("streamsniff: zstd: %w", err)
		}
		return &zstdReader{dec: dec}, Zstd, nil

	case hasPrefix(peek, gzipMagic):
		gz, err := gzip.NewReader(br)
		if err != nil {
			return nil, Gzip, fmt.Errorf("streamsniff: gzip: %w", err)
		}
		return &gzipReader{gz: gz}, Gzip, nil

	default:
		return br, Identity, nil
	}
}

func hasPrefix(peek, magic []byte) bool {
	if len(peek) < len(magic) {
		return false
	}
	for i, b := range magic {
		if peek[i] != b {
			return false
		}
	}
	return true
}

// CompressionError reports a read failure that originated in the
// decompression layer (corrupt or truncated zstd/gzip frame data)
// rather than a plain end of stream, so a caller holding one of this
// package's readers can surface it as fatal corruption rather than
// treating it as truncation. It implements Corrupted() bool, matched
// structurally by internal/journal without either package importing
// the other.
type CompressionError struct {
	Err error
}

func (e *CompressionError) Error() string {
	return fmt.Sprintf("streamsniff: corrupt stream: %v", e.Err)
}

func (e *CompressionError) Unwrap() error { return e.Err }

// Corrupted always reports true: a *CompressionError is only ever
// constructed for a genuine decompression-layer fault.
func (e *CompressionError) Corrupted() bool { return true }

// zstdReader adapts *zstd.Decoder (which exposes Close but not an error
// on it) to io.Reader, surfacing internal corruption as a *CompressionError
// the Byte Reader will see on its next read (spec.md §4.2:
// "the adapter surfaces CompressionError at the next read").
type zstdReader struct {
	dec *zstd.Decoder
}

func (z *zstdReader) Read(p []byte) (int, error) {
	n, err := z.dec.Read(p)
	if err != nil && err != io.EOF {
		return n, &CompressionError{Err: err}
	}
	return n, err
}

// gzipReader adapts *gzip.Reader the same way, so a truncated or
// corrupted gzip member also surfaces as *CompressionError rather than
// a bare io.ErrUnexpectedEOF the decoder can't tell apart from a
// legitimately short stream.
type gzipReader struct {
	gz *gzip.Reader
}

func (g *gzipReader) Read(p []byte) (int, error) {
	n, err := g.gz.Read(p)
	if err != nil && err != io.EOF {
		return n, &CompressionError{Err: err}
	}
	return n, err
}
