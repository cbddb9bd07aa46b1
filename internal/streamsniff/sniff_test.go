package streamsniff

import (
	"bytes"
	"compress/gzip"
	"io"
	"testing"

	"github.com/klauspost/compress/zstd"
)

func TestOpenIdentityPassesThrough(t *testing.T) {
	payload := []byte("plain journal bytes, no magic header")
	r, kind, err := Open(bytes.NewReader(payload))
	if err != nil {
		t.Fatalf(`exp nil err; got %v`, err)
	}
	if kind != Identity {
		t.Fatalf(`exp Identity; got %v`, kind)
	}
	got, err := io.ReadAll(r)
	if err != nil || !bytes.Equal(got, payload) {
		t.Fatalf(`exp passthrough of original bytes; got %q, err=%v`, got, err)
	}
}

func TestOpenGzipDecompresses(t *testing.T) {
	var buf bytes.Buffer
	gw := gzip.NewWriter(&buf)
	gw.Write([]byte("hello from gzip"))
	gw.Close()

	r, kind, err := Open(&buf)
	if err != nil {
		t.Fatalf(`exp nil err; got %v`, err)
	}
	if kind != Gzip {
		t.Fatalf(`exp Gzip; got %v`, kind)
	}
	got, err := io.ReadAll(r)
	if err != nil || string(got) != "hello from gzip" {
		t.Fatalf(`exp "hello from gzip"; got %q, err=%v`, got, err)
	}
}

func TestOpenZstdDecompresses(t *testing.T) {
	var buf bytes.Buffer
	zw, err := zstd.NewWriter(&buf)
	if err != nil {
		t.Fatalf(`unexpected zstd writer construction error: %v`, err)
	}
	zw.Write([]byte("hello from zstd"))
	zw.Close()

	r, kind, err := Open(&buf)
	if err != nil {
		t.Fatalf(`exp nil err; got %v`, err)
	}
	if kind != Zstd {
		t.Fatalf(`exp Zstd; got %v`, kind)
	}
	got, err := io.ReadAll(r)
	if err != nil || string(got) != "hello from zstd" {
		t.Fatalf(`exp "hello from zstd"; got %q, err=%v`, got, err)
	}
}

func TestOpenShortStreamUnderPeekWindowIsIdentity(t *testing.T) {
	r, kind, err := Open(bytes.NewReader([]byte{0x01, 0x02}))
	if err != nil {
		t.Fatalf(`exp nil err for a short stream; got %v`, err)
	}
	if kind != Identity {
		t.Fatalf(`exp Identity for a short non-matching stream; got %v`, kind)
	}
	got, err := io.ReadAll(r)
	if err != nil || !bytes.Equal(got, []byte{0x01, 0x02}) {
		t.Fatalf(`exp the 2 original bytes preserved; got %q`, got)
	}
}

func TestOpenEmptyStream(t *testing.T) {
	r, kind, err := Open(bytes.NewReader(nil))
	if err != nil {
		t.Fatalf(`exp nil err for an empty stream; got %v`, err)
	}
	if kind != Identity {
		t.Fatalf(`exp Identity for an empty stream; got %v`, kind)
	}
	got, err := io.ReadAll(r)
	if err != nil || len(got) != 0 {
		t.Fatalf(`exp zero bytes; got %q`, got)
	}
}

func TestOpenZstdTruncatedStreamSurfacesCorruption(t *testing.T) {
	var buf bytes.Buffer
	zw, err := zstd.NewWriter(&buf)
	if err != nil {
		t.Fatalf(`unexpected zstd writer construction error: %v`, err)
	}
	zw.Write([]byte("a payload long enough to span more than one zstd block boundary, repeated: " +
		"a payload long enough to span more than one zstd block boundary, repeated."))
	zw.Close()

	full := buf.Bytes()
	truncated := full[:len(full)-4] // drop the trailing checksum/frame-end bytes

	r, kind, err := Open(bytes.NewReader(truncated))
	if err != nil {
		t.Fatalf(`exp Open itself to succeed on an intact header; got %v`, err)
	}
	if kind != Zstd {
		t.Fatalf(`exp Zstd; got %v`, kind)
	}
	_, readErr := io.ReadAll(r)
	if readErr == nil {
		t.Fatal(`exp a read error from a truncated zstd stream`)
	}
	assertCorrupted(t, readErr)
}

func TestOpenGzipTruncatedStreamSurfacesCorruption(t *testing.T) {
	var buf bytes.Buffer
	gw := gzip.NewWriter(&buf)
	gw.Write([]byte("a payload long enough to not be fully buffered before truncation happens here"))
	gw.Close()

	full := buf.Bytes()
	truncated := full[:len(full)-8] // drop the trailing CRC32/size footer

	r, kind, err := Open(bytes.NewReader(truncated))
	if err != nil {
		t.Fatalf(`exp Open itself to succeed on an intact header; got %v`, err)
	}
	if kind != Gzip {
		t.Fatalf(`exp Gzip; got %v`, kind)
	}
	_, readErr := io.ReadAll(r)
	if readErr == nil {
		t.Fatal(`exp a read error from a truncated gzip stream`)
	}
	assertCorrupted(t, readErr)
}

func assertCorrupted(t *testing.T, err error) {
	t.Helper()
	type corrupted interface{ Corrupted() bool }
	ce, ok := err.(corrupted)
	if !ok || !ce.Corrupted() {
		t.Fatalf(`exp err to report Corrupted()==true; got %T: %v`, err, err)
	}
}

func TestKindString(t *testing.T) {
	cases := []struct {
		k    Kind
		want string
	}{
		{Identity, "identity"},
		{Zstd, "zstd"},
		{Gzip, "gzip"},
	}
	for _, c := range cases {
		if got := c.k.String(); got != c.want {
			t.Errorf(`Kind(%d).String(): exp %q; got %q`, c.k, c.want, got)
		}
	}
}
