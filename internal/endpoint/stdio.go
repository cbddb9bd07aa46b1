package endpoint

import "os"

// stdinReader/stdoutWriter let stdin/stdout satisfy the same
// ReadCloser/WriteCloser endpoints as a local file or object-store
// stream, without callers special-casing "-".

type stdinReader struct{}

func (stdinReader) Read(p []byte) (int, error) { return os.Stdin.Read(p) }
func (stdinReader) Close() error               { return nil }

type stdoutWriter struct{}

func (stdoutWriter) Write(p []byte) (int, error) { return os.Stdout.Write(p) }
func (stdoutWriter) Close() error                { return nil }
