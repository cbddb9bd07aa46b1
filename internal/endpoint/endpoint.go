// Package endpoint implements the three I/O Endpoint families spec.md
// §4.8 names: local filesystem, stdin/stdout, and a remote object
// store. Readers expose a pull-based io.Reader (no seek required);
// writers expose an append-only io.WriteCloser whose Close commits the
// data (for the object store, completing a multipart upload).
package endpoint

import (
	"context"
	"fmt"
	"io"
	"strings"
)

// UnsupportedSchemeError reports a -i/-o path whose scheme prefix this
// build does not recognize (e.g. "ftp://") - a usage error the caller
// made, not a runtime I/O failure, so a CLI can map it to a distinct
// exit code.
type UnsupportedSchemeError struct {
	Scheme string
}

func (e *UnsupportedSchemeError) Error() string {
	return fmt.Sprintf("endpoint: unsupported scheme %q", e.Scheme)
}

// OpenReader opens path for reading, dispatching on its scheme: a bare
// path or "-" is local/stdio, "s3://bucket/key" is the object store.
func OpenReader(ctx context.Context, path string) (io.ReadCloser, error) {
	scheme, rest := splitScheme(path)
	switch scheme {
	case "":
		if rest == "-" || rest == "" {
			return stdinReader{}, nil
		}
		return openLocalReader(rest)
	case "s3":
		return openS3Reader(ctx, rest)
	default:
		return nil, &UnsupportedSchemeError{Scheme: scheme}
	}
}

// OpenWriter opens path for writing, creating parent directories for a
// local path. It does not gzip-wrap a ".gz" path (spec.md §4.6 step 3);
// the Extractor Driver applies that wrapping to the returned writer.
func OpenWriter(ctx context.Context, path string) (io.WriteCloser, error) {
	scheme, rest := splitScheme(path)
	switch scheme {
	case "":
		if rest == "-" || rest == "" {
			return stdoutWriter{}, nil
		}
		return openLocalWriter(rest)
	case "s3":
		return openS3Writer(ctx, rest)
	default:
		return nil, &UnsupportedSchemeError{Scheme: scheme}
	}
}

// splitScheme recognizes a "scheme://rest" URI prefix; a bare path
// (including one containing ":" from, say, a Windows drive letter)
// returns an empty scheme.
func splitScheme(path string) (scheme, rest string) {
	idx := strings.Index(path, "://")
	if idx <= 0 {
		return "", path
	}
	return path[:idx], path[idx+3:]
}
