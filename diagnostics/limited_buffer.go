package diagnostics

import (
	"bytes"
)

// DefaultMaxBodySize caps recorded payloads.
const DefaultMaxBodySize = 16 << 10

const truncatedMarker = " [truncated]"

// limitedBuffer keeps the first limit bytes written to it and remembers
// whether anything was cut off.
type limitedBuffer struct {
	bytes.Buffer
	limit     int
	truncated bool
}

func newLimitedBuffer(limit int) *limitedBuffer {
	return &limitedBuffer{limit: limit}
}

// Write always reports len(p) so callers such as io.Copy keep going after the
// limit is hit.
func (b *limitedBuffer) Write(p []byte) (int, error) {
	if b.truncated {
		return len(p), nil
	}

	remaining := b.limit - b.Buffer.Len()
	if len(p) > remaining {
		b.truncated = true
		if remaining > 0 {
			b.Buffer.Write(p[:remaining])
		}
		return len(p), nil
	}
	return b.Buffer.Write(p)
}

// String returns the kept bytes followed by a marker if data was dropped.
func (b *limitedBuffer) String() string {
	if b.truncated {
		return b.Buffer.String() + truncatedMarker
	}
	return b.Buffer.String()
}

// truncateBody limits body to limit bytes. A limit <= 0 disables truncation.
func truncateBody(body string, limit int) string {
	if limit <= 0 || len(body) <= limit {
		return body
	}
	buf := newLimitedBuffer(limit)
	buf.WriteString(body)
	return buf.String()
}

// WriteString implements io.StringWriter with the same limit as Write.
func (b *limitedBuffer) WriteString(s string) (int, error) {
	return b.Write([]byte(s))
}
