// Package decoder parses raw Solana account data into token records.
//
// Decoders never fail: malformed or short input yields nil so a single bad
// account cannot abort a crawl.
package decoder

import (
	"encoding/binary"
	"strings"
)

// ReadBorshString reads a u32 little-endian length-prefixed string at off and
// returns it with the offset just past it. A zero or overrunning length yields
// "" and off+4. If the prefix itself does not fit, it returns "" and off.
func ReadBorshString(buf []byte, off int) (string, int) {
	if off < 0 || off+4 > len(buf) {
		return "", off
	}
	n := binary.LittleEndian.Uint32(buf[off:])
	off += 4
	if n == 0 || uint64(off)+uint64(n) > uint64(len(buf)) {
		return "", off
	}
	end := off + int(n)
	return string(buf[off:end]), end
}

// CleanString removes every NUL byte and surrounding whitespace.
func CleanString(s string) string {
	return strings.TrimSpace(strings.ReplaceAll(s, "\x00", ""))
}

// reader is a bounds-checked little-endian cursor.
type reader struct {
	buf []byte
	off int
}

func (r *reader) remaining() int {
	return len(r.buf) - r.off
}

func (r *reader) u8() (uint8, bool) {
	if r.remaining() < 1 {
		return 0, false
	}
	v := r.buf[r.off]
	r.off++
	return v, true
}

func (r *reader) u16() (uint16, bool) {
	if r.remaining() < 2 {
		return 0, false
	}
	v := binary.LittleEndian.Uint16(r.buf[r.off:])
	r.off += 2
	return v, true
}

func (r *reader) u32() (uint32, bool) {
	if r.remaining() < 4 {
		return 0, false
	}
	v := binary.LittleEndian.Uint32(r.buf[r.off:])
	r.off += 4
	return v, true
}

func (r *reader) bool() (bool, bool) {
	v, ok := r.u8()
	return v != 0, ok
}

func (r *reader) skip(n int) bool {
	if n < 0 || r.remaining() < n {
		return false
	}
	r.off += n
	return true
}

func (r *reader) str() string {
	s, next := ReadBorshString(r.buf, r.off)
	r.off = next
	return CleanString(s)
}
