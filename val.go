package mdbxx

import (
	"encoding/binary"
	"unsafe"
)

// Val is a non-owning view over a contiguous byte range used to move
// keys and values across the engine boundary without copying. A Val
// constructed from caller data does not copy it; the caller must keep
// the source alive for the duration of the engine call. A Val returned
// by a read references engine-owned, memory-mapped bytes and is valid
// only within the transaction that produced it — use Copy or String to
// retain the bytes beyond that.
type Val struct {
	b []byte
}

// Bytes wraps b without copying.
func Bytes(b []byte) Val {
	return Val{b: b}
}

// Str wraps the bytes of s without copying. The returned view must not
// be mutated and must not outlive s.
func Str(s string) Val {
	if len(s) == 0 {
		return Val{}
	}
	return Val{b: unsafe.Slice(unsafe.StringData(s), len(s))}
}

// Data returns the viewed bytes without copying.
func (v Val) Data() []byte {
	return v.b
}

// Len returns the length of the viewed range.
func (v Val) Len() int {
	return len(v.b)
}

// Empty reports whether the view covers no bytes.
func (v Val) Empty() bool {
	return len(v.b) == 0
}

// Copy returns a detached copy of the viewed bytes, safe to retain
// after the owning transaction ends.
func (v Val) Copy() []byte {
	if v.b == nil {
		return nil
	}
	out := make([]byte, len(v.b))
	copy(out, v.b)
	return out
}

// String returns a detached string copy of the viewed bytes.
func (v Val) String() string {
	return string(v.b)
}

// Logical keys cross the boundary through an explicit, canonical byte
// encoding rather than by reinterpreting a value's memory: fixed-width
// big-endian images are identical on every call that stores or looks up
// the same key, and their order under memcmp matches numeric order.

// U64Key returns the canonical 8-byte image of k.
func U64Key(k uint64) []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, k)
	return b
}

// U32Key returns the canonical 4-byte image of k.
func U32Key(k uint32) []byte {
	b := make([]byte, 4)
	binary.BigEndian.PutUint32(b, k)
	return b
}

// ParseU64Key decodes an image produced by U64Key. It returns false if
// b is not exactly 8 bytes.
func ParseU64Key(b []byte) (uint64, bool) {
	if len(b) != 8 {
		return 0, false
	}
	return binary.BigEndian.Uint64(b), true
}

// ParseU32Key decodes an image produced by U32Key. It returns false if
// b is not exactly 4 bytes.
func ParseU32Key(b []byte) (uint32, bool) {
	if len(b) != 4 {
		return 0, false
	}
	return binary.BigEndian.Uint32(b), true
}
