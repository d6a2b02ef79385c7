// Package wire frames snapshot payloads so a reader can tell the codec that
// produced them and detect truncated or corrupted files.
package wire

import (
	"bytes"
	"encoding/binary"
	"errors"

	"github.com/cespare/xxhash/v2"
)

const (
	version byte = 1
	hdrLen       = 4 + 1 + 1 + 4
	sumLen       = 8
)

var (
	ErrCorrupt = errors.New("botdb: corrupt snapshot frame")
	magic4     = [...]byte{'B', 'D', 'B', 'S'}
)

func hasMagic(b []byte) bool {
	return len(b) >= 4 && bytes.Equal(b[:4], magic4[:])
}

// IsFramed reports whether b starts with a frame header.
func IsFramed(b []byte) bool { return hasMagic(b) }

// Frame: magic(4) | ver(1) | format(1) | plen(u32 be) | payload(plen) | xxhash64(payload, u64 be)
func Encode(format byte, payload []byte) []byte {
	var buf bytes.Buffer
	buf.Grow(hdrLen + len(payload) + sumLen)

	buf.Write(magic4[:])
	buf.WriteByte(version)
	buf.WriteByte(format)

	var u4 [4]byte
	binary.BigEndian.PutUint32(u4[:], uint32(len(payload)))
	buf.Write(u4[:])

	buf.Write(payload)

	var u8 [8]byte
	binary.BigEndian.PutUint64(u8[:], xxhash.Sum64(payload))
	buf.Write(u8[:])
	return buf.Bytes()
}

// Decode returns the format byte and payload of a frame. The payload aliases b.
func Decode(b []byte) (format byte, payload []byte, err error) {
	if len(b) < hdrLen+sumLen || !hasMagic(b) || b[4] != version {
		return 0, nil, ErrCorrupt
	}
	format = b[5]
	off := 6

	plen := int(binary.BigEndian.Uint32(b[off : off+4]))
	off += 4
	// exact fit: no trailing bytes
	if plen < 0 || plen != len(b)-off-sumLen {
		return 0, nil, ErrCorrupt
	}
	payload = b[off : off+plen]
	off += plen

	if binary.BigEndian.Uint64(b[off:]) != xxhash.Sum64(payload) {
		return 0, nil, ErrCorrupt
	}
	return format, payload, nil
}
