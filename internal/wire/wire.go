package wire

import (
	"bytes"
	"encoding/binary"
	"errors"
)

const (
	version  byte = 1
	kindPage byte = 1
)

var (
	ErrCorrupt = errors.New("pagecache: corrupt entry")
	magic4     = [...]byte{'P', 'S', 'W', 'R'}
)

func hasMagic(b []byte) bool {
	return len(b) >= 4 && bytes.Equal(b[:4], magic4[:])
}

// Page: magic(4) | ver(1) | kind(1=page) | index(u32 be) | vlen(u32 be) | payload(vlen)
//
// The page index is recorded so readers can detect a slot written for a
// different position in the sequence (an impure key loader can alias keys).
// Framing is strict: trailing bytes make the entry corrupt.
func EncodePage(index uint32, payload []byte) []byte {
	var buf bytes.Buffer
	buf.Grow(4 + 1 + 1 + 4 + 4 + len(payload))

	buf.Write(magic4[:])
	buf.WriteByte(version)
	buf.WriteByte(kindPage)

	var u4 [4]byte

	binary.BigEndian.PutUint32(u4[:], index)
	buf.Write(u4[:])

	binary.BigEndian.PutUint32(u4[:], uint32(len(payload)))
	buf.Write(u4[:])

	buf.Write(payload)
	return buf.Bytes()
}

func DecodePage(b []byte) (index uint32, payload []byte, err error) {
	const hdr = 4 + 1 + 1 + 4 + 4
	if len(b) < hdr || !hasMagic(b) || b[4] != version || b[5] != kindPage {
		return 0, nil, ErrCorrupt
	}

	off := 6

	index = binary.BigEndian.Uint32(b[off : off+4])
	off += 4

	vlen := int(binary.BigEndian.Uint32(b[off : off+4]))
	off += 4
	if vlen < 0 || vlen != len(b)-off { // strict: no trailing bytes
		return 0, nil, ErrCorrupt
	}

	return index, b[off : off+vlen], nil
}
