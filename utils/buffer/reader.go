package buffer

import (
	"encoding/binary"
	"fmt"
	"io"
)

// ReadUint8 reads a byte from r and stores it in c.
func ReadUint8(r Reader, c *uint8) (n int64, err error) {

	if c == nil {
		return 0, fmt.Errorf("cannot ReadUint8: c is nil")
	}

	var bb = [1]byte{}

	if n, err = ReadUint8Slice(r, bb[:]); err != nil {
		return
	}

	*c = bb[0]

	return
}

// ReadUint16 reads a little-endian uint16 from r and stores it in c.
func ReadUint16(r Reader, c *uint16) (n int64, err error) {

	if c == nil {
		return 0, fmt.Errorf("cannot ReadUint16: c is nil")
	}

	var bb = [2]byte{}

	if n, err = ReadUint8Slice(r, bb[:]); err != nil {
		return
	}

	*c = binary.LittleEndian.Uint16(bb[:])

	return
}

// ReadUint32 reads a little-endian uint32 from r and stores it in c.
func ReadUint32(r Reader, c *uint32) (n int64, err error) {

	if c == nil {
		return 0, fmt.Errorf("cannot ReadUint32: c is nil")
	}

	var bb = [4]byte{}

	if n, err = ReadUint8Slice(r, bb[:]); err != nil {
		return
	}

	*c = binary.LittleEndian.Uint32(bb[:])

	return
}

// ReadUint8Slice reads exactly len(c) bytes from r into c.
// It returns io.ErrUnexpectedEOF if r holds fewer bytes.
func ReadUint8Slice(r Reader, c []uint8) (n int64, err error) {
	nint, err := io.ReadFull(r, c)
	return int64(nint), err
}
