package buffer

import (
	"encoding/binary"
	"fmt"
)

// reserve returns a slice of size bytes of the available buffer of w,
// flushing w first if it has not enough room left.
func reserve(w Writer, size int, op string) ([]byte, error) {

	if w.Available() < size {
		if err := w.Flush(); err != nil {
			return nil, err
		}

		if w.Available() < size {
			return nil, fmt.Errorf("cannot %s: available buffer is smaller than %d even after flush", op, size)
		}
	}

	return w.AvailableBuffer()[:size], nil
}

// WriteUint8 writes a byte c to w.
func WriteUint8(w Writer, c uint8) (n int64, err error) {

	buf, err := reserve(w, 1, "WriteUint8")
	if err != nil {
		return 0, err
	}

	buf[0] = c

	nint, err := w.Write(buf)

	return int64(nint), err
}

// WriteUint16 writes a uint16 c to w.
func WriteUint16(w Writer, c uint16) (n int64, err error) {

	buf, err := reserve(w, 2, "WriteUint16")
	if err != nil {
		return 0, err
	}

	binary.LittleEndian.PutUint16(buf, c)

	nint, err := w.Write(buf)

	return int64(nint), err
}

// WriteUint32 writes a uint32 c to w.
func WriteUint32(w Writer, c uint32) (n int64, err error) {

	buf, err := reserve(w, 4, "WriteUint32")
	if err != nil {
		return 0, err
	}

	binary.LittleEndian.PutUint32(buf, c)

	nint, err := w.Write(buf)

	return int64(nint), err
}

// WriteUint8Slice writes a slice of bytes c to w, flushing w as many
// times as needed.
func WriteUint8Slice(w Writer, c []uint8) (n int64, err error) {

	for len(c) > 0 {

		available := w.Available()

		if available == 0 {

			if err = w.Flush(); err != nil {
				return
			}

			if available = w.Available(); available == 0 {
				return n, fmt.Errorf("cannot WriteUint8Slice: available buffer is zero even after flush")
			}
		}

		chunk := min(available, len(c))

		buf := append(w.AvailableBuffer(), c[:chunk]...)

		var inc int
		if inc, err = w.Write(buf); err != nil {
			return n + int64(inc), err
		}

		n += int64(inc)
		c = c[chunk:]
	}

	return
}
