// Package buffer implements helpers to write and read fixed-size values
// to and from writers and readers that expose their internal buffers.
// Keys, ciphertexts and parameters are serialized through these helpers.
package buffer

import (
	"fmt"
	"io"
)

// Writer is an interface for writers that expose their internal
// buffers.
// This interface is notably implemented by the bufio.Writer type
// (see https://pkg.go.dev/bufio#Writer) and by the Buffer type.
type Writer interface {
	io.Writer
	Flush() (err error)
	AvailableBuffer() []byte
	Available() int
}

// Reader is an interface for readers that can look ahead without
// consuming, such as the bufio.Reader type and the Buffer type.
type Reader interface {
	io.Reader
	Peek(n int) ([]byte, error)
}

// Buffer is a fixed-size []byte backed implementation of both the
// Writer and the Reader interfaces. Writes past its capacity fail
// instead of growing the backing slice.
type Buffer struct {
	buf []byte
	n   int
	off int
}

// NewBuffer creates a new Buffer over buff. Reads start at buff[0], and
// so do writes, which overwrite the content of buff.
func NewBuffer(buff []byte) *Buffer {
	return &Buffer{buf: buff}
}

// NewBufferSize creates a new Buffer with size capacity.
func NewBufferSize(size int) *Buffer {
	return &Buffer{buf: make([]byte, size)}
}

// Write copies p at the write offset of b. It returns an error if p does
// not fit in the remaining capacity.
func (b *Buffer) Write(p []byte) (n int, err error) {
	if len(p)+b.n > len(b.buf) {
		return 0, fmt.Errorf("buffer too small: cannot write %d bytes, only %d available", len(p), b.Available())
	}
	// copy is a no-op when p was obtained from AvailableBuffer.
	n = copy(b.buf[b.n:], p)
	b.n += n
	return n, nil
}

// Flush is a no-op.
func (b *Buffer) Flush() (err error) {
	return nil
}

// AvailableBuffer returns an empty slice with b.Available() capacity,
// sharing the backing array of b. It is only valid until the next write.
func (b *Buffer) AvailableBuffer() []byte {
	return b.buf[b.n:][:0]
}

// Available returns the number of bytes that can still be written.
func (b *Buffer) Available() int {
	return len(b.buf) - b.n
}

// Bytes returns the backing slice.
func (b *Buffer) Bytes() []byte {
	return b.buf
}

// Read copies bytes from the read offset of b into p. It returns io.EOF
// if fewer than len(p) bytes were left.
func (b *Buffer) Read(p []byte) (n int, err error) {
	n = copy(p, b.buf[b.off:])
	b.off += n
	if n < len(p) {
		return n, io.EOF
	}
	return n, nil
}

// Peek returns the next n bytes without advancing the read offset.
func (b *Buffer) Peek(n int) ([]byte, error) {
	if b.off+n > len(b.buf) {
		return b.buf[b.off:], io.EOF
	}
	return b.buf[b.off : b.off+n], nil
}
