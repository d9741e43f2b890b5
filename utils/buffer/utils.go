package buffer

import (
	"bytes"
	"encoding"
	"io"
	"reflect"
	"testing"

	"github.com/stretchr/testify/require"
)

// binarySerializer is the interface implemented by the serializable
// objects of this module.
type binarySerializer interface {
	io.WriterTo
	io.ReaderFrom
	encoding.BinaryMarshaler
	encoding.BinaryUnmarshaler
	BinarySize() int
}

// RequireSerializerCorrect checks that input correctly implements the
// serialization methods: it writes and reads input with both the []byte
// and the io.Writer/io.Reader interfaces, using a [Buffer] and a
// [bytes.Buffer], and checks that the results are equal to input and
// that all the reported sizes agree with BinarySize.
//
// T must be a pointer type, whose zero pointed value is a valid receiver
// for the read methods. This is for example not the case of keys and
// ciphertexts that carry their parameters: use [RequireSerializerCorrectWith]
// for those. Objects with an Equal(T) bool method are compared with it.
func RequireSerializerCorrect[T binarySerializer](t *testing.T, input T) {
	RequireSerializerCorrectWith(t, input, func() T {
		return reflect.New(reflect.TypeOf(input).Elem()).Interface().(T)
	})
}

func requireEqual[T any](t *testing.T, want, have T, msg string) {
	if eq, ok := any(want).(interface{ Equal(T) bool }); ok {
		require.True(t, eq.Equal(have), msg)
		return
	}
	require.Equal(t, want, have, msg)
}

// RequireSerializerCorrectWith is [RequireSerializerCorrect] reading into
// fresh receivers returned by newObject.
func RequireSerializerCorrectWith[T binarySerializer](t *testing.T, input T, newObject func() T) {

	size := input.BinarySize()

	// Buffer
	buf := NewBufferSize(size)

	n, err := input.WriteTo(buf)
	require.NoError(t, err)
	require.Equal(t, int64(size), n, "WriteTo: number of bytes written does not match BinarySize")
	require.Equal(t, 0, buf.Available(), "WriteTo: buffer not entirely written")

	output := newObject()
	n, err = output.ReadFrom(NewBuffer(buf.Bytes()))
	require.NoError(t, err)
	require.Equal(t, int64(size), n, "ReadFrom: number of bytes read does not match BinarySize")
	requireEqual(t, input, output, "ReadFrom: object read differs from object written")

	// bytes.Buffer, wrapped by bufio
	var stream bytes.Buffer

	n, err = input.WriteTo(&stream)
	require.NoError(t, err)
	require.Equal(t, int64(size), n)
	require.Equal(t, buf.Bytes(), stream.Bytes(), "WriteTo: bufio output differs from Buffer output")

	output = newObject()
	n, err = output.ReadFrom(&stream)
	require.NoError(t, err)
	require.Equal(t, int64(size), n)
	requireEqual(t, input, output, "ReadFrom: object read from bufio differs from object written")

	// MarshalBinary/UnmarshalBinary
	data, err := input.MarshalBinary()
	require.NoError(t, err)
	require.Equal(t, size, len(data), "MarshalBinary: size does not match BinarySize")
	require.Equal(t, buf.Bytes(), data, "MarshalBinary: output differs from WriteTo")

	output = newObject()
	require.NoError(t, output.UnmarshalBinary(data))
	requireEqual(t, input, output, "UnmarshalBinary: object read differs from object written")
}
