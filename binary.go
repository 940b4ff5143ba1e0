package segwit

import (
	"bytes"
	"encoding/binary"
	"io"
	"math"

	"github.com/pkg/errors"
)

type BinReader interface {
	BinRead(io.Reader) error
}
type BinWriter interface {
	BinWrite(io.Writer) error
}

// BinRead will see if BinReader interface is provided, otherwise it
// falls back to LittleEndian binary.Read.
func BinRead(s interface{}, r io.Reader) error {
	if br, ok := s.(BinReader); ok {
		return br.BinRead(r)
	}
	return truncated(binary.Read(r, binary.LittleEndian, s))
}

// Similar to BinRead, check for BinWriter, defer to binary.Write.
func BinWrite(s interface{}, w io.Writer) error {
	if bw, ok := s.(BinWriter); ok {
		return bw.BinWrite(w)
	}
	return binary.Write(w, binary.LittleEndian, s)
}

// truncated maps an exhausted reader onto ErrTruncated, anything
// else is returned as is.
func truncated(err error) error {
	if err == io.EOF || err == io.ErrUnexpectedEOF {
		return errors.WithStack(ErrTruncated)
	}
	return err
}

// ReadVarInt reads a Bitcoin CompactSize integer. A value encoded in
// more bytes than it needs is ErrMalformed, so whatever is accepted
// encodes back to the same bytes.
func ReadVarInt(r io.Reader) (uint64, error) {
	var buf [8]byte

	if _, err := io.ReadFull(r, buf[:1]); err != nil {
		return 0, truncated(err)
	}

	var n int
	switch buf[0] {
	case 0xfd:
		n = 2
	case 0xfe:
		n = 4
	case 0xff:
		n = 8
	default:
		return uint64(buf[0]), nil
	}
	if _, err := io.ReadFull(r, buf[:n]); err != nil {
		return 0, truncated(err)
	}

	var result uint64
	for i := 0; i < n; i++ {
		result |= uint64(buf[i]) << uint64(i*8)
	}
	if VarIntSize(result) != 1+n {
		return 0, errors.Wrapf(ErrMalformed, "non-canonical varint %#x with prefix %#x", result, buf[0])
	}
	return result, nil
}

func WriteVarInt(i uint64, w io.Writer) (err error) {
	var buf [9]byte
	switch {
	case i < 0xfd:
		buf[0] = byte(i)
		_, err = w.Write(buf[:1])
	case i <= math.MaxUint16:
		buf[0] = 0xfd
		binary.LittleEndian.PutUint16(buf[1:], uint16(i))
		_, err = w.Write(buf[:3])
	case i <= math.MaxUint32:
		buf[0] = 0xfe
		binary.LittleEndian.PutUint32(buf[1:], uint32(i))
		_, err = w.Write(buf[:5])
	default:
		buf[0] = 0xff
		binary.LittleEndian.PutUint64(buf[1:], i)
		_, err = w.Write(buf[:9])
	}
	return err
}

// VarIntSize is the number of bytes WriteVarInt produces for i.
func VarIntSize(i uint64) int {
	switch {
	case i < 0xfd:
		return 1
	case i <= math.MaxUint16:
		return 3
	case i <= math.MaxUint32:
		return 5
	}
	return 9
}

// Lengths up to this are allocated up front, larger ones grow as
// bytes actually arrive so a bogus header cannot force a huge
// allocation.
const maxPrealloc = 64 * 1024

// ReadBytes reads a varint length followed by that many bytes.
func ReadBytes(r io.Reader) ([]byte, error) {
	size, err := ReadVarInt(r)
	if err != nil {
		return nil, err
	}

	if size <= maxPrealloc {
		buf := make([]byte, int(size))
		if _, err = io.ReadFull(r, buf); err != nil {
			return nil, truncated(err)
		}
		return buf, nil
	}

	if size > math.MaxInt64 {
		return nil, errors.Wrapf(ErrTruncated, "length %d cannot be satisfied", size)
	}
	var buf bytes.Buffer
	n, err := io.CopyN(&buf, r, int64(size))
	if err != nil {
		if err == io.EOF {
			return nil, errors.Wrapf(ErrTruncated, "read %d of %d bytes", n, size)
		}
		return nil, err
	}
	return buf.Bytes(), nil
}

func WriteBytes(s []byte, w io.Writer) (err error) {
	if err = WriteVarInt(uint64(len(s)), w); err != nil {
		return err
	}
	_, err = w.Write(s)
	return err
}

func readList(r io.Reader, doRead func(io.Reader) error) error {
	size, err := ReadVarInt(r)
	if err != nil {
		return err
	}

	for i := uint64(0); i < size; i++ {
		if err = doRead(r); err != nil {
			return err
		}
	}
	return nil
}

func writeList(w io.Writer, size int, doWrite func(io.Writer, int) error) error {
	err := WriteVarInt(uint64(size), w)
	if err != nil {
		return err
	}

	for i := 0; i < size; i++ {
		if err = doWrite(w, i); err != nil {
			return err
		}
	}
	return nil
}
