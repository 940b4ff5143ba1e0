package segwit

import (
	"encoding/binary"
	"fmt"

	"github.com/btcsuite/btcd/txscript"
	"github.com/pkg/errors"
)

// pushHeaderSize is the size of the push opcode plus length field
// needed to push l bytes.
func pushHeaderSize(l int) int {
	switch {
	case l < txscript.OP_PUSHDATA1:
		return 1
	case l <= 0xff:
		return 2
	case l <= 0xffff:
		return 3
	}
	return 5
}

// putPushHeader writes the push header for l bytes at the start of b
// and returns the number of bytes written.
func putPushHeader(b []byte, l int) int {
	switch {
	case l < txscript.OP_PUSHDATA1:
		b[0] = byte(l)
		return 1
	case l <= 0xff:
		b[0] = txscript.OP_PUSHDATA1
		b[1] = byte(l)
		return 2
	case l <= 0xffff:
		b[0] = txscript.OP_PUSHDATA2
		binary.LittleEndian.PutUint16(b[1:], uint16(l))
		return 3
	}
	b[0] = txscript.OP_PUSHDATA4
	binary.LittleEndian.PutUint32(b[1:], uint32(l))
	return 5
}

func scriptSigSize(items []WitnessItem) int {
	size := 0
	for _, item := range items {
		size += pushHeaderSize(len(item)) + len(item)
	}
	return size
}

// ScriptSig builds the push-only signature script that pushes the
// witness items in order, i.e. what a legacy input would carry for
// the same data. Push opcodes are chosen by length only, so minimal
// encodings like OP_1 are never used.
func (ws *WitnessStack) ScriptSig() []byte {
	size := scriptSigSize(ws.items)
	script := make([]byte, size)

	offset := 0
	for _, item := range ws.items {
		offset += putPushHeader(script[offset:], len(item))
		offset += copy(script[offset:], item)
	}
	if offset != size {
		panic(fmt.Sprintf("scriptSig sized %d, wrote %d", size, offset))
	}
	return script
}

// ParseScriptSig splits a push-only script back into a witness stack.
// Anything other than a data push is ErrMalformed.
func ParseScriptSig(owner Uint256, index uint32, script []byte) (*WitnessStack, error) {
	ws := NewWitnessStack(owner, index)
	tokenizer := txscript.MakeScriptTokenizer(0, script)
	for tokenizer.Next() {
		op := tokenizer.Opcode()
		if op > txscript.OP_PUSHDATA4 {
			return nil, errors.Wrapf(ErrMalformed, "opcode 0x%02x at %d is not a data push", op, tokenizer.ByteIndex())
		}
		ws.Push(append([]byte{}, tokenizer.Data()...))
	}
	if err := tokenizer.Err(); err != nil {
		return nil, errors.Wrap(ErrMalformed, err.Error())
	}
	return ws, nil
}
