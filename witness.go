package segwit

import (
	"bytes"
	"io"

	"github.com/pkg/errors"
)

type WitnessItem []byte

func (wi WitnessItem) Size() int {
	return VarIntSize(uint64(len(wi))) + len(wi)
}

// WitnessStack is the segregated witness of a single transaction
// input. On the wire it is a varint item count followed by that many
// varint-prefixed items.
//
// The owner is the id of the parent transaction. It is only a
// reference, the stack never looks at the transaction itself.
type WitnessStack struct {
	owner Uint256
	index uint32
	items []WitnessItem
}

// NewWitnessStack returns an empty stack for input index of owner,
// to be filled in with Push.
func NewWitnessStack(owner Uint256, index uint32) *WitnessStack {
	return &WitnessStack{
		owner: owner,
		index: index,
		items: make([]WitnessItem, 0, 2),
	}
}

// ReadWitnessStack decodes a stack from r. Any checks are run after
// the items are read; on error no stack is returned.
func ReadWitnessStack(owner Uint256, index uint32, r io.Reader, checks ...StackCheck) (*WitnessStack, error) {
	ws := &WitnessStack{owner: owner, index: index}
	if err := ws.BinRead(r); err != nil {
		return nil, err
	}
	for _, check := range checks {
		if err := check(ws); err != nil {
			return nil, err
		}
	}
	return ws, nil
}

// BinRead replaces the items of ws with those read from r. On error
// ws is left as it was.
func (ws *WitnessStack) BinRead(r io.Reader) error {
	count, err := ReadVarInt(r)
	if err != nil {
		return errors.Wrapf(err, "input %d: witness item count", ws.index)
	}

	alloc := count
	if alloc > 64 {
		alloc = 64
	}
	items := make([]WitnessItem, 0, int(alloc))
	for i := uint64(0); i < count; i++ {
		item, err := ReadBytes(r)
		if err != nil {
			return errors.Wrapf(err, "input %d: witness item %d of %d", ws.index, i, count)
		}
		items = append(items, item)
	}

	log.Tracef("Read witness for input %d of %v: %d items", ws.index, ws.owner, len(items))
	ws.items = items
	return nil
}

func (ws *WitnessStack) BinWrite(w io.Writer) error {
	return writeList(w, len(ws.items), func(w io.Writer, i int) error {
		return WriteBytes(ws.items[i], w)
	})
}

// Bytes returns the wire encoding of ws.
func (ws *WitnessStack) Bytes() []byte {
	buf := bytes.NewBuffer(make([]byte, 0, ws.Size()))
	// bytes.Buffer writes do not fail
	ws.BinWrite(buf)
	return buf.Bytes()
}

// Size is the exact length of the wire encoding.
func (ws *WitnessStack) Size() int {
	result := VarIntSize(uint64(len(ws.items)))
	for _, item := range ws.items {
		result += item.Size()
	}
	return result
}

// Push appends item to the top of the stack.
func (ws *WitnessStack) Push(item []byte) {
	ws.items = append(ws.items, item)
}

// Items returns the items in wire order. The slice is shared with
// ws and must not be modified.
func (ws *WitnessStack) Items() []WitnessItem {
	return ws.items
}

func (ws *WitnessStack) Len() int {
	return len(ws.items)
}

func (ws *WitnessStack) Owner() Uint256 {
	return ws.owner
}

func (ws *WitnessStack) InputIndex() uint32 {
	return ws.index
}
