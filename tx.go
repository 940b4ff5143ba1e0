package segwit

import (
	"bytes"
	"fmt"
	"io"

	"github.com/pkg/errors"
)

type Tx struct {
	Version  uint32
	TxIns    TxInList
	TxOuts   TxOutList
	LockTime uint32
	SegWit   bool
}

// Hash is the txid, computed without the marker, flag and witness
// data, so it does not change as witnesses are filled in.
func (tx *Tx) Hash() Uint256 {
	buf := new(bytes.Buffer)
	tx.binWriteWithoutWitness(buf)
	return ShaSha256(buf.Bytes())
}

// WitnessHash is the wtxid. For a transaction without witness data
// it equals Hash.
func (tx *Tx) WitnessHash() Uint256 {
	if !tx.SegWit {
		return tx.Hash()
	}
	buf := bytes.NewBuffer(make([]byte, 0, tx.Size()))
	tx.BinWrite(buf)
	return ShaSha256(buf.Bytes())
}

func (tx *Tx) BaseSize() int {
	if !tx.SegWit {
		return tx.Size()
	}
	version, locktime := 4, 4
	return version + tx.TxIns.BaseSize() + tx.TxOuts.Size() + locktime
}

func (tx *Tx) Size() int {
	version, locktime, segwit := 4, 4, 0
	if tx.SegWit {
		segwit = 2 // marker+flag
	}
	return version + segwit + tx.TxIns.Size(tx.SegWit) + tx.TxOuts.Size() + locktime
}

func (tx *Tx) Weight() int {
	return tx.BaseSize()*3 + tx.Size()
}

func (tx *Tx) VirtualSize() int {
	const witnessScaleFactor = 4
	return (tx.Weight() + witnessScaleFactor - 1) / witnessScaleFactor
}

// NewWitness attaches an empty witness stack to input i and marks
// the transaction as segwit. Any existing witness of that input is
// replaced.
func (tx *Tx) NewWitness(i int) (*WitnessStack, error) {
	if i < 0 || i >= len(tx.TxIns) {
		return nil, fmt.Errorf("Input index %d out of range (%d inputs)", i, len(tx.TxIns))
	}
	ws := NewWitnessStack(tx.Hash(), uint32(i))
	tx.TxIns[i].Witness = ws
	tx.SegWit = true
	return ws, nil
}

// Witnesses returns the witness stack of every input, nil for inputs
// without one.
func (tx *Tx) Witnesses() []*WitnessStack {
	result := make([]*WitnessStack, len(tx.TxIns))
	for i, txin := range tx.TxIns {
		result[i] = txin.Witness
	}
	return result
}

func (tx *Tx) BinRead(r io.Reader) error {
	return tx.ReadWithChecks(r)
}

// ReadWithChecks decodes a transaction, running checks against
// every witness stack read.
func (tx *Tx) ReadWithChecks(r io.Reader, checks ...StackCheck) (err error) {
	var segwit bool

	if err = BinRead(&tx.Version, r); err != nil {
		return err
	}

	if err = BinRead(&tx.TxIns, r); err != nil {
		return err
	}

	if len(tx.TxIns) == 0 { // SegWit marker

		var flag [1]byte
		if _, err = io.ReadFull(r, flag[:]); err != nil {
			return truncated(err)
		}
		if flag[0] != 1 {
			return errors.Wrapf(ErrMalformed, "invalid SegWit flag: %d", flag[0])
		}

		if err = BinRead(&tx.TxIns, r); err != nil { // Read txins again
			return err
		}
		segwit = true
	}

	if err = BinRead(&tx.TxOuts, r); err != nil {
		return err
	}

	if segwit {
		for i, txin := range tx.TxIns {
			// owner is set below, once the txid is known
			ws, err := ReadWitnessStack(Uint256{}, uint32(i), r, checks...)
			if err != nil {
				return err
			}
			txin.Witness = ws
		}
		tx.SegWit = true
	}

	if err = BinRead(&tx.LockTime, r); err != nil {
		return err
	}

	if segwit {
		hash := tx.Hash()
		for _, txin := range tx.TxIns {
			txin.Witness.owner = hash
		}
	}

	return nil
}

func (tx *Tx) BinWrite(w io.Writer) (err error) {
	if err = BinWrite(tx.Version, w); err != nil {
		return err
	}
	if tx.SegWit {
		if _, err = w.Write([]byte{0x00, 0x01}); err != nil {
			return err
		}
	}
	if err = BinWrite(&tx.TxIns, w); err != nil {
		return err
	}
	if err = BinWrite(&tx.TxOuts, w); err != nil {
		return err
	}
	if tx.SegWit {
		for _, txin := range tx.TxIns {
			if txin.Witness == nil {
				// an input without witness is an empty stack
				if err = WriteVarInt(0, w); err != nil {
					return err
				}
				continue
			}
			if err = BinWrite(txin.Witness, w); err != nil {
				return err
			}
		}
	}
	if err = BinWrite(tx.LockTime, w); err != nil {
		return err
	}
	return nil
}

// Bytes returns the full encoding, with witness data if any.
func (tx *Tx) Bytes() []byte {
	buf := bytes.NewBuffer(make([]byte, 0, tx.Size()))
	tx.BinWrite(buf)
	return buf.Bytes()
}

func (tx *Tx) binWriteWithoutWitness(w io.Writer) (err error) {
	// This is for computing the txid, it is the transaction without
	// the segwit marker and without the witness data.
	if err = BinWrite(tx.Version, w); err != nil {
		return err
	}
	if err = BinWrite(&tx.TxIns, w); err != nil {
		return err
	}
	if err = BinWrite(&tx.TxOuts, w); err != nil {
		return err
	}
	if err = BinWrite(tx.LockTime, w); err != nil {
		return err
	}
	return nil
}
