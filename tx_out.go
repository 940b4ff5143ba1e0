package segwit

import (
	"io"

	"github.com/btcsuite/btcd/txscript"
	"github.com/pkg/errors"
)

// TxOut is a transaction output. Outputs carry no witness, but a
// witness program in ScriptPubKey decides what the witness of the
// spending input has to look like.
type TxOut struct {
	Value        int64 // in Satoshis
	ScriptPubKey []byte
}

func NewTxOut(value int64, scriptPubKey []byte) *TxOut {
	return &TxOut{Value: value, ScriptPubKey: scriptPubKey}
}

func (tout *TxOut) Size() int {
	return 8 + VarIntSize(uint64(len(tout.ScriptPubKey))) + len(tout.ScriptPubKey)
}

// IsWitness reports whether the output pays to a witness program,
// i.e. is spent with a witness and an empty scriptSig.
func (tout *TxOut) IsWitness() bool {
	return txscript.IsWitnessProgram(tout.ScriptPubKey)
}

// WitnessProgram returns the witness version and program of the
// output. ok is false for anything but a witness program.
func (tout *TxOut) WitnessProgram() (version int, program []byte, ok bool) {
	if !tout.IsWitness() {
		return 0, nil, false
	}
	version, program, err := txscript.ExtractWitnessProgramInfo(tout.ScriptPubKey)
	if err != nil {
		return 0, nil, false
	}
	return version, program, true
}

func (tout *TxOut) BinRead(r io.Reader) (err error) {
	if err = BinRead(&tout.Value, r); err != nil {
		return err
	}
	tout.ScriptPubKey, err = ReadBytes(r)
	return err
}

func (tout *TxOut) BinWrite(w io.Writer) (err error) {
	if err = BinWrite(tout.Value, w); err != nil {
		return err
	}
	return WriteBytes(tout.ScriptPubKey, w)
}

type TxOutList []*TxOut

func (touts *TxOutList) BinRead(r io.Reader) error {
	*touts = (*touts)[:0]
	return readList(r, func(r io.Reader) error {
		txout := new(TxOut)
		if err := txout.BinRead(r); err != nil {
			return errors.Wrapf(err, "output %d", len(*touts))
		}
		*touts = append(*touts, txout)
		return nil
	})
}

func (touts *TxOutList) BinWrite(w io.Writer) error {
	return writeList(w, len(*touts), func(w io.Writer, i int) error {
		return (*touts)[i].BinWrite(w)
	})
}

func (touts *TxOutList) Size() int {
	result := VarIntSize(uint64(len(*touts)))
	for _, t := range *touts {
		result += t.Size()
	}
	return result
}

// WitnessOutputs returns the indices of the outputs paying to a
// witness program.
func (touts TxOutList) WitnessOutputs() []int {
	var result []int
	for i, t := range touts {
		if t.IsWitness() {
			result = append(result, i)
		}
	}
	return result
}
