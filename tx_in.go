package segwit

import "io"

type OutPoint struct {
	Hash Uint256
	N    uint32
}

type TxIn struct {
	PrevOut   OutPoint
	ScriptSig []byte
	Sequence  uint32
	Witness   *WitnessStack
}

func (tin *TxIn) BaseSize() int {
	outpoint := 32 + 4
	scriptsig := VarIntSize(uint64(len(tin.ScriptSig))) + len(tin.ScriptSig)
	sequence := 4
	return outpoint + scriptsig + sequence
}

// Size includes the witness when the enclosing transaction is
// serialized with witness data.
func (tin *TxIn) Size(segwit bool) int {
	if !segwit {
		return tin.BaseSize()
	}
	if tin.Witness == nil {
		return tin.BaseSize() + VarIntSize(0)
	}
	return tin.BaseSize() + tin.Witness.Size()
}

// Note that the witness is not read here, it comes after all the
// outputs.
func (tin *TxIn) BinRead(r io.Reader) (err error) {
	if err = BinRead(&tin.PrevOut, r); err != nil {
		return err
	}
	if tin.ScriptSig, err = ReadBytes(r); err != nil {
		return err
	}
	if err = BinRead(&tin.Sequence, r); err != nil {
		return err
	}
	return nil
}

func (tin *TxIn) BinWrite(w io.Writer) (err error) {
	if err = BinWrite(tin.PrevOut, w); err != nil {
		return err
	}
	if err = WriteBytes(tin.ScriptSig, w); err != nil {
		return err
	}
	if err = BinWrite(tin.Sequence, w); err != nil {
		return err
	}
	return nil
}

type TxInList []*TxIn

func (tins *TxInList) BinRead(r io.Reader) error {
	*tins = (*tins)[:0]
	return readList(r, func(r io.Reader) error {
		var txin TxIn
		if err := BinRead(&txin, r); err != nil {
			return err
		}
		*tins = append(*tins, &txin)
		return nil
	})
}

func (tins *TxInList) BinWrite(w io.Writer) error {
	return writeList(w, len(*tins), func(w io.Writer, i int) error {
		return BinWrite((*tins)[i], w)
	})
}

func (tins *TxInList) BaseSize() int {
	result := VarIntSize(uint64(len(*tins)))
	for _, t := range *tins {
		result += t.BaseSize()
	}
	return result
}

func (tins *TxInList) Size(segwit bool) int {
	result := VarIntSize(uint64(len(*tins)))
	for _, t := range *tins {
		result += t.Size(segwit)
	}
	return result
}
