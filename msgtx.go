package segwit

import (
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/wire"
)

// TxFromMsgTx converts a btcd transaction. Witness items are shared
// with mtx, not copied.
func TxFromMsgTx(mtx *wire.MsgTx) *Tx {
	tx := &Tx{
		Version:  uint32(mtx.Version),
		TxIns:    make(TxInList, 0, len(mtx.TxIn)),
		TxOuts:   make(TxOutList, 0, len(mtx.TxOut)),
		LockTime: mtx.LockTime,
		SegWit:   mtx.HasWitness(),
	}
	for _, in := range mtx.TxIn {
		tx.TxIns = append(tx.TxIns, &TxIn{
			PrevOut: OutPoint{
				Hash: Uint256(in.PreviousOutPoint.Hash),
				N:    in.PreviousOutPoint.Index,
			},
			ScriptSig: in.SignatureScript,
			Sequence:  in.Sequence,
		})
	}
	for _, out := range mtx.TxOut {
		tx.TxOuts = append(tx.TxOuts, &TxOut{
			Value:        out.Value,
			ScriptPubKey: out.PkScript,
		})
	}

	if tx.SegWit {
		hash := tx.Hash()
		for i, in := range mtx.TxIn {
			ws := NewWitnessStack(hash, uint32(i))
			for _, item := range in.Witness {
				ws.Push(item)
			}
			tx.TxIns[i].Witness = ws
		}
	}
	return tx
}

// MsgTx converts tx to its btcd form.
func (tx *Tx) MsgTx() *wire.MsgTx {
	mtx := wire.NewMsgTx(int32(tx.Version))
	mtx.LockTime = tx.LockTime
	for _, in := range tx.TxIns {
		txin := wire.NewTxIn(wire.NewOutPoint((*chainhash.Hash)(&in.PrevOut.Hash), in.PrevOut.N), in.ScriptSig, nil)
		txin.Sequence = in.Sequence
		if tx.SegWit && in.Witness != nil {
			txin.Witness = make(wire.TxWitness, 0, in.Witness.Len())
			for _, item := range in.Witness.Items() {
				txin.Witness = append(txin.Witness, item)
			}
		}
		mtx.AddTxIn(txin)
	}
	for _, out := range tx.TxOuts {
		mtx.AddTxOut(wire.NewTxOut(out.Value, out.ScriptPubKey))
	}
	return mtx
}
