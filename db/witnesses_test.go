package db

import (
	"bytes"
	"os"
	"testing"

	"github.com/blkchain/segwit"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/wire"
	"github.com/stretchr/testify/require"
)

func testTx() *segwit.Tx {
	mtx := wire.NewMsgTx(2)
	mtx.AddTxIn(wire.NewTxIn(wire.NewOutPoint(&chainhash.Hash{0x07}, 0), nil,
		wire.TxWitness{{}, bytes.Repeat([]byte{0x30}, 71), {0x51, 0xae}}))
	mtx.AddTxIn(wire.NewTxIn(wire.NewOutPoint(&chainhash.Hash{0x08}, 2), []byte{0x00}, nil))
	mtx.AddTxOut(wire.NewTxOut(5000, []byte{0x00, 0x20}))
	return segwit.TxFromMsgTx(mtx)
}

func TestWitnessRow(t *testing.T) {
	tx := testTx()
	ws := tx.TxIns[0].Witness

	r := rowFromStack(ws)
	require.Equal(t, int32(0), r.N)
	require.Equal(t, 3, r.Items)
	require.Equal(t, "scriptpath", r.Kind)
	require.Equal(t, ws.ScriptSig(), r.ScriptSig)

	got, err := r.stack()
	require.NoError(t, err)
	require.Equal(t, tx.Hash(), got.Owner())
	require.Equal(t, ws.Items(), got.Items())

	r.TxId = r.TxId[:10]
	_, err = r.stack()
	require.Error(t, err)
}

// Needs a scratch database, e.g.
// SEGWIT_PG_CONNSTR="host=/var/run/postgresql dbname=segwit_test sslmode=disable"
func TestWitnessDB(t *testing.T) {
	connstr := os.Getenv("SEGWIT_PG_CONNSTR")
	if connstr == "" {
		t.Skip("SEGWIT_PG_CONNSTR not set")
	}

	w, err := NewWitnessDB(Config{ConnectString: connstr})
	require.NoError(t, err)
	defer w.Close()

	tx := testTx()
	h := tx.Hash()
	_, err = w.db.Exec("DELETE FROM witnesses WHERE txid = $1", h[:])
	require.NoError(t, err)

	require.NoError(t, w.WriteTx(tx))
	require.NoError(t, w.WriteTx(tx)) // duplicates are ignored

	ws, err := w.SelectWitness(tx.Hash(), 0)
	require.NoError(t, err)
	require.Equal(t, tx.TxIns[0].Witness.Bytes(), ws.Bytes())

	// input 1 has an empty witness, it is stored too
	all, err := w.SelectTxWitnesses(tx.Hash())
	require.NoError(t, err)
	require.Len(t, all, 2)
	require.Equal(t, 0, all[1].Len())

	_, err = w.SelectWitness(tx.Hash(), 5)
	require.ErrorIs(t, err, ErrNotFound)

	counts, err := w.CountByKind()
	require.NoError(t, err)
	require.True(t, counts["scriptpath"] >= 1)

	// bulk load of a tx not seen before
	mtx := tx.MsgTx()
	mtx.LockTime = 12345
	bulk := segwit.TxFromMsgTx(mtx)
	bh := bulk.Hash()
	_, err = w.db.Exec("DELETE FROM witnesses WHERE txid = $1", bh[:])
	require.NoError(t, err)

	require.NoError(t, w.CopyTxs([]*segwit.Tx{bulk}))
	all, err = w.SelectTxWitnesses(bulk.Hash())
	require.NoError(t, err)
	require.Len(t, all, 2)
	require.Equal(t, bulk.TxIns[0].Witness.Bytes(), all[0].Bytes())
	require.Equal(t, bulk.Hash(), all[0].Owner())

	// COPY does not skip duplicates, and nothing of a failed copy remains
	require.Error(t, w.CopyTxs([]*segwit.Tx{tx, bulk}))
	all, err = w.SelectTxWitnesses(bulk.Hash())
	require.NoError(t, err)
	require.Len(t, all, 2)
}
