package main

import (
	"bytes"
	"encoding/hex"
	"encoding/json"
	"testing"

	"github.com/blkchain/segwit"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/wire"
	"github.com/stretchr/testify/require"
)

func testTxHex(t *testing.T) string {
	mtx := wire.NewMsgTx(2)
	mtx.AddTxIn(wire.NewTxIn(wire.NewOutPoint(&chainhash.Hash{0x01}, 0), nil,
		wire.TxWitness{{}, bytes.Repeat([]byte{0x30}, 80), {0x51, 0xae}}))
	mtx.AddTxOut(wire.NewTxOut(1000, []byte{0x6a}))
	var buf bytes.Buffer
	require.NoError(t, mtx.Serialize(&buf))
	return hex.EncodeToString(buf.Bytes())
}

func TestDecodeHexTx(t *testing.T) {
	s := testTxHex(t)

	tx, err := decodeHexTx(" "+s+"\n", nil)
	require.NoError(t, err)
	require.Equal(t, 3, tx.TxIns[0].Witness.Len())

	_, err = decodeHexTx(s+"00", nil)
	require.Error(t, err)

	_, err = decodeHexTx(s[:len(s)-20], nil)
	require.ErrorIs(t, err, segwit.ErrTruncated)

	_, err = decodeHexTx(s, []segwit.StackCheck{segwit.MaxItemCount(2)})
	require.ErrorIs(t, err, segwit.ErrMalformed)
}

func TestPrintWitnesses(t *testing.T) {
	tx, err := decodeHexTx(testTxHex(t), nil)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, printWitnesses(&buf, []*segwit.Tx{tx}))

	var out struct {
		TxId          string   `json:"txid"`
		N             uint32   `json:"n"`
		Kind          string   `json:"kind"`
		Items         []string `json:"items"`
		ScriptSig     string   `json:"scriptsig"`
		WitnessScript string   `json:"witness_script"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &out))
	require.Equal(t, tx.Hash().String(), out.TxId)
	require.Equal(t, "scriptpath", out.Kind)
	require.Equal(t, []string{"", hex.EncodeToString(bytes.Repeat([]byte{0x30}, 80)), "51ae"}, out.Items)
	require.Equal(t, hex.EncodeToString(tx.TxIns[0].Witness.ScriptSig()), out.ScriptSig)
	require.Equal(t, "51ae", out.WitnessScript)
}
