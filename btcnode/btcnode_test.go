package btcnode

import (
	"testing"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/wire"
	"github.com/stretchr/testify/require"
)

func TestTxInvs(t *testing.T) {
	msg := wire.NewMsgInv()
	msg.AddInvVect(wire.NewInvVect(wire.InvTypeTx, &chainhash.Hash{0x01}))
	msg.AddInvVect(wire.NewInvVect(wire.InvTypeBlock, &chainhash.Hash{0x02}))
	msg.AddInvVect(wire.NewInvVect(wire.InvTypeWitnessTx, &chainhash.Hash{0x03}))
	msg.AddInvVect(wire.NewInvVect(wire.InvTypeTx, &chainhash.Hash{0x04}))

	invs := txInvs(msg, 10)
	require.Len(t, invs, 3)
	for _, iv := range invs {
		require.Equal(t, wire.InvTypeWitnessTx, iv.Type)
	}
	require.Equal(t, chainhash.Hash{0x01}, invs[0].Hash)
	require.Equal(t, chainhash.Hash{0x03}, invs[1].Hash)
	require.Equal(t, chainhash.Hash{0x04}, invs[2].Hash)

	require.Len(t, txInvs(msg, 2), 2)
	require.Len(t, txInvs(msg, 0), 0)
}

func TestGetDataMsgs(t *testing.T) {
	require.Len(t, getDataMsgs(nil), 0)

	invs := make([]*wire.InvVect, wire.MaxInvPerMsg+5)
	for i := range invs {
		invs[i] = wire.NewInvVect(wire.InvTypeWitnessTx, &chainhash.Hash{byte(i), byte(i >> 8)})
	}
	msgs := getDataMsgs(invs)
	require.Len(t, msgs, 2)
	require.Len(t, msgs[0].InvList, wire.MaxInvPerMsg)
	require.Len(t, msgs[1].InvList, 5)
	require.Equal(t, invs[wire.MaxInvPerMsg].Hash, msgs[1].InvList[0].Hash)
}
