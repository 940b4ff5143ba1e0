package segwit

import (
	"math/rand"
	"testing"

	"github.com/btcsuite/btcd/txscript"
	"github.com/stretchr/testify/require"
)

func TestScriptSig_PushHeaders(t *testing.T) {
	tests := []struct {
		l      int
		header []byte
	}{
		{0, []byte{0x00}},
		{1, []byte{0x01}},
		{75, []byte{0x4b}},
		{76, []byte{txscript.OP_PUSHDATA1, 0x4c}},
		{255, []byte{txscript.OP_PUSHDATA1, 0xff}},
		{256, []byte{txscript.OP_PUSHDATA2, 0x00, 0x01}},
		{65535, []byte{txscript.OP_PUSHDATA2, 0xff, 0xff}},
		{65536, []byte{txscript.OP_PUSHDATA4, 0x00, 0x00, 0x01, 0x00}},
	}
	for _, tt := range tests {
		script := testStack(tt.l).ScriptSig()
		require.Len(t, script, len(tt.header)+tt.l, "length %d", tt.l)
		require.Equal(t, tt.header, script[:len(tt.header)], "length %d", tt.l)
		require.Equal(t, len(tt.header), pushHeaderSize(tt.l))
		for _, b := range script[len(tt.header):] {
			require.Equal(t, byte(1), b)
		}
	}
}

func TestScriptSig_Size(t *testing.T) {
	rnd := rand.New(rand.NewSource(1))
	sizes := []int{0, 1, 75, 76, 255, 256, 65535, 65536}
	for n := 0; n < 50; n++ {
		lengths := make([]int, rnd.Intn(8))
		want := 0
		for i := range lengths {
			lengths[i] = sizes[rnd.Intn(len(sizes))] + rnd.Intn(3)
			switch l := lengths[i]; {
			case l < 76:
				want += 1 + l
			case l < 256:
				want += 2 + l
			case l < 65536:
				want += 3 + l
			default:
				want += 5 + l
			}
		}
		ws := testStack(lengths...)
		require.Equal(t, want, scriptSigSize(ws.Items()))
		require.Len(t, ws.ScriptSig(), want)
	}
}

func TestScriptSig_Order(t *testing.T) {
	ws := NewWitnessStack(testOwner, 0)
	ws.Push([]byte{0xaa, 0xaa, 0xaa})
	ws.Push([]byte{0xbb})
	ws.Push([]byte{0xcc, 0xcc})
	ws.Push([]byte{0xbb})

	require.Equal(t, []byte{0x03, 0xaa, 0xaa, 0xaa, 0x01, 0xbb, 0x02, 0xcc, 0xcc, 0x01, 0xbb}, ws.ScriptSig())
	require.Equal(t, []byte{0x04, 0x03, 0xaa, 0xaa, 0xaa, 0x01, 0xbb, 0x02, 0xcc, 0xcc, 0x01, 0xbb}, ws.Bytes())
}

func TestScriptSig_Empty(t *testing.T) {
	require.Len(t, NewWitnessStack(testOwner, 0).ScriptSig(), 0)
}

func TestParseScriptSig(t *testing.T) {
	ws := testStack(0, 1, 75, 76, 255, 256, 65535, 65536)
	got, err := ParseScriptSig(ws.Owner(), ws.InputIndex(), ws.ScriptSig())
	require.NoError(t, err)
	require.Equal(t, ws.Items(), got.Items())
	require.Equal(t, ws.Owner(), got.Owner())

	_, err = ParseScriptSig(testOwner, 0, []byte{0x01, 0xaa, txscript.OP_CHECKSIG})
	require.ErrorIs(t, err, ErrMalformed)

	_, err = ParseScriptSig(testOwner, 0, []byte{0x05, 0x01})
	require.ErrorIs(t, err, ErrMalformed)
}
