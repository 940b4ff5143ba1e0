package segwit

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTxOut_WitnessProgram(t *testing.T) {
	p2wpkh := append([]byte{0x00, 0x14}, bytes.Repeat([]byte{0xab}, 20)...)
	p2wsh := append([]byte{0x00, 0x20}, bytes.Repeat([]byte{0xcd}, 32)...)
	p2tr := append([]byte{0x51, 0x20}, bytes.Repeat([]byte{0xef}, 32)...)
	p2pkh := append(append([]byte{0x76, 0xa9, 0x14}, bytes.Repeat([]byte{0x01}, 20)...), 0x88, 0xac)

	tests := []struct {
		name    string
		script  []byte
		version int
		program []byte
		ok      bool
	}{
		{"p2wpkh", p2wpkh, 0, p2wpkh[2:], true},
		{"p2wsh", p2wsh, 0, p2wsh[2:], true},
		{"p2tr", p2tr, 1, p2tr[2:], true},
		{"p2pkh", p2pkh, 0, nil, false},
		{"op_return", []byte{0x6a}, 0, nil, false},
		{"short push", []byte{0x00, 0x14, 0x01, 0x02}, 0, nil, false},
		{"empty", nil, 0, nil, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := NewTxOut(1000, tt.script)
			require.Equal(t, tt.ok, out.IsWitness())
			version, program, ok := out.WitnessProgram()
			require.Equal(t, tt.ok, ok)
			require.Equal(t, tt.version, version)
			require.Equal(t, tt.program, program)
		})
	}

	outs := TxOutList{NewTxOut(1, p2pkh), NewTxOut(2, p2tr), NewTxOut(3, []byte{0x6a}), NewTxOut(4, p2wpkh)}
	require.Equal(t, []int{1, 3}, outs.WitnessOutputs())
}

func TestTxOutList_RoundTrip(t *testing.T) {
	outs := TxOutList{NewTxOut(50000, []byte{0x00, 0x14}), NewTxOut(0, nil)}
	var buf bytes.Buffer
	require.NoError(t, outs.BinWrite(&buf))
	require.Equal(t, outs.Size(), buf.Len())

	var got TxOutList
	require.NoError(t, got.BinRead(bytes.NewReader(buf.Bytes())))
	require.Len(t, got, 2)
	require.Equal(t, int64(50000), got[0].Value)
	require.Equal(t, []byte{0x00, 0x14}, got[0].ScriptPubKey)
	require.Len(t, got[1].ScriptPubKey, 0)

	// second output cut short
	err := got.BinRead(bytes.NewReader(buf.Bytes()[:buf.Len()-3]))
	require.ErrorIs(t, err, ErrTruncated)
	require.Contains(t, err.Error(), "output 1")
}
