package segwit

import (
	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcec/v2/ecdsa"
	"github.com/btcsuite/btcd/btcec/v2/schnorr"
	"github.com/decred/dcrd/dcrec/secp256k1/v4"
)

// WitnessKind is a guess at what spent an input, based only on the
// shape of its witness. Signatures are parsed but never verified.
type WitnessKind int

const (
	KindEmpty WitnessKind = iota
	KindP2WPKH
	KindTaprootKeyPath
	KindScriptPath
	KindUnknown
)

func (k WitnessKind) String() string {
	switch k {
	case KindEmpty:
		return "empty"
	case KindP2WPKH:
		return "p2wpkh"
	case KindTaprootKeyPath:
		return "taproot-keypath"
	case KindScriptPath:
		return "scriptpath"
	}
	return "unknown"
}

func (k WitnessKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// BIP-341 annex marker
const annexTag = 0x50

func (ws *WitnessStack) Kind() WitnessKind {
	items := ws.withoutAnnex()
	switch {
	case len(items) == 0:
		return KindEmpty
	case len(items) == 1 && isSchnorrSig(items[0]):
		return KindTaprootKeyPath
	case len(items) == 2 && isECDSASig(items[0]) && isPubKey(items[1]):
		return KindP2WPKH
	case len(items) >= 2:
		return KindScriptPath
	}
	return KindUnknown
}

// WitnessScript returns the script revealed by a script path spend,
// nil for any other kind.
func (ws *WitnessStack) WitnessScript() []byte {
	if ws.Kind() != KindScriptPath {
		return nil
	}
	items := ws.withoutAnnex()
	if isControlBlock(items[len(items)-1]) {
		// tapscript: script, control block
		return items[len(items)-2]
	}
	return items[len(items)-1]
}

// withoutAnnex drops a trailing taproot annex, only recognized when
// there are at least two items.
func (ws *WitnessStack) withoutAnnex() []WitnessItem {
	n := len(ws.items)
	if n >= 2 && len(ws.items[n-1]) > 0 && ws.items[n-1][0] == annexTag {
		return ws.items[:n-1]
	}
	return ws.items
}

func isSchnorrSig(item []byte) bool {
	if len(item) != schnorr.SignatureSize && len(item) != schnorr.SignatureSize+1 {
		return false
	}
	_, err := schnorr.ParseSignature(item[:schnorr.SignatureSize])
	return err == nil
}

// DER signature followed by the sighash type byte.
func isECDSASig(item []byte) bool {
	if len(item) < 9 || len(item) > 73 {
		return false
	}
	_, err := ecdsa.ParseDERSignature(item[:len(item)-1])
	return err == nil
}

func isPubKey(item []byte) bool {
	if len(item) != secp256k1.PubKeyBytesLenCompressed && len(item) != secp256k1.PubKeyBytesLenUncompressed {
		return false
	}
	_, err := btcec.ParsePubKey(item)
	return err == nil
}

// A control block is the leaf version byte, the 32 byte internal key
// and a path of 32 byte hashes.
func isControlBlock(item []byte) bool {
	const base, node = 33, 32
	if len(item) < base || (len(item)-base)%node != 0 {
		return false
	}
	return item[0]&0xfe == 0xc0
}
