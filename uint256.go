package segwit

import (
	"encoding/hex"
	"encoding/json"
	"fmt"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
)

// Uint256 is a hash in internal (little-endian) byte order. String
// and parsing use the usual reversed display order.
type Uint256 [32]byte

func (u Uint256) String() string {
	for i := 0; i < 16; i++ {
		u[i], u[31-i] = u[31-i], u[i]
	}
	return hex.EncodeToString(u[:])
}

func (u Uint256) MarshalJSON() ([]byte, error) {
	return json.Marshal(u.String())
}

// sql.Scanner so that pq can scan these values from postgres
func (u *Uint256) Scan(value interface{}) error {
	b, ok := value.([]byte)
	if !ok {
		return fmt.Errorf("Unexpected type: %T", value)
	}
	if len(b) != len(u) {
		return fmt.Errorf("Unexpected length: %d", len(b))
	}
	copy(u[:], b)
	return nil
}

func (u Uint256) ChainHash() chainhash.Hash {
	return chainhash.Hash(u)
}

func ShaSha256(b []byte) Uint256 {
	return Uint256(chainhash.DoubleHashH(b))
}

func Uint256FromBytes(from []byte) Uint256 {
	var result Uint256
	copy(result[:], from)
	return result
}

func Uint256FromString(from string) (Uint256, error) {
	if len(from) != 32*2 {
		return Uint256{}, fmt.Errorf("Incorrect length.")
	}
	b, err := hex.DecodeString(from)
	if err != nil {
		return Uint256{}, err
	}
	for i := 0; i < 16; i++ {
		b[i], b[31-i] = b[31-i], b[i]
	}
	return Uint256FromBytes(b), nil
}
