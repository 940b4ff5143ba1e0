package store

import (
	"bytes"
	"encoding/binary"

	"github.com/blkchain/segwit"
	"github.com/pkg/errors"
	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/opt"
	"github.com/syndtr/goleveldb/leveldb/util"
)

var ErrNotFound = errors.New("witness not found")

// Witness stacks are stored under 'w' | txid | uint32be(input index),
// the value being the witness wire encoding. Big-endian keeps a txid
// prefix scan in input order.
const (
	witnessPrefix = 'w'
	witnessKeyLen = 1 + 32 + 4
)

// WitnessStore keeps witness stacks in LevelDb.
type WitnessStore struct {
	db *leveldb.DB
}

func OpenWitnessStore(path string, readOnly bool) (*WitnessStore, error) {
	db, err := leveldb.OpenFile(path, &opt.Options{ReadOnly: readOnly})
	if err != nil {
		return nil, err
	}
	return &WitnessStore{db: db}, nil
}

// NewWitnessStore wraps an already open database.
func NewWitnessStore(db *leveldb.DB) *WitnessStore {
	return &WitnessStore{db: db}
}

func (s *WitnessStore) Close() error {
	return s.db.Close()
}

func txPrefix(txid segwit.Uint256) []byte {
	key := make([]byte, 1, witnessKeyLen)
	key[0] = witnessPrefix
	return append(key, txid[:]...)
}

func witnessKey(txid segwit.Uint256, n uint32) []byte {
	key := txPrefix(txid)
	key = key[:witnessKeyLen]
	binary.BigEndian.PutUint32(key[1+32:], n)
	return key
}

func (s *WitnessStore) Put(ws *segwit.WitnessStack) error {
	return s.db.Put(witnessKey(ws.Owner(), ws.InputIndex()), ws.Bytes(), nil)
}

// PutTx stores all witness stacks of tx in one batch. Inputs without
// a witness are skipped.
func (s *WitnessStore) PutTx(tx *segwit.Tx) error {
	batch := new(leveldb.Batch)
	for _, ws := range tx.Witnesses() {
		if ws == nil {
			continue
		}
		batch.Put(witnessKey(ws.Owner(), ws.InputIndex()), ws.Bytes())
	}
	return s.db.Write(batch, nil)
}

func (s *WitnessStore) Get(txid segwit.Uint256, n uint32) (*segwit.WitnessStack, error) {
	val, err := s.db.Get(witnessKey(txid, n), nil)
	if err == leveldb.ErrNotFound {
		return nil, errors.Wrapf(ErrNotFound, "%v:%d", txid, n)
	}
	if err != nil {
		return nil, err
	}
	return segwit.ReadWitnessStack(txid, n, bytes.NewReader(val))
}

func (s *WitnessStore) Has(txid segwit.Uint256, n uint32) (bool, error) {
	return s.db.Has(witnessKey(txid, n), nil)
}

func (s *WitnessStore) Delete(txid segwit.Uint256, n uint32) error {
	return s.db.Delete(witnessKey(txid, n), nil)
}

// TxWitnesses returns every stored witness of txid, in input order.
func (s *WitnessStore) TxWitnesses(txid segwit.Uint256) ([]*segwit.WitnessStack, error) {
	prefix := txPrefix(txid)
	iter := s.db.NewIterator(util.BytesPrefix(prefix), nil)
	defer iter.Release()

	var result []*segwit.WitnessStack
	for iter.Next() {
		key := iter.Key()
		if len(key) != witnessKeyLen {
			return nil, errors.Errorf("bad witness key %x", key)
		}
		n := binary.BigEndian.Uint32(key[len(prefix):])
		ws, err := segwit.ReadWitnessStack(txid, n, bytes.NewReader(iter.Value()))
		if err != nil {
			return nil, err
		}
		result = append(result, ws)
	}
	return result, iter.Error()
}
