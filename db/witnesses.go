package db

import (
	"bytes"
	"database/sql"

	"github.com/blkchain/segwit"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"
)

// Explanation of how we handle integers. Input indices are uint32,
// Postgres has no unsigned int type, so they are cast to int32 and
// 0xFFFFFFFF would become -1, which is fine as long as all the bits
// are correct.

var ErrNotFound = errors.New("witness not found")

type Config struct {
	ConnectString string
}

type WitnessDB struct {
	db *sqlx.DB
}

// witnessRow reflects the witnesses table.
type witnessRow struct {
	TxId      []byte `db:"txid"`
	N         int32  `db:"n"`
	Items     int    `db:"items"`
	Witness   []byte `db:"witness"`
	ScriptSig []byte `db:"scriptsig"`
	Kind      string `db:"kind"`
}

var witnessCols = []string{"txid", "n", "items", "witness", "scriptsig", "kind"}

func rowFromStack(ws *segwit.WitnessStack) *witnessRow {
	owner := ws.Owner()
	return &witnessRow{
		TxId:      owner[:],
		N:         int32(ws.InputIndex()),
		Items:     ws.Len(),
		Witness:   ws.Bytes(),
		ScriptSig: ws.ScriptSig(),
		Kind:      ws.Kind().String(),
	}
}

func (r *witnessRow) stack() (*segwit.WitnessStack, error) {
	var txid segwit.Uint256
	if err := txid.Scan(r.TxId); err != nil {
		return nil, err
	}
	return segwit.ReadWitnessStack(txid, uint32(r.N), bytes.NewReader(r.Witness))
}

func NewWitnessDB(cfg Config) (*WitnessDB, error) {
	conn, err := sqlx.Connect("postgres", cfg.ConnectString)
	if err != nil {
		return nil, err
	}
	w := &WitnessDB{db: conn}
	if err := createTables(w.db); err != nil {
		conn.Close()
		return nil, err
	}
	return w, nil
}

func (w *WitnessDB) Close() error {
	return w.db.Close()
}

// WriteTx stores the witnesses of tx, ignoring ones already present.
func (w *WitnessDB) WriteTx(tx *segwit.Tx) error {
	stmt := `INSERT INTO witnesses (txid, n, items, witness, scriptsig, kind)
  VALUES (:txid, :n, :items, :witness, :scriptsig, :kind)
  ON CONFLICT (txid, n) DO NOTHING`

	txn, err := w.db.Beginx()
	if err != nil {
		return err
	}
	for _, ws := range tx.Witnesses() {
		if ws == nil {
			continue
		}
		if _, err := txn.NamedExec(stmt, rowFromStack(ws)); err != nil {
			txn.Rollback()
			return errors.Wrapf(err, "writing witness %v:%d", ws.Owner(), ws.InputIndex())
		}
	}
	return txn.Commit()
}

// CopyTxs bulk loads witnesses with COPY. Unlike WriteTx it fails on
// duplicates, it is meant for filling an empty table.
func (w *WitnessDB) CopyTxs(txs []*segwit.Tx) (err error) {
	txn, err := w.db.Begin()
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			txn.Rollback()
		}
	}()

	stmt, err := txn.Prepare(pq.CopyIn("witnesses", witnessCols...))
	if err != nil {
		return err
	}
	for _, tx := range txs {
		for _, ws := range tx.Witnesses() {
			if ws == nil {
				continue
			}
			r := rowFromStack(ws)
			if _, err = stmt.Exec(r.TxId, r.N, r.Items, r.Witness, r.ScriptSig, r.Kind); err != nil {
				return err
			}
		}
	}
	if _, err = stmt.Exec(); err != nil {
		return err
	}
	if err = stmt.Close(); err != nil {
		return err
	}
	return txn.Commit()
}

func (w *WitnessDB) SelectWitness(txid segwit.Uint256, n uint32) (*segwit.WitnessStack, error) {
	stmt := "SELECT txid, n, items, witness, scriptsig, kind FROM witnesses WHERE txid = $1 AND n = $2"

	var r witnessRow
	if err := w.db.Get(&r, stmt, txid[:], int32(n)); err != nil {
		if err == sql.ErrNoRows {
			return nil, errors.Wrapf(ErrNotFound, "%v:%d", txid, n)
		}
		return nil, err
	}
	return r.stack()
}

func (w *WitnessDB) SelectTxWitnesses(txid segwit.Uint256) ([]*segwit.WitnessStack, error) {
	stmt := "SELECT txid, n, items, witness, scriptsig, kind FROM witnesses WHERE txid = $1 ORDER BY n"

	var rows []witnessRow
	if err := w.db.Select(&rows, stmt, txid[:]); err != nil {
		return nil, err
	}
	result := make([]*segwit.WitnessStack, 0, len(rows))
	for i := range rows {
		ws, err := rows[i].stack()
		if err != nil {
			return nil, err
		}
		result = append(result, ws)
	}
	return result, nil
}

// CountByKind returns the number of stored witnesses per kind.
func (w *WitnessDB) CountByKind() (map[string]int, error) {
	stmt := "SELECT kind, COUNT(1) AS count FROM witnesses GROUP BY kind"

	var rows []struct {
		Kind  string `db:"kind"`
		Count int    `db:"count"`
	}
	if err := w.db.Select(&rows, stmt); err != nil {
		return nil, err
	}
	result := make(map[string]int, len(rows))
	for _, r := range rows {
		result[r.Kind] = r.Count
	}
	return result, nil
}

func createTables(db *sqlx.DB) error {
	sqlTables := `
  CREATE TABLE IF NOT EXISTS witnesses (
   txid          BYTEA NOT NULL
  ,n             INT NOT NULL
  ,items         INT NOT NULL
  ,witness       BYTEA NOT NULL
  ,scriptsig     BYTEA NOT NULL
  ,kind          TEXT NOT NULL
  ,PRIMARY KEY (txid, n)
  );
`
	_, err := db.Exec(sqlTables)
	return err
}
