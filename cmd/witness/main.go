package main

import (
	"bufio"
	"bytes"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/blkchain/segwit"
	"github.com/blkchain/segwit/btcnode"
	"github.com/blkchain/segwit/db"
	"github.com/blkchain/segwit/rlimit"
	"github.com/blkchain/segwit/store"
	"github.com/btcsuite/btcd/chaincfg"
	flags "github.com/jessevdk/go-flags"
)

type options struct {
	Hex         string `long:"hex" description:"Raw transaction, hex encoded"`
	File        string `long:"file" description:"File with one hex encoded transaction per line"`
	NodeAddr    string `long:"nodeaddr" description:"Bitcoin node address, fetch transactions from its mempool"`
	NodeTmout   int    `long:"nodetmout" default:"30" description:"Bitcoin node timeout in seconds"`
	TestNet     bool   `long:"testnet" description:"Use testnet parameters"`
	Limit       int    `long:"limit" default:"100" description:"Mempool transactions to fetch"`
	LevelDb     string `long:"leveldb" description:"/path/to/witnesses (levelDb) to store witnesses in"`
	ConnStr     string `long:"connstr" description:"Db connection string to store witnesses in"`
	Bulk        bool   `long:"bulk" description:"Load witnesses with COPY, fails on witnesses already in the db"`
	MaxItems    int    `long:"max-items" description:"Reject witnesses with more items, 0 is no limit"`
	MaxItemSize int    `long:"max-item-size" description:"Reject witness items longer than this, 0 is no limit"`
	Debug       bool   `long:"debug" description:"Trace logging"`
}

// witnessOut is one line of output.
type witnessOut struct {
	TxId          segwit.Uint256     `json:"txid"`
	N             uint32             `json:"n"`
	Kind          segwit.WitnessKind `json:"kind"`
	Items         []string           `json:"items"`
	ScriptSig     string             `json:"scriptsig"`
	WitnessScript string             `json:"witness_script,omitempty"`
}

func main() {

	var opts options
	if _, err := flags.Parse(&opts); err != nil {
		if ferr, ok := err.(*flags.Error); ok && ferr.Type == flags.ErrHelp {
			os.Exit(0)
		}
		os.Exit(1)
	}

	sources := 0
	for _, s := range []string{opts.Hex, opts.File, opts.NodeAddr} {
		if s != "" {
			sources++
		}
	}
	if sources != 1 {
		log.Fatalf("Exactly one of --hex, --file or --nodeaddr is required.")
	}

	setupLogging(opts.Debug)

	var checks []segwit.StackCheck
	if opts.MaxItems > 0 {
		checks = append(checks, segwit.MaxItemCount(opts.MaxItems))
	}
	if opts.MaxItemSize > 0 {
		checks = append(checks, segwit.MaxItemSize(opts.MaxItemSize))
	}

	var txs []*segwit.Tx
	var err error
	switch {
	case opts.Hex != "":
		var tx *segwit.Tx
		if tx, err = decodeHexTx(opts.Hex, checks); err == nil {
			txs = []*segwit.Tx{tx}
		}
	case opts.File != "":
		txs, err = readTxFile(opts.File, checks)
	default:
		txs, err = fetchMempool(&opts, checks)
	}
	if err != nil {
		log.Fatalf("ERROR: %v", err)
	}

	if err := printWitnesses(os.Stdout, txs); err != nil {
		log.Fatalf("ERROR: %v", err)
	}

	if opts.LevelDb != "" {
		if err := storeLevelDb(opts.LevelDb, txs); err != nil {
			log.Fatalf("ERROR: %v", err)
		}
	}

	if opts.ConnStr != "" {
		if err := storePostgres(opts.ConnStr, txs, opts.Bulk); err != nil {
			log.Fatalf("ERROR: %v", err)
		}
	}
}

func decodeHexTx(s string, checks []segwit.StackCheck) (*segwit.Tx, error) {
	b, err := hex.DecodeString(strings.TrimSpace(s))
	if err != nil {
		return nil, err
	}
	r := bytes.NewReader(b)
	var tx segwit.Tx
	if err := tx.ReadWithChecks(r, checks...); err != nil {
		return nil, err
	}
	if r.Len() > 0 {
		return nil, fmt.Errorf("%d trailing bytes after transaction", r.Len())
	}
	return &tx, nil
}

func readTxFile(path string, checks []segwit.StackCheck) ([]*segwit.Tx, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var txs []*segwit.Tx
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 64*1024), 8*1024*1024)
	for line := 1; scanner.Scan(); line++ {
		if strings.TrimSpace(scanner.Text()) == "" {
			continue
		}
		tx, err := decodeHexTx(scanner.Text(), checks)
		if err != nil {
			return nil, fmt.Errorf("line %d: %v", line, err)
		}
		txs = append(txs, tx)
	}
	return txs, scanner.Err()
}

func fetchMempool(opts *options, checks []segwit.StackCheck) ([]*segwit.Tx, error) {

	params := &chaincfg.MainNetParams
	if opts.TestNet {
		params = &chaincfg.TestNet3Params
	}

	// monitor ctrl-c
	interrupt := make(chan bool, 1)
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt)
	go func() {
		<-sigCh
		log.Printf("Interrupt, stopping...")
		signal.Stop(sigCh)
		interrupt <- true
	}()

	log.Printf("Connecting to Node (%s)...", opts.NodeAddr)
	node, err := btcnode.ConnectToNode(opts.NodeAddr, time.Duration(opts.NodeTmout)*time.Second, params)
	if err != nil {
		return nil, err
	}
	defer node.Close()

	txs, err := node.MempoolTxs(opts.Limit, interrupt)
	if err != nil {
		return nil, err
	}
	log.Printf("Received %d mempool transactions.", len(txs))

	// checks apply to fetched transactions the same way they do to
	// decoded ones
	result := txs[:0]
	for _, tx := range txs {
		if err := runChecks(tx, checks); err != nil {
			log.Printf("Skipping tx %v: %v", tx.Hash(), err)
			continue
		}
		result = append(result, tx)
	}
	return result, nil
}

func runChecks(tx *segwit.Tx, checks []segwit.StackCheck) error {
	for _, ws := range tx.Witnesses() {
		if ws == nil {
			continue
		}
		for _, check := range checks {
			if err := check(ws); err != nil {
				return err
			}
		}
	}
	return nil
}

func printWitnesses(w io.Writer, txs []*segwit.Tx) error {
	enc := json.NewEncoder(w)
	for _, tx := range txs {
		for _, ws := range tx.Witnesses() {
			if ws == nil {
				continue
			}
			out := witnessOut{
				TxId:      ws.Owner(),
				N:         ws.InputIndex(),
				Kind:      ws.Kind(),
				Items:     make([]string, 0, ws.Len()),
				ScriptSig: hex.EncodeToString(ws.ScriptSig()),
			}
			for _, item := range ws.Items() {
				out.Items = append(out.Items, hex.EncodeToString(item))
			}
			if script := ws.WitnessScript(); script != nil {
				out.WitnessScript = hex.EncodeToString(script)
			}
			if err := enc.Encode(&out); err != nil {
				return err
			}
		}
	}
	return nil
}

func storeLevelDb(path string, txs []*segwit.Tx) error {
	limit, err := rlimit.SetRLimit(1024) // LevelDb opens many files!
	if err != nil {
		log.Printf("Error setting rlimit (now %d): %v", limit, err)
	}

	s, err := store.OpenWitnessStore(path, false)
	if err != nil {
		return err
	}
	defer s.Close()

	for _, tx := range txs {
		if err := s.PutTx(tx); err != nil {
			return err
		}
	}
	log.Printf("Stored witnesses of %d transactions in %s.", len(txs), path)
	return nil
}

func storePostgres(connstr string, txs []*segwit.Tx, bulk bool) error {
	w, err := db.NewWitnessDB(db.Config{ConnectString: connstr})
	if err != nil {
		return err
	}
	defer w.Close()

	if bulk {
		if err := w.CopyTxs(txs); err != nil {
			return err
		}
	} else {
		for _, tx := range txs {
			if err := w.WriteTx(tx); err != nil {
				return err
			}
		}
	}

	counts, err := w.CountByKind()
	if err != nil {
		return err
	}
	log.Printf("Stored witnesses of %d transactions, table now has: %v", len(txs), counts)
	return nil
}
