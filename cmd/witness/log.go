package main

import (
	"log"

	"github.com/blkchain/segwit"
	"github.com/blkchain/segwit/btcnode"
	"github.com/btcsuite/btclog"
)

// btcsuite uses a different logger, logWriter adapts that logger to
// use the standard "log" again.

type logWriter struct{}

func (logWriter) Write(p []byte) (n int, err error) {
	if len(p) > 24 {
		log.Print(string(p[24:])) // strip out timestamp
	} else {
		log.Print(string(p))
	}
	return len(p), nil
}

func setupLogging(debug bool) {
	level := btclog.LevelInfo
	if debug {
		level = btclog.LevelTrace
	}

	backend := btclog.NewBackend(logWriter{})
	subsystem := func(tag string) btclog.Logger {
		l := backend.Logger(tag)
		l.SetLevel(level)
		return l
	}

	peerLog := backend.Logger("PEER")
	peerLog.SetLevel(btclog.LevelInfo)

	segwit.UseLogger(subsystem("WTNS"))
	btcnode.UseLogger(subsystem("NODE"), peerLog)
}
