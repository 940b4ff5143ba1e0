package segwit

import "github.com/btcsuite/btclog"

// log is disabled until the application calls UseLogger.
var log = btclog.Disabled

func UseLogger(logger btclog.Logger) {
	log = logger
}
