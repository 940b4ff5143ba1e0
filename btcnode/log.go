package btcnode

import (
	"github.com/btcsuite/btcd/peer"
	"github.com/btcsuite/btclog"
)

var log = btclog.Disabled

// UseLogger sets the logger of this package. The btcd peer gets its
// own subsystem logger, pass nil to keep it disabled.
func UseLogger(logger, peerLogger btclog.Logger) {
	log = logger
	if peerLogger != nil {
		peer.UseLogger(peerLogger)
	}
}
