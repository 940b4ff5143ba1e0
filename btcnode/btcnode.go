package btcnode

import (
	"fmt"
	"net"
	"time"

	"github.com/blkchain/segwit"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/btcsuite/btcd/peer"
	"github.com/btcsuite/btcd/wire"
)

// Node is an outbound connection to a Bitcoin node, used to pull
// transactions out of its memory pool.
type Node struct {
	*peer.Peer
	tmout      time.Duration
	invCh      chan *wire.MsgInv
	txCh       chan *wire.MsgTx
	notFoundCh chan *wire.MsgNotFound
}

func ConnectToNode(addr string, tmout time.Duration, params *chaincfg.Params) (*Node, error) {

	result := &Node{
		tmout:      tmout,
		invCh:      make(chan *wire.MsgInv, 16),
		txCh:       make(chan *wire.MsgTx, 256),
		notFoundCh: make(chan *wire.MsgNotFound, 16),
	}

	verackCh := make(chan bool, 1)
	peerCfg := &peer.Config{
		UserAgentName:    "segwit", // User agent name to advertise.
		UserAgentVersion: "0.0.1",  // User agent version to advertise.
		ChainParams:      params,
		Services:         wire.SFNodeWitness,
		TrickleInterval:  time.Second * 10,
		Listeners: peer.MessageListeners{
			OnVerAck: func(p *peer.Peer, msg *wire.MsgVerAck) {
				verackCh <- true
			},
			OnInv: func(p *peer.Peer, msg *wire.MsgInv) {
				select {
				case result.invCh <- msg:
				default:
					log.Warnf("Dropping inv with %d entries, nobody is reading", len(msg.InvList))
				}
			},
			OnTx: func(p *peer.Peer, msg *wire.MsgTx) {
				select {
				case result.txCh <- msg:
				default:
					log.Warnf("Dropping tx %v, nobody is reading", msg.TxHash())
				}
			},
			OnNotFound: func(p *peer.Peer, msg *wire.MsgNotFound) {
				select {
				case result.notFoundCh <- msg:
				default:
				}
			},
		},
	}

	p, err := peer.NewOutboundPeer(peerCfg, addr)
	if err != nil {
		return nil, err
	}

	// Establish the connection to the peer address and mark it connected.
	conn, err := net.DialTimeout("tcp", p.Addr(), tmout)
	if err != nil {
		return nil, err
	}

	p.AssociateConnection(conn)

	select {
	case <-verackCh:
		// Verack pretty much means we are connected
	case <-time.After(tmout):
		p.Disconnect()
		return nil, fmt.Errorf("Connection timeout")
	}
	result.Peer = p
	log.Infof("Connected to %v (%s)", p.Addr(), p.UserAgent())

	return result, nil
}

func (n *Node) Close() error {
	n.Disconnect()
	n.WaitForDisconnect()
	return nil
}

// RequestMempool sends a 'mempool' message. The node answers with
// 'inv' messages listing its pool, provided it serves such requests
// at all (Bitcoin Core needs -peerbloomfilters).
func (n *Node) RequestMempool() {
	n.QueueMessage(wire.NewMsgMemPool(), nil)
}

// MempoolTxs requests the memory pool and fetches up to limit of its
// transactions, witness data included. Inventory is collected until
// the node has been silent for the timeout.
func (n *Node) MempoolTxs(limit int, interrupt chan bool) ([]*segwit.Tx, error) {

	if interrupt == nil {
		interrupt = make(chan bool)
	}

	n.RequestMempool()

	var want []*wire.InvVect
collect:
	for len(want) < limit {
		select {
		case msg := <-n.invCh:
			want = append(want, txInvs(msg, limit-len(want))...)
			log.Debugf("Received inv, %d transactions wanted so far.", len(want))
		case <-time.After(n.tmout):
			break collect
		case <-interrupt:
			return nil, fmt.Errorf("Interrupted.")
		}
	}

	if len(want) == 0 {
		log.Infof("Node announced no transactions.")
		return nil, nil
	}

	pending := make(map[segwit.Uint256]bool, len(want))
	for _, iv := range want {
		pending[segwit.Uint256(iv.Hash)] = true
	}
	for _, gd := range getDataMsgs(want) {
		n.QueueMessage(gd, nil)
	}

	result := make([]*segwit.Tx, 0, len(want))
	for len(pending) > 0 {
		select {
		case mtx := <-n.txCh:
			hash := segwit.Uint256(mtx.TxHash())
			if !pending[hash] {
				continue
			}
			delete(pending, hash)
			result = append(result, segwit.TxFromMsgTx(mtx))
		case msg := <-n.notFoundCh:
			for _, iv := range msg.InvList {
				delete(pending, segwit.Uint256(iv.Hash))
			}
		case <-time.After(n.tmout):
			log.Warnf("Time out with %d transactions outstanding.", len(pending))
			return result, nil
		case <-interrupt:
			return result, fmt.Errorf("Interrupted.")
		}
	}

	return result, nil
}

// txInvs picks up to limit transaction entries from an inv and turns
// them into witness requests, so the node sends witness data along.
func txInvs(msg *wire.MsgInv, limit int) []*wire.InvVect {
	var result []*wire.InvVect
	for _, iv := range msg.InvList {
		if len(result) >= limit {
			break
		}
		if iv.Type == wire.InvTypeTx || iv.Type == wire.InvTypeWitnessTx {
			result = append(result, wire.NewInvVect(wire.InvTypeWitnessTx, &iv.Hash))
		}
	}
	return result
}

// getDataMsgs splits invs into getdata messages of at most
// wire.MaxInvPerMsg entries.
func getDataMsgs(invs []*wire.InvVect) []*wire.MsgGetData {
	var result []*wire.MsgGetData
	for len(invs) > 0 {
		n := len(invs)
		if n > wire.MaxInvPerMsg {
			n = wire.MaxInvPerMsg
		}
		gd := wire.NewMsgGetDataSizeHint(uint(n))
		for _, iv := range invs[:n] {
			gd.AddInvVect(iv)
		}
		result = append(result, gd)
		invs = invs[n:]
	}
	return result
}
