package chains

import (
	"github.com/cargo-build/cargo-sdk-go/chains/eth"
	"github.com/cargo-build/cargo-sdk-go/events"
	"github.com/ethereum/go-ethereum/common"
)

// TxWatcher tracks submitted transactions until they are final.
type TxWatcher interface {
	Watch(hash common.Hash) error
	Unwatch(hash common.Hash) bool
	Stop()

	State() eth.TrackerState
	Pending() []common.Hash
	Completed() []common.Hash

	On(event string, h *events.Handler)
	Off(event string, h *events.Handler)
}

var _ TxWatcher = (*eth.PollTx)(nil)
