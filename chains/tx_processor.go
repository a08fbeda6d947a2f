package chains

import (
	"sync"
	"time"

	chainstypes "github.com/cargo-build/cargo-sdk-go/chains/types"
	"github.com/cargo-build/cargo-sdk-go/database"
	"github.com/cargo-build/cargo-sdk-go/events"
	"github.com/ethereum/go-ethereum/common"
	"github.com/sisu-network/lib/log"
)

// TxProcessor persists the lifecycle of watched transactions so that a restarted daemon resumes
// tracking whatever was still pending.
type TxProcessor struct {
	TxWatcher

	db      database.Database
	handler *events.Handler
	now     func() time.Time
	// lock orders the pending record of a hash before its final record.
	lock *sync.Mutex
}

func NewTxProcessor(watcher TxWatcher, db database.Database) *TxProcessor {
	return &TxProcessor{
		TxWatcher: watcher,
		db:        db,
		now:       time.Now,
		lock:      &sync.Mutex{},
	}
}

// Start subscribes to the watcher and watches every transaction stored as pending.
func (tp *TxProcessor) Start() error {
	log.Info("Starting tx processor...")

	tp.handler = events.NewHandler(tp.onTrackUpdate)
	tp.TxWatcher.On(chainstypes.EventCompleted, tp.handler)
	tp.TxWatcher.On(chainstypes.EventTimeout, tp.handler)

	records, err := tp.db.LoadTxs(database.TxStatusPending)
	if err != nil {
		return err
	}

	for _, record := range records {
		if err := tp.TxWatcher.Watch(common.HexToHash(record.Hash)); err != nil {
			log.Warnf("Cannot resume tracking of tx %s, err = %v", record.Hash, err)
		}
	}
	log.Infof("Resumed tracking of %d pending txs", len(records))

	return nil
}

func (tp *TxProcessor) Stop() {
	if tp.handler != nil {
		tp.TxWatcher.Off(chainstypes.EventCompleted, tp.handler)
		tp.TxWatcher.Off(chainstypes.EventTimeout, tp.handler)
	}

	tp.TxWatcher.Stop()
}

func (tp *TxProcessor) Watch(hash common.Hash) error {
	tp.lock.Lock()
	defer tp.lock.Unlock()

	if err := tp.TxWatcher.Watch(hash); err != nil {
		return err
	}

	tp.save(hash, database.TxStatusPending, 0)
	return nil
}

func (tp *TxProcessor) Unwatch(hash common.Hash) bool {
	tp.lock.Lock()
	defer tp.lock.Unlock()

	if !tp.TxWatcher.Unwatch(hash) {
		return false
	}

	tp.save(hash, database.TxStatusUnwatched, 0)
	return true
}

func (tp *TxProcessor) onTrackUpdate(event string, payload interface{}) {
	update, ok := payload.(*chainstypes.TrackUpdate)
	if !ok {
		return
	}

	status := database.TxStatusCompleted
	if update.Result == chainstypes.TrackResultTimeout {
		status = database.TxStatusTimeout
	}

	tp.lock.Lock()
	defer tp.lock.Unlock()

	log.Verbosef("Tx %s is %s at block %d", update.Hash.Hex(), status, update.BlockHeight)
	tp.save(update.Hash, status, update.BlockHeight)
}

func (tp *TxProcessor) save(hash common.Hash, status string, height uint64) {
	tp.db.SaveTxStatus(&database.TxRecord{
		Hash:        hash.Hex(),
		Status:      status,
		BlockHeight: height,
		UpdatedAt:   tp.now().Unix(),
	})
}
