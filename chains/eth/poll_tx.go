package eth

import (
	"context"
	"sync"
	"time"

	chainstypes "github.com/cargo-build/cargo-sdk-go/chains/types"
	"github.com/cargo-build/cargo-sdk-go/events"
	"github.com/cargo-build/cargo-sdk-go/types"
	"github.com/ethereum/go-ethereum/common"
	"github.com/golang/groupcache/lru"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sisu-network/lib/log"
	"go.uber.org/atomic"
	"golang.org/x/sync/errgroup"
)

const (
	DefaultPollInterval       = time.Second
	DefaultCompletedCacheSize = 10_000
)

type TrackerState int

const (
	StateIdle TrackerState = iota
	StateWatching
)

func (s TrackerState) String() string {
	if s == StateWatching {
		return "watching"
	}

	return "idle"
}

type PollTxConfig struct {
	Interval   time.Duration
	RpcTimeout time.Duration
	// A mined transaction is final once latest block - its block >= Depth.
	Depth uint64
	// MaxAttempts and MaxDuration drop a hash that has not completed in time. Zero means no limit.
	MaxAttempts        int
	MaxDuration        time.Duration
	CompletedCacheSize int
	// Registerer is optional.
	Registerer prometheus.Registerer
}

type watchEntry struct {
	addedAt  time.Time
	attempts int
}

// PollTx tracks in-flight transactions until they are final. A poll loop runs while at least one hash
// is pending and emits chainstypes.EventPending, EventCompleted and EventTimeout.
type PollTx struct {
	*events.Emitter

	client  RpcClient
	cfg     PollTxConfig
	metrics *metrics
	ticks   *atomic.Uint64
	now     func() time.Time

	lock           *sync.RWMutex
	pending        []common.Hash
	entries        map[common.Hash]*watchEntry
	completed      *lru.Cache
	completedOrder []common.Hash
	state          TrackerState
	// gen changes every time the loop is started or stopped. A tick only applies its result if the
	// generation it started with is still current.
	gen    uint64
	stopCh chan struct{}
	doneCh chan struct{}
}

func NewPollTx(client RpcClient, cfg PollTxConfig) (*PollTx, error) {
	if cfg.Interval <= 0 {
		cfg.Interval = DefaultPollInterval
	}
	if cfg.RpcTimeout <= 0 {
		cfg.RpcTimeout = RpcTimeOut
	}
	if cfg.CompletedCacheSize <= 0 {
		cfg.CompletedCacheSize = DefaultCompletedCacheSize
	}

	p := &PollTx{
		Emitter: events.NewEmitter(),
		client:  client,
		cfg:     cfg,
		ticks:   atomic.NewUint64(0),
		now:     time.Now,
		lock:    &sync.RWMutex{},
		entries: make(map[common.Hash]*watchEntry),
		state:   StateIdle,
	}

	p.completed = lru.New(cfg.CompletedCacheSize)
	p.completed.OnEvicted = func(key lru.Key, _ interface{}) {
		hash := key.(common.Hash)
		for i, h := range p.completedOrder {
			if h == hash {
				p.completedOrder = append(p.completedOrder[:i], p.completedOrder[i+1:]...)
				break
			}
		}
	}

	if cfg.Registerer != nil {
		m, err := newMetrics(cfg.Registerer)
		if err != nil {
			return nil, err
		}
		p.metrics = m
	}

	return p, nil
}

// Watch adds hash to the pending collection and starts the poll loop if it is not running. Watching
// a hash that is still pending after Stop resumes polling and returns ErrAlreadyPending.
func (p *PollTx) Watch(hash common.Hash) error {
	p.lock.Lock()
	if _, ok := p.entries[hash]; ok {
		resume := p.state == StateIdle
		var gen uint64
		var stopCh, doneCh chan struct{}
		if resume {
			gen, stopCh, doneCh = p.startLocked()
		}
		p.lock.Unlock()

		if resume {
			log.Verbosef("Resuming poll loop for tx %s", hash.Hex())
			go p.loop(gen, stopCh, doneCh)
		}
		return types.ErrAlreadyPending
	}
	if _, ok := p.completed.Get(hash); ok {
		p.lock.Unlock()
		return types.ErrAlreadyCompleted
	}

	p.pending = append(p.pending, hash)
	p.entries[hash] = &watchEntry{addedAt: p.now()}
	pending := p.copyPending()

	var gen uint64
	var stopCh, doneCh chan struct{}
	start := p.state == StateIdle
	if start {
		gen, stopCh, doneCh = p.startLocked()
	}
	p.lock.Unlock()

	p.metrics.incWatched()
	p.metrics.setPending(len(pending))
	p.Emit(chainstypes.EventPending, &chainstypes.PendingUpdate{Hash: hash, Pending: pending})

	if start {
		log.Verbosef("Starting poll loop for tx %s", hash.Hex())
		go p.loop(gen, stopCh, doneCh)
	}

	return nil
}

// Unwatch removes hash from the pending collection without emitting completed. It returns false if
// the hash was not pending.
func (p *PollTx) Unwatch(hash common.Hash) bool {
	p.lock.Lock()
	if !p.removePending(hash) {
		p.lock.Unlock()
		return false
	}

	pending := p.copyPending()
	if len(pending) == 0 && p.state == StateWatching {
		p.state = StateIdle
		p.gen++
		close(p.stopCh)
	}
	p.lock.Unlock()

	p.metrics.setPending(len(pending))
	p.Emit(chainstypes.EventPending, &chainstypes.PendingUpdate{Hash: hash, Pending: pending})

	return true
}

// Stop halts the poll loop and waits for it to exit. Pending hashes are kept and the next Watch of
// any hash resumes polling. Stop must not be called from an event listener.
func (p *PollTx) Stop() {
	p.lock.Lock()
	if p.state == StateIdle {
		p.lock.Unlock()
		return
	}

	p.state = StateIdle
	p.gen++
	close(p.stopCh)
	doneCh := p.doneCh
	p.lock.Unlock()

	<-doneCh
}

// startLocked moves the tracker to WATCHING and returns the handles of a new loop. The caller holds
// the lock and starts the loop after releasing it.
func (p *PollTx) startLocked() (uint64, chan struct{}, chan struct{}) {
	p.state = StateWatching
	p.gen++
	p.stopCh = make(chan struct{})
	p.doneCh = make(chan struct{})

	return p.gen, p.stopCh, p.doneCh
}

func (p *PollTx) State() TrackerState {
	p.lock.RLock()
	defer p.lock.RUnlock()

	return p.state
}

// Pending returns a copy of the pending collection in watch order.
func (p *PollTx) Pending() []common.Hash {
	p.lock.RLock()
	defer p.lock.RUnlock()

	return p.copyPending()
}

// Completed returns the most recent completed hashes, oldest first.
func (p *PollTx) Completed() []common.Hash {
	p.lock.RLock()
	defer p.lock.RUnlock()

	ret := make([]common.Hash, len(p.completedOrder))
	copy(ret, p.completedOrder)

	return ret
}

func (p *PollTx) Ticks() uint64 {
	return p.ticks.Load()
}

func (p *PollTx) copyPending() []common.Hash {
	ret := make([]common.Hash, len(p.pending))
	copy(ret, p.pending)

	return ret
}

// removePending must be called with the lock held.
func (p *PollTx) removePending(hash common.Hash) bool {
	if _, ok := p.entries[hash]; !ok {
		return false
	}

	delete(p.entries, hash)
	for i, h := range p.pending {
		if h == hash {
			p.pending = append(p.pending[:i:i], p.pending[i+1:]...)
			break
		}
	}

	return true
}

func (p *PollTx) loop(gen uint64, stopCh, doneCh chan struct{}) {
	defer close(doneCh)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		select {
		case <-stopCh:
			cancel()
		case <-ctx.Done():
		}
	}()

	for {
		if !p.tick(ctx, gen) {
			return
		}

		timer := time.NewTimer(p.cfg.Interval)
		select {
		case <-stopCh:
			timer.Stop()
			return
		case <-timer.C:
		}
	}
}

type finality struct {
	blockHeight uint64
}

// tick runs one poll iteration and returns false when the loop should exit.
func (p *PollTx) tick(ctx context.Context, gen uint64) bool {
	p.ticks.Inc()
	p.metrics.incTicks()

	// The live pending collection, so that hashes watched since the last tick are included.
	hashes := p.Pending()

	views := make([]*types.TxView, len(hashes))
	g := &errgroup.Group{}
	for i, hash := range hashes {
		i, hash := i, hash
		g.Go(func() error {
			rctx, cancel := context.WithTimeout(ctx, p.cfg.RpcTimeout)
			defer cancel()

			view, err := p.client.GetTransaction(rctx, hash)
			if err != nil {
				p.metrics.incRpcErrors()
				log.Errorf("Failed to get tx %s, err = %v", hash.Hex(), err)
				return nil
			}

			views[i] = view
			return nil
		})
	}
	g.Wait()

	finals := make([]*finality, len(hashes))
	g = &errgroup.Group{}
	for i, view := range views {
		if !view.Mined() {
			continue
		}

		i, mined := i, *view.BlockNumber
		g.Go(func() error {
			rctx, cancel := context.WithTimeout(ctx, p.cfg.RpcTimeout)
			defer cancel()

			latest, err := p.client.LatestBlock(rctx)
			if err != nil {
				// The hash stays pending and is checked again on the next tick.
				p.metrics.incRpcErrors()
				log.Errorf("Failed to get latest block for tx %s, err = %v", hashes[i].Hex(), err)
				return nil
			}

			if latest >= mined && latest-mined >= p.cfg.Depth {
				finals[i] = &finality{blockHeight: mined}
			}

			return nil
		})
	}
	g.Wait()

	if ctx.Err() != nil {
		return false
	}

	completedUpdates := make([]*chainstypes.TrackUpdate, 0)
	timeoutUpdates := make([]*chainstypes.TrackUpdate, 0)

	p.lock.Lock()
	if gen != p.gen {
		p.lock.Unlock()
		return false
	}

	now := p.now()
	for i, hash := range hashes {
		entry, ok := p.entries[hash]
		if !ok {
			// Unwatched during the tick.
			continue
		}

		if finals[i] != nil {
			p.removePending(hash)
			p.completed.Add(hash, finals[i].blockHeight)
			p.completedOrder = append(p.completedOrder, hash)
			completedUpdates = append(completedUpdates, &chainstypes.TrackUpdate{
				Hash:        hash,
				BlockHeight: finals[i].blockHeight,
				Result:      chainstypes.TrackResultConfirmed,
			})
			continue
		}

		entry.attempts++
		if (p.cfg.MaxAttempts > 0 && entry.attempts >= p.cfg.MaxAttempts) ||
			(p.cfg.MaxDuration > 0 && now.Sub(entry.addedAt) >= p.cfg.MaxDuration) {
			p.removePending(hash)
			timeoutUpdates = append(timeoutUpdates, &chainstypes.TrackUpdate{
				Hash:   hash,
				Result: chainstypes.TrackResultTimeout,
			})
		}
	}

	pending := p.copyPending()
	idle := len(pending) == 0
	if idle {
		p.state = StateIdle
	}
	p.lock.Unlock()

	p.metrics.addCompleted(len(completedUpdates))
	p.metrics.addTimedOut(len(timeoutUpdates))
	p.metrics.setPending(len(pending))

	for _, update := range completedUpdates {
		update.Pending = pending
		log.Verbosef("Tx %s is final at block %d", update.Hash.Hex(), update.BlockHeight)
		p.Emit(chainstypes.EventCompleted, update)
		p.Emit(chainstypes.EventPending, &chainstypes.PendingUpdate{Hash: update.Hash, Pending: pending})
	}

	for _, update := range timeoutUpdates {
		update.Pending = pending
		log.Warnf("Stopped watching tx %s, it did not complete in time", update.Hash.Hex())
		p.Emit(chainstypes.EventTimeout, update)
		p.Emit(chainstypes.EventPending, &chainstypes.PendingUpdate{Hash: update.Hash, Pending: pending})
	}

	if idle {
		log.Verbose("No pending tx left, poll loop is idle")
	}

	return !idle
}
