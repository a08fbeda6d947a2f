package core

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/cargo-build/cargo-sdk-go/chains"
	"github.com/cargo-build/cargo-sdk-go/chains/eth"
	chainstypes "github.com/cargo-build/cargo-sdk-go/chains/types"
	"github.com/cargo-build/cargo-sdk-go/client"
	"github.com/cargo-build/cargo-sdk-go/config"
	"github.com/cargo-build/cargo-sdk-go/database"
	"github.com/cargo-build/cargo-sdk-go/events"
	"github.com/cargo-build/cargo-sdk-go/types"
	"github.com/ethereum/go-ethereum/common"
	ethtypes "github.com/ethereum/go-ethereum/core/types"
	"github.com/sisu-network/lib/log"
	"go.uber.org/atomic"
)

// Events emitted by Cargo.
const (
	EventProviderRequired = "provider-required"
	EventEnabled          = "enabled"
	EventEnableRequired   = "enable-required"
	EventAccountsChanged  = "accounts-changed"
)

var ErrEnableRequired = errors.New("wallet has no account, enable is required")

// Cargo is the marketplace SDK. Write operations prepare their arguments with the backend, send the
// transaction through the wallet and hand the hash to the tracker.
type Cargo struct {
	*events.Emitter

	cfg       *config.Cargo
	api       client.Client
	db        database.Database
	ethClient eth.EthClient
	watcher   chains.TxWatcher
	gas       *eth.GasCalculator

	enabled *atomic.Bool

	lock      *sync.RWMutex
	wallet    eth.Wallet
	submitter chains.TxSubmitter
	accounts  []common.Address
	token     string
	contracts map[string]*eth.Contract
}

func NewCargo(
	cfg *config.Cargo,
	api client.Client,
	db database.Database,
	ethClient eth.EthClient,
	watcher chains.TxWatcher,
) (*Cargo, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	c := &Cargo{
		Emitter:   events.NewEmitter(),
		cfg:       cfg,
		api:       api,
		db:        db,
		ethClient: ethClient,
		watcher:   watcher,
		enabled:   atomic.NewBool(false),
		lock:      &sync.RWMutex{},
		contracts: make(map[string]*eth.Contract),
	}

	if cfg.EstimateGas {
		c.gas = eth.NewGasCalculator(ethClient, cfg.GasPriceUpdateInterval(), cfg.GasBumpPercent)
	}

	return c, nil
}

func (c *Cargo) Version() string {
	return config.SdkVersion
}

func (c *Cargo) Tracker() chains.TxWatcher {
	return c.watcher
}

// SetWallet sets the wallet provider. Cargo has to be enabled again afterwards.
func (c *Cargo) SetWallet(wallet eth.Wallet) error {
	if wallet == nil {
		return types.ErrProviderRequired
	}

	c.lock.Lock()
	c.wallet = wallet
	c.lock.Unlock()

	c.enabled.Store(false)
	return nil
}

// Enable connects the wallet. It emits EventProviderRequired and returns ErrProviderRequired when
// there is no wallet.
func (c *Cargo) Enable(ctx context.Context) error {
	if c.enabled.Load() {
		return nil
	}

	c.lock.RLock()
	wallet := c.wallet
	c.lock.RUnlock()

	if wallet == nil {
		c.Emit(EventProviderRequired, nil)
		return types.ErrProviderRequired
	}

	accounts := wallet.Accounts()
	if len(accounts) == 0 {
		c.Emit(EventEnableRequired, nil)
		return ErrEnableRequired
	}

	submitter := eth.NewSubmitter(wallet, c.ethClient, c.cfg.CheckReceipt, c.cfg.RpcTimeout())

	c.lock.Lock()
	c.submitter = submitter
	c.accounts = accounts
	c.lock.Unlock()

	c.loadToken(accounts[0])
	if c.gas != nil {
		c.gas.Start()
	}

	c.enabled.Store(true)
	log.Info("Cargo is enabled for account ", accounts[0].Hex())
	c.Emit(EventEnabled, accounts)

	return nil
}

func (c *Cargo) IsEnabled() bool {
	return c.enabled.Load()
}

func (c *Cargo) Accounts() []common.Address {
	c.lock.RLock()
	defer c.lock.RUnlock()

	ret := make([]common.Address, len(c.accounts))
	copy(ret, c.accounts)

	return ret
}

// SetAccounts is called when the wallet switches accounts.
func (c *Cargo) SetAccounts(accounts []common.Address) {
	c.lock.Lock()
	c.accounts = append([]common.Address{}, accounts...)
	c.token = ""
	c.lock.Unlock()

	if len(accounts) > 0 {
		c.loadToken(accounts[0])
	}

	c.Emit(EventAccountsChanged, accounts)
}

func (c *Cargo) account() common.Address {
	c.lock.RLock()
	defer c.lock.RUnlock()

	if len(c.accounts) == 0 {
		return common.Address{}
	}

	return c.accounts[0]
}

// requireProvider enables Cargo if needed.
func (c *Cargo) requireProvider(ctx context.Context) error {
	if c.enabled.Load() {
		return nil
	}

	return c.Enable(ctx)
}

func (c *Cargo) contractKey(name types.ContractName, chain types.Chain) string {
	if chain == "" {
		chain = types.ChainEth
	}

	return fmt.Sprintf("%s:%s", chain, name)
}

// contractInstance returns the contract name on chain, bound to its default address.
func (c *Cargo) contractInstance(ctx context.Context, name types.ContractName, chain types.Chain) (*eth.Contract, error) {
	key := c.contractKey(name, chain)

	c.lock.RLock()
	contract, ok := c.contracts[key]
	c.lock.RUnlock()
	if ok {
		return contract, nil
	}

	data, err := c.api.GetContractAbi(ctx, name, chain)
	if err != nil {
		return nil, err
	}

	var address common.Address
	if data.Address != "" {
		address = common.HexToAddress(data.Address)
	}

	contract, err = eth.NewContract(name, address, data.Abi, c.ethClient)
	if err != nil {
		return nil, err
	}

	c.lock.Lock()
	c.contracts[key] = contract
	c.lock.Unlock()

	return contract, nil
}

// txOpts returns the default options of a transaction sent from the current account.
func (c *Cargo) txOpts(overrides *types.TxOpts) types.TxOpts {
	return types.TxOpts{From: c.account()}.Merge(overrides)
}

// callTxAndPoll submits req and starts tracking its hash.
func (c *Cargo) callTxAndPoll(ctx context.Context, req *types.TxRequest) (common.Hash, error) {
	hash, err := c.submit(ctx, req)
	if err != nil {
		return hash, err
	}

	if err := c.watcher.Watch(hash); err != nil {
		log.Warnf("Cannot watch tx %s, err = %v", hash.Hex(), err)
	}

	return hash, nil
}

// callTxAndWait submits req and blocks until the tracker reports the transaction final. A final
// transaction whose receipt has a failed status is reported as reverted.
func (c *Cargo) callTxAndWait(ctx context.Context, req *types.TxRequest) (common.Hash, error) {
	hash, err := c.submit(ctx, req)
	if err != nil {
		return hash, err
	}

	done := make(chan *chainstypes.TrackUpdate, 1)
	handler := events.NewHandler(func(event string, payload interface{}) {
		update, ok := payload.(*chainstypes.TrackUpdate)
		if !ok || update.Hash != hash {
			return
		}

		select {
		case done <- update:
		default:
		}
	})
	c.watcher.On(chainstypes.EventCompleted, handler)
	c.watcher.On(chainstypes.EventTimeout, handler)
	defer func() {
		c.watcher.Off(chainstypes.EventCompleted, handler)
		c.watcher.Off(chainstypes.EventTimeout, handler)
	}()

	err = c.watcher.Watch(hash)
	switch {
	case err == nil, errors.Is(err, types.ErrAlreadyPending):
		select {
		case <-ctx.Done():
			return hash, ctx.Err()
		case update := <-done:
			if update.Result == chainstypes.TrackResultTimeout {
				return hash, fmt.Errorf("tx %s: %w", hash.Hex(), types.ErrNotConfirmed)
			}
		}
	case errors.Is(err, types.ErrAlreadyCompleted):
	default:
		return hash, err
	}

	receiptCtx, cancel := context.WithTimeout(ctx, c.cfg.RpcTimeout())
	defer cancel()

	receipt, err := c.ethClient.TransactionReceipt(receiptCtx, hash)
	if err != nil {
		return hash, fmt.Errorf("receipt of tx %s: %w", hash.Hex(), err)
	}
	if receipt.Status == ethtypes.ReceiptStatusFailed {
		return hash, types.NewSubmitError(types.KindReverted, hash, types.ErrReverted)
	}

	return hash, nil
}

func (c *Cargo) submit(ctx context.Context, req *types.TxRequest) (common.Hash, error) {
	c.lock.RLock()
	submitter := c.submitter
	c.lock.RUnlock()

	if submitter == nil {
		return common.Hash{}, types.ErrProviderRequired
	}

	prereqs := make([]types.Prerequisite, 0, 1)
	if c.gas != nil {
		prereqs = append(prereqs, eth.EstimateGasPrerequisite(c.gas))
	}

	return submitter.Submit(ctx, req, prereqs...)
}

// callJSON submits a call whose arguments were prepared by the backend.
func (c *Cargo) callJSON(ctx context.Context, contract *eth.Contract, method string, args []json.RawMessage, opts types.TxOpts) (common.Hash, error) {
	req, err := contract.RequestJSON(opts, method, args)
	if err != nil {
		return common.Hash{}, err
	}

	return c.callTxAndPoll(ctx, req)
}

func (c *Cargo) call(ctx context.Context, contract *eth.Contract, method string, opts types.TxOpts, args ...interface{}) (common.Hash, error) {
	req, err := contract.Request(opts, method, args...)
	if err != nil {
		return common.Hash{}, err
	}

	return c.callTxAndPoll(ctx, req)
}

func (c *Cargo) callAndWait(ctx context.Context, contract *eth.Contract, method string, opts types.TxOpts, args ...interface{}) (common.Hash, error) {
	req, err := contract.Request(opts, method, args...)
	if err != nil {
		return common.Hash{}, err
	}

	return c.callTxAndWait(ctx, req)
}

func parseAddress(s string) (common.Address, error) {
	if !common.IsHexAddress(s) {
		return common.Address{}, fmt.Errorf("invalid address %s", s)
	}

	return common.HexToAddress(s), nil
}
