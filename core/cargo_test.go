package core

import (
	"context"
	"encoding/json"
	"errors"
	"math/big"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/cargo-build/cargo-sdk-go/chains/eth"
	chainstypes "github.com/cargo-build/cargo-sdk-go/chains/types"
	"github.com/cargo-build/cargo-sdk-go/client"
	"github.com/cargo-build/cargo-sdk-go/config"
	"github.com/cargo-build/cargo-sdk-go/database"
	"github.com/cargo-build/cargo-sdk-go/events"
	"github.com/cargo-build/cargo-sdk-go/types"
	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	ethtypes "github.com/ethereum/go-ethereum/core/types"
	"github.com/stretchr/testify/require"
)

const marketAbi = `[
	{"type":"function","name":"purchase","stateMutability":"payable","inputs":[
		{"name":"saleId","type":"uint256"},
		{"name":"signature","type":"bytes"}
	],"outputs":[]},
	{"type":"function","name":"erc1155Purchase","stateMutability":"payable","inputs":[
		{"name":"resaleItemId","type":"uint256"}
	],"outputs":[]},
	{"type":"function","name":"cancelSale","stateMutability":"nonpayable","inputs":[
		{"name":"resaleItemId","type":"uint256"}
	],"outputs":[]},
	{"type":"function","name":"isApprovedForAll","stateMutability":"view","inputs":[
		{"name":"owner","type":"address"},
		{"name":"operator","type":"address"}
	],"outputs":[{"name":"","type":"bool"}]},
	{"type":"function","name":"setApprovalForAll","stateMutability":"nonpayable","inputs":[
		{"name":"operator","type":"address"},
		{"name":"approved","type":"bool"}
	],"outputs":[]},
	{"type":"function","name":"approve","stateMutability":"nonpayable","inputs":[
		{"name":"spender","type":"address"},
		{"name":"amount","type":"uint256"}
	],"outputs":[{"name":"","type":"bool"}]},
	{"type":"function","name":"stake","stateMutability":"nonpayable","inputs":[
		{"name":"contractAddress","type":"address"},
		{"name":"tokenId","type":"uint256"},
		{"name":"amount","type":"uint256"}
	],"outputs":[]},
	{"type":"function","name":"claim","stateMutability":"nonpayable","inputs":[
		{"name":"tokenId","type":"uint256"},
		{"name":"amount","type":"uint256"}
	],"outputs":[]},
	{"type":"function","name":"addVendor","stateMutability":"nonpayable","inputs":[
		{"name":"crateId","type":"uint256"},
		{"name":"vendor","type":"address"}
	],"outputs":[]},
	{"type":"function","name":"addBeneficiary","stateMutability":"nonpayable","inputs":[
		{"name":"crateId","type":"uint256"},
		{"name":"beneficiary","type":"address"},
		{"name":"commission","type":"uint256"}
	],"outputs":[]},
	{"type":"function","name":"removeBeneficiary","stateMutability":"nonpayable","inputs":[
		{"name":"crateId","type":"uint256"},
		{"name":"beneficiary","type":"address"}
	],"outputs":[]},
	{"type":"function","name":"updateBeneficiaryCommission","stateMutability":"nonpayable","inputs":[
		{"name":"crateId","type":"uint256"},
		{"name":"beneficiary","type":"address"},
		{"name":"commission","type":"uint256"}
	],"outputs":[]},
	{"type":"function","name":"purchaseBalance","stateMutability":"payable","inputs":[
		{"name":"pack","type":"uint256"}
	],"outputs":[]},
	{"type":"function","name":"balanceOf","stateMutability":"view","inputs":[
		{"name":"owner","type":"address"}
	],"outputs":[{"name":"","type":"uint256"}]},
	{"type":"function","name":"safeTransferFrom","stateMutability":"nonpayable","inputs":[
		{"name":"from","type":"address"},
		{"name":"to","type":"address"},
		{"name":"tokenId","type":"uint256"}
	],"outputs":[]},
	{"type":"function","name":"burn","stateMutability":"nonpayable","inputs":[
		{"name":"tokenId","type":"uint256"}
	],"outputs":[]}
]`

var (
	testAccount    = common.HexToAddress("0x00000000000000000000000000000000000000a1")
	testCollection = common.HexToAddress("0x00000000000000000000000000000000000000c1")
	testOther      = common.HexToAddress("0x00000000000000000000000000000000000000b1")
)

// contractAddress gives every contract name a distinct address.
func contractAddress(name types.ContractName) common.Address {
	return common.BytesToAddress([]byte(name))
}

type recordingWatcher struct {
	*events.Emitter

	lock    sync.Mutex
	watched []common.Hash
}

func (w *recordingWatcher) Watch(hash common.Hash) error {
	w.lock.Lock()
	defer w.lock.Unlock()
	w.watched = append(w.watched, hash)
	return nil
}

func (w *recordingWatcher) Unwatch(hash common.Hash) bool {
	return false
}

func (w *recordingWatcher) Stop() {
}

func (w *recordingWatcher) State() eth.TrackerState {
	return eth.StateIdle
}

func (w *recordingWatcher) Pending() []common.Hash {
	w.lock.Lock()
	defer w.lock.Unlock()

	return append([]common.Hash{}, w.watched...)
}

func (w *recordingWatcher) Completed() []common.Hash {
	return nil
}

// complete reports hash final the way the tracker does.
func (w *recordingWatcher) complete(hash common.Hash, result chainstypes.TrackResult) {
	event := chainstypes.EventCompleted
	if result == chainstypes.TrackResultTimeout {
		event = chainstypes.EventTimeout
	}
	w.Emit(event, &chainstypes.TrackUpdate{Hash: hash, BlockHeight: 10, Result: result})
}

type sentTx struct {
	req    *types.TxRequest
	method string
	args   []interface{}
}

type testEnv struct {
	cargo   *Cargo
	api     *client.MockClient
	db      *memDb
	eth     *eth.MockEthClient
	wallet  *eth.MockWallet
	watcher *recordingWatcher
	abi     abi.ABI

	lock sync.Mutex
	sent []*sentTx
}

func (env *testEnv) sentTxs() []*sentTx {
	env.lock.Lock()
	defer env.lock.Unlock()

	return append([]*sentTx{}, env.sent...)
}

type memDb struct {
	database.MockDb

	lock       sync.Mutex
	tokens     map[string]string
	signatures map[string]string
}

func newMemDb() *memDb {
	db := &memDb{
		tokens:     make(map[string]string),
		signatures: make(map[string]string),
	}
	db.SaveTokenFunc = func(account, token string) error {
		db.lock.Lock()
		defer db.lock.Unlock()
		db.tokens[account] = token
		return nil
	}
	db.LoadTokenFunc = func(account string) (string, error) {
		db.lock.Lock()
		defer db.lock.Unlock()
		return db.tokens[account], nil
	}
	db.SaveSignatureFunc = func(account, sig string) error {
		db.lock.Lock()
		defer db.lock.Unlock()
		db.signatures[account] = sig
		return nil
	}
	db.LoadSignatureFunc = func(account string) (string, error) {
		db.lock.Lock()
		defer db.lock.Unlock()
		return db.signatures[account], nil
	}
	db.ClearSessionFunc = func(account string) error {
		db.lock.Lock()
		defer db.lock.Unlock()
		delete(db.tokens, account)
		delete(db.signatures, account)
		return nil
	}

	return db
}

func newTestEnv(t *testing.T) *testEnv {
	parsed, err := abi.JSON(strings.NewReader(marketAbi))
	require.Nil(t, err)

	env := &testEnv{
		abi: parsed,
		db:  newMemDb(),
		watcher: &recordingWatcher{
			Emitter: events.NewEmitter(),
		},
	}

	env.api = &client.MockClient{
		GetContractAbiFunc: func(ctx context.Context, name types.ContractName, chain types.Chain) (*types.ContractData, error) {
			return &types.ContractData{Abi: marketAbi, Address: contractAddress(name).Hex()}, nil
		},
	}

	env.eth = &eth.MockEthClient{
		CallContractFunc: func(ctx context.Context, msg ethereum.CallMsg, blockNumber *big.Int) ([]byte, error) {
			method, err := parsed.MethodById(msg.Data[:4])
			require.Nil(t, err)

			switch method.Name {
			case "isApprovedForAll":
				return method.Outputs.Pack(false)
			case "balanceOf":
				balance, _ := new(big.Int).SetString("2500000000000000000", 10)
				return method.Outputs.Pack(balance)
			}
			return nil, errors.New("unexpected call")
		},
	}

	count := 0
	env.wallet = &eth.MockWallet{
		AccountsFunc: func() []common.Address {
			return []common.Address{testAccount}
		},
		SendTransactionFunc: func(ctx context.Context, req *types.TxRequest, cb eth.Callback[*eth.SendResult]) {
			method, err := parsed.MethodById(req.Data[:4])
			require.Nil(t, err)
			args, err := method.Inputs.Unpack(req.Data[4:])
			require.Nil(t, err)

			env.lock.Lock()
			count++
			hash := common.BigToHash(big.NewInt(int64(count)))
			env.sent = append(env.sent, &sentTx{req: req, method: method.Name, args: args})
			env.lock.Unlock()

			go cb(nil, &eth.SendResult{Hash: hash})
		},
		SignFunc: func(ctx context.Context, account common.Address, message []byte, cb eth.Callback[[]byte]) {
			cb(nil, []byte{0x01, 0x02})
		},
	}

	cfg := config.Default()
	cargo, err := NewCargo(&cfg, env.api, env.db, env.eth, env.watcher)
	require.Nil(t, err)
	require.Nil(t, cargo.SetWallet(env.wallet))
	env.cargo = cargo

	return env
}

func rawArgs(args ...string) []json.RawMessage {
	ret := make([]json.RawMessage, len(args))
	for i, arg := range args {
		ret[i] = json.RawMessage(arg)
	}

	return ret
}

func TestNewCargoValidatesConfig(t *testing.T) {
	t.Parallel()

	cfg := config.Default()
	cfg.Network = "mainnet"

	_, err := NewCargo(&cfg, &client.MockClient{}, newMemDb(), &eth.MockEthClient{}, &recordingWatcher{Emitter: events.NewEmitter()})
	require.True(t, errors.Is(err, config.ErrInvalidNetwork))
}

func TestEnable(t *testing.T) {
	t.Parallel()

	t.Run("no_wallet", func(t *testing.T) {
		cfg := config.Default()
		cargo, err := NewCargo(&cfg, &client.MockClient{}, newMemDb(), &eth.MockEthClient{},
			&recordingWatcher{Emitter: events.NewEmitter()})
		require.Nil(t, err)

		emitted := 0
		cargo.OnFunc(EventProviderRequired, func(event string, payload interface{}) {
			emitted++
		})

		err = cargo.Enable(context.Background())
		require.Equal(t, types.ErrProviderRequired, err)
		require.Equal(t, 1, emitted)
		require.False(t, cargo.IsEnabled())

		// Operations that need a wallet fail the same way.
		_, err = cargo.BurnCollectible(context.Background(), testCollection.Hex(), "1", nil)
		require.Equal(t, types.ErrProviderRequired, err)
	})

	t.Run("no_account", func(t *testing.T) {
		env := newTestEnv(t)
		env.wallet.AccountsFunc = func() []common.Address { return nil }

		emitted := 0
		env.cargo.OnFunc(EventEnableRequired, func(event string, payload interface{}) {
			emitted++
		})

		require.Equal(t, ErrEnableRequired, env.cargo.Enable(context.Background()))
		require.Equal(t, 1, emitted)
	})

	t.Run("enabled", func(t *testing.T) {
		env := newTestEnv(t)
		env.db.tokens[testAccount.Hex()] = "saved"

		var accounts []common.Address
		env.cargo.OnFunc(EventEnabled, func(event string, payload interface{}) {
			accounts = payload.([]common.Address)
		})

		require.Nil(t, env.cargo.Enable(context.Background()))
		require.True(t, env.cargo.IsEnabled())
		require.Equal(t, []common.Address{testAccount}, accounts)
		require.Equal(t, []common.Address{testAccount}, env.cargo.Accounts())
		require.Equal(t, "saved", env.cargo.Token())

		// Enabling twice is a no-op.
		require.Nil(t, env.cargo.Enable(context.Background()))
	})
}

func TestSetAccounts(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	require.Nil(t, env.cargo.Enable(context.Background()))
	env.db.tokens[testOther.Hex()] = "other"

	changed := 0
	env.cargo.OnFunc(EventAccountsChanged, func(event string, payload interface{}) {
		changed++
	})

	env.cargo.SetAccounts([]common.Address{testOther})
	require.Equal(t, 1, changed)
	require.Equal(t, "other", env.cargo.Token())
	require.Equal(t, []common.Address{testOther}, env.cargo.Accounts())
}

func TestAuthenticate(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	signs := 0
	env.wallet.SignFunc = func(ctx context.Context, account common.Address, message []byte, cb eth.Callback[[]byte]) {
		signs++
		require.Equal(t, testAccount, account)
		require.Equal(t, SigningMessage, string(message))
		cb(nil, []byte{0xab})
	}
	env.api.AuthenticateFunc = func(ctx context.Context, address, signature string) (*types.AuthResponse, error) {
		require.Equal(t, testAccount.Hex(), address)
		require.Equal(t, "0xab", signature)
		return &types.AuthResponse{Token: "tok"}, nil
	}

	token, err := env.cargo.Authenticate(context.Background())
	require.Nil(t, err)
	require.Equal(t, "tok", token)
	require.True(t, env.cargo.IsAuthenticated())
	require.Equal(t, "tok", env.db.tokens[testAccount.Hex()])

	// The signature is cached.
	_, err = env.cargo.Authenticate(context.Background())
	require.Nil(t, err)
	require.Equal(t, 1, signs)

	require.Nil(t, env.cargo.Clear())
	require.False(t, env.cargo.IsAuthenticated())
	require.Empty(t, env.db.signatures)
}

func TestGetSignatureRejected(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	env.wallet.SignFunc = func(ctx context.Context, account common.Address, message []byte, cb eth.Callback[[]byte]) {
		cb(errors.New("user denied"), nil)
	}

	_, err := env.cargo.GetSignature(context.Background())
	require.NotNil(t, err)
	require.Empty(t, env.db.signatures)
}

func TestAuthenticatedMethods(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.cargo.AddVendor(ctx, testOther.Hex(), "1", nil)
	require.Equal(t, types.ErrAuthenticationRequired, err)
	_, err = env.cargo.AddBeneficiary(ctx, "1", testOther.Hex(), 0.1, nil)
	require.Equal(t, types.ErrAuthenticationRequired, err)
	_, err = env.cargo.RemoveBeneficiary(ctx, testOther.Hex(), "1", nil)
	require.Equal(t, types.ErrAuthenticationRequired, err)
	_, err = env.cargo.UpdateBeneficiaryCommission(ctx, testOther.Hex(), 0.1, "1", nil)
	require.Equal(t, types.ErrAuthenticationRequired, err)
	_, err = env.cargo.Sell(ctx, &types.SellRequest{ContractAddress: testCollection.Hex()}, nil)
	require.Equal(t, types.ErrAuthenticationRequired, err)
	require.Empty(t, env.sentTxs())
}

func TestVendorOperations(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	ctx := context.Background()
	env.db.tokens[testAccount.Hex()] = "tok"

	var commission string
	env.api.AddBeneficiaryFunc = func(ctx context.Context, token, crateId, address, value string) (*types.ArgsResponse, error) {
		require.Equal(t, "tok", token)
		commission = value
		return &types.ArgsResponse{Args: rawArgs(`"7"`, `"`+testOther.Hex()+`"`, `"`+value+`"`)}, nil
	}
	env.api.AddVendorFunc = func(ctx context.Context, token, vendor, crateId string) (*types.ArgsResponse, error) {
		return &types.ArgsResponse{Args: rawArgs(`7`, `"`+vendor+`"`)}, nil
	}
	env.api.RemoveBeneficiaryFunc = func(ctx context.Context, token, beneficiary, crateId string) (*types.ArgsResponse, error) {
		return &types.ArgsResponse{Args: rawArgs(`7`, `"`+beneficiary+`"`)}, nil
	}
	env.api.UpdateBeneficiaryCommissionFunc = func(ctx context.Context, token, address, value, crateId string) (*types.ArgsResponse, error) {
		return &types.ArgsResponse{Args: rawArgs(`7`, `"`+address+`"`, `"`+value+`"`)}, nil
	}

	_, err := env.cargo.AddBeneficiary(ctx, "7", testOther.Hex(), 0.25, nil)
	require.Nil(t, err)
	require.Equal(t, "250000000000000000", commission)

	_, err = env.cargo.AddVendor(ctx, testOther.Hex(), "7", nil)
	require.Nil(t, err)
	_, err = env.cargo.RemoveBeneficiary(ctx, testOther.Hex(), "7", nil)
	require.Nil(t, err)
	_, err = env.cargo.UpdateBeneficiaryCommission(ctx, testOther.Hex(), 0.5, "7", nil)
	require.Nil(t, err)

	_, err = env.cargo.AddBeneficiary(ctx, "7", testOther.Hex(), 2, nil)
	require.NotNil(t, err)

	sent := env.sentTxs()
	require.Len(t, sent, 4)
	methods := make([]string, 0)
	for _, tx := range sent {
		require.Equal(t, contractAddress(types.ContractCargoVendor), *tx.req.To)
		require.Equal(t, testAccount, tx.req.Opts.From)
		methods = append(methods, tx.method)
	}
	require.Equal(t, []string{"addBeneficiary", "addVendor", "removeBeneficiary", "updateBeneficiaryCommission"}, methods)
	require.Len(t, env.watcher.watched, 4)
}

func TestPurchase(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	env.api.PurchaseFunc = func(ctx context.Context, saleId string) (*types.PurchaseResponse, error) {
		require.Equal(t, "sale", saleId)
		return &types.PurchaseResponse{
			Args:       rawArgs(`"12"`, `"0x0102"`),
			Web3Params: &types.TxValues{Value: "1000"},
		}, nil
	}

	hash, err := env.cargo.Purchase(context.Background(), "sale", types.ChainMatic, nil)
	require.Nil(t, err)
	require.Equal(t, []common.Hash{hash}, env.watcher.watched)

	sent := env.sentTxs()
	require.Len(t, sent, 1)
	require.Equal(t, "purchase", sent[0].method)
	require.Equal(t, contractAddress(types.ContractOrderExecutorV1), *sent[0].req.To)
	require.Equal(t, testAccount, sent[0].req.Opts.From)
	require.Equal(t, big.NewInt(1000), sent[0].req.Opts.Value)
	require.Equal(t, big.NewInt(12), sent[0].args[0])
}

func TestPurchaseErc1155Overrides(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	env.api.PurchaseErc1155Func = func(ctx context.Context, resaleItemId, sender string) (*types.PurchaseResponse, error) {
		require.Equal(t, testAccount.Hex(), sender)
		return &types.PurchaseResponse{
			Args:   rawArgs(`5`),
			Values: &types.TxValues{From: testAccount.Hex(), Value: "10"},
		}, nil
	}

	_, err := env.cargo.PurchaseErc1155(context.Background(), "item", &types.TxOpts{Value: big.NewInt(20)})
	require.Nil(t, err)

	sent := env.sentTxs()
	require.Equal(t, "erc1155Purchase", sent[0].method)
	require.Equal(t, contractAddress(types.ContractCargoSell), *sent[0].req.To)
	require.Equal(t, big.NewInt(20), sent[0].req.Opts.Value)
}

type sellResult struct {
	res json.RawMessage
	err error
}

// startSell runs an unapproved Sell in the background and waits until its approval is watched.
func startSell(t *testing.T, env *testEnv, ctx context.Context, onUnapproved func()) (<-chan sellResult, <-chan *types.SellRequest, common.Hash) {
	env.db.tokens[testAccount.Hex()] = "tok"

	listed := make(chan *types.SellRequest, 1)
	env.api.SellFunc = func(ctx context.Context, token string, req *types.SellRequest) (json.RawMessage, error) {
		require.Equal(t, "tok", token)
		listed <- req
		return json.RawMessage(`{"id":"1"}`), nil
	}

	resCh := make(chan sellResult, 1)
	go func() {
		res, err := env.cargo.Sell(ctx, &types.SellRequest{
			ContractAddress: testCollection.Hex(),
			TokenId:         "1",
			Price:           "100",
		}, onUnapproved)
		resCh <- sellResult{res: res, err: err}
	}()

	require.Eventually(t, func() bool {
		return len(env.watcher.Pending()) == 1
	}, time.Second, 5*time.Millisecond)

	return resCh, listed, env.watcher.Pending()[0]
}

func receiptWithStatus(status uint64) func(ctx context.Context, txHash common.Hash) (*ethtypes.Receipt, error) {
	return func(ctx context.Context, txHash common.Hash) (*ethtypes.Receipt, error) {
		return &ethtypes.Receipt{TxHash: txHash, Status: status}, nil
	}
}

func TestSellWaitsForApproval(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	env.eth.TransactionReceiptFunc = receiptWithStatus(ethtypes.ReceiptStatusSuccessful)
	unapproved := 0
	resCh, listed, hash := startSell(t, env, context.Background(), func() { unapproved++ })

	select {
	case <-listed:
		t.Fatal("listing was posted before the approval completed")
	case <-time.After(50 * time.Millisecond):
	}

	env.watcher.complete(hash, chainstypes.TrackResultConfirmed)

	res := <-resCh
	require.Nil(t, res.err)
	require.JSONEq(t, `{"id":"1"}`, string(res.res))
	require.Equal(t, testAccount.Hex(), (<-listed).Sender)
	require.Equal(t, 1, unapproved)

	sent := env.sentTxs()
	require.Len(t, sent, 1)
	require.Equal(t, hash, common.BigToHash(big.NewInt(1)))
	require.Equal(t, "setApprovalForAll", sent[0].method)
	require.Equal(t, testCollection, *sent[0].req.To)
	require.Equal(t, contractAddress(types.ContractOrderExecutorV1), sent[0].args[0])
	require.Equal(t, true, sent[0].args[1])
}

func TestSellRevertedApproval(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	env.eth.TransactionReceiptFunc = receiptWithStatus(ethtypes.ReceiptStatusFailed)
	resCh, listed, hash := startSell(t, env, context.Background(), nil)

	env.watcher.complete(hash, chainstypes.TrackResultConfirmed)

	res := <-resCh
	require.True(t, types.IsReverted(res.err))
	require.Empty(t, listed)
}

func TestSellApprovalTimeout(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	resCh, listed, hash := startSell(t, env, context.Background(), nil)

	// Updates for other transactions are ignored.
	env.watcher.complete(common.HexToHash("0xff"), chainstypes.TrackResultConfirmed)
	env.watcher.complete(hash, chainstypes.TrackResultTimeout)

	res := <-resCh
	require.True(t, errors.Is(res.err, types.ErrNotConfirmed))
	require.Empty(t, listed)
	require.Equal(t, 0, env.watcher.ListenerCount(chainstypes.EventCompleted))
	require.Equal(t, 0, env.watcher.ListenerCount(chainstypes.EventTimeout))
}

func TestSellCancelledWhileApproving(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	ctx, cancel := context.WithCancel(context.Background())
	resCh, listed, _ := startSell(t, env, ctx, nil)

	cancel()

	res := <-resCh
	require.True(t, errors.Is(res.err, context.Canceled))
	require.Empty(t, listed)
}

func TestSellSkipsApproval(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	env.db.tokens[testAccount.Hex()] = "tok"
	env.eth.CallContractFunc = func(ctx context.Context, msg ethereum.CallMsg, blockNumber *big.Int) ([]byte, error) {
		return env.abi.Methods["isApprovedForAll"].Outputs.Pack(true)
	}

	_, err := env.cargo.Sell(context.Background(), &types.SellRequest{ContractAddress: testCollection.Hex()}, func() {
		t.Fatal("approval is not needed")
	})
	require.Nil(t, err)
	require.Empty(t, env.sentTxs())
}

func TestCancelSale(t *testing.T) {
	t.Parallel()

	t.Run("signature", func(t *testing.T) {
		env := newTestEnv(t)
		env.api.CancelSaleFunc = func(ctx context.Context, token string, req *client.CancelSaleRequest) (*types.ArgsResponse, error) {
			require.Equal(t, "", token)
			require.Equal(t, "0x0102", req.Signature)
			require.Equal(t, testAccount.Hex(), req.Sender)
			return &types.ArgsResponse{Args: rawArgs(`3`), SignatureGenerated: true}, nil
		}

		hash, err := env.cargo.CancelSale(context.Background(), "item", nil)
		require.Nil(t, err)
		require.NotEqual(t, common.Hash{}, hash)
		require.Equal(t, "cancelSale", env.sentTxs()[0].method)
	})

	t.Run("backend_only", func(t *testing.T) {
		env := newTestEnv(t)
		env.db.tokens[testAccount.Hex()] = "tok"
		require.Nil(t, env.cargo.Enable(context.Background()))

		env.api.CancelSaleFunc = func(ctx context.Context, token string, req *client.CancelSaleRequest) (*types.ArgsResponse, error) {
			require.Equal(t, "tok", token)
			require.Equal(t, "", req.Signature)
			return &types.ArgsResponse{}, nil
		}

		hash, err := env.cargo.CancelSale(context.Background(), "item", nil)
		require.Nil(t, err)
		require.Equal(t, common.Hash{}, hash)
		require.Empty(t, env.sentTxs())
	})
}

func TestStaking(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	ctx := context.Background()

	var amounts []string
	env.api.GetClaimArgsFunc = func(ctx context.Context, address, tokenId, amount string) (*types.ArgsResponse, error) {
		amounts = append(amounts, amount)
		return &types.ArgsResponse{Args: rawArgs(`"`+tokenId+`"`, `"0"`)}, nil
	}

	_, err := env.cargo.ApproveGems(ctx, "1000", nil)
	require.Nil(t, err)
	_, err = env.cargo.StakeGems(ctx, testCollection.Hex(), "4", "1000", nil)
	require.Nil(t, err)
	_, err = env.cargo.ClaimAndStakeRewards(ctx, testCollection.Hex(), "4", nil)
	require.Nil(t, err)
	_, err = env.cargo.Withdraw(ctx, testCollection.Hex(), "4", "10", nil)
	require.Nil(t, err)
	_, err = env.cargo.ApproveErc20(ctx, "5", testCollection.Hex(), testOther.Hex(), nil)
	require.Nil(t, err)

	require.Equal(t, []string{"", "10"}, amounts)

	sent := env.sentTxs()
	require.Len(t, sent, 5)

	require.Equal(t, "approve", sent[0].method)
	require.Equal(t, contractAddress(types.ContractCargoGems), *sent[0].req.To)
	require.Equal(t, contractAddress(types.ContractGemsStaking), sent[0].args[0])

	require.Equal(t, "stake", sent[1].method)
	require.Equal(t, testCollection, sent[1].args[0])
	require.Equal(t, big.NewInt(4), sent[1].args[1])

	require.Equal(t, "claim", sent[2].method)
	require.Equal(t, "claim", sent[3].method)

	require.Equal(t, "approve", sent[4].method)
	require.Equal(t, testCollection, *sent[4].req.To)
	require.Equal(t, testOther, sent[4].args[0])
}

func TestCollectibles(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.cargo.TransferCollectible(ctx, testCollection.Hex(), "9", testOther.Hex(), nil)
	require.Nil(t, err)
	_, err = env.cargo.BurnCollectible(ctx, testCollection.Hex(), "9", nil)
	require.Nil(t, err)
	_, err = env.cargo.TransferCollectible(ctx, testCollection.Hex(), "9", "not-an-address", nil)
	require.NotNil(t, err)

	sent := env.sentTxs()
	require.Len(t, sent, 2)
	require.Equal(t, "safeTransferFrom", sent[0].method)
	require.Equal(t, []interface{}{testAccount, testOther, big.NewInt(9)}, sent[0].args)
	require.Equal(t, testCollection, *sent[0].req.To)
	require.Equal(t, "burn", sent[1].method)
}

func TestMintingCredits(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.cargo.PurchaseCreditPack(ctx, "2", "5000", nil)
	require.Nil(t, err)

	sent := env.sentTxs()
	require.Equal(t, "purchaseBalance", sent[0].method)
	require.Equal(t, big.NewInt(5000), sent[0].req.Opts.Value)
	require.Equal(t, contractAddress(types.ContractMintingCredits), *sent[0].req.To)

	balance, err := env.cargo.GetMintingCreditBalance(ctx)
	require.Nil(t, err)
	require.Equal(t, "2.5000", balance)
}

func TestRevertedTxIsNotWatched(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	env.wallet.SendTransactionFunc = func(ctx context.Context, req *types.TxRequest, cb eth.Callback[*eth.SendResult]) {
		cb(nil, &eth.SendResult{
			Hash:    common.HexToHash("0x01"),
			Receipt: &ethtypes.Receipt{Status: ethtypes.ReceiptStatusFailed},
		})
	}

	_, err := env.cargo.BurnCollectible(context.Background(), testCollection.Hex(), "1", nil)
	require.True(t, types.IsReverted(err))
	require.Empty(t, env.watcher.watched)
}

func TestEstimateGas(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	cfg := config.Default()
	cfg.EstimateGas = true
	env.eth.EstimateGasFunc = func(ctx context.Context, msg ethereum.CallMsg) (uint64, error) {
		return 100_000, nil
	}

	cargo, err := NewCargo(&cfg, env.api, env.db, env.eth, env.watcher)
	require.Nil(t, err)
	require.Nil(t, cargo.SetWallet(env.wallet))

	_, err = cargo.BurnCollectible(context.Background(), testCollection.Hex(), "1", nil)
	require.Nil(t, err)
	require.Equal(t, uint64(112_000), env.sentTxs()[0].req.Opts.Gas)
}
