package server

import (
	"github.com/cargo-build/cargo-sdk-go/chains"
	"github.com/cargo-build/cargo-sdk-go/config"
	"github.com/ethereum/go-ethereum/common"
)

// ApiHandler is served under the "cargo" namespace.
type ApiHandler struct {
	watcher chains.TxWatcher
}

func NewApi(watcher chains.TxWatcher) *ApiHandler {
	return &ApiHandler{
		watcher: watcher,
	}
}

func (api *ApiHandler) Version() string {
	return config.SdkVersion
}

// Watch starts tracking a transaction.
func (api *ApiHandler) Watch(hash common.Hash) (bool, error) {
	if err := api.watcher.Watch(hash); err != nil {
		return false, err
	}

	return true, nil
}

// Unwatch stops tracking a transaction. It returns false if the transaction was not pending.
func (api *ApiHandler) Unwatch(hash common.Hash) bool {
	return api.watcher.Unwatch(hash)
}

func (api *ApiHandler) Pending() []common.Hash {
	return api.watcher.Pending()
}

func (api *ApiHandler) Completed() []common.Hash {
	return api.watcher.Completed()
}

func (api *ApiHandler) State() string {
	return api.watcher.State().String()
}
